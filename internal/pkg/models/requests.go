package models

// CreateTripRequest is the rider's trip creation payload
type CreateTripRequest struct {
	Pickup      Location `json:"pickup"`
	Destination Location `json:"destination"`
	Notes       string   `json:"notes,omitempty"`
}

// OfferActionRequest accompanies accept and decline calls
type OfferActionRequest struct {
	Note string `json:"note,omitempty"`
}

// UpdateStatusRequest moves a trip to a new status (driver start/complete/cancel)
type UpdateStatusRequest struct {
	Status TripStatus `json:"status"`
	Note   string     `json:"note,omitempty"`
	// MeterCost carries the driver-entered physical meter reading on the
	// completion call. Ignored for every other status.
	MeterCost float64 `json:"meter_cost,omitempty"`
	// TripDistanceKm and DurationS carry the client accumulator totals on
	// completion.
	TripDistanceKm float64 `json:"trip_distance_km,omitempty"`
	DurationS      int     `json:"duration_s,omitempty"`
}

// CancelTripRequest carries the optional free-text cancellation reason
type CancelTripRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RateTripRequest is the rider's post-trip rating payload
type RateTripRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review,omitempty"`
}

// PendingOfferQuery is what a polling driver reports about itself. The
// reference trip service uses the location to stamp the approach distance
// at the moment of assignment.
type PendingOfferQuery struct {
	Location Location `json:"location"`
}

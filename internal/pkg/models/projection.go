package models

import "time"

// OfferState is the single enum behind the accept/decline single-flight
// guard. It replaces scattered isAccepting/isDeclining booleans.
type OfferState int

const (
	OfferIdle OfferState = iota
	OfferAccepting
	OfferDeclining
	OfferResolved
)

func (s OfferState) String() string {
	switch s {
	case OfferAccepting:
		return "accepting"
	case OfferDeclining:
		return "declining"
	case OfferResolved:
		return "resolved"
	default:
		return "idle"
	}
}

// TripProjection is the read-only view handed to the UI layer. It never
// exposes the mirror itself.
type TripProjection struct {
	TripID      string     `json:"trip_id,omitempty"`
	Status      TripStatus `json:"status,omitempty"`
	Counterpart string     `json:"counterpart,omitempty"`
	Pickup      *Location  `json:"pickup,omitempty"`
	Destination *Location  `json:"destination,omitempty"`

	ApproachDistanceKm float64 `json:"approach_distance_km,omitempty"`
	ApproachFee        float64 `json:"approach_fee,omitempty"`
	EstimatedCost      float64 `json:"estimated_cost,omitempty"`
	MeterCost          float64 `json:"meter_cost,omitempty"`
	TotalCost          float64 `json:"total_cost,omitempty"`

	TripDistanceKm float64 `json:"trip_distance_km,omitempty"`
	DurationS      int     `json:"duration_s,omitempty"`

	// CountdownRemaining is non-zero only while an offer is pending.
	CountdownRemaining time.Duration `json:"countdown_remaining_ms,omitempty"`
	OfferState         string        `json:"offer_state,omitempty"`

	Online         bool `json:"online"`
	AwaitingPickup bool `json:"awaiting_pickup_confirmation,omitempty"`
	// AwaitingCompletion is set on the rider side when the driver marked
	// the trip completed before the rider confirmed it.
	AwaitingCompletion bool `json:"awaiting_completion_confirmation,omitempty"`

	Notice string `json:"notice,omitempty"`

	Generation uint64    `json:"generation"`
	UpdatedAt  time.Time `json:"updated_at"`
}

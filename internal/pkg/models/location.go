package models

// Location is a coordinate pair with an advisory display address
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Valid reports whether the coordinates are inside WGS84 bounds. The
// zero value is treated as missing rather than a point in the Gulf of
// Guinea.
func (l Location) Valid() bool {
	if l.Latitude == 0 && l.Longitude == 0 {
		return false
	}
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

// Route is what a routing provider returns for an origin/destination pair
type Route struct {
	DistanceKm float64    `json:"distance_km"`
	DurationS  int        `json:"duration_s"`
	Geometry   []Location `json:"geometry,omitempty"`
}

// Package routing provides the default route estimator. A real routing
// provider (road network, traffic) is an external collaborator; the
// estimator fills the same interface with great-circle math.
package routing

import (
	"context"
	"fmt"

	"github.com/ridewire/ridewire/internal/pkg/apperrors"
	"github.com/ridewire/ridewire/internal/pkg/geo"
	"github.com/ridewire/ridewire/internal/pkg/models"
)

// Provider resolves a route between two points
type Provider interface {
	Route(ctx context.Context, origin, destination models.Location) (models.Route, error)
}

// Geocoder resolves a display address for a coordinate pair
type Geocoder interface {
	AddressFor(ctx context.Context, lat, lng float64) (string, error)
}

// HaversineEstimator estimates routes as straight lines at an assumed
// average speed.
type HaversineEstimator struct {
	AvgSpeedKmh float64
}

// NewHaversineEstimator returns an estimator with a 40 km/h urban
// average speed.
func NewHaversineEstimator() *HaversineEstimator {
	return &HaversineEstimator{AvgSpeedKmh: 40}
}

// Route estimates distance and duration between origin and destination
func (e *HaversineEstimator) Route(ctx context.Context, origin, destination models.Location) (models.Route, error) {
	if !origin.Valid() || !destination.Valid() {
		return models.Route{}, apperrors.New(apperrors.ClassValidation, apperrors.ErrInvalidLocation)
	}
	distance := geo.DistanceKm(origin, destination)
	durationS := 0
	if e.AvgSpeedKmh > 0 {
		durationS = int(distance / e.AvgSpeedKmh * 3600)
	}
	return models.Route{
		DistanceKm: distance,
		DurationS:  durationS,
		Geometry:   []models.Location{origin, destination},
	}, nil
}

// CoordinateGeocoder formats coordinates as the display address. Stands
// in for the reverse-geocoding collaborator.
type CoordinateGeocoder struct{}

// AddressFor returns a "lat, lng" display string
func (CoordinateGeocoder) AddressFor(_ context.Context, lat, lng float64) (string, error) {
	return fmt.Sprintf("%.5f, %.5f", lat, lng), nil
}

package trips

import (
	"context"

	"github.com/ridewire/ridewire/internal/pkg/models"
)

// TripRepo stores canonical trip records and the active/requested
// indexes. Mutate is the only write path for existing trips: it applies
// fn atomically so two drivers racing for one offer cannot both win.
// go:generate mockgen -destination=mocks/mock_repository.go -package=mocks github.com/ridewire/ridewire/services/trips TripRepo
type TripRepo interface {
	Create(ctx context.Context, trip *models.Trip) error
	Get(ctx context.Context, id string) (*models.Trip, error)

	// Mutate loads the trip, applies fn, and persists the result as one
	// atomic step. An error from fn aborts the write and is returned
	// unchanged.
	Mutate(ctx context.Context, id string, fn func(*models.Trip) error) (*models.Trip, error)

	// ActiveByRider returns the rider's current trip: any non-terminal
	// trip, or a completed one the rider has not confirmed yet.
	ActiveByRider(ctx context.Context, riderID string) (*models.Trip, error)
	// ActiveByDriver returns the driver's assigned or running trip.
	ActiveByDriver(ctx context.Context, driverID string) (*models.Trip, error)

	// RequestedIDs lists unassigned trip IDs, oldest first.
	RequestedIDs(ctx context.Context, limit int64) ([]string, error)
}

package driver

import (
	"context"

	"github.com/ridewire/ridewire/internal/pkg/models"
)

// DriverUC is the driver client engine as seen by the UI layer: a
// read-only projection plus the user-intent calls.
// go:generate mockgen -destination=mocks/mock_usecase.go -package=mocks github.com/ridewire/ridewire/services/driver DriverUC
type DriverUC interface {
	GoOnline(ctx context.Context) error
	GoOffline(ctx context.Context) error
	UpdateLocation(ctx context.Context, loc models.Location) error

	Accept(ctx context.Context) error
	Decline(ctx context.Context, note string) error
	StartTrip(ctx context.Context) error
	CompleteTrip(ctx context.Context, meterCost float64) error
	CancelTrip(ctx context.Context, reason string) error

	Projection() models.TripProjection
	Subscribe(fn func(models.TripProjection))

	Shutdown()
}

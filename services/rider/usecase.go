package rider

import (
	"context"

	"github.com/ridewire/ridewire/internal/pkg/models"
)

// RiderUC is the rider client engine as seen by the UI layer.
// go:generate mockgen -destination=mocks/mock_usecase.go -package=mocks github.com/ridewire/ridewire/services/rider RiderUC
type RiderUC interface {
	RequestTrip(ctx context.Context, req models.CreateTripRequest) error
	ConfirmPickup(ctx context.Context) error
	ConfirmCompletion(ctx context.Context) error
	CancelTrip(ctx context.Context, reason string) error
	RateTrip(ctx context.Context, rating int, review string) error

	Projection() models.TripProjection
	Subscribe(fn func(models.TripProjection))

	Shutdown()
}

package rider

import (
	"context"

	"github.com/ridewire/ridewire/internal/pkg/models"
)

// RiderGW is the rider client's view of the trip service.
// go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks github.com/ridewire/ridewire/services/rider RiderGW
type RiderGW interface {
	CreateTrip(ctx context.Context, req models.CreateTripRequest) (*models.Trip, error)
	GetActiveTrip(ctx context.Context) (*models.Trip, error)
	ConfirmPickup(ctx context.Context, tripID string) (*models.Trip, error)
	ConfirmCompletion(ctx context.Context, tripID string) error
	CancelTrip(ctx context.Context, tripID, reason string) error
	RateTrip(ctx context.Context, tripID string, rating int, review string) error
}

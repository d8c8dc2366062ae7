package trips

import (
	"context"

	"github.com/ridewire/ridewire/internal/pkg/models"
)

// TripUC is the authoritative trip lifecycle. Every operation takes the
// caller identity; ownership checks happen here, not in the transport.
// go:generate mockgen -destination=mocks/mock_usecase.go -package=mocks github.com/ridewire/ridewire/services/trips TripUC
type TripUC interface {
	CreateTrip(ctx context.Context, riderID string, req models.CreateTripRequest) (*models.Trip, error)
	ActiveTrip(ctx context.Context, userID string) (*models.Trip, error)

	PendingOffer(ctx context.Context, driverID string, loc models.Location) (*models.Trip, error)
	AcceptOffer(ctx context.Context, driverID, tripID, note string) (*models.Trip, error)
	DeclineOffer(ctx context.Context, driverID, tripID, note string) error

	UpdateStatus(ctx context.Context, driverID, tripID string, req models.UpdateStatusRequest) (*models.Trip, error)

	ConfirmPickup(ctx context.Context, riderID, tripID string) (*models.Trip, error)
	ConfirmCompletion(ctx context.Context, riderID, tripID string) error
	CancelTrip(ctx context.Context, userID, tripID, reason string) error
	RateTrip(ctx context.Context, riderID, tripID string, rating int, review string) error
}

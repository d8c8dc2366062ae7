package driver

import (
	"context"

	"github.com/ridewire/ridewire/internal/pkg/models"
)

// TripGW is the driver client's view of the trip service.
// go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks github.com/ridewire/ridewire/services/driver TripGW
type TripGW interface {
	GetPendingOffer(ctx context.Context, loc models.Location) (*models.Trip, error)
	AcceptOffer(ctx context.Context, tripID, note string) (*models.Trip, error)
	DeclineOffer(ctx context.Context, tripID, note string) error
	UpdateStatus(ctx context.Context, tripID string, req models.UpdateStatusRequest) (*models.Trip, error)
	GetActiveTrip(ctx context.Context) (*models.Trip, error)
	CancelTrip(ctx context.Context, tripID, reason string) error
}

package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ridewire/ridewire/internal/pkg/apperrors"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/models"
	"github.com/ridewire/ridewire/services/trips/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRoute returns the same distance for every pair, which keeps the
// fare math in tests exact.
type fixedRoute struct{ km float64 }

func (f fixedRoute) Route(_ context.Context, _, _ models.Location) (models.Route, error) {
	return models.Route{DistanceKm: f.km}, nil
}

func testConfig() *models.Config {
	return &models.Config{
		Pricing: models.PricingConfig{
			ApproachRatePerKm: 0.5,
			BaseFare:          5.0,
			RatePerKm:         2.5,
			Currency:          "OMR",
		},
	}
}

func newService(t *testing.T) *TripService {
	t.Helper()
	svc := NewTripService(testConfig(), memory.NewTripRepository(), fixedRoute{km: 10}, logger.NewNopLogger())

	// Deterministic, strictly increasing clock so RequestedAt ordering
	// is stable.
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	tick := 0
	svc.nowFn = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return svc
}

var (
	pickup      = models.Location{Latitude: 23.588, Longitude: 58.383}
	destination = models.Location{Latitude: 23.67, Longitude: 58.18}
)

func createTrip(t *testing.T, svc *TripService, riderID string) *models.Trip {
	t.Helper()
	trip, err := svc.CreateTrip(context.Background(), riderID, models.CreateTripRequest{
		Pickup:      pickup,
		Destination: destination,
	})
	require.NoError(t, err)
	return trip
}

// assignTrip drives a trip to assigned via the offer poll
func assignTrip(t *testing.T, svc *TripService, driverID string) *models.Trip {
	t.Helper()
	offer, err := svc.PendingOffer(context.Background(), driverID, pickup)
	require.NoError(t, err)
	require.NotNil(t, offer)
	return offer
}

func TestCreateTripEstimatesFare(t *testing.T) {
	svc := newService(t)

	trip := createTrip(t, svc, "rider-1")

	assert.Equal(t, models.TripStatusRequested, trip.Status)
	assert.Equal(t, 30.0, trip.EstimatedCost, "base fare plus 10 km at the per-km rate")
	assert.NotEmpty(t, trip.ID)
	assert.False(t, trip.RequestedAt.IsZero())
}

func TestCreateTripRefusesSecondActive(t *testing.T) {
	svc := newService(t)
	createTrip(t, svc, "rider-1")

	_, err := svc.CreateTrip(context.Background(), "rider-1", models.CreateTripRequest{
		Pickup:      pickup,
		Destination: destination,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyHasActiveTrip)
	assert.True(t, apperrors.IsConflict(err))
}

func TestCreateTripRequiresIdentity(t *testing.T) {
	svc := newService(t)

	_, err := svc.CreateTrip(context.Background(), "", models.CreateTripRequest{
		Pickup:      pickup,
		Destination: destination,
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsAuth(err))
}

func TestPendingOfferAssignsOldestRequest(t *testing.T) {
	svc := newService(t)
	first := createTrip(t, svc, "rider-1")
	createTrip(t, svc, "rider-2")

	offer := assignTrip(t, svc, "driver-1")

	assert.Equal(t, first.ID, offer.ID, "oldest request wins")
	assert.Equal(t, models.TripStatusAssigned, offer.Status)
	assert.Equal(t, "driver-1", offer.DriverID)
	assert.NotNil(t, offer.AssignedAt)
	assert.Equal(t, 0.0, offer.ApproachDistanceKm, "driver polled from the pickup point")
	assert.Equal(t, 0.0, offer.ApproachFee)
}

func TestPendingOfferStampsApproach(t *testing.T) {
	svc := newService(t)
	createTrip(t, svc, "rider-1")

	// Poll from ~1 degree of longitude away, a bit over 100 km at this
	// latitude.
	far := models.Location{Latitude: 23.588, Longitude: 59.383}
	offer, err := svc.PendingOffer(context.Background(), "driver-1", far)

	require.NoError(t, err)
	require.NotNil(t, offer)
	assert.InDelta(t, 101.9, offer.ApproachDistanceKm, 0.5)
	assert.InDelta(t, offer.ApproachDistanceKm*0.5, offer.ApproachFee, 0.001)
}

func TestPendingOfferIsIdempotentWhileAssigned(t *testing.T) {
	svc := newService(t)
	trip := createTrip(t, svc, "rider-1")
	createTrip(t, svc, "rider-2")

	first := assignTrip(t, svc, "driver-1")
	second := assignTrip(t, svc, "driver-1")

	assert.Equal(t, trip.ID, first.ID)
	assert.Equal(t, first.ID, second.ID, "a repeat poll returns the same offer, never a second one")
}

func TestPendingOfferNoneMidTrip(t *testing.T) {
	svc := newService(t)
	trip := createTrip(t, svc, "rider-1")
	assignTrip(t, svc, "driver-1")
	_, err := svc.AcceptOffer(context.Background(), "driver-1", trip.ID, "")
	require.NoError(t, err)
	createTrip(t, svc, "rider-2")

	offer, err := svc.PendingOffer(context.Background(), "driver-1", pickup)

	require.NoError(t, err)
	assert.Nil(t, offer, "a driver mid-trip gets no offers")
}

func TestPendingOfferRaceHasOneWinner(t *testing.T) {
	svc := newService(t)
	createTrip(t, svc, "rider-1")

	results := make([]*models.Trip, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			driverID := []string{"driver-1", "driver-2"}[i]
			offer, err := svc.PendingOffer(context.Background(), driverID, pickup)
			assert.NoError(t, err)
			results[i] = offer
		}(i)
	}
	wg.Wait()

	won := 0
	for _, offer := range results {
		if offer != nil {
			won++
		}
	}
	assert.Equal(t, 1, won, "exactly one driver claims the trip")
}

func TestAcceptOfferByWrongDriver(t *testing.T) {
	svc := newService(t)
	trip := createTrip(t, svc, "rider-1")
	assignTrip(t, svc, "driver-1")

	_, err := svc.AcceptOffer(context.Background(), "driver-2", trip.ID, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrOfferTaken)
	assert.True(t, apperrors.IsConflict(err))
}

func TestDeclineReleasesOffer(t *testing.T) {
	svc := newService(t)
	trip := createTrip(t, svc, "rider-1")
	assignTrip(t, svc, "driver-1")

	require.NoError(t, svc.DeclineOffer(context.Background(), "driver-1", trip.ID, "too far"))

	released, err := svc.repo.Get(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TripStatusRequested, released.Status)
	assert.Empty(t, released.DriverID)
	assert.Nil(t, released.AssignedAt)
	assert.Equal(t, 0.0, released.ApproachFee)
	assert.Equal(t, 1, released.Reassignments)

	// The trip goes back on the market and the rider never lost it.
	next := assignTrip(t, svc, "driver-2")
	assert.Equal(t, trip.ID, next.ID)
	active, err := svc.ActiveTrip(context.Background(), "rider-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, trip.ID, active.ID)
}

func TestStartRequiresPickupConfirmation(t *testing.T) {
	svc := newService(t)
	trip := createTrip(t, svc, "rider-1")
	assignTrip(t, svc, "driver-1")
	_, err := svc.AcceptOffer(context.Background(), "driver-1", trip.ID, "")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), "driver-1", trip.ID, models.UpdateStatusRequest{
		Status: models.TripStatusStarted,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPickupNotConfirmed)

	_, err = svc.ConfirmPickup(context.Background(), "rider-1", trip.ID)
	require.NoError(t, err)

	started, err := svc.UpdateStatus(context.Background(), "driver-1", trip.ID, models.UpdateStatusRequest{
		Status: models.TripStatusStarted,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TripStatusStarted, started.Status)
	assert.NotNil(t, started.StartedAt)
}

func TestConfirmPickupBeforeAssignment(t *testing.T) {
	svc := newService(t)
	trip := createTrip(t, svc, "rider-1")

	_, err := svc.ConfirmPickup(context.Background(), "rider-1", trip.ID)

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

// runToStarted drives a fresh trip through assignment, acceptance,
// pickup confirmation, and start.
func runToStarted(t *testing.T, svc *TripService) *models.Trip {
	t.Helper()
	trip := createTrip(t, svc, "rider-1")
	assignTrip(t, svc, "driver-1")
	_, err := svc.AcceptOffer(context.Background(), "driver-1", trip.ID, "")
	require.NoError(t, err)
	_, err = svc.ConfirmPickup(context.Background(), "rider-1", trip.ID)
	require.NoError(t, err)
	started, err := svc.UpdateStatus(context.Background(), "driver-1", trip.ID, models.UpdateStatusRequest{
		Status: models.TripStatusStarted,
	})
	require.NoError(t, err)
	return started
}

func TestCompletionMath(t *testing.T) {
	svc := newService(t)
	trip := runToStarted(t, svc)

	completed, err := svc.UpdateStatus(context.Background(), "driver-1", trip.ID, models.UpdateStatusRequest{
		Status:         models.TripStatusCompleted,
		MeterCost:      12.3456,
		TripDistanceKm: 10.5,
		DurationS:      720,
	})

	require.NoError(t, err)
	assert.Equal(t, models.TripStatusCompleted, completed.Status)
	assert.Equal(t, 12.346, completed.MeterCost, "meter reading is rounded to 3 decimals")
	assert.Equal(t, 12.346, completed.TotalCost, "approach fee is zero; total is the rounded meter")
	assert.Equal(t, 10.5, completed.TripDistanceKm)
	assert.Equal(t, 720, completed.DurationS)
	assert.NotNil(t, completed.CompletedAt)
}

func TestCompleteByWrongDriver(t *testing.T) {
	svc := newService(t)
	trip := runToStarted(t, svc)

	_, err := svc.UpdateStatus(context.Background(), "driver-2", trip.ID, models.UpdateStatusRequest{
		Status:    models.TripStatusCompleted,
		MeterCost: 10,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTripNotFound)
	assert.True(t, apperrors.IsConflict(err))
}

func TestRiderStaysBoundUntilCompletionConfirmed(t *testing.T) {
	svc := newService(t)
	trip := runToStarted(t, svc)
	_, err := svc.UpdateStatus(context.Background(), "driver-1", trip.ID, models.UpdateStatusRequest{
		Status:    models.TripStatusCompleted,
		MeterCost: 10,
	})
	require.NoError(t, err)

	// Driver is released immediately and can take new work.
	byDriver, err := svc.ActiveTrip(context.Background(), "driver-1")
	require.NoError(t, err)
	assert.Nil(t, byDriver)

	// Rider still sees the completed trip until the handshake.
	byRider, err := svc.ActiveTrip(context.Background(), "rider-1")
	require.NoError(t, err)
	require.NotNil(t, byRider)
	assert.Equal(t, models.TripStatusCompleted, byRider.Status)

	require.NoError(t, svc.ConfirmCompletion(context.Background(), "rider-1", trip.ID))

	byRider, err = svc.ActiveTrip(context.Background(), "rider-1")
	require.NoError(t, err)
	assert.Nil(t, byRider, "confirmation releases the rider binding")
}

func TestRatingFlow(t *testing.T) {
	svc := newService(t)
	trip := runToStarted(t, svc)
	_, err := svc.UpdateStatus(context.Background(), "driver-1", trip.ID, models.UpdateStatusRequest{
		Status:    models.TripStatusCompleted,
		MeterCost: 10,
	})
	require.NoError(t, err)

	err = svc.RateTrip(context.Background(), "rider-1", trip.ID, 5, "")
	require.Error(t, err, "rating is gated on the completion handshake")
	assert.True(t, apperrors.IsValidation(err))

	require.NoError(t, svc.ConfirmCompletion(context.Background(), "rider-1", trip.ID))
	require.NoError(t, svc.RateTrip(context.Background(), "rider-1", trip.ID, 5, "smooth ride"))

	err = svc.RateTrip(context.Background(), "rider-1", trip.ID, 4, "second thoughts")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	stored, err := svc.repo.Get(context.Background(), trip.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Rating)
	assert.Equal(t, 5, *stored.Rating)
	assert.Equal(t, "smooth ride", stored.Review)
}

func TestRatingBounds(t *testing.T) {
	svc := newService(t)

	for _, rating := range []int{0, 6} {
		err := svc.RateTrip(context.Background(), "rider-1", "trip-1", rating, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRating)
	}
}

func TestCancelByEitherParty(t *testing.T) {
	svc := newService(t)

	riderTrip := createTrip(t, svc, "rider-1")
	require.NoError(t, svc.CancelTrip(context.Background(), "rider-1", riderTrip.ID, "waited too long"))
	cancelled, err := svc.repo.Get(context.Background(), riderTrip.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TripStatusCancelled, cancelled.Status)
	assert.Equal(t, "waited too long", cancelled.CancellationReason)

	driverTrip := createTrip(t, svc, "rider-2")
	offer, err := svc.PendingOffer(context.Background(), "driver-1", pickup)
	require.NoError(t, err)
	require.Equal(t, driverTrip.ID, offer.ID)
	require.NoError(t, svc.CancelTrip(context.Background(), "driver-1", driverTrip.ID, "vehicle breakdown"))
}

func TestCancelTerminalTrip(t *testing.T) {
	svc := newService(t)
	trip := createTrip(t, svc, "rider-1")
	require.NoError(t, svc.CancelTrip(context.Background(), "rider-1", trip.ID, ""))

	err := svc.CancelTrip(context.Background(), "rider-1", trip.ID, "again")

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrTerminalWrite)
	assert.True(t, apperrors.IsConflict(err))
}

func TestCancelByStranger(t *testing.T) {
	svc := newService(t)
	trip := createTrip(t, svc, "rider-1")

	err := svc.CancelTrip(context.Background(), "rider-9", trip.ID, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTripNotFound)
}

func TestUpdateStatusRejectsIndirectStatuses(t *testing.T) {
	svc := newService(t)
	trip := createTrip(t, svc, "rider-1")

	for _, status := range []models.TripStatus{models.TripStatusCancelled, models.TripStatusAssigned, models.TripStatusRequested} {
		_, err := svc.UpdateStatus(context.Background(), "driver-1", trip.ID, models.UpdateStatusRequest{Status: status})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	}
}

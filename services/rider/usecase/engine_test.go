package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/ridewire/ridewire/internal/pkg/apperrors"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/models"
	"github.com/ridewire/ridewire/internal/pkg/routing"
	"github.com/ridewire/ridewire/internal/pkg/scheduler"
	"github.com/ridewire/ridewire/services/rider/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *models.Config {
	return &models.Config{
		TripService: models.TripServiceConfig{
			UserID:  "rider-1",
			Timeout: time.Second,
		},
		Dispatch: models.DispatchConfig{
			ReconcileInterval: 3 * time.Second,
		},
		Retry: models.RetryConfig{
			MaxRetries: 2,
			BaseDelay:  time.Millisecond,
			MaxDelay:   2 * time.Millisecond,
			Multiplier: 1.5,
		},
		Pricing: models.PricingConfig{
			ApproachRatePerKm: 0.5,
			BaseFare:          5.0,
			RatePerKm:         2.5,
			Currency:          "OMR",
		},
	}
}

// newTestEngine builds the engine directly so the startup reconcile does
// not race the test's own expectations.
func newTestEngine(t *testing.T) (*riderEngine, *mocks.MockRiderGW) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	gw := mocks.NewMockRiderGW(ctrl)
	e := newEngine(testConfig(), gw, routing.NewHaversineEstimator(), logger.NewNopLogger())
	t.Cleanup(e.Shutdown)
	return e, gw
}

func tripRequest() models.CreateTripRequest {
	return models.CreateTripRequest{
		Pickup:      models.Location{Latitude: 23.588, Longitude: 58.383},
		Destination: models.Location{Latitude: 23.67, Longitude: 58.18},
	}
}

func serverTrip(id string, status models.TripStatus) *models.Trip {
	return &models.Trip{
		ID:            id,
		RiderID:       "rider-1",
		Pickup:        models.Location{Latitude: 23.588, Longitude: 58.383},
		Destination:   models.Location{Latitude: 23.67, Longitude: 58.18},
		Status:        status,
		RequestedAt:   time.Now(),
		EstimatedCost: 31.2,
	}
}

func TestRequestTripHappyPath(t *testing.T) {
	e, gw := newTestEngine(t)

	req := tripRequest()
	gw.EXPECT().CreateTrip(gomock.Any(), req).
		Return(serverTrip("trip-1", models.TripStatusRequested), nil).Times(1)

	require.NoError(t, e.RequestTrip(context.Background(), req))

	p := e.Projection()
	assert.Equal(t, "trip-1", p.TripID)
	assert.Equal(t, models.TripStatusRequested, p.Status)
	assert.Equal(t, 31.2, p.EstimatedCost)
	assert.True(t, e.sched.Active(scheduler.TimerReconcile))
}

func TestRequestTripRejectsInvalidCoordinates(t *testing.T) {
	e, _ := newTestEngine(t)

	err := e.RequestTrip(context.Background(), models.CreateTripRequest{
		Pickup:      models.Location{Latitude: 123, Longitude: 58},
		Destination: models.Location{Latitude: 23.67, Longitude: 58.18},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidLocation)
}

func TestRequestTripRejectsIdenticalEndpoints(t *testing.T) {
	e, _ := newTestEngine(t)

	loc := models.Location{Latitude: 23.588, Longitude: 58.383}
	err := e.RequestTrip(context.Background(), models.CreateTripRequest{
		Pickup:      loc,
		Destination: loc,
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRequestTripRefusesSecondActiveTrip(t *testing.T) {
	e, _ := newTestEngine(t)
	e.mu.Lock()
	e.trip = serverTrip("trip-1", models.TripStatusAccepted)
	e.mu.Unlock()

	err := e.RequestTrip(context.Background(), tripRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyHasActiveTrip)
}

func TestConfirmPickupFoldsServerState(t *testing.T) {
	e, gw := newTestEngine(t)
	e.mu.Lock()
	trip := serverTrip("trip-1", models.TripStatusAccepted)
	trip.DriverID = "driver-1"
	e.trip = trip
	e.mu.Unlock()

	confirmed := serverTrip("trip-1", models.TripStatusAccepted)
	confirmed.DriverID = "driver-1"
	confirmed.RiderConfirmedPickup = true
	gw.EXPECT().ConfirmPickup(gomock.Any(), "trip-1").Return(confirmed, nil).Times(1)

	require.NoError(t, e.ConfirmPickup(context.Background()))

	e.mu.Lock()
	assert.True(t, e.trip.RiderConfirmedPickup)
	e.mu.Unlock()
	assert.Equal(t, "pickup confirmed", e.Projection().Notice)
}

func TestConfirmPickupIdempotent(t *testing.T) {
	e, _ := newTestEngine(t)
	e.mu.Lock()
	trip := serverTrip("trip-1", models.TripStatusAccepted)
	trip.RiderConfirmedPickup = true
	e.trip = trip
	e.mu.Unlock()

	// No expectation: a repeat confirmation never hits the network.
	require.NoError(t, e.ConfirmPickup(context.Background()))
}

func TestConfirmPickupRequiresAcceptedTrip(t *testing.T) {
	e, _ := newTestEngine(t)
	e.mu.Lock()
	e.trip = serverTrip("trip-1", models.TripStatusRequested)
	e.mu.Unlock()

	err := e.ConfirmPickup(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoActiveTrip)
}

func TestReconcileNoticesCompletion(t *testing.T) {
	e, gw := newTestEngine(t)
	e.mu.Lock()
	started := serverTrip("trip-1", models.TripStatusStarted)
	started.DriverID = "driver-1"
	e.trip = started
	e.sched.Every(scheduler.TimerReconcile, e.cfg.Dispatch.ReconcileInterval, e.reconcile)
	e.mu.Unlock()

	completed := serverTrip("trip-1", models.TripStatusCompleted)
	completed.DriverID = "driver-1"
	completed.MeterCost = 30
	completed.TotalCost = 31.2
	gw.EXPECT().GetActiveTrip(gomock.Any()).Return(completed, nil).Times(1)

	e.reconcile()

	p := e.Projection()
	assert.Equal(t, models.TripStatusCompleted, p.Status)
	assert.True(t, p.AwaitingCompletion)
	assert.Equal(t, "driver completed the trip, please confirm", p.Notice)
	assert.False(t, e.sched.Active(scheduler.TimerReconcile), "confirmation is an explicit action, not a poll")
}

func TestReconcileNoticesAcceptance(t *testing.T) {
	e, gw := newTestEngine(t)
	e.mu.Lock()
	e.trip = serverTrip("trip-1", models.TripStatusRequested)
	e.mu.Unlock()

	accepted := serverTrip("trip-1", models.TripStatusAccepted)
	accepted.DriverID = "driver-1"
	gw.EXPECT().GetActiveTrip(gomock.Any()).Return(accepted, nil).Times(1)

	e.reconcile()

	p := e.Projection()
	assert.Equal(t, models.TripStatusAccepted, p.Status)
	assert.Equal(t, "driver-1", p.Counterpart)
	assert.Equal(t, "driver accepted, on the way", p.Notice)
}

func TestReconcileNoticesReassignment(t *testing.T) {
	e, gw := newTestEngine(t)
	e.mu.Lock()
	assigned := serverTrip("trip-1", models.TripStatusAssigned)
	assigned.DriverID = "driver-1"
	e.trip = assigned
	e.mu.Unlock()

	back := serverTrip("trip-1", models.TripStatusRequested)
	back.Reassignments = 1
	gw.EXPECT().GetActiveTrip(gomock.Any()).Return(back, nil).Times(1)

	e.reconcile()

	p := e.Projection()
	assert.Equal(t, models.TripStatusRequested, p.Status)
	assert.Empty(t, p.Counterpart)
	assert.Equal(t, "looking for another driver", p.Notice)
}

func TestReconcileNeverRegresses(t *testing.T) {
	e, gw := newTestEngine(t)
	e.mu.Lock()
	started := serverTrip("trip-1", models.TripStatusStarted)
	e.trip = started
	e.mu.Unlock()

	stale := serverTrip("trip-1", models.TripStatusAccepted)
	gw.EXPECT().GetActiveTrip(gomock.Any()).Return(stale, nil).Times(1)

	e.reconcile()

	assert.Equal(t, models.TripStatusStarted, e.Projection().Status)
}

func TestReconcileAdoptsAfterRestart(t *testing.T) {
	e, gw := newTestEngine(t)

	inFlight := serverTrip("trip-1", models.TripStatusStarted)
	inFlight.DriverID = "driver-1"
	gw.EXPECT().GetActiveTrip(gomock.Any()).Return(inFlight, nil).Times(1)

	e.reconcile()

	p := e.Projection()
	assert.Equal(t, "trip-1", p.TripID)
	assert.Equal(t, models.TripStatusStarted, p.Status)
	assert.True(t, e.sched.Active(scheduler.TimerReconcile))
}

func TestReconcileServerCancellation(t *testing.T) {
	e, gw := newTestEngine(t)
	e.mu.Lock()
	e.trip = serverTrip("trip-1", models.TripStatusAccepted)
	e.mu.Unlock()

	cancelled := serverTrip("trip-1", models.TripStatusCancelled)
	cancelled.CancellationReason = "driver cancelled: vehicle breakdown"
	gw.EXPECT().GetActiveTrip(gomock.Any()).Return(cancelled, nil).Times(1)

	e.reconcile()

	p := e.Projection()
	assert.Equal(t, models.TripStatusCancelled, p.Status)
	assert.Equal(t, "driver cancelled: vehicle breakdown", p.Notice)
	assert.False(t, e.sched.Active(scheduler.TimerReconcile))
}

func TestConfirmCompletionLiftsRatingGate(t *testing.T) {
	e, gw := newTestEngine(t)
	e.mu.Lock()
	e.trip = serverTrip("trip-1", models.TripStatusCompleted)
	e.awaitingCompletion = true
	e.mu.Unlock()

	gw.EXPECT().ConfirmCompletion(gomock.Any(), "trip-1").Return(nil).Times(1)
	gw.EXPECT().RateTrip(gomock.Any(), "trip-1", 5, "smooth ride").Return(nil).Times(1)

	require.NoError(t, e.ConfirmCompletion(context.Background()))
	assert.False(t, e.Projection().AwaitingCompletion)

	require.NoError(t, e.RateTrip(context.Background(), 5, "smooth ride"))
}

func TestConfirmCompletionIdempotent(t *testing.T) {
	e, _ := newTestEngine(t)
	e.mu.Lock()
	trip := serverTrip("trip-1", models.TripStatusCompleted)
	trip.RiderConfirmedCompletion = true
	e.trip = trip
	e.mu.Unlock()

	require.NoError(t, e.ConfirmCompletion(context.Background()))
}

func TestRateTripRequiresConfirmation(t *testing.T) {
	e, _ := newTestEngine(t)
	e.mu.Lock()
	e.trip = serverTrip("trip-1", models.TripStatusCompleted)
	e.awaitingCompletion = true
	e.mu.Unlock()

	err := e.RateTrip(context.Background(), 5, "")

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "confirm trip completion")
}

func TestRateTripBounds(t *testing.T) {
	e, _ := newTestEngine(t)

	for _, rating := range []int{0, 6, -1} {
		err := e.RateTrip(context.Background(), rating, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRating)
	}
}

func TestRateTripOnlyOnce(t *testing.T) {
	e, _ := newTestEngine(t)
	e.mu.Lock()
	trip := serverTrip("trip-1", models.TripStatusCompleted)
	trip.RiderConfirmedCompletion = true
	five := 5
	trip.Rating = &five
	e.trip = trip
	e.mu.Unlock()

	// Absorbed without a network call.
	require.NoError(t, e.RateTrip(context.Background(), 4, "changed my mind"))
}

func TestCancelTripStampsReason(t *testing.T) {
	e, gw := newTestEngine(t)
	e.mu.Lock()
	e.trip = serverTrip("trip-1", models.TripStatusRequested)
	e.mu.Unlock()

	gw.EXPECT().CancelTrip(gomock.Any(), "trip-1", "waited too long").Return(nil).Times(1)

	require.NoError(t, e.CancelTrip(context.Background(), "waited too long"))

	p := e.Projection()
	assert.Equal(t, models.TripStatusCancelled, p.Status)
	assert.Equal(t, "trip cancelled", p.Notice)
}

func TestCancelTerminalTripRejected(t *testing.T) {
	e, _ := newTestEngine(t)
	e.mu.Lock()
	e.trip = serverTrip("trip-1", models.TripStatusCompleted)
	e.mu.Unlock()

	err := e.CancelTrip(context.Background(), "")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoActiveTrip)
}

func TestListenersSeeProjectionsInOrder(t *testing.T) {
	e, _ := newTestEngine(t)

	var mu sync.Mutex
	var gens []uint64
	e.Subscribe(func(p models.TripProjection) {
		mu.Lock()
		gens = append(gens, p.Generation)
		mu.Unlock()
	})

	for i := 0; i < 3; i++ {
		e.mu.Lock()
		e.notifyLocked()
		e.mu.Unlock()
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(gens) >= 3
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(gens); i++ {
		assert.Greater(t, gens[i], gens[i-1], "a stale projection must never arrive after a newer one")
	}
}

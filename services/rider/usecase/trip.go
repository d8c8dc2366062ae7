package usecase

import (
	"context"

	"github.com/ridewire/ridewire/internal/pkg/apperrors"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/models"
	"github.com/ridewire/ridewire/internal/pkg/scheduler"
)

// RequestTrip creates a new trip. Coordinates are validated locally
// before any network call; a second active trip is refused without
// asking the server.
func (e *riderEngine) RequestTrip(ctx context.Context, req models.CreateTripRequest) error {
	if !req.Pickup.Valid() || !req.Destination.Valid() {
		return invalidLocationErr()
	}
	if req.Pickup.Latitude == req.Destination.Latitude &&
		req.Pickup.Longitude == req.Destination.Longitude {
		return apperrors.Newf(apperrors.ClassValidation, "pickup and destination must differ")
	}

	e.mu.Lock()
	if e.trip != nil && e.trip.Active() {
		e.mu.Unlock()
		return apperrors.New(apperrors.ClassConflict, apperrors.ErrAlreadyHasActiveTrip)
	}
	e.mu.Unlock()

	if !e.requestFlag.TryAcquire() {
		return nil
	}
	defer e.requestFlag.Release()

	var created *models.Trip
	err := e.retrier.Execute(ctx, func(ctx context.Context) error {
		trip, callErr := e.gw.CreateTrip(ctx, req)
		if callErr != nil {
			return callErr
		}
		created = trip
		return nil
	})
	if err != nil {
		if apperrors.IsConflict(err) {
			// The server already holds a trip for us; adopt it.
			e.reconcileSoon()
		}
		e.log.Error("Trip request failed", logger.Err(err))
		return err
	}

	e.mu.Lock()
	e.trip = created
	e.awaitingCompletion = false
	e.notice = ""
	e.sched.Every(scheduler.TimerReconcile, e.cfg.Dispatch.ReconcileInterval, e.reconcile)
	e.notifyLocked()
	e.mu.Unlock()

	e.log.Info("Trip requested",
		logger.String("trip_id", created.ID),
		logger.Float64("estimated_cost", created.EstimatedCost))
	return nil
}

// ConfirmPickup acknowledges the driver's arrival. The driver cannot
// start the trip until this lands.
func (e *riderEngine) ConfirmPickup(ctx context.Context) error {
	e.mu.Lock()
	if e.trip == nil || e.trip.Status != models.TripStatusAccepted {
		e.mu.Unlock()
		return apperrors.New(apperrors.ClassValidation, apperrors.ErrNoActiveTrip)
	}
	if e.trip.RiderConfirmedPickup {
		e.mu.Unlock()
		return nil
	}
	tripID := e.trip.ID
	e.mu.Unlock()

	if !e.confirmFlag.TryAcquire() {
		return nil
	}
	defer e.confirmFlag.Release()

	var confirmed *models.Trip
	err := e.retrier.Execute(ctx, func(ctx context.Context) error {
		trip, callErr := e.gw.ConfirmPickup(ctx, tripID)
		if callErr != nil {
			return callErr
		}
		confirmed = trip
		return nil
	})
	if err != nil {
		if apperrors.IsConflict(err) {
			e.reconcileSoon()
		}
		e.log.Error("Pickup confirmation failed", logger.String("trip_id", tripID), logger.Err(err))
		return err
	}

	e.mu.Lock()
	e.foldLocked(confirmed)
	e.notice = "pickup confirmed"
	e.notifyLocked()
	e.mu.Unlock()
	e.log.Info("Pickup confirmed", logger.String("trip_id", tripID))
	return nil
}

// ConfirmCompletion acknowledges the driver's completion report and
// lifts the rating gate.
func (e *riderEngine) ConfirmCompletion(ctx context.Context) error {
	e.mu.Lock()
	if e.trip == nil || e.trip.Status != models.TripStatusCompleted {
		e.mu.Unlock()
		return apperrors.New(apperrors.ClassValidation, apperrors.ErrNoActiveTrip)
	}
	if e.trip.RiderConfirmedCompletion {
		e.mu.Unlock()
		return nil
	}
	tripID := e.trip.ID
	e.mu.Unlock()

	if !e.completeFlag.TryAcquire() {
		return nil
	}
	defer e.completeFlag.Release()

	err := e.retrier.Execute(ctx, func(ctx context.Context) error {
		return e.gw.ConfirmCompletion(ctx, tripID)
	})
	if err != nil {
		if apperrors.IsConflict(err) {
			e.reconcileSoon()
		}
		e.log.Error("Completion confirmation failed", logger.String("trip_id", tripID), logger.Err(err))
		return err
	}

	e.mu.Lock()
	if e.trip != nil && e.trip.ID == tripID {
		now := nowFn()
		e.trip.RiderConfirmedCompletion = true
		e.trip.RiderConfirmedCompletionAt = &now
	}
	e.awaitingCompletion = false
	e.sched.Stop(scheduler.TimerReconcile)
	e.notice = "trip completed"
	e.notifyLocked()
	e.mu.Unlock()
	e.log.Info("Completion confirmed", logger.String("trip_id", tripID))
	return nil
}

// CancelTrip cancels the trip with an optional reason
func (e *riderEngine) CancelTrip(ctx context.Context, reason string) error {
	e.mu.Lock()
	if e.trip == nil || e.trip.Status.IsTerminal() {
		e.mu.Unlock()
		return apperrors.New(apperrors.ClassValidation, apperrors.ErrNoActiveTrip)
	}
	tripID := e.trip.ID
	e.mu.Unlock()

	if !e.cancelFlag.TryAcquire() {
		return nil
	}
	defer e.cancelFlag.Release()

	err := e.retrier.Execute(ctx, func(ctx context.Context) error {
		return e.gw.CancelTrip(ctx, tripID, reason)
	})
	if err != nil {
		if apperrors.IsConflict(err) {
			e.reconcileSoon()
		}
		e.log.Error("Cancel trip failed", logger.String("trip_id", tripID), logger.Err(err))
		return err
	}

	e.mu.Lock()
	if e.trip != nil && e.trip.ID == tripID && e.trip.Active() {
		e.trip.Status = models.TripStatusCancelled
		e.trip.CancellationReason = reason
		now := nowFn()
		e.trip.CancelledAt = &now
	}
	e.sched.Stop(scheduler.TimerReconcile)
	e.awaitingCompletion = false
	e.notice = "trip cancelled"
	e.notifyLocked()
	e.mu.Unlock()
	e.log.Info("Trip cancelled", logger.String("trip_id", tripID), logger.String("reason", reason))
	return nil
}

// RateTrip records a 1-5 rating with an optional review. Rating is only
// accepted once the rider has confirmed completion.
func (e *riderEngine) RateTrip(ctx context.Context, rating int, review string) error {
	if rating < 1 || rating > 5 {
		return apperrors.New(apperrors.ClassValidation, apperrors.ErrInvalidRating)
	}

	e.mu.Lock()
	if e.trip == nil || e.trip.Status != models.TripStatusCompleted {
		e.mu.Unlock()
		return apperrors.New(apperrors.ClassValidation, apperrors.ErrNoActiveTrip)
	}
	if !e.trip.RiderConfirmedCompletion {
		e.mu.Unlock()
		return apperrors.Newf(apperrors.ClassValidation, "confirm trip completion before rating")
	}
	if e.trip.Rating != nil {
		e.mu.Unlock()
		return nil
	}
	tripID := e.trip.ID
	e.mu.Unlock()

	if !e.rateFlag.TryAcquire() {
		return nil
	}
	defer e.rateFlag.Release()

	err := e.retrier.Execute(ctx, func(ctx context.Context) error {
		return e.gw.RateTrip(ctx, tripID, rating, review)
	})
	if err != nil {
		e.log.Error("Rating failed", logger.String("trip_id", tripID), logger.Err(err))
		return err
	}

	e.mu.Lock()
	if e.trip != nil && e.trip.ID == tripID {
		r := rating
		e.trip.Rating = &r
		e.trip.Review = review
	}
	e.notice = "thanks for the rating"
	e.notifyLocked()
	e.mu.Unlock()
	e.log.Info("Trip rated", logger.String("trip_id", tripID), logger.Int("rating", rating))
	return nil
}

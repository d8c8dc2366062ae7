package usecase

import (
	"context"
	"errors"

	"github.com/ridewire/ridewire/internal/pkg/apperrors"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/models"
	"github.com/ridewire/ridewire/internal/pkg/scheduler"
)

// StartTrip asks the server to move the trip to started. If the rider
// has not confirmed pickup yet the call fails with the distinguishable
// not-yet-confirmed condition and the engine drops into a short
// confirmation-wait poll until the flag flips.
func (e *driverEngine) StartTrip(ctx context.Context) error {
	e.mu.Lock()
	if e.trip == nil || e.trip.Status != models.TripStatusAccepted {
		e.mu.Unlock()
		return apperrors.New(apperrors.ClassValidation, apperrors.ErrNoActiveTrip)
	}
	tripID := e.trip.ID
	e.mu.Unlock()

	if !e.startFlag.TryAcquire() {
		return nil
	}
	defer e.startFlag.Release()

	var started *models.Trip
	err := e.retrier.Execute(ctx, func(ctx context.Context) error {
		trip, callErr := e.gw.UpdateStatus(ctx, tripID, models.UpdateStatusRequest{
			Status: models.TripStatusStarted,
		})
		if callErr != nil {
			return callErr
		}
		started = trip
		return nil
	})

	if err == nil {
		e.mu.Lock()
		e.foldLocked(started)
		e.awaitingPickup = false
		e.sched.Stop(scheduler.TimerConfirmWait)
		e.sched.Every(scheduler.TimerMeter, e.cfg.Dispatch.MeterTickInterval, e.meterTick)
		e.notice = ""
		e.notifyLocked()
		e.mu.Unlock()
		e.log.Info("Trip started", logger.String("trip_id", tripID))
		return nil
	}

	if errors.Is(err, apperrors.ErrPickupNotConfirmed) {
		e.mu.Lock()
		e.awaitingPickup = true
		if !e.sched.Active(scheduler.TimerConfirmWait) {
			e.sched.Every(scheduler.TimerConfirmWait, e.cfg.Dispatch.ConfirmWaitInterval, e.confirmWaitTick)
		}
		e.notifyLocked()
		e.mu.Unlock()
		return err
	}

	if apperrors.IsConflict(err) {
		e.reconcileSoon()
	}
	e.log.Error("Start trip failed", logger.String("trip_id", tripID), logger.Err(err))
	return err
}

// confirmWaitTick polls the canonical record every two seconds while the
// start action is blocked on the pickup handshake.
func (e *driverEngine) confirmWaitTick() {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.TripService.Timeout)
	defer cancel()

	server, err := e.gw.GetActiveTrip(ctx)
	if err != nil {
		e.log.Warn("Confirmation-wait poll failed", logger.Err(err))
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.trip == nil {
		e.sched.Stop(scheduler.TimerConfirmWait)
		return
	}
	if server == nil {
		return
	}
	e.foldLocked(server)
	if e.trip != nil && e.trip.RiderConfirmedPickup {
		e.awaitingPickup = false
		e.sched.Stop(scheduler.TimerConfirmWait)
		e.notice = "rider confirmed pickup"
		e.notifyLocked()
	}
}

// meterTick accumulates trip duration once per second while the trip is
// running. Distance accrues from location updates, not from the tick.
func (e *driverEngine) meterTick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.trip == nil || e.trip.Status != models.TripStatusStarted {
		e.sched.Stop(scheduler.TimerMeter)
		return
	}
	e.trip.DurationS++
	e.notifyLocked()
}

// CompleteTrip reports the trip finished with the driver-entered meter
// reading. The final total is the approach fee plus the meter reading;
// the estimate is replaced outright.
func (e *driverEngine) CompleteTrip(ctx context.Context, meterCost float64) error {
	if meterCost < 0 {
		return apperrors.Newf(apperrors.ClassValidation, "meter cost must not be negative")
	}

	e.mu.Lock()
	if e.trip == nil || e.trip.Status != models.TripStatusStarted {
		e.mu.Unlock()
		return apperrors.New(apperrors.ClassValidation, apperrors.ErrNoActiveTrip)
	}
	tripID := e.trip.ID
	req := models.UpdateStatusRequest{
		Status:         models.TripStatusCompleted,
		MeterCost:      meterCost,
		TripDistanceKm: e.trip.TripDistanceKm,
		DurationS:      e.trip.DurationS,
	}
	e.mu.Unlock()

	if !e.completeFlag.TryAcquire() {
		return nil
	}
	defer e.completeFlag.Release()

	var completed *models.Trip
	err := e.retrier.Execute(ctx, func(ctx context.Context) error {
		trip, callErr := e.gw.UpdateStatus(ctx, tripID, req)
		if callErr != nil {
			return callErr
		}
		completed = trip
		return nil
	})

	if err != nil {
		if apperrors.IsConflict(err) {
			e.reconcileSoon()
		}
		e.log.Error("Complete trip failed", logger.String("trip_id", tripID), logger.Err(err))
		return err
	}

	e.mu.Lock()
	e.foldLocked(completed)
	e.sched.Stop(scheduler.TimerMeter)
	e.sched.Stop(scheduler.TimerConfirmWait)
	e.sched.Stop(scheduler.TimerReconcile)
	e.notice = "trip completed"
	e.startDiscoveryLocked()
	e.notifyLocked()
	e.mu.Unlock()
	e.log.Info("Trip completed",
		logger.String("trip_id", tripID),
		logger.Float64("meter_cost", meterCost))
	return nil
}

// CancelTrip cancels the active trip with an optional reason. One
// directional: no handshake with the rider.
func (e *driverEngine) CancelTrip(ctx context.Context, reason string) error {
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
	e.resetTripLocked("trip cancelled")
	e.mu.Unlock()
	e.log.Info("Trip cancelled", logger.String("trip_id", tripID), logger.String("reason", reason))
	return nil
}

package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/ridewire/ridewire/internal/pkg/apperrors"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/models"
	"github.com/ridewire/ridewire/internal/pkg/scheduler"
)

// Accept accepts the pending offer. The call is single-flight: a second
// invocation while one is outstanding is a no-op. Transient failures are
// retried with exponential backoff; only after retries exhaust is the
// error surfaced and the countdown resumed.
func (e *driverEngine) Accept(ctx context.Context) error {
	e.mu.Lock()
	if e.trip == nil || e.trip.Status != models.TripStatusAssigned || e.offer == nil {
		e.mu.Unlock()
		return apperrors.New(apperrors.ClassValidation, apperrors.ErrNoPendingOffer)
	}
	if err := e.offer.Begin(models.OfferAccepting); err != nil {
		e.mu.Unlock()
		// Duplicate triggers are absorbed, not errors
		return nil
	}
	tripID := e.trip.ID
	remaining := e.sched.Remaining(scheduler.TimerCountdown)
	e.sched.Stop(scheduler.TimerCountdown)
	e.notifyLocked()
	e.mu.Unlock()

	var accepted *models.Trip
	err := e.retrier.Execute(ctx, func(ctx context.Context) error {
		trip, callErr := e.gw.AcceptOffer(ctx, tripID, "")
		if callErr != nil {
			return callErr
		}
		accepted = trip
		return nil
	})

	if err == nil {
		e.mu.Lock()
		e.offer.Resolve()
		e.foldLocked(accepted)
		e.awaitingPickup = accepted.Status == models.TripStatusAccepted && !accepted.RiderConfirmedPickup
		e.notice = ""
		e.notifyLocked()
		e.mu.Unlock()
		e.log.Info("Offer accepted", logger.String("trip_id", tripID))
		return nil
	}

	if apperrors.IsConflict(err) {
		// Someone else won or the rider withdrew; the offer is gone.
		e.log.Warn("Accept lost the offer", logger.String("trip_id", tripID), logger.Err(err))
		e.mu.Lock()
		e.offer.Resolve()
		e.resetTripLocked("offer no longer available")
		e.mu.Unlock()
		e.reconcileSoon()
		return err
	}

	// Exhausted transient (or auth): surface and resume the countdown
	// from where it stopped.
	e.log.Error("Accept failed after retries", logger.String("trip_id", tripID), logger.Err(err))
	e.mu.Lock()
	e.offer.Fail()
	if e.trip != nil && e.trip.ID == tripID {
		if remaining <= 0 {
			remaining = time.Millisecond
		}
		e.sched.After(scheduler.TimerCountdown, remaining, e.countdownExpired)
	}
	e.notifyLocked()
	e.mu.Unlock()
	return err
}

// Decline declines the pending offer. The locally-held offer is cleared
// before the network call, so a duplicate trigger cannot re-submit; a
// failed call is logged and never rolled back; the reconciler will
// notice if the server still thinks the offer is ours.
func (e *driverEngine) Decline(ctx context.Context, note string) error {
	return e.decline(ctx, note)
}

func (e *driverEngine) decline(ctx context.Context, note string) error {
	e.mu.Lock()
	if e.trip == nil || e.trip.Status != models.TripStatusAssigned || e.offer == nil {
		e.mu.Unlock()
		return apperrors.New(apperrors.ClassValidation, apperrors.ErrNoPendingOffer)
	}
	if err := e.offer.Begin(models.OfferDeclining); err != nil {
		e.mu.Unlock()
		return nil
	}
	tripID := e.trip.ID
	e.offer.Resolve()
	e.resetTripLocked("")
	e.mu.Unlock()

	if err := e.gw.DeclineOffer(ctx, tripID, note); err != nil {
		e.log.Warn("Decline call failed, local offer already discarded",
			logger.String("trip_id", tripID),
			logger.Err(err))
	} else {
		e.log.Info("Offer declined", logger.String("trip_id", tripID))
	}
	return nil
}

// countdownExpired fires when the acceptance deadline passes with no
// action. It auto-declines exactly once; an accept already in flight
// wins the race.
func (e *driverEngine) countdownExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.TripService.Timeout)
	defer cancel()

	if err := e.decline(ctx, "acceptance countdown expired"); err != nil {
		if !errors.Is(err, apperrors.ErrNoPendingOffer) {
			e.log.Warn("Countdown auto-decline failed", logger.Err(err))
		}
	}
}

package usecase

import (
	"context"
	"time"

	"github.com/ridewire/ridewire/internal/pkg/apperrors"
	"github.com/ridewire/ridewire/internal/pkg/guard"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/models"
	"github.com/ridewire/ridewire/internal/pkg/scheduler"
)

// startDiscoveryLocked starts the adaptive offer poll. The poller runs
// only while the driver is online with no trip in the mirror; every
// other state suspends it entirely.
func (e *driverEngine) startDiscoveryLocked() {
	if !e.online || (e.trip != nil && e.trip.Active()) {
		return
	}
	if e.sched.Active(scheduler.TimerDiscovery) {
		return
	}
	e.polls.Reset()
	e.sched.EveryFunc(scheduler.TimerDiscovery, e.polls.Current(), e.pollOnce)
}

// pollOnce performs one discovery poll and returns the next interval.
// Empty results widen the interval exponentially up to the cap; any hit
// or error-free offer resets it. Returning zero stops the loop.
func (e *driverEngine) pollOnce() time.Duration {
	e.mu.Lock()
	if !e.online || (e.trip != nil && e.trip.Active()) {
		e.mu.Unlock()
		return 0
	}
	loc := e.location
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.TripService.Timeout)
	defer cancel()

	offer, err := e.gw.GetPendingOffer(ctx, loc)
	if err != nil {
		return e.pollError(err)
	}
	if offer == nil {
		e.mu.Lock()
		next := e.polls.Miss()
		e.mu.Unlock()
		return next
	}

	e.adoptOffer(offer)
	return 0
}

// pollError classifies a failed poll. Transient and malformed responses
// are treated as misses so the loop keeps breathing; an auth failure is
// fatal to the session and stops discovery.
func (e *driverEngine) pollError(err error) time.Duration {
	switch apperrors.ClassOf(err) {
	case apperrors.ClassAuth:
		e.log.Error("Discovery poll rejected, session is no longer valid", logger.Err(err))
		e.mu.Lock()
		e.online = false
		e.notice = "session expired, sign in again"
		e.notifyLocked()
		e.mu.Unlock()
		return 0
	default:
		e.log.Warn("Discovery poll failed",
			logger.String("class", apperrors.ClassOf(err).String()),
			logger.Err(err))
		e.mu.Lock()
		next := e.polls.Miss()
		e.mu.Unlock()
		return next
	}
}

// adoptOffer installs a fresh offer in the mirror, arms the acceptance
// countdown, and starts the reconciler for the trip's lifetime.
func (e *driverEngine) adoptOffer(offer *models.Trip) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.trip != nil && e.trip.Active() {
		// A trip arrived through another path while this poll was in
		// flight; the poller result loses.
		return
	}

	e.trip = offer
	e.offer = guard.NewOfferGuard()
	e.awaitingPickup = false
	e.notice = ""
	e.polls.Reset()

	e.sched.After(scheduler.TimerCountdown, e.cfg.Dispatch.AcceptCountdown, e.countdownExpired)
	e.sched.Every(scheduler.TimerReconcile, e.cfg.Dispatch.ReconcileInterval, e.reconcile)

	e.log.Info("Offer received",
		logger.String("trip_id", offer.ID),
		logger.Float64("approach_km", offer.ApproachDistanceKm),
		logger.Duration("countdown", e.cfg.Dispatch.AcceptCountdown))
	e.notifyLocked()
}

package usecase

import (
	"context"

	"github.com/ridewire/ridewire/internal/pkg/apperrors"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/models"
	"github.com/ridewire/ridewire/internal/pkg/scheduler"
)

// reconcile folds the canonical record into the local mirror. It runs
// every three seconds while a trip is non-terminal and never regresses
// the lifecycle; an in-flight accept or decline takes precedence over
// whatever snapshot arrives.
func (e *driverEngine) reconcile() {
	e.mu.Lock()
	if e.trip == nil || !e.trip.Active() {
		e.sched.Stop(scheduler.TimerReconcile)
		e.mu.Unlock()
		return
	}
	if e.offer != nil && e.offer.InFlight() {
		e.mu.Unlock()
		return
	}
	localID := e.trip.ID
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.TripService.Timeout)
	defer cancel()

	server, err := e.gw.GetActiveTrip(ctx)
	if err != nil {
		if apperrors.IsAuth(err) {
			e.log.Error("Reconcile rejected, session is no longer valid", logger.Err(err))
			e.mu.Lock()
			e.notice = "session expired, sign in again"
			e.notifyLocked()
			e.mu.Unlock()
			return
		}
		// Transient and malformed responses leave local state alone;
		// the loop keeps running.
		e.log.Warn("Reconcile poll failed",
			logger.String("class", apperrors.ClassOf(err).String()),
			logger.Err(err))
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.trip == nil || e.trip.ID != localID || !e.trip.Active() {
		return
	}
	if e.offer != nil && e.offer.InFlight() {
		return
	}

	if server == nil {
		// The server no longer ties us to this trip.
		if e.trip.Status == models.TripStatusAssigned {
			e.log.Info("Offer withdrawn server-side", logger.String("trip_id", localID))
			e.resetTripLocked("offer reassigned to another driver")
		} else {
			e.log.Warn("Active trip vanished server-side", logger.String("trip_id", localID))
			e.resetTripLocked("trip is no longer active")
		}
		return
	}

	if server.ID != localID {
		// A different trip; let discovery handle it once this one ends.
		return
	}

	if server.Status == models.TripStatusCancelled {
		reason := server.CancellationReason
		if reason == "" {
			reason = "trip cancelled"
		}
		e.log.Info("Trip cancelled server-side",
			logger.String("trip_id", localID),
			logger.String("reason", reason))
		e.resetTripLocked(reason)
		return
	}

	prevStatus := e.trip.Status
	prevConfirmed := e.trip.RiderConfirmedPickup
	e.foldLocked(server)

	if e.awaitingPickup && e.trip.RiderConfirmedPickup {
		e.awaitingPickup = false
		e.sched.Stop(scheduler.TimerConfirmWait)
		e.notice = "rider confirmed pickup"
	}
	if e.trip.Status != prevStatus || e.trip.RiderConfirmedPickup != prevConfirmed {
		e.notifyLocked()
	}
}

// reconcileSoon schedules one immediate reconcile pass, used after a
// conflict told us the server knows something we don't.
func (e *driverEngine) reconcileSoon() {
	go e.reconcile()
}

// foldLocked merges a server snapshot into the mirror. Status only
// moves forward; client-side accumulators survive the merge when they
// are ahead of the server's copy.
func (e *driverEngine) foldLocked(server *models.Trip) {
	if server == nil {
		return
	}
	if e.trip == nil || !e.trip.Active() {
		snapshot := *server
		e.trip = &snapshot
		return
	}
	if e.trip.ID != server.ID {
		return
	}
	if server.Status.Rank() < e.trip.Status.Rank() &&
		!models.IsReassignment(e.trip.Status, server.Status) {
		// Stale snapshot; never regress.
		return
	}

	snapshot := *server
	if e.trip.TripDistanceKm > snapshot.TripDistanceKm {
		snapshot.TripDistanceKm = e.trip.TripDistanceKm
	}
	if e.trip.DurationS > snapshot.DurationS {
		snapshot.DurationS = e.trip.DurationS
	}
	e.trip = &snapshot
}

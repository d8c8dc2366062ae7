package usecase

import (
	"context"

	"github.com/ridewire/ridewire/internal/pkg/apperrors"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/models"
	"github.com/ridewire/ridewire/internal/pkg/scheduler"
)

// reconcile folds the canonical record into the local mirror. The rider
// side has no offer guard; the loop's job is to notice what the driver
// did: assignment, acceptance, start, completion, cancellation.
func (e *riderEngine) reconcile() {
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
		e.log.Warn("Reconcile poll failed",
			logger.String("class", apperrors.ClassOf(err).String()),
			logger.Err(err))
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if server == nil {
		if e.trip != nil && e.trip.Active() {
			e.log.Warn("Active trip vanished server-side", logger.String("trip_id", e.trip.ID))
			e.resetTripLocked("trip is no longer active")
		} else {
			e.sched.Stop(scheduler.TimerReconcile)
		}
		return
	}

	if e.trip == nil || !e.trip.Active() {
		// A restarted client re-adopts its in-flight trip.
		snapshot := *server
		e.trip = &snapshot
		e.awaitingCompletion = server.Status == models.TripStatusCompleted &&
			!server.RiderConfirmedCompletion
		if !e.sched.Active(scheduler.TimerReconcile) && server.Active() {
			e.sched.Every(scheduler.TimerReconcile, e.cfg.Dispatch.ReconcileInterval, e.reconcile)
		}
		e.log.Info("Adopted active trip",
			logger.String("trip_id", server.ID),
			logger.String("status", string(server.Status)))
		e.notifyLocked()
		return
	}

	if server.ID != e.trip.ID {
		return
	}

	prevStatus := e.trip.Status
	prevDriver := e.trip.DriverID
	e.foldLocked(server)

	switch {
	case e.trip.Status == models.TripStatusCancelled && prevStatus != models.TripStatusCancelled:
		reason := e.trip.CancellationReason
		if reason == "" {
			reason = "trip cancelled"
		}
		e.notice = reason
		e.awaitingCompletion = false
		e.sched.Stop(scheduler.TimerReconcile)
		e.notifyLocked()
	case e.trip.Status == models.TripStatusCompleted && prevStatus != models.TripStatusCompleted:
		// Driver reported completion; the rider still owes a confirmation.
		e.awaitingCompletion = !e.trip.RiderConfirmedCompletion
		if e.awaitingCompletion {
			e.notice = "driver completed the trip, please confirm"
		}
		e.sched.Stop(scheduler.TimerReconcile)
		e.notifyLocked()
	case e.trip.Status == models.TripStatusAccepted && prevStatus != models.TripStatusAccepted:
		e.notice = "driver accepted, on the way"
		e.notifyLocked()
	case e.trip.DriverID != prevDriver && e.trip.DriverID == "":
		e.notice = "looking for another driver"
		e.notifyLocked()
	case e.trip.Status != prevStatus:
		e.notifyLocked()
	}
}

// reconcileSoon schedules one immediate reconcile pass
func (e *riderEngine) reconcileSoon() {
	go e.reconcile()
}

// foldLocked merges a server snapshot into the mirror, forward-only by
// lifecycle rank. The reassignment back-edge is the one permitted
// regression.
func (e *riderEngine) foldLocked(server *models.Trip) {
	if server == nil || e.trip == nil || e.trip.ID != server.ID {
		return
	}
	if server.Status.Rank() < e.trip.Status.Rank() &&
		!models.IsReassignment(e.trip.Status, server.Status) {
		return
	}
	snapshot := *server
	e.trip = &snapshot
}

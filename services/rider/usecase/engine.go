package usecase

import (
	"sync"

	"github.com/ridewire/ridewire/internal/pkg/guard"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/models"
	"github.com/ridewire/ridewire/internal/pkg/pricing"
	"github.com/ridewire/ridewire/internal/pkg/retry"
	"github.com/ridewire/ridewire/internal/pkg/routing"
	"github.com/ridewire/ridewire/internal/pkg/scheduler"
	"github.com/ridewire/ridewire/services/rider"
)

// riderEngine runs the rider side of the dispatch protocol: trip
// creation, the pickup and completion handshakes, and the status
// reconciler that notices what the driver did.
type riderEngine struct {
	cfg     *models.Config
	gw      rider.RiderGW
	routes  routing.Provider
	sched   *scheduler.Scheduler
	retrier *retry.Retrier
	fares   pricing.Schedule
	log     *logger.ZapLogger

	mu sync.Mutex

	// trip mirrors the canonical record; it only moves forward.
	trip *models.Trip
	// awaitingCompletion flips on when the driver completed the trip
	// before the rider confirmed it. Rating is gated behind it.
	awaitingCompletion bool

	requestFlag  guard.Flag
	confirmFlag  guard.Flag
	completeFlag guard.Flag
	cancelFlag   guard.Flag
	rateFlag     guard.Flag

	generation uint64
	notice     string
	listeners  []func(models.TripProjection)

	notifyCh chan models.TripProjection
	done     chan struct{}
	stopOnce sync.Once
}

// NewRiderEngine creates the rider client engine. It immediately asks
// the server for an active trip so a restarted client re-adopts whatever
// it was in the middle of.
func NewRiderEngine(
	cfg *models.Config,
	gw rider.RiderGW,
	routes routing.Provider,
	log *logger.ZapLogger,
) rider.RiderUC {
	e := newEngine(cfg, gw, routes, log)
	e.reconcileSoon()
	return e
}

func newEngine(
	cfg *models.Config,
	gw rider.RiderGW,
	routes routing.Provider,
	log *logger.ZapLogger,
) *riderEngine {
	e := &riderEngine{
		cfg:      cfg,
		gw:       gw,
		routes:   routes,
		sched:    scheduler.New(log),
		retrier:  retry.New(retry.FromRetryConfig(cfg.Retry), log),
		fares:    pricing.FromConfig(cfg.Pricing),
		log:      log,
		notifyCh: make(chan models.TripProjection, 64),
		done:     make(chan struct{}),
	}
	go e.dispatch()
	return e
}

// Projection returns the UI view of the engine state
func (e *riderEngine) Projection() models.TripProjection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.projectionLocked()
}

// Subscribe registers a listener invoked on every projection change
func (e *riderEngine) Subscribe(fn func(models.TripProjection)) {
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

// Shutdown cancels every timer the engine owns and stops the dispatcher
func (e *riderEngine) Shutdown() {
	e.sched.Shutdown()
	e.stopOnce.Do(func() { close(e.done) })
}

func (e *riderEngine) projectionLocked() models.TripProjection {
	p := models.TripProjection{
		AwaitingCompletion: e.awaitingCompletion,
		Notice:             e.notice,
		Generation:         e.generation,
		UpdatedAt:          nowFn(),
	}
	if t := e.trip; t != nil {
		p.TripID = t.ID
		p.Status = t.Status
		p.Counterpart = t.DriverID
		pickup, dest := t.Pickup, t.Destination
		p.Pickup = &pickup
		p.Destination = &dest
		p.ApproachDistanceKm = t.ApproachDistanceKm
		p.ApproachFee = t.ApproachFee
		p.EstimatedCost = t.EstimatedCost
		p.MeterCost = t.MeterCost
		p.TotalCost = t.TotalCost
		p.TripDistanceKm = t.TripDistanceKm
		p.DurationS = t.DurationS
	}
	return p
}

// notifyLocked bumps the generation and queues the fresh projection for
// the dispatcher. Callers hold e.mu, which makes this the sole producer;
// delivery happens off the lock, in generation order. Every projection
// is a full snapshot, so when the queue backs up the oldest one gives
// way.
func (e *riderEngine) notifyLocked() {
	e.generation++
	proj := e.projectionLocked()
	for {
		select {
		case e.notifyCh <- proj:
			return
		default:
			select {
			case <-e.notifyCh:
			default:
			}
		}
	}
}

// dispatch delivers queued projections to listeners one at a time
func (e *riderEngine) dispatch() {
	for {
		select {
		case proj := <-e.notifyCh:
			e.mu.Lock()
			listeners := make([]func(models.TripProjection), len(e.listeners))
			copy(listeners, e.listeners)
			e.mu.Unlock()
			for _, fn := range listeners {
				fn(proj)
			}
		case <-e.done:
			return
		}
	}
}

// resetTripLocked tears the reconcile loop down and clears the mirror
func (e *riderEngine) resetTripLocked(notice string) {
	e.sched.Stop(scheduler.TimerReconcile)
	e.trip = nil
	e.awaitingCompletion = false
	e.notice = notice
	e.notifyLocked()
}

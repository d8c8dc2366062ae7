package usecase

import (
	"context"
	"sync"

	"github.com/ridewire/ridewire/internal/pkg/backoff"
	"github.com/ridewire/ridewire/internal/pkg/guard"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/models"
	"github.com/ridewire/ridewire/internal/pkg/pricing"
	"github.com/ridewire/ridewire/internal/pkg/retry"
	"github.com/ridewire/ridewire/internal/pkg/routing"
	"github.com/ridewire/ridewire/internal/pkg/scheduler"
	"github.com/ridewire/ridewire/services/driver"
)

// driverEngine runs the driver side of the dispatch protocol: discovery
// polling, the acceptance countdown, guarded actions, and the status
// reconciler. All timers live in one scheduler owned by the engine.
type driverEngine struct {
	cfg     *models.Config
	gw      driver.TripGW
	routes  routing.Provider
	sched   *scheduler.Scheduler
	retrier *retry.Retrier
	fares   pricing.Schedule
	log     *logger.ZapLogger

	mu       sync.Mutex
	online   bool
	location models.Location

	// trip is the local mirror of the canonical record. It only moves
	// forward; the offer guard takes precedence over reconcile reads.
	trip           *models.Trip
	offer          *guard.OfferGuard
	awaitingPickup bool

	startFlag    guard.Flag
	completeFlag guard.Flag
	cancelFlag   guard.Flag

	polls      *backoff.Counter
	generation uint64
	notice     string
	listeners  []func(models.TripProjection)

	notifyCh chan models.TripProjection
	done     chan struct{}
	stopOnce sync.Once
}

// NewDriverEngine creates the driver client engine
func NewDriverEngine(
	cfg *models.Config,
	gw driver.TripGW,
	routes routing.Provider,
	log *logger.ZapLogger,
) driver.DriverUC {
	e := &driverEngine{
		cfg:     cfg,
		gw:      gw,
		routes:  routes,
		sched:   scheduler.New(log),
		retrier: retry.New(retry.FromRetryConfig(cfg.Retry), log),
		fares:   pricing.FromConfig(cfg.Pricing),
		log:     log,
		polls: backoff.NewCounter(backoff.Policy{
			Min:      cfg.Dispatch.MinPollInterval,
			Max:      cfg.Dispatch.MaxPollInterval,
			Factor:   cfg.Dispatch.PollBackoffFactor,
			MaxSteps: cfg.Dispatch.PollBackoffSteps,
		}),
		notifyCh: make(chan models.TripProjection, 64),
		done:     make(chan struct{}),
	}
	go e.dispatch()
	return e
}

// GoOnline marks the driver available and starts the discovery poller
func (e *driverEngine) GoOnline(ctx context.Context) error {
	e.mu.Lock()
	e.online = true
	e.notice = ""
	e.startDiscoveryLocked()
	e.notifyLocked()
	e.mu.Unlock()
	return nil
}

// GoOffline suspends discovery entirely. Timers belonging to an active
// trip keep running; only the offer poll stops.
func (e *driverEngine) GoOffline(ctx context.Context) error {
	e.mu.Lock()
	e.online = false
	e.sched.Stop(scheduler.TimerDiscovery)
	e.notifyLocked()
	e.mu.Unlock()
	return nil
}

// UpdateLocation records the driver position. While a trip is running
// the travelled leg feeds the distance accumulator.
func (e *driverEngine) UpdateLocation(ctx context.Context, loc models.Location) error {
	if !loc.Valid() {
		return invalidLocationErr()
	}
	e.mu.Lock()
	prev := e.location
	e.location = loc
	if e.trip != nil && e.trip.Status == models.TripStatusStarted && prev.Valid() {
		e.accumulateLegLocked(prev, loc)
	}
	e.mu.Unlock()
	return nil
}

// Projection returns the UI view of the engine state
func (e *driverEngine) Projection() models.TripProjection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.projectionLocked()
}

// Subscribe registers a listener invoked on every projection change
func (e *driverEngine) Subscribe(fn func(models.TripProjection)) {
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

// Shutdown cancels every timer the engine owns and stops the dispatcher
func (e *driverEngine) Shutdown() {
	e.sched.Shutdown()
	e.stopOnce.Do(func() { close(e.done) })
}

func (e *driverEngine) projectionLocked() models.TripProjection {
	p := models.TripProjection{
		Online:         e.online,
		AwaitingPickup: e.awaitingPickup,
		Notice:         e.notice,
		Generation:     e.generation,
		UpdatedAt:      nowFn(),
	}
	if e.offer != nil {
		p.OfferState = e.offer.State().String()
	}
	if t := e.trip; t != nil {
		p.TripID = t.ID
		p.Status = t.Status
		p.Counterpart = t.RiderID
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
		if t.Status == models.TripStatusAssigned {
			p.CountdownRemaining = e.sched.Remaining(scheduler.TimerCountdown)
		}
	}
	return p
}

// notifyLocked bumps the generation and queues the fresh projection for
// the dispatcher. Callers hold e.mu, which makes this the sole producer;
// delivery happens off the lock, in generation order. Every projection
// is a full snapshot, so when the queue backs up the oldest one gives
// way.
func (e *driverEngine) notifyLocked() {
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
func (e *driverEngine) dispatch() {
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

// accumulateLegLocked folds one travelled leg into the running meter
func (e *driverEngine) accumulateLegLocked(from, to models.Location) {
	leg := distanceFn(from, to)
	e.trip.TripDistanceKm += leg
	e.trip.EstimatedCost = e.fares.MeterEstimate(e.trip.TripDistanceKm)
	e.notifyLocked()
}

// resetTripLocked tears down every trip-scoped timer and clears the
// mirror. Used on cancellation and when the server forgets us.
func (e *driverEngine) resetTripLocked(notice string) {
	e.sched.Stop(scheduler.TimerCountdown)
	e.sched.Stop(scheduler.TimerReconcile)
	e.sched.Stop(scheduler.TimerConfirmWait)
	e.sched.Stop(scheduler.TimerMeter)
	e.trip = nil
	e.offer = nil
	e.awaitingPickup = false
	e.notice = notice
	e.startDiscoveryLocked()
	e.notifyLocked()
}

// Package scheduler owns every timer a client session runs. Timers are
// registered under typed names and torn down together, so no interval can
// outlive the trip or the session it belongs to.
package scheduler

import (
	"sync"
	"time"

	"github.com/ridewire/ridewire/internal/pkg/logger"
)

// TimerName identifies one of the engine's timer loops
type TimerName string

const (
	TimerDiscovery   TimerName = "discovery"
	TimerCountdown   TimerName = "countdown"
	TimerReconcile   TimerName = "reconcile"
	TimerConfirmWait TimerName = "confirm_wait"
	TimerMeter       TimerName = "meter"
)

type handle struct {
	cancel   chan struct{}
	deadline time.Time // set for one-shot timers only
}

// Scheduler is an owned arena of named timers. Starting a name that is
// already running replaces the old timer. Shutdown cancels everything
// deterministically.
type Scheduler struct {
	mu     sync.Mutex
	log    *logger.ZapLogger
	timers map[TimerName]*handle
	closed bool
}

// New creates an empty scheduler
func New(log *logger.ZapLogger) *Scheduler {
	return &Scheduler{
		log:    log,
		timers: make(map[TimerName]*handle),
	}
}

// Every runs fn repeatedly at a fixed interval until the timer is stopped
func (s *Scheduler) Every(name TimerName, interval time.Duration, fn func()) {
	s.EveryFunc(name, interval, func() time.Duration {
		fn()
		return interval
	})
}

// EveryFunc runs fn repeatedly, waiting after each run for the interval
// fn returns. Returning zero or a negative interval stops the loop. This
// is how the discovery poller widens and resets its own cadence.
func (s *Scheduler) EveryFunc(name TimerName, initial time.Duration, fn func() time.Duration) {
	h := s.register(name)
	if h == nil {
		return
	}

	go func() {
		interval := initial
		timer := time.NewTimer(interval)
		defer timer.Stop()
		for {
			select {
			case <-h.cancel:
				return
			case <-timer.C:
			}
			interval = fn()
			if interval <= 0 {
				s.remove(name, h)
				return
			}
			timer.Reset(interval)
		}
	}()
}

// After runs fn once after d unless the timer is stopped first
func (s *Scheduler) After(name TimerName, d time.Duration, fn func()) {
	h := s.register(name)
	if h == nil {
		return
	}
	h.deadline = time.Now().Add(d)

	go func() {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-h.cancel:
			return
		case <-timer.C:
		}
		s.remove(name, h)
		fn()
	}()
}

// Stop cancels the named timer, reporting whether one was running
func (s *Scheduler) Stop(name TimerName) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.timers[name]
	if !ok {
		return false
	}
	close(h.cancel)
	delete(s.timers, name)
	return true
}

// Active reports whether the named timer is running
func (s *Scheduler) Active(name TimerName) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[name]
	return ok
}

// Remaining returns how long until a one-shot timer fires, zero when the
// timer is not running.
func (s *Scheduler) Remaining(name TimerName) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.timers[name]
	if !ok || h.deadline.IsZero() {
		return 0
	}
	d := time.Until(h.deadline)
	if d < 0 {
		return 0
	}
	return d
}

// Shutdown cancels every timer. The scheduler accepts no new timers
// afterwards.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for name, h := range s.timers {
		close(h.cancel)
		delete(s.timers, name)
	}
	if s.log != nil {
		s.log.Debug("scheduler shut down")
	}
}

// register installs a fresh handle under name, cancelling any previous
// one. Returns nil when the scheduler is already shut down.
func (s *Scheduler) register(name TimerName) *handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if old, ok := s.timers[name]; ok {
		close(old.cancel)
	}
	h := &handle{cancel: make(chan struct{})}
	s.timers[name] = h
	return h
}

// remove clears name only if it still maps to h; a replacement timer
// registered meanwhile is left alone.
func (s *Scheduler) remove(name TimerName, h *handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.timers[name]; ok && cur == h {
		delete(s.timers, name)
	}
}

package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestAfterFiresOnce(t *testing.T) {
	s := New(logger.NewNopLogger())
	defer s.Shutdown()

	var fired int32
	s.After(TimerCountdown, 10*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
	assert.False(t, s.Active(TimerCountdown))
}

func TestStopPreventsFiring(t *testing.T) {
	s := New(logger.NewNopLogger())
	defer s.Shutdown()

	var fired int32
	s.After(TimerCountdown, 50*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})
	assert.True(t, s.Stop(TimerCountdown))

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
}

func TestEveryRepeats(t *testing.T) {
	s := New(logger.NewNopLogger())
	defer s.Shutdown()

	var ticks int32
	s.Every(TimerReconcile, 10*time.Millisecond, func() {
		atomic.AddInt32(&ticks, 1)
	})

	time.Sleep(100 * time.Millisecond)
	s.Stop(TimerReconcile)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&ticks), int32(3))
}

func TestEveryFuncAdjustsInterval(t *testing.T) {
	s := New(logger.NewNopLogger())
	defer s.Shutdown()

	var ticks int32
	s.EveryFunc(TimerDiscovery, 5*time.Millisecond, func() time.Duration {
		n := atomic.AddInt32(&ticks, 1)
		if n >= 3 {
			return 0 // stop ourselves
		}
		return 5 * time.Millisecond
	})

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(3), atomic.LoadInt32(&ticks))
	assert.False(t, s.Active(TimerDiscovery))
}

func TestRegisterReplacesSameName(t *testing.T) {
	s := New(logger.NewNopLogger())
	defer s.Shutdown()

	var first, second int32
	s.After(TimerCountdown, 30*time.Millisecond, func() {
		atomic.AddInt32(&first, 1)
	})
	s.After(TimerCountdown, 30*time.Millisecond, func() {
		atomic.AddInt32(&second, 1)
	})

	time.Sleep(110 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&first), "replaced timer must not fire")
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
}

func TestRemaining(t *testing.T) {
	s := New(logger.NewNopLogger())
	defer s.Shutdown()

	s.After(TimerCountdown, time.Minute, func() {})
	rem := s.Remaining(TimerCountdown)
	assert.Greater(t, rem, 55*time.Second)
	assert.LessOrEqual(t, rem, time.Minute)

	assert.Zero(t, s.Remaining(TimerMeter))
}

func TestShutdownCancelsEverything(t *testing.T) {
	s := New(logger.NewNopLogger())

	var fired int32
	s.After(TimerCountdown, 30*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	s.Every(TimerReconcile, 10*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })

	s.Shutdown()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))

	// A shut-down scheduler accepts no new timers.
	s.After(TimerMeter, time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
	assert.False(t, s.Active(TimerMeter))
}

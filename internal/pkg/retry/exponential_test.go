package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ridewire/ridewire/internal/pkg/apperrors"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	cfg.Jitter = false
	return cfg
}

func TestTransientErrorRetriedToSuccess(t *testing.T) {
	r := New(fastConfig(), logger.NewNopLogger())

	calls := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return apperrors.Newf(apperrors.ClassTransient, "connection reset")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestConflictNotRetried(t *testing.T) {
	r := New(fastConfig(), logger.NewNopLogger())

	calls := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return apperrors.New(apperrors.ClassConflict, apperrors.ErrOfferTaken)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrOfferTaken)
	assert.Equal(t, 1, calls, "conflicts are authoritative answers, not failures")
}

func TestValidationNotRetried(t *testing.T) {
	r := New(fastConfig(), logger.NewNopLogger())

	calls := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return apperrors.Newf(apperrors.ClassValidation, "rating out of range")
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 1, calls)
}

func TestExhaustionReturnsLastError(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxRetries = 2
	r := New(cfg, logger.NewNopLogger())

	sentinel := errors.New("still down")
	calls := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return apperrors.Newf(apperrors.ClassTransient, "attempt %d: %w", calls, sentinel)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls, "initial attempt plus two retries")
}

func TestContextCancellationStopsRetrying(t *testing.T) {
	cfg := fastConfig()
	cfg.BaseDelay = 50 * time.Millisecond
	r := New(cfg, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := r.Execute(ctx, func(ctx context.Context) error {
		calls++
		return apperrors.Newf(apperrors.ClassTransient, "slow dependency")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDelayGrowsAndCaps(t *testing.T) {
	cfg := Config{
		MaxRetries: 5,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   40 * time.Millisecond,
		Multiplier: 2.0,
	}
	r := New(cfg, logger.NewNopLogger())

	assert.Equal(t, 10*time.Millisecond, r.calculateDelay(0))
	assert.Equal(t, 20*time.Millisecond, r.calculateDelay(1))
	assert.Equal(t, 40*time.Millisecond, r.calculateDelay(2))
	assert.Equal(t, 40*time.Millisecond, r.calculateDelay(3), "delay never exceeds the cap")
}

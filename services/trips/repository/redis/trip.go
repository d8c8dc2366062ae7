// Package redis is the shared trip store for multi-node runs. Writes to
// an existing trip go through a WATCH/MULTI transaction so concurrent
// accepts of the same offer serialize to exactly one winner.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/ridewire/ridewire/internal/pkg/apperrors"
	"github.com/ridewire/ridewire/internal/pkg/database"
	"github.com/ridewire/ridewire/internal/pkg/models"
)

const (
	tripKeyPrefix         = "trip:"
	riderActiveKeyPrefix  = "active:rider:"
	driverActiveKeyPrefix = "active:driver:"
	requestedKey          = "trips:requested"

	// mutateAttempts bounds optimistic-lock retries before giving up.
	mutateAttempts = 5
)

// TripRepo implements the trip repository on Redis
type TripRepo struct {
	cfg         *models.Config
	redisClient *database.RedisClient
}

// NewTripRepository creates a new Redis-backed trip repository
func NewTripRepository(cfg *models.Config, redisClient *database.RedisClient) *TripRepo {
	return &TripRepo{
		cfg:         cfg,
		redisClient: redisClient,
	}
}

func tripKey(id string) string {
	return tripKeyPrefix + id
}

// Create stores a new trip and indexes it
func (r *TripRepo) Create(ctx context.Context, trip *models.Trip) error {
	payload, err := json.Marshal(trip)
	if err != nil {
		return fmt.Errorf("marshal trip: %w", err)
	}

	client := r.redisClient.GetClient()
	_, err = client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tripKey(trip.ID), payload, 0)
		pipe.Set(ctx, riderActiveKeyPrefix+trip.RiderID, trip.ID, 0)
		pipe.ZAdd(ctx, requestedKey, &redis.Z{
			Score:  float64(trip.RequestedAt.UnixMilli()),
			Member: trip.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("store trip %s: %w", trip.ID, err)
	}
	return nil
}

// Get returns the trip by ID
func (r *TripRepo) Get(ctx context.Context, id string) (*models.Trip, error) {
	raw, err := r.redisClient.Get(ctx, tripKey(id))
	if err == redis.Nil {
		return nil, apperrors.New(apperrors.ClassConflict, apperrors.ErrTripNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load trip %s: %w", id, err)
	}
	var trip models.Trip
	if err := json.Unmarshal([]byte(raw), &trip); err != nil {
		return nil, fmt.Errorf("unmarshal trip %s: %w", id, err)
	}
	return &trip, nil
}

// Mutate applies fn inside a WATCH transaction. A concurrent write to
// the same trip aborts the transaction and the whole step retries with
// the fresh record, so fn must be safe to run more than once.
func (r *TripRepo) Mutate(ctx context.Context, id string, fn func(*models.Trip) error) (*models.Trip, error) {
	client := r.redisClient.GetClient()
	key := tripKey(id)

	var result *models.Trip
	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return apperrors.New(apperrors.ClassConflict, apperrors.ErrTripNotFound)
		}
		if err != nil {
			return fmt.Errorf("load trip %s: %w", id, err)
		}

		var before models.Trip
		if err := json.Unmarshal([]byte(raw), &before); err != nil {
			return fmt.Errorf("unmarshal trip %s: %w", id, err)
		}

		work := before
		if err := fn(&work); err != nil {
			return err
		}

		payload, err := json.Marshal(&work)
		if err != nil {
			return fmt.Errorf("marshal trip %s: %w", id, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			r.applyIndexes(ctx, pipe, &before, &work)
			return nil
		})
		if err != nil {
			return err
		}
		result = &work
		return nil
	}

	for attempt := 0; attempt < mutateAttempts; attempt++ {
		err := client.Watch(ctx, txn, key)
		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, apperrors.Newf(apperrors.ClassConflict, "trip %s is being modified concurrently", id)
}

// ActiveByRider returns the rider's current trip or nil
func (r *TripRepo) ActiveByRider(ctx context.Context, riderID string) (*models.Trip, error) {
	return r.activeByPointer(ctx, riderActiveKeyPrefix+riderID)
}

// ActiveByDriver returns the driver's current trip or nil
func (r *TripRepo) ActiveByDriver(ctx context.Context, driverID string) (*models.Trip, error) {
	return r.activeByPointer(ctx, driverActiveKeyPrefix+driverID)
}

func (r *TripRepo) activeByPointer(ctx context.Context, key string) (*models.Trip, error) {
	id, err := r.redisClient.Get(ctx, key)
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load active pointer %s: %w", key, err)
	}
	return r.Get(ctx, id)
}

// RequestedIDs lists unassigned trips, oldest request first
func (r *TripRepo) RequestedIDs(ctx context.Context, limit int64) ([]string, error) {
	if limit <= 0 {
		limit = -1
	} else {
		limit--
	}
	return r.redisClient.GetClient().ZRange(ctx, requestedKey, 0, limit).Result()
}

// applyIndexes reconciles the active pointers and the requested queue
// with the trip's before/after states inside the same transaction.
func (r *TripRepo) applyIndexes(ctx context.Context, pipe redis.Pipeliner, before, after *models.Trip) {
	if before.Status == models.TripStatusRequested && after.Status != models.TripStatusRequested {
		pipe.ZRem(ctx, requestedKey, after.ID)
	}
	if before.Status != models.TripStatusRequested && after.Status == models.TripStatusRequested {
		pipe.ZAdd(ctx, requestedKey, &redis.Z{
			Score:  float64(after.RequestedAt.UnixMilli()),
			Member: after.ID,
		})
	}

	riderDone := after.Status == models.TripStatusCancelled ||
		(after.Status == models.TripStatusCompleted && after.RiderConfirmedCompletion)
	if riderDone {
		pipe.Del(ctx, riderActiveKeyPrefix+after.RiderID)
	} else {
		pipe.Set(ctx, riderActiveKeyPrefix+after.RiderID, after.ID, 0)
	}

	if before.DriverID != "" && before.DriverID != after.DriverID {
		pipe.Del(ctx, driverActiveKeyPrefix+before.DriverID)
	}
	if after.DriverID != "" {
		if after.Status.IsTerminal() {
			pipe.Del(ctx, driverActiveKeyPrefix+after.DriverID)
		} else {
			pipe.Set(ctx, driverActiveKeyPrefix+after.DriverID, after.ID, 0)
		}
	}
}

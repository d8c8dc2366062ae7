// Package memory is the in-process trip store used by unit tests and
// single-node development runs. It shares index semantics with the
// redis store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ridewire/ridewire/internal/pkg/apperrors"
	"github.com/ridewire/ridewire/internal/pkg/models"
)

// TripRepo is an in-memory trip store guarded by a single mutex, which
// makes every Mutate trivially atomic.
type TripRepo struct {
	mu           sync.Mutex
	trips        map[string]*models.Trip
	riderActive  map[string]string
	driverActive map[string]string
}

// NewTripRepository creates an empty in-memory store
func NewTripRepository() *TripRepo {
	return &TripRepo{
		trips:        make(map[string]*models.Trip),
		riderActive:  make(map[string]string),
		driverActive: make(map[string]string),
	}
}

// Create stores a new trip and indexes it
func (r *TripRepo) Create(ctx context.Context, trip *models.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := *trip
	r.trips[trip.ID] = &snapshot
	r.reindexLocked(&snapshot)
	return nil
}

// Get returns a copy of the trip
func (r *TripRepo) Get(ctx context.Context, id string) (*models.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	trip, ok := r.trips[id]
	if !ok {
		return nil, apperrors.New(apperrors.ClassConflict, apperrors.ErrTripNotFound)
	}
	snapshot := *trip
	return &snapshot, nil
}

// Mutate applies fn to the trip under the store lock
func (r *TripRepo) Mutate(ctx context.Context, id string, fn func(*models.Trip) error) (*models.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.trips[id]
	if !ok {
		return nil, apperrors.New(apperrors.ClassConflict, apperrors.ErrTripNotFound)
	}

	work := *stored
	if err := fn(&work); err != nil {
		return nil, err
	}

	prevDriver := stored.DriverID
	r.trips[id] = &work
	if prevDriver != "" && prevDriver != work.DriverID {
		delete(r.driverActive, prevDriver)
	}
	r.reindexLocked(&work)

	snapshot := work
	return &snapshot, nil
}

// ActiveByRider returns the rider's current trip or nil
func (r *TripRepo) ActiveByRider(ctx context.Context, riderID string) (*models.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.riderActive[riderID]
	if !ok {
		return nil, nil
	}
	snapshot := *r.trips[id]
	return &snapshot, nil
}

// ActiveByDriver returns the driver's current trip or nil
func (r *TripRepo) ActiveByDriver(ctx context.Context, driverID string) (*models.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.driverActive[driverID]
	if !ok {
		return nil, nil
	}
	snapshot := *r.trips[id]
	return &snapshot, nil
}

// RequestedIDs lists unassigned trips, oldest request first
func (r *TripRepo) RequestedIDs(ctx context.Context, limit int64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []*models.Trip
	for _, trip := range r.trips {
		if trip.Status == models.TripStatusRequested {
			pending = append(pending, trip)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].RequestedAt.Before(pending[j].RequestedAt)
	})

	ids := make([]string, 0, len(pending))
	for _, trip := range pending {
		if limit > 0 && int64(len(ids)) >= limit {
			break
		}
		ids = append(ids, trip.ID)
	}
	return ids, nil
}

// reindexLocked rebuilds the active-pointer entries for one trip. A
// rider stays bound to a completed trip until the completion handshake
// lands; a driver is released the moment the trip leaves their hands.
func (r *TripRepo) reindexLocked(trip *models.Trip) {
	riderDone := trip.Status == models.TripStatusCancelled ||
		(trip.Status == models.TripStatusCompleted && trip.RiderConfirmedCompletion)
	if riderDone {
		if r.riderActive[trip.RiderID] == trip.ID {
			delete(r.riderActive, trip.RiderID)
		}
	} else {
		r.riderActive[trip.RiderID] = trip.ID
	}

	if trip.DriverID == "" {
		return
	}
	if trip.Status.IsTerminal() {
		if r.driverActive[trip.DriverID] == trip.ID {
			delete(r.driverActive, trip.DriverID)
		}
	} else {
		r.driverActive[trip.DriverID] = trip.ID
	}
}

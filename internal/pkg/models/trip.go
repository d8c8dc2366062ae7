package models

import (
	"time"
)

// TripStatus represents the current status of a trip
type TripStatus string

const (
	TripStatusRequested TripStatus = "requested"
	TripStatusAssigned  TripStatus = "assigned"
	TripStatusAccepted  TripStatus = "accepted"
	TripStatusStarted   TripStatus = "started"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

// statusRank orders the lifecycle for forward-only folds. Cancelled sits
// above everything because it is terminal from any non-terminal state.
var statusRank = map[TripStatus]int{
	TripStatusRequested: 0,
	TripStatusAssigned:  1,
	TripStatusAccepted:  2,
	TripStatusStarted:   3,
	TripStatusCompleted: 4,
	TripStatusCancelled: 5,
}

// allowedTransitions represents the trip lifecycle as code. The
// assigned -> requested edge is the reassignment back-edge used when an
// offer is declined or times out; it is the only backward move.
var allowedTransitions = map[TripStatus][]TripStatus{
	TripStatusRequested: {TripStatusAssigned, TripStatusCancelled},
	TripStatusAssigned:  {TripStatusAccepted, TripStatusRequested, TripStatusCancelled},
	TripStatusAccepted:  {TripStatusStarted, TripStatusCancelled},
	TripStatusStarted:   {TripStatusCompleted, TripStatusCancelled},
}

// CanTransition reports whether the lifecycle allows moving from one
// status to another.
func CanTransition(from, to TripStatus) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status accepts no further writes
func (s TripStatus) IsTerminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// Rank returns the lifecycle order of the status, used by reconcilers to
// refuse regressions.
func (s TripStatus) Rank() int {
	return statusRank[s]
}

// IsReassignment reports whether the pair is the single documented
// backward edge (assigned -> requested).
func IsReassignment(from, to TripStatus) bool {
	return from == TripStatusAssigned && to == TripStatusRequested
}

// Valid reports whether s is a known trip status
func (s TripStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Trip is the canonical trip record. The authoritative copy lives in the
// trip service; clients hold a read-mostly mirror reconciled forward.
type Trip struct {
	ID          string   `json:"id"`
	RiderID     string   `json:"rider_id"`
	DriverID    string   `json:"driver_id,omitempty"`
	Pickup      Location `json:"pickup"`
	Destination Location `json:"destination"`

	Status TripStatus `json:"status"`

	RequestedAt time.Time  `json:"requested_at"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	RiderConfirmedPickup       bool       `json:"rider_confirmed_pickup"`
	RiderConfirmedAt           *time.Time `json:"rider_confirmed_at,omitempty"`
	RiderConfirmedCompletion   bool       `json:"rider_confirmed_completion"`
	RiderConfirmedCompletionAt *time.Time `json:"rider_confirmed_completion_at,omitempty"`

	ApproachDistanceKm float64 `json:"approach_distance_km"`
	ApproachFee        float64 `json:"approach_fee"`
	EstimatedCost      float64 `json:"estimated_cost"`
	MeterCost          float64 `json:"meter_cost,omitempty"`
	TotalCost          float64 `json:"total_cost,omitempty"`

	TripDistanceKm float64 `json:"trip_distance_km"`
	DurationS      int     `json:"duration_s"`

	CancellationReason string `json:"cancellation_reason,omitempty"`
	Rating             *int   `json:"rating,omitempty"`
	Review             string `json:"review,omitempty"`
	Notes              string `json:"notes,omitempty"`

	// Reassignments counts how many times the trip fell back from
	// assigned to requested.
	Reassignments int `json:"reassignments"`
}

// ApplyStatus moves the trip to a new status and stamps the matching
// timestamp. Timestamps are write-once: re-entering requested after a
// reassignment does not touch RequestedAt.
func (t *Trip) ApplyStatus(status TripStatus, now time.Time) error {
	if t.Status.IsTerminal() {
		return ErrTerminalWrite
	}
	if !CanTransition(t.Status, status) {
		return ErrBadTransition
	}
	if IsReassignment(t.Status, status) {
		t.DriverID = ""
		t.AssignedAt = nil
		t.ApproachDistanceKm = 0
		t.ApproachFee = 0
		t.Reassignments++
		t.Status = status
		return nil
	}
	switch status {
	case TripStatusAssigned:
		if t.AssignedAt == nil {
			t.AssignedAt = &now
		}
	case TripStatusAccepted:
		if t.AcceptedAt == nil {
			t.AcceptedAt = &now
		}
	case TripStatusStarted:
		if t.StartedAt == nil {
			t.StartedAt = &now
		}
	case TripStatusCompleted:
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	case TripStatusCancelled:
		if t.CancelledAt == nil {
			t.CancelledAt = &now
		}
	}
	t.Status = status
	return nil
}

// Active reports whether the trip still needs lifecycle attention
func (t *Trip) Active() bool {
	return !t.Status.IsTerminal()
}

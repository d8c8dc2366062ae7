package models

import "errors"

var (
	// ErrTerminalWrite is returned when a write reaches a completed or
	// cancelled trip.
	ErrTerminalWrite = errors.New("trip already reached a terminal state")
	// ErrBadTransition is returned when a status move is not in the
	// lifecycle table.
	ErrBadTransition = errors.New("invalid status transition")
)

package session

import "errors"

// Session store errors
var (
	// ErrNoSession means the user has no live session
	ErrNoSession = errors.New("no live session")

	// ErrSessionExists means a live session already holds the user's slot
	ErrSessionExists = errors.New("session already exists")

	// ErrSessionBusy means another transition for the same user is in flight
	ErrSessionBusy = errors.New("session is busy")
)

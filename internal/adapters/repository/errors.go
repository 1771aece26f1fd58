package repository

import "errors"

// Sentinel kinds for session store errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many open sessions")
)

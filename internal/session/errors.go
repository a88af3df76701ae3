package session

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for an ID.
	// Corrupt persisted records read the same way: cleared, not surfaced.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when a session exists but its
	// expiry has passed.
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidToken is returned when a bearer token fails signature
	// or claim validation.
	ErrInvalidToken = errors.New("invalid session token")
)

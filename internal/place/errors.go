package place

import "errors"

var (
	// ErrCountyNotFound is returned when no cached county matches the ID.
	ErrCountyNotFound = errors.New("county not found")
)

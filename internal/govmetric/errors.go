package govmetric

import "errors"

var (
	// ErrUnavailable is returned when the upstream cannot be reached or
	// responds with a non-2xx status.
	ErrUnavailable = errors.New("govmetric: upstream unavailable")

	// ErrBadResponse is returned when the upstream responds with a body
	// that cannot be decoded.
	ErrBadResponse = errors.New("govmetric: malformed upstream response")
)

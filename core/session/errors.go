package session

import "errors"

var (
	// ErrMalformedRecord is returned by a Store when the persisted record cannot be decoded.
	ErrMalformedRecord = errors.New("session: malformed persisted record")
	// ErrInvalidRole is returned when decoding a role outside the closed set.
	ErrInvalidRole = errors.New("session: invalid role")
	// ErrWriteRecord wraps failures to persist a record.
	ErrWriteRecord = errors.New("session: failed to write persisted record")
)

package sessiontransport

import "errors"

var (
	// ErrNoToken is returned when no credential cookie is present in the request.
	ErrNoToken = errors.New("sessiontransport: no token")

	// ErrInvalidToken is returned when the credential cookie fails verification.
	ErrInvalidToken = errors.New("sessiontransport: invalid token")

	// ErrEmptyToken is returned when asked to issue an empty credential.
	ErrEmptyToken = errors.New("sessiontransport: empty token")
)

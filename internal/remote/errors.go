package remote

import "errors"

var (
	// ErrUnavailable indicates the log store is unreachable.
	ErrUnavailable = errors.New("log store unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("log store request timed out")

	// ErrUnauthorized indicates the bearer token was missing or rejected.
	ErrUnauthorized = errors.New("log store rejected credentials")

	// ErrRejected indicates the server answered with success=false.
	ErrRejected = errors.New("log store rejected the entry")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("log store retry attempts exhausted")
)

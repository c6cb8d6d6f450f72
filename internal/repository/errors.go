package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCorruptState indicates a persisted timer record that cannot be
	// decoded. Callers treat it as "no active session".
	ErrCorruptState = errors.New("corrupt timer state")

	// ErrStaleToken indicates a fenced write lost against a newer session
	// holding the same storage scope.
	ErrStaleToken = errors.New("stale session token")
)

package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist or is not
// visible to the caller's tenant. Callers check it with errors.Is; the timer
// state machine treats it as a valid terminal state, not a failure.
var ErrNotFound = errors.New("not found")

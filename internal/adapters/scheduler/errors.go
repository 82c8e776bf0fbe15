package scheduler

import "errors"

// Sentinel kinds for loop errors.
var (
	ErrAlreadyStarted = errors.New("loop already started")
	ErrStopped        = errors.New("loop stopped")
)

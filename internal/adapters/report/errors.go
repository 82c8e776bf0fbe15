package report

import "errors"

// Sentinel kinds for reporter errors.
var (
	ErrInvalidSchedule = errors.New("invalid report schedule")
	ErrNoSnapshot      = errors.New("no snapshot to report")
)

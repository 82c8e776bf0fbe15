package hub

import "errors"

// Sentinel kinds for hub errors.
var (
	ErrClosed             = errors.New("hub closed")
	ErrTooManySubscribers = errors.New("too many subscribers")
)

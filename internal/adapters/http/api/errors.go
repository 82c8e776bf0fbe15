package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotReady   = errors.New("snapshot not available")
	ErrHijack     = errors.New("response writer does not support hijacking")
)

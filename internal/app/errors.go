package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrStopped     = errors.New("service stopped")
	ErrInvalidSeed = errors.New("invalid seed state")
)

package simulator

import "errors"

// Sentinel kinds for state validation.
var (
	ErrOutOfBounds  = errors.New("metric out of bounds")
	ErrWindowLength = errors.New("success rate window length mismatch")
	ErrChartLength  = errors.New("chart data length mismatch")
)

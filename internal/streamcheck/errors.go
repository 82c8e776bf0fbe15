package streamcheck

import "errors"

// Sentinel errors returned by Run.
var (
	ErrVerification = errors.New("stream verification failed")
	ErrDial         = errors.New("dial stream")
	ErrStream       = errors.New("read stream")
	ErrChartInfo    = errors.New("fetch chart settings")
)

package repository

import "errors"

// Sentinel kinds for state cell errors.
var (
	ErrEmpty         = errors.New("no snapshot stored")
	ErrStaleSnapshot = errors.New("snapshot sequence is not newer than the stored one")
)

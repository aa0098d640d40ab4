package app

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrRecomputeInFlight rejects a recompute trigger while another run
	// is still executing.
	ErrRecomputeInFlight = errors.New("recompute already in flight")

	// ErrInvalidRubric rejects judge sub-scores outside [1,3].
	ErrInvalidRubric = errors.New("rubric sub-scores must be between 1 and 3")

	// ErrNotStarted rejects operations before Start.
	ErrNotStarted = errors.New("service not started")
)

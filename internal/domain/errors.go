package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent domain-level failures and are used by the catalog,
// the session controller and the transports to communicate failure conditions.
// -----------------------------------------------------------------------------

// Exercise errors
var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrInvalidExercise  = errors.New("invalid exercise")
	ErrEmptyCatalog     = errors.New("exercise catalog is empty")
	ErrDuplicateID      = errors.New("duplicate exercise id")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrRunInProgress   = errors.New("a run is already in progress")
	ErrRateLimited     = errors.New("too many runs, slow down")
)

// General errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInternalError = errors.New("internal error")
)

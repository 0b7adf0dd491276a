package service

import "errors"

// Errors returned to the command surface. Input-validation failures are
// ordinary values the caller maps to user-facing messages; broken graph
// invariants panic instead (see resolveSource).
var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrUnsupportedFormat       = errors.New("unsupported category format")
	ErrNotFound                = errors.New("requested resource not found")
	ErrBracketAlreadyGenerated = errors.New("bracket has already been generated")
	ErrRegistrationClosed      = errors.New("registration is closed once a bracket exists")
	ErrCategoryFull            = errors.New("category has reached its dupla limit")
	ErrMatchNotReady           = errors.New("match participants are not resolved yet")
	ErrScoreUndecided          = errors.New("recorded score does not decide the match")
)

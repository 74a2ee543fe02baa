package impulse

import "errors"

var (
	// ErrDuplicatePair is returned when the broad phase reports a pair that is already tracked.
	ErrDuplicatePair = errors.New("overlapping pair already exists")
	// ErrMissingPair is returned when the broad phase removes a pair that is not tracked.
	ErrMissingPair = errors.New("overlapping pair does not exist")
	// ErrDuplicateBody is returned when a body is registered twice.
	ErrDuplicateBody = errors.New("body already registered")
	// ErrUnknownBody is returned when a body was never registered.
	ErrUnknownBody = errors.New("body is not registered")
	// ErrNoAlgorithm is returned when the dispatcher has no algorithm for a pair of shape types.
	ErrNoAlgorithm = errors.New("no collision algorithm for shape types")
	// ErrInvalidSettings is returned by Settings.Validate.
	ErrInvalidSettings = errors.New("invalid settings")
)

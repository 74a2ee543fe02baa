package actor

import "errors"

var (
	// ErrInvalidMargin is returned when a shape margin is not strictly positive.
	ErrInvalidMargin = errors.New("collision margin must be positive")
	// ErrDegenerateShape is returned when a shape dimension does not exceed its margin.
	ErrDegenerateShape = errors.New("shape dimension must exceed the collision margin")
	// ErrUnknownShape is returned when releasing a shape the cache does not hold.
	ErrUnknownShape = errors.New("shape is not registered in the cache")
)

package constraint

import "errors"

var (
	// ErrEmptyIsland is returned when an island holds no body or no manifold.
	ErrEmptyIsland = errors.New("island has no bodies or no contact manifolds")
	// ErrNoVelocities is returned when the solver runs before SetVelocities.
	ErrNoVelocities = errors.New("velocity arrays are not set")
	// ErrUnknownBody is returned when a manifold body has no velocity index.
	ErrUnknownBody = errors.New("body has no velocity index")
)

// Package constraint holds the contact records shared between collision detection and
// the sequential impulse solver, and the solver itself.
package constraint

import (
	"math"

	"github.com/akmonengine/impulse/actor"
)

// ComputeRestitution mixes the bounciness of two materials: the bouncier one wins.
func ComputeRestitution(matA, matB actor.Material) float64 {
	return math.Max(matA.Bounciness, matB.Bounciness)
}

// ComputeFriction mixes two friction coefficients with their geometric mean.
func ComputeFriction(matA, matB actor.Material) float64 {
	return math.Sqrt(matA.Friction * matB.Friction)
}

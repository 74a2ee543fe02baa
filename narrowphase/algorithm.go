// Package narrowphase computes the exact contact of two shapes whose bounds overlap.
//
// Each pair of shape types is served by an Algorithm picked from a Dispatcher
// table: spheres use a closed form, every other pair goes through GJK and EPA.
package narrowphase

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/constraint"
)

// Algorithm tests two posed shapes for contact. On a hit, the returned
// ContactInfo has a unit normal from A toward B and a non-negative depth;
// its bodies are left for the caller to attach.
type Algorithm interface {
	TestCollision(shapeA actor.Shape, transformA actor.Transform, shapeB actor.Shape, transformB actor.Transform) (bool, constraint.ContactInfo)
}

// AlgorithmFunc adapts a plain function to Algorithm.
type AlgorithmFunc func(shapeA actor.Shape, transformA actor.Transform, shapeB actor.Shape, transformB actor.Transform) (bool, constraint.ContactInfo)

func (f AlgorithmFunc) TestCollision(shapeA actor.Shape, transformA actor.Transform, shapeB actor.Shape, transformB actor.Transform) (bool, constraint.ContactInfo) {
	return f(shapeA, transformA, shapeB, transformB)
}

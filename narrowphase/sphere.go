package narrowphase

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/constraint"
)

// SphereVsSphere is the closed form test between two spheres.
type SphereVsSphere struct{}

func (SphereVsSphere) TestCollision(shapeA actor.Shape, transformA actor.Transform, shapeB actor.Shape, transformB actor.Transform) (bool, constraint.ContactInfo) {
	sphereA, okA := shapeA.(*actor.Sphere)
	sphereB, okB := shapeB.(*actor.Sphere)
	if !okA || !okB {
		return false, constraint.ContactInfo{}
	}

	radiusA, radiusB := sphereA.Radius(), sphereB.Radius()
	centerLine := transformB.Position.Sub(transformA.Position)
	distance := centerLine.Len()
	if distance >= radiusA+radiusB {
		return false, constraint.ContactInfo{}
	}

	// concentric spheres get the fallback axis
	normal := actor.SafeNormalize(centerLine)
	pointA := transformA.Position.Add(normal.Mul(radiusA))
	pointB := transformB.Position.Sub(normal.Mul(radiusB))

	return true, constraint.ContactInfo{
		Normal:      normal,
		Depth:       radiusA + radiusB - distance,
		PointA:      pointA,
		PointB:      pointB,
		LocalPointA: transformA.InverseApply(pointA),
		LocalPointB: transformB.InverseApply(pointB),
	}
}

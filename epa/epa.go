// Package epa implements the Expanding Polytope Algorithm for computing penetration depth.
//
// EPA runs after GJK reported an overlap. It expands the final GJK simplex
// inside the Minkowski difference until the face closest to the origin is
// found, which gives the contact normal, the penetration depth and, through
// the barycentric coordinates of the origin projection, one contact point on
// each shape.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"errors"

	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/constraint"
	"github.com/akmonengine/impulse/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// EPAMaxIterations limits polytope expansion.
	// If this limit is reached, EPA answers with the closest face found so far.
	EPAMaxIterations = 32

	// EPAConvergenceTolerance: the search stops once a new support point
	// improves the closest face distance by less than this.
	EPAConvergenceTolerance = 0.001

	// NormalSnapThreshold is used to clamp nearly-zero normal components to exactly zero.
	NormalSnapThreshold = 1e-8

	polytopeInitialCapacity = 16

	// faces whose cross product is smaller than this, absolutely or relative
	// to their edges, are slivers without a usable normal
	degenerateFaceArea = 1e-12
	degenerateFaceSine = 1e-6

	degenerateVolume = 1e-12
	visibleEpsilon   = 1e-10
)

// EPA computes the contact of two overlapping convex shapes from the simplex
// GJK stopped with. The normal points from shape A toward shape B, and Depth
// is never negative. The returned contact has no bodies attached.
func EPA(shapeA actor.Shape, transformA actor.Transform, shapeB actor.Shape, transformB actor.Transform, simplex *gjk.Simplex) (constraint.ContactInfo, error) {
	if simplex.Count < 4 {
		return degenerateContact(shapeA, transformA, shapeB, transformB, simplex), nil
	}

	builder := polytopeBuilderPool.Get().(*PolytopeBuilder)
	defer polytopeBuilderPool.Put(builder)
	builder.Reset()

	if err := builder.BuildInitialFaces(simplex); err != nil {
		if errors.Is(err, ErrDegenerateSimplex) {
			return degenerateContact(shapeA, transformA, shapeB, transformB, simplex), nil
		}
		return constraint.ContactInfo{}, err
	}

	for i := 0; i < EPAMaxIterations; i++ {
		closestIndex := builder.FindClosestFaceIndex()
		if closestIndex < 0 {
			return degenerateContact(shapeA, transformA, shapeB, transformB, simplex), nil
		}
		closest := builder.faces[closestIndex]

		support := gjk.MinkowskiSupport(shapeA, transformA, shapeB, transformB, closest.Normal)
		distance := support.V.Dot(closest.Normal)

		if distance-closest.Distance < EPAConvergenceTolerance {
			return faceContact(closest, transformA, transformB), nil
		}

		builder.AddPointAndRebuildFaces(support, closestIndex)
	}

	// out of iterations: the closest face is the best estimate
	closestIndex := builder.FindClosestFaceIndex()
	if closestIndex < 0 {
		return degenerateContact(shapeA, transformA, shapeB, transformB, simplex), nil
	}
	return faceContact(builder.faces[closestIndex], transformA, transformB), nil
}

func faceContact(face Face, transformA, transformB actor.Transform) constraint.ContactInfo {
	pointA, pointB := face.contactPoints()
	return newContactInfo(face.Normal, pointA, pointB, transformA, transformB)
}

// degenerateContact estimates a contact when GJK could not build a full
// tetrahedron, which happens for shapes barely touching.
func degenerateContact(shapeA actor.Shape, transformA actor.Transform, shapeB actor.Shape, transformB actor.Transform, simplex *gjk.Simplex) constraint.ContactInfo {
	var normal mgl64.Vec3

	if simplex.Count >= 2 {
		closest := simplex.Points[0].V
		for i := 1; i < simplex.Count; i++ {
			if simplex.Points[i].V.LenSqr() < closest.LenSqr() {
				closest = simplex.Points[i].V
			}
		}
		if closest.Len() > NormalSnapThreshold {
			normal = closest.Normalize()
		}
	}

	if normal.LenSqr() == 0 {
		normal = actor.SafeNormalize(transformB.Position.Sub(transformA.Position))
	}
	normal = snapNormalToAxis(normal)

	pointA := actor.SupportWorld(shapeA, transformA, normal, true)
	pointB := actor.SupportWorld(shapeB, transformB, normal.Mul(-1), true)

	return newContactInfo(normal, pointA, pointB, transformA, transformB)
}

func newContactInfo(normal, pointA, pointB mgl64.Vec3, transformA, transformB actor.Transform) constraint.ContactInfo {
	return constraint.ContactInfo{
		Normal:      normal,
		Depth:       max(pointA.Sub(pointB).Dot(normal), 0),
		PointA:      pointA,
		PointB:      pointB,
		LocalPointA: transformA.InverseApply(pointA),
		LocalPointB: transformB.InverseApply(pointB),
	}
}

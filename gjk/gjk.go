// Package gjk tests two convex shapes for overlap with the Gilbert-Johnson-Keerthi algorithm.
//
// Shapes only expose a support mapping. The Minkowski difference A - B contains the
// origin exactly when the shapes overlap, and GJK grows a simplex inside that
// difference until it either encloses the origin or proves that it cannot.
//
// Both shapes are queried with their margin, so shapes touching inside their
// margin skins are reported as overlapping.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
package gjk

import (
	"sync"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// MaxIterations bounds the simplex refinement loop.
const MaxIterations = 32

// SupportPoint is a vertex of the Minkowski difference together with the
// world points of each shape that produced it. EPA needs A and B to
// rebuild contact points on each body.
type SupportPoint struct {
	V mgl64.Vec3 // A - B
	A mgl64.Vec3
	B mgl64.Vec3
}

// Simplex holds 1 to 4 support points, the most recent one last.
type Simplex struct {
	Points [4]SupportPoint
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

func (s *Simplex) set(points ...SupportPoint) {
	s.Count = copy(s.Points[:], points)
}

var SimplexPool = sync.Pool{
	New: func() interface{} {
		return &Simplex{}
	},
}

// MinkowskiSupport returns the support point of A - B along direction:
// the farthest point of A along direction minus the farthest point of B along -direction.
func MinkowskiSupport(shapeA actor.Shape, transformA actor.Transform, shapeB actor.Shape, transformB actor.Transform, direction mgl64.Vec3) SupportPoint {
	a := actor.SupportWorld(shapeA, transformA, direction, true)
	b := actor.SupportWorld(shapeB, transformB, direction.Mul(-1), true)

	return SupportPoint{V: a.Sub(b), A: a, B: b}
}

// GJK reports whether the two margined shapes overlap.
//
// The search starts along the line between the two shape origins. On a hit the
// simplex usually ends as a tetrahedron enclosing the origin, which EPA expands;
// touching configurations may stop earlier with fewer points.
func GJK(shapeA actor.Shape, transformA actor.Transform, shapeB actor.Shape, transformB actor.Transform, simplex *Simplex) bool {
	direction := transformB.Position.Sub(transformA.Position)
	if direction.LenSqr() < 1e-8 {
		direction = mgl64.Vec3{1, 0, 0}
	}

	simplex.set(MinkowskiSupport(shapeA, transformA, shapeB, transformB, direction))

	direction = simplex.Points[0].V.Mul(-1)
	if direction.LenSqr() < 1e-16 {
		// first support point sits on the origin
		return true
	}

	for i := 0; i < MaxIterations; i++ {
		point := MinkowskiSupport(shapeA, transformA, shapeB, transformB, direction)

		// the new point does not pass the origin: separating direction found
		if point.V.Dot(direction) <= 0 {
			return false
		}

		simplex.Points[simplex.Count] = point
		simplex.Count++

		if nextSimplex(simplex, &direction) {
			return true
		}
	}

	return false
}

// nextSimplex reduces the simplex to the feature closest to the origin and
// updates the search direction. It returns true once the origin is enclosed.
func nextSimplex(simplex *Simplex, direction *mgl64.Vec3) bool {
	switch simplex.Count {
	case 2:
		return line(simplex, direction)
	case 3:
		return triangle(simplex, direction)
	case 4:
		return tetrahedron(simplex, direction)
	}
	return false
}

func line(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b := simplex.Points[1], simplex.Points[0]
	ab := b.V.Sub(a.V)
	ao := a.V.Mul(-1)

	if ab.LenSqr() < 1e-8 {
		if ao.LenSqr() < 1e-8 {
			return true
		}
		simplex.set(a)
		*direction = ao
		return false
	}

	// origin behind A
	if ab.Dot(ao) <= 0 {
		simplex.set(a)
		*direction = ao
		return false
	}

	perpendicular := ab.Cross(ao).Cross(ab)
	if perpendicular.LenSqr() < 1e-8 {
		// origin on the segment
		return true
	}

	*direction = perpendicular
	return false
}

func triangle(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b, c := simplex.Points[2], simplex.Points[1], simplex.Points[0]

	ab := b.V.Sub(a.V)
	ac := c.V.Sub(a.V)
	ao := a.V.Mul(-1)
	normal := ab.Cross(ac)

	// collinear points: drop the oldest one
	if normal.LenSqr() < 1e-10 {
		simplex.set(b, a)
		return line(simplex, direction)
	}

	if ab.Cross(normal).Dot(ao) > 0 {
		simplex.set(b, a)
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}

	if normal.Cross(ac).Dot(ao) > 0 {
		simplex.set(c, a)
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	if normal.Dot(ao) > 0 {
		*direction = normal
	} else {
		// keep the winding so the next tetrahedron faces outward
		simplex.set(a, c, b)
		*direction = normal.Mul(-1)
	}

	return false
}

func tetrahedron(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b, c, d := simplex.Points[3], simplex.Points[2], simplex.Points[1], simplex.Points[0]

	ab := b.V.Sub(a.V)
	ac := c.V.Sub(a.V)
	ad := d.V.Sub(a.V)
	ao := a.V.Mul(-1)

	// face normals oriented away from the opposite vertex
	abc := outward(ab.Cross(ac), ad)
	acd := outward(ac.Cross(ad), ab)
	adb := outward(ad.Cross(ab), ac)

	if abc.LenSqr() < 1e-10 || acd.LenSqr() < 1e-10 || adb.LenSqr() < 1e-10 {
		simplex.set(c, b, a)
		return triangle(simplex, direction)
	}

	switch {
	case abc.Dot(ao) > 0:
		simplex.set(c, b, a)
	case acd.Dot(ao) > 0:
		simplex.set(d, c, a)
	case adb.Dot(ao) > 0:
		simplex.set(b, d, a)
	default:
		return true
	}

	return triangle(simplex, direction)
}

func outward(normal, toOpposite mgl64.Vec3) mgl64.Vec3 {
	if normal.Dot(toOpposite) > 0 {
		return normal.Mul(-1)
	}
	return normal
}

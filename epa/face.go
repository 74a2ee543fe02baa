package epa

import (
	"math"

	"github.com/akmonengine/impulse/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// Face is a triangle of the polytope. Its vertices keep the support points of
// both shapes so the closest face yields a contact point on each body.
type Face struct {
	Points   [3]gjk.SupportPoint
	Normal   mgl64.Vec3 // points out of the polytope
	Distance float64    // signed distance from the origin to the face plane
}

// Edge is a directed polytope edge, wound like the face it came from.
type Edge struct {
	A, B gjk.SupportPoint
}

func (e Edge) reverses(other Edge) bool {
	return e.A.V == other.B.V && e.B.V == other.A.V
}

// newFace builds the face p0, p1, p2 with its normal given by the winding.
// Sliver triangles have no reliable normal and are rejected.
func newFace(p0, p1, p2 gjk.SupportPoint) (Face, bool) {
	e1 := p1.V.Sub(p0.V)
	e2 := p2.V.Sub(p0.V)
	normal := e1.Cross(e2)

	length := normal.Len()
	if length < degenerateFaceArea || length <= degenerateFaceSine*e1.Len()*e2.Len() {
		return Face{}, false
	}

	normal = snapNormalToAxis(normal.Mul(1.0 / length))
	return Face{
		Points:   [3]gjk.SupportPoint{p0, p1, p2},
		Normal:   normal,
		Distance: p0.V.Dot(normal),
	}, true
}

// newFaceAwayFrom builds the face p0, p1, p2 wound so that its normal points
// away from the interior point.
func newFaceAwayFrom(p0, p1, p2 gjk.SupportPoint, interior mgl64.Vec3) (Face, bool) {
	face, ok := newFace(p0, p1, p2)
	if ok && face.Normal.Dot(interior.Sub(p0.V)) > 0 {
		return newFace(p0, p2, p1)
	}
	return face, ok
}

// barycentric returns the weights of p projected in the face triangle,
// clamped to the triangle and summing to one.
func (f *Face) barycentric(p mgl64.Vec3) (float64, float64, float64) {
	a, b, c := f.Points[0].V, f.Points[1].V, f.Points[2].V

	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)

	denominator := d00*d11 - d01*d01
	if math.Abs(denominator) < 1e-12 {
		return 1.0 / 3.0, 1.0 / 3.0, 1.0 / 3.0
	}

	v := (d11*d20 - d01*d21) / denominator
	w := (d00*d21 - d01*d20) / denominator
	u := 1.0 - v - w

	u, v, w = math.Max(u, 0), math.Max(v, 0), math.Max(w, 0)
	sum := u + v + w
	if sum < 1e-12 {
		return 1.0 / 3.0, 1.0 / 3.0, 1.0 / 3.0
	}

	return u / sum, v / sum, w / sum
}

// contactPoints interpolates the shape points of the face at the projection
// of the origin on its plane.
func (f *Face) contactPoints() (mgl64.Vec3, mgl64.Vec3) {
	u, v, w := f.barycentric(f.Normal.Mul(f.Distance))

	pointA := f.Points[0].A.Mul(u).Add(f.Points[1].A.Mul(v)).Add(f.Points[2].A.Mul(w))
	pointB := f.Points[0].B.Mul(u).Add(f.Points[1].B.Mul(v)).Add(f.Points[2].B.Mul(w))

	return pointA, pointB
}

// snapNormalToAxis clamps nearly-zero components of a normal vector to exactly zero
// and renormalizes, so axis aligned contacts keep exact axis normals.
func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	for i := 0; i < 3; i++ {
		if math.Abs(normal[i]) < NormalSnapThreshold {
			normal[i] = 0
		}
	}

	length := normal.Len()
	if length < 1e-8 {
		return mgl64.Vec3{0, 1, 0}
	}
	return normal.Mul(1.0 / length)
}

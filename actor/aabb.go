package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// Expand grows the box by distance on every side
func (a AABB) Expand(distance float64) AABB {
	d := mgl64.Vec3{distance, distance, distance}
	return AABB{Min: a.Min.Sub(d), Max: a.Max.Add(d)}
}

// Merge returns the smallest box enclosing both boxes
func (a AABB) Merge(other AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(a.Min[0], other.Min[0]), math.Min(a.Min[1], other.Min[1]), math.Min(a.Min[2], other.Min[2])},
		Max: mgl64.Vec3{math.Max(a.Max[0], other.Max[0]), math.Max(a.Max[1], other.Max[1]), math.Max(a.Max[2], other.Max[2])},
	}
}

func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

func (a AABB) HalfExtents() mgl64.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// TransformAABB bounds a local box placed with the given transform.
// Each world half extent is the dot product of the absolute rotation row with
// the local half extents, so the result encloses the oriented box exactly.
func TransformAABB(local AABB, transform Transform) AABB {
	rotation := transform.RotationMatrix()
	center := transform.Position.Add(rotation.Mul3x1(local.Center()))

	half := local.HalfExtents()
	var worldHalf mgl64.Vec3
	for i := 0; i < 3; i++ {
		row := rotation.Row(i)
		worldHalf[i] = math.Abs(row[0])*half[0] + math.Abs(row[1])*half[1] + math.Abs(row[2])*half[2]
	}

	return AABB{Min: center.Sub(worldHalf), Max: center.Add(worldHalf)}
}

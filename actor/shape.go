package actor

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultMargin is the Minkowski skin added around every shape.
const DefaultMargin = 0.04

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeBox ShapeType = iota
	ShapeTypeSphere
	ShapeTypeCylinder
	ShapeTypeCone
	ShapeTypeCapsule
	ShapeTypeConvexMesh

	// NumShapeTypes is the size of the closed shape set, used by dispatch tables
	NumShapeTypes
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypeBox:
		return "box"
	case ShapeTypeSphere:
		return "sphere"
	case ShapeTypeCylinder:
		return "cylinder"
	case ShapeTypeCone:
		return "cone"
	case ShapeTypeCapsule:
		return "capsule"
	case ShapeTypeConvexMesh:
		return "convex-mesh"
	}
	return fmt.Sprintf("ShapeType(%d)", int(t))
}

// Shape is the interface that all collision shapes must implement.
// Shapes keep their core dimensions (the given dimensions minus the margin),
// the margin is added back by Support when withMargin is set.
type Shape interface {
	Type() ShapeType
	Margin() float64
	// Support returns the farthest local point along direction
	Support(direction mgl64.Vec3, withMargin bool) mgl64.Vec3
	// LocalBounds returns the local-space bounds, margin included
	LocalBounds() AABB
	// LocalInertia returns the inertia tensor for a uniform density body of the given mass
	LocalInertia(mass float64) mgl64.Mat3
	// ComputeMass calculates the mass of the shape given a density
	ComputeMass(density float64) float64
	// Scale rescales the shape geometry in place. The shape is left untouched
	// when the factor is not positive or a dimension would not exceed the margin.
	Scale(factor float64) error
	Clone() Shape
	Equal(other Shape) bool
}

// addMargin pushes a core support point outward by margin along the unit direction.
func addMargin(point, direction mgl64.Vec3, margin float64) mgl64.Vec3 {
	return point.Add(SafeNormalize(direction).Mul(margin))
}

func validateMargin(margin float64) error {
	if margin <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidMargin, margin)
	}
	return nil
}

func validateDimension(name string, value, margin float64) error {
	if value <= margin {
		return fmt.Errorf("%w: %s %v <= margin %v", ErrDegenerateShape, name, value, margin)
	}
	return nil
}

func validateScale(factor float64) error {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return fmt.Errorf("%w: scale factor %v", ErrDegenerateShape, factor)
	}
	return nil
}

func diagonal(x, y, z float64) mgl64.Mat3 {
	return mgl64.Mat3{
		x, 0, 0,
		0, y, 0,
		0, 0, z,
	}
}

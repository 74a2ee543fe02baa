package actor

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// ConvexMesh is the convex hull of a vertex cloud, expanded by the margin
type ConvexMesh struct {
	vertices []mgl64.Vec3
	margin   float64
	bounds   AABB // core bounds, margin excluded
}

func NewConvexMesh(vertices []mgl64.Vec3, margin float64) (*ConvexMesh, error) {
	if err := validateMargin(margin); err != nil {
		return nil, err
	}
	if len(vertices) == 0 {
		return nil, fmt.Errorf("%w: convex mesh without vertices", ErrDegenerateShape)
	}

	m := &ConvexMesh{vertices: slices.Clone(vertices), margin: margin}
	m.updateBounds()
	return m, nil
}

func (m *ConvexMesh) updateBounds() {
	m.bounds = AABB{Min: m.vertices[0], Max: m.vertices[0]}
	for _, v := range m.vertices[1:] {
		m.bounds = m.bounds.Merge(AABB{Min: v, Max: v})
	}
}

func (m *ConvexMesh) Type() ShapeType { return ShapeTypeConvexMesh }

func (m *ConvexMesh) Margin() float64 { return m.margin }

func (m *ConvexMesh) Vertices() []mgl64.Vec3 { return m.vertices }

func (m *ConvexMesh) Support(direction mgl64.Vec3, withMargin bool) mgl64.Vec3 {
	best := m.vertices[0]
	bestDot := math.Inf(-1)
	for _, v := range m.vertices {
		if d := v.Dot(direction); d > bestDot {
			bestDot = d
			best = v
		}
	}

	if withMargin {
		return addMargin(best, direction, m.margin)
	}
	return best
}

func (m *ConvexMesh) LocalBounds() AABB {
	return m.bounds.Expand(m.margin)
}

// LocalInertia approximates the hull by its bounding box
func (m *ConvexMesh) LocalInertia(mass float64) mgl64.Mat3 {
	half := m.LocalBounds().HalfExtents()
	xSq, ySq, zSq := half.X()*half.X(), half.Y()*half.Y(), half.Z()*half.Z()
	factor := mass / 3.0

	return diagonal(factor*(ySq+zSq), factor*(xSq+zSq), factor*(xSq+ySq))
}

func (m *ConvexMesh) ComputeMass(density float64) float64 {
	half := m.LocalBounds().HalfExtents()
	return density * 8.0 * half.X() * half.Y() * half.Z()
}

func (m *ConvexMesh) Scale(factor float64) error {
	if err := validateScale(factor); err != nil {
		return err
	}
	for i := range m.vertices {
		m.vertices[i] = m.vertices[i].Mul(factor)
	}
	m.updateBounds()
	return nil
}

func (m *ConvexMesh) Clone() Shape {
	clone := *m
	clone.vertices = slices.Clone(m.vertices)
	return &clone
}

func (m *ConvexMesh) Equal(other Shape) bool {
	o, ok := other.(*ConvexMesh)
	return ok && o.margin == m.margin && slices.Equal(o.vertices, m.vertices)
}

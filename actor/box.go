package actor

import "github.com/go-gl/mathgl/mgl64"

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	// extent is the half-extents minus the margin
	extent mgl64.Vec3
	margin float64
}

// NewBox creates a box from its full half-extents. Each half extent must exceed the margin.
func NewBox(halfExtents mgl64.Vec3, margin float64) (*Box, error) {
	if err := validateMargin(margin); err != nil {
		return nil, err
	}
	for i, name := range [3]string{"half extent x", "half extent y", "half extent z"} {
		if err := validateDimension(name, halfExtents[i], margin); err != nil {
			return nil, err
		}
	}

	return &Box{
		extent: halfExtents.Sub(mgl64.Vec3{margin, margin, margin}),
		margin: margin,
	}, nil
}

func (b *Box) Type() ShapeType { return ShapeTypeBox }

func (b *Box) Margin() float64 { return b.margin }

// HalfExtents returns the half-extents including the margin
func (b *Box) HalfExtents() mgl64.Vec3 {
	return b.extent.Add(mgl64.Vec3{b.margin, b.margin, b.margin})
}

func (b *Box) Support(direction mgl64.Vec3, withMargin bool) mgl64.Vec3 {
	hx, hy, hz := b.extent.X(), b.extent.Y(), b.extent.Z()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	point := mgl64.Vec3{hx, hy, hz}
	if withMargin {
		return addMargin(point, direction, b.margin)
	}
	return point
}

func (b *Box) LocalBounds() AABB {
	half := b.HalfExtents()
	return AABB{Min: half.Mul(-1), Max: half}
}

// LocalInertia uses I = (1/3) * m * (e1² + e2²) with the half-extents of the two other axes
func (b *Box) LocalInertia(mass float64) mgl64.Mat3 {
	half := b.HalfExtents()
	xSq, ySq, zSq := half.X()*half.X(), half.Y()*half.Y(), half.Z()*half.Z()
	factor := mass / 3.0

	return diagonal(factor*(ySq+zSq), factor*(xSq+zSq), factor*(xSq+ySq))
}

func (b *Box) ComputeMass(density float64) float64 {
	half := b.HalfExtents()
	// Volume = 8 * hx * hy * hz (full dimensions are 2*halfExtents)
	return density * 8.0 * half.X() * half.Y() * half.Z()
}

func (b *Box) Scale(factor float64) error {
	if err := validateScale(factor); err != nil {
		return err
	}
	half := b.HalfExtents().Mul(factor)
	for i, name := range [3]string{"half extent x", "half extent y", "half extent z"} {
		if err := validateDimension(name, half[i], b.margin); err != nil {
			return err
		}
	}

	b.extent = half.Sub(mgl64.Vec3{b.margin, b.margin, b.margin})
	return nil
}

func (b *Box) Clone() Shape {
	clone := *b
	return &clone
}

func (b *Box) Equal(other Shape) bool {
	o, ok := other.(*Box)
	return ok && o.extent == b.extent && o.margin == b.margin
}

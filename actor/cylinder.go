package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Cylinder is a cylinder aligned with the local Y axis
type Cylinder struct {
	radius     float64 // core radius
	halfHeight float64 // core half height
	margin     float64
}

// NewCylinder creates a cylinder from its full radius and full height.
func NewCylinder(radius, height, margin float64) (*Cylinder, error) {
	if err := validateMargin(margin); err != nil {
		return nil, err
	}
	if err := validateDimension("radius", radius, margin); err != nil {
		return nil, err
	}
	if err := validateDimension("half height", height/2, margin); err != nil {
		return nil, err
	}
	return &Cylinder{radius: radius - margin, halfHeight: height/2 - margin, margin: margin}, nil
}

func (c *Cylinder) Type() ShapeType { return ShapeTypeCylinder }

func (c *Cylinder) Margin() float64 { return c.margin }

func (c *Cylinder) Radius() float64 { return c.radius + c.margin }

func (c *Cylinder) Height() float64 { return 2 * (c.halfHeight + c.margin) }

func (c *Cylinder) Support(direction mgl64.Vec3, withMargin bool) mgl64.Vec3 {
	var point mgl64.Vec3

	horizontal := math.Sqrt(direction.X()*direction.X() + direction.Z()*direction.Z())
	if horizontal > MachineEpsilon {
		scale := c.radius / horizontal
		point[0] = direction.X() * scale
		point[2] = direction.Z() * scale
	}
	if direction.Y() < 0 {
		point[1] = -c.halfHeight
	} else {
		point[1] = c.halfHeight
	}

	if withMargin {
		return addMargin(point, direction, c.margin)
	}
	return point
}

func (c *Cylinder) LocalBounds() AABB {
	r := c.Radius()
	h := c.halfHeight + c.margin
	return AABB{Min: mgl64.Vec3{-r, -h, -r}, Max: mgl64.Vec3{r, h, r}}
}

// LocalInertia: (1/12) m (3r² + h²) around X and Z, ½ m r² around the Y axis
func (c *Cylinder) LocalInertia(mass float64) mgl64.Mat3 {
	r := c.Radius()
	h := c.Height()
	offAxis := mass / 12.0 * (3*r*r + h*h)
	return diagonal(offAxis, 0.5*mass*r*r, offAxis)
}

func (c *Cylinder) ComputeMass(density float64) float64 {
	r := c.Radius()
	return density * math.Pi * r * r * c.Height()
}

func (c *Cylinder) Scale(factor float64) error {
	if err := validateScale(factor); err != nil {
		return err
	}
	radius := c.Radius() * factor
	halfHeight := (c.halfHeight + c.margin) * factor
	if err := validateDimension("radius", radius, c.margin); err != nil {
		return err
	}
	if err := validateDimension("half height", halfHeight, c.margin); err != nil {
		return err
	}

	c.radius = radius - c.margin
	c.halfHeight = halfHeight - c.margin
	return nil
}

func (c *Cylinder) Clone() Shape {
	clone := *c
	return &clone
}

func (c *Cylinder) Equal(other Shape) bool {
	o, ok := other.(*Cylinder)
	return ok && o.radius == c.radius && o.halfHeight == c.halfHeight && o.margin == c.margin
}

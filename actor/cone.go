package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Cone is a cone aligned with the local Y axis, apex up, centered on its bounding box
type Cone struct {
	radius     float64 // core base radius
	halfHeight float64 // core half height
	margin     float64
	sinTheta   float64
}

// NewCone creates a cone from its full base radius and full height.
func NewCone(radius, height, margin float64) (*Cone, error) {
	if err := validateMargin(margin); err != nil {
		return nil, err
	}
	if err := validateDimension("radius", radius, margin); err != nil {
		return nil, err
	}
	if err := validateDimension("half height", height/2, margin); err != nil {
		return nil, err
	}

	c := &Cone{radius: radius - margin, halfHeight: height/2 - margin, margin: margin}
	c.updateAngle()
	return c, nil
}

func (c *Cone) updateAngle() {
	c.sinTheta = c.radius / math.Sqrt(c.radius*c.radius+4*c.halfHeight*c.halfHeight)
}

func (c *Cone) Type() ShapeType { return ShapeTypeCone }

func (c *Cone) Margin() float64 { return c.margin }

func (c *Cone) Radius() float64 { return c.radius + c.margin }

func (c *Cone) Height() float64 { return 2 * (c.halfHeight + c.margin) }

func (c *Cone) Support(direction mgl64.Vec3, withMargin bool) mgl64.Vec3 {
	var point mgl64.Vec3

	if direction.Y() > direction.Len()*c.sinTheta {
		point = mgl64.Vec3{0, c.halfHeight, 0}
	} else {
		horizontal := math.Sqrt(direction.X()*direction.X() + direction.Z()*direction.Z())
		if horizontal > MachineEpsilon {
			scale := c.radius / horizontal
			point = mgl64.Vec3{direction.X() * scale, -c.halfHeight, direction.Z() * scale}
		} else {
			point = mgl64.Vec3{0, -c.halfHeight, 0}
		}
	}

	if withMargin {
		return addMargin(point, direction, c.margin)
	}
	return point
}

func (c *Cone) LocalBounds() AABB {
	r := c.Radius()
	h := c.halfHeight + c.margin
	return AABB{Min: mgl64.Vec3{-r, -h, -r}, Max: mgl64.Vec3{r, h, r}}
}

// LocalInertia around the center of mass:
// (3/20) m r² + (3/80) m h² off-axis, (3/10) m r² on-axis
func (c *Cone) LocalInertia(mass float64) mgl64.Mat3 {
	r := c.Radius()
	h := c.Height()
	offAxis := 3.0/20.0*mass*r*r + 3.0/80.0*mass*h*h
	return diagonal(offAxis, 3.0/10.0*mass*r*r, offAxis)
}

func (c *Cone) ComputeMass(density float64) float64 {
	r := c.Radius()
	return density * math.Pi * r * r * c.Height() / 3.0
}

func (c *Cone) Scale(factor float64) error {
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
	c.updateAngle()
	return nil
}

func (c *Cone) Clone() Shape {
	clone := *c
	return &clone
}

func (c *Cone) Equal(other Shape) bool {
	o, ok := other.(*Cone)
	return ok && o.radius == c.radius && o.halfHeight == c.halfHeight && o.margin == c.margin
}

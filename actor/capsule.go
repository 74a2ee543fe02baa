package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Capsule is a segment along the local Y axis swept by a sphere
type Capsule struct {
	radius     float64 // core radius
	halfHeight float64 // half length of the inner segment
	margin     float64
}

// NewCapsule creates a capsule from its radius and the height of its cylindrical part.
func NewCapsule(radius, height, margin float64) (*Capsule, error) {
	if err := validateMargin(margin); err != nil {
		return nil, err
	}
	if err := validateDimension("radius", radius, margin); err != nil {
		return nil, err
	}
	if height < 0 {
		return nil, ErrDegenerateShape
	}
	return &Capsule{radius: radius - margin, halfHeight: height / 2, margin: margin}, nil
}

func (c *Capsule) Type() ShapeType { return ShapeTypeCapsule }

func (c *Capsule) Margin() float64 { return c.margin }

func (c *Capsule) Radius() float64 { return c.radius + c.margin }

// Height returns the height of the cylindrical part
func (c *Capsule) Height() float64 { return 2 * c.halfHeight }

func (c *Capsule) Support(direction mgl64.Vec3, withMargin bool) mgl64.Vec3 {
	unit := SafeNormalize(direction)

	center := mgl64.Vec3{0, c.halfHeight, 0}
	if direction.Y() < 0 {
		center[1] = -c.halfHeight
	}

	point := center.Add(unit.Mul(c.radius))
	if withMargin {
		return point.Add(unit.Mul(c.margin))
	}
	return point
}

func (c *Capsule) LocalBounds() AABB {
	r := c.Radius()
	h := c.halfHeight + r
	return AABB{Min: mgl64.Vec3{-r, -h, -r}, Max: mgl64.Vec3{r, h, r}}
}

// LocalInertia splits the mass between the cylinder and the two hemispheres by volume.
func (c *Capsule) LocalInertia(mass float64) mgl64.Mat3 {
	r := c.Radius()
	h := c.Height()

	cylinderVolume := math.Pi * r * r * h
	sphereVolume := 4.0 / 3.0 * math.Pi * r * r * r
	cylinderMass := mass * cylinderVolume / (cylinderVolume + sphereVolume)
	sphereMass := mass - cylinderMass

	onAxis := cylinderMass*r*r/2 + sphereMass*2*r*r/5
	offAxis := cylinderMass*(h*h/12+r*r/4) + sphereMass*(2*r*r/5+h*h/4+3*h*r/8)

	return diagonal(offAxis, onAxis, offAxis)
}

func (c *Capsule) ComputeMass(density float64) float64 {
	r := c.Radius()
	return density * (math.Pi*r*r*c.Height() + 4.0/3.0*math.Pi*r*r*r)
}

func (c *Capsule) Scale(factor float64) error {
	if err := validateScale(factor); err != nil {
		return err
	}
	radius := c.Radius() * factor
	if err := validateDimension("radius", radius, c.margin); err != nil {
		return err
	}

	c.radius = radius - c.margin
	c.halfHeight *= factor
	return nil
}

func (c *Capsule) Clone() Shape {
	clone := *c
	return &clone
}

func (c *Capsule) Equal(other Shape) bool {
	o, ok := other.(*Capsule)
	return ok && o.radius == c.radius && o.halfHeight == c.halfHeight && o.margin == c.margin
}

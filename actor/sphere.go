package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Sphere represents a spherical collision shape
type Sphere struct {
	radius float64
	margin float64
}

func NewSphere(radius, margin float64) (*Sphere, error) {
	if err := validateMargin(margin); err != nil {
		return nil, err
	}
	if err := validateDimension("radius", radius, margin); err != nil {
		return nil, err
	}
	return &Sphere{radius: radius, margin: margin}, nil
}

func (s *Sphere) Type() ShapeType { return ShapeTypeSphere }

func (s *Sphere) Margin() float64 { return s.margin }

// Radius returns the full radius, margin included
func (s *Sphere) Radius() float64 { return s.radius }

func (s *Sphere) Support(direction mgl64.Vec3, withMargin bool) mgl64.Vec3 {
	if withMargin {
		return SafeNormalize(direction).Mul(s.radius)
	}
	return SafeNormalize(direction).Mul(s.radius - s.margin)
}

func (s *Sphere) LocalBounds() AABB {
	r := mgl64.Vec3{s.radius, s.radius, s.radius}
	return AABB{Min: r.Mul(-1), Max: r}
}

func (s *Sphere) LocalInertia(mass float64) mgl64.Mat3 {
	// I = (2/5) * m * r², identical on all axes
	i := (2.0 / 5.0) * mass * s.radius * s.radius
	return diagonal(i, i, i)
}

func (s *Sphere) ComputeMass(density float64) float64 {
	// Volume of sphere = (4/3) * π * r³
	return density * (4.0 / 3.0) * math.Pi * math.Pow(s.radius, 3)
}

func (s *Sphere) Scale(factor float64) error {
	if err := validateScale(factor); err != nil {
		return err
	}
	radius := s.radius * factor
	if err := validateDimension("radius", radius, s.margin); err != nil {
		return err
	}
	s.radius = radius
	return nil
}

func (s *Sphere) Clone() Shape {
	clone := *s
	return &clone
}

func (s *Sphere) Equal(other Shape) bool {
	o, ok := other.(*Sphere)
	return ok && o.radius == s.radius && o.margin == s.margin
}

package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MachineEpsilon guards divisions by vector lengths close to zero.
const MachineEpsilon = 2.220446049250313e-16

// fallbackAxis is used whenever a direction is too short to be normalized.
var fallbackAxis = mgl64.Vec3{0, 1, 0}

// SafeNormalize returns the unit vector of v, or the fallback axis when v is degenerate.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	length := v.Len()
	if length < MachineEpsilon {
		return fallbackAxis
	}
	return v.Mul(1.0 / length)
}

// OneUnitOrthogonal returns a unit vector orthogonal to v.
// It picks the axis least aligned with v so the result never degenerates.
func OneUnitOrthogonal(v mgl64.Vec3) mgl64.Vec3 {
	ax, ay, az := math.Abs(v.X()), math.Abs(v.Y()), math.Abs(v.Z())

	var other mgl64.Vec3
	switch {
	case ax <= ay && ax <= az:
		other = mgl64.Vec3{1, 0, 0}
	case ay <= az:
		other = mgl64.Vec3{0, 1, 0}
	default:
		other = mgl64.Vec3{0, 0, 1}
	}

	return SafeNormalize(v.Cross(other))
}

// OrthonormalBasis builds two tangents spanning the plane orthogonal to normal.
func OrthonormalBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	tangent1 := OneUnitOrthogonal(normal)
	tangent2 := SafeNormalize(normal.Cross(tangent1))

	return tangent1, tangent2
}

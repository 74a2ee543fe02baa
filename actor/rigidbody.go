package actor

import (
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyID is the stable identifier used to order body pairs
type BodyID uint32

var lastBodyID atomic.Uint32

func nextBodyID() BodyID {
	return BodyID(lastBodyID.Add(1))
}

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic

	// BodyTypeKinematic bodies move with their own velocity and ignore impulses
	BodyTypeKinematic
)

type Material struct {
	Density    float64
	Friction   float64 // combined with the partner friction by geometric mean
	Bounciness float64 // 0= no rebound, 1= perfect restitution

	LinearDamping  float64 // typical: 0.01
	AngularDamping float64 // typical: 0.05
}

// DefaultMaterial returns the material given to new bodies
func DefaultMaterial(density float64) Material {
	return Material{
		Density:    density,
		Friction:   0.3,
		Bounciness: 0,
	}
}

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	ID BodyID

	// Spatial properties
	PreviousTransform Transform
	Transform         Transform

	Velocity        mgl64.Vec3 // Linear velocity (m/s)
	AngularVelocity mgl64.Vec3 // rad/s

	mass                float64
	InverseMass         float64
	InertiaLocal        mgl64.Mat3
	InverseInertiaLocal mgl64.Mat3

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3

	IsSleeping bool
	SleepTimer float64
	IsTrigger  bool
	// HasMoved asks the broad phase to refresh the body AABB on the next detection pass
	HasMoved bool

	Material Material
	BodyType BodyType

	Shape Shape
}

// NewRigidBody creates a new rigid body with the given properties
// density is used to calculate mass for dynamic bodies (ignored otherwise)
func NewRigidBody(transform Transform, shape Shape, bodyType BodyType, density float64) *RigidBody {
	rb := &RigidBody{
		ID:                nextBodyID(),
		PreviousTransform: transform,
		Transform:         transform,
		Shape:             shape,
		BodyType:          bodyType,
		Material:          DefaultMaterial(density),
		HasMoved:          true,
	}
	rb.UpdateMassProperties()

	return rb
}

// UpdateMassProperties recomputes mass and inertia from the shape and the material density.
func (rb *RigidBody) UpdateMassProperties() {
	if rb.BodyType != BodyTypeDynamic {
		rb.mass = math.Inf(1)
		rb.InverseMass = 0
		rb.InertiaLocal = mgl64.Mat3{}
		rb.InverseInertiaLocal = mgl64.Mat3{}
		return
	}

	rb.mass = rb.Shape.ComputeMass(rb.Material.Density)
	rb.InverseMass = 0
	if rb.mass > 0 {
		rb.InverseMass = 1.0 / rb.mass
	}
	rb.InertiaLocal = rb.Shape.LocalInertia(rb.mass)
	rb.InverseInertiaLocal = rb.InertiaLocal.Inv()
}

func (rb *RigidBody) Mass() float64 {
	return rb.mass
}

// IsMotionEnabled reports whether impulses may change the body velocity
func (rb *RigidBody) IsMotionEnabled() bool {
	return rb.BodyType == BodyTypeDynamic
}

// AABB returns the world space bounds, margin included
func (rb *RigidBody) AABB() AABB {
	return TransformAABB(rb.Shape.LocalBounds(), rb.Transform)
}

func (rb *RigidBody) SetTransform(transform Transform) {
	rb.Transform = transform
	rb.HasMoved = true
}

// AccumulateRest grows the sleep timer while the body stays under the velocity
// thresholds and resets it otherwise. It returns the current timer.
func (rb *RigidBody) AccumulateRest(dt, linearThreshold, angularThreshold float64) float64 {
	if rb.Velocity.Len() < linearThreshold && rb.AngularVelocity.Len() < angularThreshold {
		rb.SleepTimer += dt
	} else {
		rb.SleepTimer = 0
	}

	return rb.SleepTimer
}

func (rb *RigidBody) Sleep() {
	rb.IsSleeping = true
	rb.SleepTimer = 0.0

	rb.ClearForces()
	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
}

func (rb *RigidBody) Awake() {
	rb.IsSleeping = false
	rb.SleepTimer = 0.0
}

// IntegrateVelocity returns the velocities after applying gravity, forces and damping for dt.
// The body itself is not modified.
func (rb *RigidBody) IntegrateVelocity(dt float64, gravity mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	if !rb.IsMotionEnabled() || rb.IsSleeping {
		return rb.Velocity, rb.AngularVelocity
	}

	linear := rb.Velocity.Add(gravity.Add(rb.accumulatedForce.Mul(rb.InverseMass)).Mul(dt))
	angular := rb.AngularVelocity.Add(rb.InverseInertiaWorld().Mul3x1(rb.accumulatedTorque).Mul(dt))

	linear = linear.Mul(math.Exp(-rb.Material.LinearDamping * dt))
	angular = angular.Mul(math.Exp(-rb.Material.AngularDamping * dt))

	return linear, angular
}

// IntegratePosition commits the solved velocities and advances the transform.
// The split velocities move the body without being stored as real velocity.
func (rb *RigidBody) IntegratePosition(dt float64, linear, angular, splitLinear, splitAngular mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic || rb.IsSleeping {
		return
	}

	rb.PreviousTransform = rb.Transform
	rb.Velocity = linear
	rb.AngularVelocity = angular

	move := linear.Add(splitLinear)
	spin := angular.Add(splitAngular)

	rb.Transform.Position = rb.Transform.Position.Add(move.Mul(dt))

	omegaQuat := mgl64.Quat{V: spin, W: 0}
	qDot := omegaQuat.Mul(rb.Transform.Rotation).Scale(0.5)
	rb.Transform.Rotation = rb.Transform.Rotation.Add(qDot.Scale(dt)).Normalize()

	if move.LenSqr() > 0 || spin.LenSqr() > 0 {
		rb.HasMoved = true
	}
	rb.ClearForces()
}

// AddForce applies a force at the center of mass for the next step
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.IsMotionEnabled() {
		rb.Awake()
		rb.accumulatedForce = rb.accumulatedForce.Add(force)
	}
}

func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	if rb.IsMotionEnabled() {
		rb.Awake()
		rb.accumulatedTorque = rb.accumulatedTorque.Add(torque)
	}
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
	rb.accumulatedTorque = mgl64.Vec3{0, 0, 0}
}

// SupportWorld returns the world space support point of the body shape
func (rb *RigidBody) SupportWorld(direction mgl64.Vec3, withMargin bool) mgl64.Vec3 {
	return SupportWorld(rb.Shape, rb.Transform, direction, withMargin)
}

// SupportWorld maps a world direction into the shape frame, queries the
// support point there and maps it back to world space.
func SupportWorld(shape Shape, transform Transform, direction mgl64.Vec3, withMargin bool) mgl64.Vec3 {
	localSupport := shape.Support(transform.LocalDirection(direction), withMargin)
	return transform.Apply(localSupport)
}

// InverseInertiaWorld returns R * I_local^-1 * R^T, zero for bodies without motion
func (rb *RigidBody) InverseInertiaWorld() mgl64.Mat3 {
	if !rb.IsMotionEnabled() {
		return mgl64.Mat3{}
	}

	R := rb.Transform.RotationMatrix()
	return R.Mul3(rb.InverseInertiaLocal).Mul3(R.Transpose())
}

package constraint

import (
	"fmt"
	"strings"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// FrictionMode selects where friction is solved. It is fixed for the solver lifetime.
type FrictionMode int

const (
	// FrictionManifoldCenter solves two friction constraints and one twist
	// constraint at the center of each manifold.
	FrictionManifoldCenter FrictionMode = iota
	// FrictionPerPoint solves two friction constraints per contact point.
	FrictionPerPoint
)

func (m FrictionMode) String() string {
	switch m {
	case FrictionManifoldCenter:
		return "manifold_center"
	case FrictionPerPoint:
		return "per_point"
	}
	return fmt.Sprintf("FrictionMode(%d)", int(m))
}

func (m FrictionMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *FrictionMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "manifold_center", "center":
		*m = FrictionManifoldCenter
	case "per_point", "point":
		*m = FrictionPerPoint
	default:
		return fmt.Errorf("unknown friction mode %q", text)
	}
	return nil
}

// SolverSettings tunes the contact solver.
type SolverSettings struct {
	WarmStarting bool         `toml:"warm_starting"`
	SplitImpulse bool         `toml:"split_impulse"`
	FrictionMode FrictionMode `toml:"friction_mode"`

	// Baumgarte is the position correction factor when split impulses are off
	Baumgarte float64 `toml:"baumgarte"`
	// BaumgarteSplit is the factor used on the split velocity channel
	BaumgarteSplit float64 `toml:"baumgarte_split"`
	// Slop is the penetration left uncorrected
	Slop float64 `toml:"slop"`
	// RestitutionVelocityThreshold is the approach speed under which contacts do not bounce
	RestitutionVelocityThreshold float64 `toml:"restitution_velocity_threshold"`
}

func DefaultSolverSettings() SolverSettings {
	return SolverSettings{
		WarmStarting:                 true,
		SplitImpulse:                 true,
		FrictionMode:                 FrictionManifoldCenter,
		Baumgarte:                    0.2,
		BaumgarteSplit:               0.2,
		Slop:                         0.01,
		RestitutionVelocityThreshold: 1.0,
	}
}

// Velocity is the per body entry of the velocity arena.
type Velocity struct {
	Linear  mgl64.Vec3
	Angular mgl64.Vec3
}

// Island is a connected group of awake bodies with the manifolds and joints linking them.
type Island struct {
	Bodies    []*actor.RigidBody
	Manifolds []*ContactManifold
	Joints    []Joint
}

type contactPointSolver struct {
	external *ContactPoint

	normal           mgl64.Vec3
	r1, r2           mgl64.Vec3
	r1CrossN         mgl64.Vec3
	r2CrossN         mgl64.Vec3
	penetrationDepth float64
	restitutionBias  float64
	isResting        bool

	inversePenetrationMass  float64
	penetrationImpulse      float64
	penetrationSplitImpulse float64

	// per point friction only
	frictionVector1      mgl64.Vec3
	frictionVector2      mgl64.Vec3
	oldFrictionVector1   mgl64.Vec3
	oldFrictionVector2   mgl64.Vec3
	r1CrossT1, r1CrossT2 mgl64.Vec3
	r2CrossT1, r2CrossT2 mgl64.Vec3
	inverseFriction1Mass float64
	inverseFriction2Mass float64
	friction1Impulse     float64
	friction2Impulse     float64
}

type manifoldSolver struct {
	external *ContactManifold

	indexA, indexB   int
	motionA, motionB bool
	inverseMassA     float64
	inverseMassB     float64
	inverseInertiaA  mgl64.Mat3
	inverseInertiaB  mgl64.Mat3

	restitution float64
	friction    float64

	points []contactPointSolver

	// manifold center friction only
	normal                   mgl64.Vec3
	r1Friction, r2Friction   mgl64.Vec3
	frictionVector1          mgl64.Vec3
	frictionVector2          mgl64.Vec3
	oldFrictionVector1       mgl64.Vec3
	oldFrictionVector2       mgl64.Vec3
	r1CrossT1, r1CrossT2     mgl64.Vec3
	r2CrossT1, r2CrossT2     mgl64.Vec3
	inverseFriction1Mass     float64
	inverseFriction2Mass     float64
	inverseTwistFrictionMass float64
	friction1Impulse         float64
	friction2Impulse         float64
	frictionTwistImpulse     float64
}

// ContactSolver is a sequential impulse solver over the manifolds of one island.
//
// The caller drives it once per island and step:
//
//	InitializeForIsland → WarmStart → Solve (N times) → StoreImpulses → Cleanup
type ContactSolver struct {
	settings SolverSettings
	dt       float64

	velocities      []Velocity
	splitVelocities []Velocity
	index           map[actor.BodyID]int

	manifolds []manifoldSolver
}

func NewContactSolver(settings SolverSettings) *ContactSolver {
	return &ContactSolver{settings: settings}
}

func (s *ContactSolver) Settings() SolverSettings {
	return s.settings
}

// SetVelocities hands the per step velocity arena to the solver.
// The index maps every body of the islands to its slot in both slices.
func (s *ContactSolver) SetVelocities(velocities, splitVelocities []Velocity, index map[actor.BodyID]int) {
	s.velocities = velocities
	s.splitVelocities = splitVelocities
	s.index = index
}

func (s *ContactSolver) bodyIndex(body *actor.RigidBody) (int, error) {
	i, ok := s.index[body.ID]
	if !ok || i < 0 || i >= len(s.velocities) || i >= len(s.splitVelocities) {
		return 0, fmt.Errorf("%w: body %d", ErrUnknownBody, body.ID)
	}
	return i, nil
}

// InitializeForIsland builds the solver constraints of every manifold of the island.
func (s *ContactSolver) InitializeForIsland(dt float64, island *Island) error {
	if island == nil || len(island.Bodies) == 0 || len(island.Manifolds) == 0 {
		return ErrEmptyIsland
	}
	if s.velocities == nil || s.splitVelocities == nil || s.index == nil {
		return ErrNoVelocities
	}

	s.dt = dt
	s.manifolds = s.manifolds[:0]

	for _, external := range island.Manifolds {
		if external.Len() == 0 {
			continue
		}

		bodyA, bodyB := external.BodyA, external.BodyB
		indexA, err := s.bodyIndex(bodyA)
		if err != nil {
			return err
		}
		indexB, err := s.bodyIndex(bodyB)
		if err != nil {
			return err
		}

		manifold := manifoldSolver{
			external:        external,
			indexA:          indexA,
			indexB:          indexB,
			motionA:         bodyA.IsMotionEnabled(),
			motionB:         bodyB.IsMotionEnabled(),
			inverseInertiaA: bodyA.InverseInertiaWorld(),
			inverseInertiaB: bodyB.InverseInertiaWorld(),
			restitution:     ComputeRestitution(bodyA.Material, bodyB.Material),
			friction:        ComputeFriction(bodyA.Material, bodyB.Material),
		}
		if manifold.motionA {
			manifold.inverseMassA = bodyA.InverseMass
		}
		if manifold.motionB {
			manifold.inverseMassB = bodyB.InverseMass
		}

		xA := bodyA.Transform.Position
		xB := bodyB.Transform.Position
		var frictionPointA, frictionPointB mgl64.Vec3

		contacts := external.Contacts()
		manifold.points = make([]contactPointSolver, len(contacts))
		for i := range contacts {
			contact := &contacts[i]
			manifold.points[i] = contactPointSolver{
				external:           contact,
				normal:             contact.Normal,
				r1:                 contact.WorldPointA.Sub(xA),
				r2:                 contact.WorldPointB.Sub(xB),
				penetrationDepth:   contact.Depth,
				isResting:          contact.IsResting,
				oldFrictionVector1: contact.FrictionVector1,
				oldFrictionVector2: contact.FrictionVector2,
			}
			contact.IsResting = true

			frictionPointA = frictionPointA.Add(contact.WorldPointA)
			frictionPointB = frictionPointB.Add(contact.WorldPointB)
		}

		if s.settings.FrictionMode == FrictionManifoldCenter {
			n := 1.0 / float64(len(contacts))
			manifold.r1Friction = frictionPointA.Mul(n).Sub(xA)
			manifold.r2Friction = frictionPointB.Mul(n).Sub(xB)
			manifold.oldFrictionVector1 = external.FrictionVector1
			manifold.oldFrictionVector2 = external.FrictionVector2

			if s.settings.WarmStarting {
				manifold.friction1Impulse = external.FrictionImpulse1
				manifold.friction2Impulse = external.FrictionImpulse2
				manifold.frictionTwistImpulse = external.FrictionTwistImpulse
			}
		}

		s.initializeConstraints(&manifold)
		s.manifolds = append(s.manifolds, manifold)
	}

	return nil
}

// initializeConstraints computes effective masses, friction bases and restitution biases.
func (s *ContactSolver) initializeConstraints(m *manifoldSolver) {
	vA, vB := s.velocities[m.indexA], s.velocities[m.indexB]
	m.normal = mgl64.Vec3{}

	for i := range m.points {
		p := &m.points[i]

		p.r1CrossN = p.r1.Cross(p.normal)
		p.r2CrossN = p.r2.Cross(p.normal)
		p.inversePenetrationMass = inverse(m.effectiveMass(p.r1, p.r2, p.r1CrossN, p.r2CrossN, p.normal))

		deltaV := relativeVelocity(vA, vB, p.r1, p.r2)

		if s.settings.FrictionMode == FrictionPerPoint {
			p.frictionVector1, p.frictionVector2 = computeFrictionVectors(deltaV, p.normal)
			p.r1CrossT1 = p.r1.Cross(p.frictionVector1)
			p.r1CrossT2 = p.r1.Cross(p.frictionVector2)
			p.r2CrossT1 = p.r2.Cross(p.frictionVector1)
			p.r2CrossT2 = p.r2.Cross(p.frictionVector2)
			p.inverseFriction1Mass = inverse(m.effectiveMass(p.r1, p.r2, p.r1CrossT1, p.r2CrossT1, p.frictionVector1))
			p.inverseFriction2Mass = inverse(m.effectiveMass(p.r1, p.r2, p.r1CrossT2, p.r2CrossT2, p.frictionVector2))
		}

		p.restitutionBias = 0
		if deltaVDotN := deltaV.Dot(p.normal); deltaVDotN < -s.settings.RestitutionVelocityThreshold {
			p.restitutionBias = m.restitution * deltaVDotN
		}

		if s.settings.WarmStarting {
			p.penetrationImpulse = p.external.PenetrationImpulse
			p.friction1Impulse = p.external.FrictionImpulse1
			p.friction2Impulse = p.external.FrictionImpulse2
		}
		p.penetrationSplitImpulse = 0

		m.normal = m.normal.Add(p.normal)
	}

	if s.settings.FrictionMode != FrictionManifoldCenter {
		return
	}

	m.normal = actor.SafeNormalize(m.normal)
	deltaV := relativeVelocity(vA, vB, m.r1Friction, m.r2Friction)
	m.frictionVector1, m.frictionVector2 = computeFrictionVectors(deltaV, m.normal)

	m.r1CrossT1 = m.r1Friction.Cross(m.frictionVector1)
	m.r1CrossT2 = m.r1Friction.Cross(m.frictionVector2)
	m.r2CrossT1 = m.r2Friction.Cross(m.frictionVector1)
	m.r2CrossT2 = m.r2Friction.Cross(m.frictionVector2)
	m.inverseFriction1Mass = inverse(m.effectiveMass(m.r1Friction, m.r2Friction, m.r1CrossT1, m.r2CrossT1, m.frictionVector1))
	m.inverseFriction2Mass = inverse(m.effectiveMass(m.r1Friction, m.r2Friction, m.r1CrossT2, m.r2CrossT2, m.frictionVector2))
	m.inverseTwistFrictionMass = inverse(m.normal.Dot(m.inverseInertiaA.Mul3x1(m.normal)) + m.normal.Dot(m.inverseInertiaB.Mul3x1(m.normal)))
}

// effectiveMass returns invMassA + invMassB + ((IA⁻¹(r1×d))×r1)·d + ((IB⁻¹(r2×d))×r2)·d
func (m *manifoldSolver) effectiveMass(r1, r2, r1CrossD, r2CrossD, direction mgl64.Vec3) float64 {
	mass := m.inverseMassA + m.inverseMassB
	if m.motionA {
		mass += m.inverseInertiaA.Mul3x1(r1CrossD).Cross(r1).Dot(direction)
	}
	if m.motionB {
		mass += m.inverseInertiaB.Mul3x1(r2CrossD).Cross(r2).Dot(direction)
	}
	return mass
}

func inverse(mass float64) float64 {
	if mass > 0 {
		return 1.0 / mass
	}
	return 0
}

func relativeVelocity(vA, vB Velocity, r1, r2 mgl64.Vec3) mgl64.Vec3 {
	return vB.Linear.Add(vB.Angular.Cross(r2)).Sub(vA.Linear).Sub(vA.Angular.Cross(r1))
}

// computeFrictionVectors aligns the first tangent with the relative tangential
// velocity, or picks any unit vector orthogonal to the normal when it vanishes.
func computeFrictionVectors(deltaVelocity, normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	tangentVelocity := deltaVelocity.Sub(normal.Mul(deltaVelocity.Dot(normal)))

	var t1 mgl64.Vec3
	if length := tangentVelocity.Len(); length > actor.MachineEpsilon {
		t1 = tangentVelocity.Mul(1.0 / length)
	} else {
		t1 = actor.OneUnitOrthogonal(normal)
	}

	return t1, actor.SafeNormalize(normal.Cross(t1))
}

// applyImpulse adds a linear impulse along direction and the matching angular
// impulses to the given channel. Bodies without motion are left untouched.
func (s *ContactSolver) applyImpulse(channel []Velocity, m *manifoldSolver, direction, angularA, angularB mgl64.Vec3, lambda float64) {
	if m.motionA {
		v := &channel[m.indexA]
		v.Linear = v.Linear.Sub(direction.Mul(m.inverseMassA * lambda))
		v.Angular = v.Angular.Sub(m.inverseInertiaA.Mul3x1(angularA.Mul(lambda)))
	}
	if m.motionB {
		v := &channel[m.indexB]
		v.Linear = v.Linear.Add(direction.Mul(m.inverseMassB * lambda))
		v.Angular = v.Angular.Add(m.inverseInertiaB.Mul3x1(angularB.Mul(lambda)))
	}
}

// WarmStart re-applies the impulses of resting contacts from the previous step.
func (s *ContactSolver) WarmStart() {
	if !s.settings.WarmStarting {
		return
	}

	for mi := range s.manifolds {
		m := &s.manifolds[mi]
		hasRestingPoint := false

		for i := range m.points {
			p := &m.points[i]
			if !p.isResting {
				p.penetrationImpulse = 0
				p.friction1Impulse = 0
				p.friction2Impulse = 0
				continue
			}
			hasRestingPoint = true

			s.applyImpulse(s.velocities, m, p.normal, p.r1CrossN, p.r2CrossN, p.penetrationImpulse)

			if s.settings.FrictionMode == FrictionPerPoint {
				old := p.oldFrictionVector1.Mul(p.friction1Impulse).Add(p.oldFrictionVector2.Mul(p.friction2Impulse))
				p.friction1Impulse = old.Dot(p.frictionVector1)
				p.friction2Impulse = old.Dot(p.frictionVector2)

				s.applyImpulse(s.velocities, m, p.frictionVector1, p.r1CrossT1, p.r2CrossT1, p.friction1Impulse)
				s.applyImpulse(s.velocities, m, p.frictionVector2, p.r1CrossT2, p.r2CrossT2, p.friction2Impulse)
			}
		}

		if s.settings.FrictionMode != FrictionManifoldCenter {
			continue
		}
		if !hasRestingPoint {
			m.friction1Impulse = 0
			m.friction2Impulse = 0
			m.frictionTwistImpulse = 0
			continue
		}

		old := m.oldFrictionVector1.Mul(m.friction1Impulse).Add(m.oldFrictionVector2.Mul(m.friction2Impulse))
		m.friction1Impulse = old.Dot(m.frictionVector1)
		m.friction2Impulse = old.Dot(m.frictionVector2)

		s.applyImpulse(s.velocities, m, m.frictionVector1, m.r1CrossT1, m.r2CrossT1, m.friction1Impulse)
		s.applyImpulse(s.velocities, m, m.frictionVector2, m.r1CrossT2, m.r2CrossT2, m.friction2Impulse)
		s.applyImpulse(s.velocities, m, mgl64.Vec3{}, m.normal, m.normal, m.frictionTwistImpulse)
	}
}

// Solve runs one Gauss-Seidel sweep over every contact of the island.
func (s *ContactSolver) Solve() {
	beta := s.settings.Baumgarte
	if s.settings.SplitImpulse {
		beta = s.settings.BaumgarteSplit
	}

	for mi := range s.manifolds {
		m := &s.manifolds[mi]
		sumPenetrationImpulse := 0.0

		for i := range m.points {
			p := &m.points[i]

			// penetration
			jv := relativeVelocity(s.velocities[m.indexA], s.velocities[m.indexB], p.r1, p.r2).Dot(p.normal)

			biasPenetration := 0.0
			if p.penetrationDepth > s.settings.Slop {
				biasPenetration = -(beta / s.dt) * (p.penetrationDepth - s.settings.Slop)
			}

			b := p.restitutionBias
			if !s.settings.SplitImpulse {
				b += biasPenetration
			}

			lambda := clampImpulse(&p.penetrationImpulse, -(jv+b)*p.inversePenetrationMass, 0, maxImpulse)
			s.applyImpulse(s.velocities, m, p.normal, p.r1CrossN, p.r2CrossN, lambda)
			sumPenetrationImpulse += p.penetrationImpulse

			if s.settings.SplitImpulse {
				jvSplit := relativeVelocity(s.splitVelocities[m.indexA], s.splitVelocities[m.indexB], p.r1, p.r2).Dot(p.normal)
				lambdaSplit := clampImpulse(&p.penetrationSplitImpulse, -(jvSplit+biasPenetration)*p.inversePenetrationMass, 0, maxImpulse)
				s.applyImpulse(s.splitVelocities, m, p.normal, p.r1CrossN, p.r2CrossN, lambdaSplit)
			}

			if s.settings.FrictionMode != FrictionPerPoint {
				continue
			}

			limit := m.friction * p.penetrationImpulse

			jv = relativeVelocity(s.velocities[m.indexA], s.velocities[m.indexB], p.r1, p.r2).Dot(p.frictionVector1)
			lambda = clampImpulse(&p.friction1Impulse, -jv*p.inverseFriction1Mass, -limit, limit)
			s.applyImpulse(s.velocities, m, p.frictionVector1, p.r1CrossT1, p.r2CrossT1, lambda)

			jv = relativeVelocity(s.velocities[m.indexA], s.velocities[m.indexB], p.r1, p.r2).Dot(p.frictionVector2)
			lambda = clampImpulse(&p.friction2Impulse, -jv*p.inverseFriction2Mass, -limit, limit)
			s.applyImpulse(s.velocities, m, p.frictionVector2, p.r1CrossT2, p.r2CrossT2, lambda)
		}

		if s.settings.FrictionMode != FrictionManifoldCenter {
			continue
		}

		limit := m.friction * sumPenetrationImpulse

		jv := relativeVelocity(s.velocities[m.indexA], s.velocities[m.indexB], m.r1Friction, m.r2Friction).Dot(m.frictionVector1)
		lambda := clampImpulse(&m.friction1Impulse, -jv*m.inverseFriction1Mass, -limit, limit)
		s.applyImpulse(s.velocities, m, m.frictionVector1, m.r1CrossT1, m.r2CrossT1, lambda)

		jv = relativeVelocity(s.velocities[m.indexA], s.velocities[m.indexB], m.r1Friction, m.r2Friction).Dot(m.frictionVector2)
		lambda = clampImpulse(&m.friction2Impulse, -jv*m.inverseFriction2Mass, -limit, limit)
		s.applyImpulse(s.velocities, m, m.frictionVector2, m.r1CrossT2, m.r2CrossT2, lambda)

		// twist friction around the manifold normal
		jv = s.velocities[m.indexB].Angular.Sub(s.velocities[m.indexA].Angular).Dot(m.normal)
		lambda = clampImpulse(&m.frictionTwistImpulse, -jv*m.inverseTwistFrictionMass, -limit, limit)
		s.applyImpulse(s.velocities, m, mgl64.Vec3{}, m.normal, m.normal, lambda)
	}
}

const maxImpulse = 1e300

// clampImpulse adds delta to the accumulated impulse, clamps the total to
// [low, high] and returns the change actually applied.
func clampImpulse(accumulated *float64, delta, low, high float64) float64 {
	old := *accumulated
	*accumulated = max(low, min(old+delta, high))
	return *accumulated - old
}

// StoreImpulses copies the accumulated impulses and friction vectors back to
// the persistent contacts for the next warm start.
func (s *ContactSolver) StoreImpulses() {
	for mi := range s.manifolds {
		m := &s.manifolds[mi]

		for i := range m.points {
			p := &m.points[i]
			p.external.PenetrationImpulse = p.penetrationImpulse
			p.external.FrictionImpulse1 = p.friction1Impulse
			p.external.FrictionImpulse2 = p.friction2Impulse
			p.external.FrictionVector1 = p.frictionVector1
			p.external.FrictionVector2 = p.frictionVector2
		}

		if s.settings.FrictionMode == FrictionManifoldCenter {
			m.external.FrictionImpulse1 = m.friction1Impulse
			m.external.FrictionImpulse2 = m.friction2Impulse
			m.external.FrictionTwistImpulse = m.frictionTwistImpulse
			m.external.FrictionVector1 = m.frictionVector1
			m.external.FrictionVector2 = m.frictionVector2
		}
	}
}

// Cleanup releases the island constraints. The velocity arena stays set
// for the next island of the same step.
func (s *ContactSolver) Cleanup() {
	for i := range s.manifolds {
		s.manifolds[i] = manifoldSolver{}
	}
	s.manifolds = s.manifolds[:0]
}

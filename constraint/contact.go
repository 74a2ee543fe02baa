package constraint

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MaxContactPoints is the capacity of a contact manifold.
	MaxContactPoints = 4

	// PersistentContactDistThreshold is the distance under which a new contact
	// refreshes an existing point instead of adding one, and the drift above
	// which an existing point is dropped.
	PersistentContactDistThreshold = 0.03
)

// ContactInfo is the narrow phase result for one pair of bodies.
// Normal is a unit vector pointing from A to B, Depth is non negative.
type ContactInfo struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody

	Normal mgl64.Vec3
	Depth  float64

	PointA mgl64.Vec3 // world space, on the surface of A
	PointB mgl64.Vec3 // world space, on the surface of B

	LocalPointA mgl64.Vec3
	LocalPointB mgl64.Vec3
}

// ContactPoint is a persistent contact. Its impulses and friction vectors
// survive from one step to the next while the manifold keeps it.
type ContactPoint struct {
	Normal mgl64.Vec3
	Depth  float64

	LocalPointA mgl64.Vec3
	LocalPointB mgl64.Vec3
	WorldPointA mgl64.Vec3
	WorldPointB mgl64.Vec3

	// IsResting is set once the point went through a solver pass
	IsResting bool

	PenetrationImpulse float64
	FrictionImpulse1   float64
	FrictionImpulse2   float64
	FrictionVector1    mgl64.Vec3
	FrictionVector2    mgl64.Vec3
}

func newContactPoint(info ContactInfo) ContactPoint {
	point := ContactPoint{}
	point.refresh(info)
	return point
}

func (p *ContactPoint) refresh(info ContactInfo) {
	p.Normal = info.Normal
	p.Depth = info.Depth
	p.LocalPointA = info.LocalPointA
	p.LocalPointB = info.LocalPointB
	p.WorldPointA = info.PointA
	p.WorldPointB = info.PointB
}

// ContactManifold keeps up to MaxContactPoints contacts between two bodies,
// plus the friction state solved at the manifold center.
type ContactManifold struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody

	points [MaxContactPoints]ContactPoint
	count  int

	FrictionVector1      mgl64.Vec3
	FrictionVector2      mgl64.Vec3
	FrictionImpulse1     float64
	FrictionImpulse2     float64
	FrictionTwistImpulse float64
}

func NewContactManifold(bodyA, bodyB *actor.RigidBody) *ContactManifold {
	return &ContactManifold{BodyA: bodyA, BodyB: bodyB}
}

// Contacts returns the live points. The slice aliases the manifold storage.
func (m *ContactManifold) Contacts() []ContactPoint {
	return m.points[:m.count]
}

func (m *ContactManifold) Len() int {
	return m.count
}

// AddContact merges a narrow phase result into the manifold.
// A contact close to an existing one refreshes it and keeps its impulses.
func (m *ContactManifold) AddContact(info ContactInfo) {
	thresholdSq := PersistentContactDistThreshold * PersistentContactDistThreshold

	for i := 0; i < m.count; i++ {
		if m.points[i].LocalPointB.Sub(info.LocalPointB).LenSqr() <= thresholdSq {
			m.points[i].refresh(info)
			return
		}
	}

	if m.count < MaxContactPoints {
		m.points[m.count] = newContactPoint(info)
		m.count++
		return
	}

	index := m.indexToRemove(m.deepestIndex(info.Depth), info.LocalPointA)
	m.points[index] = newContactPoint(info)
}

// deepestIndex returns the index of the deepest stored point, or -1 when the
// new contact is deeper than all of them.
func (m *ContactManifold) deepestIndex(newDepth float64) int {
	index := -1
	maxDepth := newDepth
	for i := 0; i < m.count; i++ {
		if m.points[i].Depth > maxDepth {
			maxDepth = m.points[i].Depth
			index = i
		}
	}
	return index
}

// indexToRemove picks the point whose replacement by the new one keeps the
// largest contact area. The deepest point is never picked.
func (m *ContactManifold) indexToRemove(deepest int, newPoint mgl64.Vec3) int {
	p := func(i int) mgl64.Vec3 { return m.points[i].LocalPointA }

	var areas [MaxContactPoints]float64
	if deepest != 0 {
		areas[0] = newPoint.Sub(p(1)).Cross(p(3).Sub(p(2))).LenSqr()
	}
	if deepest != 1 {
		areas[1] = newPoint.Sub(p(0)).Cross(p(3).Sub(p(2))).LenSqr()
	}
	if deepest != 2 {
		areas[2] = newPoint.Sub(p(0)).Cross(p(3).Sub(p(1))).LenSqr()
	}
	if deepest != 3 {
		areas[3] = newPoint.Sub(p(0)).Cross(p(2).Sub(p(1))).LenSqr()
	}

	index := 0
	for i := 1; i < MaxContactPoints; i++ {
		if areas[i] > areas[index] {
			index = i
		}
	}
	if index == deepest {
		// every area is zero: replace any other point
		index = (deepest + 1) % MaxContactPoints
	}
	return index
}

// Update recomputes world points and depths from the body transforms, then
// drops the points that separated along the normal or slid apart.
func (m *ContactManifold) Update(transformA, transformB actor.Transform) {
	thresholdSq := PersistentContactDistThreshold * PersistentContactDistThreshold

	kept := 0
	for i := 0; i < m.count; i++ {
		point := m.points[i]
		point.WorldPointA = transformA.Apply(point.LocalPointA)
		point.WorldPointB = transformB.Apply(point.LocalPointB)
		point.Depth = point.WorldPointA.Sub(point.WorldPointB).Dot(point.Normal)

		if point.Depth <= -PersistentContactDistThreshold {
			continue
		}

		projected := point.WorldPointA.Sub(point.Normal.Mul(point.Depth))
		if point.WorldPointB.Sub(projected).LenSqr() > thresholdSq {
			continue
		}

		m.points[kept] = point
		kept++
	}

	for i := kept; i < m.count; i++ {
		m.points[i] = ContactPoint{}
	}
	m.count = kept
}

// Clear drops every point and the manifold friction state
func (m *ContactManifold) Clear() {
	*m = ContactManifold{BodyA: m.BodyA, BodyB: m.BodyB}
}

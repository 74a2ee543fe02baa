package impulse

import (
	"fmt"

	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/constraint"
)

// PairKey identifies an unordered pair of bodies. A holds the lower id.
type PairKey struct {
	A, B actor.BodyID
}

// MakePairKey returns the same key for (a, b) and (b, a).
func MakePairKey(a, b *actor.RigidBody) PairKey {
	if b.ID < a.ID {
		a, b = b, a
	}
	return PairKey{A: a.ID, B: b.ID}
}

func (k PairKey) String() string {
	return fmt.Sprintf("(%d, %d)", k.A, k.B)
}

// OverlappingPair is a pair of bodies whose bounds overlap. It lives from the
// broad phase add callback to the matching remove callback and owns the
// persistent contact manifold of the two bodies.
type OverlappingPair struct {
	BodyA    *actor.RigidBody // lower id
	BodyB    *actor.RigidBody
	Manifold *constraint.ContactManifold
}

func newOverlappingPair(a, b *actor.RigidBody) *OverlappingPair {
	if b.ID < a.ID {
		a, b = b, a
	}
	return &OverlappingPair{
		BodyA:    a,
		BodyB:    b,
		Manifold: constraint.NewContactManifold(a, b),
	}
}

func (p *OverlappingPair) Key() PairKey {
	return PairKey{A: p.BodyA.ID, B: p.BodyB.ID}
}

// IsTrigger reports whether one of the bodies only detects overlaps.
func (p *OverlappingPair) IsTrigger() bool {
	return p.BodyA.IsTrigger || p.BodyB.IsTrigger
}

// BothSleeping reports whether the narrow phase can skip the pair.
func (p *OverlappingPair) BothSleeping() bool {
	return p.BodyA.IsSleeping && p.BodyB.IsSleeping
}

package impulse

import (
	"fmt"
	"log/slog"

	"cogentcore.org/core/base/keylist"
	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/constraint"
	"github.com/akmonengine/impulse/narrowphase"
)

// CollisionWorld is the owner of the simulation. CollisionDetection calls it
// back while it tracks pairs and finds contacts.
type CollisionWorld interface {
	NotifyAddedOverlappingPair(pair *OverlappingPair)
	// NotifyRemovedOverlappingPair is called while the pair is still tracked.
	NotifyRemovedOverlappingPair(pair *OverlappingPair)
	NotifyNewContact(pair *OverlappingPair, info constraint.ContactInfo)
	// UpdateOverlappingPair runs once per pair and step, before any narrow phase test.
	UpdateOverlappingPair(pair *OverlappingPair)
}

// CollisionDetection tracks the overlapping pairs reported by the broad phase
// and runs the narrow phase on them.
type CollisionDetection struct {
	world      CollisionWorld
	broadPhase *SweepAndPrune
	dispatcher *narrowphase.Dispatcher
	linker     *Linker

	bodies      *keylist.List[actor.BodyID, *actor.RigidBody]
	pairs       *keylist.List[PairKey, *OverlappingPair]
	noCollision map[PairKey]struct{}

	logger *slog.Logger
}

func NewCollisionDetection(world CollisionWorld, logger *slog.Logger) *CollisionDetection {
	if logger == nil {
		logger = slog.Default()
	}

	cd := &CollisionDetection{
		world:       world,
		dispatcher:  narrowphase.NewDispatcher(logger),
		bodies:      keylist.New[actor.BodyID, *actor.RigidBody](),
		pairs:       keylist.New[PairKey, *OverlappingPair](),
		noCollision: make(map[PairKey]struct{}),
		logger:      logger,
	}
	cd.broadPhase = NewSweepAndPrune(cd)

	return cd
}

// SetLinker enables the linking pass, nil disables it.
func (cd *CollisionDetection) SetLinker(linker *Linker) {
	cd.linker = linker
}

func (cd *CollisionDetection) Dispatcher() *narrowphase.Dispatcher {
	return cd.dispatcher
}

// AddBody registers the body with the broad phase using its current bounds.
func (cd *CollisionDetection) AddBody(body *actor.RigidBody) error {
	if err := cd.bodies.Add(body.ID, body); err != nil {
		return fmt.Errorf("%w: body %d", ErrDuplicateBody, body.ID)
	}

	if err := cd.broadPhase.AddObject(body, body.AABB()); err != nil {
		cd.bodies.DeleteByKey(body.ID)
		return err
	}
	body.HasMoved = false

	return nil
}

// RemoveBody unregisters the body. Its pairs are removed through the broad phase callbacks.
func (cd *CollisionDetection) RemoveBody(body *actor.RigidBody) error {
	if cd.bodies.IndexByKey(body.ID) < 0 {
		return fmt.Errorf("%w: body %d", ErrUnknownBody, body.ID)
	}

	if err := cd.broadPhase.RemoveObject(body); err != nil {
		return err
	}
	cd.bodies.DeleteByKey(body.ID)

	return nil
}

func (cd *CollisionDetection) AddNoCollisionPair(a, b *actor.RigidBody) {
	cd.noCollision[MakePairKey(a, b)] = struct{}{}
}

func (cd *CollisionDetection) RemoveNoCollisionPair(a, b *actor.RigidBody) {
	delete(cd.noCollision, MakePairKey(a, b))
}

func (cd *CollisionDetection) IsNoCollisionPair(a, b *actor.RigidBody) bool {
	_, excluded := cd.noCollision[MakePairKey(a, b)]
	return excluded
}

// Bodies returns the registered bodies in insertion order.
func (cd *CollisionDetection) Bodies() []*actor.RigidBody {
	return cd.bodies.Values
}

// OverlappingPairs returns the tracked pairs in insertion order.
// The slice must not be modified.
func (cd *CollisionDetection) OverlappingPairs() []*OverlappingPair {
	return cd.pairs.Values
}

func (cd *CollisionDetection) OverlappingPair(a, b *actor.RigidBody) (*OverlappingPair, bool) {
	return cd.pairs.AtTry(MakePairKey(a, b))
}

// ComputeCollisionDetection runs the linking pass, refreshes the bounds of
// the bodies that moved, then tests every tracked pair.
func (cd *CollisionDetection) ComputeCollisionDetection() error {
	if cd.linker != nil {
		for _, body := range cd.linker.Link(cd.bodies.Values) {
			cd.logger.Debug("body woken by proximity", "body", body.ID)
		}
	}

	if err := cd.updateBroadPhase(); err != nil {
		return err
	}

	return cd.computeNarrowPhase()
}

func (cd *CollisionDetection) updateBroadPhase() error {
	for _, body := range cd.bodies.Values {
		if !body.HasMoved {
			continue
		}
		if err := cd.broadPhase.UpdateObject(body, body.AABB()); err != nil {
			return err
		}
		body.HasMoved = false
	}
	return nil
}

func (cd *CollisionDetection) computeNarrowPhase() error {
	for _, pair := range cd.pairs.Values {
		cd.world.UpdateOverlappingPair(pair)

		if _, excluded := cd.noCollision[pair.Key()]; excluded {
			continue
		}
		if pair.BothSleeping() {
			continue
		}
		if pair.BodyA.BodyType == actor.BodyTypeStatic && pair.BodyB.BodyType == actor.BodyTypeStatic {
			continue
		}

		algorithm := cd.dispatcher.Select(pair.BodyA.Shape.Type(), pair.BodyB.Shape.Type())
		if algorithm == nil {
			return fmt.Errorf("%w: %s and %s", ErrNoAlgorithm, pair.BodyA.Shape.Type(), pair.BodyB.Shape.Type())
		}

		hit, info := algorithm.TestCollision(pair.BodyA.Shape, pair.BodyA.Transform, pair.BodyB.Shape, pair.BodyB.Transform)
		if !hit {
			continue
		}

		info.BodyA = pair.BodyA
		info.BodyB = pair.BodyB
		cd.world.NotifyNewContact(pair, info)
	}
	return nil
}

// BroadPhaseNotifyAddedOverlappingPair starts tracking the pair. A pair that
// is already tracked means the broad phase lost its state, and is an error.
func (cd *CollisionDetection) BroadPhaseNotifyAddedOverlappingPair(a, b *actor.RigidBody) error {
	pair := newOverlappingPair(a, b)
	if err := cd.pairs.Add(pair.Key(), pair); err != nil {
		return fmt.Errorf("%w: %v", ErrDuplicatePair, pair.Key())
	}

	cd.logger.Debug("overlapping pair added", "pair", pair.Key())
	cd.world.NotifyAddedOverlappingPair(pair)
	return nil
}

// BroadPhaseNotifyRemovedOverlappingPair stops tracking the pair, after the
// world was notified with the pair still valid.
func (cd *CollisionDetection) BroadPhaseNotifyRemovedOverlappingPair(a, b *actor.RigidBody) error {
	key := MakePairKey(a, b)
	pair, ok := cd.pairs.AtTry(key)
	if !ok {
		return fmt.Errorf("%w: %v", ErrMissingPair, key)
	}

	cd.world.NotifyRemovedOverlappingPair(pair)
	cd.pairs.DeleteByKey(key)
	cd.logger.Debug("overlapping pair removed", "pair", key)
	return nil
}

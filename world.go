package impulse

import (
	"fmt"
	"log/slog"
	"slices"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/base/keylist"
	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/constraint"
)

// World owns the bodies and drives one simulation step at a time:
// collision detection, island building, contact solving, integration, sleeping and events.
type World struct {
	Settings Settings
	Events   Events

	bodies    *keylist.List[actor.BodyID, *actor.RigidBody]
	joints    []constraint.Joint
	shapes    *actor.ShapeCache
	collision *CollisionDetection
	solver    *constraint.ContactSolver

	// per step velocity arena, indexed like bodies
	velocities      []constraint.Velocity
	splitVelocities []constraint.Velocity
	index           map[actor.BodyID]int

	logger *slog.Logger
}

// NewWorld validates the settings and builds an empty world. A nil logger uses slog.Default.
func NewWorld(settings Settings, logger *slog.Logger) (*World, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	w := &World{
		Settings: settings,
		Events:   NewEvents(),
		bodies:   keylist.New[actor.BodyID, *actor.RigidBody](),
		shapes:   actor.NewShapeCache(),
		solver:   constraint.NewContactSolver(settings.Solver),
		index:    make(map[actor.BodyID]int),
		logger:   logger,
	}
	w.collision = NewCollisionDetection(w, logger)

	if settings.Linking.Enabled {
		w.collision.SetLinker(NewLinker(settings.Linking.Distance, settings.Linking.CellSize, settings.Linking.Cells))
	}

	return w, nil
}

func (w *World) Bodies() []*actor.RigidBody {
	return w.bodies.Values
}

func (w *World) Shapes() *actor.ShapeCache {
	return w.shapes
}

func (w *World) CollisionDetection() *CollisionDetection {
	return w.collision
}

// CreateBody builds a body around a shared copy of shape and adds it to the world.
func (w *World) CreateBody(transform actor.Transform, shape actor.Shape, bodyType actor.BodyType, density float64) (*actor.RigidBody, error) {
	body := actor.NewRigidBody(transform, shape, bodyType, density)
	if err := w.AddBody(body); err != nil {
		return nil, err
	}
	return body, nil
}

// AddBody registers the body. Its shape is replaced by the cached equal shape, if any.
func (w *World) AddBody(body *actor.RigidBody) error {
	if err := w.bodies.Add(body.ID, body); err != nil {
		return fmt.Errorf("%w: body %d", ErrDuplicateBody, body.ID)
	}
	body.Shape = w.shapes.Acquire(body.Shape)

	if err := w.collision.AddBody(body); err != nil {
		w.bodies.DeleteByKey(body.ID)
		errors.Log(w.shapes.Release(body.Shape))
		return err
	}

	return nil
}

// RemoveBody unregisters the body, its pairs and its joints, and releases its shape.
func (w *World) RemoveBody(body *actor.RigidBody) error {
	if w.bodies.IndexByKey(body.ID) < 0 {
		return fmt.Errorf("%w: body %d", ErrUnknownBody, body.ID)
	}

	if err := w.collision.RemoveBody(body); err != nil {
		return err
	}
	w.bodies.DeleteByKey(body.ID)
	w.Events.forget(body)

	w.joints = slices.DeleteFunc(w.joints, func(joint constraint.Joint) bool {
		a, b := joint.Bodies()
		return a == body || b == body
	})

	return w.shapes.Release(body.Shape)
}

// AddJoint links the two bodies in the same island. A joint without
// collisions excludes its bodies from the narrow phase.
func (w *World) AddJoint(joint constraint.Joint) error {
	a, b := joint.Bodies()
	for _, body := range []*actor.RigidBody{a, b} {
		if body == nil || w.bodies.IndexByKey(body.ID) < 0 {
			return fmt.Errorf("%w: joint %s", ErrUnknownBody, joint.Type())
		}
	}

	if !joint.IsCollisionEnabled() {
		w.collision.AddNoCollisionPair(a, b)
	}
	w.joints = append(w.joints, joint)
	return nil
}

func (w *World) RemoveJoint(joint constraint.Joint) {
	index := slices.Index(w.joints, joint)
	if index < 0 {
		return
	}
	w.joints = slices.Delete(w.joints, index, index+1)

	if !joint.IsCollisionEnabled() {
		a, b := joint.Bodies()
		w.collision.RemoveNoCollisionPair(a, b)
	}
}

// ScaleBodyShape rescales the body shape without touching the other bodies
// sharing it, and recomputes the body mass. A factor that would make the shape
// degenerate is rejected and the body keeps its shape.
func (w *World) ScaleBodyShape(body *actor.RigidBody, factor float64) error {
	if w.bodies.IndexByKey(body.ID) < 0 {
		return fmt.Errorf("%w: body %d", ErrUnknownBody, body.ID)
	}

	scaled := body.Shape.Clone()
	if err := scaled.Scale(factor); err != nil {
		return fmt.Errorf("scale body %d: %w", body.ID, err)
	}

	if err := w.shapes.Release(body.Shape); err != nil {
		return err
	}
	body.Shape = w.shapes.Acquire(scaled)
	body.UpdateMassProperties()
	body.HasMoved = true

	return nil
}

// Step advances the simulation by dt.
func (w *World) Step(dt float64) error {
	if err := w.collision.ComputeCollisionDetection(); err != nil {
		return errors.Log(fmt.Errorf("collision detection: %w", err))
	}

	w.integrateVelocities(dt)

	islands := w.buildIslands()
	for _, island := range islands {
		if err := w.solveIsland(dt, island); err != nil {
			return errors.Log(err)
		}
	}

	w.integratePositions(dt)
	w.updateSleeping(dt, islands)

	w.Events.processSleepEvents(w.bodies.Values)
	w.Events.flush()

	return nil
}

// integrateVelocities fills the velocity arena with gravity, forces and damping applied.
func (w *World) integrateVelocities(dt float64) {
	bodies := w.bodies.Values

	w.velocities = slices.Grow(w.velocities[:0], len(bodies))[:len(bodies)]
	w.splitVelocities = slices.Grow(w.splitVelocities[:0], len(bodies))[:len(bodies)]
	clear(w.index)

	for i, body := range bodies {
		linear, angular := body.IntegrateVelocity(dt, w.Settings.Gravity)
		w.velocities[i] = constraint.Velocity{Linear: linear, Angular: angular}
		w.splitVelocities[i] = constraint.Velocity{}
		w.index[body.ID] = i
	}

	w.solver.SetVelocities(w.velocities, w.splitVelocities, w.index)
}

func (w *World) solveIsland(dt float64, island *constraint.Island) error {
	if len(island.Manifolds) == 0 {
		return nil
	}

	if err := w.solver.InitializeForIsland(dt, island); err != nil {
		return fmt.Errorf("initialize island: %w", err)
	}
	if w.Settings.Solver.WarmStarting {
		w.solver.WarmStart()
	}
	for range w.Settings.Iterations {
		w.solver.Solve()
	}
	w.solver.StoreImpulses()
	w.solver.Cleanup()

	return nil
}

func (w *World) integratePositions(dt float64) {
	for i, body := range w.bodies.Values {
		velocity, split := w.velocities[i], w.splitVelocities[i]
		body.IntegratePosition(dt, velocity.Linear, velocity.Angular, split.Linear, split.Angular)
	}
}

// updateSleeping puts an island to sleep once all its dynamic bodies stayed
// slow for TimeToSleep.
func (w *World) updateSleeping(dt float64, islands []*constraint.Island) {
	if !w.Settings.Sleep.Enabled {
		return
	}

	for _, island := range islands {
		minRest := -1.0
		for _, body := range island.Bodies {
			if !body.IsMotionEnabled() {
				continue
			}
			rest := body.AccumulateRest(dt, w.Settings.Sleep.LinearThreshold, w.Settings.Sleep.AngularThreshold)
			if minRest < 0 || rest < minRest {
				minRest = rest
			}
		}

		if minRest < w.Settings.Sleep.TimeToSleep {
			continue
		}
		for _, body := range island.Bodies {
			if body.IsMotionEnabled() {
				body.Sleep()
			}
		}
	}
}

// NotifyAddedOverlappingPair implements CollisionWorld.
func (w *World) NotifyAddedOverlappingPair(pair *OverlappingPair) {}

// NotifyRemovedOverlappingPair implements CollisionWorld.
func (w *World) NotifyRemovedOverlappingPair(pair *OverlappingPair) {
	pair.Manifold.Clear()
}

// UpdateOverlappingPair implements CollisionWorld. It moves the persistent
// contacts with the bodies and drops those that separated.
func (w *World) UpdateOverlappingPair(pair *OverlappingPair) {
	if pair.BothSleeping() {
		w.Events.keepAlive(pair)
		return
	}
	pair.Manifold.Update(pair.BodyA.Transform, pair.BodyB.Transform)
}

// NotifyNewContact implements CollisionWorld. Trigger contacts only raise events.
func (w *World) NotifyNewContact(pair *OverlappingPair, info constraint.ContactInfo) {
	w.Events.recordContact(pair)
	if pair.IsTrigger() {
		return
	}
	pair.Manifold.AddContact(info)
}

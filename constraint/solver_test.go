package constraint

import (
	"math"
	"testing"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt = 1.0 / 60.0

type solverFixture struct {
	floor, box      *actor.RigidBody
	manifold        *ContactManifold
	island          *Island
	velocities      []Velocity
	splitVelocities []Velocity
	index           map[actor.BodyID]int
}

// newFixture places a unit box on a static floor. The contacts are given as
// points on the floor top face (y = 0.5).
func newFixture(t *testing.T, points []mgl64.Vec3, depth float64, boxVelocity mgl64.Vec3) *solverFixture {
	t.Helper()
	f := &solverFixture{
		floor: createBody(t, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{5, 0.5, 5}, actor.BodyTypeStatic),
		box:   createBody(t, mgl64.Vec3{0, 1 - depth, 0}, mgl64.Vec3{0.5, 0.5, 0.5}, actor.BodyTypeDynamic),
	}

	f.manifold = NewContactManifold(f.floor, f.box)
	for _, point := range points {
		f.manifold.AddContact(contactAt(f.floor, f.box, point, depth))
	}

	f.island = &Island{Bodies: []*actor.RigidBody{f.floor, f.box}, Manifolds: []*ContactManifold{f.manifold}}
	f.velocities = []Velocity{{}, {Linear: boxVelocity}}
	f.splitVelocities = make([]Velocity, 2)
	f.index = map[actor.BodyID]int{f.floor.ID: 0, f.box.ID: 1}
	return f
}

func (f *solverFixture) solver(t *testing.T, settings SolverSettings) *ContactSolver {
	t.Helper()
	solver := NewContactSolver(settings)
	solver.SetVelocities(f.velocities, f.splitVelocities, f.index)
	require.NoError(t, solver.InitializeForIsland(dt, f.island))
	return solver
}

var (
	center  = []mgl64.Vec3{{0, 0.5, 0}}
	corners = []mgl64.Vec3{{0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}
)

func TestInitializeForIslandPreconditions(t *testing.T) {
	f := newFixture(t, center, 0, mgl64.Vec3{})

	t.Run("nil island", func(t *testing.T) {
		solver := NewContactSolver(DefaultSolverSettings())
		solver.SetVelocities(f.velocities, f.splitVelocities, f.index)
		assert.ErrorIs(t, solver.InitializeForIsland(dt, nil), ErrEmptyIsland)
	})

	t.Run("island without manifolds", func(t *testing.T) {
		solver := NewContactSolver(DefaultSolverSettings())
		solver.SetVelocities(f.velocities, f.splitVelocities, f.index)
		assert.ErrorIs(t, solver.InitializeForIsland(dt, &Island{Bodies: f.island.Bodies}), ErrEmptyIsland)
	})

	t.Run("velocities not set", func(t *testing.T) {
		solver := NewContactSolver(DefaultSolverSettings())
		assert.ErrorIs(t, solver.InitializeForIsland(dt, f.island), ErrNoVelocities)
	})

	t.Run("body without index", func(t *testing.T) {
		solver := NewContactSolver(DefaultSolverSettings())
		solver.SetVelocities(f.velocities, f.splitVelocities, map[actor.BodyID]int{f.box.ID: 1})
		assert.ErrorIs(t, solver.InitializeForIsland(dt, f.island), ErrUnknownBody)
	})
}

func TestSolveBoxRestingOnFloor(t *testing.T) {
	gravityStep := mgl64.Vec3{0, -9.81 * dt, 0}

	t.Run("single contact under the center of mass", func(t *testing.T) {
		f := newFixture(t, center, 0, gravityStep)
		solver := f.solver(t, DefaultSolverSettings())

		solver.WarmStart()
		solver.Solve()
		solver.StoreImpulses()

		assert.InDelta(t, 0, f.velocities[1].Linear.Y(), 1e-12)
		assert.InDelta(t, 0, f.velocities[1].Linear.X(), 1e-12)
		assert.InDelta(t, 0, f.manifold.FrictionImpulse1, 1e-12)
		assert.InDelta(t, 0, f.manifold.FrictionImpulse2, 1e-12)
		assert.InDelta(t, 9.81*dt*f.box.Mass(), f.manifold.Contacts()[0].PenetrationImpulse, 1e-9)
		assert.Equal(t, Velocity{}, f.velocities[0], "static floor received an impulse")
	})

	t.Run("four corners", func(t *testing.T) {
		f := newFixture(t, corners, 0, gravityStep)
		solver := f.solver(t, DefaultSolverSettings())

		solver.WarmStart()
		solver.Solve()

		vy := f.velocities[1].Linear.Y()
		assert.Greater(t, vy, gravityStep.Y(), "one sweep must slow the box down")

		for i := 0; i < 100; i++ {
			solver.Solve()
		}
		solver.StoreImpulses()

		assert.InDelta(t, 0, f.velocities[1].Linear.Y(), 1e-6)
		assert.InDelta(t, 0, f.velocities[1].Angular.Len(), 1e-6)
		assert.InDelta(t, 0, f.manifold.FrictionImpulse1, 1e-6)
		assert.InDelta(t, 0, f.manifold.FrictionImpulse2, 1e-6)
		assert.Equal(t, Velocity{}, f.velocities[0])
	})
}

func TestPenetrationImpulseNonNegative(t *testing.T) {
	velocities := []mgl64.Vec3{
		{0, 2, 0},     // separating
		{0, -2, 0},    // approaching
		{3, 0.5, -1},  // sliding away
		{-1, -4, 2.5}, // sliding in
	}

	for _, mode := range []FrictionMode{FrictionManifoldCenter, FrictionPerPoint} {
		for _, velocity := range velocities {
			f := newFixture(t, corners, 0.05, velocity)
			f.box.Transform.Rotation = mgl64.QuatRotate(0.1, mgl64.Vec3{1, 0, 1}.Normalize())
			settings := DefaultSolverSettings()
			settings.FrictionMode = mode
			solver := f.solver(t, settings)

			solver.WarmStart()
			for i := 0; i < 10; i++ {
				solver.Solve()
				for _, p := range solver.manifolds[0].points {
					require.GreaterOrEqual(t, p.penetrationImpulse, 0.0)
					require.GreaterOrEqual(t, p.penetrationSplitImpulse, 0.0)
				}
			}
		}
	}
}

func TestFrictionCone(t *testing.T) {
	sliding := mgl64.Vec3{6, -1, 2}
	const tolerance = 1e-9

	t.Run("per point", func(t *testing.T) {
		f := newFixture(t, corners, 0.02, sliding)
		settings := DefaultSolverSettings()
		settings.FrictionMode = FrictionPerPoint
		solver := f.solver(t, settings)

		solver.WarmStart()
		for i := 0; i < 10; i++ {
			solver.Solve()
		}
		solver.StoreImpulses()

		mu := ComputeFriction(f.floor.Material, f.box.Material)
		for _, point := range f.manifold.Contacts() {
			limit := mu * point.PenetrationImpulse
			assert.LessOrEqual(t, math.Abs(point.FrictionImpulse1), limit+tolerance)
			assert.LessOrEqual(t, math.Abs(point.FrictionImpulse2), limit+tolerance)
		}
	})

	t.Run("manifold center", func(t *testing.T) {
		f := newFixture(t, corners, 0.02, sliding)
		solver := f.solver(t, DefaultSolverSettings())

		solver.WarmStart()
		for i := 0; i < 10; i++ {
			solver.Solve()
		}
		solver.StoreImpulses()

		sum := 0.0
		for _, point := range f.manifold.Contacts() {
			sum += point.PenetrationImpulse
		}
		limit := ComputeFriction(f.floor.Material, f.box.Material) * sum

		assert.Greater(t, sum, 0.0)
		assert.LessOrEqual(t, math.Abs(f.manifold.FrictionImpulse1), limit+tolerance)
		assert.LessOrEqual(t, math.Abs(f.manifold.FrictionImpulse2), limit+tolerance)
		assert.LessOrEqual(t, math.Abs(f.manifold.FrictionTwistImpulse), limit+tolerance)
		// friction opposes the sliding direction
		horizontal := func(v mgl64.Vec3) float64 { return math.Hypot(v.X(), v.Z()) }
		assert.Less(t, horizontal(f.velocities[1].Linear), horizontal(sliding))
	})
}

func TestWarmStartIdempotence(t *testing.T) {
	// a resting box whose stored impulse exactly cancels one step of approach
	const stored = 0.5
	f := newFixture(t, center, 0.005, mgl64.Vec3{0, -stored, 0})
	f.manifold.Contacts()[0].IsResting = true
	f.manifold.Contacts()[0].PenetrationImpulse = stored * f.box.Mass()

	solver := f.solver(t, DefaultSolverSettings())
	solver.WarmStart()
	require.InDelta(t, 0, f.velocities[1].Linear.Len(), 1e-12)

	for i := 0; i < 10; i++ {
		solver.Solve()
	}
	solver.StoreImpulses()

	point := f.manifold.Contacts()[0]
	assert.Equal(t, stored*f.box.Mass(), point.PenetrationImpulse)
	assert.Zero(t, point.FrictionImpulse1)
	assert.Zero(t, f.manifold.FrictionImpulse1)
	assert.Zero(t, f.manifold.FrictionTwistImpulse)
	assert.InDelta(t, 0, f.velocities[1].Linear.Len(), 1e-12)
	assert.Equal(t, Velocity{}, f.splitVelocities[1], "depth within slop must not be corrected")
}

func TestRestitutionBias(t *testing.T) {
	f := newFixture(t, center, 0, mgl64.Vec3{0, -4, 0})
	f.box.Material.Bounciness = 0.5
	settings := DefaultSolverSettings()

	solver := f.solver(t, settings)
	solver.WarmStart()
	solver.Solve()

	// the max bounciness reflects half the approach speed
	assert.InDelta(t, 2, f.velocities[1].Linear.Y(), 1e-9)

	slow := newFixture(t, center, 0, mgl64.Vec3{0, -0.5, 0})
	slow.box.Material.Bounciness = 0.5
	solver = slow.solver(t, settings)
	solver.WarmStart()
	solver.Solve()

	assert.InDelta(t, 0, slow.velocities[1].Linear.Y(), 1e-12, "below the threshold contacts do not bounce")
}

func TestSplitImpulseKeepsRealVelocity(t *testing.T) {
	const depth = 0.11

	t.Run("split impulse", func(t *testing.T) {
		f := newFixture(t, center, depth, mgl64.Vec3{})
		solver := f.solver(t, DefaultSolverSettings())
		solver.WarmStart()
		solver.Solve()

		assert.InDelta(t, 0, f.velocities[1].Linear.Y(), 1e-12)
		// -(β/dt)·(depth - slop) pushes the box up on the split channel only
		assert.InDelta(t, 0.2/dt*(depth-0.01), f.splitVelocities[1].Linear.Y(), 1e-9)
	})

	t.Run("baumgarte", func(t *testing.T) {
		f := newFixture(t, center, depth, mgl64.Vec3{})
		settings := DefaultSolverSettings()
		settings.SplitImpulse = false
		solver := f.solver(t, settings)
		solver.WarmStart()
		solver.Solve()

		assert.InDelta(t, 0.2/dt*(depth-0.01), f.velocities[1].Linear.Y(), 1e-9)
		assert.Equal(t, Velocity{}, f.splitVelocities[1])
	})
}

func TestComputeFrictionVectors(t *testing.T) {
	t.Run("aligned with the tangential velocity", func(t *testing.T) {
		t1, t2 := computeFrictionVectors(mgl64.Vec3{3, -5, 0}, up)
		assert.InDelta(t, 1, t1.X(), 1e-12)
		assert.InDelta(t, 0, t2.Dot(up), 1e-12)
		assert.InDelta(t, 0, t2.Dot(t1), 1e-12)
	})

	t.Run("fallback without tangential velocity", func(t *testing.T) {
		t1, t2 := computeFrictionVectors(mgl64.Vec3{0, -5, 0}, up)
		assert.InDelta(t, 1, t1.Len(), 1e-12)
		assert.InDelta(t, 0, t1.Dot(up), 1e-12)
		assert.InDelta(t, 1, t2.Len(), 1e-12)
	})
}

func TestFrictionModeText(t *testing.T) {
	var mode FrictionMode
	require.NoError(t, mode.UnmarshalText([]byte("per_point")))
	assert.Equal(t, FrictionPerPoint, mode)

	text, err := FrictionManifoldCenter.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "manifold_center", string(text))

	assert.Error(t, mode.UnmarshalText([]byte("sideways")))
}

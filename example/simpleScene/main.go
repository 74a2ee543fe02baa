package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/akmonengine/impulse"
	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// SetupScene creates a static floor and a tilted bouncy cube above it
func SetupScene(world *impulse.World) (*actor.RigidBody, *actor.RigidBody, error) {
	floorShape, err := actor.NewBox(mgl64.Vec3{20, 0.5, 20}, actor.DefaultMargin)
	if err != nil {
		return nil, nil, err
	}
	floorTransform := actor.NewTransform()
	floorTransform.Position = mgl64.Vec3{0, -0.5, 0}

	floor, err := world.CreateBody(floorTransform, floorShape, actor.BodyTypeStatic, 0)
	if err != nil {
		return nil, nil, err
	}

	cubeShape, err := actor.NewBox(mgl64.Vec3{1.5, 1.5, 1.5}, actor.DefaultMargin)
	if err != nil {
		return nil, nil, err
	}
	cubeTransform := actor.Transform{
		Position: mgl64.Vec3{-5, 5, -5},
		Rotation: mgl64.QuatRotate(mgl64.DegToRad(30), mgl64.Vec3{0, 0, 1}),
	}

	cube, err := world.CreateBody(cubeTransform, cubeShape, actor.BodyTypeDynamic, 1)
	if err != nil {
		return nil, nil, err
	}
	cube.Material.Bounciness = 0.4

	return floor, cube, nil
}

func main() {
	config := flag.String("config", "", "TOML settings file")
	steps := flag.Int("steps", 300, "number of steps to simulate")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	settings := impulse.DefaultSettings()
	if *config != "" {
		var err error
		if settings, err = impulse.LoadSettings(*config); err != nil {
			logger.Error("cannot load settings", "path", *config, "error", err)
			os.Exit(1)
		}
	}

	world, err := impulse.NewWorld(settings, logger)
	if err != nil {
		logger.Error("cannot create world", "error", err)
		os.Exit(1)
	}

	floor, cube, err := SetupScene(world)
	if err != nil {
		logger.Error("cannot build scene", "error", err)
		os.Exit(1)
	}

	world.Events.Subscribe(impulse.COLLISION_ENTER, func(event impulse.Event) {
		e := event.(impulse.CollisionEnterEvent)
		logger.Info("collision enter", "bodyA", e.BodyA.ID, "bodyB", e.BodyB.ID)
	})
	world.Events.Subscribe(impulse.ON_SLEEP, func(event impulse.Event) {
		logger.Info("body asleep", "body", event.(impulse.SleepEvent).Body.ID)
	})

	const dt = 1.0 / 60.0
	for step := 0; step < *steps; step++ {
		if err := world.Step(dt); err != nil {
			os.Exit(1)
		}

		if pair, ok := world.CollisionDetection().OverlappingPair(floor, cube); ok {
			logger.Debug("contacts", "step", step, "points", pair.Manifold.Len())
		}
		logger.Debug("cube",
			"step", step,
			"position", cube.Transform.Position,
			"velocity", cube.Velocity,
			"angularVelocity", cube.AngularVelocity,
			"sleeping", cube.IsSleeping)
	}

	logger.Info("simulation done",
		"steps", *steps,
		"position", cube.Transform.Position,
		"sleeping", cube.IsSleeping)
}

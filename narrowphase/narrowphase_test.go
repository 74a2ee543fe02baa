package narrowphase

import (
	"math"
	"testing"

	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(position mgl64.Vec3) actor.Transform {
	return actor.Transform{Position: position, Rotation: mgl64.QuatIdent()}
}

func mustSphere(t *testing.T, radius float64) actor.Shape {
	t.Helper()
	shape, err := actor.NewSphere(radius, actor.DefaultMargin)
	require.NoError(t, err)
	return shape
}

func mustBox(t *testing.T, halfExtents mgl64.Vec3) actor.Shape {
	t.Helper()
	shape, err := actor.NewBox(halfExtents, actor.DefaultMargin)
	require.NoError(t, err)
	return shape
}

func TestSphereVsSphere(t *testing.T) {
	tests := []struct {
		name       string
		posB       mgl64.Vec3
		wantHit    bool
		wantDepth  float64
		wantNormal mgl64.Vec3
	}{
		{"overlapping on x", mgl64.Vec3{1.5, 0, 0}, true, 0.5, mgl64.Vec3{1, 0, 0}},
		{"overlapping below", mgl64.Vec3{0, -1, 0}, true, 1, mgl64.Vec3{0, -1, 0}},
		{"exactly touching", mgl64.Vec3{2, 0, 0}, false, 0, mgl64.Vec3{}},
		{"separated", mgl64.Vec3{3, 0, 0}, false, 0, mgl64.Vec3{}},
		{"concentric", mgl64.Vec3{}, true, 2, mgl64.Vec3{0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := mustSphere(t, 1), mustSphere(t, 1)
			transformA, transformB := at(mgl64.Vec3{}), at(tt.posB)

			hit, info := SphereVsSphere{}.TestCollision(a, transformA, b, transformB)
			require.Equal(t, tt.wantHit, hit)
			if !hit {
				return
			}

			assert.InDelta(t, tt.wantDepth, info.Depth, 1e-12)
			assert.InDelta(t, 0, info.Normal.Sub(tt.wantNormal).Len(), 1e-12)
			assert.InDelta(t, info.Depth, info.PointA.Sub(info.PointB).Dot(info.Normal), 1e-12)
			assert.InDelta(t, 0, transformA.Apply(info.LocalPointA).Sub(info.PointA).Len(), 1e-12)
			assert.InDelta(t, 0, transformB.Apply(info.LocalPointB).Sub(info.PointB).Len(), 1e-12)
		})
	}
}

func TestSphereVsSphereRejectsOtherShapes(t *testing.T) {
	hit, _ := SphereVsSphere{}.TestCollision(mustBox(t, mgl64.Vec3{1, 1, 1}), at(mgl64.Vec3{}), mustSphere(t, 1), at(mgl64.Vec3{}))
	assert.False(t, hit)
}

func mustCapsule(t *testing.T, radius, height float64) actor.Shape {
	t.Helper()
	shape, err := actor.NewCapsule(radius, height, actor.DefaultMargin)
	require.NoError(t, err)
	return shape
}

func rotated(position mgl64.Vec3, angle float64, axis mgl64.Vec3) actor.Transform {
	return actor.Transform{Position: position, Rotation: mgl64.QuatRotate(angle, axis)}
}

func TestConvexVsConvex(t *testing.T) {
	floor := func(t *testing.T) actor.Shape { return mustBox(t, mgl64.Vec3{5, 0.5, 5}) }
	unitBox := func(t *testing.T) actor.Shape { return mustBox(t, mgl64.Vec3{0.5, 0.5, 0.5}) }

	tests := []struct {
		name       string
		shapeA     func(t *testing.T) actor.Shape
		shapeB     func(t *testing.T) actor.Shape
		transformB actor.Transform
		wantHit    bool
		wantNormal mgl64.Vec3
		wantDepth  float64
		tolerance  float64
	}{
		{
			name:       "boxes overlapping on x",
			shapeA:     func(t *testing.T) actor.Shape { return mustBox(t, mgl64.Vec3{1, 1, 1}) },
			shapeB:     func(t *testing.T) actor.Shape { return mustBox(t, mgl64.Vec3{1, 1, 1}) },
			transformB: at(mgl64.Vec3{1.5, 0, 0}),
			wantHit:    true,
			wantNormal: mgl64.Vec3{1, 0, 0},
			wantDepth:  0.5,
		},
		{
			name:       "box on a floor",
			shapeA:     floor,
			shapeB:     unitBox,
			transformB: at(mgl64.Vec3{0, 0.95, 0}),
			wantHit:    true,
			wantNormal: mgl64.Vec3{0, 1, 0},
			wantDepth:  0.05,
		},
		{
			name:       "boxes offset sideways",
			shapeA:     unitBox,
			shapeB:     unitBox,
			transformB: at(mgl64.Vec3{0.9, 0.2, 0}),
			wantHit:    true,
			wantNormal: mgl64.Vec3{1, 0, 0},
			wantDepth:  0.1,
		},
		{
			name:       "boxes barely overlapping",
			shapeA:     unitBox,
			shapeB:     unitBox,
			transformB: at(mgl64.Vec3{0.98, 0.1, 0}),
			wantHit:    true,
			wantNormal: mgl64.Vec3{1, 0, 0},
			wantDepth:  0.02,
		},
		{
			name:       "boxes offset on every axis",
			shapeA:     unitBox,
			shapeB:     unitBox,
			transformB: at(mgl64.Vec3{0.2, 0.85, -0.3}),
			wantHit:    true,
			wantNormal: mgl64.Vec3{0, 1, 0},
			wantDepth:  0.15,
		},
		{
			// the rotated box reaches 0.46·√2 + margin toward A
			name:       "box rotated about y",
			shapeA:     unitBox,
			shapeB:     unitBox,
			transformB: rotated(mgl64.Vec3{0.9, 0, 0}, math.Pi/4, mgl64.Vec3{0, 1, 0}),
			wantHit:    true,
			wantNormal: mgl64.Vec3{1, 0, 0},
			wantDepth:  0.5 + 0.46*math.Sqrt2 + actor.DefaultMargin - 0.9,
		},
		{
			name:       "standing capsule on a floor",
			shapeA:     floor,
			shapeB:     func(t *testing.T) actor.Shape { return mustCapsule(t, 0.5, 1) },
			transformB: at(mgl64.Vec3{0, 1.4, 0}),
			wantHit:    true,
			wantNormal: mgl64.Vec3{0, 1, 0},
			wantDepth:  0.1,
		},
		{
			name:       "lying capsule on a floor",
			shapeA:     floor,
			shapeB:     func(t *testing.T) actor.Shape { return mustCapsule(t, 0.5, 1) },
			transformB: rotated(mgl64.Vec3{0.5, 0.9, -1}, math.Pi/2, mgl64.Vec3{0, 0, 1}),
			wantHit:    true,
			wantNormal: mgl64.Vec3{0, 1, 0},
			wantDepth:  0.1,
		},
		{
			name:   "cylinder on a floor",
			shapeA: floor,
			shapeB: func(t *testing.T) actor.Shape {
				shape, err := actor.NewCylinder(0.5, 1, actor.DefaultMargin)
				require.NoError(t, err)
				return shape
			},
			transformB: at(mgl64.Vec3{0.3, 0.9, 0.2}),
			wantHit:    true,
			wantNormal: mgl64.Vec3{0, 1, 0},
			wantDepth:  0.1,
		},
		{
			name:   "cone on a floor",
			shapeA: floor,
			shapeB: func(t *testing.T) actor.Shape {
				shape, err := actor.NewCone(0.5, 1, actor.DefaultMargin)
				require.NoError(t, err)
				return shape
			},
			transformB: at(mgl64.Vec3{-1, 0.9, 2}),
			wantHit:    true,
			wantNormal: mgl64.Vec3{0, 1, 0},
			wantDepth:  0.1,
		},
		{
			name:   "convex mesh on a floor",
			shapeA: floor,
			shapeB: func(t *testing.T) actor.Shape {
				var vertices []mgl64.Vec3
				for _, x := range []float64{-0.46, 0.46} {
					for _, y := range []float64{-0.46, 0.46} {
						for _, z := range []float64{-0.46, 0.46} {
							vertices = append(vertices, mgl64.Vec3{x, y, z})
						}
					}
				}
				shape, err := actor.NewConvexMesh(vertices, actor.DefaultMargin)
				require.NoError(t, err)
				return shape
			},
			transformB: at(mgl64.Vec3{0, 0.9, 0}),
			wantHit:    true,
			wantNormal: mgl64.Vec3{0, 1, 0},
			wantDepth:  0.1,
		},
		{
			name:       "sphere against a box side",
			shapeA:     unitBox,
			shapeB:     func(t *testing.T) actor.Shape { return mustSphere(t, 0.5) },
			transformB: at(mgl64.Vec3{0.9, 0.1, 0}),
			wantHit:    true,
			wantNormal: mgl64.Vec3{1, 0, 0},
			wantDepth:  0.1,
		},
		{
			name:       "sphere against a capsule side",
			shapeA:     func(t *testing.T) actor.Shape { return mustCapsule(t, 0.5, 1) },
			shapeB:     func(t *testing.T) actor.Shape { return mustSphere(t, 0.5) },
			transformB: at(mgl64.Vec3{0.9, 0.2, 0}),
			wantHit:    true,
			wantNormal: mgl64.Vec3{1, 0, 0},
			wantDepth:  0.1,
			tolerance:  0.01,
		},
		{
			name:       "separated boxes",
			shapeA:     unitBox,
			shapeB:     unitBox,
			transformB: at(mgl64.Vec3{0, 2, 0}),
			wantHit:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transformA := at(mgl64.Vec3{})
			hit, info := ConvexVsConvex{}.TestCollision(tt.shapeA(t), transformA, tt.shapeB(t), tt.transformB)
			require.Equal(t, tt.wantHit, hit)
			if !hit {
				return
			}

			tolerance := tt.tolerance
			if tolerance == 0 {
				tolerance = 2e-3
			}

			assert.InDelta(t, 1, info.Normal.Len(), 1e-9)
			assert.Greater(t, info.Normal.Dot(tt.transformB.Position.Sub(transformA.Position)), 0.0)
			assert.Greater(t, info.Normal.Dot(tt.wantNormal), 0.99, "normal %v", info.Normal)
			assert.InDelta(t, tt.wantDepth, info.Depth, tolerance)
			assert.InDelta(t, info.Depth, info.PointA.Sub(info.PointB).Dot(info.Normal), 1e-9)
		})
	}
}

func TestConvexVsConvexSweep(t *testing.T) {
	shape := mustBox(t, mgl64.Vec3{0.5, 0.5, 0.5})

	for x := 0.5; x < 0.99; x += 0.02 {
		for y := 0.0; y <= 0.5; y += 0.05 {
			position := mgl64.Vec3{x, y, 0}
			hit, info := ConvexVsConvex{}.TestCollision(shape, at(mgl64.Vec3{}), shape, at(position))
			if !assert.True(t, hit, "boxes at %v overlap", position) {
				continue
			}
			assert.InDelta(t, 1-math.Max(x, y), info.Depth, 2e-3, "depth at %v", position)
		}
	}
}

func TestDispatcher(t *testing.T) {
	d := NewDispatcher(nil)

	t.Run("spheres use the closed form", func(t *testing.T) {
		assert.IsType(t, SphereVsSphere{}, d.Select(actor.ShapeTypeSphere, actor.ShapeTypeSphere))
	})

	t.Run("every other pair is convex", func(t *testing.T) {
		for a := actor.ShapeTypeBox; a < actor.NumShapeTypes; a++ {
			for b := actor.ShapeTypeBox; b < actor.NumShapeTypes; b++ {
				if a == actor.ShapeTypeSphere && b == actor.ShapeTypeSphere {
					continue
				}
				assert.IsType(t, ConvexVsConvex{}, d.Select(a, b), "%s vs %s", a, b)
			}
		}
	})

	t.Run("register is symmetric", func(t *testing.T) {
		calls := 0
		custom := AlgorithmFunc(func(actor.Shape, actor.Transform, actor.Shape, actor.Transform) (bool, constraint.ContactInfo) {
			calls++
			return false, constraint.ContactInfo{}
		})
		d := NewDispatcher(nil)
		d.Register(actor.ShapeTypeBox, actor.ShapeTypeCapsule, custom)

		for _, pair := range [][2]actor.ShapeType{{actor.ShapeTypeBox, actor.ShapeTypeCapsule}, {actor.ShapeTypeCapsule, actor.ShapeTypeBox}} {
			algorithm := d.Select(pair[0], pair[1])
			require.NotNil(t, algorithm)
			algorithm.TestCollision(nil, actor.Transform{}, nil, actor.Transform{})
		}
		assert.Equal(t, 2, calls)
	})

	t.Run("out of range types", func(t *testing.T) {
		assert.Nil(t, d.Select(actor.NumShapeTypes, actor.ShapeTypeBox))
		assert.Nil(t, d.Select(actor.ShapeTypeBox, -1))
	})
}

package narrowphase

import (
	"log/slog"

	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/constraint"
	"github.com/akmonengine/impulse/epa"
	"github.com/akmonengine/impulse/gjk"
)

// ConvexVsConvex runs GJK on the margined shapes and EPA on overlap.
type ConvexVsConvex struct {
	Logger *slog.Logger
}

func (c ConvexVsConvex) TestCollision(shapeA actor.Shape, transformA actor.Transform, shapeB actor.Shape, transformB actor.Transform) (bool, constraint.ContactInfo) {
	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)
	simplex.Reset()

	if !gjk.GJK(shapeA, transformA, shapeB, transformB, simplex) {
		return false, constraint.ContactInfo{}
	}

	info, err := epa.EPA(shapeA, transformA, shapeB, transformB, simplex)
	if err != nil {
		c.logger().Warn("penetration query failed, contact dropped",
			"shapeA", shapeA.Type(), "shapeB", shapeB.Type(), "error", err)
		return false, constraint.ContactInfo{}
	}

	return true, info
}

func (c ConvexVsConvex) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

package narrowphase

import (
	"log/slog"

	"github.com/akmonengine/impulse/actor"
)

// Dispatcher maps each unordered pair of shape types to its Algorithm.
type Dispatcher struct {
	table [actor.NumShapeTypes][actor.NumShapeTypes]Algorithm
}

// NewDispatcher returns the default table: SphereVsSphere for two spheres,
// ConvexVsConvex everywhere else.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{}

	convex := ConvexVsConvex{Logger: logger}
	for i := range d.table {
		for j := range d.table[i] {
			d.table[i][j] = convex
		}
	}
	d.Register(actor.ShapeTypeSphere, actor.ShapeTypeSphere, SphereVsSphere{})

	return d
}

// Register sets the algorithm of both (a, b) and (b, a).
func (d *Dispatcher) Register(a, b actor.ShapeType, algorithm Algorithm) {
	d.table[a][b] = algorithm
	d.table[b][a] = algorithm
}

// Select returns the algorithm for the pair of shape types, nil if none.
func (d *Dispatcher) Select(a, b actor.ShapeType) Algorithm {
	if a < 0 || a >= actor.NumShapeTypes || b < 0 || b >= actor.NumShapeTypes {
		return nil
	}
	return d.table[a][b]
}

package impulse

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/constraint"
)

type islandEdges struct {
	manifolds []*constraint.ContactManifold
	joints    []constraint.Joint
}

// buildIslands groups the awake dynamic bodies connected by contacts or joints.
// Sleeping bodies reached from an awake one are woken up. Static and
// kinematic bodies join every island touching them but do not connect islands.
func (w *World) buildIslands() []*constraint.Island {
	edges := make(map[actor.BodyID]*islandEdges)
	edgesOf := func(body *actor.RigidBody) *islandEdges {
		e, ok := edges[body.ID]
		if !ok {
			e = &islandEdges{}
			edges[body.ID] = e
		}
		return e
	}

	for _, pair := range w.collision.OverlappingPairs() {
		if pair.Manifold.Len() == 0 || pair.IsTrigger() {
			continue
		}
		edgesOf(pair.BodyA).manifolds = append(edgesOf(pair.BodyA).manifolds, pair.Manifold)
		edgesOf(pair.BodyB).manifolds = append(edgesOf(pair.BodyB).manifolds, pair.Manifold)
	}
	for _, joint := range w.joints {
		a, b := joint.Bodies()
		edgesOf(a).joints = append(edgesOf(a).joints, joint)
		edgesOf(b).joints = append(edgesOf(b).joints, joint)
	}

	visited := make(map[actor.BodyID]bool)
	addedManifolds := make(map[*constraint.ContactManifold]bool)
	addedJoints := make(map[constraint.Joint]bool)

	var islands []*constraint.Island
	var stack []*actor.RigidBody

	for _, seed := range w.bodies.Values {
		if visited[seed.ID] || !seed.IsMotionEnabled() || seed.IsSleeping {
			continue
		}

		island := &constraint.Island{}
		// non dynamic bodies are only marked per island
		inIsland := make(map[actor.BodyID]bool)

		stack = append(stack[:0], seed)
		visited[seed.ID] = true
		inIsland[seed.ID] = true

		for len(stack) > 0 {
			body := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			island.Bodies = append(island.Bodies, body)
			if !body.IsMotionEnabled() {
				continue
			}
			if body.IsSleeping {
				body.Awake()
			}

			e, ok := edges[body.ID]
			if !ok {
				continue
			}

			visit := func(other *actor.RigidBody) {
				if inIsland[other.ID] || (other.IsMotionEnabled() && visited[other.ID]) {
					return
				}
				inIsland[other.ID] = true
				if other.IsMotionEnabled() {
					visited[other.ID] = true
				}
				stack = append(stack, other)
			}

			for _, manifold := range e.manifolds {
				if !addedManifolds[manifold] {
					addedManifolds[manifold] = true
					island.Manifolds = append(island.Manifolds, manifold)
				}
				if manifold.BodyA == body {
					visit(manifold.BodyB)
				} else {
					visit(manifold.BodyA)
				}
			}
			for _, joint := range e.joints {
				if !addedJoints[joint] {
					addedJoints[joint] = true
					island.Joints = append(island.Joints, joint)
				}
				a, b := joint.Bodies()
				if a == body {
					visit(b)
				} else {
					visit(a)
				}
			}
		}

		islands = append(islands, island)
	}

	return islands
}

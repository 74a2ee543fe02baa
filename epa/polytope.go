package epa

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/akmonengine/impulse/gjk"
)

// ErrDegenerateSimplex is returned when the GJK tetrahedron is flat and
// cannot seed a polytope.
var ErrDegenerateSimplex = errors.New("degenerate simplex")

// PolytopeBuilder holds the expanding polytope. Its buffers are reused through a pool.
// Faces are wound so that their normals point out of the polytope.
type PolytopeBuilder struct {
	faces          []Face
	edges          []Edge
	visibleIndices []int
}

var polytopeBuilderPool = sync.Pool{
	New: func() interface{} {
		return &PolytopeBuilder{
			faces:          make([]Face, 0, polytopeInitialCapacity),
			edges:          make([]Edge, 0, polytopeInitialCapacity),
			visibleIndices: make([]int, 0, polytopeInitialCapacity),
		}
	},
}

func (b *PolytopeBuilder) Reset() {
	b.faces = b.faces[:0]
	b.edges = b.edges[:0]
	b.visibleIndices = b.visibleIndices[:0]
}

// BuildInitialFaces creates the four faces of the GJK tetrahedron, each one
// facing away from the vertex it does not hold.
func (b *PolytopeBuilder) BuildInitialFaces(simplex *gjk.Simplex) error {
	if simplex.Count != 4 {
		return fmt.Errorf("invalid simplex count: %d (expected 4)", simplex.Count)
	}

	p0, p1, p2, p3 := simplex.Points[0], simplex.Points[1], simplex.Points[2], simplex.Points[3]

	volume := p1.V.Sub(p0.V).Dot(p2.V.Sub(p0.V).Cross(p3.V.Sub(p0.V)))
	if math.Abs(volume) < degenerateVolume {
		return fmt.Errorf("%w: volume %v", ErrDegenerateSimplex, volume)
	}

	for _, vertices := range [4][4]gjk.SupportPoint{
		{p0, p1, p2, p3},
		{p0, p2, p3, p1},
		{p0, p3, p1, p2},
		{p1, p3, p2, p0},
	} {
		face, ok := newFaceAwayFrom(vertices[0], vertices[1], vertices[2], vertices[3].V)
		if !ok {
			b.faces = b.faces[:0]
			return fmt.Errorf("%w: flat face", ErrDegenerateSimplex)
		}
		b.faces = append(b.faces, face)
	}

	return nil
}

func (b *PolytopeBuilder) FindClosestFaceIndex() int {
	if len(b.faces) == 0 {
		return -1
	}

	closest := 0
	for i := 1; i < len(b.faces); i++ {
		if b.faces[i].Distance < b.faces[closest].Distance {
			closest = i
		}
	}
	return closest
}

func (b *PolytopeBuilder) findVisibleFaces(support gjk.SupportPoint) {
	b.visibleIndices = b.visibleIndices[:0]

	for i := range b.faces {
		if support.V.Sub(b.faces[i].Points[0].V).Dot(b.faces[i].Normal) > visibleEpsilon {
			b.visibleIndices = append(b.visibleIndices, i)
		}
	}
}

// findHorizon collects the edges bounding the visible region. An edge shared
// by two visible faces appears once in each direction and cancels out.
func (b *PolytopeBuilder) findHorizon() {
	b.edges = b.edges[:0]

	for _, faceIndex := range b.visibleIndices {
		face := &b.faces[faceIndex]
		for i := 0; i < 3; i++ {
			edge := Edge{A: face.Points[i], B: face.Points[(i+1)%3]}

			shared := -1
			for j := range b.edges {
				if b.edges[j].reverses(edge) {
					shared = j
					break
				}
			}
			if shared >= 0 {
				last := len(b.edges) - 1
				b.edges[shared] = b.edges[last]
				b.edges = b.edges[:last]
			} else {
				b.edges = append(b.edges, edge)
			}
		}
	}
}

// removeVisibleFaces swaps each visible face with the last one, highest index first.
func (b *PolytopeBuilder) removeVisibleFaces() {
	indices := b.visibleIndices
	for i := 1; i < len(indices); i++ {
		for j := i; j > 0 && indices[j-1] < indices[j]; j-- {
			indices[j-1], indices[j] = indices[j], indices[j-1]
		}
	}

	for _, index := range indices {
		last := len(b.faces) - 1
		b.faces[index] = b.faces[last]
		b.faces = b.faces[:last]
	}
}

// AddPointAndRebuildFaces replaces the faces visible from support by a fan
// of faces joining the horizon to support. The closest face is always
// replaced, since support was searched along its normal. Sliver faces of the
// fan are dropped.
func (b *PolytopeBuilder) AddPointAndRebuildFaces(support gjk.SupportPoint, closestIndex int) {
	b.findVisibleFaces(support)
	if len(b.visibleIndices) == 0 {
		b.visibleIndices = append(b.visibleIndices, closestIndex)
	}

	b.findHorizon()
	b.removeVisibleFaces()

	for _, edge := range b.edges {
		if face, ok := newFace(edge.A, edge.B, support); ok {
			b.faces = append(b.faces, face)
		}
	}
}

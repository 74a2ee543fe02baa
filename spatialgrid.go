package impulse

import (
	"math"
	"slices"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// CellKey is the integer coordinate of a grid cell.
type CellKey struct {
	X, Y, Z int
}

type cell struct {
	bodyIndices []int
}

// SpatialGrid is a uniform grid hashed into a fixed number of cells.
// Distinct cells may share a bucket, so queries always confirm with the bounds.
type SpatialGrid struct {
	cellSize float64
	cells    []cell
	cellMask int
}

// NewSpatialGrid rounds numCells up to a power of two.
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]cell, numCells)
	for i := range cells {
		cells[i].bodyIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Insert adds the index to every cell the box touches.
func (sg *SpatialGrid) Insert(index int, aabb actor.AABB) {
	sg.forEachCell(aabb, func(cellIndex int) {
		sg.cells[cellIndex].bodyIndices = append(sg.cells[cellIndex].bodyIndices, index)
	})
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
}

// Query returns the sorted, distinct indices stored in the cells the box touches.
func (sg *SpatialGrid) Query(aabb actor.AABB) []int {
	var indices []int
	sg.forEachCell(aabb, func(cellIndex int) {
		indices = append(indices, sg.cells[cellIndex].bodyIndices...)
	})

	slices.Sort(indices)
	return slices.Compact(indices)
}

func (sg *SpatialGrid) forEachCell(aabb actor.AABB, fn func(cellIndex int)) {
	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				fn(sg.hashCell(CellKey{x, y, z}))
			}
		}
	}
}

func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}

// Linker wakes sleeping bodies that an awake moving body comes close to, so
// they are simulated before the contact actually happens.
type Linker struct {
	grid     *SpatialGrid
	distance float64
}

func NewLinker(distance, cellSize float64, numCells int) *Linker {
	return &Linker{
		grid:     NewSpatialGrid(cellSize, numCells),
		distance: distance,
	}
}

// Link returns the bodies it woke up, in body order.
func (l *Linker) Link(bodies []*actor.RigidBody) []*actor.RigidBody {
	l.grid.Clear()

	bounds := make([]actor.AABB, len(bodies))
	for i, body := range bodies {
		bounds[i] = body.AABB().Expand(l.distance * 0.5)
		l.grid.Insert(i, bounds[i])
	}

	woken := make([]bool, len(bodies))
	for i, body := range bodies {
		if !body.IsMotionEnabled() || body.IsSleeping || !body.HasMoved {
			continue
		}

		for _, other := range l.grid.Query(bounds[i]) {
			if other == i || woken[other] || !bodies[other].IsSleeping {
				continue
			}
			if bounds[i].Overlaps(bounds[other]) {
				bodies[other].Awake()
				woken[other] = true
			}
		}
	}

	var result []*actor.RigidBody
	for i, body := range bodies {
		if woken[i] {
			result = append(result, body)
		}
	}
	return result
}

package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestAABBOverlaps(t *testing.T) {
	unit := AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}

	tests := []struct {
		name  string
		other AABB
		want  bool
	}{
		{"separated on X", AABB{Min: mgl64.Vec3{2, 0, 0}, Max: mgl64.Vec3{3, 1, 1}}, false},
		{"separated on Y", AABB{Min: mgl64.Vec3{0, -2, 0}, Max: mgl64.Vec3{1, -1, 1}}, false},
		{"separated on Z", AABB{Min: mgl64.Vec3{0, 0, 2}, Max: mgl64.Vec3{1, 1, 3}}, false},
		{"overlapping on X and Y only", AABB{Min: mgl64.Vec3{0.5, 0.5, 1.5}, Max: mgl64.Vec3{2, 2, 2}}, false},
		{"partial overlap", AABB{Min: mgl64.Vec3{0.5, 0.5, 0.5}, Max: mgl64.Vec3{2, 2, 2}}, true},
		{"touching faces", AABB{Min: mgl64.Vec3{1, 0, 0}, Max: mgl64.Vec3{2, 1, 1}}, true},
		{"contained", AABB{Min: mgl64.Vec3{0.25, 0.25, 0.25}, Max: mgl64.Vec3{0.75, 0.75, 0.75}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := unit.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// symmetry
			if got := tt.other.Overlaps(unit); got != tt.want {
				t.Errorf("Overlaps() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAABBContainsPoint(t *testing.T) {
	aabb := AABB{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}}

	tests := []struct {
		name  string
		point mgl64.Vec3
		want  bool
	}{
		{"center", mgl64.Vec3{0, 0, 0}, true},
		{"corner", mgl64.Vec3{1, 1, 1}, true},
		{"outside", mgl64.Vec3{1.1, 0, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := aabb.ContainsPoint(tt.point); got != tt.want {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestAABBExpandAndMerge(t *testing.T) {
	a := AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}
	b := AABB{Min: mgl64.Vec3{-2, 0.5, 0}, Max: mgl64.Vec3{0, 3, 0.5}}

	expanded := a.Expand(0.5)
	if !vec3Equal(expanded.Min, mgl64.Vec3{-0.5, -0.5, -0.5}, 1e-12) || !vec3Equal(expanded.Max, mgl64.Vec3{1.5, 1.5, 1.5}, 1e-12) {
		t.Errorf("Expand() = %v", expanded)
	}

	merged := a.Merge(b)
	if !vec3Equal(merged.Min, mgl64.Vec3{-2, 0, 0}, 1e-12) || !vec3Equal(merged.Max, mgl64.Vec3{1, 3, 1}, 1e-12) {
		t.Errorf("Merge() = %v", merged)
	}
}

func TestTransformAABB(t *testing.T) {
	local := AABB{Min: mgl64.Vec3{-1, -2, -3}, Max: mgl64.Vec3{1, 2, 3}}

	tests := []struct {
		name      string
		transform Transform
		min, max  mgl64.Vec3
	}{
		{
			name:      "identity",
			transform: NewTransform(),
			min:       mgl64.Vec3{-1, -2, -3},
			max:       mgl64.Vec3{1, 2, 3},
		},
		{
			name:      "translated",
			transform: Transform{Position: mgl64.Vec3{10, 0, -5}, Rotation: mgl64.QuatIdent()},
			min:       mgl64.Vec3{9, -2, -8},
			max:       mgl64.Vec3{11, 2, -2},
		},
		{
			name:      "quarter turn around Z swaps X and Y extents",
			transform: Transform{Rotation: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})},
			min:       mgl64.Vec3{-2, -1, -3},
			max:       mgl64.Vec3{2, 1, 3},
		},
		{
			name:      "eighth turn around Y",
			transform: Transform{Rotation: mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0})},
			min:       mgl64.Vec3{-2 * math.Sqrt2, -2, -2 * math.Sqrt2},
			max:       mgl64.Vec3{2 * math.Sqrt2, 2, 2 * math.Sqrt2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TransformAABB(local, tt.transform)
			if !vec3Equal(got.Min, tt.min, 1e-9) || !vec3Equal(got.Max, tt.max, 1e-9) {
				t.Errorf("TransformAABB() = %v, want min %v max %v", got, tt.min, tt.max)
			}
		})
	}
}

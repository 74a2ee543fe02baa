package actor

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeCacheDeduplicates(t *testing.T) {
	cache := NewShapeCache()

	first := cache.Acquire(mustBox(t, mgl64.Vec3{1, 1, 1}))
	second := cache.Acquire(mustBox(t, mgl64.Vec3{1, 1, 1}))
	other := cache.Acquire(mustSphere(t, 1))

	assert.Same(t, first.(*Box), second.(*Box))
	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, 2, cache.RefCount(first))
	assert.Equal(t, 1, cache.RefCount(other))
}

func TestShapeCacheReferencesReturnToZero(t *testing.T) {
	cache := NewShapeCache()

	var acquired []Shape
	for i := 0; i < 3; i++ {
		acquired = append(acquired, cache.Acquire(mustBox(t, mgl64.Vec3{1, 2, 3})))
		acquired = append(acquired, cache.Acquire(mustSphere(t, 0.5)))
	}

	for _, shape := range acquired {
		require.NoError(t, cache.Release(shape))
	}

	assert.Equal(t, 0, cache.Len())
	for _, shape := range acquired {
		assert.Equal(t, 0, cache.RefCount(shape))
	}
}

func TestShapeCacheReleaseUnknown(t *testing.T) {
	cache := NewShapeCache()
	shape := cache.Acquire(mustSphere(t, 1))

	require.NoError(t, cache.Release(shape))
	assert.ErrorIs(t, cache.Release(shape), ErrUnknownShape)
	assert.ErrorIs(t, cache.Release(mustBox(t, mgl64.Vec3{1, 1, 1})), ErrUnknownShape)
}

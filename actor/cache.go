package actor

import "fmt"

type cacheEntry struct {
	shape Shape
	refs  int
}

// ShapeCache deduplicates identical shapes across bodies.
// A shape stays in the cache while at least one body references it.
type ShapeCache struct {
	entries []cacheEntry
}

func NewShapeCache() *ShapeCache {
	return &ShapeCache{}
}

// Acquire returns the cached shape equal to shape, or stores shape itself.
// Either way the returned shape gains one reference.
func (c *ShapeCache) Acquire(shape Shape) Shape {
	for i := range c.entries {
		if c.entries[i].shape.Equal(shape) {
			c.entries[i].refs++
			return c.entries[i].shape
		}
	}

	c.entries = append(c.entries, cacheEntry{shape: shape, refs: 1})
	return shape
}

// Release drops one reference to shape and frees the entry when none are left.
func (c *ShapeCache) Release(shape Shape) error {
	index := c.indexOf(shape)
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownShape, shape.Type())
	}

	c.entries[index].refs--
	if c.entries[index].refs == 0 {
		c.entries = append(c.entries[:index], c.entries[index+1:]...)
	}
	return nil
}

// RefCount returns the number of references held on shape, 0 if it is not cached.
func (c *ShapeCache) RefCount(shape Shape) int {
	index := c.indexOf(shape)
	if index < 0 {
		return 0
	}
	return c.entries[index].refs
}

// Len returns the number of distinct shapes alive in the cache
func (c *ShapeCache) Len() int {
	return len(c.entries)
}

// indexOf looks a shape up by identity
func (c *ShapeCache) indexOf(shape Shape) int {
	for i := range c.entries {
		if c.entries[i].shape == shape {
			return i
		}
	}
	return -1
}

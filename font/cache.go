package font

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache memoizes another provider's glyphs.
type Cache struct {
	provider Provider
	glyphs   *lru.Cache[byte, *Glyph]
}

// NewCache wraps p with an LRU of the given size.
func NewCache(p Provider, size int) (*Cache, error) {
	glyphs, err := lru.New[byte, *Glyph](size)
	if err != nil {
		return nil, err
	}
	return &Cache{provider: p, glyphs: glyphs}, nil
}

// Glyph returns the cached glyph for c, asking the wrapped provider on a miss.
func (c *Cache) Glyph(ch byte) *Glyph {
	if g, ok := c.glyphs.Get(ch); ok {
		return g
	}
	g := c.provider.Glyph(ch)
	c.glyphs.Add(ch, g)
	return g
}

// Len returns the number of cached glyphs.
func (c *Cache) Len() int {
	return c.glyphs.Len()
}

// Purge drops every cached glyph.
func (c *Cache) Purge() {
	c.glyphs.Purge()
}

package render

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// CacheStats holds frame cache statistics.
type CacheStats struct {
	Lookups   uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// frameCache memoizes frames by position using an Akita cache directory
// for tag and LRU management. Each block holds exactly one position.
type frameCache struct {
	ways int

	directory *akitacache.DirectoryImpl

	// indexed by (setID * ways + wayID)
	frames []*Frame

	stats CacheStats
}

func newFrameCache(sets, ways int) *frameCache {
	return &frameCache{
		ways: ways,
		directory: akitacache.NewDirectory(
			sets,
			ways,
			1,
			akitacache.NewLRUVictimFinder(),
		),
		frames: make([]*Frame, sets*ways),
	}
}

func (c *frameCache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.ways + block.WayID
}

// get returns the cached frame for position. A nil cache always misses.
func (c *frameCache) get(position int) (*Frame, bool) {
	if c == nil || position < 0 {
		return nil, false
	}

	c.stats.Lookups++
	block := c.directory.Lookup(0, uint64(position))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		return c.frames[c.blockIndex(block)], true
	}

	c.stats.Misses++
	return nil, false
}

func (c *frameCache) put(position int, fr *Frame) {
	if c == nil || position < 0 {
		return
	}

	addr := uint64(position)
	victim := c.directory.FindVictim(addr)
	if victim == nil {
		return
	}

	if victim.IsValid {
		c.stats.Evictions++
	}

	victim.Tag = addr
	victim.IsValid = true
	victim.IsDirty = false
	c.frames[c.blockIndex(victim)] = fr

	c.directory.Visit(victim)
}

func (c *frameCache) reset() {
	if c == nil {
		return
	}

	c.directory.Reset()
	for i := range c.frames {
		c.frames[i] = nil
	}
	c.stats = CacheStats{}
}

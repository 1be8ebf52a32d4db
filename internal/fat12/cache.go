package fat12

import (
	"log"
	"strconv"

	"github.com/tsandoval/minixt86/internal/storage"
)

// sectorCache sits between the engine and its backing store: reads
// lazily fault a sector in from the backing store (zero-filled when
// absent, so a blank key/value store behaves like a freshly formatted
// disk); writes only mark a sector dirty in memory until flush encodes
// and persists every dirty sector.
type sectorCache struct {
	store storage.Store
	cache map[int]*[BytesPerSector]byte
	dirty map[int]bool
}

func newSectorCache(store storage.Store) *sectorCache {
	return &sectorCache{
		store: store,
		cache: make(map[int]*[BytesPerSector]byte),
		dirty: make(map[int]bool),
	}
}

func sectorKey(idx int) string {
	return strconv.Itoa(idx)
}

func (c *sectorCache) read(idx int) *[BytesPerSector]byte {
	if s, ok := c.cache[idx]; ok {
		return s
	}

	var s [BytesPerSector]byte
	raw, err := c.store.Get(sectorKey(idx))
	switch {
	case err == storage.ErrNotExist:
		// Blank backing store reads as a freshly-formatted, zeroed sector.
	case err != nil:
		log.Printf("fat12: sector %d read failed, treating as zero-filled: %v", idx, err)
	default:
		copy(s[:], raw)
	}

	sp := new([BytesPerSector]byte)
	*sp = s
	c.cache[idx] = sp
	return sp
}

func (c *sectorCache) write(idx int, data []byte) {
	sp := c.read(idx)
	copy(sp[:], data)
	c.dirty[idx] = true
}

// flush persists every dirty sector and clears the dirty set. The
// engine calls this at the end of every mutating public operation
// so externally observable state is always durable.
func (c *sectorCache) flush() error {
	for idx := range c.dirty {
		sp := c.cache[idx]
		if err := c.store.Put(sectorKey(idx), sp[:]); err != nil {
			return err
		}
		delete(c.dirty, idx)
	}
	return nil
}

// wipe clears every cached and persisted sector, used by format().
func (c *sectorCache) wipe() error {
	keys, err := c.store.List("")
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := c.store.Delete(k); err != nil {
			return err
		}
	}
	c.cache = make(map[int]*[BytesPerSector]byte)
	c.dirty = make(map[int]bool)
	return nil
}

// Package fat12 implements the sector-accurate FAT12 floppy layout:
// boot sector with BPB, twin FATs, fixed-size root directory, 8.3
// directory entries, cluster chains with 12-bit entries, persisted
// one sector at a time through a storage.Store.
package fat12

import (
	"log"
	"strings"
	"time"

	"github.com/tsandoval/minixt86/internal/storage"
)

// FileSystem is the FAT12 engine's public contract: IsFormatted,
// Format, ListDir, ReadFile, WriteFile, Mkdir, DeleteEntry,
// RenameEntry, FreeClusters.
type FileSystem struct {
	cache *sectorCache
	now   func() time.Time

	// lastDeleteFound records whether the most recent deleteIfExists
	// call actually matched an entry, so DeleteEntry can report its
	// "returns true iff the entry was found" without changing
	// deleteIfExists's signature (WriteFile also calls it, but ignores
	// this field — overwriting a name that wasn't present is not an
	// error there).
	lastDeleteFound bool
}

// New returns a FAT12 engine persisting through store.
func New(store storage.Store) *FileSystem {
	return &FileSystem{
		cache: newSectorCache(store),
		now:   time.Now,
	}
}

// IsFormatted returns true when sector 0 carries the standard boot-jump
// opcode.
func (fs *FileSystem) IsFormatted() bool {
	return isBootJump(fs.cache.read(0)[:])
}

// Format wipes every sector, writes a boot sector with a valid BPB,
// initialises both FATs with F0 FF FF, and flushes.
func (fs *FileSystem) Format(label string) error {
	if err := fs.cache.wipe(); err != nil {
		return err
	}

	boot := defaultBootSector(label, 0x12345678).encode()
	fs.cache.write(0, boot[:])

	for _, base := range [NumFATs]int{fat1Sector, fat2Sector} {
		var first3 [3]byte
		first3[0] = MediaDescriptor
		first3[1], first3[2] = 0xFF, 0xFF
		fs.writeFatByte(base, 0, first3[0])
		fs.writeFatByte(base, 1, first3[1])
		fs.writeFatByte(base, 2, first3[2])
	}

	log.Printf("fat12: formatted volume %q", label)
	return fs.cache.flush()
}

// dirLocation describes where a directory's 32-byte slots live: the
// root directory's sectors are fixed by the BPB; a subdirectory's
// sectors come from walking its cluster chain.
type dirLocation struct {
	sectors []int
}

func (fs *FileSystem) rootDirLocation() dirLocation {
	sectors := make([]int, rootDirSectors)
	for i := range sectors {
		sectors[i] = rootDirSector + i
	}
	return dirLocation{sectors: sectors}
}

func (fs *FileSystem) subdirLocation(firstClus uint16) dirLocation {
	return dirLocation{sectors: fs.chainSectors(firstClus)}
}

// resolveDir walks pathComponents from the root, following
// subdirectory entries. A missing component reports ErrNotFound.
func (fs *FileSystem) resolveDir(pathComponents []string) (dirLocation, error) {
	dir := fs.rootDirLocation()
	for _, comp := range pathComponents {
		entries, err := fs.readDirEntries(dir)
		if err != nil {
			return dirLocation{}, err
		}

		found := false
		for _, e := range entries {
			if e.IsDir() && sameBaseName(e.DisplayName(), comp) {
				dir = fs.subdirLocation(e.FirstClus)
				found = true
				break
			}
		}
		if !found {
			return dirLocation{}, ErrNotFound
		}
	}
	return dir, nil
}

// readDirEntries enumerates every live (non-deleted, non-volume-label)
// entry in dir, stopping at the first never-used (terminator) slot.
func (fs *FileSystem) readDirEntries(dir dirLocation) ([]DirEntry, error) {
	var entries []DirEntry
	for _, sector := range dir.sectors {
		buf := fs.cache.read(sector)
		for off := 0; off+dirEntrySize <= BytesPerSector; off += dirEntrySize {
			slot := buf[off : off+dirEntrySize]
			e, deleted, term := decodeDirEntry(slot, sector, off)
			if term {
				return entries, nil
			}
			if deleted {
				continue
			}
			if !e.IsVolumeLabel() {
				entries = append(entries, e)
			}
		}
	}
	return entries, nil
}

// findFreeSlot returns the sector/offset of the first free (0x00 or
// 0xE5) slot in dir, or ok=false when the directory has no room left.
func (fs *FileSystem) findFreeSlot(dir dirLocation) (sector, offset int, ok bool) {
	for _, s := range dir.sectors {
		buf := fs.cache.read(s)
		for off := 0; off+dirEntrySize <= BytesPerSector; off += dirEntrySize {
			b := buf[off]
			if b == freeMarker || b == deletedMarker {
				return s, off, true
			}
		}
	}
	return 0, 0, false
}

// ListDir returns the visible entries of the named directory.
func (fs *FileSystem) ListDir(pathComponents []string) ([]DirEntry, error) {
	dir, err := fs.resolveDir(pathComponents)
	if err != nil {
		return nil, err
	}
	return fs.readDirEntries(dir)
}

// ReadFile walks the cluster chain named by the directory entry for
// name and returns exactly its recorded size bytes.
func (fs *FileSystem) ReadFile(pathComponents []string, name string) ([]byte, error) {
	dir, err := fs.resolveDir(pathComponents)
	if err != nil {
		return nil, err
	}

	entries, err := fs.readDirEntries(dir)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if !e.IsDir() && sameBaseName(e.DisplayName(), name) {
			return fs.readChain(e.FirstClus, e.FileSize), nil
		}
	}
	return nil, ErrNotFound
}

func (fs *FileSystem) readChain(head uint16, size uint32) []byte {
	out := make([]byte, 0, size)
	for _, sector := range fs.chainSectors(head) {
		buf := fs.cache.read(sector)
		remaining := int(size) - len(out)
		if remaining <= 0 {
			break
		}
		n := BytesPerSector
		if remaining < n {
			n = remaining
		}
		out = append(out, buf[:n]...)
	}
	// File-size field wins over chain length: pad with zeros if the
	// chain came up short.
	for len(out) < int(size) {
		out = append(out, 0)
	}
	return out[:size]
}

// WriteFile deletes any existing entry with that name, allocates a
// fresh cluster chain, writes the data zero-filling the tail of the
// last cluster, and writes a new directory entry.
func (fs *FileSystem) WriteFile(pathComponents []string, name string, data []byte) error {
	dir, err := fs.resolveDir(pathComponents)
	if err != nil {
		return err
	}

	if err := fs.deleteIfExists(dir, name); err != nil {
		return err
	}

	head, err := fs.allocateChain(len(data))
	if err != nil {
		return err
	}

	fs.writeChainData(head, data)

	sector, offset, ok := fs.findFreeSlot(dir)
	if !ok {
		fs.freeChain(head)
		return ErrDirectoryFull
	}

	slot := encodeDirEntry(name, AttrArchive, head, uint32(len(data)), fs.now())
	fs.writeSlot(sector, offset, slot[:])

	return fs.cache.flush()
}

// allocateChain reserves enough clusters to hold size bytes and links
// them, returning the head cluster (0 for a zero-length file).
func (fs *FileSystem) allocateChain(size int) (uint16, error) {
	if size == 0 {
		return 0, nil
	}

	numClusters := (size + BytesPerSector - 1) / BytesPerSector
	clusters := make([]int, 0, numClusters)
	for i := 0; i < numClusters; i++ {
		c, err := fs.allocateCluster()
		if err != nil {
			for _, prev := range clusters {
				fs.writeFatEntry(prev, 0)
			}
			return 0, err
		}
		clusters = append(clusters, c)
	}

	for i, c := range clusters {
		if i == len(clusters)-1 {
			fs.writeFatEntry(c, 0xFFF)
		} else {
			fs.writeFatEntry(c, uint16(clusters[i+1]))
		}
	}
	return uint16(clusters[0]), nil
}

func (fs *FileSystem) writeChainData(head uint16, data []byte) {
	sectors := fs.chainSectors(head)
	for i, sector := range sectors {
		var buf [BytesPerSector]byte
		start := i * BytesPerSector
		end := start + BytesPerSector
		if start < len(data) {
			if end > len(data) {
				end = len(data)
			}
			copy(buf[:], data[start:end])
		}
		fs.cache.write(sector, buf[:])
	}
}

func (fs *FileSystem) writeSlot(sector, offset int, slot []byte) {
	buf := *fs.cache.read(sector)
	copy(buf[offset:offset+dirEntrySize], slot)
	fs.cache.write(sector, buf[:])
}

// Mkdir allocates one cluster for the new directory, zero-fills it
// (seeding "." and ".." entries), and writes a 32-byte entry with
// attribute 0x10.
func (fs *FileSystem) Mkdir(pathComponents []string, name string) error {
	dir, err := fs.resolveDir(pathComponents)
	if err != nil {
		return err
	}

	entries, err := fs.readDirEntries(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if sameBaseName(e.DisplayName(), name) {
			return ErrAlreadyExists
		}
	}

	head, err := fs.allocateChain(BytesPerSector)
	if err != nil {
		return err
	}

	var block [BytesPerSector]byte
	dot := encodeDirEntry(".", AttrDirectory, head, 0, fs.now())
	copy(block[0:dirEntrySize], dot[:])

	parentClus, _ := fs.dirHeadCluster(pathComponents)
	dotdot := encodeDirEntry("..", AttrDirectory, parentClus, 0, fs.now())
	copy(block[dirEntrySize:2*dirEntrySize], dotdot[:])

	fs.cache.write(clusterToSector(int(head)), block[:])

	sector, offset, ok := fs.findFreeSlot(dir)
	if !ok {
		fs.freeChain(head)
		return ErrDirectoryFull
	}
	slot := encodeDirEntry(name, AttrDirectory, head, 0, fs.now())
	fs.writeSlot(sector, offset, slot[:])

	return fs.cache.flush()
}

// dirHeadCluster resolves the first-cluster field of the directory
// named by pathComponents itself (not its contents), used to seed ".."
// when creating a grandchild directory.
func (fs *FileSystem) dirHeadCluster(pathComponents []string) (uint16, bool) {
	if len(pathComponents) == 0 {
		return 0, true // root has no cluster of its own
	}
	parent, err := fs.resolveDir(pathComponents[:len(pathComponents)-1])
	if err != nil {
		return 0, false
	}
	entries, err := fs.readDirEntries(parent)
	if err != nil {
		return 0, false
	}
	name := pathComponents[len(pathComponents)-1]
	for _, e := range entries {
		if e.IsDir() && sameBaseName(e.DisplayName(), name) {
			return e.FirstClus, true
		}
	}
	return 0, false
}

// DeleteEntry marks the slot deleted (0xE5 over the first filename
// byte) and frees the entire cluster chain. Returns true iff found.
func (fs *FileSystem) DeleteEntry(pathComponents []string, name string) (bool, error) {
	dir, err := fs.resolveDir(pathComponents)
	if err != nil {
		return false, err
	}
	if err := fs.deleteIfExists(dir, name); err != nil {
		return false, err
	}
	if err := fs.cache.flush(); err != nil {
		return false, err
	}
	return fs.lastDeleteFound, nil
}

func (fs *FileSystem) deleteIfExists(dir dirLocation, name string) error {
	fs.lastDeleteFound = false
	for _, sector := range dir.sectors {
		buf := fs.cache.read(sector)
		for off := 0; off+dirEntrySize <= BytesPerSector; off += dirEntrySize {
			slot := buf[off : off+dirEntrySize]
			e, deleted, term := decodeDirEntry(slot, sector, off)
			if term {
				return nil
			}
			if deleted || e.IsVolumeLabel() {
				continue
			}
			if sameBaseName(e.DisplayName(), name) {
				newBuf := *fs.cache.read(sector)
				newBuf[off] = deletedMarker
				fs.cache.write(sector, newBuf[:])
				if e.FirstClus != 0 {
					fs.freeChain(e.FirstClus)
				}
				fs.lastDeleteFound = true
				return nil
			}
		}
	}
	return nil
}

// RenameEntry rewrites the 8.3 name in place; the cluster chain is
// left untouched.
func (fs *FileSystem) RenameEntry(pathComponents []string, oldName, newName string) error {
	dir, err := fs.resolveDir(pathComponents)
	if err != nil {
		return err
	}

	for _, sector := range dir.sectors {
		buf := fs.cache.read(sector)
		for off := 0; off+dirEntrySize <= BytesPerSector; off += dirEntrySize {
			slot := buf[off : off+dirEntrySize]
			e, deleted, term := decodeDirEntry(slot, sector, off)
			if term {
				return ErrNotFound
			}
			if deleted || e.IsVolumeLabel() {
				continue
			}
			if sameBaseName(e.DisplayName(), oldName) {
				base, ext := name8dot3(newName)
				newBuf := *fs.cache.read(sector)
				copy(newBuf[off:off+8], base[:])
				copy(newBuf[off+8:off+11], ext[:])
				fs.cache.write(sector, newBuf[:])
				return fs.cache.flush()
			}
		}
	}
	return ErrNotFound
}

// FreeClusters returns the count of entries still equal to zero in the
// first FAT in [2, maxCluster).
func (fs *FileSystem) FreeClusters() int {
	return fs.freeClusterCount()
}

// Normalize joins path components the way the DOS layer's CD/pathing
// presents them, splitting on both separators it may see.
func Normalize(path string) []string {
	path = strings.Trim(path, `\/`)
	if path == "" {
		return nil
	}
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '\\' || r == '/' })
	return parts
}

package fat12

import (
	"encoding/binary"
	"strings"
	"time"
)

// Attribute bits.
const (
	AttrReadOnly  = 0x01
	AttrHidden    = 0x02
	AttrSystem    = 0x04
	AttrVolumeID  = 0x08
	AttrDirectory = 0x10
	AttrArchive   = 0x20
	AttrLongName  = 0x0F

	deletedMarker = 0xE5
	freeMarker    = 0x00
)

// DirEntry is the decoded form of one 32-byte directory slot. Field
// names follow gofat's EntryHeader, adapted from FAT32's two-part
// cluster number (FirstClusterHI/LO) down to FAT12's single 16-bit
// cluster field.
type DirEntry struct {
	Name      string // base name, no extension, trailing spaces stripped
	Ext       string // extension, trailing spaces stripped
	Attr      byte
	WriteTime uint16
	WriteDate uint16
	FirstClus uint16
	FileSize  uint32

	slotSector int // sector holding this entry, for in-place rewrite
	slotOffset int // byte offset within that sector
}

// DisplayName joins Name and Ext with a '.' only when an extension
// exists.
func (e DirEntry) DisplayName() string {
	if e.Ext == "" {
		return e.Name
	}
	return e.Name + "." + e.Ext
}

// IsDir reports whether the entry names a subdirectory.
func (e DirEntry) IsDir() bool { return e.Attr&AttrDirectory != 0 }

// IsVolumeLabel reports whether the entry is a volume-label pseudo-entry.
func (e DirEntry) IsVolumeLabel() bool { return e.Attr&AttrVolumeID != 0 }

// name8dot3 splits name into its upper-cased, space-padded 8-byte base
// and 3-byte extension, the on-disk 8.3 layout.
func name8dot3(name string) (base [8]byte, ext [3]byte) {
	upper := strings.ToUpper(name)
	b, e := upper, ""
	if i := strings.LastIndexByte(upper, '.'); i >= 0 {
		b, e = upper[:i], upper[i+1:]
	}
	for i := range base {
		base[i] = ' '
	}
	for i := range ext {
		ext[i] = ' '
	}
	copy(base[:], b)
	copy(ext[:], e)
	return base, ext
}

func stripTrailingSpace(b []byte) string {
	return strings.TrimRight(string(b), " ")
}

// decodeDirEntry decodes one 32-byte slot. deleted marks an 0xE5 slot
// or a long-name fragment (both skipped); terminator marks a free
// (0x00) slot, which ends enumeration.
func decodeDirEntry(slot []byte, sector, offset int) (entry DirEntry, deleted, terminator bool) {
	if slot[0] == freeMarker {
		return DirEntry{}, false, true
	}
	if slot[0] == deletedMarker {
		return DirEntry{}, true, false
	}

	attr := slot[11]
	if attr == AttrLongName {
		return DirEntry{}, true, false
	}

	e := DirEntry{
		Name:       stripTrailingSpace(slot[0:8]),
		Ext:        stripTrailingSpace(slot[8:11]),
		Attr:       attr,
		WriteTime:  binary.LittleEndian.Uint16(slot[22:24]),
		WriteDate:  binary.LittleEndian.Uint16(slot[24:26]),
		FirstClus:  binary.LittleEndian.Uint16(slot[26:28]),
		FileSize:   binary.LittleEndian.Uint32(slot[28:32]),
		slotSector: sector,
		slotOffset: offset,
	}
	return e, false, false
}

// encodeDirEntry packs a fresh 32-byte slot for name/attr/cluster/size
// stamped with when as the last-write date/time.
func encodeDirEntry(name string, attr byte, firstClus uint16, size uint32, when time.Time) [dirEntrySize]byte {
	var slot [dirEntrySize]byte
	base, ext := name8dot3(name)

	copy(slot[0:8], base[:])
	copy(slot[8:11], ext[:])
	slot[11] = attr

	wtime := uint16(when.Hour())<<11 | uint16(when.Minute())<<5 | uint16(when.Second()/2)
	wdate := uint16(when.Year()-1980)<<9 | uint16(when.Month())<<5 | uint16(when.Day())
	binary.LittleEndian.PutUint16(slot[22:24], wtime)
	binary.LittleEndian.PutUint16(slot[24:26], wdate)
	binary.LittleEndian.PutUint16(slot[26:28], firstClus)
	binary.LittleEndian.PutUint32(slot[28:32], size)
	return slot
}

// sameBaseName reports whether two names collide once normalised to
// the on-disk 8.3 form, case-insensitively (mkdir's already-exists
// check uses this too).
func sameBaseName(a, b string) bool {
	aBase, aExt := name8dot3(a)
	bBase, bExt := name8dot3(b)
	return aBase == bBase && aExt == bExt
}

package fat12

import "encoding/binary"

// bootSector models sector 0, the BIOS Parameter Block plus the jump
// and signature bytes. Field names and offsets are grounded on the
// BPB/EntryHeader layout used by gofat's model.go, trimmed to the
// FAT12-only fields this floppy format actually needs.
type bootSector struct {
	OEMName         [8]byte
	BytesPerSector  uint16
	SectorsPerClus  byte
	ReservedSectors uint16
	NumFATs         byte
	RootEntryCount  uint16
	TotalSectors16  uint16
	Media           byte
	SectorsPerFAT   uint16
	SectorsPerTrack uint16
	Heads           uint16
	HiddenSectors   uint32
	TotalSectors32  uint32
	DriveNumber     byte
	ExtBootSig      byte
	VolumeSerial    uint32
	VolumeLabel     [11]byte
	FSType          [8]byte
}

func defaultBootSector(label string, serial uint32) bootSector {
	var b bootSector
	copy(b.OEMName[:], padRight("MINIXT86", 8, ' '))
	b.BytesPerSector = BytesPerSector
	b.SectorsPerClus = SectorsPerCluster
	b.ReservedSectors = ReservedSectors
	b.NumFATs = NumFATs
	b.RootEntryCount = RootEntryCount
	b.TotalSectors16 = TotalSectors
	b.Media = MediaDescriptor
	b.SectorsPerFAT = SectorsPerFAT
	b.SectorsPerTrack = SectorsPerTrack
	b.Heads = Heads
	b.DriveNumber = 0
	b.ExtBootSig = extBootSig
	b.VolumeSerial = serial
	copy(b.VolumeLabel[:], padRight(label, 11, ' '))
	copy(b.FSType[:], padRight("FAT12", 8, ' '))
	return b
}

func padRight(s string, n int, pad byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = pad
	}
	copy(out, s)
	if len(s) > n {
		copy(out, s[:n])
	}
	return out
}

// encode lays the boot sector out at the BPB's standard byte offsets.
func (b bootSector) encode() [BytesPerSector]byte {
	var s [BytesPerSector]byte
	s[0], s[1], s[2] = bootJump0, bootJump1, bootJump2
	copy(s[3:11], b.OEMName[:])
	binary.LittleEndian.PutUint16(s[11:13], b.BytesPerSector)
	s[13] = b.SectorsPerClus
	binary.LittleEndian.PutUint16(s[14:16], b.ReservedSectors)
	s[16] = b.NumFATs
	binary.LittleEndian.PutUint16(s[17:19], b.RootEntryCount)
	binary.LittleEndian.PutUint16(s[19:21], b.TotalSectors16)
	s[21] = b.Media
	binary.LittleEndian.PutUint16(s[22:24], b.SectorsPerFAT)
	binary.LittleEndian.PutUint16(s[24:26], b.SectorsPerTrack)
	binary.LittleEndian.PutUint16(s[26:28], b.Heads)
	binary.LittleEndian.PutUint32(s[28:32], b.HiddenSectors)
	binary.LittleEndian.PutUint32(s[32:36], b.TotalSectors32)
	s[36] = b.DriveNumber
	s[38] = b.ExtBootSig
	binary.LittleEndian.PutUint32(s[39:43], b.VolumeSerial)
	copy(s[43:54], b.VolumeLabel[:])
	copy(s[54:62], b.FSType[:])
	s[510] = bootSignature1
	s[511] = bootSignature2
	return s
}

// isBootJump reports whether a sector 0 starts with the standard
// boot-jump opcode, the signal isFormatted checks for.
func isBootJump(sector []byte) bool {
	return len(sector) >= 3 && sector[0] == bootJump0 && sector[1] == bootJump1 && sector[2] == bootJump2
}

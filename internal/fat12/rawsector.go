package fat12

// ReadSector and WriteSector expose the engine's sector cache directly
// by absolute sector index, for the BIOS disk service, which addresses
// the medium by CHS rather than by file path. They sit alongside the
// file-level operations rather than replacing them: INT 13h and the
// DOS file calls share the same cache.
func (fs *FileSystem) ReadSector(idx int) [BytesPerSector]byte {
	return *fs.cache.read(idx)
}

func (fs *FileSystem) WriteSector(idx int, data []byte) {
	fs.cache.write(idx, data)
}

// Flush persists every sector the disk service touched directly,
// bypassing the file-level operations' own flush-on-return.
func (fs *FileSystem) Flush() error {
	return fs.cache.flush()
}

// TotalSectorCount is the fixed geometry of the medium this engine
// formats, exposed so the disk service can bounds-check CHS requests.
func TotalSectorCount() int { return TotalSectors }

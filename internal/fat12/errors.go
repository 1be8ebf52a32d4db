package fat12

import "errors"

// FAT12 engine errors: surfaced to the BIOS/DOS layer, which
// translates them into DOS error codes at the interrupt boundary.
var (
	ErrDiskFull      = errors.New("fat12: disk full")
	ErrDirectoryFull = errors.New("fat12: directory full")
	ErrAlreadyExists = errors.New("fat12: already exists")
	ErrNotFound      = errors.New("fat12: not found")
)

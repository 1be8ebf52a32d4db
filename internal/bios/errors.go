package bios

import (
	"errors"

	"github.com/tsandoval/minixt86/internal/cpu"
	"github.com/tsandoval/minixt86/internal/fat12"
)

// DOS error codes this layer returns. Returned to the guest in AX
// with CF=1.
const (
	dosErrFileNotFound      = 0x02
	dosErrPathNotFound      = 0x03
	dosErrAccessDenied      = 0x05
	dosErrInvalidHandle     = 0x06
	dosErrInsufficientMem   = 0x08
	dosErrNoMoreFiles       = 0x12
)

// dosFileError translates a fat12 engine error into one of the six DOS
// codes above. disk-full and directory-full have no dedicated code
// among those six; both surface as access-denied, the closest match
// for "the write could not be completed".
func dosFileError(err error) byte {
	switch {
	case errors.Is(err, fat12.ErrNotFound):
		return dosErrFileNotFound
	case errors.Is(err, fat12.ErrAlreadyExists):
		return dosErrAccessDenied
	case errors.Is(err, fat12.ErrDirectoryFull), errors.Is(err, fat12.ErrDiskFull):
		return dosErrAccessDenied
	default:
		return dosErrAccessDenied
	}
}

// dosPathError is dosFileError's variant for failures that occurred
// while resolving a directory component rather than the final name.
func dosPathError(err error) byte {
	if errors.Is(err, fat12.ErrNotFound) {
		return dosErrPathNotFound
	}
	return dosFileError(err)
}

// fail reports a DOS error code the way every AH function with a
// documented failure path does: AX set to the code, CF set.
func fail(p *cpu.CPU, code byte) {
	p.AX = uint16(code)
	p.CF = true
}

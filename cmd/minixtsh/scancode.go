package main

// Scan-code assignment for the handful of keys a shell session types,
// the real IBM PC/XT set-1 layout (Escape=0x01, 1=0x02, ... Q=0x10,
// ...), just enough of it to drive INT 16h's scan-code byte for
// BIOS-level guest programs; the shell's own line editor only ever
// looks at the ASCII half of a KeyEvent.
const (
	scanEscape    = 0x01
	scanBackspace = 0x0E
	scanTab       = 0x0F
	scanEnter     = 0x1C
	scanSpace     = 0x39
)

var digitScan = [10]byte{0x0B, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A}

var letterScan = map[byte]byte{
	'q': 0x10, 'w': 0x11, 'e': 0x12, 'r': 0x13, 't': 0x14, 'y': 0x15, 'u': 0x16,
	'i': 0x17, 'o': 0x18, 'p': 0x19, 'a': 0x1E, 's': 0x1F, 'd': 0x20, 'f': 0x21,
	'g': 0x22, 'h': 0x23, 'j': 0x24, 'k': 0x25, 'l': 0x26, 'z': 0x2C, 'x': 0x2D,
	'c': 0x2E, 'v': 0x2F, 'b': 0x30, 'n': 0x31, 'm': 0x32,
}

// scanCodeForRune returns the set-1 make code for r, or 0 when r has no
// scan code worth tracking (anything beyond the ASCII the shell's own
// editing and the loaded program's INT 21h calls actually consume).
func scanCodeForRune(r rune) byte {
	switch {
	case r >= 'a' && r <= 'z':
		return letterScan[byte(r)]
	case r >= 'A' && r <= 'Z':
		return letterScan[byte(r-'A'+'a')]
	case r >= '0' && r <= '9':
		return digitScan[r-'0']
	case r == ' ':
		return scanSpace
	}
	return 0
}

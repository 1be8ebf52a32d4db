package bios

import "github.com/tsandoval/minixt86/internal/memory"

// VideoTextBase is the physical address of the 80x25 text-mode cell
// buffer every INT 10h/INT 21h character service writes through, the
// same address a real CGA/MDA adapter maps its regen buffer at. A
// terminal front-end renders the guest screen by reading this range
// directly rather than through a dedicated snapshot call.
const (
	VideoTextBase memory.Pointer = textBase
	VideoColumns                 = textCols
	VideoRows                    = textRows
)

// Cursor reports the BIOS text cursor's current row and column, for a
// front-end to position its own cursor over the rendered cell buffer.
func (s *Services) Cursor() (row, col int) {
	return int(s.video.cursorRow), int(s.video.cursorCol)
}

// Print writes text to the screen through the same teletype path
// INT 10h AH=0x0E and INT 21h AH=0x02/0x09 use, the mechanism a shell
// built on top of this layer uses for its own prompts and command
// output so that program output and shell output share one screen.
func (s *Services) Print(text string) {
	for i := 0; i < len(text); i++ {
		s.video.teletype(text[i])
	}
}

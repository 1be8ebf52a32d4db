package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/encoding/charmap"

	"github.com/tsandoval/minixt86/internal/bios"
)

// cgaPalette maps the four-bit foreground/background fields of a text
// attribute byte to tcell's named colours, the standard sixteen-entry
// CGA table.
var cgaPalette = [16]tcell.Color{
	tcell.ColorBlack, tcell.ColorNavy, tcell.ColorGreen, tcell.ColorTeal,
	tcell.ColorMaroon, tcell.ColorPurple, tcell.ColorOlive, tcell.ColorSilver,
	tcell.ColorGray, tcell.ColorBlue, tcell.ColorLime, tcell.ColorAqua,
	tcell.ColorRed, tcell.ColorFuchsia, tcell.ColorYellow, tcell.ColorWhite,
}

// tcellFrontend renders the guest's 80x25 text-mode cell buffer onto a
// real terminal and turns tcell key events into the two things Shell
// needs: an echoed, blocking line read and the BIOS keyboard FIFO's
// scan-code/ASCII pairs for a running program.
type tcellFrontend struct {
	screen tcell.Screen
	svc    *bios.Services
	keys   chan *tcell.EventKey
}

func newTcellFrontend(screen tcell.Screen, svc *bios.Services) *tcellFrontend {
	f := &tcellFrontend{screen: screen, svc: svc, keys: make(chan *tcell.EventKey, 64)}
	go f.pump()
	return f
}

// pump blocks on the next tcell event and forwards key presses,
// letting resize events just trigger a Sync.
func (f *tcellFrontend) pump() {
	for {
		switch ev := f.screen.PollEvent().(type) {
		case *tcell.EventKey:
			f.keys <- ev
		case *tcell.EventResize:
			f.screen.Sync()
		case nil:
			return
		}
	}
}

func (f *tcellFrontend) clear() {
	mem := f.svc.Memory()
	for i := 0; i < bios.VideoColumns*bios.VideoRows; i++ {
		mem.WriteByte(bios.VideoTextBase.Add(i*2), ' ')
		mem.WriteByte(bios.VideoTextBase.Add(i*2+1), 0x07)
	}
	f.redraw()
}

// redraw copies the guest's text-mode cell buffer onto the terminal,
// the same two-byte-per-cell (character, attribute) layout the
// teacher's platform/tcellevent.go walks in its EventInterrupt case.
func (f *tcellFrontend) redraw() {
	mem := f.svc.Memory().Read(bios.VideoTextBase, bios.VideoColumns*bios.VideoRows*2)
	for row := 0; row < bios.VideoRows; row++ {
		for col := 0; col < bios.VideoColumns; col++ {
			off := (row*bios.VideoColumns + col) * 2
			ch, attr := mem[off], mem[off+1]
			f.screen.SetCell(col, row, styleFromAttrib(attr), decodeCP437(ch))
		}
	}
	row, col := f.svc.Cursor()
	f.screen.ShowCursor(col, row)
	f.screen.Show()
}

// decodeCP437 maps a video-cell byte to the rune CP437 assigns it,
// falling back to a space for anything runewidth reports as zero-width
// (the line/box-drawing range decodes fine, but a defensive fallback
// keeps a stray control byte from collapsing a terminal column).
func decodeCP437(b byte) rune {
	if b == 0 {
		return ' '
	}
	r := charmap.CodePage437.DecodeByte(b)
	if runewidth.RuneWidth(r) == 0 {
		return ' '
	}
	return r
}

func styleFromAttrib(attr byte) tcell.Style {
	fg := cgaPalette[attr&0xF]
	bg := cgaPalette[(attr>>4)&0x7]
	return tcell.StyleDefault.Foreground(fg).Background(bg).Blink(attr&0x80 != 0)
}

// readLine blocks until Enter or Ctrl-Z, echoing every character
// through the BIOS teletype path so typed input shares the guest
// screen with everything else written there.
func (f *tcellFrontend) readLine() (line string, eof bool) {
	var buf []rune
	for {
		ev := <-f.keys
		switch ev.Key() {
		case tcell.KeyEnter:
			f.svc.Print("\r\n")
			f.redraw()
			return string(buf), false
		case tcell.KeyCtrlZ:
			f.svc.Print("^Z\r\n")
			f.redraw()
			return "", true
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
				f.svc.Print("\b \b")
			}
		case tcell.KeyCtrlC:
			f.svc.Print("^C\r\n")
			f.redraw()
			return "", true
		case tcell.KeyRune:
			buf = append(buf, ev.Rune())
			f.svc.Print(string(ev.Rune()))
		default:
			continue
		}
		f.redraw()
	}
}

// pumpKeysInto drains whatever key events have queued up and feeds
// each one into the BIOS keyboard FIFO as a scan-code/ASCII pair, the
// host side of the keyboard contract a running guest program reads
// through INT 16h.
func (f *tcellFrontend) pumpKeysInto(push func(scanCode, ascii byte)) {
	for {
		select {
		case ev := <-f.keys:
			ascii, scan := translateKey(ev)
			push(scan, ascii)
		default:
			return
		}
	}
}

func translateKey(ev *tcell.EventKey) (ascii, scanCode byte) {
	switch ev.Key() {
	case tcell.KeyEnter:
		return '\r', scanEnter
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return 0x08, scanBackspace
	case tcell.KeyTab:
		return '\t', scanTab
	case tcell.KeyEscape:
		return 0x1B, scanEscape
	case tcell.KeyRune:
		r := ev.Rune()
		return byte(r), scanCodeForRune(r)
	}
	return 0, 0
}

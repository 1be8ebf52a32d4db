package bios

import (
	"github.com/tsandoval/minixt86/internal/cpu"
	"github.com/tsandoval/minixt86/internal/memory"
)

const (
	textCols = 80
	textRows = 25

	textBase     = 0xB8000
	graphicsBase = 0xA0000

	defaultAttr = 0x07
)

// video tracks the handful of state bytes a real CGA/MDA adapter would
// hold in its own registers: cursor position, active mode, active page
// (always 0 here — multi-page text modes are not exercised by the
// programs this emulator targets).
type video struct {
	mem *memory.Memory

	mode       byte
	cursorRow  byte
	cursorCol  byte
}

func (v *video) init(mem *memory.Memory) {
	v.mem = mem
	v.mode = 0x03 // 80x25 16-colour text, the BIOS default
}

func (v *video) cellAddr(row, col int) memory.Pointer {
	return memory.Pointer(textBase + (row*textCols+col)*2)
}

func (v *video) writeCell(row, col int, ch, attr byte) {
	addr := v.cellAddr(row, col)
	v.mem.WriteByte(addr, ch)
	v.mem.WriteByte(addr.Add(1), attr)
}

func (v *video) readCell(row, col int) (ch, attr byte) {
	addr := v.cellAddr(row, col)
	return v.mem.ReadByte(addr), v.mem.ReadByte(addr.Add(1))
}

// scrollUp moves rows 1..24 up into rows 0..23 and clears row 24 with
// space/defaultAttr, the scroll teletype triggers once the cursor
// passes the last row.
func (v *video) scrollUp() {
	for row := 0; row < textRows-1; row++ {
		for col := 0; col < textCols; col++ {
			ch, attr := v.readCell(row+1, col)
			v.writeCell(row, col, ch, attr)
		}
	}
	for col := 0; col < textCols; col++ {
		v.writeCell(textRows-1, col, ' ', defaultAttr)
	}
}

func (v *video) advance() {
	v.cursorCol++
	if v.cursorCol >= textCols {
		v.cursorCol = 0
		v.newline()
	}
}

func (v *video) newline() {
	v.cursorRow++
	if v.cursorRow >= textRows {
		v.cursorRow = textRows - 1
		v.scrollUp()
	}
}

// teletype implements AH=0x0E: bell, backspace, line feed and carriage
// return as control characters, or a printable character written at
// the cursor with the fixed attribute 0x07, advancing (and
// wrapping/scrolling) after.
func (v *video) teletype(ch byte) {
	switch ch {
	case 0x07: // bell, ignored
	case 0x08: // backspace, no wrap
		if v.cursorCol > 0 {
			v.cursorCol--
		}
	case 0x0A: // line feed
		v.newline()
	case 0x0D: // carriage return
		v.cursorCol = 0
	default:
		v.writeCell(int(v.cursorRow), int(v.cursorCol), ch, defaultAttr)
		v.advance()
	}
}

func videoHandlers() map[byte]Handler {
	return map[byte]Handler{
		0x00: func(s *Services, p *cpu.CPU) { s.video.mode = p.AL() },
		0x02: func(s *Services, p *cpu.CPU) {
			s.video.cursorRow, s.video.cursorCol = p.DH(), p.DL()
		},
		0x03: func(s *Services, p *cpu.CPU) {
			p.SetDH(s.video.cursorRow)
			p.SetDL(s.video.cursorCol)
			p.CX = 0
		},
		0x06: func(s *Services, p *cpu.CPU) { s.video.scrollUp() },
		0x07: func(s *Services, p *cpu.CPU) { s.video.scrollUp() },
		0x08: func(s *Services, p *cpu.CPU) {
			ch, attr := s.video.readCell(int(s.video.cursorRow), int(s.video.cursorCol))
			p.SetAL(ch)
			p.SetAH(attr)
		},
		0x09: func(s *Services, p *cpu.CPU) {
			s.video.writeCell(int(s.video.cursorRow), int(s.video.cursorCol), p.AL(), p.BL())
		},
		0x0A: func(s *Services, p *cpu.CPU) {
			_, attr := s.video.readCell(int(s.video.cursorRow), int(s.video.cursorCol))
			s.video.writeCell(int(s.video.cursorRow), int(s.video.cursorCol), p.AL(), attr)
		},
		0x0E: func(s *Services, p *cpu.CPU) { s.video.teletype(p.AL()) },
		0x0F: func(s *Services, p *cpu.CPU) {
			p.SetAL(s.video.mode)
			p.SetAH(textCols)
		},
		0x11: func(s *Services, p *cpu.CPU) {}, // character-generator queries, stub
		0x12: func(s *Services, p *cpu.CPU) {}, // alt-select, stub
		0x1A: func(s *Services, p *cpu.CPU) {
			p.SetAL(0x1A)
			p.SetBL(0x08) // colour analog display
			p.SetBH(0x00)
		},
	}
}

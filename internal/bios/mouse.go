package bios

import "github.com/tsandoval/minixt86/internal/cpu"

// mouse tracks the handful of state fields the Microsoft mouse driver
// contract exposes through INT 33h: cursor position, button state, and
// the cumulative motion counters AX=000B reports and clears.
type mouse struct {
	visible    bool
	col, row   int
	buttons    byte
	motionX    int16
	motionY    int16
}

// mouseHandlers implements the INT 33h function group. Unlike every
// other vector this layer multiplexes, the real mouse driver keys its
// function off all of AX rather than AH alone (AX=0000..000B, so AH is
// always zero) — bios.go dispatches this vector directly on AX instead
// of through the shared AH table for that reason.
func mouseHandlers() map[uint16]Handler {
	return map[uint16]Handler{
		0x0000: func(s *Services, p *cpu.CPU) { // reset/detect
			s.mouse = mouse{}
			p.AX = 0xFFFF // mouse driver present
			p.BX = 2      // two buttons
		},
		0x0001: func(s *Services, p *cpu.CPU) { s.mouse.visible = true },
		0x0002: func(s *Services, p *cpu.CPU) { s.mouse.visible = false },
		0x0003: func(s *Services, p *cpu.CPU) {
			p.BX = uint16(s.mouse.buttons)
			p.CX = uint16(s.mouse.col)
			p.DX = uint16(s.mouse.row)
		},
		0x0004: func(s *Services, p *cpu.CPU) {
			s.mouse.col = int(p.CX)
			s.mouse.row = int(p.DX)
		},
		0x000B: func(s *Services, p *cpu.CPU) {
			p.CX = uint16(s.mouse.motionX)
			p.DX = uint16(s.mouse.motionY)
			s.mouse.motionX, s.mouse.motionY = 0, 0
		},
	}
}

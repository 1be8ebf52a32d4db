package bios

import "github.com/tsandoval/minixt86/internal/cpu"

// cyclesPerMicrosecond is the coarse proxy for the INT 15h AH=0x86
// wait: ~4.77 cycles/µs, the original 8086's clock.
const cyclesPerMicrosecond = 4.77

func systemHandlers() map[byte]Handler {
	return map[byte]Handler{
		0x86: func(s *Services, p *cpu.CPU) {
			microseconds := uint32(p.CX)<<16 | uint32(p.DX)
			s.ticks += int(float64(microseconds) * cyclesPerMicrosecond)
			p.CF = false
		},
		0x88: func(s *Services, p *cpu.CPU) {
			p.AX = 0 // no extended memory above 1 MiB
		},
		0x24: func(s *Services, p *cpu.CPU) {
			switch p.AL() {
			case 0x00, 0x01: // enable/disable request: always report enabled
				p.CF = false
			case 0x03: // query status
				p.AX = 0x0001
				p.CF = false
			default:
				p.CF = true
				p.SetAH(0x86)
			}
		},
	}
}

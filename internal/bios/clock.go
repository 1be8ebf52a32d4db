package bios

import "github.com/tsandoval/minixt86/internal/cpu"

// toBCD packs a two-digit decimal value into a single BCD byte, the
// encoding the real-time clock service returns its fields in.
func toBCD(v int) byte { return byte((v/10)<<4 | v%10) }

func clockHandlers() map[byte]Handler {
	return map[byte]Handler{
		0x00: func(s *Services, p *cpu.CPU) {
			// Tick count: the s.ticks counter, which only INT 15h
			// AH=0x86 waits advance (in proxy cycles); it is not read
			// from the host clock. AL, the midnight-rollover flag, is
			// always 0.
			ticks := uint32(s.ticks)
			p.CX, p.DX = uint16(ticks>>16), uint16(ticks)
			p.SetAL(0)
		},
		0x02: func(s *Services, p *cpu.CPU) {
			now := s.now()
			p.SetCH(toBCD(now.Hour()))
			p.SetCL(toBCD(now.Minute()))
			p.SetDH(toBCD(now.Second()))
			p.SetDL(0)
			p.CF = false
		},
		0x04: func(s *Services, p *cpu.CPU) {
			now := s.now()
			p.SetCH(toBCD(now.Year() / 100))
			p.SetCL(toBCD(now.Year() % 100))
			p.SetDH(toBCD(int(now.Month())))
			p.SetDL(toBCD(now.Day()))
			p.CF = false
		},
	}
}

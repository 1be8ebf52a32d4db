package bios

import "github.com/tsandoval/minixt86/internal/cpu"

// installTerminationVectors wires the two legacy exit paths that run
// alongside AH=0x4C: INT 20h (the original CP/M-style "return to
// DOS", exit code implicitly 0) and INT 27h (terminate-and-stay-
// resident, modelled here as a plain exit since nothing in this
// emulator's process model outlives program termination anyway).
func installTerminationVectors(c *cpu.CPU, s *Services) {
	c.InstallInterruptHandler(0x20, func(p *cpu.CPU) {
		s.exitCode = 0
		p.Halt(cpu.HaltProgramExit)
	})
	c.InstallInterruptHandler(0x27, func(p *cpu.CPU) {
		s.exitCode = 0
		p.Halt(cpu.HaltProgramExit)
	})
}

// Package bios synthesises the BIOS/DOS service layer: a dispatch
// table of software-interrupt vectors, keyed by vector and then (for
// INT 10h/13h/15h/16h/1Ah/21h) by a function code in AH, or for INT
// 33h by the whole of AX, since this
// machine's BIOS multiplexes dozens of services onto a handful of
// vectors rather than a flat syscall-number space.
package bios

import (
	"log/slog"
	"time"

	"github.com/tsandoval/minixt86/internal/cpu"
	"github.com/tsandoval/minixt86/internal/fat12"
	"github.com/tsandoval/minixt86/internal/memory"
)

// Handler services one AH-selected function within a vector.
type Handler func(s *Services, p *cpu.CPU)

// Services holds every piece of state a synthesised handler may touch:
// the video cursor and mode, the keyboard FIFO, the open-file table,
// the bump-pointer memory allocator, and the current directory the DOS
// personality tracks per process (this emulator runs exactly one).
type Services struct {
	cpu *cpu.CPU
	mem *memory.Memory
	fs  *fat12.FileSystem
	now func() time.Time
	log *slog.Logger

	video video
	kbd   keyboardBuffer
	mouse mouse

	cwd       []string
	openFiles map[byte]*openFile
	nextHandle byte

	allocs []allocation
	ticks  int

	pspSegment uint16

	dta         memory.Pointer
	findMatches []fat12.DirEntry
	findIndex   int

	exitCode byte
}

// ExitCode returns the code the last AH=0x4C/INT 20h termination
// recorded, for the session orchestrator to report once the CPU halts
// with HaltProgramExit.
func (s *Services) ExitCode() byte { return s.exitCode }

// SetPSPSegment records the loaded program's PSP segment, consulted by
// AH=0x48's allocation bookkeeping and available to the loader once the
// program image and PSP have both been written.
func (s *Services) SetPSPSegment(seg uint16) { s.pspSegment = seg }

// Memory exposes the flat address space the loader writes program
// images and the PSP/environment blocks into.
func (s *Services) Memory() *memory.Memory { return s.mem }

type allocation struct {
	segment, paragraphs uint16
	owner               uint16 // owning PSP segment
}

// dispatch is the vector -> (AH -> Handler) table built in New.
type dispatch map[int]map[byte]Handler

// New wires every service this layer synthesises onto cpu's interrupt
// table and returns the Services value handlers close over.
func New(c *cpu.CPU, fs *fat12.FileSystem, logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Services{
		cpu:       c,
		mem:       c.Memory(),
		fs:        fs,
		now:       time.Now,
		log:       logger,
		openFiles: make(map[byte]*openFile),
		nextHandle: 5, // 0-4 are the standard handles
	}
	s.video.init(s.mem)

	table := dispatch{
		0x10: videoHandlers(),
		0x13: diskHandlers(),
		0x15: systemHandlers(),
		0x16: keyboardHandlers(),
		0x1A: clockHandlers(),
		0x21: dosHandlers(),
	}

	for vector, fns := range table {
		vector, byAH := vector, fns // pre-1.22 Go reuses loop vars; pin per-iteration copies
		c.InstallInterruptHandler(vector, func(p *cpu.CPU) {
			if h, ok := byAH[p.AH()]; ok {
				h(s, p)
				return
			}
			s.log.Debug("bios: unhandled function", "vector", vector, "ah", p.AH())
		})
	}

	byAX := mouseHandlers()
	c.InstallInterruptHandler(0x33, func(p *cpu.CPU) {
		if h, ok := byAX[p.AX]; ok {
			h(s, p)
			return
		}
		s.log.Debug("bios: unhandled mouse function", "ax", p.AX)
	})

	c.InstallInterruptHandler(0x11, func(p *cpu.CPU) { p.AX = equipmentWord })
	c.InstallInterruptHandler(0x12, func(p *cpu.CPU) { p.AX = conventionalMemoryKiB })
	c.InstallInterruptHandler(0x14, func(p *cpu.CPU) { p.SetAH(0x80) }) // serial stub: always timeout
	c.InstallInterruptHandler(0x17, func(p *cpu.CPU) { p.SetAH(0x00) })
	c.InstallInterruptHandler(0x19, func(p *cpu.CPU) { s.bootstrap(p) })
	installTerminationVectors(c, s)
	noop := func(p *cpu.CPU) {}
	for _, v := range []int{0x22, 0x23, 0x24, 0x28, 0x2F} {
		c.InstallInterruptHandler(v, noop)
	}

	return s
}

const (
	equipmentWord         = 0x0021 // one floppy, 80x25 colour adapter present
	conventionalMemoryKiB = 640
)

// bootstrap implements INT 19h: chain INT 13h (no-op here, there is no
// removable-media change to react to) then jump to the boot sector at
// 0000:7C00, matching the real BIOS's warm-boot sequence.
func (s *Services) bootstrap(p *cpu.CPU) {
	p.CS, p.IP = 0, 0x7C00
}

// CWD returns the current directory's path components.
func (s *Services) CWD() []string { return s.cwd }

// PushKey appends one scan-code/ASCII pair to the keyboard FIFO and, if
// the interpreter is halted waiting for one, resumes it. This is the
// host key pump's half of the keyboard contract.
func (s *Services) PushKey(scanCode, ascii byte) {
	s.kbd.push(uint16(scanCode)<<8 | uint16(ascii))
	if s.cpu.Halted && s.cpu.HaltReason == cpu.HaltKeyWait {
		s.cpu.Resume()
	}
}

// Package cpu implements an 8086 interpreter: fetch, decode and
// execute of the real-mode 16-bit instruction set against a flat
// memory, a segment-override/repeat prefix state machine, a
// software-interrupt trampoline, and an I/O port table.
//
// Opcodes dispatch through a dense 256-entry table of function values
// keyed by opcode, built once in init (see table.go) rather than one
// giant switch in execute() — exhaustiveness is then a property you
// can check by inspecting the table, not by reading a thousand-line
// function.
package cpu

import (
	"log"

	"github.com/tsandoval/minixt86/internal/memory"
)

// HaltReason tags why the interpreter stopped stepping.
type HaltReason int

const (
	HaltNone HaltReason = iota
	HaltHLT
	HaltProgramExit
	HaltKeyWait
)

func (r HaltReason) String() string {
	switch r {
	case HaltHLT:
		return "hlt"
	case HaltProgramExit:
		return "program-exit"
	case HaltKeyWait:
		return "key-wait"
	default:
		return "none"
	}
}

// RepeatMode tags the active string-repeat prefix.
type RepeatMode byte

const (
	RepeatNone    RepeatMode = 0
	RepeatWhileEQ RepeatMode = 0xF3 // REP / REPE / REPZ
	RepeatWhileNE RepeatMode = 0xF2 // REPNE / REPNZ
)

// InterruptHandler is a synthesised BIOS/DOS service for one vector.
// It runs to completion inside the host call; the CPU's
// interrupt trampoline pushes/pops the stack frame around it.
type InterruptHandler func(p *CPU)

// IOPort is the read/write pair backing one entry of the I/O port table.
type IOPort struct {
	In  func() byte
	Out func(byte)
}

// CPU is the interpreter: registers, flags, ephemeral prefix state,
// the interrupt handler table, the I/O port table, and a reference to
// the flat memory it executes against.
type CPU struct {
	Registers

	mem *memory.Memory

	// Ephemeral prefix state, cleared at the start of every
	// top-level instruction by parseOpcode.
	segOverride *uint16
	repeatMode  RepeatMode

	opcode   byte
	modRM    byte
	haveModRM bool
	decodeAt  uint16 // IP of the instruction's first opcode byte, for retry/rewind

	isWide, rmToReg bool

	isV20 bool

	interrupts [256]InterruptHandler
	ports      [0x10000]IOPort

	Halted     bool
	HaltReason HaltReason

	trap bool

	Logger *log.Logger
}

// New returns an interpreter over mem, with CS:IP and the rest of the
// register file zeroed; callers (internal/loader) set up the entry
// point before the first Step.
func New(mem *memory.Memory, logger *log.Logger) *CPU {
	if logger == nil {
		logger = log.Default()
	}
	return &CPU{mem: mem, Logger: logger}
}

// SetV20Support records whether NEC V20 behaviour is enabled (off by
// default). No instruction consults the setting: the shift count is
// masked to 5 bits whether it is on or off.
func (p *CPU) SetV20Support(b bool) { p.isV20 = b }

// InstallInterruptHandler registers a synthesised handler for vector n.
// When none is registered, the trampoline falls through to the
// interrupt vector table in memory.
func (p *CPU) InstallInterruptHandler(n int, h InterruptHandler) {
	p.interrupts[n&0xFF] = h
}

// InstallIOPort registers a read/write pair for a single port.
func (p *CPU) InstallIOPort(port uint16, h IOPort) {
	p.ports[port] = h
}

// Memory exposes the flat memory the interpreter runs against, for the
// BIOS/DOS layer and the loader.
func (p *CPU) Memory() *memory.Memory { return p.mem }

// InstructionStart returns the IP of the instruction currently being
// serviced by an interrupt handler, for the key-wait retry: setting IP
// back to this value makes the INT re-execute on the next Step once
// the host delivers a key.
func (p *CPU) InstructionStart() uint16 { return p.decodeAt }

// InByte/OutByte/InWord/OutWord implement the I/O port table.
// Unhandled reads yield 0xFF; unhandled writes are silently dropped.
func (p *CPU) InByte(port uint16) byte {
	if h := p.ports[port].In; h != nil {
		return h()
	}
	return 0xFF
}

func (p *CPU) OutByte(port uint16, v byte) {
	if h := p.ports[port].Out; h != nil {
		h(v)
	}
}

func (p *CPU) InWord(port uint16) uint16 {
	lo := p.InByte(port)
	hi := p.InByte(port + 1)
	return uint16(lo) | uint16(hi)<<8
}

func (p *CPU) OutWord(port uint16, v uint16) {
	p.OutByte(port, byte(v))
	p.OutByte(port+1, byte(v>>8))
}

// Halt marks the interpreter halted for reason r. The BIOS/DOS layer
// calls this for program-termination and HLT; the keyboard service
// calls it for key-wait after rewinding IP.
func (p *CPU) Halt(r HaltReason) {
	p.Halted = true
	p.HaltReason = r
}

// Resume clears a key-wait halt once the host key pump has delivered
// input, moving the CPU from Halted(waitingForKey) back to Running.
func (p *CPU) Resume() {
	p.Halted = false
	p.HaltReason = HaltNone
}

// Step executes exactly one top-level instruction (or, for a repeat
// prefix, the entire repeated operation, which runs to completion
// atomically from the scheduler's point of view).
func (p *CPU) Step() {
	if p.trap {
		p.raiseInterrupt(1)
	}
	p.trap = p.TF

	p.parseOpcode()

	if p.repeatMode != RepeatNone {
		p.executeRepeat()
		return
	}
	p.execute()
}

// Package session implements an explicit orchestrator record in place
// of a global runtime singleton: it owns the interpreter, memory,
// filesystem engine and BIOS/DOS service layer, drives the tick loop,
// and exposes a {Running, Halted(exit), Halted(waitingForKey)} state
// machine.
package session

import (
	"time"

	"github.com/tsandoval/minixt86/internal/bios"
	"github.com/tsandoval/minixt86/internal/cpu"
	"github.com/tsandoval/minixt86/internal/fat12"
	"github.com/tsandoval/minixt86/internal/memory"
)

// State is the session's three-way running/halted machine.
type State int

const (
	StateRunning State = iota
	StateHaltedExit
	StateHaltedKeyWait
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateHaltedExit:
		return "halted(exit)"
	case StateHaltedKeyWait:
		return "halted(waitingForKey)"
	default:
		return "unknown"
	}
}

// stepsPerTick and tickBudget are "≈100,000 steps per tick
// bounded by a wall-clock budget of ≈14ms" — whichever limit is hit
// first ends the tick.
const (
	stepsPerTick = 100_000
	tickBudget   = 14 * time.Millisecond
)

// KeyEvent is one entry the host key pump hands to Tick: a scan code
// plus whatever ASCII translation the host's keymap produced for it.
type KeyEvent struct {
	ScanCode, ASCII byte
}

// Session is the explicit record replacing any window._cpuRunning-style
// global: everything a running program touches is reachable from here,
// and nothing about it is package-level state.
type Session struct {
	CPU      *cpu.CPU
	Mem      *memory.Memory
	FS       *fat12.FileSystem
	Services *bios.Services

	sinks []Sink
}

// New wires cpu, fs and the BIOS/DOS service layer into one orchestrated
// record. Callers still drive loading (internal/loader) before the
// first Tick.
func New(c *cpu.CPU, fs *fat12.FileSystem, svc *bios.Services) *Session {
	return &Session{CPU: c, Mem: c.Memory(), FS: fs, Services: svc}
}

// State reports where the session sits in the three-way machine.
func (s *Session) State() State {
	if !s.CPU.Halted {
		return StateRunning
	}
	if s.CPU.HaltReason == cpu.HaltKeyWait {
		return StateHaltedKeyWait
	}
	return StateHaltedExit
}

// ExitCode returns the code the guest program passed to AH=0x4C/INT 20h,
// meaningful once State reports StateHaltedExit.
func (s *Session) ExitCode() byte { return s.Services.ExitCode() }

// Tick drives the interpreter for up to stepsPerTick steps or until
// tickBudget elapses, whichever comes first, after first draining every
// pending key event into the BIOS keyboard FIFO — the host key pump's
// half of the keyboard contract, run synchronously here since the
// session owns the only goroutine that touches the shared CPU/memory/
// interrupt state. A session already halted on exit does nothing.
func (s *Session) Tick(keys []KeyEvent) {
	for _, k := range keys {
		s.Services.PushKey(k.ScanCode, k.ASCII)
	}

	if s.State() == StateHaltedExit {
		return
	}

	deadline := time.Now().Add(tickBudget)
	for i := 0; i < stepsPerTick; i++ {
		if s.CPU.Halted {
			return
		}
		s.CPU.Step()
		if time.Now().After(deadline) {
			return
		}
	}
}

package session

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/tsandoval/minixt86/internal/bios"
	"github.com/tsandoval/minixt86/internal/cpu"
	"github.com/tsandoval/minixt86/internal/fat12"
	"github.com/tsandoval/minixt86/internal/loader"
	"github.com/tsandoval/minixt86/internal/memory"
	"github.com/tsandoval/minixt86/internal/storage"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	mem := memory.New()
	p := cpu.New(mem, nil)
	fs := fat12.New(storage.NewMemStore(t.Name()))
	if err := fs.Format("TEST"); err != nil {
		t.Fatal(err)
	}
	svc := bios.New(p, fs, slog.Default())
	return New(p, fs, svc)
}

// TestCOMProgramExitsWithinOneTick checks that a one-instruction COM
// image (INT 20h) reaches StateHaltedExit after a single Tick.
func TestCOMProgramExitsWithinOneTick(t *testing.T) {
	s := newTestSession(t)
	loader.Load(s.CPU, s.Services, []byte{0xCD, 0x20}, "", "C:\\HELLO.COM")

	if s.State() != StateRunning {
		t.Fatalf("State() before Tick = %v, want running", s.State())
	}

	s.Tick(nil)

	if s.State() != StateHaltedExit {
		t.Fatalf("State() after Tick = %v, want halted(exit)", s.State())
	}
}

// TestKeyWaitResumesNextTick exercises the blocking-keyboard-read path:
// a program reading via INT 16h AH=0x00 with no key available should
// halt with StateHaltedKeyWait, and a queued key event delivered on the
// next Tick should let it proceed far enough to then hit INT 20h.
func TestKeyWaitResumesNextTick(t *testing.T) {
	s := newTestSession(t)
	// B4 00 (MOV AH,0) ; CD 16 (INT 16h) ; CD 20 (INT 20h)
	loader.Load(s.CPU, s.Services, []byte{0xB4, 0x00, 0xCD, 0x16, 0xCD, 0x20}, "", "C:\\WAITKEY.COM")

	s.Tick(nil)
	if s.State() != StateHaltedKeyWait {
		t.Fatalf("State() = %v, want halted(waitingForKey)", s.State())
	}

	s.Tick([]KeyEvent{{ScanCode: 0x1C, ASCII: '\r'}})
	if s.State() != StateHaltedExit {
		t.Fatalf("State() after key delivery = %v, want halted(exit)", s.State())
	}
}

func TestSinkPushPopRestoresDefault(t *testing.T) {
	s := newTestSession(t)
	if s.Sink() != defaultSink {
		t.Fatalf("Sink() with empty stack should be defaultSink")
	}

	var buf bytes.Buffer
	s.PushSink(&buf)
	if s.Sink() != Sink(&buf) {
		t.Fatalf("Sink() after push should be the pushed buffer")
	}

	s.PopSink()
	if s.Sink() != defaultSink {
		t.Fatalf("Sink() after pop should restore defaultSink")
	}

	s.PopSink() // unbalanced pop must not panic
}

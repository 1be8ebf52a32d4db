package bios

import (
	"log/slog"
	"testing"

	"github.com/tsandoval/minixt86/internal/cpu"
	"github.com/tsandoval/minixt86/internal/fat12"
	"github.com/tsandoval/minixt86/internal/memory"
	"github.com/tsandoval/minixt86/internal/storage"
)

func newTestServices(t *testing.T) (*Services, *cpu.CPU) {
	t.Helper()
	mem := memory.New()
	p := cpu.New(mem, nil)
	fs := fat12.New(storage.NewMemStore(t.Name()))
	if err := fs.Format("TEST"); err != nil {
		t.Fatal(err)
	}
	s := New(p, fs, slog.Default())
	return s, p
}

func writeASCIIZ(mem *memory.Memory, seg, off uint16, s string) {
	mem.Load(memory.NewPointer(seg, off), append([]byte(s), 0))
}

func TestDosCreateWriteCloseOpenReadRoundTrip(t *testing.T) {
	s, p := newTestServices(t)

	writeASCIIZ(s.mem, 0x2000, 0x0000, "HELLO.TXT")
	p.DS, p.DX = 0x2000, 0x0000
	dosCreate(s, p)
	if p.CF {
		t.Fatalf("create failed: AX=%#x", p.AX)
	}
	handle := byte(p.AX)

	payload := []byte("hi there")
	mem := s.mem
	mem.Load(memory.NewPointer(0x2000, 0x0100), payload)
	p.BX = uint16(handle)
	p.DS, p.DX = 0x2000, 0x0100
	p.CX = uint16(len(payload))
	dosWrite(s, p)
	if p.CF || p.AX != uint16(len(payload)) {
		t.Fatalf("write: CF=%v AX=%#x", p.CF, p.AX)
	}

	p.BX = uint16(handle)
	dosClose(s, p)
	if p.CF {
		t.Fatalf("close failed: AX=%#x", p.AX)
	}

	writeASCIIZ(s.mem, 0x2000, 0x0000, "HELLO.TXT")
	p.DS, p.DX = 0x2000, 0x0000
	p.SetAL(0) // read-only open
	dosOpen(s, p)
	if p.CF {
		t.Fatalf("open failed: AX=%#x", p.AX)
	}
	handle = byte(p.AX)

	p.BX = uint16(handle)
	p.DS, p.DX = 0x2000, 0x0200
	p.CX = 32
	dosRead(s, p)
	if p.CF {
		t.Fatalf("read failed: AX=%#x", p.AX)
	}
	if int(p.AX) != len(payload) {
		t.Fatalf("read count = %d, want %d", p.AX, len(payload))
	}
	got := mem.Read(memory.NewPointer(0x2000, 0x0200), len(payload))
	if string(got) != string(payload) {
		t.Fatalf("round trip = %q, want %q", got, payload)
	}
}

func TestDosOpenMissingFileFails(t *testing.T) {
	s, p := newTestServices(t)
	writeASCIIZ(s.mem, 0x2000, 0, "NOPE.TXT")
	p.DS, p.DX = 0x2000, 0
	dosOpen(s, p)
	if !p.CF || p.AX != dosErrFileNotFound {
		t.Fatalf("CF=%v AX=%#x, want CF=true AX=%#x", p.CF, p.AX, dosErrFileNotFound)
	}
}

func TestDosDeleteReportsNotFound(t *testing.T) {
	s, p := newTestServices(t)
	writeASCIIZ(s.mem, 0x2000, 0, "GHOST.TXT")
	p.DS, p.DX = 0x2000, 0
	dosDelete(s, p)
	if !p.CF || p.AX != dosErrFileNotFound {
		t.Fatalf("CF=%v AX=%#x, want not-found", p.CF, p.AX)
	}
}

func TestTerminateHaltsWithExitCode(t *testing.T) {
	s, p := newTestServices(t)
	p.SetAL(0x07)
	terminate(s, p)
	if !p.Halted || p.HaltReason != cpu.HaltProgramExit {
		t.Fatalf("Halted=%v Reason=%v, want HaltProgramExit", p.Halted, p.HaltReason)
	}
	if s.ExitCode() != 0x07 {
		t.Fatalf("ExitCode() = %#x, want 0x07", s.ExitCode())
	}
}

func TestCharInputBlocksThenResumesOnPushKey(t *testing.T) {
	s, p := newTestServices(t)
	p.SS, p.SP = 0, 0x1000
	p.CS, p.IP = 0, 0x4000
	p.SetAH(0x07) // raw character input, serviced by charInput(false)
	s.mem.Load(memory.NewPointer(0, 0x4000), []byte{0xCD, 0x21})
	p.Step()
	if !p.Halted || p.HaltReason != cpu.HaltKeyWait {
		t.Fatalf("Halted=%v Reason=%v, want HaltKeyWait", p.Halted, p.HaltReason)
	}
	if p.IP != 0x4000 {
		t.Fatalf("IP = %#x, want rewound to 0x4000", p.IP)
	}

	s.PushKey(0x1E, 'a')
	if p.Halted {
		t.Fatalf("PushKey did not resume the interpreter")
	}
}

func TestVideoTeletypeWritesCellAndAdvances(t *testing.T) {
	s, _ := newTestServices(t)
	s.video.cursorRow, s.video.cursorCol = 0, 0
	s.video.teletype('A')
	ch, attr := s.video.readCell(0, 0)
	if ch != 'A' || attr != defaultAttr {
		t.Fatalf("cell = %q/%#x, want 'A'/%#x", ch, attr, defaultAttr)
	}
	if s.video.cursorCol != 1 {
		t.Fatalf("cursorCol = %d, want 1", s.video.cursorCol)
	}
}

func TestVideoTeletypeWrapsAndScrolls(t *testing.T) {
	s, _ := newTestServices(t)
	s.video.cursorRow, s.video.cursorCol = textRows-1, textCols-1
	s.video.writeCell(0, 0, 'X', defaultAttr)
	s.video.teletype('Z')
	if s.video.cursorRow != textRows-1 || s.video.cursorCol != 0 {
		t.Fatalf("cursor = (%d,%d), want bottom row wrapped to col 0", s.video.cursorRow, s.video.cursorCol)
	}
	ch, _ := s.video.readCell(0, 0)
	if ch != 0x00 {
		t.Fatalf("row 0 col 0 after scroll = %q, want row 1's never-written 0x00 cell scrolled up over 'X'", ch)
	}
}

func TestDiskReadSectorsMatchesCHSConversion(t *testing.T) {
	s, p := newTestServices(t)
	p.SetAL(1)
	p.SetCH(0) // cylinder 0
	p.SetCL(1) // sector 1
	p.SetDH(0) // head 0
	p.ES, p.BX = 0x3000, 0

	sector0 := s.fs.ReadSector(0)
	diskReadSectors(s, p)
	if p.CF {
		t.Fatalf("disk read failed: AH=%#x", p.AH())
	}
	got := s.mem.Read(memory.NewPointer(0x3000, 0), fat12.BytesPerSector)
	if string(got) != string(sector0[:]) {
		t.Fatalf("sector 0 read via INT 13h does not match fs.ReadSector(0)")
	}
}

func TestAllocParagraphsBumpsFromFixedBase(t *testing.T) {
	s, p := newTestServices(t)
	p.BX = 0x100
	allocParagraphs(s, p)
	if p.CF || p.AX != MemoryBumpBase {
		t.Fatalf("AX = %#x, want %#x", p.AX, MemoryBumpBase)
	}

	p.BX = 0x10
	allocParagraphs(s, p)
	if p.CF || p.AX != MemoryBumpBase+0x100 {
		t.Fatalf("second alloc AX = %#x, want %#x", p.AX, MemoryBumpBase+0x100)
	}
}

package loader

import (
	"log/slog"
	"testing"

	"github.com/tsandoval/minixt86/internal/bios"
	"github.com/tsandoval/minixt86/internal/cpu"
	"github.com/tsandoval/minixt86/internal/fat12"
	"github.com/tsandoval/minixt86/internal/memory"
	"github.com/tsandoval/minixt86/internal/storage"
)

func newTestRig(t *testing.T) (*cpu.CPU, *bios.Services, *memory.Memory) {
	t.Helper()
	mem := memory.New()
	p := cpu.New(mem, nil)
	fs := fat12.New(storage.NewMemStore(t.Name()))
	if err := fs.Format("TEST"); err != nil {
		t.Fatal(err)
	}
	svc := bios.New(p, fs, slog.Default())
	return p, svc, mem
}

// TestLoadCOMPositionsEntryAndStack checks that a one-instruction
// COM image (CD 20, INT 20h) leaves the CPU positioned to execute
// it at offset 0x100 of the PSP segment, with every segment register
// aliased to that same segment and the near-return stub pushed.
func TestLoadCOMPositionsEntryAndStack(t *testing.T) {
	p, svc, mem := newTestRig(t)
	Load(p, svc, []byte{0xCD, 0x20}, "", "C:\\HELLO.COM")

	if p.CS != pspSegment || p.DS != pspSegment || p.ES != pspSegment || p.SS != pspSegment {
		t.Fatalf("segments = CS:%#x DS:%#x ES:%#x SS:%#x, want all %#x", p.CS, p.DS, p.ES, p.SS, pspSegment)
	}
	if p.IP != comLoadOff {
		t.Fatalf("IP = %#x, want %#x", p.IP, comLoadOff)
	}
	if p.SP != initialSP-2 {
		t.Fatalf("SP = %#x, want %#x", p.SP, initialSP-2)
	}
	ret := mem.ReadWord(memory.NewPointer(pspSegment, p.SP))
	if ret != 0 {
		t.Fatalf("pushed near-return target = %#x, want 0", ret)
	}

	opcode := mem.ReadByte(memory.NewPointer(pspSegment, comLoadOff))
	if opcode != 0xCD {
		t.Fatalf("loaded byte at entry = %#x, want 0xCD", opcode)
	}
}

func TestLoadCOMWritesPSPHeader(t *testing.T) {
	p, svc, mem := newTestRig(t)
	Load(p, svc, []byte{0xCD, 0x20}, "FOO.TXT", "C:\\HELLO.COM")

	base := memory.NewPointer(pspSegment, 0)
	if mem.ReadByte(base) != 0xCD || mem.ReadByte(base.Add(1)) != 0x20 {
		t.Fatalf("PSP INT 20h pair missing")
	}
	if mem.ReadWord(base.Add(2)) != bios.MemoryBumpBase {
		t.Fatalf("top-of-memory word = %#x, want %#x", mem.ReadWord(base.Add(2)), bios.MemoryBumpBase)
	}
	if mem.ReadWord(base.Add(0x2C)) != envSegment {
		t.Fatalf("environment segment = %#x, want %#x", mem.ReadWord(base.Add(0x2C)), envSegment)
	}
	tailLen := mem.ReadByte(base.Add(0x80))
	if tailLen != 7 {
		t.Fatalf("command tail length = %d, want 7", tailLen)
	}
	if mem.ReadByte(base.Add(0x81 + 7)) != 0x0D {
		t.Fatalf("command tail not terminated with 0x0D")
	}
}

// buildMZ assembles a minimal MZ image: a 28-byte header with one
// relocation entry, followed by a two-word body where the relocation
// patches the second word to point at the load segment.
func buildMZ() []byte {
	header := make([]byte, 28)
	header[0], header[1] = 'M', 'Z'
	putLE16(header[6:8], 1)   // one relocation entry
	putLE16(header[8:10], 2)  // header is 2 paragraphs (32 bytes)
	putLE16(header[14:16], 0) // initial SS
	putLE16(header[16:18], 0x200)
	putLE16(header[20:22], 0x10) // initial IP
	putLE16(header[22:24], 0)    // initial CS
	putLE16(header[24:26], 28)   // reloc table right after the header fields we use

	reloc := make([]byte, 4)
	putLE16(reloc[0:2], 0x02) // offset within the body to patch
	putLE16(reloc[2:4], 0x00)

	body := make([]byte, 4)
	putLE16(body[2:4], 0x1234)

	return append(append(header, reloc...), body...)
}

func putLE16(b []byte, v uint16) { b[0] = byte(v); b[1] = byte(v >> 8) }

func TestLoadMZAppliesRelocationAndEntryPoint(t *testing.T) {
	p, svc, mem := newTestRig(t)
	img := buildMZ()
	Load(p, svc, img, "", "C:\\HELLO.EXE")

	loadSegment := uint16(pspSegment + 0x10)
	if p.CS != loadSegment {
		t.Fatalf("CS = %#x, want %#x", p.CS, loadSegment)
	}
	if p.IP != 0x10 {
		t.Fatalf("IP = %#x, want 0x10", p.IP)
	}
	if p.SS != loadSegment || p.SP != 0x200 {
		t.Fatalf("SS:SP = %#x:%#x, want %#x:0x200", p.SS, p.SP, loadSegment)
	}

	patched := mem.ReadWord(memory.NewPointer(loadSegment, 0x02))
	if patched != 0x1234+loadSegment {
		t.Fatalf("relocated word = %#x, want %#x", patched, 0x1234+loadSegment)
	}
}

package cpu

import (
	"log"
	"testing"

	"github.com/tsandoval/minixt86/internal/memory"
)

func newTestCPU(t *testing.T) (*CPU, *memory.Memory) {
	t.Helper()
	mem := memory.New()
	p := New(mem, log.New(testLogWriter{t}, "", 0))
	return p, mem
}

type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(b []byte) (int, error) {
	w.t.Logf("%s", b)
	return len(b), nil
}

func loadAt(mem *memory.Memory, cs, ip uint16, code ...byte) {
	mem.Load(memory.NewPointer(cs, ip), code)
}

// TestRepStosbFill checks that REP STOSB fills CX bytes and leaves
// DI advanced by CX.
func TestRepStosbFill(t *testing.T) {
	p, mem := newTestCPU(t)
	p.DI = 0x0200
	p.CX = 4
	p.SetAL(0xFF)
	p.DF = false
	loadAt(mem, 0, 0, 0xF3, 0xAA)

	p.Step()

	for addr := uint16(0x200); addr < 0x204; addr++ {
		if v := mem.ReadByte(memory.NewPointer(0, addr)); v != 0xFF {
			t.Errorf("byte at %#x = %#x, want 0xFF", addr, v)
		}
	}
	if p.CX != 0 {
		t.Errorf("CX = %d, want 0", p.CX)
	}
	if p.DI != 0x204 {
		t.Errorf("DI = %#x, want 0x204", p.DI)
	}
}

// TestRepMovsbZeroCXIsNoop checks that REP MOVSB with CX=0 touches no
// memory and leaves SI/DI unchanged.
func TestRepMovsbZeroCXIsNoop(t *testing.T) {
	p, mem := newTestCPU(t)
	p.SI, p.DI = 0x300, 0x400
	p.CX = 0
	mem.WriteByte(memory.NewPointer(0, 0x300), 0xAB)
	loadAt(mem, 0, 0, 0xF3, 0xA4)

	p.Step()

	if got := mem.ReadByte(memory.NewPointer(0, 0x400)); got != 0 {
		t.Errorf("destination byte = %#x, want untouched 0", got)
	}
	if p.SI != 0x300 || p.DI != 0x400 {
		t.Errorf("SI/DI moved: SI=%#x DI=%#x", p.SI, p.DI)
	}
}

// TestShiftedMultiplyOverflow checks that MUL BX with AX=0x8000 sets a
// nonzero high half, so CF and OF both come up set.
func TestShiftedMultiplyOverflow(t *testing.T) {
	p, mem := newTestCPU(t)
	p.AX = 0x8000
	p.BX = 0x0002
	loadAt(mem, 0, 0, 0xF7, 0xE3) // MUL BX

	p.Step()

	if p.DX != 1 || p.AX != 0 {
		t.Errorf("DX:AX = %#x:%#x, want 1:0", p.DX, p.AX)
	}
	if !p.CF || !p.OF {
		t.Errorf("CF=%v OF=%v, want both set", p.CF, p.OF)
	}
}

// TestIretRestoresPushedFrame checks that IRET pops IP, CS and FLAGS
// back off the stack in the order INT pushed them.
func TestIretRestoresPushedFrame(t *testing.T) {
	p, _ := newTestCPU(t)
	p.SS, p.SP = 0, 0x1000
	p.CS, p.IP = 0x1234, 0x0010
	p.CF, p.ZF = true, true

	flagsPushed := p.Flags.Pack()
	csPushed, ipPushed := p.CS, p.IP

	p.push16(flagsPushed)
	p.push16(csPushed)
	p.push16(ipPushed)

	p.CS, p.IP = 0, 0
	p.CF, p.ZF = false, false

	p.iret()

	if p.IP != ipPushed || p.CS != csPushed {
		t.Errorf("IP:CS = %#x:%#x, want %#x:%#x", p.IP, p.CS, ipPushed, csPushed)
	}
	if p.Flags.Pack() != flagsPushed {
		t.Errorf("flags = %#x, want %#x", p.Flags.Pack(), flagsPushed)
	}
}

// TestDivideByZeroRaisesInterruptZero checks that DIV by zero raises
// INT 0 instead of trapping the host.
func TestDivideByZeroRaisesInterruptZero(t *testing.T) {
	p, mem := newTestCPU(t)
	p.SS, p.SP = 0, 0x1000
	p.CS, p.IP = 0, 0
	p.AX, p.DX = 0, 0
	loadAt(mem, 0, 0, 0xF7, 0xF3) // DIV BX
	p.BX = 0

	p.Step()

	if p.Halted {
		t.Errorf("Halted = true, want false after an unhandled divide trap")
	}
	gotIP := p.mem.ReadWord(memory.NewPointer(0, 0))
	gotCS := p.mem.ReadWord(memory.NewPointer(0, 2))
	if p.IP != gotIP || p.CS != gotCS {
		t.Errorf("CS:IP = %#x:%#x, want vector-table contents %#x:%#x", p.CS, p.IP, gotCS, gotIP)
	}
}

// TestInt16KeyWaitRewindsIP covers property 8: a synthesised handler
// that finds no key available rewinds IP back onto the CD 16 bytes and
// halts with reason "key-wait", surviving the trampoline's SP+=6.
func TestInt16KeyWaitRewindsIP(t *testing.T) {
	p, mem := newTestCPU(t)
	p.SS, p.SP = 0, 0x1000
	p.CS, p.IP = 0, 0
	loadAt(mem, 0, 0, 0xCD, 0x16) // INT 16h

	p.InstallInterruptHandler(0x16, func(p *CPU) {
		if p.AH() == 0x00 {
			p.IP -= 2
			p.Halt(HaltKeyWait)
		}
	})

	p.Step()

	if !p.Halted || p.HaltReason != HaltKeyWait {
		t.Fatalf("Halted=%v HaltReason=%v, want key-wait", p.Halted, p.HaltReason)
	}
	if p.IP != 0 {
		t.Errorf("IP = %#x, want 0 (rewound onto CD 16)", p.IP)
	}
	if p.SP != 0x1000 {
		t.Errorf("SP = %#x, want 0x1000 (stack rebalanced)", p.SP)
	}
}

// TestFlagRulesAddSubCmp spot-checks CF/ZF/OF flag rules for the
// core arithmetic opcodes against hand-computed expectations.
func TestFlagRulesAddSubCmp(t *testing.T) {
	cases := []struct {
		name       string
		setup      func(p *CPU)
		code       []byte
		wantCF     bool
		wantZF     bool
		wantOF     bool
		wantResult uint16
		readResult func(p *CPU) uint16
	}{
		{
			name:       "ADD AX,BX overflow",
			setup:      func(p *CPU) { p.AX, p.BX = 0x7FFF, 1 },
			code:       []byte{0x01, 0xD8}, // ADD AX,BX
			wantOF:     true,
			wantResult: 0x8000,
			readResult: func(p *CPU) uint16 { return p.AX },
		},
		{
			name:       "SUB AX,BX borrow",
			setup:      func(p *CPU) { p.AX, p.BX = 0, 1 },
			code:       []byte{0x29, 0xD8}, // SUB AX,BX
			wantCF:     true,
			wantResult: 0xFFFF,
			readResult: func(p *CPU) uint16 { return p.AX },
		},
		{
			name:       "CMP equal sets ZF, does not write",
			setup:      func(p *CPU) { p.AX, p.BX = 5, 5 },
			code:       []byte{0x39, 0xD8}, // CMP AX,BX
			wantZF:     true,
			wantResult: 5,
			readResult: func(p *CPU) uint16 { return p.AX },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, mem := newTestCPU(t)
			tc.setup(p)
			loadAt(mem, 0, 0, tc.code...)
			p.Step()
			if p.CF != tc.wantCF || p.ZF != tc.wantZF || p.OF != tc.wantOF {
				t.Errorf("flags CF=%v ZF=%v OF=%v, want CF=%v ZF=%v OF=%v",
					p.CF, p.ZF, p.OF, tc.wantCF, tc.wantZF, tc.wantOF)
			}
			if got := tc.readResult(p); got != tc.wantResult {
				t.Errorf("result = %#x, want %#x", got, tc.wantResult)
			}
		})
	}
}

// TestIncDecPreserveCarry checks that INC/DEC leave CF untouched,
// unlike ADD/SUB.
func TestIncDecPreserveCarry(t *testing.T) {
	p, mem := newTestCPU(t)
	p.CX = 0xFFFF
	p.CF = true
	loadAt(mem, 0, 0, 0x41) // INC CX

	p.Step()

	if p.CX != 0 {
		t.Errorf("CX = %#x, want 0", p.CX)
	}
	if !p.CF {
		t.Errorf("CF = false, want preserved true")
	}
	if !p.ZF {
		t.Errorf("ZF = false, want true (result wrapped to 0)")
	}
}

// TestModRMCachedAcrossReadWrite exercises a read-modify-write opcode
// (INC word in memory) and checks the displacement is honoured once,
// i.e. the write lands at the same address the read came from.
func TestModRMCachedAcrossReadWrite(t *testing.T) {
	p, mem := newTestCPU(t)
	p.BX = 0x50
	mem.WriteWord(memory.NewPointer(0, 0x50+0x10), 41)
	loadAt(mem, 0, 0, 0xFF, 0x47, 0x10) // INC word [BX+0x10]

	p.Step()

	if got := mem.ReadWord(memory.NewPointer(0, 0x60)); got != 42 {
		t.Errorf("[BX+0x10] = %d, want 42", got)
	}
}

// TestUnknownOpcodeDoesNotTrap covers the decode-synchronisation-error
// policy of the error taxonomy: an unassigned byte logs and advances
// rather than halting or raising an interrupt.
func TestUnknownOpcodeDoesNotTrap(t *testing.T) {
	p, mem := newTestCPU(t)
	loadAt(mem, 0, 0, 0xF1, 0x90) // unassigned, then NOP
	p.Step()
	if p.Halted {
		t.Errorf("Halted = true, want false for an unassigned opcode")
	}
	if p.IP != 1 {
		t.Errorf("IP = %d, want 1 (opcode byte consumed, nothing else)", p.IP)
	}
}

package cpu

import "github.com/tsandoval/minixt86/internal/memory"

// String primitives and their repeat-prefixed looping. ES:DI
// is never subject to a segment-override prefix (only the source side
// of MOVS/CMPS, and LODS, read through DS unless overridden); that
// asymmetry is why dst below always builds its pointer from p.ES
// directly while src goes through effSeg.

func (p *CPU) stride(wide bool) int {
	n := 1
	if wide {
		n = 2
	}
	if p.DF {
		return -n
	}
	return n
}

func (p *CPU) srcPtr() memory.Pointer { return memory.NewPointer(p.effSeg(&p.DS), p.SI) }
func (p *CPU) dstPtr() memory.Pointer { return memory.NewPointer(p.ES, p.DI) }

func (p *CPU) movs8() {
	p.mem.WriteByte(p.dstPtr(), p.mem.ReadByte(p.srcPtr()))
	s := uint16(p.stride(false))
	p.SI += s
	p.DI += s
}

func (p *CPU) movs16() {
	p.mem.WriteWord(p.dstPtr(), p.mem.ReadWord(p.srcPtr()))
	s := uint16(p.stride(true))
	p.SI += s
	p.DI += s
}

func (p *CPU) lods8() {
	p.SetAL(p.mem.ReadByte(p.srcPtr()))
	p.SI += uint16(p.stride(false))
}

func (p *CPU) lods16() {
	p.AX = p.mem.ReadWord(p.srcPtr())
	p.SI += uint16(p.stride(true))
}

func (p *CPU) stos8() {
	p.mem.WriteByte(p.dstPtr(), p.AL())
	p.DI += uint16(p.stride(false))
}

func (p *CPU) stos16() {
	p.mem.WriteWord(p.dstPtr(), p.AX)
	p.DI += uint16(p.stride(true))
}

func (p *CPU) cmps8() {
	a, b := p.mem.ReadByte(p.srcPtr()), p.mem.ReadByte(p.dstPtr())
	p.sub8(a, b, false)
	s := uint16(p.stride(false))
	p.SI += s
	p.DI += s
}

func (p *CPU) cmps16() {
	a, b := p.mem.ReadWord(p.srcPtr()), p.mem.ReadWord(p.dstPtr())
	p.sub16(a, b, false)
	s := uint16(p.stride(true))
	p.SI += s
	p.DI += s
}

func (p *CPU) scas8() {
	p.sub8(p.AL(), p.mem.ReadByte(p.dstPtr()), false)
	p.DI += uint16(p.stride(false))
}

func (p *CPU) scas16() {
	p.sub16(p.AX, p.mem.ReadWord(p.dstPtr()), false)
	p.DI += uint16(p.stride(true))
}

// hasZFPredicate reports whether opcode is one of CMPS/SCAS, the two
// string primitives whose repeat loop also tests ZF.
func hasZFPredicate(op byte) bool {
	switch op {
	case 0xA6, 0xA7, 0xAE, 0xAF:
		return true
	default:
		return false
	}
}

// executeRepeat implements the REP/REPE/REPNE-prefixed string loop:
// it runs to CX=0 (or an early ZF-predicate mismatch for CMPS/SCAS)
// entirely within this call, atomically from the scheduler's view.
func (p *CPU) executeRepeat() {
	step := p.stringStep(p.opcode)
	if step == nil {
		p.invalidOpcode()
		return
	}

	zfPred := hasZFPredicate(p.opcode)
	wantZF := p.repeatMode == RepeatWhileEQ

	for p.CX != 0 {
		p.CX--
		step()
		if zfPred && p.ZF != wantZF {
			break
		}
	}
}

func (p *CPU) stringStep(op byte) func() {
	switch op {
	case 0xA4:
		return p.movs8
	case 0xA5:
		return p.movs16
	case 0xA6:
		return p.cmps8
	case 0xA7:
		return p.cmps16
	case 0xAA:
		return p.stos8
	case 0xAB:
		return p.stos16
	case 0xAC:
		return p.lods8
	case 0xAD:
		return p.lods16
	case 0xAE:
		return p.scas8
	case 0xAF:
		return p.scas16
	default:
		return nil
	}
}

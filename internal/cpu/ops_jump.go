package cpu

import "github.com/tsandoval/minixt86/internal/memory"

// Jumps, calls, returns and the loop family. Every relative
// form computes its target from IP *after* the displacement has been
// fetched, matching real hardware (the displacement is relative to the
// address of the following instruction, not the jump opcode itself).

// condTrue evaluates one of the sixteen Jcc conditions, keyed by the
// low nibble of the 0x70-0x7F opcode.
func condTrue(f *Flags, cc byte) bool {
	switch cc & 0x0F {
	case 0x0: // JO
		return f.OF
	case 0x1: // JNO
		return !f.OF
	case 0x2: // JB/JC
		return f.CF
	case 0x3: // JNB/JNC
		return !f.CF
	case 0x4: // JE/JZ
		return f.ZF
	case 0x5: // JNE/JNZ
		return !f.ZF
	case 0x6: // JBE/JNA
		return f.CF || f.ZF
	case 0x7: // JA/JNBE
		return !f.CF && !f.ZF
	case 0x8: // JS
		return f.SF
	case 0x9: // JNS
		return !f.SF
	case 0xA: // JP/JPE
		return f.PF
	case 0xB: // JNP/JPO
		return !f.PF
	case 0xC: // JL/JNGE
		return f.SF != f.OF
	case 0xD: // JGE/JNL
		return f.SF == f.OF
	case 0xE: // JLE/JNG
		return (f.SF != f.OF) || f.ZF
	default: // JG/JNLE
		return (f.SF == f.OF) && !f.ZF
	}
}

func (p *CPU) opJcc() {
	rel := p.fetchImm8()
	if condTrue(&p.Flags, p.opcode) {
		p.IP += signExtend8to16(rel)
	}
}

func (p *CPU) opJMPshort() {
	rel := p.fetchImm8()
	p.IP += signExtend8to16(rel)
}

func (p *CPU) opJMPnear() {
	rel := p.fetchImm16()
	p.IP += rel
}

func (p *CPU) opJMPfar() {
	ip := p.fetchImm16()
	cs := p.fetchImm16()
	p.IP, p.CS = ip, cs
}

func (p *CPU) opJMPrm() { // near JMP r/m16; opGrp5 does 0xFF /4 inline and /5 via opJMPrmFar
	rm := p.decodeModRM()
	p.IP = rm.readWord(p)
}

func (p *CPU) opCALLnear() {
	rel := p.fetchImm16()
	ret := p.IP
	p.IP += rel
	p.push16(ret)
}

func (p *CPU) opCALLfar() {
	ip := p.fetchImm16()
	cs := p.fetchImm16()
	p.push16(p.CS)
	p.push16(p.IP)
	p.IP, p.CS = ip, cs
}

func (p *CPU) opRETnear() {
	p.IP = p.pop16()
}

func (p *CPU) opRETnearImm() {
	imm := p.fetchImm16()
	p.IP = p.pop16()
	p.SP += imm
}

func (p *CPU) opRETfar() {
	p.IP = p.pop16()
	p.CS = p.pop16()
}

func (p *CPU) opRETfarImm() {
	imm := p.fetchImm16()
	p.IP = p.pop16()
	p.CS = p.pop16()
	p.SP += imm
}

func (p *CPU) opLOOP() {
	rel := p.fetchImm8()
	p.CX--
	if p.CX != 0 {
		p.IP += signExtend8to16(rel)
	}
}

func (p *CPU) opLOOPE() {
	rel := p.fetchImm8()
	p.CX--
	if p.CX != 0 && p.ZF {
		p.IP += signExtend8to16(rel)
	}
}

func (p *CPU) opLOOPNE() {
	rel := p.fetchImm8()
	p.CX--
	if p.CX != 0 && !p.ZF {
		p.IP += signExtend8to16(rel)
	}
}

func (p *CPU) opJCXZ() {
	rel := p.fetchImm8()
	if p.CX == 0 {
		p.IP += signExtend8to16(rel)
	}
}

// opINT/opINT3/opINTO/opIRET wire the interrupt trampoline to the
// instruction forms that invoke it.
func (p *CPU) opINT() {
	n := p.fetchImm8()
	p.raiseInterrupt(int(n))
}

func (p *CPU) opINT3() { p.raiseInterrupt(3) }

func (p *CPU) opINTO() {
	if p.OF {
		p.raiseInterrupt(4)
	}
}

func (p *CPU) opIRET() { p.iret() }

// farPtr reads an indirect far pointer out of memory for
// opCALLrmFar/opJMPrmFar,
// the 0xFF group's far CALL/JMP forms (/3 and /5).
func (p *CPU) farPtr(rm operand) (ip, cs uint16) {
	if rm.isReg {
		// Not a valid encoding on real hardware; treat as a near form
		// rather than faulting, staying permissive toward malformed
		// ModR/M combinations.
		return rm.readWord(p), p.CS
	}
	ip = p.mem.ReadWord(rm.addr)
	cs = p.mem.ReadWord(memory.Pointer(rm.addr).Add(2))
	return
}

func (p *CPU) opCALLrmFar(rm operand) {
	ip, cs := p.farPtr(rm)
	p.push16(p.CS)
	p.push16(p.IP)
	p.IP, p.CS = ip, cs
}

func (p *CPU) opJMPrmFar(rm operand) {
	ip, cs := p.farPtr(rm)
	p.IP, p.CS = ip, cs
}

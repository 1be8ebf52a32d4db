package cpu

import "github.com/tsandoval/minixt86/internal/memory"

// MOV, XCHG, LEA, segment-register moves, the accumulator-direct
// "moffs" forms, and the stack/flag transfer opcodes. Each function
// corresponds to one opcode or opcode pair in table.go.

func (p *CPU) opMOVrm() { // 0x88-0x8B: MOV r/m8,r8 / r/m16,r16 / r8,r/m8 / r16,r/m16
	dst, src := p.parseOperands()
	if p.isWide {
		dst.writeWord(p, src.readWord(p))
	} else {
		dst.writeByte(p, src.readByte(p))
	}
}

func (p *CPU) opMOVimmRM() { // 0xC6/0xC7: MOV r/m8,imm8 / r/m16,imm16
	dst := p.decodeModRM()
	if p.isWide {
		dst.writeWord(p, p.fetchImm16())
	} else {
		dst.writeByte(p, p.fetchImm8())
	}
}

func (p *CPU) opMOVsegToRM() { // 0x8C: MOV r/m16, Sreg
	seg := p.seg16(p.regField())
	rm := p.decodeModRM()
	rm.writeWord(p, *seg)
}

func (p *CPU) opMOVrmToSeg() { // 0x8E: MOV Sreg, r/m16
	seg := p.seg16(p.regField())
	rm := p.decodeModRM()
	*seg = rm.readWord(p)
}

func (p *CPU) opLEA() { // 0x8D: LEA r16, m
	reg := operand{isReg: true, reg: p.regField()}
	rm := p.decodeModRM()
	if rm.isReg {
		p.invalidOpcode()
		return
	}
	reg.writeWord(p, uint16(rm.addr)&0xFFFF)
}

func (p *CPU) opXCHGrm() { // 0x86/0x87: XCHG r/m, reg
	dst, src := p.parseOperands()
	if p.isWide {
		a, b := dst.readWord(p), src.readWord(p)
		dst.writeWord(p, b)
		src.writeWord(p, a)
	} else {
		a, b := dst.readByte(p), src.readByte(p)
		dst.writeByte(p, b)
		src.writeByte(p, a)
	}
}

// opMOVmoffs implements 0xA0-0xA3: MOV AL/AX,[imm16] and the reverse,
// the direct-address forms that bypass ModR/M entirely.
func (p *CPU) opMOVmoffsLoad8() {
	addr := memory.NewPointer(p.effSeg(&p.DS), p.fetchImm16())
	p.SetAL(p.mem.ReadByte(addr))
}

func (p *CPU) opMOVmoffsLoad16() {
	addr := memory.NewPointer(p.effSeg(&p.DS), p.fetchImm16())
	p.AX = p.mem.ReadWord(addr)
}

func (p *CPU) opMOVmoffsStore8() {
	addr := memory.NewPointer(p.effSeg(&p.DS), p.fetchImm16())
	p.mem.WriteByte(addr, p.AL())
}

func (p *CPU) opMOVmoffsStore16() {
	addr := memory.NewPointer(p.effSeg(&p.DS), p.fetchImm16())
	p.mem.WriteWord(addr, p.AX)
}

func (p *CPU) opPUSHimm16() { p.push16(p.fetchImm16()) }
func (p *CPU) opPUSHimm8()  { p.push16(signExtend8to16(p.fetchImm8())) }

func (p *CPU) opPOPrm() { // 0x8F
	rm := p.decodeModRM()
	rm.writeWord(p, p.pop16())
}

func (p *CPU) opPUSHF() { p.push16(p.Flags.Pack()) }
func (p *CPU) opPOPF()  { p.Flags.Unpack(p.pop16()) }

func (p *CPU) opSAHF() { p.Flags.Unpack(uint16(p.AH()) | p.Flags.Pack()&0xFF00) }
func (p *CPU) opLAHF() { p.SetAH(byte(p.Flags.Pack())) }

func (p *CPU) opCBW() {
	if p.AL()&0x80 != 0 {
		p.SetAH(0xFF)
	} else {
		p.SetAH(0)
	}
}

func (p *CPU) opCWD() {
	if p.AX&0x8000 != 0 {
		p.DX = 0xFFFF
	} else {
		p.DX = 0
	}
}

func (p *CPU) opXLAT() {
	addr := memory.NewPointer(p.effSeg(&p.DS), p.BX+uint16(p.AL()))
	p.SetAL(p.mem.ReadByte(addr))
}

// opPUSHA/opPOPA implement the 80186-and-later PUSHA/POPA opcodes.
// PUSHA's SP pushed is the value before any of the eight
// pushes; POPA restores every register but SP (which is recomputed by
// the pops themselves, matching real hardware which discards the
// pushed SP value on POPA).
func (p *CPU) opPUSHA() {
	sp := p.SP
	p.push16(p.AX)
	p.push16(p.CX)
	p.push16(p.DX)
	p.push16(p.BX)
	p.push16(sp)
	p.push16(p.BP)
	p.push16(p.SI)
	p.push16(p.DI)
}

func (p *CPU) opPOPA() {
	p.DI = p.pop16()
	p.SI = p.pop16()
	p.BP = p.pop16()
	p.pop16() // discard saved SP
	p.BX = p.pop16()
	p.DX = p.pop16()
	p.CX = p.pop16()
	p.AX = p.pop16()
}

// opENTER/opLEAVE implement the other post-8086 ENTER/LEAVE pair.
// Nesting level beyond 0 (block-structured Pascal display copying) is
// not exercised by any DOS program this emulator targets and is
// treated as 0 regardless of the encoded level, matching the level=0
// fast path real assemblers emit almost exclusively.
func (p *CPU) opENTER() {
	size := p.fetchImm16()
	_ = p.fetchImm8() // nesting level, unused
	p.push16(p.BP)
	p.BP = p.SP
	p.SP -= size
}

func (p *CPU) opLEAVE() {
	p.SP = p.BP
	p.BP = p.pop16()
}

// MOVZX/MOVSX, the two-byte 0x0F-prefixed zero/sign-extending moves.
func (p *CPU) opMOVZX8() {
	reg := operand{isReg: true, reg: p.regField()}
	rm := p.decodeModRM()
	*p.reg16(reg.reg) = uint16(rm.readByte(p))
}

func (p *CPU) opMOVSX8() {
	reg := operand{isReg: true, reg: p.regField()}
	rm := p.decodeModRM()
	*p.reg16(reg.reg) = signExtend8to16(rm.readByte(p))
}

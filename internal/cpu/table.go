package cpu

import "github.com/tsandoval/minixt86/internal/memory"

// The dispatch table itself: a dense 256-entry array of function
// values, built once here rather than decoded through a single giant
// switch. Groups of adjacent opcodes that share an encoding shape
// (the eight ALU groups, INC/DEC/PUSH/POP-by-register, the string
// primitives run without a repeat prefix) are filled by small loops so
// the encoding pattern stays visible instead of being transcribed by
// hand sixteen times.
var opcodeTable [256]func(*CPU)

// genArithRM builds the four ModR/M-addressed forms of one ALU group
// (Eb,Gb / Ev,Gv / Gb,Eb / Gv,Ev); genArithAcc builds the two
// immediate-to-accumulator forms (AL,ib / AX,iw). sub indexes binOp8/
// binOp16 exactly as grp1 does; writeBack is false only for CMP.
func genArithRM(sub byte, writeBack bool) func(*CPU) {
	return func(p *CPU) {
		dst, src := p.parseOperands()
		if p.isWide {
			res := p.binOp16(sub, dst.readWord(p), src.readWord(p))
			if writeBack {
				dst.writeWord(p, res)
			}
		} else {
			res := p.binOp8(sub, dst.readByte(p), src.readByte(p))
			if writeBack {
				dst.writeByte(p, res)
			}
		}
	}
}

func genArithAcc(sub byte, writeBack bool) func(*CPU) {
	return func(p *CPU) {
		if p.isWide {
			res := p.binOp16(sub, p.AX, p.fetchImm16())
			if writeBack {
				p.AX = res
			}
		} else {
			res := p.binOp8(sub, p.AL(), p.fetchImm8())
			if writeBack {
				p.SetAL(res)
			}
		}
	}
}

// genStringOnce wraps a repeat-capable string primitive so it still
// runs exactly once when no REP/REPE/REPNE prefix was present — the
// ordinary, unprefixed MOVSB/STOSW/etc form.
func genStringOnce(step func(*CPU)) func(*CPU) {
	return step
}

// opLESLDS builds LES/LDS (0xC4/0xC5): load a register and a segment
// register from a 32-bit far pointer in memory.
func opLESLDS(seg func(*CPU) *uint16) func(*CPU) {
	return func(p *CPU) {
		reg := operand{isReg: true, reg: p.regField()}
		rm := p.decodeModRM()
		if rm.isReg {
			p.invalidOpcode()
			return
		}
		lo := p.mem.ReadWord(rm.addr)
		hi := p.mem.ReadWord(memory.Pointer(rm.addr).Add(2))
		reg.writeWord(p, lo)
		*seg(p) = hi
	}
}

// opGrp2Imm builds the 80186-and-later 0xC0/0xC1 shift-by-immediate
// forms. Nothing in the targeted DOS programs requires it, but it's
// the same decode shape as 0xD0-0xD3 with a fetched count instead of 1
// or CL, so it costs nothing extra to support.
func opGrp2Imm(p *CPU) {
	sub := p.regField()
	rm := p.decodeModRM()
	count := p.fetchImm8()
	if p.isWide {
		rm.writeWord(p, p.shiftRotate16(sub, rm.readWord(p), count))
	} else {
		rm.writeByte(p, p.shiftRotate8(sub, rm.readByte(p), count))
	}
}

// genericModRMInvalid consumes a ModR/M byte (and any displacement it
// encodes) for an opcode this core recognises but does not execute,
// so the following opcode byte is not misaligned.
func genericModRMInvalid(p *CPU) {
	p.decodeModRM()
	p.invalidOpcode()
}

func init() {
	arith := []byte{0x00, 0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38}
	for sub, base := range arith {
		s := byte(sub)
		wb := s != 7 // CMP (sub 7) never writes back
		opcodeTable[base+0] = genArithRM(s, wb)
		opcodeTable[base+1] = genArithRM(s, wb)
		opcodeTable[base+2] = genArithRM(s, wb)
		opcodeTable[base+3] = genArithRM(s, wb)
		opcodeTable[base+4] = genArithAcc(s, wb)
		opcodeTable[base+5] = genArithAcc(s, wb)
	}

	for i := byte(0); i < 8; i++ {
		reg := i
		opcodeTable[0x40+reg] = func(p *CPU) { r := p.reg16(reg); *r = p.inc16(*r) }
		opcodeTable[0x48+reg] = func(p *CPU) { r := p.reg16(reg); *r = p.dec16(*r) }
		opcodeTable[0x50+reg] = func(p *CPU) { p.push16(*p.reg16(reg)) }
		opcodeTable[0x58+reg] = func(p *CPU) { *p.reg16(reg) = p.pop16() }
		opcodeTable[0xB0+reg] = func(p *CPU) { p.writeReg8(reg, p.fetchImm8()) }
		opcodeTable[0xB8+reg] = func(p *CPU) { *p.reg16(reg) = p.fetchImm16() }
	}
	opcodeTable[0x90] = (*CPU).opNOP
	for i := byte(1); i < 8; i++ {
		reg := i
		opcodeTable[0x90+reg] = func(p *CPU) {
			r := p.reg16(reg)
			p.AX, *r = *r, p.AX
		}
	}

	for i := byte(0); i < 16; i++ {
		opcodeTable[0x70+i] = (*CPU).opJcc
	}

	stringOps := map[byte]func(*CPU){
		0xA4: (*CPU).movs8, 0xA5: (*CPU).movs16,
		0xA6: (*CPU).cmps8, 0xA7: (*CPU).cmps16,
		0xAA: (*CPU).stos8, 0xAB: (*CPU).stos16,
		0xAC: (*CPU).lods8, 0xAD: (*CPU).lods16,
		0xAE: (*CPU).scas8, 0xAF: (*CPU).scas16,
	}
	for op, fn := range stringOps {
		opcodeTable[op] = genStringOnce(fn)
	}

	opcodeTable[0x06] = func(p *CPU) { p.push16(p.ES) }
	opcodeTable[0x07] = func(p *CPU) { p.ES = p.pop16() }
	opcodeTable[0x0E] = func(p *CPU) { p.push16(p.CS) }
	opcodeTable[0x16] = func(p *CPU) { p.push16(p.SS) }
	opcodeTable[0x17] = func(p *CPU) { p.SS = p.pop16() }
	opcodeTable[0x1E] = func(p *CPU) { p.push16(p.DS) }
	opcodeTable[0x1F] = func(p *CPU) { p.DS = p.pop16() }

	opcodeTable[0x27] = (*CPU).daa
	opcodeTable[0x2F] = (*CPU).das
	opcodeTable[0x37] = (*CPU).aaa
	opcodeTable[0x3F] = (*CPU).aas

	opcodeTable[0x60] = (*CPU).opPUSHA
	opcodeTable[0x61] = (*CPU).opPOPA
	opcodeTable[0x62] = genericModRMInvalid

	opcodeTable[0x68] = (*CPU).opPUSHimm16
	opcodeTable[0x6A] = (*CPU).opPUSHimm8

	opcodeTable[0x80] = (*CPU).opGrp1
	opcodeTable[0x81] = (*CPU).opGrp1
	opcodeTable[0x82] = (*CPU).opGrp1
	opcodeTable[0x83] = (*CPU).opGrp1

	opcodeTable[0x84] = (*CPU).opTESTrm
	opcodeTable[0x85] = (*CPU).opTESTrm
	opcodeTable[0x86] = (*CPU).opXCHGrm
	opcodeTable[0x87] = (*CPU).opXCHGrm
	opcodeTable[0x88] = (*CPU).opMOVrm
	opcodeTable[0x89] = (*CPU).opMOVrm
	opcodeTable[0x8A] = (*CPU).opMOVrm
	opcodeTable[0x8B] = (*CPU).opMOVrm
	opcodeTable[0x8C] = (*CPU).opMOVsegToRM
	opcodeTable[0x8D] = (*CPU).opLEA
	opcodeTable[0x8E] = (*CPU).opMOVrmToSeg
	opcodeTable[0x8F] = (*CPU).opPOPrm

	opcodeTable[0x98] = (*CPU).opCBW
	opcodeTable[0x99] = (*CPU).opCWD
	opcodeTable[0x9A] = (*CPU).opCALLfar
	opcodeTable[0x9B] = (*CPU).opWAIT
	opcodeTable[0x9C] = (*CPU).opPUSHF
	opcodeTable[0x9D] = (*CPU).opPOPF
	opcodeTable[0x9E] = (*CPU).opSAHF
	opcodeTable[0x9F] = (*CPU).opLAHF

	opcodeTable[0xA0] = (*CPU).opMOVmoffsLoad8
	opcodeTable[0xA1] = (*CPU).opMOVmoffsLoad16
	opcodeTable[0xA2] = (*CPU).opMOVmoffsStore8
	opcodeTable[0xA3] = (*CPU).opMOVmoffsStore16
	opcodeTable[0xA8] = (*CPU).opTESTacc
	opcodeTable[0xA9] = (*CPU).opTESTacc

	opcodeTable[0xC2] = (*CPU).opRETnearImm
	opcodeTable[0xC3] = (*CPU).opRETnear
	opcodeTable[0xC4] = opLESLDS(func(p *CPU) *uint16 { return &p.ES })
	opcodeTable[0xC5] = opLESLDS(func(p *CPU) *uint16 { return &p.DS })
	opcodeTable[0xC6] = (*CPU).opMOVimmRM
	opcodeTable[0xC7] = (*CPU).opMOVimmRM
	opcodeTable[0xC8] = (*CPU).opENTER
	opcodeTable[0xC9] = (*CPU).opLEAVE
	opcodeTable[0xCA] = (*CPU).opRETfarImm
	opcodeTable[0xCB] = (*CPU).opRETfar
	opcodeTable[0xCC] = (*CPU).opINT3
	opcodeTable[0xCD] = (*CPU).opINT
	opcodeTable[0xCE] = (*CPU).opINTO
	opcodeTable[0xCF] = (*CPU).opIRET

	opcodeTable[0xC0] = opGrp2Imm
	opcodeTable[0xC1] = opGrp2Imm
	opcodeTable[0xD0] = func(p *CPU) { p.opGrp2(false)() }
	opcodeTable[0xD1] = func(p *CPU) { p.opGrp2(false)() }
	opcodeTable[0xD2] = func(p *CPU) { p.opGrp2(true)() }
	opcodeTable[0xD3] = func(p *CPU) { p.opGrp2(true)() }
	opcodeTable[0xD4] = (*CPU).opAAM
	opcodeTable[0xD5] = (*CPU).opAAD
	opcodeTable[0xD7] = (*CPU).opXLAT
	for i := byte(0xD8); i <= 0xDF; i++ {
		opcodeTable[i] = (*CPU).opFPUEscape
	}

	opcodeTable[0xE0] = (*CPU).opLOOPNE
	opcodeTable[0xE1] = (*CPU).opLOOPE
	opcodeTable[0xE2] = (*CPU).opLOOP
	opcodeTable[0xE3] = (*CPU).opJCXZ
	opcodeTable[0xE4] = (*CPU).opINimm8
	opcodeTable[0xE5] = (*CPU).opINimm16
	opcodeTable[0xE6] = (*CPU).opOUTimm8
	opcodeTable[0xE7] = (*CPU).opOUTimm16
	opcodeTable[0xE8] = (*CPU).opCALLnear
	opcodeTable[0xE9] = (*CPU).opJMPnear
	opcodeTable[0xEA] = (*CPU).opJMPfar
	opcodeTable[0xEB] = (*CPU).opJMPshort
	opcodeTable[0xEC] = (*CPU).opINdx8
	opcodeTable[0xED] = (*CPU).opINdx16
	opcodeTable[0xEE] = (*CPU).opOUTdx8
	opcodeTable[0xEF] = (*CPU).opOUTdx16

	opcodeTable[0xF4] = (*CPU).opHLT
	opcodeTable[0xF5] = (*CPU).opCMC
	opcodeTable[0xF6] = (*CPU).opGrp3
	opcodeTable[0xF7] = (*CPU).opGrp3
	opcodeTable[0xF8] = (*CPU).opCLC
	opcodeTable[0xF9] = (*CPU).opSTC
	opcodeTable[0xFA] = (*CPU).opCLI
	opcodeTable[0xFB] = (*CPU).opSTI
	opcodeTable[0xFC] = (*CPU).opCLD
	opcodeTable[0xFD] = (*CPU).opSTD
	opcodeTable[0xFE] = (*CPU).opGrp4
	opcodeTable[0xFF] = (*CPU).opGrp5

	opcodeTable[0xF1] = nil // unassigned
	opcodeTable[0xD6] = nil // SALC, undocumented, left unimplemented
}

// execute dispatches the already-decoded p.opcode. 0x0F is the only
// two-byte form this core supports (MOVZX/MOVSX); everything else is
// a single lookup into opcodeTable.
func (p *CPU) execute() {
	if p.opcode == 0x0F {
		p.executeTwoByte()
		return
	}
	if h := opcodeTable[p.opcode]; h != nil {
		h(p)
		return
	}
	p.invalidOpcode()
}

func (p *CPU) executeTwoByte() {
	switch p.fetchByte() {
	case 0xB6:
		p.opMOVZX8()
	case 0xBE:
		p.opMOVSX8()
	default:
		p.invalidOpcode()
	}
}

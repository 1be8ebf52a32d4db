package cpu

// The ModR/M-extension-coded opcode groups: grp1 (add-class immediate
// ops, 0x80-0x83), grp2 (shift/rotate, 0xD0-0xD3), grp3 (unary, 0xF6/
// 0xF7), grp4/grp5 (INC/DEC/indirect transfer, 0xFE/0xFF). Each reads
// the three-bit sub-opcode out of ModR/M's reg field via regField, the
// same call decodeModRM's callers use elsewhere, so no group needs its
// own ad hoc bit-twiddling.

func (p *CPU) binOp8(sub byte, a, b byte) byte {
	switch sub {
	case 0:
		return p.add8(a, b, false)
	case 1:
		return p.or8(a, b)
	case 2:
		return p.add8(a, b, p.CF)
	case 3:
		return p.sub8(a, b, p.CF)
	case 4:
		return p.and8(a, b)
	case 5:
		return p.sub8(a, b, false)
	case 6:
		return p.xor8(a, b)
	default: // 7: CMP, caller discards the result
		return p.sub8(a, b, false)
	}
}

func (p *CPU) binOp16(sub byte, a, b uint16) uint16 {
	switch sub {
	case 0:
		return p.add16(a, b, false)
	case 1:
		return p.or16(a, b)
	case 2:
		return p.add16(a, b, p.CF)
	case 3:
		return p.sub16(a, b, p.CF)
	case 4:
		return p.and16(a, b)
	case 5:
		return p.sub16(a, b, false)
	case 6:
		return p.xor16(a, b)
	default:
		return p.sub16(a, b, false)
	}
}

// opGrp1 implements 0x80 (Eb,ib), 0x81 (Ev,iv), 0x82 (Eb,ib, alias of
// 0x80) and 0x83 (Ev,ib sign-extended) — ADD/OR/ADC/SBB/AND/SUB/XOR/CMP
// against an immediate, selected by ModR/M's reg field.
func (p *CPU) opGrp1() {
	sub := p.regField()
	rm := p.decodeModRM()

	if p.isWide {
		var imm uint16
		if p.opcode == 0x83 {
			imm = signExtend8to16(p.fetchImm8())
		} else {
			imm = p.fetchImm16()
		}
		res := p.binOp16(sub, rm.readWord(p), imm)
		if sub != 7 {
			rm.writeWord(p, res)
		}
		return
	}

	imm := p.fetchImm8()
	res := p.binOp8(sub, rm.readByte(p), imm)
	if sub != 7 {
		rm.writeByte(p, res)
	}
}

// opTESTrm/opTESTimm implement 0x84/0x85 and 0xA8/0xA9: AND-class flag
// update without writing the result back.
func (p *CPU) opTESTrm() {
	dst, src := p.parseOperands()
	if p.isWide {
		p.and16(dst.readWord(p), src.readWord(p))
	} else {
		p.and8(dst.readByte(p), src.readByte(p))
	}
}

func (p *CPU) opTESTacc() {
	if p.isWide {
		p.and16(p.AX, p.fetchImm16())
	} else {
		p.and8(p.AL(), p.fetchImm8())
	}
}

// opGrp2 implements 0xD0-0xD3: shift/rotate by 1 or by CL.
func (p *CPU) opGrp2(useCL bool) func() {
	return func() {
		sub := p.regField()
		rm := p.decodeModRM()
		count := byte(1)
		if useCL {
			count = p.CL()
		}
		if p.isWide {
			rm.writeWord(p, p.shiftRotate16(sub, rm.readWord(p), count))
		} else {
			rm.writeByte(p, p.shiftRotate8(sub, rm.readByte(p), count))
		}
	}
}

// opGrp3 implements 0xF6/0xF7: TEST/NOT/NEG/MUL/IMUL/DIV/IDIV, selected
// by ModR/M's reg field (sub-opcode 1 is an undocumented alias of 0).
func (p *CPU) opGrp3() {
	sub := p.regField()
	rm := p.decodeModRM()

	if p.isWide {
		v := rm.readWord(p)
		switch sub {
		case 0, 1:
			p.and16(v, p.fetchImm16())
		case 2:
			rm.writeWord(p, ^v)
		case 3:
			rm.writeWord(p, p.neg16(v))
		case 4:
			hi, lo := p.mul16(p.AX, v)
			p.DX, p.AX = hi, lo
		case 5:
			hi, lo := p.imul16(int16(p.AX), int16(v))
			p.DX, p.AX = hi, lo
		case 6:
			q, r, ok := p.div16(uint32(p.DX)<<16|uint32(p.AX), v)
			if !ok {
				p.divideError()
				return
			}
			p.AX, p.DX = q, r
		default:
			q, r, ok := p.idiv16(int32(uint32(p.DX)<<16|uint32(p.AX)), int16(v))
			if !ok {
				p.divideError()
				return
			}
			p.AX, p.DX = q, r
		}
		return
	}

	v := rm.readByte(p)
	switch sub {
	case 0, 1:
		p.and8(v, p.fetchImm8())
	case 2:
		rm.writeByte(p, ^v)
	case 3:
		rm.writeByte(p, p.neg8(v))
	case 4:
		p.AX = p.mul8(p.AL(), v)
	case 5:
		p.AX = p.imul8(int8(p.AL()), int8(v))
	case 6:
		q, r, ok := p.div8(p.AX, v)
		if !ok {
			p.divideError()
			return
		}
		p.SetAL(q)
		p.SetAH(r)
	default:
		q, r, ok := p.idiv8(int16(p.AX), int8(v))
		if !ok {
			p.divideError()
			return
		}
		p.SetAL(q)
		p.SetAH(r)
	}
}

// opGrp4 implements 0xFE: INC/DEC r/m8.
func (p *CPU) opGrp4() {
	sub := p.regField()
	rm := p.decodeModRM()
	v := rm.readByte(p)
	if sub == 0 {
		rm.writeByte(p, p.inc8(v))
	} else {
		rm.writeByte(p, p.dec8(v))
	}
}

// opGrp5 implements 0xFF: INC/DEC/CALL/CALL far/JMP/JMP far/PUSH on an
// r/m16 operand, selected by ModR/M's reg field.
func (p *CPU) opGrp5() {
	sub := p.regField()
	rm := p.decodeModRM()
	switch sub {
	case 0:
		rm.writeWord(p, p.inc16(rm.readWord(p)))
	case 1:
		rm.writeWord(p, p.dec16(rm.readWord(p)))
	case 2:
		ret := p.IP
		p.IP = rm.readWord(p)
		p.push16(ret)
	case 3:
		p.opCALLrmFar(rm)
	case 4:
		p.IP = rm.readWord(p)
	case 5:
		p.opJMPrmFar(rm)
	default: // 6: PUSH r/m16 (sub-opcode 7 is unused, treated the same)
		p.push16(rm.readWord(p))
	}
}

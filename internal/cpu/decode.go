package cpu

import "github.com/tsandoval/minixt86/internal/memory"

// peekByte reads the byte at CS:IP without advancing IP.
func (p *CPU) peekByte() byte {
	return p.mem.ReadByte(memory.NewPointer(p.CS, p.IP))
}

// fetchByte reads the byte at CS:IP and advances IP.
func (p *CPU) fetchByte() byte {
	v := p.peekByte()
	p.IP++
	return v
}

// fetchWord reads a little-endian word at CS:IP and advances IP by 2.
func (p *CPU) fetchWord() uint16 {
	v := p.mem.ReadWord(memory.NewPointer(p.CS, p.IP))
	p.IP += 2
	return v
}

func (p *CPU) fetchImm8() byte    { return p.fetchByte() }
func (p *CPU) fetchImm16() uint16 { return p.fetchWord() }

// signExtend8to16 sign-extends an 8-bit immediate, used by opcodes
// whose operand is a byte but whose destination is a word (e.g. the
// 0x83 group, PUSH imm8).
func signExtend8to16(v byte) uint16 {
	if v&0x80 != 0 {
		return uint16(v) | 0xFF00
	}
	return uint16(v)
}

// parseOpcode consumes zero or more prefix bytes (segment override,
// repeat, lock) then the opcode byte itself. Prefixes attach to the
// single subsequent instruction and both ephemeral fields reset at the
// start of every top-level instruction.
func (p *CPU) parseOpcode() {
	p.segOverride = nil
	p.repeatMode = RepeatNone
	p.haveModRM = false
	p.decodeAt = p.IP

	var op byte
	for {
		op = p.fetchByte()
		switch op {
		case 0x26: // ES:
			p.segOverride = &p.ES
		case 0x2E: // CS:
			p.segOverride = &p.CS
		case 0x36: // SS:
			p.segOverride = &p.SS
		case 0x3E: // DS:
			p.segOverride = &p.DS
		case 0xF0: // LOCK, no observable effect here
		case 0xF2, 0xF3: // REPNE / REP-REPE
			p.repeatMode = RepeatMode(op)
		default:
			goto done
		}
	}
done:
	p.opcode = op
	p.isWide = op&1 != 0
	p.rmToReg = op&2 != 0
}

// effSeg resolves the default segment for a ModR/M memory reference,
// honouring an active segment-override prefix.
func (p *CPU) effSeg(def *uint16) uint16 {
	if p.segOverride != nil {
		return *p.segOverride
	}
	return *def
}

// operand is the decoded location of one instruction operand: either
// one of the eight general registers (isReg true) or a resolved
// physical address. Decoding a ModR/M byte produces exactly one of
// these, and read/write go through it — so a read-modify-write opcode
// that decodes once and uses the same operand for both halves never
// re-parses the displacement bytes, satisfying caching
// requirement by construction rather than by a separate cache field.
type operand struct {
	isReg bool
	reg   byte
	addr  memory.Pointer
}

func (o operand) readByte(p *CPU) byte {
	if o.isReg {
		return p.readReg8(o.reg)
	}
	return p.mem.ReadByte(o.addr)
}

func (o operand) writeByte(p *CPU, v byte) {
	if o.isReg {
		p.writeReg8(o.reg, v)
		return
	}
	p.mem.WriteByte(o.addr, v)
}

func (o operand) readWord(p *CPU) uint16 {
	if o.isReg {
		return *p.reg16(o.reg)
	}
	return p.mem.ReadWord(o.addr)
}

func (o operand) writeWord(p *CPU, v uint16) {
	if o.isReg {
		*p.reg16(o.reg) = v
		return
	}
	p.mem.WriteWord(o.addr, v)
}

// decodeModRM fetches the ModR/M byte (and any displacement) and
// resolves the r/m field to an operand, per the table in .
func (p *CPU) decodeModRM() operand {
	if !p.haveModRM {
		p.modRM = p.fetchByte()
		p.haveModRM = true
	}

	mod := p.modRM >> 6
	rm := p.modRM & 7

	if mod == 3 {
		return operand{isReg: true, reg: rm}
	}

	var base uint16
	var defSeg *uint16

	switch rm {
	case 0:
		base, defSeg = p.BX+p.SI, &p.DS
	case 1:
		base, defSeg = p.BX+p.DI, &p.DS
	case 2:
		base, defSeg = p.BP+p.SI, &p.SS
	case 3:
		base, defSeg = p.BP+p.DI, &p.SS
	case 4:
		base, defSeg = p.SI, &p.DS
	case 5:
		base, defSeg = p.DI, &p.DS
	case 6:
		if mod == 0 {
			base, defSeg = p.fetchWord(), &p.DS
		} else {
			base, defSeg = p.BP, &p.SS
		}
	case 7:
		base, defSeg = p.BX, &p.DS
	}

	switch mod {
	case 1:
		base += signExtend8to16(p.fetchByte())
	case 2:
		base += p.fetchWord()
	}

	seg := p.effSeg(defSeg)
	return operand{addr: memory.NewPointer(seg, base)}
}

// regField returns the ModR/M reg field (a register number or a group
// sub-opcode), fetching the ModR/M byte first if needed.
func (p *CPU) regField() byte {
	if !p.haveModRM {
		p.modRM = p.fetchByte()
		p.haveModRM = true
	}
	return (p.modRM >> 3) & 7
}

// parseOperands decodes reg and rm in the direction the opcode's d-bit
// (rmToReg) indicates, returning (destination, source).
func (p *CPU) parseOperands() (dst, src operand) {
	reg := operand{isReg: true, reg: p.regField()}
	rm := p.decodeModRM()
	if p.rmToReg {
		return reg, rm
	}
	return rm, reg
}

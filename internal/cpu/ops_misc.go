package cpu

// Flag-bit opcodes, HLT/NOP, I/O port instructions, per-register INC/
// DEC, the AAM/AAD immediate forms, and two "silently consume and move
// on" cases: an unassigned opcode byte, and the FPU escape range
// 0xD8-0xDF (no coprocessor is emulated, so its ModR/M and any
// displacement are simply fetched and discarded).

func (p *CPU) opCLC() { p.CF = false }
func (p *CPU) opSTC() { p.CF = true }
func (p *CPU) opCMC() { p.CF = !p.CF }
func (p *CPU) opCLD() { p.DF = false }
func (p *CPU) opSTD() { p.DF = true }
func (p *CPU) opCLI() { p.IF = false }
func (p *CPU) opSTI() { p.IF = true }

func (p *CPU) opHLT()  { p.Halt(HaltHLT) }
func (p *CPU) opNOP()  {}
func (p *CPU) opWAIT() {}

func (p *CPU) opAAM() { p.aam(p.fetchImm8()) }
func (p *CPU) opAAD() { p.aad(p.fetchImm8()) }

func (p *CPU) opINimm8()  { p.SetAL(p.InByte(uint16(p.fetchImm8()))) }
func (p *CPU) opINimm16() { p.AX = p.InWord(uint16(p.fetchImm8())) }
func (p *CPU) opINdx8()   { p.SetAL(p.InByte(p.DX)) }
func (p *CPU) opINdx16()  { p.AX = p.InWord(p.DX) }

func (p *CPU) opOUTimm8()  { p.OutByte(uint16(p.fetchImm8()), p.AL()) }
func (p *CPU) opOUTimm16() { p.OutWord(uint16(p.fetchImm8()), p.AX) }
func (p *CPU) opOUTdx8()   { p.OutByte(p.DX, p.AL()) }
func (p *CPU) opOUTdx16()  { p.OutWord(p.DX, p.AX) }

// invalidOpcode logs a trace entry and moves on without trapping. The
// decoder has already consumed the opcode byte itself; nothing else
// needs consuming for a plain unassigned byte.
func (p *CPU) invalidOpcode() {
	p.Logger.Printf("cpu: unimplemented opcode 0x%02X at %04X:%04X", p.opcode, p.CS, p.decodeAt)
}

// opFPUEscape consumes the ModR/M byte (and any displacement it
// encodes) for the 0xD8-0xDF coprocessor escape range, then falls
// through to invalidOpcode's trace without ever trapping.
func (p *CPU) opFPUEscape() {
	p.decodeModRM()
	p.invalidOpcode()
}

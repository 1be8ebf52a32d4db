package cpu

import "github.com/tsandoval/minixt86/internal/memory"

func (p *CPU) stackPtr() memory.Pointer { return memory.NewPointer(p.SS, p.SP) }

func (p *CPU) push16(v uint16) {
	p.SP -= 2
	p.mem.WriteWord(p.stackPtr(), v)
}

func (p *CPU) pop16() uint16 {
	v := p.mem.ReadWord(p.stackPtr())
	p.SP += 2
	return v
}

// raiseInterrupt implements the interrupt trampoline: push flags,
// clear IF and TF, push CS, push IP, then consult the handler table.
// A registered handler runs to completion inside this call; once it
// returns, the three pushed words are popped to rebalance the stack
// while leaving whatever IP/CS/flags the handler itself set (the
// key-wait retry in internal/bios relies on exactly this — it rewinds
// IP before returning, and that rewind must survive the rebalance).
// With no registered handler, CS:IP load from the in-memory interrupt
// vector table at vector*4.
func (p *CPU) raiseInterrupt(n int) {
	p.push16(p.Flags.Pack())
	p.TF, p.IF = false, false
	p.push16(p.CS)
	p.push16(p.IP)

	if handler := p.interrupts[n&0xFF]; handler != nil {
		handler(p)
		p.SP += 6
		return
	}

	vector := memory.NewPointer(0, uint16(n*4))
	ip := p.mem.ReadWord(vector)
	cs := p.mem.ReadWord(vector.Add(2))
	p.IP, p.CS = ip, cs
}

// divideError rewinds IP to the start of the faulting instruction (so
// the pushed return address points at the DIV/IDIV, as real hardware
// does) and raises interrupt 0.
func (p *CPU) divideError() {
	p.IP = p.decodeAt
	p.raiseInterrupt(0)
}

func (p *CPU) iret() {
	p.IP = p.pop16()
	p.CS = p.pop16()
	p.Flags.Unpack(p.pop16())
}

package bios

import "github.com/tsandoval/minixt86/internal/cpu"

// keyboardBuffer is a FIFO of 16-bit words, scan-code in the high
// byte, ASCII in the low byte, appended to by the host key pump and
// drained by INT 16h.
type keyboardBuffer struct {
	q []uint16
}

func (k *keyboardBuffer) push(v uint16) { k.q = append(k.q, v) }

func (k *keyboardBuffer) empty() bool { return len(k.q) == 0 }

func (k *keyboardBuffer) pop() uint16 {
	v := k.q[0]
	k.q = k.q[1:]
	return v
}

func (k *keyboardBuffer) peek() uint16 { return k.q[0] }

// blockingRead implements AH=0x00/0x10: on an empty buffer, rewind IP
// onto the CD 16 bytes and halt with reason key-wait; the host key
// pump resumes the interpreter once input arrives.
func blockingRead(s *Services, p *cpu.CPU) {
	if s.kbd.empty() {
		p.IP = p.InstructionStart()
		p.Halt(cpu.HaltKeyWait)
		return
	}
	v := s.kbd.pop()
	p.SetAH(byte(v >> 8))
	p.SetAL(byte(v))
}

// peekRead implements AH=0x01/0x11: a non-blocking check. ZF is clear
// when a key is available (and it is NOT removed from the buffer),
// set when the buffer is empty.
func peekRead(s *Services, p *cpu.CPU) {
	if s.kbd.empty() {
		p.ZF = true
		return
	}
	v := s.kbd.peek()
	p.SetAH(byte(v >> 8))
	p.SetAL(byte(v))
	p.ZF = false
}

func keyboardHandlers() map[byte]Handler {
	return map[byte]Handler{
		0x00: blockingRead,
		0x10: blockingRead,
		0x01: peekRead,
		0x11: peekRead,
		0x02: func(s *Services, p *cpu.CPU) { p.SetAL(0x00) }, // shift state, none latched
	}
}

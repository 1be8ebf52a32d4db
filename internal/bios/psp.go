package bios

import "github.com/tsandoval/minixt86/internal/memory"

// BuildPSP writes the 256-byte Program Segment Prefix at the base of
// pspSeg, at DOS's documented fixed offsets: the INT 20h pair at
// offset 0, the top-of-memory word at offset 2, the far-call INT 21h
// trampoline at offset 5, the standard-handle job file table at offset
// 0x18, the environment segment at offset 0x2C, and the command tail
// at offset 0x80.
func BuildPSP(mem *memory.Memory, pspSeg, topSeg, envSeg uint16, commandTail string) {
	base := memory.NewPointer(pspSeg, 0)

	mem.WriteByte(base.Add(0), 0xCD)
	mem.WriteByte(base.Add(1), 0x20)
	mem.WriteWord(base.Add(2), topSeg)

	mem.WriteByte(base.Add(5), 0xCD)
	mem.WriteByte(base.Add(6), 0x21)
	mem.WriteByte(base.Add(7), 0xCB)

	jft := base.Add(0x18)
	for i := 0; i < 20; i++ {
		mem.WriteByte(jft.Add(i), 0xFF)
	}
	for i := 0; i < 5; i++ {
		mem.WriteByte(jft.Add(i), byte(i))
	}

	mem.WriteWord(base.Add(0x2C), envSeg)

	if len(commandTail) > 126 {
		commandTail = commandTail[:126]
	}
	mem.WriteByte(base.Add(0x80), byte(len(commandTail)))
	mem.Load(base.Add(0x81), []byte(commandTail))
	mem.WriteByte(base.Add(0x81+len(commandTail)), 0x0D)
}

// BuildEnvironment writes the environment block at envSeg: the four
// COMSPEC/PATH/PROMPT/TEMP strings below, a terminating empty string,
// the 16-bit count of additional strings that follow (always 1 here),
// and the fully qualified program name.
func BuildEnvironment(mem *memory.Memory, envSeg uint16, programPath string) {
	base := memory.NewPointer(envSeg, 0)
	off := 0

	write := func(s string) {
		mem.Load(base.Add(off), append([]byte(s), 0))
		off += len(s) + 1
	}

	write(`COMSPEC=C:\COMMAND.COM`)
	write(`PATH=C:\`)
	write(`PROMPT=$P$G`)
	write(`TEMP=C:\`)

	mem.WriteByte(base.Add(off), 0) // empty string terminates the block
	off++

	mem.WriteWord(base.Add(off), 1)
	off += 2
	mem.Load(base.Add(off), append([]byte(programPath), 0))
}

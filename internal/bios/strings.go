package bios

import "github.com/tsandoval/minixt86/internal/memory"

// readASCIIZ reads a NUL-terminated string starting at seg:off, the
// encoding every DOS pathname argument uses.
func readASCIIZ(mem *memory.Memory, seg, off uint16) string {
	var b []byte
	p := memory.NewPointer(seg, off)
	for i := 0; i < 128; i++ {
		c := mem.ReadByte(p.Add(i))
		if c == 0 {
			break
		}
		b = append(b, c)
	}
	return string(b)
}

// readDollarString reads AH=0x09's '$'-terminated string.
func readDollarString(mem *memory.Memory, seg, off uint16) string {
	var b []byte
	p := memory.NewPointer(seg, off)
	for i := 0; i < 1<<16; i++ {
		c := mem.ReadByte(p.Add(i))
		if c == '$' {
			break
		}
		b = append(b, c)
	}
	return string(b)
}

func writeString(mem *memory.Memory, seg, off uint16, s string) {
	mem.Load(memory.NewPointer(seg, off), []byte(s))
}

// Package memory implements the flat, byte-addressable 1 MiB memory map
// shared by the interpreter and the BIOS/DOS service layer.
package memory

import "fmt"

// Size is the total addressable span of the machine: 2^20 bytes.
const Size = 1 << 20

// Pointer is a physical address, always held modulo Size.
type Pointer uint32

// NewPointer computes the physical address of a segment:offset pair.
func NewPointer(seg, offset uint16) Pointer {
	return Pointer(uint32(seg)<<4+uint32(offset)) & (Size - 1)
}

func (p Pointer) String() string {
	return fmt.Sprintf("0x%05X", uint32(p))
}

// Add returns p+n, wrapped to the 20-bit address space.
func (p Pointer) Add(n int) Pointer {
	return Pointer(int64(p)+int64(n)) & (Size - 1)
}

// Memory is the flat 1 MiB byte array.
type Memory struct {
	bytes [Size]byte
}

// New returns a zero-filled memory image.
func New() *Memory {
	return &Memory{}
}

// ReadByte reads a single byte, masking the address to 20 bits.
func (m *Memory) ReadByte(addr Pointer) byte {
	return m.bytes[addr&(Size-1)]
}

// WriteByte writes a single byte, masking the address to 20 bits.
func (m *Memory) WriteByte(addr Pointer, v byte) {
	m.bytes[addr&(Size-1)] = v
}

// ReadWord reads a little-endian 16-bit word at a possibly unaligned address.
func (m *Memory) ReadWord(addr Pointer) uint16 {
	lo := m.ReadByte(addr)
	hi := m.ReadByte(addr.Add(1))
	return uint16(lo) | uint16(hi)<<8
}

// WriteWord writes a little-endian 16-bit word at a possibly unaligned address.
func (m *Memory) WriteWord(addr Pointer, v uint16) {
	m.WriteByte(addr, byte(v))
	m.WriteByte(addr.Add(1), byte(v>>8))
}

// Load copies src into memory starting at addr, wrapping addresses as it goes.
func (m *Memory) Load(addr Pointer, src []byte) {
	for i, b := range src {
		m.WriteByte(addr.Add(i), b)
	}
}

// Read copies n bytes starting at addr out of memory.
func (m *Memory) Read(addr Pointer, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = m.ReadByte(addr.Add(i))
	}
	return out
}

// Fill sets n bytes starting at addr to v.
func (m *Memory) Fill(addr Pointer, n int, v byte) {
	for i := 0; i < n; i++ {
		m.WriteByte(addr.Add(i), v)
	}
}

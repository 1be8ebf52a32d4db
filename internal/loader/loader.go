// Package loader recognises and loads the two DOS image formats —
// plain COM images and MZ-format EXE images — building the PSP and
// environment block and leaving the interpreter positioned at the
// program's entry point.
package loader

import (
	"github.com/tsandoval/minixt86/internal/bios"
	"github.com/tsandoval/minixt86/internal/cpu"
	"github.com/tsandoval/minixt86/internal/memory"
)

// Fixed segments for the single program this emulator ever runs at
// once: the environment block sits in the low-memory gap just above
// the BIOS data area, the PSP and COM image share one segment, and the
// EXE load segment follows immediately after the PSP's 16 paragraphs.
// Everything above bios.MemoryBumpBase is left for AH=0x48 allocations.
const (
	envSegment = 0x0050
	pspSegment = 0x0070
	comLoadOff = 0x0100

	initialSP = 0xFFFE
)

// mzSignature is the two-byte magic that distinguishes an MZ-format EXE
// from a raw COM image.
var mzSignature = [2]byte{'M', 'Z'}

// Load recognises data's format, copies it into mem, builds the PSP and
// environment block through svc, and sets p's CS:IP/SS:SP so the next
// Step begins the program. commandTail is the raw command-line text
// that follows the program name, stored verbatim in the PSP.
func Load(p *cpu.CPU, svc *bios.Services, data []byte, commandTail, programPath string) {
	mem := svc.Memory()

	bios.BuildEnvironment(mem, envSegment, programPath)

	if len(data) >= 2 && data[0] == mzSignature[0] && data[1] == mzSignature[1] {
		loadMZ(p, mem, data)
	} else {
		loadCOM(p, mem, data)
	}

	bios.BuildPSP(mem, pspSegment, bios.MemoryBumpBase, envSegment, commandTail)
	svc.SetPSPSegment(pspSegment)
}

// loadCOM implements COM rule: the image lands at offset
// 0x100 of the PSP's own segment, every segment register points at
// that segment, and SP starts at 0xFFFE with a near-return address of
// 0x0000 already pushed — a COM program that RETs instead of calling
// INT 20h/21h AH=0x4C falls through to the INT 20h pair at the base of
// its own PSP, since CS still equals the PSP segment.
func loadCOM(p *cpu.CPU, mem *memory.Memory, data []byte) {
	mem.Load(memory.NewPointer(pspSegment, comLoadOff), data)

	p.CS, p.DS, p.ES, p.SS = pspSegment, pspSegment, pspSegment, pspSegment
	p.IP = comLoadOff

	sp := uint16(initialSP)
	sp -= 2
	mem.WriteWord(memory.NewPointer(pspSegment, sp), 0x0000)
	p.SP = sp
}

// loadMZ implements EXE rule: parse the 28-byte header,
// copy the image body to the load segment, patch every relocation
// entry by adding the load segment to the word it targets, and enter
// at the header's CS:IP relative to that same load segment.
func loadMZ(p *cpu.CPU, mem *memory.Memory, data []byte) {
	h := parseMZHeader(data)
	loadSegment := uint16(pspSegment + 0x10)

	body := data[h.headerSizeBytes():]
	mem.Load(memory.NewPointer(loadSegment, 0), body)

	for i := 0; i < h.relocCount; i++ {
		entry := data[h.relocTableOffset+4*i:]
		off := le16(entry[0:2])
		seg := le16(entry[2:4])

		addr := memory.NewPointer(loadSegment+seg, off)
		mem.WriteWord(addr, mem.ReadWord(addr)+loadSegment)
	}

	p.CS, p.IP = h.initCS+loadSegment, h.initIP
	p.SS, p.SP = h.initSS+loadSegment, h.initSP
	p.DS, p.ES = pspSegment, pspSegment
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }

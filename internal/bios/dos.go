package bios

import (
	"strings"

	"github.com/tsandoval/minixt86/internal/cpu"
	"github.com/tsandoval/minixt86/internal/memory"
	"github.com/tsandoval/minixt86/version"
)

// charInput services AH=0x01/0x07/0x08: a blocking single-character
// read from the keyboard FIFO. 0x01 echoes via the teletype; 0x07/0x08
// read "raw", without echo or the Ctrl-C check this layer never models.
func charInput(echo bool) Handler {
	return func(s *Services, p *cpu.CPU) {
		if s.kbd.empty() {
			p.IP = p.InstructionStart()
			p.Halt(cpu.HaltKeyWait)
			return
		}
		v := s.kbd.pop()
		ch := byte(v)
		p.SetAL(ch)
		if echo {
			s.video.teletype(ch)
		}
	}
}

// charOutput implements AH=0x02: write DL to the screen via the BIOS
// teletype, the same control-character handling INT 10h AH=0x0E gives.
func charOutput(s *Services, p *cpu.CPU) { s.video.teletype(p.DL()) }

// directIO implements AH=0x06: DL=0xFF polls for input without
// blocking (ZF set on none available); any other DL value is output.
func directIO(s *Services, p *cpu.CPU) {
	if p.DL() != 0xFF {
		s.video.teletype(p.DL())
		return
	}
	if s.kbd.empty() {
		p.ZF = true
		return
	}
	p.SetAL(byte(s.kbd.pop()))
	p.ZF = false
}

// printString implements AH=0x09: print the '$'-terminated string at
// DS:DX.
func printString(s *Services, p *cpu.CPU) {
	for _, ch := range []byte(readDollarString(s.mem, p.DS, p.DX)) {
		s.video.teletype(ch)
	}
}

// bufferedInput implements AH=0x0A: DS:DX points at a buffer whose
// first byte is the caller-supplied maximum length; this fills it from
// the keyboard FIFO up to a CR, and records the actual count in the
// second byte, per the classic DOS buffered-input contract.
func bufferedInput(s *Services, p *cpu.CPU) {
	buf := memory.NewPointer(p.DS, p.DX)
	max := int(s.mem.ReadByte(buf))
	n := 0
	for n < max {
		if s.kbd.empty() {
			break
		}
		ch := byte(s.kbd.pop())
		s.video.teletype(ch)
		if ch == '\r' {
			break
		}
		s.mem.WriteByte(buf.Add(2+n), ch)
		n++
	}
	s.mem.WriteByte(buf.Add(1), byte(n))
}

func getDate(s *Services, p *cpu.CPU) {
	now := s.now()
	p.CX = uint16(now.Year())
	p.SetDH(byte(now.Month()))
	p.SetDL(byte(now.Day()))
	p.SetAL(byte(now.Weekday()))
}

func getTime(s *Services, p *cpu.CPU) {
	now := s.now()
	p.SetCH(byte(now.Hour()))
	p.SetCL(byte(now.Minute()))
	p.SetDH(byte(now.Second()))
	p.SetDL(byte(now.Nanosecond() / 10_000_000))
}

// getVersion implements AH=0x30: report version.Current, the version
// the loader and shell both target.
func getVersion(s *Services, p *cpu.CPU) {
	p.SetAL(version.Current.Major)
	p.SetAH(version.Current.Minor)
	p.BX, p.CX = 0, 0
}

// setVector/getVector implement AH=0x25/0x35 against the real in-
// memory interrupt vector table at vector*4 — the handlers this layer
// itself installs for the BIOS/DOS vectors take priority over it inside
// raiseInterrupt, but a guest hooking a vector this layer doesn't
// synthesise (the timer tick, Ctrl-Break, critical-error) still works.
func setVector(s *Services, p *cpu.CPU) {
	addr := memory.NewPointer(0, uint16(p.AL())*4)
	s.mem.WriteWord(addr, p.DX)
	s.mem.WriteWord(addr.Add(2), p.DS)
}

func getVector(s *Services, p *cpu.CPU) {
	addr := memory.NewPointer(0, uint16(p.AL())*4)
	p.BX = s.mem.ReadWord(addr)
	p.ES = s.mem.ReadWord(addr.Add(2))
}

// terminate implements AH=0x4C: halt with the program-exit reason,
// recording AL as the exit code the session orchestrator reports.
func terminate(s *Services, p *cpu.CPU) {
	s.exitCode = p.AL()
	p.Halt(cpu.HaltProgramExit)
}

// execNotSupported implements AH=0x4B: this emulator loads and runs
// exactly one program per session, so EXEC always fails as
// if the child image could not be found.
func execNotSupported(s *Services, p *cpu.CPU) { fail(p, dosErrFileNotFound) }

func rename(s *Services, p *cpu.CPU) {
	oldDir, oldName := s.splitPath(readASCIIZ(s.mem, p.DS, p.DX))
	newDir, newName := s.splitPath(readASCIIZ(s.mem, p.ES, p.DI))
	if !pathsEqual(oldDir, newDir) {
		fail(p, dosErrPathNotFound)
		return
	}
	if err := s.fs.RenameEntry(oldDir, oldName, newName); err != nil {
		fail(p, dosPathError(err))
		return
	}
	p.CF = false
}

func pathsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}

// fileDateTime implements AH=0x57: AL=0x00 reports the current host
// date/time, not the directory entry's stored last-write fields;
// AL=0x01 would set it. This layer stamps every write at close time
// from the host clock, so "set" is accepted and ignored — the next
// close overwrites whatever was requested anyway.
func fileDateTime(s *Services, p *cpu.CPU) {
	if _, ok := s.openFiles[byte(p.BX)]; !ok {
		fail(p, dosErrInvalidHandle)
		return
	}
	if p.AL() == 0x01 {
		p.CF = false
		return
	}
	now := s.now()
	p.CX = uint16(now.Hour())<<11 | uint16(now.Minute())<<5 | uint16(now.Second()/2)
	p.DX = uint16(now.Year()-1980)<<9 | uint16(now.Month())<<5 | uint16(now.Day())
	p.CF = false
}

func dosHandlers() map[byte]Handler {
	return map[byte]Handler{
		0x01: charInput(true),
		0x02: charOutput,
		0x06: directIO,
		0x07: charInput(false),
		0x08: charInput(false),
		0x09: printString,
		0x0A: bufferedInput,
		0x1A: dosSetDTA,
		0x25: setVector,
		0x2A: getDate,
		0x2C: getTime,
		0x30: getVersion,
		0x35: getVector,
		0x3B: dosChdir,
		0x3C: dosCreate,
		0x3D: dosOpen,
		0x3E: dosClose,
		0x3F: dosRead,
		0x40: dosWrite,
		0x41: dosDelete,
		0x42: dosSeek,
		0x43: dosAttributes,
		0x44: dosIOCTL,
		0x47: dosGetCwd,
		0x48: allocParagraphs,
		0x49: freeParagraphs,
		0x4A: resizeParagraphs,
		0x4B: execNotSupported,
		0x4C: terminate,
		0x4E: dosFindFirst,
		0x4F: dosFindNext,
		0x56: rename,
		0x57: fileDateTime,
	}
}

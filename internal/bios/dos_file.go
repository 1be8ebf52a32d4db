package bios

import (
	"path/filepath"
	"strings"

	"github.com/tsandoval/minixt86/internal/cpu"
	"github.com/tsandoval/minixt86/internal/fat12"
	"github.com/tsandoval/minixt86/internal/memory"
)

// openFile is the whole-file-buffered handle a DOS program sees through
// AH=0x3D..0x42: the entire contents live as a growable byte buffer,
// flushed to the FAT12 engine in one WriteFile call on close. Partial
// writes and seeks only ever touch this in-memory copy.
type openFile struct {
	dir      []string
	name     string
	data     []byte
	pos      int64
	mode     byte
	modified bool
}

// splitPath resolves an ASCIIZ DOS pathname against s.cwd: a leading
// backslash makes it absolute, otherwise it is joined onto the current
// directory; ".." pops one component the way CD's own walk does.
func (s *Services) splitPath(raw string) (dir []string, name string) {
	comps := fat12.Normalize(raw)
	if !strings.HasPrefix(raw, `\`) {
		comps = append(append([]string{}, s.cwd...), comps...)
	}

	var resolved []string
	for _, c := range comps {
		switch c {
		case ".":
		case "..":
			if len(resolved) > 0 {
				resolved = resolved[:len(resolved)-1]
			}
		default:
			resolved = append(resolved, c)
		}
	}
	if len(resolved) == 0 {
		return nil, ""
	}
	return resolved[:len(resolved)-1], resolved[len(resolved)-1]
}

func (s *Services) allocHandle() byte {
	h := s.nextHandle
	s.nextHandle++
	return h
}

// dosCreate implements AH=0x3C: truncate-or-create, writing an empty
// entry immediately so the name is visible to DIR before the handle is
// closed.
func dosCreate(s *Services, p *cpu.CPU) {
	dir, name := s.splitPath(readASCIIZ(s.mem, p.DS, p.DX))
	if name == "" {
		fail(p, dosErrPathNotFound)
		return
	}
	if err := s.fs.WriteFile(dir, name, nil); err != nil {
		fail(p, dosPathError(err))
		return
	}
	h := s.allocHandle()
	s.openFiles[h] = &openFile{dir: dir, name: name}
	p.AX = uint16(h)
	p.CF = false
}

// dosOpen implements AH=0x3D: AL selects read(0)/write(1)/read-write(2).
func dosOpen(s *Services, p *cpu.CPU) {
	dir, name := s.splitPath(readASCIIZ(s.mem, p.DS, p.DX))
	if _, err := s.fs.ListDir(dir); err != nil {
		fail(p, dosPathError(err))
		return
	}
	data, err := s.fs.ReadFile(dir, name)
	if err != nil {
		fail(p, dosFileError(err))
		return
	}
	h := s.allocHandle()
	s.openFiles[h] = &openFile{dir: dir, name: name, data: data, mode: p.AL()}
	p.AX = uint16(h)
	p.CF = false
}

func dosClose(s *Services, p *cpu.CPU) {
	h := byte(p.BX)
	f, ok := s.openFiles[h]
	if !ok {
		fail(p, dosErrInvalidHandle)
		return
	}
	if f.modified {
		if err := s.fs.WriteFile(f.dir, f.name, f.data); err != nil {
			fail(p, dosFileError(err))
			return
		}
	}
	delete(s.openFiles, h)
	p.CF = false
}

// dosRead implements AH=0x3F. Handle 0 reads from the keyboard FIFO one
// key at a time, echoing each to the screen, since this emulator has no
// separate console input device from the BIOS keyboard buffer.
func dosRead(s *Services, p *cpu.CPU) {
	h := byte(p.BX)
	count := int(p.CX)
	dst := memory.NewPointer(p.DS, p.DX)

	if h == 0 {
		n := 0
		for n < count && !s.kbd.empty() {
			v := s.kbd.pop()
			ch := byte(v)
			s.mem.WriteByte(dst.Add(n), ch)
			s.video.teletype(ch)
			n++
		}
		p.AX = uint16(n)
		p.CF = false
		return
	}

	f, ok := s.openFiles[h]
	if !ok {
		fail(p, dosErrInvalidHandle)
		return
	}
	avail := int64(len(f.data)) - f.pos
	if avail < 0 {
		avail = 0
	}
	n := count
	if int64(n) > avail {
		n = int(avail)
	}
	if n > 0 {
		s.mem.Load(dst, f.data[f.pos:f.pos+int64(n)])
		f.pos += int64(n)
	}
	p.AX = uint16(n)
	p.CF = false
}

// dosWrite implements AH=0x40. Handles 1 and 2 go straight to the
// teletype rather than any buffered file, matching real DOS's
// console-as-file-handle convention.
func dosWrite(s *Services, p *cpu.CPU) {
	h := byte(p.BX)
	count := int(p.CX)
	src := s.mem.Read(memory.NewPointer(p.DS, p.DX), count)

	if h == 1 || h == 2 {
		for _, b := range src {
			s.video.teletype(b)
		}
		p.AX = uint16(count)
		p.CF = false
		return
	}

	f, ok := s.openFiles[h]
	if !ok {
		fail(p, dosErrInvalidHandle)
		return
	}
	end := f.pos + int64(count)
	if end > int64(len(f.data)) {
		grown := make([]byte, end)
		copy(grown, f.data)
		f.data = grown
	}
	copy(f.data[f.pos:end], src)
	f.pos = end
	f.modified = true
	p.AX = uint16(count)
	p.CF = false
}

func dosDelete(s *Services, p *cpu.CPU) {
	dir, name := s.splitPath(readASCIIZ(s.mem, p.DS, p.DX))
	found, err := s.fs.DeleteEntry(dir, name)
	if err != nil {
		fail(p, dosPathError(err))
		return
	}
	if !found {
		fail(p, dosErrFileNotFound)
		return
	}
	p.CF = false
}

// dosSeek implements AH=0x42: AL selects from-start(0)/from-current(1)/
// from-end(2); CX:DX carries the signed 32-bit offset. The new position
// is returned in DX:AX.
func dosSeek(s *Services, p *cpu.CPU) {
	f, ok := s.openFiles[byte(p.BX)]
	if !ok {
		fail(p, dosErrInvalidHandle)
		return
	}
	offset := int64(int32(uint32(p.CX)<<16 | uint32(p.DX)))
	switch p.AL() {
	case 0:
		f.pos = offset
	case 1:
		f.pos += offset
	case 2:
		f.pos = int64(len(f.data)) + offset
	}
	if f.pos < 0 {
		f.pos = 0
	}
	p.DX, p.AX = uint16(uint32(f.pos)>>16), uint16(uint32(f.pos))
	p.CF = false
}

// dosAttributes implements AH=0x43. Only AL=0 (get) is modelled with
// any fidelity; AL=1 (set) is accepted and ignored, since nothing in
// this layer consults the FAT12 archive/read-only bits once set.
func dosAttributes(s *Services, p *cpu.CPU) {
	dir, name := s.splitPath(readASCIIZ(s.mem, p.DS, p.DX))
	entries, err := s.fs.ListDir(dir)
	if err != nil {
		fail(p, dosPathError(err))
		return
	}
	for _, e := range entries {
		if strings.EqualFold(e.DisplayName(), name) {
			if p.AL() == 0 {
				p.CX = uint16(e.Attr)
			}
			p.CF = false
			return
		}
	}
	fail(p, dosErrFileNotFound)
}

// dosIOCTL implements the handful of AH=0x44 subfunctions a minimal DOS
// personality needs: AL=0x00 reports whether BX names a character
// device (every standard handle is one; file handles are not).
func dosIOCTL(s *Services, p *cpu.CPU) {
	switch p.AL() {
	case 0x00:
		h := byte(p.BX)
		if h < 5 {
			p.DX = 0x80D3 // character device, supports output until ^Z
		} else {
			p.DX = 0x0000
		}
		p.CF = false
	default:
		fail(p, dosErrInvalidHandle)
	}
}

func dosChdir(s *Services, p *cpu.CPU) {
	raw := readASCIIZ(s.mem, p.DS, p.DX)
	dir, name := s.splitPath(raw)
	target := dir
	if name != "" {
		target = append(append([]string{}, dir...), name)
	}
	if len(target) > 0 {
		if _, err := s.fs.ListDir(target); err != nil {
			fail(p, dosPathError(err))
			return
		}
	}
	s.cwd = target
	p.CF = false
}

func dosGetCwd(s *Services, p *cpu.CPU) {
	path := strings.Join(s.cwd, `\`)
	writeString(s.mem, p.DS, p.SI, path+"\x00")
	p.CF = false
}

// dosFindFirst/dosFindNext implement AH=0x4E/0x4F against the find
// block installed by AH=0x1A, matching on the shell-style wildcard in
// the final path component with path/filepath.Match: "?" matches
// exactly one character and "*" any run, so DOS's own 8.3 field rules
// are not reproduced (for instance "*.*" does not match a name that
// has no extension).
func dosFindFirst(s *Services, p *cpu.CPU) {
	raw := readASCIIZ(s.mem, p.DS, p.DX)
	dir, pattern := s.splitPath(raw)
	entries, err := s.fs.ListDir(dir)
	if err != nil {
		fail(p, dosPathError(err))
		return
	}

	s.findMatches = nil
	for _, e := range entries {
		if ok, _ := filepath.Match(strings.ToUpper(pattern), strings.ToUpper(e.DisplayName())); ok {
			s.findMatches = append(s.findMatches, e)
		}
	}
	s.findIndex = 0
	advanceFind(s, p)
}

func dosFindNext(s *Services, p *cpu.CPU) {
	advanceFind(s, p)
}

func advanceFind(s *Services, p *cpu.CPU) {
	if s.findIndex >= len(s.findMatches) {
		fail(p, dosErrNoMoreFiles)
		return
	}
	e := s.findMatches[s.findIndex]
	s.findIndex++
	writeFindResult(s.mem, s.dta, e)
	p.CF = false
}

// writeFindResult packs one entry into the classic 43-byte find block
// at attribute(0x15)/time(0x16)/date(0x18)/size(0x1A)/name(0x1E).
func writeFindResult(mem *memory.Memory, dta memory.Pointer, e fat12.DirEntry) {
	mem.WriteByte(dta.Add(0x15), e.Attr)
	mem.WriteWord(dta.Add(0x16), e.WriteTime)
	mem.WriteWord(dta.Add(0x18), e.WriteDate)
	mem.WriteWord(dta.Add(0x1A), uint16(e.FileSize))
	mem.WriteWord(dta.Add(0x1C), uint16(e.FileSize>>16))
	mem.Load(dta.Add(0x1E), append([]byte(e.DisplayName()), 0))
}

func dosSetDTA(s *Services, p *cpu.CPU) {
	s.dta = memory.NewPointer(p.DS, p.DX)
}

// allocParagraphs implements AH=0x48: bump-allocate BX 16-byte
// paragraphs from the next free segment above the highest allocation
// (or at MemoryBumpBase when nothing has been allocated yet); a flat
// "no real MCB chain" memory model.

// MemoryBumpBase is the free-bump floor of that model: every AH=0x48
// allocation grows upward from here.
const MemoryBumpBase = 0x1000

func allocParagraphs(s *Services, p *cpu.CPU) {
	base := uint16(MemoryBumpBase)
	for _, a := range s.allocs {
		end := a.segment + a.paragraphs
		if end > base {
			base = end
		}
	}
	want := p.BX
	const topOfConventional = 0xA000 // leaves room below the 640 KiB video/BIOS area
	if uint32(base)+uint32(want) > topOfConventional {
		fail(p, dosErrInsufficientMem)
		p.BX = topOfConventional - base
		return
	}
	s.allocs = append(s.allocs, allocation{segment: base, paragraphs: want, owner: s.pspSegment})
	p.AX = base
	p.CF = false
}

func freeParagraphs(s *Services, p *cpu.CPU) {
	seg := p.ES
	for i, a := range s.allocs {
		if a.segment == seg {
			s.allocs = append(s.allocs[:i], s.allocs[i+1:]...)
			p.CF = false
			return
		}
	}
	fail(p, dosErrInvalidHandle)
}

func resizeParagraphs(s *Services, p *cpu.CPU) {
	seg := p.ES
	for i := range s.allocs {
		if s.allocs[i].segment == seg {
			s.allocs[i].paragraphs = p.BX
			p.CF = false
			return
		}
	}
	fail(p, dosErrInvalidHandle)
}

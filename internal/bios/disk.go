package bios

import (
	"github.com/tsandoval/minixt86/internal/cpu"
	"github.com/tsandoval/minixt86/internal/fat12"
	"github.com/tsandoval/minixt86/internal/memory"
)

// chsToLBA converts a cylinder/head/sector triple to a linear block
// address: LBA = (cyl*heads + head) * sectorsPerTrack + (sector-1).
func chsToLBA(cyl, head, sector int) int {
	return (cyl*fat12.Heads+head)*fat12.SectorsPerTrack + (sector - 1)
}

func diskReset(s *Services, p *cpu.CPU) {
	p.CF = false
	p.SetAH(0x00)
}

// diskReadSectors implements AH=0x02: read AL contiguous sectors by
// CHS into ES:BX, deposited exactly as the real BIOS would lay them
// out (512-byte sectors back to back).
func diskReadSectors(s *Services, p *cpu.CPU) {
	count := int(p.AL())
	cyl := int(p.CH())
	sector := int(p.CL() & 0x3F)
	head := int(p.DH())

	lba := chsToLBA(cyl, head, sector)
	if lba < 0 || lba+count > fat12.TotalSectorCount() {
		p.CF = true
		p.SetAH(0x04) // sector not found
		return
	}

	dst := memory.NewPointer(p.ES, p.BX)
	for i := 0; i < count; i++ {
		sec := s.fs.ReadSector(lba + i)
		s.mem.Load(dst.Add(i*fat12.BytesPerSector), sec[:])
	}
	p.CF = false
	p.SetAL(byte(count))
	p.SetAH(0x00)
}

func diskDriveParameters(s *Services, p *cpu.CPU) {
	maxCyl := fat12.TotalSectorCount()/(fat12.Heads*fat12.SectorsPerTrack) - 1
	p.SetCH(byte(maxCyl & 0xFF))
	p.SetCL(byte(fat12.SectorsPerTrack) | byte((maxCyl>>8)&0x03)<<6)
	p.SetDH(byte(fat12.Heads - 1))
	p.SetDL(1) // one diskette drive
	p.ES, p.DI = 0, 0
	p.CF = false
	p.SetAH(0x00)
}

func diskType(s *Services, p *cpu.CPU) {
	p.SetAH(0x01) // diskette present, no change-line support
	p.CF = false
}

func diskHandlers() map[byte]Handler {
	return map[byte]Handler{
		0x00: diskReset,
		0x02: diskReadSectors,
		0x08: diskDriveParameters,
		0x15: diskType,
	}
}

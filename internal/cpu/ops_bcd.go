package cpu

// BCD adjust instructions, standard definitions.

func (p *CPU) daa() {
	al := p.AL()
	oldAL, oldCF := al, p.CF
	p.CF = false

	if al&0x0F > 9 || p.AF {
		carry := al > 0xF9
		al += 6
		p.AF = true
		p.CF = oldCF || carry
	} else {
		p.AF = false
	}

	if oldAL > 0x99 || oldCF {
		al += 0x60
		p.CF = true
	}

	p.SetAL(al)
	p.updateSZP8(al)
}

func (p *CPU) das() {
	al := p.AL()
	oldAL, oldCF := al, p.CF
	p.CF = false

	if al&0x0F > 9 || p.AF {
		carry := al < 6
		al -= 6
		p.AF = true
		p.CF = oldCF || carry
	} else {
		p.AF = false
	}

	if oldAL > 0x99 || oldCF {
		al -= 0x60
		p.CF = true
	}

	p.SetAL(al)
	p.updateSZP8(al)
}

func (p *CPU) aaa() {
	al := p.AL()
	if al&0x0F > 9 || p.AF {
		p.AX += 0x106
		p.AF, p.CF = true, true
	} else {
		p.AF, p.CF = false, false
	}
	p.SetAL(p.AL() & 0x0F)
}

func (p *CPU) aas() {
	al := p.AL()
	if al&0x0F > 9 || p.AF {
		p.AX -= 6
		p.SetAH(p.AH() - 1)
		p.AF, p.CF = true, true
	} else {
		p.AF, p.CF = false, false
	}
	p.SetAL(p.AL() & 0x0F)
}

func (p *CPU) aam(base byte) {
	if base == 0 {
		base = 10
	}
	al := p.AL()
	p.SetAH(al / base)
	p.SetAL(al % base)
	p.updateSZP8(p.AL())
}

func (p *CPU) aad(base byte) {
	if base == 0 {
		base = 10
	}
	al, ah := p.AL(), p.AH()
	p.SetAL(ah*base + al)
	p.SetAH(0)
	p.updateSZP8(p.AL())
}

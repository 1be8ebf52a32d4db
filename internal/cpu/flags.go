package cpu

// Flags holds the nine observable status bits of the FLAGS register.
// Bit 1 is reserved and always reads as 1 — Pack below sets it
// unconditionally and Unpack ignores it on the way in.
type Flags struct {
	CF, PF, AF, ZF, SF, TF, IF, DF, OF bool
}

const (
	flagCF = 1 << 0
	flagR1 = 1 << 1 // reserved, always 1
	flagPF = 1 << 2
	flagAF = 1 << 4
	flagZF = 1 << 6
	flagSF = 1 << 7
	flagTF = 1 << 8
	flagIF = 1 << 9
	flagDF = 1 << 10
	flagOF = 1 << 11
)

func boolBit(b bool, mask uint16) uint16 {
	if b {
		return mask
	}
	return 0
}

// Pack encodes the flags word, forcing the reserved bit .
func (f Flags) Pack() uint16 {
	return flagR1 |
		boolBit(f.CF, flagCF) |
		boolBit(f.PF, flagPF) |
		boolBit(f.AF, flagAF) |
		boolBit(f.ZF, flagZF) |
		boolBit(f.SF, flagSF) |
		boolBit(f.TF, flagTF) |
		boolBit(f.IF, flagIF) |
		boolBit(f.DF, flagDF) |
		boolBit(f.OF, flagOF)
}

// Unpack decodes a flags word, normalising reserved bits the way IRET
// must.
func (f *Flags) Unpack(v uint16) {
	f.CF = v&flagCF != 0
	f.PF = v&flagPF != 0
	f.AF = v&flagAF != 0
	f.ZF = v&flagZF != 0
	f.SF = v&flagSF != 0
	f.TF = v&flagTF != 0
	f.IF = v&flagIF != 0
	f.DF = v&flagDF != 0
	f.OF = v&flagOF != 0
}

var parityTable [256]bool

func init() {
	for i := range parityTable {
		bits := 0
		for v := i; v != 0; v >>= 1 {
			bits += v & 1
		}
		parityTable[i] = bits%2 == 0
	}
}

func parity8(v byte) bool { return parityTable[v] }

// updateSZP8 sets SF/ZF/PF from an 8-bit result, the rule shared by
// arithmetic and logical operations.
func (f *Flags) updateSZP8(res byte) {
	f.SF = res&0x80 != 0
	f.ZF = res == 0
	f.PF = parity8(res)
}

func (f *Flags) updateSZP16(res uint16) {
	f.SF = res&0x8000 != 0
	f.ZF = res == 0
	f.PF = parity8(byte(res))
}

// clearLogical implements "logical operations clear CF and OF, set
// SF/ZF/PF from the result, and leave AF undefined". AF is
// left as whatever it already was, which is the natural "undefined"
// choice in a typed field.
func (f *Flags) clearLogical8(res byte) {
	f.updateSZP8(res)
	f.CF, f.OF = false, false
}

func (f *Flags) clearLogical16(res uint16) {
	f.updateSZP16(res)
	f.CF, f.OF = false, false
}

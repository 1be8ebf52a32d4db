package loader

// mzHeader holds the handful of fields this loader needs from the
// 28-byte MZ header: relocation count/table, header size, and the
// initial SS:SP/CS:IP pair, all relative to the eventual load segment.
type mzHeader struct {
	relocCount       int
	relocTableOffset int
	headerParagraphs int

	initSP, initSS uint16
	initIP, initCS uint16
}

func (h mzHeader) headerSizeBytes() int { return h.headerParagraphs * 16 }

func parseMZHeader(data []byte) mzHeader {
	return mzHeader{
		relocCount:       int(le16(data[6:8])),
		headerParagraphs: int(le16(data[8:10])),
		initSP:           le16(data[16:18]),
		initSS:           le16(data[14:16]),
		initIP:           le16(data[20:22]),
		initCS:           le16(data[22:24]),
		relocTableOffset: int(le16(data[24:26])),
	}
}

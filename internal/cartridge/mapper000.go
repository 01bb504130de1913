package cartridge

// mapper000 implements NROM: fixed PRG mapping with 16 KiB images
// mirrored across the 32 KiB window, 8 KiB of PRG RAM at $6000-$7FFF,
// and unbanked CHR.
type mapper000 struct {
	prg    []uint8
	chr    []uint8
	prgRAM [0x2000]uint8

	chrWritable bool
	mirror      MirrorMode
}

func newMapper000(prg, chr []uint8, chrWritable bool, mirror MirrorMode) *mapper000 {
	return &mapper000{
		prg:         prg,
		chr:         chr,
		chrWritable: chrWritable,
		mirror:      mirror,
	}
}

func (m *mapper000) ReadPRG(address uint16) uint8 {
	switch {
	case address >= 0x8000:
		offset := int(address - 0x8000)
		if len(m.prg) == prgBankSize {
			offset %= prgBankSize
		}
		return m.prg[offset]
	case address >= 0x6000:
		return m.prgRAM[address-0x6000]
	default:
		return 0
	}
}

func (m *mapper000) WritePRG(address uint16, value uint8) {
	// ROM absorbs writes; only the RAM window is writable.
	if address >= 0x6000 && address < 0x8000 {
		m.prgRAM[address-0x6000] = value
	}
}

func (m *mapper000) ReadCHR(address uint16) uint8 {
	return m.chr[int(address)%len(m.chr)]
}

func (m *mapper000) WriteCHR(address uint16, value uint8) {
	if m.chrWritable {
		m.chr[int(address)%len(m.chr)] = value
	}
}

func (m *mapper000) Mirror() MirrorMode { return m.mirror }

func (m *mapper000) TickScanline() {}

func (m *mapper000) PendingIRQ() bool { return false }

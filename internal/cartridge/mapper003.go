package cartridge

// mapper003 implements CNROM: fixed PRG like NROM plus an 8 KiB CHR bank
// selected by the low two bits of any write into $8000-$FFFF. Larger
// boards decode more bits but CNROM itself latches only two.
type mapper003 struct {
	prg []uint8
	chr []uint8

	chrBank int
	mirror  MirrorMode
}

func newMapper003(prg, chr []uint8, mirror MirrorMode) *mapper003 {
	return &mapper003{
		prg:    prg,
		chr:    chr,
		mirror: mirror,
	}
}

func (m *mapper003) ReadPRG(address uint16) uint8 {
	if address < 0x8000 {
		return 0
	}
	offset := int(address - 0x8000)
	if len(m.prg) == prgBankSize {
		offset %= prgBankSize
	}
	return m.prg[offset]
}

func (m *mapper003) WritePRG(address uint16, value uint8) {
	if address >= 0x8000 {
		m.chrBank = int(value&0x03) % (len(m.chr) / chrBankSize)
	}
}

func (m *mapper003) ReadCHR(address uint16) uint8 {
	return m.chr[m.chrBank*chrBankSize+int(address&0x1FFF)]
}

func (m *mapper003) WriteCHR(address uint16, value uint8) {
	// CNROM carries CHR ROM only.
}

func (m *mapper003) Mirror() MirrorMode { return m.mirror }

func (m *mapper003) TickScanline() {}

func (m *mapper003) PendingIRQ() bool { return false }

package bus

// Inspection helpers for debugging tools. They read through the PPU bus
// without disturbing emulation state beyond what a real PPU read does
// not touch (no registers, no latches).

// PaletteSnapshot copies the 32 bytes of palette RAM.
func (b *Bus) PaletteSnapshot() [32]uint8 {
	var out [32]uint8
	for i := range out {
		out[i] = b.vram.Read(0x3F00 + uint16(i))
	}
	return out
}

// NametableSnapshot copies one of the four logical nametables (0-3) as
// the PPU currently sees it through mirroring.
func (b *Bus) NametableSnapshot(index int) [0x400]uint8 {
	var out [0x400]uint8
	base := 0x2000 + uint16(index&0x03)*0x400
	for i := range out {
		out[i] = b.vram.Read(base + uint16(i))
	}
	return out
}

// PatternTableSnapshot copies one pattern table (0 or 1) from the
// cartridge.
func (b *Bus) PatternTableSnapshot(index int) [0x1000]uint8 {
	var out [0x1000]uint8
	base := uint16(index&0x01) * 0x1000
	for i := range out {
		out[i] = b.vram.Read(base + uint16(i))
	}
	return out
}

// OAMSnapshot copies object attribute memory.
func (b *Bus) OAMSnapshot() [256]uint8 {
	return b.PPU.OAM()
}

package memory

import "famicore/internal/cartridge"

// CHRAccess is the cartridge's PPU-visible side: pattern storage plus
// the nametable layout, consulted on every access because some mappers
// switch mirroring at runtime.
type CHRAccess interface {
	ReadCHR(address uint16) uint8
	WriteCHR(address uint16, value uint8)
	Mirror() cartridge.MirrorMode
}

// VRAM decodes the PPU's 16KB address space: pattern tables on the
// cartridge, nametables in console (or cartridge) RAM, palette RAM on
// the PPU die.
type VRAM struct {
	cart CHRAccess

	// Four full tables so four-screen boards work; standard boards only
	// ever touch two of them through mirroring.
	nametables [0x1000]uint8
	palette    [32]uint8
}

// NewVRAM creates the PPU bus with an empty cartridge slot.
func NewVRAM() *VRAM {
	return &VRAM{}
}

// SetCartridge inserts or replaces the cartridge.
func (v *VRAM) SetCartridge(cart CHRAccess) {
	v.cart = cart
}

// ClearNametables zeroes nametable RAM, used when a new cartridge is
// loaded.
func (v *VRAM) ClearNametables() {
	v.nametables = [0x1000]uint8{}
}

// Read services a PPU read at address.
func (v *VRAM) Read(address uint16) uint8 {
	address &= 0x3FFF
	switch {
	case address < 0x2000:
		if v.cart == nil {
			return 0
		}
		return v.cart.ReadCHR(address)
	case address < 0x3F00:
		return v.nametables[v.mirrorAddress(address)]
	default:
		return v.palette[paletteIndex(address)]
	}
}

// Write services a PPU write at address.
func (v *VRAM) Write(address uint16, value uint8) {
	address &= 0x3FFF
	switch {
	case address < 0x2000:
		if v.cart != nil {
			v.cart.WriteCHR(address, value)
		}
	case address < 0x3F00:
		v.nametables[v.mirrorAddress(address)] = value
	default:
		v.palette[paletteIndex(address)] = value
	}
}

// nametableLayouts maps each mirroring mode to the physical table
// behind each of the four logical tables.
var nametableLayouts = map[cartridge.MirrorMode][4]uint16{
	cartridge.MirrorHorizontal:    {0, 0, 1, 1},
	cartridge.MirrorVertical:      {0, 1, 0, 1},
	cartridge.MirrorSingleScreen0: {0, 0, 0, 0},
	cartridge.MirrorSingleScreen1: {1, 1, 1, 1},
	cartridge.MirrorFourScreen:    {0, 1, 2, 3},
}

// mirrorAddress folds a $2000-$3EFF address onto physical nametable RAM
// according to the cartridge's current mirroring.
func (v *VRAM) mirrorAddress(address uint16) uint16 {
	address &= 0x0FFF
	table := address >> 10
	offset := address & 0x03FF

	mode := cartridge.MirrorHorizontal
	if v.cart != nil {
		mode = v.cart.Mirror()
	}
	return nametableLayouts[mode][table]<<10 | offset
}

// paletteIndex folds a $3F00-$3FFF address onto the 32 bytes of palette
// RAM. The sprite backdrop entries $3F10/$14/$18/$1C alias their
// background counterparts.
func paletteIndex(address uint16) uint16 {
	index := address & 0x001F
	if index >= 0x10 && index%4 == 0 {
		index -= 0x10
	}
	return index
}

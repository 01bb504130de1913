package ppu

// CPU-visible register interface, $2000-$2007 (mirrored by the memory
// layer before it gets here).

// Register offsets within the PPU window.
const (
	RegCtrl    = 0 // $2000 write
	RegMask    = 1 // $2001 write
	RegStatus  = 2 // $2002 read
	RegOAMAddr = 3 // $2003 write
	RegOAMData = 4 // $2004 read/write
	RegScroll  = 5 // $2005 write x2
	RegAddr    = 6 // $2006 write x2
	RegData    = 7 // $2007 read/write
)

// ReadRegister services a CPU read of register reg (0-7). Write-only
// registers return the open bus value.
func (p *PPU) ReadRegister(reg uint16) uint8 {
	switch reg {
	case RegStatus:
		return p.readStatus()
	case RegOAMData:
		return p.oam[p.oamAddr]
	case RegData:
		return p.readData()
	default:
		return p.openBus
	}
}

// WriteRegister services a CPU write to register reg (0-7). Every write
// refreshes the open bus remnant.
func (p *PPU) WriteRegister(reg uint16, value uint8) {
	p.openBus = value

	switch reg {
	case RegCtrl:
		p.writeCtrl(value)
	case RegMask:
		p.mask = value
	case RegOAMAddr:
		p.oamAddr = value
	case RegOAMData:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case RegScroll:
		p.writeScroll(value)
	case RegAddr:
		p.writeAddr(value)
	case RegData:
		p.writeData(value)
	}
}

// WriteOAMByte appends one DMA byte at the current OAM address. The bus
// uses this for $4014 transfers.
func (p *PPU) WriteOAMByte(value uint8) {
	p.oam[p.oamAddr] = value
	p.oamAddr++
}

// OAM returns a copy of object attribute memory for inspection.
func (p *PPU) OAM() [256]uint8 {
	return p.oam
}

func (p *PPU) writeCtrl(value uint8) {
	nmiWasEnabled := p.ctrl&ctrlNMIEnable != 0
	p.ctrl = value
	p.t = p.t&^0x0C00 | uint16(value&ctrlNametableMask)<<10

	// Enabling NMI while the vblank flag is still set fires immediately.
	if !nmiWasEnabled && value&ctrlNMIEnable != 0 && p.vblank && p.nmiCallback != nil {
		p.nmiCallback()
	}
}

// readStatus returns the three status bits over the stale data bus and
// clears both the vblank flag and the shared write latch. Reading one
// dot before the flag would set races the hardware and suppresses that
// frame's vblank.
func (p *PPU) readStatus() uint8 {
	result := p.openBus & 0x1F
	if p.spriteOverflow {
		result |= 0x20
	}
	if p.sprite0Hit {
		result |= 0x40
	}
	if p.vblank {
		result |= 0x80
	}

	p.vblank = false
	p.w = false

	if p.scanline == vblankScanline && p.dot == 0 {
		p.suppressVBL = true
	}

	return result
}

func (p *PPU) writeScroll(value uint8) {
	if !p.w {
		p.t = p.t&^0x001F | uint16(value)>>3
		p.x = value & 0x07
	} else {
		p.t = p.t &^ 0x73E0
		p.t |= uint16(value&0x07) << 12
		p.t |= uint16(value&0xF8) << 2
	}
	p.w = !p.w
}

func (p *PPU) writeAddr(value uint8) {
	if !p.w {
		p.t = p.t&0x00FF | uint16(value&0x3F)<<8
	} else {
		p.t = p.t&0xFF00 | uint16(value)
		p.v = p.t
	}
	p.w = !p.w
}

// readData performs a buffered VRAM read. Palette addresses bypass the
// buffer but still refresh it from the nametable underneath.
func (p *PPU) readData() uint8 {
	addr := p.v & 0x3FFF

	var result uint8
	if addr >= 0x3F00 {
		result = p.mem.Read(addr)
		p.readBuffer = p.mem.Read(addr - 0x1000)
	} else {
		result = p.readBuffer
		p.readBuffer = p.mem.Read(addr)
	}

	p.incrementAddress()
	return result
}

func (p *PPU) writeData(value uint8) {
	p.mem.Write(p.v&0x3FFF, value)
	p.incrementAddress()
}

func (p *PPU) incrementAddress() {
	if p.ctrl&ctrlIncrement32 != 0 {
		p.v += 32
	} else {
		p.v++
	}
}

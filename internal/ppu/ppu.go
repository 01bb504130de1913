// Package ppu implements the 2C02 picture processor with a dot-accurate
// background and sprite pipeline.
package ppu

// Frame geometry and timing. Every scanline spans 341 dots; the visible
// image is 256x240.
const (
	FrameWidth  = 256
	FrameHeight = 240

	dotsPerScanline   = 341
	scanlinesPerFrame = 262

	visibleScanlines = 240
	vblankScanline   = 241
	preRenderLine    = 261
)

// PPUCTRL bits.
const (
	ctrlIncrement32   = 0x04
	ctrlSpriteTable   = 0x08
	ctrlBGTable       = 0x10
	ctrlSpriteSize16  = 0x20
	ctrlNMIEnable     = 0x80
	ctrlNametableMask = 0x03
)

// PPUMASK bits.
const (
	maskGrayscale   = 0x01
	maskShowBGLeft  = 0x02
	maskShowSPLeft  = 0x04
	maskShowBG      = 0x08
	maskShowSprites = 0x10
)

// Memory is the PPU's bus: pattern tables, nametables and palette RAM in
// $0000-$3FFF.
type Memory interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// sprite holds one secondary-OAM unit prepared for the next scanline.
type sprite struct {
	patternLo uint8
	patternHi uint8
	attr      uint8
	x         uint8
	index     uint8 // original OAM slot, 0 matters for sprite zero hit
}

// PPU is the picture processing unit. Step advances it by one dot.
type PPU struct {
	mem Memory

	// Register file.
	ctrl    uint8
	mask    uint8
	oamAddr uint8

	// Status bits, kept unpacked.
	vblank         bool
	sprite0Hit     bool
	spriteOverflow bool

	// Internal scroll state: current and temporary VRAM address, fine X
	// and the shared write latch.
	v uint16
	t uint16
	x uint8
	w bool

	// PPUDATA read buffer and the data bus remnant returned in the low
	// bits of PPUSTATUS.
	readBuffer uint8
	openBus    uint8

	oam [256]uint8

	// Background pipeline: pattern and attribute shifters plus the
	// latches refilled every 8 dots.
	bgShiftPatternLo uint16
	bgShiftPatternHi uint16
	bgShiftAttrLo    uint16
	bgShiftAttrHi    uint16
	ntLatch          uint8
	atLatch          uint8
	bgLatchLo        uint8
	bgLatchHi        uint8

	// Sprite pipeline for the line being drawn.
	sprites     [8]sprite
	spriteCount int

	scanline int
	dot      int
	frame    uint64
	oddFrame bool

	suppressVBL bool

	frameBuffer   [FrameWidth * FrameHeight]uint32
	frameComplete bool

	nmiCallback      func()
	scanlineCallback func()
}

// New creates a PPU attached to its bus. The power-up state matches the
// pre-render position so the first frame starts cleanly.
func New(mem Memory) *PPU {
	p := &PPU{mem: mem}
	p.Reset()
	return p
}

// Reset returns the PPU to its power-up state. OAM and palette contents
// are left as-is, matching hardware.
func (p *PPU) Reset() {
	p.ctrl = 0
	p.mask = 0
	p.oamAddr = 0
	p.vblank = false
	p.sprite0Hit = false
	p.spriteOverflow = false
	p.v = 0
	p.t = 0
	p.x = 0
	p.w = false
	p.readBuffer = 0
	p.scanline = preRenderLine
	p.dot = 0
	p.frame = 0
	p.oddFrame = false
	p.suppressVBL = false
	p.frameComplete = false
	p.spriteCount = 0
}

// SetNMICallback registers the hook invoked when the PPU pulls the NMI
// line.
func (p *PPU) SetNMICallback(callback func()) {
	p.nmiCallback = callback
}

// SetScanlineCallback registers the per-scanline hook used by mappers
// with scanline counters. It fires at dot 260 of rendered lines.
func (p *PPU) SetScanlineCallback(callback func()) {
	p.scanlineCallback = callback
}

// FrameBuffer exposes the most recently completed frame as packed
// 0xRRGGBB pixels in row-major order.
func (p *PPU) FrameBuffer() *[FrameWidth * FrameHeight]uint32 {
	return &p.frameBuffer
}

// FrameCount returns the number of frames completed since reset.
func (p *PPU) FrameCount() uint64 { return p.frame }

// Scanline returns the current scanline, 0 through 261.
func (p *PPU) Scanline() int { return p.scanline }

// Dot returns the current dot within the scanline, 0 through 340.
func (p *PPU) Dot() int { return p.dot }

func (p *PPU) renderingEnabled() bool {
	return p.mask&(maskShowBG|maskShowSprites) != 0
}

// Step advances the PPU by one dot and reports whether the visible
// frame just completed.
func (p *PPU) Step() bool {
	p.tick()

	p.frameComplete = false

	renderLine := p.scanline < visibleScanlines || p.scanline == preRenderLine

	if renderLine && p.renderingEnabled() {
		p.runBackgroundPipeline()
		p.runSpritePipeline()
	}

	if p.scanline < visibleScanlines && p.dot >= 1 && p.dot <= FrameWidth {
		p.renderPixel()
	}

	switch {
	case p.scanline == vblankScanline && p.dot == 1:
		p.enterVblank()
	case p.scanline == preRenderLine && p.dot == 1:
		p.vblank = false
		p.sprite0Hit = false
		p.spriteOverflow = false
	}

	if renderLine && p.dot == 260 && p.renderingEnabled() && p.scanlineCallback != nil {
		p.scanlineCallback()
	}

	return p.frameComplete
}

// tick advances the dot counter, handling frame wrap and the odd-frame
// dot skip on the pre-render line.
func (p *PPU) tick() {
	if p.scanline == preRenderLine && p.dot == 339 && p.oddFrame && p.renderingEnabled() {
		p.dot = 0
		p.scanline = 0
		p.frame++
		p.oddFrame = !p.oddFrame
		return
	}

	p.dot++
	if p.dot >= dotsPerScanline {
		p.dot = 0
		p.scanline++
		if p.scanline >= scanlinesPerFrame {
			p.scanline = 0
			p.frame++
			p.oddFrame = !p.oddFrame
		}
	}
}

func (p *PPU) enterVblank() {
	p.frameComplete = true
	if p.suppressVBL {
		p.suppressVBL = false
		return
	}
	p.vblank = true
	if p.ctrl&ctrlNMIEnable != 0 && p.nmiCallback != nil {
		p.nmiCallback()
	}
}

// runBackgroundPipeline drives the fetch schedule: nametable, attribute
// and two pattern bytes across each 8-dot group, with the scroll
// increments interleaved at the documented dots.
func (p *PPU) runBackgroundPipeline() {
	fetchDot := (p.dot >= 2 && p.dot <= 257) || (p.dot >= 321 && p.dot <= 337)
	if fetchDot {
		p.shiftBackground()

		switch (p.dot - 1) % 8 {
		case 0:
			p.reloadShifters()
			p.ntLatch = p.mem.Read(0x2000 | p.v&0x0FFF)
		case 2:
			p.atLatch = p.fetchAttribute()
		case 4:
			p.bgLatchLo = p.mem.Read(p.patternAddress())
		case 6:
			p.bgLatchHi = p.mem.Read(p.patternAddress() + 8)
		case 7:
			p.incrementX()
		}
	}

	switch {
	case p.dot == 256:
		p.incrementY()
	case p.dot == 257:
		p.transferX()
	case p.scanline == preRenderLine && p.dot >= 280 && p.dot <= 304:
		p.transferY()
	case p.dot == 338 || p.dot == 340:
		// Dummy nametable fetches at the end of the line.
		p.ntLatch = p.mem.Read(0x2000 | p.v&0x0FFF)
	}
}

// fetchAttribute reads the attribute byte for the tile under v and
// shifts the relevant quadrant into the low two bits.
func (p *PPU) fetchAttribute() uint8 {
	addr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	at := p.mem.Read(addr)
	if p.v&0x0040 != 0 {
		at >>= 4
	}
	if p.v&0x0002 != 0 {
		at >>= 2
	}
	return at & 0x03
}

func (p *PPU) patternAddress() uint16 {
	table := uint16(0)
	if p.ctrl&ctrlBGTable != 0 {
		table = 0x1000
	}
	fineY := (p.v >> 12) & 0x07
	return table + uint16(p.ntLatch)*16 + fineY
}

func (p *PPU) shiftBackground() {
	p.bgShiftPatternLo <<= 1
	p.bgShiftPatternHi <<= 1
	p.bgShiftAttrLo <<= 1
	p.bgShiftAttrHi <<= 1
}

// reloadShifters folds the latched tile into the low byte of each
// shifter. The attribute bits expand to a full byte so they track the
// pattern bits dot for dot.
func (p *PPU) reloadShifters() {
	p.bgShiftPatternLo = p.bgShiftPatternLo&0xFF00 | uint16(p.bgLatchLo)
	p.bgShiftPatternHi = p.bgShiftPatternHi&0xFF00 | uint16(p.bgLatchHi)

	p.bgShiftAttrLo &= 0xFF00
	if p.atLatch&0x01 != 0 {
		p.bgShiftAttrLo |= 0x00FF
	}
	p.bgShiftAttrHi &= 0xFF00
	if p.atLatch&0x02 != 0 {
		p.bgShiftAttrHi |= 0x00FF
	}
}

// incrementX advances coarse X, wrapping into the adjacent horizontal
// nametable.
func (p *PPU) incrementX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

// incrementY advances fine Y, spilling into coarse Y and flipping the
// vertical nametable past row 29. Rows 30 and 31 are attribute space
// and wrap without the flip.
func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	coarseY := (p.v >> 5) & 0x001F
	switch coarseY {
	case 29:
		coarseY = 0
		p.v ^= 0x0800
	case 31:
		coarseY = 0
	default:
		coarseY++
	}
	p.v = p.v&^0x03E0 | coarseY<<5
}

// transferX copies the horizontal bits from t to v.
func (p *PPU) transferX() {
	p.v = p.v&^0x041F | p.t&0x041F
}

// transferY copies the vertical bits from t to v.
func (p *PPU) transferY() {
	p.v = p.v&^0x7BE0 | p.t&0x7BE0
}

// runSpritePipeline evaluates sprites for the next scanline at dot 257
// and loads their pattern data at dot 340.
func (p *PPU) runSpritePipeline() {
	if p.scanline == preRenderLine {
		if p.dot == 257 {
			p.spriteCount = 0
		}
		return
	}
	switch p.dot {
	case 257:
		p.evaluateSprites()
	case 340:
		p.loadSpritePatterns()
	}
}

func (p *PPU) spriteHeight() int {
	if p.ctrl&ctrlSpriteSize16 != 0 {
		return 16
	}
	return 8
}

// evaluateSprites scans OAM in order and keeps the first eight sprites
// in range of the next scanline. Finding a ninth sets the overflow flag
// for the rest of the frame.
func (p *PPU) evaluateSprites() {
	height := p.spriteHeight()
	p.spriteCount = 0

	for i := 0; i < 64; i++ {
		y := int(p.oam[i*4])
		row := p.scanline - y
		if row < 0 || row >= height {
			continue
		}
		if p.spriteCount == 8 {
			p.spriteOverflow = true
			break
		}
		s := &p.sprites[p.spriteCount]
		s.index = uint8(i)
		s.attr = p.oam[i*4+2]
		s.x = p.oam[i*4+3]
		p.spriteCount++
	}
}

// loadSpritePatterns fetches the pattern bytes for every unit selected
// at dot 257, applying vertical flip while computing the row.
func (p *PPU) loadSpritePatterns() {
	height := p.spriteHeight()

	for i := 0; i < p.spriteCount; i++ {
		s := &p.sprites[i]
		tile := p.oam[s.index*4+1]
		row := p.scanline - int(p.oam[s.index*4])

		if s.attr&0x80 != 0 {
			row = height - 1 - row
		}

		var addr uint16
		if height == 16 {
			table := uint16(tile&0x01) << 12
			tile &= 0xFE
			if row > 7 {
				tile++
				row -= 8
			}
			addr = table + uint16(tile)*16 + uint16(row)
		} else {
			table := uint16(0)
			if p.ctrl&ctrlSpriteTable != 0 {
				table = 0x1000
			}
			addr = table + uint16(tile)*16 + uint16(row)
		}

		s.patternLo = p.mem.Read(addr)
		s.patternHi = p.mem.Read(addr + 8)

		if s.attr&0x40 != 0 {
			s.patternLo = reverseByte(s.patternLo)
			s.patternHi = reverseByte(s.patternHi)
		}
	}
}

func reverseByte(b uint8) uint8 {
	b = b>>4 | b<<4
	b = b>>2&0x33 | b<<2&0xCC
	b = b>>1&0x55 | b<<1&0xAA
	return b
}

// renderPixel composites the background and sprite pixels for the
// current dot, resolving priority and the sprite zero hit.
func (p *PPU) renderPixel() {
	x := p.dot - 1
	y := p.scanline

	if !p.renderingEnabled() {
		p.plot(x, y, p.paletteColor(0))
		return
	}

	bgPixel, bgPalette := p.backgroundPixel(x)
	spPixel, spPalette, spBehind, spIsZero := p.spritePixel(x)

	var color uint8
	switch {
	case bgPixel == 0 && spPixel == 0:
		color = 0
	case bgPixel == 0:
		color = spPalette<<2 | spPixel
	case spPixel == 0:
		color = bgPalette<<2 | bgPixel
	default:
		if spIsZero && x != 255 {
			p.sprite0Hit = true
		}
		if spBehind {
			color = bgPalette<<2 | bgPixel
		} else {
			color = spPalette<<2 | spPixel
		}
	}

	p.plot(x, y, p.paletteColor(color))
}

func (p *PPU) backgroundPixel(x int) (uint8, uint8) {
	if p.mask&maskShowBG == 0 || (x < 8 && p.mask&maskShowBGLeft == 0) {
		return 0, 0
	}

	bit := uint16(0x8000) >> p.x
	var pixel, palette uint8
	if p.bgShiftPatternLo&bit != 0 {
		pixel |= 0x01
	}
	if p.bgShiftPatternHi&bit != 0 {
		pixel |= 0x02
	}
	if p.bgShiftAttrLo&bit != 0 {
		palette |= 0x01
	}
	if p.bgShiftAttrHi&bit != 0 {
		palette |= 0x02
	}
	return pixel, palette
}

// spritePixel returns the first opaque sprite pixel at x, in OAM order,
// along with its palette, priority and whether it came from sprite
// zero.
func (p *PPU) spritePixel(x int) (uint8, uint8, bool, bool) {
	if p.mask&maskShowSprites == 0 || (x < 8 && p.mask&maskShowSPLeft == 0) {
		return 0, 0, false, false
	}

	for i := 0; i < p.spriteCount; i++ {
		s := &p.sprites[i]
		offset := x - int(s.x)
		if offset < 0 || offset > 7 {
			continue
		}

		bit := uint8(0x80) >> offset
		var pixel uint8
		if s.patternLo&bit != 0 {
			pixel |= 0x01
		}
		if s.patternHi&bit != 0 {
			pixel |= 0x02
		}
		if pixel == 0 {
			continue
		}

		return pixel, s.attr&0x03 + 4, s.attr&0x20 != 0, s.index == 0
	}
	return 0, 0, false, false
}

// paletteColor resolves a 5-bit palette index to an RGB color, applying
// the grayscale mask bit.
func (p *PPU) paletteColor(index uint8) uint32 {
	entry := p.mem.Read(0x3F00 | uint16(index))
	if p.mask&maskGrayscale != 0 {
		entry &= 0x30
	}
	return ColorForIndex(entry)
}

func (p *PPU) plot(x, y int, color uint32) {
	if x < 0 || x >= FrameWidth || y < 0 || y >= FrameHeight {
		return
	}
	p.frameBuffer[y*FrameWidth+x] = color
}

// Package bus assembles the console: CPU, PPU, memory, cartridge and
// controllers, clocked at three PPU dots per CPU cycle.
package bus

import (
	"famicore/internal/cartridge"
	"famicore/internal/cpu"
	"famicore/internal/input"
	"famicore/internal/memory"
	"famicore/internal/ppu"
)

// Bus owns every component and drives the master clock.
type Bus struct {
	CPU *cpu.CPU
	PPU *ppu.PPU

	mem  *memory.Memory
	vram *memory.VRAM
	cart *cartridge.Cartridge

	controllers [2]*input.Controller

	// Cycles the CPU is suspended for after an OAM DMA, charged on the
	// following Step.
	dmaStall uint64

	frameReady bool
}

// New builds a console with an empty cartridge slot.
func New() *Bus {
	b := &Bus{}

	b.vram = memory.NewVRAM()
	b.PPU = ppu.New(b.vram)

	b.controllers[0] = input.New()
	b.controllers[1] = input.New()

	b.mem = memory.New(b.PPU, b.controllers[0], b.controllers[1])
	b.mem.SetDMACallback(b.oamDMA)

	b.CPU = cpu.New(b.mem)

	b.PPU.SetNMICallback(func() {
		b.CPU.Interrupt(cpu.NMI)
	})
	b.PPU.SetScanlineCallback(b.tickMapper)

	return b
}

// LoadCartridge inserts cart and resets the console. Volatile state
// from any previous cartridge is cleared; a nil cart is ignored.
func (b *Bus) LoadCartridge(cart *cartridge.Cartridge) {
	if cart == nil {
		return
	}
	b.cart = cart
	b.mem.SetCartridge(cart)
	b.vram.SetCartridge(cart)

	b.mem.ClearRAM()
	b.vram.ClearNametables()
	b.dmaStall = 0
	b.frameReady = false

	b.Reset()
}

// LoadCartridgeFile parses an iNES file and inserts it. On error the
// previous cartridge, if any, keeps running.
func (b *Bus) LoadCartridgeFile(path string) error {
	cart, err := cartridge.LoadFile(path)
	if err != nil {
		return err
	}
	b.LoadCartridge(cart)
	return nil
}

// Cartridge returns the inserted cartridge, nil when the slot is empty.
func (b *Bus) Cartridge() *cartridge.Cartridge { return b.cart }

// Reset resets the CPU and PPU, leaving cartridge contents alone.
func (b *Bus) Reset() {
	b.CPU.Reset()
	b.PPU.Reset()
}

// Step executes one CPU instruction, clocks the PPU three dots per CPU
// cycle, and returns the CPU cycles consumed. A stall pending from an
// OAM DMA is consumed before the instruction runs, so it lands on the
// step after the $4014 write.
func (b *Bus) Step() uint64 {
	stall := b.dmaStall
	b.dmaStall = 0

	cycles := b.CPU.Step() + stall

	for i := uint64(0); i < cycles*3; i++ {
		if b.PPU.Step() {
			b.frameReady = true
		}
	}

	return cycles
}

// RunFrame steps until the PPU completes the current frame and returns
// the frame buffer.
func (b *Bus) RunFrame() *[ppu.FrameWidth * ppu.FrameHeight]uint32 {
	for !b.frameReady {
		b.Step()
	}
	b.frameReady = false
	return b.PPU.FrameBuffer()
}

// SetButtons replaces the live button state of one controller port
// (0 or 1).
func (b *Bus) SetButtons(port int, mask uint8) {
	if port < 0 || port > 1 {
		return
	}
	b.controllers[port].SetButtons(mask)
}

// Controller returns the controller on port 0 or 1.
func (b *Bus) Controller(port int) *input.Controller {
	return b.controllers[port]
}

// oamDMA copies a 256-byte page into OAM through the PPU's OAM port.
// The CPU is suspended for 513 cycles, 514 when the write lands on an
// odd cycle.
func (b *Bus) oamDMA(page uint8) {
	base := uint16(page) << 8
	for i := uint16(0); i < 256; i++ {
		b.PPU.WriteOAMByte(b.mem.Read(base + i))
	}

	b.dmaStall += 513
	if b.CPU.Cycles()&1 == 1 {
		b.dmaStall++
	}
}

// tickMapper forwards the PPU's scanline notification to the cartridge
// and raises the CPU's IRQ line when the mapper asks for it.
func (b *Bus) tickMapper() {
	if b.cart == nil {
		return
	}
	b.cart.TickScanline()
	b.CPU.SetIRQLine(b.cart.PendingIRQ())
}

// Package memory implements the console's two address spaces: the CPU
// bus in memory.go and the PPU bus in vram.go.
package memory

// PPURegisters is the CPU-visible slice of the PPU, registers 0-7.
type PPURegisters interface {
	ReadRegister(reg uint16) uint8
	WriteRegister(reg uint16, value uint8)
}

// ControllerPort models one joypad port's serial interface.
type ControllerPort interface {
	Read() uint8
	Write(value uint8)
}

// PRGAccess is the cartridge's CPU-visible window, $6000-$FFFF.
type PRGAccess interface {
	ReadPRG(address uint16) uint8
	WritePRG(address uint16, value uint8)
}

// Memory decodes the CPU's 64KB address space. The 2KB of internal RAM
// mirrors through $0000-$1FFF and the PPU registers mirror every 8
// bytes through $2000-$3FFF. Unmapped regions return the open bus
// value, the last byte that travelled the data bus.
type Memory struct {
	ram [0x0800]uint8

	ppu         PPURegisters
	controller1 ControllerPort
	controller2 ControllerPort
	cart        PRGAccess

	dmaCallback func(page uint8)

	openBus uint8
}

// New wires a CPU bus from its peripherals. The cartridge slot starts
// empty; SetCartridge fills it.
func New(ppu PPURegisters, controller1, controller2 ControllerPort) *Memory {
	return &Memory{
		ppu:         ppu,
		controller1: controller1,
		controller2: controller2,
	}
}

// SetCartridge inserts or replaces the cartridge.
func (m *Memory) SetCartridge(cart PRGAccess) {
	m.cart = cart
}

// SetDMACallback registers the hook for $4014 writes. The bus uses it
// to run the OAM transfer and account its stolen cycles.
func (m *Memory) SetDMACallback(callback func(page uint8)) {
	m.dmaCallback = callback
}

// ClearRAM zeroes internal RAM, used when a new cartridge is loaded.
func (m *Memory) ClearRAM() {
	m.ram = [0x0800]uint8{}
}

// Read services a CPU read at address.
func (m *Memory) Read(address uint16) uint8 {
	switch {
	case address < 0x2000:
		m.openBus = m.ram[address&0x07FF]
	case address < 0x4000:
		m.openBus = m.ppu.ReadRegister(address & 0x0007)
	case address == 0x4016:
		// Controller reads drive only the low bits; the rest is bus
		// remnant, conventionally $40.
		m.openBus = 0x40 | m.controller1.Read()
	case address == 0x4017:
		m.openBus = 0x40 | m.controller2.Read()
	case address < 0x4020:
		// APU and I/O range reads are open bus on this board.
	case address < 0x6000:
		// Expansion area, unmapped.
	default:
		if m.cart != nil {
			m.openBus = m.cart.ReadPRG(address)
		}
	}
	return m.openBus
}

// Write services a CPU write at address.
func (m *Memory) Write(address uint16, value uint8) {
	m.openBus = value

	switch {
	case address < 0x2000:
		m.ram[address&0x07FF] = value
	case address < 0x4000:
		m.ppu.WriteRegister(address&0x0007, value)
	case address == 0x4014:
		if m.dmaCallback != nil {
			m.dmaCallback(value)
		}
	case address == 0x4016:
		// The strobe line feeds both controller ports.
		m.controller1.Write(value)
		m.controller2.Write(value)
	case address < 0x4020:
		// APU range, absorbed.
	case address < 0x6000:
		// Expansion area, absorbed.
	default:
		if m.cart != nil {
			m.cart.WritePRG(address, value)
		}
	}
}

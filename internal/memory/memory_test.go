package memory

import (
	"testing"
)

// fakePPU records register traffic for bus decoding tests.
type fakePPU struct {
	regs      [8]uint8
	lastRead  uint16
	lastWrite uint16
}

func (f *fakePPU) ReadRegister(reg uint16) uint8 {
	f.lastRead = reg
	return f.regs[reg]
}

func (f *fakePPU) WriteRegister(reg uint16, value uint8) {
	f.lastWrite = reg
	f.regs[reg] = value
}

// fakeController returns canned bits and records strobe writes.
type fakeController struct {
	bit     uint8
	strobed []uint8
}

func (f *fakeController) Read() uint8 { return f.bit }

func (f *fakeController) Write(value uint8) {
	f.strobed = append(f.strobed, value)
}

// fakeCart is a 64KB-flat PRG window.
type fakeCart struct {
	prg [0x10000]uint8
}

func (f *fakeCart) ReadPRG(address uint16) uint8 { return f.prg[address] }

func (f *fakeCart) WritePRG(address uint16, value uint8) { f.prg[address] = value }

func newTestMemory() (*Memory, *fakePPU, *fakeController, *fakeController) {
	ppu := &fakePPU{}
	c1 := &fakeController{}
	c2 := &fakeController{}
	return New(ppu, c1, c2), ppu, c1, c2
}

func TestRAMMirroring(t *testing.T) {
	m, _, _, _ := newTestMemory()

	m.Write(0x0000, 0x42)
	for _, mirror := range []uint16{0x0800, 0x1000, 0x1800} {
		if got := m.Read(mirror); got != 0x42 {
			t.Errorf("Expected RAM mirror at 0x%04X to read 0x42, got 0x%02X", mirror, got)
		}
	}

	m.Write(0x1FFF, 0x99)
	if got := m.Read(0x07FF); got != 0x99 {
		t.Errorf("Expected mirrored write to land at 0x07FF, got 0x%02X", got)
	}
}

func TestPPURegisterMirroring(t *testing.T) {
	m, ppu, _, _ := newTestMemory()

	// $3FFF decodes to register 7.
	m.Write(0x3FFF, 0xAB)
	if ppu.lastWrite != 7 {
		t.Errorf("Expected write to register 7, got %d", ppu.lastWrite)
	}

	m.Read(0x200A)
	if ppu.lastRead != 2 {
		t.Errorf("Expected read of register 2, got %d", ppu.lastRead)
	}
}

func TestControllerReadComposition(t *testing.T) {
	m, _, c1, c2 := newTestMemory()
	c1.bit = 1
	c2.bit = 0

	if got := m.Read(0x4016); got != 0x41 {
		t.Errorf("Expected $4016 read 0x41, got 0x%02X", got)
	}
	if got := m.Read(0x4017); got != 0x40 {
		t.Errorf("Expected $4017 read 0x40, got 0x%02X", got)
	}
}

func TestStrobeReachesBothControllers(t *testing.T) {
	m, _, c1, c2 := newTestMemory()

	m.Write(0x4016, 0x01)
	m.Write(0x4016, 0x00)

	if len(c1.strobed) != 2 || len(c2.strobed) != 2 {
		t.Fatalf("Expected both controllers strobed twice, got %d and %d",
			len(c1.strobed), len(c2.strobed))
	}
}

func TestDMACallback(t *testing.T) {
	m, _, _, _ := newTestMemory()

	var page uint8
	m.SetDMACallback(func(p uint8) { page = p })
	m.Write(0x4014, 0x02)

	if page != 0x02 {
		t.Errorf("Expected DMA callback with page 0x02, got 0x%02X", page)
	}
}

func TestOpenBusReturnsLastValue(t *testing.T) {
	m, _, _, _ := newTestMemory()

	m.Write(0x0000, 0x5A)
	m.Read(0x0000)
	// $5000 is unmapped; the bus keeps its last value.
	if got := m.Read(0x5000); got != 0x5A {
		t.Errorf("Expected open bus 0x5A, got 0x%02X", got)
	}
}

func TestCartridgeWindow(t *testing.T) {
	m, _, _, _ := newTestMemory()
	cart := &fakeCart{}
	cart.prg[0x8000] = 0x77
	m.SetCartridge(cart)

	if got := m.Read(0x8000); got != 0x77 {
		t.Errorf("Expected cartridge read 0x77, got 0x%02X", got)
	}

	m.Write(0x6000, 0x33)
	if cart.prg[0x6000] != 0x33 {
		t.Errorf("Expected cartridge write at $6000, got 0x%02X", cart.prg[0x6000])
	}
}

func TestClearRAM(t *testing.T) {
	m, _, _, _ := newTestMemory()

	m.Write(0x0123, 0xFF)
	m.ClearRAM()
	if got := m.Read(0x0123); got != 0x00 {
		t.Errorf("Expected cleared RAM, got 0x%02X", got)
	}
}

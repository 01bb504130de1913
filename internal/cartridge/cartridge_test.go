package cartridge

import (
	"bytes"
	"errors"
	"testing"
)

func makePRG(banks int, fill uint8) []uint8 {
	prg := make([]uint8, banks*prgBankSize)
	for i := range prg {
		prg[i] = fill
	}
	return prg
}

func makeCHR(banks int) []uint8 {
	return make([]uint8, banks*chrBankSize)
}

func TestNewRejectsMissingPRG(t *testing.T) {
	_, err := New(Config{})
	if !errors.Is(err, ErrNoPRG) {
		t.Errorf("Expected ErrNoPRG, got %v", err)
	}
}

func TestNewRejectsOddPRGSize(t *testing.T) {
	_, err := New(Config{PRG: make([]uint8, 1000)})
	if !errors.Is(err, ErrBadPRGSize) {
		t.Errorf("Expected ErrBadPRGSize, got %v", err)
	}
}

func TestNewRejectsOddCHRSize(t *testing.T) {
	_, err := New(Config{PRG: makePRG(1, 0), CHR: make([]uint8, 100)})
	if !errors.Is(err, ErrBadCHRSize) {
		t.Errorf("Expected ErrBadCHRSize, got %v", err)
	}
}

func TestNewRejectsUnknownMapper(t *testing.T) {
	_, err := New(Config{PRG: makePRG(1, 0), MapperID: 42})
	if !errors.Is(err, ErrUnsupportedMapper) {
		t.Errorf("Expected ErrUnsupportedMapper, got %v", err)
	}
}

func TestNewAllocatesCHRRAMWhenEmpty(t *testing.T) {
	cart, err := New(Config{PRG: makePRG(1, 0)})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !cart.HasCHRRAM() {
		t.Error("Expected CHR RAM for an image without CHR ROM")
	}

	cart.WriteCHR(0x0123, 0xAB)
	if got := cart.ReadCHR(0x0123); got != 0xAB {
		t.Errorf("Expected CHR RAM readback 0xAB, got 0x%02X", got)
	}
}

func TestNROMMirrors16KiBImage(t *testing.T) {
	prg := makePRG(1, 0)
	prg[0x0010] = 0x5A
	cart, err := New(Config{PRG: prg, CHR: makeCHR(1)})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got := cart.ReadPRG(0x8010); got != 0x5A {
		t.Errorf("Expected 0x5A at $8010, got 0x%02X", got)
	}
	if got := cart.ReadPRG(0xC010); got != 0x5A {
		t.Errorf("Expected mirror at $C010, got 0x%02X", got)
	}
}

func TestNROM32KiBImageDoesNotMirror(t *testing.T) {
	prg := makePRG(2, 0)
	prg[0x0000] = 0x11
	prg[0x4000] = 0x22
	cart, err := New(Config{PRG: prg, CHR: makeCHR(1)})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got := cart.ReadPRG(0x8000); got != 0x11 {
		t.Errorf("Expected 0x11 at $8000, got 0x%02X", got)
	}
	if got := cart.ReadPRG(0xC000); got != 0x22 {
		t.Errorf("Expected 0x22 at $C000, got 0x%02X", got)
	}
}

func TestNROMPRGRAMWindow(t *testing.T) {
	cart, err := New(Config{PRG: makePRG(1, 0), CHR: makeCHR(1)})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	cart.WritePRG(0x6000, 0x77)
	if got := cart.ReadPRG(0x6000); got != 0x77 {
		t.Errorf("Expected PRG RAM readback 0x77, got 0x%02X", got)
	}

	// ROM region absorbs the write.
	cart.WritePRG(0x8000, 0x99)
	if got := cart.ReadPRG(0x8000); got == 0x99 {
		t.Error("Expected write into ROM to be ignored")
	}
}

func TestNROMCHRROMIsReadOnly(t *testing.T) {
	chr := makeCHR(1)
	chr[0x0042] = 0x3C
	cart, err := New(Config{PRG: makePRG(1, 0), CHR: chr})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	cart.WriteCHR(0x0042, 0xFF)
	if got := cart.ReadCHR(0x0042); got != 0x3C {
		t.Errorf("Expected CHR ROM unchanged 0x3C, got 0x%02X", got)
	}
}

func TestCNROMBankSelect(t *testing.T) {
	chr := makeCHR(4)
	for bank := 0; bank < 4; bank++ {
		chr[bank*chrBankSize] = uint8(bank + 1)
	}
	cart, err := New(Config{PRG: makePRG(2, 0), CHR: chr, MapperID: 3})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for bank := 0; bank < 4; bank++ {
		cart.WritePRG(0x8000, uint8(bank))
		if got := cart.ReadCHR(0x0000); got != uint8(bank+1) {
			t.Errorf("Bank %d: expected 0x%02X, got 0x%02X", bank, bank+1, got)
		}
	}
}

func TestCNROMBankSelectWrapsSmallCHR(t *testing.T) {
	chr := makeCHR(2)
	chr[0x0000] = 0xA0
	chr[chrBankSize] = 0xA1
	cart, err := New(Config{PRG: makePRG(2, 0), CHR: chr, MapperID: 3})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Bank 3 on a 2-bank board wraps to bank 1.
	cart.WritePRG(0x8000, 0x03)
	if got := cart.ReadCHR(0x0000); got != 0xA1 {
		t.Errorf("Expected wrapped bank 1 value 0xA1, got 0x%02X", got)
	}
}

// buildINES assembles a minimal image for the parser tests.
func buildINES(prgPages, chrPages, flags6, flags7 uint8, trainer bool) []uint8 {
	image := []uint8{'N', 'E', 'S', 0x1A, prgPages, chrPages, flags6, flags7}
	image = append(image, make([]uint8, 8)...)
	if trainer {
		image = append(image, make([]uint8, 512)...)
	}
	image = append(image, make([]uint8, int(prgPages)*prgBankSize)...)
	image = append(image, make([]uint8, int(chrPages)*chrBankSize)...)
	return image
}

func TestLoadiNESRejectsBadMagic(t *testing.T) {
	image := buildINES(1, 1, 0, 0, false)
	image[0] = 'X'
	_, err := LoadiNES(bytes.NewReader(image))
	if !errors.Is(err, ErrBadMagic) {
		t.Errorf("Expected ErrBadMagic, got %v", err)
	}
}

func TestLoadiNESRejectsNES2(t *testing.T) {
	image := buildINES(1, 1, 0, 0x08, false)
	_, err := LoadiNES(bytes.NewReader(image))
	if !errors.Is(err, ErrNES2) {
		t.Errorf("Expected ErrNES2, got %v", err)
	}
}

func TestLoadiNESRejectsTruncatedPRG(t *testing.T) {
	image := buildINES(1, 0, 0, 0, false)
	_, err := LoadiNES(bytes.NewReader(image[:1000]))
	if !errors.Is(err, ErrTruncatedImage) {
		t.Errorf("Expected ErrTruncatedImage, got %v", err)
	}
}

func TestLoadiNESMirrorFlags(t *testing.T) {
	tests := []struct {
		name     string
		flags6   uint8
		expected MirrorMode
	}{
		{"horizontal", 0x00, MirrorHorizontal},
		{"vertical", 0x01, MirrorVertical},
		{"four screen wins", 0x09, MirrorFourScreen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart, err := LoadiNES(bytes.NewReader(buildINES(1, 1, tt.flags6, 0, false)))
			if err != nil {
				t.Fatalf("LoadiNES failed: %v", err)
			}
			if cart.Mirror() != tt.expected {
				t.Errorf("Expected mirror %d, got %d", tt.expected, cart.Mirror())
			}
		})
	}
}

func TestLoadiNESCombinesMapperNibbles(t *testing.T) {
	// Mapper 3 split across flags 6 and 7: low nibble 3, high nibble 0.
	cart, err := LoadiNES(bytes.NewReader(buildINES(1, 1, 0x30, 0x00, false)))
	if err != nil {
		t.Fatalf("LoadiNES failed: %v", err)
	}
	if cart.MapperID() != 3 {
		t.Errorf("Expected mapper 3, got %d", cart.MapperID())
	}
}

func TestLoadiNESSkipsTrainer(t *testing.T) {
	image := buildINES(1, 1, 0x04, 0, true)
	// First PRG byte sits after the trainer.
	image[16+512] = 0xEA
	cart, err := LoadiNES(bytes.NewReader(image))
	if err != nil {
		t.Fatalf("LoadiNES failed: %v", err)
	}
	if got := cart.ReadPRG(0x8000); got != 0xEA {
		t.Errorf("Expected first PRG byte 0xEA after trainer, got 0x%02X", got)
	}
}

func TestLoadiNESBatteryFlag(t *testing.T) {
	cart, err := LoadiNES(bytes.NewReader(buildINES(1, 1, 0x02, 0, false)))
	if err != nil {
		t.Fatalf("LoadiNES failed: %v", err)
	}
	if !cart.HasBattery() {
		t.Error("Expected battery flag set")
	}
}

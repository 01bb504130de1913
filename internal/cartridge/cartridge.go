// Package cartridge implements NES cartridges and their memory mappers.
//
// The core constructor consumes already-separated ROM regions; container
// parsing (iNES) lives in ines.go and is the only place that knows about
// a file format.
package cartridge

import (
	"errors"
	"fmt"
)

// MirrorMode selects how the four logical nametables map onto physical VRAM.
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleScreen0
	MirrorSingleScreen1
	MirrorFourScreen
)

// Mapper is the capability set every cartridge circuit provides. PRG
// accesses cover $6000-$FFFF on the CPU bus, CHR accesses cover
// $0000-$1FFF on the PPU bus. Mirror is consulted on every nametable
// access because some circuits switch modes at runtime. TickScanline is
// invoked once per rendered scanline; mappers without counters ignore it
// and never assert an IRQ.
type Mapper interface {
	ReadPRG(address uint16) uint8
	WritePRG(address uint16, value uint8)
	ReadCHR(address uint16) uint8
	WriteCHR(address uint16, value uint8)
	Mirror() MirrorMode
	TickScanline()
	PendingIRQ() bool
}

// Config carries the raw byte regions and wiring facts a cartridge is
// built from. PRG must be a non-empty multiple of 16 KiB; CHR may be
// empty, in which case 8 KiB of CHR RAM is allocated.
type Config struct {
	PRG        []uint8
	CHR        []uint8
	MapperID   uint8
	Mirror     MirrorMode
	HasBattery bool
}

// Cartridge owns the ROM/RAM banks through its mapper. The bus holds
// exactly one cartridge at a time and replaces it wholesale on load.
type Cartridge struct {
	mapper   Mapper
	mapperID uint8

	hasBattery bool
	hasCHRRAM  bool
}

const (
	prgBankSize = 0x4000 // 16 KiB
	chrBankSize = 0x2000 // 8 KiB
)

var (
	ErrNoPRG             = errors.New("cartridge: missing PRG ROM")
	ErrBadPRGSize        = errors.New("cartridge: PRG ROM size is not a multiple of 16 KiB")
	ErrBadCHRSize        = errors.New("cartridge: CHR ROM size is not a multiple of 8 KiB")
	ErrUnsupportedMapper = errors.New("cartridge: unsupported mapper")
)

// New builds a cartridge from raw regions. It either fully succeeds or
// returns an error without constructing a mapper, so a failed load never
// leaves a half-built cartridge behind.
func New(cfg Config) (*Cartridge, error) {
	if len(cfg.PRG) == 0 {
		return nil, ErrNoPRG
	}
	if len(cfg.PRG)%prgBankSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadPRGSize, len(cfg.PRG))
	}

	chr := cfg.CHR
	hasCHRRAM := false
	if len(chr) == 0 {
		chr = make([]uint8, chrBankSize)
		hasCHRRAM = true
	} else if len(chr)%chrBankSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadCHRSize, len(chr))
	}

	var mapper Mapper
	switch cfg.MapperID {
	case 0:
		mapper = newMapper000(cfg.PRG, chr, hasCHRRAM, cfg.Mirror)
	case 3:
		mapper = newMapper003(cfg.PRG, chr, cfg.Mirror)
	default:
		return nil, fmt.Errorf("%w: id %d", ErrUnsupportedMapper, cfg.MapperID)
	}

	return &Cartridge{
		mapper:     mapper,
		mapperID:   cfg.MapperID,
		hasBattery: cfg.HasBattery,
		hasCHRRAM:  hasCHRRAM,
	}, nil
}

// ReadPRG reads from the cartridge's CPU-visible window.
func (c *Cartridge) ReadPRG(address uint16) uint8 { return c.mapper.ReadPRG(address) }

// WritePRG writes to the cartridge's CPU-visible window. Writes into ROM
// regions reach the mapper's bank-select logic instead of storage.
func (c *Cartridge) WritePRG(address uint16, value uint8) { c.mapper.WritePRG(address, value) }

// ReadCHR reads pattern data for the PPU.
func (c *Cartridge) ReadCHR(address uint16) uint8 { return c.mapper.ReadCHR(address) }

// WriteCHR writes pattern data; a no-op on CHR ROM cartridges.
func (c *Cartridge) WriteCHR(address uint16, value uint8) { c.mapper.WriteCHR(address, value) }

// Mirror reports the active nametable layout.
func (c *Cartridge) Mirror() MirrorMode { return c.mapper.Mirror() }

// TickScanline forwards the per-scanline rendering notification.
func (c *Cartridge) TickScanline() { c.mapper.TickScanline() }

// PendingIRQ reports whether the mapper is asserting its IRQ line.
func (c *Cartridge) PendingIRQ() bool { return c.mapper.PendingIRQ() }

// MapperID returns the numeric mapper identifier the cartridge was built with.
func (c *Cartridge) MapperID() uint8 { return c.mapperID }

// HasBattery reports whether the image declared battery-backed PRG RAM.
func (c *Cartridge) HasBattery() bool { return c.hasBattery }

// HasCHRRAM reports whether pattern storage is writable RAM.
func (c *Cartridge) HasCHRRAM() bool { return c.hasCHRRAM }

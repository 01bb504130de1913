package cartridge

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// iNES container parsing. This is the external collaborator that turns a
// ROM file into the raw regions the core constructor consumes; nothing
// else in the module knows the on-disk layout.

var (
	ErrBadMagic       = errors.New("cartridge: not an iNES image")
	ErrNES2           = errors.New("cartridge: NES 2.0 images are not supported")
	ErrTruncatedImage = errors.New("cartridge: truncated image")
)

type inesHeader struct {
	Magic    [4]uint8
	PRGPages uint8 // 16 KiB units
	CHRPages uint8 // 8 KiB units
	Flags6   uint8
	Flags7   uint8
	Padding  [8]uint8
}

const trainerSize = 512

// LoadiNES parses an iNES stream into a cartridge.
func LoadiNES(r io.Reader) (*Cartridge, error) {
	var header inesHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedImage, err)
	}

	if string(header.Magic[:]) != "NES\x1A" {
		return nil, ErrBadMagic
	}
	if (header.Flags7>>2)&0x03 == 2 {
		return nil, ErrNES2
	}
	if header.PRGPages == 0 {
		return nil, ErrNoPRG
	}

	mirror := MirrorHorizontal
	if header.Flags6&0x08 != 0 {
		mirror = MirrorFourScreen
	} else if header.Flags6&0x01 != 0 {
		mirror = MirrorVertical
	}

	if header.Flags6&0x04 != 0 {
		if _, err := io.CopyN(io.Discard, r, trainerSize); err != nil {
			return nil, fmt.Errorf("%w: trainer", ErrTruncatedImage)
		}
	}

	prg := make([]uint8, int(header.PRGPages)*prgBankSize)
	if _, err := io.ReadFull(r, prg); err != nil {
		return nil, fmt.Errorf("%w: PRG ROM", ErrTruncatedImage)
	}

	var chr []uint8
	if header.CHRPages > 0 {
		chr = make([]uint8, int(header.CHRPages)*chrBankSize)
		if _, err := io.ReadFull(r, chr); err != nil {
			return nil, fmt.Errorf("%w: CHR ROM", ErrTruncatedImage)
		}
	}

	return New(Config{
		PRG:        prg,
		CHR:        chr,
		MapperID:   (header.Flags6 >> 4) | (header.Flags7 & 0xF0),
		Mirror:     mirror,
		HasBattery: header.Flags6&0x02 != 0,
	})
}

// LoadFile parses an iNES file from disk.
func LoadFile(path string) (*Cartridge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadiNES(f)
}

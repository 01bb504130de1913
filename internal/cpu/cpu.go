// Package cpu implements the 6502 core used by the NES.
package cpu

// AddressingMode identifies how an instruction locates its operand.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

const (
	stackBase = 0x0100

	flagC      = 0x01
	flagZ      = 0x02
	flagI      = 0x04
	flagD      = 0x08
	flagB      = 0x10
	flagUnused = 0x20
	flagV      = 0x40
	flagN      = 0x80

	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE

	interruptCycles = 7
)

// InterruptKind selects which interrupt line is being pulled.
type InterruptKind int

const (
	NMI InterruptKind = iota
	IRQ
	Reset
)

// Memory is the CPU's view of the bus.
type Memory interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPU holds the architectural register file and interrupt lines.
type CPU struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16

	// Status flags, kept unpacked; Status()/SetStatus() pack them.
	C bool // carry
	Z bool // zero
	I bool // interrupt disable
	D bool // decimal (tracked, unused by the 2A03)
	B bool // break
	V bool // overflow
	N bool // negative

	mem Memory

	cycles uint64

	nmiPending bool
	nmiLine    bool
	irqLine    bool
}

// New creates a CPU attached to mem. Call Reset before stepping.
func New(mem Memory) *CPU {
	return &CPU{mem: mem, SP: 0xFD}
}

// Reset runs the power-up/reset sequence: registers to their defined
// values, I set, PC loaded from the reset vector, 7 cycles consumed.
func (c *CPU) Reset() {
	c.A = 0
	c.X = 0
	c.Y = 0
	c.SP = 0xFD

	c.C = false
	c.Z = false
	c.I = true
	c.D = false
	c.B = true
	c.V = false
	c.N = false

	lo := uint16(c.mem.Read(resetVector))
	hi := uint16(c.mem.Read(resetVector + 1))
	c.PC = hi<<8 | lo

	c.cycles += interruptCycles
}

// Interrupt pulls an interrupt line. NMI is edge triggered and latched;
// IRQ is level triggered and sampled after each instruction while the I
// flag is clear; Reset runs the reset sequence immediately.
func (c *CPU) Interrupt(kind InterruptKind) {
	switch kind {
	case NMI:
		c.SetNMILine(true)
		c.SetNMILine(false)
	case IRQ:
		c.irqLine = true
	case Reset:
		c.Reset()
	}
}

// SetNMILine drives the NMI line level. The interrupt latches on the
// falling edge.
func (c *CPU) SetNMILine(asserted bool) {
	if c.nmiLine && !asserted {
		c.nmiPending = true
	}
	c.nmiLine = asserted
}

// SetIRQLine drives the IRQ line level.
func (c *CPU) SetIRQLine(asserted bool) {
	c.irqLine = asserted
}

// Step executes one instruction and returns the cycles it consumed,
// including any page-cross or branch penalties. Pending interrupts are
// serviced after the instruction completes.
func (c *CPU) Step() uint64 {
	opcode := c.mem.Read(c.PC)
	op := &opcodeTable[opcode]

	address, pageCrossed := c.resolveOperand(op.mode)

	extra := c.execute(op, address, pageCrossed)
	if pageCrossed && op.pageCycle {
		extra++
	}

	total := uint64(op.cycles + extra)
	total += c.servicePending()
	c.cycles += total

	return total
}

// Cycles returns the cumulative cycle count since power-up.
func (c *CPU) Cycles() uint64 { return c.cycles }

// resolveOperand computes the effective address for mode and advances PC
// past the instruction. The bool reports whether an indexed access
// crossed a page boundary.
func (c *CPU) resolveOperand(mode AddressingMode) (uint16, bool) {
	switch mode {
	case Implied, Accumulator:
		c.PC++
		return 0, false

	case Immediate:
		addr := c.PC + 1
		c.PC += 2
		return addr, false

	case ZeroPage:
		addr := uint16(c.mem.Read(c.PC + 1))
		c.PC += 2
		return addr, false

	case ZeroPageX:
		addr := uint16(c.mem.Read(c.PC+1)+c.X) & 0x00FF
		c.PC += 2
		return addr, false

	case ZeroPageY:
		addr := uint16(c.mem.Read(c.PC+1)+c.Y) & 0x00FF
		c.PC += 2
		return addr, false

	case Relative:
		offset := int8(c.mem.Read(c.PC + 1))
		next := c.PC + 2
		target := uint16(int32(next) + int32(offset))
		c.PC = next
		return target, pageDiffers(next, target)

	case Absolute:
		addr := c.readWord(c.PC + 1)
		c.PC += 3
		return addr, false

	case AbsoluteX:
		base := c.readWord(c.PC + 1)
		addr := base + uint16(c.X)
		c.PC += 3
		return addr, pageDiffers(base, addr)

	case AbsoluteY:
		base := c.readWord(c.PC + 1)
		addr := base + uint16(c.Y)
		c.PC += 3
		return addr, pageDiffers(base, addr)

	case Indirect:
		ptr := c.readWord(c.PC + 1)
		c.PC += 3
		return c.readWordBug(ptr), false

	case IndexedIndirect:
		ptr := c.mem.Read(c.PC+1) + c.X
		lo := uint16(c.mem.Read(uint16(ptr)))
		hi := uint16(c.mem.Read(uint16(ptr + 1)))
		c.PC += 2
		return hi<<8 | lo, false

	case IndirectIndexed:
		ptr := c.mem.Read(c.PC + 1)
		lo := uint16(c.mem.Read(uint16(ptr)))
		hi := uint16(c.mem.Read(uint16(ptr + 1)))
		base := hi<<8 | lo
		addr := base + uint16(c.Y)
		c.PC += 2
		return addr, pageDiffers(base, addr)

	default:
		c.PC++
		return 0, false
	}
}

func pageDiffers(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

func (c *CPU) readWord(address uint16) uint16 {
	lo := uint16(c.mem.Read(address))
	hi := uint16(c.mem.Read(address + 1))
	return hi<<8 | lo
}

// readWordBug reproduces the JMP (indirect) page-wrap defect: the high
// byte is fetched from the start of the pointer's page when the pointer
// sits on a page boundary.
func (c *CPU) readWordBug(ptr uint16) uint16 {
	lo := uint16(c.mem.Read(ptr))
	var hi uint16
	if ptr&0x00FF == 0x00FF {
		hi = uint16(c.mem.Read(ptr & 0xFF00))
	} else {
		hi = uint16(c.mem.Read(ptr + 1))
	}
	return hi<<8 | lo
}

// Stack helpers. The stack pointer wraps within page $01.

func (c *CPU) push(value uint8) {
	c.mem.Write(stackBase+uint16(c.SP), value)
	c.SP--
}

func (c *CPU) pull() uint8 {
	c.SP++
	return c.mem.Read(stackBase + uint16(c.SP))
}

func (c *CPU) pushWord(value uint16) {
	c.push(uint8(value >> 8))
	c.push(uint8(value))
}

func (c *CPU) pullWord() uint16 {
	lo := uint16(c.pull())
	hi := uint16(c.pull())
	return hi<<8 | lo
}

// setZN updates the zero and negative flags from value.
func (c *CPU) setZN(value uint8) {
	c.Z = value == 0
	c.N = value&0x80 != 0
}

// Status packs the flags into their architectural byte layout. The
// unused bit reads as 1.
func (c *CPU) Status() uint8 {
	var s uint8 = flagUnused
	if c.C {
		s |= flagC
	}
	if c.Z {
		s |= flagZ
	}
	if c.I {
		s |= flagI
	}
	if c.D {
		s |= flagD
	}
	if c.B {
		s |= flagB
	}
	if c.V {
		s |= flagV
	}
	if c.N {
		s |= flagN
	}
	return s
}

// SetStatus unpacks a status byte into the flag bits.
func (c *CPU) SetStatus(s uint8) {
	c.C = s&flagC != 0
	c.Z = s&flagZ != 0
	c.I = s&flagI != 0
	c.D = s&flagD != 0
	c.B = s&flagB != 0
	c.V = s&flagV != 0
	c.N = s&flagN != 0
}

// servicePending dispatches latched interrupts at an instruction
// boundary and returns the cycles the entry sequence consumed. NMI wins
// over IRQ and ignores the I flag.
func (c *CPU) servicePending() uint64 {
	if c.nmiPending {
		c.nmiPending = false
		c.serviceInterrupt(nmiVector)
		return interruptCycles
	}
	if c.irqLine && !c.I {
		c.serviceInterrupt(irqVector)
		return interruptCycles
	}
	return 0
}

func (c *CPU) serviceInterrupt(vector uint16) {
	c.pushWord(c.PC)
	// Hardware interrupts push the status with B clear.
	c.push(c.Status() &^ flagB)
	c.I = true

	lo := uint16(c.mem.Read(vector))
	hi := uint16(c.mem.Read(vector + 1))
	c.PC = hi<<8 | lo
}

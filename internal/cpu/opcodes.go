package cpu

// opcode describes one entry of the 256-slot dispatch table. cycles is
// the base cost; pageCycle marks reads that pay one extra cycle when an
// indexed access crosses a page. Branches account for their own
// penalties, so their pageCycle stays false.
type opcode struct {
	name      string
	mode      AddressingMode
	cycles    uint8
	pageCycle bool
}

// opcodeTable covers every opcode, including the undocumented ones. KIL
// slots jam the CPU by re-executing themselves.
var opcodeTable = [256]opcode{
	// 0x00
	{"BRK", Implied, 7, false}, {"ORA", IndexedIndirect, 6, false}, {"KIL", Implied, 2, false}, {"SLO", IndexedIndirect, 8, false},
	{"NOP", ZeroPage, 3, false}, {"ORA", ZeroPage, 3, false}, {"ASL", ZeroPage, 5, false}, {"SLO", ZeroPage, 5, false},
	{"PHP", Implied, 3, false}, {"ORA", Immediate, 2, false}, {"ASL", Accumulator, 2, false}, {"ANC", Immediate, 2, false},
	{"NOP", Absolute, 4, false}, {"ORA", Absolute, 4, false}, {"ASL", Absolute, 6, false}, {"SLO", Absolute, 6, false},
	// 0x10
	{"BPL", Relative, 2, false}, {"ORA", IndirectIndexed, 5, true}, {"KIL", Implied, 2, false}, {"SLO", IndirectIndexed, 8, false},
	{"NOP", ZeroPageX, 4, false}, {"ORA", ZeroPageX, 4, false}, {"ASL", ZeroPageX, 6, false}, {"SLO", ZeroPageX, 6, false},
	{"CLC", Implied, 2, false}, {"ORA", AbsoluteY, 4, true}, {"NOP", Implied, 2, false}, {"SLO", AbsoluteY, 7, false},
	{"NOP", AbsoluteX, 4, true}, {"ORA", AbsoluteX, 4, true}, {"ASL", AbsoluteX, 7, false}, {"SLO", AbsoluteX, 7, false},
	// 0x20
	{"JSR", Absolute, 6, false}, {"AND", IndexedIndirect, 6, false}, {"KIL", Implied, 2, false}, {"RLA", IndexedIndirect, 8, false},
	{"BIT", ZeroPage, 3, false}, {"AND", ZeroPage, 3, false}, {"ROL", ZeroPage, 5, false}, {"RLA", ZeroPage, 5, false},
	{"PLP", Implied, 4, false}, {"AND", Immediate, 2, false}, {"ROL", Accumulator, 2, false}, {"ANC", Immediate, 2, false},
	{"BIT", Absolute, 4, false}, {"AND", Absolute, 4, false}, {"ROL", Absolute, 6, false}, {"RLA", Absolute, 6, false},
	// 0x30
	{"BMI", Relative, 2, false}, {"AND", IndirectIndexed, 5, true}, {"KIL", Implied, 2, false}, {"RLA", IndirectIndexed, 8, false},
	{"NOP", ZeroPageX, 4, false}, {"AND", ZeroPageX, 4, false}, {"ROL", ZeroPageX, 6, false}, {"RLA", ZeroPageX, 6, false},
	{"SEC", Implied, 2, false}, {"AND", AbsoluteY, 4, true}, {"NOP", Implied, 2, false}, {"RLA", AbsoluteY, 7, false},
	{"NOP", AbsoluteX, 4, true}, {"AND", AbsoluteX, 4, true}, {"ROL", AbsoluteX, 7, false}, {"RLA", AbsoluteX, 7, false},
	// 0x40
	{"RTI", Implied, 6, false}, {"EOR", IndexedIndirect, 6, false}, {"KIL", Implied, 2, false}, {"SRE", IndexedIndirect, 8, false},
	{"NOP", ZeroPage, 3, false}, {"EOR", ZeroPage, 3, false}, {"LSR", ZeroPage, 5, false}, {"SRE", ZeroPage, 5, false},
	{"PHA", Implied, 3, false}, {"EOR", Immediate, 2, false}, {"LSR", Accumulator, 2, false}, {"ALR", Immediate, 2, false},
	{"JMP", Absolute, 3, false}, {"EOR", Absolute, 4, false}, {"LSR", Absolute, 6, false}, {"SRE", Absolute, 6, false},
	// 0x50
	{"BVC", Relative, 2, false}, {"EOR", IndirectIndexed, 5, true}, {"KIL", Implied, 2, false}, {"SRE", IndirectIndexed, 8, false},
	{"NOP", ZeroPageX, 4, false}, {"EOR", ZeroPageX, 4, false}, {"LSR", ZeroPageX, 6, false}, {"SRE", ZeroPageX, 6, false},
	{"CLI", Implied, 2, false}, {"EOR", AbsoluteY, 4, true}, {"NOP", Implied, 2, false}, {"SRE", AbsoluteY, 7, false},
	{"NOP", AbsoluteX, 4, true}, {"EOR", AbsoluteX, 4, true}, {"LSR", AbsoluteX, 7, false}, {"SRE", AbsoluteX, 7, false},
	// 0x60
	{"RTS", Implied, 6, false}, {"ADC", IndexedIndirect, 6, false}, {"KIL", Implied, 2, false}, {"RRA", IndexedIndirect, 8, false},
	{"NOP", ZeroPage, 3, false}, {"ADC", ZeroPage, 3, false}, {"ROR", ZeroPage, 5, false}, {"RRA", ZeroPage, 5, false},
	{"PLA", Implied, 4, false}, {"ADC", Immediate, 2, false}, {"ROR", Accumulator, 2, false}, {"ARR", Immediate, 2, false},
	{"JMP", Indirect, 5, false}, {"ADC", Absolute, 4, false}, {"ROR", Absolute, 6, false}, {"RRA", Absolute, 6, false},
	// 0x70
	{"BVS", Relative, 2, false}, {"ADC", IndirectIndexed, 5, true}, {"KIL", Implied, 2, false}, {"RRA", IndirectIndexed, 8, false},
	{"NOP", ZeroPageX, 4, false}, {"ADC", ZeroPageX, 4, false}, {"ROR", ZeroPageX, 6, false}, {"RRA", ZeroPageX, 6, false},
	{"SEI", Implied, 2, false}, {"ADC", AbsoluteY, 4, true}, {"NOP", Implied, 2, false}, {"RRA", AbsoluteY, 7, false},
	{"NOP", AbsoluteX, 4, true}, {"ADC", AbsoluteX, 4, true}, {"ROR", AbsoluteX, 7, false}, {"RRA", AbsoluteX, 7, false},
	// 0x80
	{"NOP", Immediate, 2, false}, {"STA", IndexedIndirect, 6, false}, {"NOP", Immediate, 2, false}, {"SAX", IndexedIndirect, 6, false},
	{"STY", ZeroPage, 3, false}, {"STA", ZeroPage, 3, false}, {"STX", ZeroPage, 3, false}, {"SAX", ZeroPage, 3, false},
	{"DEY", Implied, 2, false}, {"NOP", Immediate, 2, false}, {"TXA", Implied, 2, false}, {"XAA", Immediate, 2, false},
	{"STY", Absolute, 4, false}, {"STA", Absolute, 4, false}, {"STX", Absolute, 4, false}, {"SAX", Absolute, 4, false},
	// 0x90
	{"BCC", Relative, 2, false}, {"STA", IndirectIndexed, 6, false}, {"KIL", Implied, 2, false}, {"AHX", IndirectIndexed, 6, false},
	{"STY", ZeroPageX, 4, false}, {"STA", ZeroPageX, 4, false}, {"STX", ZeroPageY, 4, false}, {"SAX", ZeroPageY, 4, false},
	{"TYA", Implied, 2, false}, {"STA", AbsoluteY, 5, false}, {"TXS", Implied, 2, false}, {"TAS", AbsoluteY, 5, false},
	{"SHY", AbsoluteX, 5, false}, {"STA", AbsoluteX, 5, false}, {"SHX", AbsoluteY, 5, false}, {"AHX", AbsoluteY, 5, false},
	// 0xA0
	{"LDY", Immediate, 2, false}, {"LDA", IndexedIndirect, 6, false}, {"LDX", Immediate, 2, false}, {"LAX", IndexedIndirect, 6, false},
	{"LDY", ZeroPage, 3, false}, {"LDA", ZeroPage, 3, false}, {"LDX", ZeroPage, 3, false}, {"LAX", ZeroPage, 3, false},
	{"TAY", Implied, 2, false}, {"LDA", Immediate, 2, false}, {"TAX", Implied, 2, false}, {"LAX", Immediate, 2, false},
	{"LDY", Absolute, 4, false}, {"LDA", Absolute, 4, false}, {"LDX", Absolute, 4, false}, {"LAX", Absolute, 4, false},
	// 0xB0
	{"BCS", Relative, 2, false}, {"LDA", IndirectIndexed, 5, true}, {"KIL", Implied, 2, false}, {"LAX", IndirectIndexed, 5, true},
	{"LDY", ZeroPageX, 4, false}, {"LDA", ZeroPageX, 4, false}, {"LDX", ZeroPageY, 4, false}, {"LAX", ZeroPageY, 4, false},
	{"CLV", Implied, 2, false}, {"LDA", AbsoluteY, 4, true}, {"TSX", Implied, 2, false}, {"LAS", AbsoluteY, 4, true},
	{"LDY", AbsoluteX, 4, true}, {"LDA", AbsoluteX, 4, true}, {"LDX", AbsoluteY, 4, true}, {"LAX", AbsoluteY, 4, true},
	// 0xC0
	{"CPY", Immediate, 2, false}, {"CMP", IndexedIndirect, 6, false}, {"NOP", Immediate, 2, false}, {"DCP", IndexedIndirect, 8, false},
	{"CPY", ZeroPage, 3, false}, {"CMP", ZeroPage, 3, false}, {"DEC", ZeroPage, 5, false}, {"DCP", ZeroPage, 5, false},
	{"INY", Implied, 2, false}, {"CMP", Immediate, 2, false}, {"DEX", Implied, 2, false}, {"AXS", Immediate, 2, false},
	{"CPY", Absolute, 4, false}, {"CMP", Absolute, 4, false}, {"DEC", Absolute, 6, false}, {"DCP", Absolute, 6, false},
	// 0xD0
	{"BNE", Relative, 2, false}, {"CMP", IndirectIndexed, 5, true}, {"KIL", Implied, 2, false}, {"DCP", IndirectIndexed, 8, false},
	{"NOP", ZeroPageX, 4, false}, {"CMP", ZeroPageX, 4, false}, {"DEC", ZeroPageX, 6, false}, {"DCP", ZeroPageX, 6, false},
	{"CLD", Implied, 2, false}, {"CMP", AbsoluteY, 4, true}, {"NOP", Implied, 2, false}, {"DCP", AbsoluteY, 7, false},
	{"NOP", AbsoluteX, 4, true}, {"CMP", AbsoluteX, 4, true}, {"DEC", AbsoluteX, 7, false}, {"DCP", AbsoluteX, 7, false},
	// 0xE0
	{"CPX", Immediate, 2, false}, {"SBC", IndexedIndirect, 6, false}, {"NOP", Immediate, 2, false}, {"ISB", IndexedIndirect, 8, false},
	{"CPX", ZeroPage, 3, false}, {"SBC", ZeroPage, 3, false}, {"INC", ZeroPage, 5, false}, {"ISB", ZeroPage, 5, false},
	{"INX", Implied, 2, false}, {"SBC", Immediate, 2, false}, {"NOP", Implied, 2, false}, {"SBC", Immediate, 2, false},
	{"CPX", Absolute, 4, false}, {"SBC", Absolute, 4, false}, {"INC", Absolute, 6, false}, {"ISB", Absolute, 6, false},
	// 0xF0
	{"BEQ", Relative, 2, false}, {"SBC", IndirectIndexed, 5, true}, {"KIL", Implied, 2, false}, {"ISB", IndirectIndexed, 8, false},
	{"NOP", ZeroPageX, 4, false}, {"SBC", ZeroPageX, 4, false}, {"INC", ZeroPageX, 6, false}, {"ISB", ZeroPageX, 6, false},
	{"SED", Implied, 2, false}, {"SBC", AbsoluteY, 4, true}, {"NOP", Implied, 2, false}, {"ISB", AbsoluteY, 7, false},
	{"NOP", AbsoluteX, 4, true}, {"SBC", AbsoluteX, 4, true}, {"INC", AbsoluteX, 7, false}, {"ISB", AbsoluteX, 7, false},
}

// execute runs one decoded instruction. address is the resolved operand
// location; for Accumulator mode it is ignored. The return value is the
// branch penalty in cycles, zero for everything else.
func (c *CPU) execute(op *opcode, address uint16, pageCrossed bool) uint8 {
	switch op.name {
	case "ADC":
		c.adc(c.mem.Read(address))
	case "AND":
		c.A &= c.mem.Read(address)
		c.setZN(c.A)
	case "ASL":
		c.rmw(op.mode, address, c.asl)
	case "BCC":
		return c.branch(!c.C, address, pageCrossed)
	case "BCS":
		return c.branch(c.C, address, pageCrossed)
	case "BEQ":
		return c.branch(c.Z, address, pageCrossed)
	case "BIT":
		v := c.mem.Read(address)
		c.Z = c.A&v == 0
		c.V = v&0x40 != 0
		c.N = v&0x80 != 0
	case "BMI":
		return c.branch(c.N, address, pageCrossed)
	case "BNE":
		return c.branch(!c.Z, address, pageCrossed)
	case "BPL":
		return c.branch(!c.N, address, pageCrossed)
	case "BRK":
		// The padding byte after BRK is skipped by the pushed return
		// address.
		c.pushWord(c.PC + 1)
		c.push(c.Status() | flagB)
		c.I = true
		c.PC = c.readWord(irqVector)
	case "BVC":
		return c.branch(!c.V, address, pageCrossed)
	case "BVS":
		return c.branch(c.V, address, pageCrossed)
	case "CLC":
		c.C = false
	case "CLD":
		c.D = false
	case "CLI":
		c.I = false
	case "CLV":
		c.V = false
	case "CMP":
		c.compare(c.A, c.mem.Read(address))
	case "CPX":
		c.compare(c.X, c.mem.Read(address))
	case "CPY":
		c.compare(c.Y, c.mem.Read(address))
	case "DEC":
		v := c.mem.Read(address) - 1
		c.mem.Write(address, v)
		c.setZN(v)
	case "DEX":
		c.X--
		c.setZN(c.X)
	case "DEY":
		c.Y--
		c.setZN(c.Y)
	case "EOR":
		c.A ^= c.mem.Read(address)
		c.setZN(c.A)
	case "INC":
		v := c.mem.Read(address) + 1
		c.mem.Write(address, v)
		c.setZN(v)
	case "INX":
		c.X++
		c.setZN(c.X)
	case "INY":
		c.Y++
		c.setZN(c.Y)
	case "JMP":
		c.PC = address
	case "JSR":
		c.pushWord(c.PC - 1)
		c.PC = address
	case "LDA":
		c.A = c.mem.Read(address)
		c.setZN(c.A)
	case "LDX":
		c.X = c.mem.Read(address)
		c.setZN(c.X)
	case "LDY":
		c.Y = c.mem.Read(address)
		c.setZN(c.Y)
	case "LSR":
		c.rmw(op.mode, address, c.lsr)
	case "NOP":
		// Operand, if any, was fetched and discarded.
	case "ORA":
		c.A |= c.mem.Read(address)
		c.setZN(c.A)
	case "PHA":
		c.push(c.A)
	case "PHP":
		// PHP pushes with B set, like BRK.
		c.push(c.Status() | flagB)
	case "PLA":
		c.A = c.pull()
		c.setZN(c.A)
	case "PLP":
		c.SetStatus(c.pull() &^ flagB)
	case "ROL":
		c.rmw(op.mode, address, c.rol)
	case "ROR":
		c.rmw(op.mode, address, c.ror)
	case "RTI":
		c.SetStatus(c.pull() &^ flagB)
		c.PC = c.pullWord()
	case "RTS":
		c.PC = c.pullWord() + 1
	case "SBC":
		c.adc(c.mem.Read(address) ^ 0xFF)
	case "SEC":
		c.C = true
	case "SED":
		c.D = true
	case "SEI":
		c.I = true
	case "STA":
		c.mem.Write(address, c.A)
	case "STX":
		c.mem.Write(address, c.X)
	case "STY":
		c.mem.Write(address, c.Y)
	case "TAX":
		c.X = c.A
		c.setZN(c.X)
	case "TAY":
		c.Y = c.A
		c.setZN(c.Y)
	case "TSX":
		c.X = c.SP
		c.setZN(c.X)
	case "TXA":
		c.A = c.X
		c.setZN(c.A)
	case "TXS":
		c.SP = c.X
	case "TYA":
		c.A = c.Y
		c.setZN(c.A)

	// Undocumented opcodes. Programs in the wild rely on these, so they
	// behave like the silicon rather than raising errors.
	case "AHX":
		c.mem.Write(address, c.A&c.X&(uint8(address>>8)+1))
	case "ALR":
		c.A &= c.mem.Read(address)
		c.A = c.lsr(c.A)
	case "ANC":
		c.A &= c.mem.Read(address)
		c.setZN(c.A)
		c.C = c.N
	case "ARR":
		v := c.A & c.mem.Read(address)
		result := v >> 1
		if c.C {
			result |= 0x80
		}
		c.A = result
		c.setZN(c.A)
		c.C = c.A&0x40 != 0
		c.V = (c.A>>6)&1 != (c.A>>5)&1
	case "AXS":
		v := c.mem.Read(address)
		t := c.A & c.X
		c.C = t >= v
		c.X = t - v
		c.setZN(c.X)
	case "DCP":
		v := c.mem.Read(address) - 1
		c.mem.Write(address, v)
		c.compare(c.A, v)
	case "ISB":
		v := c.mem.Read(address) + 1
		c.mem.Write(address, v)
		c.adc(v ^ 0xFF)
	case "KIL":
		// Jam: point PC back at this opcode so the core spins here.
		c.PC--
	case "LAS":
		v := c.mem.Read(address) & c.SP
		c.A = v
		c.X = v
		c.SP = v
		c.setZN(v)
	case "LAX":
		v := c.mem.Read(address)
		c.A = v
		c.X = v
		c.setZN(v)
	case "RLA":
		v := c.rol(c.mem.Read(address))
		c.mem.Write(address, v)
		c.A &= v
		c.setZN(c.A)
	case "RRA":
		v := c.ror(c.mem.Read(address))
		c.mem.Write(address, v)
		c.adc(v)
	case "SAX":
		c.mem.Write(address, c.A&c.X)
	case "SHX":
		c.mem.Write(address, c.X&(uint8(address>>8)+1))
	case "SHY":
		c.mem.Write(address, c.Y&(uint8(address>>8)+1))
	case "SLO":
		v := c.asl(c.mem.Read(address))
		c.mem.Write(address, v)
		c.A |= v
		c.setZN(c.A)
	case "SRE":
		v := c.lsr(c.mem.Read(address))
		c.mem.Write(address, v)
		c.A ^= v
		c.setZN(c.A)
	case "TAS":
		c.SP = c.A & c.X
		c.mem.Write(address, c.SP&(uint8(address>>8)+1))
	case "XAA":
		c.A = c.X & c.mem.Read(address)
		c.setZN(c.A)
	}
	return 0
}

// adc implements the shared add path. SBC feeds it the operand's
// complement.
func (c *CPU) adc(value uint8) {
	a := c.A
	sum := uint16(a) + uint16(value)
	if c.C {
		sum++
	}
	c.A = uint8(sum)
	c.C = sum > 0xFF
	c.V = (a^value)&0x80 == 0 && (a^c.A)&0x80 != 0
	c.setZN(c.A)
}

func (c *CPU) compare(register, value uint8) {
	c.C = register >= value
	c.setZN(register - value)
}

// branch applies the target when taken and returns the cycle penalty:
// one for taking the branch, one more when the target is on another
// page.
func (c *CPU) branch(taken bool, target uint16, pageCrossed bool) uint8 {
	if !taken {
		return 0
	}
	c.PC = target
	if pageCrossed {
		return 2
	}
	return 1
}

// rmw applies a shift helper to either the accumulator or a memory
// location.
func (c *CPU) rmw(mode AddressingMode, address uint16, f func(uint8) uint8) {
	if mode == Accumulator {
		c.A = f(c.A)
		return
	}
	c.mem.Write(address, f(c.mem.Read(address)))
}

func (c *CPU) asl(v uint8) uint8 {
	c.C = v&0x80 != 0
	v <<= 1
	c.setZN(v)
	return v
}

func (c *CPU) lsr(v uint8) uint8 {
	c.C = v&0x01 != 0
	v >>= 1
	c.setZN(v)
	return v
}

func (c *CPU) rol(v uint8) uint8 {
	carry := c.C
	c.C = v&0x80 != 0
	v <<= 1
	if carry {
		v |= 0x01
	}
	c.setZN(v)
	return v
}

func (c *CPU) ror(v uint8) uint8 {
	carry := c.C
	c.C = v&0x01 != 0
	v >>= 1
	if carry {
		v |= 0x80
	}
	c.setZN(v)
	return v
}

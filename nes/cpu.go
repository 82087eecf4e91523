package nes

// Status flag bit positions within CPU.P.
const (
	FlagC byte = 1 << iota // Carry
	FlagZ                  // Zero
	FlagI                  // Interrupt disable
	FlagD                  // Decimal (unused on NES hardware)
	FlagB                  // Break (stack-copy only, never a real bit in P)
	FlagU                  // Unused, always 1 outside the stack
	FlagV                  // Overflow
	FlagN                  // Negative
)

const (
	stackBase = 0x0100
	nmiVector = 0xFFFA
	resetVec  = 0xFFFC
)

// CPU is a 6502 core: registers, flags, the cycle counter, and the opcode
// decoder/executor. It is driven by Console one instruction at a time; it
// never reaches into the PPU directly, only through the Bus passed to Step.
type CPU struct {
	A, X, Y byte
	SP      byte
	P       byte
	PC      uint16
	Cycles  uint64

	log Logger

	// Trace, if non-nil, receives one disassembled line per instruction
	// immediately before it executes — the hook for nestest-style trace
	// debugging.
	Trace func(line string)
}

// NewCPU returns a CPU in its post-power-up state. Reset still needs to run
// against a Bus to fetch the reset vector into PC.
func NewCPU(log Logger) *CPU {
	if log == nil {
		log = nopLogger{}
	}
	return &CPU{P: FlagI | FlagU, SP: 0xFD, log: log}
}

// Reset performs the 6502 power-up sequence: registers and flags to their
// fixed values, the APU/IO registers silenced, then PC loaded from the
// reset vector.
func (c *CPU) Reset(bus *Bus) {
	c.A, c.X, c.Y = 0, 0, 0
	c.P = FlagI | FlagU
	c.SP = 0xFD

	bus.Write(0x4017, 0)
	bus.Write(0x4015, 0)
	for addr := uint16(0x4000); addr <= 0x400F; addr++ {
		bus.Write(addr, 0)
	}

	c.PC = bus.ReadWord(resetVec)
}

func (c *CPU) setZN(v byte) {
	if v == 0 {
		c.P |= FlagZ
	} else {
		c.P &^= FlagZ
	}
	if v&0x80 != 0 {
		c.P |= FlagN
	} else {
		c.P &^= FlagN
	}
}

func (c *CPU) setFlag(flag byte, on bool) {
	if on {
		c.P |= flag
	} else {
		c.P &^= flag
	}
}

func (c *CPU) flag(flag byte) bool { return c.P&flag != 0 }

func (c *CPU) push(bus *Bus, v byte) {
	bus.Write(stackBase+uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pop(bus *Bus) byte {
	c.SP++
	return bus.Read(stackBase + uint16(c.SP))
}

func (c *CPU) pushWord(bus *Bus, v uint16) {
	c.push(bus, byte(v>>8))
	c.push(bus, byte(v))
}

func (c *CPU) popWord(bus *Bus) uint16 {
	lo := uint16(c.pop(bus))
	hi := uint16(c.pop(bus))
	return hi<<8 | lo
}

// HandleNMI services the non-maskable interrupt edge the PPU raises at
// VBlank: push PC and P (B clear, U set), set I, and vector through $FFFA.
// PPU.TakeNMI already folds in the PPUCTRL bit 7 enable check, so
// Console.stepInstruction only needs to call HandleNMI when it returns true.
func (c *CPU) HandleNMI(bus *Bus) {
	c.pushWord(bus, c.PC)
	c.push(bus, (c.P|FlagU)&^FlagB)
	c.P |= FlagI
	c.PC = bus.ReadWord(nmiVector)
	c.Cycles += 7
}

// Step decodes and executes one instruction and returns the number of
// cycles it consumed: base table cost plus any page-cross penalty, branches
// additionally charged for being taken. Unrecognized opcodes run as a
// one-byte, two-cycle NOP; no opcode halts execution.
func (c *CPU) Step(bus *Bus) uint64 {
	startCycles := c.Cycles
	startPC := c.PC

	op := bus.Read(c.PC)
	info := opcodes[op]
	if info.mnemonic == "" {
		c.log.Warningf("illegal opcode %#02x at %#04x treated as NOP", op, c.PC)
		info = opcode{mnemonic: "NOP", mode: ModeImplied, cycles: 2}
	}

	if c.Trace != nil {
		c.Trace(disassemble(bus, startPC, op, info, c.A, c.X, c.Y, c.P, c.SP, c.Cycles))
	}

	c.PC++
	addr, pageCrossed := c.resolveOperand(bus, info.mode)

	cycles := uint64(info.cycles)
	if pageCrossed && info.pageCross {
		cycles++
	}

	branchCycles := c.execute(bus, info.mnemonic, info.mode, addr)
	cycles += branchCycles

	c.Cycles += cycles
	return c.Cycles - startCycles
}

// resolveOperand advances PC past the instruction's operand bytes and
// returns the effective address the instruction operates on, plus whether
// indexing crossed a page boundary. For Immediate mode the "address" is the
// operand byte's own location, so a plain bus.Read(addr) fetches it;
// Implied/Accumulator return no usable address.
func (c *CPU) resolveOperand(bus *Bus, mode AddressingMode) (addr uint16, pageCrossed bool) {
	switch mode {
	case ModeImplied, ModeAccumulator:
		return 0, false

	case ModeImmediate:
		addr = c.PC
		c.PC++
		return addr, false

	case ModeZeroPage:
		addr = uint16(bus.Read(c.PC))
		c.PC++
		return addr, false

	case ModeZeroPageX:
		base := bus.Read(c.PC)
		c.PC++
		return uint16(base + c.X), false

	case ModeZeroPageY:
		base := bus.Read(c.PC)
		c.PC++
		return uint16(base + c.Y), false

	case ModeAbsolute:
		addr = c.readOperandWord(bus)
		return addr, false

	case ModeAbsoluteX:
		base := c.readOperandWord(bus)
		addr = base + uint16(c.X)
		return addr, pageCross(base, addr)

	case ModeAbsoluteY:
		base := c.readOperandWord(bus)
		addr = base + uint16(c.Y)
		return addr, pageCross(base, addr)

	case ModeRelative:
		offset := int8(bus.Read(c.PC))
		c.PC++
		addr = uint16(int32(c.PC) + int32(offset))
		return addr, false

	case ModeIndirect:
		ptr := c.readOperandWord(bus)
		return c.readIndirectWrapped(bus, ptr), false

	case ModeIndirectX:
		zp := bus.Read(c.PC)
		c.PC++
		zp += c.X
		lo := uint16(bus.Read(uint16(zp)))
		hi := uint16(bus.Read(uint16(zp + 1)))
		return hi<<8 | lo, false

	case ModeIndirectY:
		zp := bus.Read(c.PC)
		c.PC++
		lo := uint16(bus.Read(uint16(zp)))
		hi := uint16(bus.Read(uint16(zp + 1)))
		base := hi<<8 | lo
		addr = base + uint16(c.Y)
		return addr, pageCross(base, addr)
	}
	return 0, false
}

func (c *CPU) readOperandWord(bus *Bus) uint16 {
	lo := uint16(bus.Read(c.PC))
	c.PC++
	hi := uint16(bus.Read(c.PC))
	c.PC++
	return hi<<8 | lo
}

// readIndirectWrapped implements the canonical JMP ($addr) bug: when the
// pointer's low byte is $FF, the high byte of the target is fetched from
// the start of the same page instead of crossing into the next one.
func (c *CPU) readIndirectWrapped(bus *Bus, ptr uint16) uint16 {
	lo := bus.Read(ptr)
	var hiAddr uint16
	if byte(ptr) == 0xFF {
		hiAddr = ptr & 0xFF00
	} else {
		hiAddr = ptr + 1
	}
	hi := bus.Read(hiAddr)
	return uint16(hi)<<8 | uint16(lo)
}

func pageCross(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

// execute dispatches by mnemonic and returns any additional cycles beyond
// the opcode table's base figure (only branches, which add one cycle when
// taken and a further one on a page cross).
func (c *CPU) execute(bus *Bus, mnemonic string, mode AddressingMode, addr uint16) uint64 {
	switch mnemonic {
	case "NOP":
		// Operand already consumed by resolveOperand; official and
		// unofficial NOPs alike produce no architectural change.

	case "LDA":
		c.A = bus.Read(addr)
		c.setZN(c.A)
	case "LDX":
		c.X = bus.Read(addr)
		c.setZN(c.X)
	case "LDY":
		c.Y = bus.Read(addr)
		c.setZN(c.Y)
	case "STA":
		bus.Write(addr, c.A)
	case "STX":
		bus.Write(addr, c.X)
	case "STY":
		bus.Write(addr, c.Y)

	case "TAX":
		c.X = c.A
		c.setZN(c.X)
	case "TAY":
		c.Y = c.A
		c.setZN(c.Y)
	case "TXA":
		c.A = c.X
		c.setZN(c.A)
	case "TYA":
		c.A = c.Y
		c.setZN(c.A)
	case "TSX":
		c.X = c.SP
		c.setZN(c.X)
	case "TXS":
		c.SP = c.X

	case "PHA":
		c.push(bus, c.A)
	case "PHP":
		c.push(bus, c.P|FlagU|FlagB)
	case "PLA":
		c.A = c.pop(bus)
		c.setZN(c.A)
	case "PLP":
		c.P = (c.pop(bus) &^ FlagB) | FlagU

	case "AND":
		c.A &= bus.Read(addr)
		c.setZN(c.A)
	case "ORA":
		c.A |= bus.Read(addr)
		c.setZN(c.A)
	case "EOR":
		c.A ^= bus.Read(addr)
		c.setZN(c.A)
	case "BIT":
		v := bus.Read(addr)
		c.setFlag(FlagZ, c.A&v == 0)
		c.setFlag(FlagV, v&0x40 != 0)
		c.setFlag(FlagN, v&0x80 != 0)

	case "ADC":
		c.adc(bus.Read(addr))
	case "SBC":
		c.adc(bus.Read(addr) ^ 0xFF)

	case "CMP":
		c.compare(c.A, bus.Read(addr))
	case "CPX":
		c.compare(c.X, bus.Read(addr))
	case "CPY":
		c.compare(c.Y, bus.Read(addr))

	case "INC":
		v := bus.Read(addr) + 1
		bus.Write(addr, v)
		c.setZN(v)
	case "DEC":
		v := bus.Read(addr) - 1
		bus.Write(addr, v)
		c.setZN(v)
	case "INX":
		c.X++
		c.setZN(c.X)
	case "INY":
		c.Y++
		c.setZN(c.Y)
	case "DEX":
		c.X--
		c.setZN(c.X)
	case "DEY":
		c.Y--
		c.setZN(c.Y)

	case "ASL":
		c.shift(bus, mode, addr, true, false)
	case "LSR":
		c.shift(bus, mode, addr, false, false)
	case "ROL":
		c.shift(bus, mode, addr, true, true)
	case "ROR":
		c.shift(bus, mode, addr, false, true)

	case "JMP":
		c.PC = addr
	case "JSR":
		c.pushWord(bus, c.PC-1)
		c.PC = addr
	case "RTS":
		c.PC = c.popWord(bus) + 1
	case "RTI":
		c.P = (c.pop(bus) &^ FlagB) | FlagU
		c.PC = c.popWord(bus)
	case "BRK":
		// Vectors through $FFFA, the NMI vector, not the conventional $FFFE
		// IRQ/BRK vector — this is bEMU's own quirk, carried forward
		// faithfully rather than silently "corrected" to standard hardware.
		c.pushWord(bus, c.PC+1)
		c.push(bus, c.P|FlagU|FlagB)
		c.P |= FlagI
		c.PC = bus.ReadWord(nmiVector)

	case "CLC":
		c.setFlag(FlagC, false)
	case "SEC":
		c.setFlag(FlagC, true)
	case "CLI":
		c.setFlag(FlagI, false)
	case "SEI":
		c.setFlag(FlagI, true)
	case "CLD":
		c.setFlag(FlagD, false)
	case "SED":
		c.setFlag(FlagD, true)
	case "CLV":
		c.setFlag(FlagV, false)

	case "BPL":
		return c.branch(!c.flag(FlagN), addr)
	case "BMI":
		return c.branch(c.flag(FlagN), addr)
	case "BVC":
		return c.branch(!c.flag(FlagV), addr)
	case "BVS":
		return c.branch(c.flag(FlagV), addr)
	case "BCC":
		return c.branch(!c.flag(FlagC), addr)
	case "BCS":
		return c.branch(c.flag(FlagC), addr)
	case "BNE":
		return c.branch(!c.flag(FlagZ), addr)
	case "BEQ":
		return c.branch(c.flag(FlagZ), addr)
	}
	return 0
}

// adc is the shared ADC/SBC core: SBC calls it with the operand's bitwise
// complement, which turns subtraction into the same carry-propagating
// addition.
func (c *CPU) adc(operand byte) {
	carryIn := uint16(0)
	if c.flag(FlagC) {
		carryIn = 1
	}
	sum := uint16(c.A) + uint16(operand) + carryIn
	result := byte(sum)

	c.setFlag(FlagC, sum > 0xFF)
	c.setFlag(FlagV, (c.A^result)&(operand^result)&0x80 != 0)
	c.A = result
	c.setZN(c.A)
}

func (c *CPU) compare(reg, operand byte) {
	c.setFlag(FlagC, reg >= operand)
	c.setZN(reg - operand)
}

func (c *CPU) shift(bus *Bus, mode AddressingMode, addr uint16, left, rotate bool) {
	var v byte
	if mode == ModeAccumulator {
		v = c.A
	} else {
		v = bus.Read(addr)
	}

	var carryOut bool
	var result byte
	carryIn := c.flag(FlagC)
	if left {
		carryOut = v&0x80 != 0
		result = v << 1
		if rotate && carryIn {
			result |= 0x01
		}
	} else {
		carryOut = v&0x01 != 0
		result = v >> 1
		if rotate && carryIn {
			result |= 0x80
		}
	}

	c.setFlag(FlagC, carryOut)
	c.setZN(result)

	if mode == ModeAccumulator {
		c.A = result
	} else {
		bus.Write(addr, result)
	}
}

// branch implements the shared shape of the eight conditional branches: no
// extra cycles if not taken, +1 if taken, +1 more if the branch crosses a
// page boundary.
func (c *CPU) branch(taken bool, target uint16) uint64 {
	if !taken {
		return 0
	}
	cycles := uint64(1)
	if pageCross(c.PC, target) {
		cycles++
	}
	c.PC = target
	return cycles
}

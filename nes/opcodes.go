package nes

// AddressingMode names one of the 6502's operand-fetch strategies.
// Instruction size in bytes follows directly from the mode, so the opcode
// table below doesn't carry it as a separate field.
type AddressingMode int

const (
	ModeImplied AddressingMode = iota
	ModeAccumulator
	ModeImmediate
	ModeZeroPage
	ModeZeroPageX
	ModeZeroPageY
	ModeAbsolute
	ModeAbsoluteX
	ModeAbsoluteY
	ModeRelative
	ModeIndirect
	ModeIndirectX
	ModeIndirectY
)

// Size returns the instruction length in bytes (opcode + operand) implied
// by the addressing mode.
func (m AddressingMode) Size() byte {
	switch m {
	case ModeImplied, ModeAccumulator:
		return 1
	case ModeAbsolute, ModeAbsoluteX, ModeAbsoluteY, ModeIndirect:
		return 3
	default:
		return 2
	}
}

// opcode is one row of the decode table: the mnemonic driving execute's
// dispatch, the addressing mode, the base cycle count, and whether the
// addressing mode can add the one-cycle page-cross penalty.
type opcode struct {
	mnemonic  string
	mode      AddressingMode
	cycles    byte
	pageCross bool
}

// opcodes is the 6502 decode table: the 151 official instructions plus the
// 23 canonical single- and multi-byte unofficial NOPs. Every other slot is
// the zero value and is treated by Step as a one-byte, two-cycle NOP —
// unknown opcodes never halt execution.
//
// Cycle counts for the NOP group use the canonical 2-4 cycle figures for
// their addressing mode rather than a flat single cycle.
var opcodes = buildOpcodeTable()

func buildOpcodeTable() [256]opcode {
	var t [256]opcode

	set := func(op byte, mnemonic string, mode AddressingMode, cycles byte, pageCross bool) {
		t[op] = opcode{mnemonic: mnemonic, mode: mode, cycles: cycles, pageCross: pageCross}
	}

	set(0x00, "BRK", ModeImplied, 7, false)
	set(0x01, "ORA", ModeIndirectX, 6, false)
	set(0x05, "ORA", ModeZeroPage, 3, false)
	set(0x06, "ASL", ModeZeroPage, 5, false)
	set(0x08, "PHP", ModeImplied, 3, false)
	set(0x09, "ORA", ModeImmediate, 2, false)
	set(0x0A, "ASL", ModeAccumulator, 2, false)
	set(0x0D, "ORA", ModeAbsolute, 4, false)
	set(0x0E, "ASL", ModeAbsolute, 6, false)

	set(0x10, "BPL", ModeRelative, 2, true)
	set(0x11, "ORA", ModeIndirectY, 5, true)
	set(0x15, "ORA", ModeZeroPageX, 4, false)
	set(0x16, "ASL", ModeZeroPageX, 6, false)
	set(0x18, "CLC", ModeImplied, 2, false)
	set(0x19, "ORA", ModeAbsoluteY, 4, true)
	set(0x1D, "ORA", ModeAbsoluteX, 4, true)
	set(0x1E, "ASL", ModeAbsoluteX, 7, false)

	set(0x20, "JSR", ModeAbsolute, 6, false)
	set(0x21, "AND", ModeIndirectX, 6, false)
	set(0x24, "BIT", ModeZeroPage, 3, false)
	set(0x25, "AND", ModeZeroPage, 3, false)
	set(0x26, "ROL", ModeZeroPage, 5, false)
	set(0x28, "PLP", ModeImplied, 4, false)
	set(0x29, "AND", ModeImmediate, 2, false)
	set(0x2A, "ROL", ModeAccumulator, 2, false)
	set(0x2C, "BIT", ModeAbsolute, 4, false)
	set(0x2D, "AND", ModeAbsolute, 4, false)
	set(0x2E, "ROL", ModeAbsolute, 6, false)

	set(0x30, "BMI", ModeRelative, 2, true)
	set(0x31, "AND", ModeIndirectY, 5, true)
	set(0x35, "AND", ModeZeroPageX, 4, false)
	set(0x36, "ROL", ModeZeroPageX, 6, false)
	set(0x38, "SEC", ModeImplied, 2, false)
	set(0x39, "AND", ModeAbsoluteY, 4, true)
	set(0x3D, "AND", ModeAbsoluteX, 4, true)
	set(0x3E, "ROL", ModeAbsoluteX, 7, false)

	set(0x40, "RTI", ModeImplied, 6, false)
	set(0x41, "EOR", ModeIndirectX, 6, false)
	set(0x45, "EOR", ModeZeroPage, 3, false)
	set(0x46, "LSR", ModeZeroPage, 5, false)
	set(0x48, "PHA", ModeImplied, 3, false)
	set(0x49, "EOR", ModeImmediate, 2, false)
	set(0x4A, "LSR", ModeAccumulator, 2, false)
	set(0x4C, "JMP", ModeAbsolute, 3, false)
	set(0x4D, "EOR", ModeAbsolute, 4, false)
	set(0x4E, "LSR", ModeAbsolute, 6, false)

	set(0x50, "BVC", ModeRelative, 2, true)
	set(0x51, "EOR", ModeIndirectY, 5, true)
	set(0x55, "EOR", ModeZeroPageX, 4, false)
	set(0x56, "LSR", ModeZeroPageX, 6, false)
	set(0x58, "CLI", ModeImplied, 2, false)
	set(0x59, "EOR", ModeAbsoluteY, 4, true)
	set(0x5D, "EOR", ModeAbsoluteX, 4, true)
	set(0x5E, "LSR", ModeAbsoluteX, 7, false)

	set(0x60, "RTS", ModeImplied, 6, false)
	set(0x61, "ADC", ModeIndirectX, 6, false)
	set(0x65, "ADC", ModeZeroPage, 3, false)
	set(0x66, "ROR", ModeZeroPage, 5, false)
	set(0x68, "PLA", ModeImplied, 4, false)
	set(0x69, "ADC", ModeImmediate, 2, false)
	set(0x6A, "ROR", ModeAccumulator, 2, false)
	set(0x6C, "JMP", ModeIndirect, 5, false)
	set(0x6D, "ADC", ModeAbsolute, 4, false)
	set(0x6E, "ROR", ModeAbsolute, 6, false)

	set(0x70, "BVS", ModeRelative, 2, true)
	set(0x71, "ADC", ModeIndirectY, 5, true)
	set(0x75, "ADC", ModeZeroPageX, 4, false)
	set(0x76, "ROR", ModeZeroPageX, 6, false)
	set(0x78, "SEI", ModeImplied, 2, false)
	set(0x79, "ADC", ModeAbsoluteY, 4, true)
	set(0x7D, "ADC", ModeAbsoluteX, 4, true)
	set(0x7E, "ROR", ModeAbsoluteX, 7, false)

	set(0x81, "STA", ModeIndirectX, 6, false)
	set(0x84, "STY", ModeZeroPage, 3, false)
	set(0x85, "STA", ModeZeroPage, 3, false)
	set(0x86, "STX", ModeZeroPage, 3, false)
	set(0x88, "DEY", ModeImplied, 2, false)
	set(0x8A, "TXA", ModeImplied, 2, false)
	set(0x8C, "STY", ModeAbsolute, 4, false)
	set(0x8D, "STA", ModeAbsolute, 4, false)
	set(0x8E, "STX", ModeAbsolute, 4, false)

	set(0x90, "BCC", ModeRelative, 2, true)
	set(0x91, "STA", ModeIndirectY, 6, false)
	set(0x94, "STY", ModeZeroPageX, 4, false)
	set(0x95, "STA", ModeZeroPageX, 4, false)
	set(0x96, "STX", ModeZeroPageY, 4, false)
	set(0x98, "TYA", ModeImplied, 2, false)
	set(0x99, "STA", ModeAbsoluteY, 5, false)
	set(0x9A, "TXS", ModeImplied, 2, false)
	set(0x9D, "STA", ModeAbsoluteX, 5, false)

	set(0xA0, "LDY", ModeImmediate, 2, false)
	set(0xA1, "LDA", ModeIndirectX, 6, false)
	set(0xA2, "LDX", ModeImmediate, 2, false)
	set(0xA4, "LDY", ModeZeroPage, 3, false)
	set(0xA5, "LDA", ModeZeroPage, 3, false)
	set(0xA6, "LDX", ModeZeroPage, 3, false)
	set(0xA8, "TAY", ModeImplied, 2, false)
	set(0xA9, "LDA", ModeImmediate, 2, false)
	set(0xAA, "TAX", ModeImplied, 2, false)
	set(0xAC, "LDY", ModeAbsolute, 4, false)
	set(0xAD, "LDA", ModeAbsolute, 4, false)
	set(0xAE, "LDX", ModeAbsolute, 4, false)

	set(0xB0, "BCS", ModeRelative, 2, true)
	set(0xB1, "LDA", ModeIndirectY, 5, true)
	set(0xB4, "LDY", ModeZeroPageX, 4, false)
	set(0xB5, "LDA", ModeZeroPageX, 4, false)
	set(0xB6, "LDX", ModeZeroPageY, 4, false)
	set(0xB8, "CLV", ModeImplied, 2, false)
	set(0xB9, "LDA", ModeAbsoluteY, 4, true)
	set(0xBA, "TSX", ModeImplied, 2, false)
	set(0xBC, "LDY", ModeAbsoluteX, 4, true)
	set(0xBD, "LDA", ModeAbsoluteX, 4, true)
	set(0xBE, "LDX", ModeAbsoluteY, 4, true)

	set(0xC0, "CPY", ModeImmediate, 2, false)
	set(0xC1, "CMP", ModeIndirectX, 6, false)
	set(0xC4, "CPY", ModeZeroPage, 3, false)
	set(0xC5, "CMP", ModeZeroPage, 3, false)
	set(0xC6, "DEC", ModeZeroPage, 5, false)
	set(0xC8, "INY", ModeImplied, 2, false)
	set(0xC9, "CMP", ModeImmediate, 2, false)
	set(0xCA, "DEX", ModeImplied, 2, false)
	set(0xCC, "CPY", ModeAbsolute, 4, false)
	set(0xCD, "CMP", ModeAbsolute, 4, false)
	set(0xCE, "DEC", ModeAbsolute, 6, false)

	set(0xD0, "BNE", ModeRelative, 2, true)
	set(0xD1, "CMP", ModeIndirectY, 5, true)
	set(0xD5, "CMP", ModeZeroPageX, 4, false)
	set(0xD6, "DEC", ModeZeroPageX, 6, false)
	set(0xD8, "CLD", ModeImplied, 2, false)
	set(0xD9, "CMP", ModeAbsoluteY, 4, true)
	set(0xDD, "CMP", ModeAbsoluteX, 4, true)
	set(0xDE, "DEC", ModeAbsoluteX, 7, false)

	set(0xE0, "CPX", ModeImmediate, 2, false)
	set(0xE1, "SBC", ModeIndirectX, 6, false)
	set(0xE4, "CPX", ModeZeroPage, 3, false)
	set(0xE5, "SBC", ModeZeroPage, 3, false)
	set(0xE6, "INC", ModeZeroPage, 5, false)
	set(0xE8, "INX", ModeImplied, 2, false)
	set(0xE9, "SBC", ModeImmediate, 2, false)
	set(0xEA, "NOP", ModeImplied, 2, false)
	set(0xEC, "CPX", ModeAbsolute, 4, false)
	set(0xED, "SBC", ModeAbsolute, 4, false)
	set(0xEE, "INC", ModeAbsolute, 6, false)

	set(0xF0, "BEQ", ModeRelative, 2, true)
	set(0xF1, "SBC", ModeIndirectY, 5, true)
	set(0xF5, "SBC", ModeZeroPageX, 4, false)
	set(0xF6, "INC", ModeZeroPageX, 6, false)
	set(0xF8, "SED", ModeImplied, 2, false)
	set(0xF9, "SBC", ModeAbsoluteY, 4, true)
	set(0xFD, "SBC", ModeAbsoluteX, 4, true)
	set(0xFE, "INC", ModeAbsoluteX, 7, false)

	// Unofficial NOPs: decoded with the listed addressing mode purely to
	// advance PC and consume the right number of cycles.
	for _, op := range []byte{0x04, 0x44, 0x64} {
		set(op, "NOP", ModeZeroPage, 3, false)
	}
	set(0x0C, "NOP", ModeAbsolute, 4, false)
	for _, op := range []byte{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		set(op, "NOP", ModeZeroPageX, 4, false)
	}
	for _, op := range []byte{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		set(op, "NOP", ModeImplied, 2, false)
	}
	for _, op := range []byte{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		set(op, "NOP", ModeAbsoluteX, 4, true)
	}
	set(0x80, "NOP", ModeImmediate, 2, false)

	return t
}

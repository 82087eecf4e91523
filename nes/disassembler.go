package nes

import (
	"fmt"
	"strings"
)

// addressingFormats mirrors the nestest-log convention for rendering an
// operand: absolute/zero-page modes print the raw operand value, Relative
// prints the already-resolved branch target, Accumulator prints "A".
var addressingFormats = map[AddressingMode]string{
	ModeImmediate:   "#$%02X",
	ModeZeroPage:    "$%02X",
	ModeZeroPageX:   "$%02X,X",
	ModeZeroPageY:   "$%02X,Y",
	ModeAbsolute:    "$%04X",
	ModeAbsoluteX:   "$%04X,X",
	ModeAbsoluteY:   "$%04X,Y",
	ModeIndirect:    "($%04X)",
	ModeIndirectX:   "($%02X,X)",
	ModeIndirectY:   "($%02X),Y",
	ModeRelative:    "$%04X",
	ModeAccumulator: "A",
	ModeImplied:     "",
}

// DisassembleAt decodes and renders one trace line starting at pc, without
// requiring the caller to know about the internal opcode table — this is
// the entry point cmd/nes's -d mode uses to walk PRG-ROM linearly. It
// returns the instruction's size in bytes alongside the line so the caller
// can advance pc.
func DisassembleAt(bus *Bus, pc uint16, a, x, y, p, sp byte, cycles uint64) (line string, size byte) {
	op := bus.Read(pc)
	info := opcodes[op]
	if info.mnemonic == "" {
		info = opcode{mnemonic: "NOP", mode: ModeImplied, cycles: 2}
	}
	return disassemble(bus, pc, op, info, a, x, y, p, sp, cycles), info.mode.Size()
}

// disassemble renders one nestest-style trace line: address, raw opcode
// bytes, mnemonic and operand, then the register/cycle dump. It is called
// from CPU.Step just before the instruction executes, so it reads the
// operand bytes straight off the bus at pc+1/pc+2 rather than threading
// them through from the decoder.
func disassemble(bus *Bus, pc uint16, op byte, info opcode, a, x, y, p, sp byte, cycles uint64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%04X  ", pc)

	switch info.mode.Size() {
	case 1:
		fmt.Fprintf(&b, "%02X      ", op)
	case 2:
		fmt.Fprintf(&b, "%02X %02X   ", op, bus.Read(pc+1))
	case 3:
		fmt.Fprintf(&b, "%02X %02X %02X ", op, bus.Read(pc+1), bus.Read(pc+2))
	}

	fmt.Fprintf(&b, "%s ", info.mnemonic)

	switch info.mode {
	case ModeImplied:
	case ModeAccumulator:
		b.WriteString("A")
	case ModeRelative:
		offset := int8(bus.Read(pc + 1))
		target := uint16(int32(pc+2) + int32(offset))
		fmt.Fprintf(&b, addressingFormats[ModeRelative], target)
	default:
		var arg uint16
		switch info.mode.Size() {
		case 2:
			arg = uint16(bus.Read(pc + 1))
		case 3:
			arg = uint16(bus.Read(pc+1)) | uint16(bus.Read(pc+2))<<8
		}
		fmt.Fprintf(&b, addressingFormats[info.mode], arg)
	}

	for b.Len() < 48 {
		b.WriteByte(' ')
	}

	fmt.Fprintf(&b, "A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d", a, x, y, p, sp, cycles)
	return b.String()
}

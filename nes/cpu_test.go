package nes

import "testing"

func newTestCPU() (*CPU, *Bus, *Cartridge) {
	cart := &Cartridge{PRG: make([]byte, 0x8000), CHR: make([]byte, chrBankSize)}
	ppu := NewPPU(cart, nil, nil)
	bus := newBus(cart, ppu, newController(nil), newController(nil), nil)
	cpu := NewCPU(nil)
	return cpu, bus, cart
}

// loadProgram writes bytes starting at $8000 and points the reset vector
// at the start of them, then resets the CPU so PC begins there.
func loadProgram(cpu *CPU, bus *Bus, cart *Cartridge, program []byte) {
	copy(cart.PRG, program)
	cart.PRG[0x7FFC] = 0x00
	cart.PRG[0x7FFD] = 0x80
	cpu.Reset(bus)
}

func TestCPU_Reset_PowerUpState(t *testing.T) {
	cpu, bus, cart := newTestCPU()
	loadProgram(cpu, bus, cart, nil)

	if cpu.A != 0 || cpu.X != 0 || cpu.Y != 0 {
		t.Errorf("registers not zeroed: A=%#02x X=%#02x Y=%#02x", cpu.A, cpu.X, cpu.Y)
	}
	if cpu.SP != 0xFD {
		t.Errorf("SP = %#02x, want 0xFD", cpu.SP)
	}
	if cpu.P != FlagI|FlagU {
		t.Errorf("P = %#02x, want FlagI|FlagU", cpu.P)
	}
	if cpu.PC != 0x8000 {
		t.Errorf("PC = %#04x, want 0x8000", cpu.PC)
	}
}

func TestCPU_LDA_SetsZeroFlag_AndBEQBranches(t *testing.T) {
	cpu, bus, cart := newTestCPU()
	// LDA #$00 ; BEQ +2 ; LDX #$FF (skipped) ; LDY #$01
	loadProgram(cpu, bus, cart, []byte{0xA9, 0x00, 0xF0, 0x02, 0xA2, 0xFF, 0xA0, 0x01})

	cpu.Step(bus) // LDA
	if !cpu.flag(FlagZ) {
		t.Fatal("Z flag not set after LDA #$00")
	}

	cpu.Step(bus) // BEQ, taken
	if cpu.PC != 0x8006 {
		t.Fatalf("PC after taken BEQ = %#04x, want 0x8006 (LDX skipped)", cpu.PC)
	}

	cpu.Step(bus) // LDY #$01
	if cpu.Y != 0x01 {
		t.Errorf("Y = %#02x, want 0x01 (LDX should have been skipped)", cpu.Y)
	}
	if cpu.X != 0 {
		t.Errorf("X = %#02x, want 0 (LDX #$FF should never have run)", cpu.X)
	}
}

func TestCPU_BEQ_NotTaken(t *testing.T) {
	cpu, bus, cart := newTestCPU()
	// LDA #$01 ; BNE +2 would be taken; use BEQ instead, which must not be.
	loadProgram(cpu, bus, cart, []byte{0xA9, 0x01, 0xF0, 0x02, 0xA2, 0xFF})
	cpu.Step(bus)
	cpu.Step(bus)
	if cpu.PC != 0x8004 {
		t.Fatalf("PC after untaken branch = %#04x, want 0x8004", cpu.PC)
	}
}

func TestCPU_IndirectJMP_PageWrapBug(t *testing.T) {
	cpu, bus, cart := newTestCPU()
	loadProgram(cpu, bus, cart, nil)

	// Pointer at $80FF: low byte there, high byte wraps to $8000 instead of
	// $8100 — the canonical 6502 JMP ($xxFF) hardware bug.
	cart.PRG[0x00FF] = 0x34 // $80FF
	cart.PRG[0x0000] = 0x12 // $8000, wrap target instead of $8100
	cart.PRG[0x0100] = 0x99 // $8100, must NOT be used

	got := cpu.readIndirectWrapped(bus, 0x80FF)
	if want := uint16(0x1234); got != want {
		t.Errorf("readIndirectWrapped(0x80FF) = %#04x, want %#04x", got, want)
	}
}

func TestCPU_IndirectJMP_NoWrapWhenNotOnPageBoundary(t *testing.T) {
	cpu, bus, cart := newTestCPU()
	loadProgram(cpu, bus, cart, nil)

	cart.PRG[0x0010] = 0x34 // $8010
	cart.PRG[0x0011] = 0x12 // $8011

	got := cpu.readIndirectWrapped(bus, 0x8010)
	if want := uint16(0x1234); got != want {
		t.Errorf("readIndirectWrapped(0x8010) = %#04x, want %#04x", got, want)
	}
}

func TestCPU_ADC_OverflowAndCarry(t *testing.T) {
	cpu, _, _ := newTestCPU()

	// 0x50 + 0x50 = 0xA0: signed overflow (positive + positive = negative).
	cpu.A = 0x50
	cpu.setFlag(FlagC, false)
	cpu.adc(0x50)
	if cpu.A != 0xA0 {
		t.Errorf("A = %#02x, want 0xA0", cpu.A)
	}
	if !cpu.flag(FlagV) {
		t.Error("V flag not set for positive+positive=negative overflow")
	}
	if cpu.flag(FlagC) {
		t.Error("C flag set when sum did not exceed 0xFF")
	}
	if !cpu.flag(FlagN) {
		t.Error("N flag not set for result with bit 7 set")
	}

	// 0xFF + 0x01 = 0x00 with carry out, no overflow (unsigned wrap only).
	cpu.A = 0xFF
	cpu.setFlag(FlagC, false)
	cpu.adc(0x01)
	if cpu.A != 0x00 {
		t.Errorf("A = %#02x, want 0x00", cpu.A)
	}
	if !cpu.flag(FlagC) {
		t.Error("C flag not set on unsigned overflow")
	}
	if cpu.flag(FlagV) {
		t.Error("V flag set when no signed overflow occurred")
	}
	if !cpu.flag(FlagZ) {
		t.Error("Z flag not set for zero result")
	}
}

func TestCPU_SBC_ViaComplement(t *testing.T) {
	cpu, _, _ := newTestCPU()
	cpu.A = 0x10
	cpu.setFlag(FlagC, true) // carry set means "no borrow" going in
	cpu.adc(0x05 ^ 0xFF)     // SBC dispatches as adc(operand ^ 0xFF)
	if cpu.A != 0x0B {
		t.Errorf("A = %#02x, want 0x0B (0x10 - 0x05)", cpu.A)
	}
	if !cpu.flag(FlagC) {
		t.Error("C flag should remain set: no borrow occurred")
	}
}

func TestCPU_BRK_VectorsThroughNMIVector(t *testing.T) {
	cpu, bus, cart := newTestCPU()
	cart.PRG[0x7FFA] = 0x00 // NMI vector low
	cart.PRG[0x7FFB] = 0x90 // NMI vector high -> $9000
	loadProgram(cpu, bus, cart, []byte{0x00}) // BRK

	cpu.Step(bus)
	if cpu.PC != 0x9000 {
		t.Errorf("PC after BRK = %#04x, want 0x9000 (vectors through $FFFA)", cpu.PC)
	}
	if !cpu.flag(FlagI) {
		t.Error("I flag not set after BRK")
	}
}

func TestCPU_StackPushPopOrdering(t *testing.T) {
	cpu, bus, cart := newTestCPU()
	loadProgram(cpu, bus, cart, nil)

	sp := cpu.SP
	cpu.pushWord(bus, 0xBEEF)
	if cpu.SP != sp-2 {
		t.Fatalf("SP after pushWord = %#02x, want %#02x", cpu.SP, sp-2)
	}
	if got := cpu.popWord(bus); got != 0xBEEF {
		t.Errorf("popWord() = %#04x, want 0xBEEF", got)
	}
	if cpu.SP != sp {
		t.Errorf("SP after matching pop = %#02x, want %#02x", cpu.SP, sp)
	}
}

func TestCPU_UnknownOpcode_RunsAsNOP(t *testing.T) {
	cpu, bus, cart := newTestCPU()
	loadProgram(cpu, bus, cart, []byte{0x02}) // not in the table

	cycles := cpu.Step(bus)
	if cpu.PC != 0x8001 {
		t.Errorf("PC after unknown opcode = %#04x, want 0x8001", cpu.PC)
	}
	if cycles != 2 {
		t.Errorf("cycles for unknown opcode = %d, want 2", cycles)
	}
}

func TestCPU_UnofficialNOP_ConsumesOperandAndCanonicalCycles(t *testing.T) {
	cpu, bus, cart := newTestCPU()
	// $1C is NOP absolute,X — an unofficial three-byte NOP.
	loadProgram(cpu, bus, cart, []byte{0x1C, 0x34, 0x12})

	cycles := cpu.Step(bus)
	if cpu.PC != 0x8003 {
		t.Errorf("PC after unofficial NOP = %#04x, want 0x8003", cpu.PC)
	}
	if cycles < 4 {
		t.Errorf("cycles for NOP absolute,X = %d, want >= 4", cycles)
	}
}

func TestCPU_Branch_PageCrossAddsCycle(t *testing.T) {
	cpu, bus, cart := newTestCPU()
	program := make([]byte, 0x100)
	program[0xFD] = 0xF0 // BEQ at $80FD
	program[0xFE] = 0x10 // forward 16 from $80FF, target $810F -> crosses page
	loadProgram(cpu, bus, cart, nil)
	copy(cart.PRG[0xFD:], program[0xFD:])
	cpu.PC = 0x80FD
	cpu.setFlag(FlagZ, true)

	cycles := cpu.Step(bus)
	if cycles != 4 { // base 2 + taken 1 + page-cross 1
		t.Errorf("cycles for page-crossing taken branch = %d, want 4", cycles)
	}
}

package nes

import "testing"

func testCartridge() *Cartridge {
	return &Cartridge{PRG: make([]byte, 0x8000), CHR: make([]byte, chrBankSize)}
}

func TestNewConsole_ResetsCPU(t *testing.T) {
	cart := testCartridge()
	cart.PRG[0x7FFC] = 0x00
	cart.PRG[0x7FFD] = 0x90 // fake a reset vector at $9000

	console := NewConsole(cart, nil, nil, nil, nopLogger{})
	if console.cpu.PC == 0 {
		t.Fatal("CPU PC was never loaded from the reset vector")
	}
}

func TestConsole_StepFrame_AdvancesCyclesAndRunsReadyGate(t *testing.T) {
	cart := testCartridge()
	// An infinite run of NOPs so every scanline's cycle budget is consumed
	// without the CPU ever jumping somewhere unexpected.
	for i := range cart.PRG {
		cart.PRG[i] = 0xEA
	}
	console := NewConsole(cart, nil, nil, nil, nopLogger{})

	if console.ppu.ready {
		t.Fatal("PPU should not be ready immediately after reset")
	}

	for i := 0; i < 300; i++ {
		console.StepFrame()
	}

	if !console.ppu.ready {
		t.Error("PPU should become ready once enough cycles have elapsed since reset")
	}
	if console.cpu.Cycles == 0 {
		t.Error("CPU cycle counter never advanced")
	}
}

func TestConsole_StepFrame_ServicesNMIOnVBlank(t *testing.T) {
	cart := testCartridge()
	for i := range cart.PRG {
		cart.PRG[i] = 0xEA // NOP
	}
	// NMI vector points into the same NOP field so a taken NMI doesn't
	// crash into uninitialized memory.
	cart.PRG[0x7FFA] = 0x00
	cart.PRG[0x7FFB] = 0x80
	// Reset vector at $8000 too, so one frame of NOPs never runs into the
	// vector bytes at $FFFA (a $00 there would execute as BRK).
	cart.PRG[0x7FFC] = 0x00
	cart.PRG[0x7FFD] = 0x80

	console := NewConsole(cart, nil, nil, nil, nopLogger{})
	console.ppu.ctrl |= ctrlNMIEnable

	before := console.cpu.Cycles
	console.StepFrame()
	after := console.cpu.Cycles

	if after <= before {
		t.Fatal("cycle counter did not advance across a frame")
	}
	// Servicing the NMI pushes PC and P, three bytes; nothing else in a
	// field of NOPs touches the stack.
	if console.cpu.SP != 0xFD-3 {
		t.Errorf("SP = %#02x, want %#02x (NMI should have pushed PC and P)", console.cpu.SP, 0xFD-3)
	}
}

package nes

import "testing"

func newTestBusFull() (*Bus, *Cartridge, *PPU) {
	cart := &Cartridge{PRG: make([]byte, 0x8000), CHR: make([]byte, chrBankSize)}
	ppu := NewPPU(cart, nil, nil)
	bus := newBus(cart, ppu, newController(nil), newController(nil), nil)
	return bus, cart, ppu
}

func TestBus_InternalRAM_MirrorsEvery0x800(t *testing.T) {
	bus, _, _ := newTestBusFull()
	bus.Write(0x0010, 0x42)
	for _, mirror := range []uint16{0x0810, 0x1010, 0x1810} {
		if got := bus.Read(mirror); got != 0x42 {
			t.Errorf("Read(%#04x) = %#02x, want 0x42 (RAM mirror)", mirror, got)
		}
	}
}

func TestBus_PPURegisters_MirrorEvery8Bytes(t *testing.T) {
	bus, _, ppu := newTestBusFull()
	ppu.SetReady(true)
	bus.Write(0x2000, 0x80) // PPUCTRL
	for _, mirror := range []uint16{0x2008, 0x2010, 0x3FF8} {
		bus.Write(mirror, 0x00) // clears ctrl only if the mirror maps back to PPUCTRL
	}
	if ppu.ctrl != 0x00 {
		t.Errorf("ctrl = %#02x, want 0x00 (0x2008 mirrors 0x2000, last write wins)", ppu.ctrl)
	}
}

func TestBus_SaveRAM_ReadWrite(t *testing.T) {
	bus, _, _ := newTestBusFull()
	bus.Write(0x6000, 0x77)
	bus.Write(0x7FFF, 0x88)
	if got := bus.Read(0x6000); got != 0x77 {
		t.Errorf("Read(0x6000) = %#02x, want 0x77", got)
	}
	if got := bus.Read(0x7FFF); got != 0x88 {
		t.Errorf("Read(0x7FFF) = %#02x, want 0x88", got)
	}
}

func TestBus_PRGROM_IsReadOnly(t *testing.T) {
	bus, cart, _ := newTestBusFull()
	cart.PRG[0] = 0x55
	bus.Write(0x8000, 0xAA) // must be silently dropped
	if got := bus.Read(0x8000); got != 0x55 {
		t.Errorf("Read(0x8000) = %#02x, want 0x55 (writes to PRG-ROM are no-ops)", got)
	}
}

func TestBus_OAMDMA_CopiesFullPage(t *testing.T) {
	bus, _, ppu := newTestBusFull()
	for i := 0; i < 256; i++ {
		bus.Write(0x0200+uint16(i), byte(i))
	}
	bus.Write(0x4014, 0x02) // DMA from page $02

	for i := 0; i < 256; i++ {
		if ppu.oam[i] != byte(i) {
			t.Fatalf("oam[%d] = %#02x, want %#02x", i, ppu.oam[i], byte(i))
		}
	}
}

func TestBus_Controller_StrobeAndShiftOut(t *testing.T) {
	pressed := map[Button]bool{ButtonA: true, ButtonRight: true}
	bus, cart, ppu := newTestBusFull()
	_ = cart
	_ = ppu
	bus.controller1 = newController(func(b Button) bool { return pressed[b] })

	bus.Write(0x4016, 0x01) // strobe high: latch
	bus.Write(0x4016, 0x00) // strobe low: shifting begins

	want := []byte{1, 0, 0, 0, 0, 0, 0, 1} // A, B, Select, Start, Up, Down, Left, Right
	for i, w := range want {
		if got := bus.Read(0x4016); got != w {
			t.Errorf("controller bit %d = %d, want %d", i, got, w)
		}
	}
	if got := bus.Read(0x4016); got != 1 {
		t.Errorf("read past 8 bits = %d, want 1 (all-ones)", got)
	}
}

func TestBus_ReadWord_LittleEndian(t *testing.T) {
	bus, cart, _ := newTestBusFull()
	cart.PRG[0] = 0x34
	cart.PRG[1] = 0x12
	if got := bus.ReadWord(0x8000); got != 0x1234 {
		t.Errorf("ReadWord(0x8000) = %#04x, want 0x1234", got)
	}
}

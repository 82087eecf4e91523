package nes

// Bus is the CPU's address-space router: it owns internal RAM and save RAM
// directly, and forwards PPU-register, OAM-DMA, and controller accesses to
// the components that actually implement them. The CPU never touches RAM,
// the PPU, or the controllers except through here.
//
// ╔═════════════════╤═══════════════════════════════════╗
// ║ $0000 - $07FF   │ internal RAM                       ║
// ║ $0800 - $1FFF   │ mirrors of internal RAM, 2 KiB stride
// ║ $2000 - $3FFF   │ PPU registers, mirrored every 8 bytes
// ║ $4014           │ OAM DMA                            ║
// ║ $4016           │ controller 1                       ║
// ║ $4017           │ controller 2 (audio out of scope)  ║
// ║ $4000 - $4013,
// ║ $4015           │ APU registers (accepted, no effect)║
// ║ $6000 - $7FFF   │ save RAM                            ║
// ║ $8000 - $FFFF   │ PRG-ROM window                      ║
// ╚═════════════════════════════════════════════════════╝
type Bus struct {
	cart        *Cartridge
	ram         *ram
	saveRAM     *ram
	ppu         *PPU
	controller1 *controller
	controller2 *controller
	log         Logger
}

func newBus(cart *Cartridge, ppu *PPU, ctrl1, ctrl2 *controller, log Logger) *Bus {
	return &Bus{
		cart:        cart,
		ram:         newRAM(internalRAMSize),
		saveRAM:     newRAM(saveRAMSize),
		ppu:         ppu,
		controller1: ctrl1,
		controller2: ctrl2,
		log:         log,
	}
}

// Read dispatches a CPU read by address range.
func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x2000:
		return b.ram.read(addr % internalRAMSize)
	case addr < 0x4000:
		return b.ppu.ReadRegister(addr % 8)
	case addr == 0x4016:
		return b.controller1.read()
	case addr == 0x4017:
		return b.controller2.read()
	case addr < 0x4020:
		// APU / remaining I/O registers: accepted, no effect.
		return 0
	case addr < 0x6000:
		return 0
	case addr < 0x8000:
		return b.saveRAM.read(addr - 0x6000)
	default:
		return b.cart.ReadPRG(addr)
	}
}

// Write dispatches a CPU write by address range.
func (b *Bus) Write(addr uint16, v byte) {
	switch {
	case addr < 0x2000:
		b.ram.write(addr%internalRAMSize, v)
	case addr < 0x4000:
		b.ppu.WriteRegister(addr%8, v)
	case addr == 0x4014:
		b.oamDMA(v)
	case addr == 0x4016:
		b.controller1.write(v)
		b.controller2.write(v)
	case addr < 0x4020:
		// APU registers: accepted, no effect.
	case addr < 0x6000:
		// Expansion ROM: unmapped on mapper 0 boards.
	case addr < 0x8000:
		b.saveRAM.write(addr-0x6000, v)
	default:
		// PRG-ROM is read-only hardware; writes are silently dropped.
	}
}

// ReadWord performs a little-endian 16-bit read, used for the CPU's
// reset/NMI vector fetches.
func (b *Bus) ReadWord(addr uint16) uint16 {
	lo := b.Read(addr)
	hi := b.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// oamDMA implements the $4014 write side effect: copy the 256 bytes of the
// page (v<<8) into OAM starting at the PPU's current OAMADDR, wrapping
// modulo 256.
func (b *Bus) oamDMA(v byte) {
	page := uint16(v) << 8
	for i := 0; i < 256; i++ {
		b.ppu.WriteOAMDMAByte(b.Read(page + uint16(i)))
	}
	if b.log != nil {
		b.log.Infof("oam dma from page %#04x", page)
	}
}

package nes

// PPUCTRL/PPUMASK/PPUSTATUS bit masks.
const (
	ctrlNametableMask  = 0x03
	ctrlVRAMIncrement  = 0x04
	ctrlSpritePattern  = 0x08
	ctrlBGPattern      = 0x10
	ctrlSpriteHeight   = 0x20
	ctrlNMIEnable      = 0x80
	maskShowBackground = 0x08
	maskShowSprites    = 0x10
	statusOverflow     = 0x20
	statusSprite0Hit   = 0x40
	statusVBlank       = 0x80
)

// readyThreshold is the number of CPU cycles after reset before the PPU
// honors writes to PPUCTRL/PPUMASK/PPUADDR.
const readyThreshold = 29658

// Pixel is one emitted picture element: screen coordinates plus the 6-bit
// palette index the presentation sink maps to RGB.
type Pixel struct {
	X, Y    int
	Palette byte
}

// Sink is the presentation collaborator the core hands finished frames to:
// it receives the backdrop color and the three per-frame pixel lists,
// flushed in sprites-behind, background, sprites-in-front order, followed
// by one Present call.
type Sink interface {
	SetBGColor(paletteIndex byte)
	FlushPixels(pixels []Pixel)
	Present()
}

type nullSink struct{}

func (nullSink) SetBGColor(byte)     {}
func (nullSink) FlushPixels([]Pixel) {}
func (nullSink) Present()            {}

// PPU is a picture processing unit: the eight memory-mapped registers,
// VRAM/OAM, and a per-scanline compositor that emits background and sprite
// pixel lists instead of a cycle-accurate dot-by-dot raster.
type PPU struct {
	cart *Cartridge
	sink Sink
	log  Logger

	ctrl   byte
	mask   byte
	status byte

	oamAddr byte
	oam     [256]byte

	scrollX, scrollY byte
	vramAddr         uint16 // 14-bit
	writeToggle      bool
	readLatch        byte
	vramReadBuffer   byte

	ready bool

	nametables  [2][1024]byte
	paletteRAM  [32]byte
	mirrorXorBit uint16

	scanline int

	sprite0HitLatch bool
	nmiPending      bool

	bgShadow [256]byte // per-scanline bg color index (0-3), for sprite-0-hit

	background     []Pixel
	spritesBehind  []Pixel
	spritesInFront []Pixel
}

// NewPPU returns a PPU with VRAM/OAM zeroed and PPUSTATUS at its documented
// power-up value of $A0.
func NewPPU(cart *Cartridge, sink Sink, log Logger) *PPU {
	if sink == nil {
		sink = nullSink{}
	}
	if log == nil {
		log = nopLogger{}
	}
	mirrorBit := uint16(0)
	if cart.Mirroring == MirrorVertical {
		mirrorBit = 1
	}
	return &PPU{
		cart:         cart,
		sink:         sink,
		log:          log,
		status:       0xA0,
		scanline:     -1,
		mirrorXorBit: mirrorBit,
	}
}

// SetReady flips the CPU-cycle-gated "ready" latch: writes to
// PPUCTRL/PPUMASK/PPUADDR are ignored until the console calls this once
// the CPU has run readyThreshold cycles since reset.
func (p *PPU) SetReady(ready bool) { p.ready = ready }

// TakeNMI reports and clears a pending NMI request. The request is
// edge-triggered by scanline 241's VBlank assertion (and only latched at
// all when PPUCTRL's NMI-enable bit is set) so it is consumed at most once
// per frame by Console.stepInstruction.
func (p *PPU) TakeNMI() bool {
	if p.nmiPending {
		p.nmiPending = false
		return true
	}
	return false
}

// ReadRegister services a CPU read of PPUCTRL..PPUDATA ($2000-$2007,
// mirrored every 8 bytes — the Bus has already reduced reg to 0-7).
func (p *PPU) ReadRegister(reg uint16) byte {
	switch reg {
	case 2: // PPUSTATUS
		result := (p.readLatch & 0x1F) | p.status
		p.status &^= statusVBlank
		p.writeToggle = false
		return result

	case 4: // OAMDATA
		v := p.oam[p.oamAddr]
		p.readLatch = v
		return v

	case 7: // PPUDATA
		var result byte
		if p.vramAddr >= 0x3F00 {
			result = p.readVRAM(p.vramAddr)
			p.vramReadBuffer = p.readVRAM(p.vramAddr - 0x1000)
		} else {
			result = p.vramReadBuffer
			p.vramReadBuffer = p.readVRAM(p.vramAddr)
		}
		p.incrementVRAMAddr()
		p.readLatch = result
		return result

	default:
		// PPUCTRL, PPUMASK, OAMADDR, PPUSCROLL, PPUADDR are write-only;
		// hardware returns whatever was last put on the register bus.
		return p.readLatch
	}
}

// WriteRegister services a CPU write to PPUCTRL..PPUDATA.
func (p *PPU) WriteRegister(reg uint16, v byte) {
	p.readLatch = v

	switch reg {
	case 0: // PPUCTRL
		if !p.ready {
			p.log.Infof("ppuctrl write ignored before ready gate")
			return
		}
		p.ctrl = v

	case 1: // PPUMASK
		if !p.ready {
			p.log.Infof("ppumask write ignored before ready gate")
			return
		}
		p.mask = v

	case 3: // OAMADDR
		p.oamAddr = v

	case 4: // OAMDATA
		p.oam[p.oamAddr] = v
		p.oamAddr++

	case 5: // PPUSCROLL
		if !p.writeToggle {
			p.scrollX = v
		} else {
			p.scrollY = v
		}
		p.writeToggle = !p.writeToggle

	case 6: // PPUADDR
		if !p.ready {
			p.log.Infof("ppuaddr write ignored before ready gate")
			return
		}
		if !p.writeToggle {
			p.vramAddr = p.vramAddr&0x00FF | uint16(v)<<8
		} else {
			p.vramAddr = p.vramAddr&0xFF00 | uint16(v)
			p.vramAddr &= 0x3FFF
		}
		p.writeToggle = !p.writeToggle

	case 7: // PPUDATA
		p.writeVRAM(p.vramAddr, v)
		p.incrementVRAMAddr()
	}
}

// WriteOAMDMAByte is the $4014 DMA path's per-byte write into OAM,
// starting at and wrapping through the current OAMADDR.
func (p *PPU) WriteOAMDMAByte(v byte) {
	p.oam[p.oamAddr] = v
	p.oamAddr++
}

func (p *PPU) incrementVRAMAddr() {
	if p.ctrl&ctrlVRAMIncrement != 0 {
		p.vramAddr += 32
	} else {
		p.vramAddr++
	}
	p.vramAddr &= 0x3FFF
}

func (p *PPU) baseNametable() uint16 {
	return 0x2000 + uint16(p.ctrl&ctrlNametableMask)*0x400
}

func (p *PPU) bgPatternBase() uint16 {
	if p.ctrl&ctrlBGPattern != 0 {
		return 0x1000
	}
	return 0
}

func (p *PPU) spritePatternBase() uint16 {
	if p.ctrl&ctrlSpritePattern != 0 {
		return 0x1000
	}
	return 0
}

func (p *PPU) spriteHeight() int {
	if p.ctrl&ctrlSpriteHeight != 0 {
		return 16
	}
	return 8
}

func (p *PPU) showBackground() bool { return p.mask&maskShowBackground != 0 }
func (p *PPU) showSprites() bool    { return p.mask&maskShowSprites != 0 }

// readVRAM canonicalizes a logical PPU address and returns the byte stored
// there: pattern tables pass through to CHR, $2000-$3EFF folds into the two
// physical nametables per mirroring, and $3F00+ folds into the 32-byte
// palette with the four alias addresses.
func (p *PPU) readVRAM(addr uint16) byte {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		return p.cart.CHR[int(addr)%len(p.cart.CHR)]
	case addr < 0x3F00:
		bank, offset := p.nametableSlot(addr)
		return p.nametables[bank][offset]
	default:
		return p.paletteRAM[paletteIndex(addr)]
	}
}

func (p *PPU) writeVRAM(addr uint16, v byte) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		p.cart.CHR[int(addr)%len(p.cart.CHR)] = v
	case addr < 0x3F00:
		bank, offset := p.nametableSlot(addr)
		p.nametables[bank][offset] = v
	default:
		p.paletteRAM[paletteIndex(addr)] = v
	}
}

// nametableSlot folds a $2000-$3EFF address (after mirroring $3000-$3EFF
// down to $2000-$2EFF) into one of the two physically present 1 KiB
// nametables, by masking the one address bit mirroring makes redundant —
// equivalent to XORing against a flat 4-slot array without keeping four
// logical copies in sync by hand.
func (p *PPU) nametableSlot(addr uint16) (bank int, offset uint16) {
	a := (addr - 0x2000) & 0x0FFF
	offset = a & 0x03FF
	slot := (a >> 10) & 0x03
	if p.mirrorXorBit == 0 {
		bank = int((slot >> 1) & 1) // horizontal: NT0,NT1 | NT2,NT3
	} else {
		bank = int(slot & 1) // vertical: NT0,NT2 | NT1,NT3
	}
	return bank, offset
}

func paletteIndex(addr uint16) byte {
	idx := byte(addr & 0x1F)
	switch idx {
	case 0x10, 0x14, 0x18, 0x1C:
		idx -= 0x10
	}
	return idx
}

// Tick advances the PPU by exactly one scanline: background composition,
// sprite evaluation, then the VBlank/pre-render edges.
func (p *PPU) Tick() {
	if p.scanline >= 0 && p.scanline <= 239 {
		if p.showBackground() {
			p.renderBackgroundLine()
		} else {
			// No background drawn this line: clear the shadow buffer so a
			// stale row from an earlier scanline can't feed sprite-0-hit.
			for i := range p.bgShadow {
				p.bgShadow[i] = 0
			}
		}
		if p.showSprites() {
			p.evaluateSprites()
		}
	}

	switch p.scanline {
	case 241:
		p.status |= statusVBlank
		p.status &^= statusSprite0Hit
		if p.ctrl&ctrlNMIEnable != 0 {
			p.nmiPending = true
		}
	case 261:
		p.status &^= statusVBlank
		p.status &^= statusOverflow
		p.sprite0HitLatch = false
		p.status &^= statusSprite0Hit
		p.presentFrame()
	}

	p.scanline++
	if p.scanline > 261 {
		p.scanline = -1
	}
}

// renderBackgroundLine composes the current scanline's 32 background tile
// columns twice — once against the PPUCTRL base nametable, once against its
// horizontal neighbor — so that a horizontal scroll that runs past a
// nametable edge keeps painting from the adjacent one.
func (p *PPU) renderBackgroundLine() {
	y := p.scanline
	base := p.baseNametable()
	neighbor := base ^ 0x0400

	for i := range p.bgShadow {
		p.bgShadow[i] = 0
	}

	p.renderBackgroundPass(base, y, 0)
	p.renderBackgroundPass(neighbor, y, 256)
}

func (p *PPU) renderBackgroundPass(nametableBase uint16, scanline int, mirrorOffset int) {
	patternBase := p.bgPatternBase()
	row := scanline / 8
	fineY := uint16(scanline % 8)

	for tileX := 0; tileX < 32; tileX++ {
		tileAddr := nametableBase + uint16(tileX) + uint16(row)*32
		tileIndex := uint16(p.readVRAM(tileAddr))

		lo := p.readVRAM(patternBase + 16*tileIndex + fineY)
		hi := p.readVRAM(patternBase + 16*tileIndex + fineY + 8)

		attrAddr := (nametableBase & 0x2C00) | 0x03C0 | uint16(tileX/4) | (uint16(row/4) * 8)
		attr := p.readVRAM(attrAddr)
		quadrantShift := uint((tileX%4)/2*2 + (row%4)/2*4)
		paletteSelect := (attr >> quadrantShift) & 0x03

		for px := 0; px < 8; px++ {
			bit := uint(7 - px)
			c := ((hi>>bit)&1)<<1 | (lo>>bit)&1
			if c == 0 {
				continue
			}

			screenX := tileX*8 + px - int(p.scrollX) + mirrorOffset
			if screenX < 0 || screenX >= 256 {
				continue
			}

			paletteIdx := p.readVRAM(0x3F00 + uint16(paletteSelect)<<2 + uint16(c))
			p.background = append(p.background, Pixel{X: screenX, Y: scanline + 1, Palette: paletteIdx})
			p.bgShadow[screenX] = c
		}
	}
}

// evaluateSprites scans OAM in index order, draws at most 8 sprites per
// scanline (the ninth sets the overflow flag), and checks sprite 0's
// pixels against the background shadow buffer for the sprite-zero-hit flag.
func (p *PPU) evaluateSprites() {
	height := p.spriteHeight()
	scanline := p.scanline
	hits := 0

	for i := 0; i < 64; i++ {
		spriteY := int(p.oam[i*4+0]) + 1
		tile := p.oam[i*4+1]
		attr := p.oam[i*4+2]
		spriteX := int(p.oam[i*4+3])

		row := scanline - spriteY
		if row < 0 || row >= height {
			continue
		}

		hits++
		if hits > 8 {
			p.status |= statusOverflow
			break
		}

		flipH := attr&0x40 != 0
		flipV := attr&0x80 != 0
		behind := attr&0x20 != 0
		paletteSelect := attr & 0x03

		if flipV {
			row = height - 1 - row
		}

		patternBase := p.spritePatternBase()
		patternIndex := uint16(tile)
		fineY := uint16(row)
		if height == 16 {
			patternBase = uint16(tile&1) * 0x1000
			patternIndex = uint16(tile &^ 1)
			if row >= 8 {
				patternIndex++
				fineY = uint16(row - 8)
			}
		}

		lo := p.readVRAM(patternBase + 16*patternIndex + fineY)
		hi := p.readVRAM(patternBase + 16*patternIndex + fineY + 8)

		for px := 0; px < 8; px++ {
			bit := uint(px)
			if !flipH {
				bit = uint(7 - px)
			}
			c := ((hi>>bit)&1)<<1 | (lo>>bit)&1
			if c == 0 {
				continue
			}

			screenX := spriteX + px
			if screenX < 0 || screenX >= 256 {
				continue
			}

			paletteIdx := p.readVRAM(0x3F10 + uint16(paletteSelect)<<2 + uint16(c))
			pixel := Pixel{X: screenX, Y: scanline + 1, Palette: paletteIdx}
			if behind {
				p.spritesBehind = append(p.spritesBehind, pixel)
			} else {
				p.spritesInFront = append(p.spritesInFront, pixel)
			}

			if i == 0 && !p.sprite0HitLatch && p.bgShadow[screenX] != 0 {
				p.status |= statusSprite0Hit
				p.sprite0HitLatch = true
			}
		}
	}
}

// presentFrame drains the frame's three pixel lists to the sink in a fixed
// order — sprites-behind, then background, then sprites-in-front — followed
// by one Present call.
func (p *PPU) presentFrame() {
	p.sink.SetBGColor(p.readVRAM(0x3F00))
	p.sink.FlushPixels(p.spritesBehind)
	p.sink.FlushPixels(p.background)
	p.sink.FlushPixels(p.spritesInFront)
	p.sink.Present()

	p.background = p.background[:0]
	p.spritesBehind = p.spritesBehind[:0]
	p.spritesInFront = p.spritesInFront[:0]
}

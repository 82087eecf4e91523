package nes

// cyclesPerScanline is the CPU-cycle budget each of the PPU's 262 scanlines
// gets. The PPU actually runs three times the CPU's clock and a scanline is
// 341 PPU dots, which divides out to 113 and a third CPU cycles; rather than
// track fractional cycles we let the remainder accumulate and spend it as an
// extra cycle every third scanline, which keeps the long-run ratio exact
// without floating point in the hot loop.
const cyclesPerScanline = 113

// Console owns the whole machine — cartridge, bus, CPU, PPU, and both
// controller ports — and drives it one frame at a time. Nothing here is a
// package-level global: mutable state belongs to the Console instance or to
// the Cartridge it was given (the PPU writes pattern data into
// Cartridge.CHR), so two Consoles built on separate Cartridges can run
// concurrently without interfering.
type Console struct {
	cart        *Cartridge
	bus         *Bus
	cpu         *CPU
	ppu         *PPU
	controller1 *controller
	controller2 *controller
	log         Logger

	scanlineRemainder int
	cyclesSinceReset  uint64
}

// NewConsole assembles a Console around an already-loaded Cartridge, a
// presentation Sink, and the two controller ports' InputSource callbacks.
// A nil sink or input source is accepted and treated as "nothing
// connected" — useful for headless disassembly (-d) runs.
func NewConsole(cart *Cartridge, sink Sink, input1, input2 InputSource, log Logger) *Console {
	if log == nil {
		log = DefaultLogger
	}

	ppu := NewPPU(cart, sink, log)
	ctrl1 := newController(input1)
	ctrl2 := newController(input2)
	bus := newBus(cart, ppu, ctrl1, ctrl2, log)
	cpu := NewCPU(log)

	c := &Console{
		cart:        cart,
		bus:         bus,
		cpu:         cpu,
		ppu:         ppu,
		controller1: ctrl1,
		controller2: ctrl2,
		log:         log,
	}
	c.Reset()
	return c
}

// CPU exposes the CPU so callers can attach to CPU.Trace before running.
func (c *Console) CPU() *CPU { return c.cpu }

// Bus exposes the address-space router, mainly so DisassembleAt can be
// called directly against it from outside a running Step.
func (c *Console) Bus() *Bus { return c.bus }

// Reset re-runs the CPU's power-up sequence and clears the PPU's ready
// gate, so a freshly reset console again ignores PPUCTRL/PPUMASK/PPUADDR
// writes until the CPU has run readyThreshold cycles.
func (c *Console) Reset() {
	c.cpu.Reset(c.bus)
	c.ppu.SetReady(false)
	c.cyclesSinceReset = 0
	c.scanlineRemainder = 0
}

// StepFrame runs exactly one frame: 262 scanlines. Each iteration completes
// the PPU's work for scanline s before the CPU spends that scanline's cycle
// budget, so VBlank and any NMI it raises become visible to the CPU on the
// same scanline the PPU set them rather than one scanline late.
func (c *Console) StepFrame() {
	for line := 0; line < 262; line++ {
		c.ppu.Tick()

		budget := uint64(cyclesPerScanline)
		c.scanlineRemainder++
		if c.scanlineRemainder == 3 {
			budget++
			c.scanlineRemainder = 0
		}

		spent := uint64(0)
		for spent < budget {
			spent += c.stepInstruction()
		}
	}
}

// stepInstruction runs one CPU instruction, services a pending NMI edge
// immediately afterward, and flips the PPU's ready gate once enough
// cycles have elapsed since reset.
func (c *Console) stepInstruction() uint64 {
	cycles := c.cpu.Step(c.bus)

	c.cyclesSinceReset += cycles
	if c.cyclesSinceReset >= readyThreshold {
		c.ppu.SetReady(true)
	}

	if c.ppu.TakeNMI() {
		c.cpu.HandleNMI(c.bus)
	}

	return cycles
}

// Command nes is the emulator's CLI front end: run a ROM, disassemble its
// PRG-ROM, or print its header metadata, then exit with one of the
// documented codes.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/blanboom/go-nes/internal/presenter/ebitenpresenter"
	"github.com/blanboom/go-nes/internal/presenter/sdlpresenter"
	"github.com/blanboom/go-nes/nes"
)

const (
	exitUsage        = 1
	exitFileNotFound = -1
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flagSet := flag.NewFlagSet("nes", flag.ContinueOnError)
	runMode := flagSet.Bool("r", false, "run the emulator")
	disasmMode := flagSet.Bool("d", false, "disassemble PRG-ROM and exit")
	infoMode := flagSet.Bool("i", false, "print ROM metadata and exit")
	backend := flagSet.String("backend", "sdl", "presentation backend: sdl or ebiten")
	scale := flagSet.Int("scale", 3, "window scale factor")
	if err := flagSet.Parse(args); err != nil {
		return exitUsage
	}

	modes := 0
	for _, m := range []bool{*runMode, *disasmMode, *infoMode} {
		if m {
			modes++
		}
	}
	if modes != 1 || flagSet.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: nes [-r|-d|-i] [-backend=sdl|ebiten] <rom_path>")
		return exitUsage
	}
	romPath := flagSet.Arg(0)

	f, err := os.Open(romPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nes: %s\n", err)
		return exitFileNotFound
	}
	defer f.Close()

	cart, err := nes.LoadINES(f)
	if err != nil {
		var loadErr *nes.LoadError
		if errors.As(err, &loadErr) {
			fmt.Fprintf(os.Stderr, "nes: %s\n", loadErr)
			return loadErr.Code
		}
		fmt.Fprintf(os.Stderr, "nes: %s\n", err)
		return exitUsage
	}

	switch {
	case *infoMode:
		printInfo(cart)
		return 0
	case *disasmMode:
		disassembleROM(cart)
		return 0
	default:
		return runEmulator(cart, *backend, *scale)
	}
}

func printInfo(cart *nes.Cartridge) {
	mirroring := "horizontal"
	if cart.Mirroring == nes.MirrorVertical {
		mirroring = "vertical"
	}
	fmt.Printf("PRG-ROM: %d KiB\n", len(cart.PRG)/1024)
	fmt.Printf("CHR-ROM: %d KiB\n", len(cart.CHR)/1024)
	fmt.Printf("Mirroring: %s\n", mirroring)
}

// disassembleROM walks the PRG-ROM window linearly and prints one trace
// line per decoded instruction, stepping by each instruction's size,
// without attempting to distinguish code from data. It drives a disconnected
// Console (no sink, no input) purely for its Bus.
func disassembleROM(cart *nes.Cartridge) {
	console := nes.NewConsole(cart, nil, nil, nil, nes.DefaultLogger)
	bus := console.Bus()

	end := 0x8000 + len(cart.PRG)
	for pc := 0x8000; pc < end; {
		line, size := nes.DisassembleAt(bus, uint16(pc), 0, 0, 0, 0, 0, 0)
		fmt.Println(line)
		if size == 0 {
			size = 1
		}
		pc += int(size)
	}
}

func runEmulator(cart *nes.Cartridge, backend string, scale int) int {
	switch backend {
	case "sdl":
		return runSDL(cart, scale)
	case "ebiten":
		return runEbiten(cart, scale)
	default:
		fmt.Fprintf(os.Stderr, "nes: unknown backend %q\n", backend)
		return exitUsage
	}
}

func runSDL(cart *nes.Cartridge, scale int) int {
	presenter, err := sdlpresenter.New("nes", int32(scale))
	if err != nil {
		fmt.Fprintf(os.Stderr, "nes: %s\n", err)
		return exitUsage
	}
	defer presenter.Close()

	console := nes.NewConsole(cart, presenter, presenter.Input(), nil, nes.DefaultLogger)

	for !presenter.PollQuit() {
		console.StepFrame()
	}
	return 0
}

func runEbiten(cart *nes.Cartridge, scale int) int {
	presenter := ebitenpresenter.New(scale)
	console := nes.NewConsole(cart, presenter, presenter.Input(), nil, nes.DefaultLogger)
	presenter.SetConsole(console)

	if err := ebitenRun(presenter, scale); err != nil {
		glog.Errorf("ebiten: %s", err)
		return exitUsage
	}
	return 0
}

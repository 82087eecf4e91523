// Package ebitenpresenter is a nes.Sink/nes.InputSource pair backed by
// Ebitengine, grounded on RNG999-gones's internal/graphics Ebitengine
// backend (a frame-sized ebiten.Image fed through WritePixels, driven by
// ebiten.Game's Update/Draw/Layout contract).
package ebitenpresenter

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/blanboom/go-nes/nes"
)

const (
	screenWidth  = 256
	screenHeight = 240
)

// Presenter implements ebiten.Game directly; cmd/nes's ebitenRun hands it
// to ebiten.RunGame. It also implements nes.Sink, accumulating each frame's
// pixel lists into an RGBA staging buffer that Draw blits wholesale.
type Presenter struct {
	console StepFramer
	img     *ebiten.Image
	frame   []byte // RGBA, screenWidth*screenHeight*4
	scale   int
}

// StepFramer is the one Console method the presenter's Update loop needs;
// naming it as an interface keeps this package from importing the nes
// package's Console type just to call one method.
type StepFramer interface {
	StepFrame()
}

// New returns a Presenter with no Console attached yet. Construction is
// necessarily two-step: nes.NewConsole needs a Sink, and a Sink here needs
// a StepFramer to drive — call SetConsole once the Console exists.
func New(scale int) *Presenter {
	return &Presenter{
		img:   ebiten.NewImage(screenWidth, screenHeight),
		frame: make([]byte, screenWidth*screenHeight*4),
		scale: scale,
	}
}

// SetConsole attaches the Console this Presenter's Update loop drives.
func (p *Presenter) SetConsole(console StepFramer) { p.console = console }

// SetBGColor implements nes.Sink.
func (p *Presenter) SetBGColor(paletteIndex byte) {
	c := nes.Palette[paletteIndex&0x3F]
	for i := 0; i < len(p.frame); i += 4 {
		p.frame[i+0] = c.R
		p.frame[i+1] = c.G
		p.frame[i+2] = c.B
		p.frame[i+3] = 0xFF
	}
}

// FlushPixels implements nes.Sink.
func (p *Presenter) FlushPixels(pixels []nes.Pixel) {
	for _, px := range pixels {
		if px.X < 0 || px.X >= screenWidth || px.Y < 0 || px.Y >= screenHeight {
			continue
		}
		c := nes.Palette[px.Palette&0x3F]
		i := (px.Y*screenWidth + px.X) * 4
		p.frame[i+0] = c.R
		p.frame[i+1] = c.G
		p.frame[i+2] = c.B
		p.frame[i+3] = 0xFF
	}
}

// Present implements nes.Sink: push the staging buffer into the
// ebiten.Image Draw blits. Ebitengine's own Update/Draw cadence handles
// actually putting it on screen.
func (p *Presenter) Present() {
	p.img.WritePixels(p.frame)
}

// Update implements ebiten.Game: step exactly one emulated frame per
// Ebitengine tick.
func (p *Presenter) Update() error {
	p.console.StepFrame()
	return nil
}

// Draw implements ebiten.Game.
func (p *Presenter) Draw(screen *ebiten.Image) {
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(p.scale), float64(p.scale))
	screen.DrawImage(p.img, opts)
}

// Layout implements ebiten.Game.
func (p *Presenter) Layout(int, int) (int, int) {
	return screenWidth * p.scale, screenHeight * p.scale
}

// Input returns an nes.InputSource backed by Ebitengine's live key state.
func (p *Presenter) Input() nes.InputSource {
	return func(b nes.Button) bool {
		switch b {
		case nes.ButtonA:
			return ebiten.IsKeyPressed(ebiten.KeyA)
		case nes.ButtonB:
			return ebiten.IsKeyPressed(ebiten.KeyZ)
		case nes.ButtonSelect:
			return ebiten.IsKeyPressed(ebiten.KeyX)
		case nes.ButtonStart:
			return ebiten.IsKeyPressed(ebiten.KeyS)
		case nes.ButtonUp:
			return ebiten.IsKeyPressed(ebiten.KeyUp)
		case nes.ButtonDown:
			return ebiten.IsKeyPressed(ebiten.KeyDown)
		case nes.ButtonLeft:
			return ebiten.IsKeyPressed(ebiten.KeyLeft)
		case nes.ButtonRight:
			return ebiten.IsKeyPressed(ebiten.KeyRight)
		}
		return false
	}
}

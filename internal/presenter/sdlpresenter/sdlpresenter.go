// Package sdlpresenter is a nes.Sink/nes.InputSource pair backed by
// go-sdl2, grounded on flga-vnes's cmd/nes game window (texture-streaming
// render loop, a/z/s/x + arrow key layout).
package sdlpresenter

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/blanboom/go-nes/nes"
)

const (
	screenWidth  = 256
	screenHeight = 240
)

// Presenter owns one SDL window, renderer, and streaming texture, and
// implements both nes.Sink (it receives the PPU's per-frame pixel lists)
// and supplies an nes.InputSource (it polls SDL's live keyboard state).
type Presenter struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	tex      *sdl.Texture
	frame    []byte // tightly packed ABGR8888, screenWidth*screenHeight*4
	bg       nes.RGB
}

// New creates an SDL window scaled by factor and a renderer/texture pair
// sized to the NES's fixed 256x240 picture.
func New(title string, scale int32) (*Presenter, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("sdlpresenter: init: %w", err)
	}

	window, renderer, err := sdl.CreateWindowAndRenderer(screenWidth*scale, screenHeight*scale, sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, fmt.Errorf("sdlpresenter: create window: %w", err)
	}
	window.SetTitle(title)

	tex, err := renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING, screenWidth, screenHeight)
	if err != nil {
		return nil, fmt.Errorf("sdlpresenter: create texture: %w", err)
	}

	return &Presenter{
		window:   window,
		renderer: renderer,
		tex:      tex,
		frame:    make([]byte, screenWidth*screenHeight*4),
	}, nil
}

// SetBGColor implements nes.Sink: it fills the whole frame with the
// backdrop color before the pixel lists are flushed on top of it.
func (p *Presenter) SetBGColor(paletteIndex byte) {
	p.bg = nes.Palette[paletteIndex&0x3F]
	for i := 0; i < len(p.frame); i += 4 {
		p.frame[i+0] = p.bg.R
		p.frame[i+1] = p.bg.G
		p.frame[i+2] = p.bg.B
		p.frame[i+3] = 0xFF
	}
}

// FlushPixels implements nes.Sink: each pixel overwrites one texel of the
// staging buffer. Off-screen coordinates (the PPU reports scanline 239's
// pixels at Y=240, since pixel Y is scanline+1) are dropped silently.
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

// Present implements nes.Sink: the staging buffer is pushed to the
// streaming texture and drawn.
func (p *Presenter) Present() {
	pixels, _, err := p.tex.Lock(nil)
	if err != nil {
		return
	}
	copy(pixels, p.frame)
	p.tex.Unlock()

	p.renderer.Clear()
	p.renderer.Copy(p.tex, nil, nil)
	p.renderer.Present()
}

// Input returns an nes.InputSource backed by SDL's live keyboard state,
// using the same a/z/s/x + arrow-key layout flga-vnes's game window uses.
func (p *Presenter) Input() nes.InputSource {
	return func(b nes.Button) bool {
		keys := sdl.GetKeyboardState()
		switch b {
		case nes.ButtonA:
			return keys[sdl.SCANCODE_A] != 0
		case nes.ButtonB:
			return keys[sdl.SCANCODE_Z] != 0
		case nes.ButtonSelect:
			return keys[sdl.SCANCODE_X] != 0
		case nes.ButtonStart:
			return keys[sdl.SCANCODE_S] != 0
		case nes.ButtonUp:
			return keys[sdl.SCANCODE_UP] != 0
		case nes.ButtonDown:
			return keys[sdl.SCANCODE_DOWN] != 0
		case nes.ButtonLeft:
			return keys[sdl.SCANCODE_LEFT] != 0
		case nes.ButtonRight:
			return keys[sdl.SCANCODE_RIGHT] != 0
		}
		return false
	}
}

// PollQuit drains the SDL event queue and reports whether a quit event
// (window close or Escape) was seen.
func (p *Presenter) PollQuit() bool {
	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			quit = true
		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Keysym.Sym == sdl.K_ESCAPE {
				quit = true
			}
		}
	}
	return quit
}

// Close tears down the texture, renderer, and window in that order.
func (p *Presenter) Close() error {
	if p.tex != nil {
		p.tex.Destroy()
	}
	if p.renderer != nil {
		p.renderer.Destroy()
	}
	if p.window != nil {
		p.window.Destroy()
	}
	sdl.Quit()
	return nil
}

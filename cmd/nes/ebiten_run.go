package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/blanboom/go-nes/internal/presenter/ebitenpresenter"
)

// ebitenRun configures the Ebitengine window and blocks in ebiten.RunGame
// until the window closes.
func ebitenRun(presenter *ebitenpresenter.Presenter, scale int) error {
	ebiten.SetWindowTitle("nes")
	ebiten.SetWindowSize(256*scale, 240*scale)
	return ebiten.RunGame(presenter)
}

package view

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"netpong/internal/client"
)

// Intents reads the keyboard for this frame. Arrows repeat while held; reset
// and replay fire once per press.
func Intents() []client.Intent {
	var out []client.Intent
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		out = append(out, client.IntentUp)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		out = append(out, client.IntentDown)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		out = append(out, client.IntentReset)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		out = append(out, client.IntentReplay)
	}
	return out
}

package view

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"netpong/internal/client"
	"netpong/internal/game"
)

var (
	courtColor  = color.RGBA{20, 24, 32, 255}
	netColor    = color.RGBA{70, 76, 90, 255}
	localColor  = color.RGBA{90, 200, 250, 255}
	remoteColor = color.RGBA{250, 170, 90, 255}
	ballColor   = color.RGBA{240, 240, 240, 255}
)

// Renderer paints a Snapshot onto the court.
type Renderer struct {
	court game.Court
}

func NewRenderer(court game.Court) *Renderer {
	return &Renderer{court: court}
}

// Size is the logical screen size for ebiten's Layout.
func (r *Renderer) Size() (int, int) {
	return int(r.court.Width), int(r.court.Height)
}

func (r *Renderer) Draw(screen *ebiten.Image, snap client.Snapshot) {
	screen.Fill(courtColor)
	vector.StrokeLine(screen, float32(r.court.Width/2), 0, float32(r.court.Width/2), float32(r.court.Height), 2, netColor, false)

	if snap.SessionID == "" && snap.State == game.StateIdle {
		ebitenutil.DebugPrintAt(screen, "Connecting...", 10, 10)
		return
	}

	for _, p := range snap.Paddles {
		clr := remoteColor
		if p.Side == snap.LocalSide {
			clr = localColor
		}
		drawPaddle(screen, p, clr)
	}
	if snap.State == game.StateInProgress || snap.State == game.StateEnded {
		b := snap.Ball
		vector.DrawFilledCircle(screen, float32(b.Pos.X), float32(b.Pos.Y), float32(b.Size), ballColor, true)
	}

	ebitenutil.DebugPrintAt(screen, banner(snap), 10, 10)
	if snap.Diagnostic != "" {
		ebitenutil.DebugPrintAt(screen, snap.Diagnostic, 10, int(r.court.Height)-20)
	}
}

func drawPaddle(screen *ebiten.Image, p game.Paddle, clr color.Color) {
	s := PaddleShape(p)
	vector.DrawFilledRect(screen, s.X, s.Y, s.W, s.H, clr, false)
	for _, c := range s.Caps {
		vector.DrawFilledCircle(screen, c[0], c[1], s.CapRadius, clr, true)
	}
}

// Shape is a paddle in screen space: the straight body plus the two round
// caps that the corner hit test uses.
type Shape struct {
	X, Y, W, H float32
	Caps       [2][2]float32
	CapRadius  float32
}

// PaddleShape maps a paddle from its local frame to the court.
func PaddleShape(p game.Paddle) Shape {
	x0, x1 := p.Transform.ToCourt(0), p.Transform.ToCourt(p.Width)
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	half := p.Height/2 - p.Width
	corners := p.Corners()
	return Shape{
		X:         float32(x0),
		Y:         float32(p.CenterY - half),
		W:         float32(x1 - x0),
		H:         float32(2 * half),
		Caps:      [2][2]float32{{float32(corners[0].X), float32(corners[0].Y)}, {float32(corners[1].X), float32(corners[1].Y)}},
		CapRadius: float32(p.Width),
	}
}

func banner(snap client.Snapshot) string {
	switch snap.State {
	case game.StateAwaitingPeer:
		return fmt.Sprintf("Session %s: waiting for opponent", snap.SessionID)
	case game.StateInProgress:
		return fmt.Sprintf("Session %s: playing %s (arrows move, R resets)", snap.SessionID, snap.LocalSide)
	case game.StateEnded:
		if snap.Won {
			return "You won! :) Press Enter to play again"
		}
		return "You lost... :( Press Enter to play again"
	}
	return ""
}

package colorbook

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// hudState is the toggleable status overlay (Tab).
type hudState struct {
	visible bool
	dirty   bool
	img     *ebiten.Image
	text    string
	frames  int
	fps     float64
}

// hudText describes the current tool, zoom and history position.
func (s *Session) hudText() string {
	t := s.tools
	tool := t.Tool.String()
	if t.Tool == ToolBrush {
		tool += " " + t.BrushColor.Hex()
	}
	text := fmt.Sprintf("%s %.0fpx\nzoom %.0f%%  undo %d/%d\nFPS: %.1f",
		tool, t.Width(), s.vp.Scale()*100,
		s.history.Cursor(), s.history.Len()-1, s.hud.fps)
	if s.status != "" {
		text += "\n" + s.status
	}
	return text
}

// drawHUD draws the overlay in the top-left corner. The backing image is
// only repainted when the text changes; FPS is sampled every 30 frames.
func (s *Session) drawHUD(screen *ebiten.Image) {
	h := &s.hud
	if !h.visible {
		return
	}
	h.frames++
	if h.frames%30 == 1 {
		h.fps = ebiten.ActualFPS()
	}
	text := s.hudText()
	if h.img == nil {
		// 240x72 fits four lines of the debug font plus a status line.
		h.img = ebiten.NewImage(240, 72)
	}
	if h.dirty || text != h.text {
		h.img.Clear()
		// Semi-transparent background for readability
		h.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(h.img, text)
		h.text = text
		h.dirty = false
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(8, 8)
	screen.DrawImage(h.img, &op)
}

package colorbook

import (
	"context"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	// ShowHUD starts with the status overlay visible.
	ShowHUD bool
}

// Run starts s, opens a window and blocks until it is closed.
func Run(ctx context.Context, s *Session, cfg RunConfig) error {
	if cfg.Title == "" {
		cfg.Title = "Coloring Book"
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 810, 1080
	}
	s.Start(ctx)
	defer s.Close()
	s.hud.visible = cfg.ShowHUD

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.Fullscreen)
	// The composite is only repainted when something changed.
	ebiten.SetScreenClearedEveryFrame(false)

	if err := ebiten.RunGame(s); err != nil {
		return fmt.Errorf("run %s: %w", s.key, err)
	}
	return nil
}

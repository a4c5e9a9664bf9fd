package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/phanxgames/colorbook"
	"github.com/phanxgames/colorbook/internal/config"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		script     string
		fullscreen bool
		hud        bool
	)
	cmd := &cobra.Command{
		Use:   "run [key]",
		Short: "Open a page for drawing",
		Long: `Open the page for key in a window. The key defaults to "jungle".

A JSON test script given with --script is played back as input and the
window closes when it finishes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := "jungle"
			if len(args) == 1 {
				key = args[0]
			}
			return a.run(cmd.Context(), key, script, fullscreen || a.cfg.Window.Fullscreen, hud || a.cfg.Window.HUD)
		},
	}
	cmd.Flags().StringVar(&script, "script", "", "JSON test script to play back")
	cmd.Flags().BoolVar(&fullscreen, "fullscreen", false, "start in fullscreen")
	cmd.Flags().BoolVar(&hud, "hud", false, "show the status overlay")
	return cmd
}

func (a *app) run(ctx context.Context, key, script string, fullscreen, hud bool) error {
	docs, err := a.documents()
	if err != nil {
		return err
	}
	bgs, err := a.backgrounds()
	if err != nil {
		return err
	}

	opts := a.cfg.SessionOptions()
	opts.Store = docs
	opts.Backgrounds = bgs
	opts.Debug = a.logLevel == "debug"

	var runner *colorbook.TestRunner
	if script != "" {
		data, err := os.ReadFile(script)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		if runner, err = colorbook.LoadTestScript(data); err != nil {
			return err
		}
		opts.ExitWhenScriptDone = true
	}

	s, err := colorbook.NewSession(key, opts)
	if err != nil {
		return err
	}
	if runner != nil {
		s.SetTestRunner(runner)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		s.Post((*colorbook.Session).Quit)
	}()

	if a.v.ConfigFileUsed() != "" {
		w, err := config.NewWatcher(a.v, func(c *config.Config) {
			tools := c.ToolConfig()
			s.Post(func(s *colorbook.Session) { s.ApplyTools(tools) })
		})
		if err != nil {
			colorbook.Logger().Warn("config: hot reload disabled", "error", err)
		} else {
			go w.Run(ctx)
		}
	}

	err = colorbook.Run(ctx, s, colorbook.RunConfig{
		Title:      a.cfg.Window.Title + " - " + key,
		Width:      a.cfg.Window.Width,
		Height:     a.cfg.Window.Height,
		Fullscreen: fullscreen,
		ShowHUD:    hud,
	})
	if err != nil {
		return err
	}
	if runner != nil {
		return errors.Join(runner.Errors()...)
	}
	return nil
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/phanxgames/colorbook"
	"github.com/phanxgames/colorbook/internal/config"
	"github.com/phanxgames/colorbook/internal/scenes"
	"github.com/phanxgames/colorbook/internal/store"
)

// app carries state shared by the subcommands once the root command has
// loaded the configuration.
type app struct {
	cfgFile  string
	logLevel string

	v   *viper.Viper
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "colorbook",
		Short: "A coloring book drawing surface",
		Long: `Colorbook shows a coloring page with a drawing layer on top. Draw with
mouse or touch, pinch or scroll to zoom and undo with Ctrl+Z.

Pages are chosen by key: keys containing jungle, dinosaur, garden, farm or
ocean use the matching scene from the assets directory. Drawings are saved
per key in the data directory.

Configuration is read from colorbook.yaml (or --config) and COLORBOOK_*
environment variables, e.g. COLORBOOK_TOOLS_BRUSH_COLOR=#0000ff.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./colorbook.yaml)")
	root.PersistentFlags().StringVarP(&a.logLevel, "log-level", "l", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newRunCmd(a),
		newExportCmd(a),
		newPrintCmd(a),
		newUploadCmd(a),
		newScenesCmd(a),
	)
	return root
}

func (a *app) init() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q", a.logLevel)
	}
	colorbook.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	v, err := config.New(a.cfgFile)
	if err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	a.v, a.cfg = v, cfg
	return nil
}

func (a *app) documents() (*store.FileStore, error) {
	return store.NewFileStore(a.cfg.Paths.Data, colorbook.DefaultCodec.Ext())
}

func (a *app) uploads() (*scenes.Uploads, error) {
	blobs, err := store.NewFileStore(filepath.Join(a.cfg.Paths.Data, "uploads"), "")
	if err != nil {
		return nil, err
	}
	return scenes.NewUploads(blobs), nil
}

func (a *app) library() *scenes.Library {
	return scenes.NewLibrary(os.DirFS(a.cfg.Paths.Assets))
}

// backgrounds resolves uploads first so an uploaded page replaces a scene
// of the same key.
func (a *app) backgrounds() (scenes.Chain, error) {
	up, err := a.uploads()
	if err != nil {
		return nil, err
	}
	return scenes.Chain{up, a.library()}, nil
}

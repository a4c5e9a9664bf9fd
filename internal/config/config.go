// Package config loads colorbook settings using Viper from a YAML file,
// COLORBOOK_ environment variables and command-line flags.
//
// Keys follow the file layout, so canvas.width is COLORBOOK_CANVAS_WIDTH in
// the environment. Validate rejects values the engine cannot work with.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/phanxgames/colorbook"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "COLORBOOK"

type Config struct {
	Canvas   CanvasConfig   `mapstructure:"canvas"`
	Viewport ViewportConfig `mapstructure:"viewport"`
	History  HistoryConfig  `mapstructure:"history"`
	Tools    ToolsConfig    `mapstructure:"tools"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Window   WindowConfig   `mapstructure:"window"`
}

type CanvasConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type ViewportConfig struct {
	MaxScale      float64 `mapstructure:"max_scale"`
	ResetDuration float64 `mapstructure:"reset_duration"`
}

type HistoryConfig struct {
	Limit int `mapstructure:"limit"`
}

type ToolsConfig struct {
	BrushColor  string   `mapstructure:"brush_color"`
	BrushWidth  float64  `mapstructure:"brush_width"`
	EraserWidth float64  `mapstructure:"eraser_width"`
	Palette     []string `mapstructure:"palette"`
}

type PathsConfig struct {
	Data    string `mapstructure:"data"`
	Assets  string `mapstructure:"assets"`
	Exports string `mapstructure:"exports"`
}

type WindowConfig struct {
	Width      int    `mapstructure:"width"`
	Height     int    `mapstructure:"height"`
	Fullscreen bool   `mapstructure:"fullscreen"`
	Title      string `mapstructure:"title"`
	HUD        bool   `mapstructure:"hud"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("canvas.width", colorbook.DefaultWidth)
	v.SetDefault("canvas.height", colorbook.DefaultHeight)
	v.SetDefault("viewport.max_scale", colorbook.DefaultMaxScale)
	v.SetDefault("viewport.reset_duration", 0.35)
	v.SetDefault("history.limit", 100)
	v.SetDefault("tools.brush_color", "#ff0000")
	v.SetDefault("tools.brush_width", 10)
	v.SetDefault("tools.eraser_width", 10)
	v.SetDefault("tools.palette", []string{})
	v.SetDefault("paths.data", "data")
	v.SetDefault("paths.assets", "assets")
	v.SetDefault("paths.exports", "exports")
	v.SetDefault("window.width", 810)
	v.SetDefault("window.height", 1080)
	v.SetDefault("window.fullscreen", false)
	v.SetDefault("window.title", "Coloring Book")
	v.SetDefault("window.hud", false)
}

// New returns a Viper instance with defaults and environment overrides
// set up. file, when not empty, is read as the config file; otherwise
// colorbook.yaml is searched for in the working directory and is optional.
func New(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("colorbook")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// Viper does not split comma-separated env values into slices.
	if len(cfg.Tools.Palette) == 1 && strings.Contains(cfg.Tools.Palette[0], ",") {
		cfg.Tools.Palette = strings.Split(cfg.Tools.Palette[0], ",")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks every value for range and format errors.
func (c *Config) Validate() error {
	var errs []error
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas: size %dx%d must be positive", c.Canvas.Width, c.Canvas.Height))
	}
	if c.Canvas.Width > 8192 || c.Canvas.Height > 8192 {
		errs = append(errs, fmt.Errorf("canvas: size %dx%d exceeds 8192", c.Canvas.Width, c.Canvas.Height))
	}
	if c.Viewport.MaxScale <= 0 {
		errs = append(errs, fmt.Errorf("viewport: max_scale %v must be positive", c.Viewport.MaxScale))
	}
	if c.Viewport.ResetDuration < 0 {
		errs = append(errs, fmt.Errorf("viewport: reset_duration %v must not be negative", c.Viewport.ResetDuration))
	}
	if c.History.Limit < 0 {
		errs = append(errs, fmt.Errorf("history: limit %d must not be negative", c.History.Limit))
	}
	if _, err := colorbook.ParseHexColor(c.Tools.BrushColor); err != nil {
		errs = append(errs, fmt.Errorf("tools: brush_color: %w", err))
	}
	for i, p := range c.Tools.Palette {
		if _, err := colorbook.ParseHexColor(p); err != nil {
			errs = append(errs, fmt.Errorf("tools: palette[%d]: %w", i, err))
		}
	}
	if len(c.Tools.Palette) > 9 {
		errs = append(errs, fmt.Errorf("tools: palette has %d colors, at most 9", len(c.Tools.Palette)))
	}
	if !validWidth(c.Tools.BrushWidth) {
		errs = append(errs, fmt.Errorf("tools: brush_width %v out of range", c.Tools.BrushWidth))
	}
	if !validWidth(c.Tools.EraserWidth) {
		errs = append(errs, fmt.Errorf("tools: eraser_width %v out of range", c.Tools.EraserWidth))
	}
	if c.Paths.Data == "" {
		errs = append(errs, errors.New("paths: data must be set"))
	}
	return errors.Join(errs...)
}

func validWidth(w float64) bool {
	return w >= colorbook.MinToolWidth && w <= colorbook.MaxToolWidth
}

// ToolConfig builds the live tool state. Validate must have passed.
func (c *Config) ToolConfig() *colorbook.ToolConfig {
	t := colorbook.DefaultTools()
	if col, err := colorbook.ParseHexColor(c.Tools.BrushColor); err == nil {
		t.BrushColor = col
	}
	t.SetBrushWidth(c.Tools.BrushWidth)
	t.SetEraserWidth(c.Tools.EraserWidth)
	if len(c.Tools.Palette) > 0 {
		t.Palette = t.Palette[:0]
		for _, p := range c.Tools.Palette {
			if col, err := colorbook.ParseHexColor(p); err == nil {
				t.Palette = append(t.Palette, col)
			}
		}
	}
	return t
}

// SessionOptions maps the configuration onto colorbook.Options. Store and
// background sources are wired by the caller.
func (c *Config) SessionOptions() colorbook.Options {
	return colorbook.Options{
		Width:         c.Canvas.Width,
		Height:        c.Canvas.Height,
		MaxScale:      c.Viewport.MaxScale,
		HistoryLimit:  c.History.Limit,
		Tools:         c.ToolConfig(),
		ExportDir:     c.Paths.Exports,
		ResetDuration: float32(c.Viewport.ResetDuration),
	}
}

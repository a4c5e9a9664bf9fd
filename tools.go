package colorbook

import "math"

// Tool width bounds in logical pixels.
const (
	MinToolWidth = 1.0
	MaxToolWidth = 200.0
)

// ToolConfig is the live tool state of a session: which tool is active and
// the brush and eraser settings. It is passed explicitly to the components
// that need it; there is no package-level tool state.
type ToolConfig struct {
	Tool        Tool
	BrushColor  Color
	BrushWidth  float64
	EraserWidth float64
	// Palette lists quick-select brush colors (keys 1-9).
	Palette []Color
}

// DefaultPalette is the quick-select palette used when none is configured.
var DefaultPalette = []Color{
	{1, 0, 0, 1},
	{1, 0.5, 0, 1},
	{1, 0.85, 0, 1},
	{0, 0.7, 0.2, 1},
	{0, 0.6, 1, 1},
	{0.35, 0.2, 0.8, 1},
	{0.95, 0.4, 0.7, 1},
	{0.45, 0.3, 0.15, 1},
	{0, 0, 0, 1},
}

// DefaultTools returns the starting tool state: a red 10px brush and a 10px
// eraser.
func DefaultTools() *ToolConfig {
	return &ToolConfig{
		Tool:        ToolBrush,
		BrushColor:  Color{1, 0, 0, 1},
		BrushWidth:  10,
		EraserWidth: 10,
		Palette:     append([]Color(nil), DefaultPalette...),
	}
}

// StrokeMode returns the mode for the next stroke segment.
func (t *ToolConfig) StrokeMode() StrokeMode {
	if t.Tool == ToolEraser {
		return StrokeMode{Tool: ToolEraser, Width: t.EraserWidth}
	}
	return StrokeMode{Tool: ToolBrush, Color: t.BrushColor, Width: t.BrushWidth}
}

// SetBrushWidth sets the brush width, clamped to [MinToolWidth, MaxToolWidth].
func (t *ToolConfig) SetBrushWidth(w float64) {
	t.BrushWidth = clampWidth(w, t.BrushWidth)
}

// SetEraserWidth sets the eraser width, clamped to [MinToolWidth, MaxToolWidth].
func (t *ToolConfig) SetEraserWidth(w float64) {
	t.EraserWidth = clampWidth(w, t.EraserWidth)
}

// Width returns the width of the active tool.
func (t *ToolConfig) Width() float64 {
	if t.Tool == ToolEraser {
		return t.EraserWidth
	}
	return t.BrushWidth
}

// AdjustWidth changes the active tool's width by delta.
func (t *ToolConfig) AdjustWidth(delta float64) {
	if t.Tool == ToolEraser {
		t.SetEraserWidth(t.EraserWidth + delta)
		return
	}
	t.SetBrushWidth(t.BrushWidth + delta)
}

// SelectPalette switches to the brush with palette color i. Out of range
// indices are ignored.
func (t *ToolConfig) SelectPalette(i int) bool {
	if i < 0 || i >= len(t.Palette) {
		return false
	}
	t.BrushColor = t.Palette[i]
	t.Tool = ToolBrush
	return true
}

// Clone returns a copy that shares nothing with t.
func (t *ToolConfig) Clone() *ToolConfig {
	c := *t
	c.Palette = append([]Color(nil), t.Palette...)
	return &c
}

func clampWidth(w, fallback float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return fallback
	}
	return math.Max(MinToolWidth, math.Min(w, MaxToolWidth))
}

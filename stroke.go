package colorbook

import (
	"image/color"
	"math"

	"github.com/gogpu/gg"
)

// StrokeMode is the tool state applied to a stroke segment.
type StrokeMode struct {
	Tool  Tool
	Color Color   // ignored by ToolEraser
	Width float64 // diameter in logical pixels
}

// ToolSource supplies the live stroke mode. It is consulted for every
// appended point, so changes only affect segments drawn afterwards.
type ToolSource interface {
	StrokeMode() StrokeMode
}

// Committer receives a snapshot request when a stroke ends.
type Committer interface {
	Commit() error
}

// StrokeRenderer paints and erases round-capped connected segments into the
// Drawing layer. It holds no reference to the Background, so erasing can
// only ever clear Drawing pixels.
//
// gg rasterizes each segment as a coverage mask into a scratch pixmap; the
// mask is then blended into the straight-alpha layer. The layer itself is
// never handed to gg, which blends premultiplied.
type StrokeRenderer struct {
	layer   *Layer
	tools   ToolSource
	history Committer

	scratch   *gg.Pixmap
	scratchDC *gg.Context

	active bool
	last   Point
	mode   StrokeMode

	onChange func()
}

// NewStrokeRenderer creates a renderer drawing into layer. tools and history
// may be nil; without tools the mode passed to BeginStroke is used for the
// whole stroke.
func NewStrokeRenderer(layer *Layer, tools ToolSource, history Committer) *StrokeRenderer {
	w, h := layer.Width(), layer.Height()
	r := &StrokeRenderer{
		layer:   layer,
		tools:   tools,
		history: history,
		scratch: gg.NewPixmap(w, h),
	}
	r.scratchDC = gg.NewContext(w, h, gg.WithPixmap(r.scratch))
	r.scratchDC.SetRGBA(1, 1, 1, 1)
	return r
}

// SetOnChange registers fn to be called after every change to the layer.
func (r *StrokeRenderer) SetOnChange(fn func()) { r.onChange = fn }

// Active reports whether a stroke is in progress.
func (r *StrokeRenderer) Active() bool { return r.active }

// LastPoint returns the most recent logical point of the active stroke.
func (r *StrokeRenderer) LastPoint() Point { return r.last }

// BeginStroke starts a stroke at logical point p and stamps a round dot
// there. A stroke still in progress is ended first.
func (r *StrokeRenderer) BeginStroke(p Point, mode StrokeMode) {
	if !isFinite(p.X, p.Y) {
		return
	}
	if r.active {
		if err := r.EndStroke(); err != nil {
			Logger().Warn("stroke: commit failed", "error", err)
		}
	}
	r.active = true
	r.last = p
	r.mode = mode
	r.paint(p, p, mode)
}

// AppendPoint draws a segment from the previous point to p with the live
// stroke mode.
func (r *StrokeRenderer) AppendPoint(p Point) {
	if !r.active || !isFinite(p.X, p.Y) {
		return
	}
	if r.tools != nil {
		r.mode = r.tools.StrokeMode()
	}
	r.paint(r.last, p, r.mode)
	r.last = p
}

// EndStroke finishes the active stroke and commits a history snapshot. It is
// a no-op without an active stroke.
func (r *StrokeRenderer) EndStroke() error {
	if !r.active {
		return nil
	}
	r.active = false
	if r.history == nil {
		return nil
	}
	return r.history.Commit()
}

func (r *StrokeRenderer) paint(a, b Point, mode StrokeMode) {
	rad := mode.Width / 2
	if rad <= 0 || !isFinite(rad) {
		return
	}
	capsule(r.scratchDC, a, b, rad)
	if err := r.scratchDC.Fill(); err != nil {
		Logger().Warn("stroke: fill failed", "error", err)
		return
	}
	if mode.Tool == ToolEraser {
		r.apply(a, b, rad, eraseOut)
	} else {
		src := mode.Color.NRGBA()
		r.apply(a, b, rad, func(px []byte, cov uint32) { brushOver(px, src, cov) })
	}
	r.layer.Touch()
	if r.onChange != nil {
		r.onChange()
	}
}

// apply hands every covered layer pixel within the segment's bounds to fn
// and clears the scratch coverage behind it.
func (r *StrokeRenderer) apply(a, b Point, rad float64, fn func(px []byte, cov uint32)) {
	w, h := r.layer.Width(), r.layer.Height()
	x0 := max(int(math.Floor(math.Min(a.X, b.X)-rad))-1, 0)
	y0 := max(int(math.Floor(math.Min(a.Y, b.Y)-rad))-1, 0)
	x1 := min(int(math.Ceil(math.Max(a.X, b.X)+rad))+1, w)
	y1 := min(int(math.Ceil(math.Max(a.Y, b.Y)+rad))+1, h)

	dst := r.layer.Pixmap().Data()
	cov := r.scratch.Data()
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			i := (y*w + x) * 4
			c := uint32(cov[i+3])
			if c == 0 {
				continue
			}
			cov[i], cov[i+1], cov[i+2], cov[i+3] = 0, 0, 0, 0
			fn(dst[i:i+4], c)
		}
	}
}

// brushOver composites src at coverage cov (0-255) over the straight-alpha
// pixel px.
func brushOver(px []byte, src color.NRGBA, cov uint32) {
	const full = 255 * 255
	sa := uint64(src.A) * uint64(cov) // 0..full
	if sa == 0 {
		return
	}
	da := uint64(px[3])
	outA := sa*255 + da*(full-sa) // alpha scaled by full*255
	if outA == 0 {
		return
	}
	s := [3]uint64{uint64(src.R), uint64(src.G), uint64(src.B)}
	for k := 0; k < 3; k++ {
		num := s[k]*sa*255 + uint64(px[k])*da*(full-sa)
		px[k] = uint8((num + outA/2) / outA)
	}
	px[3] = uint8((outA + full/2) / full)
}

// eraseOut applies destination-out at coverage cov. Color channels are kept
// unless the pixel becomes fully transparent.
func eraseOut(px []byte, cov uint32) {
	alpha := uint32(px[3]) * (255 - cov) / 255
	if alpha == 0 {
		px[0], px[1], px[2], px[3] = 0, 0, 0, 0
		return
	}
	px[3] = uint8(alpha)
}

// capsule appends the outline of a round-capped segment from a to b with
// radius rad. Every subpath winds the same way so the nonzero fill covers
// their union exactly once.
func capsule(dc *gg.Context, a, b Point, rad float64) {
	dc.DrawCircle(a.X, a.Y, rad)
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l < 1e-9 {
		return
	}
	dc.DrawCircle(b.X, b.Y, rad)
	nx, ny := -dy/l*rad, dx/l*rad
	dc.MoveTo(a.X-nx, a.Y-ny)
	dc.LineTo(b.X-nx, b.Y-ny)
	dc.LineTo(b.X+nx, b.Y+ny)
	dc.LineTo(a.X+nx, a.Y+ny)
	dc.ClosePath()
}

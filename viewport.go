package colorbook

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	// DefaultMaxScale is the zoom ceiling used when none is configured.
	DefaultMaxScale = 3.0

	wheelZoomIn  = 1.1
	wheelZoomOut = 0.9
)

// viewAnim holds active tweens for an animated view change.
type viewAnim struct {
	scale *gween.Tween
	panX  *gween.Tween
	panY  *gween.Tween
	done  [3]bool

	targetScale, targetX, targetY float64
}

// Viewport maps between screen space and the fixed logical space of the
// page. Scale is kept within [MinScale, MaxScale]; MinScale is the "cover"
// fit recomputed on every Resize so the Background always fills the screen
// when fully zoomed out.
type Viewport struct {
	scale float64
	panX  float64
	panY  float64

	minScale float64
	maxScale float64
	// maxConfigured is the requested ceiling; maxScale is raised above it
	// when the cover fit alone needs more.
	maxConfigured float64

	logicalW, logicalH float64
	screenW, screenH   float64
	fitted             bool

	matrix    [6]float64
	invMatrix [6]float64
	dirty  bool

	anim     *viewAnim
	onChange func()
}

// NewViewport creates a viewport for a logical page of the given size.
// A non-positive maxScale selects DefaultMaxScale.
func NewViewport(logicalW, logicalH int, maxScale float64) *Viewport {
	if maxScale <= 0 || !isFinite(maxScale) {
		maxScale = DefaultMaxScale
	}
	lw, lh := float64(max(logicalW, 1)), float64(max(logicalH, 1))
	minScale := math.Min(1, maxScale)
	return &Viewport{
		scale:         minScale,
		minScale:      minScale,
		maxScale:      maxScale,
		maxConfigured: maxScale,
		logicalW:      lw,
		logicalH:      lh,
		dirty:         true,
	}
}

// SetOnChange registers fn to be called after every change of scale or pan.
func (v *Viewport) SetOnChange(fn func()) {
	v.onChange = fn
}

// Scale returns the current zoom factor.
func (v *Viewport) Scale() float64 { return v.scale }

// Pan returns the screen-space offset of the logical origin.
func (v *Viewport) Pan() (x, y float64) { return v.panX, v.panY }

// MinScale returns the cover-fit scale for the current screen size.
func (v *Viewport) MinScale() float64 { return v.minScale }

// MaxScale returns the zoom ceiling.
func (v *Viewport) MaxScale() float64 { return v.maxScale }

// LogicalSize returns the page size in logical units.
func (v *Viewport) LogicalSize() (w, h float64) { return v.logicalW, v.logicalH }

// ScreenSize returns the size passed to the last effective Resize.
func (v *Viewport) ScreenSize() (w, h float64) { return v.screenW, v.screenH }

// Animating reports whether an animated view change is in progress.
func (v *Viewport) Animating() bool { return v.anim != nil }

// ToLogical converts screen coordinates to logical page coordinates.
func (v *Viewport) ToLogical(sx, sy float64) (x, y float64) {
	return (sx - v.panX) / v.scale, (sy - v.panY) / v.scale
}

// ToScreen converts logical page coordinates to screen coordinates.
func (v *Viewport) ToScreen(x, y float64) (sx, sy float64) {
	return x*v.scale + v.panX, y*v.scale + v.panY
}

// SetScale zooms to newScale (clamped to [MinScale, MaxScale]) keeping the
// logical point under the anchor fixed on screen.
func (v *Viewport) SetScale(newScale, anchorX, anchorY float64) {
	if !isFinite(newScale, anchorX, anchorY) {
		Logger().Debug("viewport: rejected non-finite scale", "scale", newScale, "anchorX", anchorX, "anchorY", anchorY)
		return
	}
	v.anim = nil
	lx, ly := v.ToLogical(anchorX, anchorY)
	s := v.clampScale(newScale)
	v.set(s, anchorX-lx*s, anchorY-ly*s)
}

// ZoomAt multiplies the scale by factor around the anchor (wheel zoom).
func (v *Viewport) ZoomAt(factor, anchorX, anchorY float64) {
	if factor <= 0 {
		return
	}
	v.SetScale(v.scale*factor, anchorX, anchorY)
}

// ApplyPinchDelta sets scale and pan together for a two-finger gesture:
// scale becomes newScale (clamped) and pan becomes startPan moved by delta.
// Unlike SetScale nothing is anchored.
func (v *Viewport) ApplyPinchDelta(newScale float64, startPan, delta Point) {
	if !isFinite(newScale, startPan.X, startPan.Y, delta.X, delta.Y) {
		Logger().Debug("viewport: rejected non-finite pinch", "scale", newScale)
		return
	}
	v.anim = nil
	v.set(v.clampScale(newScale), startPan.X+delta.X, startPan.Y+delta.Y)
}

// PanBy moves the page by (dx, dy) screen pixels.
func (v *Viewport) PanBy(dx, dy float64) {
	if !isFinite(dx, dy) || (dx == 0 && dy == 0) {
		return
	}
	v.anim = nil
	v.set(v.scale, v.panX+dx, v.panY+dy)
}

// Resize recomputes MinScale for a screen of w×h pixels. The first resize
// fits the page (scale = MinScale, centered). Later resizes only snap and
// recenter when the current scale no longer covers the screen. A zero-size
// screen is ignored. Resize never touches history or the Drawing layer.
func (v *Viewport) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	sizeChanged := v.screenW != float64(w) || v.screenH != float64(h)
	v.screenW, v.screenH = float64(w), float64(h)
	v.minScale = math.Max(v.screenW/v.logicalW, v.screenH/v.logicalH)
	v.maxScale = math.Max(v.maxConfigured, v.minScale)

	moved := false
	switch {
	case !v.fitted || v.scale < v.minScale:
		v.fitted = true
		v.anim = nil
		s := v.minScale
		px, py := v.centerPan(s)
		moved = v.set(s, px, py)
	case v.scale > v.maxScale:
		moved = v.set(v.maxScale, v.panX, v.panY)
	}
	// The screen area changed even if the page did not move.
	if sizeChanged && !moved {
		v.dirty = true
		v.notify()
	}
}

// SetMaxScale changes the zoom ceiling. It is never lowered below MinScale.
func (v *Viewport) SetMaxScale(m float64) {
	if m <= 0 || !isFinite(m) {
		return
	}
	v.maxConfigured = m
	v.maxScale = math.Max(m, v.minScale)
	if v.scale > v.maxScale {
		v.set(v.maxScale, v.panX, v.panY)
	}
}

// Reset returns to the cover fit, centered.
func (v *Viewport) Reset() {
	v.anim = nil
	s := v.minScale
	px, py := v.centerPan(s)
	v.set(s, px, py)
}

// AnimateReset tweens back to the cover fit over duration seconds.
// Advance it with Update. A nil easeFn selects ease.OutCubic.
func (v *Viewport) AnimateReset(duration float32, easeFn ease.TweenFunc) {
	if duration <= 0 {
		v.Reset()
		return
	}
	if easeFn == nil {
		easeFn = ease.OutCubic
	}
	s := v.minScale
	px, py := v.centerPan(s)
	v.anim = &viewAnim{
		scale: gween.New(float32(v.scale), float32(s), duration, easeFn),
		panX:  gween.New(float32(v.panX), float32(px), duration, easeFn),
		panY:  gween.New(float32(v.panY), float32(py), duration, easeFn),

		targetScale: s,
		targetX:     px,
		targetY:     py,
	}
}

// Update advances an animated view change by dt seconds.
func (v *Viewport) Update(dt float32) {
	a := v.anim
	if a == nil {
		return
	}
	s, px, py := v.scale, v.panX, v.panY
	if !a.done[0] {
		val, done := a.scale.Update(dt)
		s = float64(val)
		a.done[0] = done
	}
	if !a.done[1] {
		val, done := a.panX.Update(dt)
		px = float64(val)
		a.done[1] = done
	}
	if !a.done[2] {
		val, done := a.panY.Update(dt)
		py = float64(val)
		a.done[2] = done
	}
	if a.done[0] && a.done[1] && a.done[2] {
		// Land exactly on the target; the tweens run in float32.
		s, px, py = a.targetScale, a.targetX, a.targetY
		v.anim = nil
	}
	v.set(v.clampScale(s), px, py)
}

// Matrix returns the logical-to-screen affine matrix.
func (v *Viewport) Matrix() [6]float64 {
	v.computeMatrix()
	return v.matrix
}

// InverseMatrix returns the screen-to-logical affine matrix.
func (v *Viewport) InverseMatrix() [6]float64 {
	v.computeMatrix()
	return v.invMatrix
}

// VisibleBounds returns the logical-space rectangle currently on screen.
func (v *Viewport) VisibleBounds() Rect {
	inv := v.InverseMatrix()
	x0, y0 := transformPoint(inv, 0, 0)
	x1, y1 := transformPoint(inv, v.screenW, v.screenH)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// CoversScreen reports whether the page fully covers the screen, within a
// small tolerance for rounding.
func (v *Viewport) CoversScreen() bool {
	const tol = 1e-6
	right := v.panX + v.logicalW*v.scale
	bottom := v.panY + v.logicalH*v.scale
	return v.panX <= tol && v.panY <= tol &&
		right >= v.screenW-tol && bottom >= v.screenH-tol
}

func (v *Viewport) clampScale(s float64) float64 {
	return math.Max(v.minScale, math.Min(s, v.maxScale))
}

func (v *Viewport) centerPan(s float64) (float64, float64) {
	return (v.screenW - v.logicalW*s) / 2, (v.screenH - v.logicalH*s) / 2
}

// set stores a new state and notifies the change hook when it differs. It
// reports whether anything changed.
func (v *Viewport) set(s, px, py float64) bool {
	if s == v.scale && px == v.panX && py == v.panY {
		return false
	}
	v.scale, v.panX, v.panY = s, px, py
	v.dirty = true
	v.notify()
	return true
}

func (v *Viewport) notify() {
	if v.onChange != nil {
		v.onChange()
	}
}

// computeMatrix recomputes the cached matrices if dirty.
func (v *Viewport) computeMatrix() {
	if !v.dirty {
		return
	}
	v.dirty = false
	v.matrix = scaleTranslate(v.scale, v.panX, v.panY)
	v.invMatrix = invertAffine(v.matrix)
}

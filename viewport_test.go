package colorbook

import (
	"math"
	"testing"
)

func newFittedViewport(sw, sh int) *Viewport {
	v := NewViewport(DefaultWidth, DefaultHeight, DefaultMaxScale)
	v.Resize(sw, sh)
	return v
}

func TestViewportCoverFit(t *testing.T) {
	v := newFittedViewport(800, 600)

	want := 800.0 / 1080.0
	assertNear(t, "scale", v.Scale(), want)
	if math.Abs(v.Scale()-0.741) > 0.001 {
		t.Errorf("scale = %v, want ≈0.741", v.Scale())
	}
	assertNear(t, "minScale", v.MinScale(), want)

	px, py := v.Pan()
	assertNear(t, "panX", px, 0)
	assertNear(t, "panY", py, (600-1440*want)/2)
	if !v.CoversScreen() {
		t.Error("page does not cover the screen after fit")
	}
}

func TestViewportCoverFitWide(t *testing.T) {
	v := newFittedViewport(2000, 500)
	want := 2000.0 / 1080.0
	assertNear(t, "scale", v.Scale(), want)
	px, _ := v.Pan()
	assertNear(t, "panX", px, 0)
}

func TestViewportRoundTrip(t *testing.T) {
	v := newFittedViewport(800, 600)
	v.SetScale(1.7, 123, 456)
	v.PanBy(-40, 25)

	for _, p := range []Point{{0, 0}, {540, 720}, {1080, 1440}, {13.5, 999.25}} {
		sx, sy := v.ToScreen(p.X, p.Y)
		lx, ly := v.ToLogical(sx, sy)
		if math.Abs(lx-p.X) > 1e-6 || math.Abs(ly-p.Y) > 1e-6 {
			t.Errorf("round trip %v = (%v, %v)", p, lx, ly)
		}
	}
}

func TestViewportSetScaleAnchor(t *testing.T) {
	v := newFittedViewport(800, 600)
	ax, ay := 300.0, 200.0
	lx, ly := v.ToLogical(ax, ay)

	v.SetScale(2.5, ax, ay)
	assertNear(t, "scale", v.Scale(), 2.5)

	gx, gy := v.ToLogical(ax, ay)
	assertNear(t, "anchor x", gx, lx)
	assertNear(t, "anchor y", gy, ly)
}

func TestViewportSetScaleClamps(t *testing.T) {
	v := newFittedViewport(800, 600)

	v.SetScale(100, 400, 300)
	assertNear(t, "max clamp", v.Scale(), DefaultMaxScale)

	v.SetScale(0.01, 400, 300)
	assertNear(t, "min clamp", v.Scale(), v.MinScale())

	v.SetScale(-3, 400, 300)
	assertNear(t, "negative", v.Scale(), v.MinScale())
}

func TestViewportRejectsNonFinite(t *testing.T) {
	v := newFittedViewport(800, 600)
	v.SetScale(2, 100, 100)
	s := v.Scale()
	px, py := v.Pan()

	v.SetScale(math.NaN(), 10, 10)
	v.SetScale(2, math.Inf(1), 0)
	v.ApplyPinchDelta(math.Inf(1), Point{}, Point{})
	v.ApplyPinchDelta(2, Point{X: math.NaN()}, Point{})
	v.PanBy(math.NaN(), 1)

	if v.Scale() != s {
		t.Errorf("scale changed to %v", v.Scale())
	}
	if x, y := v.Pan(); x != px || y != py {
		t.Errorf("pan changed to (%v, %v)", x, y)
	}
}

func TestViewportZoomAt(t *testing.T) {
	v := newFittedViewport(800, 600)
	v.SetScale(1, 0, 0)
	v.ZoomAt(wheelZoomIn, 400, 300)
	assertNear(t, "zoom in", v.Scale(), 1.1)
	v.ZoomAt(wheelZoomOut, 400, 300)
	assertNear(t, "zoom out", v.Scale(), 1.1*0.9)

	v.ZoomAt(0, 400, 300)
	assertNear(t, "zero factor ignored", v.Scale(), 1.1*0.9)
}

func TestViewportApplyPinchDelta(t *testing.T) {
	v := newFittedViewport(800, 600)
	v.ApplyPinchDelta(1.5, Point{X: -10, Y: -20}, Point{X: 5, Y: 7})
	assertNear(t, "scale", v.Scale(), 1.5)
	px, py := v.Pan()
	assertNear(t, "panX", px, -5)
	assertNear(t, "panY", py, -13)
}

func TestViewportResizeSnapsWhenTooSmall(t *testing.T) {
	v := newFittedViewport(800, 600)
	v.SetScale(0.9, 0, 0)
	v.PanBy(-50, -50)

	// Bigger window: 0.9 no longer covers 1200 px of width.
	v.Resize(1200, 600)
	want := 1200.0 / 1080.0
	assertNear(t, "scale", v.Scale(), want)
	px, py := v.Pan()
	assertNear(t, "panX", px, 0)
	assertNear(t, "panY", py, (600-1440*want)/2)
}

func TestViewportResizeKeepsLargerScale(t *testing.T) {
	v := newFittedViewport(800, 600)
	v.SetScale(2, 400, 300)
	px, py := v.Pan()

	v.Resize(900, 700)
	assertNear(t, "scale", v.Scale(), 2)
	gx, gy := v.Pan()
	assertNear(t, "panX", gx, px)
	assertNear(t, "panY", gy, py)
}

func TestViewportResizeIgnoresZero(t *testing.T) {
	v := newFittedViewport(800, 600)
	s := v.Scale()
	v.Resize(0, 600)
	v.Resize(800, -1)
	assertNear(t, "scale", v.Scale(), s)
	w, h := v.ScreenSize()
	if w != 800 || h != 600 {
		t.Errorf("screen = %vx%v, want 800x600", w, h)
	}
}

func TestViewportMaxScaleRaisedForCover(t *testing.T) {
	v := NewViewport(100, 100, 2)
	v.Resize(500, 300)
	assertNear(t, "minScale", v.MinScale(), 5)
	assertNear(t, "maxScale", v.MaxScale(), 5)
	assertNear(t, "scale", v.Scale(), 5)
}

func TestViewportSetMaxScale(t *testing.T) {
	v := newFittedViewport(800, 600)
	v.SetScale(2.8, 0, 0)
	v.SetMaxScale(2)
	assertNear(t, "scale", v.Scale(), 2)
	assertNear(t, "maxScale", v.MaxScale(), 2)

	v.SetMaxScale(0.1)
	assertNear(t, "floor", v.MaxScale(), v.MinScale())
}

func TestViewportReset(t *testing.T) {
	v := newFittedViewport(800, 600)
	v.SetScale(2.2, 100, 100)
	v.PanBy(300, 300)
	v.Reset()
	assertNear(t, "scale", v.Scale(), v.MinScale())
	if !v.CoversScreen() {
		t.Error("page does not cover the screen after reset")
	}
}

func TestViewportAnimateReset(t *testing.T) {
	v := newFittedViewport(800, 600)
	v.SetScale(2.5, 400, 300)
	fitPanX, fitPanY := v.centerPan(v.MinScale())

	v.AnimateReset(0.5, nil)
	if !v.Animating() {
		t.Fatal("not animating after AnimateReset")
	}
	v.Update(0.25)
	if !v.Animating() {
		t.Fatal("animation finished early")
	}
	if s := v.Scale(); s <= v.MinScale() || s >= 2.5 {
		t.Errorf("mid-animation scale = %v", s)
	}
	for i := 0; i < 10 && v.Animating(); i++ {
		v.Update(0.1)
	}
	if v.Animating() {
		t.Fatal("animation did not finish")
	}
	assertNear(t, "scale", v.Scale(), v.MinScale())
	px, py := v.Pan()
	assertNear(t, "panX", px, fitPanX)
	assertNear(t, "panY", py, fitPanY)
}

func TestViewportAnimateResetInterrupted(t *testing.T) {
	v := newFittedViewport(800, 600)
	v.SetScale(2.5, 400, 300)
	v.AnimateReset(1, nil)
	v.Update(0.1)
	v.PanBy(10, 0)
	if v.Animating() {
		t.Error("user pan should cancel the animation")
	}
}

func TestViewportAnimateResetZeroDuration(t *testing.T) {
	v := newFittedViewport(800, 600)
	v.SetScale(2.5, 400, 300)
	v.AnimateReset(0, nil)
	if v.Animating() {
		t.Error("zero duration should reset immediately")
	}
	assertNear(t, "scale", v.Scale(), v.MinScale())
}

func TestViewportOnChange(t *testing.T) {
	v := NewViewport(100, 100, 3)
	calls := 0
	v.SetOnChange(func() { calls++ })
	v.Resize(200, 200)
	if calls != 1 {
		t.Fatalf("calls after resize = %d, want 1", calls)
	}
	v.SetScale(v.Scale(), 0, 0)
	if calls != 1 {
		t.Errorf("no-op SetScale notified, calls = %d", calls)
	}
	v.PanBy(1, 0)
	if calls != 2 {
		t.Errorf("calls after pan = %d, want 2", calls)
	}
}

func TestViewportResizeNotifiesWithoutMoving(t *testing.T) {
	v := newFittedViewport(800, 600)
	scale := v.Scale()
	px, py := v.Pan()
	calls := 0
	v.SetOnChange(func() { calls++ })

	// Still covered at the current scale, so the page stays put.
	v.Resize(700, 600)
	if v.Scale() != scale {
		t.Fatalf("scale changed to %v", v.Scale())
	}
	if gx, gy := v.Pan(); gx != px || gy != py {
		t.Fatalf("pan changed to (%v,%v)", gx, gy)
	}
	if calls != 1 {
		t.Errorf("calls after resize = %d, want 1", calls)
	}

	v.Resize(700, 600)
	if calls != 1 {
		t.Errorf("same-size resize notified, calls = %d", calls)
	}
}

func TestViewportMatrixAndVisibleBounds(t *testing.T) {
	v := newFittedViewport(800, 600)
	v.SetScale(2, 0, 0)
	m := v.Matrix()
	px, py := v.Pan()
	assertMatrix(t, "matrix", m, [6]float64{2, 0, 0, 2, px, py})

	b := v.VisibleBounds()
	assertNear(t, "width", b.Width, 400)
	assertNear(t, "height", b.Height, 300)
	lx, ly := v.ToLogical(0, 0)
	assertNear(t, "x", b.X, lx)
	assertNear(t, "y", b.Y, ly)
}

func TestViewportInverseMatrix(t *testing.T) {
	v := newFittedViewport(800, 600)
	v.SetScale(2.5, 120, 80)
	assertMatrix(t, "m*inv", multiplyAffine(v.Matrix(), v.InverseMatrix()), identityTransform)

	lx, ly := transformPoint(v.InverseMatrix(), 300, 200)
	wx, wy := v.ToLogical(300, 200)
	assertNear(t, "x", lx, wx)
	assertNear(t, "y", ly, wy)
}

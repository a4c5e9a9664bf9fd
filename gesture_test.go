package colorbook

import (
	"errors"
	"math"
	"testing"
)

// rig wires the drawing surface without a Session.
type rig struct {
	vp      *Viewport
	layer   *Layer
	history *History
	stroke  *StrokeRenderer
	tools   *ToolConfig
	gesture *GestureController
}

// newRig builds a w×h page shown 1:1 on a w×h screen.
func newRig(t *testing.T, w, h int) *rig {
	t.Helper()
	r := &rig{
		vp:    NewViewport(w, h, DefaultMaxScale),
		layer: NewLayer(w, h),
		tools: DefaultTools(),
	}
	r.vp.Resize(w, h)
	var err error
	r.history, err = NewHistory(r.layer, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	r.stroke = NewStrokeRenderer(r.layer, r.tools, r.history)
	r.gesture = NewGestureController(r.vp, r.stroke, r.tools)
	return r
}

func TestGestureStateString(t *testing.T) {
	tests := []struct {
		s    GestureState
		want string
	}{
		{GestureIdle, "idle"},
		{GestureDrawing, "drawing"},
		{GesturePinching, "pinching"},
		{GestureState(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestGestureSinglePointerDraws(t *testing.T) {
	r := newRig(t, 100, 100)
	g := r.gesture

	g.PointerDown(0, 20, 20)
	if g.State() != GestureDrawing {
		t.Fatalf("state = %v, want drawing", g.State())
	}
	if !r.stroke.Active() {
		t.Fatal("stroke not active")
	}
	g.PointerMove(0, 60, 20)
	if r.stroke.LastPoint() != (Point{60, 20}) {
		t.Errorf("last point = %v", r.stroke.LastPoint())
	}
	g.PointerUp(0)

	if g.State() != GestureIdle {
		t.Errorf("state = %v, want idle", g.State())
	}
	if r.history.Len() != 2 || r.history.Cursor() != 1 {
		t.Errorf("history len=%d cursor=%d, want 2/1", r.history.Len(), r.history.Cursor())
	}
	if r.layer.Image().NRGBAAt(40, 20).A != 0xff {
		t.Error("segment not painted")
	}
}

func TestGestureDrawUsesLogicalCoordinates(t *testing.T) {
	r := newRig(t, 100, 100)
	r.vp.SetScale(2, 0, 0) // logical = screen / 2

	r.gesture.PointerDown(0, 100, 100)
	if got := r.stroke.LastPoint(); got != (Point{50, 50}) {
		t.Errorf("logical start = %v, want (50,50)", got)
	}
	r.gesture.PointerUp(0)
}

func TestGesturePinchZoom(t *testing.T) {
	r := newRig(t, 800, 600)
	r.vp.SetScale(1, 0, 0)
	g := r.gesture

	g.PointerDown(1, 300, 300)
	g.PointerDown(2, 400, 300)
	if g.State() != GesturePinching {
		t.Fatalf("state = %v, want pinching", g.State())
	}
	px, py := r.vp.Pan()

	g.PointerMove(2, 450, 300)
	assertNear(t, "scale", r.vp.Scale(), 1.5)

	// Midpoint moved from 350 to 375.
	gx, gy := r.vp.Pan()
	assertNear(t, "panX", gx, px+25)
	assertNear(t, "panY", gy, py)
}

func TestGesturePinchCommitsStroke(t *testing.T) {
	r := newRig(t, 100, 100)
	g := r.gesture

	g.PointerDown(1, 10, 10)
	g.PointerMove(1, 30, 10)
	if r.history.Len() != 1 {
		t.Fatalf("history len before pinch = %d, want 1", r.history.Len())
	}
	g.PointerDown(2, 80, 80)

	if r.stroke.Active() {
		t.Error("stroke still active during pinch")
	}
	if r.history.Len() != 2 {
		t.Errorf("history len = %d, want 2", r.history.Len())
	}

	// Moving the former drawing pointer must not paint.
	before := r.layer.Clone()
	g.PointerMove(1, 10, 90)
	if !r.layer.Equal(before) {
		t.Error("pinch movement painted into the layer")
	}
}

func TestGesturePinchToIdle(t *testing.T) {
	r := newRig(t, 100, 100)
	g := r.gesture
	g.PointerDown(1, 10, 10)
	g.PointerDown(2, 50, 50)
	g.PointerUp(2)

	if g.State() != GestureIdle {
		t.Fatalf("state = %v, want idle", g.State())
	}
	if g.PointerCount() != 1 {
		t.Errorf("pointer count = %d, want 1", g.PointerCount())
	}

	// The leftover pointer does not resume drawing.
	g.PointerMove(1, 40, 40)
	if r.stroke.Active() {
		t.Error("leftover pointer started a stroke")
	}
	g.PointerUp(1)
	if g.PointerCount() != 0 {
		t.Errorf("pointer count = %d, want 0", g.PointerCount())
	}

	// A fresh press draws again.
	g.PointerDown(3, 20, 20)
	if g.State() != GestureDrawing {
		t.Errorf("state = %v, want drawing", g.State())
	}
}

func TestGestureUntrustedEvents(t *testing.T) {
	r := newRig(t, 100, 100)
	g := r.gesture

	// Up and move with no matching down.
	g.PointerUp(5)
	g.PointerMove(5, 10, 10)
	if g.State() != GestureIdle || r.history.Len() != 1 {
		t.Fatalf("stray events changed state: %v, history %d", g.State(), r.history.Len())
	}

	g.PointerDown(0, 10, 10)
	g.PointerDown(0, 50, 50) // duplicate down
	if g.State() != GestureDrawing || g.PointerCount() != 1 {
		t.Errorf("duplicate down: state %v, count %d", g.State(), g.PointerCount())
	}

	g.PointerDown(1, 20, 20)
	g.PointerDown(2, 30, 30) // third pointer
	if g.State() != GesturePinching || g.PointerCount() != 2 {
		t.Errorf("third pointer: state %v, count %d", g.State(), g.PointerCount())
	}
	g.PointerUp(2) // never registered
	if g.State() != GesturePinching {
		t.Errorf("unknown up changed state to %v", g.State())
	}
}

func TestGestureRejectsNonFinite(t *testing.T) {
	r := newRig(t, 100, 100)
	r.gesture.PointerDown(0, math.NaN(), 10)
	if r.gesture.PointerCount() != 0 {
		t.Error("NaN pointer registered")
	}
}

func TestGestureCancel(t *testing.T) {
	r := newRig(t, 100, 100)
	g := r.gesture
	g.PointerDown(0, 10, 10)
	g.PointerMove(0, 20, 20)
	g.Cancel()

	if g.State() != GestureIdle || g.PointerCount() != 0 {
		t.Errorf("after cancel: state %v, count %d", g.State(), g.PointerCount())
	}
	if r.history.Len() != 2 {
		t.Errorf("cancel should commit the partial stroke, history len %d", r.history.Len())
	}
}

func TestGestureToolChangeMidStroke(t *testing.T) {
	r := newRig(t, 100, 40)
	g := r.gesture
	g.PointerDown(0, 10, 20)
	g.PointerMove(0, 40, 20)
	r.tools.BrushColor = Color{0, 0, 1, 1}
	g.PointerMove(0, 90, 20)
	g.PointerUp(0)

	img := r.layer.Image()
	if c := img.NRGBAAt(25, 20); c.R != 0xff || c.B != 0 {
		t.Errorf("first segment = %v, want red", c)
	}
	if c := img.NRGBAAt(70, 20); c.B != 0xff || c.R != 0 {
		t.Errorf("second segment = %v, want blue", c)
	}
}

type failingCommitter struct{ err error }

func (f failingCommitter) Commit() error { return f.err }

func TestGestureReportsCommitError(t *testing.T) {
	vp := NewViewport(50, 50, 3)
	vp.Resize(50, 50)
	layer := NewLayer(50, 50)
	want := errors.New("disk full")
	stroke := NewStrokeRenderer(layer, nil, failingCommitter{want})
	g := NewGestureController(vp, stroke, nil)

	var got error
	g.SetOnError(func(err error) { got = err })
	g.PointerDown(0, 10, 10)
	g.PointerUp(0)
	if !errors.Is(got, want) {
		t.Errorf("onError got %v, want %v", got, want)
	}
}

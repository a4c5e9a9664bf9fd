package colorbook

import "math"

// GestureState identifies the active gesture.
type GestureState uint8

const (
	GestureIdle GestureState = iota
	GestureDrawing
	GesturePinching
)

func (s GestureState) String() string {
	switch s {
	case GestureIdle:
		return "idle"
	case GestureDrawing:
		return "drawing"
	case GesturePinching:
		return "pinching"
	default:
		return "unknown"
	}
}

// pinchState records the pinch pair at gesture start.
type pinchState struct {
	a, b       int // pointer IDs
	startDist  float64
	startMid   Point
	startScale float64
	startPan   Point
}

// GestureController classifies pointer sequences into drawing or
// pinch-zoom. Exactly one gesture is active at a time. Events arrive in
// screen space keyed by pointer ID (0 for the mouse, 1-9 for touches);
// their order is untrusted and impossible transitions are ignored.
type GestureController struct {
	vp     *Viewport
	stroke *StrokeRenderer
	tools  ToolSource

	state GestureState
	// down holds the last screen position of every pointer currently down.
	down    map[int]Point
	drawID  int
	pinch   pinchState
	onError func(error)
}

// NewGestureController routes gestures to vp and stroke. tools supplies the
// mode of each new stroke.
func NewGestureController(vp *Viewport, stroke *StrokeRenderer, tools ToolSource) *GestureController {
	return &GestureController{
		vp:     vp,
		stroke: stroke,
		tools:  tools,
		down:   make(map[int]Point, 2),
	}
}

// SetOnError registers fn to receive errors from stroke commits.
func (g *GestureController) SetOnError(fn func(error)) { g.onError = fn }

// State returns the active gesture.
func (g *GestureController) State() GestureState { return g.state }

// PointerCount returns how many pointers are down.
func (g *GestureController) PointerCount() int { return len(g.down) }

// PointerDown handles a pointer pressing at screen position (sx, sy).
func (g *GestureController) PointerDown(id int, sx, sy float64) {
	if !isFinite(sx, sy) {
		return
	}
	if _, dup := g.down[id]; dup {
		Logger().Debug("gesture: duplicate pointer down ignored", "id", id)
		return
	}
	if len(g.down) >= 2 {
		Logger().Debug("gesture: extra pointer ignored", "id", id)
		return
	}
	g.down[id] = Point{sx, sy}

	switch len(g.down) {
	case 1:
		if g.state != GestureIdle {
			return
		}
		g.state = GestureDrawing
		g.drawID = id
		x, y := g.vp.ToLogical(sx, sy)
		g.stroke.BeginStroke(Point{x, y}, g.mode())
	case 2:
		g.endStroke()
		g.beginPinch()
	}
}

// PointerMove handles a pointer moving to screen position (sx, sy).
func (g *GestureController) PointerMove(id int, sx, sy float64) {
	if !isFinite(sx, sy) {
		return
	}
	if _, ok := g.down[id]; !ok {
		return
	}
	g.down[id] = Point{sx, sy}

	switch g.state {
	case GestureDrawing:
		if id != g.drawID {
			return
		}
		x, y := g.vp.ToLogical(sx, sy)
		g.stroke.AppendPoint(Point{x, y})
	case GesturePinching:
		if id != g.pinch.a && id != g.pinch.b {
			return
		}
		g.updatePinch()
	}
}

// PointerUp handles a pointer lifting.
func (g *GestureController) PointerUp(id int) {
	if _, ok := g.down[id]; !ok {
		return
	}
	delete(g.down, id)

	switch g.state {
	case GestureDrawing:
		if id == g.drawID {
			g.endStroke()
			g.state = GestureIdle
		}
	case GesturePinching:
		// A leftover pointer never resumes drawing.
		g.state = GestureIdle
	}
}

// Cancel ends any stroke in progress and forgets every pointer, as when the
// pointer leaves the surface or the window loses focus.
func (g *GestureController) Cancel() {
	g.endStroke()
	clear(g.down)
	g.state = GestureIdle
}

func (g *GestureController) mode() StrokeMode {
	if g.tools == nil {
		return DefaultTools().StrokeMode()
	}
	return g.tools.StrokeMode()
}

func (g *GestureController) endStroke() {
	if !g.stroke.Active() {
		return
	}
	if err := g.stroke.EndStroke(); err != nil {
		Logger().Warn("gesture: stroke commit failed", "error", err)
		if g.onError != nil {
			g.onError(err)
		}
	}
}

func (g *GestureController) beginPinch() {
	ids := make([]int, 0, 2)
	for id := range g.down {
		ids = append(ids, id)
	}
	a, b := min(ids[0], ids[1]), max(ids[0], ids[1])
	pa, pb := g.down[a], g.down[b]
	px, py := g.vp.Pan()
	g.pinch = pinchState{
		a:          a,
		b:          b,
		startDist:  math.Hypot(pb.X-pa.X, pb.Y-pa.Y),
		startMid:   Point{(pa.X + pb.X) / 2, (pa.Y + pb.Y) / 2},
		startScale: g.vp.Scale(),
		startPan:   Point{px, py},
	}
	g.state = GesturePinching
}

func (g *GestureController) updatePinch() {
	p := &g.pinch
	pa, pb := g.down[p.a], g.down[p.b]
	d := math.Hypot(pb.X-pa.X, pb.Y-pa.Y)
	ratio := 1.0
	if p.startDist > 0 {
		ratio = d / p.startDist
	}
	mid := Point{(pa.X + pb.X) / 2, (pa.Y + pb.Y) / 2}
	g.vp.ApplyPinchDelta(p.startScale*ratio, p.startPan, Point{mid.X - p.startMid.X, mid.Y - p.startMid.Y})
}

package colorbook

// injectKind identifies a synthetic input event.
type injectKind uint8

const (
	injectPointer injectKind = iota // level-triggered pointer state
	injectWheel
	injectCancel
)

// syntheticPointerEvent represents a single injected input event. Screen
// coordinates are used and mapped through the viewport exactly like real
// mouse and touch input.
type syntheticPointerEvent struct {
	kind             injectKind
	pointer          int
	screenX, screenY float64
	pressed          bool
	wheel            float64
}

func (s *Session) inject(evt syntheticPointerEvent) {
	s.input.injectQueue = append(s.input.injectQueue, evt)
}

// InjectPointerDown queues a press of pointer id (0 mouse, 1-9 touch) at
// the given screen coordinates. Events are consumed one per frame.
func (s *Session) InjectPointerDown(id int, x, y float64) {
	if id < 0 || id >= maxPointers {
		return
	}
	s.inject(syntheticPointerEvent{pointer: id, screenX: x, screenY: y, pressed: true})
}

// InjectPointerMove queues a move of a held pointer.
func (s *Session) InjectPointerMove(id int, x, y float64) {
	s.InjectPointerDown(id, x, y)
}

// InjectPointerUp queues a release of pointer id.
func (s *Session) InjectPointerUp(id int, x, y float64) {
	if id < 0 || id >= maxPointers {
		return
	}
	s.inject(syntheticPointerEvent{pointer: id, screenX: x, screenY: y})
}

// InjectPress queues a left mouse press at the given screen coordinates.
func (s *Session) InjectPress(x, y float64) { s.InjectPointerDown(0, x, y) }

// InjectMove queues a mouse move with the left button held.
func (s *Session) InjectMove(x, y float64) { s.InjectPointerMove(0, x, y) }

// InjectRelease queues a left mouse release.
func (s *Session) InjectRelease(x, y float64) { s.InjectPointerUp(0, x, y) }

// InjectClick queues a press followed by a release at the same point,
// which stamps a single dot. Consumes two frames.
func (s *Session) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// frames-2 linearly interpolated moves, a move to (toX, toY) and the
// release there. Minimum frames is 2.
func (s *Session) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	s.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		s.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	s.InjectMove(toX, toY)
	s.InjectRelease(toX, toY)
}

// InjectPinch queues a two-finger pinch on touch pointers 1 and 2, placed
// horizontally around (cx, cy). The finger distance goes from fromDist to
// toDist over the given number of move frames.
func (s *Session) InjectPinch(cx, cy, fromDist, toDist float64, frames int) {
	if frames < 1 {
		frames = 1
	}
	s.InjectPointerDown(1, cx-fromDist/2, cy)
	s.InjectPointerDown(2, cx+fromDist/2, cy)
	var d float64
	for i := 1; i <= frames; i++ {
		d = fromDist + (toDist-fromDist)*float64(i)/float64(frames)
		s.InjectPointerMove(1, cx-d/2, cy)
		s.InjectPointerMove(2, cx+d/2, cy)
	}
	s.InjectPointerUp(1, cx-d/2, cy)
	s.InjectPointerUp(2, cx+d/2, cy)
}

// InjectWheel queues a wheel step at (x, y); positive dy zooms in.
func (s *Session) InjectWheel(x, y, dy float64) {
	s.inject(syntheticPointerEvent{kind: injectWheel, screenX: x, screenY: y, wheel: dy})
}

// InjectCancel queues a cancel, as when the pointer leaves the window.
func (s *Session) InjectCancel() {
	s.inject(syntheticPointerEvent{kind: injectCancel})
}

// processInjectedInput pops one event from the inject queue and feeds it
// through the same path as real input. Returns true if an event was
// consumed (real input is skipped for that frame).
func (s *Session) processInjectedInput() bool {
	if len(s.input.injectQueue) == 0 {
		return false
	}
	evt := s.input.injectQueue[0]
	copy(s.input.injectQueue, s.input.injectQueue[1:])
	s.input.injectQueue = s.input.injectQueue[:len(s.input.injectQueue)-1]

	switch evt.kind {
	case injectWheel:
		s.wheelZoom(evt.screenX, evt.screenY, evt.wheel)
	case injectCancel:
		s.cancelPointers()
	default:
		s.processPointer(evt.pointer, evt.screenX, evt.screenY, evt.pressed)
	}
	return true
}

package colorbook

import (
	"io/fs"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	maxPointers = 10  // pointer 0 = mouse, 1-9 = touch
	widthStep   = 2.0 // logical pixels per [ or ] press
)

var paletteKeys = [...]ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// --- Per-pointer state ---

type pointerState struct {
	down bool
	// suppressed is set when a held pointer was cancelled; it is ignored
	// until it lifts.
	suppressed bool
	lastX      float64
	lastY      float64
}

type inputState struct {
	pointers     [maxPointers]pointerState
	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	prevTouchIDs []ebiten.TouchID

	injectQueue []syntheticPointerEvent

	panning    bool
	panX, panY int
	unfocused  bool
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// processInput is called from Session.Update to feed mouse, touch, wheel,
// keyboard and dropped-file input into the session.
func (s *Session) processInput() {
	if s.processInjectedInput() {
		return
	}
	if !ebiten.IsFocused() {
		if !s.input.unfocused {
			s.input.unfocused = true
			s.cancelPointers()
		}
		return
	}
	s.input.unfocused = false

	mods := readModifiers()
	s.processMousePointer()
	s.processTouchPointers()
	s.processWheel()
	s.processKeys(mods)
	s.processDroppedFiles()
}

// cancelPointers ends the current gesture and ignores every held pointer
// until it is released.
func (s *Session) cancelPointers() {
	s.gesture.Cancel()
	for i := range s.input.pointers {
		ps := &s.input.pointers[i]
		if ps.down {
			ps.down = false
			ps.suppressed = true
		}
	}
	s.input.panning = false
}

// processMousePointer handles mouse input (pointer 0). The left button
// draws, the middle button pans. Leaving the window ends the stroke.
func (s *Session) processMousePointer() {
	mx, my := ebiten.CursorPosition()

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) {
		if s.input.panning {
			s.vp.PanBy(float64(mx-s.input.panX), float64(my-s.input.panY))
		}
		s.input.panning = true
		s.input.panX, s.input.panY = mx, my
	} else {
		s.input.panning = false
	}

	sw, sh := s.vp.ScreenSize()
	outside := mx < 0 || my < 0 || float64(mx) >= sw || float64(my) >= sh
	ps := &s.input.pointers[0]
	if outside && ps.down {
		ps.down = false
		ps.suppressed = true
		s.gesture.PointerUp(0)
		return
	}
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && !outside
	s.processPointer(0, float64(mx), float64(my), pressed)
}

// processTouchPointers handles touch input (pointers 1-9).
func (s *Session) processTouchPointers() {
	touchIDs := ebiten.AppendTouchIDs(s.input.prevTouchIDs[:0])
	s.input.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot := s.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true

		tx, ty := ebiten.TouchPosition(tid)
		s.processPointer(slot, float64(tx), float64(ty), true)
	}

	// Release any touch slots that are no longer active.
	for i := 1; i < maxPointers; i++ {
		if s.input.touchUsed[i] && !activeSlots[i] {
			ps := &s.input.pointers[i]
			s.processPointer(i, ps.lastX, ps.lastY, false)
			s.input.touchUsed[i] = false
			s.input.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (s *Session) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if s.input.touchUsed[i] && s.input.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !s.input.touchUsed[i] {
			s.input.touchUsed[i] = true
			s.input.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processPointer turns level-triggered pointer state into gesture events.
func (s *Session) processPointer(id int, x, y float64, pressed bool) {
	ps := &s.input.pointers[id]
	switch {
	case ps.suppressed:
		if !pressed {
			ps.suppressed = false
		}
	case pressed && !ps.down:
		ps.down = true
		s.gesture.PointerDown(id, x, y)
	case pressed && ps.down:
		if x != ps.lastX || y != ps.lastY {
			s.gesture.PointerMove(id, x, y)
		}
	case !pressed && ps.down:
		ps.down = false
		s.gesture.PointerUp(id)
	}
	ps.lastX, ps.lastY = x, y
}

// processWheel zooms around the cursor, one step per notch.
func (s *Session) processWheel() {
	_, dy := ebiten.Wheel()
	if dy == 0 {
		return
	}
	mx, my := ebiten.CursorPosition()
	s.wheelZoom(float64(mx), float64(my), dy)
}

func (s *Session) wheelZoom(x, y, dy float64) {
	switch {
	case dy > 0:
		s.vp.ZoomAt(wheelZoomIn, x, y)
	case dy < 0:
		s.vp.ZoomAt(wheelZoomOut, x, y)
	}
}

// processKeys handles the keyboard shortcuts.
func (s *Session) processKeys(mods KeyModifiers) {
	pressed := inpututil.IsKeyJustPressed
	if mods&(ModCtrl|ModMeta) != 0 {
		switch {
		case pressed(ebiten.KeyZ) && mods&ModShift != 0, pressed(ebiten.KeyY):
			_, _ = s.Redo()
		case pressed(ebiten.KeyZ):
			_, _ = s.Undo()
		case pressed(ebiten.KeyS):
			if err := s.Save(s.ctx); err != nil {
				Logger().Warn("session: save failed", "key", s.key, "error", err)
				s.setError(err)
			}
		case pressed(ebiten.KeyO):
			if err := s.Load(s.ctx); err != nil {
				Logger().Warn("session: load failed", "key", s.key, "error", err)
				s.setError(err)
			}
		case pressed(ebiten.KeyE):
			if path, err := s.ExportFile(s.opts.ExportDir); err != nil {
				s.setError(err)
			} else {
				s.setStatus("exported " + path)
			}
		}
		return
	}

	switch {
	case pressed(ebiten.KeyB):
		s.tools.Tool = ToolBrush
	case pressed(ebiten.KeyE):
		s.tools.Tool = ToolEraser
	case pressed(ebiten.KeyBracketLeft):
		s.tools.AdjustWidth(-widthStep)
	case pressed(ebiten.KeyBracketRight):
		s.tools.AdjustWidth(widthStep)
	case pressed(ebiten.KeyTab):
		s.hud.visible = !s.hud.visible
		s.comp.Invalidate()
	case pressed(ebiten.KeyF11):
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	case pressed(ebiten.KeyR):
		s.ResetView()
	default:
		selected := false
		for i, k := range paletteKeys {
			if pressed(k) {
				selected = s.tools.SelectPalette(i)
				break
			}
		}
		if !selected {
			return
		}
	}
	s.hud.dirty = true
}

// processDroppedFiles uploads the first dropped file that decodes as an
// image.
func (s *Session) processDroppedFiles() {
	fsys := ebiten.DroppedFiles()
	if fsys == nil {
		return
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		Logger().Warn("session: read dropped files", "error", err)
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			continue
		}
		if err := s.Upload(s.ctx, data); err == nil {
			return
		}
	}
}

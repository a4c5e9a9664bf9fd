package colorbook

import (
	"encoding/json"
	"fmt"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action  string  `json:"action"`
	Label   string  `json:"label,omitempty"`
	Pointer int     `json:"pointer,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	FromX   float64 `json:"fromX,omitempty"`
	FromY   float64 `json:"fromY,omitempty"`
	ToX     float64 `json:"toX,omitempty"`
	ToY     float64 `json:"toY,omitempty"`
	From    float64 `json:"from,omitempty"`
	To      float64 `json:"to,omitempty"`
	Delta   float64 `json:"delta,omitempty"`
	Frames  int     `json:"frames,omitempty"`
	Tool    string  `json:"tool,omitempty"`
	Color   string  `json:"color,omitempty"`
	Width   float64 `json:"width,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected input, tool changes and screenshots across
// frames for scripted drawing sessions. Attach to a Session via
// SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
	errs      []error
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to a Session via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !knownAction(st.Action) {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

func knownAction(a string) bool {
	switch a {
	case "screenshot", "press", "move", "release", "click", "drag", "pinch",
		"wheel", "cancel", "undo", "redo", "tool", "color", "width",
		"reset", "save", "load", "export", "wait":
		return true
	}
	return false
}

// SetTestRunner attaches a TestRunner to the session. The runner's step
// method is called from Session.Update before input processing each frame.
func (s *Session) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// Errors returns the errors raised by steps so far.
func (r *TestRunner) Errors() []error {
	return r.errs
}

// step advances the test runner by one frame. Called from Session.Update.
func (r *TestRunner) step(s *Session) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(s.input.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++
	if err := r.run(s, st); err != nil {
		r.errs = append(r.errs, fmt.Errorf("step %d (%s): %w", r.cursor-1, st.Action, err))
		Logger().Warn("testrunner: step failed", "step", r.cursor-1, "action", st.Action, "error", err)
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(s.input.injectQueue) == 0 {
		r.done = true
	}
}

func (r *TestRunner) run(s *Session, st testStep) error {
	switch st.Action {
	case "screenshot":
		s.Screenshot(st.Label)
	case "press":
		s.InjectPointerDown(st.Pointer, st.X, st.Y)
	case "move":
		s.InjectPointerMove(st.Pointer, st.X, st.Y)
	case "release":
		s.InjectPointerUp(st.Pointer, st.X, st.Y)
	case "click":
		s.InjectClick(st.X, st.Y)
	case "drag":
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "pinch":
		s.InjectPinch(st.X, st.Y, st.From, st.To, st.Frames)
	case "wheel":
		s.InjectWheel(st.X, st.Y, st.Delta)
	case "cancel":
		s.InjectCancel()
	case "undo":
		_, err := s.Undo()
		return err
	case "redo":
		_, err := s.Redo()
		return err
	case "tool":
		t, err := ParseTool(st.Tool)
		if err != nil {
			return err
		}
		s.tools.Tool = t
	case "color":
		c, err := ParseHexColor(st.Color)
		if err != nil {
			return err
		}
		s.tools.BrushColor = c
	case "width":
		if s.tools.Tool == ToolEraser {
			s.tools.SetEraserWidth(st.Width)
		} else {
			s.tools.SetBrushWidth(st.Width)
		}
	case "reset":
		s.ResetView()
	case "save":
		return s.Save(s.ctx)
	case "load":
		return s.Load(s.ctx)
	case "export":
		_, err := s.ExportFile(s.opts.ExportDir)
		return err
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}
	return nil
}

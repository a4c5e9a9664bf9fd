package colorbook

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// Default logical page size.
const (
	DefaultWidth  = 1080
	DefaultHeight = 1440
)

// DocumentStore persists the Drawing layer of a document as one encoded
// raster. Load returns an error matching ErrNotFound when nothing is stored.
type DocumentStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// BackgroundSource yields the Background raster for a document key.
type BackgroundSource interface {
	Background(ctx context.Context, key string) (image.Image, error)
}

// BackgroundStore is implemented by background sources that keep uploaded
// rasters, so an upload survives a restart.
type BackgroundStore interface {
	PutBackground(ctx context.Context, key string, data []byte) error
}

// Options configures a Session. Zero values select defaults.
type Options struct {
	// Width and Height are the logical page size (default 1080×1440).
	Width, Height int
	// MaxScale is the zoom ceiling (default DefaultMaxScale).
	MaxScale float64
	// HistoryLimit caps the undo list; 0 keeps every entry.
	HistoryLimit int
	// Tools is the live tool state. Nil selects DefaultTools.
	Tools *ToolConfig
	// Codec encodes snapshots, documents and exports (default DefaultCodec).
	Codec Codec

	Store       DocumentStore
	Backgrounds BackgroundSource

	// ExportDir receives ExportFile output and test runner screenshots.
	ExportDir string
	// ResetDuration is the animated view reset length in seconds.
	ResetDuration float32
	// ClearColor fills the screen outside the page. Zero selects white.
	ClearColor Color
	// ExitWhenScriptDone ends the game loop once an attached TestRunner
	// finishes.
	ExitWhenScriptDone bool
	// Debug logs render timings.
	Debug bool
}

// Session ties the drawing surface together and runs it as an ebiten.Game.
// Everything except the async loads runs on the game loop goroutine.
type Session struct {
	key  string
	opts Options

	vp      *Viewport
	drawing *Layer
	history *History
	stroke  *StrokeRenderer
	gesture *GestureController
	comp    *Compositor
	tools   *ToolConfig
	codec   Codec

	ctx    context.Context
	cancel context.CancelFunc

	bgLoad  *Pending[image.Image]
	bgKey   string // key bgLoad was started for
	docLoad *Pending[image.Image]

	mu     sync.Mutex
	posted []func(*Session)

	input      inputState
	hud        hudState
	status     string
	testRunner *TestRunner
	shotQueue  []string
	quit       bool
}

// NewSession creates a session for the document key with a blank Drawing
// layer, an empty Background and a history seeded at cursor 0. Call Start
// to begin loading the Background and any stored drawing.
func NewSession(key string, opts Options) (*Session, error) {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Tools == nil {
		opts.Tools = DefaultTools()
	}
	if opts.Codec == nil {
		opts.Codec = DefaultCodec
	}
	if opts.ResetDuration <= 0 {
		opts.ResetDuration = 0.35
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "exports"
	}
	if opts.ClearColor == (Color{}) {
		opts.ClearColor = ColorWhite
	}

	drawing := NewLayer(opts.Width, opts.Height)
	history, err := NewHistory(drawing, opts.Codec, opts.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}

	s := &Session{
		key:     key,
		opts:    opts,
		vp:      NewViewport(opts.Width, opts.Height, opts.MaxScale),
		drawing: drawing,
		history: history,
		tools:   opts.Tools,
		codec:   opts.Codec,
		ctx:     context.Background(),
		cancel:  func() {},
	}
	s.comp = NewCompositor(s.vp, drawing)
	s.comp.SetClearColor(opts.ClearColor)
	s.comp.SetDebug(opts.Debug)
	s.stroke = NewStrokeRenderer(drawing, s.tools, history)
	s.gesture = NewGestureController(s.vp, s.stroke, s.tools)

	s.vp.SetOnChange(s.comp.Invalidate)
	s.stroke.SetOnChange(s.comp.Invalidate)
	s.history.SetOnRestore(s.comp.Invalidate)
	s.gesture.SetOnError(s.setError)
	return s, nil
}

// Start begins the asynchronous Background and stored-document loads. The
// loads are cancelled when ctx is done or Close is called.
func (s *Session) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.loadBackground(s.key)
	if s.opts.Store != nil {
		store, codec, key := s.opts.Store, s.codec, s.key
		s.docLoad = LoadAsync(s.ctx, func(ctx context.Context) (image.Image, error) {
			data, err := store.Load(ctx, key)
			if errors.Is(err, ErrNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			return DecodeImage(codec, data, "document")
		})
	}
	Logger().Info("session: started", "key", s.key, "width", s.opts.Width, "height", s.opts.Height)
}

// Close cancels pending loads and releases GPU textures.
func (s *Session) Close() {
	s.cancel()
	s.comp.Dispose()
}

// Key returns the document key.
func (s *Session) Key() string { return s.key }

// Viewport returns the session viewport.
func (s *Session) Viewport() *Viewport { return s.vp }

// Drawing returns the Drawing layer.
func (s *Session) Drawing() *Layer { return s.drawing }

// History returns the undo history.
func (s *Session) History() *History { return s.history }

// Compositor returns the layer compositor.
func (s *Session) Compositor() *Compositor { return s.comp }

// Gesture returns the gesture controller.
func (s *Session) Gesture() *GestureController { return s.gesture }

// Tools returns the live tool state. It may be modified directly from the
// game loop goroutine; use Post from elsewhere.
func (s *Session) Tools() *ToolConfig { return s.tools }

// Status returns the last user-facing status message.
func (s *Session) Status() string { return s.status }

// Post schedules fn to run on the game loop at the start of the next
// Update. Safe for concurrent use.
func (s *Session) Post(fn func(*Session)) {
	s.mu.Lock()
	s.posted = append(s.posted, fn)
	s.mu.Unlock()
}

// ApplyTools copies brush and eraser settings from t, keeping the active
// tool.
func (s *Session) ApplyTools(t *ToolConfig) {
	s.tools.BrushColor = t.BrushColor
	s.tools.SetBrushWidth(t.BrushWidth)
	s.tools.SetEraserWidth(t.EraserWidth)
	if len(t.Palette) > 0 {
		s.tools.Palette = append(s.tools.Palette[:0], t.Palette...)
	}
	s.hud.dirty = true
}

// Update implements ebiten.Game.
func (s *Session) Update() error {
	s.runPosted()
	s.pollLoads()
	if s.testRunner != nil {
		s.testRunner.step(s)
		if s.opts.ExitWhenScriptDone && s.testRunner.Done() && len(s.shotQueue) == 0 {
			s.quit = true
		}
	}
	s.processInput()
	s.vp.Update(float32(1 / float64(ebiten.TPS())))
	if s.quit {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game. The screen is only repainted when the
// composite is invalidated or the HUD is visible.
func (s *Session) Draw(screen *ebiten.Image) {
	if s.comp.NeedsRedraw() || s.hud.visible {
		s.comp.Render(screen)
		s.drawHUD(screen)
	}
	s.flushScreenshots()
}

// Layout implements ebiten.Game. The page is resized to the window.
func (s *Session) Layout(outsideWidth, outsideHeight int) (int, int) {
	s.vp.Resize(outsideWidth, outsideHeight)
	return max(outsideWidth, 1), max(outsideHeight, 1)
}

// Quit ends the game loop after the current Update.
func (s *Session) Quit() { s.quit = true }

// Undo reverts the Drawing layer to the previous snapshot. A stroke in
// progress is finished first.
func (s *Session) Undo() (bool, error) {
	s.gesture.Cancel()
	ok, err := s.history.Undo()
	if err != nil {
		s.setError(err)
	}
	return ok, err
}

// Redo reapplies the next snapshot.
func (s *Session) Redo() (bool, error) {
	s.gesture.Cancel()
	ok, err := s.history.Redo()
	if err != nil {
		s.setError(err)
	}
	return ok, err
}

// Save stores the Drawing layer under the document key.
func (s *Session) Save(ctx context.Context) error {
	if s.opts.Store == nil {
		return errors.New("save: no document store")
	}
	data, err := encodeBytes(s.codec, s.drawing.Image())
	if err != nil {
		return fmt.Errorf("save %s: %w", s.key, err)
	}
	if err := s.opts.Store.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("save %s: %w", s.key, err)
	}
	Logger().Info("session: saved", "key", s.key, "bytes", len(data))
	s.setStatus("saved")
	return nil
}

// Load replaces the Drawing layer with the stored document and commits it
// as a new history entry. On failure the Drawing layer is unchanged.
func (s *Session) Load(ctx context.Context) error {
	if s.opts.Store == nil {
		return errors.New("load: no document store")
	}
	data, err := s.opts.Store.Load(ctx, s.key)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.key, err)
	}
	img, err := DecodeImage(s.codec, data, "document")
	if err != nil {
		return fmt.Errorf("load %s: %w", s.key, err)
	}
	s.gesture.Cancel()
	return s.replaceDrawing(img)
}

// Export writes the Drawing layer alone, without Background, encoded with
// the persistence codec.
func (s *Session) Export(w io.Writer) error {
	if err := s.codec.Encode(w, s.drawing.Image()); err != nil {
		return fmt.Errorf("export %s: %w", s.key, err)
	}
	return nil
}

// Upload decodes data and makes it the Background of the current document.
// The Drawing layer is not touched. When the background source can store
// rasters the upload is kept under the document key.
func (s *Session) Upload(ctx context.Context, data []byte) error {
	img, err := DecodeImage(s.codec, data, "upload")
	if err != nil {
		s.setError(err)
		return err
	}
	if bs, ok := s.opts.Backgrounds.(BackgroundStore); ok {
		if err := bs.PutBackground(ctx, s.key, data); err != nil {
			Logger().Warn("session: keep upload failed", "key", s.key, "error", err)
		}
	}
	s.cancelBackgroundLoad()
	s.comp.ReplaceBackground(img)
	s.setStatus("background uploaded")
	return nil
}

// SelectScene loads the Background for key asynchronously, replacing any
// load still in flight. The Drawing layer and document key are unchanged.
func (s *Session) SelectScene(key string) {
	s.loadBackground(key)
}

// ResetView animates back to the cover fit.
func (s *Session) ResetView() {
	s.vp.AnimateReset(s.opts.ResetDuration, nil)
}

func (s *Session) loadBackground(key string) {
	src := s.opts.Backgrounds
	if src == nil {
		return
	}
	s.cancelBackgroundLoad()
	s.bgKey = key
	s.bgLoad = LoadAsync(s.ctx, func(ctx context.Context) (image.Image, error) {
		return src.Background(ctx, key)
	})
}

func (s *Session) cancelBackgroundLoad() {
	if s.bgLoad != nil {
		s.bgLoad.Cancel()
		s.bgLoad = nil
	}
}

// pollLoads applies finished loads. A stored drawing is held back while a
// stroke is in progress.
func (s *Session) pollLoads() {
	if s.bgLoad != nil {
		if r, ok := s.bgLoad.Poll(); ok {
			s.bgLoad = nil
			switch {
			case errors.Is(r.Err, ErrNotFound):
				Logger().Debug("session: no background", "key", s.bgKey)
			case r.Err != nil:
				Logger().Warn("session: background load failed", "key", s.bgKey, "error", r.Err)
				s.setError(r.Err)
			case r.Value != nil:
				s.comp.ReplaceBackground(r.Value)
			}
		}
	}
	if s.docLoad != nil && !s.stroke.Active() {
		if r, ok := s.docLoad.Poll(); ok {
			s.docLoad = nil
			switch {
			case r.Err != nil:
				Logger().Warn("session: document load failed", "key", s.key, "error", r.Err)
				s.setError(r.Err)
			case r.Value != nil:
				if err := s.replaceDrawing(r.Value); err != nil {
					s.setError(err)
				}
			}
		}
	}
}

func (s *Session) replaceDrawing(img image.Image) error {
	s.drawing.Replace(img)
	s.comp.Invalidate()
	if err := s.history.Commit(); err != nil {
		return err
	}
	Logger().Info("session: drawing loaded", "key", s.key)
	s.setStatus("loaded")
	return nil
}

func (s *Session) runPosted() {
	s.mu.Lock()
	fns := s.posted
	s.posted = nil
	s.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

func (s *Session) setStatus(msg string) {
	s.status = msg
	s.hud.dirty = true
}

func (s *Session) setError(err error) {
	s.setStatus("error: " + err.Error())
}

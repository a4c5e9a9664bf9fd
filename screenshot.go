package colorbook

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Screenshot queues a labeled screenshot of the composite as currently
// seen through the viewport. It is rendered on the CPU at the end of the
// frame and written to ExportDir with a timestamped filename.
func (s *Session) Screenshot(label string) {
	s.shotQueue = append(s.shotQueue, label)
}

// flushScreenshots renders the composite once and writes it for every
// queued label.
func (s *Session) flushScreenshots() {
	if len(s.shotQueue) == 0 {
		return
	}
	defer func() { s.shotQueue = s.shotQueue[:0] }()

	dir := s.opts.ExportDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		Logger().Warn("screenshot: mkdir failed", "dir", dir, "error", err)
		return
	}

	w, h := s.vp.ScreenSize()
	if w <= 0 || h <= 0 {
		lw, lh := s.vp.LogicalSize()
		w, h = lw*s.vp.Scale(), lh*s.vp.Scale()
	}
	img := image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))
	s.comp.Composite(img)

	stamp := time.Now().Format("20060102_150405")
	for _, label := range s.shotQueue {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			Logger().Warn("screenshot: write failed", "error", err)
			continue
		}
		Logger().Info("screenshot: written", "path", path)
	}
}

// ExportFile writes the Drawing layer alone into dir under a timestamped
// name derived from the document key and returns the path.
func (s *Session) ExportFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: mkdir %s: %w", dir, err)
	}
	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s%s", stamp, sanitizeLabel(s.key), s.codec.Ext()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: create %s: %w", path, err)
	}
	if err := s.Export(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("export: close %s: %w", path, err)
	}
	Logger().Info("session: exported", "path", path)
	return path, nil
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

package colorbook

import "fmt"

// History is a linear undo/redo list of encoded Drawing snapshots. The
// cursor always points at the entry matching the current Drawing content.
// Committing after an undo discards the redo branch.
type History struct {
	layer   *Layer
	codec   Codec
	entries [][]byte
	cursor  int
	limit   int

	onRestore func()
}

// NewHistory creates a history for layer seeded with its current content at
// cursor 0. limit caps the number of entries kept (0 = unlimited); when it
// is exceeded the oldest entries are dropped. A nil codec selects
// DefaultCodec.
func NewHistory(layer *Layer, codec Codec, limit int) (*History, error) {
	if codec == nil {
		codec = DefaultCodec
	}
	if limit == 1 {
		// One entry would leave nothing to undo to.
		limit = 2
	}
	h := &History{layer: layer, codec: codec, limit: max(limit, 0)}
	if err := h.Reset(); err != nil {
		return nil, err
	}
	return h, nil
}

// SetOnRestore registers fn to be called after Undo or Redo replaces the
// layer content.
func (h *History) SetOnRestore(fn func()) { h.onRestore = fn }

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Cursor returns the index of the current entry.
func (h *History) Cursor() int { return h.cursor }

// Limit returns the maximum number of entries kept, 0 when unlimited.
func (h *History) Limit() int { return h.limit }

// CanUndo reports whether Undo would change anything.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether Redo would change anything.
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }

// Current returns the encoded snapshot at the cursor. The slice must not
// be modified.
func (h *History) Current() []byte { return h.entries[h.cursor] }

// Codec returns the codec snapshots are encoded with.
func (h *History) Codec() Codec { return h.codec }

// Commit snapshots the layer, drops every entry after the cursor and
// appends the snapshot as the new current entry.
func (h *History) Commit() error {
	data, err := encodeBytes(h.codec, h.layer.Image())
	if err != nil {
		return fmt.Errorf("history commit: %w", err)
	}
	h.entries = append(h.entries[:h.cursor+1], data)
	h.cursor++
	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		kept := make([][]byte, h.limit)
		copy(kept, h.entries[drop:])
		h.entries = kept
		h.cursor -= drop
	}
	Logger().Debug("history: commit", "entries", len(h.entries), "cursor", h.cursor, "bytes", len(data))
	return nil
}

// Undo steps back one entry and restores the layer from it. It returns
// false with a nil error at the oldest entry. On a decode failure the
// cursor and the layer are left unchanged.
func (h *History) Undo() (bool, error) {
	if !h.CanUndo() {
		return false, nil
	}
	if err := h.restore(h.cursor - 1); err != nil {
		return false, err
	}
	h.cursor--
	return true, nil
}

// Redo steps forward one entry. It returns false with a nil error at the
// newest entry.
func (h *History) Redo() (bool, error) {
	if !h.CanRedo() {
		return false, nil
	}
	if err := h.restore(h.cursor + 1); err != nil {
		return false, err
	}
	h.cursor++
	return true, nil
}

// Reset discards every entry and reseeds the history with the current layer
// content at cursor 0.
func (h *History) Reset() error {
	data, err := encodeBytes(h.codec, h.layer.Image())
	if err != nil {
		return fmt.Errorf("history seed: %w", err)
	}
	h.entries = [][]byte{data}
	h.cursor = 0
	return nil
}

func (h *History) restore(i int) error {
	img, err := DecodeImage(h.codec, h.entries[i], "history")
	if err != nil {
		Logger().Warn("history: restore failed", "entry", i, "error", err)
		return err
	}
	h.layer.Replace(img)
	if h.onRestore != nil {
		h.onRestore()
	}
	return nil
}

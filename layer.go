package colorbook

import (
	"bytes"
	"image"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
)

// Layer is a fixed-size straight-alpha RGBA raster in logical space. It is
// backed by a gg.Pixmap so strokes can be rasterized into it directly.
type Layer struct {
	pm      *gg.Pixmap
	version uint64
}

// NewLayer creates a fully transparent layer of w×h pixels.
func NewLayer(w, h int) *Layer {
	return &Layer{pm: gg.NewPixmap(max(w, 1), max(h, 1))}
}

// Width returns the layer width in pixels.
func (l *Layer) Width() int { return l.pm.Width() }

// Height returns the layer height in pixels.
func (l *Layer) Height() int { return l.pm.Height() }

// Bounds returns the layer rectangle anchored at the origin.
func (l *Layer) Bounds() image.Rectangle { return l.pm.Bounds() }

// Pixmap returns the backing pixmap. Callers that write to it must call
// Touch afterwards.
func (l *Layer) Pixmap() *gg.Pixmap { return l.pm }

// Image returns an *image.NRGBA that shares memory with the layer.
func (l *Layer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    l.pm.Data(),
		Stride: l.pm.Width() * 4,
		Rect:   l.pm.Bounds(),
	}
}

// Version increases every time the layer content changes.
func (l *Layer) Version() uint64 { return l.version }

// Touch marks the layer content as changed.
func (l *Layer) Touch() { l.version++ }

// Clear resets every pixel to transparent.
func (l *Layer) Clear() {
	clear(l.pm.Data())
	l.Touch()
}

// Replace overwrites the whole layer with img. An image of a different size
// is scaled to fit with bilinear filtering.
func (l *Layer) Replace(img image.Image) {
	dst := l.Image()
	b := img.Bounds()
	if src, ok := img.(*image.NRGBA); ok && b.Dx() == l.Width() && b.Dy() == l.Height() {
		// Straight copy keeps restores bit-identical.
		for y := 0; y < b.Dy(); y++ {
			si := src.PixOffset(b.Min.X, b.Min.Y+y)
			di := y * dst.Stride
			copy(dst.Pix[di:di+dst.Stride], src.Pix[si:si+dst.Stride])
		}
		l.Touch()
		return
	}
	clear(dst.Pix)
	if b.Dx() == l.Width() && b.Dy() == l.Height() {
		draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	} else {
		draw.BiLinear.Scale(dst, dst.Rect, img, b, draw.Src, nil)
	}
	l.Touch()
}

// Clone returns an independent copy of the layer.
func (l *Layer) Clone() *Layer {
	c := NewLayer(l.Width(), l.Height())
	copy(c.pm.Data(), l.pm.Data())
	return c
}

// Equal reports whether both layers hold identical pixels.
func (l *Layer) Equal(o *Layer) bool {
	return l.Width() == o.Width() && l.Height() == o.Height() &&
		bytes.Equal(l.pm.Data(), o.pm.Data())
}

// Empty reports whether every pixel is fully transparent.
func (l *Layer) Empty() bool {
	data := l.pm.Data()
	for i := 3; i < len(data); i += 4 {
		if data[i] != 0 {
			return false
		}
	}
	return true
}

package export

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	err := WritePDF(&buf, testPage(60, 80), PDFOptions{Title: "jungle"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "missing PDF header")
	assert.Contains(t, buf.String(), "%%EOF")
}

func TestWritePDFEmptyImage(t *testing.T) {
	var buf bytes.Buffer
	err := WritePDF(&buf, image.NewNRGBA(image.Rect(0, 0, 0, 0)), PDFOptions{})
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestWritePDFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.pdf")
	require.NoError(t, WritePDFFile(path, testPage(80, 40), PDFOptions{Size: "Letter"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h         float64
		x, y, iw, ih float64
	}{
		{"tall image", 100, 200, 35.75, 10, 138.5, 277},
		{"wide image", 200, 100, 10, 101, 190, 95},
		{"exact", 190, 277, 10, 10, 190, 277},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, iw, ih := fit(tt.w, tt.h, 210, 297, 10)
			assert.InDelta(t, tt.x, x, 1e-9)
			assert.InDelta(t, tt.y, y, 1e-9)
			assert.InDelta(t, tt.iw, iw, 1e-9)
			assert.InDelta(t, tt.ih, ih, 1e-9)
		})
	}
}

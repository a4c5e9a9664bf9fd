package colorbook

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// layerTexture is the GPU copy of a raster. It is owned by the Compositor
// and only re-uploaded when the source version changes.
type layerTexture struct {
	image   *ebiten.Image
	w, h    int
	version uint64
	valid   bool

	// buf holds the premultiplied pixels passed to WritePixels.
	buf []byte
}

// syncNRGBA uploads src if version differs from the last upload. The
// texture is reallocated when the size changes.
func (t *layerTexture) syncNRGBA(src *image.NRGBA, version uint64) {
	if t.valid && t.version == version {
		return
	}
	w, h := src.Rect.Dx(), src.Rect.Dy()
	t.ensure(w, h)
	if cap(t.buf) < w*h*4 {
		t.buf = make([]byte, w*h*4)
	}
	t.buf = t.buf[:w*h*4]
	premultiply(t.buf, src)
	t.image.WritePixels(t.buf)
	t.version = version
	t.valid = true
}

// syncImage replaces the texture with a GPU copy of img.
func (t *layerTexture) syncImage(img image.Image, version uint64) {
	if t.valid && t.version == version {
		return
	}
	t.Dispose()
	if img == nil {
		t.version = version
		t.valid = true
		return
	}
	t.image = ebiten.NewImageFromImage(img)
	b := img.Bounds()
	t.w, t.h = b.Dx(), b.Dy()
	t.version = version
	t.valid = true
}

func (t *layerTexture) ensure(w, h int) {
	if t.image != nil && t.w == w && t.h == h {
		return
	}
	t.Dispose()
	t.image = ebiten.NewImage(w, h)
	t.w, t.h = w, h
}

// Image returns the texture, nil when nothing has been uploaded.
func (t *layerTexture) Image() *ebiten.Image {
	return t.image
}

// Dispose deallocates the underlying image. The next sync uploads again.
func (t *layerTexture) Dispose() {
	if t.image != nil {
		t.image.Deallocate()
		t.image = nil
	}
	t.valid = false
}

// premultiply converts straight-alpha src into premultiplied RGBA bytes.
func premultiply(dst []byte, src *image.NRGBA) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		row := src.Pix[src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y):]
		out := dst[y*w*4:]
		for x := 0; x < w*4; x += 4 {
			a := uint32(row[x+3])
			switch a {
			case 0xff:
				copy(out[x:x+4], row[x:x+4])
			case 0:
				out[x], out[x+1], out[x+2], out[x+3] = 0, 0, 0, 0
			default:
				out[x] = uint8((uint32(row[x])*a + 127) / 255)
				out[x+1] = uint8((uint32(row[x+1])*a + 127) / 255)
				out[x+2] = uint8((uint32(row[x+2])*a + 127) / 255)
				out[x+3] = uint8(a)
			}
		}
	}
}

package colorbook

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"testing"
)

func TestNewLayerBlank(t *testing.T) {
	l := NewLayer(12, 7)
	if l.Width() != 12 || l.Height() != 7 {
		t.Errorf("size = %dx%d", l.Width(), l.Height())
	}
	if !l.Empty() {
		t.Error("new layer is not transparent")
	}
	if l.Bounds() != image.Rect(0, 0, 12, 7) {
		t.Errorf("bounds = %v", l.Bounds())
	}
}

func TestLayerImageSharesMemory(t *testing.T) {
	l := NewLayer(4, 4)
	l.Image().SetNRGBA(1, 2, color.NRGBA{1, 2, 3, 4})
	if got := l.Image().NRGBAAt(1, 2); got != (color.NRGBA{1, 2, 3, 4}) {
		t.Errorf("pixel = %v", got)
	}
	if l.Empty() {
		t.Error("write through Image not visible")
	}
}

func TestLayerReplaceExact(t *testing.T) {
	l := NewLayer(3, 2)
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 11)
	}
	v := l.Version()
	l.Replace(src)
	if !bytes.Equal(l.Image().Pix, src.Pix) {
		t.Error("same-size NRGBA replace is not bit-identical")
	}
	if l.Version() == v {
		t.Error("version not bumped")
	}
}

func TestLayerReplaceOffsetSubImage(t *testing.T) {
	full := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	full.SetNRGBA(2, 2, color.NRGBA{9, 8, 7, 255})
	sub := full.SubImage(image.Rect(2, 2, 4, 4)).(*image.NRGBA)

	l := NewLayer(2, 2)
	l.Replace(sub)
	if got := l.Image().NRGBAAt(0, 0); got != (color.NRGBA{9, 8, 7, 255}) {
		t.Errorf("pixel = %v", got)
	}
}

func TestLayerReplaceScales(t *testing.T) {
	l := NewLayer(20, 20)
	dab(l, 0, 0, color.NRGBA{255, 255, 255, 255})
	l.Replace(solidNRGBA(5, 5, color.NRGBA{0, 0, 255, 255}))
	for _, p := range []image.Point{{0, 0}, {10, 10}, {19, 19}} {
		if c := l.Image().NRGBAAt(p.X, p.Y); c.B < 250 || c.R != 0 {
			t.Errorf("pixel %v = %v", p, c)
		}
	}
}

func TestLayerCloneEqualClear(t *testing.T) {
	l := NewLayer(5, 5)
	dab(l, 2, 2, color.NRGBA{1, 1, 1, 255})
	c := l.Clone()
	if !c.Equal(l) {
		t.Fatal("clone differs")
	}
	dab(c, 3, 3, color.NRGBA{1, 1, 1, 255})
	if c.Equal(l) {
		t.Error("clone shares pixels")
	}
	if l.Equal(NewLayer(5, 6)) {
		t.Error("layers of different size equal")
	}
	l.Clear()
	if !l.Empty() {
		t.Error("Clear left pixels")
	}
}

func TestDecodeImageErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("definitely not an image")},
		{"truncated png", encodeTestPNG(t)[:20]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeImage(DefaultCodec, tt.data, "upload")
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("err = %v, want ErrDecode", err)
			}
			var de *DecodeError
			if !errors.As(err, &de) || de.Source != "upload" {
				t.Errorf("DecodeError = %+v", de)
			}
		})
	}
	_, err := DecodeImage(DefaultCodec, nil, "upload")
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("empty input err = %v, want to wrap io.ErrUnexpectedEOF", err)
	}
}

func encodeTestPNG(t *testing.T) []byte {
	t.Helper()
	data, err := encodeBytes(DefaultCodec, solidNRGBA(4, 4, color.NRGBA{1, 2, 3, 255}))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestDecodeImageOtherFormats(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solidNRGBA(8, 6, color.NRGBA{200, 10, 10, 255}), nil); err != nil {
		t.Fatal(err)
	}
	img, err := DecodeImage(DefaultCodec, buf.Bytes(), "upload")
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Errorf("bounds = %v", img.Bounds())
	}
}

func TestPNGCodecRoundTrip(t *testing.T) {
	l := NewLayer(6, 6)
	dab(l, 1, 1, color.NRGBA{10, 20, 30, 40})
	data, err := encodeBytes(DefaultCodec, l.Image())
	if err != nil {
		t.Fatal(err)
	}
	img, err := DecodeImage(DefaultCodec, data, "history")
	if err != nil {
		t.Fatal(err)
	}
	r := NewLayer(6, 6)
	r.Replace(img)
	if !r.Equal(l) {
		t.Error("PNG round trip changed pixels")
	}
	if DefaultCodec.Ext() != ".png" {
		t.Errorf("Ext = %q", DefaultCodec.Ext())
	}
}

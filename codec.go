package colorbook

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	// Formats accepted for backgrounds and uploads.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Codec encodes and decodes single rasters. History snapshots, persisted
// documents and exports all use the same Codec.
type Codec interface {
	Encode(w io.Writer, img image.Image) error
	Decode(r io.Reader) (image.Image, error)
	// Ext is the file extension written by Encode, including the dot.
	Ext() string
}

// PNGCodec is the default Codec.
type PNGCodec struct {
	Level png.CompressionLevel
}

// DefaultCodec favors encode speed since snapshots are taken after every
// stroke.
var DefaultCodec Codec = PNGCodec{Level: png.BestSpeed}

// Encode writes img as PNG.
func (c PNGCodec) Encode(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: c.Level}
	return enc.Encode(w, img)
}

// Decode reads any registered image format, not only PNG, so documents
// created elsewhere still load.
func (PNGCodec) Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	return img, err
}

// Ext returns ".png".
func (PNGCodec) Ext() string { return ".png" }

// encodeBytes encodes img with c into a fresh byte slice.
func encodeBytes(c Codec, img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeImage decodes data with c. Failures, including empty input, are
// reported as *DecodeError tagged with source.
func DecodeImage(c Codec, data []byte, source string) (image.Image, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Source: source, Err: io.ErrUnexpectedEOF}
	}
	img, err := c.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Source: source, Err: err}
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &DecodeError{Source: source, Err: fmt.Errorf("empty image %v", b)}
	}
	return img, nil
}

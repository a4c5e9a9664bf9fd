// Package export writes finished pages for printing.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"
)

// PDFOptions controls the printed page.
type PDFOptions struct {
	Title  string
	Size   string  // gofpdf page size name, "A4" when empty
	Margin float64 // millimetres, 10 when zero
}

// WritePDF places img on a single page, scaled to fit inside the margins
// and centered. Portrait or landscape follows the image aspect.
func WritePDF(w io.Writer, img image.Image, opts PDFOptions) error {
	b := img.Bounds()
	if b.Empty() {
		return errors.New("write pdf: empty image")
	}
	if opts.Size == "" {
		opts.Size = "A4"
	}
	if opts.Margin <= 0 {
		opts.Margin = 10
	}
	orientation := "P"
	if b.Dx() > b.Dy() {
		orientation = "L"
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}

	p := gofpdf.New(orientation, "mm", opts.Size, "")
	p.SetCreator("colorbook", true)
	if opts.Title != "" {
		p.SetTitle(opts.Title, true)
	}
	p.SetMargins(opts.Margin, opts.Margin, opts.Margin)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("page", imgOpts, &buf)

	pw, ph := p.GetPageSize()
	x, y, iw, ih := fit(float64(b.Dx()), float64(b.Dy()), pw, ph, opts.Margin)
	p.ImageOptions("page", x, y, iw, ih, false, imgOpts, 0, "")

	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// WritePDFFile writes the PDF to path.
func WritePDFFile(path string, img image.Image, opts PDFOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	if err := WritePDF(f, img, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// fit returns the placement of a w×h image scaled into the page area
// inside margin m, keeping aspect.
func fit(w, h, pw, ph, m float64) (x, y, iw, ih float64) {
	aw, ah := pw-2*m, ph-2*m
	s := min(aw/w, ah/h)
	iw, ih = w*s, h*s
	return m + (aw-iw)/2, m + (ah-ih)/2, iw, ih
}

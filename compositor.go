package colorbook

import (
	"image"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/draw"
)

// Compositor owns the Background and Drawing rasters in logical space and
// renders their transformed composite. Every render is a full redraw of both
// layers; Session only calls Render when NeedsRedraw reports true.
type Compositor struct {
	vp         *Viewport
	drawing    *Layer
	background image.Image
	bgVersion  uint64

	clearColor Color

	bgTex   layerTexture
	drawTex layerTexture

	dirty bool
	debug bool
	stats renderStats
}

// NewCompositor creates a compositor for drawing viewed through vp. The
// Background is empty until ReplaceBackground is called.
func NewCompositor(vp *Viewport, drawing *Layer) *Compositor {
	return &Compositor{
		vp:         vp,
		drawing:    drawing,
		clearColor: ColorWhite,
		dirty:      true,
	}
}

// SetClearColor sets the color shown outside the page.
func (c *Compositor) SetClearColor(col Color) {
	c.clearColor = col
	c.dirty = true
}

// SetDebug enables per-render timing logs at debug level.
func (c *Compositor) SetDebug(on bool) { c.debug = on }

// Background returns the current background raster, nil while none is set.
func (c *Compositor) Background() image.Image { return c.background }

// Drawing returns the Drawing layer.
func (c *Compositor) Drawing() *Layer { return c.drawing }

// ReplaceBackground swaps the Background raster. The Drawing layer is not
// touched. A nil img renders as an empty Background.
func (c *Compositor) ReplaceBackground(img image.Image) {
	c.background = img
	c.bgVersion++
	c.dirty = true
	if img != nil {
		b := img.Bounds()
		Logger().Info("compositor: background replaced", "width", b.Dx(), "height", b.Dy())
	}
}

// Invalidate requests a full redraw on the next frame.
func (c *Compositor) Invalidate() { c.dirty = true }

// NeedsRedraw reports whether Render has pending work.
func (c *Compositor) NeedsRedraw() bool { return c.dirty }

// Render clears screen, then draws Background scaled into the logical
// bounds and Drawing on top, both through the viewport transform.
func (c *Compositor) Render(screen *ebiten.Image) {
	start := time.Now()

	screen.Fill(c.clearColor.NRGBA())
	m := c.vp.Matrix()

	c.bgTex.syncImage(c.background, c.bgVersion)
	if img := c.bgTex.Image(); img != nil {
		var op ebiten.DrawImageOptions
		// Textures from NewImageFromImage start at the origin.
		op.GeoM = geoM(multiplyAffine(m, c.backgroundFit(image.Point{})))
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(img, &op)
	}

	uploaded := c.drawTex.version != c.drawing.Version() || !c.drawTex.valid
	c.drawTex.syncNRGBA(c.drawing.Image(), c.drawing.Version())
	var op ebiten.DrawImageOptions
	op.GeoM = geoM(m)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(c.drawTex.Image(), &op)

	c.dirty = false
	c.stats.renders++
	c.stats.last = time.Since(start)
	if uploaded {
		c.stats.uploads++
	}
	c.debugLog()
}

// Composite renders the same image as Render into dst on the CPU. dst is
// treated as the screen.
func (c *Compositor) Composite(dst draw.Image) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c.clearColor.NRGBA()), image.Point{}, draw.Src)
	m := c.vp.Matrix()
	if c.background != nil {
		fit := multiplyAffine(m, c.backgroundFit(c.background.Bounds().Min))
		draw.BiLinear.Transform(dst, aff3(fit), c.background, c.background.Bounds(), draw.Over, nil)
	}
	// Only the part of the Drawing on screen is sampled.
	if sr := c.visibleSource(dst.Bounds()); !sr.Empty() {
		draw.BiLinear.Transform(dst, aff3(m), c.drawing.Image(), sr, draw.Over, nil)
	}
}

// visibleSource returns the Drawing pixels under the screen rectangle dr,
// padded for the bilinear filter.
func (c *Compositor) visibleSource(dr image.Rectangle) image.Rectangle {
	const pad = 2
	inv := c.vp.InverseMatrix()
	x0, y0 := transformPoint(inv, float64(dr.Min.X), float64(dr.Min.Y))
	x1, y1 := transformPoint(inv, float64(dr.Max.X), float64(dr.Max.Y))
	r := image.Rect(
		int(math.Floor(math.Min(x0, x1)))-pad,
		int(math.Floor(math.Min(y0, y1)))-pad,
		int(math.Ceil(math.Max(x0, x1)))+pad,
		int(math.Ceil(math.Max(y0, y1)))+pad,
	)
	return r.Intersect(c.drawing.Bounds())
}

// Flatten returns Background and Drawing composited at logical resolution
// over the clear color, ignoring the viewport.
func (c *Compositor) Flatten() *image.NRGBA {
	out := image.NewNRGBA(c.drawing.Bounds())
	draw.Draw(out, out.Rect, image.NewUniform(c.clearColor.NRGBA()), image.Point{}, draw.Src)
	if bg := c.background; bg != nil {
		b := bg.Bounds()
		if b.Dx() == out.Rect.Dx() && b.Dy() == out.Rect.Dy() {
			draw.Draw(out, out.Rect, bg, b.Min, draw.Over)
		} else {
			draw.BiLinear.Scale(out, out.Rect, bg, b, draw.Over, nil)
		}
	}
	draw.Draw(out, out.Rect, c.drawing.Image(), image.Point{}, draw.Over)
	return out
}

// Dispose releases the GPU textures. The compositor re-uploads on the next
// Render.
func (c *Compositor) Dispose() {
	c.bgTex.Dispose()
	c.drawTex.Dispose()
	c.dirty = true
}

// backgroundFit maps Background pixel coordinates, starting at origin, onto
// the logical bounds.
func (c *Compositor) backgroundFit(origin image.Point) [6]float64 {
	b := c.background.Bounds()
	lw, lh := float64(c.drawing.Width()), float64(c.drawing.Height())
	sx := lw / float64(max(b.Dx(), 1))
	sy := lh / float64(max(b.Dy(), 1))
	return [6]float64{sx, 0, 0, sy, -float64(origin.X) * sx, -float64(origin.Y) * sy}
}

package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/anthonynsimon/bild/imgio"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Overlay colors.
var (
	BoxColor   = color.RGBA{255, 0, 255, 255} // magenta bounding box
	LabelColor = color.RGBA{0, 255, 255, 255} // cyan area label
)

// Annotation describes what to draw on top of a region of interest.
type Annotation struct {
	// Box is the selected blob's bounding box in region coordinates. An empty
	// box draws nothing.
	Box image.Rectangle
	// Area is printed below the box.
	Area int
}

// Annotate renders the operator view of a processed region: pixels outside
// mask are blacked out, then the bounding box and its area are drawn.
//
// roi and mask must have the same size. A nil mask keeps every pixel.
func Annotate(roi image.Image, mask *image.Gray, ann Annotation) *image.RGBA {
	rb := roi.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, rb.Dx(), rb.Dy()))
	draw.Draw(out, out.Bounds(), roi, rb.Min, draw.Src)

	if mask != nil {
		mb := mask.Bounds()
		for y := 0; y < rb.Dy() && y < mb.Dy(); y++ {
			for x := 0; x < rb.Dx() && x < mb.Dx(); x++ {
				if mask.GrayAt(mb.Min.X+x, mb.Min.Y+y).Y == 0 {
					out.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
				}
			}
		}
	}

	if ann.Box.Empty() {
		return out
	}

	drawRect(out, ann.Box, BoxColor)
	drawText(out, ann.Box.Min.X, ann.Box.Max.Y+15, strconv.Itoa(ann.Area), LabelColor)
	return out
}

// drawRect draws a one-pixel outline from r.Min to r.Max, both corners
// inclusive. Parts outside img are clipped.
func drawRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	b := img.Bounds()
	set := func(x, y int) {
		if image.Pt(x, y).In(b) {
			img.SetRGBA(x, y, c)
		}
	}
	for x := r.Min.X; x <= r.Max.X; x++ {
		set(x, r.Min.Y)
		set(x, r.Max.Y)
	}
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		set(r.Min.X, y)
		set(r.Max.X, y)
	}
}

// drawText draws text with its baseline at (x, y) using basicfont.
func drawText(img *image.RGBA, x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// EncodeJPEG encodes img for the visualization stream.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imgio.JPEGEncoder(quality)(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveSnapshot writes img to path as PNG.
func SaveSnapshot(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

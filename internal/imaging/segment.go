package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
)

// DefaultKernelSize is the side of the square dilation element.
const DefaultKernelSize = 15

// Segmenter turns a color frame into a binary mask of in-band pixels.
//
// The zero value is not usable; create one with NewSegmenter and adjust the
// exported fields before first use.
type Segmenter struct {
	// Width and Height are the working resolution frames are resized to.
	Width  int
	Height int

	// ROI is the region of interest in working-frame coordinates.
	ROI image.Rectangle

	// KernelSize is the side of the square dilation element. Values below 2
	// disable dilation.
	KernelSize int

	// BlurRadius applies a Gaussian pre-blur to the region before the HSV
	// conversion. Zero disables it.
	BlurRadius float64
}

// NewSegmenter returns a segmenter with the standard working geometry:
// 480×360 frames, rows 250-359 as region of interest, 15×15 dilation.
func NewSegmenter() *Segmenter {
	return &Segmenter{
		Width:      WorkWidth,
		Height:     WorkHeight,
		ROI:        DefaultROI,
		KernelSize: DefaultKernelSize,
	}
}

// Segment runs the full segmentation of one frame:
//
//  1. Normalize channel order to RGB
//  2. Resize to the working resolution
//  3. Crop the region of interest
//  4. Convert to HSV and keep pixels inside band (inclusive on every channel)
//  5. Dilate once with the square element to bridge gaps in the line
//
// The returned mask has the size of the region of interest with in-band pixels
// set to 255. An all-zero mask means no line is visible and is not an error.
// Identical frames and bands always give identical masks.
func (s *Segmenter) Segment(f *Frame, band ThresholdBand) (*image.Gray, error) {
	roi, err := s.Prepare(f)
	if err != nil {
		return nil, err
	}
	return s.MaskROI(roi, band), nil
}

// Prepare performs steps 1-3 of Segment and returns the region of interest as
// an RGB image. It is exposed so callers can annotate the same pixels the mask
// was computed from.
func (s *Segmenter) Prepare(f *Frame) (*image.NRGBA, error) {
	img, err := f.RGB()
	if err != nil {
		return nil, err
	}
	work := ResizeTo(img, s.Width, s.Height)
	roi, err := CropRegion(work, s.ROI)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	if s.BlurRadius > 0 {
		roi = imaging.Clone(blur.Gaussian(roi, s.BlurRadius))
	}
	return roi, nil
}

// MaskROI performs steps 4-5 of Segment on an already prepared region.
func (s *Segmenter) MaskROI(roi *image.NRGBA, band ThresholdBand) *image.Gray {
	return Dilate(Threshold(roi, band), s.KernelSize)
}

// Threshold marks every pixel of img whose HSV value lies inside band.
// Matching pixels are 255 and all others 0; the mask starts at (0,0).
func Threshold(img *image.NRGBA, band ThresholdBand) *image.Gray {
	b := img.Bounds()
	mask := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		out := mask.Pix[y*mask.Stride : y*mask.Stride+b.Dx()]
		for x := range out {
			p := RGBToHSV(row[x*4], row[x*4+1], row[x*4+2])
			if band.Contains(p) {
				out[x] = 255
			}
		}
	}
	return mask
}

// Dilate grows foreground regions of mask using a ksize×ksize square
// structuring element (a local maximum filter). Pixels outside the image do
// not contribute. Even sizes are rounded up to the next odd size; ksize
// below 2 returns an unchanged copy.
func Dilate(mask *image.Gray, ksize int) *image.Gray {
	if ksize < 2 {
		dst := image.NewGray(mask.Bounds())
		copy(dst.Pix, mask.Pix)
		return dst
	}
	if ksize%2 == 0 {
		ksize++
	}
	g := gift.New(gift.Maximum(ksize, false))
	dst := image.NewGray(g.Bounds(mask.Bounds()))
	g.Draw(dst, mask)
	return dst
}

// CountNonZero returns the number of foreground pixels in mask.
func CountNonZero(mask *image.Gray) int {
	n := 0
	for _, v := range mask.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Working geometry of the segmentation stage.
const (
	WorkWidth  = 480
	WorkHeight = 360

	// ROITop and ROIBottom delimit the region of interest rows; ROIBottom is
	// exclusive. The band covers the ground directly ahead of the vehicle.
	ROITop    = 250
	ROIBottom = 360
)

// DefaultROI is the region of interest in working-frame coordinates.
var DefaultROI = image.Rect(0, ROITop, WorkWidth, ROIBottom)

// ResizeTo scales img to width×height with bilinear filtering. Images that
// already have the requested size are copied without resampling, so pixel
// values stay exact.
func ResizeTo(img image.Image, width, height int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, width, height, imaging.Linear)
}

// CropRegion extracts roi from img. roi is given relative to the image origin
// and must lie inside the image; the result starts at (0,0).
func CropRegion(img image.Image, roi image.Rectangle) (*image.NRGBA, error) {
	bounds := img.Bounds()
	abs := roi.Add(bounds.Min)
	if roi.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: empty", roi)
	}
	if !abs.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %dx%d", roi, bounds.Dx(), bounds.Dy())
	}
	return imaging.Crop(img, abs), nil
}

//go:build gocv

package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/tello-linetrace/internal/imaging"
)

// OpenCVDetector runs thresholding, dilation and labelling through OpenCV.
//
// The region of interest is still prepared by the Go segmenter so both
// backends see exactly the same pixels.
type OpenCVDetector struct {
	seg *imaging.Segmenter
}

func newOpenCVDetector(seg *imaging.Segmenter) (Detector, error) {
	if seg == nil {
		seg = imaging.NewSegmenter()
	}
	return &OpenCVDetector{seg: seg}, nil
}

// Name returns the backend name.
func (d *OpenCVDetector) Name() string { return BackendOpenCV }

// Detect implements Detector.
func (d *OpenCVDetector) Detect(f *imaging.Frame, band imaging.ThresholdBand) (*Result, error) {
	roi, err := d.seg.Prepare(f)
	if err != nil {
		return nil, err
	}
	w, h := roi.Bounds().Dx(), roi.Bounds().Dy()

	rgba, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, roi.Pix)
	if err != nil {
		return nil, fmt.Errorf("failed to convert region: %w", err)
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(bgr, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(float64(band.HMin), float64(band.SMin), float64(band.VMin), 0),
		gocv.NewScalar(float64(band.HMax), float64(band.SMax), float64(band.VMax), 0),
		&mask)

	if d.seg.KernelSize >= 2 {
		kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{d.seg.KernelSize, d.seg.KernelSize})
		defer kernel.Close()
		gocv.Dilate(mask, &mask, kernel)
	}

	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()
	n := gocv.ConnectedComponentsWithStats(mask, &labels, &stats, &centroids)

	blobs := make([]Blob, 0, n)
	for i := 1; i < n; i++ {
		blobs = append(blobs, Blob{
			Label:     i,
			X:         int(stats.GetIntAt(i, int(gocv.CCStatLeft))),
			Y:         int(stats.GetIntAt(i, int(gocv.CCStatTop))),
			Width:     int(stats.GetIntAt(i, int(gocv.CCStatWidth))),
			Height:    int(stats.GetIntAt(i, int(gocv.CCStatHeight))),
			Area:      int(stats.GetIntAt(i, int(gocv.CCStatArea))),
			CentroidX: centroids.GetDoubleAt(i, 0),
			CentroidY: centroids.GetDoubleAt(i, 1),
		})
	}
	blob, found := Largest(blobs)

	gray := image.NewGray(image.Rect(0, 0, w, h))
	copy(gray.Pix, mask.ToBytes())

	return &Result{ROI: roi, Mask: gray, Blob: blob, Found: found}, nil
}

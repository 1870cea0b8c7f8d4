package detection

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/tello-linetrace/internal/imaging"
)

// ErrBackendUnavailable is returned when a detector backend was not compiled
// into the binary.
var ErrBackendUnavailable = errors.New("detector backend unavailable")

// Backend names accepted by New.
const (
	BackendNative = "native"
	BackendOpenCV = "opencv"
)

// Result is the outcome of one detection pass.
type Result struct {
	// ROI is the region of interest the mask was computed from, in RGB.
	ROI *image.NRGBA

	// Mask is the dilated binary mask of in-band pixels.
	Mask *image.Gray

	// Blob is the selected component. Only meaningful when Found is true.
	Blob Blob

	// Found reports whether the mask held any foreground pixels.
	Found bool
}

// Annotation returns the overlay description for the selected blob.
func (r *Result) Annotation() imaging.Annotation {
	if r == nil || !r.Found {
		return imaging.Annotation{}
	}
	return imaging.Annotation{Box: r.Blob.Box(), Area: r.Blob.Area}
}

// Detector segments a frame and selects the guide line.
//
// Implementations return imaging.ErrInvalidFrame for frames that carry no
// pixels; a frame without any in-band pixels is a valid result with Found set
// to false.
type Detector interface {
	Detect(f *imaging.Frame, band imaging.ThresholdBand) (*Result, error)
	Name() string
}

// NativeDetector runs segmentation and labelling in pure Go.
type NativeDetector struct {
	seg *imaging.Segmenter
}

// NewNativeDetector creates a detector around seg. A nil segmenter uses the
// standard geometry.
func NewNativeDetector(seg *imaging.Segmenter) *NativeDetector {
	if seg == nil {
		seg = imaging.NewSegmenter()
	}
	return &NativeDetector{seg: seg}
}

// Name returns the backend name.
func (d *NativeDetector) Name() string { return BackendNative }

// Detect implements Detector.
func (d *NativeDetector) Detect(f *imaging.Frame, band imaging.ThresholdBand) (*Result, error) {
	roi, err := d.seg.Prepare(f)
	if err != nil {
		return nil, err
	}
	mask := d.seg.MaskROI(roi, band)
	blob, found := SelectLargest(mask)
	return &Result{ROI: roi, Mask: mask, Blob: blob, Found: found}, nil
}

// New returns the detector for the named backend.
func New(backend string, seg *imaging.Segmenter) (Detector, error) {
	switch strings.ToLower(backend) {
	case "", BackendNative:
		return NewNativeDetector(seg), nil
	case BackendOpenCV:
		return newOpenCVDetector(seg)
	default:
		return nil, fmt.Errorf("unknown detector backend %q", backend)
	}
}

//go:build !gocv

package detection

import (
	"fmt"

	"github.com/ironsheep/tello-linetrace/internal/imaging"
)

// newOpenCVDetector reports that OpenCV support was not compiled in.
// Build with -tags gocv to enable it.
func newOpenCVDetector(_ *imaging.Segmenter) (Detector, error) {
	return nil, fmt.Errorf("%s: %w (rebuild with -tags gocv)", BackendOpenCV, ErrBackendUnavailable)
}

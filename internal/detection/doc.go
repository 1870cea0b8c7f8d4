// Package detection finds the guide line in a segmented region of interest.
//
// The pipeline has two stages. The imaging package turns a camera frame into a
// binary mask; this package labels the mask's connected components and picks
// the largest one as the line.
//
// # Connected components
//
// Foreground pixels (any non-zero value) are grouped with 8-connectivity, so
// diagonal neighbours belong to the same component. Labels are assigned 1..n
// in raster-scan order of each component's first pixel; label 0 is the
// background and is never a candidate.
//
// # Selection
//
// SelectLargest returns the component with the greatest pixel count. When two
// components have the same area the one with the lower label wins, which makes
// the choice deterministic for a given mask.
//
// # Coordinate System
//
// Blob coordinates are relative to the mask origin (the top-left corner of
// the region of interest), not to the full camera frame:
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// # Backends
//
// NativeDetector runs the whole pipeline in Go. When built with the gocv tag,
// the "opencv" backend runs segmentation and labelling through OpenCV instead;
// without the tag, requesting it fails with ErrBackendUnavailable.
package detection

// Package imaging implements the perception front half of the line follower:
// frame handling, the HSV threshold band, segmentation and the operator overlay.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner,
// X increasing rightward and Y increasing downward. Frames are resized to the
// working resolution (480×360) before anything else, and the segmentation mask
// covers only the region of interest: rows 250 to 359 across all 480 columns.
// Coordinates reported from a mask are relative to that region, so the X axis
// matches the full working frame while Y is offset by 250.
//
// # Color Representation
//
// HSV values use the 8-bit scale common to vision toolkits:
//   - H: 0-179 (degrees divided by two)
//   - S: 0-255
//   - V: 0-255
//
// # Thread Safety
//
// BandStore and ImageCache are safe for concurrent use. Segmenter holds only
// immutable settings; Segment may be called from several goroutines as long as
// each passes its own frame.
//
// # Error Handling
//
// Invalid input frames (nil, no image, zero-sized) are reported with
// ErrInvalidFrame, which callers treat as "no update this cycle". An empty
// mask is a valid result and is never an error.
package imaging

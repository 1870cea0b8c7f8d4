package imaging

import (
	"errors"
	"image"
	"time"

	"github.com/disintegration/imaging"
)

// ErrInvalidFrame is returned for frames that carry no usable pixels.
var ErrInvalidFrame = errors.New("invalid frame")

// ChannelOrder tags the byte order a frame source produced.
type ChannelOrder int

const (
	// OrderRGB is the native order of Go images.
	OrderRGB ChannelOrder = iota
	// OrderBGR marks frames whose red and blue channels are swapped.
	OrderBGR
)

func (o ChannelOrder) String() string {
	if o == OrderBGR {
		return "BGR"
	}
	return "RGB"
}

// Frame is a single color image delivered by a frame source.
type Frame struct {
	Image    image.Image
	Order    ChannelOrder
	Seq      uint64
	Captured time.Time
}

// Valid reports whether the frame has a non-empty image.
func (f *Frame) Valid() bool {
	return f != nil && f.Image != nil && !f.Image.Bounds().Empty()
}

// RGB returns the frame image in RGB order. BGR frames are copied with the
// red and blue channels swapped; RGB frames are returned as-is.
func (f *Frame) RGB() (image.Image, error) {
	if !f.Valid() {
		return nil, ErrInvalidFrame
	}
	if f.Order != OrderBGR {
		return f.Image, nil
	}
	dst := imaging.Clone(f.Image)
	for i := 0; i+2 < len(dst.Pix); i += 4 {
		dst.Pix[i], dst.Pix[i+2] = dst.Pix[i+2], dst.Pix[i]
	}
	return dst, nil
}

// FrameFromRGB24 wraps a packed rgb24 buffer (as produced by ffmpeg's
// rawvideo output) into a Frame. The buffer must hold width*height*3 bytes.
func FrameFromRGB24(buf []byte, width, height int, seq uint64, captured time.Time) (*Frame, error) {
	if width <= 0 || height <= 0 || len(buf) < width*height*3 {
		return nil, ErrInvalidFrame
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; j < width*height*3; i, j = i+4, j+3 {
		img.Pix[i] = buf[j]
		img.Pix[i+1] = buf[j+1]
		img.Pix[i+2] = buf[j+2]
		img.Pix[i+3] = 0xff
	}
	return &Frame{Image: img, Order: OrderRGB, Seq: seq, Captured: captured}, nil
}

package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// HSV is a color on the 8-bit hue/saturation/value scale.
//
// The scale matches what threshold tuning tools use:
//   - H: 0-179, hue in degrees divided by two (0=red, 60=green, 120=blue)
//   - S: 0-255 (0=gray, 255=vivid)
//   - V: 0-255 (0=black, 255=full brightness)
type HSV struct {
	H uint8 `json:"h"`
	S uint8 `json:"s"`
	V uint8 `json:"v"`
}

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// ColorSample is a pixel reported in the representations used for tuning.
type ColorSample struct {
	X   int      `json:"x"`
	Y   int      `json:"y"`
	Hex string   `json:"hex"` // "#RRGGBB"
	RGB RGBColor `json:"rgb"`
	HSV HSV      `json:"hsv"`
}

// RGBToHSV converts 8-bit RGB components to the 8-bit HSV scale.
//
// The conversion goes through go-colorful's HSV model (hue in degrees,
// saturation and value in 0-1) and then rescales:
//
//	H = round(hue / 2) mod 180
//	S = round(saturation * 255)
//	V = round(value * 255)
//
// Grays have hue 0 and saturation 0.
func RGBToHSV(r, g, b uint8) HSV {
	c := colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}
	h, s, v := c.Hsv()
	hue := int(math.Round(h/2)) % (HueMax + 1)
	return HSV{
		H: uint8(hue),
		S: uint8(math.Round(s * 255)),
		V: uint8(math.Round(v * 255)),
	}
}

// ToHSV converts any color to the 8-bit HSV scale. Alpha is ignored.
func ToHSV(c color.Color) HSV {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBToHSV(n.R, n.G, n.B)
}

// SampleColor reports the color at (x, y) in RGB, hex and HSV form.
//
// Coordinates are relative to the image bounds origin, so sampling a region of
// interest uses region coordinates. Returns an error if the point lies outside
// the image.
func SampleColor(img image.Image, x, y int) (*ColorSample, error) {
	bounds := img.Bounds()
	px, py := x+bounds.Min.X, y+bounds.Min.Y
	if px < bounds.Min.X || px >= bounds.Max.X || py < bounds.Min.Y || py >= bounds.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds %dx%d", x, y, bounds.Dx(), bounds.Dy())
	}

	n := color.NRGBAModel.Convert(img.At(px, py)).(color.NRGBA)
	return &ColorSample{
		X:   x,
		Y:   y,
		Hex: fmt.Sprintf("#%02X%02X%02X", n.R, n.G, n.B),
		RGB: RGBColor{R: n.R, G: n.G, B: n.B},
		HSV: RGBToHSV(n.R, n.G, n.B),
	}, nil
}

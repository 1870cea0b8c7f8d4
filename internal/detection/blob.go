package detection

import (
	"image"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Blob is one connected region of foreground pixels.
//
// Blobs are recomputed for every frame and never carried across frames.
type Blob struct {
	// Label is the component number, starting at 1 in raster-scan order.
	Label int `json:"label"`

	// X, Y, Width and Height describe the bounding box.
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`

	// Area is the number of pixels in the component.
	Area int `json:"area"`

	// CentroidX and CentroidY are the mean pixel coordinates.
	CentroidX float64 `json:"centroid_x"`
	CentroidY float64 `json:"centroid_y"`
}

// Box returns the bounding box as a rectangle.
func (b Blob) Box() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Components labels the connected foreground regions of mask and returns one
// Blob per label, ordered by label.
//
// An empty mask yields an empty slice.
func Components(mask *image.Gray) []Blob {
	_, blobs := Label(mask)
	return blobs
}

// Label assigns a component label to every pixel of mask.
//
// The returned label image is row-major with the mask's width and height; 0
// marks background. blobs[i] describes label i+1.
func Label(mask *image.Gray) (labels []int, blobs []Blob) {
	b := mask.Bounds()
	width, height := b.Dx(), b.Dy()
	labels = make([]int, width*height)

	for y := 0; y < height; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+width]
		for x, v := range row {
			if v == 0 || labels[y*width+x] != 0 {
				continue
			}
			blob := floodFill(mask, labels, x, y, width, height, len(blobs)+1)
			blobs = append(blobs, blob)
		}
	}

	return labels, blobs
}

// floodFill labels the component containing (startX, startY) and accumulates
// its statistics.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow on long
// lines. Uses 8-connectivity (includes diagonal neighbors).
func floodFill(mask *image.Gray, labels []int, startX, startY, width, height, label int) Blob {
	minX, minY := startX, startY
	maxX, maxY := startX, startY
	var area, sumX, sumY int

	labels[startY*width+startX] = label
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		area++
		sumX += p.X
		sumY += p.Y
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}

		// 8-connected neighbors
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				idx := ny*width + nx
				if labels[idx] != 0 || mask.Pix[ny*mask.Stride+nx] == 0 {
					continue
				}
				labels[idx] = label
				stack = append(stack, Point{X: nx, Y: ny})
			}
		}
	}

	return Blob{
		Label:     label,
		X:         minX,
		Y:         minY,
		Width:     maxX - minX + 1,
		Height:    maxY - minY + 1,
		Area:      area,
		CentroidX: float64(sumX) / float64(area),
		CentroidY: float64(sumY) / float64(area),
	}
}

// SelectLargest returns the largest component of mask.
//
// The boolean is false when the mask has no foreground pixels. Ties on area
// go to the lowest label.
func SelectLargest(mask *image.Gray) (Blob, bool) {
	return Largest(Components(mask))
}

// Largest picks the blob with the greatest area from blobs ordered by label.
func Largest(blobs []Blob) (Blob, bool) {
	best := -1
	for i, b := range blobs {
		if b.Area <= 0 {
			continue
		}
		if best < 0 || b.Area > blobs[best].Area {
			best = i
		}
	}
	if best < 0 {
		return Blob{}, false
	}
	return blobs[best], true
}

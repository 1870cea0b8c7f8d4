package detection

import (
	"image"
	"image/color"
	"testing"
)

// createMask creates an empty binary mask.
func createMask(width, height int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, width, height))
}

// fillRect sets the pixels of r (exclusive max) to foreground.
func fillRect(mask *image.Gray, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}
}

func TestSelectLargest_Empty(t *testing.T) {
	blob, ok := SelectLargest(createMask(480, 110))
	if ok {
		t.Errorf("empty mask should select nothing, got %+v", blob)
	}
	if blob != (Blob{}) {
		t.Errorf("expected zero blob, got %+v", blob)
	}
}

func TestSelectLargest_SingleBlob(t *testing.T) {
	mask := createMask(480, 110)
	fillRect(mask, image.Rect(200, 0, 220, 110))

	blob, ok := SelectLargest(mask)
	if !ok {
		t.Fatal("expected a blob")
	}
	if blob.Label != 1 || blob.Area != 20*110 {
		t.Errorf("label/area: got %d/%d", blob.Label, blob.Area)
	}
	if blob.X != 200 || blob.Y != 0 || blob.Width != 20 || blob.Height != 110 {
		t.Errorf("bounding box: got %+v", blob)
	}
	if blob.CentroidX != 209.5 || blob.CentroidY != 54.5 {
		t.Errorf("centroid: got (%v, %v), want (209.5, 54.5)", blob.CentroidX, blob.CentroidY)
	}
	if blob.Box() != image.Rect(200, 0, 220, 110) {
		t.Errorf("Box() = %v", blob.Box())
	}
}

func TestSelectLargest_PicksLargest(t *testing.T) {
	mask := createMask(100, 50)
	fillRect(mask, image.Rect(0, 0, 5, 5))     // label 1, area 25
	fillRect(mask, image.Rect(20, 0, 30, 40))  // label 2, area 400
	fillRect(mask, image.Rect(50, 10, 60, 20)) // label 3, area 100

	blob, ok := SelectLargest(mask)
	if !ok {
		t.Fatal("expected a blob")
	}
	if blob.Label != 2 || blob.Area != 400 {
		t.Errorf("got label %d area %d, want label 2 area 400", blob.Label, blob.Area)
	}
}

func TestSelectLargest_TieGoesToLowestLabel(t *testing.T) {
	mask := createMask(100, 50)
	fillRect(mask, image.Rect(60, 0, 70, 10))  // first in raster order: label 1
	fillRect(mask, image.Rect(10, 20, 20, 30)) // label 2, same area

	blob, ok := SelectLargest(mask)
	if !ok {
		t.Fatal("expected a blob")
	}
	if blob.Label != 1 || blob.X != 60 {
		t.Errorf("tie should go to label 1 at x=60, got %+v", blob)
	}
}

func TestLabel_EightConnectivity(t *testing.T) {
	mask := createMask(10, 10)
	// Diagonal chain: connected only through corners.
	for i := 0; i < 5; i++ {
		mask.SetGray(i, i, color.Gray{Y: 255})
	}

	labels, blobs := Label(mask)
	if len(blobs) != 1 {
		t.Fatalf("diagonal pixels should form one component, got %d", len(blobs))
	}
	if blobs[0].Area != 5 {
		t.Errorf("area: got %d, want 5", blobs[0].Area)
	}
	for i := 0; i < 5; i++ {
		if labels[i*10+i] != 1 {
			t.Errorf("pixel (%d,%d) label %d, want 1", i, i, labels[i*10+i])
		}
	}
	if labels[1] != 0 {
		t.Error("background pixel labelled")
	}
}

func TestLabel_RasterOrder(t *testing.T) {
	mask := createMask(20, 20)
	// A "U" shape whose right arm starts on the same row as the left arm must
	// still be a single component; a lower blob gets the next label.
	fillRect(mask, image.Rect(2, 0, 4, 10))
	fillRect(mask, image.Rect(8, 0, 10, 10))
	fillRect(mask, image.Rect(2, 8, 10, 10))
	fillRect(mask, image.Rect(15, 15, 18, 18))

	_, blobs := Label(mask)
	if len(blobs) != 2 {
		t.Fatalf("expected 2 components, got %d", len(blobs))
	}
	if blobs[0].Label != 1 || blobs[0].X != 2 || blobs[0].Width != 8 {
		t.Errorf("first component: %+v", blobs[0])
	}
	if blobs[1].Label != 2 || blobs[1].X != 15 || blobs[1].Area != 9 {
		t.Errorf("second component: %+v", blobs[1])
	}
}

func TestLabel_OffsetMask(t *testing.T) {
	full := createMask(30, 30)
	fillRect(full, image.Rect(12, 12, 14, 14))
	sub := full.SubImage(image.Rect(10, 10, 30, 30)).(*image.Gray)

	blobs := Components(sub)
	if len(blobs) != 1 {
		t.Fatalf("expected 1 component, got %d", len(blobs))
	}
	if blobs[0].X != 2 || blobs[0].Y != 2 {
		t.Errorf("coordinates should be mask-relative, got (%d,%d)", blobs[0].X, blobs[0].Y)
	}
}

func TestLabel_AnyNonZeroIsForeground(t *testing.T) {
	mask := createMask(4, 1)
	mask.SetGray(0, 0, color.Gray{Y: 1})
	mask.SetGray(1, 0, color.Gray{Y: 128})

	blobs := Components(mask)
	if len(blobs) != 1 || blobs[0].Area != 2 {
		t.Errorf("got %+v", blobs)
	}
}

func TestLargest(t *testing.T) {
	tests := []struct {
		name      string
		blobs     []Blob
		wantLabel int
		wantOK    bool
	}{
		{"none", nil, 0, false},
		{"zero area ignored", []Blob{{Label: 1, Area: 0}}, 0, false},
		{"single", []Blob{{Label: 1, Area: 3}}, 1, true},
		{"largest last", []Blob{{Label: 1, Area: 3}, {Label: 2, Area: 9}}, 2, true},
		{"tie", []Blob{{Label: 1, Area: 9}, {Label: 2, Area: 9}}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Largest(tt.blobs)
			if ok != tt.wantOK || got.Label != tt.wantLabel {
				t.Errorf("Largest() = %+v, %v; want label %d, %v", got, ok, tt.wantLabel, tt.wantOK)
			}
		})
	}
}

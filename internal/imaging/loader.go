package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// A replayed frame directory is read once and then served from memory, so
// looping over a recorded flight does not touch the disk again.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// Supported formats are PNG, JPEG, GIF, BMP and TIFF. The cache key is the
// exact path string.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

var frameExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true,
}

// FrameDir replays a directory of still images as a frame source.
//
// Files are served in lexical order, which matches the numbering used by
// ffmpeg's image2 muxer (frame_0001.png, frame_0002.png, ...). Read never
// blocks: it returns nil until Interval has passed since the previous frame,
// and nil forever once the files are exhausted unless Loop is set. Files that
// fail to decode are returned as invalid frames so the consumer skips them.
type FrameDir struct {
	Interval time.Duration
	Loop     bool

	cache *ImageCache
	files []string
	next  int
	seq   uint64
	last  time.Time
	now   func() time.Time
}

// NewFrameDir lists the image files of dir. It fails if dir cannot be read or
// holds no images.
func NewFrameDir(dir string, cache *ImageCache) (*FrameDir, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !frameExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no image files in %s", dir)
	}
	sort.Strings(files)
	if cache == nil {
		cache = NewImageCache()
	}
	return &FrameDir{cache: cache, files: files, now: time.Now}, nil
}

// Len returns the number of frames in the directory.
func (d *FrameDir) Len() int {
	return len(d.files)
}

// Read returns the next frame, or nil if none is due.
func (d *FrameDir) Read() *Frame {
	now := d.now()
	if d.Interval > 0 && !d.last.IsZero() && now.Sub(d.last) < d.Interval {
		return nil
	}
	if d.next >= len(d.files) {
		if !d.Loop {
			return nil
		}
		d.next = 0
	}
	path := d.files[d.next]
	d.next++
	d.last = now
	d.seq++

	img, err := d.cache.Load(path)
	if err != nil {
		return &Frame{Seq: d.seq, Captured: now}
	}
	return &Frame{Image: img, Order: OrderRGB, Seq: d.seq, Captured: now}
}

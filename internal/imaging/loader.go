package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder (flatbed scanner output)
	_ "golang.org/x/image/tiff" // Register TIFF format decoder (flatbed scanner output)
	"golang.org/x/sync/singleflight"
)

// ErrUnreadableImage is returned when an input file cannot be opened or decoded.
var ErrUnreadableImage = errors.New("unreadable image")

// ImageCache provides thread-safe caching of decoded answer sheets.
//
// The cache stores decoded image.Image objects keyed by their file path. Once a
// sheet is loaded, subsequent Load() calls for the same path return the cached
// copy without disk I/O. The MCP server uses it so that a client can run
// detection and grading against the same photo without decoding it twice.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
// Phone photos of answer sheets are commonly 12+ megapixels, so long-running
// processes should evict sheets once graded.
type ImageCache struct {
	sf singleflight.Group

	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// Images are decoded with EXIF auto-orientation so that phone photos taken in
// portrait mode arrive upright. Supported formats are PNG, JPEG, GIF, BMP and
// TIFF.
//
// # Errors
//
// Any open or decode failure is wrapped with ErrUnreadableImage.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	// Concurrent requests for the same sheet share one decode.
	v, err, _ := c.sf.Do(path, func() (interface{}, error) {
		c.mu.RLock()
		if img, ok := c.images[path]; ok {
			c.mu.RUnlock()
			return img, nil
		}
		c.mu.RUnlock()

		img, err := Open(path)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.images[path] = img
		c.mu.Unlock()
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Open decodes an image file from disk, applying EXIF orientation.
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableImage, path, err)
	}
	return img, nil
}

// Decode reads an image from r, applying EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	return img, nil
}

// Save encodes img to path. The format is chosen from the file extension
// (.jpg, .jpeg, .png, .gif, .tif, .tiff, .bmp); JPEG output uses quality 90.
func Save(img image.Image, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(90)); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// IsSupported reports whether path has an extension the loader can decode.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}

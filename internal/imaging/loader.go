package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"sync"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/annotation-audit/internal/geometry"
)

// ImageCache provides thread-safe caching of loaded images keyed by path.
//
// Tasks of one export frequently share an attachment, so the runner keeps a
// single cache for the whole run. Cached images are normalized to NRGBA.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*image.NRGBA
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*image.NRGBA),
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// Supported formats are PNG, JPEG, GIF, BMP and WebP.
func (c *ImageCache) Load(path string) (*image.NRGBA, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	decoded, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	img := Normalize(decoded)

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Put stores an already decoded image under key.
func (c *ImageCache) Put(key string, img *image.NRGBA) {
	c.mu.Lock()
	c.images[key] = img
	c.mu.Unlock()
}

// Get returns the cached image for key, if any.
func (c *ImageCache) Get(key string) (*image.NRGBA, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.images[key]
	return img, ok
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*image.NRGBA)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its key.
func (c *ImageCache) Evict(key string) {
	c.mu.Lock()
	delete(c.images, key)
	c.mu.Unlock()
}

// Decode decodes an in-memory image and normalizes it to NRGBA.
//
// Registered decoders are tried first; WebP data the stdlib-style decoder
// rejects (lossless or animated variants) falls back to the libwebp binding.
func Decode(data []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return Normalize(img), nil
	}

	if wimg, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
		return Normalize(wimg), nil
	}
	return nil, fmt.Errorf("failed to decode image: %w", err)
}

// Normalize returns img as an NRGBA image with bounds starting at (0,0).
// An image that already satisfies this is returned unchanged.
func Normalize(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}

// Dimensions returns the pixel size of img.
func Dimensions(img image.Image) geometry.Dimensions {
	b := img.Bounds()
	return geometry.Dimensions{Width: b.Dx(), Height: b.Dy()}
}

package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// ImageCache provides thread-safe caching of loaded mask images to avoid redundant disk reads.
//
// The cache stores decoded image.Image objects keyed by their file path. Once an image
// is loaded, subsequent Load() calls for the same path return the cached copy without
// disk I/O.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
// Batch runs over many masks should Evict each path once it has been extracted.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	labels, err := imaging.LoadLabels(cache, "/path/to/mask.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache.Evict("/path/to/mask.png")
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

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// Parameters:
//   - path: Absolute or relative file path to the image. Supported formats are
//     PNG, JPEG, GIF, BMP and TIFF.
//
// Returns:
//   - image.Image: The decoded image in its native color model. Palette and
//     gray images keep their exact pixel values, which LabelsFromImage relies on.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// The image is cached using the exact path string provided.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// LoadLabels loads a mask image through the cache and converts it to a LabelArray.
func LoadLabels(cache *ImageCache, path string) (*LabelArray, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	labels, err := LabelsFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels from %s: %w", path, err)
	}
	return labels, nil
}

// MaskInfo contains metadata about a mask image file.
type MaskInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format: "png", "jpeg", "gif", "bmp", "tiff" or "unknown".
	// Detection is based on file extension, not file contents.
	Format string `json:"format"`

	// ColorModel names the decoded pixel type, e.g. "gray", "gray16", "paletted".
	ColorModel string `json:"color_model"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`

	// LabelCount is the number of distinct non-zero labels.
	LabelCount int `json:"label_count"`

	// Labels lists the distinct non-zero labels in ascending order.
	Labels []int `json:"labels"`
}

// LoadMaskInfo loads a mask and returns its dimensions, format and label set.
//
// Parameters:
//   - cache: The image cache to use for loading. Must not be nil.
//   - path: Path to the mask image file.
//
// Returns:
//   - *MaskInfo: Metadata about the mask.
//   - error: Non-nil if the image cannot be loaded, is multi-channel, or the
//     file cannot be stat'd.
func LoadMaskInfo(cache *ImageCache, path string) (*MaskInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	labels, err := LabelsFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels from %s: %w", path, err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	case ".bmp":
		format = "bmp"
	case ".tif", ".tiff":
		format = "tiff"
	}

	colorModel := "color"
	switch img.(type) {
	case *image.Gray:
		colorModel = "gray"
	case *image.Gray16:
		colorModel = "gray16"
	case *image.Paletted:
		colorModel = "paletted"
	}

	set := labels.Labels()
	return &MaskInfo{
		Width:         labels.Width(),
		Height:        labels.Height(),
		Format:        format,
		ColorModel:    colorModel,
		FileSizeBytes: stat.Size(),
		LabelCount:    len(set),
		Labels:        set,
	}, nil
}

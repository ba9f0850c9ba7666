package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// createTestImage creates a solid-color test image file and returns its path.
// The caller is responsible for removing the file.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	tmpFile, err := os.CreateTemp("", "test-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to encode image: %v", err)
	}

	return tmpFile.Name()
}

// createMaskImage writes rows of labels as an 8-bit grayscale PNG.
// rows[y][x] is the label of pixel (x, y).
func createMaskImage(t *testing.T, rows [][]int) string {
	t.Helper()
	height := len(rows)
	width := len(rows[0])
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y, row := range rows {
		for x, v := range row {
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}

	path := filepath.Join(t.TempDir(), "mask.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create mask file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode mask: %v", err)
	}
	return path
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.images == nil {
		t.Fatal("NewImageCache did not initialize images map")
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 100, 100, color.RGBA{255, 0, 0, 255})
	defer os.Remove(imgPath)

	// First load
	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img1 == nil {
		t.Fatal("Load returned nil image")
	}

	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x100", bounds.Dx(), bounds.Dy())
	}

	// Second load should return cached image
	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
}

func TestImageCache_Load_KeepsGrayModel(t *testing.T) {
	cache := NewImageCache()
	path := createMaskImage(t, [][]int{{0, 7}, {7, 0}})

	img, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := img.(*image.Gray); !ok {
		t.Errorf("expected *image.Gray, got %T", img)
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	_, err := cache.Load("/nonexistent/path/to/image.png")
	if err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	cache := NewImageCache()

	// Create a file with invalid image data
	tmpFile, err := os.CreateTemp("", "invalid-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.WriteString("not an image")
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	_, err = cache.Load(tmpFile.Name())
	if err == nil {
		t.Error("Load should fail for invalid image data")
	}
}

func TestImageCache_Clear(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{0, 255, 0, 255})
	defer os.Remove(imgPath)

	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Clear()

	cache.mu.RLock()
	count := len(cache.images)
	cache.mu.RUnlock()

	if count != 0 {
		t.Errorf("Clear did not empty cache: %d images remain", count)
	}
}

func TestImageCache_Evict(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{0, 0, 255, 255})
	defer os.Remove(imgPath)

	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Evict(imgPath)

	cache.mu.RLock()
	_, exists := cache.images[imgPath]
	cache.mu.RUnlock()

	if exists {
		t.Error("Evict did not remove image from cache")
	}
}

func TestImageCache_Evict_NonExistent(t *testing.T) {
	cache := NewImageCache()
	// Should not panic
	cache.Evict("/nonexistent/path")
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{128, 128, 128, 255})
	defer os.Remove(imgPath)

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestLoadLabels(t *testing.T) {
	cache := NewImageCache()
	path := createMaskImage(t, [][]int{
		{0, 0, 0, 0},
		{0, 1, 1, 0},
		{0, 1, 1, 2},
	})

	labels, err := LoadLabels(cache, path)
	if err != nil {
		t.Fatalf("LoadLabels failed: %v", err)
	}

	if labels.Width() != 4 || labels.Height() != 3 {
		t.Errorf("dimensions: got %dx%d, want 4x3", labels.Width(), labels.Height())
	}
	if labels.At(1, 1) != 1 || labels.At(3, 2) != 2 || labels.At(0, 0) != 0 {
		t.Errorf("unexpected cells: (1,1)=%d (3,2)=%d (0,0)=%d",
			labels.At(1, 1), labels.At(3, 2), labels.At(0, 0))
	}
}

func TestLoadLabels_RejectsColor(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 4, 4, color.RGBA{255, 0, 0, 255})
	defer os.Remove(imgPath)

	_, err := LoadLabels(cache, imgPath)
	if !errors.Is(err, ErrMultiChannel) {
		t.Errorf("expected ErrMultiChannel, got %v", err)
	}
}

func TestLoadMaskInfo(t *testing.T) {
	cache := NewImageCache()
	path := createMaskImage(t, [][]int{
		{0, 3, 3},
		{1, 0, 0},
	})

	info, err := LoadMaskInfo(cache, path)
	if err != nil {
		t.Fatalf("LoadMaskInfo failed: %v", err)
	}

	if info.Width != 3 {
		t.Errorf("Width: got %d, want 3", info.Width)
	}
	if info.Height != 2 {
		t.Errorf("Height: got %d, want 2", info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.ColorModel != "gray" {
		t.Errorf("ColorModel: got %s, want gray", info.ColorModel)
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}
	if info.LabelCount != 2 {
		t.Errorf("LabelCount: got %d, want 2", info.LabelCount)
	}
	if len(info.Labels) != 2 || info.Labels[0] != 1 || info.Labels[1] != 3 {
		t.Errorf("Labels: got %v, want [1 3]", info.Labels)
	}
}

func TestLoadMaskInfo_FormatDetection(t *testing.T) {
	cache := NewImageCache()

	tests := []struct {
		ext    string
		format string
	}{
		{".png", "png"},
		{".jpg", "jpeg"},
		{".jpeg", "jpeg"},
		{".gif", "gif"},
		{".bmp", "bmp"},
		{".tif", "tiff"},
		{".xyz", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			tmpPath := filepath.Join(t.TempDir(), "test-format"+tt.ext)

			// Create a valid PNG regardless of extension
			img := image.NewGray(image.Rect(0, 0, 10, 10))
			f, err := os.Create(tmpPath)
			if err != nil {
				t.Fatalf("failed to create file: %v", err)
			}
			png.Encode(f, img)
			f.Close()

			info, err := LoadMaskInfo(cache, tmpPath)
			if err != nil {
				t.Fatalf("LoadMaskInfo failed: %v", err)
			}

			if info.Format != tt.format {
				t.Errorf("Format for %s: got %s, want %s", tt.ext, info.Format, tt.format)
			}
		})
	}
}

func TestLoadMaskInfo_NonExistent(t *testing.T) {
	cache := NewImageCache()
	_, err := LoadMaskInfo(cache, "/nonexistent/image.png")
	if err == nil {
		t.Error("LoadMaskInfo should fail for non-existent file")
	}
}

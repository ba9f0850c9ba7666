package extract

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ironsheep/mask-tools-mcp/internal/config"
	"github.com/ironsheep/mask-tools-mcp/internal/imaging"
	"github.com/ironsheep/mask-tools-mcp/internal/output"
)

// Runner extracts a batch of mask files, writing one JSON document per image.
//
// Images are processed one at a time. A failing image is logged and recorded
// in its Result; the batch continues with the next file.
type Runner struct {
	// Cache is used to load masks. Each path is evicted once processed.
	Cache *imaging.ImageCache

	// Options are applied to every image.
	Options config.Options

	// OutDir receives the JSON files. Empty writes each document next to
	// its image, with the extension replaced by ".json".
	OutDir string

	// Preview also renders a "<name>.preview.png" overlay per image.
	Preview bool

	// PreviewScale is passed to imaging.RenderPreview.
	PreviewScale float64

	// Logger receives per-image progress. Nil uses the standard logger.
	Logger *log.Logger

	// RunID tags log lines and results of one batch. Empty generates a new
	// random UUID per Run call.
	RunID string
}

// Result describes the outcome for one image of a batch.
type Result struct {
	RunID         string `json:"run_id"`
	ImagePath     string `json:"image_path"`
	OutputPath    string `json:"output_path,omitempty"`
	PreviewPath   string `json:"preview_path,omitempty"`
	Segmentations int    `json:"segmentations"`
	Polygons      int    `json:"polygons"`
	Err           error  `json:"-"`
}

// Run processes every path in order.
//
// Returns:
//   - []Result: One entry per path, in input order.
//   - int: The number of images that failed.
func (r *Runner) Run(paths []string) ([]Result, int) {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	cache := r.Cache
	if cache == nil {
		cache = imaging.NewImageCache()
	}

	runID := r.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	results := make([]Result, 0, len(paths))
	failed := 0
	for _, path := range paths {
		res := r.runOne(cache, path)
		res.RunID = runID
		cache.Evict(path)

		if res.Err != nil {
			failed++
			logger.Printf("[%s] %s: %v", runID, path, res.Err)
		} else {
			logger.Printf("[%s] %s: %d labels, %d polygons -> %s", runID, path, res.Segmentations, res.Polygons, res.OutputPath)
		}
		results = append(results, res)
	}
	return results, failed
}

func (r *Runner) runOne(cache *imaging.ImageCache, path string) Result {
	res := Result{ImagePath: path}

	labels, err := imaging.LoadLabels(cache, path)
	if err != nil {
		res.Err = err
		return res
	}
	doc, err := Segmentations(path, labels, r.Options)
	if err != nil {
		res.Err = err
		return res
	}

	res.Segmentations = len(doc.Segmentations)
	for _, seg := range doc.Segmentations {
		res.Polygons += len(seg.Polygons)
	}

	res.OutputPath, err = output.WriteJSON(doc, r.destination(path))
	if err != nil {
		res.Err = err
		return res
	}

	if r.Preview {
		res.PreviewPath, err = writePreview(labels, doc, res.OutputPath, r.PreviewScale)
		if err != nil {
			res.Err = err
		}
	}
	return res
}

// destination returns where the document for path is written, before the
// ".json" extension is applied.
func (r *Runner) destination(path string) string {
	if r.OutDir == "" {
		return path
	}
	return filepath.Join(r.OutDir, filepath.Base(path))
}

// PreviewPath returns the overlay path that belongs to a JSON output path.
func PreviewPath(jsonPath string) string {
	return strings.TrimSuffix(jsonPath, filepath.Ext(jsonPath)) + ".preview.png"
}

func writePreview(labels *imaging.LabelArray, doc *Document, jsonPath string, scale float64) (string, error) {
	outlines, err := PreviewOutlines(doc)
	if err != nil {
		return "", err
	}
	img, err := imaging.RenderPreview(labels, outlines, imaging.PreviewOptions{Scale: scale, ShowLabels: true})
	if err != nil {
		return "", fmt.Errorf("failed to render preview: %w", err)
	}

	path := PreviewPath(jsonPath)
	if err := imaging.SavePreview(img, path); err != nil {
		return "", err
	}
	return path, nil
}

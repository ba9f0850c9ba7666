package extract

import (
	"fmt"

	"github.com/ironsheep/mask-tools-mcp/internal/config"
	"github.com/ironsheep/mask-tools-mcp/internal/detection"
	"github.com/ironsheep/mask-tools-mcp/internal/geometry"
	"github.com/ironsheep/mask-tools-mcp/internal/imaging"
	"github.com/paulmach/orb"
)

// Segmentation holds the outlines of one label as WKT, in percentage coordinates.
type Segmentation struct {
	// Label is the mask value the polygons were traced from. Never 0.
	Label int `json:"label"`

	// Polygons lists one WKT string per polygon. Empty, never null, when the
	// label produced no polygon with area.
	Polygons []string `json:"polygons"`
}

// Document is the extraction result for one mask image.
type Document struct {
	ImagePath     string         `json:"image_path"`
	Width         int            `json:"width"`
	Height        int            `json:"height"`
	Segmentations []Segmentation `json:"segmentations"`
}

// Normalize runs a traced geometry group through the geometry pipeline.
//
// Parameters:
//   - v: An orb geometry or a sequence of them (see geometry.Collect), in
//     pixel coordinates.
//   - width, height: Image dimensions used for the percentage rescale.
//   - opts: Simplification settings. opts.GridResolution is only read when
//     opts.SimplifyPolygons is set.
//
// Returns:
//   - []orb.Polygon: Valid, non-empty polygons in percentage coordinates.
//   - error: A *geometry.TypeError when v holds something that is not geometry.
func Normalize(v any, width, height int, opts config.Options) ([]orb.Polygon, error) {
	g, err := geometry.Collect(v)
	if err != nil {
		return nil, err
	}

	if opts.SimplifyPolygons {
		g = geometry.Simplify(g, geometry.SimplifyTolerance(opts.GridResolution))
	}
	g = geometry.ToPercentage(g, width, height)

	valid, err := geometry.MakeValid(g)
	if err != nil {
		return nil, err
	}
	return geometry.Flatten(valid)
}

// ExtractLabel traces one label of a mask and returns its Segmentation.
// A label that does not occur in the mask yields an empty polygon list.
func ExtractLabel(labels *imaging.LabelArray, label int, opts config.Options) (Segmentation, error) {
	traced := detection.TraceMask(labels.Isolate(label))

	polygons, err := Normalize(traced, labels.Width(), labels.Height(), opts)
	if err != nil {
		return Segmentation{}, err
	}

	wkts := make([]string, 0, len(polygons))
	for _, p := range polygons {
		wkts = append(wkts, geometry.PolygonWKT(p))
	}
	return Segmentation{Label: label, Polygons: wkts}, nil
}

// Segmentations extracts every non-zero label of a mask into a Document.
//
// Parameters:
//   - imagePath: Recorded verbatim as the document's image_path.
//   - labels: The decoded mask. It is not modified.
//   - opts: Extraction options; validated before any work is done.
//
// Returns:
//   - *Document: One Segmentation per distinct non-zero label, in ascending
//     label order. An all-background mask yields an empty list.
//   - error: Non-nil for invalid options or when a label fails to normalize;
//     the error names the label.
func Segmentations(imagePath string, labels *imaging.LabelArray, opts config.Options) (*Document, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	doc := &Document{
		ImagePath:     imagePath,
		Width:         labels.Width(),
		Height:        labels.Height(),
		Segmentations: []Segmentation{},
	}

	for _, label := range labels.Labels() {
		seg, err := ExtractLabel(labels, label, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to extract label %d: %w", label, err)
		}
		doc.Segmentations = append(doc.Segmentations, seg)
	}
	return doc, nil
}

// FromFile loads a mask through the cache and extracts its segmentations.
func FromFile(cache *imaging.ImageCache, path string, opts config.Options) (*Document, error) {
	labels, err := imaging.LoadLabels(cache, path)
	if err != nil {
		return nil, err
	}
	return Segmentations(path, labels, opts)
}

// PreviewOutlines parses a document's WKT back into pixel-space polygons
// for imaging.RenderPreview.
func PreviewOutlines(doc *Document) ([]imaging.LabelOutline, error) {
	outlines := make([]imaging.LabelOutline, 0, len(doc.Segmentations))
	for _, seg := range doc.Segmentations {
		outline := imaging.LabelOutline{Label: seg.Label}
		for _, text := range seg.Polygons {
			p, err := geometry.ParseWKT(text)
			if err != nil {
				return nil, fmt.Errorf("failed to read outline of label %d: %w", seg.Label, err)
			}
			if len(p) == 0 {
				continue
			}
			outline.Polygons = append(outline.Polygons, geometry.ToPixel(p, doc.Width, doc.Height).(orb.Polygon))
		}
		outlines = append(outlines, outline)
	}
	return outlines, nil
}

package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/paulmach/orb"
)

// LabelOutline holds the polygons extracted for one label, in pixel coordinates.
type LabelOutline struct {
	Label    int
	Polygons []orb.Polygon
}

// PreviewOptions controls RenderPreview.
type PreviewOptions struct {
	// Scale resizes the output (e.g. 4.0 for small masks). 0 means 1.
	Scale float64

	// OutlineColor is a hex color ("#RRGGBB" or "#RRGGBBAA") for polygon
	// edges. Empty or invalid falls back to white.
	OutlineColor string

	// ShowLabels draws each label's number at the top-left of its polygons.
	ShowLabels bool
}

// PreviewResult contains a rendered preview encoded as base64 PNG.
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// fillAlpha is the opacity of label fills over the dark background (50%).
const fillAlpha = 128

// LabelPalette assigns each label a distinct, stable color.
//
// Hues are spaced by the golden angle in label order, so the same label set
// always receives the same colors.
func LabelPalette(labels []int) map[int]color.NRGBA {
	palette := make(map[int]color.NRGBA, len(labels))
	for i, label := range labels {
		hue := math.Mod(float64(i)*137.508, 360)
		r, g, b := colorful.Hsv(hue, 0.65, 0.95).Clamped().RGB255()
		palette[label] = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	return palette
}

// RenderPreview draws a label mask with its extracted outlines for visual checking.
//
// Each label is filled with its LabelPalette color, blended over a dark
// background. Outline polygons must be in pixel space (see geometry.ToPixel);
// their rings are drawn on top after scaling.
//
// Returns an error only for an empty mask.
func RenderPreview(labels *LabelArray, outlines []LabelOutline, opts PreviewOptions) (*image.NRGBA, error) {
	width, height := labels.Width(), labels.Height()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("cannot render preview of empty mask (%dx%d)", width, height)
	}

	palette := LabelPalette(labels.Labels())
	base := imaging.New(width, height, color.NRGBA{R: 24, G: 24, B: 24, A: 255})
	layer := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if c, ok := palette[labels.At(x, y)]; ok {
				c.A = fillAlpha
				layer.SetNRGBA(x, y, c)
			}
		}
	}
	composed := blend.Normal(base, layer)

	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	var out *image.NRGBA
	if scale != 1 {
		w := max(1, int(math.Round(float64(width)*scale)))
		h := max(1, int(math.Round(float64(height)*scale)))
		out = imaging.Resize(composed, w, h, imaging.NearestNeighbor)
	} else {
		out = imaging.Clone(composed)
	}
	sx := float64(out.Bounds().Dx()) / float64(width)
	sy := float64(out.Bounds().Dy()) / float64(height)

	edgeColor, err := parseHexColor(opts.OutlineColor)
	if err != nil {
		edgeColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	labelColor := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	labelBg := color.NRGBA{R: 0, G: 0, B: 0, A: 200}

	for _, o := range outlines {
		for _, p := range o.Polygons {
			for _, ring := range p {
				for i := 0; i+1 < len(ring); i++ {
					drawLine(out,
						int(math.Round(ring[i][0]*sx)), int(math.Round(ring[i][1]*sy)),
						int(math.Round(ring[i+1][0]*sx)), int(math.Round(ring[i+1][1]*sy)),
						edgeColor)
				}
			}
			if opts.ShowLabels && len(p) > 0 {
				b := p.Bound()
				drawLabel(out, int(b.Min[0]*sx)+2, int(b.Min[1]*sy)+2, strconv.Itoa(o.Label), labelColor, labelBg)
			}
		}
	}

	return out, nil
}

// EncodePreview encodes a rendered preview as base64 PNG.
func EncodePreview(img image.Image) (*PreviewResult, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// SavePreview writes a rendered preview; the format follows the file extension.
func SavePreview(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save preview: %w", err)
	}
	return nil
}

// drawLine rasterizes a segment with Bresenham's algorithm, clamping the
// end points into the image so edges on the right and bottom border show.
func drawLine(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	b := img.Bounds()
	x0, x1 = clamp(x0, b.Min.X, b.Max.X-1), clamp(x1, b.Min.X, b.Max.X-1)
	y0, y1 = clamp(y0, b.Min.Y, b.Max.Y-1), clamp(y1, b.Min.Y, b.Max.Y-1)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	stepX, stepY := 1, 1
	if x0 > x1 {
		stepX = -1
	}
	if y0 > y1 {
		stepY = -1
	}

	err := dx + dy
	for {
		img.SetNRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += stepX
		}
		if e2 <= dx {
			err += dx
			y0 += stepY
		}
	}
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.NRGBA, error) {
	if len(hex) == 0 {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

// drawLabel draws a label number at the given position with a 3x5 pixel font.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		'-': {"000", "000", "111", "000", "000"},
	}

	bounds := img.Bounds()
	inside := func(px, py int) bool {
		return px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y
	}
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			if px, py := x+dx, y+dy; inside(px, py) {
				img.SetNRGBA(px, py, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		for row, line := range glyphs[ch] {
			for col, pixel := range line {
				if px, py := cx+col, y+row; pixel == '1' && inside(px, py) {
					img.SetNRGBA(px, py, fg)
				}
			}
		}
		cx += charWidth
	}
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockFixture is a 4x4 mask with a 2x2 block of label 1 and its outline.
func blockFixture(t *testing.T) (*LabelArray, []LabelOutline) {
	t.Helper()
	labels := mustLabels(t, [][]int{
		{0, 0, 0, 0},
		{0, 1, 1, 0},
		{0, 1, 1, 0},
		{0, 0, 0, 0},
	})
	outline := orb.Polygon{{{1, 1}, {3, 1}, {3, 3}, {1, 3}, {1, 1}}}
	return labels, []LabelOutline{{Label: 1, Polygons: []orb.Polygon{outline}}}
}

func TestLabelPalette(t *testing.T) {
	palette := LabelPalette([]int{1, 2, 7})

	require.Len(t, palette, 3)
	assert.NotEqual(t, palette[1], palette[2])
	assert.NotEqual(t, palette[2], palette[7])
	for label, c := range palette {
		assert.Equal(t, uint8(255), c.A, "label %d should be opaque", label)
	}

	// stable across calls
	assert.Equal(t, palette, LabelPalette([]int{1, 2, 7}))
}

func TestRenderPreview(t *testing.T) {
	labels, outlines := blockFixture(t)

	img, err := RenderPreview(labels, outlines, PreviewOptions{Scale: 4})
	require.NoError(t, err)

	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())

	// top edge of the outline runs from (4,4) to (12,4)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, img.NRGBAAt(8, 4))

	// inside the block: label 1 fill, hue 0 is red-dominant
	inside := img.NRGBAAt(8, 8)
	assert.Greater(t, inside.R, inside.G)

	// background stays dark
	bg := img.NRGBAAt(0, 0)
	assert.Less(t, bg.R, uint8(50))
	assert.Equal(t, uint8(255), bg.A)
}

func TestRenderPreview_DefaultScale(t *testing.T) {
	labels, outlines := blockFixture(t)

	img, err := RenderPreview(labels, outlines, PreviewOptions{})
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
}

func TestRenderPreview_OutlineColor(t *testing.T) {
	labels, outlines := blockFixture(t)

	img, err := RenderPreview(labels, outlines, PreviewOptions{Scale: 4, OutlineColor: "#00FF00"})
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{0, 255, 0, 255}, img.NRGBAAt(8, 4))
}

func TestRenderPreview_InvalidOutlineColor(t *testing.T) {
	labels, outlines := blockFixture(t)

	img, err := RenderPreview(labels, outlines, PreviewOptions{Scale: 4, OutlineColor: "not-a-color"})
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, img.NRGBAAt(8, 4))
}

func TestRenderPreview_ShowLabels(t *testing.T) {
	labels, outlines := blockFixture(t)

	plain, err := RenderPreview(labels, outlines, PreviewOptions{Scale: 4})
	require.NoError(t, err)
	labelled, err := RenderPreview(labels, outlines, PreviewOptions{Scale: 4, ShowLabels: true})
	require.NoError(t, err)

	// label box starts at the polygon's top-left plus 2, with a 1 pixel margin
	assert.Equal(t, color.NRGBA{0, 0, 0, 200}, labelled.NRGBAAt(5, 5))
	assert.NotEqual(t, plain.NRGBAAt(5, 5), labelled.NRGBAAt(5, 5))
}

func TestRenderPreview_BorderOutline(t *testing.T) {
	labels := mustLabels(t, [][]int{{1, 1}, {1, 1}})
	full := orb.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}

	// edges on x=2 and y=2 are clamped into the image
	img, err := RenderPreview(labels, []LabelOutline{{Label: 1, Polygons: []orb.Polygon{full}}}, PreviewOptions{})
	require.NoError(t, err)

	white := color.NRGBA{255, 255, 255, 255}
	assert.Equal(t, white, img.NRGBAAt(1, 1))
	assert.Equal(t, white, img.NRGBAAt(0, 0))
}

func TestRenderPreview_EmptyMask(t *testing.T) {
	labels := mustLabels(t, nil)

	_, err := RenderPreview(labels, nil, PreviewOptions{})
	assert.Error(t, err)
}

func TestEncodePreview(t *testing.T) {
	labels, outlines := blockFixture(t)
	img, err := RenderPreview(labels, outlines, PreviewOptions{Scale: 2})
	require.NoError(t, err)

	result, err := EncodePreview(img)
	require.NoError(t, err)

	assert.Equal(t, 8, result.Width)
	assert.Equal(t, 8, result.Height)
	assert.Equal(t, "image/png", result.MimeType)

	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), decoded.Bounds())
}

func TestSavePreview(t *testing.T) {
	labels, outlines := blockFixture(t)
	img, err := RenderPreview(labels, outlines, PreviewOptions{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mask.preview.png")
	require.NoError(t, SavePreview(img, path))

	cache := NewImageCache()
	loaded, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), loaded.Bounds())
}

func TestSavePreview_UnknownExtension(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))

	err := SavePreview(img, filepath.Join(t.TempDir(), "preview.xyz"))
	assert.Error(t, err)
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		hex     string
		want    color.NRGBA
		wantErr bool
	}{
		{"#FF0000", color.NRGBA{255, 0, 0, 255}, false},
		{"#00FF00", color.NRGBA{0, 255, 0, 255}, false},
		{"FF0000", color.NRGBA{255, 0, 0, 255}, false},    // without #
		{"#FF000080", color.NRGBA{255, 0, 0, 128}, false}, // with alpha
		{"", color.NRGBA{}, true},                         // empty
		{"#FFF", color.NRGBA{}, true},                     // invalid length
		{"#GGGGGG", color.NRGBA{}, true},                  // invalid hex
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			c, err := parseHexColor(tt.hex)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c)
		})
	}
}

func TestDrawLabel(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	fg := color.NRGBA{255, 255, 255, 255}
	bg := color.NRGBA{0, 0, 0, 180}

	drawLabel(img, 10, 10, "12", fg, bg)

	hasFg, hasBg := false, false
	for y := 9; y < 17; y++ {
		for x := 9; x < 18; x++ {
			switch img.NRGBAAt(x, y) {
			case fg:
				hasFg = true
			case bg:
				hasBg = true
			}
		}
	}
	assert.True(t, hasFg, "label should have text pixels")
	assert.True(t, hasBg, "label should have background pixels")
}

func TestDrawLabel_BoundsCheck(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	fg := color.NRGBA{255, 255, 255, 255}
	bg := color.NRGBA{0, 0, 0, 180}

	// must not panic when the label extends past the image
	drawLabel(img, 15, 15, "1000", fg, bg)
	drawLabel(img, -5, -5, "7", fg, bg)
}

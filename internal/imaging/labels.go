package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"
)

// ErrMultiChannel is returned for colour images whose channels disagree.
var ErrMultiChannel = errors.New("multi-channel masks are not supported")

// LabelArray is a read-only grid of integer labels, one per pixel.
//
// Label 0 is background. Cells are stored row-major; (0,0) is the top-left
// pixel. Once built, a LabelArray is never modified: Isolate returns a copy.
type LabelArray struct {
	width  int
	height int
	cells  []int
}

// LabelArrayFromRows builds a LabelArray from rows of equal length.
// rows[y][x] is the label of pixel (x, y).
func LabelArrayFromRows(rows [][]int) (*LabelArray, error) {
	height := len(rows)
	width := 0
	if height > 0 {
		width = len(rows[0])
	}

	a := newLabelArray(width, height)
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d cells, want %d", y, len(row), width)
		}
		copy(a.cells[y*width:], row)
	}
	return a, nil
}

func newLabelArray(width, height int) *LabelArray {
	return &LabelArray{
		width:  width,
		height: height,
		cells:  make([]int, width*height),
	}
}

// Width returns the number of columns.
func (a *LabelArray) Width() int { return a.width }

// Height returns the number of rows.
func (a *LabelArray) Height() int { return a.height }

// At returns the label of pixel (x, y). Coordinates must be in range.
func (a *LabelArray) At(x, y int) int {
	return a.cells[y*a.width+x]
}

// Foreground reports whether pixel (x, y) is non-zero.
func (a *LabelArray) Foreground(x, y int) bool {
	return a.At(x, y) != 0
}

// Labels returns the distinct non-zero labels in ascending order.
func (a *LabelArray) Labels() []int {
	seen := make(map[int]struct{})
	for _, v := range a.cells {
		if v != 0 {
			seen[v] = struct{}{}
		}
	}

	labels := make([]int, 0, len(seen))
	for v := range seen {
		labels = append(labels, v)
	}
	sort.Ints(labels)
	return labels
}

// LabelCount is the number of pixels carrying one label.
type LabelCount struct {
	Label  int `json:"label"`
	Pixels int `json:"pixels"`
}

// LabelCounts returns the pixel count of every non-zero label, in label order.
func (a *LabelArray) LabelCounts() []LabelCount {
	counts := make(map[int]int)
	for _, v := range a.cells {
		if v != 0 {
			counts[v]++
		}
	}

	out := make([]LabelCount, 0, len(counts))
	for _, label := range a.Labels() {
		out = append(out, LabelCount{Label: label, Pixels: counts[label]})
	}
	return out
}

// Isolate returns a copy in which cells equal to label keep their value and
// every other cell is 0. The receiver is not modified. A label that does not
// occur yields an all-zero array.
func (a *LabelArray) Isolate(label int) *LabelArray {
	out := newLabelArray(a.width, a.height)
	for i, v := range a.cells {
		if v == label {
			out.cells[i] = v
		}
	}
	return out
}

// LabelsFromImage converts a decoded mask image into a LabelArray.
//
// Supported color models:
//   - *image.Gray, *image.Gray16: the gray level is the label
//   - *image.Paletted: the palette index is the label
//   - any other model: accepted when red, green and blue agree at every
//     pixel; the 8-bit (or 16-bit, for 64-bit models) channel value is the label
//
// Returns ErrMultiChannel when the channels of a colour image differ.
func LabelsFromImage(img image.Image) (*LabelArray, error) {
	bounds := img.Bounds()
	a := newLabelArray(bounds.Dx(), bounds.Dy())

	set := func(x, y, v int) {
		a.cells[(y-bounds.Min.Y)*a.width+(x-bounds.Min.X)] = v
	}

	switch m := img.(type) {
	case *image.Gray:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				set(x, y, int(m.GrayAt(x, y).Y))
			}
		}
	case *image.Gray16:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				set(x, y, int(m.Gray16At(x, y).Y))
			}
		}
	case *image.Paletted:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				set(x, y, int(m.ColorIndexAt(x, y)))
			}
		}
	default:
		wide := false
		switch img.(type) {
		case *image.RGBA64, *image.NRGBA64:
			wide = true
		}
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
				if c.R != c.G || c.G != c.B {
					return nil, fmt.Errorf("pixel (%d,%d) has channels (%d,%d,%d): %w",
						x, y, c.R, c.G, c.B, ErrMultiChannel)
				}
				if wide {
					set(x, y, int(c.R))
				} else {
					set(x, y, int(c.R>>8))
				}
			}
		}
	}

	return a, nil
}

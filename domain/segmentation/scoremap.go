// Package segmentation implements the clothing-segmentation post-processing
// pipeline: upsampling the network's class-score grid to image resolution,
// confidence thresholding, palette coloring, and overlay blending.
package segmentation

import "fmt"

// ScoreMap is a per-pixel class-score grid at some resolution, usually the
// network's native output resolution. Scores are raw logits laid out as
// [class][row][col] in a single backing slice.
type ScoreMap struct {
	Classes int
	Height  int
	Width   int
	Scores  []float32
}

// NewScoreMap allocates a zeroed score map.
func NewScoreMap(classes, height, width int) *ScoreMap {
	return &ScoreMap{
		Classes: classes,
		Height:  height,
		Width:   width,
		Scores:  make([]float32, classes*height*width),
	}
}

// Validate checks internal consistency of the grid.
func (m *ScoreMap) Validate() error {
	if m.Classes <= 0 || m.Height <= 0 || m.Width <= 0 {
		return fmt.Errorf("score map has empty dimensions %dx%dx%d", m.Classes, m.Height, m.Width)
	}
	if len(m.Scores) != m.Classes*m.Height*m.Width {
		return fmt.Errorf("score map has %d values, want %d", len(m.Scores), m.Classes*m.Height*m.Width)
	}
	return nil
}

// At returns the score for class c at pixel (x, y).
func (m *ScoreMap) At(c, y, x int) float32 {
	return m.Scores[(c*m.Height+y)*m.Width+x]
}

// Set stores the score for class c at pixel (x, y).
func (m *ScoreMap) Set(c, y, x int, v float32) {
	m.Scores[(c*m.Height+y)*m.Width+x] = v
}

// ResizeBilinear upsamples (or downsamples) the grid to width x height using
// bilinear interpolation with half-pixel centers (align-corners false). The
// network runs at a fixed internal resolution, so this step is what makes the
// scores pixel-aligned with the original image for overlay blending.
func (m *ScoreMap) ResizeBilinear(width, height int) *ScoreMap {
	if width == m.Width && height == m.Height {
		return m
	}

	out := NewScoreMap(m.Classes, height, width)
	scaleY := float64(m.Height) / float64(height)
	scaleX := float64(m.Width) / float64(width)

	for y := 0; y < height; y++ {
		srcY := (float64(y)+0.5)*scaleY - 0.5
		y0, fy := splitCoord(srcY, m.Height)
		y1 := min(y0+1, m.Height-1)

		for x := 0; x < width; x++ {
			srcX := (float64(x)+0.5)*scaleX - 0.5
			x0, fx := splitCoord(srcX, m.Width)
			x1 := min(x0+1, m.Width-1)

			for c := 0; c < m.Classes; c++ {
				top := lerp(m.At(c, y0, x0), m.At(c, y0, x1), fx)
				bottom := lerp(m.At(c, y1, x0), m.At(c, y1, x1), fx)
				out.Set(c, y, x, lerp(top, bottom, fy))
			}
		}
	}
	return out
}

// splitCoord clamps a source coordinate into [0, limit-1] and returns its
// integer part plus interpolation fraction.
func splitCoord(v float64, limit int) (int, float32) {
	if v < 0 {
		return 0, 0
	}
	i := int(v)
	if i >= limit-1 {
		return limit - 1, 0
	}
	return i, float32(v - float64(i))
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

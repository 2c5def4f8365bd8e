package segmentation

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

const (
	// ConfidenceThreshold forces pixels whose best soft-max probability falls
	// below it to the background class. Precision over recall: noisy boundary
	// pixels are suppressed rather than colored.
	ConfidenceThreshold = 0.5

	// OverlayAlpha is the palette-color opacity blended into the original
	// image at clothing pixels.
	OverlayAlpha = 0.45

	// BackgroundClass is class id 0.
	BackgroundClass = 0
)

// ClothingClasses is the allow-list of class ids treated as clothing.
// Only these receive palette color in the colored map and the overlay.
var ClothingClasses = map[int]bool{
	2:  true, // upper garments
	4:  true, // lower garments
	6:  true, // outerwear
	11: true, // footwear
	14: true, // headwear
	15: true,
}

// Result is a pair of same-sized rasters derived from one segmentation pass:
// the original blended with class colors, and the bare colored class map.
// Both always share the input image's pixel dimensions.
type Result struct {
	Overlay  *image.RGBA
	ColorMap *image.RGBA
}

// Render turns a raw class-score grid into the overlay and colored-map pair
// for the given source image:
//
//  1. upsample scores to the source dimensions (bilinear),
//  2. per pixel take the arg-max class and its soft-max confidence,
//  3. force sub-threshold pixels to background,
//  4. color allow-listed clothing pixels from the deterministic palette,
//  5. blend palette color into the original at OverlayAlpha on those pixels.
func Render(src image.Image, scores *ScoreMap) (*Result, error) {
	if err := scores.Validate(); err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	up := scores.ResizeBilinear(width, height)
	palette := Palette(up.Classes)

	overlay := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(overlay, overlay.Bounds(), src, bounds.Min, draw.Src)
	colorMap := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			class, confidence := classify(up, y, x)
			if confidence < ConfidenceThreshold {
				class = BackgroundClass
			}

			if !ClothingClasses[class] {
				colorMap.SetRGBA(x, y, color.RGBA{A: 255})
				continue
			}

			c := palette[class]
			colorMap.SetRGBA(x, y, c)

			i := overlay.PixOffset(x, y)
			overlay.Pix[i+0] = blend(overlay.Pix[i+0], c.R)
			overlay.Pix[i+1] = blend(overlay.Pix[i+1], c.G)
			overlay.Pix[i+2] = blend(overlay.Pix[i+2], c.B)
			overlay.Pix[i+3] = 255
		}
	}

	return &Result{Overlay: overlay, ColorMap: colorMap}, nil
}

// classify returns the arg-max class at (x, y) and its soft-max probability.
func classify(m *ScoreMap, y, x int) (int, float64) {
	best := 0
	maxScore := m.At(0, y, x)
	for c := 1; c < m.Classes; c++ {
		if s := m.At(c, y, x); s > maxScore {
			maxScore = s
			best = c
		}
	}

	// Soft-max of the winning class, shifted by the max logit for stability.
	var sum float64
	for c := 0; c < m.Classes; c++ {
		sum += math.Exp(float64(m.At(c, y, x) - maxScore))
	}
	return best, 1.0 / sum
}

// blend mixes a palette component into an original component at OverlayAlpha,
// rounded and clamped to [0, 255].
func blend(orig, tint uint8) uint8 {
	v := math.Round((1-OverlayAlpha)*float64(orig) + OverlayAlpha*float64(tint))
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

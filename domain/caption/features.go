package caption

import (
	"fmt"
	"image"
)

// Features is basic image metadata derived without any model involvement.
type Features struct {
	Width     int
	Height    int
	ColorMode string
	HasAlpha  bool
}

// AnalyzeFeatures inspects an image's raster and reports its dimensions,
// color mode, and whether it carries an alpha channel.
func AnalyzeFeatures(img image.Image) Features {
	bounds := img.Bounds()
	f := Features{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	switch img.(type) {
	case *image.NRGBA, *image.NRGBA64:
		f.ColorMode = "NRGBA"
		f.HasAlpha = true
	case *image.RGBA, *image.RGBA64:
		f.ColorMode = "RGBA"
		f.HasAlpha = true
	case *image.Gray, *image.Gray16:
		f.ColorMode = "Gray"
	case *image.Paletted:
		f.ColorMode = "Paletted"
		f.HasAlpha = palettedHasAlpha(img.(*image.Paletted))
	case *image.YCbCr:
		f.ColorMode = "YCbCr"
	case *image.CMYK:
		f.ColorMode = "CMYK"
	default:
		f.ColorMode = fmt.Sprintf("%T", img)
	}

	return f
}

// String renders the features for the info panel.
func (f Features) String() string {
	alpha := "no alpha"
	if f.HasAlpha {
		alpha = "alpha"
	}
	return fmt.Sprintf("%dx%d %s (%s)", f.Width, f.Height, f.ColorMode, alpha)
}

func palettedHasAlpha(img *image.Paletted) bool {
	for _, c := range img.Palette {
		if _, _, _, a := c.RGBA(); a < 0xffff {
			return true
		}
	}
	return false
}

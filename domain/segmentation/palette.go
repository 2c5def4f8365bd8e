package segmentation

import (
	"image/color"
	"math/rand"
)

// paletteSeed keeps class colors stable across runs and across repeated
// renders within one process. The palette is not guaranteed stable across
// different class counts.
const paletteSeed = 42

// Palette returns one opaque RGB color per class id, generated
// deterministically from a fixed seed. Class colors are assigned in class-id
// order, so palette[c] is identical on every call with the same class count.
func Palette(classes int) []color.RGBA {
	rng := rand.New(rand.NewSource(paletteSeed))
	palette := make([]color.RGBA, classes)
	for c := range palette {
		palette[c] = color.RGBA{
			R: uint8(rng.Intn(255)),
			G: uint8(rng.Intn(255)),
			B: uint8(rng.Intn(255)),
			A: 255,
		}
	}
	return palette
}

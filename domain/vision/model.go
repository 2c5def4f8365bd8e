// Package vision defines the contract shared by all model wrappers.
// Concrete models live in infrastructure and implement one of the variant
// interfaces below; the application layer only ever sees these.
package vision

import (
	"context"
	"fmt"
	"image"
	"time"

	"stylelens-go/domain/segmentation"
)

// Model is the lazy-load lifecycle every wrapper implements.
//
// EnsureLoaded is idempotent: the first call performs the variant-specific
// load and records its duration, every later call is a cheap no-op. Process
// operations call it internally, so the backing network is never touched
// while unset.
type Model interface {
	// Name returns the external model identifier, e.g. a model-hub path.
	Name() string

	// EnsureLoaded loads the model on first call and is a no-op afterwards.
	// Returns a ModelLoadError if the weights or backing service are
	// unavailable.
	EnsureLoaded(ctx context.Context) error

	// Info reports display-only metadata. Never use it for decisions.
	Info() ModelInfo
}

// Segmenter is the clothing-segmentation model variant.
type Segmenter interface {
	Model

	// Segment runs segmentation on an RGB image and returns the overlay and
	// colored class map, both sized exactly like the input.
	Segment(ctx context.Context, img image.Image) (*segmentation.Result, error)
}

// Captioner is the image-captioning model variant.
type Captioner interface {
	Model

	// Caption generates a caption for an RGB image. An optional prompt
	// conditions the generation.
	Caption(ctx context.Context, img image.Image, prompt string) (string, error)
}

// ModelInfo is display metadata about a model wrapper.
type ModelInfo struct {
	Name         string
	Kind         string // "Clothes Segmentation (SegFormer)", "Image Captioning (BLIP)"
	Loaded       bool
	LoadDuration time.Duration
	Device       string // "cpu" or "gpu"
	Description  string
}

// Summary renders the info block shown in the model info panel.
func (i ModelInfo) Summary() string {
	loaded := "not loaded"
	if i.Loaded {
		loaded = fmt.Sprintf("loaded in %.2fs", i.LoadDuration.Seconds())
	}
	return fmt.Sprintf("%s\n%s\nDevice: %s, %s\n%s", i.Name, i.Kind, i.Device, loaded, i.Description)
}

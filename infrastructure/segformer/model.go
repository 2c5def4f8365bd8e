package segformer

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"time"

	"stylelens-go/core/apperr"
	"stylelens-go/domain/segmentation"
	"stylelens-go/domain/vision"
)

// DefaultModelName is the model hosted by the inference service.
const DefaultModelName = "mattmdjaga/segformer_b2_clothes"

// Model wraps the inference client as a lazily loaded segmentation model.
type Model struct {
	client Client
	logger *slog.Logger

	mu     sync.Mutex
	loaded bool
	info   vision.ModelInfo
}

// NewModel creates an unloaded segmentation model backed by client.
func NewModel(client Client, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{
		client: client,
		logger: logger,
		info: vision.ModelInfo{
			Name:        DefaultModelName,
			Kind:        "Clothes Segmentation (SegFormer)",
			Device:      "cpu",
			Description: "Segments clothing items and colors only those regions",
		},
	}
}

// Name returns the model identifier.
func (m *Model) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info.Name
}

// EnsureLoaded loads the model on first call and is a no-op afterwards.
// A failed load leaves the model unloaded, so a later call retries.
func (m *Model) EnsureLoaded(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		return nil
	}

	start := time.Now()
	meta, err := m.client.LoadModel(ctx)
	if err != nil {
		return apperr.NewModelLoad(m.info.Name, err)
	}
	elapsed := time.Since(start)

	if meta.Name != "" {
		m.info.Name = meta.Name
	}
	if meta.Device != "" {
		m.info.Device = meta.Device
	}
	m.info.Loaded = true
	m.info.LoadDuration = elapsed
	m.loaded = true

	m.logger.Info("Segmentation model loaded", "model", m.info.Name, "elapsed", elapsed)
	return nil
}

// Info reports display-only metadata.
func (m *Model) Info() vision.ModelInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info
}

// Segment runs inference and post-processes the logits into an overlay
// and colored class map sized exactly like the input.
func (m *Model) Segment(ctx context.Context, img image.Image) (*segmentation.Result, error) {
	if err := m.EnsureLoaded(ctx); err != nil {
		return nil, err
	}

	scores, err := m.client.Predict(ctx, img)
	if err != nil {
		return nil, err
	}

	return segmentation.Render(img, scores)
}

var _ vision.Segmenter = (*Model)(nil)

// Package application provides the application layer for orchestrating
// processing requests.
package application

import (
	"context"
	"log/slog"
	"strings"

	"stylelens-go/core/apperr"
	"stylelens-go/core/pipeline"
	"stylelens-go/domain/caption"
	"stylelens-go/domain/segmentation"
	"stylelens-go/domain/vision"
	"stylelens-go/infrastructure/storage"
)

// captionInput keys the memoized caption cache by path and prompt together.
type captionInput struct {
	Path   string
	Prompt string
}

// ModelManager owns the model wrappers and exposes the processing operations.
// Models stay unloaded until the first operation that needs them.
type ModelManager struct {
	segmenter vision.Segmenter
	captioner vision.Captioner
	store     *storage.FileStore
	logger    *slog.Logger

	segmentOp         pipeline.Func[string, *segmentation.Result]
	captionOp         pipeline.Func[captionInput, string]
	promptedCaptionOp pipeline.Func[captionInput, string]
	analyzeOp         pipeline.Func[string, caption.Features]
}

// ManagerConfig holds configuration for the ModelManager.
type ManagerConfig struct {
	Segmenter vision.Segmenter
	Captioner vision.Captioner
	Store     *storage.FileStore
	Logger    *slog.Logger
}

// NewModelManager creates a model manager with its operation pipelines wired.
func NewModelManager(cfg *ManagerConfig) *ModelManager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Store == nil {
		cfg.Store = storage.NewFileStore()
	}

	m := &ModelManager{
		segmenter: cfg.Segmenter,
		captioner: cfg.Captioner,
		store:     cfg.Store,
		logger:    cfg.Logger,
	}

	m.segmentOp = pipeline.Chain(m.segmentBase,
		pipeline.Validate[string, *segmentation.Result](),
		pipeline.Timed[string, *segmentation.Result](cfg.Logger, "segment"),
	)
	m.captionOp = pipeline.Chain(m.captionBase,
		pipeline.Timed[captionInput, string](cfg.Logger, "caption"),
	)
	// Prompted captions are repeat-heavy (same image, same question), so
	// they additionally go through the memoized path.
	m.promptedCaptionOp = pipeline.Chain(m.captionBase,
		pipeline.Timed[captionInput, string](cfg.Logger, "caption"),
		pipeline.Memoize[captionInput, string]("caption"),
	)
	// Feature analysis only feeds a display-only metadata line, so it sits
	// behind the recover stage: a failure yields empty features, not an
	// error dialog.
	m.analyzeOp = pipeline.Chain(m.analyzeBase,
		pipeline.Recover[string, caption.Features](cfg.Logger, "image analysis failed"),
		pipeline.Validate[string, caption.Features](),
		pipeline.Timed[string, caption.Features](cfg.Logger, "analyze"),
	)

	return m
}

// Store returns the file store shared with the presentation layer.
func (m *ModelManager) Store() *storage.FileStore {
	return m.store
}

// SegmenterInfo reports segmentation model metadata.
func (m *ModelManager) SegmenterInfo() vision.ModelInfo {
	return m.segmenter.Info()
}

// CaptionerInfo reports caption model metadata.
func (m *ModelManager) CaptionerInfo() vision.ModelInfo {
	return m.captioner.Info()
}

// EnsureSegmenterLoaded loads the segmentation model if needed.
func (m *ModelManager) EnsureSegmenterLoaded(ctx context.Context) error {
	return m.segmenter.EnsureLoaded(ctx)
}

// EnsureCaptionerLoaded loads the caption model if needed.
func (m *ModelManager) EnsureCaptionerLoaded(ctx context.Context) error {
	return m.captioner.EnsureLoaded(ctx)
}

// ProcessSegmentation segments the image at path and returns the overlay and
// colored class map.
func (m *ModelManager) ProcessSegmentation(ctx context.Context, path string) (*segmentation.Result, error) {
	return m.segmentOp(ctx, path)
}

// ProcessCaption generates a caption for the image at path. When a prompt is
// supplied, identical repeat calls are served from the memoized result.
func (m *ModelManager) ProcessCaption(ctx context.Context, path, prompt string) (string, error) {
	// The pipeline's Validate stage only understands scalar inputs, so the
	// composite caption input is checked here.
	if strings.TrimSpace(path) == "" {
		return "", apperr.NewValidation("input is blank")
	}
	in := captionInput{Path: path, Prompt: prompt}
	if prompt != "" {
		return m.promptedCaptionOp(ctx, in)
	}
	return m.captionOp(ctx, in)
}

// AnalyzeFeatures reports basic metadata about the image at path without
// involving any model. Failures are logged and yield zero features.
func (m *ModelManager) AnalyzeFeatures(ctx context.Context, path string) (caption.Features, error) {
	return m.analyzeOp(ctx, path)
}

func (m *ModelManager) segmentBase(ctx context.Context, path string) (*segmentation.Result, error) {
	img, err := m.store.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return m.segmenter.Segment(ctx, img)
}

func (m *ModelManager) captionBase(ctx context.Context, in captionInput) (string, error) {
	img, err := m.store.LoadImage(in.Path)
	if err != nil {
		return "", err
	}
	return m.captioner.Caption(ctx, img, in.Prompt)
}

func (m *ModelManager) analyzeBase(ctx context.Context, path string) (caption.Features, error) {
	img, err := m.store.LoadImage(path)
	if err != nil {
		return caption.Features{}, err
	}
	return caption.AnalyzeFeatures(img), nil
}

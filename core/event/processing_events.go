package event

import (
	"image"
	"time"

	"stylelens-go/core/state"
	"stylelens-go/domain/caption"
)

// ProcessingStarted is published when a worker picks up a request.
type ProcessingStarted struct {
	baseRequestEvent
	Mode state.Mode
	Path string
}

func NewProcessingStarted(requestID string, mode state.Mode, path string) *ProcessingStarted {
	return &ProcessingStarted{
		baseRequestEvent: baseRequestEvent{requestID: requestID},
		Mode:             mode,
		Path:             path,
	}
}

func (e *ProcessingStarted) EventName() string {
	return "ProcessingStarted"
}

// RequestStateChanged is published when a request's lifecycle state changes.
type RequestStateChanged struct {
	baseRequestEvent
	OldState state.RequestState
	NewState state.RequestState
}

func NewRequestStateChanged(requestID string, oldState, newState state.RequestState) *RequestStateChanged {
	return &RequestStateChanged{
		baseRequestEvent: baseRequestEvent{requestID: requestID},
		OldState:         oldState,
		NewState:         newState,
	}
}

func (e *RequestStateChanged) EventName() string {
	return "RequestStateChanged"
}

// ModelLoaded is published after a lazy model load completes.
type ModelLoaded struct {
	baseRequestEvent
	ModelName string
	Duration  time.Duration
}

func NewModelLoaded(requestID, modelName string, duration time.Duration) *ModelLoaded {
	return &ModelLoaded{
		baseRequestEvent: baseRequestEvent{requestID: requestID},
		ModelName:        modelName,
		Duration:         duration,
	}
}

func (e *ModelLoaded) EventName() string {
	return "ModelLoaded"
}

// SegmentationCompleted is published when a segmentation request delivers its
// result. Overlay and ColorMap share the original image's dimensions.
type SegmentationCompleted struct {
	baseRequestEvent
	Overlay  image.Image
	ColorMap image.Image
	Elapsed  time.Duration
}

func NewSegmentationCompleted(requestID string, overlay, colorMap image.Image, elapsed time.Duration) *SegmentationCompleted {
	return &SegmentationCompleted{
		baseRequestEvent: baseRequestEvent{requestID: requestID},
		Overlay:          overlay,
		ColorMap:         colorMap,
		Elapsed:          elapsed,
	}
}

func (e *SegmentationCompleted) EventName() string {
	return "SegmentationCompleted"
}

// CaptionCompleted is published when a caption request delivers its result.
type CaptionCompleted struct {
	baseRequestEvent
	Caption string
	Elapsed time.Duration
}

func NewCaptionCompleted(requestID, text string, elapsed time.Duration) *CaptionCompleted {
	return &CaptionCompleted{
		baseRequestEvent: baseRequestEvent{requestID: requestID},
		Caption:          text,
		Elapsed:          elapsed,
	}
}

func (e *CaptionCompleted) EventName() string {
	return "CaptionCompleted"
}

// FeaturesAnalyzed is published when a model-free feature analysis completes.
type FeaturesAnalyzed struct {
	baseRequestEvent
	Features caption.Features
}

func NewFeaturesAnalyzed(requestID string, features caption.Features) *FeaturesAnalyzed {
	return &FeaturesAnalyzed{
		baseRequestEvent: baseRequestEvent{requestID: requestID},
		Features:         features,
	}
}

func (e *FeaturesAnalyzed) EventName() string {
	return "FeaturesAnalyzed"
}

// ProcessingFailed is published when a request ends with an error.
// At most one completion event (result or failure) is published per request.
type ProcessingFailed struct {
	baseRequestEvent
	Mode  state.Mode
	Error error
}

func NewProcessingFailed(requestID string, mode state.Mode, err error) *ProcessingFailed {
	return &ProcessingFailed{
		baseRequestEvent: baseRequestEvent{requestID: requestID},
		Mode:             mode,
		Error:            err,
	}
}

func (e *ProcessingFailed) EventName() string {
	return "ProcessingFailed"
}

// HistoryUpdated is published after a completed request is appended to the
// processing history.
type HistoryUpdated struct {
	Count int
}

func (e *HistoryUpdated) EventName() string {
	return "HistoryUpdated"
}

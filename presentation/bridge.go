// Package presentation provides the UI layer with event bridging to the application layer.
package presentation

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"stylelens-go/application"
	"stylelens-go/core/command"
	"stylelens-go/core/event"
	"stylelens-go/core/eventbus"
	"stylelens-go/core/state"
	"stylelens-go/domain/caption"
	"stylelens-go/domain/history"
	"stylelens-go/domain/vision"
)

// UIEventBridge bridges UI actions to the application layer and routes events
// back to UI callbacks. It provides a clean separation between UI and
// business logic.
type UIEventBridge struct {
	coordinator *application.Coordinator
	manager     *application.ModelManager
	history     *history.Service
	eventBus    eventbus.EventBus
	logger      *slog.Logger

	// UI callbacks - set by UI components
	callbacks   *UICallbacks
	callbacksMu sync.RWMutex

	// Subscription management
	subscriptionID string
}

// UICallbacks contains callbacks for UI updates.
type UICallbacks struct {
	// Request lifecycle
	OnProcessingStarted func(requestID string, mode state.Mode, path string)
	OnStateChanged      func(requestID string, oldState, newState state.RequestState)
	OnModelLoaded       func(requestID, modelName string, duration time.Duration)

	// Results
	OnSegmentationResult func(requestID string, overlay, colorMap image.Image, elapsed time.Duration)
	OnCaptionResult      func(requestID, text string, elapsed time.Duration)
	OnFeatures           func(requestID string, features caption.Features)
	OnProcessingFailed   func(requestID string, mode state.Mode, err error)

	// History
	OnHistoryUpdated func(count int)
}

// BridgeConfig holds configuration for UIEventBridge.
type BridgeConfig struct {
	Coordinator *application.Coordinator
	Manager     *application.ModelManager
	History     *history.Service
	EventBus    eventbus.EventBus
	Logger      *slog.Logger
}

// NewUIEventBridge creates a new UI event bridge.
func NewUIEventBridge(cfg *BridgeConfig) *UIEventBridge {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	b := &UIEventBridge{
		coordinator: cfg.Coordinator,
		manager:     cfg.Manager,
		history:     cfg.History,
		eventBus:    cfg.EventBus,
		logger:      cfg.Logger,
		callbacks:   &UICallbacks{},
	}

	if b.eventBus != nil {
		b.subscriptionID = b.eventBus.Subscribe(b.handleEvent)
	}

	return b
}

// SetCallbacks sets the UI callbacks.
func (b *UIEventBridge) SetCallbacks(callbacks *UICallbacks) {
	b.callbacksMu.Lock()
	defer b.callbacksMu.Unlock()
	b.callbacks = callbacks
}

// Close unsubscribes from the event bus.
func (b *UIEventBridge) Close() {
	if b.eventBus != nil && b.subscriptionID != "" {
		b.eventBus.Unsubscribe(b.subscriptionID)
	}
}

// Command dispatching methods

// NewRequestID mints a request identifier. The caller records it before
// dispatching so result events can be matched against it even when the
// worker finishes immediately.
func (b *UIEventBridge) NewRequestID() string {
	return uuid.NewString()
}

// RunSegmentation starts a segmentation request under the given ID.
func (b *UIEventBridge) RunSegmentation(requestID, imagePath string) error {
	return b.coordinator.Dispatch(command.NewRunSegmentation(requestID, imagePath))
}

// RunCaption starts a caption request under the given ID.
func (b *UIEventBridge) RunCaption(requestID, imagePath, prompt string) error {
	return b.coordinator.Dispatch(command.NewRunCaption(requestID, imagePath, prompt))
}

// AnalyzeImage starts a model-free feature analysis and returns its request ID.
func (b *UIEventBridge) AnalyzeImage(imagePath string) (string, error) {
	id := uuid.NewString()
	if err := b.coordinator.Dispatch(command.NewAnalyzeImage(id, imagePath)); err != nil {
		return "", err
	}
	return id, nil
}

// Query methods

// ModelInfo returns display metadata for the given mode's model.
func (b *UIEventBridge) ModelInfo(mode state.Mode) vision.ModelInfo {
	if mode == state.ModeSegmentation {
		return b.manager.SegmenterInfo()
	}
	return b.manager.CaptionerInfo()
}

// RecentHistory returns the recent-results list, newest first.
func (b *UIEventBridge) RecentHistory() []*history.Record {
	if b.history == nil {
		return nil
	}
	records, err := b.history.Recent(context.Background())
	if err != nil {
		b.logger.Warn("Failed to load history", "error", err)
		return nil
	}
	return records
}

// RequestCount returns the number of in-flight requests.
func (b *UIEventBridge) RequestCount() int {
	return b.coordinator.RequestCount()
}

// Event handling

func (b *UIEventBridge) handleEvent(e event.Event) {
	b.callbacksMu.RLock()
	callbacks := b.callbacks
	b.callbacksMu.RUnlock()

	if callbacks == nil {
		return
	}

	switch evt := e.(type) {
	case *event.ProcessingStarted:
		if callbacks.OnProcessingStarted != nil {
			callbacks.OnProcessingStarted(evt.RequestID(), evt.Mode, evt.Path)
		}

	case *event.RequestStateChanged:
		if callbacks.OnStateChanged != nil {
			callbacks.OnStateChanged(evt.RequestID(), evt.OldState, evt.NewState)
		}

	case *event.ModelLoaded:
		if callbacks.OnModelLoaded != nil {
			callbacks.OnModelLoaded(evt.RequestID(), evt.ModelName, evt.Duration)
		}

	case *event.SegmentationCompleted:
		if callbacks.OnSegmentationResult != nil {
			callbacks.OnSegmentationResult(evt.RequestID(), evt.Overlay, evt.ColorMap, evt.Elapsed)
		}

	case *event.CaptionCompleted:
		if callbacks.OnCaptionResult != nil {
			callbacks.OnCaptionResult(evt.RequestID(), evt.Caption, evt.Elapsed)
		}

	case *event.FeaturesAnalyzed:
		if callbacks.OnFeatures != nil {
			callbacks.OnFeatures(evt.RequestID(), evt.Features)
		}

	case *event.ProcessingFailed:
		if callbacks.OnProcessingFailed != nil {
			callbacks.OnProcessingFailed(evt.RequestID(), evt.Mode, evt.Error)
		}

	case *event.HistoryUpdated:
		if callbacks.OnHistoryUpdated != nil {
			callbacks.OnHistoryUpdated(evt.Count)
		}
	}
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"stylelens-go/core/command"
	"stylelens-go/core/event"
	"stylelens-go/core/eventbus"
	"stylelens-go/core/state"
	"stylelens-go/domain/history"
)

// Coordinator dispatches processing commands. Each request runs on its own
// goroutine; results come back through the event bus, never as return values.
type Coordinator struct {
	// Active requests
	requests   map[string]*requestEntry
	requestsMu sync.Mutex

	// Dependencies
	eventBus eventbus.EventBus
	manager  *ModelManager
	history  *history.Service
	logger   *slog.Logger

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// requestEntry tracks the lifecycle state of one in-flight request.
type requestEntry struct {
	mode state.Mode
	st   state.RequestState
}

// CoordinatorConfig holds configuration for the Coordinator.
type CoordinatorConfig struct {
	EventBus eventbus.EventBus
	Manager  *ModelManager
	History  *history.Service
	Logger   *slog.Logger
}

// NewCoordinator creates a new processing coordinator.
func NewCoordinator(cfg *CoordinatorConfig) *Coordinator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Coordinator{
		requests: make(map[string]*requestEntry),
		eventBus: cfg.EventBus,
		manager:  cfg.Manager,
		history:  cfg.History,
		logger:   cfg.Logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the coordinator.
func (c *Coordinator) Start() {
	c.logger.Info("Coordinator started")
}

// Stop shuts down the coordinator, waiting briefly for in-flight requests.
func (c *Coordinator) Stop() {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		c.logger.Warn("Coordinator stop timeout, some requests may not have finished")
	}

	c.logger.Info("Coordinator stopped")
}

// Dispatch sends a command to the appropriate handler.
func (c *Coordinator) Dispatch(cmd command.Command) error {
	c.logger.Debug("Dispatching command", "command", cmd.CommandName())

	switch cmd := cmd.(type) {
	case *command.RunSegmentation:
		return c.startRequest(cmd.RequestID(), state.ModeSegmentation, cmd.ImagePath, func() {
			c.runSegmentation(cmd)
		})
	case *command.RunCaption:
		return c.startRequest(cmd.RequestID(), state.ModeCaption, cmd.ImagePath, func() {
			c.runCaption(cmd)
		})
	case *command.AnalyzeImage:
		return c.startRequest(cmd.RequestID(), state.ModeCaption, cmd.ImagePath, func() {
			c.runAnalyze(cmd)
		})
	default:
		return fmt.Errorf("unknown command type: %T", cmd)
	}
}

// RequestCount returns the number of in-flight requests.
func (c *Coordinator) RequestCount() int {
	c.requestsMu.Lock()
	defer c.requestsMu.Unlock()
	return len(c.requests)
}

// startRequest registers the request and launches its worker goroutine.
func (c *Coordinator) startRequest(requestID string, mode state.Mode, path string, work func()) error {
	if requestID == "" {
		return fmt.Errorf("request has no ID")
	}

	c.requestsMu.Lock()
	if _, exists := c.requests[requestID]; exists {
		c.requestsMu.Unlock()
		return fmt.Errorf("request already in flight: %s", requestID)
	}
	c.requests[requestID] = &requestEntry{mode: mode, st: state.StatePending}
	c.requestsMu.Unlock()

	c.eventBus.Publish(event.NewProcessingStarted(requestID, mode, path))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.finishRequest(requestID)
		work()
	}()

	return nil
}

// setState transitions the request and publishes the change. Invalid
// transitions are logged and ignored.
func (c *Coordinator) setState(requestID string, newState state.RequestState) {
	c.requestsMu.Lock()
	entry, ok := c.requests[requestID]
	if !ok {
		c.requestsMu.Unlock()
		return
	}
	oldState := entry.st
	if !oldState.CanTransitionTo(newState) {
		c.requestsMu.Unlock()
		c.logger.Warn("Invalid request state transition",
			"request_id", requestID, "from", oldState, "to", newState)
		return
	}
	entry.st = newState
	c.requestsMu.Unlock()

	c.eventBus.Publish(event.NewRequestStateChanged(requestID, oldState, newState))
}

func (c *Coordinator) finishRequest(requestID string) {
	c.requestsMu.Lock()
	delete(c.requests, requestID)
	c.requestsMu.Unlock()
}

func (c *Coordinator) fail(requestID string, mode state.Mode, err error) {
	c.logger.Error("Processing failed", "request_id", requestID, "mode", mode, "error", err)
	c.setState(requestID, state.StateFailed)
	c.eventBus.Publish(event.NewProcessingFailed(requestID, mode, err))
}

func (c *Coordinator) runSegmentation(cmd *command.RunSegmentation) {
	id := cmd.RequestID()

	if !c.manager.SegmenterInfo().Loaded {
		c.setState(id, state.StateLoading)
		if err := c.manager.EnsureSegmenterLoaded(c.ctx); err != nil {
			c.fail(id, state.ModeSegmentation, err)
			return
		}
		info := c.manager.SegmenterInfo()
		c.eventBus.Publish(event.NewModelLoaded(id, info.Name, info.LoadDuration))
	}

	c.setState(id, state.StateRunning)
	start := time.Now()
	res, err := c.manager.ProcessSegmentation(c.ctx, cmd.ImagePath)
	if err != nil {
		c.fail(id, state.ModeSegmentation, err)
		return
	}
	elapsed := time.Since(start)

	c.setState(id, state.StateDelivered)
	c.eventBus.Publish(event.NewSegmentationCompleted(id, res.Overlay, res.ColorMap, elapsed))

	c.appendHistory(&history.Record{
		ID:        id,
		Mode:      state.ModeSegmentation,
		ImagePath: cmd.ImagePath,
		Elapsed:   elapsed,
	})
}

func (c *Coordinator) runCaption(cmd *command.RunCaption) {
	id := cmd.RequestID()

	if !c.manager.CaptionerInfo().Loaded {
		c.setState(id, state.StateLoading)
		if err := c.manager.EnsureCaptionerLoaded(c.ctx); err != nil {
			c.fail(id, state.ModeCaption, err)
			return
		}
		info := c.manager.CaptionerInfo()
		c.eventBus.Publish(event.NewModelLoaded(id, info.Name, info.LoadDuration))
	}

	c.setState(id, state.StateRunning)
	start := time.Now()
	text, err := c.manager.ProcessCaption(c.ctx, cmd.ImagePath, cmd.Prompt)
	if err != nil {
		c.fail(id, state.ModeCaption, err)
		return
	}
	elapsed := time.Since(start)

	c.setState(id, state.StateDelivered)
	c.eventBus.Publish(event.NewCaptionCompleted(id, text, elapsed))

	c.appendHistory(&history.Record{
		ID:        id,
		Mode:      state.ModeCaption,
		ImagePath: cmd.ImagePath,
		Caption:   text,
		Elapsed:   elapsed,
	})
}

func (c *Coordinator) runAnalyze(cmd *command.AnalyzeImage) {
	id := cmd.RequestID()

	c.setState(id, state.StateRunning)
	features, err := c.manager.AnalyzeFeatures(c.ctx, cmd.ImagePath)
	if err != nil {
		c.fail(id, state.ModeCaption, err)
		return
	}

	c.setState(id, state.StateDelivered)
	c.eventBus.Publish(event.NewFeaturesAnalyzed(id, features))
}

// appendHistory stores a completed request; failures degrade to a log line.
func (c *Coordinator) appendHistory(record *history.Record) {
	if c.history == nil {
		return
	}
	if err := c.history.Append(c.ctx, record); err != nil {
		c.logger.Warn("Failed to append history record", "request_id", record.ID, "error", err)
		return
	}
	if count, err := c.history.Count(c.ctx); err == nil {
		c.eventBus.Publish(&event.HistoryUpdated{Count: count})
	}
}

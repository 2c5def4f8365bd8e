package application

import (
	"sync"
	"testing"
	"time"

	"stylelens-go/core/command"
	"stylelens-go/core/event"
	"stylelens-go/core/eventbus"
	"stylelens-go/core/state"
	"stylelens-go/domain/history"
	"stylelens-go/infrastructure/repository"
)

// eventCollector records every published event for later inspection.
type eventCollector struct {
	mu     sync.Mutex
	events []event.Event
}

func (c *eventCollector) handle(e event.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *eventCollector) snapshot() []event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]event.Event, len(c.events))
	copy(out, c.events)
	return out
}

// waitFor polls until pred sees a matching event or the timeout expires.
func (c *eventCollector) waitFor(t *testing.T, name string) event.Event {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		for _, e := range c.snapshot() {
			if e.EventName() == name {
				return e
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for event %q, saw %v", name, c.names())
	return nil
}

func (c *eventCollector) names() []string {
	var names []string
	for _, e := range c.snapshot() {
		names = append(names, e.EventName())
	}
	return names
}

func newTestCoordinator(t *testing.T, seg *fakeSegmenter, cpt *fakeCaptioner) (*Coordinator, *eventCollector) {
	t.Helper()
	bus := eventbus.New(100)
	t.Cleanup(bus.Close)

	collector := &eventCollector{}
	bus.Subscribe(collector.handle)

	coord := NewCoordinator(&CoordinatorConfig{
		EventBus: bus,
		Manager:  newTestManager(seg, cpt),
		History:  history.NewService(repository.NewMemoryHistoryRepository()),
	})
	coord.Start()
	t.Cleanup(coord.Stop)
	return coord, collector
}

func TestCoordinator_RunSegmentation(t *testing.T) {
	seg := &fakeSegmenter{result: segResult()}
	coord, collector := newTestCoordinator(t, seg, &fakeCaptioner{})
	path := writeTestImage(t)

	cmd := command.NewRunSegmentation("req-1", path)
	if err := coord.Dispatch(cmd); err != nil {
		t.Fatal(err)
	}

	e := collector.waitFor(t, "SegmentationCompleted")
	done := e.(*event.SegmentationCompleted)
	if done.RequestID() != "req-1" {
		t.Errorf("request ID = %q", done.RequestID())
	}
	if done.Overlay == nil || done.ColorMap == nil {
		t.Error("completion event missing result images")
	}

	// First request on an unloaded model announces the load.
	loaded := collector.waitFor(t, "ModelLoaded").(*event.ModelLoaded)
	if loaded.ModelName != "fake-segmenter" {
		t.Errorf("ModelName = %q", loaded.ModelName)
	}

	collector.waitFor(t, "HistoryUpdated")
}

func TestCoordinator_RunCaption(t *testing.T) {
	cpt := &fakeCaptioner{text: "a dog running"}
	coord, collector := newTestCoordinator(t, &fakeSegmenter{}, cpt)
	path := writeTestImage(t)

	if err := coord.Dispatch(command.NewRunCaption("req-2", path, "")); err != nil {
		t.Fatal(err)
	}

	done := collector.waitFor(t, "CaptionCompleted").(*event.CaptionCompleted)
	if done.Caption != "a dog running" {
		t.Errorf("caption = %q", done.Caption)
	}

	updated := collector.waitFor(t, "HistoryUpdated").(*event.HistoryUpdated)
	if updated.Count != 1 {
		t.Errorf("history count = %d", updated.Count)
	}
}

func TestCoordinator_StateSequence(t *testing.T) {
	seg := &fakeSegmenter{result: segResult()}
	coord, collector := newTestCoordinator(t, seg, &fakeCaptioner{})
	path := writeTestImage(t)

	if err := coord.Dispatch(command.NewRunSegmentation("req-3", path)); err != nil {
		t.Fatal(err)
	}
	collector.waitFor(t, "SegmentationCompleted")

	var states []state.RequestState
	for _, e := range collector.snapshot() {
		if sc, ok := e.(*event.RequestStateChanged); ok {
			states = append(states, sc.NewState)
		}
	}

	want := []state.RequestState{state.StateLoading, state.StateRunning, state.StateDelivered}
	if len(states) != len(want) {
		t.Fatalf("state changes = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("state[%d] = %v, want %v", i, states[i], want[i])
		}
	}
}

func TestCoordinator_ProcessingFailed(t *testing.T) {
	coord, collector := newTestCoordinator(t, &fakeSegmenter{result: segResult()}, &fakeCaptioner{})

	// Missing file fails the request after dispatch.
	if err := coord.Dispatch(command.NewRunSegmentation("req-4", "/nonexistent/image.png")); err != nil {
		t.Fatal(err)
	}

	failed := collector.waitFor(t, "ProcessingFailed").(*event.ProcessingFailed)
	if failed.RequestID() != "req-4" {
		t.Errorf("request ID = %q", failed.RequestID())
	}
	if failed.Error == nil {
		t.Error("failure event missing error")
	}

	// Failed requests never publish a completion event.
	for _, e := range collector.snapshot() {
		if e.EventName() == "SegmentationCompleted" {
			t.Error("failed request must not also complete")
		}
	}
}

func TestCoordinator_AnalyzeImage(t *testing.T) {
	coord, collector := newTestCoordinator(t, &fakeSegmenter{}, &fakeCaptioner{})
	path := writeTestImage(t)

	if err := coord.Dispatch(command.NewAnalyzeImage("req-5", path)); err != nil {
		t.Fatal(err)
	}

	analyzed := collector.waitFor(t, "FeaturesAnalyzed").(*event.FeaturesAnalyzed)
	if analyzed.Features.Width != 8 || analyzed.Features.Height != 6 {
		t.Errorf("features = %+v", analyzed.Features)
	}
}

func TestCoordinator_DuplicateRequestRejected(t *testing.T) {
	coord, collector := newTestCoordinator(t, &fakeSegmenter{result: segResult()}, &fakeCaptioner{})
	path := writeTestImage(t)

	if err := coord.Dispatch(command.NewRunSegmentation("req-6", path)); err != nil {
		t.Fatal(err)
	}
	// Same ID again while (possibly) still in flight, or a fresh dispatch
	// after completion: only the in-flight case is an error.
	collector.waitFor(t, "SegmentationCompleted")

	if err := coord.Dispatch(command.NewRunSegmentation("", path)); err == nil {
		t.Error("empty request ID should be rejected")
	}
}

func TestCoordinator_ProcessingStartedPublished(t *testing.T) {
	coord, collector := newTestCoordinator(t, &fakeSegmenter{result: segResult()}, &fakeCaptioner{})
	path := writeTestImage(t)

	if err := coord.Dispatch(command.NewRunSegmentation("req-7", path)); err != nil {
		t.Fatal(err)
	}

	started := collector.waitFor(t, "ProcessingStarted").(*event.ProcessingStarted)
	if started.Mode != state.ModeSegmentation {
		t.Errorf("mode = %v", started.Mode)
	}
	if started.Path != path {
		t.Errorf("path = %q", started.Path)
	}
}

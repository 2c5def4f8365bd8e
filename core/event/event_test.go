package event

import (
	"errors"
	"image"
	"testing"
	"time"

	"stylelens-go/core/state"
	"stylelens-go/domain/caption"
)

func TestRequestEvents_CarryRequestID(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))

	events := []RequestEvent{
		NewProcessingStarted("req-1", state.ModeSegmentation, "/tmp/a.png"),
		NewRequestStateChanged("req-1", state.StatePending, state.StateLoading),
		NewModelLoaded("req-1", "segformer_b2_clothes", time.Second),
		NewSegmentationCompleted("req-1", img, img, time.Second),
		NewCaptionCompleted("req-1", "a dog running", time.Second),
		NewFeaturesAnalyzed("req-1", caption.Features{Width: 2, Height: 2}),
		NewProcessingFailed("req-1", state.ModeCaption, errors.New("boom")),
	}

	for _, e := range events {
		if e.RequestID() != "req-1" {
			t.Errorf("%s: RequestID = %v, want req-1", e.EventName(), e.RequestID())
		}
		if e.EventName() == "" {
			t.Error("EventName should not be empty")
		}
	}
}

func TestEventNames(t *testing.T) {
	tests := []struct {
		e    Event
		want string
	}{
		{NewProcessingStarted("r", state.ModeSegmentation, ""), "ProcessingStarted"},
		{NewModelLoaded("r", "m", 0), "ModelLoaded"},
		{NewSegmentationCompleted("r", nil, nil, 0), "SegmentationCompleted"},
		{NewCaptionCompleted("r", "", 0), "CaptionCompleted"},
		{NewFeaturesAnalyzed("r", caption.Features{}), "FeaturesAnalyzed"},
		{NewProcessingFailed("r", state.ModeCaption, nil), "ProcessingFailed"},
		{&HistoryUpdated{Count: 3}, "HistoryUpdated"},
	}

	for _, tt := range tests {
		if got := tt.e.EventName(); got != tt.want {
			t.Errorf("EventName = %v, want %v", got, tt.want)
		}
	}
}

func TestSegmentationCompleted_Payload(t *testing.T) {
	overlay := image.NewRGBA(image.Rect(0, 0, 4, 3))
	colored := image.NewRGBA(image.Rect(0, 0, 4, 3))

	e := NewSegmentationCompleted("req-2", overlay, colored, 250*time.Millisecond)

	if e.Overlay != overlay || e.ColorMap != colored {
		t.Error("result images not carried through")
	}
	if e.Elapsed != 250*time.Millisecond {
		t.Errorf("Elapsed = %v", e.Elapsed)
	}
}

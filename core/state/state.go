// Package state defines the processing-request state machine and the UI mode.
package state

import "fmt"

// RequestState represents the lifecycle state of a single processing request.
type RequestState int

const (
	// StatePending is the initial state after the request is dispatched.
	StatePending RequestState = iota
	// StateLoading indicates the model is being lazily loaded.
	StateLoading
	// StateRunning indicates inference/post-processing is in progress.
	StateRunning
	// StateDelivered indicates the result event has been published.
	StateDelivered
	// StateFailed indicates the request ended with an error.
	StateFailed
)

// String returns the string representation of the state.
func (s RequestState) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateLoading:
		return "Loading"
	case StateRunning:
		return "Running"
	case StateDelivered:
		return "Delivered"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// validTransitions defines the allowed state transitions.
// Key is the current state, value is a list of valid target states.
// Loading may be skipped entirely when the model is already resident.
var validTransitions = map[RequestState][]RequestState{
	StatePending:   {StateLoading, StateRunning, StateFailed},
	StateLoading:   {StateRunning, StateFailed},
	StateRunning:   {StateDelivered, StateFailed},
	StateDelivered: {}, // Terminal
	StateFailed:    {}, // Terminal
}

// CanTransitionTo checks if transitioning from the current state to the target state is valid.
func (s RequestState) CanTransitionTo(target RequestState) bool {
	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// ValidTransitions returns the list of valid target states from the current state.
func (s RequestState) ValidTransitions() []RequestState {
	return validTransitions[s]
}

// IsTerminal returns true if the state is a terminal state (no further transitions).
func (s RequestState) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// IsActive returns true while the request still has work in flight.
func (s RequestState) IsActive() bool {
	return s == StatePending || s == StateLoading || s == StateRunning
}

// Mode selects which model family the UI is currently driving.
// Exactly one mode is active at a time; the mode is a display label only and
// never gates which operation may be dispatched.
type Mode string

const (
	// ModeSegmentation drives the clothing-segmentation model.
	ModeSegmentation Mode = "clothes_segmentation"
	// ModeCaption drives the image-captioning model.
	ModeCaption Mode = "image_caption"
)

// Title returns the human-readable mode name shown in the mode selector.
func (m Mode) Title() string {
	switch m {
	case ModeSegmentation:
		return "Clothes Segmentation"
	case ModeCaption:
		return "Image Caption"
	default:
		return string(m)
	}
}

// ModeFromTitle maps a mode-selector label back onto a Mode.
func ModeFromTitle(title string) (Mode, bool) {
	switch title {
	case ModeSegmentation.Title():
		return ModeSegmentation, true
	case ModeCaption.Title():
		return ModeCaption, true
	default:
		return "", false
	}
}

package presentation

import (
	"testing"
)

func TestMainWindowConfig(t *testing.T) {
	cfg := &MainWindowConfig{}

	if cfg.App != nil {
		t.Error("App should be nil by default")
	}
	if cfg.Bridge != nil {
		t.Error("Bridge should be nil by default")
	}
	if cfg.Logger != nil {
		t.Error("Logger should be nil by default")
	}
}

func TestMainWindow_ActiveRequestTracking(t *testing.T) {
	w := &MainWindow{}

	if w.isActiveRequest("") {
		t.Error("no request should be active initially")
	}

	w.setActiveRequest("req-1")
	// Reads happen on the event-bus goroutine, writes on the UI side.
	seen := make(chan bool, 1)
	go func() { seen <- w.isActiveRequest("req-1") }()
	if !<-seen {
		t.Error("recorded request not visible from another goroutine")
	}
	if w.isActiveRequest("req-2") {
		t.Error("unrelated request must not match")
	}

	w.setActiveRequest("")
	if w.isActiveRequest("req-1") {
		t.Error("cleared request still reported active")
	}
}

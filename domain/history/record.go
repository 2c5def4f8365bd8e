// Package history defines processing-history records and related types.
package history

import (
	"fmt"
	"path/filepath"
	"time"

	"stylelens-go/core/state"
)

// Record represents one completed processing request.
type Record struct {
	// ID is the unique identifier (request UUID)
	ID string

	// Mode is the model family that produced the result
	Mode state.Mode

	// ImagePath is the source image the user picked
	ImagePath string

	// Caption holds the generated text for caption requests; empty otherwise
	Caption string

	// Elapsed is the inference + post-processing wall time
	Elapsed time.Duration

	// CreatedAt is when the result was delivered
	CreatedAt time.Time
}

// Summary returns a one-line description for the recent-results list.
func (r *Record) Summary() string {
	name := filepath.Base(r.ImagePath)
	switch r.Mode {
	case state.ModeCaption:
		return fmt.Sprintf("%s: %q", name, r.Caption)
	default:
		return fmt.Sprintf("%s: %s (%.1fs)", name, r.Mode.Title(), r.Elapsed.Seconds())
	}
}

// Clone creates a copy of the record.
func (r *Record) Clone() *Record {
	clone := *r
	return &clone
}

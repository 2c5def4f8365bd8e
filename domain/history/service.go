package history

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyRecord is returned when a record without an ID is appended.
var ErrEmptyRecord = errors.New("history record has no ID")

// DefaultRecentLimit caps the recent-results list shown in the UI.
const DefaultRecentLimit = 20

// Service provides business logic for the processing history.
type Service struct {
	repo Repository
}

// NewService creates a new history service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Append stores a completed request, stamping CreatedAt if unset.
func (s *Service) Append(ctx context.Context, record *Record) error {
	if record == nil || record.ID == "" {
		return ErrEmptyRecord
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	return s.repo.Insert(ctx, record)
}

// Recent returns up to DefaultRecentLimit records, newest first.
func (s *Service) Recent(ctx context.Context) ([]*Record, error) {
	return s.repo.FindRecent(ctx, DefaultRecentLimit)
}

// Count returns the number of stored records.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Clear removes all records.
func (s *Service) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}

package repository

import (
	"context"
	"sync"

	"stylelens-go/domain/history"
)

// MemoryHistoryRepository implements history.Repository in memory.
// Used when MongoDB is disabled or unreachable; records are lost on exit.
type MemoryHistoryRepository struct {
	mu      sync.RWMutex
	records []*history.Record
}

// NewMemoryHistoryRepository creates an empty in-memory history repository.
func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{}
}

// Insert appends a new record.
func (r *MemoryHistoryRepository) Insert(ctx context.Context, record *history.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record.Clone())
	return nil
}

// FindRecent retrieves up to limit records, newest first.
func (r *MemoryHistoryRepository) FindRecent(ctx context.Context, limit int) ([]*history.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*history.Record, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i].Clone())
	}
	return out, nil
}

// Count returns the number of stored records.
func (r *MemoryHistoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}

// Clear removes all records.
func (r *MemoryHistoryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
	return nil
}

// Ensure MemoryHistoryRepository implements history.Repository
var _ history.Repository = (*MemoryHistoryRepository)(nil)

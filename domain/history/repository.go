package history

import "context"

// Repository defines the interface for history persistence operations.
type Repository interface {
	// Insert appends a new record.
	Insert(ctx context.Context, record *Record) error

	// FindRecent retrieves up to limit records, newest first.
	FindRecent(ctx context.Context, limit int) ([]*Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Clear removes all records.
	Clear(ctx context.Context) error
}

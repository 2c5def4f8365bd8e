package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stylelens-go/core/state"
	"stylelens-go/domain/history"
)

// historyDocument is the MongoDB document structure for history records.
type historyDocument struct {
	ID        string    `bson:"_id"`
	Mode      string    `bson:"mode"`
	ImagePath string    `bson:"image_path"`
	Caption   string    `bson:"caption,omitempty"`
	ElapsedMs int64     `bson:"elapsed_ms"`
	CreatedAt time.Time `bson:"created_at"`
}

// MongoHistoryRepository implements history.Repository using MongoDB.
type MongoHistoryRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoHistoryRepository creates a new MongoDB-based history repository.
func NewMongoHistoryRepository(db *MongoDB, logger *slog.Logger) *MongoHistoryRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoHistoryRepository{
		collection: db.Collection("history"),
		logger:     logger,
	}
}

// Insert appends a new record.
func (r *MongoHistoryRepository) Insert(ctx context.Context, record *history.Record) error {
	doc := recordToDocument(record)
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}

	r.logger.Debug("History record inserted", "id", record.ID, "mode", record.Mode)
	return nil
}

// FindRecent retrieves up to limit records, newest first.
func (r *MongoHistoryRepository) FindRecent(ctx context.Context, limit int) ([]*history.Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find history records: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []historyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode history records: %w", err)
	}

	records := make([]*history.Record, len(docs))
	for i, doc := range docs {
		records[i] = documentToRecord(&doc)
	}
	return records, nil
}

// Count returns the number of stored records.
func (r *MongoHistoryRepository) Count(ctx context.Context) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count history records: %w", err)
	}
	return int(n), nil
}

// Clear removes all records.
func (r *MongoHistoryRepository) Clear(ctx context.Context) error {
	if _, err := r.collection.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	r.logger.Info("History cleared")
	return nil
}

// recordToDocument converts a domain Record to a MongoDB document.
func recordToDocument(record *history.Record) *historyDocument {
	return &historyDocument{
		ID:        record.ID,
		Mode:      string(record.Mode),
		ImagePath: record.ImagePath,
		Caption:   record.Caption,
		ElapsedMs: record.Elapsed.Milliseconds(),
		CreatedAt: record.CreatedAt,
	}
}

// documentToRecord converts a MongoDB document to a domain Record.
func documentToRecord(doc *historyDocument) *history.Record {
	return &history.Record{
		ID:        doc.ID,
		Mode:      state.Mode(doc.Mode),
		ImagePath: doc.ImagePath,
		Caption:   doc.Caption,
		Elapsed:   time.Duration(doc.ElapsedMs) * time.Millisecond,
		CreatedAt: doc.CreatedAt,
	}
}

// Ensure MongoHistoryRepository implements history.Repository
var _ history.Repository = (*MongoHistoryRepository)(nil)

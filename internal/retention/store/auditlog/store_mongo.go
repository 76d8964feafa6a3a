package auditlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/retention/models"
	"github.com/moag1000/Little-ISMS-Helper-sub006/pkg/platform/sentinel"
)

// CollectionName is the Mongo collection holding audit-log entries.
const CollectionName = "audit_log"

// MongoStore persists entries in a Mongo collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongo(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// EnsureIndexes creates the created_at index used by every retention query.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: 1}},
		Options: options.Index().SetName("idx_audit_log_created_at"),
	})
	if err != nil {
		return fmt.Errorf("create audit log index: %w", err)
	}
	return nil
}

// Append inserts entry, assigning an ID when it has none.
func (s *MongoStore) Append(ctx context.Context, entry *models.AuditLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	e := *entry
	e.CreatedAt = e.CreatedAt.UTC()
	if _, err := s.coll.InsertOne(ctx, e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("append audit log entry: %w", err)
	}
	return nil
}

func olderThan(cutoff time.Time) bson.M {
	return bson.M{"created_at": bson.M{"$lt": cutoff.UTC()}}
}

func (s *MongoStore) CountOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	n, err := s.coll.CountDocuments(ctx, olderThan(cutoff))
	if err != nil {
		return 0, fmt.Errorf("count audit log entries: %w", err)
	}
	return int(n), nil
}

// ListOlderThan returns up to limit entries ordered oldest first. limit <= 0
// returns all of them.
func (s *MongoStore) ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*models.AuditLogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, olderThan(cutoff), opts)
	if err != nil {
		return nil, fmt.Errorf("list audit log entries: %w", err)
	}
	var out []*models.AuditLogEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode audit log entries: %w", err)
	}
	return out, nil
}

// DeleteOlderThan removes every matching entry with one deleteMany.
func (s *MongoStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.coll.DeleteMany(ctx, olderThan(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete audit log entries: %w", err)
	}
	return int(res.DeletedCount), nil
}

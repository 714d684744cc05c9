package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
)

// listingSort orders records newest first; _id breaks ties in insertion order.
var listingSort = bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: 1}}

// RecordRepository persists market records.
type RecordRepository struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

// NewRecordRepository wraps the records collection.
func NewRecordRepository(coll *mongo.Collection, logger *zap.Logger) *RecordRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordRepository{coll: coll, logger: logger}
}

// EnsureIndexes creates the query indexes used by listing and analytics.
func (r *RecordRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "productName", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "area", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
		{Keys: bson.D{{Key: "totalSellingPrice", Value: -1}}},
	}
	names, err := r.coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("create record indexes: %w", err)
	}
	r.logger.Debug("record indexes ensured", zap.Strings("indexes", names))
	return nil
}

// Find returns one window of the filtered records in listing order. A zero
// limit returns everything after skip.
func (r *RecordRepository) Find(ctx context.Context, filter bson.D, skip, limit int64) ([]models.MarketRecord, error) {
	opts := options.Find().SetSort(listingSort)
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, filter, opts)
}

// Recent returns the most recently created records.
func (r *RecordRepository) Recent(ctx context.Context, limit int64) ([]models.MarketRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, bson.D{}, opts)
}

func (r *RecordRepository) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]models.MarketRecord, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}
	records := make([]models.MarketRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

// Count returns the number of records matching filter.
func (r *RecordRepository) Count(ctx context.Context, filter bson.D) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// FindByID loads one record.
func (r *RecordRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.MarketRecord, error) {
	var rec models.MarketRecord
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return rec, models.ErrNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("find record %s: %w", id.Hex(), err)
	}
	return rec, nil
}

// Insert stores a new record and assigns its id.
func (r *RecordRepository) Insert(ctx context.Context, rec *models.MarketRecord) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// InsertMany stores a batch of records. The insert is not transactional; on
// failure some records may already be stored.
func (r *RecordRepository) InsertMany(ctx context.Context, recs []models.MarketRecord) error {
	if len(recs) == 0 {
		return nil
	}
	docs := make([]interface{}, len(recs))
	for i := range recs {
		if recs[i].ID.IsZero() {
			recs[i].ID = primitive.NewObjectID()
		}
		docs[i] = recs[i]
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert %d records: %w", len(recs), err)
	}
	return nil
}

// Update applies set to one record and returns the stored result.
func (r *RecordRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.D) (models.MarketRecord, error) {
	var rec models.MarketRecord
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return rec, models.ErrNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("update record %s: %w", id.Hex(), err)
	}
	return rec, nil
}

// Delete removes one record.
func (r *RecordRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Aggregate runs pipeline and decodes every result document into results,
// which must be a pointer to a slice.
func (r *RecordRepository) Aggregate(ctx context.Context, pipeline mongo.Pipeline, results interface{}) error {
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregate records: %w", err)
	}
	if err := cursor.All(ctx, results); err != nil {
		return fmt.Errorf("decode aggregation: %w", err)
	}
	return nil
}

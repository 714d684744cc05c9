// Package testutil holds in-memory stand-ins for the MongoDB repositories.
package testutil

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
)

// MemoryStore keeps records in insertion order and understands the
// predicates built by the query package.
type MemoryStore struct {
	mu      sync.Mutex
	records []models.MarketRecord

	// FailWith, when set, is returned by every operation.
	FailWith error
}

// NewMemoryStore returns a store seeded with recs, in order.
func NewMemoryStore(recs ...models.MarketRecord) *MemoryStore {
	s := &MemoryStore{}
	for i := range recs {
		rec := recs[i]
		if rec.ID.IsZero() {
			rec.ID = primitive.NewObjectID()
		}
		s.records = append(s.records, rec)
	}
	return s
}

// All returns a copy of every stored record in insertion order.
func (s *MemoryStore) All() []models.MarketRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MarketRecord(nil), s.records...)
}

// Find implements the listing query: date descending, insertion order on ties.
func (s *MemoryStore) Find(_ context.Context, filter bson.D, skip, limit int64) ([]models.MarketRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}

	matched := make([]models.MarketRecord, 0, len(s.records))
	for _, rec := range s.records {
		if Matches(rec, filter) {
			matched = append(matched, rec)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})

	if skip >= int64(len(matched)) {
		return []models.MarketRecord{}, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < int64(len(matched)) {
		matched = matched[:limit]
	}
	return matched, nil
}

// Recent returns the latest created records.
func (s *MemoryStore) Recent(_ context.Context, limit int64) ([]models.MarketRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	recs := append([]models.MarketRecord(nil), s.records...)
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	if limit < int64(len(recs)) {
		recs = recs[:limit]
	}
	return recs, nil
}

// Count returns how many records match filter.
func (s *MemoryStore) Count(_ context.Context, filter bson.D) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return 0, s.FailWith
	}
	var n int64
	for _, rec := range s.records {
		if Matches(rec, filter) {
			n++
		}
	}
	return n, nil
}

// FindByID returns models.ErrNotFound for unknown ids.
func (s *MemoryStore) FindByID(_ context.Context, id primitive.ObjectID) (models.MarketRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return models.MarketRecord{}, s.FailWith
	}
	for _, rec := range s.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return models.MarketRecord{}, models.ErrNotFound
}

// Insert appends rec, assigning an id.
func (s *MemoryStore) Insert(_ context.Context, rec *models.MarketRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	s.records = append(s.records, *rec)
	return nil
}

// InsertMany appends recs, assigning ids.
func (s *MemoryStore) InsertMany(_ context.Context, recs []models.MarketRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	for i := range recs {
		if recs[i].ID.IsZero() {
			recs[i].ID = primitive.NewObjectID()
		}
		s.records = append(s.records, recs[i])
	}
	return nil
}

// Update applies a $set document through a BSON round trip, as the server would.
func (s *MemoryStore) Update(_ context.Context, id primitive.ObjectID, set bson.D) (models.MarketRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return models.MarketRecord{}, s.FailWith
	}
	for i, rec := range s.records {
		if rec.ID != id {
			continue
		}
		raw, err := bson.Marshal(rec)
		if err != nil {
			return models.MarketRecord{}, err
		}
		var doc bson.M
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return models.MarketRecord{}, err
		}
		for _, e := range set {
			doc[e.Key] = e.Value
		}
		if raw, err = bson.Marshal(doc); err != nil {
			return models.MarketRecord{}, err
		}
		var updated models.MarketRecord
		if err := bson.Unmarshal(raw, &updated); err != nil {
			return models.MarketRecord{}, err
		}
		s.records[i] = updated
		return updated, nil
	}
	return models.MarketRecord{}, models.ErrNotFound
}

// Delete removes a record.
func (s *MemoryStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	for i, rec := range s.records {
		if rec.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

// Matches evaluates the subset of MongoDB filter syntax the query package emits.
func Matches(rec models.MarketRecord, filter bson.D) bool {
	for _, e := range filter {
		if !matchField(rec, e) {
			return false
		}
	}
	return true
}

func matchField(rec models.MarketRecord, e bson.E) bool {
	switch e.Key {
	case "$and":
		for _, sub := range e.Value.(bson.A) {
			if !Matches(rec, sub.(bson.D)) {
				return false
			}
		}
		return true
	case "productName":
		return rec.ProductName == e.Value
	case "category":
		return rec.Category == e.Value
	case "quality":
		return rec.Quality == e.Value
	case "area":
		re := e.Value.(primitive.Regex)
		return regexp.MustCompile("(?" + re.Options + ")" + re.Pattern).MatchString(rec.Area)
	case "date":
		return inRange(e.Value.(bson.D), func(bound interface{}) int {
			return compareTime(rec.Date, bound.(time.Time))
		})
	case "pricePerUnit":
		return inRange(e.Value.(bson.D), func(bound interface{}) int {
			return compareFloat(rec.PricePerUnit, bound.(float64))
		})
	default:
		panic(fmt.Sprintf("testutil: unsupported filter key %q", e.Key))
	}
}

func inRange(ops bson.D, cmp func(bound interface{}) int) bool {
	for _, op := range ops {
		c := cmp(op.Value)
		switch op.Key {
		case "$gte":
			if c < 0 {
				return false
			}
		case "$lte":
			if c > 0 {
				return false
			}
		case "$lt":
			if c >= 0 {
				return false
			}
		default:
			panic(fmt.Sprintf("testutil: unsupported operator %q", op.Key))
		}
	}
	return true
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

package records

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
	"github.com/mamadbah2/meatmarket/internal/metrics"
	"github.com/mamadbah2/meatmarket/internal/query"
)

const (
	// DefaultPageSize applies when a listing does not ask for one.
	DefaultPageSize = 10
	// MaxPageSize bounds a listing page.
	MaxPageSize = 100
)

// Store is the record persistence used by the service.
type Store interface {
	Find(ctx context.Context, filter bson.D, skip, limit int64) ([]models.MarketRecord, error)
	Count(ctx context.Context, filter bson.D) (int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.MarketRecord, error)
	Insert(ctx context.Context, rec *models.MarketRecord) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.D) (models.MarketRecord, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// OwnerDirectory resolves record owners to display names.
type OwnerDirectory interface {
	Owners(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Owner, error)
}

// Service lists records and applies ownership-checked writes.
type Service struct {
	store  Store
	owners OwnerDirectory
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a records service.
func NewService(store Store, owners OwnerDirectory, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		owners: owners,
		logger: logger,
		now:    time.Now,
	}
}

// stampTotal is the single place the derived total is computed; every write
// path goes through it before touching the store.
func stampTotal(rec *models.MarketRecord) error {
	total, err := TotalFor(rec.Quantity, rec.PricePerUnit)
	if err != nil {
		return err
	}
	rec.TotalSellingPrice = total
	return nil
}

// List returns one page of the records matching criteria, newest first.
func (s *Service) List(ctx context.Context, criteria query.Criteria, page, pageSize int) (models.RecordPage, error) {
	fields := map[string]string{}
	if page < 1 {
		fields["page"] = "Page must be a positive integer"
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		fields["limit"] = fmt.Sprintf("Limit must be between 1 and %d", MaxPageSize)
	}
	if len(fields) > 0 {
		return models.RecordPage{}, models.NewValidationError(fields)
	}

	filter := criteria.Predicate()
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return models.RecordPage{}, err
	}

	recs, err := s.store.Find(ctx, filter, int64(page-1)*int64(pageSize), int64(pageSize))
	if err != nil {
		return models.RecordPage{}, err
	}

	views, err := s.resolve(ctx, recs)
	if err != nil {
		return models.RecordPage{}, err
	}

	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return models.RecordPage{
		Data: views,
		Pagination: models.Pagination{
			Current: page,
			Pages:   pages,
			Total:   total,
			HasNext: page < pages,
			HasPrev: page > 1,
		},
	}, nil
}

// Get returns one record with its owner resolved.
func (s *Service) Get(ctx context.Context, id string) (models.RecordView, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.RecordView{}, models.ErrNotFound
	}
	rec, err := s.store.FindByID(ctx, oid)
	if err != nil {
		return models.RecordView{}, err
	}
	return s.resolveOne(ctx, rec)
}

// Create validates in and stores it as a record owned by actor.
func (s *Service) Create(ctx context.Context, actor models.Identity, in CreateInput) (models.RecordView, error) {
	now := s.now().UTC()
	rec, err := in.Build(now)
	if err != nil {
		return models.RecordView{}, err
	}

	rec.CreatedBy = actor.ID
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if err := s.store.Insert(ctx, &rec); err != nil {
		return models.RecordView{}, err
	}
	metrics.RecordMutations.WithLabelValues("create").Inc()
	s.logger.Info("record created",
		zap.String("id", rec.ID.Hex()),
		zap.String("product", rec.ProductName),
		zap.String("actor", actor.ID.Hex()))

	owner := models.Owner{ID: actor.ID, Name: actor.Name, Email: actor.Email}
	return models.RecordView{MarketRecord: rec, CreatedBy: owner}, nil
}

// Update applies a partial update on behalf of actor. Only the owner or an
// admin may update; the owner never changes.
func (s *Service) Update(ctx context.Context, actor models.Identity, id string, in UpdateInput) (models.RecordView, error) {
	rec, err := s.authorize(ctx, actor, id)
	if err != nil {
		return models.RecordView{}, err
	}

	date, err := in.validate()
	if err != nil {
		return models.RecordView{}, err
	}

	set, factorTouched := in.apply(&rec, date)
	if factorTouched {
		if err := stampTotal(&rec); err != nil {
			return models.RecordView{}, err
		}
		set = append(set, bson.E{Key: "totalSellingPrice", Value: rec.TotalSellingPrice})
	}
	set = append(set, bson.E{Key: "updatedAt", Value: s.now().UTC()})

	updated, err := s.store.Update(ctx, rec.ID, set)
	if err != nil {
		return models.RecordView{}, err
	}
	metrics.RecordMutations.WithLabelValues("update").Inc()
	s.logger.Info("record updated",
		zap.String("id", rec.ID.Hex()),
		zap.Int("fields", len(set)-1),
		zap.String("actor", actor.ID.Hex()))

	return s.resolveOne(ctx, updated)
}

// Delete removes a record on behalf of actor, subject to the same rule as Update.
func (s *Service) Delete(ctx context.Context, actor models.Identity, id string) error {
	rec, err := s.authorize(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, rec.ID); err != nil {
		return err
	}
	metrics.RecordMutations.WithLabelValues("delete").Inc()
	s.logger.Info("record deleted", zap.String("id", rec.ID.Hex()), zap.String("actor", actor.ID.Hex()))
	return nil
}

func (s *Service) authorize(ctx context.Context, actor models.Identity, id string) (models.MarketRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.MarketRecord{}, models.ErrNotFound
	}
	rec, err := s.store.FindByID(ctx, oid)
	if err != nil {
		return models.MarketRecord{}, err
	}
	if !models.CanModify(actor, rec) {
		s.logger.Warn("record modification denied",
			zap.String("id", id),
			zap.String("actor", actor.ID.Hex()),
			zap.Stringer("role", actor.Role))
		return models.MarketRecord{}, models.ErrForbidden
	}
	return rec, nil
}

func (s *Service) resolveOne(ctx context.Context, rec models.MarketRecord) (models.RecordView, error) {
	views, err := s.resolve(ctx, []models.MarketRecord{rec})
	if err != nil {
		return models.RecordView{}, err
	}
	return views[0], nil
}

func (s *Service) resolve(ctx context.Context, recs []models.MarketRecord) ([]models.RecordView, error) {
	return ResolveOwners(ctx, s.owners, recs)
}

// ResolveOwners attaches owner display names to recs.
func ResolveOwners(ctx context.Context, dir OwnerDirectory, recs []models.MarketRecord) ([]models.RecordView, error) {
	seen := make(map[primitive.ObjectID]struct{}, len(recs))
	ids := make([]primitive.ObjectID, 0, len(recs))
	for _, rec := range recs {
		if _, ok := seen[rec.CreatedBy]; ok {
			continue
		}
		seen[rec.CreatedBy] = struct{}{}
		ids = append(ids, rec.CreatedBy)
	}

	owners, err := dir.Owners(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.RecordView, len(recs))
	for i, rec := range recs {
		views[i] = models.NewRecordView(rec, owners)
	}
	return views, nil
}

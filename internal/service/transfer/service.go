// Package transfer moves market records in and out as CSV.
package transfer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
	"github.com/mamadbah2/meatmarket/internal/metrics"
	"github.com/mamadbah2/meatmarket/internal/service/records"
)

// ExportFilename is the attachment name of a CSV export.
const ExportFilename = "meat-data-export.csv"

// Store is the record persistence used for bulk transfer.
type Store interface {
	Find(ctx context.Context, filter bson.D, skip, limit int64) ([]models.MarketRecord, error)
	InsertMany(ctx context.Context, recs []models.MarketRecord) error
}

// Service imports and exports records.
type Service struct {
	store  Store
	owners records.OwnerDirectory
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a transfer service.
func NewService(store Store, owners records.OwnerDirectory, logger *zap.Logger) *Service {
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

// Import reads a CSV upload and inserts its valid rows as one batch owned by
// actor. Invalid rows are reported, not fatal.
func (s *Service) Import(ctx context.Context, actor models.Identity, r io.Reader) (models.ImportReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	report := models.ImportReport{ErrorDetails: []string{}}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		report.Message = uploadedMessage(0)
		return report, nil
	}
	if err != nil {
		return report, models.NewValidationError(map[string]string{"file": "File is not valid CSV"})
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	index := headerIndex(header)

	now := s.now().UTC()
	valid := make([]models.MarketRecord, 0)
	for n := 1; ; n++ {
		values, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.ErrorDetails = append(report.ErrorDetails, fmt.Sprintf("Row %d: malformed CSV line", n))
			continue
		}

		rec, err := buildRow(row{index: index, values: values}, now)
		if err != nil {
			report.ErrorDetails = append(report.ErrorDetails, fmt.Sprintf("Row %d: %s", n, reason(err)))
			continue
		}
		rec.CreatedBy = actor.ID
		rec.CreatedAt = now
		rec.UpdatedAt = now
		valid = append(valid, rec)
	}

	if len(valid) > 0 {
		if err := s.store.InsertMany(ctx, valid); err != nil {
			return models.ImportReport{}, fmt.Errorf("import %d rows: %w", len(valid), err)
		}
	}

	metrics.ImportRows.WithLabelValues("uploaded").Add(float64(len(valid)))
	metrics.ImportRows.WithLabelValues("rejected").Add(float64(len(report.ErrorDetails)))
	s.logger.Info("records imported",
		zap.String("actor", actor.ID.Hex()),
		zap.Int("uploaded", len(valid)),
		zap.Int("rejected", len(report.ErrorDetails)),
	)

	report.Message = uploadedMessage(len(valid))
	report.Uploaded = len(valid)
	report.Errors = len(report.ErrorDetails)
	return report, nil
}

func uploadedMessage(n int) string {
	return fmt.Sprintf("Successfully uploaded %d entries", n)
}

// buildRow turns one CSV row into a record using the create rules.
func buildRow(r row, now time.Time) (models.MarketRecord, error) {
	number := func(field string) *records.Amount {
		raw := strings.TrimSpace(r.get(field))
		if raw == "" {
			return nil
		}
		a := records.ParseAmount(raw)
		return &a
	}

	in := records.CreateInput{
		ProductName:  r.get("productName"),
		Quantity:     number("quantity"),
		UnitType:     strings.TrimSpace(r.get("unitType")),
		Unit:         strings.TrimSpace(r.get("unit")),
		SuppliedTo:   r.get("suppliedTo"),
		Date:         r.get("date"),
		Area:         r.get("area"),
		PricePerUnit: number("pricePerUnit"),
		Currency:     strings.TrimSpace(r.get("currency")),
		Category:     strings.TrimSpace(r.get("category")),
		Quality:      strings.TrimSpace(r.get("quality")),
		Supplier:     r.get("supplier"),
		Notes:        r.get("notes"),
	}
	if in.UnitType == "" && in.Unit != "" {
		in.UnitType = models.UnitTypeFor(in.Unit)
	}
	return in.Build(now)
}

// reason renders a row failure as "field: message" pairs.
func reason(err error) string {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}
	keys := make([]string, 0, len(verr.Fields))
	for k := range verr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + verr.Fields[k]
	}
	return strings.Join(parts, "; ")
}

// Rows returns the export header followed by one row per record. It fails
// with models.ErrNothingToExport when the store is empty.
func (s *Service) Rows(ctx context.Context) ([][]string, error) {
	recs, err := s.store.Find(ctx, bson.D{}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	if len(recs) == 0 {
		return nil, models.ErrNothingToExport
	}
	views, err := records.ResolveOwners(ctx, s.owners, recs)
	if err != nil {
		return nil, fmt.Errorf("resolve owners: %w", err)
	}

	rows := make([][]string, 0, len(views)+1)
	rows = append(rows, exportHeader)
	for _, v := range views {
		rows = append(rows, []string{
			v.ProductName,
			formatNumber(v.Quantity),
			v.Unit,
			v.SuppliedTo,
			v.Date.UTC().Format("2006-01-02"),
			v.Area,
			formatNumber(v.PricePerUnit),
			v.Currency,
			v.Category,
			v.Quality,
			v.Supplier,
			v.Notes,
			v.CreatedBy.Name,
		})
	}
	return rows, nil
}

// Export writes every record to w as CSV. The header is bare; every value
// is double-quoted with embedded quotes doubled.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	rows, err := s.Rows(ctx)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(strings.Join(rows[0], ","))
	for _, r := range rows[1:] {
		b.WriteByte('\n')
		for i, v := range r {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(v))
		}
	}
	b.WriteByte('\n')

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	s.logger.Info("records exported", zap.Int("rows", len(rows)-1))
	return nil
}

func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

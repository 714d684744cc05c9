// Package query turns optional filter criteria into MongoDB predicates shared
// by the listing and analytics services.
package query

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
)

const dateOnlyLayout = "2006-01-02"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Criteria is the optional narrowing of a record query. Zero values are
// omitted from the predicate.
type Criteria struct {
	ProductName string
	Area        string
	StartDate   *time.Time
	EndDate     *time.Time
	Category    string
	Quality     string
	MinPrice    *float64
	MaxPrice    *float64
}

// Parse reads criteria through get, typically url.Values.Get or gin's
// Context.Query. Malformed dates and prices are reported together.
func Parse(get func(key string) string) (Criteria, error) {
	var c Criteria
	fields := make(map[string]string)

	c.ProductName = strings.TrimSpace(get("productName"))
	c.Area = strings.TrimSpace(get("area"))
	c.Category = strings.TrimSpace(get("category"))
	c.Quality = strings.TrimSpace(get("quality"))

	if raw := strings.TrimSpace(get("startDate")); raw != "" {
		t, _, err := ParseDate(raw)
		if err != nil {
			fields["startDate"] = "Start date must be a valid date"
		} else {
			c.StartDate = &t
		}
	}
	if raw := strings.TrimSpace(get("endDate")); raw != "" {
		t, dateOnly, err := ParseDate(raw)
		if err != nil {
			fields["endDate"] = "End date must be a valid date"
		} else {
			if dateOnly {
				t = EndOfDay(t)
			}
			c.EndDate = &t
		}
	}
	if raw := strings.TrimSpace(get("minPrice")); raw != "" {
		if f, ok := parsePrice(raw); ok {
			c.MinPrice = &f
		} else {
			fields["minPrice"] = "Minimum price must be a number"
		}
	}
	if raw := strings.TrimSpace(get("maxPrice")); raw != "" {
		if f, ok := parsePrice(raw); ok {
			c.MaxPrice = &f
		} else {
			fields["maxPrice"] = "Maximum price must be a number"
		}
	}

	if len(fields) > 0 {
		return Criteria{}, models.NewValidationError(fields)
	}
	return c, nil
}

// parsePrice accepts finite decimal numbers only.
func parsePrice(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates. The
// second result reports whether the input carried no time of day.
func ParseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(dateOnlyLayout, raw); err == nil {
		return t.UTC(), true, nil
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC(), false, nil
		}
		lastErr = err
	}
	return time.Time{}, false, lastErr
}

// EndOfDay returns the last millisecond of t's day. BSON dates carry
// millisecond precision.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// Predicate renders the criteria as a MongoDB filter document.
func (c Criteria) Predicate() bson.D {
	pred := bson.D{}
	if c.ProductName != "" {
		pred = append(pred, bson.E{Key: "productName", Value: c.ProductName})
	}
	if c.Area != "" {
		pred = append(pred, bson.E{Key: "area", Value: primitive.Regex{Pattern: regexp.QuoteMeta(c.Area), Options: "i"}})
	}
	if c.StartDate != nil || c.EndDate != nil {
		pred = append(pred, bson.E{Key: "date", Value: Range(c.StartDate, c.EndDate)})
	}
	if c.Category != "" {
		pred = append(pred, bson.E{Key: "category", Value: c.Category})
	}
	if c.Quality != "" {
		pred = append(pred, bson.E{Key: "quality", Value: c.Quality})
	}
	if c.MinPrice != nil || c.MaxPrice != nil {
		pred = append(pred, bson.E{Key: "pricePerUnit", Value: Range(c.MinPrice, c.MaxPrice)})
	}
	return pred
}

// Range builds an inclusive {$gte, $lte} bound, leaving out nil ends.
func Range[T any](lower, upper *T) bson.D {
	r := bson.D{}
	if lower != nil {
		r = append(r, bson.E{Key: "$gte", Value: *lower})
	}
	if upper != nil {
		r = append(r, bson.E{Key: "$lte", Value: *upper})
	}
	return r
}

// And combines predicates, dropping empty ones.
func And(preds ...bson.D) bson.D {
	nonEmpty := make(bson.A, 0, len(preds))
	for _, p := range preds {
		if len(p) > 0 {
			nonEmpty = append(nonEmpty, p)
		}
	}
	switch len(nonEmpty) {
	case 0:
		return bson.D{}
	case 1:
		return nonEmpty[0].(bson.D)
	default:
		return bson.D{{Key: "$and", Value: nonEmpty}}
	}
}

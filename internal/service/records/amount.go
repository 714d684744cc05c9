package records

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
)

const (
	notANumber      = "Must be a number"
	negativeNumber  = "Must be greater than or equal to 0"
	totalOutOfRange = "Total selling price is out of range"
)

// Amount is a numeric field given either as a JSON number or a numeric
// string. Anything that does not parse to a finite number decodes with
// Valid unset so it is reported next to the other offending fields.
type Amount struct {
	Value float64
	Valid bool
}

// NewAmount returns a valid amount holding v.
func NewAmount(v float64) *Amount {
	return &Amount{Value: v, Valid: finite(v)}
}

// ParseAmount reads raw as a finite decimal number.
func ParseAmount(raw string) Amount {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !finite(v) {
		return Amount{}
	}
	return Amount{Value: v, Valid: true}
}

// UnmarshalJSON never fails; a bad value leaves the amount invalid.
func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	*a = ParseAmount(raw)
	return nil
}

// checkAmount records why a supplied amount is unusable. nil is left to the
// required rule.
func checkAmount(fields map[string]string, key string, a *Amount) {
	switch {
	case a == nil:
	case !a.Valid:
		fields[key] = notANumber
	case a.Value < 0:
		fields[key] = negativeNumber
	}
}

// TotalFor is the derived selling price of quantity units at price each.
func TotalFor(quantity, price float64) (float64, error) {
	if !finite(quantity) || !finite(price) {
		return 0, models.NewValidationError(map[string]string{"totalSellingPrice": totalOutOfRange})
	}
	total, _ := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(price)).Float64()
	if !finite(total) {
		return 0, models.NewValidationError(map[string]string{"totalSellingPrice": totalOutOfRange})
	}
	return total, nil
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

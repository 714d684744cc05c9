package records

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
	"github.com/mamadbah2/meatmarket/internal/query"
	"github.com/mamadbah2/meatmarket/pkg/validator"
)

// CreateInput is the writable part of a new record. Total and owner are
// derived and cannot be supplied.
type CreateInput struct {
	ProductName  string   `json:"productName" validate:"required,oneof=Beef Chicken Pork Lamb Fish Turkey Other"`
	Quantity     *Amount  `json:"quantity" validate:"required"`
	UnitType     string   `json:"unitType" validate:"omitempty,oneof=weight number"`
	Unit         string   `json:"unit" validate:"omitempty,oneof=kg lbs tons pieces units items"`
	SuppliedTo   string   `json:"suppliedTo" validate:"required"`
	Date         string   `json:"date"`
	Area         string   `json:"area" validate:"required"`
	PricePerUnit *Amount  `json:"pricePerUnit" validate:"required"`
	Currency     string   `json:"currency" validate:"omitempty,oneof=USD EUR GBP INR"`
	Category     string   `json:"category" validate:"omitempty,oneof=production supply demand"`
	Quality      string   `json:"quality" validate:"omitempty,oneof=Premium Standard Economy"`
	Supplier     string   `json:"supplier"`
	Notes        string   `json:"notes" validate:"max=500"`
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	ProductName  *string  `json:"productName" validate:"omitnil,oneof=Beef Chicken Pork Lamb Fish Turkey Other"`
	Quantity     *Amount  `json:"quantity"`
	UnitType     *string  `json:"unitType" validate:"omitnil,oneof=weight number"`
	Unit         *string  `json:"unit" validate:"omitnil,oneof=kg lbs tons pieces units items"`
	SuppliedTo   *string  `json:"suppliedTo" validate:"omitnil,min=1"`
	Date         *string  `json:"date"`
	Area         *string  `json:"area" validate:"omitnil,min=1"`
	PricePerUnit *Amount  `json:"pricePerUnit"`
	Currency     *string  `json:"currency" validate:"omitnil,oneof=USD EUR GBP INR"`
	Category     *string  `json:"category" validate:"omitnil,oneof=production supply demand"`
	Quality      *string  `json:"quality" validate:"omitnil,oneof=Premium Standard Economy"`
	Supplier     *string  `json:"supplier"`
	Notes        *string  `json:"notes" validate:"omitnil,max=500"`
}

// Build validates the input and returns the record it describes with its
// derived total, but without owner or timestamps. now is used when no date
// is given.
func (in CreateInput) Build(now time.Time) (models.MarketRecord, error) {
	in.ProductName = strings.TrimSpace(in.ProductName)
	in.SuppliedTo = strings.TrimSpace(in.SuppliedTo)
	in.Area = strings.TrimSpace(in.Area)
	in.Supplier = strings.TrimSpace(in.Supplier)

	fields := map[string]string{}
	if err := validator.Validate(&in); err != nil {
		fields = fieldsOf(err)
		if fields == nil {
			return models.MarketRecord{}, err
		}
	}
	checkAmount(fields, "quantity", in.Quantity)
	checkAmount(fields, "pricePerUnit", in.PricePerUnit)

	date := now
	if raw := strings.TrimSpace(in.Date); raw != "" {
		t, _, err := query.ParseDate(raw)
		if err != nil {
			fields["date"] = "Date must be a valid date"
		} else {
			date = t
		}
	}
	if len(fields) > 0 {
		return models.MarketRecord{}, models.NewValidationError(fields)
	}

	rec := models.MarketRecord{
		ProductName:  in.ProductName,
		Quantity:     in.Quantity.Value,
		UnitType:     withDefault(in.UnitType, models.DefaultUnitType),
		Unit:         withDefault(in.Unit, models.DefaultUnit),
		SuppliedTo:   in.SuppliedTo,
		Date:         date,
		Area:         in.Area,
		PricePerUnit: in.PricePerUnit.Value,
		Currency:     withDefault(in.Currency, models.DefaultCurrency),
		Category:     withDefault(in.Category, models.DefaultCategory),
		Quality:      withDefault(in.Quality, models.DefaultQuality),
		Supplier:     in.Supplier,
		Notes:        in.Notes,
	}
	if err := stampTotal(&rec); err != nil {
		return models.MarketRecord{}, err
	}
	return rec, nil
}

// FieldErrors returns the per-field validation failures of in, or nil.
func (in CreateInput) FieldErrors() map[string]string {
	_, err := in.Build(time.Time{})
	return fieldsOf(err)
}

// FieldErrors returns the per-field validation failures of in, or nil.
func (in UpdateInput) FieldErrors() map[string]string {
	_, err := in.validate()
	return fieldsOf(err)
}

// validate checks the supplied fields against the same rules as CreateInput.
func (in *UpdateInput) validate() (time.Time, error) {
	trim(in.SuppliedTo)
	trim(in.Area)
	trim(in.ProductName)
	trim(in.Supplier)

	fields := map[string]string{}
	if err := validator.Validate(in); err != nil {
		fields = fieldsOf(err)
		if fields == nil {
			return time.Time{}, err
		}
	}
	checkAmount(fields, "quantity", in.Quantity)
	checkAmount(fields, "pricePerUnit", in.PricePerUnit)

	var date time.Time
	if in.Date != nil {
		t, _, err := query.ParseDate(strings.TrimSpace(*in.Date))
		if err != nil {
			fields["date"] = "Date must be a valid date"
		} else {
			date = t
		}
	}
	if len(fields) > 0 {
		return time.Time{}, models.NewValidationError(fields)
	}
	return date, nil
}

// apply copies the supplied fields onto rec and returns them as a $set
// document. Factors of the derived total are reported through factorTouched.
func (in UpdateInput) apply(rec *models.MarketRecord, date time.Time) (set bson.D, factorTouched bool) {
	setString := func(key string, src *string, dst *string) {
		if src != nil {
			*dst = *src
			set = append(set, bson.E{Key: key, Value: *src})
		}
	}
	setAmount := func(key string, src *Amount, dst *float64) {
		if src != nil {
			*dst = src.Value
			set = append(set, bson.E{Key: key, Value: src.Value})
			factorTouched = true
		}
	}

	setString("productName", in.ProductName, &rec.ProductName)
	setAmount("quantity", in.Quantity, &rec.Quantity)
	setString("unitType", in.UnitType, &rec.UnitType)
	setString("unit", in.Unit, &rec.Unit)
	setString("suppliedTo", in.SuppliedTo, &rec.SuppliedTo)
	if in.Date != nil {
		rec.Date = date
		set = append(set, bson.E{Key: "date", Value: date})
	}
	setString("area", in.Area, &rec.Area)
	setAmount("pricePerUnit", in.PricePerUnit, &rec.PricePerUnit)
	setString("currency", in.Currency, &rec.Currency)
	setString("category", in.Category, &rec.Category)
	setString("quality", in.Quality, &rec.Quality)
	setString("supplier", in.Supplier, &rec.Supplier)
	setString("notes", in.Notes, &rec.Notes)
	return set, factorTouched
}

func fieldsOf(err error) map[string]string {
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	return ve.Fields
}

func withDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

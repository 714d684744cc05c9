package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product names accepted for a market record.
const (
	ProductBeef    = "Beef"
	ProductChicken = "Chicken"
	ProductPork    = "Pork"
	ProductLamb    = "Lamb"
	ProductFish    = "Fish"
	ProductTurkey  = "Turkey"
	ProductOther   = "Other"
)

// Unit types.
const (
	UnitTypeWeight = "weight"
	UnitTypeNumber = "number"
)

// Record categories.
const (
	CategoryProduction = "production"
	CategorySupply     = "supply"
	CategoryDemand     = "demand"
)

// Quality grades.
const (
	QualityPremium  = "Premium"
	QualityStandard = "Standard"
	QualityEconomy  = "Economy"
)

// Defaults applied when a writer leaves an optional enum empty.
const (
	DefaultUnitType = UnitTypeWeight
	DefaultUnit     = "kg"
	DefaultCurrency = "USD"
	DefaultCategory = CategorySupply
	DefaultQuality  = QualityStandard
)

// CountUnits lists the units measured by number rather than weight.
var CountUnits = []string{"pieces", "units", "items"}

// UnitTypeFor infers the unit type from a unit name.
func UnitTypeFor(unit string) string {
	for _, u := range CountUnits {
		if u == unit {
			return UnitTypeNumber
		}
	}
	return UnitTypeWeight
}

// MarketRecord is one commodity market transaction.
type MarketRecord struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ProductName       string             `bson:"productName" json:"productName"`
	Quantity          float64            `bson:"quantity" json:"quantity"`
	UnitType          string             `bson:"unitType" json:"unitType"`
	Unit              string             `bson:"unit" json:"unit"`
	SuppliedTo        string             `bson:"suppliedTo" json:"suppliedTo"`
	Date              time.Time          `bson:"date" json:"date"`
	Area              string             `bson:"area" json:"area"`
	PricePerUnit      float64            `bson:"pricePerUnit" json:"pricePerUnit"`
	TotalSellingPrice float64            `bson:"totalSellingPrice" json:"totalSellingPrice"`
	Currency          string             `bson:"currency" json:"currency"`
	Category          string             `bson:"category" json:"category"`
	Quality           string             `bson:"quality" json:"quality"`
	Supplier          string             `bson:"supplier,omitempty" json:"supplier,omitempty"`
	Notes             string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedBy         primitive.ObjectID `bson:"createdBy" json:"-"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Owner is the display form of the user that created a record.
type Owner struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

// RecordView is a record with its owner reference resolved.
type RecordView struct {
	MarketRecord `bson:",inline"`
	CreatedBy    Owner `bson:"-" json:"createdBy"`
}

// NewRecordView pairs a record with its owner. Unknown owners keep only the id.
func NewRecordView(rec MarketRecord, owners map[primitive.ObjectID]Owner) RecordView {
	owner, ok := owners[rec.CreatedBy]
	if !ok {
		owner = Owner{ID: rec.CreatedBy}
	}
	return RecordView{MarketRecord: rec, CreatedBy: owner}
}

// Pagination describes where a page sits in a filtered listing.
type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// RecordPage is one page of a listing.
type RecordPage struct {
	Data       []RecordView `json:"data"`
	Pagination Pagination   `json:"pagination"`
}

package testutil

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
)

// NewUser returns an active account with a fresh id.
func NewUser(name string, role models.Role) models.User {
	return models.User{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Email:    name + "@example.com",
		Role:     role.String(),
		IsActive: true,
	}
}

// Record returns a valid record owned by owner with the derived total set.
func Record(owner primitive.ObjectID, product, area string, qty, price float64, date time.Time) models.MarketRecord {
	return models.MarketRecord{
		ID:                primitive.NewObjectID(),
		ProductName:       product,
		Quantity:          qty,
		UnitType:          models.DefaultUnitType,
		Unit:              models.DefaultUnit,
		SuppliedTo:        "Metro Supermarket",
		Date:              date,
		Area:              area,
		PricePerUnit:      price,
		TotalSellingPrice: qty * price,
		Currency:          models.DefaultCurrency,
		Category:          models.DefaultCategory,
		Quality:           models.DefaultQuality,
		CreatedBy:         owner,
		CreatedAt:         date,
		UpdatedAt:         date,
	}
}

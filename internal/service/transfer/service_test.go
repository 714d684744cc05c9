package transfer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
	"github.com/mamadbah2/meatmarket/internal/testutil"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newService(store *testutil.MemoryStore, users ...models.User) *Service {
	svc := NewService(store, testutil.NewDirectory(users...), nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestImport_collectsRowErrorsAndInsertsTheRest(t *testing.T) {
	owner := testutil.NewUser("karim", models.RoleUser)
	store := testutil.NewMemoryStore()

	upload := strings.Join([]string{
		"Product Name,Quantity,Supplied To,Date,Area,Price Per Unit,Unit",
		"Beef,100,Metro,2024-01-15,Dhaka,450,kg",
		"Chicken,200,Metro,2024-01-16,,200,kg",
		"Pork,abc,Metro,2024-01-17,Sylhet,300,kg",
		"Mutton,50,Metro,2024-01-18,Sylhet,650,kg",
		"Fish,12,Metro,2024-01-19,Khulna,80,pieces",
		"Beef,Inf,Metro,2024-01-20,Dhaka,450,kg",
		"Beef,1e308,Metro,2024-01-21,Dhaka,10,kg",
	}, "\n")

	var report models.ImportReport
	var err error
	require.NotPanics(t, func() {
		report, err = newService(store, owner).Import(context.Background(), owner.Identity(), strings.NewReader(upload))
	})
	require.NoError(t, err)

	assert.Equal(t, "Successfully uploaded 2 entries", report.Message)
	assert.Equal(t, 2, report.Uploaded)
	assert.Equal(t, 5, report.Errors)
	require.Len(t, report.ErrorDetails, 5)
	assert.Equal(t, "Row 2: area: This field is required", report.ErrorDetails[0])
	assert.Equal(t, "Row 3: quantity: Must be a number", report.ErrorDetails[1])
	assert.True(t, strings.HasPrefix(report.ErrorDetails[2], "Row 4: productName: Must be one of: Beef"), report.ErrorDetails[2])
	assert.Equal(t, "Row 6: quantity: Must be a number", report.ErrorDetails[3])
	assert.Equal(t, "Row 7: totalSellingPrice: Total selling price is out of range", report.ErrorDetails[4])

	stored := store.All()
	require.Len(t, stored, 2)
	for _, rec := range stored {
		assert.Equal(t, owner.ID, rec.CreatedBy)
		assert.Equal(t, rec.Quantity*rec.PricePerUnit, rec.TotalSellingPrice)
		assert.Equal(t, fixedNow, rec.CreatedAt)
	}
	assert.Equal(t, models.UnitTypeWeight, stored[0].UnitType)
	assert.Equal(t, models.UnitTypeNumber, stored[1].UnitType)
	assert.Equal(t, "pieces", stored[1].Unit)
}

func TestImport_acceptsFieldNameHeadersAndDefaults(t *testing.T) {
	owner := testutil.NewUser("karim", models.RoleUser)
	store := testutil.NewMemoryStore()

	upload := "productName,quantity,suppliedTo,area,pricePerUnit,category\n" +
		"Lamb,3,Hotel Star,Rajshahi,700,demand\n"

	report, err := newService(store).Import(context.Background(), owner.Identity(), strings.NewReader(upload))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Uploaded)
	assert.Empty(t, report.ErrorDetails)

	rec := store.All()[0]
	assert.Equal(t, "Lamb", rec.ProductName)
	assert.Equal(t, models.CategoryDemand, rec.Category)
	assert.Equal(t, models.DefaultQuality, rec.Quality)
	assert.Equal(t, models.DefaultCurrency, rec.Currency)
	assert.Equal(t, fixedNow, rec.Date)
	assert.Equal(t, 2100.0, rec.TotalSellingPrice)
}

func TestImport_rowMissingEveryRequiredField(t *testing.T) {
	upload := "Product Name,Quantity,Supplied To,Area,Price Per Unit,Notes\n" +
		",,,,,only notes\n"

	report, err := newService(testutil.NewMemoryStore()).Import(context.Background(), models.Identity{}, strings.NewReader(upload))
	require.NoError(t, err)
	require.Len(t, report.ErrorDetails, 1)
	assert.Equal(t,
		"Row 1: area: This field is required; pricePerUnit: This field is required; productName: This field is required; quantity: This field is required; suppliedTo: This field is required",
		report.ErrorDetails[0])
}

func TestImport_emptyFile(t *testing.T) {
	report, err := newService(testutil.NewMemoryStore()).Import(context.Background(), models.Identity{}, strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "Successfully uploaded 0 entries", report.Message)
	assert.Equal(t, 0, report.Uploaded)
	assert.NotNil(t, report.ErrorDetails)
}

func TestImport_storeFailure(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.FailWith = errors.New("write concern timeout")

	upload := "Product Name,Quantity,Supplied To,Area,Price Per Unit\nBeef,1,Metro,Dhaka,2\n"
	_, err := newService(store).Import(context.Background(), models.Identity{}, strings.NewReader(upload))
	assert.ErrorIs(t, err, store.FailWith)
}

func TestExport_emptyStore(t *testing.T) {
	var buf bytes.Buffer
	err := newService(testutil.NewMemoryStore()).Export(context.Background(), &buf)
	assert.ErrorIs(t, err, models.ErrNothingToExport)
	assert.Zero(t, buf.Len())
}

func TestExport_quotesEveryValue(t *testing.T) {
	owner := testutil.NewUser("karim", models.RoleUser)
	rec := testutil.Record(owner.ID, "Beef", "Dhaka", 100, 450, time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC))
	rec.Notes = `ask for "halal" cert`

	var buf bytes.Buffer
	require.NoError(t, newService(testutil.NewMemoryStore(rec), owner).Export(context.Background(), &buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Product Name,Quantity,Unit,Supplied To,Date,Area,Price Per Unit,Currency,Category,Quality,Supplier,Notes,Created By", lines[0])
	assert.Equal(t,
		`"Beef","100","kg","Metro Supermarket","2024-01-15","Dhaka","450","USD","supply","Standard","","ask for ""halal"" cert","karim"`,
		lines[1])
}

func TestExportThenImport_roundTrips(t *testing.T) {
	owner := testutil.NewUser("karim", models.RoleUser)
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

	beef := testutil.Record(owner.ID, "Beef", "Dhaka", 100, 450.5, day(1))
	beef.Notes = `contains "quotes", commas`
	fish := testutil.Record(owner.ID, "Fish", "Khulna", 12, 80, day(2))
	fish.Unit, fish.UnitType = "pieces", models.UnitTypeNumber
	fish.Category, fish.Quality, fish.Currency = models.CategoryDemand, models.QualityPremium, "EUR"
	fish.Supplier = "Padma Fisheries"

	var buf bytes.Buffer
	require.NoError(t, newService(testutil.NewMemoryStore(beef, fish), owner).Export(context.Background(), &buf))

	target := testutil.NewMemoryStore()
	report, err := newService(target).Import(context.Background(), owner.Identity(), &buf)
	require.NoError(t, err)
	require.Empty(t, report.ErrorDetails)
	require.Equal(t, 2, report.Uploaded)

	// Export lists newest first.
	for i, want := range []models.MarketRecord{fish, beef} {
		got := target.All()[i]
		assert.Equal(t, want.ProductName, got.ProductName)
		assert.Equal(t, want.Quantity, got.Quantity)
		assert.Equal(t, want.Unit, got.Unit)
		assert.Equal(t, want.UnitType, got.UnitType)
		assert.Equal(t, want.SuppliedTo, got.SuppliedTo)
		assert.True(t, want.Date.Equal(got.Date), "date %s != %s", want.Date, got.Date)
		assert.Equal(t, want.Area, got.Area)
		assert.Equal(t, want.PricePerUnit, got.PricePerUnit)
		assert.Equal(t, want.TotalSellingPrice, got.TotalSellingPrice)
		assert.Equal(t, want.Currency, got.Currency)
		assert.Equal(t, want.Category, got.Category)
		assert.Equal(t, want.Quality, got.Quality)
		assert.Equal(t, want.Supplier, got.Supplier)
		assert.Equal(t, want.Notes, got.Notes)
	}
}

func TestRows_resolvesOwnerNames(t *testing.T) {
	owner := testutil.NewUser("karim", models.RoleUser)
	stranger := testutil.Record(testutil.NewUser("gone", models.RoleUser).ID, "Pork", "Dhaka", 1, 1, fixedNow)
	mine := testutil.Record(owner.ID, "Beef", "Dhaka", 1, 1, fixedNow.Add(-time.Hour))

	rows, err := newService(testutil.NewMemoryStore(stranger, mine), owner).Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "", rows[1][12])
	assert.Equal(t, "karim", rows[2][12])
}

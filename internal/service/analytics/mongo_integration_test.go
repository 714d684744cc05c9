package analytics

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
	"github.com/mamadbah2/meatmarket/internal/query"
	"github.com/mamadbah2/meatmarket/internal/repository/mongodb"
	"github.com/mamadbah2/meatmarket/internal/testutil"
)

// newMongoService runs the pipelines against a real server. It needs
// MONGODB_TEST_URI and uses a throwaway database.
func newMongoService(t *testing.T, recs ...models.MarketRecord) *Service {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongodb.NewClient(ctx, uri, "meatmarket_test_"+primitive.NewObjectID().Hex())
	require.NoError(t, err)

	coll := client.Collection("meatdatas")
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = coll.Database().Drop(ctx)
		_ = client.Close(ctx)
	})

	repo := mongodb.NewRecordRepository(coll, nil)
	require.NoError(t, repo.InsertMany(ctx, recs))

	svc := NewService(repo, testutil.NewDirectory(), nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func seedRecord(product, area, category string, qty, price float64, date time.Time) models.MarketRecord {
	rec := testutil.Record(primitive.NewObjectID(), product, area, qty, price, date)
	rec.Category = category
	return rec
}

func TestMongo_dashboardTotals(t *testing.T) {
	svc := newMongoService(t,
		seedRecord("Beef", "Dhaka", "supply", 100, 450, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)),
		seedRecord("Chicken", "Chittagong", "demand", 200, 200, time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC)),
		seedRecord("Mutton", "Sylhet", "production", 50, 650, time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)),
	)

	got, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), got.Summary.TotalEntries)
	assert.Equal(t, 117500.0, got.Summary.TotalMarketValue)
	assert.Equal(t, 3, got.Summary.ProductTypes)
	assert.Equal(t, 350.0, got.Summary.TotalSupply)

	require.Len(t, got.MonthlyTrends, 2)
	assert.Equal(t, "2024-04", got.MonthlyTrends[0].Period)
	assert.Equal(t, "2024-05", got.MonthlyTrends[1].Period)
	assert.Len(t, got.RecentEntries, 3)
}

func TestMongo_supplyDemandAndSeasons(t *testing.T) {
	svc := newMongoService(t,
		seedRecord("Beef", "Dhaka", "supply", 100, 450, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)),
		seedRecord("Beef", "Dhaka", "demand", 150, 470, time.Date(2024, 12, 3, 0, 0, 0, 0, time.UTC)),
		seedRecord("Chicken", "Sylhet", "demand", 20, 200, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)),
	)
	ctx := context.Background()

	balance, err := svc.SupplyDemand(ctx, query.Criteria{})
	require.NoError(t, err)
	require.Len(t, balance, 2)
	assert.Equal(t, -50.0, balance[0].Balance)
	require.NotNil(t, balance[0].DemandSupplyRatio)
	assert.Equal(t, 1.5, *balance[0].DemandSupplyRatio)
	assert.Nil(t, balance[1].DemandSupplyRatio)

	seasonal, err := svc.Seasonal(ctx, query.Criteria{})
	require.NoError(t, err)
	require.Len(t, seasonal, 2)
	assert.Equal(t, "Beef", seasonal[0].ProductName)
	assert.Equal(t, "Winter", seasonal[0].Season)
	require.Len(t, seasonal[0].MonthlyData, 2)
	assert.Equal(t, 1, seasonal[0].MonthlyData[0].Month)
	assert.Equal(t, "Summer", seasonal[1].Season)

	regional, err := svc.Regional(ctx, query.Criteria{Area: "dhaka"})
	require.NoError(t, err)
	require.Len(t, regional, 1)
	assert.Equal(t, 250.0, regional[0].TotalAreaQuantity)
}

func TestMongo_growthWindows(t *testing.T) {
	svc := newMongoService(t,
		seedRecord("Beef", "Dhaka", "supply", 150, 495, fixedNow.AddDate(0, 0, -5)),
		seedRecord("Beef", "Dhaka", "supply", 100, 450, fixedNow.AddDate(0, 0, -45)),
		seedRecord("Chicken", "Dhaka", "supply", 40, 210, fixedNow.AddDate(0, 0, -2)),
		seedRecord("Chicken", "Dhaka", "supply", 99, 99, fixedNow.AddDate(0, 0, -90)),
	)

	got, err := svc.MarketInsights(context.Background(), query.Criteria{})
	require.NoError(t, err)
	require.Len(t, got.GrowthAnalysis, 2)

	beef := got.GrowthAnalysis[0]
	require.NotNil(t, beef.QuantityGrowth)
	assert.Equal(t, 50.0, *beef.QuantityGrowth)

	chicken := got.GrowthAnalysis[1]
	assert.Nil(t, chicken.QuantityGrowth)
	assert.Nil(t, chicken.PriceGrowth)
}

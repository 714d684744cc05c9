// Package analytics computes the dashboard and market reports over the
// record store.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
	"github.com/mamadbah2/meatmarket/internal/metrics"
	"github.com/mamadbah2/meatmarket/internal/query"
	"github.com/mamadbah2/meatmarket/internal/service/records"
)

// Store runs aggregations against the record collection.
type Store interface {
	Aggregate(ctx context.Context, pipeline mongo.Pipeline, results interface{}) error
	Count(ctx context.Context, filter bson.D) (int64, error)
	Recent(ctx context.Context, limit int64) ([]models.MarketRecord, error)
}

// Service builds the analytics reports.
type Service struct {
	store  Store
	owners records.OwnerDirectory
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires an analytics service.
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

type monthKey struct {
	Year  int `bson:"year"`
	Month int `bson:"month"`
}

func (k monthKey) period() string {
	return fmt.Sprintf("%04d-%02d", k.Year, k.Month)
}

type totalsRow struct {
	TotalSupply      float64 `bson:"totalSupply"`
	AvgPrice         float64 `bson:"avgPrice"`
	TotalMarketValue float64 `bson:"totalMarketValue"`
	AvgSellingPrice  float64 `bson:"avgSellingPrice"`
}

type distributionRow struct {
	ProductName   string  `bson:"_id"`
	Count         int64   `bson:"count"`
	TotalQuantity float64 `bson:"totalQuantity"`
	TotalValue    float64 `bson:"totalValue"`
}

type monthlyRow struct {
	Key           monthKey `bson:"_id"`
	TotalQuantity float64  `bson:"totalQuantity"`
	AvgPrice      float64  `bson:"avgPrice"`
	TotalValue    float64  `bson:"totalValue"`
	Count         int64    `bson:"count"`
}

// Dashboard summarises the whole store.
func (s *Service) Dashboard(ctx context.Context) (models.Dashboard, error) {
	defer metrics.ObserveReport("dashboard", time.Now())

	var out models.Dashboard

	total, err := s.store.Count(ctx, bson.D{})
	if err != nil {
		return out, fmt.Errorf("dashboard: count records: %w", err)
	}

	var totals []totalsRow
	if err := s.store.Aggregate(ctx, dashboardTotalsPipeline(), &totals); err != nil {
		return out, fmt.Errorf("dashboard: totals: %w", err)
	}

	var dist []distributionRow
	if err := s.store.Aggregate(ctx, productDistributionPipeline(), &dist); err != nil {
		return out, fmt.Errorf("dashboard: product distribution: %w", err)
	}

	var months []monthlyRow
	if err := s.store.Aggregate(ctx, monthlyTrendsPipeline(), &months); err != nil {
		return out, fmt.Errorf("dashboard: monthly trends: %w", err)
	}

	recent, err := s.store.Recent(ctx, recentEntriesLimit)
	if err != nil {
		return out, fmt.Errorf("dashboard: recent entries: %w", err)
	}
	views, err := records.ResolveOwners(ctx, s.owners, recent)
	if err != nil {
		return out, fmt.Errorf("dashboard: resolve owners: %w", err)
	}

	out.Summary = models.DashboardSummary{
		TotalEntries: total,
		ProductTypes: len(dist),
	}
	if len(totals) > 0 {
		out.Summary.TotalSupply = totals[0].TotalSupply
		out.Summary.AvgPrice = totals[0].AvgPrice
		out.Summary.TotalMarketValue = totals[0].TotalMarketValue
		out.Summary.AvgSellingPrice = totals[0].AvgSellingPrice
	}

	out.ProductDistribution = make([]models.ProductDistribution, len(dist))
	for i, d := range dist {
		out.ProductDistribution[i] = models.ProductDistribution(d)
	}

	// The pipeline yields newest first so the limit keeps the latest months.
	out.MonthlyTrends = make([]models.MonthlyTrend, len(months))
	for i, m := range months {
		out.MonthlyTrends[len(months)-1-i] = models.MonthlyTrend{
			Year:          m.Key.Year,
			Month:         m.Key.Month,
			Period:        m.Key.period(),
			TotalQuantity: m.TotalQuantity,
			AvgPrice:      m.AvgPrice,
			TotalValue:    m.TotalValue,
			Count:         m.Count,
		}
	}

	out.RecentEntries = views
	return out, nil
}

type priceRow struct {
	Key struct {
		ProductName string `bson:"productName"`
		Year        int    `bson:"year"`
		Month       int    `bson:"month"`
	} `bson:"_id"`
	AvgPrice      float64 `bson:"avgPrice"`
	MinPrice      float64 `bson:"minPrice"`
	MaxPrice      float64 `bson:"maxPrice"`
	TotalQuantity float64 `bson:"totalQuantity"`
	Count         int64   `bson:"count"`
}

// PriceTrends returns monthly price points per product in chronological order.
func (s *Service) PriceTrends(ctx context.Context, c query.Criteria) (models.PriceTrends, error) {
	defer metrics.ObserveReport("price_trends", time.Now())

	var rows []priceRow
	if err := s.store.Aggregate(ctx, priceTrendsPipeline(c.Predicate()), &rows); err != nil {
		return nil, fmt.Errorf("price trends: %w", err)
	}

	out := make(models.PriceTrends)
	for _, r := range rows {
		name := r.Key.ProductName
		out[name] = append(out[name], models.PricePoint{
			Period:        monthKey{Year: r.Key.Year, Month: r.Key.Month}.period(),
			AvgPrice:      r.AvgPrice,
			MinPrice:      r.MinPrice,
			MaxPrice:      r.MaxPrice,
			TotalQuantity: r.TotalQuantity,
			Count:         r.Count,
		})
	}
	return out, nil
}

type supplyDemandRow struct {
	Key struct {
		ProductName string `bson:"productName"`
		Area        string `bson:"area"`
	} `bson:"_id"`
	Supply     float64 `bson:"supply"`
	Demand     float64 `bson:"demand"`
	Production float64 `bson:"production"`
	AvgPrice   float64 `bson:"avgPrice"`
}

// SupplyDemand balances supply against demand per product and area.
func (s *Service) SupplyDemand(ctx context.Context, c query.Criteria) ([]models.SupplyDemand, error) {
	defer metrics.ObserveReport("supply_demand", time.Now())

	var rows []supplyDemandRow
	if err := s.store.Aggregate(ctx, supplyDemandPipeline(c.Predicate()), &rows); err != nil {
		return nil, fmt.Errorf("supply demand: %w", err)
	}

	out := make([]models.SupplyDemand, len(rows))
	for i, r := range rows {
		out[i] = models.SupplyDemand{
			ProductName:       r.Key.ProductName,
			Area:              r.Key.Area,
			Supply:            r.Supply,
			Demand:            r.Demand,
			Production:        r.Production,
			AvgPrice:          r.AvgPrice,
			Balance:           r.Supply - r.Demand,
			DemandSupplyRatio: ratio(r.Demand, r.Supply),
		}
	}
	return out, nil
}

type regionalRow struct {
	Area              string                   `bson:"_id"`
	Products          []models.RegionalProduct `bson:"products"`
	TotalAreaQuantity float64                  `bson:"totalAreaQuantity"`
	TotalAreaValue    float64                  `bson:"totalAreaValue"`
	AvgAreaPrice      float64                  `bson:"avgAreaPrice"`
}

// Regional rolls records up per area, highest traded value first.
func (s *Service) Regional(ctx context.Context, c query.Criteria) ([]models.Regional, error) {
	defer metrics.ObserveReport("regional", time.Now())

	var rows []regionalRow
	if err := s.store.Aggregate(ctx, regionalPipeline(c.Predicate()), &rows); err != nil {
		return nil, fmt.Errorf("regional analysis: %w", err)
	}

	out := make([]models.Regional, len(rows))
	for i, r := range rows {
		out[i] = models.Regional(r)
	}
	return out, nil
}

type seasonalRow struct {
	Key struct {
		ProductName string `bson:"productName"`
		Season      string `bson:"season"`
	} `bson:"_id"`
	AvgSeasonPrice      float64                `bson:"avgSeasonPrice"`
	TotalSeasonQuantity float64                `bson:"totalSeasonQuantity"`
	MonthlyData         []models.SeasonalMonth `bson:"monthlyData"`
}

// Seasonal rolls records up per product and season.
func (s *Service) Seasonal(ctx context.Context, c query.Criteria) ([]models.Seasonal, error) {
	defer metrics.ObserveReport("seasonal", time.Now())

	var rows []seasonalRow
	if err := s.store.Aggregate(ctx, seasonalPipeline(c.Predicate()), &rows); err != nil {
		return nil, fmt.Errorf("seasonal trends: %w", err)
	}

	out := make([]models.Seasonal, len(rows))
	for i, r := range rows {
		monthly := r.MonthlyData
		sort.Slice(monthly, func(a, b int) bool { return monthly[a].Month < monthly[b].Month })
		out[i] = models.Seasonal{
			ProductName:         r.Key.ProductName,
			Season:              r.Key.Season,
			AvgSeasonPrice:      r.AvgSeasonPrice,
			TotalSeasonQuantity: r.TotalSeasonQuantity,
			MonthlyData:         monthly,
		}
	}
	return out, nil
}

type topRow struct {
	ProductName   string  `bson:"_id"`
	TotalValue    float64 `bson:"totalValue"`
	TotalQuantity float64 `bson:"totalQuantity"`
	AvgPrice      float64 `bson:"avgPrice"`
	Count         int64   `bson:"count"`
}

type spreadRow struct {
	ProductName string  `bson:"_id"`
	AvgPrice    float64 `bson:"avgPrice"`
	MinPrice    float64 `bson:"minPrice"`
	MaxPrice    float64 `bson:"maxPrice"`
	Count       int64   `bson:"count"`
}

type windowRow struct {
	ProductName string  `bson:"_id"`
	Quantity    float64 `bson:"quantity"`
	AvgPrice    float64 `bson:"avgPrice"`
}

// MarketInsights ranks products, measures their price volatility and compares
// the last 30 days against the 30 days before.
func (s *Service) MarketInsights(ctx context.Context, c query.Criteria) (models.MarketInsights, error) {
	defer metrics.ObserveReport("market_insights", time.Now())

	var out models.MarketInsights
	filter := c.Predicate()

	var top []topRow
	if err := s.store.Aggregate(ctx, topProductsPipeline(filter), &top); err != nil {
		return out, fmt.Errorf("market insights: top products: %w", err)
	}

	var spreads []spreadRow
	if err := s.store.Aggregate(ctx, priceSpreadPipeline(filter), &spreads); err != nil {
		return out, fmt.Errorf("market insights: volatility: %w", err)
	}

	now := s.now().UTC()
	currentFrom := now.Add(-growthWindow)
	previousFrom := now.Add(-2 * growthWindow)

	var current []windowRow
	if err := s.store.Aggregate(ctx, windowPipeline(filter, currentFrom, nil), &current); err != nil {
		return out, fmt.Errorf("market insights: current window: %w", err)
	}

	var previous []windowRow
	if err := s.store.Aggregate(ctx, windowPipeline(filter, previousFrom, &currentFrom), &previous); err != nil {
		return out, fmt.Errorf("market insights: previous window: %w", err)
	}

	out.TopProducts = make([]models.TopProduct, len(top))
	for i, t := range top {
		out.TopProducts[i] = models.TopProduct(t)
	}
	out.VolatilityAnalysis = volatility(spreads)
	out.GrowthAnalysis = growth(current, previous)
	return out, nil
}

func volatility(rows []spreadRow) []models.Volatility {
	out := make([]models.Volatility, len(rows))
	for i, r := range rows {
		index := 0.0
		if r.AvgPrice != 0 {
			index = (r.MaxPrice - r.MinPrice) / r.AvgPrice
		}
		out[i] = models.Volatility{
			ProductName:     r.ProductName,
			AvgPrice:        r.AvgPrice,
			MinPrice:        r.MinPrice,
			MaxPrice:        r.MaxPrice,
			Count:           r.Count,
			PriceRange:      r.MaxPrice - r.MinPrice,
			VolatilityIndex: index,
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].VolatilityIndex != out[b].VolatilityIndex {
			return out[a].VolatilityIndex > out[b].VolatilityIndex
		}
		return out[a].ProductName < out[b].ProductName
	})
	return out
}

func growth(current, previous []windowRow) []models.Growth {
	prior := make(map[string]windowRow, len(previous))
	for _, p := range previous {
		prior[p.ProductName] = p
	}

	out := make([]models.Growth, 0, len(current))
	for _, cur := range current {
		g := models.Growth{
			ProductName:     cur.ProductName,
			CurrentQuantity: cur.Quantity,
			CurrentAvgPrice: cur.AvgPrice,
		}
		if prev, ok := prior[cur.ProductName]; ok {
			g.PreviousQuantity = float64Ptr(prev.Quantity)
			g.PreviousAvgPrice = float64Ptr(prev.AvgPrice)
			g.QuantityGrowth = percentChange(cur.Quantity, prev.Quantity)
			g.PriceGrowth = percentChange(cur.AvgPrice, prev.AvgPrice)
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].ProductName < out[b].ProductName })
	return out
}

// ratio is num/den, or nil when den is zero.
func ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	return float64Ptr(num / den)
}

func percentChange(current, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	return float64Ptr((current - previous) / previous * 100)
}

func float64Ptr(v float64) *float64 { return &v }

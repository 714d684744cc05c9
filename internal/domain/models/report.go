package models

// DashboardSummary holds store-wide totals.
type DashboardSummary struct {
	TotalEntries     int64   `json:"totalEntries"`
	TotalSupply      float64 `json:"totalSupply"`
	AvgPrice         float64 `json:"avgPrice"`
	TotalMarketValue float64 `json:"totalMarketValue"`
	AvgSellingPrice  float64 `json:"avgSellingPrice"`
	ProductTypes     int     `json:"productTypes"`
}

// ProductDistribution is the per-product rollup of the dashboard.
type ProductDistribution struct {
	ProductName   string  `json:"productName"`
	Count         int64   `json:"count"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalValue    float64 `json:"totalValue"`
}

// MonthlyTrend is one calendar month of dashboard activity.
type MonthlyTrend struct {
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	Period        string  `json:"period"`
	TotalQuantity float64 `json:"totalQuantity"`
	AvgPrice      float64 `json:"avgPrice"`
	TotalValue    float64 `json:"totalValue"`
	Count         int64   `json:"count"`
}

// Dashboard is the landing page report.
type Dashboard struct {
	Summary             DashboardSummary      `json:"summary"`
	ProductDistribution []ProductDistribution `json:"productDistribution"`
	RecentEntries       []RecordView          `json:"recentEntries"`
	MonthlyTrends       []MonthlyTrend        `json:"monthlyTrends"`
}

// PricePoint is one product-month of the price trend report.
type PricePoint struct {
	Period        string  `json:"period"`
	AvgPrice      float64 `json:"avgPrice"`
	MinPrice      float64 `json:"minPrice"`
	MaxPrice      float64 `json:"maxPrice"`
	TotalQuantity float64 `json:"totalQuantity"`
	Count         int64   `json:"count"`
}

// PriceTrends maps a product name to its chronological monthly points.
type PriceTrends map[string][]PricePoint

// SupplyDemand is the balance of one product in one area.
type SupplyDemand struct {
	ProductName       string   `json:"productName"`
	Area              string   `json:"area"`
	Supply            float64  `json:"supply"`
	Demand            float64  `json:"demand"`
	Production        float64  `json:"production"`
	AvgPrice          float64  `json:"avgPrice"`
	Balance           float64  `json:"balance"`
	DemandSupplyRatio *float64 `json:"demandSupplyRatio"`
}

// RegionalProduct is the per-product breakdown inside an area.
type RegionalProduct struct {
	ProductName   string  `bson:"productName" json:"productName"`
	TotalQuantity float64 `bson:"totalQuantity" json:"totalQuantity"`
	AvgPrice      float64 `bson:"avgPrice" json:"avgPrice"`
	MinPrice      float64 `bson:"minPrice" json:"minPrice"`
	MaxPrice      float64 `bson:"maxPrice" json:"maxPrice"`
	Count         int64   `bson:"count" json:"count"`
	TotalValue    float64 `bson:"totalValue" json:"totalValue"`
}

// Regional is the rollup of one area.
type Regional struct {
	Area              string            `json:"area"`
	Products          []RegionalProduct `json:"products"`
	TotalAreaQuantity float64           `json:"totalAreaQuantity"`
	TotalAreaValue    float64           `json:"totalAreaValue"`
	AvgAreaPrice      float64           `json:"avgAreaPrice"`
}

// SeasonalMonth is one calendar month inside a seasonal rollup.
type SeasonalMonth struct {
	Month         int     `bson:"month" json:"month"`
	AvgPrice      float64 `bson:"avgPrice" json:"avgPrice"`
	TotalQuantity float64 `bson:"totalQuantity" json:"totalQuantity"`
	Count         int64   `bson:"count" json:"count"`
}

// Seasonal is the rollup of one product over one season.
type Seasonal struct {
	ProductName         string          `json:"productName"`
	Season              string          `json:"season"`
	AvgSeasonPrice      float64         `json:"avgSeasonPrice"`
	TotalSeasonQuantity float64         `json:"totalSeasonQuantity"`
	MonthlyData         []SeasonalMonth `json:"monthlyData"`
}

// TopProduct ranks a product by traded value.
type TopProduct struct {
	ProductName   string  `json:"productName"`
	TotalValue    float64 `json:"totalValue"`
	TotalQuantity float64 `json:"totalQuantity"`
	AvgPrice      float64 `json:"avgPrice"`
	Count         int64   `json:"count"`
}

// Volatility describes the price spread of a product.
type Volatility struct {
	ProductName     string  `json:"productName"`
	AvgPrice        float64 `json:"avgPrice"`
	MinPrice        float64 `json:"minPrice"`
	MaxPrice        float64 `json:"maxPrice"`
	Count           int64   `json:"count"`
	PriceRange      float64 `json:"priceRange"`
	VolatilityIndex float64 `json:"volatilityIndex"`
}

// Growth compares the trailing 30 days of a product against the 30 days before.
type Growth struct {
	ProductName      string   `json:"productName"`
	CurrentQuantity  float64  `json:"currentQuantity"`
	PreviousQuantity *float64 `json:"previousQuantity"`
	QuantityGrowth   *float64 `json:"quantityGrowth"`
	CurrentAvgPrice  float64  `json:"currentAvgPrice"`
	PreviousAvgPrice *float64 `json:"previousAvgPrice"`
	PriceGrowth      *float64 `json:"priceGrowth"`
}

// MarketInsights bundles the ranking, volatility and growth reports.
type MarketInsights struct {
	TopProducts        []TopProduct `json:"topProducts"`
	VolatilityAnalysis []Volatility `json:"volatilityAnalysis"`
	GrowthAnalysis     []Growth     `json:"growthAnalysis"`
}

// ImportReport summarises a bulk upload.
type ImportReport struct {
	Message      string   `json:"message"`
	Uploaded     int      `json:"uploaded"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"errorDetails"`
}

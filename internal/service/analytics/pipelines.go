package analytics

import (
	"time"

	"github.com/mamadbah2/meatmarket/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	topProductsLimit   = 5
	recentEntriesLimit = 5
	monthlyTrendMonths = 12
	growthWindow       = 30 * 24 * time.Hour
)

var (
	yearOfDate  = bson.D{{Key: "$year", Value: "$date"}}
	monthOfDate = bson.D{{Key: "$month", Value: "$date"}}
	lineValue   = bson.D{{Key: "$multiply", Value: bson.A{"$quantity", "$pricePerUnit"}}}
)

func sum(expr interface{}) bson.D { return bson.D{{Key: "$sum", Value: expr}} }
func avg(expr interface{}) bson.D { return bson.D{{Key: "$avg", Value: expr}} }
func minOf(expr interface{}) bson.D { return bson.D{{Key: "$min", Value: expr}} }
func maxOf(expr interface{}) bson.D { return bson.D{{Key: "$max", Value: expr}} }

func match(filter bson.D) bson.D {
	return bson.D{{Key: "$match", Value: filter}}
}

func group(fields ...bson.E) bson.D {
	return bson.D{{Key: "$group", Value: bson.D(fields)}}
}

func sortBy(fields ...bson.E) bson.D {
	return bson.D{{Key: "$sort", Value: bson.D(fields)}}
}

// sumIfCategory totals the pre-grouped quantity of one category.
func sumIfCategory(category string) bson.D {
	return sum(bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$_id.category", category}}},
		"$totalQuantity",
		0,
	}}})
}

func dashboardTotalsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		group(
			bson.E{Key: "_id", Value: nil},
			bson.E{Key: "totalSupply", Value: sum("$quantity")},
			bson.E{Key: "avgPrice", Value: avg("$pricePerUnit")},
			bson.E{Key: "totalMarketValue", Value: sum("$totalSellingPrice")},
			bson.E{Key: "avgSellingPrice", Value: avg("$totalSellingPrice")},
		),
	}
}

func productDistributionPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		group(
			bson.E{Key: "_id", Value: "$productName"},
			bson.E{Key: "count", Value: sum(1)},
			bson.E{Key: "totalQuantity", Value: sum("$quantity")},
			bson.E{Key: "totalValue", Value: sum("$totalSellingPrice")},
		),
		sortBy(bson.E{Key: "totalValue", Value: -1}, bson.E{Key: "_id", Value: 1}),
	}
}

// monthlyTrendsPipeline returns the latest months first; callers reverse it.
func monthlyTrendsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		group(
			bson.E{Key: "_id", Value: bson.D{{Key: "year", Value: yearOfDate}, {Key: "month", Value: monthOfDate}}},
			bson.E{Key: "totalQuantity", Value: sum("$quantity")},
			bson.E{Key: "avgPrice", Value: avg("$pricePerUnit")},
			bson.E{Key: "totalValue", Value: sum("$totalSellingPrice")},
			bson.E{Key: "count", Value: sum(1)},
		),
		sortBy(bson.E{Key: "_id.year", Value: -1}, bson.E{Key: "_id.month", Value: -1}),
		bson.D{{Key: "$limit", Value: monthlyTrendMonths}},
	}
}

func priceTrendsPipeline(filter bson.D) mongo.Pipeline {
	return mongo.Pipeline{
		match(filter),
		group(
			bson.E{Key: "_id", Value: bson.D{
				{Key: "productName", Value: "$productName"},
				{Key: "year", Value: yearOfDate},
				{Key: "month", Value: monthOfDate},
			}},
			bson.E{Key: "avgPrice", Value: avg("$pricePerUnit")},
			bson.E{Key: "minPrice", Value: minOf("$pricePerUnit")},
			bson.E{Key: "maxPrice", Value: maxOf("$pricePerUnit")},
			bson.E{Key: "totalQuantity", Value: sum("$quantity")},
			bson.E{Key: "count", Value: sum(1)},
		),
		sortBy(
			bson.E{Key: "_id.year", Value: 1},
			bson.E{Key: "_id.month", Value: 1},
			bson.E{Key: "_id.productName", Value: 1},
		),
	}
}

func supplyDemandPipeline(filter bson.D) mongo.Pipeline {
	return mongo.Pipeline{
		match(filter),
		group(
			bson.E{Key: "_id", Value: bson.D{
				{Key: "productName", Value: "$productName"},
				{Key: "area", Value: "$area"},
				{Key: "category", Value: "$category"},
			}},
			bson.E{Key: "totalQuantity", Value: sum("$quantity")},
			bson.E{Key: "avgPrice", Value: avg("$pricePerUnit")},
		),
		group(
			bson.E{Key: "_id", Value: bson.D{
				{Key: "productName", Value: "$_id.productName"},
				{Key: "area", Value: "$_id.area"},
			}},
			bson.E{Key: "supply", Value: sumIfCategory("supply")},
			bson.E{Key: "demand", Value: sumIfCategory("demand")},
			bson.E{Key: "production", Value: sumIfCategory("production")},
			bson.E{Key: "avgPrice", Value: avg("$avgPrice")},
		),
		sortBy(bson.E{Key: "_id.productName", Value: 1}, bson.E{Key: "_id.area", Value: 1}),
	}
}

func regionalPipeline(filter bson.D) mongo.Pipeline {
	return mongo.Pipeline{
		match(filter),
		group(
			bson.E{Key: "_id", Value: bson.D{{Key: "area", Value: "$area"}, {Key: "productName", Value: "$productName"}}},
			bson.E{Key: "totalQuantity", Value: sum("$quantity")},
			bson.E{Key: "avgPrice", Value: avg("$pricePerUnit")},
			bson.E{Key: "minPrice", Value: minOf("$pricePerUnit")},
			bson.E{Key: "maxPrice", Value: maxOf("$pricePerUnit")},
			bson.E{Key: "count", Value: sum(1)},
			bson.E{Key: "totalValue", Value: sum(lineValue)},
		),
		sortBy(bson.E{Key: "_id.productName", Value: 1}),
		group(
			bson.E{Key: "_id", Value: "$_id.area"},
			bson.E{Key: "products", Value: bson.D{{Key: "$push", Value: bson.D{
				{Key: "productName", Value: "$_id.productName"},
				{Key: "totalQuantity", Value: "$totalQuantity"},
				{Key: "avgPrice", Value: "$avgPrice"},
				{Key: "minPrice", Value: "$minPrice"},
				{Key: "maxPrice", Value: "$maxPrice"},
				{Key: "count", Value: "$count"},
				{Key: "totalValue", Value: "$totalValue"},
			}}}},
			bson.E{Key: "totalAreaQuantity", Value: sum("$totalQuantity")},
			bson.E{Key: "totalAreaValue", Value: sum("$totalValue")},
			bson.E{Key: "avgAreaPrice", Value: avg("$avgPrice")},
		),
		sortBy(bson.E{Key: "totalAreaValue", Value: -1}, bson.E{Key: "_id", Value: 1}),
	}
}

func seasonalPipeline(filter bson.D) mongo.Pipeline {
	return mongo.Pipeline{
		match(filter),
		bson.D{{Key: "$addFields", Value: bson.D{{Key: "month", Value: monthOfDate}}}},
		bson.D{{Key: "$addFields", Value: bson.D{{Key: "season", Value: seasonSwitch("$month")}}}},
		group(
			bson.E{Key: "_id", Value: bson.D{
				{Key: "productName", Value: "$productName"},
				{Key: "season", Value: "$season"},
				{Key: "month", Value: "$month"},
			}},
			bson.E{Key: "avgPrice", Value: avg("$pricePerUnit")},
			bson.E{Key: "totalQuantity", Value: sum("$quantity")},
			bson.E{Key: "count", Value: sum(1)},
		),
		group(
			bson.E{Key: "_id", Value: bson.D{
				{Key: "productName", Value: "$_id.productName"},
				{Key: "season", Value: "$_id.season"},
			}},
			bson.E{Key: "avgSeasonPrice", Value: avg("$avgPrice")},
			bson.E{Key: "totalSeasonQuantity", Value: sum("$totalQuantity")},
			bson.E{Key: "monthlyData", Value: bson.D{{Key: "$push", Value: bson.D{
				{Key: "month", Value: "$_id.month"},
				{Key: "avgPrice", Value: "$avgPrice"},
				{Key: "totalQuantity", Value: "$totalQuantity"},
				{Key: "count", Value: "$count"},
			}}}},
		),
		sortBy(bson.E{Key: "_id.productName", Value: 1}, bson.E{Key: "_id.season", Value: 1}),
	}
}

func topProductsPipeline(filter bson.D) mongo.Pipeline {
	return mongo.Pipeline{
		match(filter),
		group(
			bson.E{Key: "_id", Value: "$productName"},
			bson.E{Key: "totalValue", Value: sum(lineValue)},
			bson.E{Key: "totalQuantity", Value: sum("$quantity")},
			bson.E{Key: "avgPrice", Value: avg("$pricePerUnit")},
			bson.E{Key: "count", Value: sum(1)},
		),
		sortBy(bson.E{Key: "totalValue", Value: -1}, bson.E{Key: "_id", Value: 1}),
		bson.D{{Key: "$limit", Value: topProductsLimit}},
	}
}

func priceSpreadPipeline(filter bson.D) mongo.Pipeline {
	return mongo.Pipeline{
		match(filter),
		group(
			bson.E{Key: "_id", Value: "$productName"},
			bson.E{Key: "avgPrice", Value: avg("$pricePerUnit")},
			bson.E{Key: "minPrice", Value: minOf("$pricePerUnit")},
			bson.E{Key: "maxPrice", Value: maxOf("$pricePerUnit")},
			bson.E{Key: "count", Value: sum(1)},
		),
	}
}

// windowPipeline totals quantity and mean price per product for dates in
// [from, to). A nil to leaves the window open-ended.
func windowPipeline(filter bson.D, from time.Time, to *time.Time) mongo.Pipeline {
	window := bson.D{{Key: "$gte", Value: from}}
	if to != nil {
		window = append(window, bson.E{Key: "$lt", Value: *to})
	}
	return mongo.Pipeline{
		match(query.And(filter, bson.D{{Key: "date", Value: window}})),
		group(
			bson.E{Key: "_id", Value: "$productName"},
			bson.E{Key: "quantity", Value: sum("$quantity")},
			bson.E{Key: "avgPrice", Value: avg("$pricePerUnit")},
		),
		sortBy(bson.E{Key: "_id", Value: 1}),
	}
}

package analytics

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

type season struct {
	name   string
	months []time.Month
}

// seasons drives both the aggregation pipeline and SeasonOf.
var seasons = []season{
	{"Winter", []time.Month{time.December, time.January, time.February}},
	{"Spring", []time.Month{time.March, time.April, time.May}},
	{"Summer", []time.Month{time.June, time.July, time.August}},
	{"Fall", []time.Month{time.September, time.October, time.November}},
}

// SeasonOf names the season a calendar month belongs to.
func SeasonOf(m time.Month) string {
	for _, s := range seasons {
		for _, month := range s.months {
			if month == m {
				return s.name
			}
		}
	}
	return "Unknown"
}

// seasonSwitch maps the document's month field to its season name.
func seasonSwitch(monthField string) bson.D {
	branches := make(bson.A, 0, len(seasons))
	for _, s := range seasons {
		months := make(bson.A, len(s.months))
		for i, m := range s.months {
			months[i] = int(m)
		}
		branches = append(branches, bson.D{
			{Key: "case", Value: bson.D{{Key: "$in", Value: bson.A{monthField, months}}}},
			{Key: "then", Value: s.name},
		})
	}
	return bson.D{{Key: "$switch", Value: bson.D{
		{Key: "branches", Value: branches},
		{Key: "default", Value: "Unknown"},
	}}}
}

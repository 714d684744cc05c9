package transfer

// column maps one record field to the header spellings accepted on import.
type column struct {
	field   string
	aliases []string
}

// importColumns is consulted once per upload; the first alias found in the
// header wins.
var importColumns = []column{
	{"productName", []string{"productName", "Product Name"}},
	{"quantity", []string{"quantity", "Quantity"}},
	{"suppliedTo", []string{"suppliedTo", "Supplied To"}},
	{"date", []string{"date", "Date"}},
	{"area", []string{"area", "Area"}},
	{"pricePerUnit", []string{"pricePerUnit", "Price Per Unit"}},
	{"unit", []string{"unit", "Unit"}},
	{"unitType", []string{"unitType", "Unit Type"}},
	{"currency", []string{"currency", "Currency"}},
	{"category", []string{"category", "Category"}},
	{"quality", []string{"quality", "Quality"}},
	{"supplier", []string{"supplier", "Supplier"}},
	{"notes", []string{"notes", "Notes"}},
}

// exportHeader is the fixed column order of an export.
var exportHeader = []string{
	"Product Name",
	"Quantity",
	"Unit",
	"Supplied To",
	"Date",
	"Area",
	"Price Per Unit",
	"Currency",
	"Category",
	"Quality",
	"Supplier",
	"Notes",
	"Created By",
}

// headerIndex resolves each known field to its position in header.
func headerIndex(header []string) map[string]int {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	index := make(map[string]int, len(importColumns))
	for _, col := range importColumns {
		for _, alias := range col.aliases {
			if i, ok := pos[alias]; ok {
				index[col.field] = i
				break
			}
		}
	}
	return index
}

// row reads named fields out of one CSV record.
type row struct {
	index  map[string]int
	values []string
}

func (r row) get(field string) string {
	i, ok := r.index[field]
	if !ok || i >= len(r.values) {
		return ""
	}
	return r.values[i]
}

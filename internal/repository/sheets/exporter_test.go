package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/mamadbah2/meatmarket/internal/config"
)

type recordedCall struct {
	method string
	path   string
	query  string
	body   map[string]interface{}
}

func newSheetsServer(t *testing.T, status int) (*httptest.Server, *[]recordedCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := recordedCall{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		_ = json.NewDecoder(r.Body).Decode(&call.body)
		mu.Lock()
		calls = append(calls, call)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestExporter(t *testing.T, srv *httptest.Server) *Exporter {
	t.Helper()
	cfg := config.SheetsConfig{SpreadsheetID: "sheet-123", ExportRange: "Export!A1"}
	exp, err := NewExporter(context.Background(), cfg, nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return exp
}

func TestExport_clearsThenWrites(t *testing.T) {
	srv, calls := newSheetsServer(t, http.StatusOK)
	exp := newTestExporter(t, srv)

	rows := [][]string{
		{"Product Name", "Quantity"},
		{"Beef", "100"},
	}
	require.NoError(t, exp.Export(context.Background(), rows))

	require.Len(t, *calls, 2)
	clear, update := (*calls)[0], (*calls)[1]

	assert.Equal(t, http.MethodPost, clear.method)
	assert.Equal(t, "/v4/spreadsheets/sheet-123/values/Export:clear", clear.path)

	assert.Equal(t, http.MethodPut, update.method)
	assert.Equal(t, "/v4/spreadsheets/sheet-123/values/Export!A1", update.path)
	assert.Contains(t, update.query, "valueInputOption=RAW")
	assert.Equal(t, []interface{}{
		[]interface{}{"Product Name", "Quantity"},
		[]interface{}{"Beef", "100"},
	}, update.body["values"])
}

func TestExport_surfacesAPIErrors(t *testing.T) {
	srv, calls := newSheetsServer(t, http.StatusForbidden)
	exp := newTestExporter(t, srv)

	err := exp.Export(context.Background(), [][]string{{"Product Name"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear sheet Export")
	assert.Len(t, *calls, 1)
}

func TestNewExporter_requiresRange(t *testing.T) {
	_, err := NewExporter(context.Background(), config.SheetsConfig{SpreadsheetID: "x"}, nil)
	assert.Error(t, err)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Export", sheetName("Export!A1"))
	assert.Equal(t, "Data", sheetName("Data"))
	assert.Equal(t, "'My!Sheet'", sheetName("'My!Sheet'!B2"))
}

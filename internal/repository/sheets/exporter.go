package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/meatmarket/internal/config"
)

// Exporter replaces the contents of one sheet with export rows.
type Exporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	sheetRange    string
	logger        *zap.Logger
}

// NewExporter builds a Google Sheets backed exporter. Extra client options
// are appended after the credentials file.
func NewExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger, opts ...option.ClientOption) (*Exporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ExportRange == "" {
		return nil, fmt.Errorf("sheets export range must not be empty")
	}

	clientOpts := []option.ClientOption{option.WithScopes(sheetsapi.SpreadsheetsScope)}
	if cfg.CredentialsPath != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsPath))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := sheetsapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &Exporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetRange:    cfg.ExportRange,
		logger:        logger,
	}, nil
}

// Export clears the target sheet and writes rows starting at the configured range.
func (e *Exporter) Export(ctx context.Context, rows [][]string) error {
	sheet := sheetName(e.sheetRange)
	if _, err := e.service.Spreadsheets.Values.Clear(e.spreadsheetID, sheet, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", sheet, err)
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, v := range row {
			values[i][j] = v
		}
	}

	payload := &sheetsapi.ValueRange{Values: values}
	call := e.service.Spreadsheets.Values.Update(e.spreadsheetID, e.sheetRange, payload).
		ValueInputOption("RAW").
		Context(ctx)
	if _, err := call.Do(); err != nil {
		return fmt.Errorf("write range %s: %w", e.sheetRange, err)
	}

	e.logger.Info("records exported to sheet",
		zap.String("range", e.sheetRange),
		zap.Int("rows", len(rows)))
	return nil
}

// sheetName is the sheet part of an A1 range ("Export!A1" -> "Export").
func sheetName(a1 string) string {
	if i := strings.LastIndex(a1, "!"); i >= 0 {
		return a1[:i]
	}
	return a1
}

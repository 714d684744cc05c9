package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/meatmarket/internal/service/transfer"
)

// SheetExporter writes export rows to a spreadsheet.
type SheetExporter interface {
	Export(ctx context.Context, rows [][]string) error
}

// TransferHandler serves CSV upload and the exports.
type TransferHandler struct {
	svc      *transfer.Service
	sheets   SheetExporter
	maxBytes int64
	logger   *zap.Logger
}

// NewTransferHandler constructs the HTTP handler adapter. sheets may be nil
// when spreadsheet export is not configured.
func NewTransferHandler(svc *transfer.Service, sheets SheetExporter, maxBytes int64, logger *zap.Logger) *TransferHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferHandler{svc: svc, sheets: sheets, maxBytes: maxBytes, logger: logger}
}

// Upload imports the multipart field "file".
func (h *TransferHandler) Upload(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}

	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "File too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}

	file, err := header.Open()
	if err != nil {
		writeError(c, h.logger, err, "Error processing CSV file")
		return
	}
	defer file.Close()

	report, err := h.svc.Import(c.Request.Context(), actor, file)
	if err != nil {
		writeError(c, h.logger, err, "Error processing CSV file")
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportCSV downloads every record as CSV.
func (h *TransferHandler) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.Export(c.Request.Context(), &buf); err != nil {
		writeError(c, h.logger, err, "Server error during export")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+transfer.ExportFilename+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// ExportSheets writes every record to the configured spreadsheet.
func (h *TransferHandler) ExportSheets(c *gin.Context) {
	if h.sheets == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Google Sheets export is not configured"})
		return
	}

	rows, err := h.svc.Rows(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, "Server error during export")
		return
	}
	if err := h.sheets.Export(c.Request.Context(), rows); err != nil {
		writeError(c, h.logger, err, "Server error during export")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Exported data to Google Sheets", "exported": len(rows) - 1})
}

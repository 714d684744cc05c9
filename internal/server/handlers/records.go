package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/meatmarket/internal/auth"
	"github.com/mamadbah2/meatmarket/internal/domain/models"
	"github.com/mamadbah2/meatmarket/internal/query"
	"github.com/mamadbah2/meatmarket/internal/service/records"
)

// RecordsHandler serves the record listing and mutation endpoints.
type RecordsHandler struct {
	svc    *records.Service
	logger *zap.Logger
}

// NewRecordsHandler constructs the HTTP handler adapter.
func NewRecordsHandler(svc *records.Service, logger *zap.Logger) *RecordsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsHandler{svc: svc, logger: logger}
}

// List returns one filtered page of records.
func (h *RecordsHandler) List(c *gin.Context) {
	criteria, err := query.Parse(c.Query)
	if err != nil {
		writeError(c, h.logger, err, "Server error while fetching data")
		return
	}

	fields := map[string]string{}
	page := intQuery(c, "page", 1, fields, "Page must be a positive integer")
	limit := intQuery(c, "limit", records.DefaultPageSize, fields, "Limit must be a positive integer")
	if len(fields) > 0 {
		writeError(c, h.logger, models.NewValidationError(fields), "")
		return
	}

	res, err := h.svc.List(c.Request.Context(), criteria, page, limit)
	if err != nil {
		writeError(c, h.logger, err, "Server error while fetching data")
		return
	}
	c.JSON(http.StatusOK, res)
}

// Get returns one record.
func (h *RecordsHandler) Get(c *gin.Context) {
	view, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err, "Server error while fetching data entry")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Create stores a new record owned by the caller.
func (h *RecordsHandler) Create(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}

	var in records.CreateInput
	if !bindBody(c, h.logger, &in) {
		return
	}

	view, err := h.svc.Create(c.Request.Context(), actor, in)
	if err != nil {
		writeError(c, h.logger, err, "Server error while creating data entry")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Data entry created successfully", "data": view})
}

// Update applies a partial update.
func (h *RecordsHandler) Update(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}

	var in records.UpdateInput
	if !bindBody(c, h.logger, &in) {
		return
	}

	view, err := h.svc.Update(c.Request.Context(), actor, c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err, "Server error while updating data entry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Data entry updated successfully", "data": view})
}

// Delete removes a record.
func (h *RecordsHandler) Delete(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		writeError(c, h.logger, err, "Server error while deleting data entry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Data entry deleted successfully"})
}

// identity fetches the caller set by auth.RequireAuth, answering 401 itself
// when it is missing.
func identity(c *gin.Context) (models.Identity, bool) {
	id, err := auth.IdentityFromCtx(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided, access denied"})
		return models.Identity{}, false
	}
	return id, true
}

func intQuery(c *gin.Context, key string, fallback int, fields map[string]string, msg string) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fields[key] = msg
		return fallback
	}
	return n
}

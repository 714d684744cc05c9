package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/meatmarket/internal/query"
	"github.com/mamadbah2/meatmarket/internal/service/analytics"
)

// AnalyticsHandler serves the report endpoints.
type AnalyticsHandler struct {
	svc    *analytics.Service
	logger *zap.Logger
}

// NewAnalyticsHandler constructs the HTTP handler adapter.
func NewAnalyticsHandler(svc *analytics.Service, logger *zap.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandler{svc: svc, logger: logger}
}

// Dashboard returns the unfiltered store summary.
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	res, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, "Server error while fetching dashboard data")
		return
	}
	c.JSON(http.StatusOK, res)
}

// PriceTrends returns monthly price points per product.
func (h *AnalyticsHandler) PriceTrends(c *gin.Context) {
	filtered(c, h.logger, "Server error while fetching price trends", func(ctx context.Context, q query.Criteria) (interface{}, error) {
		return h.svc.PriceTrends(ctx, q)
	})
}

// SupplyDemand returns supply and demand balances.
func (h *AnalyticsHandler) SupplyDemand(c *gin.Context) {
	filtered(c, h.logger, "Server error while fetching supply-demand data", func(ctx context.Context, q query.Criteria) (interface{}, error) {
		return h.svc.SupplyDemand(ctx, q)
	})
}

// Regional returns the per-area rollup.
func (h *AnalyticsHandler) Regional(c *gin.Context) {
	filtered(c, h.logger, "Server error while fetching regional analysis", func(ctx context.Context, q query.Criteria) (interface{}, error) {
		return h.svc.Regional(ctx, q)
	})
}

// Seasonal returns the per-season rollup.
func (h *AnalyticsHandler) Seasonal(c *gin.Context) {
	filtered(c, h.logger, "Server error while fetching seasonal trends", func(ctx context.Context, q query.Criteria) (interface{}, error) {
		return h.svc.Seasonal(ctx, q)
	})
}

// MarketInsights returns top products, volatility and growth.
func (h *AnalyticsHandler) MarketInsights(c *gin.Context) {
	filtered(c, h.logger, "Server error while fetching market insights", func(ctx context.Context, q query.Criteria) (interface{}, error) {
		return h.svc.MarketInsights(ctx, q)
	})
}

func filtered(c *gin.Context, logger *zap.Logger, internal string, report func(context.Context, query.Criteria) (interface{}, error)) {
	criteria, err := query.Parse(c.Query)
	if err != nil {
		writeError(c, logger, err, internal)
		return
	}
	res, err := report(c.Request.Context(), criteria)
	if err != nil {
		writeError(c, logger, err, internal)
		return
	}
	c.JSON(http.StatusOK, res)
}

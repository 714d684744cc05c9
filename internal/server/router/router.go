package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/meatmarket/internal/auth"
	"github.com/mamadbah2/meatmarket/internal/metrics"
	"github.com/mamadbah2/meatmarket/internal/server/handlers"
)

const requestIDHeader = "X-Request-Id"

// Handlers groups the HTTP adapters mounted by New.
type Handlers struct {
	Records   *handlers.RecordsHandler
	Analytics *handlers.AnalyticsHandler
	Transfer  *handlers.TransferHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, verifier *auth.Verifier, db handlers.Pinger, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(metrics.Middleware())

	r.GET("/healthz", handlers.Health(db, logger))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api", auth.RequireAuth(verifier, logger.Named("auth")))

	data := api.Group("/data")
	data.GET("", h.Records.List)
	data.POST("", h.Records.Create)
	data.POST("/upload-csv", h.Transfer.Upload)
	data.GET("/export/csv", h.Transfer.ExportCSV)
	data.POST("/export/sheets", h.Transfer.ExportSheets)
	data.GET("/:id", h.Records.Get)
	data.PUT("/:id", h.Records.Update)
	data.DELETE("/:id", h.Records.Delete)

	reports := api.Group("/analytics")
	reports.GET("/dashboard", h.Analytics.Dashboard)
	reports.GET("/price-trends", h.Analytics.PriceTrends)
	reports.GET("/supply-demand", h.Analytics.SupplyDemand)
	reports.GET("/regional-analysis", h.Analytics.Regional)
	reports.GET("/seasonal-trends", h.Analytics.Seasonal)
	reports.GET("/market-insights", h.Analytics.MarketInsights)

	logger.Info("router initialized")
	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDHeader)))
	}
}

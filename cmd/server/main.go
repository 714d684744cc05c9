package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/meatmarket/internal/auth"
	"github.com/mamadbah2/meatmarket/internal/config"
	"github.com/mamadbah2/meatmarket/internal/repository/mongodb"
	"github.com/mamadbah2/meatmarket/internal/repository/sheets"
	"github.com/mamadbah2/meatmarket/internal/scheduler"
	"github.com/mamadbah2/meatmarket/internal/server/handlers"
	"github.com/mamadbah2/meatmarket/internal/server/router"
	analyticssvc "github.com/mamadbah2/meatmarket/internal/service/analytics"
	digestsvc "github.com/mamadbah2/meatmarket/internal/service/digest"
	recordssvc "github.com/mamadbah2/meatmarket/internal/service/records"
	transfersvc "github.com/mamadbah2/meatmarket/internal/service/transfer"
	"github.com/mamadbah2/meatmarket/pkg/clients/webhook"
	"github.com/mamadbah2/meatmarket/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	mongoClient, err := mongodb.NewClient(startupCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	recordRepo := mongodb.NewRecordRepository(mongoClient.Collection(cfg.MongoDB.RecordsCollection), logger.Named(baseLogger, "repo.mongodb"))
	if err := recordRepo.EnsureIndexes(startupCtx); err != nil {
		baseLogger.Fatal("failed to ensure record indexes", zap.Error(err))
	}
	userRepo := mongodb.NewUserRepository(mongoClient.Collection(cfg.MongoDB.UsersCollection))

	var sheetExporter handlers.SheetExporter
	if cfg.Sheets.Enabled() {
		exp, err := sheets.NewExporter(startupCtx, cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		sheetExporter = exp
		baseLogger.Info("google sheets export enabled")
	} else {
		baseLogger.Warn("google sheets export not configured")
	}

	recordsSvc := recordssvc.NewService(recordRepo, userRepo, logger.Named(baseLogger, "svc.records"))
	analyticsSvc := analyticssvc.NewService(recordRepo, userRepo, logger.Named(baseLogger, "svc.analytics"))
	transferSvc := transfersvc.NewService(recordRepo, userRepo, logger.Named(baseLogger, "svc.transfer"))

	gin.SetMode(gin.ReleaseMode)
	engine := router.New(router.Handlers{
		Records:   handlers.NewRecordsHandler(recordsSvc, logger.Named(baseLogger, "handlers.records")),
		Analytics: handlers.NewAnalyticsHandler(analyticsSvc, logger.Named(baseLogger, "handlers.analytics")),
		Transfer:  handlers.NewTransferHandler(transferSvc, sheetExporter, cfg.Upload.MaxBytes, logger.Named(baseLogger, "handlers.transfer")),
	}, auth.NewVerifier(cfg.Auth.JWTSecret, userRepo), mongoClient, logger.Named(baseLogger, "router"))

	// Initialize Scheduler
	sched := scheduler.NewScheduler(logger.Named(baseLogger, "scheduler"))
	if cfg.Digest.Enabled() {
		digest := digestsvc.NewService(analyticsSvc, webhook.NewClient(cfg.Digest.WebhookURL, cfg.Digest.WebhookToken), logger.Named(baseLogger, "svc.digest"))
		if err := sched.Add("weekly-digest", cfg.Digest.CronSchedule, digest); err != nil {
			baseLogger.Fatal("failed to schedule digest", zap.Error(err))
		}
	} else {
		baseLogger.Warn("digest webhook missing, weekly digest disabled")
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

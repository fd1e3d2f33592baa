package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Aidin1998/pricecatalog/api"
	"github.com/Aidin1998/pricecatalog/internal/cache"
	"github.com/Aidin1998/pricecatalog/internal/catalog"
	"github.com/Aidin1998/pricecatalog/internal/config"
	"github.com/Aidin1998/pricecatalog/internal/database"
	"github.com/Aidin1998/pricecatalog/internal/telemetry"
	"github.com/Aidin1998/pricecatalog/pkg/logger"
	"github.com/Aidin1998/pricecatalog/pkg/validation"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(cfg.Tracing, os.Stdout)
	if err != nil {
		zapLogger.Fatal("Failed to set up tracing", zap.Error(err))
	}

	db, err := database.Open(cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to open database", zap.Error(err))
	}

	if err := database.NewMigrator(db, zapLogger, cfg.Database.Seed).Up(ctx); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	cacheManager, err := cache.New(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create cache", zap.Error(err))
	}

	// Schedule DB pool metrics collection every 30s
	go database.ReportPoolStats(ctx, db, 30*time.Second)

	v := validation.NewValidator(zapLogger)
	apiServer := api.NewServer(cfg, zapLogger, db, catalog.New(db, cacheManager, v, zapLogger), v)
	httpServer := apiServer.HTTPServer()

	go func() {
		zapLogger.Info("Starting API server",
			zap.String("addr", httpServer.Addr),
			zap.String("database", cfg.Database.Driver),
			zap.String("cache", cacheManager.Backend()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shut down API server", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		zapLogger.Error("Failed to flush traces", zap.Error(err))
	}
	if err := cacheManager.Close(); err != nil {
		zapLogger.Error("Failed to close cache", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		zapLogger.Error("Failed to close database", zap.Error(err))
	}

	zapLogger.Info("Server exited properly")
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/ddanshin/kopilka/internal/budget"
	budgetStore "github.com/ddanshin/kopilka/internal/budget/store"
	"github.com/ddanshin/kopilka/internal/cache"
	"github.com/ddanshin/kopilka/internal/config"
	"github.com/ddanshin/kopilka/internal/database"
	"github.com/ddanshin/kopilka/internal/export"
	kopilkaHttp "github.com/ddanshin/kopilka/internal/http"
	budgetHandler "github.com/ddanshin/kopilka/internal/http/budget"
	chartHandler "github.com/ddanshin/kopilka/internal/http/chart"
	reportHandler "github.com/ddanshin/kopilka/internal/http/report"
	txHandler "github.com/ddanshin/kopilka/internal/http/transaction"
	uploadHandler "github.com/ddanshin/kopilka/internal/http/upload"
	"github.com/ddanshin/kopilka/internal/learning"
	learningStore "github.com/ddanshin/kopilka/internal/learning/store"
	"github.com/ddanshin/kopilka/internal/recognizer"
	"github.com/ddanshin/kopilka/internal/report"
	reportStore "github.com/ddanshin/kopilka/internal/report/store"
	"github.com/ddanshin/kopilka/internal/transaction"
	txStore "github.com/ddanshin/kopilka/internal/transaction/store"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisCache, err := cache.New(ctx, cfg.Redis.Addr)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	vision, err := recognizer.NewGeminiVision(ctx, cfg.Recognizer.Model)
	if err != nil {
		logger.Error("failed to create vision client", "error", err)
		os.Exit(1)
	}

	var (
		transactionService = transaction.NewService(txStore.New(db))
		learningService    = learning.NewService(learningStore.New(db), logger)
		budgetService      = budget.NewService(budgetStore.New(db), transactionService)
		reportService      = report.NewService(reportStore.New(db), redisCache, logger)
		exportService      = export.NewService(transactionService)
		recognizerService  = recognizer.NewService(vision, logger)
	)

	var (
		transactionH = txHandler.NewHandler(transactionService, exportService, learningService, redisCache, logger)
		budgetH      = budgetHandler.NewHandler(budgetService, logger)
		reportH      = reportHandler.NewHandler(reportService, logger)
		uploadH      = uploadHandler.NewHandler(recognizerService, learningService, uploadHandler.Config{
			Dir:          cfg.Upload.Dir,
			MaxSizeBytes: cfg.Upload.MaxSizeBytes,
			MaxBatch:     cfg.Upload.MaxBatch,
		}, logger)
		chartH = chartHandler.NewHandler(transactionService, learningService, redisCache, logger)
	)

	router := kopilkaHttp.New(transactionH, budgetH, reportH, uploadH, chartH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("starting server", "app", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

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
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/screening-service/internal/config"
	"github.com/SAP-F-2025/screening-service/internal/handlers"
	"github.com/SAP-F-2025/screening-service/internal/predictor"
	"github.com/SAP-F-2025/screening-service/internal/questionbank"
	"github.com/SAP-F-2025/screening-service/internal/services"
	"github.com/SAP-F-2025/screening-service/internal/session"
	"github.com/SAP-F-2025/screening-service/internal/utils"
	"github.com/SAP-F-2025/screening-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	bank, err := questionbank.Load(cfg.QuestionBankPath)
	if err != nil {
		logger.Error("Failed to load question bank", "path", cfg.QuestionBankPath, "error", err)
		os.Exit(1)
	}
	logger.Info("Question bank loaded",
		"path", cfg.QuestionBankPath,
		"vocab_questions", len(bank.SentenceCompletionQuestions()))

	var store session.Store
	var redisClient *redis.Client
	if cfg.RedisURL == "" || cfg.RedisURL == "memory" {
		logger.Warn("Running with in-memory session store - sessions do not survive restarts")
		store = session.NewMemoryStore()
	} else {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		store = session.NewRedisStore(redisClient, cfg.SessionTTL)
		logger.Info("Connected to Redis", "url", cfg.RedisURL)
	}

	// A missing model keeps the battery usable; only prediction is disabled.
	pred, err := predictor.New(cfg.ModelPath, slogLogger)
	if err != nil {
		logger.Warn("Classifier artifact not loaded - prediction disabled",
			"path", cfg.ModelPath,
			"error", err)
		pred = nil
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	validator := utils.NewValidator()
	params := services.Params{
		VocabQuestionCount:  cfg.VocabQuestionCount,
		DigitSequenceLength: cfg.DigitSequenceLength,
		MinTimeMinutes:      cfg.MinTimeMinutes,
		MaxTimeMinutes:      cfg.MaxTimeMinutes,
	}

	screeningService := services.NewScreeningService(store, bank, pred, publisher, params, slogLogger, validator)
	reportService := services.NewReportService(screeningService, slogLogger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(screeningService, reportService, validator, logger)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Screening service listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down screening service")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Screening service stopped")
}

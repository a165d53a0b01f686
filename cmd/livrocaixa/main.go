package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"livrocaixa/internal/ai"
	"livrocaixa/internal/amqp"
	"livrocaixa/internal/backend"
	"livrocaixa/internal/categorize"
	"livrocaixa/internal/config"
	apphttp "livrocaixa/internal/http"
	"livrocaixa/internal/ledger"
	applog "livrocaixa/internal/log"
	"livrocaixa/internal/ocr"
	"livrocaixa/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateStore(backendCfg)
	if err != nil {
		logger.Error("Failed to initialize ledger store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	book := ledger.New(result.Store)

	var reader ocr.TextReader
	switch cfg.OCRBackend {
	case "tesseract":
		reader = ocr.NewTesseract(cfg.TesseractPath)
		logger.Info("Initialized tesseract OCR", "binary", cfg.TesseractPath)
	default:
		reader = ocr.NewSimulated()
		logger.Info("Initialized simulated OCR")
	}

	var assistant ai.Assistant = ai.NewDisabled()
	if cfg.AIBaseURL != "" {
		assistant = ai.NewOpenAI(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, cfg.AITimeout, categorize.Categories())
		logger.Info("Initialized AI assistant", "model", cfg.AIModel)
	}

	opts := []services.Option{}
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			defer amqpClient.Close()
			opts = append(opts, services.WithPublisher(amqpClient))
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	// The server purges its summary cache on every ledger mutation; the
	// hook is bound after the server exists.
	var invalidate func()
	opts = append(opts, services.WithMutationHook(func() {
		if invalidate != nil {
			invalidate()
		}
	}))

	bookkeeper := services.NewBookkeeper(book, reader, assistant, opts...)

	srv := apphttp.NewServer(":"+cfg.Port, bookkeeper, cfg.SummaryCacheTTL)
	invalidate = srv.InvalidateSummaries

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting livrocaixa server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

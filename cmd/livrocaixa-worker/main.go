// Audit worker: consumes ledger events from RabbitMQ and appends them as
// JSON lines to an audit trail file.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"livrocaixa/internal/amqp"
	"livrocaixa/internal/config"
	applog "livrocaixa/internal/log"
)

func main() {
	_ = godotenv.Load()

	logCfg := applog.DefaultConfig()
	logCfg.Component = applog.ComponentWorker
	logger := applog.New(logCfg)
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the audit worker")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	trail, err := openAuditTrail(cfg.AuditPath)
	if err != nil {
		logger.Error("Failed to open audit trail", "error", err, "path", cfg.AuditPath)
		os.Exit(1)
	}
	defer trail.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting audit worker",
		"queue", cfg.AMQPQueue,
		"audit_path", cfg.AuditPath)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeEvents(ctx, func(event *amqp.LedgerEvent) error {
			if err := trail.Append(event); err != nil {
				return err
			}
			logger.Info("Audited ledger event",
				"kind", event.Kind,
				"entry_id", event.EntryID)
			return nil
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

// auditTrail appends ledger events to a JSONL file. Appends are
// serialized so concurrent handlers never interleave lines.
type auditTrail struct {
	mu   sync.Mutex
	file *os.File
}

func openAuditTrail(path string) (*auditTrail, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &auditTrail{file: file}, nil
}

func (t *auditTrail) Append(event *amqp.LedgerEvent) error {
	body, err := event.ToJSON()
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.file.Write(append(body, '\n')); err != nil {
		return err
	}
	return t.file.Sync()
}

func (t *auditTrail) Close() error {
	return t.file.Close()
}

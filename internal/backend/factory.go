package backend

import (
	"fmt"
	"log/slog"

	"livrocaixa/internal/storage"
)

// Factory creates ledger stores based on configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateStore builds the store named by config.Type.
func (f *Factory) CreateStore(config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return &Result{Store: storage.NewMemory()}, nil

	case FileBackend:
		store, err := storage.NewJSONFile(config.LedgerPath)
		if err != nil {
			return nil, fmt.Errorf("initialize file backend: %w", err)
		}
		f.logger.Info("Initialized file backend", "ledger_path", config.LedgerPath)
		return &Result{Store: store}, nil

	case SQLiteBackend:
		store, err := storage.NewSQLite(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return &Result{Store: store, Cleanup: store.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

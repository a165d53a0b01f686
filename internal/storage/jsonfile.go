package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"livrocaixa/internal/core"
)

// JSONFile persists the ledger as a single JSON array. Replace writes to a
// temporary file in the same directory and renames it over the target, so
// a crash mid-write never leaves a truncated ledger behind.
type JSONFile struct {
	path string
}

func NewJSONFile(path string) (*JSONFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	return &JSONFile{path: path}, nil
}

func (f *JSONFile) Load(_ context.Context) ([]core.Entry, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read ledger file: %w", err)
	}

	var entries []core.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode ledger file: %w", err)
	}
	if err := validateLoaded(entries); err != nil {
		return nil, fmt.Errorf("validate ledger file: %w", err)
	}
	return entries, nil
}

func (f *JSONFile) Replace(_ context.Context, entries []core.Entry) error {
	if entries == nil {
		entries = []core.Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("create temp ledger file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp ledger file: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}

func (f *JSONFile) Close() error { return nil }

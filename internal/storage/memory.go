// Package storage provides the ledger store backends: in-memory, JSON file
// and SQLite. All three persist the full entry collection on every write,
// which keeps the backends interchangeable behind ledger.Store.
package storage

import (
	"context"
	"sync"

	"livrocaixa/internal/core"
)

// Memory keeps entries in process memory. Used by tests and by the
// terminal simulator when no persistence is wanted.
type Memory struct {
	mu      sync.RWMutex
	entries []core.Entry
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) ([]core.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *Memory) Replace(_ context.Context, entries []core.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make([]core.Entry, len(entries))
	copy(m.entries, entries)
	return nil
}

func (m *Memory) Close() error { return nil }

// Package ledger implements the append-only transaction book. Entries are
// immutable once recorded; the only mutations are append and full clear,
// and the whole collection is rewritten on every mutation.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"livrocaixa/internal/core"
)

// Store persists the full entry collection. Replace must be atomic: no
// reader ever observes a partially written store. Implementations live in
// internal/storage (memory, JSON file, SQLite).
type Store interface {
	Load(ctx context.Context) ([]core.Entry, error)
	Replace(ctx context.Context, entries []core.Entry) error
	Close() error
}

// Ledger serializes every read-modify-write-persist sequence behind one
// mutex, which is what makes the rewrite-whole-store model safe under
// concurrently arriving messages.
type Ledger struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
}

// Option customizes a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source used for week queries.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{store: store, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add appends a categorized transaction as a new entry and persists the
// whole collection. A persistence failure leaves no partial entry behind
// and is propagated to the caller.
func (l *Ledger) Add(ctx context.Context, tx core.Transaction, category string) (core.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.store.Load(ctx)
	if err != nil {
		return core.Entry{}, fmt.Errorf("load ledger: %w", err)
	}

	entry := core.NewEntry(tx, category)
	if err := l.store.Replace(ctx, append(entries, entry)); err != nil {
		return core.Entry{}, fmt.Errorf("persist ledger: %w", err)
	}
	return entry, nil
}

// Get returns entries whose date falls in [start, end], both inclusive and
// both optional (empty string = unbounded). Dates are ISO strings, so the
// comparison is plain lexicographic. Result order is insertion order.
func (l *Ledger) Get(ctx context.Context, start, end string) ([]core.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	var out []core.Entry
	for _, e := range entries {
		if start != "" && e.Date < start {
			continue
		}
		if end != "" && e.Date > end {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// GetWeek returns the entries of the Monday-to-Sunday week containing the
// reference date. An empty reference means today.
func (l *Ledger) GetWeek(ctx context.Context, refDate string) ([]core.Entry, error) {
	ref := l.now()
	if refDate != "" {
		parsed, err := core.ParseISODate(refDate)
		if err != nil {
			return nil, err
		}
		ref = parsed
	}
	monday, sunday := core.WeekBounds(ref)
	return l.Get(ctx, monday, sunday)
}

// Clear replaces the backing store with an empty collection.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Replace(ctx, nil); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	return nil
}

// Close releases the backing store.
func (l *Ledger) Close() error {
	return l.store.Close()
}

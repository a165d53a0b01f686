package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Sale    TxType = "sale"
	Expense TxType = "expense"
)

type (
	// TxType distinguishes revenue from cost movements.
	TxType string

	// LineItem is a single product line inside a receipt. Name doubles as
	// the dedup key during extraction and as the accumulation key for
	// top-item statistics.
	LineItem struct {
		Name      string          `json:"name"`
		Qty       int             `json:"qty"`
		UnitPrice decimal.Decimal `json:"unit_price"`
	}

	// Transaction is the ephemeral result of field extraction or a quick
	// entry. It is not yet categorized nor persisted.
	Transaction struct {
		Date        string          `json:"date"` // YYYY-MM-DD
		Total       decimal.Decimal `json:"total"`
		Items       []LineItem      `json:"items"`
		Type        TxType          `json:"type"`
		Description string          `json:"description"`
		RawText     string          `json:"raw_text"`
	}

	// Entry is an immutable ledger record: a Transaction plus its resolved
	// category, an id and a creation timestamp.
	Entry struct {
		ID          string          `json:"id"`
		Timestamp   time.Time       `json:"timestamp"`
		Date        string          `json:"date"`
		Total       decimal.Decimal `json:"total"`
		Type        TxType          `json:"type"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Items       []LineItem      `json:"items"`
	}

	// CategoryAmount is an amount aggregated under one category name.
	CategoryAmount struct {
		Name   string          `json:"name"`
		Amount decimal.Decimal `json:"amount"`
	}

	// ItemTotal is the accumulated value of one item name across entries.
	ItemTotal struct {
		Name  string          `json:"name"`
		Total decimal.Decimal `json:"total"`
	}

	// Stats summarizes a list of entries. ByCategory preserves
	// first-appearance order so downstream consumers stay deterministic.
	Stats struct {
		TotalSales    decimal.Decimal  `json:"total_sales"`
		TotalExpenses decimal.Decimal  `json:"total_expenses"`
		Profit        decimal.Decimal  `json:"profit"`
		NumSales      int              `json:"num_sales"`
		NumExpenses   int              `json:"num_expenses"`
		ByCategory    []CategoryAmount `json:"by_category"`
		TopItems      []ItemTotal      `json:"top_items"`
	}
)

var (
	ErrMalformedAmount = errors.New("malformed monetary amount")
	ErrInvalidDate     = errors.New("invalid date")
)

// IsValid reports whether the transaction type is one of the known values.
func (t TxType) IsValid() bool {
	return t == Sale || t == Expense
}

// Subtotal returns quantity times unit price for the line.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Qty)))
}

// ItemsTotal sums the subtotals of every line item.
func (t Transaction) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, li := range t.Items {
		sum = sum.Add(li.Subtotal())
	}
	return sum
}

// NewEntry freezes a categorized transaction into a ledger entry with a
// fresh id and the current timestamp.
func NewEntry(tx Transaction, category string) Entry {
	return Entry{
		ID:          NewEntryID(),
		Timestamp:   time.Now(),
		Date:        tx.Date,
		Total:       tx.Total,
		Type:        tx.Type,
		Category:    category,
		Description: tx.Description,
		Items:       tx.Items,
	}
}

// NewEntryID returns a short unique token (first 8 hex chars of a UUID).
func NewEntryID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Lookup returns the amount recorded for a category, if present.
func (s Stats) Lookup(category string) (decimal.Decimal, bool) {
	for _, ca := range s.ByCategory {
		if ca.Name == category {
			return ca.Amount, true
		}
	}
	return decimal.Zero, false
}

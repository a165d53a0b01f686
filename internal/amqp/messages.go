package amqp

import (
	"encoding/json"
	"time"

	"livrocaixa/internal/core"
)

// EventKind identifies a ledger event type on the wire.
type EventKind string

const (
	EventEntryRecorded EventKind = "entry_recorded"
	EventLedgerCleared EventKind = "ledger_cleared"
)

// LedgerEvent is the message published after every ledger mutation.
// Entry fields are only set for entry_recorded events. The total travels
// as a decimal string so consumers never see float rounding.
type LedgerEvent struct {
	Kind      EventKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	EntryID   string `json:"entry_id,omitempty"`
	EntryType string `json:"entry_type,omitempty"`
	Category  string `json:"category,omitempty"`
	Total     string `json:"total,omitempty"`
	Date      string `json:"date,omitempty"`
}

// NewEntryRecordedEvent builds the event for a freshly recorded entry.
func NewEntryRecordedEvent(e core.Entry) *LedgerEvent {
	return &LedgerEvent{
		Kind:      EventEntryRecorded,
		Timestamp: time.Now(),
		EntryID:   e.ID,
		EntryType: string(e.Type),
		Category:  e.Category,
		Total:     e.Total.String(),
		Date:      e.Date,
	}
}

// NewLedgerClearedEvent builds the event for a full ledger reset.
func NewLedgerClearedEvent() *LedgerEvent {
	return &LedgerEvent{
		Kind:      EventLedgerCleared,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var event LedgerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

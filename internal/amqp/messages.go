package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"spendsmart/internal/core"
)

type EventType string

const (
	EventTransactionCreated EventType = "transaction.created"
	EventTransactionUpdated EventType = "transaction.updated"
	EventTransactionDeleted EventType = "transaction.deleted"
)

func (t EventType) Valid() bool {
	switch t {
	case EventTransactionCreated, EventTransactionUpdated, EventTransactionDeleted:
		return true
	}
	return false
}

// TransactionEvent announces a change to a stored transaction.
// Consumers refetch state from the store; Amount and Mood are informational.
type TransactionEvent struct {
	Type          EventType `json:"type"`
	TransactionID string    `json:"transactionId"`
	Amount        float64   `json:"amount,omitempty"`
	Mood          core.Mood `json:"mood,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionEvent(eventType EventType, tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Type:          eventType,
		TransactionID: tx.ID,
		Amount:        tx.Amount,
		Mood:          tx.Mood,
		Timestamp:     time.Now(),
	}
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Type.Valid() {
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	if msg.TransactionID == "" {
		return nil, fmt.Errorf("missing transaction id")
	}
	return &msg, nil
}

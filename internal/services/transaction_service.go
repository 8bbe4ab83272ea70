package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendsmart/internal/amqp"
	"spendsmart/internal/core"
	"spendsmart/internal/ledger"
)

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error
}

// TransactionService orchestrates transaction writes across the store and AMQP.
type TransactionService struct {
	store      ledger.TransactionStore
	publisher  EventPublisher
	invalidate func()
	now        func() time.Time
}

// NewTransactionService wires the write path. publisher and invalidate may be nil.
func NewTransactionService(store ledger.TransactionStore, publisher EventPublisher, invalidate func()) *TransactionService {
	if invalidate == nil {
		invalidate = func() {}
	}
	return &TransactionService{
		store:      store,
		publisher:  publisher,
		invalidate: invalidate,
		now:        time.Now,
	}
}

// Create stores a new transaction and announces it.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.ID = ""
	tx.ApplyDefaults(s.now())
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.invalidate()
	s.publish(ctx, amqp.EventTransactionCreated, saved)
	return saved, nil
}

// Update replaces the mutable fields of an existing transaction. A zero date
// keeps the stored one.
func (s *TransactionService) Update(ctx context.Context, id string, tx core.Transaction) (core.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	tx.ID = existing.ID
	if tx.Date.IsZero() {
		tx.Date = existing.Date
	}
	if tx.UserID == "" {
		tx.UserID = existing.UserID
	}
	tx.ApplyDefaults(s.now())
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.UpdateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.invalidate()
	s.publish(ctx, amqp.EventTransactionUpdated, saved)
	return saved, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	s.publish(ctx, amqp.EventTransactionDeleted, core.Transaction{ID: id})
	return nil
}

// publish never fails the caller; the write is already durable.
func (s *TransactionService) publish(ctx context.Context, eventType amqp.EventType, tx core.Transaction) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping event", "type", eventType)
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(eventType, tx)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"type", eventType,
			"id", tx.ID,
			"error", err)
	}
}

package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"spendsmart/internal/amqp"
	"spendsmart/internal/core"
)

// EventSource is satisfied by *amqp.Client.
type EventSource interface {
	ConsumeTransactionEvents(ctx context.Context, handler func(context.Context, *amqp.TransactionEvent) error) error
}

// Processor handles events and the periodic shortfall scan.
type Processor interface {
	HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error
	CheckShortfall(ctx context.Context) (core.Alert, bool, error)
}

// InsightWorker consumes transaction events and periodically re-checks the
// forecast so shortfall alerts appear even when no events arrive.
type InsightWorker struct {
	source    EventSource
	processor Processor
	interval  time.Duration
}

// NewInsightWorker creates a worker. source may be nil, in which case only
// the periodic scan runs.
func NewInsightWorker(source EventSource, processor Processor, interval time.Duration) *InsightWorker {
	return &InsightWorker{
		source:    source,
		processor: processor,
		interval:  interval,
	}
}

// Run blocks until ctx is cancelled or the consumer fails for good.
func (w *InsightWorker) Run(ctx context.Context) error {
	if w.interval <= 0 {
		return fmt.Errorf("insight interval must be positive, got %s", w.interval)
	}

	slog.InfoContext(ctx, "Performing startup shortfall check")
	w.scan(ctx)

	g, gctx := errgroup.WithContext(ctx)

	if w.source != nil {
		g.Go(func() error {
			return w.source.ConsumeTransactionEvents(gctx, w.processor.HandleEvent)
		})
	} else {
		slog.InfoContext(ctx, "Skipping AMQP message consumption - no client available")
	}

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				w.scan(gctx)
			}
		}
	})

	err := g.Wait()
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}

func (w *InsightWorker) scan(ctx context.Context) {
	alert, created, err := w.processor.CheckShortfall(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Periodic shortfall check failed", "error", err)
		return
	}
	if created {
		slog.InfoContext(ctx, "Periodic shortfall check raised alert", "message", alert.Message)
	}
}

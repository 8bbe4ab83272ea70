package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spendsmart/internal/amqp"
	"spendsmart/internal/analytics"
	"spendsmart/internal/core"
	"spendsmart/internal/ledger"
	"spendsmart/internal/sheets"
)

const StressNudgeMessage = "Feeling stressed? Try 5-min meditation instead of shopping"

// InsightConfig is the forecast the shortfall check runs against.
type InsightConfig struct {
	Balance        float64
	Days           int
	CurrencySymbol string
}

func DefaultInsightConfig() InsightConfig {
	return InsightConfig{
		Balance:        analytics.DefaultBalance,
		Days:           analytics.DefaultDays,
		CurrencySymbol: analytics.DefaultCurrencySymbol,
	}
}

// InsightProcessor turns transaction events into alerts and optional
// spreadsheet rows.
type InsightProcessor struct {
	txs      ledger.TransactionStore
	alerts   ledger.AlertStore
	exporter sheets.TransactionExporter
	config   InsightConfig
	now      func() time.Time
}

// NewInsightProcessor creates a processor. exporter may be nil.
func NewInsightProcessor(txs ledger.TransactionStore, alerts ledger.AlertStore, exporter sheets.TransactionExporter, config InsightConfig) *InsightProcessor {
	return &InsightProcessor{
		txs:      txs,
		alerts:   alerts,
		exporter: exporter,
		config:   config,
		now:      time.Now,
	}
}

// HandleEvent processes one event. Only failures to record the stress nudge
// are returned, so a redelivery cannot duplicate work that already succeeded.
// Export failures are logged and the row is not retried. Shortfall failures
// are logged; the periodic scan re-runs the forecast.
func (p *InsightProcessor) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	switch event.Type {
	case amqp.EventTransactionCreated:
		tx, err := p.txs.GetTransaction(ctx, event.TransactionID)
		if errors.Is(err, ledger.ErrNotFound) {
			slog.InfoContext(ctx, "Transaction gone before processing, skipping", "id", event.TransactionID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("load transaction %s: %w", event.TransactionID, err)
		}
		if err := p.nudge(ctx, tx); err != nil {
			return err
		}
		p.export(ctx, tx)
		p.checkShortfallLogged(ctx)
	case amqp.EventTransactionUpdated:
		p.checkShortfallLogged(ctx)
	case amqp.EventTransactionDeleted:
		// a deletion can only improve the forecast
	default:
		slog.WarnContext(ctx, "Ignoring unknown event type", "type", event.Type)
	}
	return nil
}

func (p *InsightProcessor) nudge(ctx context.Context, tx core.Transaction) error {
	if core.ParseMood(string(tx.Mood)) != core.MoodStressed {
		return nil
	}
	alert, err := p.alerts.CreateAlert(ctx, core.Alert{
		Kind:          core.AlertStressNudge,
		Message:       StressNudgeMessage,
		TransactionID: tx.ID,
		CreatedAt:     p.now(),
	})
	if err != nil {
		return fmt.Errorf("create stress nudge: %w", err)
	}
	slog.InfoContext(ctx, "Stress nudge recorded", "alert_id", alert.ID, "transaction_id", tx.ID)
	return nil
}

func (p *InsightProcessor) export(ctx context.Context, tx core.Transaction) {
	if p.exporter == nil {
		return
	}
	ref, err := p.exporter.Export(ctx, tx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to export transaction", "id", tx.ID, "error", err)
		return
	}
	slog.InfoContext(ctx, "Transaction exported", "id", tx.ID, "ref", ref)
}

func (p *InsightProcessor) checkShortfallLogged(ctx context.Context) {
	if _, _, err := p.CheckShortfall(ctx); err != nil {
		slog.ErrorContext(ctx, "Shortfall check failed", "error", err)
	}
}

// CheckShortfall runs the forecast and records a shortfall alert unless an
// identical one already exists. It reports whether a new alert was created.
func (p *InsightProcessor) CheckShortfall(ctx context.Context) (core.Alert, bool, error) {
	recent, err := p.txs.RecentTransactions(ctx, analytics.SampleSize)
	if err != nil {
		return core.Alert{}, false, fmt.Errorf("load recent transactions: %w", err)
	}

	report := analytics.Forecast(recent, analytics.ForecastParams{
		Days:           p.config.Days,
		Balance:        p.config.Balance,
		Now:            p.now(),
		CurrencySymbol: p.config.CurrencySymbol,
	})
	if len(report.Warnings) == 0 {
		return core.Alert{}, false, nil
	}

	message := report.Warnings[0]
	exists, err := p.alerts.HasAlert(ctx, core.AlertShortfall, message)
	if err != nil {
		return core.Alert{}, false, fmt.Errorf("check existing alert: %w", err)
	}
	if exists {
		return core.Alert{}, false, nil
	}

	alert, err := p.alerts.CreateAlert(ctx, core.Alert{
		Kind:      core.AlertShortfall,
		Message:   message,
		CreatedAt: p.now(),
	})
	if err != nil {
		return core.Alert{}, false, fmt.Errorf("create shortfall alert: %w", err)
	}
	slog.InfoContext(ctx, "Shortfall alert recorded", "alert_id", alert.ID, "message", message)
	return alert, true, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"spendsmart/internal/core"
	"spendsmart/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; serialize to avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Reset deletes every row in a single transaction.
func (r *SQLiteRepository) Reset(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	if err := r.queries.WithTx(tx).DeleteAll(ctx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete all: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	slog.InfoContext(ctx, "Store reset")
	return nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	row, err := r.queries.CreateTransaction(ctx, transactionParams(t))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"amount", row.Amount,
		"mood", row.Mood)

	return toTransaction(row), nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return toTransactions(rows), nil
}

func (r *SQLiteRepository) RecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	if limit < 0 {
		limit = -1 // no limit in SQLite
	}
	rows, err := r.queries.RecentTransactions(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return toTransactions(rows), nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	n, ok := parseID(id)
	if !ok {
		return core.Transaction{}, ledger.ErrNotFound
	}
	row, err := r.queries.GetTransaction(ctx, n)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", n, err)
	}
	return toTransaction(row), nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	n, ok := parseID(t.ID)
	if !ok {
		return core.Transaction{}, ledger.ErrNotFound
	}
	row, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		CreateTransactionParams: transactionParams(t),
		ID:                      n,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", n, err)
	}
	return toTransaction(row), nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	n, ok := parseID(id)
	if !ok {
		return ledger.ErrNotFound
	}
	affected, err := r.queries.DeleteTransaction(ctx, n)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", n, err)
	}
	if affected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) CreateZone(ctx context.Context, z core.Zone) (core.Zone, error) {
	row, err := r.queries.CreateZone(ctx, CreateZoneParams{
		Lat:         z.Lat,
		Lon:         z.Lon,
		Radius:      z.Radius,
		Label:       z.Label,
		CreatedAtMs: z.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return core.Zone{}, fmt.Errorf("create zone: %w", err)
	}
	return toZone(row), nil
}

func (r *SQLiteRepository) ListZones(ctx context.Context) ([]core.Zone, error) {
	rows, err := r.queries.ListZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	zones := make([]core.Zone, len(rows))
	for i, row := range rows {
		zones[i] = toZone(row)
	}
	return zones, nil
}

func (r *SQLiteRepository) DeleteZone(ctx context.Context, id string) error {
	n, ok := parseID(id)
	if !ok {
		return ledger.ErrNotFound
	}
	affected, err := r.queries.DeleteZone(ctx, n)
	if err != nil {
		return fmt.Errorf("delete zone %d: %w", n, err)
	}
	if affected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) CreateAlert(ctx context.Context, a core.Alert) (core.Alert, error) {
	row, err := r.queries.CreateAlert(ctx, CreateAlertParams{
		Kind:          string(a.Kind),
		Message:       a.Message,
		TransactionID: a.TransactionID,
		CreatedAtMs:   a.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return core.Alert{}, fmt.Errorf("create alert: %w", err)
	}
	return toAlert(row), nil
}

func (r *SQLiteRepository) ListAlerts(ctx context.Context, limit int) ([]core.Alert, error) {
	if limit < 0 {
		limit = -1
	}
	rows, err := r.queries.ListAlerts(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	alerts := make([]core.Alert, len(rows))
	for i, row := range rows {
		alerts[i] = toAlert(row)
	}
	return alerts, nil
}

func (r *SQLiteRepository) HasAlert(ctx context.Context, kind core.AlertKind, message string) (bool, error) {
	n, err := r.queries.CountAlerts(ctx, CountAlertsParams{Kind: string(kind), Message: message})
	if err != nil {
		return false, fmt.Errorf("count alerts: %w", err)
	}
	return n > 0, nil
}

func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func transactionParams(t core.Transaction) CreateTransactionParams {
	p := CreateTransactionParams{
		UserID:   t.UserID,
		Amount:   t.Amount,
		Category: t.Category,
		DateMs:   t.Date.UnixMilli(),
		Mood:     string(t.Mood),
		Note:     t.Note,
	}
	if t.Location != nil {
		p.Lat = sql.NullFloat64{Float64: t.Location.Lat, Valid: true}
		p.Lon = sql.NullFloat64{Float64: t.Location.Lon, Valid: true}
	}
	return p
}

func toTransaction(row Transaction) core.Transaction {
	t := core.Transaction{
		ID:       strconv.FormatInt(row.ID, 10),
		UserID:   row.UserID,
		Amount:   row.Amount,
		Category: row.Category,
		Date:     time.UnixMilli(row.DateMs).UTC(),
		Mood:     core.Mood(row.Mood),
		Note:     row.Note,
	}
	if row.Lat.Valid && row.Lon.Valid {
		t.Location = &core.Location{Lat: row.Lat.Float64, Lon: row.Lon.Float64}
	}
	return t
}

func toTransactions(rows []Transaction) []core.Transaction {
	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		out[i] = toTransaction(row)
	}
	return out
}

func toZone(row Zone) core.Zone {
	return core.Zone{
		ID:        strconv.FormatInt(row.ID, 10),
		Lat:       row.Lat,
		Lon:       row.Lon,
		Radius:    row.Radius,
		Label:     row.Label,
		CreatedAt: time.UnixMilli(row.CreatedAtMs).UTC(),
	}
}

func toAlert(row Alert) core.Alert {
	return core.Alert{
		ID:            strconv.FormatInt(row.ID, 10),
		Kind:          core.AlertKind(row.Kind),
		Message:       row.Message,
		TransactionID: row.TransactionID,
		CreatedAt:     time.UnixMilli(row.CreatedAtMs).UTC(),
	}
}

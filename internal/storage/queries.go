package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Row models.

type Transaction struct {
	ID       int64
	UserID   string
	Amount   float64
	Category string
	DateMs   int64
	Mood     string
	Note     string
	Lat      sql.NullFloat64
	Lon      sql.NullFloat64
}

type Zone struct {
	ID          int64
	Lat         float64
	Lon         float64
	Radius      float64
	Label       string
	CreatedAtMs int64
}

type Alert struct {
	ID            int64
	Kind          string
	Message       string
	TransactionID string
	CreatedAtMs   int64
}

const transactionColumns = `id, user_id, amount, category, date_ms, mood, note, lat, lon`

func scanTransaction(row interface{ Scan(...interface{}) error }) (Transaction, error) {
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Amount,
		&i.Category,
		&i.DateMs,
		&i.Mood,
		&i.Note,
		&i.Lat,
		&i.Lon,
	)
	return i, err
}

const createTransaction = `INSERT INTO transactions (user_id, amount, category, date_ms, mood, note, lat, lon)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + transactionColumns

type CreateTransactionParams struct {
	UserID   string
	Amount   float64
	Category string
	DateMs   int64
	Mood     string
	Note     string
	Lat      sql.NullFloat64
	Lon      sql.NullFloat64
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.UserID,
		arg.Amount,
		arg.Category,
		arg.DateMs,
		arg.Mood,
		arg.Note,
		arg.Lat,
		arg.Lon,
	)
	return scanTransaction(row)
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id))
}

const listTransactions = `SELECT ` + transactionColumns + ` FROM transactions ORDER BY id`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	return q.queryTransactions(ctx, listTransactions)
}

const recentTransactions = `SELECT ` + transactionColumns + ` FROM transactions
ORDER BY date_ms DESC, id DESC
LIMIT ?`

func (q *Queries) RecentTransactions(ctx context.Context, limit int64) ([]Transaction, error) {
	return q.queryTransactions(ctx, recentTransactions, limit)
}

func (q *Queries) queryTransactions(ctx context.Context, query string, args ...interface{}) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		i, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateTransaction = `UPDATE transactions
SET user_id = ?, amount = ?, category = ?, date_ms = ?, mood = ?, note = ?, lat = ?, lon = ?
WHERE id = ?
RETURNING ` + transactionColumns

type UpdateTransactionParams struct {
	CreateTransactionParams
	ID int64
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, updateTransaction,
		arg.UserID,
		arg.Amount,
		arg.Category,
		arg.DateMs,
		arg.Mood,
		arg.Note,
		arg.Lat,
		arg.Lon,
		arg.ID,
	)
	return scanTransaction(row)
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createZone = `INSERT INTO zones (lat, lon, radius, label, created_at_ms)
VALUES (?, ?, ?, ?, ?)
RETURNING id, lat, lon, radius, label, created_at_ms`

type CreateZoneParams struct {
	Lat         float64
	Lon         float64
	Radius      float64
	Label       string
	CreatedAtMs int64
}

func (q *Queries) CreateZone(ctx context.Context, arg CreateZoneParams) (Zone, error) {
	row := q.db.QueryRowContext(ctx, createZone,
		arg.Lat,
		arg.Lon,
		arg.Radius,
		arg.Label,
		arg.CreatedAtMs,
	)
	var i Zone
	err := row.Scan(
		&i.ID,
		&i.Lat,
		&i.Lon,
		&i.Radius,
		&i.Label,
		&i.CreatedAtMs,
	)
	return i, err
}

const listZones = `SELECT id, lat, lon, radius, label, created_at_ms FROM zones
ORDER BY created_at_ms DESC, id DESC`

func (q *Queries) ListZones(ctx context.Context) ([]Zone, error) {
	rows, err := q.db.QueryContext(ctx, listZones)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Zone
	for rows.Next() {
		var i Zone
		if err := rows.Scan(
			&i.ID,
			&i.Lat,
			&i.Lon,
			&i.Radius,
			&i.Label,
			&i.CreatedAtMs,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteZone = `DELETE FROM zones WHERE id = ?`

func (q *Queries) DeleteZone(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteZone, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createAlert = `INSERT INTO alerts (kind, message, transaction_id, created_at_ms)
VALUES (?, ?, ?, ?)
RETURNING id, kind, message, transaction_id, created_at_ms`

type CreateAlertParams struct {
	Kind          string
	Message       string
	TransactionID string
	CreatedAtMs   int64
}

func (q *Queries) CreateAlert(ctx context.Context, arg CreateAlertParams) (Alert, error) {
	row := q.db.QueryRowContext(ctx, createAlert,
		arg.Kind,
		arg.Message,
		arg.TransactionID,
		arg.CreatedAtMs,
	)
	var i Alert
	err := row.Scan(
		&i.ID,
		&i.Kind,
		&i.Message,
		&i.TransactionID,
		&i.CreatedAtMs,
	)
	return i, err
}

const listAlerts = `SELECT id, kind, message, transaction_id, created_at_ms FROM alerts
ORDER BY created_at_ms DESC, id DESC
LIMIT ?`

func (q *Queries) ListAlerts(ctx context.Context, limit int64) ([]Alert, error) {
	rows, err := q.db.QueryContext(ctx, listAlerts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Alert
	for rows.Next() {
		var i Alert
		if err := rows.Scan(
			&i.ID,
			&i.Kind,
			&i.Message,
			&i.TransactionID,
			&i.CreatedAtMs,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countAlerts = `SELECT COUNT(*) FROM alerts WHERE kind = ? AND message = ?`

type CountAlertsParams struct {
	Kind    string
	Message string
}

func (q *Queries) CountAlerts(ctx context.Context, arg CountAlertsParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countAlerts, arg.Kind, arg.Message)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteAllAlerts = `DELETE FROM alerts`
const deleteAllZones = `DELETE FROM zones`
const deleteAllTransactions = `DELETE FROM transactions`

func (q *Queries) DeleteAll(ctx context.Context) error {
	for _, stmt := range []string{deleteAllAlerts, deleteAllZones, deleteAllTransactions} {
		if _, err := q.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"

	"spendsmart/internal/core"
	"spendsmart/internal/ledger"
)

var ErrStoreUnavailable = errors.New("store unavailable")

// Unavailable stands in for a store that failed to open. Every call fails
// with ErrStoreUnavailable wrapping the original cause, so the HTTP layer
// keeps serving and reports the failure per request.
type Unavailable struct {
	Cause error
}

var _ ledger.Store = Unavailable{}

func (u Unavailable) err() error {
	if u.Cause == nil {
		return ErrStoreUnavailable
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, u.Cause)
}

func (u Unavailable) Ping(context.Context) error  { return u.err() }
func (u Unavailable) Reset(context.Context) error { return u.err() }

func (u Unavailable) CreateTransaction(context.Context, core.Transaction) (core.Transaction, error) {
	return core.Transaction{}, u.err()
}

func (u Unavailable) ListTransactions(context.Context) ([]core.Transaction, error) {
	return nil, u.err()
}

func (u Unavailable) RecentTransactions(context.Context, int) ([]core.Transaction, error) {
	return nil, u.err()
}

func (u Unavailable) GetTransaction(context.Context, string) (core.Transaction, error) {
	return core.Transaction{}, u.err()
}

func (u Unavailable) UpdateTransaction(context.Context, core.Transaction) (core.Transaction, error) {
	return core.Transaction{}, u.err()
}

func (u Unavailable) DeleteTransaction(context.Context, string) error { return u.err() }

func (u Unavailable) CreateZone(context.Context, core.Zone) (core.Zone, error) {
	return core.Zone{}, u.err()
}

func (u Unavailable) ListZones(context.Context) ([]core.Zone, error) { return nil, u.err() }
func (u Unavailable) DeleteZone(context.Context, string) error      { return u.err() }

func (u Unavailable) CreateAlert(context.Context, core.Alert) (core.Alert, error) {
	return core.Alert{}, u.err()
}

func (u Unavailable) ListAlerts(context.Context, int) ([]core.Alert, error) { return nil, u.err() }

func (u Unavailable) HasAlert(context.Context, core.AlertKind, string) (bool, error) {
	return false, u.err()
}

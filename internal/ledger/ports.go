package ledger

import (
	"context"
	"errors"

	"spendsmart/internal/core"
)

// ErrNotFound is returned when an id does not match any stored record.
var ErrNotFound = errors.New("not found")

// Ports for outbound storage adapters.
type (
	TransactionStore interface {
		CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		// ListTransactions returns every stored transaction.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		// RecentTransactions returns at most limit transactions, newest date first.
		RecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	ZoneStore interface {
		CreateZone(ctx context.Context, z core.Zone) (core.Zone, error)
		// ListZones returns zones, most recently created first.
		ListZones(ctx context.Context) ([]core.Zone, error)
		DeleteZone(ctx context.Context, id string) error
	}

	AlertStore interface {
		CreateAlert(ctx context.Context, a core.Alert) (core.Alert, error)
		ListAlerts(ctx context.Context, limit int) ([]core.Alert, error)
		HasAlert(ctx context.Context, kind core.AlertKind, message string) (bool, error)
	}

	// Pinger reports whether the underlying store is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	// Resetter wipes all records. Used by the seed command.
	Resetter interface {
		Reset(ctx context.Context) error
	}

	// Store bundles every port a backend provides.
	Store interface {
		TransactionStore
		ZoneStore
		AlertStore
		Pinger
		Resetter
	}
)

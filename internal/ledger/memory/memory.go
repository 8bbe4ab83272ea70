package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"spendsmart/internal/core"
	"spendsmart/internal/ledger"
)

// Store keeps transactions, zones and alerts in process memory.
type Store struct {
	mu     sync.Mutex
	nextID int64
	txs    []core.Transaction
	zones  []core.Zone
	alerts []core.Alert
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) id() string {
	s.nextID++
	return strconv.FormatInt(s.nextID, 10)
}

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs, s.zones, s.alerts = nil, nil, nil
	return nil
}

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.id()
	tx = cloneTx(tx)
	s.txs = append(s.txs, tx)
	return cloneTx(tx), nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTxs(s.txs), nil
}

// RecentTransactions sorts by date descending; ties keep the newest insert first.
func (s *Store) RecentTransactions(_ context.Context, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	out := make([]core.Transaction, len(s.txs))
	for i, tx := range s.txs {
		out[len(s.txs)-1-i] = cloneTx(tx)
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOfTx(id)
	if i < 0 {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return cloneTx(s.txs[i]), nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOfTx(tx.ID)
	if i < 0 {
		return core.Transaction{}, ledger.ErrNotFound
	}
	tx = cloneTx(tx)
	s.txs[i] = tx
	return cloneTx(tx), nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOfTx(id)
	if i < 0 {
		return ledger.ErrNotFound
	}
	s.txs = append(s.txs[:i], s.txs[i+1:]...)
	return nil
}

func (s *Store) CreateZone(_ context.Context, z core.Zone) (core.Zone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	z.ID = s.id()
	s.zones = append(s.zones, z)
	return z, nil
}

func (s *Store) ListZones(_ context.Context) ([]core.Zone, error) {
	s.mu.Lock()
	out := make([]core.Zone, len(s.zones))
	for i, z := range s.zones {
		out[len(s.zones)-1-i] = z
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteZone(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, z := range s.zones {
		if z.ID == id {
			s.zones = append(s.zones[:i], s.zones[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) CreateAlert(_ context.Context, a core.Alert) (core.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.alerts = append(s.alerts, a)
	return a, nil
}

// ListAlerts returns the newest alerts first.
func (s *Store) ListAlerts(_ context.Context, limit int) ([]core.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Alert, 0, len(s.alerts))
	for i := len(s.alerts) - 1; i >= 0; i-- {
		if limit >= 0 && len(out) == limit {
			break
		}
		out = append(out, s.alerts[i])
	}
	return out, nil
}

func (s *Store) HasAlert(_ context.Context, kind core.AlertKind, message string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alerts {
		if a.Kind == kind && a.Message == message {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) indexOfTx(id string) int {
	for i, tx := range s.txs {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

// cloneTx copies tx so the store and its callers never share a Location.
func cloneTx(tx core.Transaction) core.Transaction {
	tx.Location = copyLocation(tx.Location)
	return tx
}

func cloneTxs(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = cloneTx(tx)
	}
	return out
}

func copyLocation(l *core.Location) *core.Location {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

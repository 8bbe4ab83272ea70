package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendsmart/internal/core"
	"spendsmart/internal/ledger"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepository_TransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	date := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID:   core.DefaultUserID,
		Amount:   1200.5,
		Category: "Shopping",
		Date:     date,
		Mood:     core.MoodStressed,
		Note:     "mall",
		Location: &core.Location{Lat: 17.443, Lon: 78.345},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := repo.GetTransaction(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.True(t, got.Date.Equal(date))
	require.NotNil(t, got.Location)
	assert.Equal(t, 78.345, got.Location.Lon)

	noLoc, err := repo.CreateTransaction(ctx, core.Transaction{UserID: "demo", Amount: 5, Category: "Food", Date: date, Mood: core.MoodHappy})
	require.NoError(t, err)
	assert.Nil(t, noLoc.Location)
}

func TestSQLiteRepository_RecentOrdersByDateDesc(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, offset := range []int{3, 1, 4, 2} {
		_, err := repo.CreateTransaction(ctx, core.Transaction{
			UserID: "demo", Amount: float64(offset), Category: "General",
			Date: base.AddDate(0, 0, offset), Mood: core.MoodNeutral,
		})
		require.NoError(t, err)
	}

	recent, err := repo.RecentTransactions(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, []float64{4, 3, 2}, []float64{recent[0].Amount, recent[1].Amount, recent[2].Amount})

	all, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestSQLiteRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	created, err := repo.CreateTransaction(ctx, core.Transaction{UserID: "demo", Amount: 10, Category: "Food", Date: time.Now(), Mood: core.MoodBored})
	require.NoError(t, err)

	created.Amount = 42
	created.Mood = core.MoodHappy
	updated, err := repo.UpdateTransaction(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, 42.0, updated.Amount)
	assert.Equal(t, core.MoodHappy, updated.Mood)

	require.NoError(t, repo.DeleteTransaction(ctx, created.ID))
	assert.ErrorIs(t, repo.DeleteTransaction(ctx, created.ID), ledger.ErrNotFound)
	_, err = repo.GetTransaction(ctx, created.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	_, err = repo.UpdateTransaction(ctx, created)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestSQLiteRepository_MalformedIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, id := range []string{"", "abc", "-1", "0", "12x"} {
		_, err := repo.GetTransaction(ctx, id)
		assert.ErrorIs(t, err, ledger.ErrNotFound, "id %q", id)
		assert.ErrorIs(t, repo.DeleteZone(ctx, id), ledger.ErrNotFound, "id %q", id)
	}
}

func TestSQLiteRepository_Zones(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	base := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)

	older, err := repo.CreateZone(ctx, core.Zone{Lat: 1, Lon: 2, Radius: 200, Label: "old", CreatedAt: base})
	require.NoError(t, err)
	_, err = repo.CreateZone(ctx, core.Zone{Lat: 3, Lon: 4, Radius: 500, Label: "new", CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)

	zones, err := repo.ListZones(ctx)
	require.NoError(t, err)
	require.Len(t, zones, 2)
	assert.Equal(t, "new", zones[0].Label)
	assert.Equal(t, "old", zones[1].Label)

	require.NoError(t, repo.DeleteZone(ctx, older.ID))
	assert.ErrorIs(t, repo.DeleteZone(ctx, older.ID), ledger.ErrNotFound)
}

func TestSQLiteRepository_AlertsAndReset(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	now := time.Now()

	_, err := repo.CreateAlert(ctx, core.Alert{Kind: core.AlertShortfall, Message: "short", CreatedAt: now})
	require.NoError(t, err)
	_, err = repo.CreateAlert(ctx, core.Alert{Kind: core.AlertStressNudge, Message: "breathe", TransactionID: "7", CreatedAt: now.Add(time.Second)})
	require.NoError(t, err)

	has, err := repo.HasAlert(ctx, core.AlertShortfall, "short")
	require.NoError(t, err)
	assert.True(t, has)
	has, err = repo.HasAlert(ctx, core.AlertShortfall, "other")
	require.NoError(t, err)
	assert.False(t, has)

	alerts, err := repo.ListAlerts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "breathe", alerts[0].Message)
	assert.Equal(t, "7", alerts[0].TransactionID)

	_, err = repo.CreateTransaction(ctx, core.Transaction{UserID: "demo", Amount: 1, Category: "x", Date: now, Mood: core.MoodNeutral})
	require.NoError(t, err)
	require.NoError(t, repo.Reset(ctx))

	txs, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
	alerts, err = repo.ListAlerts(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestMigrations_VersionAndRollback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	require.NoError(t, RunMigrations(path))

	v, dirty, err := MigrationVersion(path)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), v)

	require.NoError(t, RollbackMigrations(path, 1))
	v, _, err = MigrationVersion(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)

	assert.Error(t, RollbackMigrations(path, 0))
}

func TestUnavailable(t *testing.T) {
	ctx := context.Background()
	u := Unavailable{Cause: errors.New("disk gone")}

	err := u.Ping(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "disk gone")

	_, err = u.RecentTransactions(ctx, 10)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, Unavailable{}.DeleteZone(ctx, "1"), ErrStoreUnavailable)
}

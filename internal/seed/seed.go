// Package seed loads the demo data set used for local development.
package seed

import (
	"context"
	"fmt"
	"time"

	"spendsmart/internal/core"
	"spendsmart/internal/ledger"
)

const day = 24 * time.Hour

// Transactions returns the sample transactions dated relative to now.
func Transactions(now time.Time) []core.Transaction {
	return []core.Transaction{
		{Amount: 1200, Category: "Shopping", Date: now.Add(-2 * day), Mood: core.MoodStressed, Note: "Impulse at mall", Location: &core.Location{Lat: 17.445, Lon: 78.349}},
		{Amount: 250, Category: "Food", Date: now.Add(-1 * day), Mood: core.MoodHappy, Note: "Cafe", Location: &core.Location{Lat: 17.437, Lon: 78.400}},
		{Amount: 600, Category: "Transport", Date: now.Add(-4 * day), Mood: core.MoodBored, Note: "Taxi"},
		{Amount: 3000, Category: "Shopping", Date: now.Add(-10 * day), Mood: core.MoodStressed, Note: "Big purchase"},
		{Amount: 150, Category: "Groceries", Date: now.Add(-3 * day), Mood: core.MoodNeutral},
	}
}

// Zones returns the sample danger zone.
func Zones(now time.Time) []core.Zone {
	return []core.Zone{
		{Lat: 17.443, Lon: 78.345, Radius: 500, Label: "Mega Mall", CreatedAt: now},
	}
}

type Store interface {
	ledger.TransactionStore
	ledger.ZoneStore
	ledger.Resetter
}

type Result struct {
	Transactions int
	Zones        int
}

// Run wipes store and inserts the sample data.
func Run(ctx context.Context, store Store, now time.Time) (Result, error) {
	if err := store.Reset(ctx); err != nil {
		return Result{}, fmt.Errorf("reset store: %w", err)
	}

	var res Result
	for _, tx := range Transactions(now) {
		tx.ApplyDefaults(now)
		if _, err := store.CreateTransaction(ctx, tx); err != nil {
			return res, fmt.Errorf("insert transaction %q: %w", tx.Note, err)
		}
		res.Transactions++
	}
	for _, z := range Zones(now) {
		if _, err := store.CreateZone(ctx, z); err != nil {
			return res, fmt.Errorf("insert zone %q: %w", z.Label, err)
		}
		res.Zones++
	}
	return res, nil
}

// Package analytics derives spending insights from a snapshot of transactions.
//
// Every function here is pure: it reads the slice it is given, never mutates it
// and never fails. Empty input yields zero-filled results.
package analytics

import (
	"spendsmart/internal/core"
)

// MoodTotals holds spend summed per mood plus the grand total.
type MoodTotals struct {
	ByMood map[core.Mood]float64 // always has all four moods
	Total  float64
	Count  map[core.Mood]int // only moods that occurred
}

// Sum returns the spend recorded under m.
func (t MoodTotals) Sum(m core.Mood) float64 {
	return t.ByMood[m]
}

type MoodReport struct {
	Totals MoodTotals
	// PercentMoreWhenStressed is the signed deviation of the average stressed
	// transaction from the average transaction, in percent.
	PercentMoreWhenStressed float64
}

// MoodPatterns aggregates spend by mood.
//
// With no Stressed transactions and a positive overall average the result is
// -100: the stressed average is taken as zero.
func MoodPatterns(txs []core.Transaction) MoodReport {
	totals := MoodTotals{
		ByMood: make(map[core.Mood]float64, len(core.Moods)),
		Count:  make(map[core.Mood]int),
	}
	for _, m := range core.Moods {
		totals.ByMood[m] = 0
	}

	for _, tx := range txs {
		m := core.ParseMood(string(tx.Mood))
		totals.ByMood[m] += tx.Amount
		totals.Total += tx.Amount
		totals.Count[m]++
	}

	avg := totals.Total / float64(max(1, len(txs)))

	var stressedAvg float64
	if n := totals.Count[core.MoodStressed]; n > 0 {
		stressedAvg = totals.ByMood[core.MoodStressed] / float64(n)
	}

	var pct float64
	if avg > 0 {
		pct = (stressedAvg - avg) / avg * 100
	}

	return MoodReport{Totals: totals, PercentMoreWhenStressed: pct}
}

package analytics

import (
	"fmt"
	"math"
	"time"

	"spendsmart/internal/core"
)

const (
	// LookbackWindow is fixed and does not follow the requested horizon.
	LookbackWindow = 30 * 24 * time.Hour

	// SampleSize is how many recent transactions the forecast reads.
	SampleSize = 200

	DefaultDays           = 30
	MaxDays               = 3650
	DefaultBalance        = 20000.0
	DefaultCurrencySymbol = "₹"
)

type ForecastPoint struct {
	Day       int
	Projected float64
}

type ForecastParams struct {
	Days           int
	Balance        float64
	Now            time.Time
	CurrencySymbol string
}

type ForecastReport struct {
	Points   []ForecastPoint
	AvgDaily float64 // rounded to 2 places
	Warnings []string
}

// AverageDailySpend spreads the spend observed in the lookback window ending at
// now over the window length in days.
func AverageDailySpend(txs []core.Transaction, now time.Time) float64 {
	cutoff := now.Add(-LookbackWindow)

	var totalRecent float64
	for _, tx := range txs {
		if !tx.Date.Before(cutoff) {
			totalRecent += tx.Amount
		}
	}

	daysObserved := math.Max(1, now.Sub(cutoff).Hours()/24)
	return totalRecent / daysObserved
}

// Forecast projects the balance forward one day at a time at the average
// daily spend and reports the first day the balance goes negative.
func Forecast(txs []core.Transaction, p ForecastParams) ForecastReport {
	if p.Now.IsZero() {
		p.Now = time.Now()
	}
	if p.CurrencySymbol == "" {
		p.CurrencySymbol = DefaultCurrencySymbol
	}

	avgDaily := AverageDailySpend(txs, p.Now)

	points := make([]ForecastPoint, 0, max(p.Days, 0))
	for d := 1; d <= p.Days; d++ {
		projected := p.Balance - avgDaily*float64(d)
		points = append(points, ForecastPoint{Day: d, Projected: core.Round2(projected)})
	}

	warnings := make([]string, 0, 1)
	if w, ok := ShortfallWarning(points, p.CurrencySymbol); ok {
		warnings = append(warnings, w)
	}

	return ForecastReport{
		Points:   points,
		AvgDaily: core.Round2(avgDaily),
		Warnings: warnings,
	}
}

// ShortfallWarning describes the first point with a strictly negative balance.
func ShortfallWarning(points []ForecastPoint, symbol string) (string, bool) {
	for _, pt := range points {
		if pt.Projected < 0 {
			short := core.FormatAmount(symbol, math.Abs(pt.Projected), 0)
			return fmt.Sprintf("You will run short by %s on day %d", short, pt.Day), true
		}
	}
	return "", false
}

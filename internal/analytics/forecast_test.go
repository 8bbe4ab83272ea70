package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendsmart/internal/core"
)

var now = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

func spentDaysAgo(amount float64, days int) core.Transaction {
	return core.Transaction{Amount: amount, Mood: core.MoodNeutral, Date: now.AddDate(0, 0, -days)}
}

func TestAverageDailySpend_FixedWindow(t *testing.T) {
	txs := []core.Transaction{
		spentDaysAgo(1500, 1),
		spentDaysAgo(1500, 29),
		spentDaysAgo(9999, 31), // outside the window
	}
	assert.Equal(t, 100.0, AverageDailySpend(txs, now))
}

func TestAverageDailySpend_CutoffIsInclusive(t *testing.T) {
	edge := core.Transaction{Amount: 300, Date: now.Add(-LookbackWindow)}
	assert.Equal(t, 10.0, AverageDailySpend([]core.Transaction{edge}, now))
}

func TestForecast_ShortfallOnDayEleven(t *testing.T) {
	// 3000 over 30 days -> 100 a day
	txs := []core.Transaction{spentDaysAgo(1000, 2), spentDaysAgo(2000, 5)}

	report := Forecast(txs, ForecastParams{Days: 12, Balance: 1000, Now: now})

	require.Len(t, report.Points, 12)
	assert.Equal(t, 100.0, report.AvgDaily)
	assert.Equal(t, 0.0, report.Points[9].Projected, "day 10 reaches zero but is not short")
	assert.Equal(t, -100.0, report.Points[10].Projected)
	assert.Equal(t, []string{"You will run short by ₹100 on day 11"}, report.Warnings)
}

func TestForecast_NoWarningWhenBalanceHolds(t *testing.T) {
	report := Forecast([]core.Transaction{spentDaysAgo(300, 3)}, ForecastParams{Days: 30, Balance: 20000, Now: now})

	require.Len(t, report.Points, 30)
	assert.NotNil(t, report.Warnings)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, 19700.0, report.Points[29].Projected)
}

func TestForecast_PointsMatchClosedForm(t *testing.T) {
	txs := []core.Transaction{
		spentDaysAgo(1200, 2),
		spentDaysAgo(250, 1),
		spentDaysAgo(600, 4),
		spentDaysAgo(3000, 10),
		spentDaysAgo(150, 3),
	}
	params := ForecastParams{Days: 45, Balance: 1234.56, Now: now}
	report := Forecast(txs, params)
	avgDaily := AverageDailySpend(txs, now)

	require.Len(t, report.Points, params.Days)
	for i, pt := range report.Points {
		assert.Equal(t, i+1, pt.Day)
		assert.Equal(t, core.Round2(params.Balance-avgDaily*float64(i+1)), pt.Projected, "day %d", pt.Day)
	}
	assert.Equal(t, core.Round2(avgDaily), report.AvgDaily)
}

func TestForecast_WarningIsFirstNegativeDay(t *testing.T) {
	txs := []core.Transaction{spentDaysAgo(4500, 1)} // 150 a day
	report := Forecast(txs, ForecastParams{Days: 40, Balance: 1000, Now: now})

	first := -1
	for i, pt := range report.Points {
		if pt.Projected < 0 {
			first = i + 1
			break
		}
	}
	require.Equal(t, 7, first)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "You will run short by ₹50 on day 7", report.Warnings[0])
}

func TestForecast_EmptySample(t *testing.T) {
	report := Forecast(nil, ForecastParams{Days: 3, Balance: 500, Now: now})

	assert.Zero(t, report.AvgDaily)
	assert.Equal(t, []ForecastPoint{{1, 500}, {2, 500}, {3, 500}}, report.Points)
	assert.Empty(t, report.Warnings)
}

func TestForecast_ZeroDays(t *testing.T) {
	report := Forecast([]core.Transaction{spentDaysAgo(100, 1)}, ForecastParams{Days: 0, Balance: -5, Now: now})
	assert.Empty(t, report.Points)
	assert.Empty(t, report.Warnings)
}

func TestForecast_CustomCurrencySymbol(t *testing.T) {
	report := Forecast([]core.Transaction{spentDaysAgo(3000, 1)}, ForecastParams{Days: 2, Balance: 50, Now: now, CurrencySymbol: "€"})
	assert.Equal(t, []string{"You will run short by €50 on day 1"}, report.Warnings)
}

func TestNearbyAlternatives(t *testing.T) {
	alts := NearbyAlternatives(17.44, 78.35)
	require.Len(t, alts, 2)

	assert.Equal(t, "Budget Mart", alts[0].Name)
	assert.InDelta(t, 17.45, alts[0].Lat, 1e-9)
	assert.InDelta(t, 78.36, alts[0].Lon, 1e-9)
	assert.Equal(t, 30, alts[0].EstSavingPercent)

	assert.Equal(t, "Discount Bazaar", alts[1].Name)
	assert.InDelta(t, 17.433, alts[1].Lat, 1e-9)
	assert.InDelta(t, 78.354, alts[1].Lon, 1e-9)
	assert.Equal(t, 20, alts[1].EstSavingPercent)
}

package http

import (
	"context"
	"net/http"

	"spendsmart/internal/analytics"
	applog "spendsmart/internal/log"
)

const moodPatternsKey = "mood-patterns"

func (s *Server) handleMoodPatterns(w http.ResponseWriter, r *http.Request) {
	report, err := s.moodReport(r.Context())
	if err != nil {
		writeError(w, r, applog.OpMood, err)
		return
	}
	writeJSON(w, r, http.StatusOK, moodPatternsResponse{
		Totals:                  moodTotalsDTO(report.Totals),
		PercentMoreWhenStressed: report.PercentMoreWhenStressed,
	})
}

// moodReport serves the aggregate from cache. Writes through the
// transaction service purge it; a report loaded across a purge is returned
// but not cached.
func (s *Server) moodReport(ctx context.Context) (analytics.MoodReport, error) {
	if report, ok := s.moodCache.Get(moodPatternsKey); ok {
		applog.FromContext(ctx).DebugContext(ctx, "Mood patterns cache hit")
		return report, nil
	}
	gen := s.moodCache.Generation()

	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	txs, err := s.store.ListTransactions(cctx)
	if err != nil {
		return analytics.MoodReport{}, err
	}

	report := analytics.MoodPatterns(txs)
	if !s.moodCache.SetIfGeneration(moodPatternsKey, report, gen) {
		applog.FromContext(ctx).DebugContext(ctx, "Mood patterns changed during load, not caching")
	}
	return report, nil
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	q, err := parseForecastQuery(r.URL.Query(), s.opts.ForecastDays, s.opts.DefaultBalance)
	if err != nil {
		writeError(w, r, applog.OpForecast, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	recent, err := s.store.RecentTransactions(ctx, analytics.SampleSize)
	if err != nil {
		writeError(w, r, applog.OpForecast, err)
		return
	}

	report := analytics.Forecast(recent, analytics.ForecastParams{
		Days:           q.Days,
		Balance:        q.Balance,
		Now:            s.now(),
		CurrencySymbol: s.opts.CurrencySymbol,
	})
	writeJSON(w, r, http.StatusOK, toForecastResponse(report))
}

func (s *Server) handleNearbyAlternatives(w http.ResponseWriter, r *http.Request) {
	loc, err := parseCoordinates(r.URL.Query())
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}

	alts := analytics.NearbyAlternatives(loc.Lat, loc.Lon)
	out := make([]alternativeDTO, len(alts))
	for i, a := range alts {
		out[i] = alternativeDTO{Name: a.Name, Lat: a.Lat, Lon: a.Lon, EstSavingPercent: a.EstSavingPercent}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"alternatives": out})
}

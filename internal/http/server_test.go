package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendsmart/internal/amqp"
	"spendsmart/internal/core"
	"spendsmart/internal/ledger/memory"
	"spendsmart/internal/storage"
)

type recordingPublisher struct {
	events []*amqp.TransactionEvent
}

func (p *recordingPublisher) PublishTransactionEvent(_ context.Context, e *amqp.TransactionEvent) error {
	p.events = append(p.events, e)
	return nil
}

func newTestServer(t *testing.T, mutate func(*Options)) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	srv := NewServer(":0", store, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, store
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.RemoteAddr = "203.0.113.10:1234"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])

	rec = do(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestDegradedStore(t *testing.T) {
	srv := NewServer(":0", storage.Unavailable{Cause: errors.New("disk gone")}, DefaultOptions())
	defer srv.Shutdown(context.Background())

	rec := do(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	for _, path := range []string{"/api/transactions", "/api/danger-zones", "/api/analytics/mood-patterns", "/api/analytics/forecast"} {
		rec := do(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.Contains(t, decode(t, rec)["error"], "store unavailable", path)
	}

	rec = do(t, srv, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code, "liveness does not depend on the store")

	rec = do(t, srv, http.MethodGet, "/api/analytics/nearby-alternatives?lat=1&lon=2", "")
	assert.Equal(t, http.StatusOK, rec.Code, "the stub does not read the store")
}

func TestCreateTransaction(t *testing.T) {
	pub := &recordingPublisher{}
	srv, store := newTestServer(t, func(o *Options) { o.Publisher = pub })

	rec := do(t, srv, http.MethodPost, "/api/transactions", `{"amount": 120.5, "mood": "Stressed", "note": "coffee", "location": {"lat": 17.44, "lon": 78.34}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	tx := body["transaction"].(map[string]any)
	assert.Equal(t, tx["_id"], tx["id"])
	assert.Equal(t, 120.5, tx["amount"])
	assert.Equal(t, "General", tx["category"])
	assert.Equal(t, "Stressed", tx["mood"])
	assert.Equal(t, "demo", tx["userId"])
	assert.NotEmpty(t, tx["date"])

	all, err := store.ListTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].Location)
	assert.Equal(t, 17.44, all[0].Location.Lat)

	require.Len(t, pub.events, 1)
	assert.Equal(t, amqp.EventTransactionCreated, pub.events[0].Type)
}

func TestCreateTransaction_Defaults(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/transactions", `{"amount": "12,50", "date": "2025-05-01"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tx := decode(t, rec)["transaction"].(map[string]any)
	assert.Equal(t, 12.5, tx["amount"])
	assert.Equal(t, "Neutral", tx["mood"])
	assert.Equal(t, "2025-05-01T00:00:00Z", tx["date"])
}

func TestCreateTransaction_Invalid(t *testing.T) {
	srv, store := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing amount", `{"category": "Food"}`, "amount must be a positive number"},
		{"zero amount", `{"amount": 0}`, "amount must be a positive number"},
		{"negative amount", `{"amount": -3}`, "amount must be a positive number"},
		{"non numeric amount", `{"amount": "lots"}`, "amount must be a number"},
		{"unknown mood", `{"amount": 5, "mood": "Ecstatic"}`, "mood must be one of"},
		{"bad location", `{"amount": 5, "location": {"lat": 200, "lon": 0}}`, "lat and lon"},
		{"bad date", `{"amount": 5, "date": "yesterday"}`, "date must be"},
		{"malformed json", `{"amount": `, "invalid JSON body"},
		{"empty body", ``, "request body is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/transactions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode(t, rec)["error"], tt.want)
		})
	}

	all, _ := store.ListTransactions(context.Background())
	assert.Empty(t, all)
}

func TestListTransactions_NewestFirst(t *testing.T) {
	srv, store := newTestServer(t, nil)
	ctx := context.Background()
	base := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	for _, offset := range []int{-2, 0, -5} {
		_, err := store.CreateTransaction(ctx, core.Transaction{Amount: 1, Mood: core.MoodNeutral, Date: base.AddDate(0, 0, offset)})
		require.NoError(t, err)
	}

	rec := do(t, srv, http.MethodGet, "/api/transactions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	txs := decode(t, rec)["transactions"].([]any)
	require.Len(t, txs, 3)
	var dates []string
	for _, tx := range txs {
		dates = append(dates, tx.(map[string]any)["date"].(string))
	}
	assert.Equal(t, []string{"2025-05-10T00:00:00Z", "2025-05-08T00:00:00Z", "2025-05-05T00:00:00Z"}, dates)
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/transactions", `{"amount": 40, "mood": "Happy", "category": "Food"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode(t, rec)["transaction"].(map[string]any)["id"].(string)

	rec = do(t, srv, http.MethodPut, "/api/transactions/"+id, `{"amount": 45, "mood": "Bored"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tx := decode(t, rec)["transaction"].(map[string]any)
	assert.Equal(t, 45.0, tx["amount"])
	assert.Equal(t, "Bored", tx["mood"])

	rec = do(t, srv, http.MethodPut, "/api/transactions/999", `{"amount": 1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())

	rec = do(t, srv, http.MethodDelete, "/api/transactions/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = do(t, srv, http.MethodDelete, "/api/transactions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestZones(t *testing.T) {
	srv, store := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/danger-zones", `{"lat": 17.443, "lon": 78.345}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode(t, rec)
	assert.Equal(t, 200.0, first["radius"])
	assert.Equal(t, "zone", first["label"])
	assert.Equal(t, first["_id"], first["id"])

	rec = do(t, srv, http.MethodPost, "/api/danger-zones", `{"lat": 1, "lon": 2, "radius": 50, "label": "Mall"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/danger-zones", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var zones []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &zones))
	require.Len(t, zones, 2)
	assert.Equal(t, "Mall", zones[0]["label"], "newest first")

	for _, body := range []string{`{"lat": "17", "lon": 78}`, `{"lon": 78}`, `{"lat": 1, "lon": 2, "radius": -1}`} {
		rec = do(t, srv, http.MethodPost, "/api/danger-zones", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	rec = do(t, srv, http.MethodPost, "/api/danger-zones", `{"lon": 78}`)
	assert.JSONEq(t, `{"error":"lat and lon must be numbers"}`, rec.Body.String())

	rec = do(t, srv, http.MethodDelete, "/api/danger-zones/"+first["id"].(string), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, srv, http.MethodDelete, "/api/danger-zones/"+first["id"].(string), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	remaining, _ := store.ListZones(context.Background())
	assert.Len(t, remaining, 1)
}

func TestMoodPatterns_CachedAndInvalidated(t *testing.T) {
	srv, store := newTestServer(t, nil)
	ctx := context.Background()
	for _, tx := range []core.Transaction{
		{Amount: 100, Mood: core.MoodStressed},
		{Amount: 50, Mood: core.MoodHappy},
		{Amount: 50, Mood: core.MoodNeutral},
	} {
		_, err := store.CreateTransaction(ctx, tx)
		require.NoError(t, err)
	}

	rec := do(t, srv, http.MethodGet, "/api/analytics/mood-patterns", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	totals := body["totals"].(map[string]any)
	assert.Equal(t, 100.0, totals["Stressed"])
	assert.Equal(t, 50.0, totals["Happy"])
	assert.Equal(t, 0.0, totals["Bored"])
	assert.Equal(t, 50.0, totals["Neutral"])
	assert.Equal(t, 200.0, totals["total"])
	assert.Equal(t, map[string]any{"Stressed": 1.0, "Happy": 1.0, "Neutral": 1.0}, totals["count"])
	assert.InDelta(t, 50.0, body["percentMoreWhenStressed"], 1e-9)

	// direct store writes bypass invalidation, so the cached report is served
	_, err := store.CreateTransaction(ctx, core.Transaction{Amount: 100, Mood: core.MoodBored})
	require.NoError(t, err)
	rec = do(t, srv, http.MethodGet, "/api/analytics/mood-patterns", "")
	assert.Equal(t, 200.0, decode(t, rec)["totals"].(map[string]any)["total"])

	// writes through the API purge the cache
	rec = do(t, srv, http.MethodPost, "/api/transactions", `{"amount": 100, "mood": "Bored"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, srv, http.MethodGet, "/api/analytics/mood-patterns", "")
	assert.Equal(t, 400.0, decode(t, rec)["totals"].(map[string]any)["total"])
}

// gatedStore holds the first ListTransactions call after it has read its
// snapshot until release is closed.
type gatedStore struct {
	*memory.Store
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := g.Store.ListTransactions(ctx)
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return txs, err
}

func TestMoodPatterns_WriteDuringLoadIsNotHidden(t *testing.T) {
	store := &gatedStore{Store: memory.New(), entered: make(chan struct{}), release: make(chan struct{})}
	srv := NewServer(":0", store, DefaultOptions())
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	done := make(chan int)
	go func() {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/mood-patterns", nil))
		done <- rec.Code
	}()

	<-store.entered
	rec := do(t, srv, http.MethodPost, "/api/transactions", `{"amount": 100, "mood": "Stressed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	close(store.release)
	require.Equal(t, http.StatusOK, <-done)

	rec = do(t, srv, http.MethodGet, "/api/analytics/mood-patterns", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100.0, decode(t, rec)["totals"].(map[string]any)["total"])
}

func TestMoodPatterns_Empty(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/analytics/mood-patterns", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, 0.0, body["percentMoreWhenStressed"])
	assert.Equal(t, 0.0, body["totals"].(map[string]any)["total"])
}

func TestForecast(t *testing.T) {
	srv, store := newTestServer(t, nil)
	_, err := store.CreateTransaction(context.Background(), core.Transaction{
		Amount: 3000, Mood: core.MoodNeutral, Date: time.Now().Add(-24 * time.Hour),
	})
	require.NoError(t, err)

	rec := do(t, srv, http.MethodGet, "/api/analytics/forecast?days=12&balance=1000", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp forecastResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Forecast, 12)
	assert.InDelta(t, 100.0, resp.AvgDaily, 0.01)
	assert.InDelta(t, 0.0, resp.Forecast[9].Projected, 0.01)
	assert.Equal(t, []string{"You will run short by ₹100 on day 11"}, resp.Warnings)
}

func TestForecast_DefaultsAndValidation(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/analytics/forecast", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp forecastResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Forecast, 30)
	assert.Equal(t, 20000.0, resp.Forecast[0].Projected)
	assert.NotNil(t, resp.Warnings)
	assert.True(t, strings.Contains(rec.Body.String(), `"warnings":[]`))

	for _, q := range []string{"days=abc", "days=0", "days=99999", "balance=lots"} {
		rec := do(t, srv, http.MethodGet, "/api/analytics/forecast?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestNearbyAlternatives(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/analytics/nearby-alternatives?lat=17.4&lon=78.3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	alts := decode(t, rec)["alternatives"].([]any)
	require.Len(t, alts, 2)
	first := alts[0].(map[string]any)
	assert.Equal(t, "Budget Mart", first["name"])
	assert.InDelta(t, 17.41, first["lat"], 1e-9)
	assert.InDelta(t, 78.31, first["lon"], 1e-9)
	assert.Equal(t, 30.0, first["estSavingPercent"])

	rec = do(t, srv, http.MethodGet, "/api/analytics/nearby-alternatives", "")
	assert.Equal(t, http.StatusOK, rec.Code, "missing coordinates default to 0")

	rec = do(t, srv, http.MethodGet, "/api/analytics/nearby-alternatives?lat=abc&lon=1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAlerts(t *testing.T) {
	srv, store := newTestServer(t, nil)
	ctx := context.Background()
	for _, msg := range []string{"first", "second"} {
		_, err := store.CreateAlert(ctx, core.Alert{Kind: core.AlertShortfall, Message: msg, CreatedAt: time.Now()})
		require.NoError(t, err)
	}

	rec := do(t, srv, http.MethodGet, "/api/alerts?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	alerts := decode(t, rec)["alerts"].([]any)
	require.Len(t, alerts, 1)
	assert.Equal(t, "second", alerts[0].(map[string]any)["message"])

	rec = do(t, srv, http.MethodGet, "/api/alerts?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSAndRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, func(o *Options) { o.RateLimitPerMinute = 1 })

	req := httptest.NewRequest(http.MethodOptions, "/api/transactions", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, srv, http.MethodPost, "/api/transactions", `{"amount": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, srv, http.MethodPost, "/api/transactions", `{"amount": 1}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	rec = do(t, srv, http.MethodGet, "/api/transactions", "")
	assert.Equal(t, http.StatusOK, rec.Code, "reads are not rate limited")

	tm, rl, _ := srv.Metrics()
	assert.EqualValues(t, 1, rl.Rejected)
	assert.Positive(t, tm.TotalRequests)
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
}

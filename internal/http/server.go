// Package http exposes the transaction, zone, analytics and alert routes.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"spendsmart/internal/analytics"
	"spendsmart/internal/cache"
	"spendsmart/internal/ledger"
	applog "spendsmart/internal/log"
	"spendsmart/internal/middleware/ratelimit"
	"spendsmart/internal/middleware/security"
	"spendsmart/internal/middleware/trace"
	"spendsmart/internal/services"
)

// storeTimeout bounds every store call made on behalf of a request.
const storeTimeout = 7 * time.Second

const (
	moodCacheTTL      = 5 * time.Minute
	cacheCleanupEvery = 10 * time.Minute
)

type Options struct {
	CORSOrigin         string
	RateLimitPerMinute int

	DefaultBalance float64
	ForecastDays   int
	CurrencySymbol string

	// Publisher receives transaction events. May be nil.
	Publisher services.EventPublisher
	Logger    *applog.Logger
}

func DefaultOptions() Options {
	return Options{
		CORSOrigin:         "*",
		RateLimitPerMinute: ratelimit.DefaultConfig().RequestsPerMinute,
		DefaultBalance:     analytics.DefaultBalance,
		ForecastDays:       analytics.DefaultDays,
		CurrencySymbol:     analytics.DefaultCurrencySymbol,
	}
}

type Server struct {
	http.Server

	store        ledger.Store
	transactions *services.TransactionService
	opts         Options
	logger       *applog.Logger

	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	moodCache    cache.Cache[analytics.MoodReport]
	cacheManager *cache.Manager

	now       func() time.Time
	startedAt time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware around store.
func NewServer(addr string, store ledger.Store, opts Options) *Server {
	defaults := DefaultOptions()
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = defaults.RateLimitPerMinute
	}
	if opts.ForecastDays <= 0 {
		opts.ForecastDays = defaults.ForecastDays
	}
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = defaults.CurrencySymbol
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = defaults.CORSOrigin
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.Config{Component: applog.ComponentHTTP})
	}

	s := &Server{
		store:     store,
		opts:      opts,
		logger:    opts.Logger,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		now:       time.Now,
	}
	moodCache := cache.NewLRUCache[analytics.MoodReport](1, moodCacheTTL)
	s.moodCache = moodCache
	s.startedAt = s.now()
	s.transactions = services.NewTransactionService(store, opts.Publisher, s.moodCache.Purge)

	s.cacheManager = cache.NewManager()
	s.cacheManager.Register(moodCache)
	s.cacheManager.StartCleanup(cacheCleanupEvery)

	resolver := security.NewClientIPResolver()
	s.tracer = trace.NewMiddleware(s.logger, resolver.ClientIP)

	s.Server = http.Server{
		Addr:    addr,
		Handler: s.routes(resolver),
	}
	return s
}

func (s *Server) routes(resolver *security.ClientIPResolver) http.Handler {
	r := chi.NewRouter()

	r.Use(s.tracer.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(security.CORS(s.opts.CORSOrigin))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, r, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/ping", handlePing)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	limitWrites := s.limiter.Middleware(resolver.ClientIP, func(req *http.Request) {
		applog.FromContext(req.Context()).WarnContext(req.Context(), "Rate limit exceeded",
			applog.FieldClientIP, resolver.ClientIP(req),
			applog.FieldMethod, req.Method,
			applog.FieldPath, req.URL.Path)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.With(limitWrites).Post("/", s.handleCreateTransaction)
			r.With(limitWrites).Put("/{id}", s.handleUpdateTransaction)
			r.With(limitWrites).Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Route("/danger-zones", func(r chi.Router) {
			r.Get("/", s.handleListZones)
			r.With(limitWrites).Post("/", s.handleCreateZone)
			r.With(limitWrites).Delete("/{id}", s.handleDeleteZone)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/mood-patterns", s.handleMoodPatterns)
			r.Get("/forecast", s.handleForecast)
			r.Get("/nearby-alternatives", s.handleNearbyAlternatives)
		})

		r.Get("/alerts", s.handleListAlerts)
	})

	return r
}

// Metrics returns request and rate limit counters.
func (s *Server) Metrics() (trace.Metrics, ratelimit.Metrics, cache.Stats) {
	return s.tracer.GetMetrics(), s.limiter.GetMetrics(), s.moodCache.Stats()
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

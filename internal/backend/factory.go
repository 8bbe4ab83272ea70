package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spendsmart/internal/amqp"
	"spendsmart/internal/ledger"
	"spendsmart/internal/ledger/memory"
	gsheet "spendsmart/internal/sheets/google"
	"spendsmart/internal/storage"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger.With("component", "backend")}
}

// CreateBackend opens the store, then the optional event bus and exporter.
// Failures of the optional parts are logged and leave them nil.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	result := &BackendResult{}
	var closers []func() error

	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		result.Store = repo
		closers = append(closers, repo.Close)
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		result.Store = memory.New()
		f.logger.Info("Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			// assigned only on success so the interfaces never hold a typed nil
			result.Publisher = client
			result.Events = client
			closers = append([]func() error{client.Close}, closers...)
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	if config.GoogleSpreadsheetID != "" {
		exporter, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
			OAuthClient: gsheet.OAuthClient{
				JSON: config.GoogleOAuthClientJSON,
				File: config.GoogleOAuthClientFile,
			},
			OAuthTokenFile: config.GoogleOAuthTokenFile,
		})
		if err != nil {
			f.logger.Warn("Failed to initialize Google Sheets exporter, continuing without export", "error", err)
		} else {
			result.Exporter = exporter
			f.logger.Info("Initialized Google Sheets exporter", "spreadsheet_id", config.GoogleSpreadsheetID)
		}
	}

	result.Cleanup = func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}
	return result, nil
}

// OpenOrUnavailable returns the backend or, when the store cannot be opened,
// a result whose store fails every call with storage.ErrStoreUnavailable.
func OpenOrUnavailable(ctx context.Context, f Factory, config Config, logger *slog.Logger) *BackendResult {
	result, err := f.CreateBackend(ctx, config)
	if err == nil {
		return result
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("Store unavailable, serving in degraded mode", "component", "backend", "error", err)
	var store ledger.Store = storage.Unavailable{Cause: err}
	return &BackendResult{Store: store}
}

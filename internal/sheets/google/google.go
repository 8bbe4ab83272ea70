package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"spendsmart/internal/core"
	ports "spendsmart/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const DefaultSheetName = "Transactions"

// Options configures the exporter. An OAuth client with a saved token wins
// over service account credentials. CredentialsJSON wins over
// CredentialsFile; with neither set GOOGLE_APPLICATION_CREDENTIALS is consulted.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string

	OAuthClient    OAuthClient
	OAuthTokenFile string
}

type Exporter struct {
	values        valuesAppender
	spreadsheetID string
	sheet         string
}

var _ ports.TransactionExporter = (*Exporter)(nil)

// valuesAppender is the slice of the Sheets API the exporter needs.
type valuesAppender interface {
	Append(ctx context.Context, spreadsheetID, rng string, vr *gsheet.ValueRange) (*gsheet.AppendValuesResponse, error)
}

type sheetsValues struct {
	svc *gsheet.Service
}

func (s sheetsValues) Append(ctx context.Context, spreadsheetID, rng string, vr *gsheet.ValueRange) (*gsheet.AppendValuesResponse, error) {
	return s.svc.Spreadsheets.Values.Append(spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
}

// New creates an exporter backed by a user token or a service account.
func New(ctx context.Context, opts Options) (*Exporter, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	base := strings.TrimSpace(opts.SheetName)
	if base == "" {
		base = DefaultSheetName
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Exporter{
		values:        sheetsValues{svc: svc},
		spreadsheetID: spreadsheetID,
		sheet:         yearPrefixedName(base, time.Now().Year()),
	}, nil
}

func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	if opts.OAuthClient.configured() {
		ts, err := oauthTokenSource(ctx, opts.OAuthClient, opts.OAuthTokenFile)
		if err != nil {
			return nil, err
		}
		service, err := gsheet.NewService(ctx, goption.WithTokenSource(ts))
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		slog.InfoContext(ctx, "Google Sheets service created", "auth", "oauth")
		return service, nil
	}

	credentialsJSON, err := loadCredentials(opts)
	if err != nil {
		return nil, err
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "auth", "service_account")
	return service, nil
}

func loadCredentials(opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Export appends one row: date, category, amount, mood, note, id.
func (e *Exporter) Export(ctx context.Context, tx core.Transaction) (string, error) {
	if e.values == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:F", e.sheet)
	resp, err := e.values.Append(ctx, e.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{transactionRow(tx)}})
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", e.sheet, err)
	}

	ref := rng
	if resp != nil && resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

func transactionRow(tx core.Transaction) []any {
	return []any{
		tx.Date.UTC().Format("2006-01-02"),
		tx.Category,
		core.Round2(tx.Amount),
		core.ParseMood(string(tx.Mood)).String(),
		tx.Note,
		tx.ID,
	}
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

package sheets

import (
	"context"

	"spendsmart/internal/core"
)

// Ports for outbound spreadsheet adapters.
type (
	// TransactionExporter appends a transaction to an external spreadsheet.
	TransactionExporter interface {
		Export(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}
)

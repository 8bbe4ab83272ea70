package http

import (
	"errors"
	"net/http"

	"spendsmart/internal/core"
	"spendsmart/internal/ledger"
	applog "spendsmart/internal/log"
)

// statusFor maps an error to its HTTP status and client-facing message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// writeError logs and writes err. Only server errors are logged at error level.
func writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status, message := statusFor(err)

	logger := applog.FromContext(r.Context())
	attrs := []any{applog.FieldOperation, operation, applog.FieldStatusCode, status, applog.FieldError, err}
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", attrs...)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", attrs...)
	}

	writeErrorMessage(w, r, status, message)
}

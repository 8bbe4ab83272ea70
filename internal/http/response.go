package http

import (
	"encoding/json"
	"net/http"

	applog "spendsmart/internal/log"
)

// writeJSON encodes v with the given status. Encoding failures are logged
// since the status line is already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response", applog.FieldError, err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeErrorMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, errorResponse{Error: message})
}

type successResponse struct {
	Success     bool            `json:"success"`
	Transaction *transactionDTO `json:"transaction,omitempty"`
}

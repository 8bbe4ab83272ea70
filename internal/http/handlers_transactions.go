package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	applog "spendsmart/internal/log"
)

// listTransactionsLimit caps GET /api/transactions.
const listTransactionsLimit = 500

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	tx, err := req.toTransaction()
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	saved, err := s.transactions.Create(ctx, tx)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		applog.FieldTransactionID, saved.ID,
		applog.FieldAmount, saved.Amount,
		applog.FieldMood, saved.Mood)

	dto := toTransactionDTO(saved)
	writeJSON(w, r, http.StatusOK, successResponse{Success: true, Transaction: &dto})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	txs, err := s.store.RecentTransactions(ctx, listTransactionsLimit)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}

	out := make([]transactionDTO, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionDTO(tx)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"transactions": out})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	tx, err := req.toTransaction()
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	updated, err := s.transactions.Update(ctx, id, tx)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction updated", applog.FieldTransactionID, updated.ID)

	dto := toTransactionDTO(updated)
	writeJSON(w, r, http.StatusOK, successResponse{Success: true, Transaction: &dto})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := s.transactions.Delete(ctx, id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted", applog.FieldTransactionID, id)
	writeJSON(w, r, http.StatusOK, successResponse{Success: true})
}

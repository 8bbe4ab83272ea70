package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	applog "spendsmart/internal/log"
)

func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	zones, err := s.store.ListZones(ctx)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}

	out := make([]zoneDTO, len(zones))
	for i, z := range zones {
		out[i] = toZoneDTO(z)
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleCreateZone(w http.ResponseWriter, r *http.Request) {
	var req zoneRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	zone, err := req.toZone()
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	zone.ApplyDefaults(time.Now())
	if err := zone.Validate(); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	saved, err := s.store.CreateZone(ctx, zone)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Danger zone created",
		applog.FieldZoneID, saved.ID, "label", saved.Label)
	writeJSON(w, r, http.StatusCreated, toZoneDTO(saved))
}

func (s *Server) handleDeleteZone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := s.store.DeleteZone(ctx, id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Danger zone deleted", applog.FieldZoneID, id)
	writeJSON(w, r, http.StatusOK, successResponse{Success: true})
}

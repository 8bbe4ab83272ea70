package http

import (
	"context"
	"net/http"

	applog "spendsmart/internal/log"
)

const (
	defaultAlertsLimit = 50
	maxAlertsLimit     = 500
)

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r.URL.Query(), "limit", defaultAlertsLimit, 1, maxAlertsLimit)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	alerts, err := s.store.ListAlerts(ctx, limit)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}

	out := make([]alertDTO, len(alerts))
	for i, a := range alerts {
		out[i] = toAlertDTO(a)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"alerts": out})
}

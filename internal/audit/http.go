package audit

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// NewHTTPHandler exposes the audit store read-only over HTTP, mounted
// by the admin server.
func NewHTTPHandler(sink Sink) http.Handler {
	r := chi.NewRouter()
	r.Get("/recent", handleRecent(sink))
	return r
}

func handleRecent(sink Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = n
		}
		items, err := sink.Recent(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "query recent entries failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

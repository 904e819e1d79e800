package handlers

import (
	"context"
	"net/http"
	"time"
)

// Disclaimer is served by GET /api/disclaimer
const Disclaimer = "We are not medical advisors. This platform lists community-submitted health service centers. Always consult qualified medical professionals before making health decisions."

// Pinger reports whether a backing dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves liveness and the static disclaimer
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new health handler. db may be nil.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "unavailable",
				"database": "down",
			})
			return
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "HealthFinder API is running",
	})
}

// Disclaimer handles GET /api/disclaimer
func (h *HealthHandler) Disclaimer(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, messageResponse{Message: Disclaimer})
}

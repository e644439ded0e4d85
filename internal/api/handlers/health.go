package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/api/models"
)

// Health reports liveness, uptime, and the trading pairs with live books
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	pairs := h.Engines.Symbols()
	sort.Strings(pairs)

	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:        "healthy",
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: int64(time.Since(h.StartedAt).Seconds()),
		Version:       h.Version,
		Pairs:         pairs,
	})
}

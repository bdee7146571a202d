package handler

import (
	"encoding/json"
	"net/http"

	"github.com/blaisecz/smart-wake/internal/service"
)

type StatusHandler struct {
	sync service.SyncService
}

func NewStatusHandler(sync service.SyncService) *StatusHandler {
	return &StatusHandler{sync: sync}
}

// Get handles GET /v1/status
// @Summary Device link status
// @Description Reachability of the paired device, the last successful sync and the last state it reported.
// @Tags status
// @Produce json
// @Success 200 {object} domain.SyncStatus
// @Router /status [get]
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.sync.Status())
}

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blaisecz/smart-wake/internal/domain"
)

func TestStatusHandler_Get(t *testing.T) {
	syncedAt := time.Date(2026, 1, 20, 6, 40, 0, 0, time.UTC)
	score := 0.61
	handler := NewStatusHandler(&MockSyncService{status: domain.SyncStatus{
		Reachable:   true,
		LastSyncAt:  &syncedAt,
		DeviceState: "Monitoring",
		LastScore:   &score,
	}})
	rec := httptest.NewRecorder()

	handler.Get(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Get() status = %d, want 200", rec.Code)
	}

	var status domain.SyncStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !status.Reachable || status.DeviceState != "Monitoring" {
		t.Errorf("unexpected status: %+v", status)
	}
	if status.LastScore == nil || *status.LastScore != score {
		t.Errorf("last_score = %v, want %v", status.LastScore, score)
	}
	if status.LastSyncAt == nil || !status.LastSyncAt.Equal(syncedAt) {
		t.Errorf("last_sync_at = %v, want %v", status.LastSyncAt, syncedAt)
	}
}

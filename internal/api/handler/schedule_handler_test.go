package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blaisecz/smart-wake/internal/domain"
	"github.com/blaisecz/smart-wake/pkg/problem"
)

func TestScheduleHandler_Update(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockService    *MockScheduleService
		wantStatusCode int
		wantSynced     bool
	}{
		{
			name:           "valid request",
			body:           `{"wake_time_local": "07:30", "window_minutes": 30, "sensitivity": "balanced"}`,
			mockService:    &MockScheduleService{},
			wantStatusCode: http.StatusOK,
			wantSynced:     true,
		},
		{
			name: "device unreachable is still a success",
			body: `{"wake_time_local": "06:45", "window_minutes": 20, "sensitivity": "sensitive"}`,
			mockService: &MockScheduleService{
				updateFunc: func(ctx context.Context, req *domain.UpdateScheduleRequest) (*domain.ScheduleSyncResponse, error) {
					return &domain.ScheduleSyncResponse{Schedule: req.Schedule(), Synced: false}, nil
				},
			},
			wantStatusCode: http.StatusOK,
			wantSynced:     false,
		},
		{
			name:           "invalid JSON",
			body:           `{invalid}`,
			mockService:    &MockScheduleService{},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "invalid wake time",
			body:           `{"wake_time_local": "25:00", "window_minutes": 30, "sensitivity": "balanced"}`,
			mockService:    &MockScheduleService{},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "window out of range",
			body:           `{"wake_time_local": "07:30", "window_minutes": 181, "sensitivity": "balanced"}`,
			mockService:    &MockScheduleService{},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "unknown sensitivity",
			body:           `{"wake_time_local": "07:30", "window_minutes": 30, "sensitivity": "eager"}`,
			mockService:    &MockScheduleService{},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name: "service rejects input",
			body: `{"wake_time_local": "07:30", "window_minutes": 30, "sensitivity": "balanced"}`,
			mockService: &MockScheduleService{
				updateFunc: func(ctx context.Context, req *domain.UpdateScheduleRequest) (*domain.ScheduleSyncResponse, error) {
					return nil, fmt.Errorf("%w: bad schedule", domain.ErrInvalidInput)
				},
			},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name: "storage failure",
			body: `{"wake_time_local": "07:30", "window_minutes": 30, "sensitivity": "balanced"}`,
			mockService: &MockScheduleService{
				updateFunc: func(ctx context.Context, req *domain.UpdateScheduleRequest) (*domain.ScheduleSyncResponse, error) {
					return nil, errors.New("db down")
				},
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewScheduleHandler(tt.mockService)

			req := httptest.NewRequest(http.MethodPut, "/v1/schedule", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			handler.Update(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Fatalf("Update() status = %d, want %d, body: %s", rec.Code, tt.wantStatusCode, rec.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var response domain.ScheduleSyncResponse
				if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if response.Synced != tt.wantSynced {
					t.Errorf("synced = %v, want %v", response.Synced, tt.wantSynced)
				}
			} else if ct := rec.Header().Get("Content-Type"); ct != problem.ContentType {
				t.Errorf("Content-Type = %q, want %q", ct, problem.ContentType)
			}
		})
	}
}

func TestScheduleHandler_UpdateDefaultsEnabled(t *testing.T) {
	mock := &MockScheduleService{}
	handler := NewScheduleHandler(mock)

	body := `{"wake_time_local": "07:30", "window_minutes": 30, "sensitivity": "conservative"}`
	req := httptest.NewRequest(http.MethodPut, "/v1/schedule", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if len(mock.updated) != 1 {
		t.Fatalf("expected one update, got %d", len(mock.updated))
	}
	if !mock.updated[0].Schedule().Enabled {
		t.Error("schedule without enabled flag should be enabled")
	}
}

func TestScheduleHandler_Get(t *testing.T) {
	tests := []struct {
		name           string
		mockService    *MockScheduleService
		wantStatusCode int
		wantWakeTime   string
	}{
		{
			name:           "defaults",
			mockService:    &MockScheduleService{},
			wantStatusCode: http.StatusOK,
			wantWakeTime:   "07:30",
		},
		{
			name: "stored setting",
			mockService: &MockScheduleService{
				getFunc: func(ctx context.Context) (*domain.ScheduleSetting, error) {
					return &domain.ScheduleSetting{WakeTimeLocal: "06:10", WindowMinutes: 15, Sensitivity: domain.SensitivitySensitive}, nil
				},
			},
			wantStatusCode: http.StatusOK,
			wantWakeTime:   "06:10",
		},
		{
			name: "storage failure",
			mockService: &MockScheduleService{
				getFunc: func(ctx context.Context) (*domain.ScheduleSetting, error) {
					return nil, errors.New("db down")
				},
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewScheduleHandler(tt.mockService)
			rec := httptest.NewRecorder()

			handler.Get(rec, httptest.NewRequest(http.MethodGet, "/v1/schedule", nil))

			if rec.Code != tt.wantStatusCode {
				t.Fatalf("Get() status = %d, want %d", rec.Code, tt.wantStatusCode)
			}
			if tt.wantStatusCode != http.StatusOK {
				return
			}
			var setting domain.ScheduleSetting
			if err := json.NewDecoder(rec.Body).Decode(&setting); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if setting.WakeTimeLocal != tt.wantWakeTime {
				t.Errorf("wake_time_local = %q, want %q", setting.WakeTimeLocal, tt.wantWakeTime)
			}
		})
	}
}

func TestScheduleHandler_Cancel(t *testing.T) {
	tests := []struct {
		name           string
		cancelErr      error
		wantStatusCode int
	}{
		{"cancelled", nil, http.StatusNoContent},
		{"device not reached", fmt.Errorf("%w: link closed", domain.ErrSyncFailed), http.StatusServiceUnavailable},
		{"storage failure", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewScheduleHandler(&MockScheduleService{
				cancelFunc: func(ctx context.Context) error { return tt.cancelErr },
			})
			rec := httptest.NewRecorder()

			handler.Cancel(rec, httptest.NewRequest(http.MethodDelete, "/v1/schedule", nil))

			if rec.Code != tt.wantStatusCode {
				t.Errorf("Cancel() status = %d, want %d", rec.Code, tt.wantStatusCode)
			}
		})
	}
}

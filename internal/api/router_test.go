package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blaisecz/smart-wake/internal/api/handler"
	"github.com/blaisecz/smart-wake/internal/domain"
	"github.com/blaisecz/smart-wake/pkg/problem"
	"go.uber.org/zap"
)

type stubScheduleService struct{}

func (stubScheduleService) Get(ctx context.Context) (*domain.ScheduleSetting, error) {
	setting := domain.DefaultScheduleSetting()
	return &setting, nil
}

func (stubScheduleService) Update(ctx context.Context, req *domain.UpdateScheduleRequest) (*domain.ScheduleSyncResponse, error) {
	return &domain.ScheduleSyncResponse{Schedule: req.Schedule(), Synced: true}, nil
}

func (stubScheduleService) Cancel(ctx context.Context) error { return nil }

func (stubScheduleService) Resync(ctx context.Context, completed time.Time) error { return nil }

type stubSummaryService struct{}

func (stubSummaryService) List(ctx context.Context, filter domain.SummaryFilter) (*domain.SummaryListResponse, error) {
	return &domain.SummaryListResponse{Data: []domain.WakeSessionSummary{}}, nil
}

type stubReportService struct{}

func (stubReportService) Generate(ctx context.Context, days int) (*domain.WakeReport, error) {
	return &domain.WakeReport{}, nil
}

type stubSyncService struct{}

func (stubSyncService) Run(ctx context.Context) error { return nil }

func (stubSyncService) Status() domain.SyncStatus { return domain.SyncStatus{Reachable: true} }

func TestRouter_Routes(t *testing.T) {
	router := NewRouter(
		handler.NewScheduleHandler(stubScheduleService{}),
		handler.NewSessionHandler(stubSummaryService{}, stubReportService{}),
		handler.NewStatusHandler(stubSyncService{}),
		zap.NewNop(),
	).Setup()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/v1/schedule", http.StatusOK},
		{http.MethodDelete, "/v1/schedule", http.StatusNoContent},
		{http.MethodGet, "/v1/status", http.StatusOK},
		{http.MethodGet, "/v1/sessions", http.StatusOK},
		{http.MethodGet, "/v1/report", http.StatusOK},
		{http.MethodPost, "/v1/schedule", http.StatusMethodNotAllowed},
		{http.MethodGet, "/v1/users", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRouter_UnknownRouteIsProblem(t *testing.T) {
	router := NewRouter(
		handler.NewScheduleHandler(stubScheduleService{}),
		handler.NewSessionHandler(stubSummaryService{}, stubReportService{}),
		handler.NewStatusHandler(stubSyncService{}),
		zap.NewNop(),
	).Setup()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if ct := rec.Header().Get("Content-Type"); ct != problem.ContentType {
		t.Errorf("content type = %q, want %q", ct, problem.ContentType)
	}

	var body problem.Problem
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Type != problem.BaseURI+"/not-found" || body.Detail != "no route for /v1/users" {
		t.Errorf("unexpected problem %+v", body)
	}
}

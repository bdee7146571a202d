package handler

import (
	"context"
	"time"

	"github.com/blaisecz/smart-wake/internal/domain"
)

// MockScheduleService is a mock implementation of ScheduleService
type MockScheduleService struct {
	getFunc    func(ctx context.Context) (*domain.ScheduleSetting, error)
	updateFunc func(ctx context.Context, req *domain.UpdateScheduleRequest) (*domain.ScheduleSyncResponse, error)
	cancelFunc func(ctx context.Context) error
	updated    []*domain.UpdateScheduleRequest
}

func (m *MockScheduleService) Get(ctx context.Context) (*domain.ScheduleSetting, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx)
	}
	setting := domain.DefaultScheduleSetting()
	return &setting, nil
}

func (m *MockScheduleService) Update(ctx context.Context, req *domain.UpdateScheduleRequest) (*domain.ScheduleSyncResponse, error) {
	m.updated = append(m.updated, req)
	if m.updateFunc != nil {
		return m.updateFunc(ctx, req)
	}
	return &domain.ScheduleSyncResponse{Schedule: req.Schedule(), EffectiveDate: "2026-01-20", Synced: true}, nil
}

func (m *MockScheduleService) Cancel(ctx context.Context) error {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx)
	}
	return nil
}

func (m *MockScheduleService) Resync(ctx context.Context, completed time.Time) error {
	return nil
}

// MockSummaryService is a mock implementation of SummaryService
type MockSummaryService struct {
	listFunc func(ctx context.Context, filter domain.SummaryFilter) (*domain.SummaryListResponse, error)
	filters  []domain.SummaryFilter
}

func (m *MockSummaryService) List(ctx context.Context, filter domain.SummaryFilter) (*domain.SummaryListResponse, error) {
	m.filters = append(m.filters, filter)
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return &domain.SummaryListResponse{Data: []domain.WakeSessionSummary{}}, nil
}

// MockReportService is a mock implementation of ReportService
type MockReportService struct {
	generateFunc func(ctx context.Context, days int) (*domain.WakeReport, error)
	days         []int
}

func (m *MockReportService) Generate(ctx context.Context, days int) (*domain.WakeReport, error) {
	m.days = append(m.days, days)
	if m.generateFunc != nil {
		return m.generateFunc(ctx, days)
	}
	return &domain.WakeReport{}, nil
}

// MockSyncService is a mock implementation of SyncService
type MockSyncService struct {
	status domain.SyncStatus
}

func (m *MockSyncService) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (m *MockSyncService) Status() domain.SyncStatus {
	return m.status
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blaisecz/smart-wake/internal/domain"
)

// MockScheduleRepository is a mock implementation of ScheduleRepository
type MockScheduleRepository struct {
	setting *domain.ScheduleSetting
	saves   int
	err     error
}

func (m *MockScheduleRepository) Get(ctx context.Context) (*domain.ScheduleSetting, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.setting == nil {
		return nil, domain.ErrNotFound
	}
	copied := *m.setting
	return &copied, nil
}

func (m *MockScheduleRepository) Save(ctx context.Context, setting *domain.ScheduleSetting) error {
	if m.err != nil {
		return m.err
	}
	copied := *setting
	m.setting = &copied
	m.saves++
	return nil
}

// MockSummaryRepository is a mock implementation of SummaryRepository
// keyed by (fired_at, reason) like the database unique index.
type MockSummaryRepository struct {
	mu         sync.Mutex
	summaries  []domain.WakeSessionSummary
	listResult []domain.WakeSessionSummary
	since      time.Time
	err        error
}

func (m *MockSummaryRepository) CreateIfAbsent(ctx context.Context, summary *domain.WakeSessionSummary) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for _, existing := range m.summaries {
		if existing.SameSession(*summary) {
			return false, nil
		}
	}
	if summary.ID == uuid.Nil {
		summary.ID = uuid.New()
	}
	m.summaries = append(m.summaries, *summary)
	return true, nil
}

func (m *MockSummaryRepository) List(ctx context.Context, filter domain.SummaryFilter) ([]domain.WakeSessionSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := make([]domain.WakeSessionSummary, len(m.listResult))
	copy(result, m.listResult)
	return result, nil
}

func (m *MockSummaryRepository) ListSince(ctx context.Context, from time.Time) ([]domain.WakeSessionSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.since = from
	return append([]domain.WakeSessionSummary(nil), m.summaries...), nil
}

func (m *MockSummaryRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.summaries)
}

// MockNotifier records fallback scheduling.
type MockNotifier struct {
	mu        sync.Mutex
	scheduled []time.Time
	cancels   int
}

func (m *MockNotifier) Schedule(targetAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduled = append(m.scheduled, targetAt)
}

func (m *MockNotifier) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancels++
}

func (m *MockNotifier) cancelCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancels
}

// MockReportLLM is a mock implementation of ReportLLM
type MockReportLLM struct {
	narrative *domain.WakeReportNarrative
	err       error
	calls     int
}

func (m *MockReportLLM) Narrate(ctx context.Context, report *domain.WakeReport) (*domain.WakeReportNarrative, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.narrative, nil
}

// MockScheduleService records the completed targets passed to Resync.
type MockScheduleService struct {
	mu      sync.Mutex
	resyncs []time.Time
}

func (m *MockScheduleService) Get(ctx context.Context) (*domain.ScheduleSetting, error) {
	def := domain.DefaultScheduleSetting()
	return &def, nil
}

func (m *MockScheduleService) Update(ctx context.Context, req *domain.UpdateScheduleRequest) (*domain.ScheduleSyncResponse, error) {
	return &domain.ScheduleSyncResponse{Schedule: req.Schedule()}, nil
}

func (m *MockScheduleService) Cancel(ctx context.Context) error { return nil }

func (m *MockScheduleService) Resync(ctx context.Context, completed time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resyncs = append(m.resyncs, completed)
	return nil
}

func (m *MockScheduleService) resyncCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.resyncs)
}

func (m *MockScheduleService) lastResync() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.resyncs) == 0 {
		return time.Time{}
	}
	return m.resyncs[len(m.resyncs)-1]
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

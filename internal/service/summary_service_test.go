package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/blaisecz/smart-wake/internal/domain"
	"github.com/blaisecz/smart-wake/pkg/pagination"
)

func TestSummaryService_List(t *testing.T) {
	base := time.Date(2026, 1, 20, 7, 0, 0, 0, time.UTC)
	var rows []domain.WakeSessionSummary
	for i := 0; i < 3; i++ {
		s := summaryAt(base.AddDate(0, 0, -i), domain.TriggerSmart, 0.8, nil)
		s.ID = uuid.New()
		rows = append(rows, s)
	}

	t.Run("has more", func(t *testing.T) {
		svc := NewSummaryService(&MockSummaryRepository{listResult: rows})

		resp, err := svc.List(context.Background(), domain.SummaryFilter{Limit: 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(resp.Data) != 2 || !resp.Pagination.HasMore {
			t.Fatalf("unexpected page: %d rows has_more=%v", len(resp.Data), resp.Pagination.HasMore)
		}

		cursor, err := pagination.DecodeCursor(resp.Pagination.NextCursor)
		if err != nil || cursor == nil {
			t.Fatalf("invalid next cursor: %v", err)
		}
		if cursor.ID != rows[1].ID || !cursor.FiredAt.Equal(rows[1].FiredAt) {
			t.Fatalf("cursor points at %+v, want the last returned row", cursor)
		}
	})

	t.Run("last page", func(t *testing.T) {
		svc := NewSummaryService(&MockSummaryRepository{listResult: rows})

		resp, err := svc.List(context.Background(), domain.SummaryFilter{Limit: 5})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(resp.Data) != 3 || resp.Pagination.HasMore || resp.Pagination.NextCursor != "" {
			t.Fatalf("unexpected page: %+v", resp.Pagination)
		}
	})

	t.Run("empty list is not null", func(t *testing.T) {
		svc := NewSummaryService(&MockSummaryRepository{})

		resp, err := svc.List(context.Background(), domain.SummaryFilter{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Data == nil {
			t.Fatalf("data should be an empty slice")
		}
	})

	t.Run("repository error", func(t *testing.T) {
		svc := NewSummaryService(&MockSummaryRepository{err: errors.New("db down")})
		if _, err := svc.List(context.Background(), domain.SummaryFilter{}); err == nil {
			t.Fatalf("expected error")
		}
	})
}

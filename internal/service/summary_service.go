package service

import (
	"context"

	"github.com/blaisecz/smart-wake/internal/domain"
	"github.com/blaisecz/smart-wake/internal/repository"
	"github.com/blaisecz/smart-wake/pkg/pagination"
)

type SummaryService interface {
	List(ctx context.Context, filter domain.SummaryFilter) (*domain.SummaryListResponse, error)
}

type summaryService struct {
	repo repository.SummaryRepository
}

func NewSummaryService(repo repository.SummaryRepository) SummaryService {
	return &summaryService{repo: repo}
}

func (s *summaryService) List(ctx context.Context, filter domain.SummaryFilter) (*domain.SummaryListResponse, error) {
	summaries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(filter.Limit)
	hasMore := len(summaries) > limit

	// Trim to actual limit
	if hasMore {
		summaries = summaries[:limit]
	}

	response := &domain.SummaryListResponse{
		Data: summaries,
		Pagination: domain.PaginationResponse{
			HasMore: hasMore,
		},
	}
	if response.Data == nil {
		response.Data = []domain.WakeSessionSummary{}
	}

	// Set next cursor if there are more results
	if hasMore && len(summaries) > 0 {
		last := summaries[len(summaries)-1]
		response.Pagination.NextCursor = pagination.NewCursor(last.ID, last.FiredAt).Encode()
	}

	return response, nil
}

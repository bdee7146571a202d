package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blaisecz/smart-wake/internal/domain"
	"github.com/blaisecz/smart-wake/pkg/pagination"
)

type SummaryRepository interface {
	// CreateIfAbsent stores the summary unless one with the same
	// (fired_at, reason) exists. It reports whether a row was written.
	CreateIfAbsent(ctx context.Context, summary *domain.WakeSessionSummary) (bool, error)
	List(ctx context.Context, filter domain.SummaryFilter) ([]domain.WakeSessionSummary, error)
	ListSince(ctx context.Context, from time.Time) ([]domain.WakeSessionSummary, error)
}

type summaryRepository struct {
	db *gorm.DB
}

func NewSummaryRepository(db *gorm.DB) SummaryRepository {
	return &summaryRepository{db: db}
}

func (r *summaryRepository) CreateIfAbsent(ctx context.Context, summary *domain.WakeSessionSummary) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "fired_at"}, {Name: "reason"}},
			DoNothing: true,
		}).
		Create(summary)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *summaryRepository) List(ctx context.Context, filter domain.SummaryFilter) ([]domain.WakeSessionSummary, error) {
	query := r.db.WithContext(ctx).
		Order("fired_at DESC").
		Order("id DESC")

	if filter.From != nil {
		query = query.Where("fired_at >= ?", filter.From)
	}

	// Apply cursor pagination
	if filter.Cursor != "" {
		cursor, err := pagination.DecodeCursor(filter.Cursor)
		if err == nil && cursor != nil {
			// For DESC order: get records fired before the cursor,
			// or fired at the same instant with a smaller id
			query = query.Where(
				"(fired_at < ?) OR (fired_at = ? AND id < ?)",
				cursor.FiredAt, cursor.FiredAt, cursor.ID,
			)
		}
	}

	// Fetch one extra to determine if there are more results
	limit := pagination.NormalizeLimit(filter.Limit)
	query = query.Limit(limit + 1)

	var summaries []domain.WakeSessionSummary
	if err := query.Find(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

// ListSince returns summaries fired at or after from, oldest first.
func (r *summaryRepository) ListSince(ctx context.Context, from time.Time) ([]domain.WakeSessionSummary, error) {
	var summaries []domain.WakeSessionSummary
	err := r.db.WithContext(ctx).
		Where("fired_at >= ?", from).
		Order("fired_at ASC").
		Find(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/blaisecz/smart-wake/internal/domain"
)

// scheduleSettingID is the primary key of the single settings row.
const scheduleSettingID = 1

type ScheduleRepository interface {
	Get(ctx context.Context) (*domain.ScheduleSetting, error)
	Save(ctx context.Context, setting *domain.ScheduleSetting) error
}

type scheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) Get(ctx context.Context) (*domain.ScheduleSetting, error) {
	var setting domain.ScheduleSetting
	err := r.db.WithContext(ctx).First(&setting, "id = ?", scheduleSettingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &setting, nil
}

// Save upserts the settings row.
func (r *scheduleRepository) Save(ctx context.Context, setting *domain.ScheduleSetting) error {
	setting.ID = scheduleSettingID
	return r.db.WithContext(ctx).Save(setting).Error
}

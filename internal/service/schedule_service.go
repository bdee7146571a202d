package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/blaisecz/smart-wake/internal/domain"
	"github.com/blaisecz/smart-wake/internal/notify"
	"github.com/blaisecz/smart-wake/internal/protocol"
	"github.com/blaisecz/smart-wake/internal/repository"
)

type ScheduleService interface {
	// Get returns the stored settings, or the defaults when none exist.
	Get(ctx context.Context) (*domain.ScheduleSetting, error)
	// Update stores the schedule and pushes it to the device.
	Update(ctx context.Context, req *domain.UpdateScheduleRequest) (*domain.ScheduleSyncResponse, error)
	// Cancel disables the schedule and tells the device to drop it.
	Cancel(ctx context.Context) error
	// Resync pushes the next occurrence of an enabled schedule when the
	// stored effective date is no longer ahead. A non-zero completed target
	// counts as passed even when the clock has not reached it yet.
	Resync(ctx context.Context, completed time.Time) error
}

type scheduleService struct {
	repo     repository.ScheduleRepository
	link     DeviceLink
	notifier notify.Notifier
	loc      *time.Location
	log      *zap.Logger
	now      func() time.Time
}

func NewScheduleService(repo repository.ScheduleRepository, link DeviceLink, notifier notify.Notifier, loc *time.Location, log *zap.Logger) ScheduleService {
	if loc == nil {
		loc = time.Local
	}
	return &scheduleService{
		repo:     repo,
		link:     link,
		notifier: notifier,
		loc:      loc,
		log:      log,
		now:      time.Now,
	}
}

func (s *scheduleService) Get(ctx context.Context) (*domain.ScheduleSetting, error) {
	setting, err := s.repo.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		def := domain.DefaultScheduleSetting()
		return &def, nil
	}
	return setting, err
}

func (s *scheduleService) Update(ctx context.Context, req *domain.UpdateScheduleRequest) (*domain.ScheduleSyncResponse, error) {
	ctx, span := otel.Tracer("smart-wake-api/schedule").Start(ctx, "ScheduleService.Update")
	defer span.End()

	schedule := req.Schedule()
	if err := schedule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	effectiveDate, target, err := domain.NextEffectiveDate(schedule, s.now().In(s.loc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	span.SetAttributes(
		attribute.String("schedule.wake_time", schedule.WakeTimeLocal),
		attribute.String("schedule.effective_date", effectiveDate),
		attribute.Bool("schedule.enabled", schedule.Enabled),
	)

	if err := s.save(ctx, schedule, effectiveDate); err != nil {
		return nil, err
	}

	synced := s.push(ctx, span, schedule, effectiveDate, target)
	return &domain.ScheduleSyncResponse{
		Schedule:      schedule,
		EffectiveDate: effectiveDate,
		TargetWakeAt:  target,
		Synced:        synced,
	}, nil
}

func (s *scheduleService) Cancel(ctx context.Context) error {
	ctx, span := otel.Tracer("smart-wake-api/schedule").Start(ctx, "ScheduleService.Cancel")
	defer span.End()

	setting, err := s.Get(ctx)
	if err != nil {
		return err
	}
	setting.Enabled = false
	if err := s.repo.Save(ctx, setting); err != nil {
		return err
	}

	s.notifier.Cancel()

	if err := s.link.UpdateContext(ctx, protocol.CancelSchedule{EffectiveDate: setting.EffectiveDate}); err != nil {
		span.RecordError(err)
		s.log.Warn("failed to push schedule cancellation", zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrSyncFailed, err)
	}
	s.log.Info("schedule cancelled", zap.String("effective_date", setting.EffectiveDate))
	return nil
}

func (s *scheduleService) Resync(ctx context.Context, completed time.Time) error {
	ctx, span := otel.Tracer("smart-wake-api/schedule").Start(ctx, "ScheduleService.Resync")
	defer span.End()

	setting, err := s.repo.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !setting.Enabled {
		return nil
	}

	// An early dismissal completes today's plan before its target.
	ref := s.now().In(s.loc)
	if completed.After(ref) {
		ref = completed.In(s.loc)
	}

	schedule := setting.Schedule()
	effectiveDate, target, err := domain.NextEffectiveDate(schedule, ref)
	if err != nil {
		return err
	}
	if effectiveDate == setting.EffectiveDate {
		return nil
	}

	if err := s.save(ctx, schedule, effectiveDate); err != nil {
		return err
	}
	s.log.Info("schedule rolled over to the next day", zap.String("effective_date", effectiveDate))
	if !s.push(ctx, span, schedule, effectiveDate, target) {
		return domain.ErrSyncFailed
	}
	return nil
}

func (s *scheduleService) save(ctx context.Context, schedule domain.AlarmSchedule, effectiveDate string) error {
	return s.repo.Save(ctx, &domain.ScheduleSetting{
		WakeTimeLocal: schedule.WakeTimeLocal,
		WindowMinutes: schedule.WindowMinutes,
		Sensitivity:   schedule.Sensitivity,
		Enabled:       schedule.Enabled,
		EffectiveDate: effectiveDate,
	})
}

// push writes the plan to the replicated context and aligns the fallback
// notification. It reports whether the write succeeded.
func (s *scheduleService) push(ctx context.Context, span trace.Span, schedule domain.AlarmSchedule, effectiveDate string, target time.Time) bool {
	err := s.link.UpdateContext(ctx, protocol.UpdateSchedule{Schedule: schedule, EffectiveDate: effectiveDate})
	if err != nil {
		span.RecordError(err)
		s.log.Warn("failed to push schedule to device", zap.String("effective_date", effectiveDate), zap.Error(err))
	} else {
		s.log.Info("schedule pushed to device",
			zap.String("effective_date", effectiveDate),
			zap.String("wake_time", schedule.WakeTimeLocal),
			zap.Bool("enabled", schedule.Enabled),
		)
	}

	if schedule.Enabled {
		s.notifier.Schedule(target)
	} else {
		s.notifier.Cancel()
	}
	return err == nil
}

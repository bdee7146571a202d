package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/blaisecz/smart-wake/internal/domain"
	"github.com/blaisecz/smart-wake/internal/notify"
	"github.com/blaisecz/smart-wake/internal/protocol"
	"github.com/blaisecz/smart-wake/internal/repository"
	"github.com/blaisecz/smart-wake/internal/transport"
)

// SyncService consumes device messages on the controller and keeps the
// controller's view of the device current.
type SyncService interface {
	// Run applies the device's last context, then handles inbound messages
	// and sends pings until ctx is cancelled.
	Run(ctx context.Context) error
	// Status returns the link health and the last reported device state.
	Status() domain.SyncStatus
}

type syncService struct {
	link         DeviceLink
	summaries    repository.SummaryRepository
	schedules    ScheduleService
	notifier     notify.Notifier
	log          *zap.Logger
	pingInterval time.Duration
	now          func() time.Time

	mu               sync.RWMutex
	deviceState      string
	lastScore        *float64
	lastAlarmFiredAt *time.Time
	deviceError      string
}

func NewSyncService(
	link DeviceLink,
	summaries repository.SummaryRepository,
	schedules ScheduleService,
	notifier notify.Notifier,
	pingInterval time.Duration,
	log *zap.Logger,
) SyncService {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &syncService{
		link:         link,
		summaries:    summaries,
		schedules:    schedules,
		notifier:     notifier,
		log:          log,
		pingInterval: pingInterval,
		now:          time.Now,
	}
}

func (s *syncService) Run(ctx context.Context) error {
	env, err := s.link.ReceivedContext(ctx)
	switch {
	case err == nil:
		s.apply(ctx, env)
	case errors.Is(err, transport.ErrNoContext):
	default:
		s.log.Warn("failed to read device context", zap.Error(err))
	}

	ping := time.NewTicker(s.pingInterval)
	defer ping.Stop()

	inbound := s.link.Messages()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ping.C:
			s.ping(ctx)
		case raw, ok := <-inbound:
			if !ok {
				s.log.Warn("device link closed")
				return transport.ErrClosed
			}
			env, err := s.link.Decode(raw)
			if err != nil {
				continue
			}
			s.apply(ctx, env)
		}
	}
}

func (s *syncService) ping(ctx context.Context) {
	err := s.link.Send(ctx, protocol.Ping{Timestamp: protocol.At(s.now())})
	if err != nil && !errors.Is(err, transport.ErrNotReachable) {
		s.log.Warn("ping failed", zap.Error(err))
	}
}

// apply handles one decoded envelope. Every branch is idempotent so a
// context read at startup may repeat a message already handled.
func (s *syncService) apply(ctx context.Context, env protocol.Envelope) {
	ctx, span := otel.Tracer("smart-wake-api/sync").Start(ctx, "SyncService.apply")
	defer span.End()
	span.SetAttributes(attribute.String("message.type", string(env.Type)))

	switch p := env.Payload.(type) {
	case protocol.SessionState:
		s.mu.Lock()
		s.deviceState = p.State
		s.lastScore = p.LastScore
		s.mu.Unlock()
		s.log.Debug("device state", zap.String("state", p.State))

	case protocol.AlarmFired:
		s.notifier.Cancel()
		firedAt := p.FiredAt.Time()
		s.mu.Lock()
		s.lastAlarmFiredAt = &firedAt
		s.mu.Unlock()
		s.log.Info("device alarm fired",
			zap.String("reason", string(p.Reason)),
			zap.Float64("score", p.ScoreAtFire),
			zap.Time("fired_at", firedAt),
			zap.Bool("cooldown_applied", p.CooldownApplied),
		)

	case protocol.SessionSummary:
		s.notifier.Cancel()
		summary := p.Summary.Domain()
		if err := s.record(ctx, &summary); err != nil {
			if errors.Is(err, domain.ErrDuplicateSummary) {
				s.log.Debug("duplicate session summary ignored", zap.Time("fired_at", summary.FiredAt))
			} else {
				span.RecordError(err)
				s.log.Error("failed to store session summary", zap.Error(err))
			}
		}
		if err := s.schedules.Resync(ctx, summary.WindowEndAt); err != nil {
			s.log.Warn("failed to roll schedule over", zap.Error(err))
		}

	case protocol.Error:
		s.mu.Lock()
		s.deviceError = p.Code + ": " + p.Detail
		s.mu.Unlock()
		s.log.Warn("device reported an error", zap.String("code", p.Code), zap.String("detail", p.Detail))

	case protocol.Ping:

	default:
		s.log.Debug("ignoring message", zap.String("type", string(env.Type)))
	}
}

func (s *syncService) record(ctx context.Context, summary *domain.WakeSessionSummary) error {
	created, err := s.summaries.CreateIfAbsent(ctx, summary)
	if err != nil {
		return err
	}
	if !created {
		return domain.ErrDuplicateSummary
	}
	s.log.Info("session summary stored",
		zap.String("reason", string(summary.Reason)),
		zap.Time("fired_at", summary.FiredAt),
	)
	return nil
}

func (s *syncService) Status() domain.SyncStatus {
	link := s.link.Status()

	s.mu.RLock()
	defer s.mu.RUnlock()

	status := domain.SyncStatus{
		Reachable:        link.Reachable,
		LastSyncAt:       link.LastSyncAt,
		LastError:        link.LastError,
		DeviceState:      s.deviceState,
		LastScore:        s.lastScore,
		LastAlarmFiredAt: s.lastAlarmFiredAt,
	}
	if status.LastError == "" {
		status.LastError = s.deviceError
	}
	return status
}

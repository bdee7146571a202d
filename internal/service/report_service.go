package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/blaisecz/smart-wake/internal/domain"
	"github.com/blaisecz/smart-wake/internal/llm"
	"github.com/blaisecz/smart-wake/internal/repository"
)

const (
	DefaultReportDays = 7
	MaxReportDays     = 90
)

// ReportService aggregates stored summaries into a wake report.
type ReportService interface {
	Generate(ctx context.Context, days int) (*domain.WakeReport, error)
}

type reportService struct {
	repo      repository.SummaryRepository
	llmClient llm.ReportLLM
	log       *zap.Logger
	now       func() time.Time
}

// NewReportService creates a ReportService. llmClient may be nil, in which
// case reports carry statistics only.
func NewReportService(repo repository.SummaryRepository, llmClient llm.ReportLLM, log *zap.Logger) ReportService {
	return &reportService{
		repo:      repo,
		llmClient: llmClient,
		log:       log,
		now:       time.Now,
	}
}

func (s *reportService) Generate(ctx context.Context, days int) (*domain.WakeReport, error) {
	if days < 1 || days > MaxReportDays {
		return nil, domain.ErrInvalidInput
	}

	ctx, span := otel.Tracer("smart-wake-api/report").Start(ctx, "ReportService.Generate",
		trace.WithAttributes(attribute.Int("window.days", days)),
	)
	defer span.End()

	to := s.now().UTC()
	from := to.AddDate(0, 0, -days)

	summaries, err := s.repo.ListSince(ctx, from)
	if err != nil {
		return nil, err
	}

	report := &domain.WakeReport{
		From:  from,
		To:    to,
		Stats: ComputeStats(summaries),
	}
	span.SetAttributes(attribute.Int("report.sessions", report.Stats.Sessions))

	// The narrative is optional; statistics are returned without it.
	if s.llmClient != nil && report.Stats.Sessions > 0 {
		narrative, err := s.llmClient.Narrate(ctx, report)
		if err != nil {
			span.RecordError(err)
			s.log.Warn("wake report narrative unavailable", zap.Error(err))
		} else {
			report.Narrative = narrative
		}
	}

	return report, nil
}

// ComputeStats aggregates summaries. Minutes before target never go below
// zero.
func ComputeStats(summaries []domain.WakeSessionSummary) domain.WakeReportStats {
	stats := domain.WakeReportStats{Sessions: len(summaries)}
	if len(summaries) == 0 {
		return stats
	}

	var scoreSum, minutesSum, bestSum float64
	var bestCount int
	for _, s := range summaries {
		switch s.Reason {
		case domain.TriggerSmart:
			stats.SmartCount++
		case domain.TriggerForced:
			stats.ForcedCount++
		}
		scoreSum += s.ScoreAtFire
		if before := s.WindowEndAt.Sub(s.FiredAt).Minutes(); before > 0 {
			minutesSum += before
		}
		if s.BestScore != nil {
			bestSum += *s.BestScore
			bestCount++
		}
	}

	n := float64(len(summaries))
	stats.SmartRate = float64(stats.SmartCount) / n
	stats.MeanScoreAtFire = scoreSum / n
	stats.MeanMinutesBeforeTarget = minutesSum / n
	if bestCount > 0 {
		mean := bestSum / float64(bestCount)
		stats.MeanBestScore = &mean
	}
	return stats
}

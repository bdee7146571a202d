package seed

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/blaisecz/smart-wake/internal/domain"
)

// DefaultDays is how many nights of wake history Run creates.
const DefaultDays = 40

// Run seeds the database with a default schedule and sample wake sessions.
// Safe to call multiple times.
func Run(db *gorm.DB, days int, log *zap.Logger) error {
	if err := db.AutoMigrate(&domain.WakeSessionSummary{}, &domain.ScheduleSetting{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	setting := domain.DefaultScheduleSetting()
	setting.ID = 1
	if err := db.Where("id = ?", setting.ID).FirstOrCreate(&setting).Error; err != nil {
		return fmt.Errorf("failed to create schedule setting: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	summaries := Summaries(time.Now().UTC(), days, rng)
	for i := range summaries {
		s := summaries[i]
		err := db.Where("fired_at = ? AND reason = ?", s.FiredAt, s.Reason).FirstOrCreate(&s).Error
		if err != nil {
			return fmt.Errorf("failed to create wake session %s: %w", s.FiredAt.Format(time.RFC3339), err)
		}
	}

	log.Info("seed completed", zap.Int("sessions", len(summaries)))
	return nil
}

// Summaries builds one plausible wake session per night ending before now,
// newest first. About three in four nights end in a smart wake.
func Summaries(now time.Time, days int, rng *rand.Rand) []domain.WakeSessionSummary {
	out := make([]domain.WakeSessionSummary, 0, days)
	for i := 1; i <= days; i++ {
		date := now.AddDate(0, 0, -i)
		target := time.Date(date.Year(), date.Month(), date.Day(), 6+rng.Intn(2), 15*rng.Intn(4), 0, 0, time.UTC)
		window := time.Duration(15+15*rng.Intn(3)) * time.Minute
		start := target.Add(-window)

		summary := domain.WakeSessionSummary{
			WindowStartAt: start,
			WindowEndAt:   target,
		}

		battery := 10 + rng.Intn(11)
		summary.BatteryImpactEstimate = &battery

		if rng.Float64() < 0.75 {
			firedAt := start.Add(time.Duration(rng.Int63n(int64(window)))).Truncate(30 * time.Second)
			score := 0.72 + rng.Float64()*0.2
			best := score + rng.Float64()*(1-score)*0.3
			summary.FiredAt = firedAt
			summary.Reason = domain.TriggerSmart
			summary.ScoreAtFire = round2(score)
			bestAt := firedAt.Add(-30 * time.Second)
			bestScore := round2(best)
			summary.BestCandidateAt = &bestAt
			summary.BestScore = &bestScore
		} else {
			summary.FiredAt = target
			summary.Reason = domain.TriggerForced
			if rng.Float64() < 0.5 {
				bestAt := start.Add(time.Duration(rng.Int63n(int64(window)))).Truncate(30 * time.Second)
				bestScore := round2(0.4 + rng.Float64()*0.3)
				summary.BestCandidateAt = &bestAt
				summary.BestScore = &bestScore
			}
		}

		out = append(out, summary)
	}
	return out
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

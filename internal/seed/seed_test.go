package seed

import (
	"math/rand"
	"testing"
	"time"

	"github.com/blaisecz/smart-wake/internal/domain"
)

func TestSummaries(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	summaries := Summaries(now, 30, rand.New(rand.NewSource(7)))

	if len(summaries) != 30 {
		t.Fatalf("expected 30 summaries, got %d", len(summaries))
	}

	seen := make(map[time.Time]bool)
	for i, s := range summaries {
		if s.FiredAt.Before(s.WindowStartAt) || s.FiredAt.After(s.WindowEndAt) {
			t.Errorf("summary %d fired outside its window: %v not in [%v, %v]", i, s.FiredAt, s.WindowStartAt, s.WindowEndAt)
		}
		if !s.FiredAt.Before(now) {
			t.Errorf("summary %d fired in the future: %v", i, s.FiredAt)
		}
		if i > 0 && !s.FiredAt.Before(summaries[i-1].FiredAt) {
			t.Errorf("summaries not newest first at %d", i)
		}
		if seen[s.FiredAt] {
			t.Errorf("duplicate fired_at %v", s.FiredAt)
		}
		seen[s.FiredAt] = true

		switch s.Reason {
		case domain.TriggerSmart:
			if s.ScoreAtFire < 0.72 || s.ScoreAtFire > 1 {
				t.Errorf("smart summary %d has score %v below the balanced threshold", i, s.ScoreAtFire)
			}
			if s.BestScore == nil || *s.BestScore < s.ScoreAtFire {
				t.Errorf("smart summary %d best score %v below score at fire %v", i, s.BestScore, s.ScoreAtFire)
			}
		case domain.TriggerForced:
			if !s.FiredAt.Equal(s.WindowEndAt) {
				t.Errorf("forced summary %d did not fire at target", i)
			}
			if s.ScoreAtFire != 0 {
				t.Errorf("forced summary %d has score %v", i, s.ScoreAtFire)
			}
		default:
			t.Errorf("summary %d has unknown reason %q", i, s.Reason)
		}
	}
}

package algorithm

import (
	"time"

	"github.com/blaisecz/smart-wake/internal/domain"
)

// Wakeability chains the feature extractors and the score calculator.
type Wakeability struct {
	Motion     MotionFeatureExtractor
	HeartRate  HeartRateFeatureExtractor
	Calculator ScoreCalculator
}

// NewWakeability uses the default extractors with cfg.
func NewWakeability(cfg ScoreConfig) Wakeability {
	return Wakeability{
		Motion:     NewMotionFeatureExtractor(),
		HeartRate:  NewHeartRateFeatureExtractor(),
		Calculator: NewScoreCalculator(cfg),
	}
}

// Score computes the wakeability at `at`. Without heart rate the motion
// sub-score is used alone.
func (w Wakeability) Score(motion []domain.MotionSample, heart []domain.HeartRateSample, at time.Time, heartRateAvailable bool) domain.WakeabilityScore {
	m := w.Motion.Extract(motion, at)
	if !heartRateAvailable {
		return w.Calculator.CalculateMotionOnly(m)
	}
	return w.Calculator.Calculate(m, w.HeartRate.Extract(heart, at))
}

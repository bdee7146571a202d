package algorithm

import "github.com/blaisecz/smart-wake/internal/domain"

// ScoreConfig holds every calibration range, weight and threshold used by
// the score calculator.
type ScoreConfig struct {
	// Calibration ranges; each raw feature is normalised linearly into [0,1].
	MotionStdMin, MotionStdMax       float64
	MotionPeaksMin, MotionPeaksMax   float64
	MotionEnergyMin, MotionEnergyMax float64
	HRSlopeMin, HRSlopeMax           float64
	HRVarianceMin, HRVarianceMax     float64

	// Motion sub-score weights.
	MotionStdWeight    float64
	MotionPeaksWeight  float64
	MotionEnergyWeight float64

	// Heart-rate sub-score weights.
	HRSlopeWeight    float64
	HRVarianceWeight float64

	// Fusion weights.
	MotionWeight    float64
	HeartRateWeight float64

	// A motion sub-score below StillnessThreshold subtracts StillnessPenalty.
	StillnessThreshold float64
	StillnessPenalty   float64
}

// DefaultScoreConfig returns the production calibration.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		MotionStdMax:    2,
		MotionPeaksMax:  10,
		MotionEnergyMax: 100,
		HRSlopeMin:      -10,
		HRSlopeMax:      10,
		HRVarianceMax:   25,

		MotionStdWeight:    0.5,
		MotionPeaksWeight:  0.3,
		MotionEnergyWeight: 0.2,

		HRSlopeWeight:    0.6,
		HRVarianceWeight: 0.4,

		MotionWeight:    0.6,
		HeartRateWeight: 0.4,

		StillnessThreshold: 0.1,
		StillnessPenalty:   0.15,
	}
}

// ScoreCalculator maps feature vectors to a WakeabilityScore.
type ScoreCalculator struct {
	cfg ScoreConfig
}

// NewScoreCalculator creates a calculator for cfg.
func NewScoreCalculator(cfg ScoreConfig) ScoreCalculator {
	return ScoreCalculator{cfg: cfg}
}

// Config returns the calculator configuration.
func (c ScoreCalculator) Config() ScoreConfig {
	return c.cfg
}

// MotionScore is the motion sub-score.
func (c ScoreCalculator) MotionScore(m domain.MotionFeatures) float64 {
	cfg := c.cfg
	return clamp01(cfg.MotionStdWeight*Normalize(m.Std, cfg.MotionStdMin, cfg.MotionStdMax) +
		cfg.MotionPeaksWeight*Normalize(float64(m.Peaks), cfg.MotionPeaksMin, cfg.MotionPeaksMax) +
		cfg.MotionEnergyWeight*Normalize(m.Energy, cfg.MotionEnergyMin, cfg.MotionEnergyMax))
}

// HeartRateScore is the heart-rate sub-score.
func (c ScoreCalculator) HeartRateScore(h domain.HeartRateFeatures) float64 {
	cfg := c.cfg
	return clamp01(cfg.HRSlopeWeight*Normalize(h.Slope, cfg.HRSlopeMin, cfg.HRSlopeMax) +
		cfg.HRVarianceWeight*Normalize(h.Variance, cfg.HRVarianceMin, cfg.HRVarianceMax))
}

// Calculate fuses both sub-scores and applies the stillness penalty.
func (c ScoreCalculator) Calculate(m domain.MotionFeatures, h domain.HeartRateFeatures) domain.WakeabilityScore {
	motion := c.MotionScore(m)
	heart := c.HeartRateScore(h)

	score := c.cfg.MotionWeight*motion + c.cfg.HeartRateWeight*heart
	score = c.applyStillness(score, motion)

	return domain.WakeabilityScore{
		Score: clamp01(score),
		Components: domain.ScoreComponents{
			MotionScore:    motion,
			HeartRateScore: heart,
		},
	}
}

// CalculateMotionOnly scores without heart rate, used when the heart-rate
// sensor is unavailable. The motion sub-score takes the full weight and the
// heart-rate component is reported as zero.
func (c ScoreCalculator) CalculateMotionOnly(m domain.MotionFeatures) domain.WakeabilityScore {
	motion := c.MotionScore(m)
	score := c.applyStillness(motion, motion)

	return domain.WakeabilityScore{
		Score:      clamp01(score),
		Components: domain.ScoreComponents{MotionScore: motion},
	}
}

func (c ScoreCalculator) applyStillness(score, motion float64) float64 {
	if motion < c.cfg.StillnessThreshold {
		return score - c.cfg.StillnessPenalty
	}
	return score
}

// Normalize maps v linearly from [min,max] into [0,1], clamping outside
// values. A degenerate range yields 0.
func Normalize(v, min, max float64) float64 {
	if max <= min {
		return 0
	}
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return (v - min) / (max - min)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

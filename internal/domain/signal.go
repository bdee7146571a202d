package domain

import "time"

// MotionSample is one accelerometer reading; Magnitude is |a| and never negative.
type MotionSample struct {
	Timestamp time.Time
	Magnitude float64
}

// HeartRateSample is one heart-rate reading in beats per minute.
type HeartRateSample struct {
	Timestamp time.Time
	BPM       float64
}

// MotionFeatures summarise the motion window.
type MotionFeatures struct {
	Std    float64
	Peaks  int
	Energy float64
}

// HeartRateFeatures summarise the heart-rate window. Slope is the recent
// sub-window mean minus the older sub-window mean.
type HeartRateFeatures struct {
	Mean     float64
	Slope    float64
	Variance float64
}

// ScoreComponents exposes the sub-scores behind a WakeabilityScore.
type ScoreComponents struct {
	MotionScore    float64 `json:"motionScore"`
	HeartRateScore float64 `json:"heartRateScore"`
}

// WakeabilityScore is the fused 0-1 estimate of how awake the user is.
type WakeabilityScore struct {
	Score      float64         `json:"score"`
	Components ScoreComponents `json:"components"`
}

// ScoreUpdate is one entry of the rolling score history.
type ScoreUpdate struct {
	Score      float64
	Components ScoreComponents
	Timestamp  time.Time
}

// TriggerReason says why a wake event fired.
type TriggerReason string

const (
	TriggerSmart  TriggerReason = "SMART"
	TriggerForced TriggerReason = "FORCED"
)

// TriggerEvent is the terminal output of an evaluation tick.
type TriggerEvent struct {
	Reason     TriggerReason
	Timestamp  time.Time
	Score      float64
	Components ScoreComponents
}

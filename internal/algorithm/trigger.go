package algorithm

import (
	"time"

	"github.com/blaisecz/smart-wake/internal/domain"
)

// Smart trigger thresholds per sensitivity.
const (
	ThresholdConservative = 0.80
	ThresholdBalanced     = 0.72
	ThresholdSensitive    = 0.60
)

// ThresholdFor returns the smart trigger threshold for s. Unknown values
// fall back to balanced.
func ThresholdFor(s domain.Sensitivity) float64 {
	switch s {
	case domain.SensitivityConservative:
		return ThresholdConservative
	case domain.SensitivitySensitive:
		return ThresholdSensitive
	default:
		return ThresholdBalanced
	}
}

// TriggerConfig tunes the smart trigger.
type TriggerConfig struct {
	Threshold      float64
	Cooldown       time.Duration
	MajorityCount  int
	MajorityWindow int
}

// DefaultTriggerConfig returns the defaults for a sensitivity.
func DefaultTriggerConfig(s domain.Sensitivity) TriggerConfig {
	return TriggerConfig{
		Threshold:      ThresholdFor(s),
		Cooldown:       300 * time.Second,
		MajorityCount:  2,
		MajorityWindow: 3,
	}
}

// TriggerDecider is a stateless trigger policy.
type TriggerDecider struct {
	cfg TriggerConfig
}

// NewTriggerDecider creates a decider for cfg.
func NewTriggerDecider(cfg TriggerConfig) TriggerDecider {
	return TriggerDecider{cfg: cfg}
}

// ShouldTriggerForced is the deadline floor: true once now reaches wakeTime.
func (d TriggerDecider) ShouldTriggerForced(now, wakeTime time.Time) bool {
	return !now.Before(wakeTime)
}

// ShouldTriggerSmart is true when no trigger happened within the cooldown
// and at least MajorityCount of the last MajorityWindow scores reach the
// threshold. lastTrigger may be nil.
func (d TriggerDecider) ShouldTriggerSmart(recent []domain.ScoreUpdate, lastTrigger *time.Time, now time.Time) bool {
	if d.InCooldown(lastTrigger, now) {
		return false
	}
	return d.majority(recent)
}

// majority reports whether at least MajorityCount of the last
// MajorityWindow scores reach the threshold.
func (d TriggerDecider) majority(recent []domain.ScoreUpdate) bool {
	if d.cfg.MajorityCount <= 0 || len(recent) == 0 {
		return false
	}

	window := recent
	if len(window) > d.cfg.MajorityWindow {
		window = window[len(window)-d.cfg.MajorityWindow:]
	}

	var hits int
	for _, u := range window {
		if u.Score >= d.cfg.Threshold {
			hits++
		}
	}
	return hits >= d.cfg.MajorityCount
}

// Evaluate checks the forced trigger first, then the smart trigger. The
// returned event carries the latest score; nil means no trigger.
func (d TriggerDecider) Evaluate(recent []domain.ScoreUpdate, lastTrigger *time.Time, now, wakeTime time.Time) *domain.TriggerEvent {
	var reason domain.TriggerReason
	switch {
	case d.ShouldTriggerForced(now, wakeTime):
		reason = domain.TriggerForced
	case d.ShouldTriggerSmart(recent, lastTrigger, now):
		reason = domain.TriggerSmart
	default:
		return nil
	}

	event := &domain.TriggerEvent{Reason: reason, Timestamp: now}
	if len(recent) > 0 {
		latest := recent[len(recent)-1]
		event.Score = latest.Score
		event.Components = latest.Components
	}
	return event
}

// InCooldown reports whether a trigger at lastTrigger still blocks the
// smart trigger at now.
func (d TriggerDecider) InCooldown(lastTrigger *time.Time, now time.Time) bool {
	return lastTrigger != nil && now.Sub(*lastTrigger) < d.cfg.Cooldown
}

// SuppressedByCooldown is true when the majority condition holds but the
// cooldown blocks the smart trigger.
func (d TriggerDecider) SuppressedByCooldown(recent []domain.ScoreUpdate, lastTrigger *time.Time, now time.Time) bool {
	return d.InCooldown(lastTrigger, now) && d.majority(recent)
}

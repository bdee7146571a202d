package session

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/blaisecz/smart-wake/internal/domain"
)

const (
	DefaultSnoozeDuration = 5 * time.Minute
	DefaultHapticInterval = 2 * time.Second

	// batteryPercentPerMinute is the estimated drain of a monitoring window.
	batteryPercentPerMinute = 0.5
)

// Alarm is the ringing lifecycle: Idle → Ringing → (Snoozed ⇄ Ringing) → Dismissed.
type Alarm struct {
	snooze time.Duration
	log    *zap.Logger

	state   domain.AlarmState
	event   *domain.TriggerEvent
	window  *domain.WakeWindow
	history []domain.ScoreUpdate
}

// NewAlarm creates an idle alarm.
func NewAlarm(snooze time.Duration, log *zap.Logger) *Alarm {
	if snooze <= 0 {
		snooze = DefaultSnoozeDuration
	}
	return &Alarm{snooze: snooze, log: log, state: domain.AlarmState{Status: domain.AlarmIdle}}
}

func (a *Alarm) State() domain.AlarmState { return a.state }

// Ringing reports whether the cue should play.
func (a *Alarm) Ringing() bool { return a.state.Status == domain.AlarmRinging }

// Fire starts ringing for event. It is ignored while the alarm is already
// ringing or snoozed. window and history may be nil.
func (a *Alarm) Fire(event *domain.TriggerEvent, window *domain.WakeWindow, history []domain.ScoreUpdate) bool {
	switch a.state.Status {
	case domain.AlarmRinging, domain.AlarmSnoozed:
		return false
	}
	a.event = event
	a.window = window
	a.history = history
	a.state = domain.AlarmState{Status: domain.AlarmRinging}
	return true
}

// Snooze silences a ringing alarm until now + snooze duration.
func (a *Alarm) Snooze(now time.Time) (time.Time, bool) {
	if a.state.Status != domain.AlarmRinging {
		return time.Time{}, false
	}
	resumeAt := now.Add(a.snooze)
	a.state.Status = domain.AlarmSnoozed
	a.state.ResumeAt = resumeAt
	a.state.SnoozeCount++
	return resumeAt, true
}

// Resume re-enters Ringing once resumeAt has passed.
func (a *Alarm) Resume(now time.Time) bool {
	if a.state.Status != domain.AlarmSnoozed || now.Before(a.state.ResumeAt) {
		return false
	}
	a.state.Status = domain.AlarmRinging
	a.state.ResumeAt = time.Time{}
	return true
}

// Stop dismisses a ringing or snoozed alarm and builds the session summary.
func (a *Alarm) Stop(now time.Time) (domain.WakeSessionSummary, bool) {
	switch a.state.Status {
	case domain.AlarmRinging, domain.AlarmSnoozed:
	default:
		return domain.WakeSessionSummary{}, false
	}
	a.state.Status = domain.AlarmDismissed
	a.state.ResumeAt = time.Time{}

	summary, degraded := BuildSummary(a.event, a.window, a.history, now)
	if degraded {
		a.log.Warn("session metadata missing at dismissal, recording fallback summary",
			zap.Bool("has_trigger", a.event != nil),
			zap.Bool("has_window", a.window != nil),
		)
	}
	return summary, true
}

// Reset returns a dismissed alarm to Idle.
func (a *Alarm) Reset() {
	a.state = domain.AlarmState{Status: domain.AlarmIdle}
	a.event = nil
	a.window = nil
	a.history = nil
}

// BuildSummary assembles the record of a finished session. Without a
// trigger event or window it returns a degraded FORCED summary stamped
// with now, and degraded is true.
func BuildSummary(event *domain.TriggerEvent, window *domain.WakeWindow, history []domain.ScoreUpdate, now time.Time) (summary domain.WakeSessionSummary, degraded bool) {
	if event == nil || window == nil || window.TargetAt.IsZero() || window.StartAt.IsZero() {
		return domain.WakeSessionSummary{
			WindowStartAt: now,
			WindowEndAt:   now,
			FiredAt:       now,
			Reason:        domain.TriggerForced,
			ScoreAtFire:   0,
		}, true
	}

	summary = domain.WakeSessionSummary{
		WindowStartAt: window.StartAt,
		WindowEndAt:   window.TargetAt,
		FiredAt:       event.Timestamp,
		Reason:        event.Reason,
		ScoreAtFire:   event.Score,
	}

	if len(history) > 0 {
		best := history[0]
		for _, u := range history[1:] {
			if u.Score > best.Score {
				best = u
			}
		}
		at, score := best.Timestamp, best.Score
		summary.BestCandidateAt = &at
		summary.BestScore = &score
	}

	minutes := window.TargetAt.Sub(window.StartAt).Minutes()
	battery := int(math.Round(minutes * batteryPercentPerMinute))
	summary.BatteryImpactEstimate = &battery

	return summary, false
}

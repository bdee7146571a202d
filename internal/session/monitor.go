package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/blaisecz/smart-wake/internal/algorithm"
	"github.com/blaisecz/smart-wake/internal/domain"
)

const (
	// DefaultBufferWindow is how long samples are kept; it must exceed the
	// longest feature window.
	DefaultBufferWindow = 150 * time.Second
	// DefaultHistoryCap bounds the rolling score history.
	DefaultHistoryCap = 10
)

// Scorer turns buffered samples into a wakeability score.
type Scorer interface {
	Score(motion []domain.MotionSample, heart []domain.HeartRateSample, at time.Time, heartRateAvailable bool) domain.WakeabilityScore
}

// MonitorConfig tunes the orchestrator.
type MonitorConfig struct {
	BufferWindow time.Duration
	HistoryCap   int
	// Trigger returns the trigger policy for a sensitivity.
	Trigger func(domain.Sensitivity) algorithm.TriggerConfig
}

// DefaultMonitorConfig returns the production settings.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		BufferWindow: DefaultBufferWindow,
		HistoryCap:   DefaultHistoryCap,
		Trigger:      algorithm.DefaultTriggerConfig,
	}
}

// Evaluation is the outcome of one monitoring tick.
type Evaluation struct {
	Evaluated bool
	Update    domain.ScoreUpdate
	Trigger   *domain.TriggerEvent
	// CooldownApplied is true if the cooldown suppressed a smart trigger
	// at any tick of this session.
	CooldownApplied bool
}

// Monitor owns the sample buffers and score history of one session. It is
// not safe for concurrent use; the session actor serialises all calls.
type Monitor struct {
	cfg    MonitorConfig
	scorer Scorer
	log    *zap.Logger

	active      bool
	window      domain.WakeWindow
	sensitivity domain.Sensitivity
	decider     algorithm.TriggerDecider

	heartRateAvailable bool
	motion             []domain.MotionSample
	heart              []domain.HeartRateSample
	history            []domain.ScoreUpdate

	lastTrigger *time.Time
	trigger     *domain.TriggerEvent
	cooldown    bool
}

// NewMonitor creates an inactive orchestrator.
func NewMonitor(cfg MonitorConfig, scorer Scorer, log *zap.Logger) *Monitor {
	if cfg.BufferWindow <= 0 {
		cfg.BufferWindow = DefaultBufferWindow
	}
	if cfg.HistoryCap <= 0 {
		cfg.HistoryCap = DefaultHistoryCap
	}
	if cfg.Trigger == nil {
		cfg.Trigger = algorithm.DefaultTriggerConfig
	}
	return &Monitor{cfg: cfg, scorer: scorer, log: log, heartRateAvailable: true}
}

// Start begins a session for window. Starting again discards all buffers
// and history; only the last trigger time survives for the cooldown.
func (m *Monitor) Start(window domain.WakeWindow, sensitivity domain.Sensitivity) {
	m.active = true
	m.window = window
	m.sensitivity = sensitivity
	m.decider = algorithm.NewTriggerDecider(m.cfg.Trigger(sensitivity))
	m.motion = nil
	m.heart = nil
	m.history = nil
	m.trigger = nil
	m.cooldown = false
}

// Stop ends monitoring. Safe to call at any time.
func (m *Monitor) Stop() {
	m.active = false
}

func (m *Monitor) Active() bool { return m.active }

// SetHeartRateAvailable switches between fused and motion-only scoring.
func (m *Monitor) SetHeartRateAvailable(ok bool) {
	m.heartRateAvailable = ok
}

func (m *Monitor) AddMotion(s domain.MotionSample) {
	if m.active {
		m.motion = append(m.motion, s)
	}
}

func (m *Monitor) AddHeartRate(s domain.HeartRateSample) {
	if m.active {
		m.heart = append(m.heart, s)
	}
}

// Tick prunes the buffers, scores, and runs the trigger policy. A trigger
// stops the monitor.
func (m *Monitor) Tick(now time.Time) Evaluation {
	if !m.active {
		return Evaluation{}
	}
	if m.window.TargetAt.IsZero() || m.window.StartAt.IsZero() {
		m.log.Warn("monitoring tick without wake window, skipping")
		return Evaluation{}
	}

	cutoff := now.Add(-m.cfg.BufferWindow)
	m.motion = pruneBefore(m.motion, cutoff, func(s domain.MotionSample) time.Time { return s.Timestamp })
	m.heart = pruneBefore(m.heart, cutoff, func(s domain.HeartRateSample) time.Time { return s.Timestamp })

	score := m.scorer.Score(m.motion, m.heart, now, m.heartRateAvailable)
	update := domain.ScoreUpdate{Score: score.Score, Components: score.Components, Timestamp: now}
	m.history = append(m.history, update)
	if len(m.history) > m.cfg.HistoryCap {
		m.history = m.history[len(m.history)-m.cfg.HistoryCap:]
	}

	if m.decider.SuppressedByCooldown(m.history, m.lastTrigger, now) {
		m.cooldown = true
	}

	eval := Evaluation{Evaluated: true, Update: update}
	if event := m.decider.Evaluate(m.history, m.lastTrigger, now, m.window.TargetAt); event != nil {
		m.trigger = event
		at := event.Timestamp
		m.lastTrigger = &at
		m.active = false
		eval.Trigger = event
	}
	eval.CooldownApplied = m.cooldown

	m.log.Debug("monitoring tick",
		zap.Float64("score", update.Score),
		zap.Float64("motion_score", update.Components.MotionScore),
		zap.Float64("heart_rate_score", update.Components.HeartRateScore),
		zap.Int("motion_samples", len(m.motion)),
		zap.Int("heart_rate_samples", len(m.heart)),
	)
	return eval
}

// History returns a copy of the score history, oldest first.
func (m *Monitor) History() []domain.ScoreUpdate {
	out := make([]domain.ScoreUpdate, len(m.history))
	copy(out, m.history)
	return out
}

// LastScore is the most recent score, if any tick ran.
func (m *Monitor) LastScore() *float64 {
	if len(m.history) == 0 {
		return nil
	}
	s := m.history[len(m.history)-1].Score
	return &s
}

// Trigger returns the event that ended the session, if any.
func (m *Monitor) Trigger() *domain.TriggerEvent { return m.trigger }

// Window returns the window of the current or last session.
func (m *Monitor) Window() domain.WakeWindow { return m.window }

// BufferSizes reports buffered sample counts.
func (m *Monitor) BufferSizes() (motion, heart int) {
	return len(m.motion), len(m.heart)
}

func pruneBefore[T any](samples []T, cutoff time.Time, ts func(T) time.Time) []T {
	out := samples[:0]
	for _, s := range samples {
		if !ts(s).Before(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

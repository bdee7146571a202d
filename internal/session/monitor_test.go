package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blaisecz/smart-wake/internal/algorithm"
	"github.com/blaisecz/smart-wake/internal/domain"
)

func testWindow() domain.WakeWindow {
	start := target.Add(-30 * time.Minute)
	return domain.WakeWindow{ArmAt: start.Add(-time.Minute), StartAt: start, TargetAt: target}
}

func TestMonitor_SmartTriggerOnMajority(t *testing.T) {
	scorer := &scriptedScorer{scores: []float64{0.60, 0.74, 0.80}}
	m := NewMonitor(DefaultMonitorConfig(), scorer, zap.NewNop())
	m.Start(testWindow(), domain.SensitivityBalanced)

	now := target.Add(-20 * time.Minute)
	first := m.Tick(now)
	require.True(t, first.Evaluated)
	assert.Nil(t, first.Trigger)

	second := m.Tick(now.Add(30 * time.Second))
	assert.Nil(t, second.Trigger)

	third := m.Tick(now.Add(time.Minute))
	require.NotNil(t, third.Trigger)
	assert.Equal(t, domain.TriggerSmart, third.Trigger.Reason)
	assert.Equal(t, 0.80, third.Trigger.Score)
	assert.Equal(t, now.Add(time.Minute), third.Trigger.Timestamp)
	assert.False(t, third.CooldownApplied)

	assert.False(t, m.Active())
	assert.Equal(t, third.Trigger, m.Trigger())
	assert.False(t, m.Tick(now.Add(90*time.Second)).Evaluated)
}

func TestMonitor_ForcedAtTargetWithoutSamples(t *testing.T) {
	m := NewMonitor(DefaultMonitorConfig(), algorithm.NewWakeability(algorithm.DefaultScoreConfig()), zap.NewNop())
	m.Start(testWindow(), domain.SensitivityBalanced)

	eval := m.Tick(target)
	require.NotNil(t, eval.Trigger)
	assert.Equal(t, domain.TriggerForced, eval.Trigger.Reason)
	assert.Zero(t, eval.Trigger.Score)
}

func TestMonitor_HistoryIsCapped(t *testing.T) {
	m := NewMonitor(DefaultMonitorConfig(), &scriptedScorer{}, zap.NewNop())
	m.Start(testWindow(), domain.SensitivityBalanced)

	start := target.Add(-29 * time.Minute)
	for i := 0; i < 12; i++ {
		m.Tick(start.Add(time.Duration(i) * 30 * time.Second))
	}

	h := m.History()
	require.Len(t, h, DefaultHistoryCap)
	assert.Equal(t, start.Add(2*30*time.Second), h[0].Timestamp)
	assert.Equal(t, start.Add(11*30*time.Second), h[len(h)-1].Timestamp)
}

func TestMonitor_PrunesOldSamples(t *testing.T) {
	m := NewMonitor(DefaultMonitorConfig(), &scriptedScorer{}, zap.NewNop())
	m.Start(testWindow(), domain.SensitivityBalanced)
	now := target.Add(-10 * time.Minute)

	m.AddMotion(domain.MotionSample{Timestamp: now.Add(-200 * time.Second), Magnitude: 1})
	m.AddMotion(domain.MotionSample{Timestamp: now.Add(-150 * time.Second), Magnitude: 1})
	m.AddMotion(domain.MotionSample{Timestamp: now.Add(-10 * time.Second), Magnitude: 1})
	m.AddHeartRate(domain.HeartRateSample{Timestamp: now.Add(-151 * time.Second), BPM: 60})
	m.AddHeartRate(domain.HeartRateSample{Timestamp: now.Add(-5 * time.Second), BPM: 60})

	m.Tick(now)

	motion, heart := m.BufferSizes()
	assert.Equal(t, 2, motion)
	assert.Equal(t, 1, heart)
}

func TestMonitor_StartResetsAndStopIsIdempotent(t *testing.T) {
	m := NewMonitor(DefaultMonitorConfig(), &scriptedScorer{scores: []float64{0.5}}, zap.NewNop())

	m.AddMotion(domain.MotionSample{Timestamp: target, Magnitude: 1})
	motion, _ := m.BufferSizes()
	assert.Zero(t, motion, "samples are ignored while inactive")

	m.Stop()
	m.Start(testWindow(), domain.SensitivityBalanced)
	m.AddMotion(domain.MotionSample{Timestamp: target.Add(-time.Minute), Magnitude: 1})
	m.Tick(target.Add(-time.Minute))
	require.NotNil(t, m.LastScore())

	m.Start(testWindow(), domain.SensitivityBalanced)
	assert.Nil(t, m.LastScore())
	assert.Empty(t, m.History())
	motion, heart := m.BufferSizes()
	assert.Zero(t, motion)
	assert.Zero(t, heart)

	m.Stop()
	m.Stop()
	assert.False(t, m.Active())
}

func TestMonitor_MissingWindowFailsClosed(t *testing.T) {
	scorer := &scriptedScorer{scores: []float64{1, 1, 1}}
	m := NewMonitor(DefaultMonitorConfig(), scorer, zap.NewNop())
	m.Start(domain.WakeWindow{}, domain.SensitivityBalanced)

	eval := m.Tick(target.Add(time.Hour))
	assert.False(t, eval.Evaluated)
	assert.Nil(t, eval.Trigger)
	assert.Zero(t, scorer.calls)
	assert.True(t, m.Active())
}

func TestMonitor_CooldownAcrossSessions(t *testing.T) {
	scorer := &scriptedScorer{scores: []float64{0.9, 0.9, 0.9, 0.9, 0.9}}
	m := NewMonitor(DefaultMonitorConfig(), scorer, zap.NewNop())
	m.Start(testWindow(), domain.SensitivityBalanced)

	now := target.Add(-20 * time.Minute)
	m.Tick(now)
	first := m.Tick(now.Add(30 * time.Second))
	require.NotNil(t, first.Trigger)

	// A new session inside the cooldown cannot fire a smart trigger.
	m.Start(testWindow(), domain.SensitivityBalanced)
	assert.Nil(t, m.Tick(now.Add(60*time.Second)).Trigger)
	eval := m.Tick(now.Add(90 * time.Second))
	assert.Nil(t, eval.Trigger)
	assert.True(t, eval.CooldownApplied)

	forced := m.Tick(target)
	require.NotNil(t, forced.Trigger)
	assert.Equal(t, domain.TriggerForced, forced.Trigger.Reason)
	assert.True(t, forced.CooldownApplied)
}

func TestMonitor_HeartRateUnavailable(t *testing.T) {
	scorer := &scriptedScorer{}
	m := NewMonitor(DefaultMonitorConfig(), scorer, zap.NewNop())
	m.Start(testWindow(), domain.SensitivityBalanced)

	m.Tick(target.Add(-10 * time.Minute))
	m.SetHeartRateAvailable(false)
	m.Tick(target.Add(-9 * time.Minute))

	assert.Equal(t, []bool{true, false}, scorer.heartRate)
}

func TestMonitor_SensitivitySelectsThreshold(t *testing.T) {
	scores := []float64{0.65, 0.65}

	conservative := NewMonitor(DefaultMonitorConfig(), &scriptedScorer{scores: scores}, zap.NewNop())
	conservative.Start(testWindow(), domain.SensitivityConservative)
	sensitive := NewMonitor(DefaultMonitorConfig(), &scriptedScorer{scores: scores}, zap.NewNop())
	sensitive.Start(testWindow(), domain.SensitivitySensitive)

	now := target.Add(-10 * time.Minute)
	for _, at := range []time.Time{now, now.Add(30 * time.Second)} {
		assert.Nil(t, conservative.Tick(at).Trigger)
	}
	sensitive.Tick(now)
	eval := sensitive.Tick(now.Add(30 * time.Second))
	require.NotNil(t, eval.Trigger)
	assert.Equal(t, domain.TriggerSmart, eval.Trigger.Reason)
}

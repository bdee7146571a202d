package session

import (
	"context"
	"sync"
	"time"

	"github.com/blaisecz/smart-wake/internal/domain"
)

// scriptedScorer returns the queued scores in order, then zero.
type scriptedScorer struct {
	scores    []float64
	calls     int
	heartRate []bool
}

func (s *scriptedScorer) Score(_ []domain.MotionSample, _ []domain.HeartRateSample, _ time.Time, heartRateAvailable bool) domain.WakeabilityScore {
	s.heartRate = append(s.heartRate, heartRateAvailable)
	var v float64
	if s.calls < len(s.scores) {
		v = s.scores[s.calls]
	}
	s.calls++
	return domain.WakeabilityScore{Score: v, Components: domain.ScoreComponents{MotionScore: v, HeartRateScore: v}}
}

type fakeSource[T any] struct {
	mu     sync.Mutex
	err    error
	ch     chan T
	starts int
	stops  int
}

func (f *fakeSource[T]) Start(context.Context) (<-chan T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.starts++
	f.ch = make(chan T, 16)
	return f.ch, nil
}

func (f *fakeSource[T]) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

type countingCue struct {
	mu    sync.Mutex
	plays int
}

func (c *countingCue) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plays++
}

func (c *countingCue) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plays
}

package sensor

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/blaisecz/smart-wake/internal/domain"
)

// Mode selects the simulated sleep stage.
type Mode string

const (
	ModeDeepSleep  Mode = "deep_sleep"
	ModeLightSleep Mode = "light_sleep"
	ModeAwakening  Mode = "awakening"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeDeepSleep, ModeLightSleep, ModeAwakening:
		return m, nil
	}
	return "", fmt.Errorf("unknown sensor mode %q", s)
}

const (
	// MotionInterval is the simulated accelerometer rate (25 Hz).
	MotionInterval = 40 * time.Millisecond
	// HeartRateInterval is the simulated heart-rate cadence.
	HeartRateInterval = 5 * time.Second

	// awakening alternates 90 s of restless sleep with 30 s of strong movement.
	awakeningCycle = 120 * time.Second
	awakeningBurst = 30 * time.Second
)

// MotionMagnitude is the simulated |a| at elapsed time since start.
func MotionMagnitude(mode Mode, elapsed time.Duration, rng *rand.Rand) float64 {
	const gravity = 1.0
	noise := uniform(rng, -0.05, 0.05)
	second := int(elapsed / time.Second)

	switch mode {
	case ModeLightSleep:
		if second%10 == 0 {
			return gravity + uniform(rng, 0.1, 0.3) + noise
		}
	case ModeAwakening:
		if inBurst(elapsed) {
			return gravity + uniform(rng, 0.5, 1.5) + noise
		}
		if second%5 == 0 {
			return gravity + uniform(rng, 0.3, 0.8) + noise
		}
	}
	return gravity + noise
}

// HeartRate is the simulated bpm at elapsed time since start.
func HeartRate(mode Mode, elapsed time.Duration, rng *rand.Rand) float64 {
	switch mode {
	case ModeLightSleep:
		return 63 + uniform(rng, -5, 5)
	case ModeAwakening:
		if inBurst(elapsed) {
			return 75 + uniform(rng, -5, 5)
		}
		return 58 + uniform(rng, -3, 3)
	}
	return 55 + uniform(rng, -5, 5)
}

func inBurst(elapsed time.Duration) bool {
	return elapsed%awakeningCycle >= awakeningCycle-awakeningBurst
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// Simulator is a Source emitting generated samples on a fixed interval.
// Seeded generators make runs reproducible.
type Simulator[T any] struct {
	interval time.Duration
	seed     int64
	gen      func(elapsed time.Duration, at time.Time, rng *rand.Rand) T

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewMotionSimulator returns a 25 Hz motion source.
func NewMotionSimulator(mode Mode, seed int64) *Simulator[domain.MotionSample] {
	return &Simulator[domain.MotionSample]{
		interval: MotionInterval,
		seed:     seed,
		gen: func(elapsed time.Duration, at time.Time, rng *rand.Rand) domain.MotionSample {
			return domain.MotionSample{Timestamp: at, Magnitude: MotionMagnitude(mode, elapsed, rng)}
		},
	}
}

// NewHeartRateSimulator returns a heart-rate source emitting every 5 s.
func NewHeartRateSimulator(mode Mode, seed int64) *Simulator[domain.HeartRateSample] {
	return &Simulator[domain.HeartRateSample]{
		interval: HeartRateInterval,
		seed:     seed,
		gen: func(elapsed time.Duration, at time.Time, rng *rand.Rand) domain.HeartRateSample {
			return domain.HeartRateSample{Timestamp: at, BPM: HeartRate(mode, elapsed, rng)}
		},
	}
}

func (s *Simulator[T]) Start(ctx context.Context) (<-chan T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	out := make(chan T, 32)
	go s.run(ctx, out)
	return out, nil
}

func (s *Simulator[T]) run(ctx context.Context, out chan<- T) {
	defer close(out)

	rng := rand.New(rand.NewSource(s.seed))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case at := <-ticker.C:
			sample := s.gen(at.Sub(start), at, rng)
			select {
			case out <- sample:
			case <-ctx.Done():
				return
			default:
				// Consumer is behind; drop rather than stall the generator.
			}
		}
	}
}

// Stop is idempotent.
func (s *Simulator[T]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

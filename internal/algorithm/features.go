// Package algorithm turns raw motion and heart-rate samples into a
// wakeability score and decides when a wake event fires. Everything here is
// pure: no clocks, no I/O, the reference time is always a parameter.
package algorithm

import (
	"math"
	"time"

	"github.com/blaisecz/smart-wake/internal/domain"
)

const (
	// DefaultMotionWindow is the motion feature window.
	DefaultMotionWindow = 60 * time.Second
	// DefaultPeakThreshold is the magnitude above which a motion sample counts as a peak.
	DefaultPeakThreshold = 1.5
	// DefaultHeartRateWindow is the heart-rate feature window.
	DefaultHeartRateWindow = 120 * time.Second
	// DefaultHeartRateRecent is the recent sub-window used for the slope.
	DefaultHeartRateRecent = 30 * time.Second
)

// MotionFeatureExtractor reduces motion samples in [t-Window, t] to
// MotionFeatures.
type MotionFeatureExtractor struct {
	Window        time.Duration
	PeakThreshold float64
}

// NewMotionFeatureExtractor returns an extractor with the default window and peak threshold.
func NewMotionFeatureExtractor() MotionFeatureExtractor {
	return MotionFeatureExtractor{Window: DefaultMotionWindow, PeakThreshold: DefaultPeakThreshold}
}

// Extract computes population std, peak count and sum-of-squares energy.
// Zero features are returned when no sample falls in the window.
func (e MotionFeatureExtractor) Extract(samples []domain.MotionSample, at time.Time) domain.MotionFeatures {
	from := at.Add(-e.Window)

	values := make([]float64, 0, len(samples))
	for _, s := range samples {
		if inWindow(s.Timestamp, from, at) {
			values = append(values, s.Magnitude)
		}
	}
	if len(values) == 0 {
		return domain.MotionFeatures{}
	}

	var peaks int
	var energy float64
	for _, v := range values {
		if v > e.PeakThreshold {
			peaks++
		}
		energy += v * v
	}

	return domain.MotionFeatures{
		Std:    math.Sqrt(variance(values)),
		Peaks:  peaks,
		Energy: energy,
	}
}

// HeartRateFeatureExtractor reduces heart-rate samples in [t-Window, t] to
// HeartRateFeatures. The slope compares [t-Recent, t] against
// [t-Window, t-Recent).
type HeartRateFeatureExtractor struct {
	Window time.Duration
	Recent time.Duration
}

// NewHeartRateFeatureExtractor returns an extractor with the default windows.
func NewHeartRateFeatureExtractor() HeartRateFeatureExtractor {
	return HeartRateFeatureExtractor{Window: DefaultHeartRateWindow, Recent: DefaultHeartRateRecent}
}

// Extract computes mean, population variance and recent-minus-older slope.
func (e HeartRateFeatureExtractor) Extract(samples []domain.HeartRateSample, at time.Time) domain.HeartRateFeatures {
	from := at.Add(-e.Window)
	split := at.Add(-e.Recent)

	var all, recent, older []float64
	for _, s := range samples {
		if !inWindow(s.Timestamp, from, at) {
			continue
		}
		all = append(all, s.BPM)
		if s.Timestamp.Before(split) {
			older = append(older, s.BPM)
		} else {
			recent = append(recent, s.BPM)
		}
	}
	if len(all) == 0 {
		return domain.HeartRateFeatures{}
	}

	var slope float64
	if len(recent) > 0 && len(older) > 0 {
		slope = mean(recent) - mean(older)
	}

	return domain.HeartRateFeatures{
		Mean:     mean(all),
		Slope:    slope,
		Variance: variance(all),
	}
}

func inWindow(ts, from, to time.Time) bool {
	return !ts.Before(from) && !ts.After(to)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance is the population variance.
func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values))
}

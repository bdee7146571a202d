// Package sensor provides the sample sources feeding a monitoring session.
package sensor

import (
	"context"
	"errors"

	"github.com/blaisecz/smart-wake/internal/domain"
)

// ErrUnavailable is returned by Start when the sensor is absent or access
// was denied.
var ErrUnavailable = errors.New("sensor unavailable")

// Source pushes samples until Stop is called or ctx is done, then closes
// the channel. Start after Stop begins a new subscription.
type Source[T any] interface {
	Start(ctx context.Context) (<-chan T, error)
	Stop()
}

// MotionSource yields accelerometer magnitudes.
type MotionSource = Source[domain.MotionSample]

// HeartRateSource yields heart-rate readings.
type HeartRateSource = Source[domain.HeartRateSample]

// Unavailable is a Source whose Start always fails with ErrUnavailable.
type Unavailable[T any] struct{}

func (Unavailable[T]) Start(context.Context) (<-chan T, error) {
	return nil, ErrUnavailable
}

func (Unavailable[T]) Stop() {}

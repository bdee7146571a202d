// Package notify schedules the deadline-miss fallback notification on the
// controller. The fallback fires at the target wake time unless the device
// reports an alarm first.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sender delivers a fallback notification for a target wake time.
type Sender interface {
	Notify(ctx context.Context, targetAt time.Time) error
}

// Notifier is the fallback surface used by the schedule and sync services.
type Notifier interface {
	Schedule(targetAt time.Time)
	Cancel()
}

// Fallback keeps at most one pending notification. Scheduling replaces the
// pending one.
type Fallback struct {
	sender  Sender
	log     *zap.Logger
	now     func() time.Time
	timeout time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	target  time.Time
	pending bool
}

// NewFallback creates a fallback scheduler delivering through sender.
func NewFallback(sender Sender, log *zap.Logger) *Fallback {
	return &Fallback{
		sender:  sender,
		log:     log,
		now:     time.Now,
		timeout: 30 * time.Second,
	}
}

// Schedule arms the fallback for targetAt. A target in the past fires
// immediately.
func (f *Fallback) Schedule(targetAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopLocked()
	delay := targetAt.Sub(f.now())
	if delay < 0 {
		delay = 0
	}
	f.target = targetAt
	f.pending = true
	f.gen++
	gen := f.gen
	f.timer = time.AfterFunc(delay, func() { f.fire(gen, targetAt) })

	f.log.Info("fallback notification scheduled", zap.Time("target_wake_at", targetAt))
}

// Cancel drops the pending notification, if any.
func (f *Fallback) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pending {
		f.log.Info("fallback notification cancelled", zap.Time("target_wake_at", f.target))
	}
	f.stopLocked()
}

// Pending returns the target of the pending notification.
func (f *Fallback) Pending() (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.target, f.pending
}

func (f *Fallback) stopLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.pending = false
	f.target = time.Time{}
}

func (f *Fallback) fire(gen uint64, targetAt time.Time) {
	f.mu.Lock()
	// A replaced or cancelled timer may still run once.
	if !f.pending || f.gen != gen {
		f.mu.Unlock()
		return
	}
	f.timer = nil
	f.pending = false
	f.target = time.Time{}
	f.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	f.log.Warn("device did not report an alarm by the target time, sending fallback",
		zap.Time("target_wake_at", targetAt))
	if err := f.sender.Notify(ctx, targetAt); err != nil {
		f.log.Error("fallback notification failed", zap.Error(err))
	}
}

// LogSender only logs the fallback. It is used when no webhook is
// configured.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Notify(_ context.Context, targetAt time.Time) error {
	s.log.Warn("wake-up fallback: check the device alarm", zap.Time("target_wake_at", targetAt))
	return nil
}

// Package device assembles the wearable side: a wake session fed by
// simulated sensors and talking to the controller over a link.
package device

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/blaisecz/smart-wake/internal/config"
	"github.com/blaisecz/smart-wake/internal/domain"
	"github.com/blaisecz/smart-wake/internal/protocol"
	"github.com/blaisecz/smart-wake/internal/repository"
	"github.com/blaisecz/smart-wake/internal/sensor"
	"github.com/blaisecz/smart-wake/internal/session"
	"github.com/blaisecz/smart-wake/internal/transport"
)

// Options configures a simulated device.
type Options struct {
	Location   *time.Location
	SensorMode sensor.Mode
	HeartRate  bool
	Snooze     time.Duration
	Seed       int64
}

// OptionsFromConfig reads the device settings from cfg.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	mode, err := sensor.ParseMode(cfg.SensorMode)
	if err != nil {
		return Options{}, fmt.Errorf("invalid SENSOR_MODE: %w", err)
	}
	return Options{
		Location:   cfg.Location(),
		SensorMode: mode,
		HeartRate:  cfg.HeartRateEnabled,
		Snooze:     cfg.SnoozeDuration,
		Seed:       time.Now().UnixNano(),
	}, nil
}

// New wires a session over link. cue may be nil for a silent device.
func New(opts Options, link transport.Link, store repository.PlanStore, cue session.Cue, log *zap.Logger) *session.Session {
	cfg := session.DefaultConfig()
	cfg.Location = opts.Location
	if opts.Snooze > 0 {
		cfg.SnoozeDuration = opts.Snooze
	}

	var heart sensor.HeartRateSource = sensor.Unavailable[domain.HeartRateSample]{}
	if opts.HeartRate {
		heart = sensor.NewHeartRateSimulator(opts.SensorMode, opts.Seed+1)
	}

	return session.New(cfg, session.Deps{
		Peer:      protocol.NewClient(link, log),
		Motion:    sensor.NewMotionSimulator(opts.SensorMode, opts.Seed),
		HeartRate: heart,
		Store:     store,
		Cue:       cue,
		Log:       log,
	})
}

// LogCue stands in for the haptic motor by logging each pulse.
type LogCue struct {
	log *zap.Logger
}

func NewLogCue(log *zap.Logger) *LogCue {
	return &LogCue{log: log}
}

func (c *LogCue) Play() {
	c.log.Info("wake cue pulse")
}

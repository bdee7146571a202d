// Command device runs the wearable side of the smart alarm with simulated
// sensors. Send SIGUSR1 to snooze a ringing alarm, SIGUSR2 to stop it and
// SIGHUP to reset the session.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/blaisecz/smart-wake/internal/config"
	"github.com/blaisecz/smart-wake/internal/device"
	"github.com/blaisecz/smart-wake/internal/logger"
	"github.com/blaisecz/smart-wake/internal/repository"
	"github.com/blaisecz/smart-wake/internal/telemetry"
	"github.com/blaisecz/smart-wake/internal/transport"
)

const planKey = "smartwake:device:plan"

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat, "smart-wake-device")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg, "smart-wake-device")
	if err != nil {
		zl.Fatal("failed to initialise tracing", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	opts, err := device.OptionsFromConfig(cfg)
	if err != nil {
		zl.Fatal("invalid device configuration", zap.Error(err))
	}

	linkOpts := transport.Options{
		Kind:   cfg.Transport,
		Prefix: cfg.LinkPrefix,
		Self:   transport.EndpointDevice,
		Peer:   transport.EndpointController,
		MQTT: transport.MQTTConfig{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
		},
	}

	// The plan survives restarts only when Redis is available.
	store := repository.NewMemoryPlanStore()
	if cfg.Transport == transport.KindRedis {
		client, err := config.NewRedisClient(ctx, cfg, zl)
		if err != nil {
			zl.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		linkOpts.Redis = client
		store = repository.NewRedisPlanStore(client, planKey)
	}

	link, err := transport.Open(ctx, linkOpts, zl)
	if err != nil {
		zl.Fatal("failed to open controller link", zap.Error(err), zap.String("transport", cfg.Transport))
	}
	defer link.Close()

	s := device.New(opts, link, store, device.NewLogCue(zl), zl)

	controls := make(chan os.Signal, 1)
	signal.Notify(controls, syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGHUP)
	defer signal.Stop(controls)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-controls:
				switch sig {
				case syscall.SIGUSR1:
					s.Snooze()
				case syscall.SIGUSR2:
					s.Stop()
				case syscall.SIGHUP:
					s.Reset()
				}
			}
		}
	}()

	zl.Info("device started",
		zap.String("transport", cfg.Transport),
		zap.String("sensor_mode", string(opts.SensorMode)),
		zap.Bool("heart_rate", opts.HeartRate),
		zap.String("timezone", opts.Location.String()),
	)
	if err := s.Run(ctx); err != nil {
		zl.Error("session stopped", zap.Error(err))
	}
	zl.Info("device stopped")
}

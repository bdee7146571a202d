// Smart Wake API
//
// Controller-side REST API for the smart alarm.
//
//	@title			Smart Wake API
//	@version		1.0
//	@description	Configure the smart alarm on a paired wearable and review wake sessions.
//
//	@BasePath	/v1
//
//	@tag.name			schedule
//	@tag.description	Smart alarm configuration pushed to the paired device
//
//	@tag.name			sessions
//	@tag.description	Wake session history and reports
//
//	@tag.name			status
//	@tag.description	Device link status
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/blaisecz/smart-wake/internal/api"
	"github.com/blaisecz/smart-wake/internal/api/handler"
	"github.com/blaisecz/smart-wake/internal/config"
	"github.com/blaisecz/smart-wake/internal/device"
	"github.com/blaisecz/smart-wake/internal/domain"
	"github.com/blaisecz/smart-wake/internal/llm"
	"github.com/blaisecz/smart-wake/internal/logger"
	"github.com/blaisecz/smart-wake/internal/notify"
	"github.com/blaisecz/smart-wake/internal/protocol"
	"github.com/blaisecz/smart-wake/internal/repository"
	"github.com/blaisecz/smart-wake/internal/seed"
	"github.com/blaisecz/smart-wake/internal/service"
	"github.com/blaisecz/smart-wake/internal/telemetry"
	"github.com/blaisecz/smart-wake/internal/transport"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat, "smart-wake-api")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg, "smart-wake-api")
	if err != nil {
		zl.Fatal("failed to initialise tracing", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	// Connect to database
	db, err := config.NewDatabase(cfg, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}

	// Auto-migrate database schema
	if err := db.AutoMigrate(&domain.WakeSessionSummary{}, &domain.ScheduleSetting{}); err != nil {
		zl.Fatal("failed to migrate database", zap.Error(err))
	}
	zl.Info("database migration completed")

	if cfg.Seed {
		zl.Info("seeding database with sample data (SEED=true)")
		if err := seed.Run(db, seed.DefaultDays, zl); err != nil {
			zl.Fatal("failed to seed database", zap.Error(err))
		}
	}

	link, err := openLink(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to open device link", zap.Error(err), zap.String("transport", cfg.Transport))
	}
	defer link.Close()
	deviceClient := protocol.NewClient(link, zl)

	// Fallback notification when the device never reports a wake
	var sender notify.Sender = notify.NewLogSender(zl)
	if cfg.FallbackWebhookURL != "" {
		sender = notify.NewWebhookSender(cfg.FallbackWebhookURL, zl)
	}
	fallback := notify.NewFallback(sender, zl)
	defer fallback.Cancel()

	// Initialize repositories
	scheduleRepo := repository.NewScheduleRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)

	// Initialize OpenAI client (may be nil if not configured)
	var reportLLM llm.ReportLLM
	if client := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIWakeReportModel); client != nil {
		reportLLM = client
	} else {
		zl.Warn("OpenAI API key not configured, wake reports will have no narrative")
	}

	// Initialize services
	scheduleService := service.NewScheduleService(scheduleRepo, deviceClient, fallback, cfg.Location(), zl)
	summaryService := service.NewSummaryService(summaryRepo)
	reportService := service.NewReportService(summaryRepo, reportLLM, zl)
	syncService := service.NewSyncService(deviceClient, summaryRepo, scheduleService, fallback, cfg.PingInterval, zl)

	go func() {
		if err := syncService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zl.Error("device sync stopped", zap.Error(err))
		}
	}()

	// Initialize handlers
	scheduleHandler := handler.NewScheduleHandler(scheduleService)
	sessionHandler := handler.NewSessionHandler(summaryService, reportService)
	statusHandler := handler.NewStatusHandler(syncService)

	// Setup router
	router := api.NewRouter(scheduleHandler, sessionHandler, statusHandler, zl)

	// Start server
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	zl.Info("starting server", zap.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Fatal("server failed", zap.Error(err))
	}
}

// openLink connects to the device. The memory transport runs a simulated
// device inside this process.
func openLink(ctx context.Context, cfg *config.Config, zl *zap.Logger) (transport.Link, error) {
	opts := transport.Options{
		Kind:   cfg.Transport,
		Prefix: cfg.LinkPrefix,
		Self:   transport.EndpointController,
		Peer:   transport.EndpointDevice,
		MQTT: transport.MQTTConfig{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
		},
	}

	switch cfg.Transport {
	case transport.KindMemory:
		deviceLink, controllerLink := transport.NewMemoryPair()
		devOpts, err := device.OptionsFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		devLog := zl.With(zap.String("component", "device"))
		wearable := device.New(devOpts, deviceLink, repository.NewMemoryPlanStore(), device.NewLogCue(devLog), devLog)
		go wearable.Run(ctx)
		return controllerLink, nil
	case transport.KindRedis:
		client, err := config.NewRedisClient(ctx, cfg, zl)
		if err != nil {
			return nil, err
		}
		opts.Redis = client
		link, err := transport.Open(ctx, opts, zl)
		if err != nil {
			client.Close()
			return nil, err
		}
		return &ownedClientLink{Link: link, client: client}, nil
	default:
		return transport.Open(ctx, opts, zl)
	}
}

// ownedClientLink closes the Redis client together with the link.
type ownedClientLink struct {
	transport.Link
	client *redis.Client
}

func (l *ownedClientLink) Close() error {
	err := l.Link.Close()
	if cerr := l.client.Close(); err == nil {
		err = cerr
	}
	return err
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/an-gr-hh1/landslide-sync/internal/adapter/blob"
	"github.com/an-gr-hh1/landslide-sync/internal/adapter/httpapi"
	kafkaexport "github.com/an-gr-hh1/landslide-sync/internal/adapter/kafka"
	"github.com/an-gr-hh1/landslide-sync/internal/adapter/redisrt"
	"github.com/an-gr-hh1/landslide-sync/internal/adapter/weather"
	"github.com/an-gr-hh1/landslide-sync/internal/alertgate"
	"github.com/an-gr-hh1/landslide-sync/internal/app"
	"github.com/an-gr-hh1/landslide-sync/internal/config"
	"github.com/an-gr-hh1/landslide-sync/internal/domain"
	"github.com/an-gr-hh1/landslide-sync/internal/location"
	"github.com/an-gr-hh1/landslide-sync/internal/notify"
	"github.com/an-gr-hh1/landslide-sync/internal/observability"
	"github.com/an-gr-hh1/landslide-sync/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	svc := redisrt.New(redisClient, logger)

	// Alert side effects: webhook notification when configured, log-only
	// otherwise. Failures degrade, they never block acknowledgement.
	var notifier alertgate.Notifier
	if cfg.NotifyWebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.NotifyChannel, cfg.NotifyWebhookURL, cfg.NotifyTimeout)
		logger.Info("webhook notifications enabled", "channel", cfg.NotifyChannel)
	} else {
		notifier = &notify.LogNotifier{Channel: cfg.NotifyChannel, Logger: logger}
	}

	gate := alertgate.New(
		&alertgate.LogPresenter{Logger: logger},
		notifier,
		&alertgate.LogSounder{Logger: logger},
		clock,
		cfg.AlertLockout,
		logger,
		metrics,
	)

	// Kafka export (feature-flagged via KAFKA_BROKERS).
	var exporter app.Exporter
	var kafkaWriter *kafkaexport.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaexport.NewWriter(cfg.KafkaBrokers, cfg.KafkaExportTopic, logger)
		exporter = kafkaWriter
		logger.Info("kafka export enabled", "topic", cfg.KafkaExportTopic)
	} else {
		logger.Info("kafka export disabled")
	}

	a := app.New(svc, gate, exporter, clock, logger, metrics)

	var weatherClient *weather.Client
	if cfg.WeatherEnabled {
		weatherClient = weather.NewClient(cfg.WeatherAPIKey, cfg.WeatherTimeout, metrics)
		logger.Info("weather enabled")
	} else {
		logger.Info("weather disabled")
	}

	var locator location.Locator
	if cfg.HasStaticPos {
		locator = location.Static{Pos: domain.Geo{Lat: cfg.StaticLat, Lon: cfg.StaticLon}}
	} else {
		locator = location.Telemetry{Merger: a.Telemetry}
	}

	hazards := loadHazards(cfg.HazardPointsPath, logger)

	blobs, err := blob.NewDiskStore(cfg.BlobDir, cfg.BlobBaseURL)
	if err != nil {
		logger.Error("blob store init failed", "error", err)
		os.Exit(1)
	}

	sess := session.Guest()
	if !cfg.SessionAnonymous {
		sess = session.Session{UID: cfg.SessionUID, DisplayName: cfg.SessionName}
	}

	var weatherSource httpapi.WeatherSource
	if weatherClient != nil {
		weatherSource = weatherClient
	}
	srv := httpapi.NewServer(cfg.HTTPAddr, a, weatherSource, locator, hazards, blobs, sess, clock, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		logger.Error("sync start failed", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	a.Close()
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := redisClient.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// loadHazards reads the bundled hazard map. A missing path disables the
// hazard layer; a malformed file is a startup defect worth failing loudly.
func loadHazards(path string, logger *slog.Logger) []domain.HazardPoint {
	if path == "" {
		logger.Info("hazard map disabled")
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read hazard map failed", "path", path, "error", err)
		os.Exit(1)
	}
	points, err := domain.ParseHazardPoints(data)
	if err != nil {
		logger.Error("parse hazard map failed", "path", path, "error", err)
		os.Exit(1)
	}
	logger.Info("hazard map loaded", "points", len(points))
	return points
}

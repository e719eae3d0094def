package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all daemon settings, populated from environment variables
// (optionally seeded from a .env file).
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Alert gate.
	AlertLockout time.Duration

	// Kafka export (enabled when brokers are set).
	KafkaBrokers     []string
	KafkaExportTopic string
	KafkaEnabled     bool

	// Weather API (enabled when the key is set).
	WeatherAPIKey  string
	WeatherTimeout time.Duration
	WeatherEnabled bool

	// Notification webhook (log-only when unset).
	NotifyWebhookURL string
	NotifyTimeout    time.Duration
	NotifyChannel    string

	// Bundled hazard map.
	HazardPointsPath string

	// Incident photo storage.
	BlobDir     string
	BlobBaseURL string

	// Daemon identity used for authored content.
	SessionUID       string
	SessionName      string
	SessionAnonymous bool

	// Static device position; when unset the telemetry GPS is used.
	StaticLat    float64
	StaticLon    float64
	HasStaticPos bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	lockout, err := envDuration("ALERT_LOCKOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := envDuration("WEATHER_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	notifyTimeout, err := envDuration("NOTIFY_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		RedisAddr:     envOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		AlertLockout: lockout,

		KafkaBrokers:     parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaExportTopic: envOrDefault("KAFKA_EXPORT_TOPIC", "landslide-sync-events"),

		WeatherAPIKey:  os.Getenv("WEATHER_API_KEY"),
		WeatherTimeout: weatherTimeout,

		NotifyWebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		NotifyTimeout:    notifyTimeout,
		NotifyChannel:    envOrDefault("NOTIFY_CHANNEL", "alert_channel"),

		HazardPointsPath: os.Getenv("HAZARD_POINTS_PATH"),

		BlobDir:     envOrDefault("BLOB_DIR", "data/blobs"),
		BlobBaseURL: envOrDefault("BLOB_BASE_URL", "http://localhost:8080/blobs"),

		SessionUID:       envOrDefault("SESSION_UID", "guest"),
		SessionName:      envOrDefault("SESSION_NAME", "Guest"),
		SessionAnonymous: envBool("SESSION_ANONYMOUS", true),
	}

	cfg.KafkaEnabled = len(cfg.KafkaBrokers) > 0
	cfg.WeatherEnabled = cfg.WeatherAPIKey != ""

	if latStr, lonStr := os.Getenv("STATIC_LAT"), os.Getenv("STATIC_LON"); latStr != "" || lonStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lon, errLon := strconv.ParseFloat(lonStr, 64)
		if errLat != nil || errLon != nil {
			return nil, errors.New("STATIC_LAT and STATIC_LON must both be valid coordinates")
		}
		cfg.StaticLat, cfg.StaticLon, cfg.HasStaticPos = lat, lon, true
	}

	if cfg.RedisAddr == "" {
		return nil, errors.New("REDIS_ADDR is required")
	}
	if cfg.AlertLockout <= 0 {
		return nil, errors.New("ALERT_LOCKOUT must be positive")
	}
	if cfg.KafkaEnabled && cfg.KafkaExportTopic == "" {
		return nil, errors.New("KAFKA_EXPORT_TOPIC is required when KAFKA_BROKERS is set")
	}
	if !cfg.SessionAnonymous && cfg.SessionUID == "guest" {
		return nil, errors.New("SESSION_UID is required for a non-anonymous session")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBrokers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

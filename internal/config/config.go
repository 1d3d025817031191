package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServiceEnvironment string `envconfig:"SERVICE_ENVIRONMENT" default:"development"`
	ServiceAPIPort     string `envconfig:"SERVICE_API_PORT" default:"8080"`

	BrokerURL   string `envconfig:"BROKER_URL" default:"redis://localhost:6379"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	CollectorBatchSize                    int    `envconfig:"COLLECTOR_BATCH_SIZE" default:"10"`
	CollectorPollTimeoutSec               int    `envconfig:"COLLECTOR_POLL_TIMEOUT_SEC" default:"1"`
	CollectorClassificationPollTimeoutSec int    `envconfig:"COLLECTOR_CLASSIFICATION_POLL_TIMEOUT_SEC" default:"10"`
	SessionCacheTTLHours                  int    `envconfig:"SESSION_CACHE_TTL_HOURS" default:"24"`
	CleanupIntervalMin                    int    `envconfig:"CLEANUP_INTERVAL_MIN" default:"60"`
	IdleThresholdMin                      int    `envconfig:"IDLE_THRESHOLD_MIN" default:"15"`
	IdleScanIntervalMin                   int    `envconfig:"IDLE_SCAN_INTERVAL_MIN" default:"5"`
	IdleScanMaxSessions                   int    `envconfig:"IDLE_SCAN_MAX_SESSIONS" default:"10"`
	IdleScanMinMessages                   int    `envconfig:"IDLE_SCAN_MIN_MESSAGES" default:"3"`
	PerfAvgStrategy                       string `envconfig:"PERF_AVG_STRATEGY" default:"midpoint"`

	ClassifierBaseURL string `envconfig:"CLASSIFIER_BASE_URL"`
	ClassifierAPIKey  string `envconfig:"CLASSIFIER_API_KEY"`
	ClassifierModel   string `envconfig:"CLASSIFIER_MODEL" default:"gpt-4o-mini"`
}

func Load() (*Config, error) {
	// Local development convenience; a missing .env file is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.CollectorPollTimeoutSec) * time.Second
}

func (c *Config) ClassificationPollTimeout() time.Duration {
	return time.Duration(c.CollectorClassificationPollTimeoutSec) * time.Second
}

func (c *Config) SessionCacheTTL() time.Duration {
	return time.Duration(c.SessionCacheTTLHours) * time.Hour
}

func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalMin) * time.Minute
}

func (c *Config) IdleThreshold() time.Duration {
	return time.Duration(c.IdleThresholdMin) * time.Minute
}

func (c *Config) IdleScanInterval() time.Duration {
	return time.Duration(c.IdleScanIntervalMin) * time.Minute
}

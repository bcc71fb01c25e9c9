package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
)

type Config struct {
	App           AppConfig
	Pipeline      PipelineConfig
	AI            AIConfig
	MarketData    MarketDataConfig
	Gateway       GatewayConfig
	Kafka         KafkaConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"autohedge"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// MetricsAddr, when set, exposes Prometheus metrics for the duration
	// of the run (e.g. ":9090")
	MetricsAddr string `envconfig:"METRICS_ADDR"`
}

// PipelineConfig bounds the per-run pipeline behavior. All values are read
// once at startup and passed explicitly into the fund constructors.
type PipelineConfig struct {
	WorkspaceDir         string        `envconfig:"WORKSPACE_DIR" default:"outputs"`
	JournalPath          string        `envconfig:"JOURNAL_PATH" default:"outputs/autohedge.db"`
	MaxConcurrentSymbols int           `envconfig:"MAX_CONCURRENT_SYMBOLS" default:"4"`
	StageRetryLimit      int           `envconfig:"STAGE_RETRY_LIMIT" default:"2"`
	RunTimeout           time.Duration `envconfig:"RUN_TIMEOUT" default:"10m"`
}

type AIConfig struct {
	Provider       string        `envconfig:"AI_PROVIDER" default:"openai"`
	BaseURL        string        `envconfig:"AI_BASE_URL"`
	APIKey         string        `envconfig:"AI_API_KEY"`
	Model          string        `envconfig:"AI_MODEL" default:"gpt-4.1"`
	Temperature    float64       `envconfig:"AI_TEMPERATURE" default:"0.2"`
	MaxTokens      int           `envconfig:"AI_MAX_TOKENS" default:"4096"`
	RequestTimeout time.Duration `envconfig:"AI_REQUEST_TIMEOUT" default:"90s"`
	ReqPerMinute   float64       `envconfig:"AI_REQUESTS_PER_MINUTE" default:"60"`
}

type MarketDataConfig struct {
	BaseURL       string        `envconfig:"MARKET_DATA_BASE_URL" default:"https://api.binance.com"`
	KlineInterval string        `envconfig:"MARKET_DATA_KLINE_INTERVAL" default:"1h"`
	KlineLimit    int           `envconfig:"MARKET_DATA_KLINE_LIMIT" default:"200"`
	Timeout       time.Duration `envconfig:"MARKET_DATA_TIMEOUT" default:"15s"`
	ReqPerMinute  int           `envconfig:"MARKET_DATA_REQUESTS_PER_MINUTE" default:"1200"`
}

type GatewayConfig struct {
	// Mode selects the execution gateway: "paper" keeps orders in-process,
	// "none" disables submission (decisions are recorded but never sent)
	Mode string `envconfig:"GATEWAY_MODE" default:"paper"`
}

type KafkaConfig struct {
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers []string `envconfig:"KAFKA_BROKERS"`
	Topic   string   `envconfig:"KAFKA_RUN_EVENTS_TOPIC" default:"autohedge.run-events"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if cfg.Pipeline.MaxConcurrentSymbols <= 0 {
		cfg.Pipeline.MaxConcurrentSymbols = 1
	}
	if cfg.Pipeline.StageRetryLimit < 0 {
		cfg.Pipeline.StageRetryLimit = 0
	}

	return &cfg, nil
}

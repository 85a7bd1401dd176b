package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/muhammadolammi/resumereview/internal/analysis"
	"github.com/spf13/viper"
)

const (
	StorageR2    = "r2"
	StorageMinIO = "minio"

	AnalyzerWebhook = "webhook"
	AnalyzerGemini  = "gemini"
)

type Config struct {
	Port        string          `mapstructure:"port"`
	LogLevel    string          `mapstructure:"log_level"`
	DBURL       string          `mapstructure:"db_url"`
	RabbitMQURL string          `mapstructure:"rabbitmq_url"`
	JWT         JWTConfig       `mapstructure:"jwt"`
	Storage     StorageConfig   `mapstructure:"storage"`
	Analysis    AnalysisConfig  `mapstructure:"analysis"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Reconcile   ReconcileConfig `mapstructure:"reconcile"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

type StorageConfig struct {
	Driver        string      `mapstructure:"driver"`
	Bucket        string      `mapstructure:"bucket"`
	PublicBaseURL string      `mapstructure:"public_base_url"`
	R2            R2Config    `mapstructure:"r2"`
	MinIO         MinIOConfig `mapstructure:"minio"`
}

type R2Config struct {
	AccountID string `mapstructure:"account_id"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type AnalysisConfig struct {
	Driver       string        `mapstructure:"driver"`
	WebhookURL   string        `mapstructure:"webhook_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	GoogleAPIKey string        `mapstructure:"google_api_key"`
	GeminiModel  string        `mapstructure:"gemini_model"`
}

type RateLimitConfig struct {
	RedisURL string        `mapstructure:"redis_url"`
	Limit    int           `mapstructure:"limit"`
	Window   time.Duration `mapstructure:"window"`
}

type ReconcileConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

var envBindings = map[string]string{
	"port":                     "PORT",
	"log_level":                "LOG_LEVEL",
	"db_url":                   "DB_URL",
	"rabbitmq_url":             "RABBITMQ_URL",
	"jwt.secret":               "JWT_SECRET",
	"jwt.access_ttl":           "JWT_ACCESS_TTL",
	"jwt.refresh_ttl":          "JWT_REFRESH_TTL",
	"storage.driver":           "STORAGE_DRIVER",
	"storage.bucket":           "STORAGE_BUCKET",
	"storage.public_base_url":  "STORAGE_PUBLIC_BASE_URL",
	"storage.r2.account_id":    "R2_ACCOUNT_ID",
	"storage.r2.access_key":    "R2_ACCESS_KEY",
	"storage.r2.secret_key":    "R2_SECRET_KEY",
	"storage.minio.endpoint":   "MINIO_ENDPOINT",
	"storage.minio.access_key": "MINIO_ACCESS_KEY",
	"storage.minio.secret_key": "MINIO_SECRET_KEY",
	"storage.minio.use_ssl":    "MINIO_USE_SSL",
	"analysis.driver":          "ANALYZER",
	"analysis.webhook_url":     "N8N_WEBHOOK_URL",
	"analysis.timeout":         "ANALYSIS_TIMEOUT",
	"analysis.max_attempts":    "ANALYSIS_MAX_ATTEMPTS",
	"analysis.google_api_key":  "GOOGLE_API_KEY",
	"analysis.gemini_model":    "GEMINI_MODEL",
	"rate_limit.redis_url":     "REDIS_URL",
	"rate_limit.limit":         "RATE_LIMIT",
	"rate_limit.window":        "RATE_LIMIT_WINDOW",
	"reconcile.interval":       "RECONCILE_INTERVAL",
	"reconcile.stale_after":    "RECONCILE_STALE_AFTER",
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("jwt.access_ttl", time.Hour)
	v.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)
	v.SetDefault("storage.driver", StorageR2)
	v.SetDefault("storage.bucket", "resumes")
	v.SetDefault("storage.minio.use_ssl", false)
	v.SetDefault("analysis.driver", AnalyzerWebhook)
	v.SetDefault("analysis.webhook_url", "http://localhost:5678/webhook/analyze-resume")
	v.SetDefault("analysis.timeout", 2*time.Minute)
	v.SetDefault("analysis.max_attempts", 2)
	v.SetDefault("analysis.gemini_model", "gemini-2.5-pro")
	v.SetDefault("rate_limit.limit", 20)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("reconcile.interval", time.Minute)
	v.SetDefault("reconcile.stale_after", 15*time.Minute)

	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var missing []string
	require := func(val, env string) {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, env)
		}
	}

	require(c.DBURL, "DB_URL")
	require(c.JWT.Secret, "JWT_SECRET")

	switch c.Storage.Driver {
	case StorageR2:
		require(c.Storage.R2.AccountID, "R2_ACCOUNT_ID")
		require(c.Storage.R2.AccessKey, "R2_ACCESS_KEY")
		require(c.Storage.R2.SecretKey, "R2_SECRET_KEY")
	case StorageMinIO:
		require(c.Storage.MinIO.Endpoint, "MINIO_ENDPOINT")
		require(c.Storage.MinIO.AccessKey, "MINIO_ACCESS_KEY")
		require(c.Storage.MinIO.SecretKey, "MINIO_SECRET_KEY")
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	switch c.Analysis.Driver {
	case AnalyzerWebhook:
		require(c.Analysis.WebhookURL, "N8N_WEBHOOK_URL")
	case AnalyzerGemini:
		require(c.Analysis.GoogleAPIKey, "GOOGLE_API_KEY")
	default:
		return fmt.Errorf("unknown ANALYZER %q", c.Analysis.Driver)
	}

	if len(missing) > 0 {
		return fmt.Errorf("empty %s in environment", strings.Join(missing, ", "))
	}
	if c.Analysis.MaxAttempts < 1 {
		return errors.New("ANALYSIS_MAX_ATTEMPTS must be at least 1")
	}
	if c.Analysis.Timeout <= 0 {
		return errors.New("ANALYSIS_TIMEOUT must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return errors.New("RATE_LIMIT_WINDOW must be positive")
	}
	if c.Reconcile.Interval <= 0 {
		return errors.New("RECONCILE_INTERVAL must be positive")
	}
	if budget := c.Analysis.Budget(); c.Reconcile.StaleAfter <= budget {
		return fmt.Errorf("RECONCILE_STALE_AFTER must exceed the analysis time budget of %s", budget)
	}
	return nil
}

// Budget is the longest one analysis may hold its claim.
func (a AnalysisConfig) Budget() time.Duration {
	if a.Driver == AnalyzerGemini {
		return a.Timeout
	}
	return analysis.WebhookBudget(a.Timeout, a.MaxAttempts)
}

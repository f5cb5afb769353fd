package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "bonsai.yaml"

// MinAITimeout is the lowest allowed provider timeout.
const MinAITimeout = time.Second

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "BONSAI_PORT")
	setString(&cfg.Server.CORSOrigin, "BONSAI_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "BONSAI_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "BONSAI_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "BONSAI_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "BONSAI_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "BONSAI_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.AI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.AI.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.AI.Model, "BONSAI_AI_MODEL")
	setDuration(&cfg.AI.Timeout, "BONSAI_AI_TIMEOUT")
	setFloat64(&cfg.AI.ConfidenceLow, "BONSAI_AI_CONFIDENCE_LOW")
	setFloat64(&cfg.AI.ConfidenceHigh, "BONSAI_AI_CONFIDENCE_HIGH")
	setBool(&cfg.Auth.Enabled, "BONSAI_AUTH_ENABLED")
	setString(&cfg.Auth.JWTSecret, "BONSAI_JWT_SECRET")
	setDuration(&cfg.Auth.AccessTokenExpiry, "BONSAI_ACCESS_TOKEN_EXPIRY")
	setInt(&cfg.Auth.BcryptCost, "BONSAI_BCRYPT_COST")
	setString(&cfg.Logging.Level, "BONSAI_LOG_LEVEL")
	setString(&cfg.Logging.Service, "BONSAI_LOG_SERVICE")
	setInt(&cfg.Breaker.MaxFailures, "BONSAI_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "BONSAI_BREAKER_TIMEOUT")
	setInt64(&cfg.Cache.MaxSizeMB, "BONSAI_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.TTL, "BONSAI_CACHE_TTL")
	setString(&cfg.Otel.Endpoint, "BONSAI_OTEL_ENDPOINT")
}

// validate checks that required fields are set and bounds hold.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.AI.Timeout < MinAITimeout {
		return fmt.Errorf("ai.timeout must be at least %s", MinAITimeout)
	}
	if cfg.AI.ConfidenceLow < 0 || cfg.AI.ConfidenceHigh > 1 || cfg.AI.ConfidenceLow >= cfg.AI.ConfidenceHigh {
		return errors.New("ai confidence thresholds must satisfy 0 <= low < high <= 1")
	}
	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required when auth is enabled")
	}
	if cfg.Auth.BcryptCost < 4 || cfg.Auth.BcryptCost > 31 {
		return errors.New("auth.bcrypt_cost must be between 4 and 31")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

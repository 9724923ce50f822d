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
const DefaultConfigFile = "genia.yaml"

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
	setString(&cfg.Server.Port, "GENIA_PORT")
	setString(&cfg.Server.CORSOrigin, "GENIA_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "GENIA_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "GENIA_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "GENIA_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "GENIA_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "GENIA_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.LiteLLM.URL, "LITELLM_URL")
	setString(&cfg.LiteLLM.MasterKey, "LITELLM_MASTER_KEY")
	setString(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.Logging.Level, "GENIA_LOG_LEVEL")
	setString(&cfg.Logging.Service, "GENIA_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "GENIA_LOG_ASYNC")
	setInt(&cfg.Breaker.MaxFailures, "GENIA_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "GENIA_BREAKER_TIMEOUT")
	setInt64(&cfg.Cache.L1MaxSizeMB, "GENIA_CACHE_L1_SIZE_MB")

	// Classifier / completion
	setString(&cfg.Classifier.Provider, "GENIA_CLASSIFIER_PROVIDER")
	setString(&cfg.Classifier.Model, "GENIA_CLASSIFIER_MODEL")
	setInt(&cfg.Classifier.MaxTokens, "GENIA_CLASSIFIER_MAX_TOKENS")
	setDuration(&cfg.Classifier.Timeout, "GENIA_CLASSIFIER_TIMEOUT")
	setString(&cfg.Completion.Model, "GENIA_COMPLETION_MODEL")
	setInt(&cfg.Completion.MaxTokens, "GENIA_COMPLETION_MAX_TOKENS")
	setFloat64(&cfg.Completion.Temperature, "GENIA_COMPLETION_TEMPERATURE")
	setString(&cfg.Clones.Dir, "GENIA_CLONES_DIR")

	// Connectors
	setDuration(&cfg.Connectors.HTTPTimeout, "GENIA_CONNECTOR_TIMEOUT")
	setString(&cfg.Connectors.CredentialsKey, "GENIA_CREDENTIALS_KEY")
	setDuration(&cfg.Connectors.AccountCacheTTL, "GENIA_ACCOUNT_CACHE_TTL")
	setString(&cfg.Connectors.DefaultSocial, "GENIA_DEFAULT_SOCIAL")
	setString(&cfg.Connectors.DefaultEmail, "GENIA_DEFAULT_EMAIL")
	setString(&cfg.Connectors.FromName, "GENIA_FROM_NAME")

	// Observability
	setString(&cfg.OTEL.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setBool(&cfg.OTEL.Insecure, "GENIA_OTEL_INSECURE")
	setString(&cfg.OTEL.ServiceName, "OTEL_SERVICE_NAME")

	// MCP tool server
	setBool(&cfg.MCPServer.Enabled, "GENIA_MCP_ENABLED")
	setString(&cfg.MCPServer.Path, "GENIA_MCP_PATH")
	setString(&cfg.MCPServer.APIKey, "GENIA_MCP_API_KEY")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	switch cfg.Classifier.Provider {
	case "litellm":
		if cfg.LiteLLM.URL == "" {
			return errors.New("litellm.url is required for the litellm classifier")
		}
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return errors.New("openai.api_key is required for the openai classifier")
		}
	case "keyword":
	default:
		return fmt.Errorf("classifier.provider %q is not one of litellm, openai, keyword", cfg.Classifier.Provider)
	}
	if key := cfg.Connectors.CredentialsKey; key != "" && len(key) != 64 {
		return errors.New("connectors.credentials_key must be 64 hex characters")
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

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
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

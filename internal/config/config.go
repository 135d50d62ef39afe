package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Rule source kinds
const (
	SourceFile     = "file"
	SourceAWS      = "aws"
	SourceVault    = "vault"
	SourcePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Rules    RulesConfig
	AWS      AWSConfig
	Vault    VaultConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Metrics  MetricsConfig
}

// RulesConfig selects where the error mapping rules come from
type RulesConfig struct {
	Source        string        // file, aws, vault, postgres
	Path          string        // file path, secret id or vault path
	Format        string        // json or yaml, by extension when empty
	ReasonPattern string        // failure reason template
	LoadTimeout   time.Duration // deadline for the startup load
	LoadRetries   int           // attempts for remote sources
}

// AWSConfig holds AWS Secrets Manager configuration
type AWSConfig struct {
	Region   string
	Profile  string
	Endpoint string // LocalStack
}

// VaultConfig holds HashiCorp Vault KV configuration
type VaultConfig struct {
	Address    string
	AuthMethod string // token or approle
	Token      string
	RoleID     string
	SecretID   string
	Namespace  string
	MountPath  string
	KVVersion  string // v1 or v2
	ValueKey   string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL      string
	Table    string
	MaxConns int32
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Environment string // production selects JSON output
}

// MetricsConfig holds the Prometheus listener configuration
type MetricsConfig struct {
	Port int // 0 disables the listener
}

// LoadFromEnv loads and validates configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads configuration from environment variables without validating
// it, so callers can apply overrides first
func FromEnv() *Config {
	return &Config{
		Rules: RulesConfig{
			Source:        getEnv("RULES_SOURCE", SourceFile),
			Path:          getEnv("RULES_PATH", "error-mapping.json"),
			Format:        getEnv("RULES_FORMAT", ""),
			ReasonPattern: getEnv("REASON_PATTERN", "'%s' - '%s'"),
			LoadTimeout:   getEnvAsDuration("LOAD_TIMEOUT", 10*time.Second),
			LoadRetries:   getEnvAsInt("LOAD_RETRIES", 3),
		},
		AWS: AWSConfig{
			Region:   getEnv("AWS_REGION", ""),
			Profile:  getEnv("AWS_PROFILE", ""),
			Endpoint: getEnv("AWS_SECRETS_ENDPOINT", ""),
		},
		Vault: VaultConfig{
			Address:    getEnv("VAULT_ADDR", ""),
			AuthMethod: getEnv("VAULT_AUTH_METHOD", "token"),
			Token:      getEnv("VAULT_TOKEN", ""),
			RoleID:     getEnv("VAULT_ROLE_ID", ""),
			SecretID:   getEnv("VAULT_SECRET_ID", ""),
			Namespace:  getEnv("VAULT_NAMESPACE", ""),
			MountPath:  getEnv("VAULT_MOUNT", "secret"),
			KVVersion:  getEnv("VAULT_KV_VERSION", "v2"),
			ValueKey:   getEnv("VAULT_VALUE_KEY", "value"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Table:    getEnv("RULES_TABLE", "error_mappings"),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 2)),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Metrics: MetricsConfig{
			Port: getEnvAsInt("METRICS_PORT", 0),
		},
	}
}

// Validate checks that the settings the selected rule source needs are present
func (c *Config) Validate() error {
	switch c.Rules.Source {
	case SourceFile:
		if c.Rules.Path == "" {
			return fmt.Errorf("RULES_PATH is required for the file source")
		}
	case SourceAWS:
		if c.AWS.Region == "" {
			return fmt.Errorf("AWS_REGION is required for the aws source")
		}
		if c.Rules.Path == "" {
			return fmt.Errorf("RULES_PATH (secret id) is required for the aws source")
		}
	case SourceVault:
		if c.Vault.Address == "" {
			return fmt.Errorf("VAULT_ADDR is required for the vault source")
		}
		if c.Vault.AuthMethod == "token" && c.Vault.Token == "" {
			return fmt.Errorf("VAULT_TOKEN is required for vault token auth")
		}
		if c.Rules.Path == "" {
			return fmt.Errorf("RULES_PATH (vault path) is required for the vault source")
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres source")
		}
	default:
		return fmt.Errorf("unsupported RULES_SOURCE %q", c.Rules.Source)
	}

	switch c.Rules.Format {
	case "", "json", "yaml", "yml":
	default:
		return fmt.Errorf("unsupported RULES_FORMAT %q", c.Rules.Format)
	}

	if c.Rules.LoadTimeout <= 0 {
		return fmt.Errorf("LOAD_TIMEOUT must be positive")
	}
	if c.Rules.LoadRetries < 1 {
		return fmt.Errorf("LOAD_RETRIES must be at least 1")
	}
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("METRICS_PORT out of range: %d", c.Metrics.Port)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

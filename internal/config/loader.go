package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadOptions represents options for loading configuration
type LoadOptions struct {
	Path string
}

// Load loads configuration from various sources
func Load(opts ...LoadOptions) (*Config, error) {
	cfg := Default()

	var options LoadOptions
	if len(opts) > 0 {
		options = opts[0]
	}

	if options.Path != "" {
		if err := loadFromFile(cfg, options.Path); err != nil {
			return nil, err
		}
	}

	// Environment variables take precedence over file values
	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile loads configuration from a file
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) {
	if host := os.Getenv("LINECHAT_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("LINECHAT_SERVER_PORT"); port != "" {
		if p, err := parseInt(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if pass := os.Getenv("LINECHAT_SERVER_PASSWORD"); pass != "" {
		cfg.Server.Password = pass
	}

	if host := os.Getenv("LINECHAT_WEB_HOST"); host != "" {
		cfg.Web.Host = host
	}
	if port := os.Getenv("LINECHAT_WEB_PORT"); port != "" {
		if p, err := parseInt(port); err == nil {
			cfg.Web.Port = p
		}
	}

	if capacity := os.Getenv("LINECHAT_HISTORY_CAPACITY"); capacity != "" {
		if n, err := parseInt(capacity); err == nil {
			cfg.History.Capacity = n
		}
	}

	if score := os.Getenv("LINECHAT_GAME_WINNING_SCORE"); score != "" {
		if n, err := parseInt(score); err == nil {
			cfg.Game.WinningScore = n
		}
	}
	if timeout := os.Getenv("LINECHAT_GAME_QUESTION_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.Game.QuestionTimeout = d
		}
	}

	if path := os.Getenv("LINECHAT_AUDIT_PATH"); path != "" {
		cfg.Audit.Path = path
	}

	if level := os.Getenv("LINECHAT_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("LINECHAT_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}
}

// parseInt parses a string to int
func parseInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	return i, err
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

// NewConfigError creates a new configuration error
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s': %s", e.Field, e.Message)
}

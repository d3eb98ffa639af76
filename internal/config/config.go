package config

import (
	"time"

	"github.com/sonnybell/linechat/internal/logging"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig   `json:"server" yaml:"server"`
	Web     WebConfig      `json:"web" yaml:"web"`
	History HistoryConfig  `json:"history" yaml:"history"`
	Game    GameConfig     `json:"game" yaml:"game"`
	Audit   AuditConfig    `json:"audit" yaml:"audit"`
	Logging logging.Config `json:"logging" yaml:"logging"`
}

// ServerConfig represents chat server configuration
type ServerConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Password string `json:"password" yaml:"password"`
}

// WebConfig represents web bridge configuration
type WebConfig struct {
	Host         string        `json:"host" yaml:"host"`
	Port         int           `json:"port" yaml:"port"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
}

// HistoryConfig represents history buffer configuration
type HistoryConfig struct {
	Capacity int `json:"capacity" yaml:"capacity"`
}

// GameConfig represents trivia game configuration
type GameConfig struct {
	WinningScore    int           `json:"winning_score" yaml:"winning_score"`
	QuestionTimeout time.Duration `json:"question_timeout" yaml:"question_timeout"`
}

// AuditConfig represents the message log configuration
type AuditConfig struct {
	Path string `json:"path" yaml:"path"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 6666,
		},
		Web: WebConfig{
			Host:         "localhost",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		History: HistoryConfig{
			Capacity: 100,
		},
		Game: GameConfig{
			WinningScore:    5,
			QuestionTimeout: 30 * time.Second,
		},
		Audit: AuditConfig{
			Path: "MessageLog.log",
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return NewConfigError("server.port", "invalid port number")
	}

	if c.Server.Password == "" {
		return NewConfigError("server.password", "password is required")
	}

	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return NewConfigError("web.port", "invalid port number")
	}

	if c.Web.ReadTimeout < 0 {
		return NewConfigError("web.read_timeout", "timeout cannot be negative")
	}

	if c.Web.WriteTimeout < 0 {
		return NewConfigError("web.write_timeout", "timeout cannot be negative")
	}

	if c.History.Capacity <= 0 {
		return NewConfigError("history.capacity", "capacity must be positive")
	}

	if c.Game.WinningScore <= 0 {
		return NewConfigError("game.winning_score", "winning score must be positive")
	}

	if c.Game.QuestionTimeout <= 0 {
		return NewConfigError("game.question_timeout", "timeout must be positive")
	}

	return nil
}

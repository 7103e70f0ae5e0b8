package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/common-creation/tokencounter/internal/logging"
	"github.com/common-creation/tokencounter/internal/models"
)

// Config represents the complete configuration for tokencounter
type Config struct {
	// Server configuration for the HTTP and MCP endpoints
	Server ServerConfig `yaml:"server" json:"server"`

	// Widget configuration shared by every widget host
	Widget WidgetConfig `yaml:"widget" json:"widget"`

	// Logging configuration
	Logging logging.LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig contains the HTTP server settings
type ServerConfig struct {
	// Address to listen on, host:port
	Addr string `yaml:"addr" json:"addr"`

	// Path of the streamable MCP endpoint
	MCPPath string `yaml:"mcp_path" json:"mcp_path"`

	// Seconds to wait for in-flight requests on shutdown
	ShutdownTimeout int `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// WidgetConfig contains widget related configuration
type WidgetConfig struct {
	// Model preselected when the host supplies none
	DefaultModel string `yaml:"default_model" json:"default_model"`

	// BCP 47 tag used to group digits in token counts
	Locale string `yaml:"locale" json:"locale"`

	// SQLite database holding persisted widget state
	StatePath string `yaml:"state_path" json:"state_path"`

	// Slot name used by the terminal host
	StateKey string `yaml:"state_key" json:"state_key"`
}

// NewDefaultConfig creates a new configuration with default values
func NewDefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	configDir := filepath.Join(homeDir, ".config", "tokencounter")

	logCfg := logging.DefaultConfig()
	logCfg.Level = getEnvOrDefault("TOKENCOUNTER_LOG_LEVEL", logCfg.Level)

	return &Config{
		Server: ServerConfig{
			Addr:            getEnvOrDefault("TOKENCOUNTER_ADDR", "0.0.0.0:"+getEnvOrDefault("PORT", "8000")),
			MCPPath:         "/mcp",
			ShutdownTimeout: 5,
		},
		Widget: WidgetConfig{
			DefaultModel: getEnvOrDefault("TOKENCOUNTER_MODEL", string(models.Fallback)),
			Locale:       "en",
			StatePath:    filepath.Join(configDir, "state.db"),
			StateKey:     "default",
		},
		Logging: logCfg,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("Server configuration error: %w", err)
	}

	if err := c.Widget.Validate(); err != nil {
		return fmt.Errorf("Widget configuration error: %w", err)
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("Logging configuration error: %w", err)
	}

	return nil
}

// Validate validates the server configuration
func (s *ServerConfig) Validate() error {
	if s.Addr == "" {
		return errors.New("addr is required")
	}

	if !strings.HasPrefix(s.MCPPath, "/") {
		return fmt.Errorf("mcp_path must start with '/', got %q", s.MCPPath)
	}

	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %d", s.ShutdownTimeout)
	}

	return nil
}

// Validate validates the widget configuration
func (w *WidgetConfig) Validate() error {
	if _, err := models.Parse(w.DefaultModel); err != nil {
		return err
	}

	if _, err := language.Parse(w.Locale); err != nil {
		return fmt.Errorf("invalid locale %q: %w", w.Locale, err)
	}

	if w.StateKey == "" {
		return errors.New("state_key is required")
	}

	return nil
}

// LocaleTag returns the parsed locale, English when it cannot be parsed
func (w *WidgetConfig) LocaleTag() language.Tag {
	tag, err := language.Parse(w.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

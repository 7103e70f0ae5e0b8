package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading and saving
type Loader struct {
	// Config file paths in priority order
	searchPaths []string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		searchPaths: getDefaultSearchPaths(),
	}
}

// Load loads configuration from file and environment variables.
// Defaults are overlaid by the first config file found, then by the
// environment, and the result is validated.
func (l *Loader) Load(explicitPath string) (*Config, error) {
	cfg := NewDefaultConfig()

	configPath := explicitPath
	if configPath == "" {
		for _, path := range l.searchPaths {
			if fileExists(path) {
				configPath = path
				break
			}
		}
	}

	if configPath != "" {
		fileCfg, err := l.loadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		mergeConfig(cfg, fileCfg)
	}

	applyEnvironmentOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to file
func (l *Loader) Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the path where config would be loaded from
func (l *Loader) GetConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	for _, path := range l.searchPaths {
		if fileExists(path) {
			return path
		}
	}

	return DefaultConfigPath()
}

// DefaultConfigPath is where `config init` writes a new file
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "tokencounter", "config.yaml")
}

// loadFromFile loads configuration from YAML file
func (l *Loader) loadFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// getDefaultSearchPaths returns the default configuration search paths
func getDefaultSearchPaths() []string {
	paths := []string{}

	if envPath := os.Getenv("TOKENCOUNTER_CONFIG_PATH"); envPath != "" {
		paths = append(paths, envPath)
	}

	// Current directory - prioritized first
	paths = append(paths, "tokencounter.yaml", ".tokencounter.yaml")

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "tokencounter", "config.yaml"))
	}

	return paths
}

// mergeConfig merges non-zero values of src into dst
func mergeConfig(dst, src *Config) {
	if src.Server.Addr != "" {
		dst.Server.Addr = src.Server.Addr
	}
	if src.Server.MCPPath != "" {
		dst.Server.MCPPath = src.Server.MCPPath
	}
	if src.Server.ShutdownTimeout != 0 {
		dst.Server.ShutdownTimeout = src.Server.ShutdownTimeout
	}

	if src.Widget.DefaultModel != "" {
		dst.Widget.DefaultModel = src.Widget.DefaultModel
	}
	if src.Widget.Locale != "" {
		dst.Widget.Locale = src.Widget.Locale
	}
	if src.Widget.StatePath != "" {
		dst.Widget.StatePath = src.Widget.StatePath
	}
	if src.Widget.StateKey != "" {
		dst.Widget.StateKey = src.Widget.StateKey
	}

	if src.Logging.Level != "" {
		dst.Logging.Level = src.Logging.Level
	}
	if src.Logging.Format != "" {
		dst.Logging.Format = src.Logging.Format
	}
	if src.Logging.File != "" {
		dst.Logging.File = src.Logging.File
	}
	dst.Logging.Caller = dst.Logging.Caller || src.Logging.Caller
}

// applyEnvironmentOverrides applies environment variable overrides to config
func applyEnvironmentOverrides(cfg *Config) {
	if addr := os.Getenv("TOKENCOUNTER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if timeout := os.Getenv("TOKENCOUNTER_SHUTDOWN_TIMEOUT"); timeout != "" {
		if seconds, err := strconv.Atoi(timeout); err == nil {
			cfg.Server.ShutdownTimeout = seconds
		}
	}

	if model := os.Getenv("TOKENCOUNTER_MODEL"); model != "" {
		cfg.Widget.DefaultModel = model
	}
	if locale := os.Getenv("TOKENCOUNTER_LOCALE"); locale != "" {
		cfg.Widget.Locale = locale
	}
	if statePath := os.Getenv("TOKENCOUNTER_STATE_PATH"); statePath != "" {
		cfg.Widget.StatePath = statePath
	}

	if logLevel := os.Getenv("TOKENCOUNTER_LOG_LEVEL"); logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFile := os.Getenv("TOKENCOUNTER_LOG_FILE"); logFile != "" {
		cfg.Logging.File = logFile
	}
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// SampleConfig is written by `config init`
const SampleConfig = `# tokencounter configuration

server:
  # Address for the HTTP page, REST API and MCP endpoint
  addr: 0.0.0.0:8000
  mcp_path: /mcp
  # Seconds to wait for in-flight requests on shutdown
  shutdown_timeout: 5

widget:
  # One of gpt-4o-mini, gpt-4o, gpt-4.1-mini
  default_model: gpt-4o-mini
  # Locale used to group digits in token counts
  locale: en
  # state_path: ~/.config/tokencounter/state.db
  state_key: default

logging:
  # debug, info, warn, error
  level: info
  # text, json or logfmt
  format: text
  timestamp: true
  # file: /path/to/tokencounter.log
`

// CreateSampleConfig creates a sample configuration file
func CreateSampleConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(SampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write sample config: %w", err)
	}

	return nil
}

/*
Copyright © 2025 Token Counter Project

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/common-creation/tokencounter/internal/config"
)

var (
	outputFormat string
	initSample   bool
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tokencounter configuration",
	Long: `View, edit, and validate tokencounter configuration settings.`,
}

// showCmd shows the current configuration
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

// setCmd sets a configuration value
var setCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save the configuration file.

Examples:
  tokencounter config set widget.default_model gpt-4o
  tokencounter config set server.addr 127.0.0.1:9000
  tokencounter config set logging.level debug`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

// getCmd gets a specific configuration value
var getCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a specific configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

// initCmd initializes a new configuration file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	Long: `Initialize a new configuration file with default values.

This creates ~/.config/tokencounter/config.yaml, or the file named by --config.
With --sample a commented sample is written instead.`,
	RunE: runConfigInit,
}

// validateCmd validates the configuration
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(setCmd)
	configCmd.AddCommand(getCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(validateCmd)

	showCmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "output format (yaml, json)")
	initCmd.Flags().BoolVar(&initSample, "sample", false, "write a commented sample configuration")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	output, err := formatConfig(GetConfig(), outputFormat)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func formatConfig(cfg *config.Config, format string) (string, error) {
	var output []byte
	var err error

	switch strings.ToLower(format) {
	case "json":
		output, err = json.MarshalIndent(cfg, "", "  ")
	case "yaml", "yml":
		output, err = yaml.Marshal(cfg)
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return strings.TrimRight(string(output), "\n"), nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	cfg := GetConfig()

	if err := setConfigValue(cfg, key, value); err != nil {
		return fmt.Errorf("failed to set configuration value: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.NewLoader().Save(getConfigPath(), cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	ShowSuccess("Configuration updated: %s = %s", key, value)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	value, err := getConfigValue(GetConfig(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get configuration value: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	var err error
	if initSample {
		err = config.CreateSampleConfig(configPath)
	} else {
		err = config.NewLoader().Save(configPath, config.NewDefaultConfig())
	}
	if err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	ShowSuccess("Configuration initialized at %s", configPath)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if err := GetConfig().Validate(); err != nil {
		ShowError("Configuration validation failed:")
		ShowError("  %v", err)
		return fmt.Errorf("configuration is invalid")
	}

	ShowSuccess("Configuration is valid")
	return nil
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "server.addr":
		cfg.Server.Addr = value
	case "server.mcp_path":
		cfg.Server.MCPPath = value
	case "server.shutdown_timeout":
		seconds, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer %q: %w", value, err)
		}
		cfg.Server.ShutdownTimeout = seconds
	case "widget.default_model":
		cfg.Widget.DefaultModel = value
	case "widget.locale":
		cfg.Widget.Locale = value
	case "widget.state_path":
		cfg.Widget.StatePath = value
	case "widget.state_key":
		cfg.Widget.StateKey = value
	case "logging.level":
		cfg.Logging.Level = value
	case "logging.format":
		cfg.Logging.Format = value
	case "logging.file":
		cfg.Logging.File = value
	case "logging.timestamp", "logging.caller":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q: %w", value, err)
		}
		if strings.HasSuffix(key, "timestamp") {
			cfg.Logging.Timestamp = b
		} else {
			cfg.Logging.Caller = b
		}
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "server.addr":
		return cfg.Server.Addr, nil
	case "server.mcp_path":
		return cfg.Server.MCPPath, nil
	case "server.shutdown_timeout":
		return strconv.Itoa(cfg.Server.ShutdownTimeout), nil
	case "widget.default_model":
		return cfg.Widget.DefaultModel, nil
	case "widget.locale":
		return cfg.Widget.Locale, nil
	case "widget.state_path":
		return cfg.Widget.StatePath, nil
	case "widget.state_key":
		return cfg.Widget.StateKey, nil
	case "logging.level":
		return cfg.Logging.Level, nil
	case "logging.format":
		return cfg.Logging.Format, nil
	case "logging.file":
		return cfg.Logging.File, nil
	case "logging.timestamp":
		return strconv.FormatBool(cfg.Logging.Timestamp), nil
	case "logging.caller":
		return strconv.FormatBool(cfg.Logging.Caller), nil
	}
	return "", fmt.Errorf("unknown configuration key: %s", key)
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

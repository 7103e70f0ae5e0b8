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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/common-creation/tokencounter/internal/config"
	"github.com/common-creation/tokencounter/internal/logging"
)

var (
	cfgFile   string
	debugMode bool
	noColor   bool
	cfg       *config.Config
	logger    *log.Logger
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tokencounter",
	Short: "Token counter - MCP server and widget hosts",
	Long: `tokencounter counts the tokens of a prompt and an optional response and
estimates what they cost on several chat models.

It provides:
- An MCP server exposing the token_counter tool and its widget
- A web page and JSON API for the same widget
- A terminal widget host
- One-shot counting from the command line`,
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.config/tokencounter/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetEnvPrefix("TOKENCOUNTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	var err error
	cfg, err = loadConfiguration()
	if err != nil {
		ShowWarning("Failed to load configuration: %v", err)
		cfg = config.NewDefaultConfig()
	}
	applyFlagOverrides(cfg)

	if err := initializeLogging(cfg); err != nil {
		ShowWarning("Failed to initialize logging: %v", err)
		logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.InfoLevel})
	}

	if noColor || viper.GetBool("no_color") || os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func loadConfiguration() (*config.Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "tokencounter"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("tokencounter")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	loader := config.NewLoader()
	return loader.Load(viper.ConfigFileUsed())
}

// applyFlagOverrides applies global flags on top of the loaded configuration
func applyFlagOverrides(cfg *config.Config) {
	if rootCmd.PersistentFlags().Changed("log-level") {
		cfg.Logging.Level = viper.GetString("logging.level")
	}
	if debugMode || viper.GetBool("debug") {
		dev := logging.DevelopmentConfig()
		cfg.Logging.Level = dev.Level
		cfg.Logging.Caller = dev.Caller
	}
}

func initializeLogging(cfg *config.Config) error {
	l, closer, err := logging.ConfigureLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}
	logger = l
	logCloser = closer
	logging.SetDefault(l)
	return nil
}

func disableColors() {
	os.Setenv("NO_COLOR", "1")
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	return cfg
}

// GetLogger returns the configured logger
func GetLogger() *log.Logger {
	if logger == nil {
		return logging.GetDefault()
	}
	return logger
}

func colorEnabled() bool {
	return !noColor && os.Getenv("NO_COLOR") == ""
}

// ShowError displays an error message to the user
func ShowError(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if colorEnabled() {
		fmt.Fprintf(os.Stderr, "\033[31mError: %s\033[0m\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
}

// ShowWarning displays a warning message to the user
func ShowWarning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if colorEnabled() {
		fmt.Fprintf(os.Stderr, "\033[33mWarning: %s\033[0m\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	}
}

// ShowInfo displays an informational message to the user
func ShowInfo(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, fmt.Sprintf(format, args...))
}

// ShowSuccess displays a success message to the user
func ShowSuccess(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if colorEnabled() {
		fmt.Fprintf(os.Stderr, "\033[32m✓ %s\033[0m\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "✓ %s\n", msg)
	}
}

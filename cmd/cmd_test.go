package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/common-creation/tokencounter/internal/config"
	"github.com/common-creation/tokencounter/internal/models"
	"github.com/common-creation/tokencounter/internal/tokens"
	"github.com/common-creation/tokencounter/internal/widget"
)

func TestReadPrompt(t *testing.T) {
	t.Cleanup(func() { countFile = "" })

	t.Run("from args", func(t *testing.T) {
		got, err := readPrompt(strings.NewReader("ignored"), []string{"hello", "world"})
		require.NoError(t, err)
		assert.Equal(t, "hello world", got)
	})

	t.Run("dash reads stdin", func(t *testing.T) {
		got, err := readPrompt(strings.NewReader("from stdin"), []string{"-"})
		require.NoError(t, err)
		assert.Equal(t, "from stdin", got)
	})

	t.Run("no args reads stdin", func(t *testing.T) {
		got, err := readPrompt(strings.NewReader("piped"), nil)
		require.NoError(t, err)
		assert.Equal(t, "piped", got)
	})

	t.Run("file wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prompt.txt")
		require.NoError(t, os.WriteFile(path, []byte("file prompt"), 0644))
		countFile = path
		defer func() { countFile = "" }()

		got, err := readPrompt(strings.NewReader("stdin"), []string{"args"})
		require.NoError(t, err)
		assert.Equal(t, "file prompt", got)
	})

	t.Run("missing file", func(t *testing.T) {
		countFile = filepath.Join(t.TempDir(), "nope.txt")
		defer func() { countFile = "" }()

		_, err := readPrompt(strings.NewReader(""), nil)
		assert.Error(t, err)
	})
}

func TestPrintReport(t *testing.T) {
	report := &tokens.CostReport{
		PromptTokens:   1200,
		ResponseTokens: 34,
		TotalTokens:    1234,
		DefaultModel:   models.GPT4o,
		Costs: map[models.ID]tokens.PerModelCost{
			models.GPT4oMini: {TotalTokens: 1234, EstimatedCostUSD: 0.0002},
			models.GPT4o:     {TotalTokens: 1234, EstimatedCostUSD: 0.00617},
		},
	}

	var buf bytes.Buffer
	printReport(&buf, report, message.NewPrinter(language.English))
	out := buf.String()

	assert.Contains(t, out, "Prompt has 1200 tokens and response 34. Total: 1234.")
	assert.Contains(t, out, "Total tokens: 1,234 (tokenized as GPT-4o)")
	assert.Contains(t, out, "GPT-4o Mini")
	assert.Contains(t, out, "0.00018 €")
	assert.Contains(t, out, "0.00568 €")
	assert.Less(t, strings.Index(out, "GPT-4o Mini"), strings.LastIndex(out, "0.00568"))
}

func TestConfigValues(t *testing.T) {
	cfg := config.NewDefaultConfig()

	require.NoError(t, setConfigValue(cfg, "widget.default_model", "gpt-4o"))
	require.NoError(t, setConfigValue(cfg, "server.shutdown_timeout", "12"))
	require.NoError(t, setConfigValue(cfg, "Logging.Caller", "true"))

	got, err := getConfigValue(cfg, "widget.default_model")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", got)

	got, err = getConfigValue(cfg, "server.shutdown_timeout")
	require.NoError(t, err)
	assert.Equal(t, "12", got)

	got, err = getConfigValue(cfg, "logging.caller")
	require.NoError(t, err)
	assert.Equal(t, "true", got)

	assert.Error(t, setConfigValue(cfg, "server.shutdown_timeout", "soon"))
	assert.Error(t, setConfigValue(cfg, "logging.timestamp", "maybe"))
	assert.Error(t, setConfigValue(cfg, "ai.api_key", "x"))
	_, err = getConfigValue(cfg, "ai.api_key")
	assert.Error(t, err)
}

func TestFormatConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()

	out, err := formatConfig(cfg, "json")
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "server")
	assert.Contains(t, decoded, "widget")

	out, err = formatConfig(cfg, "YAML")
	require.NoError(t, err)
	assert.Contains(t, out, "widget:")

	_, err = formatConfig(cfg, "toml")
	assert.Error(t, err)
}

func TestToolInputFromFlags(t *testing.T) {
	newCmd := func() *cobra.Command {
		c := &cobra.Command{Use: "tui"}
		c.Flags().StringVar(&tuiPrompt, "prompt", "", "")
		c.Flags().StringVar(&tuiResponse, "response", "", "")
		c.Flags().StringVar(&tuiModel, "model", "", "")
		return c
	}

	c := newCmd()
	require.NoError(t, c.Flags().Parse(nil))
	assert.Nil(t, toolInputFromFlags(c))

	c = newCmd()
	require.NoError(t, c.Flags().Parse([]string{"--prompt", "", "--model", "gpt-9"}))
	input := toolInputFromFlags(c)
	require.NotNil(t, input)
	require.NotNil(t, input.PromptText)
	assert.Equal(t, "", *input.PromptText)
	assert.Nil(t, input.ResponseText)
	require.NotNil(t, input.Model)
	assert.Equal(t, models.ID("gpt-9"), *input.Model)
}

func TestConnectToolServer(t *testing.T) {
	ctx := context.Background()

	_, err := connectToolServer(ctx, "", "   ")
	assert.Error(t, err)

	client, err := connectToolServer(ctx, "", "")
	require.NoError(t, err)
	defer client.Close()

	res, err := client.CallTool(ctx, widget.ToolName, widget.ToolArgs{PromptText: "hello world"})
	require.NoError(t, err)
	require.NotNil(t, res.ToolOutput)
	assert.Equal(t, 2, res.ToolOutput.PromptTokens)
}

func TestVersionOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputJSON(&buf, getVersionInfo()))

	var info VersionInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &info))
	assert.Equal(t, Version, info.Version)
	assert.Contains(t, info.Features, "mcp-server")

	buf.Reset()
	outputVerbose(&buf, info)
	assert.Contains(t, buf.String(), "tokencounter version")
	assert.Contains(t, buf.String(), "terminal-host")
}

func TestDebugFlagSelectsDevelopmentLogging(t *testing.T) {
	debugMode = true
	t.Cleanup(func() { debugMode = false })

	cfg := config.NewDefaultConfig()
	cfg.Logging.Format = "json"
	applyFlagOverrides(cfg)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Caller)
	assert.Equal(t, "json", cfg.Logging.Format)
}

package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/common-creation/tokencounter/internal/models"
	"github.com/common-creation/tokencounter/internal/tokens"
	"github.com/common-creation/tokencounter/internal/webui"
	"github.com/common-creation/tokencounter/internal/widget"
)

type failingEstimator struct{}

func (failingEstimator) Estimate(context.Context, tokens.Request) (tokens.CostReport, error) {
	return tokens.CostReport{}, errors.New("tokenizer unavailable")
}

func connectTestClient(t *testing.T, estimator Estimator) *Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	client, err := ConnectInProcess(ctx, NewServer(estimator, nil), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestServerListsTokenCounterTool(t *testing.T) {
	client := connectTestClient(t, tokens.NewEstimator(nil))

	res, err := client.session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, res.Tools, 1)

	tool := res.Tools[0]
	assert.Equal(t, widget.ToolName, tool.Name)
	assert.Equal(t, webui.WidgetURI, tool.Meta["openai/outputTemplate"])
	assert.NotNil(t, tool.InputSchema)
}

func TestCallToolRoundTrip(t *testing.T) {
	client := connectTestClient(t, tokens.NewEstimator(nil))

	res, err := client.CallTool(context.Background(), widget.ToolName, widget.ToolArgs{
		PromptText:   "hello world",
		ResponseText: "",
		Model:        models.GPT4o,
	})
	require.NoError(t, err)
	require.NotNil(t, res.ToolOutput)

	report := res.ToolOutput
	assert.Equal(t, 2, report.PromptTokens)
	assert.Equal(t, 0, report.ResponseTokens)
	assert.Equal(t, 2, report.TotalTokens)
	assert.Equal(t, models.GPT4o, report.DefaultModel)
	assert.Len(t, report.Costs, len(models.Supported))
	for _, m := range models.Supported {
		assert.Equal(t, 2, report.Costs[m].TotalTokens, m)
	}
}

func TestCallToolNormalizesUnknownModel(t *testing.T) {
	client := connectTestClient(t, tokens.NewEstimator(nil))

	res, err := client.CallTool(context.Background(), widget.ToolName, widget.ToolArgs{
		PromptText: "hi",
		Model:      "gpt-2",
	})
	require.NoError(t, err)
	require.NotNil(t, res.ToolOutput)
	assert.Equal(t, models.Fallback, res.ToolOutput.DefaultModel)
}

func TestCallToolEstimatorError(t *testing.T) {
	client := connectTestClient(t, failingEstimator{})

	_, err := client.CallTool(context.Background(), widget.ToolName, widget.ToolArgs{PromptText: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), widget.ToolName)
}

func TestCallUnknownTool(t *testing.T) {
	client := connectTestClient(t, tokens.NewEstimator(nil))

	_, err := client.CallTool(context.Background(), "word_counter", widget.ToolArgs{PromptText: "hi"})
	assert.Error(t, err)
}

func TestReadWidgetResource(t *testing.T) {
	client := connectTestClient(t, tokens.NewEstimator(nil))

	res, err := client.session.ReadResource(context.Background(), &mcpsdk.ReadResourceParams{URI: webui.WidgetURI})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)

	content := res.Contents[0]
	assert.Equal(t, webui.WidgetMIMEType, content.MIMEType)
	assert.Equal(t, true, content.Meta["openai/widgetPrefersBorder"])
	assert.Contains(t, content.Text, `<div id="root"></div>`)

	html, err := client.ReadWidget(context.Background(), webui.WidgetURI)
	require.NoError(t, err)
	assert.Equal(t, content.Text, html)
}

func TestClientClose(t *testing.T) {
	client := connectTestClient(t, tokens.NewEstimator(nil))

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	_, err := client.CallTool(context.Background(), widget.ToolName, widget.ToolArgs{PromptText: "hi"})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestControllerRecomputeThroughClient(t *testing.T) {
	client := connectTestClient(t, tokens.NewEstimator(nil))

	host := struct {
		widget.StaticBridge
		*Client
	}{Client: client}

	ctrl := widget.New(host)
	ctrl.SetPrompt("hello world")
	require.NoError(t, ctrl.SetModel(models.GPT4Dot1Mini))

	ctrl.Recompute(context.Background())
	require.NoError(t, ctrl.LastError())

	report := ctrl.Report()
	require.NotNil(t, report)
	assert.Equal(t, 2, report.TotalTokens)
	assert.Equal(t, models.GPT4Dot1Mini, report.DefaultModel)
}

func TestDecodeReport(t *testing.T) {
	report, err := decodeReport(nil)
	require.NoError(t, err)
	assert.Nil(t, report)

	report, err = decodeReport(map[string]any{
		"prompt_tokens": 3,
		"total_tokens":  3,
		"default_model": "gpt-4o",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalTokens)
	assert.Equal(t, models.GPT4o, report.DefaultModel)

	_, err = decodeReport(map[string]any{"prompt_tokens": "many"})
	assert.Error(t, err)
}

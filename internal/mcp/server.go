package mcp

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/common-creation/tokencounter/internal/tokens"
	"github.com/common-creation/tokencounter/internal/webui"
	"github.com/common-creation/tokencounter/internal/widget"
)

const (
	serverName    = "token-counter-mcp"
	serverVersion = "1.0.0"
)

// Estimator produces cost reports for token_counter calls.
type Estimator interface {
	Estimate(ctx context.Context, req tokens.Request) (tokens.CostReport, error)
}

// NewServer builds the MCP server exposing the token_counter tool and the
// widget template resource.
func NewServer(estimator Estimator, logger *log.Logger) *mcpsdk.Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.WithPrefix("mcp")

	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        widget.ToolName,
		Title:       "Token counter",
		Description: "Counts the tokens of a prompt and an optional response, and estimates the cost on several models.",
		Meta: mcpsdk.Meta{
			"openai/outputTemplate":          webui.WidgetURI,
			"openai/toolInvocation/invoking": "Counting tokens",
			"openai/toolInvocation/invoked":  "Tokens counted",
			"openai/widgetAccessible":        true,
		},
	}, tokenCounterHandler(estimator, logger))

	server.AddResource(&mcpsdk.Resource{
		URI:         webui.WidgetURI,
		Name:        "token-counter-widget",
		Title:       "Token counter widget",
		MIMEType:    webui.WidgetMIMEType,
		Description: widgetDescription,
	}, widgetResourceHandler(logger))

	return server
}

const widgetDescription = "Interactive widget that counts prompt and response tokens and estimates the cost per model."

func tokenCounterHandler(estimator Estimator, logger *log.Logger) mcpsdk.ToolHandlerFor[tokens.Request, tokens.CostReport] {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest, in tokens.Request) (*mcpsdk.CallToolResult, tokens.CostReport, error) {
		report, err := estimator.Estimate(ctx, in)
		if err != nil {
			logger.Error("token_counter failed", "error", err)
			return nil, tokens.CostReport{}, err
		}

		logger.Debug("token_counter", "model", report.DefaultModel, "total_tokens", report.TotalTokens)
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{Text: tokens.Summary(report)},
			},
		}, report, nil
	}
}

func widgetResourceHandler(logger *log.Logger) mcpsdk.ResourceHandler {
	return func(ctx context.Context, req *mcpsdk.ReadResourceRequest) (*mcpsdk.ReadResourceResult, error) {
		html, err := webui.ResourceHTML()
		if err != nil {
			logger.Warn("Serving widget error page", "error", err)
			return &mcpsdk.ReadResourceResult{
				Contents: []*mcpsdk.ResourceContents{{
					URI:      webui.WidgetURI,
					MIMEType: webui.WidgetMIMEType,
					Text:     webui.ErrorHTML(err),
				}},
			}, nil
		}

		return &mcpsdk.ReadResourceResult{
			Contents: []*mcpsdk.ResourceContents{{
				URI:      webui.WidgetURI,
				MIMEType: webui.WidgetMIMEType,
				Text:     html,
				Meta: mcpsdk.Meta{
					"openai/widgetPrefersBorder": true,
					"openai/widgetCSP": map[string]any{
						"connect_domains":  []string{},
						"resource_domains": []string{},
					},
					"openai/widgetDescription": widgetDescription,
				},
			}},
		}, nil
	}
}

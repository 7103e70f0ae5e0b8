package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/common-creation/tokencounter/internal/tokens"
	"github.com/common-creation/tokencounter/internal/widget"
)

// ErrNotConnected is returned by calls on a closed client
var ErrNotConnected = errors.New("mcp client not connected")

// Client is a connection to a token_counter server. It provides the
// widget's ToolCaller capability.
type Client struct {
	logger *log.Logger

	mu      sync.RWMutex
	session *mcpsdk.ClientSession
}

// Connect opens a client session over transport.
func Connect(ctx context.Context, transport mcpsdk.Transport, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "tokencounter-" + uuid.NewString()[:8],
		Version: serverVersion,
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MCP server: %w", err)
	}

	logger.Debug("Connected to MCP server", "session", session.ID())
	return &Client{logger: logger, session: session}, nil
}

// ConnectInProcess runs server and a client joined by in-memory transports.
func ConnectInProcess(ctx context.Context, server *mcpsdk.Server, logger *log.Logger) (*Client, error) {
	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	if _, err := server.Connect(ctx, serverTransport, nil); err != nil {
		return nil, fmt.Errorf("failed to start in-process MCP server: %w", err)
	}
	return Connect(ctx, clientTransport, logger)
}

// CallTool implements widget.ToolCaller. The structured content of the
// result is decoded as the tool output; a tool-level error is returned as an
// error.
func (c *Client) CallTool(ctx context.Context, name string, args widget.ToolArgs) (*widget.ToolResult, error) {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()
	if session == nil {
		return nil, ErrNotConnected
	}

	res, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", name, err)
	}
	if res.IsError {
		return nil, fmt.Errorf("call %s: %s", name, textOf(res))
	}

	output, err := decodeReport(res.StructuredContent)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", name, err)
	}
	return &widget.ToolResult{ToolOutput: output}, nil
}

// ReadWidget fetches the text of the resource at uri
func (c *Client) ReadWidget(ctx context.Context, uri string) (string, error) {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()
	if session == nil {
		return "", ErrNotConnected
	}

	res, err := session.ReadResource(ctx, &mcpsdk.ReadResourceParams{URI: uri})
	if err != nil {
		return "", fmt.Errorf("read %s: %w", uri, err)
	}
	if len(res.Contents) == 0 {
		return "", fmt.Errorf("read %s: empty resource", uri)
	}
	return res.Contents[0].Text, nil
}

// Close ends the session
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	return err
}

// decodeReport converts the loosely typed structured content of a tool
// result into a CostReport. Nil content yields a nil report.
func decodeReport(content any) (*tokens.CostReport, error) {
	if content == nil {
		return nil, nil
	}
	data, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encode structured content: %w", err)
	}
	var report tokens.CostReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode structured content: %w", err)
	}
	return &report, nil
}

func textOf(res *mcpsdk.CallToolResult) string {
	var parts []string
	for _, content := range res.Content {
		if text, ok := content.(*mcpsdk.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	if len(parts) == 0 {
		return "tool reported an error"
	}
	return strings.Join(parts, "; ")
}

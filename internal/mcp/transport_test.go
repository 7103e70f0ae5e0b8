package mcp

import (
	"errors"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientTransport(t *testing.T) {
	tests := []struct {
		name        string
		config      ServerConfig
		expectError bool
		expected    any
	}{
		{
			name: "stdio transport",
			config: ServerConfig{
				Type:    "stdio",
				Command: "tokencounter",
				Args:    []string{"serve", "--stdio"},
			},
			expected: &mcpsdk.CommandTransport{},
		},
		{
			name: "http transport",
			config: ServerConfig{
				Type: "http",
				URL:  "http://localhost:8000/mcp",
			},
			expected: &mcpsdk.StreamableClientTransport{},
		},
		{
			name:        "stdio without command",
			config:      ServerConfig{Type: "stdio"},
			expectError: true,
		},
		{
			name:        "http without url",
			config:      ServerConfig{Type: "http"},
			expectError: true,
		},
		{
			name:        "unsupported transport type",
			config:      ServerConfig{Type: "websocket"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport, err := NewClientTransport(tt.config)
			if tt.expectError {
				require.Error(t, err)
				var transportErr *TransportError
				assert.True(t, errors.As(err, &transportErr))
				assert.Nil(t, transport)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.expected, transport)
		})
	}
}

func TestStdioTransportEnvironment(t *testing.T) {
	transport, err := NewClientTransport(ServerConfig{
		Type:    "stdio",
		Command: "tokencounter",
		Env:     map[string]string{"TOKENCOUNTER_LOG_LEVEL": "debug"},
	})
	require.NoError(t, err)

	cmd := transport.(*mcpsdk.CommandTransport).Command
	assert.Contains(t, cmd.Env, "TOKENCOUNTER_LOG_LEVEL=debug")
}

func TestTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransportError("dial failed", "http", cause)

	assert.Equal(t, "dial failed (http): connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "unsupported transport type (sse)", NewTransportError("unsupported transport type", "sse", nil).Error())
}

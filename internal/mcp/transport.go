package mcp

import (
	"fmt"
	"os"
	"os/exec"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerConfig describes how to reach a token_counter server
type ServerConfig struct {
	Type    string            `json:"type,omitempty" yaml:"type,omitempty"` // stdio, http
	Command string            `json:"command,omitempty" yaml:"command,omitempty"`
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	URL     string            `json:"url,omitempty" yaml:"url,omitempty"` // for http
}

// NewClientTransport creates the client side transport for config
func NewClientTransport(config ServerConfig) (mcpsdk.Transport, error) {
	switch config.Type {
	case "stdio":
		if config.Command == "" {
			return nil, NewTransportError("command is required for stdio transport", "stdio", nil)
		}
		cmd := exec.Command(config.Command, config.Args...)
		if len(config.Env) > 0 {
			env := os.Environ()
			for key, value := range config.Env {
				env = append(env, fmt.Sprintf("%s=%s", key, value))
			}
			cmd.Env = env
		}
		return &mcpsdk.CommandTransport{Command: cmd}, nil

	case "http":
		if config.URL == "" {
			return nil, NewTransportError("url is required for http transport", "http", nil)
		}
		return &mcpsdk.StreamableClientTransport{Endpoint: config.URL}, nil

	default:
		return nil, NewTransportError("unsupported transport type", config.Type, nil)
	}
}

// TransportError represents transport-specific errors
type TransportError struct {
	Message   string
	Transport string
	Cause     error
}

// NewTransportError creates a new TransportError
func NewTransportError(message, transport string, cause error) *TransportError {
	return &TransportError{
		Message:   message,
		Transport: transport,
		Cause:     cause,
	}
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Cause != nil {
		return e.Message + " (" + e.Transport + "): " + e.Cause.Error()
	}
	return e.Message + " (" + e.Transport + ")"
}

// Unwrap returns the underlying cause error
func (e *TransportError) Unwrap() error {
	return e.Cause
}

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
	"strings"

	"github.com/common-creation/tokencounter/internal/mcp"
	"github.com/common-creation/tokencounter/internal/tokens"
)

// connectToolServer connects to the token_counter server at url, or starts
// command as a stdio server. With neither, an in-process server is used.
func connectToolServer(ctx context.Context, url, command string) (*mcp.Client, error) {
	logger := GetLogger()

	var serverCfg mcp.ServerConfig
	switch {
	case command != "":
		fields := strings.Fields(command)
		if len(fields) == 0 {
			return nil, fmt.Errorf("empty server command")
		}
		serverCfg = mcp.ServerConfig{Type: "stdio", Command: fields[0], Args: fields[1:]}
	case url != "":
		serverCfg = mcp.ServerConfig{Type: "http", URL: url}
	default:
		logger.Debug("Using in-process token counter server")
		return mcp.ConnectInProcess(ctx, mcp.NewServer(tokens.NewEstimator(nil), logger), logger)
	}

	transport, err := mcp.NewClientTransport(serverCfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("Connecting to token counter server", "type", serverCfg.Type, "url", serverCfg.URL, "command", serverCfg.Command)
	return mcp.Connect(ctx, transport, logger)
}

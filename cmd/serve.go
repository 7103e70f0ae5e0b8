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
	"errors"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/common-creation/tokencounter/internal/mcp"
	"github.com/common-creation/tokencounter/internal/models"
	"github.com/common-creation/tokencounter/internal/tokens"
	"github.com/common-creation/tokencounter/internal/webserver"
)

var (
	serveStdio   bool
	serveAddr    string
	serveMCPPath string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the token counter server",
	Long: `Run the token counter server.

By default an HTTP server is started that serves the widget page at /,
a JSON API at /api/token-counter and the streamable MCP endpoint at /mcp.
With --stdio the MCP server speaks over standard input and output instead,
for hosts that launch it as a subprocess.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveStdio, "stdio", false, "serve MCP over stdin/stdout")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveMCPPath, "mcp-path", "", "path of the MCP endpoint (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	logger := GetLogger()
	ctx := cmd.Context()

	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}
	if cmd.Flags().Changed("mcp-path") {
		cfg.Server.MCPPath = serveMCPPath
	}
	if err := cfg.Server.Validate(); err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}

	estimator := tokens.NewEstimator(nil)
	server := mcp.NewServer(estimator, logger)

	if serveStdio {
		logger.Info("Serving MCP over stdio")
		if err := server.Run(ctx, &mcpsdk.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("MCP server stopped: %w", err)
		}
		return nil
	}

	srv := webserver.New(webserver.Config{
		Addr:            cfg.Server.Addr,
		MCPPath:         cfg.Server.MCPPath,
		ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeout) * time.Second,
		DefaultModel:    models.Normalize(models.ID(cfg.Widget.DefaultModel)),
		Logger:          logger,
	}, estimator, server)

	return srv.ListenAndServe(ctx)
}

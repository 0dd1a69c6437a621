// Copyright 2025 ROS 2 MedKit Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ros2-medkit/sovd-mcp/internal/cli"
	"github.com/ros2-medkit/sovd-mcp/internal/config"
	"github.com/ros2-medkit/sovd-mcp/internal/log"
	"github.com/ros2-medkit/sovd-mcp/internal/mcp/server"
	"github.com/ros2-medkit/sovd-mcp/internal/metrics"
	"github.com/ros2-medkit/sovd-mcp/internal/sovd"
)

// NewCommand creates the serve command
func NewCommand() *cobra.Command {
	var (
		transport string
		listen    string
		logLevel  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the SOVD MCP server",
		Long: `Start the SOVD MCP (Model Context Protocol) server.

The server forwards tool calls to a ros2_medkit SOVD gateway over HTTP.
It runs on stdio by default, which is how AI assistants launch MCP
servers from their configuration.

Configuration example for Claude Code (~/.config/claude/config.json):
  {
    "mcpServers": {
      "ros2-medkit": {
        "command": "sovd-mcp",
        "args": ["serve"],
        "env": {
          "ROS2_MEDKIT_BASE_URL": "http://localhost:8080/api/v1"
        }
      }
    }
  }

With --transport http the server instead listens on --listen and serves
the streamable HTTP transport at /mcp, plus /healthz and /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(transport, listen, logLevel)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport to serve on (stdio, http)")
	cmd.Flags().StringVar(&listen, "listen", server.DefaultListenAddr, "Listen address for the http transport")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Logging verbosity (debug, info, warn, error)")

	return cmd
}

func runServe(transport, listen, logLevel string) error {
	logCfg := log.FromEnv()
	if logLevel != "" {
		logCfg.Level = logLevel
	}
	logger := log.New(logCfg)

	settings, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	logger.Info("gateway configuration loaded", "settings", settings.Redacted())

	m := metrics.New()

	client, err := sovd.NewClient(settings,
		sovd.WithLogger(logger),
		sovd.WithMetrics(m),
	)
	if err != nil {
		return fmt.Errorf("creating gateway client: %w", err)
	}

	versionStr, _, _ := cli.GetVersion()
	srv, err := server.NewServer(server.ServerConfig{
		Name:    "sovd-mcp",
		Version: versionStr,
		Client:  client,
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("received shutdown signal, shutting down gracefully")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during shutdown", "error", err)
		}

		cancel()
	}()

	switch transport {
	case "stdio":
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
	case "http":
		if err := srv.RunHTTP(ctx, listen); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
	default:
		return fmt.Errorf("unknown transport %q (expected stdio or http)", transport)
	}

	return nil
}

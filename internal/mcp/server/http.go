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

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
)

// DefaultListenAddr is where the HTTP transport binds when no address is
// given. Loopback only: the HTTP transport carries no authentication of
// its own.
const DefaultListenAddr = "127.0.0.1:8765"

// RunHTTP serves the MCP server over the streamable HTTP transport at
// /mcp, alongside /healthz and (when metrics are configured) /metrics.
// It blocks until ctx is cancelled, then shuts down gracefully.
func (s *Server) RunHTTP(ctx context.Context, listenAddr string) error {
	if listenAddr == "" {
		listenAddr = DefaultListenAddr
	}

	for _, ts := range s.toolsets {
		if err := ts.Startup(ctx); err != nil {
			return fmt.Errorf("toolset %q startup: %w", ts.Name(), err)
		}
	}

	streamable := server.NewStreamableHTTPServer(s.mcpServer,
		server.WithEndpointPath("/mcp"),
	)

	mux := http.NewServeMux()
	mux.Handle("/mcp", streamable)
	mux.HandleFunc("/healthz", s.handleHealthz)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}

	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting SOVD MCP server",
			slog.String("transport", "http"),
			slog.String("listen", listenAddr),
			slog.String("version", s.version))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	return nil
}

// handleHealthz reports adapter liveness. It does not probe the gateway;
// a dead gateway surfaces as tool errors, not as adapter unhealth.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":   "ok",
		"service":  s.name,
		"version":  s.version,
		"sovd_url": s.client.BaseURL(),
	})
}

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

// Package server implements an MCP server that exposes the SOVD
// diagnostic gateway as tools.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ros2-medkit/sovd-mcp/internal/metrics"
	"github.com/ros2-medkit/sovd-mcp/internal/sovd"
)

// Server wraps the MCP server and provides SOVD diagnostic tools.
type Server struct {
	mcpServer   *server.MCPServer
	name        string
	version     string
	client      *sovd.Client
	rateLimiter *RateLimiter
	logger      *slog.Logger
	metrics     *metrics.Metrics
	toolsets    []Toolset
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// Name is the server name (default: "sovd-mcp").
	Name string

	// Version is the adapter version.
	Version string

	// Client performs the gateway calls. Required.
	Client *sovd.Client

	// Logger defaults to slog.Default. Must write to stderr when the
	// stdio transport is used.
	Logger *slog.Logger

	// Metrics optionally instruments tool calls.
	Metrics *metrics.Metrics

	// Toolsets are optional plugin tool providers registered alongside
	// the builtin sovd_* tools.
	Toolsets []Toolset
}

// NewServer creates a new MCP server instance with all SOVD tools
// registered.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("sovd client is required")
	}
	if config.Name == "" {
		config.Name = "sovd-mcp"
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(config.Name, config.Version)

	// 30 mutations/min, 300 calls/min
	rateLimiter := NewRateLimiter(30, 300)

	s := &Server{
		mcpServer:   mcpServer,
		name:        config.Name,
		version:     config.Version,
		client:      config.Client,
		rateLimiter: rateLimiter,
		logger:      config.Logger,
		metrics:     config.Metrics,
		toolsets:    config.Toolsets,
	}

	s.registerDiscoveryTools()
	s.registerFaultTools()
	s.registerDataTools()
	s.registerOperationTools()
	s.registerConfigurationTools()
	s.registerBulkDataTools()

	for _, ts := range config.Toolsets {
		if err := s.registerToolset(ts); err != nil {
			return nil, fmt.Errorf("registering toolset %q: %w", ts.Name(), err)
		}
	}

	return s, nil
}

// Run starts the MCP server using stdio transport. It blocks until the
// client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.serveStdio(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serveStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("starting SOVD MCP server", slog.String("version", s.version))

	for _, ts := range s.toolsets {
		if err := ts.Startup(ctx); err != nil {
			return fmt.Errorf("toolset %q startup: %w", ts.Name(), err)
		}
	}

	stdio := server.NewStdioServer(s.mcpServer)
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// Shutdown stops toolsets. The stdio transport itself stops when the
// context given to Run is cancelled or stdin closes.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down SOVD MCP server")
	for _, ts := range s.toolsets {
		if err := ts.Shutdown(ctx); err != nil {
			s.logger.Warn("toolset shutdown failed", "toolset", ts.Name(), "error", err)
		}
	}
	return nil
}

// countTool records a tool invocation outcome.
func (s *Server) countTool(tool, outcome string) {
	if s.metrics != nil {
		s.metrics.ToolCalls.WithLabelValues(tool, outcome).Inc()
	}
}

// fail converts an error into a tool error result, logging and counting
// it. Validation failures never made a network call; gateway errors pass
// the gateway's status and body through to the model verbatim.
func (s *Server) fail(tool string, err error) *mcp.CallToolResult {
	var ve *sovd.ValidationError
	var te *sovd.TimeoutError
	var ge *sovd.GatewayError

	switch {
	case errors.As(err, &ve):
		s.countTool(tool, "validation_error")
		return errorResponse(ve.Error())
	case errors.As(err, &te):
		s.countTool(tool, "timeout")
		return errorResponse(te.Error())
	case errors.As(err, &ge):
		if ge.Unreachable {
			s.countTool(tool, "transport_error")
		} else {
			s.countTool(tool, "gateway_error")
		}
		s.logger.Warn("tool failed", "tool", tool, "error", err)
		return errorResponse(ge.Error())
	default:
		s.countTool(tool, "error")
		s.logger.Error("tool failed", "tool", tool, "error", err)
		return errorResponse(err.Error())
	}
}

// entityArgs extracts and validates the entity_type/entity_id pair most
// tools share. No gateway call happens if validation fails.
func entityArgs(request mcp.CallToolRequest, fallback sovd.EntityType) (sovd.EntityType, string, error) {
	rawType := ""
	if raw, present := request.GetArguments()["entity_type"]; present {
		s, ok := raw.(string)
		if !ok {
			return "", "", &sovd.ValidationError{Field: "entity_type", Msg: "must be a string"}
		}
		rawType = s
	}
	entityType, err := sovd.ParseEntityType(rawType, fallback)
	if err != nil {
		return "", "", err
	}
	entityID, err := request.RequireString("entity_id")
	if err != nil {
		return "", "", &sovd.ValidationError{Field: "entity_id", Msg: "missing or invalid"}
	}
	if err := sovd.ValidateID("entity_id", entityID); err != nil {
		return "", "", err
	}
	return entityType, entityID, nil
}

// requireToken extracts a required string argument and checks it is a
// path-safe identifier.
func requireToken(request mcp.CallToolRequest, field string) (string, error) {
	value, err := request.RequireString(field)
	if err != nil {
		return "", &sovd.ValidationError{Field: field, Msg: "missing or invalid"}
	}
	if err := sovd.ValidateID(field, value); err != nil {
		return "", err
	}
	return value, nil
}

// Helper function to create error response
func errorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// Helper function to create success response
func textResponse(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// jsonResponse renders data as indented JSON text.
func jsonResponse(data any) *mcp.CallToolResult {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errorResponse(fmt.Sprintf("Failed to encode result: %v", err))
	}
	return textResponse(string(encoded))
}

// rawResponse re-indents a raw gateway document for readability; invalid
// JSON passes through untouched.
func rawResponse(raw json.RawMessage) *mcp.CallToolResult {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return textResponse(string(raw))
	}
	return jsonResponse(decoded)
}

// entityTypeProperty is the shared schema fragment for entity_type
// arguments.
func entityTypeProperty(fallback sovd.EntityType) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": fmt.Sprintf("Entity type: 'components', 'apps', 'areas', or 'functions' (default: '%s')", fallback),
		"default":     string(fallback),
	}
}

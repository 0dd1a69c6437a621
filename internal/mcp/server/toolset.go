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
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// Toolset extends the server with additional tools beyond the builtin
// sovd_* set. Implementations are registered via ServerConfig.Toolsets
// and participate in server lifecycle.
type Toolset interface {
	// Name identifies the toolset in logs and errors.
	Name() string

	// Tools returns the tool definitions this toolset provides. Names
	// must not collide with builtin sovd_* tools.
	Tools() []mcp.Tool

	// CallTool handles an invocation of one of the toolset's tools.
	CallTool(ctx context.Context, name string, arguments map[string]any) (*mcp.CallToolResult, error)

	// Startup is called once before the server starts serving.
	Startup(ctx context.Context) error

	// Shutdown is called during server shutdown.
	Shutdown(ctx context.Context) error
}

// registerToolset wires every tool of a toolset into the MCP server,
// routing calls through the shared rate limiter and metrics.
func (s *Server) registerToolset(ts Toolset) error {
	for _, tool := range ts.Tools() {
		if tool.Name == "" {
			return fmt.Errorf("toolset tool with empty name")
		}

		name := tool.Name
		s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if !s.rateLimiter.AllowCall() {
				return errorResponse("Rate limit exceeded. Please try again later."), nil
			}

			result, err := ts.CallTool(ctx, name, request.GetArguments())
			if err != nil {
				return s.fail(name, err), nil
			}
			s.countTool(name, "ok")
			return result, nil
		})
	}
	return nil
}

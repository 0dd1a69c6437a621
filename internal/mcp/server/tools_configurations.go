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

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ros2-medkit/sovd-mcp/internal/sovd"
)

// registerConfigurationTools registers the parameter read, write and
// reset tools.
func (s *Server) registerConfigurationTools() {
	// Tool: sovd_list_configurations
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_list_configurations",
		Description: "List all configurations (ROS 2 parameters) for an entity. Works with components, apps, areas, and functions.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"entity_type": entityTypeProperty(sovd.EntityComponents),
			},
			Required: []string{"entity_id"},
		},
	}, s.handleListConfigurations)

	// Tool: sovd_get_configuration
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_get_configuration",
		Description: "Get a specific configuration (parameter) value. Use sovd_list_configurations first to discover available parameters.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"param_name": map[string]interface{}{
					"type":        "string",
					"description": "The parameter name (use sovd_list_configurations to discover available parameters)",
				},
				"entity_type": entityTypeProperty(sovd.EntityComponents),
			},
			Required: []string{"entity_id", "param_name"},
		},
	}, s.handleGetConfiguration)

	// Tool: sovd_set_configuration
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_set_configuration",
		Description: "Set a configuration (parameter) value. Use sovd_list_configurations first to discover available parameters and their current values.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"param_name": map[string]interface{}{
					"type":        "string",
					"description": "The parameter name",
				},
				"value": map[string]interface{}{
					"description": "The new parameter value (can be string, number, boolean, or array)",
				},
				"entity_type": entityTypeProperty(sovd.EntityComponents),
			},
			Required: []string{"entity_id", "param_name", "value"},
		},
	}, s.handleSetConfiguration)

	// Tool: sovd_delete_configuration
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_delete_configuration",
		Description: "Reset a configuration (parameter) to its default value. Use sovd_list_configurations first to see current parameter values.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"param_name": map[string]interface{}{
					"type":        "string",
					"description": "The parameter name to reset",
				},
				"entity_type": entityTypeProperty(sovd.EntityComponents),
			},
			Required: []string{"entity_id", "param_name"},
		},
	}, s.handleDeleteConfiguration)

	// Tool: sovd_delete_all_configurations
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_delete_all_configurations",
		Description: "Reset all configurations (parameters) for an entity to their default values. WARNING: This affects all parameters - use with caution.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"entity_type": entityTypeProperty(sovd.EntityComponents),
			},
			Required: []string{"entity_id"},
		},
	}, s.handleDeleteAllConfigurations)
}

func (s *Server) handleListConfigurations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_list_configurations", err), nil
	}

	configurations, err := s.client.ListConfigurations(ctx, entityType, entityID)
	if err != nil {
		return s.fail("sovd_list_configurations", err), nil
	}
	s.countTool("sovd_list_configurations", "ok")
	return jsonResponse(configurations), nil
}

func (s *Server) handleGetConfiguration(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_get_configuration", err), nil
	}
	param, err := requireToken(request, "param_name")
	if err != nil {
		return s.fail("sovd_get_configuration", err), nil
	}

	raw, err := s.client.GetConfiguration(ctx, entityType, entityID, param)
	if err != nil {
		return s.fail("sovd_get_configuration", err), nil
	}
	s.countTool("sovd_get_configuration", "ok")
	return rawResponse(raw), nil
}

func (s *Server) handleSetConfiguration(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}
	if !s.rateLimiter.AllowMutation() {
		return errorResponse("Rate limit exceeded for state-changing operations. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_set_configuration", err), nil
	}
	param, err := requireToken(request, "param_name")
	if err != nil {
		return s.fail("sovd_set_configuration", err), nil
	}

	args := request.GetArguments()
	value, ok := args["value"]
	if !ok {
		return s.fail("sovd_set_configuration", &sovd.ValidationError{Field: "value", Msg: "is required"}), nil
	}

	raw, err := s.client.SetConfiguration(ctx, entityType, entityID, param, value)
	if err != nil {
		return s.fail("sovd_set_configuration", err), nil
	}
	s.countTool("sovd_set_configuration", "ok")
	return rawResponse(raw), nil
}

func (s *Server) handleDeleteConfiguration(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}
	if !s.rateLimiter.AllowMutation() {
		return errorResponse("Rate limit exceeded for state-changing operations. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_delete_configuration", err), nil
	}
	param, err := requireToken(request, "param_name")
	if err != nil {
		return s.fail("sovd_delete_configuration", err), nil
	}

	raw, err := s.client.DeleteConfiguration(ctx, entityType, entityID, param)
	if err != nil {
		return s.fail("sovd_delete_configuration", err), nil
	}
	s.countTool("sovd_delete_configuration", "ok")
	return rawResponse(raw), nil
}

func (s *Server) handleDeleteAllConfigurations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}
	if !s.rateLimiter.AllowMutation() {
		return errorResponse("Rate limit exceeded for state-changing operations. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_delete_all_configurations", err), nil
	}

	raw, err := s.client.DeleteAllConfigurations(ctx, entityType, entityID)
	if err != nil {
		return s.fail("sovd_delete_all_configurations", err), nil
	}
	s.countTool("sovd_delete_all_configurations", "ok")
	return rawResponse(raw), nil
}

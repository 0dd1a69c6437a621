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
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ros2-medkit/sovd-mcp/internal/sovd"
)

// registerOperationTools registers operation discovery and the execution
// lifecycle tools, including the run-to-completion helper.
func (s *Server) registerOperationTools() {
	// Tool: sovd_list_operations
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_list_operations",
		Description: "List all operations (ROS 2 services and actions) available for an entity. Works with components, apps, areas, and functions.",
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
	}, s.handleListOperations)

	// Tool: sovd_get_operation
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_get_operation",
		Description: "Get details of a specific operation including its schema and capabilities.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"operation_name": map[string]interface{}{
					"type":        "string",
					"description": "The operation name",
				},
				"entity_type": entityTypeProperty(sovd.EntityComponents),
			},
			Required: []string{"entity_id", "operation_name"},
		},
	}, s.handleGetOperation)

	// Tool: sovd_create_execution
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_create_execution",
		Description: "Start an execution for an operation (service call or action goal). For services, returns result directly. For actions, returns execution_id to track progress.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"operation_name": map[string]interface{}{
					"type":        "string",
					"description": "The operation name (service or action)",
				},
				"request_data": map[string]interface{}{
					"type":        "object",
					"description": "Optional request data (goal for actions, request for services)",
				},
				"entity_type": entityTypeProperty(sovd.EntityComponents),
			},
			Required: []string{"entity_id", "operation_name"},
		},
	}, s.handleCreateExecution)

	// Tool: sovd_run_operation
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_run_operation",
		Description: "Run an operation to completion: creates an execution and polls it until it succeeds, fails, or is cancelled. On timeout the execution is cancelled automatically. Prefer this over sovd_create_execution when you want the final result in one call.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"operation_name": map[string]interface{}{
					"type":        "string",
					"description": "The operation name (service or action)",
				},
				"request_data": map[string]interface{}{
					"type":        "object",
					"description": "Optional request data (goal for actions, request for services)",
				},
				"poll_interval_s": map[string]interface{}{
					"type":        "number",
					"description": "Seconds between status polls (default: 1, minimum: 0.1)",
					"default":     1,
				},
				"max_wait_s": map[string]interface{}{
					"type":        "number",
					"description": "Maximum seconds to wait for completion before cancelling (default: 60, maximum: 600)",
					"default":     60,
				},
				"entity_type": entityTypeProperty(sovd.EntityComponents),
			},
			Required: []string{"entity_id", "operation_name"},
		},
	}, s.handleRunOperation)

	// Tool: sovd_list_executions
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_list_executions",
		Description: "List all executions for an operation. Use to see execution history and find execution IDs.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"operation_name": map[string]interface{}{
					"type":        "string",
					"description": "The operation name",
				},
				"entity_type": entityTypeProperty(sovd.EntityComponents),
			},
			Required: []string{"entity_id", "operation_name"},
		},
	}, s.handleListExecutions)

	// Tool: sovd_get_execution
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_get_execution",
		Description: "Get execution status and feedback for a specific execution. Use after sovd_create_execution to track action progress.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"operation_name": map[string]interface{}{
					"type":        "string",
					"description": "The operation name",
				},
				"execution_id": map[string]interface{}{
					"type":        "string",
					"description": "The execution identifier",
				},
				"entity_type": entityTypeProperty(sovd.EntityComponents),
			},
			Required: []string{"entity_id", "operation_name", "execution_id"},
		},
	}, s.handleGetExecution)

	// Tool: sovd_update_execution
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_update_execution",
		Description: "Update an execution (e.g., stop capability). Use to control running actions.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"operation_name": map[string]interface{}{
					"type":        "string",
					"description": "The operation name",
				},
				"execution_id": map[string]interface{}{
					"type":        "string",
					"description": "The execution identifier",
				},
				"update_data": map[string]interface{}{
					"type":        "object",
					"description": "Update data (e.g., {'stop': true} to stop execution)",
				},
				"entity_type": entityTypeProperty(sovd.EntityComponents),
			},
			Required: []string{"entity_id", "operation_name", "execution_id", "update_data"},
		},
	}, s.handleUpdateExecution)

	// Tool: sovd_cancel_execution
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_cancel_execution",
		Description: "Cancel a specific execution by its ID. Use sovd_list_executions to find the execution_id.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"operation_name": map[string]interface{}{
					"type":        "string",
					"description": "The operation name",
				},
				"execution_id": map[string]interface{}{
					"type":        "string",
					"description": "The execution identifier to cancel",
				},
				"entity_type": entityTypeProperty(sovd.EntityComponents),
			},
			Required: []string{"entity_id", "operation_name", "execution_id"},
		},
	}, s.handleCancelExecution)
}

func (s *Server) handleListOperations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_list_operations", err), nil
	}

	operations, err := s.client.ListOperations(ctx, entityType, entityID)
	if err != nil {
		return s.fail("sovd_list_operations", err), nil
	}
	s.countTool("sovd_list_operations", "ok")
	return jsonResponse(operations), nil
}

func (s *Server) handleGetOperation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_get_operation", err), nil
	}
	operation, err := requireToken(request, "operation_name")
	if err != nil {
		return s.fail("sovd_get_operation", err), nil
	}

	raw, err := s.client.GetOperation(ctx, entityType, entityID, operation)
	if err != nil {
		return s.fail("sovd_get_operation", err), nil
	}
	s.countTool("sovd_get_operation", "ok")
	return rawResponse(raw), nil
}

func (s *Server) handleCreateExecution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}
	if !s.rateLimiter.AllowMutation() {
		return errorResponse("Rate limit exceeded for state-changing operations. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_create_execution", err), nil
	}
	operation, err := requireToken(request, "operation_name")
	if err != nil {
		return s.fail("sovd_create_execution", err), nil
	}
	requestData := objectArg(request, "request_data")

	raw, err := s.client.CreateExecution(ctx, entityType, entityID, operation, requestData)
	if err != nil {
		return s.fail("sovd_create_execution", err), nil
	}
	s.countTool("sovd_create_execution", "ok")
	return rawResponse(raw), nil
}

func (s *Server) handleRunOperation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}
	if !s.rateLimiter.AllowMutation() {
		return errorResponse("Rate limit exceeded for state-changing operations. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_run_operation", err), nil
	}
	operation, err := requireToken(request, "operation_name")
	if err != nil {
		return s.fail("sovd_run_operation", err), nil
	}
	requestData := objectArg(request, "request_data")

	interval := durationArg(request, "poll_interval_s", sovd.DefaultPollInterval)
	maxWait := durationArg(request, "max_wait_s", sovd.DefaultMaxWait)

	result, err := s.client.RunOperation(ctx, entityType, entityID, operation, requestData, interval, maxWait)
	if err != nil {
		return s.fail("sovd_run_operation", err), nil
	}
	s.countTool("sovd_run_operation", "ok")
	return jsonResponse(map[string]any{
		"execution_id": result.ExecutionID,
		"status":       result.Status,
		"polls":        result.Polls,
		"result":       result.Final,
	}), nil
}

func (s *Server) handleListExecutions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_list_executions", err), nil
	}
	operation, err := requireToken(request, "operation_name")
	if err != nil {
		return s.fail("sovd_list_executions", err), nil
	}

	executions, err := s.client.ListExecutions(ctx, entityType, entityID, operation)
	if err != nil {
		return s.fail("sovd_list_executions", err), nil
	}
	s.countTool("sovd_list_executions", "ok")
	return jsonResponse(executions), nil
}

func (s *Server) handleGetExecution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_get_execution", err), nil
	}
	operation, err := requireToken(request, "operation_name")
	if err != nil {
		return s.fail("sovd_get_execution", err), nil
	}
	executionID, err := requireToken(request, "execution_id")
	if err != nil {
		return s.fail("sovd_get_execution", err), nil
	}

	raw, err := s.client.GetExecution(ctx, entityType, entityID, operation, executionID)
	if err != nil {
		return s.fail("sovd_get_execution", err), nil
	}
	s.countTool("sovd_get_execution", "ok")
	return rawResponse(raw), nil
}

func (s *Server) handleUpdateExecution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}
	if !s.rateLimiter.AllowMutation() {
		return errorResponse("Rate limit exceeded for state-changing operations. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_update_execution", err), nil
	}
	operation, err := requireToken(request, "operation_name")
	if err != nil {
		return s.fail("sovd_update_execution", err), nil
	}
	executionID, err := requireToken(request, "execution_id")
	if err != nil {
		return s.fail("sovd_update_execution", err), nil
	}

	updateData := objectArg(request, "update_data")
	if updateData == nil {
		return s.fail("sovd_update_execution", &sovd.ValidationError{Field: "update_data", Msg: "must be a JSON object"}), nil
	}

	raw, err := s.client.UpdateExecution(ctx, entityType, entityID, operation, executionID, updateData)
	if err != nil {
		return s.fail("sovd_update_execution", err), nil
	}
	s.countTool("sovd_update_execution", "ok")
	return rawResponse(raw), nil
}

func (s *Server) handleCancelExecution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}
	if !s.rateLimiter.AllowMutation() {
		return errorResponse("Rate limit exceeded for state-changing operations. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_cancel_execution", err), nil
	}
	operation, err := requireToken(request, "operation_name")
	if err != nil {
		return s.fail("sovd_cancel_execution", err), nil
	}
	executionID, err := requireToken(request, "execution_id")
	if err != nil {
		return s.fail("sovd_cancel_execution", err), nil
	}

	raw, err := s.client.CancelExecution(ctx, entityType, entityID, operation, executionID)
	if err != nil {
		return s.fail("sovd_cancel_execution", err), nil
	}
	s.countTool("sovd_cancel_execution", "ok")
	return rawResponse(raw), nil
}

// objectArg extracts an optional JSON object argument.
func objectArg(request mcp.CallToolRequest, field string) map[string]any {
	if args := request.GetArguments(); args != nil {
		if obj, ok := args[field].(map[string]interface{}); ok {
			return obj
		}
	}
	return nil
}

// durationArg reads a float seconds argument into a duration.
func durationArg(request mcp.CallToolRequest, field string, fallback time.Duration) time.Duration {
	args := request.GetArguments()
	if args == nil {
		return fallback
	}
	seconds, ok := args[field].(float64)
	if !ok || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds * float64(time.Second))
}

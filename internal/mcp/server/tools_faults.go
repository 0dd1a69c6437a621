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

// registerFaultTools registers fault listing, inspection, clearing and
// snapshot tools.
func (s *Server) registerFaultTools() {
	// Tool: sovd_faults_list
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_faults_list",
		Description: "List all faults for a specific entity. IMPORTANT: First use sovd_components_list or sovd_area_components to discover valid entity IDs.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier (use sovd_entities_list to discover valid IDs)",
				},
				"entity_type": entityTypeProperty(sovd.EntityComponents),
			},
			Required: []string{"entity_id"},
		},
	}, s.handleFaultsList)

	// Tool: sovd_faults_get
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_faults_get",
		Description: "Get a specific fault by its code from an entity. First use sovd_faults_list to discover available faults.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"fault_id": map[string]interface{}{
					"type":        "string",
					"description": "The fault identifier (fault code)",
				},
				"entity_type": entityTypeProperty(sovd.EntityComponents),
			},
			Required: []string{"entity_id", "fault_id"},
		},
	}, s.handleFaultsGet)

	// Tool: sovd_faults_clear
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_faults_clear",
		Description: "Clear (acknowledge/dismiss) a fault from an entity. Use sovd_faults_list first to see active faults.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"fault_id": map[string]interface{}{
					"type":        "string",
					"description": "The fault identifier to clear",
				},
				"entity_type": entityTypeProperty(sovd.EntityComponents),
			},
			Required: []string{"entity_id", "fault_id"},
		},
	}, s.handleFaultsClear)

	// Tool: sovd_all_faults_list
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_all_faults_list",
		Description: "List all faults across the entire system. Returns faults from all components.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleAllFaultsList)

	// Tool: sovd_clear_all_faults
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_clear_all_faults",
		Description: "Clear all faults for a specific entity. WARNING: This clears ALL active faults for the entity.",
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
	}, s.handleClearAllFaults)

	// Tool: sovd_fault_snapshots
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_fault_snapshots",
		Description: "Get diagnostic snapshots for a specific fault. Contains data captured at fault occurrence time.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"fault_code": map[string]interface{}{
					"type":        "string",
					"description": "The fault code",
				},
				"entity_type": entityTypeProperty(sovd.EntityComponents),
			},
			Required: []string{"entity_id", "fault_code"},
		},
	}, s.handleFaultSnapshots)

	// Tool: sovd_system_fault_snapshots
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_system_fault_snapshots",
		Description: "Get system-wide diagnostic snapshots for a fault code.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"fault_code": map[string]interface{}{
					"type":        "string",
					"description": "The fault code",
				},
			},
			Required: []string{"fault_code"},
		},
	}, s.handleSystemFaultSnapshots)
}

func (s *Server) handleFaultsList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_faults_list", err), nil
	}

	faults, err := s.client.ListFaults(ctx, entityType, entityID)
	if err != nil {
		return s.fail("sovd_faults_list", err), nil
	}
	s.countTool("sovd_faults_list", "ok")
	return textResponse(formatFaultList(faults)), nil
}

func (s *Server) handleFaultsGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_faults_get", err), nil
	}
	faultID, err := requireToken(request, "fault_id")
	if err != nil {
		return s.fail("sovd_faults_get", err), nil
	}

	raw, err := s.client.GetFault(ctx, entityType, entityID, faultID)
	if err != nil {
		return s.fail("sovd_faults_get", err), nil
	}
	s.countTool("sovd_faults_get", "ok")
	return textResponse(formatFaultResponse(raw)), nil
}

func (s *Server) handleFaultsClear(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}
	if !s.rateLimiter.AllowMutation() {
		return errorResponse("Rate limit exceeded for state-changing operations. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_faults_clear", err), nil
	}
	faultID, err := requireToken(request, "fault_id")
	if err != nil {
		return s.fail("sovd_faults_clear", err), nil
	}

	raw, err := s.client.ClearFault(ctx, entityType, entityID, faultID)
	if err != nil {
		return s.fail("sovd_faults_clear", err), nil
	}
	s.countTool("sovd_faults_clear", "ok")
	return rawResponse(raw), nil
}

func (s *Server) handleAllFaultsList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	faults, err := s.client.ListAllFaults(ctx)
	if err != nil {
		return s.fail("sovd_all_faults_list", err), nil
	}
	s.countTool("sovd_all_faults_list", "ok")
	return textResponse(formatFaultList(faults)), nil
}

func (s *Server) handleClearAllFaults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}
	if !s.rateLimiter.AllowMutation() {
		return errorResponse("Rate limit exceeded for state-changing operations. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_clear_all_faults", err), nil
	}

	raw, err := s.client.ClearAllFaults(ctx, entityType, entityID)
	if err != nil {
		return s.fail("sovd_clear_all_faults", err), nil
	}
	s.countTool("sovd_clear_all_faults", "ok")
	return rawResponse(raw), nil
}

func (s *Server) handleFaultSnapshots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_fault_snapshots", err), nil
	}
	faultCode, err := requireToken(request, "fault_code")
	if err != nil {
		return s.fail("sovd_fault_snapshots", err), nil
	}

	raw, err := s.client.GetFaultSnapshots(ctx, entityType, entityID, faultCode)
	if err != nil {
		return s.fail("sovd_fault_snapshots", err), nil
	}
	s.countTool("sovd_fault_snapshots", "ok")
	return textResponse(formatSnapshotsResponse(raw)), nil
}

func (s *Server) handleSystemFaultSnapshots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	faultCode, err := requireToken(request, "fault_code")
	if err != nil {
		return s.fail("sovd_system_fault_snapshots", err), nil
	}

	raw, err := s.client.GetSystemFaultSnapshots(ctx, faultCode)
	if err != nil {
		return s.fail("sovd_system_fault_snapshots", err), nil
	}
	s.countTool("sovd_system_fault_snapshots", "ok")
	return textResponse(formatSnapshotsResponse(raw)), nil
}

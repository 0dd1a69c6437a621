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

// registerDiscoveryTools registers version, health, entity listing and
// relationship tools.
func (s *Server) registerDiscoveryTools() {
	// Tool: sovd_version
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_version",
		Description: "Get the SOVD API version information from the ros2_medkit gateway. Use this to verify the gateway is running.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleVersion)

	// Tool: sovd_health
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_health",
		Description: "Get health status of the SOVD gateway. Returns service status.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleHealth)

	// Tool: sovd_entities_list
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_entities_list",
		Description: "List all SOVD entities (areas, components, apps, and functions combined) with optional substring filtering. This is the primary discovery tool - use it first to explore what's available in the system before querying specific components.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"filter": map[string]interface{}{
					"type":        "string",
					"description": "Optional substring filter for entity id or name",
				},
			},
		},
	}, s.handleEntitiesList)

	// Tool: sovd_entities_get
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_entities_get",
		Description: "Get detailed information about a specific SOVD entity by its identifier, including live data if available. Use sovd_entities_list or sovd_components_list first to discover valid entity IDs.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier to retrieve",
				},
			},
			Required: []string{"entity_id"},
		},
	}, s.handleEntitiesGet)

	// Tool: sovd_areas_list
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_areas_list",
		Description: "List all SOVD areas (ROS 2 namespaces). Areas are top-level groupings like 'perception', 'control', 'diagnostics'. Use this to discover available areas before listing their components with sovd_area_components.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.listHandler("sovd_areas_list", func(ctx context.Context) ([]map[string]any, error) {
		return s.client.ListAreas(ctx)
	}))

	// Tool: sovd_area_get
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_area_get",
		Description: "Get detailed information about a specific area including its capabilities.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"area_id": map[string]interface{}{
					"type":        "string",
					"description": "The area identifier",
				},
			},
			Required: []string{"area_id"},
		},
	}, s.idGetHandler("sovd_area_get", "area_id", func(ctx context.Context, id string) (map[string]any, error) {
		return s.client.GetArea(ctx, id)
	}))

	// Tool: sovd_components_list
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_components_list",
		Description: "List all SOVD components (ROS 2 nodes) across all areas. Returns component IDs that can be used with other tools like sovd_faults_list, sovd_entity_data, etc.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.listHandler("sovd_components_list", func(ctx context.Context) ([]map[string]any, error) {
		return s.client.ListComponents(ctx)
	}))

	// Tool: sovd_component_get
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_component_get",
		Description: "Get detailed information about a specific component including its capabilities.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"component_id": map[string]interface{}{
					"type":        "string",
					"description": "The component identifier",
				},
			},
			Required: []string{"component_id"},
		},
	}, s.idGetHandler("sovd_component_get", "component_id", func(ctx context.Context, id string) (map[string]any, error) {
		return s.client.GetComponent(ctx, id)
	}))

	// Tool: sovd_apps_list
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_apps_list",
		Description: "List all SOVD apps (ROS 2 nodes). Apps are individual ROS 2 nodes that can have operations, data, configurations, and faults.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.listHandler("sovd_apps_list", func(ctx context.Context) ([]map[string]any, error) {
		return s.client.ListApps(ctx)
	}))

	// Tool: sovd_apps_get
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_apps_get",
		Description: "Get detailed information about a specific app by its identifier.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"app_id": map[string]interface{}{
					"type":        "string",
					"description": "The app identifier",
				},
			},
			Required: []string{"app_id"},
		},
	}, s.idGetHandler("sovd_apps_get", "app_id", func(ctx context.Context, id string) (map[string]any, error) {
		return s.client.GetApp(ctx, id)
	}))

	// Tool: sovd_apps_dependencies
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_apps_dependencies",
		Description: "List dependencies for an app (other apps/components it depends on).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"app_id": map[string]interface{}{
					"type":        "string",
					"description": "The app identifier",
				},
			},
			Required: []string{"app_id"},
		},
	}, s.idListHandler("sovd_apps_dependencies", "app_id", func(ctx context.Context, id string) ([]map[string]any, error) {
		return s.client.ListAppDependencies(ctx, id)
	}))

	// Tool: sovd_functions_list
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_functions_list",
		Description: "List all SOVD functions. Functions are capability groupings that may be hosted by multiple apps.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.listHandler("sovd_functions_list", func(ctx context.Context) ([]map[string]any, error) {
		return s.client.ListFunctions(ctx)
	}))

	// Tool: sovd_functions_get
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_functions_get",
		Description: "Get detailed information about a specific function.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"function_id": map[string]interface{}{
					"type":        "string",
					"description": "The function identifier",
				},
			},
			Required: []string{"function_id"},
		},
	}, s.idGetHandler("sovd_functions_get", "function_id", func(ctx context.Context, id string) (map[string]any, error) {
		return s.client.GetFunction(ctx, id)
	}))

	// Tool: sovd_functions_hosts
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_functions_hosts",
		Description: "List apps that host a specific function.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"function_id": map[string]interface{}{
					"type":        "string",
					"description": "The function identifier",
				},
			},
			Required: []string{"function_id"},
		},
	}, s.idListHandler("sovd_functions_hosts", "function_id", func(ctx context.Context, id string) ([]map[string]any, error) {
		return s.client.ListFunctionHosts(ctx, id)
	}))

	// Tool: sovd_area_components
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_area_components",
		Description: "List all components within a specific area. Use sovd_areas_list first to discover valid area IDs (e.g., 'perception', 'control', 'diagnostics').",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"area_id": map[string]interface{}{
					"type":        "string",
					"description": "The area identifier (use sovd_areas_list to discover valid IDs)",
				},
			},
			Required: []string{"area_id"},
		},
	}, s.idListHandler("sovd_area_components", "area_id", func(ctx context.Context, id string) ([]map[string]any, error) {
		return s.client.ListAreaComponents(ctx, id)
	}))

	// Tool: sovd_area_subareas
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_area_subareas",
		Description: "List sub-areas within an area. Use this to explore area hierarchy.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"area_id": map[string]interface{}{
					"type":        "string",
					"description": "The area identifier",
				},
			},
			Required: []string{"area_id"},
		},
	}, s.idListHandler("sovd_area_subareas", "area_id", func(ctx context.Context, id string) ([]map[string]any, error) {
		return s.client.ListAreaSubareas(ctx, id)
	}))

	// Tool: sovd_area_contains
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_area_contains",
		Description: "List all entities contained in an area (components, apps, etc.).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"area_id": map[string]interface{}{
					"type":        "string",
					"description": "The area identifier",
				},
			},
			Required: []string{"area_id"},
		},
	}, s.idListHandler("sovd_area_contains", "area_id", func(ctx context.Context, id string) ([]map[string]any, error) {
		return s.client.ListAreaContains(ctx, id)
	}))

	// Tool: sovd_component_subcomponents
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_component_subcomponents",
		Description: "List subcomponents of a component.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"component_id": map[string]interface{}{
					"type":        "string",
					"description": "The component identifier",
				},
			},
			Required: []string{"component_id"},
		},
	}, s.idListHandler("sovd_component_subcomponents", "component_id", func(ctx context.Context, id string) ([]map[string]any, error) {
		return s.client.ListComponentSubcomponents(ctx, id)
	}))

	// Tool: sovd_component_hosts
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_component_hosts",
		Description: "List apps hosted by a component.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"component_id": map[string]interface{}{
					"type":        "string",
					"description": "The component identifier",
				},
			},
			Required: []string{"component_id"},
		},
	}, s.idListHandler("sovd_component_hosts", "component_id", func(ctx context.Context, id string) ([]map[string]any, error) {
		return s.client.ListComponentHosts(ctx, id)
	}))

	// Tool: sovd_component_dependencies
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_component_dependencies",
		Description: "List dependencies of a component.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"component_id": map[string]interface{}{
					"type":        "string",
					"description": "The component identifier",
				},
			},
			Required: []string{"component_id"},
		},
	}, s.idListHandler("sovd_component_dependencies", "component_id", func(ctx context.Context, id string) ([]map[string]any, error) {
		return s.client.ListComponentDependencies(ctx, id)
	}))
}

func (s *Server) handleVersion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	raw, err := s.client.Version(ctx)
	if err != nil {
		return s.fail("sovd_version", err), nil
	}
	s.countTool("sovd_version", "ok")
	return rawResponse(raw), nil
}

func (s *Server) handleHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	raw, err := s.client.Health(ctx)
	if err != nil {
		return s.fail("sovd_health", err), nil
	}
	s.countTool("sovd_health", "ok")
	return rawResponse(raw), nil
}

func (s *Server) handleEntitiesList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	filter := request.GetString("filter", "")

	entities, err := s.client.ListEntities(ctx)
	if err != nil {
		return s.fail("sovd_entities_list", err), nil
	}
	s.countTool("sovd_entities_list", "ok")
	return jsonResponse(sovd.FilterEntities(entities, filter)), nil
}

func (s *Server) handleEntitiesGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	entityID, err := requireToken(request, "entity_id")
	if err != nil {
		return s.fail("sovd_entities_get", err), nil
	}

	entity, err := s.client.GetEntity(ctx, entityID)
	if err != nil {
		return s.fail("sovd_entities_get", err), nil
	}
	s.countTool("sovd_entities_get", "ok")
	return jsonResponse(entity), nil
}

// listHandler builds a handler for argument-free collection listings.
func (s *Server) listHandler(tool string, list func(context.Context) ([]map[string]any, error)) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !s.rateLimiter.AllowCall() {
			return errorResponse("Rate limit exceeded. Please try again later."), nil
		}

		items, err := list(ctx)
		if err != nil {
			return s.fail(tool, err), nil
		}
		s.countTool(tool, "ok")
		return jsonResponse(items), nil
	}
}

// idGetHandler builds a handler for single-entity lookups keyed by one
// identifier argument.
func (s *Server) idGetHandler(tool, field string, get func(context.Context, string) (map[string]any, error)) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !s.rateLimiter.AllowCall() {
			return errorResponse("Rate limit exceeded. Please try again later."), nil
		}

		id, err := requireToken(request, field)
		if err != nil {
			return s.fail(tool, err), nil
		}

		item, err := get(ctx, id)
		if err != nil {
			return s.fail(tool, err), nil
		}
		s.countTool(tool, "ok")
		return jsonResponse(item), nil
	}
}

// idListHandler builds a handler for relationship listings keyed by one
// identifier argument.
func (s *Server) idListHandler(tool, field string, list func(context.Context, string) ([]map[string]any, error)) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !s.rateLimiter.AllowCall() {
			return errorResponse("Rate limit exceeded. Please try again later."), nil
		}

		id, err := requireToken(request, field)
		if err != nil {
			return s.fail(tool, err), nil
		}

		items, err := list(ctx, id)
		if err != nil {
			return s.fail(tool, err), nil
		}
		s.countTool(tool, "ok")
		return jsonResponse(items), nil
	}
}

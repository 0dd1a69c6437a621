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

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ros2-medkit/sovd-mcp/internal/sovd"
)

// registerDataTools registers topic data read and publish tools.
func (s *Server) registerDataTools() {
	// Tool: sovd_entity_data
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_entity_data",
		Description: "Read all topic data from an entity (returns all topics with their current values). Works with components, apps, areas, and functions.",
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
	}, s.handleEntityData)

	// Tool: sovd_entity_topic_data
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_entity_topic_data",
		Description: "Read data from a specific topic within an entity. Use sovd_entity_data first to discover available topics.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"topic_name": map[string]interface{}{
					"type":        "string",
					"description": "The topic name (use sovd_entity_data to discover available topics)",
				},
				"entity_type": entityTypeProperty(sovd.EntityComponents),
			},
			Required: []string{"entity_id", "topic_name"},
		},
	}, s.handleEntityTopicData)

	// Tool: sovd_publish_topic
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_publish_topic",
		Description: "Publish data to an entity's topic. Use sovd_entity_data first to verify the topic exists and check its message format.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"topic_name": map[string]interface{}{
					"type":        "string",
					"description": "The topic name to publish to",
				},
				"data": map[string]interface{}{
					"type":        "object",
					"description": "The message data to publish as JSON object",
				},
				"entity_type": entityTypeProperty(sovd.EntityComponents),
			},
			Required: []string{"entity_id", "topic_name", "data"},
		},
	}, s.handlePublishTopic)
}

func (s *Server) handleEntityData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_entity_data", err), nil
	}

	data, err := s.client.GetData(ctx, entityType, entityID)
	if err != nil {
		return s.fail("sovd_entity_data", err), nil
	}
	s.countTool("sovd_entity_data", "ok")
	return jsonResponse(data), nil
}

func (s *Server) handleEntityTopicData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_entity_topic_data", err), nil
	}
	topic, err := requireToken(request, "topic_name")
	if err != nil {
		return s.fail("sovd_entity_topic_data", err), nil
	}

	raw, err := s.client.GetTopicData(ctx, entityType, entityID, topic)
	if err != nil {
		return s.fail("sovd_entity_topic_data", err), nil
	}
	s.countTool("sovd_entity_topic_data", "ok")
	return rawResponse(raw), nil
}

func (s *Server) handlePublishTopic(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}
	if !s.rateLimiter.AllowMutation() {
		return errorResponse("Rate limit exceeded for state-changing operations. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.DefaultEntityType)
	if err != nil {
		return s.fail("sovd_publish_topic", err), nil
	}
	topic, err := requireToken(request, "topic_name")
	if err != nil {
		return s.fail("sovd_publish_topic", err), nil
	}

	data, ok := request.GetArguments()["data"].(map[string]interface{})
	if !ok {
		return s.fail("sovd_publish_topic", &sovd.ValidationError{Field: "data", Msg: "must be a JSON object"}), nil
	}

	// Encode once so the gateway receives exactly what the caller sent.
	payload, err := json.Marshal(data)
	if err != nil {
		return s.fail("sovd_publish_topic", err), nil
	}

	raw, err := s.client.PublishTopic(ctx, entityType, entityID, topic, payload)
	if err != nil {
		return s.fail("sovd_publish_topic", err), nil
	}
	s.countTool("sovd_publish_topic", "ok")
	return rawResponse(raw), nil
}

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

package sovd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ListOperations returns the operations (services and actions) exposed
// by an entity.
func (c *Client) ListOperations(ctx context.Context, entityType EntityType, entityID string) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%s/operations", entityType, entityID), nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// GetOperation returns the details of a single operation.
func (c *Client) GetOperation(ctx context.Context, entityType EntityType, entityID, operation string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%s/operations/%s", entityType, entityID, operation), nil, nil)
}

// CreateExecution starts an execution for an operation. A non-nil
// requestData is sent wrapped in the gateway's {"parameters": ...}
// envelope; nil sends no body.
func (c *Client) CreateExecution(ctx context.Context, entityType EntityType, entityID, operation string, requestData map[string]any) (json.RawMessage, error) {
	var body any
	if len(requestData) > 0 {
		body = map[string]any{"parameters": requestData}
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/%s/%s/operations/%s/executions", entityType, entityID, operation), nil, body)
}

// ListExecutions returns all executions of an operation.
func (c *Client) ListExecutions(ctx context.Context, entityType EntityType, entityID, operation string) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%s/operations/%s/executions", entityType, entityID, operation), nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// GetExecution returns the current status and feedback of an execution.
func (c *Client) GetExecution(ctx context.Context, entityType EntityType, entityID, operation, executionID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%s/operations/%s/executions/%s", entityType, entityID, operation, executionID), nil, nil)
}

// UpdateExecution sends an update to a running execution, for example
// {"stop": true}.
func (c *Client) UpdateExecution(ctx context.Context, entityType EntityType, entityID, operation, executionID string, update map[string]any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/%s/%s/operations/%s/executions/%s", entityType, entityID, operation, executionID), nil, update)
}

// CancelExecution cancels an execution.
func (c *Client) CancelExecution(ctx context.Context, entityType EntityType, entityID, operation, executionID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/%s/%s/operations/%s/executions/%s", entityType, entityID, operation, executionID), nil, nil)
}

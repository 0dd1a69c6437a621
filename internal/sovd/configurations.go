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

// ListConfigurations returns the parameters of an entity.
func (c *Client) ListConfigurations(ctx context.Context, entityType EntityType, entityID string) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%s/configurations", entityType, entityID), nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw, "configurations")
}

// GetConfiguration returns a single parameter value.
func (c *Client) GetConfiguration(ctx context.Context, entityType EntityType, entityID, param string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%s/configurations/%s", entityType, entityID, param), nil, nil)
}

// SetConfiguration sets a parameter. The value is wrapped in the
// gateway's {"value": ...} envelope.
func (c *Client) SetConfiguration(ctx context.Context, entityType EntityType, entityID, param string, value any) (json.RawMessage, error) {
	body := map[string]any{"value": value}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/%s/%s/configurations/%s", entityType, entityID, param), nil, body)
}

// DeleteConfiguration resets a parameter to its default value.
func (c *Client) DeleteConfiguration(ctx context.Context, entityType EntityType, entityID, param string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/%s/%s/configurations/%s", entityType, entityID, param), nil, nil)
}

// DeleteAllConfigurations resets every parameter on an entity.
func (c *Client) DeleteAllConfigurations(ctx context.Context, entityType EntityType, entityID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/%s/%s/configurations", entityType, entityID), nil, nil)
}

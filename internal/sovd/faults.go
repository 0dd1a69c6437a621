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

// ListFaults returns the faults recorded for an entity.
func (c *Client) ListFaults(ctx context.Context, entityType EntityType, entityID string) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%s/faults", entityType, entityID), nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw, "faults")
}

// GetFault returns a single fault including its environment data.
func (c *Client) GetFault(ctx context.Context, entityType EntityType, entityID, faultID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%s/faults/%s", entityType, entityID, faultID), nil, nil)
}

// ClearFault clears a single fault.
func (c *Client) ClearFault(ctx context.Context, entityType EntityType, entityID, faultID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/%s/%s/faults/%s", entityType, entityID, faultID), nil, nil)
}

// ClearAllFaults clears every fault on an entity.
func (c *Client) ClearAllFaults(ctx context.Context, entityType EntityType, entityID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/%s/%s/faults", entityType, entityID), nil, nil)
}

// ListAllFaults returns every fault known to the gateway.
func (c *Client) ListAllFaults(ctx context.Context) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/faults", nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw, "faults")
}

// GetFaultSnapshots returns the diagnostic snapshots attached to a fault
// on a specific entity.
func (c *Client) GetFaultSnapshots(ctx context.Context, entityType EntityType, entityID, faultCode string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%s/faults/%s/snapshots", entityType, entityID, faultCode), nil, nil)
}

// GetSystemFaultSnapshots returns the system-wide snapshots for a fault
// code.
func (c *Client) GetSystemFaultSnapshots(ctx context.Context, faultCode string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/faults/"+faultCode+"/snapshots", nil, nil)
}

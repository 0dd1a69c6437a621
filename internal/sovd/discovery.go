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

// Version returns the gateway's version information.
func (c *Client) Version(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/version-info", nil, nil)
}

// Health returns the gateway's health status.
func (c *Client) Health(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// ListEntities returns all entities across the four collections
// combined. Collections whose endpoint fails are skipped so a partially
// degraded gateway still yields a useful listing.
func (c *Client) ListEntities(ctx context.Context) ([]map[string]any, error) {
	var entities []map[string]any

	for _, et := range []EntityType{EntityAreas, EntityComponents, EntityApps, EntityFunctions} {
		raw, err := c.do(ctx, http.MethodGet, "/"+string(et), nil, nil)
		if err != nil {
			c.logger.Debug("skipping entity collection", "collection", string(et), "error", err)
			continue
		}
		list, err := unwrapList(raw, string(et))
		if err != nil {
			c.logger.Debug("skipping malformed entity collection", "collection", string(et), "error", err)
			continue
		}
		entities = append(entities, list...)
	}

	return entities, nil
}

// GetEntity finds an entity by ID across all collections. Components
// additionally get their live data attached when the data endpoint is
// reachable.
func (c *Client) GetEntity(ctx context.Context, entityID string) (map[string]any, error) {
	entities, err := c.ListEntities(ctx)
	if err != nil {
		return nil, err
	}

	var found map[string]any
	for _, entity := range entities {
		if id, ok := entity["id"].(string); ok && id == entityID {
			found = entity
			break
		}
	}
	if found == nil {
		return nil, &GatewayError{
			Status: 404,
			Body:   fmt.Sprintf("entity %q not found", entityID),
		}
	}

	if typ, ok := found["type"].(string); ok && typ == "Component" {
		if data, err := c.do(ctx, http.MethodGet, "/components/"+entityID+"/data", nil, nil); err == nil {
			var decoded any
			if json.Unmarshal(data, &decoded) == nil {
				found["data"] = decoded
			}
		}
	}

	return found, nil
}

// ListAreas returns all areas.
func (c *Client) ListAreas(ctx context.Context) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/areas", nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw, "areas")
}

// GetArea returns a single area by ID.
func (c *Client) GetArea(ctx context.Context, areaID string) (map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/areas/"+areaID, nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapItem(raw)
}

// ListComponents returns all components.
func (c *Client) ListComponents(ctx context.Context) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/components", nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw, "components")
}

// GetComponent returns a single component by ID.
func (c *Client) GetComponent(ctx context.Context, componentID string) (map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/components/"+componentID, nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapItem(raw)
}

// ListApps returns all apps (ROS 2 nodes).
func (c *Client) ListApps(ctx context.Context) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/apps", nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw, "apps")
}

// GetApp returns app capabilities and details.
func (c *Client) GetApp(ctx context.Context, appID string) (map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/apps/"+appID, nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapItem(raw)
}

// ListAppDependencies returns dependencies of an app.
func (c *Client) ListAppDependencies(ctx context.Context, appID string) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/apps/"+appID+"/depends-on", nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// ListFunctions returns all functions.
func (c *Client) ListFunctions(ctx context.Context) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/functions", nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw, "functions")
}

// GetFunction returns function details.
func (c *Client) GetFunction(ctx context.Context, functionID string) (map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/functions/"+functionID, nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapItem(raw)
}

// ListFunctionHosts returns the apps hosting a function.
func (c *Client) ListFunctionHosts(ctx context.Context, functionID string) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/functions/"+functionID+"/hosts", nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// ListAreaComponents returns the components within an area.
func (c *Client) ListAreaComponents(ctx context.Context, areaID string) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/areas/"+areaID+"/components", nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// ListAreaSubareas returns the sub-areas of an area.
func (c *Client) ListAreaSubareas(ctx context.Context, areaID string) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/areas/"+areaID+"/subareas", nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// ListAreaContains returns every entity contained in an area.
func (c *Client) ListAreaContains(ctx context.Context, areaID string) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/areas/"+areaID+"/contains", nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// ListComponentSubcomponents returns the subcomponents of a component.
func (c *Client) ListComponentSubcomponents(ctx context.Context, componentID string) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/components/"+componentID+"/subcomponents", nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// ListComponentHosts returns the apps hosted by a component.
func (c *Client) ListComponentHosts(ctx context.Context, componentID string) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/components/"+componentID+"/hosts", nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// ListComponentDependencies returns the dependencies of a component.
func (c *Client) ListComponentDependencies(ctx context.Context, componentID string) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/components/"+componentID+"/depends-on", nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

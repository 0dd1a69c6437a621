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

// GetData reads all topic data exposed by an entity.
func (c *Client) GetData(ctx context.Context, entityType EntityType, entityID string) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%s/data", entityType, entityID), nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// GetTopicData reads the latest sample from a single topic.
func (c *Client) GetTopicData(ctx context.Context, entityType EntityType, entityID, topic string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%s/data/%s", entityType, entityID, topic), nil, nil)
}

// PublishTopic publishes a message to an entity's topic. The payload is
// forwarded byte-for-byte as the request body.
func (c *Client) PublishTopic(ctx context.Context, entityType EntityType, entityID, topic string, payload json.RawMessage) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/%s/%s/data/%s", entityType, entityID, topic), nil, payload)
}

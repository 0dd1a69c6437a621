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
	"strings"
	"time"
)

// Poll loop tuning. Callers can pick any interval and wait within these
// bounds; values outside are clamped rather than rejected.
const (
	DefaultPollInterval = 1 * time.Second
	DefaultMaxWait      = 60 * time.Second
	MinPollInterval     = 100 * time.Millisecond
	MaxWaitCeiling      = 10 * time.Minute
)

// RunResult is the outcome of a completed RunOperation call.
type RunResult struct {
	// ExecutionID is the gateway-assigned execution identifier, empty
	// when the create response finished synchronously without one.
	ExecutionID string

	// Status is the terminal status observed.
	Status string

	// Final is the last execution document received from the gateway.
	Final json.RawMessage

	// Polls is the number of status requests made after creation.
	Polls int
}

// terminalStatuses are the execution states that end the poll loop.
var terminalStatuses = map[string]struct{}{
	"succeeded": {},
	"failed":    {},
	"cancelled": {},
}

func isTerminal(status string) bool {
	_, ok := terminalStatuses[strings.ToLower(status)]
	return ok
}

// RunOperation creates an execution and polls it to completion.
//
// The create response is inspected first: executions that finish
// synchronously (services) return immediately without a single poll.
// Otherwise the execution is polled every interval until it reaches a
// terminal status, maxWait elapses, or ctx is cancelled. On timeout the
// execution is cancelled once, best effort, and a *TimeoutError is
// returned carrying the last observed status.
func (c *Client) RunOperation(ctx context.Context, entityType EntityType, entityID, operation string, requestData map[string]any, interval, maxWait time.Duration) (*RunResult, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if interval < MinPollInterval {
		interval = MinPollInterval
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	if maxWait > MaxWaitCeiling {
		maxWait = MaxWaitCeiling
	}

	created, err := c.CreateExecution(ctx, entityType, entityID, operation, requestData)
	if err != nil {
		return nil, err
	}

	executionID, status := executionIdentity(created)
	result := &RunResult{ExecutionID: executionID, Status: status, Final: created}

	// Synchronous completion or a gateway that returns a bare result
	// with no execution handle to poll.
	if isTerminal(status) || executionID == "" {
		c.countPoll(status)
		return result, nil
	}

	deadline := time.NewTimer(maxWait)
	defer deadline.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			c.cancelBestEffort(entityType, entityID, operation, executionID)
			c.countPoll("context")
			return nil, ctx.Err()

		case <-deadline.C:
			c.cancelBestEffort(entityType, entityID, operation, executionID)
			c.countPoll("timeout")
			return nil, &TimeoutError{LastStatus: result.Status, Waited: time.Since(start)}

		case <-tick.C:
			doc, err := c.GetExecution(ctx, entityType, entityID, operation, executionID)
			if err != nil {
				c.countPoll("error")
				return nil, err
			}
			result.Polls++
			result.Final = doc
			_, result.Status = executionIdentity(doc)

			if isTerminal(result.Status) {
				c.countPoll(strings.ToLower(result.Status))
				return result, nil
			}
		}
	}
}

// cancelBestEffort issues a single cancel with its own short deadline so
// a cancelled caller context cannot suppress it.
func (c *Client) cancelBestEffort(entityType EntityType, entityID, operation, executionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := c.CancelExecution(ctx, entityType, entityID, operation, executionID); err != nil {
		c.logger.Warn("failed to cancel execution",
			"entity_id", entityID,
			"operation", operation,
			"execution_id", executionID,
			"error", err,
		)
	}
}

func (c *Client) countPoll(outcome string) {
	if c.metrics == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	c.metrics.ExecutionPolls.WithLabelValues(outcome).Inc()
}

// executionIdentity pulls the execution ID and status out of a create or
// status document. Gateways vary between "id" and "execution_id".
func executionIdentity(doc json.RawMessage) (id, status string) {
	var fields struct {
		ID          string `json:"id"`
		ExecutionID string `json:"execution_id"`
		Status      string `json:"status"`
	}
	if err := json.Unmarshal(doc, &fields); err != nil {
		return "", ""
	}
	id = fields.ID
	if fields.ExecutionID != "" {
		id = fields.ExecutionID
	}
	return id, fields.Status
}

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

// Package sovd implements the HTTP client for the ros2_medkit SOVD
// gateway: entity discovery, faults, data topics, operations with the
// execution model, configurations, and bulk data.
package sovd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ros2-medkit/sovd-mcp/internal/config"
	"github.com/ros2-medkit/sovd-mcp/internal/metrics"
	"github.com/ros2-medkit/sovd-mcp/pkg/httpclient"
)

// maxErrorBody caps how much of a gateway error body is carried into the
// error message.
const maxErrorBody = 200

// Client is a thin wrapper over the SOVD REST API. It is safe for
// concurrent use; all state is immutable after construction.
type Client struct {
	baseURL     string
	bearerToken string
	httpClient  *http.Client
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics attaches Prometheus instrumentation to gateway calls.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient overrides the underlying HTTP client. Mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a Client from settings. The HTTP client is created
// via the shared factory unless overridden by WithHTTPClient.
func NewClient(settings config.Settings, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:     strings.TrimRight(settings.BaseURL, "/"),
		bearerToken: settings.BearerToken,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		hc, err := httpclient.New(httpclient.Config{
			Timeout:   settings.Timeout,
			UserAgent: "sovd-mcp/1.0",
		})
		if err != nil {
			return nil, fmt.Errorf("creating http client: %w", err)
		}
		c.httpClient = hc
	}

	return c, nil
}

// BaseURL reports the gateway base URL the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs a single round trip against the gateway and returns the
// raw JSON body. Non-2xx responses and transport failures come back as
// *GatewayError. There are no retries.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		// json.RawMessage bodies pass through byte-for-byte.
		raw, ok := body.(json.RawMessage)
		if !ok {
			encoded, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("encoding request body: %w", err)
			}
			raw = encoded
		}
		reqBody = bytes.NewReader(raw)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, 0, start)
		return nil, &GatewayError{Unreachable: true, Err: err}
	}
	defer resp.Body.Close()

	c.observe(method, resp.StatusCode, start)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GatewayError{Status: resp.StatusCode, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GatewayError{
			Status: resp.StatusCode,
			Body:   truncate(string(respBody), maxErrorBody),
		}
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(respBody) {
		return nil, &GatewayError{
			Status: resp.StatusCode,
			Body:   "invalid JSON in response body",
		}
	}
	return json.RawMessage(respBody), nil
}

func (c *Client) observe(method string, status int, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.GatewayRequests.WithLabelValues(method, metrics.ResponseClass(status)).Inc()
	c.metrics.GatewayDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

// unwrapList normalizes a gateway list response. Bare arrays pass
// through; object envelopes are unwrapped at the first matching key
// (then "items"); anything else becomes a single-element list. A null
// body yields an empty list.
func unwrapList(raw json.RawMessage, keys ...string) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []map[string]any{}, nil
	}

	if trimmed[0] == '[' {
		var list []map[string]any
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decoding list response: %w", err)
		}
		return list, nil
	}

	if trimmed[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decoding response envelope: %w", err)
		}
		for _, key := range append(keys, "items") {
			inner, ok := envelope[key]
			if !ok {
				continue
			}
			var list []map[string]any
			if err := json.Unmarshal(inner, &list); err != nil {
				return nil, fmt.Errorf("decoding %q list: %w", key, err)
			}
			return list, nil
		}
		var single map[string]any
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("decoding response object: %w", err)
		}
		return []map[string]any{single}, nil
	}

	return nil, fmt.Errorf("unexpected list response shape: %s", truncate(string(trimmed), 50))
}

// unwrapItem unwraps a single-object response from an "item" envelope if
// present, otherwise returns the object itself.
func unwrapItem(raw json.RawMessage) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decoding response object: %w", err)
	}
	if inner, ok := obj["item"].(map[string]any); ok {
		return inner, nil
	}
	return obj, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

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
	"io"
	"mime"
	"net/http"
	"strings"
)

// ListBulkDataCategories returns the bulk-data category names available
// on an entity, for example "rosbags" or "logs".
func (c *Client) ListBulkDataCategories(ctx context.Context, entityType EntityType, entityID string) ([]string, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%s/bulk-data", entityType, entityID), nil, nil)
	if err != nil {
		return nil, err
	}

	// Category listings come back as {"items": ["rosbags", ...]} or as a
	// bare string array.
	var envelope struct {
		Items []string `json:"items"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Items != nil {
		return envelope.Items, nil
	}
	var bare []string
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}
	return nil, fmt.Errorf("unexpected bulk-data categories response: %s", truncate(string(raw), 50))
}

// ListBulkData returns the items within a bulk-data category.
func (c *Client) ListBulkData(ctx context.Context, entityType EntityType, entityID, category string) ([]map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%s/bulk-data/%s", entityType, entityID, category), nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(raw)
}

// GetBulkDataInfo issues a HEAD request against a bulk-data URI and
// describes the file from the response headers without downloading it.
func (c *Client) GetBulkDataInfo(ctx context.Context, bulkDataURI string) (*BulkDataInfo, error) {
	req, err := c.newBulkRequest(ctx, http.MethodHead, bulkDataURI)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &GatewayError{Unreachable: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GatewayError{Status: resp.StatusCode}
	}

	info := &BulkDataInfo{
		URI:           bulkDataURI,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Filename:      filenameFromDisposition(resp.Header.Get("Content-Disposition")),
	}
	if info.ContentType == "" {
		info.ContentType = "application/octet-stream"
	}
	return info, nil
}

// DownloadBulkData fetches a bulk-data file and returns its content
// together with the filename from the Content-Disposition header, if
// any.
func (c *Client) DownloadBulkData(ctx context.Context, bulkDataURI string) ([]byte, string, error) {
	req, err := c.newBulkRequest(ctx, http.MethodGet, bulkDataURI)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", &GatewayError{Unreachable: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, "", &GatewayError{Status: resp.StatusCode, Body: string(body)}
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &GatewayError{Status: resp.StatusCode, Err: fmt.Errorf("reading bulk data: %w", err)}
	}

	return content, filenameFromDisposition(resp.Header.Get("Content-Disposition")), nil
}

// newBulkRequest builds a request for a bulk-data URI, which is an
// absolute path relative to the gateway base URL.
func (c *Client) newBulkRequest(ctx context.Context, method, bulkDataURI string) (*http.Request, error) {
	if bulkDataURI == "" {
		return nil, &ValidationError{Field: "bulk_data_uri", Msg: "must not be empty"}
	}
	if !strings.HasPrefix(bulkDataURI, "/") {
		bulkDataURI = "/" + bulkDataURI
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+bulkDataURI, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}
	return req, nil
}

func filenameFromDisposition(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

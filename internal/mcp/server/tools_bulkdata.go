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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ros2-medkit/sovd-mcp/internal/sovd"
)

// registerBulkDataTools registers bulk-data discovery and download
// tools. Bulk data is how the gateway exposes rosbag recordings captured
// at fault time.
func (s *Server) registerBulkDataTools() {
	// Tool: sovd_bulkdata_categories
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_bulkdata_categories",
		Description: "List available bulk-data categories for an entity. Bulk-data categories contain downloadable files like rosbag recordings.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"entity_type": entityTypeProperty(sovd.EntityApps),
			},
			Required: []string{"entity_id"},
		},
	}, s.handleBulkDataCategories)

	// Tool: sovd_bulkdata_list
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_bulkdata_list",
		Description: "List bulk-data items in a category. Use this to discover available rosbag recordings for download.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Category name (e.g., 'rosbags')",
				},
				"entity_type": entityTypeProperty(sovd.EntityApps),
			},
			Required: []string{"entity_id", "category"},
		},
	}, s.handleBulkDataList)

	// Tool: sovd_bulkdata_info
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_bulkdata_info",
		Description: "Get information about a specific bulk-data item. Use the bulk_data_uri from fault environment_data snapshots.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"bulk_data_uri": map[string]interface{}{
					"type":        "string",
					"description": "Full bulk-data URI path from fault response (e.g., '/apps/motor/bulk-data/rosbags/uuid')",
				},
			},
			Required: []string{"bulk_data_uri"},
		},
	}, s.handleBulkDataInfo)

	// Tool: sovd_bulkdata_download
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_bulkdata_download",
		Description: "Download a bulk-data file (e.g., rosbag recording) to the specified directory. Use the bulk_data_uri from fault environment_data snapshots.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"bulk_data_uri": map[string]interface{}{
					"type":        "string",
					"description": "Full bulk-data URI path from fault response",
				},
				"output_dir": map[string]interface{}{
					"type":        "string",
					"description": "Directory to save the file (default: /tmp)",
					"default":     "/tmp",
				},
			},
			Required: []string{"bulk_data_uri"},
		},
	}, s.handleBulkDataDownload)

	// Tool: sovd_bulkdata_download_for_fault
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sovd_bulkdata_download_for_fault",
		Description: "Download all rosbag recordings associated with a specific fault. Retrieves the fault's environment_data and downloads all rosbag snapshots.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_id": map[string]interface{}{
					"type":        "string",
					"description": "The entity identifier",
				},
				"fault_code": map[string]interface{}{
					"type":        "string",
					"description": "The fault code",
				},
				"entity_type": entityTypeProperty(sovd.EntityApps),
				"output_dir": map[string]interface{}{
					"type":        "string",
					"description": "Directory to save the files (default: /tmp)",
					"default":     "/tmp",
				},
			},
			Required: []string{"entity_id", "fault_code"},
		},
	}, s.handleBulkDataDownloadForFault)
}

func (s *Server) handleBulkDataCategories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.EntityApps)
	if err != nil {
		return s.fail("sovd_bulkdata_categories", err), nil
	}

	categories, err := s.client.ListBulkDataCategories(ctx, entityType, entityID)
	if err != nil {
		return s.fail("sovd_bulkdata_categories", err), nil
	}
	s.countTool("sovd_bulkdata_categories", "ok")
	return textResponse(formatBulkDataCategories(categories, entityID)), nil
}

func (s *Server) handleBulkDataList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.EntityApps)
	if err != nil {
		return s.fail("sovd_bulkdata_list", err), nil
	}
	category, err := requireToken(request, "category")
	if err != nil {
		return s.fail("sovd_bulkdata_list", err), nil
	}

	items, err := s.client.ListBulkData(ctx, entityType, entityID, category)
	if err != nil {
		return s.fail("sovd_bulkdata_list", err), nil
	}
	s.countTool("sovd_bulkdata_list", "ok")
	return textResponse(formatBulkDataList(items, entityID, category)), nil
}

func (s *Server) handleBulkDataInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	bulkDataURI, err := request.RequireString("bulk_data_uri")
	if err != nil {
		return s.fail("sovd_bulkdata_info", &sovd.ValidationError{Field: "bulk_data_uri", Msg: "missing or invalid"}), nil
	}

	info, err := s.client.GetBulkDataInfo(ctx, bulkDataURI)
	if err != nil {
		return s.fail("sovd_bulkdata_info", err), nil
	}
	s.countTool("sovd_bulkdata_info", "ok")
	return textResponse(formatBulkDataInfo(info)), nil
}

func (s *Server) handleBulkDataDownload(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	bulkDataURI, err := request.RequireString("bulk_data_uri")
	if err != nil {
		return s.fail("sovd_bulkdata_download", &sovd.ValidationError{Field: "bulk_data_uri", Msg: "missing or invalid"}), nil
	}
	outputDir := request.GetString("output_dir", "/tmp")

	content, filename, err := s.client.DownloadBulkData(ctx, bulkDataURI)
	if err != nil {
		return s.fail("sovd_bulkdata_download", err), nil
	}

	path, err := saveBulkDataFile(content, filename, bulkDataURI, outputDir)
	if err != nil {
		return s.fail("sovd_bulkdata_download", err), nil
	}

	s.countTool("sovd_bulkdata_download", "ok")
	return textResponse(fmt.Sprintf("Downloaded successfully!\n  File: %s\n  Size: %.2f MB (%d bytes)",
		path, float64(len(content))/(1024*1024), len(content))), nil
}

func (s *Server) handleBulkDataDownloadForFault(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	entityType, entityID, err := entityArgs(request, sovd.EntityApps)
	if err != nil {
		return s.fail("sovd_bulkdata_download_for_fault", err), nil
	}
	faultCode, err := requireToken(request, "fault_code")
	if err != nil {
		return s.fail("sovd_bulkdata_download_for_fault", err), nil
	}
	outputDir := request.GetString("output_dir", "/tmp")

	faultRaw, err := s.client.GetFault(ctx, entityType, entityID, faultCode)
	if err != nil {
		return s.fail("sovd_bulkdata_download_for_fault", err), nil
	}

	snapshots, message := rosbagSnapshots(faultRaw, faultCode)
	if message != "" {
		s.countTool("sovd_bulkdata_download_for_fault", "ok")
		return textResponse(message), nil
	}

	var downloaded, failures []string
	for _, snap := range snapshots {
		if snap.BulkDataURI == "" {
			failures = append(failures, fmt.Sprintf("  - %s: No bulk_data_uri", snap.SnapshotID))
			continue
		}

		content, filename, err := s.client.DownloadBulkData(ctx, snap.BulkDataURI)
		if err != nil {
			failures = append(failures, fmt.Sprintf("  - %s: %v", snap.SnapshotID, err))
			continue
		}
		if filename == "" {
			filename = snap.SnapshotID + ".mcap"
		}

		path, err := saveBulkDataFile(content, filename, snap.BulkDataURI, outputDir)
		if err != nil {
			failures = append(failures, fmt.Sprintf("  - %s: %v", snap.SnapshotID, err))
			continue
		}
		downloaded = append(downloaded, fmt.Sprintf("  - %s (%.2f MB)", filepath.Base(path), float64(len(content))/(1024*1024)))
	}

	lines := []string{fmt.Sprintf("Downloaded rosbags for fault %s:", faultCode)}
	if len(downloaded) > 0 {
		lines = append(lines, fmt.Sprintf("\nSuccessfully downloaded (%d):", len(downloaded)))
		lines = append(lines, downloaded...)
	}
	if len(failures) > 0 {
		lines = append(lines, fmt.Sprintf("\nErrors (%d):", len(failures)))
		lines = append(lines, failures...)
	}
	lines = append(lines, "\nOutput directory: "+outputDir)

	s.countTool("sovd_bulkdata_download_for_fault", "ok")
	return textResponse(strings.Join(lines, "\n")), nil
}

// rosbagSnapshots extracts rosbag snapshots from a fault document.
// A non-empty message means there is nothing to download and explains
// why.
func rosbagSnapshots(faultRaw json.RawMessage, faultCode string) ([]sovd.RosbagSnapshot, string) {
	var doc struct {
		EnvironmentData *sovd.EnvironmentData `json:"environmentData"`
		EnvironmentAlt  *sovd.EnvironmentData `json:"environment_data"`
	}
	if err := json.Unmarshal(faultRaw, &doc); err != nil {
		return nil, "No environment data found for fault " + faultCode
	}

	env := doc.EnvironmentData
	if env == nil {
		env = doc.EnvironmentAlt
	}
	if env == nil {
		return nil, "No environment data found for fault " + faultCode
	}
	if env.ExtendedDataRecords == nil {
		return nil, "No snapshot data found for fault " + faultCode
	}

	records := env.ExtendedDataRecords
	if len(records.RosbagSnapshots) == 0 {
		if n := len(records.FreezeFrameSnapshots); n > 0 {
			return nil, fmt.Sprintf("Fault %s has only freeze frame snapshots (%d total), no rosbag recordings to download.", faultCode, n)
		}
		return nil, "No rosbag snapshots found for fault " + faultCode
	}

	return records.RosbagSnapshots, ""
}

// saveBulkDataFile writes downloaded content under outputDir, deriving a
// filename from the URI when the gateway supplied none. The resolved
// path must stay inside outputDir.
func saveBulkDataFile(content []byte, filename, bulkDataURI, outputDir string) (string, error) {
	absDir, err := filepath.Abs(outputDir)
	if err != nil {
		return "", fmt.Errorf("resolving output directory: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	if filename == "" {
		parts := strings.Split(strings.Trim(bulkDataURI, "/"), "/")
		filename = parts[len(parts)-1]
		if filename == "" {
			filename = "download"
		}
		if !strings.Contains(filename, ".") {
			filename += ".mcap"
		}
	}

	safeFilename := filepath.Base(filename)
	if safeFilename == "." || safeFilename == string(filepath.Separator) || safeFilename == "" {
		safeFilename = "download.mcap"
	}

	path := filepath.Join(absDir, safeFilename)
	if !strings.HasPrefix(path, absDir+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected in filename: %s", filename)
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return path, nil
}

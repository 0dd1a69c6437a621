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

import "strings"

// FaultItem mirrors the gateway's fault representation. Optional fields
// are pointers so absent values can be told apart from zero values when
// rendering.
type FaultItem struct {
	Code            string         `json:"code"`
	FaultName       string         `json:"faultName,omitempty"`
	Severity        string         `json:"severity,omitempty"`
	Status          string         `json:"status,omitempty"`
	IsConfirmed     *bool          `json:"isConfirmed,omitempty"`
	IsCurrent       *bool          `json:"isCurrent,omitempty"`
	IsTestFailed    *bool          `json:"isTestFailed,omitempty"`
	Counter         *int           `json:"counter,omitempty"`
	AgingCounter    *int           `json:"agingCounter,omitempty"`
	FirstOccurrence string         `json:"firstOccurrence,omitempty"`
	LastOccurrence  string         `json:"lastOccurrence,omitempty"`
	HealingCycles   *int           `json:"healingCycles,omitempty"`
	XMedkit         map[string]any `json:"x-medkit,omitempty"`
}

// FreezeFrameSnapshot is a captured set of diagnostic values recorded
// when a fault matured.
type FreezeFrameSnapshot struct {
	SnapshotID string         `json:"snapshotId"`
	Timestamp  string         `json:"timestamp"`
	DataSource string         `json:"dataSource,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// RosbagSnapshot points at a recorded rosbag available through the
// bulk-data endpoints.
type RosbagSnapshot struct {
	SnapshotID  string `json:"snapshotId"`
	Timestamp   string `json:"timestamp"`
	BulkDataURI string `json:"bulkDataUri"`
	FileSize    *int64 `json:"fileSize,omitempty"`
	IsAvailable *bool  `json:"isAvailable,omitempty"`
	DataSource  string `json:"dataSource,omitempty"`
}

// ExtendedDataRecords groups the snapshot kinds attached to a fault.
type ExtendedDataRecords struct {
	FreezeFrameSnapshots []FreezeFrameSnapshot `json:"freezeFrameSnapshots,omitempty"`
	RosbagSnapshots      []RosbagSnapshot      `json:"rosbagSnapshots,omitempty"`
}

// EnvironmentData is the context captured at fault occurrence.
type EnvironmentData struct {
	ExtendedDataRecords *ExtendedDataRecords `json:"extendedDataRecords,omitempty"`
}

// BulkDataItem is an entry in a bulk-data category listing.
type BulkDataItem struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	Mimetype     string `json:"mimetype,omitempty"`
	Size         *int64 `json:"size,omitempty"`
	CreationDate string `json:"creationDate,omitempty"`
}

// BulkDataInfo describes a bulk-data file without downloading it,
// assembled from response headers of a HEAD request.
type BulkDataInfo struct {
	URI           string `json:"uri"`
	Filename      string `json:"filename,omitempty"`
	ContentType   string `json:"content_type"`
	ContentLength int64  `json:"content_length,omitempty"`
}

// FilterEntities keeps entities whose "id" or "name" field contains
// filter as a case-insensitive substring. An empty filter keeps
// everything.
func FilterEntities(entities []map[string]any, filter string) []map[string]any {
	if filter == "" {
		return entities
	}

	needle := strings.ToLower(filter)
	filtered := make([]map[string]any, 0, len(entities))

	for _, entity := range entities {
		if id, ok := entity["id"].(string); ok && strings.Contains(strings.ToLower(id), needle) {
			filtered = append(filtered, entity)
			continue
		}
		if name, ok := entity["name"].(string); ok && strings.Contains(strings.ToLower(name), needle) {
			filtered = append(filtered, entity)
		}
	}

	return filtered
}

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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ros2-medkit/sovd-mcp/internal/sovd"
)

func TestFormatFaultList_Empty(t *testing.T) {
	assert.Equal(t, "No faults found.", formatFaultList(nil))
}

func TestFormatFaultList(t *testing.T) {
	faults := []map[string]any{
		{
			"code":        "P0420",
			"faultName":   "Catalyst Efficiency Below Threshold",
			"severity":    "high",
			"status":      "active",
			"isConfirmed": true,
			"counter":     3,
		},
		{"code": "U0100"},
	}

	out := formatFaultList(faults)

	assert.Contains(t, out, "Found 2 fault(s):")
	assert.Contains(t, out, "Fault: P0420 - Catalyst Efficiency Below Threshold")
	assert.Contains(t, out, "  Severity: high")
	assert.Contains(t, out, "  Confirmed: true")
	assert.Contains(t, out, "  Occurrences: 3")
	assert.Contains(t, out, "Fault: U0100")
}

func TestFormatFaultResponse_ItemEnvelope(t *testing.T) {
	raw := json.RawMessage(`{
		"item": {"code": "E42", "faultName": "Motor Stall", "status": "active"},
		"environmentData": {
			"extendedDataRecords": {
				"rosbagSnapshots": [
					{"snapshotId": "snap-1", "timestamp": "2025-06-01T10:00:00Z",
					 "bulkDataUri": "/apps/motor/bulk-data/rosbags/snap-1",
					 "fileSize": 2097152, "isAvailable": true}
				]
			}
		}
	}`)

	out := formatFaultResponse(raw)

	assert.Contains(t, out, "Fault: E42 - Motor Stall")
	assert.Contains(t, out, "Environment Data:")
	assert.Contains(t, out, "Rosbag Snapshots (1):")
	assert.Contains(t, out, "Download URI: /apps/motor/bulk-data/rosbags/snap-1")
	assert.Contains(t, out, "File Size: 2.00 MB")
	assert.Contains(t, out, "Available: true")
}

func TestFormatFaultResponse_InvalidJSONPassesThrough(t *testing.T) {
	assert.Equal(t, "not json", formatFaultResponse(json.RawMessage("not json")))
}

func TestFormatSnapshotsResponse_Empty(t *testing.T) {
	out := formatSnapshotsResponse(json.RawMessage(`{}`))
	assert.Contains(t, out, "Diagnostic Snapshots:")
	assert.Contains(t, out, "No snapshots available.")
}

func TestFormatSnapshotsResponse_FreezeFrames(t *testing.T) {
	raw := json.RawMessage(`{
		"freezeFrameSnapshots": [
			{"snapshotId": "ff-1", "timestamp": "2025-06-01T10:00:00Z",
			 "dataSource": "/diagnostics", "data": {"rpm": 4200}}
		]
	}`)

	out := formatSnapshotsResponse(raw)

	assert.Contains(t, out, "Freeze Frame Snapshots (1):")
	assert.Contains(t, out, "Snapshot: ff-1")
	assert.Contains(t, out, "Source: /diagnostics")
	assert.Contains(t, out, `"rpm"`)
}

func TestFormatBulkDataList(t *testing.T) {
	items := []map[string]any{
		{"id": "bd-1", "name": "fault.mcap", "mimetype": "application/octet-stream",
			"size": 1048576, "creationDate": "2025-06-01T10:00:00Z"},
		{"id": "bd-2"},
	}

	out := formatBulkDataList(items, "motor", "rosbags")

	assert.Contains(t, out, "Bulk-data items in motor/rosbags (2 total):")
	assert.Contains(t, out, "[bd-1] fault.mcap (application/octet-stream, 1.00 MB, created 2025-06-01)")
	assert.Contains(t, out, "[bd-2]")
}

func TestFormatBulkDataCategories(t *testing.T) {
	assert.Equal(t, "No bulk-data categories available for motor",
		formatBulkDataCategories(nil, "motor"))

	out := formatBulkDataCategories([]string{"rosbags", "logs"}, "motor")
	assert.Contains(t, out, "Bulk-data categories for motor:")
	assert.Contains(t, out, "  - rosbags")
	assert.Contains(t, out, "  - logs")
}

func TestFormatBulkDataInfo(t *testing.T) {
	out := formatBulkDataInfo(&sovd.BulkDataInfo{
		URI:           "/apps/motor/bulk-data/rosbags/snap-1",
		Filename:      "snap-1.mcap",
		ContentType:   "application/octet-stream",
		ContentLength: 3145728,
	})

	assert.Contains(t, out, "Bulk-data info for: /apps/motor/bulk-data/rosbags/snap-1")
	assert.Contains(t, out, "Filename: snap-1.mcap")
	assert.Contains(t, out, "Size: 3.00 MB (3145728 bytes)")
}

func TestRosbagSnapshots(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantCount int
		wantMsg   string
	}{
		{
			name:    "no environment data",
			raw:     `{"code": "E1"}`,
			wantMsg: "No environment data found for fault E1",
		},
		{
			name:    "snake_case environment key without records",
			raw:     `{"environment_data": {}}`,
			wantMsg: "No snapshot data found for fault E1",
		},
		{
			name: "only freeze frames",
			raw: `{"environmentData": {"extendedDataRecords": {
				"freezeFrameSnapshots": [{"snapshotId": "ff-1", "timestamp": "t"}]}}}`,
			wantMsg: "Fault E1 has only freeze frame snapshots (1 total), no rosbag recordings to download.",
		},
		{
			name: "rosbags present",
			raw: `{"environmentData": {"extendedDataRecords": {
				"rosbagSnapshots": [
					{"snapshotId": "s1", "timestamp": "t", "bulkDataUri": "/u1"},
					{"snapshotId": "s2", "timestamp": "t", "bulkDataUri": "/u2"}
				]}}}`,
			wantCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snaps, msg := rosbagSnapshots(json.RawMessage(tt.raw), "E1")
			assert.Len(t, snaps, tt.wantCount)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

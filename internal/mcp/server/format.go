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
	"fmt"
	"strings"

	"github.com/ros2-medkit/sovd-mcp/internal/sovd"
)

// Fault and snapshot responses are rendered as plain text instead of raw
// JSON so a model reading the result does not have to dig through nested
// camelCase documents.

func formatFaultItem(item sovd.FaultItem) string {
	header := "Fault: " + item.Code
	if item.FaultName != "" {
		header += " - " + item.FaultName
	}
	lines := []string{header}

	if item.Severity != "" {
		lines = append(lines, "  Severity: "+item.Severity)
	}
	if item.Status != "" {
		lines = append(lines, "  Status: "+item.Status)
	}
	if item.IsConfirmed != nil {
		lines = append(lines, fmt.Sprintf("  Confirmed: %t", *item.IsConfirmed))
	}
	if item.IsCurrent != nil {
		lines = append(lines, fmt.Sprintf("  Current: %t", *item.IsCurrent))
	}
	if item.Counter != nil {
		lines = append(lines, fmt.Sprintf("  Occurrences: %d", *item.Counter))
	}
	if item.FirstOccurrence != "" {
		lines = append(lines, "  First Seen: "+item.FirstOccurrence)
	}
	if item.LastOccurrence != "" {
		lines = append(lines, "  Last Seen: "+item.LastOccurrence)
	}

	return strings.Join(lines, "\n")
}

func formatFaultList(faults []map[string]any) string {
	if len(faults) == 0 {
		return "No faults found."
	}

	lines := []string{fmt.Sprintf("Found %d fault(s):\n", len(faults))}
	for _, faultDict := range faults {
		item, err := decodeFaultItem(faultDict)
		if err != nil {
			// Degrade to the fields we can pull out directly.
			code, _ := faultDict["code"].(string)
			if code == "" {
				code = "unknown"
			}
			lines = append(lines, "Fault: "+code, "")
			continue
		}
		lines = append(lines, formatFaultItem(item), "")
	}

	return strings.Join(lines, "\n")
}

func decodeFaultItem(faultDict map[string]any) (sovd.FaultItem, error) {
	var item sovd.FaultItem
	encoded, err := json.Marshal(faultDict)
	if err != nil {
		return item, err
	}
	if err := json.Unmarshal(encoded, &item); err != nil {
		return item, err
	}
	return item, nil
}

func formatFreezeFrame(snap sovd.FreezeFrameSnapshot) string {
	lines := []string{
		"  Snapshot: " + snap.SnapshotID,
		"    Timestamp: " + snap.Timestamp,
	}
	if snap.DataSource != "" {
		lines = append(lines, "    Source: "+snap.DataSource)
	}
	if len(snap.Data) > 0 {
		if encoded, err := json.MarshalIndent(snap.Data, "      ", "  "); err == nil {
			lines = append(lines, "    Data: "+string(encoded))
		}
	}
	return strings.Join(lines, "\n")
}

func formatRosbag(snap sovd.RosbagSnapshot) string {
	lines := []string{
		"  Snapshot: " + snap.SnapshotID,
		"    Timestamp: " + snap.Timestamp,
	}
	if snap.DataSource != "" {
		lines = append(lines, "    Source: "+snap.DataSource)
	}
	lines = append(lines, "    Download URI: "+snap.BulkDataURI)
	if snap.FileSize != nil {
		lines = append(lines, fmt.Sprintf("    File Size: %.2f MB", float64(*snap.FileSize)/(1024*1024)))
	}
	available := true
	if snap.IsAvailable != nil {
		available = *snap.IsAvailable
	}
	lines = append(lines, fmt.Sprintf("    Available: %t", available))
	return strings.Join(lines, "\n")
}

func formatEnvironmentData(env sovd.EnvironmentData) string {
	lines := []string{"\nEnvironment Data:"}

	if env.ExtendedDataRecords != nil {
		records := env.ExtendedDataRecords
		if len(records.FreezeFrameSnapshots) > 0 {
			lines = append(lines, fmt.Sprintf("  Freeze Frame Snapshots (%d):", len(records.FreezeFrameSnapshots)))
			for _, snap := range records.FreezeFrameSnapshots {
				lines = append(lines, formatFreezeFrame(snap))
			}
		}
		if len(records.RosbagSnapshots) > 0 {
			lines = append(lines, fmt.Sprintf("  Rosbag Snapshots (%d):", len(records.RosbagSnapshots)))
			for _, snap := range records.RosbagSnapshots {
				lines = append(lines, formatRosbag(snap))
			}
		}
	}

	return strings.Join(lines, "\n")
}

// formatFaultResponse renders a single-fault document. The gateway may
// nest the fault under "item" and attach environment data.
func formatFaultResponse(raw json.RawMessage) string {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return string(raw)
	}

	var lines []string

	itemRaw, hasItem := doc["item"]
	if !hasItem {
		itemRaw = raw
	}
	var item sovd.FaultItem
	if err := json.Unmarshal(itemRaw, &item); err == nil && item.Code != "" {
		lines = append(lines, formatFaultItem(item))
	} else {
		lines = append(lines, "Fault: unknown")
	}

	envRaw, ok := doc["environmentData"]
	if !ok {
		envRaw = doc["environment_data"]
	}
	if len(envRaw) > 0 {
		var env sovd.EnvironmentData
		if err := json.Unmarshal(envRaw, &env); err == nil {
			lines = append(lines, formatEnvironmentData(env))
		} else {
			lines = append(lines, "\nEnvironment Data: "+string(envRaw))
		}
	}

	if item.XMedkit != nil {
		if encoded, err := json.MarshalIndent(item.XMedkit, "", "  "); err == nil {
			lines = append(lines, "\nROS 2 MedKit Extensions: "+string(encoded))
		}
	}

	return strings.Join(lines, "\n")
}

// formatSnapshotsResponse renders an extended-data-records document.
func formatSnapshotsResponse(raw json.RawMessage) string {
	lines := []string{"Diagnostic Snapshots:"}

	var records sovd.ExtendedDataRecords
	if err := json.Unmarshal(raw, &records); err != nil {
		return "Diagnostic Snapshots:\n" + string(raw)
	}

	if len(records.FreezeFrameSnapshots) > 0 {
		lines = append(lines, fmt.Sprintf("\nFreeze Frame Snapshots (%d):", len(records.FreezeFrameSnapshots)))
		for _, snap := range records.FreezeFrameSnapshots {
			lines = append(lines, formatFreezeFrame(snap))
		}
	}
	if len(records.RosbagSnapshots) > 0 {
		lines = append(lines, fmt.Sprintf("\nRosbag Snapshots (%d):", len(records.RosbagSnapshots)))
		for _, snap := range records.RosbagSnapshots {
			lines = append(lines, formatRosbag(snap))
		}
	}
	if len(records.FreezeFrameSnapshots) == 0 && len(records.RosbagSnapshots) == 0 {
		lines = append(lines, "  No snapshots available.")
	}

	return strings.Join(lines, "\n")
}

func formatBulkDataCategories(categories []string, entityID string) string {
	if len(categories) == 0 {
		return "No bulk-data categories available for " + entityID
	}

	lines := []string{"Bulk-data categories for " + entityID + ":"}
	for _, cat := range categories {
		lines = append(lines, "  - "+cat)
	}
	return strings.Join(lines, "\n")
}

func formatBulkDataList(items []map[string]any, entityID, category string) string {
	if len(items) == 0 {
		return fmt.Sprintf("No %s available for %s", category, entityID)
	}

	lines := []string{fmt.Sprintf("Bulk-data items in %s/%s (%d total):", entityID, category, len(items))}

	for _, itemDict := range items {
		var item sovd.BulkDataItem
		encoded, _ := json.Marshal(itemDict)
		if err := json.Unmarshal(encoded, &item); err != nil || item.ID == "" {
			id, _ := itemDict["id"].(string)
			if id == "" {
				id = "unknown"
			}
			name, _ := itemDict["name"].(string)
			if name == "" {
				name = id
			}
			lines = append(lines, fmt.Sprintf("  [%s] %s", id, name))
			continue
		}

		name := item.Name
		if name == "" {
			name = item.ID
		}
		mimetype := item.Mimetype
		if mimetype == "" {
			mimetype = "application/octet-stream"
		}

		detail := mimetype
		if item.Size != nil {
			detail += fmt.Sprintf(", %.2f MB", float64(*item.Size)/(1024*1024))
		}
		if item.CreationDate != "" {
			date := item.CreationDate
			if len(date) > 10 {
				date = date[:10]
			}
			detail += ", created " + date
		}

		lines = append(lines, fmt.Sprintf("  [%s] %s (%s)", item.ID, name, detail))
	}

	return strings.Join(lines, "\n")
}

func formatBulkDataInfo(info *sovd.BulkDataInfo) string {
	lines := []string{"Bulk-data info for: " + info.URI}

	if info.Filename != "" {
		lines = append(lines, "  Filename: "+info.Filename)
	}
	lines = append(lines, "  Content-Type: "+info.ContentType)
	if info.ContentLength > 0 {
		lines = append(lines, fmt.Sprintf("  Size: %.2f MB (%d bytes)",
			float64(info.ContentLength)/(1024*1024), info.ContentLength))
	}

	return strings.Join(lines, "\n")
}

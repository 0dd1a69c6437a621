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

// Package cli assembles the sovd-mcp command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// Version information, injected via ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// SetVersion sets the version information (called from main).
func SetVersion(v, c, b string) {
	version, commit, buildDate = v, c, b
}

// GetVersion returns version information.
func GetVersion() (string, string, string) {
	return version, commit, buildDate
}

// NewRootCommand creates the root Cobra command for the SOVD MCP adapter.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sovd-mcp",
		Short: "MCP server for ROS 2 MedKit SOVD diagnostics",
		Long: `sovd-mcp exposes a ros2_medkit SOVD diagnostic gateway as MCP
(Model Context Protocol) tools, so AI assistants can discover robot
entities, inspect and clear faults, read and publish topic data, run
diagnostic operations, manage parameters, and download rosbag
recordings.

Configure the gateway connection through environment variables:
  ROS2_MEDKIT_BASE_URL       Gateway base URL (default: http://localhost:8080/api/v1)
  ROS2_MEDKIT_BEARER_TOKEN   Optional Bearer token for authentication
  ROS2_MEDKIT_TIMEOUT_S      HTTP timeout in seconds (default: 30)

Run 'sovd-mcp serve' to start the server on stdio.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	return cmd
}

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

package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{0, "error"},
		{200, "2xx"},
		{204, "2xx"},
		{304, "3xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResponseClass(tt.status), "status %d", tt.status)
	}
}

func TestHandler_ExposesCounters(t *testing.T) {
	m := New()
	m.GatewayRequests.WithLabelValues("GET", "2xx").Inc()
	m.ToolCalls.WithLabelValues("sovd_list_components", "ok").Inc()
	m.ExecutionPolls.WithLabelValues("succeeded").Inc()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "sovd_mcp_gateway_requests_total")
	assert.Contains(t, string(body), "sovd_mcp_tool_calls_total")
	assert.Contains(t, string(body), "sovd_mcp_execution_polls_total")
}

func TestNew_IsolatedRegistries(t *testing.T) {
	// Two instances must not share collectors or panic on double
	// registration.
	a := New()
	b := New()
	assert.NotSame(t, a.Registry(), b.Registry())
}

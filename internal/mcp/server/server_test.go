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
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ros2-medkit/sovd-mcp/internal/config"
	"github.com/ros2-medkit/sovd-mcp/internal/sovd"
)

// newTestServer wires a Server against a fake gateway and counts every
// request that reaches it.
func newTestServer(t *testing.T, handler http.HandlerFunc) (*Server, *atomic.Int64) {
	t.Helper()

	var requests atomic.Int64
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		handler(w, r)
	}))
	t.Cleanup(gateway.Close)

	client, err := sovd.NewClient(config.Settings{
		BaseURL: gateway.URL,
		Timeout: 5 * time.Second,
	}, sovd.WithHTTPClient(gateway.Client()))
	require.NoError(t, err)

	s, err := NewServer(ServerConfig{Client: client, Version: "test"})
	require.NoError(t, err)
	return s, &requests
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	return request
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestNewServer_RequiresClient(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client is required")
}

func TestValidationFailureMakesNoGatewayCall(t *testing.T) {
	s, requests := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{
			name: "unknown entity type",
			args: map[string]any{"entity_id": "motor", "entity_type": "robots"},
			want: "invalid entity_type",
		},
		{
			name: "path traversal in entity id",
			args: map[string]any{"entity_id": "../secrets"},
			want: "invalid entity_id",
		},
		{
			name: "missing entity id",
			args: map[string]any{},
			want: "invalid entity_id",
		},
		{
			name: "non-string entity type",
			args: map[string]any{"entity_id": "motor", "entity_type": 3},
			want: "invalid entity_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleFaultsList(context.Background(), callRequest(tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
		})
	}

	assert.Equal(t, int64(0), requests.Load(), "validation failures must not reach the gateway")
}

func TestHandleFaultsList_FormatsResponse(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/components/motor/faults", r.URL.Path)
		w.Write([]byte(`{"faults": [{"code": "P0420", "severity": "high"}]}`))
	})

	result, err := s.handleFaultsList(context.Background(), callRequest(map[string]any{
		"entity_id": "motor",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Found 1 fault(s):")
	assert.Contains(t, text, "Fault: P0420")
	assert.Contains(t, text, "Severity: high")
}

func TestHandleFaultsGet_GatewayErrorPassthrough(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "fault not found"}`))
	})

	result, err := s.handleFaultsGet(context.Background(), callRequest(map[string]any{
		"entity_id": "motor",
		"fault_id":  "NOPE",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "404")
	assert.Contains(t, text, "fault not found")
}

func TestHandlePublishTopic_ForwardsBody(t *testing.T) {
	var gotBody []byte
	var gotMethod string
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"status": "published"}`))
	})

	result, err := s.handlePublishTopic(context.Background(), callRequest(map[string]any{
		"entity_id":  "motor",
		"topic_name": "cmd_vel",
		"data":       map[string]any{"linear": map[string]any{"x": 0.5}},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.JSONEq(t, `{"linear": {"x": 0.5}}`, string(gotBody))
}

func TestHandlePublishTopic_RejectsNonObjectData(t *testing.T) {
	s, requests := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	result, err := s.handlePublishTopic(context.Background(), callRequest(map[string]any{
		"entity_id":  "motor",
		"topic_name": "cmd_vel",
		"data":       "not an object",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "must be a JSON object")
	assert.Equal(t, int64(0), requests.Load())
}

func TestHandleBulkDataDownload_SavesFile(t *testing.T) {
	payload := []byte("mcap-bytes")
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="snap-1.mcap"`)
		w.Write(payload)
	})

	dir := t.TempDir()
	result, err := s.handleBulkDataDownload(context.Background(), callRequest(map[string]any{
		"bulk_data_uri": "/apps/motor/bulk-data/rosbags/snap-1",
		"output_dir":    dir,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Downloaded successfully!")
	assert.Contains(t, text, "snap-1.mcap")

	content, err := os.ReadFile(filepath.Join(dir, "snap-1.mcap"))
	require.NoError(t, err)
	assert.Equal(t, payload, content)
}

func TestHandleHealthz(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	s.handleHealthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"service":"sovd-mcp"`)
	assert.Contains(t, rec.Body.String(), `"sovd_url"`)
}

func TestHandleHealthz_MethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	s.handleHealthz(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSaveBulkDataFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("uses provided filename", func(t *testing.T) {
		path, err := saveBulkDataFile([]byte("x"), "recording.mcap", "/uri", dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "recording.mcap"), path)
	})

	t.Run("derives filename from uri", func(t *testing.T) {
		path, err := saveBulkDataFile([]byte("x"), "", "/apps/motor/bulk-data/rosbags/snap-9", dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "snap-9.mcap"), path)
	})

	t.Run("strips directory components from filename", func(t *testing.T) {
		path, err := saveBulkDataFile([]byte("x"), "../../etc/passwd", "/uri", dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "passwd"), path)
	})
}

type fakeToolset struct {
	name    string
	started atomic.Bool
	stopped atomic.Bool
}

func (f *fakeToolset) Name() string { return f.name }

func (f *fakeToolset) Tools() []mcp.Tool {
	return []mcp.Tool{{Name: "custom_echo", Description: "echo"}}
}

func (f *fakeToolset) CallTool(ctx context.Context, name string, arguments map[string]any) (*mcp.CallToolResult, error) {
	return textResponse("echo:" + name), nil
}

func (f *fakeToolset) Startup(ctx context.Context) error {
	f.started.Store(true)
	return nil
}

func (f *fakeToolset) Shutdown(ctx context.Context) error {
	f.stopped.Store(true)
	return nil
}

func TestServeStdio_StopsOnContextCancel(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	// A pipe that never delivers data stands in for an idle client; only
	// the context cancellation can end the serve loop.
	in, inWriter := io.Pipe()
	t.Cleanup(func() { _ = inWriter.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.serveStdio(ctx, in, io.Discard)
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stdio server did not stop after context cancellation")
	}
}

func TestToolsetLifecycle(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(gateway.Close)

	client, err := sovd.NewClient(config.Settings{
		BaseURL: gateway.URL,
		Timeout: 5 * time.Second,
	}, sovd.WithHTTPClient(gateway.Client()))
	require.NoError(t, err)

	ts := &fakeToolset{name: "custom"}
	s, err := NewServer(ServerConfig{Client: client, Toolsets: []Toolset{ts}})
	require.NoError(t, err)

	require.NoError(t, s.Shutdown(context.Background()))
	assert.True(t, ts.stopped.Load())
}

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
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ros2-medkit/sovd-mcp/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.Settings{
		BaseURL:     srv.URL,
		BearerToken: "test-token",
		Timeout:     5 * time.Second,
	}, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return client, srv
}

func TestDo_SendsBearerToken(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"version":"1.0"}`))
	}))

	_, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestDo_GatewayErrorCarriesStatusAndBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"no such component"}`))
	}))

	_, err := client.GetComponent(context.Background(), "ghost")
	require.Error(t, err)

	var ge *GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, 404, ge.Status)
	assert.True(t, ge.NotFound())
	assert.Contains(t, ge.Body, "no such component")
	assert.True(t, IsNotFound(err))
}

func TestDo_UnreachableGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client, err := NewClient(config.Settings{BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)

	_, err = client.Health(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnreachable(err))
}

func TestDo_InvalidJSONBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))

	_, err := client.Version(context.Background())
	require.Error(t, err)

	var ge *GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Contains(t, ge.Body, "invalid JSON")
}

func TestListComponents_Normalization(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "bare array", body: `[{"id":"a"},{"id":"b"}]`, want: 2},
		{name: "collection key envelope", body: `{"components":[{"id":"a"}]}`, want: 1},
		{name: "items envelope", body: `{"items":[{"id":"a"},{"id":"b"},{"id":"c"}]}`, want: 3},
		{name: "single object", body: `{"id":"solo"}`, want: 1},
		{name: "null body", body: `null`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))

			list, err := client.ListComponents(context.Background())
			require.NoError(t, err)
			assert.Len(t, list, tt.want)
		})
	}
}

func TestListFaults_UnwrapsFaultsKey(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/components/engine/faults", r.URL.Path)
		w.Write([]byte(`{"faults":[{"code":"P0300"},{"code":"P0171"}]}`))
	}))

	faults, err := client.ListFaults(context.Background(), EntityComponents, "engine")
	require.NoError(t, err)
	require.Len(t, faults, 2)
	assert.Equal(t, "P0300", faults[0]["code"])
}

func TestPublishTopic_BodyForwardedByteForByte(t *testing.T) {
	payload := json.RawMessage(`{"temperature": 92.5, "unit":"C"}`)

	var gotBody []byte
	var gotMethod, gotPath, gotContentType string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"published":true}`))
	}))

	_, err := client.PublishTopic(context.Background(), EntityComponents, "engine", "temperature", payload)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/components/engine/data/temperature", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, []byte(payload), gotBody, "payload must pass through unmodified")
}

func TestSetConfiguration_WrapsValue(t *testing.T) {
	var gotBody []byte
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{}`))
	}))

	_, err := client.SetConfiguration(context.Background(), EntityApps, "motor", "max_rpm", 4500)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value": 4500}`, string(gotBody))
}

func TestCreateExecution_ParametersEnvelope(t *testing.T) {
	var gotBody []byte
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"id":"exec-1","status":"pending"}`))
	}))

	_, err := client.CreateExecution(context.Background(), EntityComponents, "engine", "self_test", map[string]any{"depth": "full"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"parameters":{"depth":"full"}}`, string(gotBody))
}

func TestCreateExecution_NoBodyWithoutRequestData(t *testing.T) {
	var gotBody []byte
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"id":"exec-1","status":"pending"}`))
	}))

	_, err := client.CreateExecution(context.Background(), EntityComponents, "engine", "self_test", nil)
	require.NoError(t, err)
	assert.Empty(t, gotBody)
}

func TestGetEntity_FindsAcrossCollections(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/areas":
			w.Write([]byte(`{"areas":[{"id":"powertrain","type":"Area"}]}`))
		case "/apps":
			w.Write([]byte(`{"apps":[{"id":"motor_node","type":"App"}]}`))
		default:
			w.Write([]byte(`[]`))
		}
	}))

	entity, err := client.GetEntity(context.Background(), "motor_node")
	require.NoError(t, err)
	assert.Equal(t, "App", entity["type"])

	_, err = client.GetEntity(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestListEntities_SkipsFailingCollections(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/components":
			w.Write([]byte(`[{"id":"engine"}]`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))

	entities, err := client.ListEntities(context.Background())
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "engine", entities[0]["id"])
}

func TestGetBulkDataInfo_FromHeaders(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, "/apps/motor/bulk-data/rosbags/abc", r.URL.Path)
		w.Header().Set("Content-Type", "application/x-mcap")
		w.Header().Set("Content-Disposition", `attachment; filename="fault_recording.mcap"`)
		w.Header().Set("Content-Length", "2048")
	}))

	info, err := client.GetBulkDataInfo(context.Background(), "/apps/motor/bulk-data/rosbags/abc")
	require.NoError(t, err)
	assert.Equal(t, "application/x-mcap", info.ContentType)
	assert.Equal(t, "fault_recording.mcap", info.Filename)
	assert.Equal(t, int64(2048), info.ContentLength)
}

func TestDownloadBulkData(t *testing.T) {
	content := []byte("mcap-bytes")
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="rec.mcap"`)
		w.Write(content)
	}))

	got, filename, err := client.DownloadBulkData(context.Background(), "/apps/motor/bulk-data/rosbags/abc")
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, "rec.mcap", filename)
}

func TestListBulkDataCategories(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apps/motor/bulk-data", r.URL.Path)
		w.Write([]byte(`{"items":["rosbags","logs"]}`))
	}))

	cats, err := client.ListBulkDataCategories(context.Background(), EntityApps, "motor")
	require.NoError(t, err)
	assert.Equal(t, []string{"rosbags", "logs"}, cats)
}

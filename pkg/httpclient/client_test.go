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

package httpclient

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "default config is valid",
			cfg:     DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "zero timeout",
			cfg:     Config{Timeout: 0, UserAgent: "test/1.0"},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			cfg:     Config{Timeout: -time.Second, UserAgent: "test/1.0"},
			wantErr: true,
		},
		{
			name:    "empty user agent",
			cfg:     Config{Timeout: time.Second},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestNew_InjectsHeaders(t *testing.T) {
	var gotUA, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get(RequestIDHeader)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := New(Config{Timeout: 5 * time.Second, UserAgent: "sovd-mcp-test/0.1"})
	require.NoError(t, err)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "sovd-mcp-test/0.1", gotUA)
	assert.NotEmpty(t, gotRequestID, "expected a generated request ID")
}

func TestNew_PreservesCallerRequestID(t *testing.T) {
	var gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get(RequestIDHeader)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := New(DefaultConfig())
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "caller-supplied")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "caller-supplied", gotRequestID)
}

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no query",
			in:   "https://gateway.local/api/v1/components",
			want: "https://gateway.local/api/v1/components",
		},
		{
			name: "token redacted",
			in:   "https://gateway.local/areas?token=secret123",
			want: "https://gateway.local/areas?token=%5BREDACTED%5D",
		},
		{
			name: "mixed case api key redacted",
			in:   "https://gateway.local/faults?API_KEY=abc&status=active",
			want: "https://gateway.local/faults?API_KEY=%5BREDACTED%5D&status=active",
		},
		{
			name: "benign params untouched",
			in:   "https://gateway.local/components/engine/data?limit=10",
			want: "https://gateway.local/components/engine/data?limit=10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sanitizeURL(u))
		})
	}
}

func TestSanitizeURL_Nil(t *testing.T) {
	assert.Equal(t, "", sanitizeURL(nil))
}

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

package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvBearerToken, "")
	t.Setenv(EnvTimeout, "")
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	s, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, s.BaseURL)
	assert.Empty(t, s.BearerToken)
	assert.Equal(t, DefaultTimeout, s.Timeout)
}

func TestFromEnv_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBaseURL, "https://gateway.example.com/api/v1/")
	t.Setenv(EnvBearerToken, "secret-token")
	t.Setenv(EnvTimeout, "2.5")

	s, err := FromEnv()
	require.NoError(t, err)

	// Trailing slash is trimmed so path joins stay clean.
	assert.Equal(t, "https://gateway.example.com/api/v1", s.BaseURL)
	assert.Equal(t, "secret-token", s.BearerToken)
	assert.Equal(t, 2500*time.Millisecond, s.Timeout)
}

func TestFromEnv_InvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTimeout, "not-a-number")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvTimeout)
}

func TestFromEnv_BlankTimeoutFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTimeout, "   ")

	s, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, s.Timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       Settings
		wantErr string
	}{
		{
			name: "valid http",
			s:    Settings{BaseURL: "http://localhost:8080/api/v1", Timeout: time.Second},
		},
		{
			name:    "empty base URL",
			s:       Settings{Timeout: time.Second},
			wantErr: "base URL is required",
		},
		{
			name:    "bad scheme",
			s:       Settings{BaseURL: "ftp://host/api", Timeout: time.Second},
			wantErr: "must use http or https",
		},
		{
			name:    "missing host",
			s:       Settings{BaseURL: "http://", Timeout: time.Second},
			wantErr: "has no host",
		},
		{
			name:    "zero timeout",
			s:       Settings{BaseURL: "http://localhost:8080", Timeout: 0},
			wantErr: "timeout must be > 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRedacted(t *testing.T) {
	s := Settings{BaseURL: "http://localhost:8080/api/v1", BearerToken: "hunter2", Timeout: time.Second}
	out := s.Redacted()

	assert.False(t, strings.Contains(out, "hunter2"), "token leaked into %q", out)
	assert.Contains(t, out, "http://localhost:8080/api/v1")
}

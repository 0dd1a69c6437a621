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

// Package config loads adapter settings from environment variables.
//
// Settings are read once at process start and passed by value; there is
// no hot reload and no hidden global.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names recognized by the adapter.
const (
	// EnvBaseURL sets the base URL of the ros2_medkit SOVD gateway.
	EnvBaseURL = "ROS2_MEDKIT_BASE_URL"
	// EnvBearerToken sets the optional Bearer token for gateway authentication.
	EnvBearerToken = "ROS2_MEDKIT_BEARER_TOKEN"
	// EnvTimeout sets the HTTP request timeout in seconds (fractional allowed).
	EnvTimeout = "ROS2_MEDKIT_TIMEOUT_S"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultBaseURL = "http://localhost:8080/api/v1"
	DefaultTimeout = 30 * time.Second
)

// Settings holds the adapter configuration. The struct is immutable by
// convention: it is constructed once in FromEnv and only ever copied.
type Settings struct {
	// BaseURL is the base URL of the SOVD gateway, without trailing slash.
	BaseURL string

	// BearerToken is the optional token sent as "Authorization: Bearer".
	// Empty means no authentication header.
	BearerToken string

	// Timeout is the per-request HTTP timeout for gateway calls.
	Timeout time.Duration
}

// FromEnv builds Settings from the current environment.
// It returns an error for values that are present but unparseable.
func FromEnv() (Settings, error) {
	s := Settings{
		BaseURL:     DefaultBaseURL,
		BearerToken: os.Getenv(EnvBearerToken),
		Timeout:     DefaultTimeout,
	}

	if v := os.Getenv(EnvBaseURL); v != "" {
		s.BaseURL = v
	}
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")

	if raw := strings.TrimSpace(os.Getenv(EnvTimeout)); raw != "" {
		secs, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Settings{}, fmt.Errorf("%s must be numeric, got %q", EnvTimeout, raw)
		}
		s.Timeout = time.Duration(secs * float64(time.Second))
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks that the settings are usable.
func (s Settings) Validate() error {
	if s.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}

	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", s.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL %q must use http or https", s.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base URL %q has no host", s.BaseURL)
	}

	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %v", s.Timeout)
	}

	return nil
}

// Redacted returns a loggable description of the settings with the
// bearer token masked.
func (s Settings) Redacted() string {
	token := "(none)"
	if s.BearerToken != "" {
		token = "(set)"
	}
	return fmt.Sprintf("base_url=%s bearer_token=%s timeout=%s", s.BaseURL, token, s.Timeout)
}

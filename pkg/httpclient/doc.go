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

// Package httpclient provides the HTTP client factory used for all
// outbound gateway calls.
//
// The factory composes transport layers to provide:
//   - Request logging with sanitized URLs (sensitive params redacted)
//   - User-Agent header injection
//   - X-Request-ID injection for correlating adapter and gateway logs
//   - TLS 1.2+ with secure defaults
//   - Connection pooling shared by concurrent tool invocations
//
// There is deliberately no retry layer: the gateway owns mutable state
// (fault clears, parameter sets, execution creation), so every call is a
// single fresh round trip and retry decisions are left to the caller.
//
// Example usage:
//
//	cfg := httpclient.DefaultConfig()
//	cfg.Timeout = settings.Timeout
//	client, err := httpclient.New(cfg)
//	if err != nil {
//	    return err
//	}
package httpclient

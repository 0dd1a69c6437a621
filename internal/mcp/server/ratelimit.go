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

import "golang.org/x/time/rate"

// RateLimiter bounds MCP tool traffic. All calls draw from the call
// bucket; tools that mutate gateway state (fault clears, parameter
// writes, execution control) additionally draw from the mutation bucket.
type RateLimiter struct {
	mutations *rate.Limiter
	calls     *rate.Limiter
}

// NewRateLimiter creates a rate limiter with per-minute budgets.
func NewRateLimiter(mutationsPerMinute, callsPerMinute int) *RateLimiter {
	return &RateLimiter{
		mutations: rate.NewLimiter(rate.Limit(float64(mutationsPerMinute)/60.0), mutationsPerMinute),
		calls:     rate.NewLimiter(rate.Limit(float64(callsPerMinute)/60.0), callsPerMinute),
	}
}

// AllowCall checks if any tool call is allowed.
func (rl *RateLimiter) AllowCall() bool {
	return rl.calls.Allow()
}

// AllowMutation checks if a state-changing tool call is allowed.
func (rl *RateLimiter) AllowMutation() bool {
	return rl.mutations.Allow()
}

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

// Package metrics exposes Prometheus instrumentation for the adapter:
// gateway round trips, tool invocations, and execution poll outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the adapter's Prometheus collectors on a private registry
// so tests can create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	// GatewayRequests counts SOVD gateway round trips by method and
	// response class ("2xx", "4xx", "5xx", "error").
	GatewayRequests *prometheus.CounterVec

	// GatewayDuration observes gateway round-trip latency in seconds.
	GatewayDuration *prometheus.HistogramVec

	// ToolCalls counts MCP tool invocations by tool name and outcome
	// ("ok", "validation_error", "gateway_error", "transport_error").
	ToolCalls *prometheus.CounterVec

	// ExecutionPolls counts execution poller terminations by outcome
	// ("succeeded", "failed", "cancelled", "timeout", "context").
	ExecutionPolls *prometheus.CounterVec
}

// New creates a Metrics instance with all collectors registered on a
// fresh registry, including the standard Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sovd_mcp",
			Name:      "gateway_requests_total",
			Help:      "SOVD gateway HTTP requests by method and response class.",
		}, []string{"method", "class"}),
		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sovd_mcp",
			Name:      "gateway_request_duration_seconds",
			Help:      "SOVD gateway request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sovd_mcp",
			Name:      "tool_calls_total",
			Help:      "MCP tool invocations by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		ExecutionPolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sovd_mcp",
			Name:      "execution_polls_total",
			Help:      "Operation execution poll loops by terminal outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.GatewayRequests, m.GatewayDuration, m.ToolCalls, m.ExecutionPolls)
	return m
}

// Handler returns an http.Handler serving the registry in the Prometheus
// text exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for test assertions.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ResponseClass buckets an HTTP status code into the label value used by
// GatewayRequests. A status of 0 means the request never completed.
func ResponseClass(status int) string {
	switch {
	case status == 0:
		return "error"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

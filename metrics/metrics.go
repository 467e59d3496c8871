/*
 * Copyright 2024 caiflower Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package metrics wires the session layer up to Prometheus, the way
// the ambient stack wires every other long-lived collaborator in this
// module.
package metrics

import (
	"github.com/caiflower/httpws/global/env"
	"github.com/prometheus/client_golang/prometheus"
)

// HttpMetric tracks per-request counters and a cost histogram, labeled
// by method and status class (2xx/3xx/4xx/5xx); the request path is not
// a label.
type HttpMetric struct {
	requestTotal  *prometheus.CounterVec
	costHistogram *prometheus.HistogramVec
}

// NewHttpMetric registers and returns a metric set. Call once per
// process; registering twice panics, matching prometheus.Register's own
// contract.
func NewHttpMetric() *HttpMetric {
	constLabels := prometheus.Labels{"ip": env.GetLocalHostIP()}

	m := &HttpMetric{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_request_total",
			Help:        "total HTTP requests served",
			ConstLabels: constLabels,
		}, []string{"method", "status"}),
		costHistogram: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_ms",
			Help:        "HTTP request handling duration in milliseconds",
			Buckets:     []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000},
			ConstLabels: constLabels,
		}, []string{"method", "status"}),
	}

	prometheus.MustRegister(m.requestTotal)
	prometheus.MustRegister(m.costHistogram)

	return m
}

// Observe records one completed HTTP request.
func (m *HttpMetric) Observe(method string, status int, costMillis float64) {
	statusStr := statusLabel(status)
	m.requestTotal.WithLabelValues(method, statusStr).Inc()
	m.costHistogram.WithLabelValues(method, statusStr).Observe(costMillis)
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// WSMetric tracks how many WebSocket sessions are active and how many
// frames have moved in each direction.
type WSMetric struct {
	sessionsActive prometheus.Gauge
	framesTotal    *prometheus.CounterVec
}

func NewWSMetric() *WSMetric {
	constLabels := prometheus.Labels{"ip": env.GetLocalHostIP()}

	m := &WSMetric{
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "ws_sessions_active",
			Help:        "currently open WebSocket sessions",
			ConstLabels: constLabels,
		}),
		framesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "ws_frames_total",
			Help:        "WebSocket frames processed",
			ConstLabels: constLabels,
		}, []string{"direction", "opcode"}),
	}

	prometheus.MustRegister(m.sessionsActive)
	prometheus.MustRegister(m.framesTotal)

	return m
}

func (m *WSMetric) SessionOpened() {
	m.sessionsActive.Inc()
}

func (m *WSMetric) SessionClosed() {
	m.sessionsActive.Dec()
}

func (m *WSMetric) FrameObserved(direction, opcode string) {
	m.framesTotal.WithLabelValues(direction, opcode).Inc()
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package metrics exposes Prometheus counters for the bridge.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "myo_osc",
			Subsystem: "osc",
			Name:      "messages_total",
			Help:      "OSC messages handed to the transport, by address.",
		},
		[]string{"address"},
	)
	messageBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "myo_osc",
			Subsystem: "osc",
			Name:      "bytes_total",
			Help:      "Encoded OSC bytes handed to the transport.",
		},
	)
	sendErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "myo_osc",
			Subsystem: "transport",
			Name:      "send_errors_total",
			Help:      "Failed datagram sends, by sink.",
		},
		[]string{"sink"},
	)
	disconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "myo_osc",
			Subsystem: "device",
			Name:      "disconnects_total",
			Help:      "Device disconnect events.",
		},
	)
)

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(messages, messageBytes, sendErrors, disconnects)
	})
}

// RecordMessage counts one encoded message of size bytes.
func RecordMessage(address string, size int) {
	Register()
	messages.WithLabelValues(address).Inc()
	messageBytes.Add(float64(size))
}

func RecordSendError(sink string) {
	Register()
	sendErrors.WithLabelValues(sink).Inc()
}

func RecordDisconnect() {
	Register()
	disconnects.Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

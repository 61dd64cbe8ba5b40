// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package metrics records cipher service and HTTP traffic in prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation label values.
const (
	OperationEncrypt = "encrypt"
	OperationDecrypt = "decrypt"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// CipherMetrics records the outcome of cipher service calls.
type CipherMetrics interface {
	// RecordOperation counts one call with its status.
	RecordOperation(operation, status string)

	// RecordDuration observes how long one call took.
	RecordDuration(operation string, d time.Duration, status string)

	// RecordBatchSize observes how many values one call carried.
	RecordBatchSize(operation string, size int)
}

type cipherMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	batchSize  *prometheus.HistogramVec
}

// NewCipherMetrics registers the cipher collectors with registry.
func NewCipherMetrics(registry prometheus.Registerer) CipherMetrics {
	factory := promauto.With(registry)

	return &cipherMetrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cixvault",
			Subsystem: "cipher",
			Name:      "operations_total",
			Help:      "Total number of cipher service calls.",
		}, []string{"operation", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cixvault",
			Subsystem: "cipher",
			Name:      "operation_duration_seconds",
			Help:      "Duration of cipher service calls in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "status"}),
		batchSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cixvault",
			Subsystem: "cipher",
			Name:      "batch_size",
			Help:      "Number of values sent in one cipher service call.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"operation"}),
	}
}

func (m *cipherMetrics) RecordOperation(operation, status string) {
	m.operations.WithLabelValues(operation, status).Inc()
}

func (m *cipherMetrics) RecordDuration(operation string, d time.Duration, status string) {
	m.duration.WithLabelValues(operation, status).Observe(d.Seconds())
}

func (m *cipherMetrics) RecordBatchSize(operation string, size int) {
	m.batchSize.WithLabelValues(operation).Observe(float64(size))
}

// Nop returns a CipherMetrics that records nothing.
func Nop() CipherMetrics {
	return nopMetrics{}
}

type nopMetrics struct{}

func (nopMetrics) RecordOperation(string, string) {}
func (nopMetrics) RecordDuration(string, time.Duration, string) {}
func (nopMetrics) RecordBatchSize(string, int) {}

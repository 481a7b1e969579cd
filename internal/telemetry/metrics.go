// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "thornmark"

// Registry is the Prometheus registry thornmark's metrics register
// against; tests can swap in a fresh registry per case if needed.
var Registry = prometheus.NewRegistry()

var (
	// IdentityOperations counts identity-manager operations (generate,
	// load, make_backup) by outcome.
	IdentityOperations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identity",
			Name:      "operations_total",
			Help:      "Total number of identity manager operations",
		},
		[]string{"operation", "outcome"},
	)

	// VaultOperations is registered for self-encryption operations;
	// no package increments it.
	VaultOperations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "vault",
			Name:      "operations_total",
			Help:      "Total number of self-encryption vault operations",
		},
		[]string{"operation", "outcome"}, // encrypt_to_self/decrypt_from_self, ok/error
	)

	// ThreadOperations counts thread-engine operations by kind and
	// outcome: create_invitation, reply_to_invitation, reply_to_thread,
	// append_thread.
	ThreadOperations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "thread",
			Name:      "operations_total",
			Help:      "Total number of thread engine operations",
		},
		[]string{"operation", "outcome"},
	)

	// ThreadOperationDuration tracks thread engine operation latency.
	ThreadOperationDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "thread",
			Name:      "operation_duration_seconds",
			Help:      "Thread engine operation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~0.8s
		},
		[]string{"operation"},
	)

	// CryptoOperations is registered for low-level crypto primitive
	// calls; no package increments it.
	CryptoOperations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crypto",
			Name:      "operations_total",
			Help:      "Total number of cryptographic primitive operations",
		},
		[]string{"operation"}, // sign/verify/derive/wrap/unwrap
	)

	// StorageOperations is registered for storage.Store calls by
	// backend; no package increments it.
	StorageOperations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "Total number of storage backend operations",
		},
		[]string{"backend", "operation", "outcome"},
	)
)

// Handler serves Registry's metrics in Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// StartServer runs a standalone metrics HTTP server on addr, blocking
// until it errors out.
func StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}

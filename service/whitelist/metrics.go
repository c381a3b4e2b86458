// Copyright 2016-2025 Fraunhofer AISEC
//
// SPDX-License-Identifier: Apache-2.0
//
//                                 /$$$$$$  /$$                                     /$$
//                               /$$__  $$|__/                                    | $$
//   /$$$$$$$  /$$$$$$  /$$$$$$$ | $$  \__/ /$$  /$$$$$$  /$$$$$$/$$$$   /$$$$$$  /$$$$$$    /$$$$$$
//  /$$_____/ /$$__  $$| $$__  $$| $$$$    | $$ /$$__  $$| $$_  $$_  $$ |____  $$|_  $$_/   /$$__  $$
// | $$      | $$  \ $$| $$  \ $$| $$_/    | $$| $$  \__/| $$ \ $$ \ $$  /$$$$$$$  | $$    | $$$$$$$$
// | $$      | $$  | $$| $$  | $$| $$      | $$| $$      | $$ | $$ | $$ /$$__  $$  | $$ /$$| $$_____/
// |  $$$$$$$|  $$$$$$/| $$  | $$| $$      | $$| $$      | $$ | $$ | $$|  $$$$$$$  |  $$$$/|  $$$$$$$
// \_______/ \______/ |__/  |__/|__/      |__/|__/      |__/ |__/ |__/ \_______/   \___/   \_______/
//
// This file is part of Confirmate Posture.

package whitelist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Evaluation outcomes used as the "result" label of [Metrics.Evaluations].
const (
	resultWhited    = "whited"
	resultNotWhited = "not_whited"
	resultError     = "error"
)

// Metrics holds the Prometheus collectors of the whitelist service.
type Metrics struct {
	// Evaluations counts evaluated scan results by outcome.
	Evaluations *prometheus.CounterVec
}

// NewMetrics registers the collectors of the whitelist service and the statistics of c on reg. A
// nil registry registers them on a private one.
func NewMetrics(reg prometheus.Registerer, c *TenantConfigCache) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	factory := promauto.With(reg)

	stat := func(f func(s CacheStats) uint64) func() float64 {
		return func() float64 {
			return float64(f(c.Stats()))
		}
	}

	factory.NewCounterFunc(prometheus.CounterOpts{
		Name: "posture_whitelist_cache_hits_total",
		Help: "Total number of tenant lookups served from the whitelist cache.",
	}, stat(func(s CacheStats) uint64 { return s.Hits }))

	factory.NewCounterFunc(prometheus.CounterOpts{
		Name: "posture_whitelist_cache_misses_total",
		Help: "Total number of tenant lookups that required a load.",
	}, stat(func(s CacheStats) uint64 { return s.Misses }))

	factory.NewCounterFunc(prometheus.CounterOpts{
		Name: "posture_whitelist_cache_loads_total",
		Help: "Total number of successful loads of tenant configs.",
	}, stat(func(s CacheStats) uint64 { return s.Loads }))

	factory.NewCounterFunc(prometheus.CounterOpts{
		Name: "posture_whitelist_cache_load_errors_total",
		Help: "Total number of loads that failed after all retries.",
	}, stat(func(s CacheStats) uint64 { return s.LoadErrors }))

	factory.NewCounterFunc(prometheus.CounterOpts{
		Name: "posture_whitelist_cache_evictions_total",
		Help: "Total number of evicted tenant entries.",
	}, stat(func(s CacheStats) uint64 { return s.Evictions }))

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "posture_whitelist_cache_size",
		Help: "Current number of cached tenants.",
	}, func() float64 {
		return float64(c.Stats().Size)
	})

	return &Metrics{
		Evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "posture_whitelist_evaluations_total",
			Help: "Total number of evaluated scan results by outcome.",
		}, []string{"result"}),
	}
}

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
	"time"

	"confirmate.io/posture/persistence"
)

// DefaultCacheConfig is the default configuration of the [TenantConfigCache].
var DefaultCacheConfig = CacheConfig{
	CacheExpiration: 300000 * time.Millisecond,
	MaxCacheSize:    10000,
	QueryPageSize:   100,
	MaxQueryPages:   1000,
	RetryAttempts:   3,
	RetryDelay:      100 * time.Millisecond,
}

// CacheConfig configures the [TenantConfigCache].
type CacheConfig struct {
	// CacheExpiration is the time after which a cached tenant entry is loaded again.
	CacheExpiration time.Duration

	// MaxCacheSize is the maximum number of cached tenants.
	MaxCacheSize int

	// QueryPageSize is the number of configs that are requested from the store at once.
	QueryPageSize int

	// MaxQueryPages caps the number of pages of a single load.
	MaxQueryPages int

	// RetryAttempts is the number of attempts to load the configs of a tenant.
	RetryAttempts uint

	// RetryDelay is the initial delay between two attempts. It doubles with every attempt.
	RetryDelay time.Duration
}

// DefaultConfig is the default configuration for the whitelist [Service].
var DefaultConfig = Config{
	Cache:             DefaultCacheConfig,
	PersistenceConfig: persistence.DefaultConfig,
	StatsInterval:     5 * time.Minute,
}

// Config represents the configuration for the whitelist [Service].
type Config struct {
	// Cache is the configuration of the tenant config cache.
	Cache CacheConfig

	// PersistenceConfig is the configuration for the persistence layer. If not set, defaults will be used.
	PersistenceConfig persistence.Config

	// StatsInterval is the interval in which the cache statistics are logged. Zero disables the
	// log.
	StatsInterval time.Duration
}

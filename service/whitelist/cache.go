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
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"confirmate.io/posture/api/whitelist"

	"github.com/avast/retry-go/v5"
	"github.com/goburrow/cache"
	"golang.org/x/sync/singleflight"
)

// CacheStats is a point-in-time view of the counters of a [TenantConfigCache].
type CacheStats struct {
	Hits       uint64
	Misses     uint64
	Loads      uint64
	LoadErrors uint64
	Evictions  uint64
	Size       int
}

// tenantEntry holds the enabled configs of one tenant together with the global tenant's configs.
// An entry is only valid as long as neither the global epoch nor the tenant's version moved since it
// was loaded.
type tenantEntry struct {
	configs   []whitelist.WhitedRuleConfig
	expiresAt time.Time
	epoch     uint64
	version   uint64
}

// TenantConfigCache caches the enabled whitelist configs per tenant. Entries expire after
// [CacheConfig.CacheExpiration], the number of tenants is bounded by [CacheConfig.MaxCacheSize] and
// concurrent misses of one tenant share a single load.
//
// Callers always receive their own copy of the cached configs.
type TenantConfigCache struct {
	cfg     CacheConfig
	store   ConfigStore
	tenants TenantRepository

	cache cache.Cache
	group singleflight.Group
	now   func() time.Time

	// epoch is bumped by ClearAllCache, versions by ClearTenantCache.
	epoch    atomic.Uint64
	versions sync.Map

	// entries holds the valid entries of cache so that the size can be reported.
	mu      sync.Mutex
	entries map[string]*tenantEntry

	hits       atomic.Uint64
	misses     atomic.Uint64
	loads      atomic.Uint64
	loadErrors atomic.Uint64
}

// CacheOption configures a [TenantConfigCache].
type CacheOption func(*TenantConfigCache)

// WithCacheConfig sets the configuration of the cache.
func WithCacheConfig(cfg CacheConfig) CacheOption {
	return func(c *TenantConfigCache) {
		c.cfg = cfg
	}
}

// WithClock replaces the clock that decides whether an entry expired.
func WithClock(now func() time.Time) CacheOption {
	return func(c *TenantConfigCache) {
		c.now = now
	}
}

// NewTenantConfigCache creates a new cache that loads the configs of a tenant from store.
func NewTenantConfigCache(store ConfigStore, tenants TenantRepository, opts ...CacheOption) *TenantConfigCache {
	c := &TenantConfigCache{
		cfg:     DefaultCacheConfig,
		store:   store,
		tenants: tenants,
		now:     time.Now,
		entries: make(map[string]*tenantEntry),
	}

	for _, o := range opts {
		o(c)
	}

	c.cache = cache.New(
		cache.WithMaximumSize(c.cfg.MaxCacheSize),
		cache.WithExpireAfterWrite(c.cfg.CacheExpiration),
		cache.WithPolicy("lru"),
		cache.WithRemovalListener(c.onRemoval),
	)

	return c
}

// GetWhitedConfigsByTenant returns the enabled configs of the tenant and of the global tenant. An
// empty tenant ID yields an empty list without touching the store.
func (c *TenantConfigCache) GetWhitedConfigsByTenant(tenantID string) ([]whitelist.WhitedRuleConfig, error) {
	if tenantID == "" {
		return []whitelist.WhitedRuleConfig{}, nil
	}

	if entry, ok := c.lookup(tenantID); ok {
		c.hits.Add(1)
		return whitelist.CloneConfigs(entry.configs), nil
	}

	c.misses.Add(1)

	v, err, _ := c.group.Do(tenantID, func() (any, error) {
		// Another flight might have filled the entry while we were waiting
		if entry, ok := c.lookup(tenantID); ok {
			return entry, nil
		}

		return c.refresh(tenantID)
	})
	if err != nil {
		return nil, err
	}

	return whitelist.CloneConfigs(v.(*tenantEntry).configs), nil
}

// ClearTenantCache drops the entry of the tenant. Loads that are still running for the tenant will
// not be served to later callers.
//
// The entry is only marked stale through the tenant's version. It stays in the underlying cache
// until the next load replaces it, since an entry invalidated there is removed asynchronously and
// would swallow the value of a following Put.
func (c *TenantConfigCache) ClearTenantCache(tenantID string) {
	c.version(tenantID).Add(1)
	c.group.Forget(tenantID)

	c.mu.Lock()
	delete(c.entries, tenantID)
	c.mu.Unlock()

	slog.Debug("Cleared whitelist cache of tenant", slog.String("tenant_id", tenantID))
}

// ClearAllCache drops all entries. Like [TenantConfigCache.ClearTenantCache], it only moves the
// epoch, so stale entries are replaced by the next load of each tenant.
func (c *TenantConfigCache) ClearAllCache() {
	c.epoch.Add(1)

	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()

	slog.Debug("Cleared whitelist cache of all tenants")
}

// Stats returns the current counters of the cache.
func (c *TenantConfigCache) Stats() CacheStats {
	var s cache.Stats
	c.cache.Stats(&s)

	c.mu.Lock()
	size := len(c.entries)
	c.mu.Unlock()

	return CacheStats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Loads:      c.loads.Load(),
		LoadErrors: c.loadErrors.Load(),
		Evictions:  s.EvictionCount,
		Size:       size,
	}
}

// Close releases the resources of the underlying cache.
func (c *TenantConfigCache) Close() error {
	return c.cache.Close()
}

// lookup returns the entry of the tenant if it is still valid.
func (c *TenantConfigCache) lookup(tenantID string) (*tenantEntry, bool) {
	v, ok := c.cache.GetIfPresent(tenantID)
	if !ok {
		return nil, false
	}

	entry, ok := v.(*tenantEntry)
	if !ok {
		return nil, false
	}

	if entry.epoch != c.epoch.Load() ||
		entry.version != c.version(tenantID).Load() ||
		!c.now().Before(entry.expiresAt) {
		return nil, false
	}

	return entry, true
}

// refresh loads the configs of the tenant and stores them. The entry is stamped with the epoch and
// version observed before the load, so an invalidation during the load makes it stale right away.
func (c *TenantConfigCache) refresh(tenantID string) (*tenantEntry, error) {
	var (
		epoch   = c.epoch.Load()
		version = c.version(tenantID).Load()
		configs []whitelist.WhitedRuleConfig
	)

	err := retry.New(
		retry.Attempts(c.attempts()),
		retry.Delay(c.cfg.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Could not load whitelist configs, retrying",
				slog.String("tenant_id", tenantID),
				slog.Uint64("attempt", uint64(n+1)),
				slog.Any("error", err),
			)
		}),
	).Do(func() (err error) {
		configs, err = c.load(tenantID)
		return err
	})
	if err != nil {
		c.loadErrors.Add(1)
		return nil, fmt.Errorf("could not load whitelist configs of tenant %s: %w", tenantID, err)
	}

	c.loads.Add(1)

	entry := &tenantEntry{
		configs:   configs,
		expiresAt: c.now().Add(c.cfg.CacheExpiration),
		epoch:     epoch,
		version:   version,
	}
	c.put(tenantID, entry)

	slog.Debug("Loaded whitelist configs of tenant",
		slog.String("tenant_id", tenantID),
		slog.Int("configs", len(configs)),
	)

	return entry, nil
}

// load queries the enabled configs of the tenant and of the global tenant page by page, until the
// store returns an empty page or [CacheConfig.MaxQueryPages] is reached.
func (c *TenantConfigCache) load(tenantID string) (configs []whitelist.WhitedRuleConfig, err error) {
	var (
		enable    = whitelist.Enabled
		tenantIDs = []string{tenantID}
		page      []whitelist.WhitedRuleConfig
	)

	global, err := c.tenants.FindGlobalTenant()
	if err != nil && !errors.Is(err, ErrNoGlobalTenant) {
		return nil, err
	} else if global != nil && global.ID != tenantID {
		tenantIDs = append([]string{global.ID}, tenantIDs...)
	}

	configs = make([]whitelist.WhitedRuleConfig, 0)
	for i := 1; i <= c.cfg.MaxQueryPages; i++ {
		page, err = c.store.List(whitelist.ConfigFilter{
			Enable:    &enable,
			TenantIDs: tenantIDs,
			Page:      i,
			Size:      c.cfg.QueryPageSize,
		})
		if err != nil {
			return nil, err
		}

		if len(page) == 0 {
			return configs, nil
		}

		configs = append(configs, page...)
	}

	slog.Warn("Reached the maximum number of pages while loading whitelist configs",
		slog.String("tenant_id", tenantID),
		slog.Int("pages", c.cfg.MaxQueryPages),
	)

	return configs, nil
}

func (c *TenantConfigCache) put(tenantID string, entry *tenantEntry) {
	c.mu.Lock()
	if entry.epoch == c.epoch.Load() && entry.version == c.version(tenantID).Load() {
		c.entries[tenantID] = entry
	}
	c.mu.Unlock()

	c.cache.Put(tenantID, entry)
}

// onRemoval is called asynchronously by the underlying cache. A replaced entry must not remove the
// key of its successor.
func (c *TenantConfigCache) onRemoval(k cache.Key, v cache.Value) {
	tenantID, ok := k.(string)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries[tenantID] == v {
		delete(c.entries, tenantID)
	}
}

func (c *TenantConfigCache) version(tenantID string) *atomic.Uint64 {
	v, _ := c.versions.LoadOrStore(tenantID, new(atomic.Uint64))
	return v.(*atomic.Uint64)
}

func (c *TenantConfigCache) attempts() uint {
	if c.cfg.RetryAttempts == 0 {
		return 1
	}

	return c.cfg.RetryAttempts
}

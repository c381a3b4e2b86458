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

package whitelisttest

import (
	"fmt"
	"slices"
	"sync"

	"confirmate.io/posture/api/whitelist"
)

// ConfigStore is an in-memory config store that records its calls and can be told to fail.
type ConfigStore struct {
	// Configs are the stored configs.
	Configs []whitelist.WhitedRuleConfig

	// Err is returned by the next Failures calls of List.
	Err      error
	Failures int

	// Endless makes every page a full page of generated configs.
	Endless bool

	// Gate, if set, blocks every call of List until a value can be received from it.
	Gate chan struct{}

	mu      sync.Mutex
	filters []whitelist.ConfigFilter
}

// List returns the requested page of the configs that match filter.
func (s *ConfigStore) List(filter whitelist.ConfigFilter) ([]whitelist.WhitedRuleConfig, error) {
	if s.Gate != nil {
		<-s.Gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = append(s.filters, filter)

	if s.Failures > 0 {
		s.Failures--
		return nil, s.Err
	}

	if s.Endless {
		page := make([]whitelist.WhitedRuleConfig, filter.Size)
		for i := range page {
			page[i] = whitelist.WhitedRuleConfig{
				ID:       fmt.Sprintf("generated-%d-%d", filter.Page, i),
				TenantID: filter.TenantIDs[0],
				Enable:   whitelist.Enabled,
			}
		}
		return page, nil
	}

	var matching []whitelist.WhitedRuleConfig
	for _, c := range s.Configs {
		if filter.Enable != nil && c.Enable != *filter.Enable {
			continue
		}
		if len(filter.TenantIDs) > 0 && !slices.Contains(filter.TenantIDs, c.TenantID) {
			continue
		}
		if filter.RiskRuleCode != "" && c.RiskRuleCode != filter.RiskRuleCode {
			continue
		}
		matching = append(matching, c)
	}

	start := min(filter.Offset(), len(matching))
	end := len(matching)
	if filter.Size > 0 {
		end = min(start+filter.Size, len(matching))
	}

	return slices.Clone(matching[start:end]), nil
}

// Calls returns the number of calls of List.
func (s *ConfigStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.filters)
}

// Filters returns the filters of all calls of List.
func (s *ConfigStore) Filters() []whitelist.ConfigFilter {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.filters)
}

// TenantRepository is an in-memory tenant repository.
type TenantRepository struct {
	// Global is the global tenant. If it is nil, FindGlobalTenant returns Err.
	Global *whitelist.Tenant
	Err    error

	mu    sync.Mutex
	calls int
}

// FindGlobalTenant returns the global tenant or the configured error.
func (r *TenantRepository) FindGlobalTenant() (*whitelist.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++

	if r.Global == nil {
		return nil, r.Err
	}

	t := *r.Global
	return &t, nil
}

// Calls returns the number of calls of FindGlobalTenant.
func (r *TenantRepository) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.calls
}

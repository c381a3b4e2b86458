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
	"strings"

	"confirmate.io/posture/api/whitelist"
	"confirmate.io/posture/persistence"
)

// ErrNoGlobalTenant is returned by a [TenantRepository] if no tenant is marked as global.
var ErrNoGlobalTenant = errors.New("no global tenant")

// ConfigStore lists persisted whitelist rule configs.
type ConfigStore interface {
	// List returns the page of configs described by filter. A page beyond the last one is empty.
	List(filter whitelist.ConfigFilter) ([]whitelist.WhitedRuleConfig, error)
}

// TenantRepository looks up tenants.
type TenantRepository interface {
	// FindGlobalTenant returns the tenant whose configs apply to all tenants or
	// [ErrNoGlobalTenant].
	FindGlobalTenant() (*whitelist.Tenant, error)
}

type configStore struct {
	db persistence.DB
}

// NewConfigStore returns a [ConfigStore] on top of db.
func NewConfigStore(db persistence.DB) ConfigStore {
	return &configStore{db: db}
}

func (s *configStore) List(filter whitelist.ConfigFilter) (configs []whitelist.WhitedRuleConfig, err error) {
	limit := filter.Size
	if limit <= 0 {
		limit = -1
	}

	configs = make([]whitelist.WhitedRuleConfig, 0)
	err = s.db.List(&configs, "id", true, filter.Offset(), limit, filterConds(filter)...)
	if err != nil {
		return nil, fmt.Errorf("could not list whitelist configs: %w", err)
	}

	return configs, nil
}

// filterConds translates filter into the conditions of a [persistence.DB] query.
func filterConds(filter whitelist.ConfigFilter) []any {
	var (
		clauses []string
		args    []any
	)

	if filter.Enable != nil {
		clauses = append(clauses, "enable = ?")
		args = append(args, *filter.Enable)
	}

	if len(filter.TenantIDs) > 0 {
		clauses = append(clauses, "tenant_id IN ?")
		args = append(args, filter.TenantIDs)
	}

	if filter.RiskRuleCode != "" {
		clauses = append(clauses, "risk_rule_code = ?")
		args = append(args, filter.RiskRuleCode)
	}

	if len(clauses) == 0 {
		return nil
	}

	return append([]any{strings.Join(clauses, " AND ")}, args...)
}

type tenantRepository struct {
	db persistence.DB
}

// NewTenantRepository returns a [TenantRepository] on top of db.
func NewTenantRepository(db persistence.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) FindGlobalTenant() (*whitelist.Tenant, error) {
	var tenant whitelist.Tenant

	err := r.db.Get(&tenant, "global = ?", true)
	if errors.Is(err, persistence.ErrRecordNotFound) {
		return nil, ErrNoGlobalTenant
	} else if err != nil {
		return nil, fmt.Errorf("could not find global tenant: %w", err)
	}

	return &tenant, nil
}

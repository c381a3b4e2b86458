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

// Package whitelist contains the persisted whitelist rule configuration and the messages of the
// whitelist API.
package whitelist

import (
	"log/slog"
	"time"
)

// RuleType describes how a [WhitedRuleConfig] is evaluated.
type RuleType string

const (
	// RuleTypeRuleEngine rules consist of condition items combined by a logical expression.
	RuleTypeRuleEngine RuleType = "RULE_ENGINE"

	// RuleTypeRego rules are Rego policies deciding on the "whited" rule.
	RuleTypeRego RuleType = "REGO"
)

// Valid returns true, if t is a known rule type.
func (t RuleType) Valid() bool {
	return t == RuleTypeRuleEngine || t == RuleTypeRego
}

const (
	Disabled = 0
	Enabled  = 1
)

// WhitedRuleConfig is a whitelist rule of a tenant. Depending on [WhitedRuleConfig.RuleType],
// either RuleConfig and Condition or RegoContent describe when a risk is whitelisted.
type WhitedRuleConfig struct {
	ID       string   `json:"id" yaml:"id" gorm:"primaryKey"`
	TenantID string   `json:"tenant_id" yaml:"tenant_id" gorm:"index"`
	RuleName string   `json:"rule_name" yaml:"rule_name"`
	RuleDesc string   `json:"rule_desc,omitempty" yaml:"rule_desc,omitempty"`
	RuleType RuleType `json:"rule_type" yaml:"rule_type"`

	// RuleConfig is the JSON encoded list of condition items.
	RuleConfig string `json:"rule_config,omitempty" yaml:"rule_config,omitempty"`

	// Condition is the logical expression combining the condition items by their ID, e.g.
	// "1&&(2||3)".
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`

	// CondJSON is the canonical JSON tree of RuleConfig and Condition. It is derived from both
	// whenever the config is saved.
	CondJSON string `json:"cond_json,omitempty" yaml:"cond_json,omitempty" gorm:"column:cond_json"`

	RegoContent string `json:"rego_content,omitempty" yaml:"rego_content,omitempty"`

	// RiskRuleCode restricts the rule to risks of this rule code. An empty code applies to all
	// risks.
	RiskRuleCode string `json:"risk_rule_code,omitempty" yaml:"risk_rule_code,omitempty" gorm:"index"`

	Enable      int       `json:"enable" yaml:"enable"`
	Creator     string    `json:"creator,omitempty" yaml:"creator,omitempty"`
	LockHolder  string    `json:"lock_holder,omitempty" yaml:"lock_holder,omitempty"`
	GmtCreate   time.Time `json:"gmt_create" yaml:"gmt_create,omitempty" gorm:"autoCreateTime"`
	GmtModified time.Time `json:"gmt_modified" yaml:"gmt_modified,omitempty" gorm:"autoUpdateTime"`
}

// TableName implements gorm's tabler interface.
func (WhitedRuleConfig) TableName() string {
	return "whited_rule_configs"
}

// IsEnabled returns true, if the rule is enabled.
func (c *WhitedRuleConfig) IsEnabled() bool {
	return c.Enable == Enabled
}

// AppliesTo returns true, if the rule is relevant for risks of the given rule code.
func (c *WhitedRuleConfig) AppliesTo(riskRuleCode string) bool {
	return c.RiskRuleCode == "" || c.RiskRuleCode == riskRuleCode
}

// GetId returns the ID of the config.
func (c *WhitedRuleConfig) GetId() string {
	if c == nil {
		return ""
	}

	return c.ID
}

// GetTenantId returns the tenant of the config.
func (c *WhitedRuleConfig) GetTenantId() string {
	if c == nil {
		return ""
	}

	return c.TenantID
}

// LogValue implements [slog.LogValuer]. It leaves out the identity and timestamps of the config as
// well as all empty fields.
func (c *WhitedRuleConfig) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 8)

	add := func(key, value string) {
		if value != "" {
			attrs = append(attrs, slog.String(key, value))
		}
	}

	add("tenant_id", c.TenantID)
	add("rule_name", c.RuleName)
	add("rule_type", string(c.RuleType))
	add("risk_rule_code", c.RiskRuleCode)
	add("condition", c.Condition)
	add("creator", c.Creator)
	add("lock_holder", c.LockHolder)
	attrs = append(attrs, slog.Int("enable", c.Enable))

	return slog.GroupValue(attrs...)
}

// CloneConfigs returns a copy of configs that shares no memory with it. All fields of a
// [WhitedRuleConfig] are values, so copying the slice elements suffices.
func CloneConfigs(configs []WhitedRuleConfig) []WhitedRuleConfig {
	out := make([]WhitedRuleConfig, len(configs))
	copy(out, configs)

	return out
}

// Tenant is an organizational unit owning whitelist rules. Rules of the global tenant apply to all
// tenants.
type Tenant struct {
	ID     string `json:"id" yaml:"id" gorm:"primaryKey"`
	Name   string `json:"name" yaml:"name"`
	Global bool   `json:"global" yaml:"global"`
}

// TableName implements gorm's tabler interface.
func (Tenant) TableName() string {
	return "tenants"
}

// ConfigFilter restricts a query for whitelist rule configs. Page is 1-based.
type ConfigFilter struct {
	Enable       *int
	TenantIDs    []string
	RiskRuleCode string
	Page         int
	Size         int
}

// Offset returns the number of records to skip for the filter's page.
func (f ConfigFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}

	return (f.Page - 1) * f.Size
}

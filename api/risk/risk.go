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

// Package risk contains the scan results produced by risk rules and the risk status lifecycle.
package risk

// Status is the lifecycle status of a risk.
type Status string

const (
	StatusRepaired   Status = "REPAIRED"
	StatusUnrepaired Status = "UNREPAIRED"
	StatusIgnored    Status = "IGNORED"
	StatusWhited     Status = "WHITED"
)

// Valid returns true, if s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusRepaired, StatusUnrepaired, StatusIgnored, StatusWhited:
		return true
	default:
		return false
	}
}

// NextStatus returns the status of a risk with the current status after a whitelist decision.
// Ignored risks stay ignored. A whited risk that is no longer whitelisted becomes unrepaired.
func NextStatus(current Status, whited bool) Status {
	switch {
	case current == StatusIgnored:
		return current
	case whited:
		return StatusWhited
	case current == StatusWhited:
		return StatusUnrepaired
	default:
		return current
	}
}

// ScanResult is a finding of a risk rule for one scanned cloud resource.
type ScanResult struct {
	TenantID       string `json:"tenant_id" yaml:"tenant_id"`
	RiskRuleCode   string `json:"risk_rule_code" yaml:"risk_rule_code"`
	ResourceID     string `json:"resource_id" yaml:"resource_id"`
	ResourceName   string `json:"resource_name,omitempty" yaml:"resource_name,omitempty"`
	ResourceType   string `json:"resource_type,omitempty" yaml:"resource_type,omitempty"`
	CloudAccountID string `json:"cloud_account_id,omitempty" yaml:"cloud_account_id,omitempty"`
	Platform       string `json:"platform,omitempty" yaml:"platform,omitempty"`
	Region         string `json:"region,omitempty" yaml:"region,omitempty"`

	// Snapshot is the JSON document of the scanned resource.
	Snapshot string `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`

	// Status is the current status of the risk, if known.
	Status Status `json:"status,omitempty" yaml:"status,omitempty"`
}

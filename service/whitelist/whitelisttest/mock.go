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

// Package whitelisttest contains fixtures and fake stores for testing the whitelist service.
package whitelisttest

import (
	"confirmate.io/posture/api/risk"
	"confirmate.io/posture/api/whitelist"
	"confirmate.io/posture/persistence"
)

const (
	// Mock IDs for tenants
	MockTenantID1      = "tenant-1"
	MockTenantID2      = "tenant-2"
	MockGlobalTenantID = "tenant-global"

	// Mock IDs for configs
	MockConfigID1        = "00000000-0000-0000-0000-000000000001"
	MockConfigID2        = "00000000-0000-0000-0000-000000000002"
	MockConfigID3        = "00000000-0000-0000-0000-000000000003"
	MockConfigID4        = "00000000-0000-0000-0000-000000000004"
	MockNonExistentID    = "00000000-0000-0000-ffff-ffffffffffff"
	MockRiskRuleCode     = "OSS_PUBLIC_READ"
	MockOtherRiskRule    = "ECS_OPEN_SSH"
	MockUser             = "alice"
	MockOtherUser        = "bob"
	MockPublicBucketRego = `package whitelist.public_bucket

whited if {
	input.resource.acl == "public-read"
	input.resource.tags.purpose == "website"
}
`
)

// Mock tenants
var (
	MockTenant1 = whitelist.Tenant{
		ID:   MockTenantID1,
		Name: "Tenant 1",
	}
	MockTenant2 = whitelist.Tenant{
		ID:   MockTenantID2,
		Name: "Tenant 2",
	}
	MockGlobalTenant = whitelist.Tenant{
		ID:     MockGlobalTenantID,
		Name:   "Global",
		Global: true,
	}
)

// Mock configs. They are values, so that every test works on its own copy.
var (
	// MockConfig1 whitelists the bucket "bucket-1" of tenant 1 for public read findings.
	MockConfig1 = whitelist.WhitedRuleConfig{
		ID:           MockConfigID1,
		TenantID:     MockTenantID1,
		RuleName:     "bucket-1 is public on purpose",
		RuleType:     whitelist.RuleTypeRuleEngine,
		RuleConfig:   `[{"id":1,"key":"resourceId","operator":"EQ","value":"bucket-1"}]`,
		RiskRuleCode: MockRiskRuleCode,
		Enable:       whitelist.Enabled,
		Creator:      MockUser,
		LockHolder:   MockUser,
	}

	// MockConfig2 is a global config that whitelists test resources in the EU for every rule.
	MockConfig2 = whitelist.WhitedRuleConfig{
		ID:         MockConfigID2,
		TenantID:   MockGlobalTenantID,
		RuleName:   "EU test resources",
		RuleType:   whitelist.RuleTypeRuleEngine,
		RuleConfig: `[{"id":1,"key":"region","operator":"IN","value":"eu-west-1,eu-central-1"},{"id":2,"key":"tags.env","operator":"EQ","value":"test"}]`,
		Condition:  "1 && 2",
		Enable:     whitelist.Enabled,
		Creator:    MockOtherUser,
	}

	// MockConfig3 is a Rego rule of tenant 1 that whitelists website buckets.
	MockConfig3 = whitelist.WhitedRuleConfig{
		ID:           MockConfigID3,
		TenantID:     MockTenantID1,
		RuleName:     "website buckets",
		RuleType:     whitelist.RuleTypeRego,
		RegoContent:  MockPublicBucketRego,
		RiskRuleCode: MockRiskRuleCode,
		Enable:       whitelist.Enabled,
		Creator:      MockUser,
		LockHolder:   MockOtherUser,
	}

	// MockConfig4 is a disabled config of tenant 2 that would whitelist everything.
	MockConfig4 = whitelist.WhitedRuleConfig{
		ID:         MockConfigID4,
		TenantID:   MockTenantID2,
		RuleName:   "everything",
		RuleType:   whitelist.RuleTypeRuleEngine,
		RuleConfig: `[]`,
		Enable:     whitelist.Disabled,
		Creator:    MockUser,
	}
)

// Mock scan results
var (
	// MockScanResult1 is whitelisted by MockConfig1.
	MockScanResult1 = risk.ScanResult{
		TenantID:       MockTenantID1,
		RiskRuleCode:   MockRiskRuleCode,
		ResourceID:     "bucket-1",
		ResourceName:   "bucket-1",
		ResourceType:   "OSS",
		CloudAccountID: "account-1",
		Platform:       "aliyun",
		Region:         "cn-hangzhou",
		Snapshot:       `{"acl":"private","tags":{"env":"prod"}}`,
		Status:         risk.StatusUnrepaired,
	}

	// MockScanResult2 is whitelisted by MockConfig3.
	MockScanResult2 = risk.ScanResult{
		TenantID:     MockTenantID1,
		RiskRuleCode: MockRiskRuleCode,
		ResourceID:   "bucket-2",
		Region:       "cn-hangzhou",
		Snapshot:     `{"acl":"public-read","tags":{"purpose":"website"}}`,
		Status:       risk.StatusUnrepaired,
	}

	// MockScanResult3 is whitelisted by the global MockConfig2.
	MockScanResult3 = risk.ScanResult{
		TenantID:     MockTenantID2,
		RiskRuleCode: MockOtherRiskRule,
		ResourceID:   "vm-1",
		Region:       "eu-west-1",
		Snapshot:     `{"tags":{"env":"test"}}`,
		Status:       risk.StatusWhited,
	}

	// MockScanResult4 is not whitelisted by any config.
	MockScanResult4 = risk.ScanResult{
		TenantID:     MockTenantID2,
		RiskRuleCode: MockOtherRiskRule,
		ResourceID:   "vm-2",
		Region:       "us-east-1",
		Snapshot:     `{"tags":{"env":"prod"}}`,
	}
)

// Types are the database types of the whitelist service.
var Types = []any{
	&whitelist.WhitedRuleConfig{},
	&whitelist.Tenant{},
}

// Seed stores the mock tenants and configs in db. It is meant to be passed as init function of
// [persistencetest.NewInMemoryDB].
func Seed(db persistence.DB) {
	for _, t := range []whitelist.Tenant{MockTenant1, MockTenant2, MockGlobalTenant} {
		if err := db.Create(&t); err != nil {
			panic(err)
		}
	}

	for _, c := range []whitelist.WhitedRuleConfig{MockConfig1, MockConfig2, MockConfig3, MockConfig4} {
		if err := db.Create(&c); err != nil {
			panic(err)
		}
	}
}

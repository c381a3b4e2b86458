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

package engine

import (
	"fmt"
	"maps"
	"slices"

	"confirmate.io/posture/api/risk"
)

// Keys of the facts derived from the identifying fields of a scan result.
const (
	FactResourceID     = "resourceId"
	FactResourceName   = "resourceName"
	FactResourceType   = "resourceType"
	FactCloudAccountID = "cloudAccountId"
	FactPlatform       = "platform"
	FactRegion         = "region"
	FactRiskRuleCode   = "riskRuleCode"
	FactTenantID       = "tenantId"
)

// MatchRule evaluates a single condition against the given facts.
func MatchRule(c ConditionItem, facts map[string]string) bool {
	return Handle(c, FactsFromMap(facts))
}

// MatchWhitelistRule decides whether the scan result r is whitelisted by the rule consisting of
// configs and expr. A nil list of conditions never matches, while an empty list always does, even
// without a scan result. Otherwise a nil scan result does not match. A rule with a single condition
// may omit the expression.
func MatchWhitelistRule(configs []ConditionItem, expr string, r *risk.ScanResult) (bool, error) {
	return matchWhitelistRule(configs, expr, r, EvaluateConditions)
}

// MatchWhitelistRuleComplete is like [MatchWhitelistRule], but evaluates the conditions with
// [EvaluateConditionsComplete].
func MatchWhitelistRuleComplete(configs []ConditionItem, expr string, r *risk.ScanResult) (bool, error) {
	return matchWhitelistRule(configs, expr, r, EvaluateConditionsComplete)
}

// MatchStoredRule decodes the persisted condition items of a rule and calls [MatchWhitelistRule].
func MatchStoredRule(ruleConfig string, expr string, r *risk.ScanResult) (bool, error) {
	configs, err := ParseConditionItems(ruleConfig)
	if err != nil {
		return false, err
	}

	return MatchWhitelistRule(configs, expr, r)
}

// MatchStoredRuleComplete decodes the persisted condition items of a rule and calls
// [MatchWhitelistRuleComplete].
func MatchStoredRuleComplete(ruleConfig string, expr string, r *risk.ScanResult) (bool, error) {
	configs, err := ParseConditionItems(ruleConfig)
	if err != nil {
		return false, err
	}

	return MatchWhitelistRuleComplete(configs, expr, r)
}

type evaluateFunc func(items map[int]ConditionItem, e *Expression, facts []Fact) (bool, error)

func matchWhitelistRule(configs []ConditionItem, expr string, r *risk.ScanResult, evaluate evaluateFunc) (bool, error) {
	if configs == nil {
		return false, nil
	}

	if len(configs) == 0 {
		return true, nil
	}

	if r == nil {
		return false, nil
	}

	if err := uniqueIDs(configs); err != nil {
		return false, err
	}

	facts, err := ScanResultFacts(r)
	if err != nil {
		return false, err
	}

	e, err := ParseExpression(DefaultExpression(len(configs), expr))
	if err != nil {
		return false, err
	}

	return evaluate(ItemsByID(configs), e, facts)
}

// EvaluateConditions evaluates every item against facts and combines the results with e.
func EvaluateConditions(items map[int]ConditionItem, e *Expression, facts []Fact) (bool, error) {
	results := make(map[int]bool, len(items))
	for id, c := range items {
		results[id] = Handle(c, facts)
	}

	return e.Evaluate(results)
}

// EvaluateConditionsComplete evaluates every item with [HandleComplete] and combines the results
// with e. Items are visited in the order of their IDs and the first unsupported operator is
// returned as error.
func EvaluateConditionsComplete(items map[int]ConditionItem, e *Expression, facts []Fact) (bool, error) {
	results := make(map[int]bool, len(items))
	for _, id := range slices.Sorted(maps.Keys(items)) {
		ok, err := HandleComplete(items[id], facts)
		if err != nil {
			return false, fmt.Errorf("condition %d: %w", id, err)
		}
		results[id] = ok
	}

	return e.Evaluate(results)
}

// ScanResultFacts returns the facts of the identifying fields of r followed by the facts of its
// snapshot. Empty fields yield no fact, so that conditions on them are not constrained.
func ScanResultFacts(r *risk.ScanResult) ([]Fact, error) {
	var facts []Fact

	for _, f := range []Fact{
		{FactResourceID, r.ResourceID},
		{FactResourceName, r.ResourceName},
		{FactResourceType, r.ResourceType},
		{FactCloudAccountID, r.CloudAccountID},
		{FactPlatform, r.Platform},
		{FactRegion, r.Region},
		{FactRiskRuleCode, r.RiskRuleCode},
		{FactTenantID, r.TenantID},
	} {
		if f.Value != "" {
			facts = append(facts, f)
		}
	}

	snapshot, err := FlattenSnapshot(r.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("could not flatten snapshot of resource %s: %w", r.ResourceID, err)
	}

	return append(facts, snapshot...), nil
}

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

// Package policies evaluates whitelist rules that are written as Rego policies.
package policies

import (
	"context"
	"errors"

	"confirmate.io/posture/api/risk"
	"confirmate.io/posture/api/whitelist"
)

// DecisionRule is the rule of a whitelist policy that decides whether a risk is whitelisted.
const DecisionRule = "whited"

var (
	// ErrInvalidPolicy is returned if a policy cannot be parsed.
	ErrInvalidPolicy = errors.New("invalid rego policy")

	// ErrNoPolicy is returned if a config has no Rego content.
	ErrNoPolicy = errors.New("config has no rego content")
)

// PolicyEval is an interface for the evaluation of Rego whitelist rules.
type PolicyEval interface {
	// Match evaluates the policy of config against the scan result r. The policy decides with the
	// rule [DecisionRule]; if the rule is undefined, r is not whitelisted.
	Match(ctx context.Context, config *whitelist.WhitedRuleConfig, r *risk.ScanResult) (bool, error)

	// Evict removes the prepared queries of a config, e.g., after the config was deleted.
	Evict(configID string)
}

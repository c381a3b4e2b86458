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
	"context"
	"fmt"
	"log/slog"

	"confirmate.io/posture/api/risk"
	"confirmate.io/posture/api/whitelist"
	"confirmate.io/posture/engine"
	"confirmate.io/posture/log"
	"confirmate.io/posture/service"

	"connectrpc.com/connect"
	"github.com/google/uuid"
)

// Evaluate decides whether a scan result is whitelisted by one of the enabled configs of its tenant
// or of the global tenant.
func (svc *Service) Evaluate(
	ctx context.Context,
	req *connect.Request[whitelist.EvaluateRequest],
) (res *connect.Response[whitelist.EvaluateResponse], err error) {
	var (
		r       *risk.ScanResult
		configs []whitelist.WhitedRuleConfig
		match   *whitelist.WhitedRuleConfig
	)

	// Validate the request
	if err = service.Validate(req.Msg); err != nil {
		return nil, err
	}

	r = req.Msg.Result

	ctx = log.WithAttrs(ctx,
		slog.String("evaluation_id", uuid.NewString()),
		slog.String("tenant_id", r.TenantID),
		slog.String("risk_rule_code", r.RiskRuleCode),
	)

	configs, err = svc.cache.GetWhitedConfigsByTenant(r.TenantID)
	if err != nil {
		svc.metrics.Evaluations.WithLabelValues(resultError).Inc()
		slog.ErrorContext(ctx, "Could not retrieve whitelist configs", log.Err(err))
		return nil, connect.NewError(connect.CodeUnavailable, fmt.Errorf("could not retrieve whitelist configs: %w", err))
	}

	match = svc.firstMatch(ctx, configs, r)

	res = connect.NewResponse(&whitelist.EvaluateResponse{})
	if match != nil {
		res.Msg.Whited = true
		res.Msg.ConfigID = match.ID
		svc.metrics.Evaluations.WithLabelValues(resultWhited).Inc()
	} else {
		svc.metrics.Evaluations.WithLabelValues(resultNotWhited).Inc()
	}

	if r.Status != "" {
		res.Msg.Status = risk.NextStatus(r.Status, res.Msg.Whited)
	}

	slog.DebugContext(ctx, "Evaluated scan result",
		slog.Bool("whited", res.Msg.Whited),
		slog.Int("configs", len(configs)),
	)

	return
}

// firstMatch returns the first enabled config that applies to the rule code of r and whitelists
// it. A config that cannot be evaluated is logged and skipped.
func (svc *Service) firstMatch(ctx context.Context, configs []whitelist.WhitedRuleConfig, r *risk.ScanResult) *whitelist.WhitedRuleConfig {
	for i := range configs {
		cfg := &configs[i]

		if !cfg.IsEnabled() || !cfg.AppliesTo(r.RiskRuleCode) {
			continue
		}

		ok, err := svc.matchConfig(ctx, cfg, r)
		if err != nil {
			slog.ErrorContext(ctx, "Could not evaluate whitelist config",
				slog.String("config_id", cfg.ID),
				slog.String("rule_type", string(cfg.RuleType)),
				log.Err(err),
			)
			continue
		}

		if ok {
			return cfg
		}
	}

	return nil
}

func (svc *Service) matchConfig(ctx context.Context, cfg *whitelist.WhitedRuleConfig, r *risk.ScanResult) (bool, error) {
	if cfg.RuleType == whitelist.RuleTypeRego {
		return svc.rego.Match(ctx, cfg, r)
	}

	items, err := engine.ParseConditionItems(cfg.RuleConfig)
	if err != nil {
		return false, err
	}

	// Without precedence, an expression like "1 && 2 || 3" is easily misread
	e, err := engine.ParseExpression(engine.DefaultExpression(len(items), cfg.Condition))
	if err == nil && e.HasMixedOperators() {
		slog.WarnContext(ctx, "Whitelist condition mixes operators without parentheses",
			slog.String("config_id", cfg.ID),
			slog.String("condition", cfg.Condition),
		)
	}

	return engine.MatchWhitelistRule(items, cfg.Condition, r)
}

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

package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"confirmate.io/posture/api/risk"
	"confirmate.io/posture/api/whitelist"
	"confirmate.io/posture/engine"
	"confirmate.io/posture/policies"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// resultFlag returns the flag of the scan result file. JSON is read as well, since it is a subset
// of YAML.
func resultFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "result",
		Aliases:  []string{"r"},
		Usage:    "YAML or JSON file of the scan result (- reads from stdin)",
		Required: true,
	}
}

func EvaluateCommand() *cli.Command {
	return &cli.Command{
		Name:  "evaluate",
		Usage: "Ask the server whether a scan result is whitelisted",
		Flags: []cli.Flag{resultFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := readScanResult(c.String("result"))
			if err != nil {
				return err
			}

			client := WhitelistClient(ctx, c)
			resp, err := client.Evaluate(ctx, NewRequest(c, &whitelist.EvaluateRequest{
				Result: r,
			}))
			if err != nil {
				return err
			}
			return PrettyPrint(resp.Msg)
		},
	}
}

// MatchResult is the outcome of matching a scan result against a single rule offline.
type MatchResult struct {
	ConfigID string `json:"config_id,omitempty"`
	RuleName string `json:"rule_name"`
	Whited   bool   `json:"whited"`
	Skipped  string `json:"skipped,omitempty"`
	Error    string `json:"error,omitempty"`
}

func MatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "Match a scan result against the rules of a local file without a server",
		Flags: []cli.Flag{
			resultFlag(),
			&cli.StringFlag{
				Name:     "rules",
				Usage:    "YAML file with a list of whitelist configs",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Only accept the operators EQ, ALL_IN and ANY_IN and report all others as error",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := readScanResult(c.String("result"))
			if err != nil {
				return err
			}

			configs, err := readConfigs(c.String("rules"))
			if err != nil {
				return err
			}

			return PrettyPrint(matchAll(ctx, policies.NewRegoEval(), configs, r, c.Bool("strict")))
		},
	}
}

func FactsCommand() *cli.Command {
	return &cli.Command{
		Name:  "facts",
		Usage: "Print the facts that conditions are matched against",
		Flags: []cli.Flag{resultFlag()},
		Action: func(_ context.Context, c *cli.Command) error {
			r, err := readScanResult(c.String("result"))
			if err != nil {
				return err
			}

			facts, err := engine.ScanResultFacts(r)
			if err != nil {
				return err
			}

			out := make([]map[string]any, 0, len(facts))
			for _, f := range facts {
				out = append(out, map[string]any{"key": f.Key, "value": f.Value})
			}
			return PrettyPrint(out)
		},
	}
}

func CacheStatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show the statistics of the whitelist cache of the server",
		Action: func(ctx context.Context, c *cli.Command) error {
			client := WhitelistClient(ctx, c)
			resp, err := client.CacheStats(ctx, NewRequest(c, &whitelist.CacheStatsRequest{}))
			if err != nil {
				return err
			}
			return PrettyPrint(resp.Msg)
		},
	}
}

// matchAll matches r against every config. Unlike the server, it does not stop at the first match,
// so that all rules of a file can be checked at once. In strict mode, rule engine conditions are
// evaluated with [engine.HandleComplete].
func matchAll(ctx context.Context, rego policies.PolicyEval, configs []whitelist.WhitedRuleConfig, r *risk.ScanResult, strict bool) []MatchResult {
	var (
		results = make([]MatchResult, 0, len(configs))
		match   = engine.MatchStoredRule
	)

	if strict {
		match = engine.MatchStoredRuleComplete
	}

	for i := range configs {
		cfg := &configs[i]
		res := MatchResult{ConfigID: cfg.ID, RuleName: cfg.RuleName}

		switch {
		case !cfg.IsEnabled():
			res.Skipped = "disabled"
		case !cfg.AppliesTo(r.RiskRuleCode):
			res.Skipped = "risk rule code " + cfg.RiskRuleCode
		default:
			var err error
			if cfg.RuleType == whitelist.RuleTypeRego {
				res.Whited, err = rego.Match(ctx, cfg, r)
			} else {
				res.Whited, err = match(cfg.RuleConfig, cfg.Condition, r)
			}
			if err != nil {
				res.Error = err.Error()
			}
		}

		results = append(results, res)
	}

	return results
}

// readScanResult reads a scan result from a YAML or JSON file, or from stdin if path is "-".
func readScanResult(path string) (r *risk.ScanResult, err error) {
	var b []byte

	if path == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read scan result: %w", err)
	}

	r = new(risk.ScanResult)
	if err = yaml.Unmarshal(b, r); err != nil {
		return nil, fmt.Errorf("could not parse scan result: %w", err)
	}

	return r, nil
}

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

package policies

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"confirmate.io/posture/api/risk"
	"confirmate.io/posture/api/whitelist"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/storage"
	"github.com/open-policy-agent/opa/v1/storage/inmem"
)

// inputResource is the key of the parsed snapshot within the input document.
const inputResource = "resource"

type regoEval struct {
	// qc contains cached Rego queries
	qc *queryCache

	// store holds the data document that is available to all policies as "data"
	store storage.Store
}

type queryCache struct {
	sync.Mutex
	cache map[string]*rego.PreparedEvalQuery
}

type orElseFunc func(key string) (query *rego.PreparedEvalQuery, err error)

type RegoEvalOption func(re *regoEval)

// WithData is an option to provide a data document to all policies, e.g., lists of trusted
// accounts.
func WithData(data map[string]any) RegoEvalOption {
	return func(re *regoEval) {
		re.store = inmem.NewFromObject(data)
	}
}

func NewRegoEval(opts ...RegoEvalOption) PolicyEval {
	re := regoEval{
		qc:    newQueryCache(),
		store: inmem.New(),
	}

	for _, o := range opts {
		o(&re)
	}

	return &re
}

// Validate parses a whitelist policy and returns the path of its package, e.g.
// "data.whitelist.public_bucket".
func Validate(module string) (pkg string, err error) {
	if strings.TrimSpace(module) == "" {
		return "", ErrNoPolicy
	}

	mod, err := ast.ParseModule("whitelist.rego", module)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPolicy, err)
	}

	if mod == nil || mod.Package == nil {
		return "", fmt.Errorf("%w: missing package declaration", ErrInvalidPolicy)
	}

	return mod.Package.Path.String(), nil
}

// Match evaluates the policy of config against r.
func (re *regoEval) Match(ctx context.Context, config *whitelist.WhitedRuleConfig, r *risk.ScanResult) (bool, error) {
	if config.RegoContent == "" {
		return false, ErrNoPolicy
	}

	// The key contains the hash of the policy, so that changed policies are prepared again
	query, err := re.qc.Get(queryKey(config), func(key string) (*rego.PreparedEvalQuery, error) {
		pkg, err := Validate(config.RegoContent)
		if err != nil {
			return nil, err
		}

		query, err := rego.New(
			rego.Query(fmt.Sprintf("%s.%s", pkg, DecisionRule)),
			rego.Module(config.ID+".rego", config.RegoContent),
			rego.Store(re.store),
		).PrepareForEval(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not prepare rego evaluation for config %s: %w", config.ID, err)
		}

		slog.Debug("Prepared rego policy", slog.String("config_id", config.ID), slog.String("package", pkg))

		return &query, nil
	})
	if err != nil {
		return false, fmt.Errorf("could not fetch cached query for config %s: %w", config.ID, err)
	}

	input, err := inputOf(r)
	if err != nil {
		return false, err
	}

	results, err := query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("could not evaluate rego policy: %w", err)
	}

	// An undefined decision rule yields no results
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, nil
	}

	whited, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("rule %s of config %s is not a boolean", DecisionRule, config.ID)
	}

	return whited, nil
}

// Evict removes all prepared queries of the given config.
func (re *regoEval) Evict(configID string) {
	re.qc.Evict(configID + "-")
}

// inputOf returns the input document for r: the fields of the scan result with the parsed
// snapshot under "resource".
func inputOf(r *risk.ScanResult) (input map[string]any, err error) {
	input = make(map[string]any)
	if err = reencode(r, &input); err != nil {
		return nil, err
	}

	resource := make(map[string]any)
	if strings.TrimSpace(r.Snapshot) != "" {
		if err = json.Unmarshal([]byte(r.Snapshot), &resource); err != nil {
			return nil, fmt.Errorf("could not parse snapshot of resource %s: %w", r.ResourceID, err)
		}
	}

	delete(input, "snapshot")
	input[inputResource] = resource

	return input, nil
}

func queryKey(config *whitelist.WhitedRuleConfig) string {
	sum := sha256.Sum256([]byte(config.RegoContent))
	return config.ID + "-" + hex.EncodeToString(sum[:8])
}

func newQueryCache() *queryCache {
	return &queryCache{
		cache: make(map[string]*rego.PreparedEvalQuery),
	}
}

func reencode[T any](in any, out *T) (err error) {
	var b []byte
	if b, err = json.Marshal(in); err != nil {
		return fmt.Errorf("JSON marshal failed: %w", err)
	}

	if err = json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	return
}

// Get returns the prepared query for the given key. If the key was not found in the cache,
// the orElse function is executed to populate the cache.
func (qc *queryCache) Get(key string, orElse orElseFunc) (query *rego.PreparedEvalQuery, err error) {
	var (
		ok bool
	)

	qc.Lock()
	defer qc.Unlock()

	query, ok = qc.cache[key]
	if ok {
		return
	}

	query, err = orElse(key)
	if err != nil {
		return nil, err
	}

	qc.cache[key] = query
	return
}

// Evict deletes all keys from the cache that start with prefix.
func (qc *queryCache) Evict(prefix string) {
	qc.Lock()
	defer qc.Unlock()

	for k := range qc.cache {
		if strings.HasPrefix(k, prefix) {
			delete(qc.cache, k)
		}
	}
}

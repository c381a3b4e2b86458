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
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultExpression returns the expression to use for a rule with n condition items. A rule with
// a single condition and no expression selects that condition.
func DefaultExpression(n int, expr string) string {
	if n == 1 && strings.TrimSpace(expr) == "" {
		return "1"
	}

	return expr
}

// GenerateJSONCond validates expr against the configured items and returns the canonical JSON form
// of the condition. Every node of the parsed expression becomes an object with a single "and" or
// "or" key holding its operands, and every referenced condition is inlined as a leaf, e.g.:
//
//	{"and":[{"id":1,"key":"status","operator":"EQ","value":"active"},{"or":[...]}]}
//
// A lone condition is wrapped into an "and" node. The result only depends on the referenced items
// and the structure of expr.
func GenerateJSONCond(items map[int]ConditionItem, expr string) (string, error) {
	e, err := ParseExpression(expr)
	if err != nil {
		return "", err
	}

	for _, id := range e.IDs() {
		if _, ok := items[id]; !ok {
			return "", fmt.Errorf("%w: %d", ErrUnknownCondition, id)
		}
	}

	root := e.root
	if root.leaf() {
		root = &node{op: OpAnd, children: []*node{root}}
	}

	b, err := json.Marshal(jsonNode(root, items))
	if err != nil {
		return "", fmt.Errorf("could not marshal condition: %w", err)
	}

	return string(b), nil
}

func jsonNode(n *node, items map[int]ConditionItem) any {
	if n.leaf() {
		c := items[n.id]
		c.ID = n.id
		return c
	}

	operands := make([]any, 0, len(n.children))
	for _, c := range n.children {
		operands = append(operands, jsonNode(c, items))
	}

	return map[LogicalOp][]any{n.op: operands}
}

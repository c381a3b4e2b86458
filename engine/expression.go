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
	"slices"
	"strconv"
	"strings"
)

// LogicalOp combines the operands of an expression node.
type LogicalOp string

const (
	OpAnd LogicalOp = "and"
	OpOr  LogicalOp = "or"
)

// Expression is a parsed logical expression over condition IDs, such as "1&&(2||3)". Operators
// are applied strictly from left to right, there is no precedence of && over ||. Parentheses
// group as written.
type Expression struct {
	root  *node
	mixed bool
}

// node is either a leaf referencing a condition ID or an operator applied to children.
type node struct {
	id       int
	op       LogicalOp
	children []*node
}

func (n *node) leaf() bool {
	return n.op == ""
}

// ParseExpression parses a logical expression. Tokens are positive integers, "&&", "||",
// parentheses and whitespace.
func ParseExpression(expr string) (e *Expression, err error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}

	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: expression is empty", ErrInvalidExpression)
	}

	p := &parser{tokens: tokens}
	root, err := p.expression()
	if err != nil {
		return nil, err
	}

	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("%w: unexpected %q", ErrInvalidExpression, p.tokens[p.pos])
	}

	return &Expression{root: root, mixed: p.mixed}, nil
}

// IDs returns the distinct condition IDs referenced by e in ascending order.
func (e *Expression) IDs() []int {
	var ids []int
	e.root.walk(func(n *node) {
		if n.leaf() && !slices.Contains(ids, n.id) {
			ids = append(ids, n.id)
		}
	})

	slices.Sort(ids)
	return ids
}

// HasMixedOperators returns true, if && and || are mixed without parentheses, e.g. "1&&2||3".
// Such expressions evaluate left to right, which might not be what their author intended.
func (e *Expression) HasMixedOperators() bool {
	return e.mixed
}

// Evaluate computes the value of e from the results of the individual conditions.
func (e *Expression) Evaluate(results map[int]bool) (bool, error) {
	for _, id := range e.IDs() {
		if _, ok := results[id]; !ok {
			return false, fmt.Errorf("%w: %d", ErrUnknownCondition, id)
		}
	}

	return e.root.eval(results), nil
}

// String returns the canonical, fully parenthesized form of e.
func (e *Expression) String() string {
	var sb strings.Builder
	e.root.write(&sb, true)
	return sb.String()
}

func (n *node) walk(fn func(n *node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

func (n *node) eval(results map[int]bool) bool {
	switch n.op {
	case OpAnd:
		for _, c := range n.children {
			if !c.eval(results) {
				return false
			}
		}
		return true
	case OpOr:
		for _, c := range n.children {
			if c.eval(results) {
				return true
			}
		}
		return false
	default:
		return results[n.id]
	}
}

func (n *node) write(sb *strings.Builder, top bool) {
	if n.leaf() {
		sb.WriteString(strconv.Itoa(n.id))
		return
	}

	sep := "&&"
	if n.op == OpOr {
		sep = "||"
	}

	if !top {
		sb.WriteByte('(')
	}
	for i, c := range n.children {
		if i > 0 {
			sb.WriteString(sep)
		}
		c.write(sb, false)
	}
	if !top {
		sb.WriteByte(')')
	}
}

// combine applies op to left and right. Operands that already apply op are merged into one
// node, which is equivalent since && and || are associative.
func combine(op LogicalOp, left, right *node) *node {
	n := &node{op: op}
	for _, operand := range []*node{left, right} {
		if operand.op == op {
			n.children = append(n.children, operand.children...)
		} else {
			n.children = append(n.children, operand)
		}
	}

	return n
}

func tokenize(expr string) (tokens []string, err error) {
	for i := 0; i < len(expr); {
		ch := expr[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '(' || ch == ')':
			tokens = append(tokens, string(ch))
			i++
		case ch >= '0' && ch <= '9':
			j := i
			for j < len(expr) && expr[j] >= '0' && expr[j] <= '9' {
				j++
			}
			tokens = append(tokens, expr[i:j])
			i = j
		case strings.HasPrefix(expr[i:], "&&") || strings.HasPrefix(expr[i:], "||"):
			tokens = append(tokens, expr[i:i+2])
			i += 2
		default:
			return nil, fmt.Errorf("%w: unexpected character %q at position %d", ErrInvalidExpression, ch, i)
		}
	}

	return tokens, nil
}

type parser struct {
	tokens []string
	pos    int
	mixed  bool
}

// expression parses operands joined by operators up to the end of the input or a closing
// parenthesis.
func (p *parser) expression() (*node, error) {
	left, err := p.operand()
	if err != nil {
		return nil, err
	}

	var seen LogicalOp
	for p.pos < len(p.tokens) && p.tokens[p.pos] != ")" {
		var op LogicalOp
		switch p.tokens[p.pos] {
		case "&&":
			op = OpAnd
		case "||":
			op = OpOr
		default:
			return nil, fmt.Errorf("%w: expected operator, got %q", ErrInvalidExpression, p.tokens[p.pos])
		}
		p.pos++

		if seen != "" && seen != op {
			p.mixed = true
		}
		seen = op

		right, err := p.operand()
		if err != nil {
			return nil, err
		}

		left = combine(op, left, right)
	}

	return left, nil
}

func (p *parser) operand() (*node, error) {
	if p.pos >= len(p.tokens) {
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrInvalidExpression)
	}

	tok := p.tokens[p.pos]
	p.pos++

	switch tok {
	case "(":
		n, err := p.expression()
		if err != nil {
			return nil, err
		}

		if p.pos >= len(p.tokens) || p.tokens[p.pos] != ")" {
			return nil, fmt.Errorf("%w: missing closing parenthesis", ErrInvalidExpression)
		}
		p.pos++

		return n, nil
	case ")", "&&", "||":
		return nil, fmt.Errorf("%w: unexpected %q", ErrInvalidExpression, tok)
	default:
		id, err := strconv.Atoi(tok)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: invalid condition id %q", ErrInvalidExpression, tok)
		}

		return &node{id: id}, nil
	}
}

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
	"strings"
)

// OperatorHandler evaluates conditions of a single operator.
type OperatorHandler interface {
	// CanHandle returns true, if the handler is responsible for the operator of c.
	CanHandle(c ConditionItem) bool

	// Evaluate compares one fact with the value of c.
	Evaluate(c ConditionItem, f Fact) bool
}

var handlers = map[Operator]OperatorHandler{
	OperatorEQ:      eqHandler{},
	OperatorNE:      neHandler{},
	OperatorLike:    likeHandler{},
	OperatorNotLike: notLikeHandler{},
	OperatorIn:      inHandler{},
	OperatorNotIn:   notInHandler{},
	OperatorAllIn:   allInHandler{},
	OperatorAnyIn:   anyInHandler{},
}

// HandlerFor returns the handler of op.
func HandlerFor(op Operator) (h OperatorHandler, ok bool) {
	h, ok = handlers[op]
	return
}

// Handle evaluates c against facts. Only facts with the key of c are considered and if there are
// none, the condition holds. Otherwise, it holds if at least one of them satisfies the operator.
// Conditions with an unknown operator never hold, unless no fact has their key.
func Handle(c ConditionItem, facts []Fact) bool {
	relevant := factsWithKey(facts, c.Key)
	if len(relevant) == 0 {
		return true
	}

	h, ok := handlers[c.Operator]
	if !ok || !h.CanHandle(c) {
		return false
	}

	return slices.ContainsFunc(relevant, func(f Fact) bool {
		return h.Evaluate(c, f)
	})
}

// HandleComplete is a stricter variant of [Handle] that only supports the operators EQ, ALL_IN
// and ANY_IN. It returns [ErrOperatorNull] or [ErrOperatorNotSupported] for any other operator,
// even if no fact has the key of c.
func HandleComplete(c ConditionItem, facts []Fact) (bool, error) {
	var h OperatorHandler

	switch c.Operator {
	case "":
		return false, ErrOperatorNull
	case OperatorEQ, OperatorAllIn, OperatorAnyIn:
		h = handlers[c.Operator]
	default:
		return false, fmt.Errorf("%w: %s", ErrOperatorNotSupported, c.Operator)
	}

	relevant := factsWithKey(facts, c.Key)
	if len(relevant) == 0 {
		return true, nil
	}

	return slices.ContainsFunc(relevant, func(f Fact) bool {
		return h.Evaluate(c, f)
	}), nil
}

type eqHandler struct{}

func (eqHandler) CanHandle(c ConditionItem) bool {
	return c.Operator == OperatorEQ
}

func (eqHandler) Evaluate(c ConditionItem, f Fact) bool {
	return equal(c.Value, f.Value)
}

type neHandler struct{}

func (neHandler) CanHandle(c ConditionItem) bool {
	return c.Operator == OperatorNE
}

func (neHandler) Evaluate(c ConditionItem, f Fact) bool {
	return !equal(c.Value, f.Value)
}

type likeHandler struct{}

func (likeHandler) CanHandle(c ConditionItem) bool {
	return c.Operator == OperatorLike
}

func (likeHandler) Evaluate(c ConditionItem, f Fact) bool {
	contained, ok := contains(f.Value, c.Value)
	return ok && contained
}

type notLikeHandler struct{}

func (notLikeHandler) CanHandle(c ConditionItem) bool {
	return c.Operator == OperatorNotLike
}

func (notLikeHandler) Evaluate(c ConditionItem, f Fact) bool {
	contained, ok := contains(f.Value, c.Value)
	return !ok || !contained
}

type inHandler struct{}

func (inHandler) CanHandle(c ConditionItem) bool {
	return c.Operator == OperatorIn
}

func (inHandler) Evaluate(c ConditionItem, f Fact) bool {
	member, ok := memberOf(f.Value, c.Value)
	return ok && member
}

type notInHandler struct{}

func (notInHandler) CanHandle(c ConditionItem) bool {
	return c.Operator == OperatorNotIn
}

func (notInHandler) Evaluate(c ConditionItem, f Fact) bool {
	member, ok := memberOf(f.Value, c.Value)
	return !ok || !member
}

// allInHandler holds if every condition value is a member of the fact's collection.
type allInHandler struct{}

func (allInHandler) CanHandle(c ConditionItem) bool {
	return c.Operator == OperatorAllIn
}

func (allInHandler) Evaluate(c ConditionItem, f Fact) bool {
	want, ok := conditionValues(c.Value)
	if !ok || len(want) == 0 {
		return false
	}

	have, ok := factValues(f.Value)
	if !ok {
		return false
	}

	for _, v := range want {
		if !slices.Contains(have, v) {
			return false
		}
	}

	return true
}

// anyInHandler holds if at least one condition value is a member of the fact's collection.
type anyInHandler struct{}

func (anyInHandler) CanHandle(c ConditionItem) bool {
	return c.Operator == OperatorAnyIn
}

func (anyInHandler) Evaluate(c ConditionItem, f Fact) bool {
	want, ok := conditionValues(c.Value)
	if !ok {
		return false
	}

	have, ok := factValues(f.Value)
	if !ok {
		return false
	}

	return slices.ContainsFunc(want, func(v string) bool {
		return slices.Contains(have, v)
	})
}

// equal compares the trimmed string forms of a and b. Two nil values are equal.
func equal(a, b any) bool {
	as, aok := stringOf(a)
	bs, bok := stringOf(b)
	if !aok || !bok {
		return aok == bok
	}

	return strings.TrimSpace(as) == strings.TrimSpace(bs)
}

// contains reports whether the string form of fact contains the one of value. ok is false if
// either is nil.
func contains(fact, value any) (contained bool, ok bool) {
	fs, fok := stringOf(fact)
	vs, vok := stringOf(value)
	if !fok || !vok {
		return false, false
	}

	return strings.Contains(fs, vs), true
}

// memberOf reports whether the trimmed fact is one of the condition values. ok is false if either
// is nil.
func memberOf(fact, values any) (member bool, ok bool) {
	fs, fok := stringOf(fact)
	list, vok := conditionValues(values)
	if !fok || !vok {
		return false, false
	}

	return slices.Contains(list, strings.TrimSpace(fs)), true
}

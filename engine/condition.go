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
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// Operator is the comparison a [ConditionItem] performs.
type Operator string

const (
	OperatorEQ      Operator = "EQ"
	OperatorNE      Operator = "NE"
	OperatorLike    Operator = "LIKE"
	OperatorNotLike Operator = "NOT_LIKE"
	OperatorIn      Operator = "IN"
	OperatorNotIn   Operator = "NOT_IN"
	OperatorAllIn   Operator = "ALL_IN"
	OperatorAnyIn   Operator = "ANY_IN"
)

// Operators contains all known operators.
var Operators = []Operator{
	OperatorEQ,
	OperatorNE,
	OperatorLike,
	OperatorNotLike,
	OperatorIn,
	OperatorNotIn,
	OperatorAllIn,
	OperatorAnyIn,
}

// Valid returns true, if op is a known operator.
func (op Operator) Valid() bool {
	_, ok := handlers[op]
	return ok
}

// UnmarshalText accepts operators regardless of their case and surrounding whitespace.
func (op *Operator) UnmarshalText(text []byte) error {
	*op = Operator(strings.ToUpper(strings.TrimSpace(string(text))))
	return nil
}

// ConditionItem is a single configured condition of a whitelist rule. ID is the 1-based index
// that the logical expression of the rule uses to reference the condition.
type ConditionItem struct {
	ID       int      `json:"id" yaml:"id"`
	Key      string   `json:"key" yaml:"key"`
	Operator Operator `json:"operator" yaml:"operator"`

	// Value is a scalar, a comma separated string or a list, depending on the operator.
	Value any `json:"value" yaml:"value"`
}

// ParseConditionItems decodes a JSON list of condition items. Items without an ID get their
// 1-based position as ID. An empty string yields a nil list.
func ParseConditionItems(ruleConfig string) ([]ConditionItem, error) {
	if strings.TrimSpace(ruleConfig) == "" {
		return nil, nil
	}

	var items []ConditionItem
	if err := json.Unmarshal([]byte(ruleConfig), &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRuleConfig, err)
	}

	if items == nil {
		items = []ConditionItem{}
	}

	for i := range items {
		if items[i].ID == 0 {
			items[i].ID = i + 1
		}
	}

	if err := uniqueIDs(items); err != nil {
		return nil, err
	}

	return items, nil
}

// uniqueIDs returns an error if two items share an ID, since the expression could only ever
// reference one of them.
func uniqueIDs(items []ConditionItem) error {
	seen := make(map[int]bool, len(items))
	for i, c := range items {
		if c.ID == 0 {
			c.ID = i + 1
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate condition id %d", ErrInvalidRuleConfig, c.ID)
		}
		seen[c.ID] = true
	}

	return nil
}

// ItemsByID indexes items by their ID. Items without an ID get their 1-based position.
func ItemsByID(items []ConditionItem) map[int]ConditionItem {
	m := make(map[int]ConditionItem, len(items))
	for i, c := range items {
		if c.ID == 0 {
			c.ID = i + 1
		}
		m[c.ID] = c
	}

	return m
}

// stringOf normalises v for string comparison. Scalars are converted with cast, everything else
// is encoded as JSON. The second return value is false if v is nil.
func stringOf(v any) (string, bool) {
	if v == nil {
		return "", false
	}

	if s, err := cast.ToStringE(v); err == nil {
		return s, true
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v), true
	}

	return string(b), true
}

// sliceOf returns the string form of every element, if v is a slice or an array.
func sliceOf(v any) ([]string, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	// []byte is a string in disguise
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}

	out := make([]string, 0, rv.Len())
	for i := range rv.Len() {
		if s, ok := stringOf(rv.Index(i).Interface()); ok {
			out = append(out, s)
		}
	}

	return out, true
}

// jsonArrayOf decodes s, if it is the JSON text of an array.
func jsonArrayOf(s string) ([]string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") {
		return nil, false
	}

	var arr []any
	if err := json.Unmarshal([]byte(s), &arr); err != nil {
		return nil, false
	}

	return sliceOf(arr)
}

// conditionValues returns the members of a condition value, which is either a list, the JSON text
// of a list or a comma separated string. Members are trimmed.
func conditionValues(v any) ([]string, bool) {
	if v == nil {
		return nil, false
	}

	values, ok := sliceOf(v)
	if !ok {
		s, _ := stringOf(v)
		if values, ok = jsonArrayOf(s); !ok {
			values = strings.Split(s, ",")
		}
	}

	return trimAll(values), true
}

// factValues returns the members of a fact value. Lists and the JSON text of lists are
// collections, any other value is a collection of one.
func factValues(v any) ([]string, bool) {
	if v == nil {
		return nil, false
	}

	values, ok := sliceOf(v)
	if !ok {
		s, _ := stringOf(v)
		if values, ok = jsonArrayOf(s); !ok {
			values = []string{s}
		}
	}

	return trimAll(values), true
}

func trimAll(values []string) []string {
	for i := range values {
		values[i] = strings.TrimSpace(values[i])
	}

	return values
}

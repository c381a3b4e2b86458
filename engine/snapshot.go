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
	"strings"

	"github.com/tidwall/gjson"
)

// FlattenSnapshot turns the JSON object of a resource snapshot into facts. Nested fields are
// addressed by their dotted path, e.g. "network.vpc.id". Scalars become strings, numbers and
// booleans keep their JSON text and null becomes a nil value. Objects yield a fact holding their
// JSON text in addition to the facts of their fields. Arrays of scalars yield a single fact with a
// []string value, while objects within arrays are flattened under the path of the array, so that
// every element contributes a fact with the same key.
//
// An empty snapshot yields no facts.
func FlattenSnapshot(snapshot string) ([]Fact, error) {
	if strings.TrimSpace(snapshot) == "" {
		return nil, nil
	}

	if !gjson.Valid(snapshot) {
		return nil, ErrInvalidSnapshot
	}

	root := gjson.Parse(snapshot)
	if !root.IsObject() {
		return nil, ErrInvalidSnapshot
	}

	var facts []Fact
	flatten("", root, &facts)

	return facts, nil
}

func flatten(path string, v gjson.Result, facts *[]Fact) {
	switch {
	case v.IsObject():
		if path != "" {
			*facts = append(*facts, Fact{Key: path, Value: v.Raw})
		}

		v.ForEach(func(key, value gjson.Result) bool {
			flatten(join(path, key.String()), value, facts)
			return true
		})
	case v.IsArray():
		var (
			elems   = v.Array()
			scalars = make([]string, 0, len(elems))
		)

		for _, elem := range elems {
			if elem.IsObject() || elem.IsArray() {
				flatten(path, elem, facts)
			} else if s, ok := scalarOf(elem); ok {
				scalars = append(scalars, s)
			}
		}

		if len(scalars) > 0 || len(elems) == 0 {
			*facts = append(*facts, Fact{Key: path, Value: scalars})
		}
	default:
		s, ok := scalarOf(v)
		if !ok {
			*facts = append(*facts, Fact{Key: path, Value: nil})
			return
		}

		*facts = append(*facts, Fact{Key: path, Value: s})
	}
}

// scalarOf returns the string form of a JSON scalar. It returns false for null.
func scalarOf(v gjson.Result) (string, bool) {
	switch v.Type {
	case gjson.Null:
		return "", false
	case gjson.Number:
		return v.Raw, true
	default:
		return v.String(), true
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}

	return path + "." + key
}

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
	"maps"
	"slices"
)

// Fact is a single named datum of a scanned resource. Several facts may share a key, e.g., the
// elements of a repeated nested object.
type Fact struct {
	Key   string
	Value any
}

// FactsFromMap returns one fact per map entry, ordered by key.
func FactsFromMap(m map[string]string) []Fact {
	facts := make([]Fact, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		facts = append(facts, Fact{Key: k, Value: m[k]})
	}

	return facts
}

// factsWithKey returns the facts that have the given key.
func factsWithKey(facts []Fact, key string) []Fact {
	var out []Fact
	for _, f := range facts {
		if f.Key == key {
			out = append(out, f)
		}
	}

	return out
}

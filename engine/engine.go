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

// Package engine implements the whitelist rule engine. A whitelist rule consists of condition
// items, each comparing a fact of a scanned resource with a configured value, and a logical
// expression combining the results of the individual conditions into one verdict.
package engine

import (
	"errors"
)

var (
	// ErrOperatorNull is returned by [HandleComplete] if a condition has no operator.
	ErrOperatorNull = errors.New("operator is null")

	// ErrOperatorNotSupported is returned by [HandleComplete] for operators it cannot dispatch.
	ErrOperatorNotSupported = errors.New("operator not supported")

	// ErrInvalidExpression is returned if a logical expression cannot be parsed.
	ErrInvalidExpression = errors.New("invalid expression")

	// ErrUnknownCondition is returned if a logical expression references a condition that is not
	// configured.
	ErrUnknownCondition = errors.New("unknown condition")

	// ErrInvalidSnapshot is returned if a resource snapshot is not a JSON object.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrInvalidRuleConfig is returned if a stored list of condition items cannot be decoded.
	ErrInvalidRuleConfig = errors.New("invalid rule config")
)

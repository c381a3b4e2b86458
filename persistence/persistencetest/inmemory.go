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

// Package persistencetest provides utilities for testing database operations.
package persistencetest

import (
	"testing"

	"confirmate.io/posture/persistence"
	"confirmate.io/posture/util/assert"
)

// NewInMemoryDB creates a new in-memory database for testing purposes.
//
// It applies auto-migration for the provided types and executes the init functions afterwards,
// e.g., to seed data. If there is an error during the creation of the DB, the test will panic
// immediately.
func NewInMemoryDB(t *testing.T, types []any, init ...func(persistence.DB)) persistence.DB {
	db, err := persistence.NewDB(
		persistence.WithInMemory(),
		persistence.WithAutoMigration(types...),
	)
	if !assert.NoError(t, err, "could not create in-memory db") {
		panic(err)
	}

	for _, fn := range init {
		fn(db)
	}

	return db
}

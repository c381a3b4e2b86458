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

package persistencetest

import (
	"testing"

	"confirmate.io/posture/persistence"
)

// Operation names a [persistence.DB] operation that can fail.
type Operation string

const (
	OpCreate Operation = "create"
	OpSave   Operation = "save"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpGet    Operation = "get"
	OpList   Operation = "list"
	OpCount  Operation = "count"
	OpRaw    Operation = "raw"
)

// errorDB is a test-only implementation of the DB interface which allows injecting
// errors for specific operations. All other operations are forwarded to an in-memory DB.
type errorDB struct {
	persistence.DB
	errs map[Operation]error
}

// ErrorDB returns a DB that fails on the given operation with err.
func ErrorDB(t *testing.T, op Operation, err error, types []any, init ...func(persistence.DB)) persistence.DB {
	return &errorDB{
		DB:   NewInMemoryDB(t, types, init...),
		errs: map[Operation]error{op: err},
	}
}

// CreateErrorDB returns a DB that fails on Create with the provided error.
func CreateErrorDB(t *testing.T, err error, types []any, init ...func(persistence.DB)) persistence.DB {
	return ErrorDB(t, OpCreate, err, types, init...)
}

// SaveErrorDB returns a DB that fails on Save with the provided error.
func SaveErrorDB(t *testing.T, err error, types []any, init ...func(persistence.DB)) persistence.DB {
	return ErrorDB(t, OpSave, err, types, init...)
}

// UpdateErrorDB returns a DB that fails on Update with the provided error.
func UpdateErrorDB(t *testing.T, err error, types []any, init ...func(persistence.DB)) persistence.DB {
	return ErrorDB(t, OpUpdate, err, types, init...)
}

// DeleteErrorDB returns a DB that fails on Delete with the provided error.
func DeleteErrorDB(t *testing.T, err error, types []any, init ...func(persistence.DB)) persistence.DB {
	return ErrorDB(t, OpDelete, err, types, init...)
}

// GetErrorDB returns a DB that fails on Get with the provided error.
func GetErrorDB(t *testing.T, err error, types []any, init ...func(persistence.DB)) persistence.DB {
	return ErrorDB(t, OpGet, err, types, init...)
}

// ListErrorDB returns a DB that fails on List with the provided error.
func ListErrorDB(t *testing.T, err error, types []any, init ...func(persistence.DB)) persistence.DB {
	return ErrorDB(t, OpList, err, types, init...)
}

// CountErrorDB returns a DB that fails on Count with the provided error.
func CountErrorDB(t *testing.T, err error, types []any, init ...func(persistence.DB)) persistence.DB {
	return ErrorDB(t, OpCount, err, types, init...)
}

// RawErrorDB returns a DB that fails on Raw with the provided error.
func RawErrorDB(t *testing.T, err error, types []any, init ...func(persistence.DB)) persistence.DB {
	return ErrorDB(t, OpRaw, err, types, init...)
}

func (e *errorDB) Create(r any) error {
	if err := e.errs[OpCreate]; err != nil {
		return err
	}

	return e.DB.Create(r)
}

func (e *errorDB) Save(r any, conds ...any) error {
	if err := e.errs[OpSave]; err != nil {
		return err
	}

	return e.DB.Save(r, conds...)
}

func (e *errorDB) Update(r any, conds ...any) error {
	if err := e.errs[OpUpdate]; err != nil {
		return err
	}

	return e.DB.Update(r, conds...)
}

func (e *errorDB) Delete(r any, conds ...any) error {
	if err := e.errs[OpDelete]; err != nil {
		return err
	}

	return e.DB.Delete(r, conds...)
}

func (e *errorDB) Get(r any, conds ...any) error {
	if err := e.errs[OpGet]; err != nil {
		return err
	}

	return e.DB.Get(r, conds...)
}

func (e *errorDB) List(r any, orderBy string, asc bool, offset int, limit int, conds ...any) error {
	if err := e.errs[OpList]; err != nil {
		return err
	}

	return e.DB.List(r, orderBy, asc, offset, limit, conds...)
}

func (e *errorDB) Count(r any, conds ...any) (int64, error) {
	if err := e.errs[OpCount]; err != nil {
		return 0, err
	}

	return e.DB.Count(r, conds...)
}

func (e *errorDB) Raw(r any, query string, args ...any) error {
	if err := e.errs[OpRaw]; err != nil {
		return err
	}

	return e.DB.Raw(r, query, args...)
}

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

package service

import (
	"testing"

	"confirmate.io/posture/api"
	"confirmate.io/posture/api/whitelist"
	"confirmate.io/posture/persistence"
	"confirmate.io/posture/persistence/persistencetest"
	"confirmate.io/posture/util/assert"

	"connectrpc.com/connect"
)

func token(t *testing.T, start int64, size int32) string {
	s, err := (&api.PageToken{Start: start, Size: size}).Encode()
	assert.NoError(t, err)

	return s
}

func TestPaginateSlice(t *testing.T) {
	type args struct {
		req    api.PaginatedRequest
		values []int
		opts   PaginationOpts
	}
	tests := []struct {
		name     string
		args     args
		wantPage assert.Want[[]int]
		wantNbt  assert.Want[string]
		wantErr  assert.WantErr
	}{
		{
			name: "first page",
			args: args{
				req:    &whitelist.ListConfigsRequest{PageSize: 2},
				values: []int{5, 4, 3, 2, 1},
				opts:   PaginationOpts{10, 10},
			},
			wantPage: func(t *testing.T, got []int, msgAndArgs ...any) bool {
				return assert.Equal(t, []int{1, 2}, got)
			},
			wantNbt: func(t *testing.T, got string, msgAndArgs ...any) bool {
				return assert.Equal(t, token(t, 2, 2), got)
			},
			wantErr: assert.NoError,
		},
		{
			name: "next page",
			args: args{
				req:    &whitelist.ListConfigsRequest{PageSize: 2, PageToken: token(t, 2, 2)},
				values: []int{1, 2, 3, 4, 5},
				opts:   PaginationOpts{10, 10},
			},
			wantPage: func(t *testing.T, got []int, msgAndArgs ...any) bool {
				return assert.Equal(t, []int{3, 4}, got)
			},
			wantNbt: func(t *testing.T, got string, msgAndArgs ...any) bool {
				return assert.Equal(t, token(t, 4, 2), got)
			},
			wantErr: assert.NoError,
		},
		{
			name: "last page",
			args: args{
				req:    &whitelist.ListConfigsRequest{PageSize: 2, PageToken: token(t, 4, 2)},
				values: []int{1, 2, 3, 4, 5},
				opts:   PaginationOpts{10, 10},
			},
			wantPage: func(t *testing.T, got []int, msgAndArgs ...any) bool {
				return assert.Equal(t, []int{5}, got)
			},
			wantNbt: assert.Empty[string],
			wantErr: assert.NoError,
		},
		{
			name: "empty slice",
			args: args{
				req:    &whitelist.ListConfigsRequest{PageSize: 2},
				values: []int{},
				opts:   PaginationOpts{10, 10},
			},
			wantPage: func(t *testing.T, got []int, msgAndArgs ...any) bool {
				return assert.Equal(t, []int{}, got)
			},
			wantNbt: assert.Empty[string],
			wantErr: assert.NoError,
		},
		{
			name: "invalid page token",
			args: args{
				req:    &whitelist.ListConfigsRequest{PageSize: 2, PageToken: "invalid-token!!!"},
				values: []int{1, 2, 3, 4, 5},
				opts:   PaginationOpts{10, 10},
			},
			wantPage: assert.Nil[[]int],
			wantNbt:  assert.Empty[string],
			wantErr: func(t *testing.T, err error, msgAndArgs ...any) bool {
				return assert.ErrorIs(t, err, api.ErrInvalidPageToken)
			},
		},
		{
			name: "page token offset beyond slice length",
			args: args{
				req:    &whitelist.ListConfigsRequest{PageSize: 2, PageToken: token(t, 26, 2)},
				values: []int{1, 2, 3, 4, 5},
				opts:   PaginationOpts{10, 10},
			},
			wantPage: func(t *testing.T, got []int, msgAndArgs ...any) bool {
				return assert.Equal(t, []int{}, got)
			},
			wantNbt: assert.Empty[string],
			wantErr: assert.NoError,
		},
		{
			name: "zero page size uses default",
			args: args{
				req:    &whitelist.ListConfigsRequest{},
				values: []int{1, 2, 3, 4, 5},
				opts:   PaginationOpts{DefaultPageSize: 3, MaxPageSize: 10},
			},
			wantPage: func(t *testing.T, got []int, msgAndArgs ...any) bool {
				return assert.Equal(t, []int{1, 2, 3}, got)
			},
			wantNbt: func(t *testing.T, got string, msgAndArgs ...any) bool {
				return assert.Equal(t, token(t, 3, 3), got)
			},
			wantErr: assert.NoError,
		},
		{
			name: "page size is capped",
			args: args{
				req:    &whitelist.ListConfigsRequest{PageSize: 100},
				values: []int{1, 2, 3, 4, 5},
				opts:   PaginationOpts{DefaultPageSize: 2, MaxPageSize: 4},
			},
			wantPage: func(t *testing.T, got []int, msgAndArgs ...any) bool {
				return assert.Equal(t, []int{1, 2, 3, 4}, got)
			},
			wantNbt: func(t *testing.T, got string, msgAndArgs ...any) bool {
				return assert.Equal(t, token(t, 4, 4), got)
			},
			wantErr: assert.NoError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotPage, gotNbt, err := PaginateSlice(tt.args.req, tt.args.values, func(a int, b int) bool { return a < b }, tt.args.opts)

			tt.wantErr(t, err)
			tt.wantNbt(t, gotNbt)
			tt.wantPage(t, gotPage)
		})
	}
}

func TestPaginateStorage(t *testing.T) {
	seed := func(db persistence.DB) {
		for _, id := range []string{"1", "2", "3", "4", "5"} {
			assert.NoError(t, db.Create(&whitelist.Tenant{ID: id, Name: "tenant-" + id}))
		}
	}

	type args struct {
		req   api.PaginatedRequest
		db    persistence.DB
		opts  PaginationOpts
		conds []any
	}
	tests := []struct {
		name     string
		args     args
		wantPage assert.Want[[]whitelist.Tenant]
		wantNbt  assert.Want[string]
		wantErr  assert.WantErr
	}{
		{
			name: "first page",
			args: args{
				req:  &whitelist.ListConfigsRequest{PageSize: 2},
				db:   persistencetest.NewInMemoryDB(t, []any{whitelist.Tenant{}}, seed),
				opts: PaginationOpts{10, 10},
			},
			wantPage: func(t *testing.T, got []whitelist.Tenant, msgAndArgs ...any) bool {
				return assert.Equal(t, []whitelist.Tenant{{ID: "1", Name: "tenant-1"}, {ID: "2", Name: "tenant-2"}}, got)
			},
			wantNbt: func(t *testing.T, got string, msgAndArgs ...any) bool {
				return assert.Equal(t, token(t, 2, 2), got)
			},
			wantErr: assert.NoError,
		},
		{
			name: "last page",
			args: args{
				req:  &whitelist.ListConfigsRequest{PageSize: 2, PageToken: token(t, 4, 2)},
				db:   persistencetest.NewInMemoryDB(t, []any{whitelist.Tenant{}}, seed),
				opts: PaginationOpts{10, 10},
			},
			wantPage: func(t *testing.T, got []whitelist.Tenant, msgAndArgs ...any) bool {
				return assert.Equal(t, []whitelist.Tenant{{ID: "5", Name: "tenant-5"}}, got)
			},
			wantNbt: assert.Empty[string],
			wantErr: assert.NoError,
		},
		{
			name: "with condition",
			args: args{
				req:   &whitelist.ListConfigsRequest{PageSize: 2},
				db:    persistencetest.NewInMemoryDB(t, []any{whitelist.Tenant{}}, seed),
				opts:  PaginationOpts{10, 10},
				conds: []any{"id = ?", "3"},
			},
			wantPage: func(t *testing.T, got []whitelist.Tenant, msgAndArgs ...any) bool {
				return assert.Equal(t, []whitelist.Tenant{{ID: "3", Name: "tenant-3"}}, got)
			},
			wantNbt: assert.Empty[string],
			wantErr: assert.NoError,
		},
		{
			name: "empty database",
			args: args{
				req:  &whitelist.ListConfigsRequest{PageSize: 2},
				db:   persistencetest.NewInMemoryDB(t, []any{whitelist.Tenant{}}),
				opts: PaginationOpts{10, 10},
			},
			wantPage: func(t *testing.T, got []whitelist.Tenant, msgAndArgs ...any) bool {
				return assert.Equal(t, []whitelist.Tenant{}, got)
			},
			wantNbt: assert.Empty[string],
			wantErr: assert.NoError,
		},
		{
			name: "invalid page token",
			args: args{
				req:  &whitelist.ListConfigsRequest{PageSize: 2, PageToken: "invalid-token!!!"},
				db:   persistencetest.NewInMemoryDB(t, []any{whitelist.Tenant{}}),
				opts: PaginationOpts{10, 10},
			},
			wantPage: assert.Nil[[]whitelist.Tenant],
			wantNbt:  assert.Empty[string],
			wantErr:  assert.WantConnectError(connect.CodeInvalidArgument),
		},
		{
			name: "page token offset beyond available records",
			args: args{
				req:  &whitelist.ListConfigsRequest{PageSize: 2, PageToken: token(t, 26, 2)},
				db:   persistencetest.NewInMemoryDB(t, []any{whitelist.Tenant{}}, seed),
				opts: PaginationOpts{10, 10},
			},
			wantPage: func(t *testing.T, got []whitelist.Tenant, msgAndArgs ...any) bool {
				return assert.Equal(t, []whitelist.Tenant{}, got)
			},
			wantNbt: assert.Empty[string],
			wantErr: assert.NoError,
		},
		{
			name: "database error",
			args: args{
				req:  &whitelist.ListConfigsRequest{PageSize: 2},
				db:   persistencetest.CountErrorDB(t, persistence.ErrDatabase, []any{whitelist.Tenant{}}),
				opts: PaginationOpts{10, 10},
			},
			wantPage: assert.Nil[[]whitelist.Tenant],
			wantNbt:  assert.Empty[string],
			wantErr:  assert.WantConnectError(connect.CodeInternal),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotPage, gotNbt, err := PaginateStorage[whitelist.Tenant](tt.args.req, tt.args.db,
				tt.args.opts, "id", true, tt.args.conds...)

			tt.wantErr(t, err)
			tt.wantNbt(t, gotNbt)
			tt.wantPage(t, gotPage)
		})
	}
}

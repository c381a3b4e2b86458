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
	"fmt"
	"slices"

	"confirmate.io/posture/api"
	"confirmate.io/posture/persistence"

	"connectrpc.com/connect"
)

// PaginationOpts configures the page sizes of list operations.
type PaginationOpts struct {
	// DefaultPageSize is used if the request does not specify a page size.
	DefaultPageSize int32

	// MaxPageSize caps the page size of a request.
	MaxPageSize int32
}

// DefaultPaginationOpts are the pagination options of all list operations.
var DefaultPaginationOpts = PaginationOpts{
	DefaultPageSize: 50,
	MaxPageSize:     1500,
}

// PaginateSlice sorts values with less and returns the page described by req, as well as the
// token of the next page. The token is empty on the last page.
func PaginateSlice[T any](req api.PaginatedRequest, values []T, less func(a T, b T) bool, opts PaginationOpts) (page []T, nbt string, err error) {
	token, err := pageTokenOf(req, opts)
	if err != nil {
		return nil, "", err
	}

	slices.SortStableFunc(values, func(a, b T) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		default:
			return 0
		}
	})

	var (
		total = int64(len(values))
		start = min(token.Start, total)
		end   = min(token.Start+int64(token.Size), total)
	)

	page = make([]T, 0, end-start)
	page = append(page, values[start:end]...)

	nbt, err = nextPageToken(token, total)
	return
}

// PaginateStorage retrieves the page described by req from db, as well as the token of the next
// page. Records are ordered by orderBy, if not empty.
func PaginateStorage[T any](req api.PaginatedRequest, db persistence.DB, opts PaginationOpts, orderBy string, asc bool, conds ...any) (page []T, nbt string, err error) {
	token, err := pageTokenOf(req, opts)
	if err != nil {
		return nil, "", err
	}

	var zero T
	total, err := db.Count(&zero, conds...)
	if err != nil {
		return nil, "", HandleDatabaseError(err)
	}

	page = make([]T, 0)
	if token.Start < total {
		err = db.List(&page, orderBy, asc, int(token.Start), int(token.Size), conds...)
		if err != nil {
			return nil, "", HandleDatabaseError(err)
		}
	}

	nbt, err = nextPageToken(token, total)
	return
}

func pageTokenOf(req api.PaginatedRequest, opts PaginationOpts) (token *api.PageToken, err error) {
	if s := req.GetPageToken(); s != "" {
		token, err = api.DecodePageToken(s)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	} else {
		token = &api.PageToken{}
	}

	token.Size = req.GetPageSize()
	if token.Size <= 0 {
		token.Size = opts.DefaultPageSize
	}
	if opts.MaxPageSize > 0 && token.Size > opts.MaxPageSize {
		token.Size = opts.MaxPageSize
	}

	return token, nil
}

func nextPageToken(token *api.PageToken, total int64) (string, error) {
	next := token.Start + int64(token.Size)
	if next >= total {
		return "", nil
	}

	s, err := (&api.PageToken{Start: next, Size: token.Size}).Encode()
	if err != nil {
		return "", fmt.Errorf("could not create next page token: %w", err)
	}

	return s, nil
}

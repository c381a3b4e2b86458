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

package api

// HasId is implemented by messages that refer to a single entity.
type HasId interface {
	GetId() string
}

// HasTenantId is implemented by messages that are scoped to a tenant.
type HasTenantId interface {
	GetTenantId() string
}

// PayloadRequest is implemented by requests that carry an entity to store.
type PayloadRequest interface {
	GetPayload() any
}

// PaginatedRequest is implemented by list requests.
type PaginatedRequest interface {
	GetPageSize() int32
	GetPageToken() string
}

// PaginatedResponse is implemented by list responses.
type PaginatedResponse interface {
	GetNextPageToken() string
	ResultsCount() int
}

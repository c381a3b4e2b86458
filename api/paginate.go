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

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"confirmate.io/posture/internal/util"
)

// ErrInvalidPageToken is returned if a page token cannot be decoded.
var ErrInvalidPageToken = errors.New("invalid page token")

// PageToken is the cursor encoded into the page_token of list requests.
type PageToken struct {
	Start int64 `json:"start"`
	Size  int32 `json:"size"`
}

// Encode returns the URL-safe string form of the token.
func (t *PageToken) Encode() (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("could not marshal page token: %w", err)
	}

	return base64.URLEncoding.EncodeToString(b), nil
}

// DecodePageToken decodes a token created by [PageToken.Encode].
func DecodePageToken(s string) (t *PageToken, err error) {
	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPageToken, err)
	}

	t = new(PageToken)
	if err = json.Unmarshal(b, t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPageToken, err)
	}

	if t.Start < 0 || t.Size < 0 {
		return nil, ErrInvalidPageToken
	}

	return t, nil
}

// GetResultsCount returns the number of results in a paginated response. A nil response has no
// results.
func GetResultsCount(res PaginatedResponse) int {
	if util.IsNil(res) {
		return 0
	}

	return res.ResultsCount()
}

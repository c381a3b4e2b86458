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
	"errors"
	"fmt"

	"confirmate.io/posture/internal/util"
	"confirmate.io/posture/persistence"

	"connectrpc.com/connect"
)

var (
	// ErrEmptyRequest is returned when a nil request is passed.
	ErrEmptyRequest = errors.New("empty request")

	// ErrInvalidCondition is returned if a rule's condition items and expression do not form a
	// valid condition.
	ErrInvalidCondition = errors.New("condition is not valid")

	// ErrLockedByAnotherUser is returned if a rule is modified by a user that does not hold its
	// lock.
	ErrLockedByAnotherUser = errors.New("locked by another user")

	// ErrMissingUser is returned if a mutating request carries no user identity.
	ErrMissingUser = errors.New("missing user identity")
)

// ErrNotFound returns a [connect.CodeNotFound] error with the given entity name.
func ErrNotFound(entity string) error {
	return connect.NewError(connect.CodeNotFound, fmt.Errorf("%s not found", entity))
}

// Validator is implemented by request messages that can check their own fields.
type Validator interface {
	Validate() error
}

// Validate validates an incoming request message. If the message is nil, it returns an
// [ErrEmptyRequest] error. If the message implements [Validator] and fails validation, it returns
// a [connect.CodeInvalidArgument] error.
func Validate(msg any) error {
	if util.IsNil(msg) {
		return connect.NewError(connect.CodeInvalidArgument, ErrEmptyRequest)
	}

	if v, ok := msg.(Validator); ok {
		if err := v.Validate(); err != nil {
			return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid request: %w", err))
		}
	}

	return nil
}

// HandleDatabaseError translates database errors into appropriate connect errors.
// If the error is [persistence.ErrRecordNotFound], it returns a [connect.CodeNotFound] error
// with the provided notFoundMsg (or a default message if not provided).
// For other errors, it returns a [connect.CodeInternal] error.
// If err is nil, it returns nil.
func HandleDatabaseError(err error, notFoundErr ...error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, persistence.ErrRecordNotFound) {
		if len(notFoundErr) == 0 {
			notFoundErr = append(notFoundErr, ErrNotFound("entity"))
		}
		return connect.NewError(connect.CodeNotFound, notFoundErr[0])
	}

	return connect.NewError(connect.CodeInternal, fmt.Errorf("database error: %w", err))
}

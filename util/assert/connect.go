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

package assert

import (
	"errors"
	"testing"

	"connectrpc.com/connect"
)

// IsConnectError asserts that err is a *[connect.Error] and has the specified code.
// Returns true if the assertion passes.
func IsConnectError(t TestingT, err error, code connect.Code) bool {
	tt, ok := t.(*testing.T)
	if ok {
		tt.Helper()
	}

	var cErr *connect.Error
	if !errors.As(err, &cErr) {
		return Fail(t, "Error is not a connect.Error", "Expected: *connect.Error\nActual: %T", err)
	}

	return Equal(t, code, cErr.Code())
}

// WantConnectError returns a [WantErr] that checks for a *[connect.Error] with the given code
// and, optionally, a message that is contained in the error.
func WantConnectError(code connect.Code, contains ...string) WantErr {
	return func(t *testing.T, err error, _ ...any) bool {
		t.Helper()

		if !IsConnectError(t, err, code) {
			return false
		}

		for _, s := range contains {
			if !ErrorContains(t, err, s) {
				return false
			}
		}

		return true
	}
}

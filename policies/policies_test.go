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

package policies

import (
	"testing"

	"confirmate.io/posture/util/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		module  string
		want    string
		wantErr assert.WantErr
	}{
		{
			name:    "valid policy",
			module:  publicBucketPolicy,
			want:    "data.whitelist.public_bucket",
			wantErr: assert.NoError,
		},
		{
			name:   "empty",
			module: " ",
			want:   "",
			wantErr: func(t *testing.T, err error, msgAndArgs ...any) bool {
				return assert.ErrorIs(t, err, ErrNoPolicy)
			},
		},
		{
			name:   "missing package",
			module: "whited := true",
			want:   "",
			wantErr: func(t *testing.T, err error, msgAndArgs ...any) bool {
				return assert.ErrorIs(t, err, ErrInvalidPolicy)
			},
		},
		{
			name:   "syntax error",
			module: "package whitelist.broken\n\nwhited if {",
			want:   "",
			wantErr: func(t *testing.T, err error, msgAndArgs ...any) bool {
				return assert.ErrorIs(t, err, ErrInvalidPolicy)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.module)
			tt.wantErr(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

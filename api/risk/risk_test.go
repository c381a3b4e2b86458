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

package risk

import (
	"testing"

	"confirmate.io/posture/util/assert"
)

func TestNextStatus(t *testing.T) {
	type args struct {
		current Status
		whited  bool
	}
	tests := []struct {
		name string
		args args
		want Status
	}{
		{name: "unrepaired becomes whited", args: args{StatusUnrepaired, true}, want: StatusWhited},
		{name: "unrepaired stays", args: args{StatusUnrepaired, false}, want: StatusUnrepaired},
		{name: "whited stays whited", args: args{StatusWhited, true}, want: StatusWhited},
		{name: "whited loses whitelist", args: args{StatusWhited, false}, want: StatusUnrepaired},
		{name: "ignored is kept", args: args{StatusIgnored, true}, want: StatusIgnored},
		{name: "repaired becomes whited", args: args{StatusRepaired, true}, want: StatusWhited},
		{name: "repaired stays", args: args{StatusRepaired, false}, want: StatusRepaired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStatus(tt.args.current, tt.args.whited))
		})
	}
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusWhited.Valid())
	assert.True(t, StatusRepaired.Valid())
	assert.False(t, Status("").Valid())
	assert.False(t, Status("whited").Valid())
}

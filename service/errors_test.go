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

package service_test

import (
	"errors"
	"io"
	"testing"

	"confirmate.io/posture/api/whitelist"
	"confirmate.io/posture/persistence"
	"confirmate.io/posture/service"
	"confirmate.io/posture/util/assert"

	"connectrpc.com/connect"
)

func TestHandleDatabaseError(t *testing.T) {
	type args struct {
		err          error
		notFoundErrs []error
	}
	tests := []struct {
		name    string
		args    args
		wantErr assert.WantErr
	}{
		{
			name: "happy path",
			args: args{
				err:          nil,
				notFoundErrs: []error{},
			},
			wantErr: assert.NoError,
		},
		{
			name: "not found error",
			args: args{
				err:          persistence.ErrRecordNotFound,
				notFoundErrs: []error{service.ErrNotFound("config")},
			},
			wantErr: assert.WantConnectError(connect.CodeNotFound, "config not found"),
		},
		{
			name: "not found error with default message",
			args: args{
				err: persistence.ErrRecordNotFound,
			},
			wantErr: assert.WantConnectError(connect.CodeNotFound, "entity not found"),
		},
		{
			name: "other error",
			args: args{
				err:          io.EOF,
				notFoundErrs: []error{},
			},
			wantErr: func(t *testing.T, err error, msgAndArgs ...any) bool {
				return assert.IsConnectError(t, err, connect.CodeInternal) &&
					assert.ErrorIs(t, err, io.EOF)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotErr := service.HandleDatabaseError(tt.args.err, tt.args.notFoundErrs...)
			tt.wantErr(t, gotErr)
		})
	}
}

type validatingRequest struct {
	err error
}

func (r *validatingRequest) Validate() error {
	return r.err
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     any
		wantErr assert.WantErr
	}{
		{
			name:    "happy path",
			msg:     &whitelist.GetConfigRequest{ID: "1"},
			wantErr: assert.NoError,
		},
		{
			name:    "validator passes",
			msg:     &validatingRequest{},
			wantErr: assert.NoError,
		},
		{
			name: "nil request message",
			msg:  (*whitelist.GetConfigRequest)(nil),
			wantErr: func(t *testing.T, err error, msgAndArgs ...any) bool {
				return assert.IsConnectError(t, err, connect.CodeInvalidArgument) &&
					assert.ErrorIs(t, err, service.ErrEmptyRequest)
			},
		},
		{
			name:    "invalid request",
			msg:     &validatingRequest{err: errors.New("id is required")},
			wantErr: assert.WantConnectError(connect.CodeInvalidArgument, "id is required"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotErr := service.Validate(tt.msg)
			tt.wantErr(t, gotErr)
		})
	}
}

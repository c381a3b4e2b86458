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

package server

import (
	"context"
	"errors"
	"strings"

	"confirmate.io/posture/auth"

	"connectrpc.com/connect"
)

// ErrMissingUser is returned for non-public procedures that were called without a user.
var ErrMissingUser = errors.New("missing user header " + auth.UserHeader)

// AuthConfig configures the [AuthInterceptor].
type AuthConfig struct {
	publicProcedures map[string]struct{}
}

// AuthOption configures an [AuthInterceptor].
type AuthOption func(*AuthConfig)

// WithPublicProcedures marks procedures that may be called without a user.
func WithPublicProcedures(procedures ...string) AuthOption {
	return func(c *AuthConfig) {
		if c.publicProcedures == nil {
			c.publicProcedures = make(map[string]struct{})
		}
		for _, p := range procedures {
			c.publicProcedures[p] = struct{}{}
		}
	}
}

// AuthInterceptor identifies the calling user by the [auth.UserHeader] set by the upstream gateway
// and stores it in the request context.
type AuthInterceptor struct {
	cfg *AuthConfig
}

// NewAuthInterceptor creates a new [AuthInterceptor].
func NewAuthInterceptor(opts ...AuthOption) (interceptor *AuthInterceptor) {
	var cfg *AuthConfig

	cfg = &AuthConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	interceptor = &AuthInterceptor{cfg: cfg}
	return interceptor
}

// WrapUnary implements the [connect.Interceptor] interface for unary calls.
func (ai *AuthInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (res connect.AnyResponse, err error) {
		ctx, err = ai.identify(ctx, req.Spec().Procedure, req.Header().Get(auth.UserHeader))
		if err != nil {
			return nil, err
		}

		return next(ctx, req)
	}
}

// WrapStreamingClient implements the [connect.Interceptor] interface for streaming client calls.
func (ai *AuthInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler implements the [connect.Interceptor] interface for streaming handler calls.
func (ai *AuthInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) (err error) {
		ctx, err = ai.identify(ctx, conn.Spec().Procedure, conn.RequestHeader().Get(auth.UserHeader))
		if err != nil {
			return err
		}

		return next(ctx, conn)
	}
}

func (ai *AuthInterceptor) identify(ctx context.Context, procedure string, user string) (context.Context, error) {
	user = strings.TrimSpace(user)
	if user != "" {
		return auth.WithUser(ctx, user), nil
	}

	if ai.isPublic(procedure) {
		return ctx, nil
	}

	return ctx, connect.NewError(connect.CodeUnauthenticated, ErrMissingUser)
}

func (ai *AuthInterceptor) isPublic(procedure string) (ok bool) {
	if ai == nil || ai.cfg == nil {
		return false
	}
	if len(ai.cfg.publicProcedures) == 0 {
		return false
	}

	_, ok = ai.cfg.publicProcedures[procedure]
	return ok
}

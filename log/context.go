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

package log

import (
	"context"
	"log/slog"
)

type contextKey string

const attrsKey contextKey = "log_attrs"

// WithAttrs stores log attributes in the context for automatic inclusion in all log messages.
// This is useful for request-scoped attributes like tenant or evaluation IDs that should appear
// in all logs of a request.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}

	existing := attrsFromContext(ctx)
	merged := make([]slog.Attr, 0, len(existing)+len(attrs))
	merged = append(merged, existing...)
	merged = append(merged, attrs...)

	return context.WithValue(ctx, attrsKey, merged)
}

// FindAttr returns the first attribute with the given key.
func FindAttr(attrs []slog.Attr, key string) (*slog.Attr, bool) {
	for i := range attrs {
		if attrs[i].Key == key {
			return &attrs[i], true
		}
	}

	return nil, false
}

// attrsFromContext retrieves log attributes from the context.
func attrsFromContext(ctx context.Context) []slog.Attr {
	if attrs, ok := ctx.Value(attrsKey).([]slog.Attr); ok {
		return attrs
	}
	return nil
}

// AttrsFrom returns the log attributes stored in ctx by [WithAttrs].
func AttrsFrom(ctx context.Context) []slog.Attr {
	return attrsFromContext(ctx)
}

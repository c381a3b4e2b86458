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
	"log/slog"
	"strings"
	"time"

	"confirmate.io/posture/api"
	"confirmate.io/posture/auth"
	"confirmate.io/posture/log"

	"connectrpc.com/connect"
)

// Attribute keys for logging
const (
	// RPC request/response keys
	keyMethod   = "method"
	keyStatus   = "status"
	keyDuration = "duration"
	keyError    = "err"

	// Pagination keys
	keyPageSize      = "page_size"
	keyPageToken     = "page_token"
	keyResults       = "results"
	keyNextPageToken = "next_page_token"

	// Entity keys
	keyId       = "id"
	keyTenantId = "tenant_id"
	keyUser     = "user"
	keyPayload  = "payload"

	// ANSI color codes - only used if color is enabled
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
)

// requestType is the kind of change a request makes to a whitelist config.
type requestType int

const (
	requestTypeUnspecified requestType = iota
	requestTypeSaved
	requestTypeDeleted
	requestTypeStatusChanged
	requestTypeLocked
)

// LoggingInterceptor logs RPC requests at two levels:
//
//  1. Request-level (INFO/WARN): All requests with method, duration, and status
//  2. Entity-level (DEBUG): Entity operations with details and payloads
type LoggingInterceptor struct{}

// withRequestAttrs extracts common attributes from a request message and stores them in context.
func withRequestAttrs(ctx context.Context, msg any) context.Context {
	attrs := make([]slog.Attr, 0, 3)

	if hasId, ok := msg.(api.HasId); ok {
		if id := hasId.GetId(); id != "" {
			attrs = append(attrs, slog.String(keyId, id))
		}
	}

	if hasTenantId, ok := msg.(api.HasTenantId); ok {
		if tenantId := hasTenantId.GetTenantId(); tenantId != "" {
			attrs = append(attrs, slog.String(keyTenantId, tenantId))
		}
	}

	if user, ok := auth.User(ctx); ok {
		attrs = append(attrs, slog.String(keyUser, user))
	}

	if len(attrs) > 0 {
		return log.WithAttrs(ctx, attrs...)
	}
	return ctx
}

// WrapUnary implements the [connect.Interceptor] interface for unary calls.
func (li *LoggingInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (res connect.AnyResponse, err error) {
		var (
			start    = time.Now()
			method   = methodName(req.Spec().Procedure)
			duration time.Duration
		)

		// Add method to context first so it appears before other attributes
		ctx = log.WithAttrs(ctx, slog.String(keyMethod, method))
		ctx = withRequestAttrs(ctx, req.Any())

		res, err = next(ctx, req)
		duration = time.Since(start)

		li.logRPCRequest(ctx, method, duration, req, res, err)

		return res, err
	}
}

// WrapStreamingClient implements the [connect.Interceptor] interface for streaming client calls.
func (li *LoggingInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler implements the [connect.Interceptor] interface for streaming handler calls.
func (li *LoggingInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}

// logRPCRequest logs combined request and entity information in a single message.
// Changes of configs are logged at INFO level.
// Read operations and evaluations are logged at DEBUG level.
// Errors are logged at INFO level with color-coded status.
func (li *LoggingInterceptor) logRPCRequest(ctx context.Context, method string, duration time.Duration, req connect.AnyRequest, res connect.AnyResponse, err error) {
	var (
		msg    = req.Any()
		rt     = operationType(method)
		level  = slog.LevelInfo
		status string
	)

	if err == nil && isReadOperation(method) {
		level = slog.LevelDebug
	}

	attrs := make([]slog.Attr, 0, 6)

	if err != nil {
		status = colorCodeStatus(connect.CodeOf(err))

		// Extract just the error message without the code prefix
		errMsg := err.Error()
		if connectErr, ok := err.(*connect.Error); ok {
			errMsg = connectErr.Message()
		}

		attrs = append(attrs,
			slog.String(keyStatus, status),
			slog.Duration(keyDuration, duration),
			slog.String(keyError, errMsg),
		)
	} else {
		if log.ColorEnabled() {
			status = ansiGreen + "ok" + ansiReset
		} else {
			status = "ok"
		}
		attrs = append(attrs,
			slog.String(keyStatus, status),
			slog.Duration(keyDuration, duration),
		)
	}

	if err == nil && strings.HasPrefix(method, "List") && res != nil {
		if resMsg := res.Any(); resMsg != nil {
			li.addPaginationAttributes(&attrs, msg, resMsg)
		}
	}

	if rt != requestTypeUnspecified {
		if payloadReq, ok := msg.(api.PayloadRequest); ok {
			li.addPayloadAttributes(&attrs, rt, payloadReq, level)
		}
	}

	slog.LogAttrs(ctx, level, "RPC request", attrs...)
}

// addPaginationAttributes adds pagination details for list operations.
func (li *LoggingInterceptor) addPaginationAttributes(attrs *[]slog.Attr, req any, res any) {
	if paginatedReq, ok := req.(api.PaginatedRequest); ok {
		if pageSize := paginatedReq.GetPageSize(); pageSize > 0 {
			*attrs = append(*attrs, slog.Int(keyPageSize, int(pageSize)))
		}
		if pageToken := paginatedReq.GetPageToken(); pageToken != "" {
			*attrs = append(*attrs, slog.String(keyPageToken, pageToken))
		}
	}

	if paginatedRes, ok := res.(api.PaginatedResponse); ok {
		if count := paginatedRes.ResultsCount(); count > 0 {
			*attrs = append(*attrs, slog.Int(keyResults, count))
		}
		if nextPageToken := paginatedRes.GetNextPageToken(); nextPageToken != "" {
			*attrs = append(*attrs, slog.String(keyNextPageToken, nextPageToken))
		}
	}
}

// addPayloadAttributes adds the entity payload to the log attributes. The payload is responsible
// for its own representation, e.g., by implementing [slog.LogValuer].
func (li *LoggingInterceptor) addPayloadAttributes(attrs *[]slog.Attr, rt requestType, req api.PayloadRequest, level slog.Level) {
	payload := req.GetPayload()
	if payload == nil {
		return
	}

	if level == slog.LevelDebug || rt == requestTypeSaved {
		*attrs = append(*attrs, slog.Any(keyPayload, payload))
	}
}

// colorCodeStatus returns an ANSI color-coded status string for a Connect error code.
// Client errors (4xx equivalent) are colored yellow, everything else is colored red.
// Returns plain code string if colors are disabled.
func colorCodeStatus(code connect.Code) string {
	codeStr := code.String()

	if !log.ColorEnabled() {
		return codeStr
	}

	switch code {
	case connect.CodeInvalidArgument,
		connect.CodeFailedPrecondition,
		connect.CodeOutOfRange,
		connect.CodeUnauthenticated,
		connect.CodePermissionDenied,
		connect.CodeNotFound,
		connect.CodeAlreadyExists,
		connect.CodeAborted:
		return ansiYellow + codeStr + ansiReset
	default:
		return ansiRed + codeStr + ansiReset
	}
}

// methodName extracts the method name from a procedure path.
func methodName(procedure string) (name string) {
	if idx := strings.LastIndex(procedure, "/"); idx >= 0 {
		return procedure[idx+1:]
	}
	return procedure
}

// operationType deduces the operation type from a method name.
func operationType(method string) (rt requestType) {
	switch {
	case strings.HasPrefix(method, "Save"):
		return requestTypeSaved
	case strings.HasPrefix(method, "Delete"):
		return requestTypeDeleted
	case strings.HasPrefix(method, "Change"):
		return requestTypeStatusChanged
	case strings.HasPrefix(method, "Grab"):
		return requestTypeLocked
	default:
		return requestTypeUnspecified
	}
}

// isReadOperation checks if a method does not change any config.
func isReadOperation(method string) (ok bool) {
	return strings.HasPrefix(method, "Get") ||
		strings.HasPrefix(method, "List") ||
		strings.HasPrefix(method, "Evaluate") ||
		strings.HasPrefix(method, "CacheStats")
}

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

package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"confirmate.io/posture/log"
	"gorm.io/gorm/logger"
)

// slowQueryThreshold is the duration after which a query is logged as a warning.
const slowQueryThreshold = 500 * time.Millisecond

// slogGormLogger integrates GORM's logger with slog.
// SQL queries are only logged at DEBUG level to reduce noise in production.
type slogGormLogger struct{}

// newSlogGormLogger creates a new GORM logger that uses slog.
func newSlogGormLogger() logger.Interface {
	return &slogGormLogger{}
}

// LogMode is a no-op since we control logging via slog's level configuration.
func (l *slogGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return l
}

// Info logs informational messages at DEBUG level.
func (l *slogGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	slog.DebugContext(ctx, fmt.Sprintf(msg, data...))
}

// Warn logs warning messages.
func (l *slogGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	slog.WarnContext(ctx, fmt.Sprintf(msg, data...))
}

// Error logs error messages.
func (l *slogGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	slog.ErrorContext(ctx, fmt.Sprintf(msg, data...))
}

// Trace logs SQL queries at TRACE level only.
// This ensures SQL queries don't clutter DEBUG or INFO-level logs in production.
func (l *slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)

	// Queries that are too slow are always worth a warning
	if err == nil && elapsed > slowQueryThreshold {
		sql, rows := fc()
		slog.WarnContext(ctx, "Slow SQL query",
			slog.Duration("elapsed", elapsed),
			slog.String("sql", sql),
			slog.Int64("rows", rows),
		)
		return
	}

	// Only log if TRACE level is enabled
	if !slog.Default().Enabled(ctx, log.LevelTrace.Level()) {
		return
	}

	sql, rows := fc()

	if err != nil {
		slog.LogAttrs(ctx, log.LevelTrace.Level(), "SQL query failed",
			slog.Duration("elapsed", elapsed),
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			log.Err(err),
		)
	} else {
		slog.LogAttrs(ctx, log.LevelTrace.Level(), "SQL query",
			slog.Duration("elapsed", elapsed),
			slog.String("sql", sql),
			slog.Int64("rows", rows),
		)
	}
}

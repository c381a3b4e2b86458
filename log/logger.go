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
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

var (
	// logger is the default logger instance for Confirmate Posture.
	logger *slog.Logger

	// colorEnabled is true, if the log output is a terminal.
	colorEnabled bool
)

func init() {
	// Initialize with INFO level by default, wrapped with context handler
	logger = newLogger(os.Stdout, LevelInfo)
	slog.SetDefault(logger)
}

func newLogger(w io.Writer, level Level) *slog.Logger {
	colorEnabled = isTerminal(w)

	return slog.New(newContextHandler(tint.NewHandler(w, &tint.Options{
		Level:   level,
		NoColor: !colorEnabled,
	})))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Configure configures the default logger with the specified level string.
// Valid values: TRACE, DEBUG, INFO, WARN, WARNING, ERROR
// Returns an error if the level string is not recognized.
func Configure(levelStr string) error {
	level, err := ParseLevel(levelStr)
	if err != nil {
		return err
	}

	logger = newLogger(os.Stdout, level)
	slog.SetDefault(logger)

	slog.Debug("Log level configured", slog.String("level", level.String()))
	return nil
}

// ColorEnabled returns whether the default logger writes colored output.
func ColorEnabled() bool {
	return colorEnabled
}

// Err is a re-export of tint.Err for convenient error formatting in log attributes.
// Usage: slog.Error("message", log.Err(err))
var Err = tint.Err

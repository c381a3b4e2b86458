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
	"log/slog"
	"strings"
)

// Level is a [slog.Level] that additionally knows about our custom TRACE level. It can be used in
// configuration structs, since it implements [encoding.TextUnmarshaler].
type Level slog.Level

// Log levels for Confirmate Posture. Standard slog levels are re-exported and extended by TRACE,
// which is used for very detailed logging (e.g., SQL queries or single condition results).
const (
	// LevelTrace is set to -8 to be below slog.LevelDebug (-4).
	LevelTrace Level = Level(slog.LevelDebug - 4)

	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// Level implements [slog.Leveler].
func (l Level) Level() slog.Level {
	return slog.Level(l)
}

// String returns the name of the level. TRACE is returned for [LevelTrace], all other values are
// formatted like [slog.Level.String].
func (l Level) String() string {
	if l == LevelTrace {
		return "TRACE"
	}

	return slog.Level(l).String()
}

// MarshalText implements [encoding.TextMarshaler].
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler]. Besides TRACE, it accepts everything that
// [slog.Level.UnmarshalText] accepts, such as "INFO+2" or "WARN-1".
func (l *Level) UnmarshalText(text []byte) error {
	var sl slog.Level

	if strings.EqualFold(strings.TrimSpace(string(text)), "TRACE") {
		*l = LevelTrace
		return nil
	}

	if err := sl.UnmarshalText(text); err != nil {
		return &InvalidLevelError{Level: string(text)}
	}

	*l = Level(sl)
	return nil
}

// ParseLevel converts a string to a [Level], supporting our custom TRACE level.
// Valid values: TRACE, DEBUG, INFO, WARN, WARNING, ERROR
// Returns an error if the level string is not recognized.
func ParseLevel(levelStr string) (Level, error) {
	switch strings.ToUpper(levelStr) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	default:
		return LevelInfo, &InvalidLevelError{Level: levelStr}
	}
}

// InvalidLevelError is returned when ParseLevel receives an invalid level string.
type InvalidLevelError struct {
	Level string
}

func (e *InvalidLevelError) Error() string {
	return "unknown log level: " + e.Level + " (valid: TRACE, DEBUG, INFO, WARN, ERROR)"
}

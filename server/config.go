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
	"net/http"

	"confirmate.io/posture/auth"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultConfig is the default configuration for the [Server].
var DefaultConfig = Config{
	Port:     8080,
	Path:     "/",
	LogLevel: "INFO",
	CORS: CORS{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "Connect-Protocol-Version", "Connect-Timeout-Ms", auth.UserHeader},
	},
}

// Config represents the configuration for the [Server].
type Config struct {
	Port uint16

	// Path is the prefix under which all handlers are served.
	Path string

	// LogLevel is the level of the default logger, see [log.Configure]. An empty level keeps the
	// current one.
	LogLevel string

	CORS CORS

	// Handlers maps the path of a handler to the handler, as returned by the generated
	// New...Handler functions.
	Handlers map[string]http.Handler

	// Gatherer is exposed at /metrics, if set.
	Gatherer prometheus.Gatherer
}

// CORS represents the CORS configuration for the server.
type CORS struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

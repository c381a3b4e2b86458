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

import "fmt"

// DefaultConfig contains the default [Config] for the persistence layer.
var DefaultConfig = Config{
	Host:       "localhost",
	Port:       5432,
	DBName:     "posture",
	User:       "posture",
	Password:   "posture",
	SSLMode:    "disable",
	MaxConn:    10,
	InMemoryDB: false,
	Types:      []any{},
}

// Config contains configuration parameters for the persistence layer.
type Config struct {
	// Host is the host of the database server, unless [Config.InMemoryDB] is set to true.
	Host string

	// Port is the port of the database server, unless [Config.InMemoryDB] is set to true.
	Port int

	// DBName is the name of the database to connect to, unless [Config.InMemoryDB] is set to true.
	DBName string

	// Password is the password to use for authentication with the database server, unless
	// [Config.InMemoryDB] is set to true.
	Password string

	// User is the username to use for authentication with the database server, unless
	// [Config.InMemoryDB] is set to true.
	User string

	// SSLMode is the SSL mode to use for the database connection, unless [Config.InMemoryDB] is set
	// to true.
	SSLMode string

	// InMemoryDB indicates whether to use an in-memory database instead of the database server
	// described by [Config.Host], [Config.Port], [Config.DBName], [Config.User], [Config.Password]
	// and [Config.SSLMode].
	//
	// This also forces the maximum number of connections ([Config.MaxConn]) to 1.
	InMemoryDB bool

	// MaxConn is the maximum number of open connections to the database.
	MaxConn int

	// Types contains a list of all types that should be registered with the persistence layer.
	Types []any

	// InitFunc is executed once after the schema has been migrated, e.g., to seed data.
	InitFunc func(db DB) error
}

// buildDSN builds the Data Source Name (DSN) for connecting to the database, used by GORM.
func (cfg *Config) buildDSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.User,
		cfg.Password,
		cfg.SSLMode,
	)
}

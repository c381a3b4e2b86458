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
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// defaultMaxConn is the default for maximum number for connections (default: 1) to avoid issues
// with concurrent access to the in-memory database.
const defaultMaxConn = 1

// DB is our main database interface that allows to interact with the persistence layer. It is
// closely aligned to the [gorm] operations.
type DB interface {
	// Create attempts to insert the provided record into the database.
	//
	// If a constraint violation occurs, it must return [ErrUniqueConstraintFailed] or
	// [ErrConstraintFailed], depending on the error message.
	Create(r any) (err error)

	// Save attempts to save the given record to the database, applying optional conditions for
	// filtering.
	//
	// If a constraint violation occurs, it must return [ErrConstraintFailed].
	Save(r any, conds ...any) (err error)

	// Update applies the provided changes to the database record, optionally applying conditions
	// for filtering.
	//
	// Must return [ErrConstraintFailed] on a constraint violation or [ErrRecordNotFound] if no
	// matching record is found.
	Update(r any, conds ...any) (err error)

	// Delete attempts to delete the record with the given ID from the database.
	//
	// Must return [ErrRecordNotFound] if no matching record is found.
	Delete(r any, conds ...any) (err error)

	// Get attempts to retrieve a record from the database.
	//
	// If no record is found, it returns [ErrRecordNotFound].
	Get(r any, conds ...any) (err error)

	// List retrieves a list of records from the database. A limit of -1 disables the limit.
	List(r any, orderBy string, asc bool, offset int, limit int, conds ...any) (err error)

	// Count retrieves the count of records in the database that match the provided conditions.
	Count(r any, conds ...any) (count int64, err error)

	// Raw executes a raw SQL query and scans the result into the provided destination. Returns an error
	// if the query fails.
	Raw(r any, query string, args ...any) (err error)
}

// db is our main database struct that wraps GORM's DB instance and provides additional
// configuration options.
type db struct {
	*gorm.DB

	// cfg is the configuration used to open the database, unless a connection was supplied by an
	// option directly
	cfg Config

	// types contain all types that we need to auto-migrate into database tables
	types []any

	// maxConn is the maximum number of connections. 0 means unlimited.
	maxConn int
}

// DBOption defines a function type for configuring the [DB] instance.
type DBOption func(*db)

// WithConfig configures the [DB] according to cfg. Unless cfg requests an in-memory database, a
// connection to the configured Postgres server is opened.
func WithConfig(cfg Config) DBOption {
	return func(s *db) {
		s.cfg = cfg
		s.types = append(s.types, cfg.Types...)
		if cfg.MaxConn > 0 && !cfg.InMemoryDB {
			s.maxConn = cfg.MaxConn
		}
	}
}

// WithAutoMigration is an option to add types to GORM's auto-migration.
func WithAutoMigration(types ...any) DBOption {
	return func(s *db) {
		s.types = append(s.types, types...)
	}
}

// WithInMemory is an option to configure [DB] to use an in-memory DB. This creates a new
// in-memory database each time it is called.
//
// So if you need to have access to the same in-memory DB, you need to share the [DB] instance.
func WithInMemory() DBOption {
	return func(s *db) {
		s.cfg.InMemoryDB = true
	}
}

// WithMaxOpenConns is an option to configure the maximum number of open connections
func WithMaxOpenConns(max int) DBOption {
	return func(s *db) {
		s.maxConn = max
	}
}

// NewDB creates a new [DB] instance with the provided options. Without options, an in-memory
// database is used.
func NewDB(opts ...DBOption) (s DB, err error) {
	var db = &db{
		cfg:     Config{InMemoryDB: true},
		maxConn: defaultMaxConn,
	}

	// Add options and/or override default ones
	for _, o := range opts {
		o(db)
	}

	if db.cfg.InMemoryDB {
		db.DB, err = newInMemoryDB()
		if err != nil {
			return nil, fmt.Errorf("could not create in-memory db: %w", err)
		}
		db.maxConn = defaultMaxConn
	} else {
		db.DB, err = newPostgresDB(&db.cfg)
		if err != nil {
			return nil, err
		}
	}

	// Set max open connections
	if db.maxConn > 0 {
		sqlDB, err := db.DB.DB()
		if err != nil {
			return nil, fmt.Errorf("could not retrieve sql.DB: %v", err)
		}

		sqlDB.SetMaxOpenConns(db.maxConn)
	}

	// After successful DB initialization, migrate the schema
	if err = db.DB.AutoMigrate(db.types...); err != nil {
		err = fmt.Errorf("error during auto-migration: %w", err)
		return
	}

	if db.cfg.InitFunc != nil {
		if err = db.cfg.InitFunc(db); err != nil {
			err = fmt.Errorf("error during db initialization: %w", err)
			return
		}
	}

	slog.Debug("Database initialized",
		slog.Bool("in_memory", db.cfg.InMemoryDB),
		slog.Int("types", len(db.types)),
	)

	s = db

	return
}

// newPostgresDB opens a connection to the Postgres server described by cfg.
func newPostgresDB(cfg *Config) (g *gorm.DB, err error) {
	g, err = gorm.Open(postgres.Open(cfg.buildDSN()), &gorm.Config{
		Logger: newSlogGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("could not connect to postgres (%s:%d): %w", cfg.Host, cfg.Port, err)
	}

	return g, nil
}

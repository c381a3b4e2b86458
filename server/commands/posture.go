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

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"confirmate.io/posture/api/whitelist/whitelistconnect"
	"confirmate.io/posture/log"
	"confirmate.io/posture/persistence"
	"confirmate.io/posture/server"
	"confirmate.io/posture/service"
	"confirmate.io/posture/service/whitelist"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
)

// PostureCommand starts the whitelist service.
var PostureCommand = &cli.Command{
	Name:  "posture",
	Usage: "Launches the posture whitelist service",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		var (
			svc  *whitelist.Service
			srv  *server.Server
			rdb  *redis.Client
			reg  *prometheus.Registry
			opts []service.Option[whitelist.Service]
			err  error
		)

		if err = log.Configure(cmd.String("log-level")); err != nil {
			return err
		}

		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		opts = append(opts,
			whitelist.WithConfig(whitelistConfig(cmd)),
			whitelist.WithRegistry(reg),
		)

		if addr := cmd.String("redis-addr"); addr != "" {
			rdb = redis.NewClient(&redis.Options{
				Addr:     addr,
				Password: cmd.String("redis-password"),
				DB:       cmd.Int("redis-db"),
			})
			defer rdb.Close()

			opts = append(opts, whitelist.WithNotifier(whitelist.NewRedisNotifier(rdb)))
		} else {
			slog.Warn("No Redis address configured, cache invalidations are not shared with other instances")
		}

		svc, err = whitelist.NewService(opts...)
		if err != nil {
			return fmt.Errorf("could not create whitelist service: %w", err)
		}
		defer svc.Shutdown()

		if rdb != nil {
			go whitelist.Listen(ctx, rdb, svc.Cache(), cmd.Duration("redis-retry-delay"))
		}

		srv, err = server.NewConnectServer([]server.Option{
			server.WithConfig(server.Config{
				Port: cmd.Uint16("api-port"),
				Path: "/",
				CORS: server.CORS{
					AllowedOrigins: cmd.StringSlice("api-cors-allowed-origins"),
					AllowedMethods: cmd.StringSlice("api-cors-allowed-methods"),
					AllowedHeaders: cmd.StringSlice("api-cors-allowed-headers"),
				},
				Gatherer: reg,
			}),
			server.WithHandler(whitelistconnect.NewWhitelistServiceHandler(
				svc,
				connect.WithInterceptors(
					server.NewAuthInterceptor(server.WithPublicProcedures(
						whitelistconnect.WhitelistServiceGetConfigProcedure,
						whitelistconnect.WhitelistServiceListConfigsProcedure,
						whitelistconnect.WhitelistServiceEvaluateProcedure,
						whitelistconnect.WhitelistServiceCacheStatsProcedure,
					)),
					&server.LoggingInterceptor{},
				),
			)),
		})
		if err != nil {
			return err
		}

		return srv.Run(ctx)
	},
	Flags: []cli.Flag{
		&cli.Uint16Flag{
			Name:    "api-port",
			Usage:   "Port to run the API server (Connect, gRPC) on",
			Value:   server.DefaultConfig.Port,
			Sources: cli.EnvVars("POSTURE_API_PORT"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (TRACE, DEBUG, INFO, WARN, ERROR)",
			Value:   server.DefaultConfig.LogLevel,
			Sources: cli.EnvVars("POSTURE_LOG_LEVEL"),
		},
		&cli.StringSliceFlag{
			Name:  "api-cors-allowed-origins",
			Usage: "Specifies the origins allowed in CORS",
			Value: server.DefaultConfig.CORS.AllowedOrigins,
		},
		&cli.StringSliceFlag{
			Name:  "api-cors-allowed-methods",
			Usage: "Specifies the methods allowed in CORS",
			Value: server.DefaultConfig.CORS.AllowedMethods,
		},
		&cli.StringSliceFlag{
			Name:  "api-cors-allowed-headers",
			Usage: "Specifies the headers allowed in CORS",
			Value: server.DefaultConfig.CORS.AllowedHeaders,
		},
		&cli.DurationFlag{
			Name:    "cache-expiration",
			Usage:   "Time after which the whitelist configs of a tenant are loaded again",
			Value:   whitelist.DefaultCacheConfig.CacheExpiration,
			Sources: cli.EnvVars("POSTURE_CACHE_EXPIRATION"),
		},
		&cli.IntFlag{
			Name:    "cache-max-size",
			Usage:   "Maximum number of tenants in the whitelist cache",
			Value:   whitelist.DefaultCacheConfig.MaxCacheSize,
			Sources: cli.EnvVars("POSTURE_CACHE_MAX_SIZE"),
		},
		&cli.IntFlag{
			Name:  "cache-query-page-size",
			Usage: "Number of whitelist configs loaded per query",
			Value: whitelist.DefaultCacheConfig.QueryPageSize,
		},
		&cli.IntFlag{
			Name:  "cache-max-query-pages",
			Usage: "Maximum number of pages loaded for a single tenant",
			Value: whitelist.DefaultCacheConfig.MaxQueryPages,
		},
		&cli.UintFlag{
			Name:  "cache-retry-attempts",
			Usage: "Number of attempts to load the whitelist configs of a tenant",
			Value: whitelist.DefaultCacheConfig.RetryAttempts,
		},
		&cli.DurationFlag{
			Name:  "cache-retry-delay",
			Usage: "Initial delay between two attempts to load the whitelist configs of a tenant",
			Value: whitelist.DefaultCacheConfig.RetryDelay,
		},
		&cli.DurationFlag{
			Name:  "cache-stats-interval",
			Usage: "Interval in which cache statistics are logged (0 disables the log)",
			Value: whitelist.DefaultConfig.StatsInterval,
		},
		&cli.StringFlag{
			Name:    "redis-addr",
			Usage:   "Address of the Redis server used to share cache invalidations (empty disables sharing)",
			Sources: cli.EnvVars("POSTURE_REDIS_ADDR"),
		},
		&cli.StringFlag{
			Name:    "redis-password",
			Usage:   "Specifies the Redis password",
			Sources: cli.EnvVars("POSTURE_REDIS_PASSWORD"),
		},
		&cli.IntFlag{
			Name:  "redis-db",
			Usage: "Specifies the Redis database",
		},
		&cli.DurationFlag{
			Name:  "redis-retry-delay",
			Usage: "Delay before subscribing again after the Redis subscription failed",
			Value: whitelist.DefaultListenRetryDelay,
		},
		&cli.StringFlag{
			Name:    "db-host",
			Usage:   "Specifies the server hostname",
			Value:   persistence.DefaultConfig.Host,
			Sources: cli.EnvVars("POSTURE_DB_HOST"),
		},
		&cli.IntFlag{
			Name:    "db-port",
			Usage:   "Specifies the server port",
			Value:   persistence.DefaultConfig.Port,
			Sources: cli.EnvVars("POSTURE_DB_PORT"),
		},
		&cli.StringFlag{
			Name:    "db-name",
			Usage:   "Specifies the database name",
			Value:   persistence.DefaultConfig.DBName,
			Sources: cli.EnvVars("POSTURE_DB_NAME"),
		},
		&cli.StringFlag{
			Name:    "db-user",
			Usage:   "Specifies the database user",
			Value:   persistence.DefaultConfig.User,
			Sources: cli.EnvVars("POSTURE_DB_USER"),
		},
		&cli.StringFlag{
			Name:    "db-password",
			Usage:   "Specifies the database password",
			Value:   persistence.DefaultConfig.Password,
			Sources: cli.EnvVars("POSTURE_DB_PASSWORD"),
		},
		&cli.StringFlag{
			Name:  "db-sslmode",
			Usage: "Specifies the database SSL mode (disable, require, verify-ca, verify-full)",
			Value: persistence.DefaultConfig.SSLMode,
		},
		&cli.BoolFlag{
			Name:  "db-in-memory",
			Usage: "Use in-memory database instead of PostgreSQL (useful for testing)",
			Value: persistence.DefaultConfig.InMemoryDB,
		},
		&cli.IntFlag{
			Name:  "db-max-connections",
			Usage: "Specifies the maximum number of database connections",
			Value: persistence.DefaultConfig.MaxConn,
		},
	},
}

// whitelistConfig builds the configuration of the whitelist service from the flags of cmd.
func whitelistConfig(cmd *cli.Command) whitelist.Config {
	return whitelist.Config{
		Cache: whitelist.CacheConfig{
			CacheExpiration: cmd.Duration("cache-expiration"),
			MaxCacheSize:    cmd.Int("cache-max-size"),
			QueryPageSize:   cmd.Int("cache-query-page-size"),
			MaxQueryPages:   cmd.Int("cache-max-query-pages"),
			RetryAttempts:   cmd.Uint("cache-retry-attempts"),
			RetryDelay:      cmd.Duration("cache-retry-delay"),
		},
		PersistenceConfig: persistence.Config{
			Host:       cmd.String("db-host"),
			Port:       cmd.Int("db-port"),
			DBName:     cmd.String("db-name"),
			User:       cmd.String("db-user"),
			Password:   cmd.String("db-password"),
			SSLMode:    cmd.String("db-sslmode"),
			InMemoryDB: cmd.Bool("db-in-memory"),
			MaxConn:    cmd.Int("db-max-connections"),
		},
		StatsInterval: cmd.Duration("cache-stats-interval"),
	}
}

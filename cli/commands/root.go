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
	"github.com/urfave/cli/v3"
)

// NewRootCommand returns the root CLI command for the posture whitelist service.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:                  "pc",
		Usage:                 "Posture whitelist CLI",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "Whitelist server address",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("POSTURE_ADDR"),
			},
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "User that changes configs and holds their locks",
				Sources: cli.EnvVars("POSTURE_USER", "USER"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "configs",
				Aliases: []string{"whitelist"},
				Usage:   "Whitelist config operations",
				Commands: []*cli.Command{
					ConfigsSaveCommand(),
					ConfigsListCommand(),
					ConfigsGetCommand(),
					ConfigsDeleteCommand(),
					ConfigsEnableCommand(),
					ConfigsDisableCommand(),
					ConfigsLockCommand(),
				},
			},
			{
				Name:  "cache",
				Usage: "Whitelist cache operations",
				Commands: []*cli.Command{
					CacheStatsCommand(),
				},
			},
			EvaluateCommand(),
			MatchCommand(),
			FactsCommand(),
		},
	}
}

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
	"os"

	"confirmate.io/posture/api/whitelist"
	"confirmate.io/posture/internal/util"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func ConfigsSaveCommand() *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "Create or update a whitelist config from a YAML file",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() < 1 {
				return fmt.Errorf("config file required")
			}

			cfg, err := readConfig(c.Args().Get(0))
			if err != nil {
				return err
			}

			client := WhitelistClient(ctx, c)
			resp, err := client.SaveConfig(ctx, NewRequest(c, &whitelist.SaveConfigRequest{
				Config: cfg,
			}))
			if err != nil {
				return err
			}
			return PrettyPrint(resp.Msg)
		},
	}
}

func ConfigsListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List whitelist configs",
		Flags: append(PaginationFlags(),
			&cli.StringFlag{
				Name:  "tenant",
				Usage: "Only list configs of this tenant",
			},
			&cli.StringFlag{
				Name:  "rule-code",
				Usage: "Only list configs of this risk rule code",
			},
			&cli.BoolFlag{
				Name:  "enabled",
				Usage: "Only list enabled configs",
			},
			&cli.BoolFlag{
				Name:  "disabled",
				Usage: "Only list disabled configs",
			},
			&cli.StringFlag{
				Name:  "order-by",
				Usage: "Column to order by (id, rule_name, risk_rule_code, gmt_create, gmt_modified)",
			},
			&cli.BoolFlag{
				Name:  "asc",
				Usage: "Order ascending",
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			req := &whitelist.ListConfigsRequest{
				TenantID:     c.String("tenant"),
				RiskRuleCode: c.String("rule-code"),
				PageSize:     int32(c.Int("page-size")),
				PageToken:    c.String("page-token"),
				OrderBy:      c.String("order-by"),
				Asc:          c.Bool("asc"),
			}

			switch {
			case c.Bool("enabled") && c.Bool("disabled"):
				return fmt.Errorf("--enabled and --disabled are mutually exclusive")
			case c.Bool("enabled"):
				req.Enable = util.Ref(whitelist.Enabled)
			case c.Bool("disabled"):
				req.Enable = util.Ref(whitelist.Disabled)
			}

			client := WhitelistClient(ctx, c)
			resp, err := client.ListConfigs(ctx, NewRequest(c, req))
			if err != nil {
				return err
			}
			return PrettyPrint(resp.Msg)
		},
	}
}

func ConfigsGetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get a specific whitelist config by ID",
		ArgsUsage: "<config-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() < 1 {
				return fmt.Errorf("config ID required")
			}

			client := WhitelistClient(ctx, c)
			resp, err := client.GetConfig(ctx, NewRequest(c, &whitelist.GetConfigRequest{
				ID: c.Args().Get(0),
			}))
			if err != nil {
				return err
			}
			return PrettyPrint(resp.Msg)
		},
	}
}

func ConfigsDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a whitelist config by ID",
		ArgsUsage: "<config-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() < 1 {
				return fmt.Errorf("config ID required")
			}
			configID := c.Args().Get(0)

			client := WhitelistClient(ctx, c)
			_, err := client.DeleteConfig(ctx, NewRequest(c, &whitelist.DeleteConfigRequest{
				ID: configID,
			}))
			if err != nil {
				return err
			}
			fmt.Printf("Config %s deleted successfully\n", configID)
			return nil
		},
	}
}

// ConfigsEnableCommand enables a config.
func ConfigsEnableCommand() *cli.Command {
	return configsStatusCommand("enable", "Enable a whitelist config", whitelist.Enabled)
}

// ConfigsDisableCommand disables a config. Disabled configs are ignored by evaluations.
func ConfigsDisableCommand() *cli.Command {
	return configsStatusCommand("disable", "Disable a whitelist config", whitelist.Disabled)
}

func configsStatusCommand(name string, usage string, enable int) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<config-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() < 1 {
				return fmt.Errorf("config ID required")
			}

			client := WhitelistClient(ctx, c)
			resp, err := client.ChangeStatus(ctx, NewRequest(c, &whitelist.ChangeStatusRequest{
				ID:     c.Args().Get(0),
				Enable: enable,
			}))
			if err != nil {
				return err
			}
			return PrettyPrint(resp.Msg)
		},
	}
}

func ConfigsLockCommand() *cli.Command {
	return &cli.Command{
		Name:      "lock",
		Usage:     "Take over the edit lock of a whitelist config",
		ArgsUsage: "<config-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() < 1 {
				return fmt.Errorf("config ID required")
			}

			client := WhitelistClient(ctx, c)
			resp, err := client.GrabLock(ctx, NewRequest(c, &whitelist.GrabLockRequest{
				ID: c.Args().Get(0),
			}))
			if err != nil {
				return err
			}
			return PrettyPrint(resp.Msg)
		},
	}
}

// readConfig reads a single whitelist config from a YAML file.
func readConfig(path string) (cfg *whitelist.WhitedRuleConfig, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	cfg = new(whitelist.WhitedRuleConfig)
	if err = yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// readConfigs reads a list of whitelist configs from a YAML file.
func readConfigs(path string) (configs []whitelist.WhitedRuleConfig, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read rules file: %w", err)
	}

	if err = yaml.Unmarshal(b, &configs); err != nil {
		return nil, fmt.Errorf("could not parse rules file %s: %w", path, err)
	}

	return configs, nil
}

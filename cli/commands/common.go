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
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"confirmate.io/posture/api/whitelist/whitelistconnect"
	"confirmate.io/posture/auth"

	"connectrpc.com/connect"
	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/urfave/cli/v3"
)

type httpClientKey struct{}

// WithHTTPClient returns a context that makes [WhitelistClient] use client instead of
// [http.DefaultClient].
func WithHTTPClient(ctx context.Context, client *http.Client) context.Context {
	return context.WithValue(ctx, httpClientKey{}, client)
}

// WhitelistClient returns a whitelist client based on the addr flag.
func WhitelistClient(ctx context.Context, c *cli.Command) whitelistconnect.WhitelistServiceClient {
	client, ok := ctx.Value(httpClientKey{}).(*http.Client)
	if !ok {
		client = http.DefaultClient
	}

	return whitelistconnect.NewWhitelistServiceClient(client, c.Root().String("addr"))
}

// NewRequest wraps msg into a request that carries the user of the user flag.
func NewRequest[T any](c *cli.Command, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if user := c.Root().String("user"); user != "" {
		req.Header().Set(auth.UserHeader, user)
	}

	return req
}

// PrettyPrint prints a message as pretty-printed JSON to stdout.
func PrettyPrint(msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	f := prettyjson.NewFormatter()
	f.DisabledColor = color.NoColor

	out, err := f.Format(b)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}

// PaginationFlags returns a slice of common pagination flags.
func PaginationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "page-size",
			Aliases: []string{"n"},
			Usage:   "Number of items to return",
			Value:   10,
		},
		&cli.StringFlag{
			Name:    "page-token",
			Aliases: []string{"p"},
			Usage:   "Page token for the next page",
		},
	}
}

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

// Package commandstest runs the commands of the posture CLI against an in-memory whitelist server.
package commandstest

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"testing"

	"confirmate.io/posture/api/whitelist/whitelistconnect"
	"confirmate.io/posture/cli/commands"
	"confirmate.io/posture/persistence/persistencetest"
	"confirmate.io/posture/server"
	"confirmate.io/posture/server/servertest"
	"confirmate.io/posture/service/whitelist"
	"confirmate.io/posture/service/whitelist/whitelisttest"
	"confirmate.io/posture/util/assert"
)

func newTestServer(t *testing.T) (*httptest.Server, error) {
	var (
		err     error
		svc     *whitelist.Service
		testSrv *httptest.Server
	)

	svc, err = whitelist.NewService(
		whitelist.WithDB(persistencetest.NewInMemoryDB(t, whitelisttest.Types, whitelisttest.Seed)),
		whitelist.WithConfig(whitelist.Config{Cache: whitelist.DefaultCacheConfig}),
	)
	if err != nil {
		return nil, err
	}
	t.Cleanup(svc.Shutdown)

	_, testSrv = servertest.NewTestConnectServer(t,
		server.WithHandler(whitelistconnect.NewWhitelistServiceHandler(svc)),
	)

	return testSrv, nil
}

// RunCLI runs the CLI with args against a fresh server seeded with the mocks of [whitelisttest].
// It returns the combined output of stdout and stderr.
func RunCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	testSrv, err := newTestServer(t)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	defer testSrv.Close()

	ctx := commands.WithHTTPClient(context.Background(), testSrv.Client())
	return runCLI(t, ctx, testSrv.URL, args...)
}

// RunOffline runs the CLI with args without a server.
func RunOffline(t *testing.T, args ...string) (string, error) {
	t.Helper()

	return runCLI(t, context.Background(), "http://localhost:0", args...)
}

func runCLI(t *testing.T, ctx context.Context, serverURL string, args ...string) (string, error) {
	t.Helper()

	cmd := commands.NewRootCommand()
	return captureOutput(t, func() error {
		return cmd.Run(ctx, append([]string{"pc", "--addr", serverURL}, args...))
	})
}

func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return "", err
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		_ = stdoutR.Close()
		_ = stdoutW.Close()
		return "", err
	}

	os.Stdout = stdoutW
	os.Stderr = stderrW

	fnErr := fn()

	_ = stdoutW.Close()
	_ = stderrW.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	var stdout bytes.Buffer
	_, _ = io.Copy(&stdout, stdoutR)
	_ = stdoutR.Close()

	var stderr bytes.Buffer
	_, _ = io.Copy(&stderr, stderrR)
	_ = stderrR.Close()

	if stderr.Len() > 0 {
		stdout.WriteString(stderr.String())
	}

	return stdout.String(), fnErr
}

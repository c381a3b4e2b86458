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

package servertest_test

import (
	"context"
	"net/http"
	"testing"

	"confirmate.io/posture/api/whitelist"
	"confirmate.io/posture/api/whitelist/whitelistconnect"
	"confirmate.io/posture/auth"
	"confirmate.io/posture/persistence/persistencetest"
	"confirmate.io/posture/server"
	"confirmate.io/posture/server/servertest"
	whitelistsvc "confirmate.io/posture/service/whitelist"
	"confirmate.io/posture/service/whitelist/whitelisttest"
	"confirmate.io/posture/util/assert"

	"connectrpc.com/connect"
)

func TestNewTestServer(t *testing.T) {
	db := persistencetest.NewInMemoryDB(t, whitelisttest.Types, whitelisttest.Seed)

	svc, err := whitelistsvc.NewService(
		whitelistsvc.WithDB(db),
		whitelistsvc.WithConfig(whitelistsvc.Config{Cache: whitelistsvc.DefaultCacheConfig}),
	)
	assert.NoError(t, err)
	defer svc.Shutdown()

	srv, testSrv := servertest.NewTestConnectServer(t,
		server.WithHandler(whitelistconnect.NewWhitelistServiceHandler(svc,
			connect.WithInterceptors(
				server.NewAuthInterceptor(server.WithPublicProcedures(whitelistconnect.WhitelistServiceEvaluateProcedure)),
				&server.LoggingInterceptor{},
			),
		)),
	)
	defer testSrv.Close()

	assert.NotNil(t, srv)
	assert.NotNil(t, testSrv)

	client := whitelistconnect.NewWhitelistServiceClient(testSrv.Client(), testSrv.URL)

	t.Run("public procedure", func(t *testing.T) {
		res, err := client.Evaluate(context.Background(), connect.NewRequest(&whitelist.EvaluateRequest{
			Result: &whitelisttest.MockScanResult1,
		}))
		assert.NoError(t, err)
		assert.True(t, res.Msg.Whited)
		assert.Equal(t, whitelisttest.MockConfigID1, res.Msg.ConfigID)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := client.GetConfig(context.Background(), connect.NewRequest(&whitelist.GetConfigRequest{
			ID: whitelisttest.MockConfigID1,
		}))
		assert.IsConnectError(t, err, connect.CodeUnauthenticated)
	})

	t.Run("with user", func(t *testing.T) {
		req := connect.NewRequest(&whitelist.GrabLockRequest{ID: whitelisttest.MockConfigID3})
		req.Header().Set(auth.UserHeader, whitelisttest.MockUser)

		res, err := client.GrabLock(context.Background(), req)
		assert.NoError(t, err)
		assert.Equal(t, whitelisttest.MockUser, res.Msg.LockHolder)
	})

	t.Run("health", func(t *testing.T) {
		res, err := testSrv.Client().Get(testSrv.URL + "/healthz")
		assert.NoError(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})
}

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

package whitelist

import (
	"context"
	"sync"
	"testing"

	"confirmate.io/posture/api/risk"
	"confirmate.io/posture/api/whitelist"
	"confirmate.io/posture/auth"
	"confirmate.io/posture/internal/util"
	"confirmate.io/posture/persistence"
	"confirmate.io/posture/persistence/persistencetest"
	"confirmate.io/posture/service"
	"confirmate.io/posture/service/whitelist/whitelisttest"
	"confirmate.io/posture/util/assert"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// recordingNotifier records all broadcast invalidations.
type recordingNotifier struct {
	mu       sync.Mutex
	notified []string
}

func (n *recordingNotifier) Notify(_ context.Context, tenantID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.notified = append(n.notified, tenantID)
	return nil
}

func (n *recordingNotifier) Notified() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]string(nil), n.notified...)
}

func newTestService(t *testing.T, db persistence.DB, opts ...service.Option[Service]) *Service {
	cfg := DefaultConfig
	cfg.Cache = testCacheConfig()
	cfg.StatsInterval = 0

	svc, err := NewService(append([]service.Option[Service]{WithDB(db), WithConfig(cfg)}, opts...)...)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	t.Cleanup(svc.Shutdown)

	return svc
}

func newSeededDB(t *testing.T) persistence.DB {
	return persistencetest.NewInMemoryDB(t, whitelisttest.Types, whitelisttest.Seed)
}

func userContext(user string) context.Context {
	return auth.WithUser(context.Background(), user)
}

func TestNewService(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := newTestService(t, newSeededDB(t), WithRegistry(reg))

	assert.NotNil(t, svc.Cache())
	assert.NotNil(t, svc.rego)

	// All cache collectors and the evaluation counter are registered
	n, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestService_SaveConfig(t *testing.T) {
	type args struct {
		ctx context.Context
		req *whitelist.SaveConfigRequest
	}
	type fields struct {
		db persistence.DB
	}
	tests := []struct {
		name    string
		args    args
		fields  fields
		want    assert.Want[*connect.Response[whitelist.WhitedRuleConfig]]
		wantErr assert.WantErr
		wantDB  assert.Want[persistence.DB]
	}{
		{
			name: "create",
			args: args{
				ctx: userContext(whitelisttest.MockUser),
				req: &whitelist.SaveConfigRequest{
					Config: &whitelist.WhitedRuleConfig{
						TenantID:   whitelisttest.MockTenantID2,
						RuleName:   "test VMs",
						RuleType:   whitelist.RuleTypeRuleEngine,
						RuleConfig: `[{"key":"tags.env","operator":"eq","value":"test"}]`,
						Enable:     whitelist.Enabled,
					},
				},
			},
			fields: fields{db: newSeededDB(t)},
			want: func(t *testing.T, got *connect.Response[whitelist.WhitedRuleConfig], args ...any) bool {
				return assert.NotEmpty(t, got.Msg.ID) &&
					assert.Equal(t, whitelisttest.MockUser, got.Msg.Creator) &&
					assert.Equal(t, whitelisttest.MockUser, got.Msg.LockHolder) &&
					assert.Equal(t, `{"and":[{"id":1,"key":"tags.env","operator":"EQ","value":"test"}]}`, got.Msg.CondJSON)
			},
			wantErr: assert.NoError,
			wantDB: func(t *testing.T, db persistence.DB, msgAndArgs ...any) bool {
				res := assert.Is[*connect.Response[whitelist.WhitedRuleConfig]](t, msgAndArgs[0])
				cfg := assert.InDB[whitelist.WhitedRuleConfig](t, db, res.Msg.ID)
				return assert.Equal(t, "test VMs", cfg.RuleName) &&
					assert.Equal(t, `{"and":[{"id":1,"key":"tags.env","operator":"EQ","value":"test"}]}`, cfg.CondJSON)
			},
		},
		{
			name: "create replaces supplied condition json",
			args: args{
				ctx: userContext(whitelisttest.MockUser),
				req: &whitelist.SaveConfigRequest{
					Config: &whitelist.WhitedRuleConfig{
						TenantID:   whitelisttest.MockTenantID2,
						RuleType:   whitelist.RuleTypeRuleEngine,
						RuleConfig: `[{"key":"region","operator":"EQ","value":"eu-west-1"},{"key":"tags.env","operator":"EQ","value":"test"}]`,
						Condition:  "1||2",
						CondJSON:   `{"and":[]}`,
					},
				},
			},
			fields: fields{db: newSeededDB(t)},
			want: func(t *testing.T, got *connect.Response[whitelist.WhitedRuleConfig], args ...any) bool {
				return assert.Equal(t,
					`{"or":[{"id":1,"key":"region","operator":"EQ","value":"eu-west-1"},{"id":2,"key":"tags.env","operator":"EQ","value":"test"}]}`,
					got.Msg.CondJSON)
			},
			wantErr: assert.NoError,
			wantDB: func(t *testing.T, db persistence.DB, msgAndArgs ...any) bool {
				res := assert.Is[*connect.Response[whitelist.WhitedRuleConfig]](t, msgAndArgs[0])
				cfg := assert.InDB[whitelist.WhitedRuleConfig](t, db, res.Msg.ID)
				return assert.Equal(t, res.Msg.CondJSON, cfg.CondJSON)
			},
		},
		{
			name: "create rego",
			args: args{
				ctx: userContext(whitelisttest.MockUser),
				req: &whitelist.SaveConfigRequest{
					Config: &whitelist.WhitedRuleConfig{
						TenantID:    whitelisttest.MockTenantID2,
						RuleType:    whitelist.RuleTypeRego,
						RegoContent: whitelisttest.MockPublicBucketRego,
					},
				},
			},
			fields: fields{db: newSeededDB(t)},
			want: func(t *testing.T, got *connect.Response[whitelist.WhitedRuleConfig], args ...any) bool {
				return assert.NotEmpty(t, got.Msg.ID) &&
					assert.Equal(t, "", got.Msg.CondJSON)
			},
			wantErr: assert.NoError,
			wantDB:  assert.NotNil[persistence.DB],
		},
		{
			name: "missing user",
			args: args{
				ctx: context.Background(),
				req: &whitelist.SaveConfigRequest{Config: util.Ref(whitelisttest.MockConfig1)},
			},
			fields:  fields{db: newSeededDB(t)},
			want:    assert.Nil[*connect.Response[whitelist.WhitedRuleConfig]],
			wantErr: assert.WantConnectError(connect.CodeUnauthenticated),
			wantDB:  assert.NotNil[persistence.DB],
		},
		{
			name: "validation error - empty request",
			args: args{
				ctx: userContext(whitelisttest.MockUser),
				req: &whitelist.SaveConfigRequest{},
			},
			fields:  fields{db: newSeededDB(t)},
			want:    assert.Nil[*connect.Response[whitelist.WhitedRuleConfig]],
			wantErr: assert.WantConnectError(connect.CodeInvalidArgument, "config is required"),
			wantDB:  assert.NotNil[persistence.DB],
		},
		{
			name: "invalid condition - unknown id in expression",
			args: args{
				ctx: userContext(whitelisttest.MockUser),
				req: &whitelist.SaveConfigRequest{
					Config: &whitelist.WhitedRuleConfig{
						TenantID:   whitelisttest.MockTenantID1,
						RuleType:   whitelist.RuleTypeRuleEngine,
						RuleConfig: `[{"key":"region","operator":"EQ","value":"eu-west-1"}]`,
						Condition:  "1 && 3",
					},
				},
			},
			fields:  fields{db: newSeededDB(t)},
			want:    assert.Nil[*connect.Response[whitelist.WhitedRuleConfig]],
			wantErr: assert.WantConnectError(connect.CodeInvalidArgument, "condition is not valid"),
			wantDB:  assert.NotNil[persistence.DB],
		},
		{
			name: "invalid condition - unknown operator",
			args: args{
				ctx: userContext(whitelisttest.MockUser),
				req: &whitelist.SaveConfigRequest{
					Config: &whitelist.WhitedRuleConfig{
						TenantID:   whitelisttest.MockTenantID1,
						RuleType:   whitelist.RuleTypeRuleEngine,
						RuleConfig: `[{"key":"region","operator":"STARTS_WITH","value":"eu"}]`,
					},
				},
			},
			fields:  fields{db: newSeededDB(t)},
			want:    assert.Nil[*connect.Response[whitelist.WhitedRuleConfig]],
			wantErr: assert.WantConnectError(connect.CodeInvalidArgument, "condition is not valid"),
			wantDB:  assert.NotNil[persistence.DB],
		},
		{
			name: "invalid condition - duplicate id",
			args: args{
				ctx: userContext(whitelisttest.MockUser),
				req: &whitelist.SaveConfigRequest{
					Config: &whitelist.WhitedRuleConfig{
						TenantID:   whitelisttest.MockTenantID1,
						RuleType:   whitelist.RuleTypeRuleEngine,
						RuleConfig: `[{"id":1,"key":"a","operator":"EQ","value":"b"},{"id":1,"key":"c","operator":"EQ","value":"d"}]`,
						Condition:  "1",
					},
				},
			},
			fields:  fields{db: newSeededDB(t)},
			want:    assert.Nil[*connect.Response[whitelist.WhitedRuleConfig]],
			wantErr: assert.WantConnectError(connect.CodeInvalidArgument, "duplicate condition id 1"),
			wantDB:  assert.NotNil[persistence.DB],
		},
		{
			name: "invalid condition - no items",
			args: args{
				ctx: userContext(whitelisttest.MockUser),
				req: &whitelist.SaveConfigRequest{
					Config: &whitelist.WhitedRuleConfig{
						TenantID: whitelisttest.MockTenantID1,
						RuleType: whitelist.RuleTypeRuleEngine,
					},
				},
			},
			fields:  fields{db: newSeededDB(t)},
			want:    assert.Nil[*connect.Response[whitelist.WhitedRuleConfig]],
			wantErr: assert.WantConnectError(connect.CodeInvalidArgument, "condition is not valid"),
			wantDB:  assert.NotNil[persistence.DB],
		},
		{
			name: "invalid rego",
			args: args{
				ctx: userContext(whitelisttest.MockUser),
				req: &whitelist.SaveConfigRequest{
					Config: &whitelist.WhitedRuleConfig{
						TenantID:    whitelisttest.MockTenantID1,
						RuleType:    whitelist.RuleTypeRego,
						RegoContent: "whited if {",
					},
				},
			},
			fields:  fields{db: newSeededDB(t)},
			want:    assert.Nil[*connect.Response[whitelist.WhitedRuleConfig]],
			wantErr: assert.WantConnectError(connect.CodeInvalidArgument, "condition is not valid"),
			wantDB:  assert.NotNil[persistence.DB],
		},
		{
			name: "update by lock holder",
			args: args{
				ctx: userContext(whitelisttest.MockUser),
				req: &whitelist.SaveConfigRequest{
					Config: func() *whitelist.WhitedRuleConfig {
						cfg := whitelisttest.MockConfig1
						cfg.RuleName = "renamed"
						cfg.Creator = "somebody else"
						return &cfg
					}(),
				},
			},
			fields: fields{db: newSeededDB(t)},
			want: func(t *testing.T, got *connect.Response[whitelist.WhitedRuleConfig], args ...any) bool {
				return assert.Equal(t, "renamed", got.Msg.RuleName) &&
					assert.Equal(t, whitelisttest.MockUser, got.Msg.Creator)
			},
			wantErr: assert.NoError,
			wantDB: func(t *testing.T, db persistence.DB, msgAndArgs ...any) bool {
				cfg := assert.InDB[whitelist.WhitedRuleConfig](t, db, whitelisttest.MockConfigID1)
				return assert.Equal(t, "renamed", cfg.RuleName)
			},
		},
		{
			name: "update locked by another user",
			args: args{
				ctx: userContext(whitelisttest.MockOtherUser),
				req: &whitelist.SaveConfigRequest{
					Config: func() *whitelist.WhitedRuleConfig {
						cfg := whitelisttest.MockConfig1
						cfg.RuleName = "renamed"
						return &cfg
					}(),
				},
			},
			fields:  fields{db: newSeededDB(t)},
			want:    assert.Nil[*connect.Response[whitelist.WhitedRuleConfig]],
			wantErr: assert.WantConnectError(connect.CodeFailedPrecondition, "locked by another user"),
			wantDB: func(t *testing.T, db persistence.DB, msgAndArgs ...any) bool {
				cfg := assert.InDB[whitelist.WhitedRuleConfig](t, db, whitelisttest.MockConfigID1)
				return assert.Equal(t, whitelisttest.MockConfig1.RuleName, cfg.RuleName)
			},
		},
		{
			name: "update non-existent config",
			args: args{
				ctx: userContext(whitelisttest.MockUser),
				req: &whitelist.SaveConfigRequest{
					Config: func() *whitelist.WhitedRuleConfig {
						cfg := whitelisttest.MockConfig1
						cfg.ID = whitelisttest.MockNonExistentID
						return &cfg
					}(),
				},
			},
			fields:  fields{db: newSeededDB(t)},
			want:    assert.Nil[*connect.Response[whitelist.WhitedRuleConfig]],
			wantErr: assert.WantConnectError(connect.CodeNotFound),
			wantDB:  assert.NotNil[persistence.DB],
		},
		{
			name: "db error",
			args: args{
				ctx: userContext(whitelisttest.MockUser),
				req: &whitelist.SaveConfigRequest{
					Config: func() *whitelist.WhitedRuleConfig {
						cfg := whitelisttest.MockConfig1
						cfg.ID = ""
						return &cfg
					}(),
				},
			},
			fields:  fields{db: persistencetest.CreateErrorDB(t, persistence.ErrDatabase, whitelisttest.Types, whitelisttest.Seed)},
			want:    assert.Nil[*connect.Response[whitelist.WhitedRuleConfig]],
			wantErr: assert.WantConnectError(connect.CodeInternal),
			wantDB:  assert.NotNil[persistence.DB],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.fields.db)
			res, err := svc.SaveConfig(tt.args.ctx, connect.NewRequest(tt.args.req))
			tt.want(t, res)
			tt.wantErr(t, err)
			tt.wantDB(t, tt.fields.db, res)
		})
	}
}

func TestService_SaveConfig_invalidatesCache(t *testing.T) {
	var (
		notifier = &recordingNotifier{}
		svc      = newTestService(t, newSeededDB(t), WithNotifier(notifier))
	)

	// Fill the cache of tenant 2, which only sees the global config
	configs, err := svc.cache.GetWhitedConfigsByTenant(whitelisttest.MockTenantID2)
	assert.NoError(t, err)
	assert.Len(t, configs, 1)

	// Changing a global config affects every tenant
	cfg := whitelisttest.MockConfig2
	cfg.RuleName = "changed"
	_, err = svc.SaveConfig(userContext(whitelisttest.MockUser), connect.NewRequest(&whitelist.SaveConfigRequest{Config: &cfg}))
	assert.NoError(t, err)
	assert.Equal(t, []string{AllTenants}, notifier.Notified())

	configs, err = svc.cache.GetWhitedConfigsByTenant(whitelisttest.MockTenantID2)
	assert.NoError(t, err)
	assert.Equal(t, "changed", configs[0].RuleName)

	// A new config of tenant 2 only affects tenant 2
	_, err = svc.SaveConfig(userContext(whitelisttest.MockUser), connect.NewRequest(&whitelist.SaveConfigRequest{
		Config: &whitelist.WhitedRuleConfig{
			TenantID:   whitelisttest.MockTenantID2,
			RuleType:   whitelist.RuleTypeRuleEngine,
			RuleConfig: `[{"key":"region","operator":"EQ","value":"us-east-1"}]`,
			Enable:     whitelist.Enabled,
		},
	}))
	assert.NoError(t, err)
	assert.Equal(t, []string{AllTenants, whitelisttest.MockTenantID2}, notifier.Notified())

	configs, err = svc.cache.GetWhitedConfigsByTenant(whitelisttest.MockTenantID2)
	assert.NoError(t, err)
	assert.Len(t, configs, 2)
}

func TestService_GetConfig(t *testing.T) {
	tests := []struct {
		name    string
		req     *whitelist.GetConfigRequest
		want    assert.Want[*connect.Response[whitelist.WhitedRuleConfig]]
		wantErr assert.WantErr
	}{
		{
			name: "happy path",
			req:  &whitelist.GetConfigRequest{ID: whitelisttest.MockConfigID1},
			want: func(t *testing.T, got *connect.Response[whitelist.WhitedRuleConfig], args ...any) bool {
				return assert.Equal(t, whitelisttest.MockConfig1.RuleName, got.Msg.RuleName) &&
					assert.Equal(t, whitelisttest.MockConfig1.RuleConfig, got.Msg.RuleConfig)
			},
			wantErr: assert.NoError,
		},
		{
			name:    "not found",
			req:     &whitelist.GetConfigRequest{ID: whitelisttest.MockNonExistentID},
			want:    assert.Nil[*connect.Response[whitelist.WhitedRuleConfig]],
			wantErr: assert.WantConnectError(connect.CodeNotFound, "config not found"),
		},
		{
			name:    "validation error",
			req:     &whitelist.GetConfigRequest{},
			want:    assert.Nil[*connect.Response[whitelist.WhitedRuleConfig]],
			wantErr: assert.WantConnectError(connect.CodeInvalidArgument),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, newSeededDB(t))
			res, err := svc.GetConfig(context.Background(), connect.NewRequest(tt.req))
			tt.want(t, res)
			tt.wantErr(t, err)
		})
	}
}

func TestService_ListConfigs(t *testing.T) {
	tests := []struct {
		name    string
		req     *whitelist.ListConfigsRequest
		want    assert.Want[*connect.Response[whitelist.ListConfigsResponse]]
		wantErr assert.WantErr
	}{
		{
			name: "all",
			req:  &whitelist.ListConfigsRequest{},
			want: func(t *testing.T, got *connect.Response[whitelist.ListConfigsResponse], args ...any) bool {
				return assert.Len(t, got.Msg.Configs, 4) &&
					assert.Empty(t, got.Msg.NextPageToken)
			},
			wantErr: assert.NoError,
		},
		{
			name: "by tenant",
			req:  &whitelist.ListConfigsRequest{TenantID: whitelisttest.MockTenantID1},
			want: func(t *testing.T, got *connect.Response[whitelist.ListConfigsResponse], args ...any) bool {
				return assert.Equal(t, []string{whitelisttest.MockConfigID1, whitelisttest.MockConfigID3}, ids(got.Msg.Configs))
			},
			wantErr: assert.NoError,
		},
		{
			name: "disabled only",
			req:  &whitelist.ListConfigsRequest{Enable: util.Ref(whitelist.Disabled)},
			want: func(t *testing.T, got *connect.Response[whitelist.ListConfigsResponse], args ...any) bool {
				return assert.Equal(t, []string{whitelisttest.MockConfigID4}, ids(got.Msg.Configs))
			},
			wantErr: assert.NoError,
		},
		{
			name: "paginated",
			req:  &whitelist.ListConfigsRequest{PageSize: 3, OrderBy: "id", Asc: false},
			want: func(t *testing.T, got *connect.Response[whitelist.ListConfigsResponse], args ...any) bool {
				return assert.Equal(t, []string{whitelisttest.MockConfigID4, whitelisttest.MockConfigID3, whitelisttest.MockConfigID2}, ids(got.Msg.Configs)) &&
					assert.NotEmpty(t, got.Msg.NextPageToken)
			},
			wantErr: assert.NoError,
		},
		{
			name:    "invalid order",
			req:     &whitelist.ListConfigsRequest{OrderBy: "enable; DROP TABLE tenants"},
			want:    assert.Nil[*connect.Response[whitelist.ListConfigsResponse]],
			wantErr: assert.WantConnectError(connect.CodeInvalidArgument, "order_by"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, newSeededDB(t))
			res, err := svc.ListConfigs(context.Background(), connect.NewRequest(tt.req))
			tt.want(t, res)
			tt.wantErr(t, err)
		})
	}
}

func TestService_DeleteConfig(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		req     *whitelist.DeleteConfigRequest
		wantErr assert.WantErr
		wantDB  assert.Want[persistence.DB]
	}{
		{
			name:    "lock holder",
			ctx:     userContext(whitelisttest.MockUser),
			req:     &whitelist.DeleteConfigRequest{ID: whitelisttest.MockConfigID1},
			wantErr: assert.NoError,
			wantDB: func(t *testing.T, db persistence.DB, msgAndArgs ...any) bool {
				var cfg whitelist.WhitedRuleConfig
				return assert.ErrorIs(t, db.Get(&cfg, "id = ?", whitelisttest.MockConfigID1), persistence.ErrRecordNotFound)
			},
		},
		{
			name:    "unlocked config",
			ctx:     userContext(whitelisttest.MockOtherUser),
			req:     &whitelist.DeleteConfigRequest{ID: whitelisttest.MockConfigID2},
			wantErr: assert.NoError,
			wantDB: func(t *testing.T, db persistence.DB, msgAndArgs ...any) bool {
				var cfg whitelist.WhitedRuleConfig
				return assert.ErrorIs(t, db.Get(&cfg, "id = ?", whitelisttest.MockConfigID2), persistence.ErrRecordNotFound)
			},
		},
		{
			name:    "locked by another user",
			ctx:     userContext(whitelisttest.MockOtherUser),
			req:     &whitelist.DeleteConfigRequest{ID: whitelisttest.MockConfigID1},
			wantErr: assert.WantConnectError(connect.CodeFailedPrecondition, "locked by another user"),
			wantDB: func(t *testing.T, db persistence.DB, msgAndArgs ...any) bool {
				return assert.NotNil(t, assert.InDB[whitelist.WhitedRuleConfig](t, db, whitelisttest.MockConfigID1))
			},
		},
		{
			name:    "missing user",
			ctx:     context.Background(),
			req:     &whitelist.DeleteConfigRequest{ID: whitelisttest.MockConfigID1},
			wantErr: assert.WantConnectError(connect.CodeUnauthenticated),
			wantDB:  assert.NotNil[persistence.DB],
		},
		{
			name:    "not found",
			ctx:     userContext(whitelisttest.MockUser),
			req:     &whitelist.DeleteConfigRequest{ID: whitelisttest.MockNonExistentID},
			wantErr: assert.WantConnectError(connect.CodeNotFound),
			wantDB:  assert.NotNil[persistence.DB],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newSeededDB(t)
			svc := newTestService(t, db)
			_, err := svc.DeleteConfig(tt.ctx, connect.NewRequest(tt.req))
			tt.wantErr(t, err)
			tt.wantDB(t, db)
		})
	}
}

func TestService_ChangeStatus(t *testing.T) {
	var (
		db  = newSeededDB(t)
		svc = newTestService(t, db)
		req = &whitelist.EvaluateRequest{Result: util.Ref(whitelisttest.MockScanResult1)}
	)

	res, err := svc.Evaluate(context.Background(), connect.NewRequest(req))
	assert.NoError(t, err)
	assert.True(t, res.Msg.Whited)

	// Bob does not hold the lock
	_, err = svc.ChangeStatus(userContext(whitelisttest.MockOtherUser), connect.NewRequest(&whitelist.ChangeStatusRequest{
		ID:     whitelisttest.MockConfigID1,
		Enable: whitelist.Disabled,
	}))
	assert.IsConnectError(t, err, connect.CodeFailedPrecondition)

	cfg, err := svc.ChangeStatus(userContext(whitelisttest.MockUser), connect.NewRequest(&whitelist.ChangeStatusRequest{
		ID:     whitelisttest.MockConfigID1,
		Enable: whitelist.Disabled,
	}))
	assert.NoError(t, err)
	assert.Equal(t, whitelist.Disabled, cfg.Msg.Enable)
	assert.Equal(t, whitelist.Disabled, assert.InDB[whitelist.WhitedRuleConfig](t, db, whitelisttest.MockConfigID1).Enable)

	// The cached config must not be used anymore
	res, err = svc.Evaluate(context.Background(), connect.NewRequest(req))
	assert.NoError(t, err)
	assert.False(t, res.Msg.Whited)
}

func TestService_GrabLock(t *testing.T) {
	var (
		db  = newSeededDB(t)
		svc = newTestService(t, db)
	)

	_, err := svc.GrabLock(context.Background(), connect.NewRequest(&whitelist.GrabLockRequest{ID: whitelisttest.MockConfigID1}))
	assert.IsConnectError(t, err, connect.CodeUnauthenticated)

	_, err = svc.GrabLock(userContext(whitelisttest.MockOtherUser), connect.NewRequest(&whitelist.GrabLockRequest{ID: whitelisttest.MockNonExistentID}))
	assert.IsConnectError(t, err, connect.CodeNotFound)

	res, err := svc.GrabLock(userContext(whitelisttest.MockOtherUser), connect.NewRequest(&whitelist.GrabLockRequest{ID: whitelisttest.MockConfigID1}))
	assert.NoError(t, err)
	assert.Equal(t, whitelisttest.MockOtherUser, res.Msg.LockHolder)
	assert.Equal(t, whitelisttest.MockOtherUser, assert.InDB[whitelist.WhitedRuleConfig](t, db, whitelisttest.MockConfigID1).LockHolder)

	// Now Alice is locked out
	_, err = svc.DeleteConfig(userContext(whitelisttest.MockUser), connect.NewRequest(&whitelist.DeleteConfigRequest{ID: whitelisttest.MockConfigID1}))
	assert.IsConnectError(t, err, connect.CodeFailedPrecondition)
}

func TestService_CacheStats(t *testing.T) {
	svc := newTestService(t, newSeededDB(t))

	for range 3 {
		_, err := svc.cache.GetWhitedConfigsByTenant(whitelisttest.MockTenantID1)
		assert.NoError(t, err)
	}

	res, err := svc.CacheStats(context.Background(), connect.NewRequest(&whitelist.CacheStatsRequest{}))
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), res.Msg.Hits)
	assert.Equal(t, uint64(1), res.Msg.Misses)
	assert.Equal(t, uint64(1), res.Msg.Loads)
	assert.Equal(t, 1, res.Msg.Size)
}

func TestService_Evaluate(t *testing.T) {
	tests := []struct {
		name    string
		req     *whitelist.EvaluateRequest
		want    assert.Want[*connect.Response[whitelist.EvaluateResponse]]
		wantErr assert.WantErr
	}{
		{
			name: "rule engine config of tenant",
			req:  &whitelist.EvaluateRequest{Result: util.Ref(whitelisttest.MockScanResult1)},
			want: func(t *testing.T, got *connect.Response[whitelist.EvaluateResponse], args ...any) bool {
				return assert.Equal(t, &whitelist.EvaluateResponse{
					Whited:   true,
					ConfigID: whitelisttest.MockConfigID1,
					Status:   risk.StatusWhited,
				}, got.Msg)
			},
			wantErr: assert.NoError,
		},
		{
			name: "rego config of tenant",
			req:  &whitelist.EvaluateRequest{Result: util.Ref(whitelisttest.MockScanResult2)},
			want: func(t *testing.T, got *connect.Response[whitelist.EvaluateResponse], args ...any) bool {
				return assert.True(t, got.Msg.Whited) &&
					assert.Equal(t, whitelisttest.MockConfigID3, got.Msg.ConfigID)
			},
			wantErr: assert.NoError,
		},
		{
			name: "global config",
			req:  &whitelist.EvaluateRequest{Result: util.Ref(whitelisttest.MockScanResult3)},
			want: func(t *testing.T, got *connect.Response[whitelist.EvaluateResponse], args ...any) bool {
				return assert.Equal(t, &whitelist.EvaluateResponse{
					Whited:   true,
					ConfigID: whitelisttest.MockConfigID2,
					Status:   risk.StatusWhited,
				}, got.Msg)
			},
			wantErr: assert.NoError,
		},
		{
			name: "no match",
			req:  &whitelist.EvaluateRequest{Result: util.Ref(whitelisttest.MockScanResult4)},
			want: func(t *testing.T, got *connect.Response[whitelist.EvaluateResponse], args ...any) bool {
				return assert.Equal(t, &whitelist.EvaluateResponse{}, got.Msg)
			},
			wantErr: assert.NoError,
		},
		{
			name: "other rule code",
			req: &whitelist.EvaluateRequest{Result: func() *risk.ScanResult {
				r := whitelisttest.MockScanResult1
				r.RiskRuleCode = whitelisttest.MockOtherRiskRule
				return &r
			}()},
			want: func(t *testing.T, got *connect.Response[whitelist.EvaluateResponse], args ...any) bool {
				return assert.False(t, got.Msg.Whited) &&
					assert.Equal(t, risk.StatusUnrepaired, got.Msg.Status)
			},
			wantErr: assert.NoError,
		},
		{
			name:    "validation error",
			req:     &whitelist.EvaluateRequest{Result: &risk.ScanResult{}},
			want:    assert.Nil[*connect.Response[whitelist.EvaluateResponse]],
			wantErr: assert.WantConnectError(connect.CodeInvalidArgument, "tenant_id"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			svc := newTestService(t, newSeededDB(t), WithRegistry(reg))
			res, err := svc.Evaluate(context.Background(), connect.NewRequest(tt.req))
			tt.want(t, res)
			tt.wantErr(t, err)
		})
	}
}

func TestService_Evaluate_storeFailure(t *testing.T) {
	db := persistencetest.ErrorDB(t, persistencetest.OpList, persistence.ErrDatabase, whitelisttest.Types, whitelisttest.Seed)
	svc := newTestService(t, db)

	res, err := svc.Evaluate(context.Background(), connect.NewRequest(&whitelist.EvaluateRequest{
		Result: util.Ref(whitelisttest.MockScanResult1),
	}))
	assert.Nil(t, res)
	assert.IsConnectError(t, err, connect.CodeUnavailable)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.Evaluations.WithLabelValues(resultError)))
}

func TestService_Evaluate_metrics(t *testing.T) {
	svc := newTestService(t, newSeededDB(t))

	for _, r := range []risk.ScanResult{whitelisttest.MockScanResult1, whitelisttest.MockScanResult3, whitelisttest.MockScanResult4} {
		_, err := svc.Evaluate(context.Background(), connect.NewRequest(&whitelist.EvaluateRequest{Result: &r}))
		assert.NoError(t, err)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(svc.metrics.Evaluations.WithLabelValues(resultWhited)))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.Evaluations.WithLabelValues(resultNotWhited)))
}

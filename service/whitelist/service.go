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

// Package whitelist implements the whitelist service: management of whitelist rule configs, the
// evaluation of scan results against them and the tenant config cache that serves the evaluation.
package whitelist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"confirmate.io/posture/api/whitelist"
	"confirmate.io/posture/api/whitelist/whitelistconnect"
	"confirmate.io/posture/auth"
	"confirmate.io/posture/engine"
	"confirmate.io/posture/log"
	"confirmate.io/posture/persistence"
	"confirmate.io/posture/policies"
	"confirmate.io/posture/service"

	"connectrpc.com/connect"
	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

var _ whitelistconnect.WhitelistServiceHandler = (*Service)(nil)

// types are the auto-migrated database types of the service.
var types = []any{
	&whitelist.WhitedRuleConfig{},
	&whitelist.Tenant{},
}

// Service implements [whitelistconnect.WhitelistServiceHandler].
type Service struct {
	db  persistence.DB
	cfg Config

	cache    *TenantConfigCache
	tenants  TenantRepository
	notifier Notifier
	rego     policies.PolicyEval
	registry prometheus.Registerer
	metrics  *Metrics

	scheduler *gocron.Scheduler
}

// WithConfig sets the configuration of the service.
func WithConfig(cfg Config) service.Option[Service] {
	return func(svc *Service) {
		svc.cfg = cfg
	}
}

// WithDB uses db instead of creating a database from [Config.PersistenceConfig].
func WithDB(db persistence.DB) service.Option[Service] {
	return func(svc *Service) {
		svc.db = db
	}
}

// WithNotifier broadcasts cache invalidations with n.
func WithNotifier(n Notifier) service.Option[Service] {
	return func(svc *Service) {
		svc.notifier = n
	}
}

// WithRegistry registers the metrics of the service on reg.
func WithRegistry(reg prometheus.Registerer) service.Option[Service] {
	return func(svc *Service) {
		svc.registry = reg
	}
}

// WithPolicyEval evaluates REGO rules with eval.
func WithPolicyEval(eval policies.PolicyEval) service.Option[Service] {
	return func(svc *Service) {
		svc.rego = eval
	}
}

// NewService creates a new whitelist service.
func NewService(opts ...service.Option[Service]) (svc *Service, err error) {
	svc = &Service{
		cfg:       DefaultConfig,
		notifier:  noopNotifier{},
		scheduler: gocron.NewScheduler(time.Local),
	}

	for _, o := range opts {
		o(svc)
	}

	// Initialize the database with the defined auto-migration types
	if svc.db == nil {
		pcfg := svc.cfg.PersistenceConfig
		pcfg.Types = types
		svc.db, err = persistence.NewDB(persistence.WithConfig(pcfg))
		if err != nil {
			return nil, fmt.Errorf("could not create db: %w", err)
		}
	}

	if svc.rego == nil {
		svc.rego = policies.NewRegoEval()
	}

	svc.tenants = NewTenantRepository(svc.db)
	svc.cache = NewTenantConfigCache(
		NewConfigStore(svc.db),
		svc.tenants,
		WithCacheConfig(svc.cfg.Cache),
	)
	svc.metrics = NewMetrics(svc.registry, svc.cache)

	if err = svc.scheduleStatsLog(); err != nil {
		return nil, err
	}

	return svc, nil
}

// Init implements [service.Service].
func (*Service) Init() {}

// Shutdown stops the scheduler and releases the cache.
func (svc *Service) Shutdown() {
	svc.scheduler.Stop()

	if err := svc.cache.Close(); err != nil {
		slog.Warn("Could not close whitelist cache", log.Err(err))
	}
}

// Cache returns the tenant config cache of the service.
func (svc *Service) Cache() *TenantConfigCache {
	return svc.cache
}

// SaveConfig creates a config if it has no ID and updates the existing config otherwise.
func (svc *Service) SaveConfig(
	ctx context.Context,
	req *connect.Request[whitelist.SaveConfigRequest],
) (res *connect.Response[whitelist.WhitedRuleConfig], err error) {
	var (
		cfg      *whitelist.WhitedRuleConfig
		existing whitelist.WhitedRuleConfig
		user     string
		ok       bool
	)

	// Validate the request
	if err = service.Validate(req.Msg); err != nil {
		return nil, err
	}

	if user, ok = auth.User(ctx); !ok {
		return nil, connect.NewError(connect.CodeUnauthenticated, service.ErrMissingUser)
	}

	cfg = req.Msg.Config

	if err = svc.validateRule(cfg); err != nil {
		return nil, err
	}

	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
		cfg.Creator = user
		cfg.LockHolder = user

		err = svc.db.Create(cfg)
		if err = service.HandleDatabaseError(err); err != nil {
			return nil, err
		}

		svc.invalidate(ctx, cfg.TenantID)

		res = connect.NewResponse(cfg)
		return
	}

	err = svc.db.Get(&existing, "id = ?", cfg.ID)
	if err = service.HandleDatabaseError(err, service.ErrNotFound("config")); err != nil {
		return nil, err
	}

	if err = checkLock(&existing, user); err != nil {
		return nil, err
	}

	// Ownership and creation time are not part of an update
	cfg.Creator = existing.Creator
	cfg.LockHolder = user
	cfg.GmtCreate = existing.GmtCreate

	err = svc.db.Save(cfg, "id = ?", cfg.ID)
	if err = service.HandleDatabaseError(err); err != nil {
		return nil, err
	}

	svc.rego.Evict(cfg.ID)
	svc.invalidate(ctx, existing.TenantID, cfg.TenantID)

	res = connect.NewResponse(cfg)
	return
}

// GetConfig retrieves a config by ID.
func (svc *Service) GetConfig(
	ctx context.Context,
	req *connect.Request[whitelist.GetConfigRequest],
) (res *connect.Response[whitelist.WhitedRuleConfig], err error) {
	var cfg whitelist.WhitedRuleConfig

	// Validate the request
	if err = service.Validate(req.Msg); err != nil {
		return nil, err
	}

	err = svc.db.Get(&cfg, "id = ?", req.Msg.ID)
	if err = service.HandleDatabaseError(err, service.ErrNotFound("config")); err != nil {
		return nil, err
	}

	res = connect.NewResponse(&cfg)
	return
}

// ListConfigs lists configs, optionally filtered by tenant, risk rule code and status.
func (svc *Service) ListConfigs(
	ctx context.Context,
	req *connect.Request[whitelist.ListConfigsRequest],
) (res *connect.Response[whitelist.ListConfigsResponse], err error) {
	var (
		configs []whitelist.WhitedRuleConfig
		npt     string
		filter  whitelist.ConfigFilter
	)

	// Validate request
	if err = service.Validate(req.Msg); err != nil {
		return nil, err
	}

	// Set default ordering
	if req.Msg.OrderBy == "" {
		req.Msg.OrderBy = "id"
		req.Msg.Asc = true
	}

	filter = whitelist.ConfigFilter{
		Enable:       req.Msg.Enable,
		RiskRuleCode: req.Msg.RiskRuleCode,
	}
	if req.Msg.TenantID != "" {
		filter.TenantIDs = []string{req.Msg.TenantID}
	}

	configs, npt, err = service.PaginateStorage[whitelist.WhitedRuleConfig](
		req.Msg, svc.db, service.DefaultPaginationOpts,
		req.Msg.OrderBy, req.Msg.Asc, filterConds(filter)...)
	if err != nil {
		return nil, err
	}

	res = connect.NewResponse(&whitelist.ListConfigsResponse{
		Configs:       configs,
		NextPageToken: npt,
	})
	return
}

// DeleteConfig removes a config. Only the lock holder may remove a locked config.
func (svc *Service) DeleteConfig(
	ctx context.Context,
	req *connect.Request[whitelist.DeleteConfigRequest],
) (res *connect.Response[whitelist.DeleteConfigResponse], err error) {
	var cfg *whitelist.WhitedRuleConfig

	// Validate the request
	if err = service.Validate(req.Msg); err != nil {
		return nil, err
	}

	cfg, err = svc.lockedConfig(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}

	err = svc.db.Delete(&whitelist.WhitedRuleConfig{}, "id = ?", cfg.ID)
	if err = service.HandleDatabaseError(err, service.ErrNotFound("config")); err != nil {
		return nil, err
	}

	svc.rego.Evict(cfg.ID)

	svc.invalidate(ctx, cfg.TenantID)

	res = connect.NewResponse(&whitelist.DeleteConfigResponse{})
	return
}

// ChangeStatus enables or disables a config.
func (svc *Service) ChangeStatus(
	ctx context.Context,
	req *connect.Request[whitelist.ChangeStatusRequest],
) (res *connect.Response[whitelist.WhitedRuleConfig], err error) {
	var cfg *whitelist.WhitedRuleConfig

	// Validate the request
	if err = service.Validate(req.Msg); err != nil {
		return nil, err
	}

	cfg, err = svc.lockedConfig(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}

	cfg.Enable = req.Msg.Enable

	err = svc.db.Save(cfg, "id = ?", cfg.ID)
	if err = service.HandleDatabaseError(err); err != nil {
		return nil, err
	}

	svc.invalidate(ctx, cfg.TenantID)

	res = connect.NewResponse(cfg)
	return
}

// GrabLock makes the caller the lock holder of a config, regardless of the current holder.
func (svc *Service) GrabLock(
	ctx context.Context,
	req *connect.Request[whitelist.GrabLockRequest],
) (res *connect.Response[whitelist.WhitedRuleConfig], err error) {
	var (
		cfg  whitelist.WhitedRuleConfig
		user string
		ok   bool
	)

	// Validate the request
	if err = service.Validate(req.Msg); err != nil {
		return nil, err
	}

	if user, ok = auth.User(ctx); !ok {
		return nil, connect.NewError(connect.CodeUnauthenticated, service.ErrMissingUser)
	}

	err = svc.db.Get(&cfg, "id = ?", req.Msg.ID)
	if err = service.HandleDatabaseError(err, service.ErrNotFound("config")); err != nil {
		return nil, err
	}

	if cfg.LockHolder != user {
		slog.Info("Lock of whitelist config taken over",
			slog.String("id", cfg.ID),
			slog.String("from", cfg.LockHolder),
			slog.String("to", user),
		)
	}

	cfg.LockHolder = user

	err = svc.db.Save(&cfg, "id = ?", cfg.ID)
	if err = service.HandleDatabaseError(err); err != nil {
		return nil, err
	}

	res = connect.NewResponse(&cfg)
	return
}

// CacheStats returns the statistics of the tenant config cache of this instance.
func (svc *Service) CacheStats(
	ctx context.Context,
	req *connect.Request[whitelist.CacheStatsRequest],
) (res *connect.Response[whitelist.CacheStatsResponse], err error) {
	s := svc.cache.Stats()

	res = connect.NewResponse(&whitelist.CacheStatsResponse{
		Hits:       s.Hits,
		Misses:     s.Misses,
		Loads:      s.Loads,
		LoadErrors: s.LoadErrors,
		Evictions:  s.Evictions,
		Size:       s.Size,
	})
	return
}

// lockedConfig retrieves the config with the given ID and makes sure that the caller may modify it.
func (svc *Service) lockedConfig(ctx context.Context, id string) (cfg *whitelist.WhitedRuleConfig, err error) {
	user, ok := auth.User(ctx)
	if !ok {
		return nil, connect.NewError(connect.CodeUnauthenticated, service.ErrMissingUser)
	}

	cfg = new(whitelist.WhitedRuleConfig)
	err = svc.db.Get(cfg, "id = ?", id)
	if err = service.HandleDatabaseError(err, service.ErrNotFound("config")); err != nil {
		return nil, err
	}

	if err = checkLock(cfg, user); err != nil {
		return nil, err
	}

	return cfg, nil
}

// checkLock returns an error if the config is locked by somebody other than user. An unlocked
// config may be modified by everybody.
func checkLock(cfg *whitelist.WhitedRuleConfig, user string) error {
	if cfg.LockHolder != "" && cfg.LockHolder != user {
		return connect.NewError(connect.CodeFailedPrecondition,
			fmt.Errorf("%w: %s", service.ErrLockedByAnotherUser, cfg.LockHolder))
	}

	return nil
}

// validateRule makes sure that the rule of cfg can be evaluated and stores the canonical form of its
// conditions.
func (svc *Service) validateRule(cfg *whitelist.WhitedRuleConfig) (err error) {
	switch cfg.RuleType {
	case whitelist.RuleTypeRego:
		cfg.CondJSON = ""
		_, err = policies.Validate(cfg.RegoContent)
	default:
		cfg.CondJSON, err = validateConditions(cfg.RuleConfig, cfg.Condition)
	}
	if err != nil {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %w", service.ErrInvalidCondition, err))
	}

	return nil
}

// validateConditions checks that the condition items and the expression form a valid condition and
// returns its canonical JSON form.
func validateConditions(ruleConfig string, condition string) (cond string, err error) {
	items, err := engine.ParseConditionItems(ruleConfig)
	if err != nil {
		return "", err
	}

	if len(items) == 0 {
		return "", engine.ErrInvalidRuleConfig
	}

	for _, item := range items {
		if !item.Operator.Valid() {
			return "", fmt.Errorf("%w: %s", engine.ErrOperatorNotSupported, item.Operator)
		}
	}

	return engine.GenerateJSONCond(engine.ItemsByID(items), engine.DefaultExpression(len(items), condition))
}

// invalidate drops the cache entries of the tenants, on this instance and on all others. Since the
// configs of the global tenant are part of every entry, a change to them drops all entries.
func (svc *Service) invalidate(ctx context.Context, tenantIDs ...string) {
	var (
		done   = make(map[string]bool, len(tenantIDs))
		global string
	)

	tenant, err := svc.tenants.FindGlobalTenant()
	if err == nil {
		global = tenant.ID
	} else if !errors.Is(err, ErrNoGlobalTenant) {
		// Without knowing the global tenant, we cannot tell which entries are affected
		slog.Warn("Could not find global tenant, clearing the whole whitelist cache", log.Err(err))
		tenantIDs = []string{AllTenants}
	}

	for _, id := range tenantIDs {
		if id == "" || done[id] {
			continue
		}
		done[id] = true

		if id == global {
			id = AllTenants
		}

		Invalidate(svc.cache, id)

		if err = svc.notifier.Notify(ctx, id); err != nil {
			slog.Warn("Could not broadcast whitelist invalidation",
				slog.String("tenant_id", id), log.Err(err))
		}
	}
}

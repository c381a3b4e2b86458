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

// Package whitelistconnect contains the Connect handler and client of the whitelist service.
package whitelistconnect

import (
	"context"
	"net/http"

	"confirmate.io/posture/api/whitelist"

	"connectrpc.com/connect"
)

// WhitelistServiceName is the fully-qualified name of the WhitelistService service.
const WhitelistServiceName = "posture.whitelist.v1.WhitelistService"

// Fully-qualified procedure names of the WhitelistService RPCs.
const (
	WhitelistServiceSaveConfigProcedure   = "/posture.whitelist.v1.WhitelistService/SaveConfig"
	WhitelistServiceGetConfigProcedure    = "/posture.whitelist.v1.WhitelistService/GetConfig"
	WhitelistServiceListConfigsProcedure  = "/posture.whitelist.v1.WhitelistService/ListConfigs"
	WhitelistServiceDeleteConfigProcedure = "/posture.whitelist.v1.WhitelistService/DeleteConfig"
	WhitelistServiceChangeStatusProcedure = "/posture.whitelist.v1.WhitelistService/ChangeStatus"
	WhitelistServiceGrabLockProcedure     = "/posture.whitelist.v1.WhitelistService/GrabLock"
	WhitelistServiceEvaluateProcedure     = "/posture.whitelist.v1.WhitelistService/Evaluate"
	WhitelistServiceCacheStatsProcedure   = "/posture.whitelist.v1.WhitelistService/CacheStats"
)

// WhitelistServiceHandler is implemented by the server side of the whitelist service.
type WhitelistServiceHandler interface {
	SaveConfig(context.Context, *connect.Request[whitelist.SaveConfigRequest]) (*connect.Response[whitelist.WhitedRuleConfig], error)
	GetConfig(context.Context, *connect.Request[whitelist.GetConfigRequest]) (*connect.Response[whitelist.WhitedRuleConfig], error)
	ListConfigs(context.Context, *connect.Request[whitelist.ListConfigsRequest]) (*connect.Response[whitelist.ListConfigsResponse], error)
	DeleteConfig(context.Context, *connect.Request[whitelist.DeleteConfigRequest]) (*connect.Response[whitelist.DeleteConfigResponse], error)
	ChangeStatus(context.Context, *connect.Request[whitelist.ChangeStatusRequest]) (*connect.Response[whitelist.WhitedRuleConfig], error)
	GrabLock(context.Context, *connect.Request[whitelist.GrabLockRequest]) (*connect.Response[whitelist.WhitedRuleConfig], error)
	Evaluate(context.Context, *connect.Request[whitelist.EvaluateRequest]) (*connect.Response[whitelist.EvaluateResponse], error)
	CacheStats(context.Context, *connect.Request[whitelist.CacheStatsRequest]) (*connect.Response[whitelist.CacheStatsResponse], error)
}

// NewWhitelistServiceHandler builds an HTTP handler from the service implementation. It returns
// the path on which to mount the handler and the handler itself.
func NewWhitelistServiceHandler(svc WhitelistServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(WhitelistServiceSaveConfigProcedure, connect.NewUnaryHandler(WhitelistServiceSaveConfigProcedure, svc.SaveConfig, opts...))
	mux.Handle(WhitelistServiceGetConfigProcedure, connect.NewUnaryHandler(WhitelistServiceGetConfigProcedure, svc.GetConfig, opts...))
	mux.Handle(WhitelistServiceListConfigsProcedure, connect.NewUnaryHandler(WhitelistServiceListConfigsProcedure, svc.ListConfigs, opts...))
	mux.Handle(WhitelistServiceDeleteConfigProcedure, connect.NewUnaryHandler(WhitelistServiceDeleteConfigProcedure, svc.DeleteConfig, opts...))
	mux.Handle(WhitelistServiceChangeStatusProcedure, connect.NewUnaryHandler(WhitelistServiceChangeStatusProcedure, svc.ChangeStatus, opts...))
	mux.Handle(WhitelistServiceGrabLockProcedure, connect.NewUnaryHandler(WhitelistServiceGrabLockProcedure, svc.GrabLock, opts...))
	mux.Handle(WhitelistServiceEvaluateProcedure, connect.NewUnaryHandler(WhitelistServiceEvaluateProcedure, svc.Evaluate, opts...))
	mux.Handle(WhitelistServiceCacheStatsProcedure, connect.NewUnaryHandler(WhitelistServiceCacheStatsProcedure, svc.CacheStats, opts...))

	return "/" + WhitelistServiceName + "/", mux
}

// WhitelistServiceClient is a client for the whitelist service.
type WhitelistServiceClient interface {
	SaveConfig(context.Context, *connect.Request[whitelist.SaveConfigRequest]) (*connect.Response[whitelist.WhitedRuleConfig], error)
	GetConfig(context.Context, *connect.Request[whitelist.GetConfigRequest]) (*connect.Response[whitelist.WhitedRuleConfig], error)
	ListConfigs(context.Context, *connect.Request[whitelist.ListConfigsRequest]) (*connect.Response[whitelist.ListConfigsResponse], error)
	DeleteConfig(context.Context, *connect.Request[whitelist.DeleteConfigRequest]) (*connect.Response[whitelist.DeleteConfigResponse], error)
	ChangeStatus(context.Context, *connect.Request[whitelist.ChangeStatusRequest]) (*connect.Response[whitelist.WhitedRuleConfig], error)
	GrabLock(context.Context, *connect.Request[whitelist.GrabLockRequest]) (*connect.Response[whitelist.WhitedRuleConfig], error)
	Evaluate(context.Context, *connect.Request[whitelist.EvaluateRequest]) (*connect.Response[whitelist.EvaluateResponse], error)
	CacheStats(context.Context, *connect.Request[whitelist.CacheStatsRequest]) (*connect.Response[whitelist.CacheStatsResponse], error)
}

// NewWhitelistServiceClient constructs a client for the whitelist service at baseURL, e.g.,
// http://localhost:8080.
func NewWhitelistServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) WhitelistServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)

	return &whitelistServiceClient{
		saveConfig:   connect.NewClient[whitelist.SaveConfigRequest, whitelist.WhitedRuleConfig](httpClient, baseURL+WhitelistServiceSaveConfigProcedure, opts...),
		getConfig:    connect.NewClient[whitelist.GetConfigRequest, whitelist.WhitedRuleConfig](httpClient, baseURL+WhitelistServiceGetConfigProcedure, opts...),
		listConfigs:  connect.NewClient[whitelist.ListConfigsRequest, whitelist.ListConfigsResponse](httpClient, baseURL+WhitelistServiceListConfigsProcedure, opts...),
		deleteConfig: connect.NewClient[whitelist.DeleteConfigRequest, whitelist.DeleteConfigResponse](httpClient, baseURL+WhitelistServiceDeleteConfigProcedure, opts...),
		changeStatus: connect.NewClient[whitelist.ChangeStatusRequest, whitelist.WhitedRuleConfig](httpClient, baseURL+WhitelistServiceChangeStatusProcedure, opts...),
		grabLock:     connect.NewClient[whitelist.GrabLockRequest, whitelist.WhitedRuleConfig](httpClient, baseURL+WhitelistServiceGrabLockProcedure, opts...),
		evaluate:     connect.NewClient[whitelist.EvaluateRequest, whitelist.EvaluateResponse](httpClient, baseURL+WhitelistServiceEvaluateProcedure, opts...),
		cacheStats:   connect.NewClient[whitelist.CacheStatsRequest, whitelist.CacheStatsResponse](httpClient, baseURL+WhitelistServiceCacheStatsProcedure, opts...),
	}
}

type whitelistServiceClient struct {
	saveConfig   *connect.Client[whitelist.SaveConfigRequest, whitelist.WhitedRuleConfig]
	getConfig    *connect.Client[whitelist.GetConfigRequest, whitelist.WhitedRuleConfig]
	listConfigs  *connect.Client[whitelist.ListConfigsRequest, whitelist.ListConfigsResponse]
	deleteConfig *connect.Client[whitelist.DeleteConfigRequest, whitelist.DeleteConfigResponse]
	changeStatus *connect.Client[whitelist.ChangeStatusRequest, whitelist.WhitedRuleConfig]
	grabLock     *connect.Client[whitelist.GrabLockRequest, whitelist.WhitedRuleConfig]
	evaluate     *connect.Client[whitelist.EvaluateRequest, whitelist.EvaluateResponse]
	cacheStats   *connect.Client[whitelist.CacheStatsRequest, whitelist.CacheStatsResponse]
}

func (c *whitelistServiceClient) SaveConfig(ctx context.Context, req *connect.Request[whitelist.SaveConfigRequest]) (*connect.Response[whitelist.WhitedRuleConfig], error) {
	return c.saveConfig.CallUnary(ctx, req)
}

func (c *whitelistServiceClient) GetConfig(ctx context.Context, req *connect.Request[whitelist.GetConfigRequest]) (*connect.Response[whitelist.WhitedRuleConfig], error) {
	return c.getConfig.CallUnary(ctx, req)
}

func (c *whitelistServiceClient) ListConfigs(ctx context.Context, req *connect.Request[whitelist.ListConfigsRequest]) (*connect.Response[whitelist.ListConfigsResponse], error) {
	return c.listConfigs.CallUnary(ctx, req)
}

func (c *whitelistServiceClient) DeleteConfig(ctx context.Context, req *connect.Request[whitelist.DeleteConfigRequest]) (*connect.Response[whitelist.DeleteConfigResponse], error) {
	return c.deleteConfig.CallUnary(ctx, req)
}

func (c *whitelistServiceClient) ChangeStatus(ctx context.Context, req *connect.Request[whitelist.ChangeStatusRequest]) (*connect.Response[whitelist.WhitedRuleConfig], error) {
	return c.changeStatus.CallUnary(ctx, req)
}

func (c *whitelistServiceClient) GrabLock(ctx context.Context, req *connect.Request[whitelist.GrabLockRequest]) (*connect.Response[whitelist.WhitedRuleConfig], error) {
	return c.grabLock.CallUnary(ctx, req)
}

func (c *whitelistServiceClient) Evaluate(ctx context.Context, req *connect.Request[whitelist.EvaluateRequest]) (*connect.Response[whitelist.EvaluateResponse], error) {
	return c.evaluate.CallUnary(ctx, req)
}

func (c *whitelistServiceClient) CacheStats(ctx context.Context, req *connect.Request[whitelist.CacheStatsRequest]) (*connect.Response[whitelist.CacheStatsResponse], error) {
	return c.cacheStats.CallUnary(ctx, req)
}

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
	"errors"

	"confirmate.io/posture/api/risk"
)

var (
	ErrMissingConfig   = errors.New("config is required")
	ErrMissingID       = errors.New("id is required")
	ErrMissingTenantID = errors.New("tenant_id is required")
	ErrInvalidRuleType = errors.New("rule_type must be RULE_ENGINE or REGO")
	ErrInvalidEnable   = errors.New("enable must be 0 or 1")
	ErrMissingResult   = errors.New("result is required")
	ErrInvalidOrderBy  = errors.New("order_by must be one of id, rule_name, risk_rule_code, gmt_create, gmt_modified")
)

// SaveConfigRequest creates or updates a config. An empty ID creates a new config.
type SaveConfigRequest struct {
	Config *WhitedRuleConfig `json:"config"`
}

func (r *SaveConfigRequest) GetId() string {
	return r.Config.GetId()
}

func (r *SaveConfigRequest) GetTenantId() string {
	return r.Config.GetTenantId()
}

func (r *SaveConfigRequest) Validate() error {
	switch {
	case r.Config == nil:
		return ErrMissingConfig
	case r.Config.TenantID == "":
		return ErrMissingTenantID
	case !r.Config.RuleType.Valid():
		return ErrInvalidRuleType
	case r.Config.Enable != Enabled && r.Config.Enable != Disabled:
		return ErrInvalidEnable
	}

	return nil
}

// GetPayload returns the config for request logging.
func (r *SaveConfigRequest) GetPayload() any {
	if r.Config == nil {
		return nil
	}

	return r.Config
}

type GetConfigRequest struct {
	ID string `json:"id"`
}

func (r *GetConfigRequest) GetId() string {
	return r.ID
}

func (r *GetConfigRequest) Validate() error {
	if r.ID == "" {
		return ErrMissingID
	}

	return nil
}

type ListConfigsRequest struct {
	TenantID     string `json:"tenant_id,omitempty"`
	RiskRuleCode string `json:"risk_rule_code,omitempty"`
	Enable       *int   `json:"enable,omitempty"`
	PageSize     int32  `json:"page_size,omitempty"`
	PageToken    string `json:"page_token,omitempty"`
	OrderBy      string `json:"order_by,omitempty"`
	Asc          bool   `json:"asc,omitempty"`
}

func (r *ListConfigsRequest) GetTenantId() string {
	return r.TenantID
}

func (r *ListConfigsRequest) GetPageSize() int32 {
	return r.PageSize
}

func (r *ListConfigsRequest) GetPageToken() string {
	return r.PageToken
}

func (r *ListConfigsRequest) Validate() error {
	switch {
	case r.OrderBy != "" && !orderColumns[r.OrderBy]:
		return ErrInvalidOrderBy
	case r.Enable != nil && *r.Enable != Enabled && *r.Enable != Disabled:
		return ErrInvalidEnable
	}

	return nil
}

// orderColumns are the columns a list of configs can be ordered by.
var orderColumns = map[string]bool{
	"id":             true,
	"rule_name":      true,
	"risk_rule_code": true,
	"gmt_create":     true,
	"gmt_modified":   true,
}

type ListConfigsResponse struct {
	Configs       []WhitedRuleConfig `json:"configs"`
	NextPageToken string             `json:"next_page_token,omitempty"`
}

func (r *ListConfigsResponse) GetNextPageToken() string {
	return r.NextPageToken
}

func (r *ListConfigsResponse) ResultsCount() int {
	return len(r.Configs)
}

type DeleteConfigRequest struct {
	ID string `json:"id"`
}

func (r *DeleteConfigRequest) GetId() string {
	return r.ID
}

func (r *DeleteConfigRequest) Validate() error {
	if r.ID == "" {
		return ErrMissingID
	}

	return nil
}

type DeleteConfigResponse struct{}

// ChangeStatusRequest enables or disables a config.
type ChangeStatusRequest struct {
	ID     string `json:"id"`
	Enable int    `json:"enable"`
}

func (r *ChangeStatusRequest) GetId() string {
	return r.ID
}

func (r *ChangeStatusRequest) Validate() error {
	switch {
	case r.ID == "":
		return ErrMissingID
	case r.Enable != Enabled && r.Enable != Disabled:
		return ErrInvalidEnable
	}

	return nil
}

// GrabLockRequest makes the caller the lock holder of a config.
type GrabLockRequest struct {
	ID string `json:"id"`
}

func (r *GrabLockRequest) GetId() string {
	return r.ID
}

func (r *GrabLockRequest) Validate() error {
	if r.ID == "" {
		return ErrMissingID
	}

	return nil
}

// EvaluateRequest asks whether a scan result is whitelisted.
type EvaluateRequest struct {
	Result *risk.ScanResult `json:"result"`
}

func (r *EvaluateRequest) GetTenantId() string {
	if r.Result == nil {
		return ""
	}

	return r.Result.TenantID
}

func (r *EvaluateRequest) Validate() error {
	switch {
	case r.Result == nil:
		return ErrMissingResult
	case r.Result.TenantID == "":
		return ErrMissingTenantID
	}

	return nil
}

type EvaluateResponse struct {
	Whited bool `json:"whited"`

	// ConfigID is the first config that whitelisted the result.
	ConfigID string `json:"config_id,omitempty"`

	// Status is the resulting risk status, if a current status was supplied.
	Status risk.Status `json:"status,omitempty"`
}

type CacheStatsRequest struct{}

type CacheStatsResponse struct {
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
	Loads      uint64 `json:"loads"`
	LoadErrors uint64 `json:"load_errors"`
	Evictions  uint64 `json:"evictions"`
	Size       int    `json:"size"`
}

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
	"log/slog"
	"time"

	"confirmate.io/posture/log"

	"github.com/redis/go-redis/v9"
)

const (
	// InvalidationChannel is the redis channel on which cache invalidations are broadcast.
	InvalidationChannel = "posture:whitelist:invalidate"

	// AllTenants is the invalidation payload that clears the cache of every tenant.
	AllTenants = "*"

	// DefaultListenRetryDelay is the delay before [Listen] subscribes again after a failure.
	DefaultListenRetryDelay = 5 * time.Second
)

// Notifier informs other instances that the whitelist configs of a tenant changed.
type Notifier interface {
	// Notify broadcasts an invalidation of tenantID, or of all tenants if tenantID is
	// [AllTenants].
	Notify(ctx context.Context, tenantID string) error
}

// Publisher is the part of a redis client that a [RedisNotifier] needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisNotifier broadcasts invalidations on [InvalidationChannel].
type RedisNotifier struct {
	rdb Publisher
}

// NewRedisNotifier returns a [Notifier] publishing on rdb.
func NewRedisNotifier(rdb Publisher) *RedisNotifier {
	return &RedisNotifier{rdb: rdb}
}

// Notify implements [Notifier].
func (n *RedisNotifier) Notify(ctx context.Context, tenantID string) error {
	return n.rdb.Publish(ctx, InvalidationChannel, tenantID).Err()
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string) error { return nil }

// Invalidator is implemented by caches that can drop tenant entries.
type Invalidator interface {
	ClearTenantCache(tenantID string)
	ClearAllCache()
}

// Invalidate applies an invalidation payload to c.
func Invalidate(c Invalidator, payload string) {
	switch payload {
	case "":
		slog.Warn("Ignoring empty whitelist invalidation")
	case AllTenants:
		c.ClearAllCache()
	default:
		c.ClearTenantCache(payload)
	}
}

// Listen subscribes to [InvalidationChannel] and applies every invalidation to c until ctx is
// done. The subscription is re-established after failures. Since messages may have been missed in
// the meantime, every (re-)subscription clears the whole cache.
func Listen(ctx context.Context, rdb *redis.Client, c Invalidator, retryDelay time.Duration) {
	for {
		pubsub := rdb.Subscribe(ctx, InvalidationChannel)

		if _, err := pubsub.Receive(ctx); err != nil {
			_ = pubsub.Close()
			if ctx.Err() != nil {
				return
			}

			slog.Error("Could not subscribe to whitelist invalidations",
				slog.String("channel", InvalidationChannel), log.Err(err))

			if !sleep(ctx, retryDelay) {
				return
			}
			continue
		}

		c.ClearAllCache()
		slog.Info("Subscribed to whitelist invalidations", slog.String("channel", InvalidationChannel))

		ch := pubsub.Channel()

	loop:
		for {
			select {
			case <-ctx.Done():
				_ = pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break loop
				}

				Invalidate(c, msg.Payload)
			}
		}

		_ = pubsub.Close()
		if !sleep(ctx, retryDelay) {
			return
		}
	}
}

// sleep waits for d and returns false if ctx is done before.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

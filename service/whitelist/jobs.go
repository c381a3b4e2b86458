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
	"fmt"
	"log/slog"
)

// statsJobTag tags the scheduler job that logs the cache statistics.
const statsJobTag = "cache-stats"

// scheduleStatsLog logs the cache statistics every [Config.StatsInterval].
func (svc *Service) scheduleStatsLog() (err error) {
	if svc.cfg.StatsInterval <= 0 {
		return nil
	}

	_, err = svc.scheduler.
		Every(svc.cfg.StatsInterval).
		WaitForSchedule().
		Tag(statsJobTag).
		Do(svc.logCacheStats)
	if err != nil {
		return fmt.Errorf("could not schedule cache statistics: %w", err)
	}

	svc.scheduler.StartAsync()

	return nil
}

func (svc *Service) logCacheStats() {
	s := svc.cache.Stats()

	slog.Info("Whitelist cache statistics",
		slog.Uint64("hits", s.Hits),
		slog.Uint64("misses", s.Misses),
		slog.Uint64("loads", s.Loads),
		slog.Uint64("load_errors", s.LoadErrors),
		slog.Uint64("evictions", s.Evictions),
		slog.Int("size", s.Size),
	)
}

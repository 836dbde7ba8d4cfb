package tasks

import (
	"context"
	"fmt"
	"time"
)

const snapshotTimeout = time.Minute

// newStatsSnapshotTask creates the scheduled task that flushes the
// in-memory feedback ledger and user preference profiles to the database.
// The engine stays memory-first; these snapshots only bound how much
// history a restart can lose.
func newStatsSnapshotTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "stats_snapshot")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting stats snapshot task...")
		startTime := time.Now()

		snapshotCtx, cancel := context.WithTimeout(ctx, snapshotTimeout)
		defer cancel()

		entries := deps.Ledger.Snapshot()
		if err := deps.Store.SaveResponseStats(snapshotCtx, entries); err != nil {
			log.ErrorContext(ctx, "Failed to persist response stats", "error", err)
			return fmt.Errorf("failed to persist response stats: %w", err)
		}

		profiles := deps.Profiles.Snapshot()
		if err := deps.Store.SaveUserProfiles(snapshotCtx, profiles); err != nil {
			log.ErrorContext(ctx, "Failed to persist user profiles", "error", err)
			return fmt.Errorf("failed to persist user profiles: %w", err)
		}

		log.InfoContext(ctx, "Stats snapshot completed",
			"responses", len(entries), "profiles", len(profiles), "duration", time.Since(startTime))
		return nil
	}
}

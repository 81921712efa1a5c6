package tasks

import (
	"context"
	"fmt"
	"time"
)

// newSQLMaintenanceTask compacts the suggestion and statistics database.
// VACUUM is bounded by the store operation timeout.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "sql_maintenance")

	return func(ctx context.Context) error {
		vacuumCtx, cancel := context.WithTimeout(ctx, deps.Config.Bot.DBOperationTimeout)
		defer cancel()

		start := time.Now()
		if err := deps.Store.RunSQLMaintenance(vacuumCtx); err != nil {
			log.ErrorContext(ctx, "Database compaction failed",
				"error", err, "timeout", deps.Config.Bot.DBOperationTimeout, "elapsed", time.Since(start))
			return fmt.Errorf("database compaction failed: %w", err)
		}

		log.InfoContext(ctx, "Database compacted", "elapsed", time.Since(start))
		return nil
	}
}

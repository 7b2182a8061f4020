package tasks

import (
	"context"
	"fmt"
	"time"
)

const cleanupTimeout = time.Minute

// newDeliveryCleanupTask creates a task that prunes delivery log rows older
// than the configured retention.
func newDeliveryCleanupTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "delivery_cleanup")

	return func(ctx context.Context) error {
		retention := deps.Config.Scheduler.DeliveryRetention
		if retention <= 0 {
			log.WarnContext(ctx, "Delivery retention not set, skipping cleanup")
			return nil
		}

		timeoutCtx, cancel := context.WithTimeout(ctx, cleanupTimeout)
		defer cancel()

		cutoff := time.Now().UTC().Add(-retention)
		deleted, err := deps.Store.DeleteDeliveriesBefore(timeoutCtx, cutoff)
		if err != nil {
			return fmt.Errorf("delivery cleanup failed: %w", err)
		}

		log.InfoContext(ctx, "Delivery cleanup completed", "deleted", deleted, "cutoff", cutoff)
		return nil
	}
}

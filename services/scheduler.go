package services

import (
	"context"
	"time"

	"farmfinance/backend/logger"
	"farmfinance/backend/store"
)

// OrphanCounter is the part of the store the scheduler needs.
type OrphanCounter interface {
	CountOrphans(ctx context.Context) (store.OrphanCounts, error)
}

// StartScheduler starts the periodic background tasks and returns
// immediately. They stop when ctx is cancelled. A non-positive interval
// disables the orphan check.
func StartScheduler(ctx context.Context, counter OrphanCounter, interval time.Duration) {
	log := logger.FromContext(ctx)
	if interval <= 0 {
		log.Info().Msg("Orphan check disabled")
		return
	}

	log.Info().Dur("interval", interval).Msg("Starting task scheduler...")
	go runOrphanCheck(ctx, counter, interval)
}

func runOrphanCheck(ctx context.Context, counter OrphanCounter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	CheckOrphans(ctx, counter)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CheckOrphans(ctx, counter)
		}
	}
}

// CheckOrphans counts transactions whose owner was deleted and warns when
// there are any. It never removes them.
func CheckOrphans(ctx context.Context, counter OrphanCounter) store.OrphanCounts {
	log := logger.FromContext(ctx)

	counts, err := counter.CountOrphans(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Msg("Orphan check failed")
		}
		return counts
	}
	if counts.Total() > 0 {
		log.Warn().
			Int("expenses", counts.Expenses).
			Int("incomes", counts.Incomes).
			Msg("Found transactions whose owner no longer exists")
		return counts
	}
	log.Debug().Msg("No orphaned transactions")
	return counts
}

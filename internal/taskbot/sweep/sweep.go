// Package sweep removes expired key-value entries in the background.
package sweep

import (
	"context"
	"time"

	"github.com/hay-kot/taskbot/internal/core/logging"
)

// DefaultInterval is how often expired entries are removed.
const DefaultInterval = 10 * time.Minute

// Sweeper deletes expired entries and reports how many it removed.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Start removes expired reminder claims every interval
// until ctx is cancelled.
func Start(ctx context.Context, store Sweeper, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	logger := logging.Component("sweep")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.SweepExpired(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("sweep failed")
				continue
			}
			if n > 0 {
				logger.Debug().Int64("removed", n).Msg("expired entries removed")
			}
		}
	}
}

package session

import (
	"context"
	"time"

	"github.com/byronguina/sprintbot/internal/logging"
)

// Sweeper removes expired entries.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Sweep calls s.SweepExpired every interval until ctx is done.
func Sweep(ctx context.Context, s Sweeper, interval time.Duration) {
	log := logging.Component("session")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepExpired(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("session sweep failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("removed", n).Msg("expired sessions swept")
			}
		}
	}
}

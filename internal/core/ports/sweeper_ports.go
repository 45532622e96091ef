package ports

import (
	"context"
	"time"
)

type SweeperService interface {
	// CloseExpired performs one sweep and reports how many polls it
	// closed. Safe to invoke concurrently and repeatedly.
	CloseExpired(ctx context.Context) (int64, error)

	// Run sweeps on a fixed period until ctx is cancelled.
	Run(ctx context.Context, interval time.Duration)
}

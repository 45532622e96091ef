package services

import (
	"context"
	"log"
	"time"

	"github.com/pollbox/api/internal/core/ports"
)

type sweeperService struct {
	pollRepo ports.PollRepository
}

func NewSweeperService(pollRepo ports.PollRepository) ports.SweeperService {
	return &sweeperService{
		pollRepo: pollRepo,
	}
}

func (s *sweeperService) CloseExpired(ctx context.Context) (int64, error) {
	return s.pollRepo.CloseExpired(ctx, time.Now())
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
// Overlapping runs (in-process or across instances) are harmless: the
// close predicate only matches polls still marked active.
func (s *sweeperService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		closed, err := s.CloseExpired(ctx)
		if err != nil {
			log.Printf("sweeper: failed to close expired polls: %v", err)
		} else if closed > 0 {
			log.Printf("sweeper: closed %d expired polls", closed)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

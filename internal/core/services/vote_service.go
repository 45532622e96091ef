package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pollbox/api/internal/core/domain"
	"github.com/pollbox/api/internal/core/ports"
)

// Conflict retries are bounded; a vote that keeps colliding is surfaced
// as domain.ErrTxConflict so the caller can distinguish it from the
// ordinary 4xx-class vote rejections.
const (
	castVoteMaxAttempts = 3
	castVoteRetryDelay  = 25 * time.Millisecond
)

type voteService struct {
	pollRepo ports.PollRepository
	voteRepo ports.VoteRepository
}

func NewVoteService(pollRepo ports.PollRepository, voteRepo ports.VoteRepository) ports.VoteService {
	return &voteService{
		pollRepo: pollRepo,
		voteRepo: voteRepo,
	}
}

// CastVote validates the vote against a snapshot of the poll and the
// ledger before handing it to the repository, so the common rejections
// never take the poll lock. The transaction re-runs the same checks
// under the lock and stays authoritative when the snapshot is stale.
func (s *voteService) CastVote(ctx context.Context, input ports.VoteInput) error {
	vote := &domain.Vote{
		ID:       uuid.New(),
		PollID:   input.PollID,
		UserID:   input.UserID,
		OptionID: input.OptionID,
		CastAt:   time.Now(),
	}

	poll, err := s.pollRepo.GetByID(ctx, input.PollID)
	if err != nil {
		return err
	}
	voted, err := s.voteRepo.HasVoted(ctx, input.PollID, input.UserID)
	if err != nil {
		return err
	}
	if err := poll.AcceptsVote(input.OptionID, voted, vote.CastAt); err != nil {
		// An expired poll still goes through the transaction so the
		// same unit that rejects the vote also closes the poll.
		if !errors.Is(err, domain.ErrPollExpired) {
			return err
		}
	}

	for attempt := 0; attempt < castVoteMaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * castVoteRetryDelay):
			}
		}

		err = s.voteRepo.CastVote(ctx, vote)
		if !errors.Is(err, domain.ErrTxConflict) {
			return err
		}
	}

	return err
}

func (s *voteService) MyVote(ctx context.Context, pollID, userID uuid.UUID) (*domain.Vote, error) {
	return s.voteRepo.GetUserVote(ctx, pollID, userID)
}

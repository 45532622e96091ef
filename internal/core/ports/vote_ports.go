package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/pollbox/api/internal/core/domain"
)

type VoteRepository interface {
	// CastVote runs the whole vote as one atomic unit: precondition
	// checks (poll exists, active, not expired, not already voted,
	// option valid), the ledger insert, and the counter increments
	// either all commit or none do. When the poll turns out to be past
	// its expiry the same unit force-closes it and the call fails with
	// domain.ErrPollExpired.
	CastVote(ctx context.Context, vote *domain.Vote) error

	// HasVoted is the read-side duplicate check used before taking the
	// poll lock; CastVote re-checks under the lock.
	HasVoted(ctx context.Context, pollID, userID uuid.UUID) (bool, error)
	GetUserVote(ctx context.Context, pollID, userID uuid.UUID) (*domain.Vote, error)
}

type VoteInput struct {
	PollID   uuid.UUID
	OptionID uuid.UUID
	UserID   uuid.UUID
}

type VoteService interface {
	CastVote(ctx context.Context, input VoteInput) error
	MyVote(ctx context.Context, pollID, userID uuid.UUID) (*domain.Vote, error)
}

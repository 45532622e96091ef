package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pollbox/api/internal/core/domain"
	"github.com/pollbox/api/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVoteRepo struct {
	// errs is consumed one per CastVote call; a missing entry means nil.
	errs  []error
	calls int
	votes []*domain.Vote
}

func (f *fakeVoteRepo) CastVote(ctx context.Context, vote *domain.Vote) error {
	var err error
	if f.calls < len(f.errs) {
		err = f.errs[f.calls]
	}
	f.calls++
	if err == nil {
		f.votes = append(f.votes, vote)
	}
	return err
}

func (f *fakeVoteRepo) HasVoted(ctx context.Context, pollID, userID uuid.UUID) (bool, error) {
	for _, v := range f.votes {
		if v.PollID == pollID && v.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVoteRepo) GetUserVote(ctx context.Context, pollID, userID uuid.UUID) (*domain.Vote, error) {
	for _, v := range f.votes {
		if v.PollID == pollID && v.UserID == userID {
			return v, nil
		}
	}
	return nil, domain.ErrVoteNotFound
}

func seedVotablePoll(repo *fakePollRepo, status domain.PollStatus, expiresAt *time.Time) *domain.Poll {
	pollID := uuid.New()
	poll := &domain.Poll{
		ID:        pollID,
		Question:  "Tabs or spaces?",
		Status:    status,
		ExpiresAt: expiresAt,
		Options: []domain.PollOption{
			{ID: uuid.New(), PollID: pollID, Text: "Tabs", Position: 0},
			{ID: uuid.New(), PollID: pollID, Text: "Spaces", Position: 1},
		},
	}
	repo.polls[pollID] = poll
	return poll
}

func TestCastVote(t *testing.T) {
	ctx := context.Background()

	t.Run("success on first attempt", func(t *testing.T) {
		pollRepo := newFakePollRepo()
		voteRepo := &fakeVoteRepo{}
		svc := NewVoteService(pollRepo, voteRepo)
		poll := seedVotablePoll(pollRepo, domain.PollStatusActive, nil)

		input := ports.VoteInput{PollID: poll.ID, OptionID: poll.Options[0].ID, UserID: uuid.New()}
		require.NoError(t, svc.CastVote(ctx, input))
		assert.Equal(t, 1, voteRepo.calls)

		require.Len(t, voteRepo.votes, 1)
		vote := voteRepo.votes[0]
		assert.Equal(t, input.PollID, vote.PollID)
		assert.Equal(t, input.UserID, vote.UserID)
		assert.Equal(t, input.OptionID, vote.OptionID)
		assert.NotEqual(t, uuid.Nil, vote.ID)
		assert.False(t, vote.CastAt.IsZero())
	})

	t.Run("unknown poll never reaches the repository", func(t *testing.T) {
		pollRepo := newFakePollRepo()
		voteRepo := &fakeVoteRepo{}
		svc := NewVoteService(pollRepo, voteRepo)

		input := ports.VoteInput{PollID: uuid.New(), OptionID: uuid.New(), UserID: uuid.New()}
		assert.ErrorIs(t, svc.CastVote(ctx, input), domain.ErrPollNotFound)
		assert.Zero(t, voteRepo.calls)
	})

	t.Run("archived poll never reaches the repository", func(t *testing.T) {
		pollRepo := newFakePollRepo()
		voteRepo := &fakeVoteRepo{}
		svc := NewVoteService(pollRepo, voteRepo)
		poll := seedVotablePoll(pollRepo, domain.PollStatusArchived, nil)

		input := ports.VoteInput{PollID: poll.ID, OptionID: poll.Options[0].ID, UserID: uuid.New()}
		assert.ErrorIs(t, svc.CastVote(ctx, input), domain.ErrPollInactive)
		assert.Zero(t, voteRepo.calls)
	})

	t.Run("unknown option never reaches the repository", func(t *testing.T) {
		pollRepo := newFakePollRepo()
		voteRepo := &fakeVoteRepo{}
		svc := NewVoteService(pollRepo, voteRepo)
		poll := seedVotablePoll(pollRepo, domain.PollStatusActive, nil)

		input := ports.VoteInput{PollID: poll.ID, OptionID: uuid.New(), UserID: uuid.New()}
		assert.ErrorIs(t, svc.CastVote(ctx, input), domain.ErrInvalidOption)
		assert.Zero(t, voteRepo.calls)
	})

	t.Run("second vote is rejected before the repository", func(t *testing.T) {
		pollRepo := newFakePollRepo()
		voteRepo := &fakeVoteRepo{}
		svc := NewVoteService(pollRepo, voteRepo)
		poll := seedVotablePoll(pollRepo, domain.PollStatusActive, nil)

		input := ports.VoteInput{PollID: poll.ID, OptionID: poll.Options[0].ID, UserID: uuid.New()}
		require.NoError(t, svc.CastVote(ctx, input))

		input.OptionID = poll.Options[1].ID
		assert.ErrorIs(t, svc.CastVote(ctx, input), domain.ErrAlreadyVoted)
		assert.Equal(t, 1, voteRepo.calls)
	})

	t.Run("duplicate wins over option validity", func(t *testing.T) {
		pollRepo := newFakePollRepo()
		voteRepo := &fakeVoteRepo{}
		svc := NewVoteService(pollRepo, voteRepo)
		poll := seedVotablePoll(pollRepo, domain.PollStatusActive, nil)

		input := ports.VoteInput{PollID: poll.ID, OptionID: poll.Options[0].ID, UserID: uuid.New()}
		require.NoError(t, svc.CastVote(ctx, input))

		input.OptionID = uuid.New()
		assert.ErrorIs(t, svc.CastVote(ctx, input), domain.ErrAlreadyVoted)
		assert.Equal(t, 1, voteRepo.calls)
	})

	t.Run("expired poll still reaches the repository", func(t *testing.T) {
		// The transaction owns closing the poll, so expiry must not
		// short-circuit before it.
		pollRepo := newFakePollRepo()
		voteRepo := &fakeVoteRepo{errs: []error{domain.ErrPollExpired}}
		svc := NewVoteService(pollRepo, voteRepo)
		past := time.Now().Add(-time.Minute)
		poll := seedVotablePoll(pollRepo, domain.PollStatusActive, &past)

		input := ports.VoteInput{PollID: poll.ID, OptionID: poll.Options[0].ID, UserID: uuid.New()}
		assert.ErrorIs(t, svc.CastVote(ctx, input), domain.ErrPollExpired)
		assert.Equal(t, 1, voteRepo.calls)
	})

	t.Run("terminal repository errors are not retried", func(t *testing.T) {
		for _, terminal := range []error{
			domain.ErrPollNotFound,
			domain.ErrPollInactive,
			domain.ErrPollExpired,
			domain.ErrAlreadyVoted,
			domain.ErrInvalidOption,
		} {
			pollRepo := newFakePollRepo()
			voteRepo := &fakeVoteRepo{errs: []error{terminal}}
			svc := NewVoteService(pollRepo, voteRepo)
			poll := seedVotablePoll(pollRepo, domain.PollStatusActive, nil)

			input := ports.VoteInput{PollID: poll.ID, OptionID: poll.Options[0].ID, UserID: uuid.New()}
			err := svc.CastVote(ctx, input)
			assert.ErrorIs(t, err, terminal)
			assert.Equal(t, 1, voteRepo.calls, "error %v must not be retried", terminal)
		}
	})

	t.Run("conflict is retried until it commits", func(t *testing.T) {
		pollRepo := newFakePollRepo()
		voteRepo := &fakeVoteRepo{errs: []error{domain.ErrTxConflict, domain.ErrTxConflict}}
		svc := NewVoteService(pollRepo, voteRepo)
		poll := seedVotablePoll(pollRepo, domain.PollStatusActive, nil)

		input := ports.VoteInput{PollID: poll.ID, OptionID: poll.Options[0].ID, UserID: uuid.New()}
		require.NoError(t, svc.CastVote(ctx, input))
		assert.Equal(t, 3, voteRepo.calls)
	})

	t.Run("conflict retries are bounded", func(t *testing.T) {
		pollRepo := newFakePollRepo()
		voteRepo := &fakeVoteRepo{errs: []error{
			domain.ErrTxConflict, domain.ErrTxConflict, domain.ErrTxConflict, domain.ErrTxConflict,
		}}
		svc := NewVoteService(pollRepo, voteRepo)
		poll := seedVotablePoll(pollRepo, domain.PollStatusActive, nil)

		input := ports.VoteInput{PollID: poll.ID, OptionID: poll.Options[0].ID, UserID: uuid.New()}
		err := svc.CastVote(ctx, input)
		assert.ErrorIs(t, err, domain.ErrTxConflict)
		assert.Equal(t, castVoteMaxAttempts, voteRepo.calls)
	})

	t.Run("cancelled context stops the retry loop", func(t *testing.T) {
		pollRepo := newFakePollRepo()
		voteRepo := &fakeVoteRepo{errs: []error{domain.ErrTxConflict, domain.ErrTxConflict}}
		svc := NewVoteService(pollRepo, voteRepo)
		poll := seedVotablePoll(pollRepo, domain.PollStatusActive, nil)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		input := ports.VoteInput{PollID: poll.ID, OptionID: poll.Options[0].ID, UserID: uuid.New()}
		err := svc.CastVote(cancelled, input)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, voteRepo.calls)
	})
}

func TestMyVote(t *testing.T) {
	ctx := context.Background()

	pollRepo := newFakePollRepo()
	voteRepo := &fakeVoteRepo{}
	svc := NewVoteService(pollRepo, voteRepo)
	poll := seedVotablePoll(pollRepo, domain.PollStatusActive, nil)

	input := ports.VoteInput{PollID: poll.ID, OptionID: poll.Options[0].ID, UserID: uuid.New()}
	require.NoError(t, svc.CastVote(ctx, input))

	vote, err := svc.MyVote(ctx, input.PollID, input.UserID)
	require.NoError(t, err)
	assert.Equal(t, input.OptionID, vote.OptionID)

	_, err = svc.MyVote(ctx, uuid.New(), input.UserID)
	assert.ErrorIs(t, err, domain.ErrVoteNotFound)
}

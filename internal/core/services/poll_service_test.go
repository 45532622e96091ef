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

type fakePollRepo struct {
	polls map[uuid.UUID]*domain.Poll

	saved       []*domain.Poll
	transitions []domain.PollStatus
	deleted     []uuid.UUID
	closeCount  int64

	lastFilter   ports.ListFilter
	lastLimit    int
	lastOffset   int
	featuredCall int
}

func newFakePollRepo() *fakePollRepo {
	return &fakePollRepo{polls: make(map[uuid.UUID]*domain.Poll)}
}

func (f *fakePollRepo) Save(ctx context.Context, poll *domain.Poll) error {
	f.saved = append(f.saved, poll)
	f.polls[poll.ID] = poll
	return nil
}

func (f *fakePollRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	poll, ok := f.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return poll, nil
}

func (f *fakePollRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.polls[id]; !ok {
		return domain.ErrPollNotFound
	}
	delete(f.polls, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePollRepo) Transition(ctx context.Context, id uuid.UUID, to domain.PollStatus, at time.Time) error {
	poll, ok := f.polls[id]
	if !ok {
		return domain.ErrPollNotFound
	}
	poll.Status = to
	f.transitions = append(f.transitions, to)
	return nil
}

func (f *fakePollRepo) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	var closed int64
	for _, poll := range f.polls {
		if poll.Status == domain.PollStatusActive && poll.Expired(now) {
			poll.Status = domain.PollStatusClosed
			closed++
		}
	}
	f.closeCount += closed
	return closed, nil
}

func (f *fakePollRepo) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Poll, error) {
	f.lastFilter = filter
	return nil, nil
}

func (f *fakePollRepo) Featured(ctx context.Context, limit int) ([]*domain.Poll, error) {
	f.featuredCall = limit
	return nil, nil
}

func (f *fakePollRepo) CreatedBy(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Poll, error) {
	f.lastLimit, f.lastOffset = limit, offset
	return nil, nil
}

func (f *fakePollRepo) ParticipatedBy(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Poll, error) {
	f.lastLimit, f.lastOffset = limit, offset
	return nil, nil
}

func TestCreatePoll(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("valid input", func(t *testing.T) {
		repo := newFakePollRepo()
		svc := NewPollService(repo)

		poll, err := svc.Create(ctx, ports.CreatePollInput{
			Question:  "Tabs or spaces?",
			Options:   []string{"Tabs", "Spaces", "Both"},
			CreatedBy: owner,
		})
		require.NoError(t, err)
		require.Len(t, repo.saved, 1)

		assert.Equal(t, domain.PollStatusActive, poll.Status)
		assert.Equal(t, owner, poll.CreatedBy)
		assert.Zero(t, poll.TotalVotes)
		require.Len(t, poll.Options, 3)
		for i, opt := range poll.Options {
			assert.Equal(t, poll.ID, opt.PollID)
			assert.Equal(t, i, opt.Position)
			assert.Zero(t, opt.VoteCount)
		}
	})

	t.Run("question required", func(t *testing.T) {
		svc := NewPollService(newFakePollRepo())
		_, err := svc.Create(ctx, ports.CreatePollInput{
			Question: "   ",
			Options:  []string{"A", "B"},
		})
		assert.Error(t, err)
	})

	t.Run("blank options are dropped before counting", func(t *testing.T) {
		svc := NewPollService(newFakePollRepo())
		_, err := svc.Create(ctx, ports.CreatePollInput{
			Question: "Q?",
			Options:  []string{"A", "", "  "},
		})
		assert.Error(t, err)
	})

	t.Run("too many options", func(t *testing.T) {
		svc := NewPollService(newFakePollRepo())
		options := make([]string, domain.MaxPollOptions+1)
		for i := range options {
			options[i] = "option"
		}
		_, err := svc.Create(ctx, ports.CreatePollInput{Question: "Q?", Options: options})
		assert.Error(t, err)
	})

	t.Run("expiry must be in the future", func(t *testing.T) {
		svc := NewPollService(newFakePollRepo())
		past := time.Now().Add(-time.Hour)
		_, err := svc.Create(ctx, ports.CreatePollInput{
			Question:  "Q?",
			Options:   []string{"A", "B"},
			ExpiresAt: &past,
		})
		assert.Error(t, err)
	})
}

func TestOwnerOnlyLifecycle(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	seed := func(repo *fakePollRepo, status domain.PollStatus) *domain.Poll {
		poll := &domain.Poll{
			ID:        uuid.New(),
			Question:  "Q?",
			Status:    status,
			CreatedBy: owner,
		}
		repo.polls[poll.ID] = poll
		return poll
	}

	t.Run("archive by owner", func(t *testing.T) {
		repo := newFakePollRepo()
		svc := NewPollService(repo)
		poll := seed(repo, domain.PollStatusActive)

		require.NoError(t, svc.Archive(ctx, poll.ID, owner))
		assert.Equal(t, []domain.PollStatus{domain.PollStatusArchived}, repo.transitions)
	})

	t.Run("archive by stranger", func(t *testing.T) {
		repo := newFakePollRepo()
		svc := NewPollService(repo)
		poll := seed(repo, domain.PollStatusActive)

		err := svc.Archive(ctx, poll.ID, stranger)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Empty(t, repo.transitions)
	})

	t.Run("archive twice is a no-op", func(t *testing.T) {
		repo := newFakePollRepo()
		svc := NewPollService(repo)
		poll := seed(repo, domain.PollStatusArchived)

		require.NoError(t, svc.Archive(ctx, poll.ID, owner))
		assert.Empty(t, repo.transitions)
	})

	t.Run("unarchive restores active", func(t *testing.T) {
		repo := newFakePollRepo()
		svc := NewPollService(repo)
		poll := seed(repo, domain.PollStatusArchived)

		require.NoError(t, svc.Unarchive(ctx, poll.ID, owner))
		assert.Equal(t, []domain.PollStatus{domain.PollStatusActive}, repo.transitions)
	})

	t.Run("unarchive skips non-archived polls", func(t *testing.T) {
		repo := newFakePollRepo()
		svc := NewPollService(repo)
		poll := seed(repo, domain.PollStatusClosed)

		require.NoError(t, svc.Unarchive(ctx, poll.ID, owner))
		assert.Empty(t, repo.transitions)
	})

	t.Run("delete by owner", func(t *testing.T) {
		repo := newFakePollRepo()
		svc := NewPollService(repo)
		poll := seed(repo, domain.PollStatusActive)

		require.NoError(t, svc.Delete(ctx, poll.ID, owner))
		assert.Equal(t, []uuid.UUID{poll.ID}, repo.deleted)
	})

	t.Run("delete by stranger", func(t *testing.T) {
		repo := newFakePollRepo()
		svc := NewPollService(repo)
		poll := seed(repo, domain.PollStatusActive)

		err := svc.Delete(ctx, poll.ID, stranger)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Empty(t, repo.deleted)
	})

	t.Run("missing poll", func(t *testing.T) {
		repo := newFakePollRepo()
		svc := NewPollService(repo)

		err := svc.Archive(ctx, uuid.New(), owner)
		assert.ErrorIs(t, err, domain.ErrPollNotFound)
	})
}

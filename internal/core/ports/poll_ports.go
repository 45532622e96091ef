package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pollbox/api/internal/core/domain"
)

// ListFilter narrows and orders poll listings. Zero values mean "no
// filter": every non-deleted poll, newest first.
type ListFilter struct {
	Status domain.PollStatus
	Query  string
	Sort   string // "newest" (default) or "votes"
	Limit  int
	Offset int
}

type PollRepository interface {
	Save(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Transition moves a poll between lifecycle statuses, stamping the
	// matching timestamp column (closed_at, archived_at).
	Transition(ctx context.Context, id uuid.UUID, to domain.PollStatus, at time.Time) error

	// CloseExpired closes every active poll whose expiry has passed and
	// returns how many were closed. Running it again is a no-op.
	CloseExpired(ctx context.Context, now time.Time) (int64, error)

	List(ctx context.Context, filter ListFilter) ([]*domain.Poll, error)
	Featured(ctx context.Context, limit int) ([]*domain.Poll, error)
	CreatedBy(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Poll, error)
	ParticipatedBy(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Poll, error)
}

type CreatePollInput struct {
	Question  string
	Options   []string
	CreatedBy uuid.UUID
	ExpiresAt *time.Time
}

type PollService interface {
	Create(ctx context.Context, input CreatePollInput) (*domain.Poll, error)
	GetPoll(ctx context.Context, id string) (*domain.Poll, error)
	Archive(ctx context.Context, pollID, userID uuid.UUID) error
	Unarchive(ctx context.Context, pollID, userID uuid.UUID) error
	Delete(ctx context.Context, pollID, userID uuid.UUID) error
}

package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/pollbox/api/internal/core/domain"
)

type StatsRepository interface {
	GetOptionStats(ctx context.Context, pollID uuid.UUID) ([]domain.PollOptionStats, error)
}

type ListPollsInput struct {
	Status string
	Query  string
	Sort   string
	Page   int
}

// QueryService is the read-only façade consumed by the UI. Its views
// reflect a recent committed state of the poll store; it makes no
// consistency promise beyond that.
type QueryService interface {
	ListPolls(ctx context.Context, input ListPollsInput) ([]*domain.Poll, error)
	Featured(ctx context.Context, limit int) ([]*domain.Poll, error)
	CreatedBy(ctx context.Context, userID uuid.UUID, page int) ([]*domain.Poll, error)
	ParticipatedBy(ctx context.Context, userID uuid.UUID, page int) ([]*domain.Poll, error)
	OptionStats(ctx context.Context, pollID string) ([]domain.PollOptionStats, error)
}

package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pollbox/api/internal/core/domain"
	"github.com/pollbox/api/internal/core/ports"
)

const (
	defaultPageSize      = 20
	defaultFeaturedLimit = 5
	maxFeaturedLimit     = 50
)

type queryService struct {
	pollRepo  ports.PollRepository
	statsRepo ports.StatsRepository
}

func NewQueryService(pollRepo ports.PollRepository, statsRepo ports.StatsRepository) ports.QueryService {
	return &queryService{
		pollRepo:  pollRepo,
		statsRepo: statsRepo,
	}
}

func (s *queryService) ListPolls(ctx context.Context, input ports.ListPollsInput) ([]*domain.Poll, error) {
	filter := ports.ListFilter{
		Query:  input.Query,
		Sort:   input.Sort,
		Limit:  defaultPageSize,
		Offset: pageOffset(input.Page),
	}

	switch domain.PollStatus(input.Status) {
	case domain.PollStatusActive, domain.PollStatusClosed, domain.PollStatusArchived:
		filter.Status = domain.PollStatus(input.Status)
	}

	return s.pollRepo.List(ctx, filter)
}

func (s *queryService) Featured(ctx context.Context, limit int) ([]*domain.Poll, error) {
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	if limit > maxFeaturedLimit {
		limit = maxFeaturedLimit
	}
	return s.pollRepo.Featured(ctx, limit)
}

func (s *queryService) CreatedBy(ctx context.Context, userID uuid.UUID, page int) ([]*domain.Poll, error) {
	return s.pollRepo.CreatedBy(ctx, userID, defaultPageSize, pageOffset(page))
}

func (s *queryService) ParticipatedBy(ctx context.Context, userID uuid.UUID, page int) ([]*domain.Poll, error) {
	return s.pollRepo.ParticipatedBy(ctx, userID, defaultPageSize, pageOffset(page))
}

func (s *queryService) OptionStats(ctx context.Context, pollID string) ([]domain.PollOptionStats, error) {
	id, err := uuid.Parse(pollID)
	if err != nil {
		return nil, domain.ErrInvalidPollID
	}
	return s.statsRepo.GetOptionStats(ctx, id)
}

func pageOffset(page int) int {
	if page <= 1 {
		return 0
	}
	return (page - 1) * defaultPageSize
}

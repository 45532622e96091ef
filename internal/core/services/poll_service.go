package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pollbox/api/internal/core/domain"
	"github.com/pollbox/api/internal/core/ports"
)

type pollService struct {
	repo ports.PollRepository
}

func NewPollService(repo ports.PollRepository) ports.PollService {
	return &pollService{
		repo: repo,
	}
}

func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput) (*domain.Poll, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, errors.New("question is required")
	}

	now := time.Now()
	if input.ExpiresAt != nil && !input.ExpiresAt.After(now) {
		return nil, errors.New("expiry must be in the future")
	}

	pollID := uuid.New()
	poll := &domain.Poll{
		ID:        pollID,
		Question:  input.Question,
		Status:    domain.PollStatusActive,
		CreatedBy: input.CreatedBy,
		CreatedAt: now,
		ExpiresAt: input.ExpiresAt,
	}

	for _, optText := range input.Options {
		if strings.TrimSpace(optText) == "" {
			continue
		}
		poll.Options = append(poll.Options, domain.PollOption{
			ID:       uuid.New(),
			PollID:   pollID,
			Text:     optText,
			Position: len(poll.Options),
		})
	}

	if len(poll.Options) < domain.MinPollOptions {
		return nil, errors.New("at least two valid options are required")
	}
	if len(poll.Options) > domain.MaxPollOptions {
		return nil, errors.New("at most ten options are allowed")
	}

	err := s.repo.Save(ctx, poll)
	if err != nil {
		return nil, err
	}

	return poll, nil
}

func (s *pollService) GetPoll(ctx context.Context, id string) (*domain.Poll, error) {
	pollID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrInvalidPollID
	}

	return s.repo.GetByID(ctx, pollID)
}

func (s *pollService) Archive(ctx context.Context, pollID, userID uuid.UUID) error {
	poll, err := s.ownedPoll(ctx, pollID, userID)
	if err != nil {
		return err
	}
	if poll.Status == domain.PollStatusArchived {
		return nil
	}
	return s.repo.Transition(ctx, pollID, domain.PollStatusArchived, time.Now())
}

func (s *pollService) Unarchive(ctx context.Context, pollID, userID uuid.UUID) error {
	poll, err := s.ownedPoll(ctx, pollID, userID)
	if err != nil {
		return err
	}
	if poll.Status != domain.PollStatusArchived {
		return nil
	}
	return s.repo.Transition(ctx, pollID, domain.PollStatusActive, time.Now())
}

func (s *pollService) Delete(ctx context.Context, pollID, userID uuid.UUID) error {
	if _, err := s.ownedPoll(ctx, pollID, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, pollID)
}

// ownedPoll loads the poll and enforces that userID created it. Archive,
// unarchive and delete are owner-only actions.
func (s *pollService) ownedPoll(ctx context.Context, pollID, userID uuid.UUID) (*domain.Poll, error) {
	poll, err := s.repo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if poll.CreatedBy != userID {
		return nil, domain.ErrUnauthorized
	}
	return poll, nil
}

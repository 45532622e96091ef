package domain

import (
	"time"

	"github.com/google/uuid"
)

type PollStatus string

const (
	PollStatusActive   PollStatus = "active"
	PollStatusClosed   PollStatus = "closed"
	PollStatusArchived PollStatus = "archived"
)

const (
	MinPollOptions = 2
	MaxPollOptions = 10
)

type Poll struct {
	ID         uuid.UUID    `json:"id"`
	Question   string       `json:"question"`
	Options    []PollOption `json:"options"`
	Status     PollStatus   `json:"status"`
	CreatedBy  uuid.UUID    `json:"created_by"`
	TotalVotes int64        `json:"total_votes"`
	CreatedAt  time.Time    `json:"created_at"`
	ExpiresAt  *time.Time   `json:"expires_at,omitempty"`
	ClosedAt   *time.Time   `json:"closed_at,omitempty"`
	ArchivedAt *time.Time   `json:"archived_at,omitempty"`
}

type PollOption struct {
	ID        uuid.UUID `json:"id"`
	PollID    uuid.UUID `json:"poll_id"`
	Text      string    `json:"text"`
	Position  int       `json:"position"`
	VoteCount int64     `json:"vote_count"`
}

// Expired reports whether the poll's expiry instant has passed.
// Polls without an expiry never expire.
func (p *Poll) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && !now.Before(*p.ExpiresAt)
}

func (p *Poll) HasOption(optionID uuid.UUID) bool {
	for _, opt := range p.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// AcceptsVote checks the vote preconditions in the same order the vote
// transaction enforces them: active status, then expiry, then the
// voter's ledger entry, then option membership. alreadyVoted is the
// ledger's answer for this voter; the transaction re-checks it under
// the poll lock, so a stale answer here can only cost a round trip.
func (p *Poll) AcceptsVote(optionID uuid.UUID, alreadyVoted bool, now time.Time) error {
	if p.Status != PollStatusActive {
		return ErrPollInactive
	}
	if p.Expired(now) {
		return ErrPollExpired
	}
	if alreadyVoted {
		return ErrAlreadyVoted
	}
	if !p.HasOption(optionID) {
		return ErrInvalidOption
	}
	return nil
}

type PollOptionStats struct {
	OptionID   uuid.UUID `json:"option_id"`
	Text       string    `json:"text"`
	VoteCount  int64     `json:"vote_count"`
	Percentage float64   `json:"percentage"`
}

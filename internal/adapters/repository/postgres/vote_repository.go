package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pollbox/api/internal/core/domain"
	"github.com/pollbox/api/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

// CastVote performs the vote as one transaction. The poll row is locked
// up front (FOR UPDATE), which serializes all votes for the same poll:
// the duplicate check, the ledger insert and the counter increments are
// indivisible, so two concurrent votes by the same user can never both
// pass the duplicate check. The unique key on (poll_id, user_id)
// backstops the same guarantee at the storage level.
func (r *voteRepository) CastVote(ctx context.Context, vote *domain.Vote) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status domain.PollStatus
	var expiresAt *time.Time
	queryPoll := `
		SELECT status, expires_at
		FROM polls
		WHERE id = $1
		FOR UPDATE
	`
	err = tx.QueryRowContext(ctx, queryPoll, vote.PollID).Scan(&status, &expiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrPollNotFound
		}
		return translateError(fmt.Errorf("failed to lock poll: %w", err))
	}

	if status != domain.PollStatusActive {
		return domain.ErrPollInactive
	}

	if expiresAt != nil && !vote.CastAt.Before(*expiresAt) {
		// The sweeper has not reached this poll yet; close it here so
		// no later vote has to take the lock to find out.
		queryClose := `
			UPDATE polls SET status = $2, closed_at = NOW()
			WHERE id = $1
		`
		if _, err := tx.ExecContext(ctx, queryClose, vote.PollID, domain.PollStatusClosed); err != nil {
			return translateError(fmt.Errorf("failed to close expired poll: %w", err))
		}
		if err := tx.Commit(); err != nil {
			return translateError(fmt.Errorf("failed to commit poll close: %w", err))
		}
		return domain.ErrPollExpired
	}

	var exists int
	queryVoted := `SELECT 1 FROM votes WHERE poll_id = $1 AND user_id = $2 LIMIT 1`
	err = tx.QueryRowContext(ctx, queryVoted, vote.PollID, vote.UserID).Scan(&exists)
	if err == nil {
		return domain.ErrAlreadyVoted
	}
	if err != sql.ErrNoRows {
		return translateError(fmt.Errorf("failed to check existing vote: %w", err))
	}

	queryOption := `SELECT 1 FROM poll_options WHERE id = $1 AND poll_id = $2`
	err = tx.QueryRowContext(ctx, queryOption, vote.OptionID, vote.PollID).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrInvalidOption
		}
		return translateError(fmt.Errorf("failed to check option: %w", err))
	}

	queryInsert := `
		INSERT INTO votes (id, poll_id, user_id, option_id, cast_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = tx.ExecContext(ctx, queryInsert, vote.ID, vote.PollID, vote.UserID, vote.OptionID, vote.CastAt)
	if err != nil {
		return translateError(fmt.Errorf("failed to insert vote: %w", err))
	}

	queryCount := `UPDATE poll_options SET vote_count = vote_count + 1 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, queryCount, vote.OptionID); err != nil {
		return translateError(fmt.Errorf("failed to increment option count: %w", err))
	}

	queryTotal := `UPDATE polls SET total_votes = total_votes + 1 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, queryTotal, vote.PollID); err != nil {
		return translateError(fmt.Errorf("failed to increment total votes: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return translateError(fmt.Errorf("failed to commit vote: %w", err))
	}
	return nil
}

func (r *voteRepository) HasVoted(ctx context.Context, pollID, userID uuid.UUID) (bool, error) {
	query := `SELECT 1 FROM votes WHERE poll_id = $1 AND user_id = $2 LIMIT 1`
	var exists int
	err := r.db.QueryRowContext(ctx, query, pollID, userID).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return true, nil
}

func (r *voteRepository) GetUserVote(ctx context.Context, pollID, userID uuid.UUID) (*domain.Vote, error) {
	query := `
		SELECT id, poll_id, user_id, option_id, cast_at
		FROM votes
		WHERE poll_id = $1 AND user_id = $2
	`
	var vote domain.Vote
	err := r.db.QueryRowContext(ctx, query, pollID, userID).Scan(
		&vote.ID, &vote.PollID, &vote.UserID, &vote.OptionID, &vote.CastAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return &vote, nil
}

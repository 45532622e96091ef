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

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

const pollColumns = `id, question, status, created_by, total_votes, created_at, expires_at, closed_at, archived_at`

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryPoll := `
		INSERT INTO polls (id, question, status, created_by, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, queryPoll, poll.ID, poll.Question, poll.Status, poll.CreatedBy, poll.CreatedAt, poll.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	queryOption := `
		INSERT INTO poll_options (id, poll_id, text, position)
		VALUES ($1, $2, $3, $4)
	`
	stmt, err := tx.PrepareContext(ctx, queryOption)
	if err != nil {
		return fmt.Errorf("failed to prepare option statement: %w", err)
	}
	defer stmt.Close()

	for _, opt := range poll.Options {
		_, err = stmt.ExecContext(ctx, opt.ID, opt.PollID, opt.Text, opt.Position)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	queryPoll := fmt.Sprintf(`SELECT %s FROM polls WHERE id = $1`, pollColumns)

	var poll domain.Poll
	err := r.db.QueryRowContext(ctx, queryPoll, id).Scan(
		&poll.ID, &poll.Question, &poll.Status, &poll.CreatedBy, &poll.TotalVotes,
		&poll.CreatedAt, &poll.ExpiresAt, &poll.ClosedAt, &poll.ArchivedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	options, err := r.fetchOptions(ctx, poll.ID)
	if err != nil {
		return nil, err
	}
	poll.Options = options

	return &poll, nil
}

// Delete removes the poll; the vote ledger rows go with it through the
// ON DELETE CASCADE on votes.poll_id, so no orphaned votes survive.
func (r *pollRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrPollNotFound
	}
	return nil
}

func (r *pollRepository) Transition(ctx context.Context, id uuid.UUID, to domain.PollStatus, at time.Time) error {
	var result sql.Result
	var err error
	switch to {
	case domain.PollStatusClosed:
		result, err = r.db.ExecContext(ctx,
			`UPDATE polls SET status = 'closed', closed_at = $2 WHERE id = $1`, id, at)
	case domain.PollStatusArchived:
		result, err = r.db.ExecContext(ctx,
			`UPDATE polls SET status = 'archived', archived_at = $2 WHERE id = $1`, id, at)
	case domain.PollStatusActive:
		result, err = r.db.ExecContext(ctx,
			`UPDATE polls SET status = 'active', archived_at = NULL WHERE id = $1`, id)
	default:
		return fmt.Errorf("unknown poll status %q", to)
	}
	if err != nil {
		return fmt.Errorf("failed to transition poll: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read transition result: %w", err)
	}
	if affected == 0 {
		return domain.ErrPollNotFound
	}
	return nil
}

func (r *pollRepository) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE polls
		SET status = 'closed', closed_at = $1
		WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at <= $1
	`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, translateError(fmt.Errorf("failed to close expired polls: %w", err))
	}
	return result.RowsAffected()
}

func (r *pollRepository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Poll, error) {
	order := "p.created_at DESC"
	if filter.Sort == "votes" {
		order = "p.total_votes DESC, p.created_at DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM polls p
		WHERE ($1 = '' OR p.status = $1)
		  AND ($2 = '' OR p.question ILIKE $2)
		ORDER BY `+order+`
		LIMIT $3 OFFSET $4
	`, prefixed("p"))

	pattern := ""
	if filter.Query != "" {
		pattern = "%" + filter.Query + "%"
	}

	rows, err := r.db.QueryContext(ctx, query, string(filter.Status), pattern, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	return r.scanPolls(ctx, rows)
}

func (r *pollRepository) Featured(ctx context.Context, limit int) ([]*domain.Poll, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM polls p
		WHERE p.status = 'active'
		ORDER BY p.total_votes DESC, p.created_at DESC
		LIMIT $1
	`, prefixed("p"))

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured polls: %w", err)
	}
	defer rows.Close()

	return r.scanPolls(ctx, rows)
}

func (r *pollRepository) CreatedBy(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Poll, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM polls p
		WHERE p.created_by = $1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`, prefixed("p"))

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls by creator: %w", err)
	}
	defer rows.Close()

	return r.scanPolls(ctx, rows)
}

// ParticipatedBy joins through the vote ledger: the ledger, not any
// field on the poll, decides membership.
func (r *pollRepository) ParticipatedBy(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Poll, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM polls p
		JOIN votes v ON v.poll_id = p.id
		WHERE v.user_id = $1
		ORDER BY v.cast_at DESC
		LIMIT $2 OFFSET $3
	`, prefixed("p"))

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list participated polls: %w", err)
	}
	defer rows.Close()

	return r.scanPolls(ctx, rows)
}

func (r *pollRepository) scanPolls(ctx context.Context, rows *sql.Rows) ([]*domain.Poll, error) {
	var polls []*domain.Poll
	for rows.Next() {
		var poll domain.Poll
		err := rows.Scan(
			&poll.ID, &poll.Question, &poll.Status, &poll.CreatedBy, &poll.TotalVotes,
			&poll.CreatedAt, &poll.ExpiresAt, &poll.ClosedAt, &poll.ArchivedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}

		options, err := r.fetchOptions(ctx, poll.ID)
		if err != nil {
			return nil, err
		}
		poll.Options = options

		polls = append(polls, &poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	return polls, nil
}

func (r *pollRepository) fetchOptions(ctx context.Context, pollID uuid.UUID) ([]domain.PollOption, error) {
	queryOptions := `
		SELECT id, poll_id, text, position, vote_count
		FROM poll_options
		WHERE poll_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, queryOptions, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get poll options: %w", err)
	}
	defer rows.Close()

	var options []domain.PollOption
	for rows.Next() {
		var opt domain.PollOption
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Text, &opt.Position, &opt.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options: %w", err)
	}
	return options, nil
}

func prefixed(alias string) string {
	return fmt.Sprintf(
		"%[1]s.id, %[1]s.question, %[1]s.status, %[1]s.created_by, %[1]s.total_votes, %[1]s.created_at, %[1]s.expires_at, %[1]s.closed_at, %[1]s.archived_at",
		alias,
	)
}

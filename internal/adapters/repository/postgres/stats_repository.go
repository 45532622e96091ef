package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/pollbox/api/internal/core/domain"
	"github.com/pollbox/api/internal/core/ports"
)

type statsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) ports.StatsRepository {
	return &statsRepository{
		db: db,
	}
}

// GetOptionStats reads the authoritative per-option counters and derives
// percentages. The counters are maintained inside the vote transaction,
// so no aggregation over the ledger is needed here.
func (r *statsRepository) GetOptionStats(ctx context.Context, pollID uuid.UUID) ([]domain.PollOptionStats, error) {
	query := `
		SELECT id, text, vote_count
		FROM poll_options
		WHERE poll_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch option stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.PollOptionStats
	var total int64
	for rows.Next() {
		var s domain.PollOptionStats
		if err := rows.Scan(&s.OptionID, &s.Text, &s.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan option stats: %w", err)
		}
		stats = append(stats, s)
		total += s.VoteCount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating option stats: %w", err)
	}

	if len(stats) == 0 {
		return nil, domain.ErrPollNotFound
	}

	for i := range stats {
		if total > 0 {
			stats[i].Percentage = (float64(stats[i].VoteCount) / float64(total)) * 100
		}
	}

	return stats, nil
}

package postgres

import (
	"errors"

	"github.com/lib/pq"
	"github.com/pollbox/api/internal/core/domain"
)

// SQLSTATE codes worth translating into domain errors.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// translateError maps driver errors onto the domain sentinels the
// services retry or surface. A unique violation on the vote ledger means
// a concurrent transaction recorded the same (poll, user) pair first.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case codeSerializationFailure, codeDeadlockDetected:
		return domain.ErrTxConflict
	case codeUniqueViolation:
		if pqErr.Constraint == "votes_poll_id_user_id_key" {
			return domain.ErrAlreadyVoted
		}
	}
	return err
}

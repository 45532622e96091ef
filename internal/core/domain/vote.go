package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vote is a ledger entry. At most one entry may ever exist for a given
// (PollID, UserID) pair; the ledger is the single source of truth for
// voter membership.
type Vote struct {
	ID       uuid.UUID `json:"id"`
	PollID   uuid.UUID `json:"poll_id"`
	UserID   uuid.UUID `json:"user_id"`
	OptionID uuid.UUID `json:"option_id"`
	CastAt   time.Time `json:"cast_at"`
}

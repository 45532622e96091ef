package domain

import "errors"

var (
	ErrPollNotFound  = errors.New("poll not found")
	ErrInvalidPollID = errors.New("invalid poll id")
	ErrPollInactive  = errors.New("poll is not active")
	ErrPollExpired   = errors.New("poll has expired")
	ErrAlreadyVoted  = errors.New("user has already voted")
	ErrInvalidOption = errors.New("invalid option for this poll")
	ErrUnauthorized  = errors.New("user is not the poll owner")
	ErrVoteNotFound  = errors.New("user did not vote on this poll")

	// ErrTxConflict signals an optimistic-commit failure (serialization
	// or deadlock). It is always safe to retry.
	ErrTxConflict = errors.New("transaction conflict")
)

package engine

import "errors"

var (
	// ErrBudgetExhausted is returned by an upvote attempted with no
	// remaining daily budget. State is unchanged.
	ErrBudgetExhausted = errors.New("daily point budget exhausted")

	// ErrNoPointsToRemove is returned by a downvote on a zero-point item.
	ErrNoPointsToRemove = errors.New("no points to remove")

	// ErrNotFound is returned when an operation targets an item or option
	// id that is no longer present.
	ErrNotFound = errors.New("not found")

	// ErrNoOptions is returned when selecting an option on an item that
	// has none.
	ErrNoOptions = errors.New("item has no options")
)

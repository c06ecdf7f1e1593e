package engine

import (
	"wantly/internal/models"
)

// VoteListener is notified immediately before a vote mutates an item, while
// the pre-vote ordering is still observable. The RankingView uses this to
// capture its freeze snapshot.
type VoteListener interface {
	NoteVote()
}

// VotingService orchestrates a vote: budget check, item mutation, history
// update, listener notification. Each call is one atomic state transition —
// the item is located and the budget consulted before anything mutates, so
// no partial update is ever observable.
type VotingService struct {
	store    *ItemStore
	budget   *BudgetManager
	clock    ClockSource
	listener VoteListener
}

// NewVotingService wires a voting service. listener may be nil.
func NewVotingService(store *ItemStore, budget *BudgetManager, clock ClockSource, listener VoteListener) *VotingService {
	return &VotingService{store: store, budget: budget, clock: clock, listener: listener}
}

// Upvote spends one budget point on the item: today's history entry gains 1
// (created at 1) and the lifetime total increments. Fails with ErrNotFound
// for a stale id and ErrBudgetExhausted when the allowance is spent; either
// way nothing changes.
func (v *VotingService) Upvote(id string) (*models.WishItem, error) {
	item, err := v.store.get(id)
	if err != nil {
		return nil, err
	}
	if err := v.budget.TryConsume(1); err != nil {
		return nil, err
	}
	v.notify()

	today := v.clock.Today()
	if item.PointHistory == nil {
		item.PointHistory = make(map[models.DayKey]int)
	}
	item.PointHistory[today]++
	item.Points++
	return item.Clone(), nil
}

// Downvote removes one point from the item and refunds the budget, capped at
// the daily maximum — it succeeds whenever the item has points, independent
// of the current allowance. Today's history entry loses 1 (created at -1 if
// absent; an existing entry may go negative, there is no per-entry clamp).
// Fails with ErrNoPointsToRemove on a zero-point item.
func (v *VotingService) Downvote(id string) (*models.WishItem, error) {
	item, err := v.store.get(id)
	if err != nil {
		return nil, err
	}
	if item.Points == 0 {
		return nil, ErrNoPointsToRemove
	}
	v.notify()

	today := v.clock.Today()
	if item.PointHistory == nil {
		item.PointHistory = make(map[models.DayKey]int)
	}
	item.PointHistory[today]--
	item.Points--
	v.budget.Refund(1)
	return item.Clone(), nil
}

func (v *VotingService) notify() {
	if v.listener != nil {
		v.listener.NoteVote()
	}
}

package engine

import "wantly/internal/models"

// BudgetManager owns the daily point allowance and its reset-on-new-day
// logic. It knows nothing about items; callers are expected to serialize
// access (the Engine does).
type BudgetManager struct {
	max   int
	state models.BudgetState
}

// NewBudgetManager restores a budget from persisted state, clamping it into
// [0, max]. A nil state starts a fresh budget with a full allowance; the
// first CheckAndReset stamps the day key.
func NewBudgetManager(max int, state *models.BudgetState) *BudgetManager {
	b := &BudgetManager{max: max}
	if state == nil {
		b.state.RemainingPoints = max
		return b
	}
	b.state = *state
	if b.state.RemainingPoints < 0 {
		b.state.RemainingPoints = 0
	}
	if b.state.RemainingPoints > max {
		b.state.RemainingPoints = max
	}
	return b
}

// CheckAndReset refills the allowance when the observed day differs from the
// day the current figure is valid for. Idempotent: repeated calls with the
// same key are no-ops. Returns true when a reset happened.
func (b *BudgetManager) CheckAndReset(today models.DayKey) bool {
	if today == b.state.LastResetDate {
		return false
	}
	b.state.RemainingPoints = b.max
	b.state.LastResetDate = today
	return true
}

// TryConsume spends n points from the allowance, or fails with
// ErrBudgetExhausted leaving the allowance untouched.
func (b *BudgetManager) TryConsume(n int) error {
	if b.state.RemainingPoints < n {
		return ErrBudgetExhausted
	}
	b.state.RemainingPoints -= n
	return nil
}

// Refund returns n points to the allowance, capped at the daily maximum.
// Refunding past the cap silently absorbs the excess; it never fails.
func (b *BudgetManager) Refund(n int) {
	b.state.RemainingPoints += n
	if b.state.RemainingPoints > b.max {
		b.state.RemainingPoints = b.max
	}
}

// Remaining reports the points left today.
func (b *BudgetManager) Remaining() int {
	return b.state.RemainingPoints
}

// Max reports the configured daily allowance.
func (b *BudgetManager) Max() int {
	return b.max
}

// State returns a copy of the persistable budget state.
func (b *BudgetManager) State() models.BudgetState {
	return b.state
}

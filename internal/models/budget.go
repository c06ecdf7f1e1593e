package models

// BudgetState is the persisted slice of the daily attention budget:
// how many points remain and which calendar day that figure is valid for.
type BudgetState struct {
	RemainingPoints int    `json:"remaining_points" db:"remaining_points"`
	LastResetDate   DayKey `json:"last_reset_date" db:"last_reset_date"`
}

// Snapshot is the unit of persistence: the full item collection plus the
// budget state. Transient view state (freeze snapshots, pending timers) is
// deliberately excluded.
type Snapshot struct {
	Items  []*WishItem `json:"items"`
	Budget BudgetState `json:"budget"`
}

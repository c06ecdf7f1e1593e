package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"wantly/internal/metrics"
	"wantly/internal/models"
	"wantly/internal/repository"
)

// Params carries the engine tunables. Nothing in the engine hardwires these.
type Params struct {
	MaxDailyPoints    int
	HotThreshold      int
	TrendingThreshold int
	TrendWindowDays   int
	FreezeCooldown    time.Duration
}

// Engine is the prioritization core behind every surface: it serializes all
// state transitions with one mutex, replenishes the daily budget on day
// rollover, and schedules best-effort asynchronous snapshot saves after each
// mutation. The in-memory state is authoritative; a failed save is logged,
// counted and swallowed, never surfaced to the user.
type Engine struct {
	mu      sync.Mutex
	logger  *logrus.Logger
	clock   ClockSource
	repo    repository.SnapshotRepository
	metrics *metrics.Metrics

	store   *ItemStore
	budget  *BudgetManager
	voting  *VotingService
	trend   *TrendClassifier
	ranking *RankingView

	saveTimeout time.Duration
	saves       sync.WaitGroup
}

// New constructs an engine from persisted state. A missing, empty or
// unreadable snapshot falls back to defaults by substitution — load never
// propagates a failure.
func New(p Params, clock ClockSource, repo repository.SnapshotRepository, logger *logrus.Logger, m *metrics.Metrics) *Engine {
	e := &Engine{
		logger:      logger,
		clock:       clock,
		repo:        repo,
		metrics:     m,
		saveTimeout: 10 * time.Second,
	}

	snap := e.load()
	var budgetState *models.BudgetState
	var items []*models.WishItem
	if snap != nil {
		budgetState = &snap.Budget
		items = snap.Items
	}

	e.store = NewItemStore(items)
	e.budget = NewBudgetManager(p.MaxDailyPoints, budgetState)
	e.trend = NewTrendClassifier(clock, p.TrendWindowDays, p.HotThreshold, p.TrendingThreshold)
	e.ranking = NewRankingView(e.store, e.trend, clock, p.FreezeCooldown)
	e.voting = NewVotingService(e.store, e.budget, clock, e.ranking)

	e.checkAndReset()
	e.updateGauges()
	return e
}

func (e *Engine) load() *models.Snapshot {
	if e.repo == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.saveTimeout)
	defer cancel()

	snap, err := e.repo.Load(ctx)
	if err != nil {
		e.logger.WithError(err).Warn("Failed to load snapshot, starting from empty state")
		return nil
	}
	if snap == nil {
		e.logger.Info("No persisted snapshot, starting fresh")
	}
	return snap
}

// checkAndReset refills the budget when the calendar day changed. Called on
// engine construction and on entry of every operation, which also covers the
// app-foregrounded case.
func (e *Engine) checkAndReset() {
	if e.budget.CheckAndReset(e.clock.Today()) {
		e.logger.WithField("day", e.budget.State().LastResetDate).Info("Daily budget reset")
		e.metrics.BudgetResets.Inc()
	}
}

func (e *Engine) updateGauges() {
	e.metrics.RemainingBudget.Set(float64(e.budget.Remaining()))
	e.metrics.ItemCount.Set(float64(e.store.Len()))
}

// snapshotLocked assembles a persistable copy of the current state. The
// caller must hold the mutex.
func (e *Engine) snapshotLocked() *models.Snapshot {
	return &models.Snapshot{
		Items:  e.store.List(),
		Budget: e.budget.State(),
	}
}

// scheduleSave fires a background save of the given snapshot. The engine
// never blocks an operation on persistence.
func (e *Engine) scheduleSave(snap *models.Snapshot) {
	if e.repo == nil {
		return
	}
	e.saves.Add(1)
	go func() {
		defer e.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), e.saveTimeout)
		defer cancel()
		if err := e.repo.Save(ctx, snap); err != nil {
			e.logger.WithError(err).Warn("Snapshot save failed")
			e.metrics.SaveFailures.Inc()
		}
	}()
}

// mutate is the shared skeleton of every state transition: serialize, reset
// budget on day rollover, apply, refresh gauges, schedule a save when the
// operation succeeded.
func (e *Engine) mutate(op func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkAndReset()
	err := op()
	e.updateGauges()
	if err == nil {
		e.scheduleSave(e.snapshotLocked())
	}
	return err
}

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

// AddItem creates a new item with zero points and empty history.
func (e *Engine) AddItem(p NewItemParams) *models.WishItem {
	var item *models.WishItem
	_ = e.mutate(func() error {
		item = e.store.Add(p, e.clock.Now())
		return nil
	})
	e.logger.WithFields(logrus.Fields{"item_id": item.ID, "name": item.Name}).Info("Item added")
	return item
}

// Item returns a copy of one item.
func (e *Engine) Item(id string) (*models.WishItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Get(id)
}

// Items returns copies of all items in insertion order.
func (e *Engine) Items() []*models.WishItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.List()
}

// UpdateItem edits name and/or price. An empty name or negative price leaves
// the respective field unchanged.
func (e *Engine) UpdateItem(id, name string, priceCents int64) (*models.WishItem, error) {
	var item *models.WishItem
	err := e.mutate(func() error {
		var opErr error
		item, opErr = e.store.Update(id, name, priceCents)
		return opErr
	})
	return item, err
}

// DeleteItem removes the item immediately and irreversibly. A freeze
// snapshot referencing the id keeps working: the id simply drops out of the
// pinned order.
func (e *Engine) DeleteItem(id string) error {
	err := e.mutate(func() error {
		return e.store.Delete(id)
	})
	if err == nil {
		e.logger.WithField("item_id", id).Info("Item deleted")
	}
	return err
}

// TogglePurchased flips the purchase flag, stamping or clearing the
// purchase date on the transition.
func (e *Engine) TogglePurchased(id string) (*models.WishItem, error) {
	var item *models.WishItem
	err := e.mutate(func() error {
		var opErr error
		item, opErr = e.store.TogglePurchased(id, e.clock.Now())
		return opErr
	})
	return item, err
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// AddOption attaches a purchase variant to an item.
func (e *Engine) AddOption(id string, opt models.Option) (*models.WishItem, error) {
	var item *models.WishItem
	err := e.mutate(func() error {
		var opErr error
		item, opErr = e.store.AddOption(id, opt)
		return opErr
	})
	return item, err
}

// RemoveOption detaches a variant, clearing a dangling selection.
func (e *Engine) RemoveOption(id, optionID string) (*models.WishItem, error) {
	var item *models.WishItem
	err := e.mutate(func() error {
		var opErr error
		item, opErr = e.store.RemoveOption(id, optionID)
		return opErr
	})
	return item, err
}

// SelectOption marks a variant as the displayed purchase target.
func (e *Engine) SelectOption(id, optionID string) (*models.WishItem, error) {
	var item *models.WishItem
	err := e.mutate(func() error {
		var opErr error
		item, opErr = e.store.SelectOption(id, optionID)
		return opErr
	})
	return item, err
}

// ClearSelectedOption reverts display to the item's own fields.
func (e *Engine) ClearSelectedOption(id string) (*models.WishItem, error) {
	var item *models.WishItem
	err := e.mutate(func() error {
		var opErr error
		item, opErr = e.store.ClearSelectedOption(id)
		return opErr
	})
	return item, err
}

// ---------------------------------------------------------------------------
// Voting
// ---------------------------------------------------------------------------

// Upvote spends one budget point on the item.
func (e *Engine) Upvote(id string) (*models.WishItem, error) {
	var item *models.WishItem
	err := e.mutate(func() error {
		var opErr error
		item, opErr = e.voting.Upvote(id)
		return opErr
	})
	switch {
	case err == nil:
		e.metrics.Upvotes.Inc()
	case errors.Is(err, ErrBudgetExhausted):
		e.metrics.DeniedVotes.Inc()
	}
	return item, err
}

// Downvote removes one point from the item, refunding the budget capped at
// the daily maximum.
func (e *Engine) Downvote(id string) (*models.WishItem, error) {
	var item *models.WishItem
	err := e.mutate(func() error {
		var opErr error
		item, opErr = e.voting.Downvote(id)
		return opErr
	})
	if err == nil {
		e.metrics.Downvotes.Inc()
	}
	return item, err
}

// ---------------------------------------------------------------------------
// Budget & ranking
// ---------------------------------------------------------------------------

// Budget reports today's remaining points and the configured maximum,
// refilling first if the day rolled over.
func (e *Engine) Budget() (remaining, max int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkAndReset()
	e.updateGauges()
	return e.budget.Remaining(), e.budget.Max()
}

// Ranking returns the current sorted, filtered, freeze-stabilized view.
func (e *Engine) Ranking() []models.DisplayItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkAndReset()
	return e.ranking.Items()
}

// SetSortMode switches the ranking ordering.
func (e *Engine) SetSortMode(mode models.SortMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ranking.SetSortMode(mode)
}

// SetHidePurchased toggles the purchased filter on the ranking.
func (e *Engine) SetHidePurchased(hide bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ranking.SetHidePurchased(hide)
}

// View exposes the ranking view for state queries (sort mode, freeze state).
func (e *Engine) View() *RankingView {
	return e.ranking
}

// WeeklyPoints reports the item's trend-window sum and tier.
func (e *Engine) WeeklyPoints(id string) (int, models.TrendTier, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	item, err := e.store.Get(id)
	if err != nil {
		return 0, models.TrendNone, err
	}
	weekly := e.trend.WeeklyPoints(item, e.clock.Now())
	return weekly, e.trend.Classify(weekly), nil
}

// Snapshot returns a persistable copy of the current state.
func (e *Engine) Snapshot() *models.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Close cancels the freeze timer and waits for in-flight saves to drain.
func (e *Engine) Close() {
	e.ranking.Close()
	e.saves.Wait()
}

package engine

import (
	"sort"
	"sync"
	"time"

	"wantly/internal/models"
)

// RankingView produces the sorted, filtered, freeze-stabilized projection of
// the wishlist. Re-sorting on every vote under the points ordering makes the
// list jump around during rapid voting, so the view pins the pre-vote order
// in a snapshot and only re-sorts after a quiet cooldown.
//
// The freeze state has its own mutex because the cooldown timer fires on its
// own goroutine; item data is only read under the engine's operation lock.
type RankingView struct {
	store    *ItemStore
	trend    *TrendClassifier
	clock    ClockSource
	cooldown time.Duration

	mu            sync.Mutex
	sortMode      models.SortMode
	hidePurchased bool
	frozen        bool
	frozenOrder   []string
	timer         *time.Timer
}

// NewRankingView builds a view defaulting to the points ordering.
func NewRankingView(store *ItemStore, trend *TrendClassifier, clock ClockSource, cooldown time.Duration) *RankingView {
	return &RankingView{
		store:    store,
		trend:    trend,
		clock:    clock,
		cooldown: cooldown,
		sortMode: models.SortPointsDesc,
	}
}

// NoteVote implements VoteListener. Called with the pre-vote state still in
// place: on the first vote it snapshots the current visible ordering and
// freezes; every vote while frozen re-arms the single cooldown timer rather
// than starting another. Votes under non-points orderings never freeze.
func (v *RankingView) NoteVote() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.sortMode != models.SortPointsDesc {
		return
	}
	if !v.frozen {
		order := v.liveItems()
		ids := make([]string, len(order))
		for i, it := range order {
			ids[i] = it.ID
		}
		v.frozenOrder = ids
		v.frozen = true
	}
	if v.timer != nil {
		v.timer.Stop()
	}
	v.timer = time.AfterFunc(v.cooldown, v.unfreeze)
}

// unfreeze drops the snapshot after the cooldown elapsed with no further
// vote; the next read computes a fresh live sort. Items deleted while frozen
// need no special handling here — the snapshot only holds ids.
func (v *RankingView) unfreeze() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frozen = false
	v.frozenOrder = nil
	v.timer = nil
}

// Items returns the current projection: filtered, sorted, and pinned to the
// frozen snapshot order while a freeze is active. Field values are always
// live, so a frozen list still shows updated point counts in place. Items
// created during a freeze append after the snapshot; deleted ids drop out.
func (v *RankingView) Items() []models.DisplayItem {
	v.mu.Lock()
	frozen := v.frozen
	frozenOrder := v.frozenOrder
	v.mu.Unlock()

	live := v.liveItems()
	if !frozen {
		return live
	}

	pos := make(map[string]int, len(frozenOrder))
	for i, id := range frozenOrder {
		pos[id] = i
	}
	pinned := make([]models.DisplayItem, 0, len(live))
	var appended []models.DisplayItem
	for _, it := range live {
		if _, ok := pos[it.ID]; ok {
			pinned = append(pinned, it)
		} else {
			appended = append(appended, it)
		}
	}
	sort.SliceStable(pinned, func(i, j int) bool {
		return pos[pinned[i].ID] < pos[pinned[j].ID]
	})
	return append(pinned, appended...)
}

// liveItems computes the unfrozen projection: project, filter, sort.
func (v *RankingView) liveItems() []models.DisplayItem {
	now := v.clock.Now()
	items := v.store.List()
	out := make([]models.DisplayItem, 0, len(items))
	for _, item := range items {
		if v.hidePurchased && item.Purchased {
			continue
		}
		out = append(out, v.project(item, now))
	}
	v.sortItems(out)
	return out
}

func (v *RankingView) project(item *models.WishItem, now time.Time) models.DisplayItem {
	name, price, url, image := displayFields(item)
	weekly := v.trend.WeeklyPoints(item, now)
	return models.DisplayItem{
		ID:            item.ID,
		Name:          name,
		PriceCents:    price,
		URL:           url,
		ImageURL:      image,
		Points:        item.Points,
		WeeklyPoints:  weekly,
		Trend:         v.trend.Classify(weekly),
		DateAdded:     item.DateAdded,
		Purchased:     item.Purchased,
		DatePurchased: item.DatePurchased,
		OptionCount:   len(item.Options),
	}
}

// sortItems orders descending by the active comparator. Ties keep the
// underlying insertion order (stable sort).
func (v *RankingView) sortItems(items []models.DisplayItem) {
	switch v.sortMode {
	case models.SortDateAddedDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].DateAdded.After(items[j].DateAdded)
		})
	case models.SortPriceDesc:
		// Price comparison uses the displayed (post-projection) price.
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].PriceCents > items[j].PriceCents
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Points > items[j].Points
		})
	}
}

// SetSortMode switches the ordering. Leaving the points ordering discards
// any active freeze — the other orderings are not affected by votes.
func (v *RankingView) SetSortMode(mode models.SortMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sortMode == mode {
		return
	}
	v.sortMode = mode
	v.cancelFreeze()
}

// SetHidePurchased toggles the purchased filter.
func (v *RankingView) SetHidePurchased(hide bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hidePurchased = hide
}

// SortMode reports the active ordering.
func (v *RankingView) SortMode() models.SortMode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sortMode
}

// HidePurchased reports the purchased filter.
func (v *RankingView) HidePurchased() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hidePurchased
}

// IsFrozen reports whether the view is pinned to a snapshot.
func (v *RankingView) IsFrozen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frozen
}

// FrozenOrder returns a copy of the pinned id order, nil when not frozen.
func (v *RankingView) FrozenOrder() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.frozen {
		return nil
	}
	out := make([]string, len(v.frozenOrder))
	copy(out, v.frozenOrder)
	return out
}

// Close cancels any pending cooldown timer.
func (v *RankingView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cancelFreeze()
}

func (v *RankingView) cancelFreeze() {
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.frozen = false
	v.frozenOrder = nil
}

package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wantly/internal/models"
)

type rankingFixture struct {
	clock  *fakeClock
	store  *ItemStore
	view   *RankingView
	voting *VotingService
}

func newRankingFixture(t *testing.T, cooldown time.Duration, items ...*models.WishItem) *rankingFixture {
	t.Helper()
	clock := newFakeClock("2025-06-10")
	store := NewItemStore(items)
	budget := NewBudgetManager(10, &models.BudgetState{RemainingPoints: 10, LastResetDate: clock.Today()})
	view := NewRankingView(store, newTrendClassifier(clock), clock, cooldown)
	voting := NewVotingService(store, budget, clock, view)
	t.Cleanup(view.Close)
	return &rankingFixture{clock: clock, store: store, view: view, voting: voting}
}

func ids(items []models.DisplayItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestRankingView_FreezeStability(t *testing.T) {
	f := newRankingFixture(t, 50*time.Millisecond,
		seedItem("a", 4, nil),
		seedItem("b", 5, nil),
	)

	// Pre-vote order under points sort: B above A.
	require.Equal(t, []string{"item-b", "item-a"}, ids(f.view.Items()))

	// Upvoting A to a tie must not reorder the visible list.
	_, err := f.voting.Upvote("item-a")
	require.NoError(t, err)

	assert.True(t, f.view.IsFrozen())
	got := f.view.Items()
	assert.Equal(t, []string{"item-b", "item-a"}, ids(got))
	// Field values stay live while the order is pinned.
	assert.Equal(t, 5, got[1].Points)

	// After a quiet cooldown the view thaws and re-sorts from live data;
	// the 5-5 tie falls back to stable insertion order.
	require.Eventually(t, func() bool { return !f.view.IsFrozen() },
		time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"item-a", "item-b"}, ids(f.view.Items()))
}

func TestRankingView_VoteRearmsCooldown(t *testing.T) {
	f := newRankingFixture(t, 150*time.Millisecond,
		seedItem("a", 0, nil),
		seedItem("b", 5, nil),
	)

	_, err := f.voting.Upvote("item-a")
	require.NoError(t, err)
	require.True(t, f.view.IsFrozen())

	// Each vote inside the window re-arms the one pending timer instead of
	// racing a second one.
	time.Sleep(80 * time.Millisecond)
	_, err = f.voting.Upvote("item-a")
	require.NoError(t, err)

	time.Sleep(80 * time.Millisecond) // 160ms after the first vote
	assert.True(t, f.view.IsFrozen(), "second vote should have extended the freeze")

	require.Eventually(t, func() bool { return !f.view.IsFrozen() },
		time.Second, 10*time.Millisecond)
}

func TestRankingView_OtherSortModesNeverFreeze(t *testing.T) {
	f := newRankingFixture(t, time.Hour,
		seedItem("a", 0, nil),
		seedItem("b", 5, nil),
	)
	f.view.SetSortMode(models.SortDateAddedDesc)

	_, err := f.voting.Upvote("item-a")
	require.NoError(t, err)
	assert.False(t, f.view.IsFrozen())
}

func TestRankingView_SwitchingSortModeDropsFreeze(t *testing.T) {
	f := newRankingFixture(t, time.Hour,
		seedItem("a", 0, nil),
		seedItem("b", 5, nil),
	)

	_, err := f.voting.Upvote("item-a")
	require.NoError(t, err)
	require.True(t, f.view.IsFrozen())

	f.view.SetSortMode(models.SortPriceDesc)
	assert.False(t, f.view.IsFrozen())
}

func TestRankingView_FrozenOrderToleratesDeletes(t *testing.T) {
	f := newRankingFixture(t, time.Hour,
		seedItem("a", 3, nil),
		seedItem("b", 5, nil),
		seedItem("c", 1, nil),
	)

	_, err := f.voting.Upvote("item-c")
	require.NoError(t, err)
	require.Equal(t, []string{"item-b", "item-a", "item-c"}, f.view.FrozenOrder())

	// Deleting an item referenced by the snapshot must not break reads:
	// the id just drops out of the pinned order.
	require.NoError(t, f.store.Delete("item-a"))
	assert.Equal(t, []string{"item-b", "item-c"}, ids(f.view.Items()))
}

func TestRankingView_ItemAddedDuringFreezeAppends(t *testing.T) {
	f := newRankingFixture(t, time.Hour,
		seedItem("a", 3, nil),
		seedItem("b", 5, nil),
	)

	_, err := f.voting.Upvote("item-a")
	require.NoError(t, err)
	require.True(t, f.view.IsFrozen())

	added := f.store.Add(NewItemParams{Name: "new thing"}, f.clock.Now())
	got := ids(f.view.Items())
	assert.Equal(t, []string{"item-b", "item-a", added.ID}, got)
}

func TestRankingView_HidePurchased(t *testing.T) {
	bought := seedItem("a", 9, nil)
	bought.Purchased = true
	f := newRankingFixture(t, time.Hour, bought, seedItem("b", 5, nil))

	f.view.SetHidePurchased(true)
	assert.Equal(t, []string{"item-b"}, ids(f.view.Items()))

	f.view.SetHidePurchased(false)
	assert.Equal(t, []string{"item-a", "item-b"}, ids(f.view.Items()))
}

func TestRankingView_SelectedOptionProjection(t *testing.T) {
	item := seedItem("a", 2, nil)
	item.PriceCents = 1000
	item.Options = []models.Option{
		{ID: "opt-1", Name: "Deluxe", PriceCents: 5000},
	}
	item.SelectedOptionID = "opt-1"
	other := seedItem("b", 9, nil)
	other.PriceCents = 3000

	f := newRankingFixture(t, time.Hour, item, other)

	// Displayed fields come from the option; points stay the parent's.
	f.view.SetSortMode(models.SortPriceDesc)
	got := f.view.Items()
	require.Len(t, got, 2)
	assert.Equal(t, "item-a", got[0].ID)
	assert.Equal(t, "Deluxe", got[0].Name)
	assert.Equal(t, int64(5000), got[0].PriceCents)
	assert.Equal(t, 2, got[0].Points)
}

func TestRankingView_DanglingSelectionFallsBack(t *testing.T) {
	item := seedItem("a", 2, nil)
	item.PriceCents = 1000
	item.Options = []models.Option{{ID: "opt-1", Name: "Deluxe", PriceCents: 5000}}
	item.SelectedOptionID = "opt-gone"

	f := newRankingFixture(t, time.Hour, item)
	got := f.view.Items()
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, int64(1000), got[0].PriceCents)
}

func TestRankingView_SortModes(t *testing.T) {
	oldCheap := seedItem("old", 10, nil)
	oldCheap.PriceCents = 100
	oldCheap.DateAdded = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newPricey := seedItem("new", 1, nil)
	newPricey.PriceCents = 9900
	newPricey.DateAdded = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	f := newRankingFixture(t, time.Hour, oldCheap, newPricey)

	assert.Equal(t, []string{"item-old", "item-new"}, ids(f.view.Items()))

	f.view.SetSortMode(models.SortDateAddedDesc)
	assert.Equal(t, []string{"item-new", "item-old"}, ids(f.view.Items()))

	f.view.SetSortMode(models.SortPriceDesc)
	assert.Equal(t, []string{"item-new", "item-old"}, ids(f.view.Items()))
}

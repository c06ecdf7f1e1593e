package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wantly/internal/models"
)

func TestEngine_DayRolloverResetsBudgetOnly(t *testing.T) {
	clock := newFakeClock("2025-06-10")
	eng := newTestEngine(clock, nil)
	defer eng.Close()

	item := eng.AddItem(NewItemParams{Name: "camera"})
	for i := 0; i < 3; i++ {
		_, err := eng.Upvote(item.ID)
		require.NoError(t, err)
	}
	remaining, max := eng.Budget()
	require.Equal(t, 0, remaining)
	require.Equal(t, 3, max)

	// Midnight passes. The next operation of any kind refills the budget;
	// items and their history are untouched.
	clock.advanceDays(1)
	remaining, _ = eng.Budget()
	assert.Equal(t, 3, remaining)

	got, err := eng.Item(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Points)
	assert.Equal(t, map[models.DayKey]int{"2025-06-10": 3}, got.PointHistory)
}

func TestEngine_RolloverIsIdempotent(t *testing.T) {
	clock := newFakeClock("2025-06-10")
	eng := newTestEngine(clock, nil)
	defer eng.Close()

	item := eng.AddItem(NewItemParams{Name: "headphones"})
	_, err := eng.Upvote(item.ID)
	require.NoError(t, err)

	// Repeated operations within the same day never trigger another refill.
	for i := 0; i < 5; i++ {
		remaining, _ := eng.Budget()
		assert.Equal(t, 2, remaining)
	}
}

func TestEngine_SnapshotRoundTrip(t *testing.T) {
	clock := newFakeClock("2025-06-10")
	repo := &memRepo{}

	eng1 := newTestEngine(clock, repo)
	a := eng1.AddItem(NewItemParams{Name: "bike", PriceCents: 120000, URL: "https://shop.example/bike"})
	b := eng1.AddItem(NewItemParams{Name: "lamp"})
	_, err := eng1.Upvote(a.ID)
	require.NoError(t, err)
	_, err = eng1.Upvote(a.ID)
	require.NoError(t, err)
	_, err = eng1.AddOption(b.ID, models.Option{Name: "Brass", PriceCents: 4500})
	require.NoError(t, err)
	_, err = eng1.TogglePurchased(b.ID)
	require.NoError(t, err)
	eng1.Close()

	// Persist synchronously so the comparison does not race the async saves.
	require.NoError(t, repo.Save(context.Background(), eng1.Snapshot()))

	eng2 := newTestEngine(clock, repo)
	defer eng2.Close()

	remaining, _ := eng2.Budget()
	assert.Equal(t, 1, remaining)

	items := eng2.Items()
	require.Len(t, items, 2)
	assert.Equal(t, a.ID, items[0].ID)
	assert.Equal(t, "bike", items[0].Name)
	assert.Equal(t, int64(120000), items[0].PriceCents)
	assert.Equal(t, 2, items[0].Points)
	assert.Equal(t, map[models.DayKey]int{"2025-06-10": 2}, items[0].PointHistory)
	assert.True(t, items[1].Purchased)
	require.Len(t, items[1].Options, 1)
	assert.Equal(t, "Brass", items[1].Options[0].Name)
}

func TestEngine_MutationSchedulesSave(t *testing.T) {
	clock := newFakeClock("2025-06-10")
	repo := &memRepo{}

	eng := newTestEngine(clock, repo)
	eng.AddItem(NewItemParams{Name: "kettle"})
	eng.Close() // drains in-flight saves

	assert.GreaterOrEqual(t, repo.saveCount(), 1)
	require.NotNil(t, repo.snap)
	assert.Len(t, repo.snap.Items, 1)
}

func TestEngine_LoadFailureFallsBackToEmpty(t *testing.T) {
	clock := newFakeClock("2025-06-10")
	repo := &memRepo{loadErr: errors.New("connection refused")}

	eng := newTestEngine(clock, repo)
	defer eng.Close()

	assert.Empty(t, eng.Items())
	remaining, max := eng.Budget()
	assert.Equal(t, 3, remaining)
	assert.Equal(t, 3, max)
}

func TestEngine_SaveFailureIsSwallowed(t *testing.T) {
	clock := newFakeClock("2025-06-10")
	repo := &memRepo{saveErr: errors.New("disk full")}

	eng := newTestEngine(clock, repo)
	item := eng.AddItem(NewItemParams{Name: "chair"})
	_, err := eng.Upvote(item.ID)
	require.NoError(t, err)
	eng.Close()

	// Persistence failed on every mutation; the in-memory state is still
	// authoritative and the operations succeeded.
	got, err := eng.Item(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Points)
	assert.GreaterOrEqual(t, repo.saveCount(), 2)
}

func TestEngine_UpvoteUnknownSpendsNothing(t *testing.T) {
	clock := newFakeClock("2025-06-10")
	eng := newTestEngine(clock, nil)
	defer eng.Close()

	_, err := eng.Upvote("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	remaining, _ := eng.Budget()
	assert.Equal(t, 3, remaining)
}

func TestEngine_FailedOperationDoesNotSave(t *testing.T) {
	clock := newFakeClock("2025-06-10")
	repo := &memRepo{}

	eng := newTestEngine(clock, repo)
	assert.ErrorIs(t, eng.DeleteItem("nope"), ErrNotFound)
	eng.Close()

	assert.Equal(t, 0, repo.saveCount())
}

func TestEngine_WeeklyPoints(t *testing.T) {
	clock := newFakeClock("2025-06-10")
	repo := &memRepo{snap: &models.Snapshot{
		Items: []*models.WishItem{
			seedItem("hot", 12, map[models.DayKey]int{
				"2025-06-08": 6,
				"2025-06-05": 6,
			}),
		},
		Budget: models.BudgetState{RemainingPoints: 3, LastResetDate: "2025-06-10"},
	}}

	eng := newTestEngine(clock, repo)
	defer eng.Close()

	weekly, tier, err := eng.WeeklyPoints("item-hot")
	require.NoError(t, err)
	assert.Equal(t, 12, weekly)
	assert.Equal(t, models.TrendHot, tier)

	_, _, err = eng.WeeklyPoints("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEngine_RankingReflectsVotes(t *testing.T) {
	clock := newFakeClock("2025-06-10")
	eng := newTestEngine(clock, nil)
	defer eng.Close()

	a := eng.AddItem(NewItemParams{Name: "a"})
	b := eng.AddItem(NewItemParams{Name: "b"})
	_, err := eng.Upvote(b.ID)
	require.NoError(t, err)

	// A vote freezes the points view at the pre-vote order.
	ranking := eng.Ranking()
	require.Len(t, ranking, 2)
	assert.Equal(t, a.ID, ranking[0].ID)
	assert.Equal(t, b.ID, ranking[1].ID)
	assert.Equal(t, 1, ranking[1].Points)

	// Non-points modes bypass the freeze entirely.
	_, err = eng.UpdateItem(b.ID, "", 9900)
	require.NoError(t, err)
	eng.SetSortMode(models.SortPriceDesc)
	ranking = eng.Ranking()
	assert.Equal(t, b.ID, ranking[0].ID)
}

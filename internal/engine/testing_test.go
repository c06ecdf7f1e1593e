package engine

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"wantly/internal/metrics"
	"wantly/internal/models"
)

// fakeClock pins "now" so tests control day rollovers and trend windows.
type fakeClock struct {
	now time.Time
}

func newFakeClock(day string) *fakeClock {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return &fakeClock{now: t.Add(12 * time.Hour)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) DayKey(t time.Time) models.DayKey {
	return t.UTC().Format(dayKeyLayout)
}

func (c *fakeClock) Today() models.DayKey { return c.DayKey(c.now) }

func (c *fakeClock) advanceDays(n int) { c.now = c.now.AddDate(0, 0, n) }

// memRepo is an in-memory SnapshotRepository.
type memRepo struct {
	mu      sync.Mutex
	snap    *models.Snapshot
	saves   int
	loadErr error
	saveErr error
}

func (r *memRepo) Load(ctx context.Context) (*models.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.snap, nil
}

func (r *memRepo) Save(ctx context.Context, snap *models.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.snap = snap
	return nil
}

func (r *memRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func testParams() Params {
	return Params{
		MaxDailyPoints:    3,
		HotThreshold:      10,
		TrendingThreshold: 5,
		TrendWindowDays:   7,
		FreezeCooldown:    50 * time.Millisecond,
	}
}

func newTestEngine(clock ClockSource, repo *memRepo) *Engine {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	m := metrics.New(prometheus.NewRegistry())
	if repo == nil {
		return New(testParams(), clock, nil, logger, m)
	}
	return New(testParams(), clock, repo, logger, m)
}

func seedItem(name string, points int, history map[models.DayKey]int) *models.WishItem {
	return &models.WishItem{
		ID:           "item-" + name,
		Name:         name,
		Points:       points,
		DateAdded:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		PointHistory: history,
	}
}

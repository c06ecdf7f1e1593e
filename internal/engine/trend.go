package engine

import (
	"time"

	"wantly/internal/models"
)

// TrendClassifier derives a trend tier from an item's vote history over a
// rolling window of calendar days. It is pure and holds no cache: the window
// slides continuously, so every read recomputes against the current time.
type TrendClassifier struct {
	clock             ClockSource
	windowDays        int
	hotThreshold      int
	trendingThreshold int
}

// NewTrendClassifier builds a classifier with injected thresholds; nothing
// is hardwired.
func NewTrendClassifier(clock ClockSource, windowDays, hotThreshold, trendingThreshold int) *TrendClassifier {
	return &TrendClassifier{
		clock:             clock,
		windowDays:        windowDays,
		hotThreshold:      hotThreshold,
		trendingThreshold: trendingThreshold,
	}
}

// WeeklyPoints sums the history deltas whose day key falls within the
// inclusive window ending at now's day. Deltas are summed as-is: a day of
// net downvotes can pull the total below zero and is not clamped here.
func (t *TrendClassifier) WeeklyPoints(item *models.WishItem, now time.Time) int {
	if len(item.PointHistory) == 0 {
		return 0
	}
	sum := 0
	for i := 0; i < t.windowDays; i++ {
		key := t.clock.DayKey(now.AddDate(0, 0, -i))
		sum += item.PointHistory[key]
	}
	return sum
}

// Classify maps a window sum to a tier.
func (t *TrendClassifier) Classify(weeklyPoints int) models.TrendTier {
	switch {
	case weeklyPoints >= t.hotThreshold:
		return models.TrendHot
	case weeklyPoints >= t.trendingThreshold:
		return models.TrendTrending
	default:
		return models.TrendNone
	}
}

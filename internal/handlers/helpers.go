package handlers

import (
	"fmt"
	"strconv"

	"wantly/internal/engine"
	"wantly/internal/models"
)

// resolveIndex maps a 1-based position in the current ranking (what /list
// shows) to the underlying item. Item ids are uuids, so commands address
// items by their visible position instead.
func resolveIndex(eng *engine.Engine, arg string) (*models.DisplayItem, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return nil, fmt.Errorf("invalid item number %q", arg)
	}
	items := eng.Ranking()
	if n > len(items) {
		return nil, engine.ErrNotFound
	}
	return &items[n-1], nil
}

// formatPrice renders cents as dollars; zero is the unknown-price sentinel.
func formatPrice(cents int64) string {
	if cents == 0 {
		return "price TBD"
	}
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

// trendBadge decorates an item's trend tier.
func trendBadge(tier models.TrendTier) string {
	switch tier {
	case models.TrendHot:
		return " 🔥"
	case models.TrendTrending:
		return " 📈"
	default:
		return ""
	}
}

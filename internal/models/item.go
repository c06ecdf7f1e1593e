package models

import "time"

// DayKey identifies one calendar day, formatted as "2006-01-02". It is used
// both for budget reset timing and for bucketing vote history.
type DayKey = string

// Option represents an alternative purchase target for the same wish: a
// different color, storage size or seller. Options share the parent item's
// points and history — they are not separate voting subjects.
type Option struct {
	ID         string `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	PriceCents int64  `json:"price_cents" db:"price_cents"`
	URL        string `json:"url,omitempty" db:"url"`
	ImageURL   string `json:"image_url,omitempty" db:"image_url"`
}

// WishItem represents a deferred impulse purchase being tracked.
//
// Points is the lifetime cumulative vote total and never goes below zero.
// PointHistory maps day keys to the signed net delta voted on that day; the
// sum of history deltas is not required to equal Points — items that predate
// history tracking may carry points with an empty history, and their weekly
// trend is legitimately zero.
type WishItem struct {
	ID               string         `json:"id" db:"id"`
	Name             string         `json:"name" db:"name"`
	PriceCents       int64          `json:"price_cents" db:"price_cents"` // 0 means unknown/TBD, not free
	URL              string         `json:"url,omitempty" db:"url"`
	ImageURL         string         `json:"image_url,omitempty" db:"image_url"`
	Points           int            `json:"points" db:"points"`
	DateAdded        time.Time      `json:"date_added" db:"date_added"`
	Purchased        bool           `json:"purchased" db:"purchased"`
	DatePurchased    *time.Time     `json:"date_purchased,omitempty" db:"date_purchased"`
	Options          []Option       `json:"options,omitempty" db:"options"`
	SelectedOptionID string         `json:"selected_option_id,omitempty" db:"selected_option_id"`
	PointHistory     map[DayKey]int `json:"point_history,omitempty" db:"point_history"`
}

// SelectedOption returns the option referenced by SelectedOptionID, or nil
// when none is selected or the reference no longer resolves.
func (i *WishItem) SelectedOption() *Option {
	if i.SelectedOptionID == "" {
		return nil
	}
	for idx := range i.Options {
		if i.Options[idx].ID == i.SelectedOptionID {
			return &i.Options[idx]
		}
	}
	return nil
}

// Clone returns a deep copy of the item so callers can hand out snapshots
// without exposing engine-owned maps and slices.
func (i *WishItem) Clone() *WishItem {
	out := *i
	if i.DatePurchased != nil {
		t := *i.DatePurchased
		out.DatePurchased = &t
	}
	if i.Options != nil {
		out.Options = make([]Option, len(i.Options))
		copy(out.Options, i.Options)
	}
	if i.PointHistory != nil {
		out.PointHistory = make(map[DayKey]int, len(i.PointHistory))
		for k, v := range i.PointHistory {
			out.PointHistory[k] = v
		}
	}
	return &out
}

// TrendTier classifies how persistently an item has been wanted over the
// rolling trend window.
type TrendTier string

const (
	TrendNone     TrendTier = "none"
	TrendTrending TrendTier = "trending"
	TrendHot      TrendTier = "hot"
)

// SortMode selects the ordering of the ranking view.
type SortMode string

const (
	SortPointsDesc    SortMode = "points"
	SortDateAddedDesc SortMode = "date_added"
	SortPriceDesc     SortMode = "price"
)

// DisplayItem is the presentation projection of a WishItem: when a selected
// option resolves, name/price/url/image come from the option, while points,
// dates, the purchase flag and the option list always belong to the parent.
type DisplayItem struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	PriceCents    int64      `json:"price_cents"`
	URL           string     `json:"url,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	Points        int        `json:"points"`
	WeeklyPoints  int        `json:"weekly_points"`
	Trend         TrendTier  `json:"trend"`
	DateAdded     time.Time  `json:"date_added"`
	Purchased     bool       `json:"purchased"`
	DatePurchased *time.Time `json:"date_purchased,omitempty"`
	OptionCount   int        `json:"option_count"`
}

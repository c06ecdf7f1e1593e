package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"wantly/internal/models"
)

// ItemStore owns the in-memory wishlist collection. It is pure CRUD plus the
// display projection; voting, trends and ordering live elsewhere. Insertion
// order is preserved so unsorted listings stay stable.
type ItemStore struct {
	items map[string]*models.WishItem
	order []string
}

// NewItemStore builds a store seeded from a persisted item list. Loaded
// items are sanitized by substitution rather than rejected: negative points
// are clamped to zero and empty ids are regenerated.
func NewItemStore(items []*models.WishItem) *ItemStore {
	s := &ItemStore{items: make(map[string]*models.WishItem)}
	for _, item := range items {
		if item == nil {
			continue
		}
		it := item.Clone()
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		if it.Points < 0 {
			it.Points = 0
		}
		if _, dup := s.items[it.ID]; dup {
			continue
		}
		s.items[it.ID] = it
		s.order = append(s.order, it.ID)
	}
	return s
}

// NewItemParams carries the fields an "add item" action supplies. The store
// fills in id, dates and zeroed voting state.
type NewItemParams struct {
	Name       string
	PriceCents int64
	URL        string
	ImageURL   string
}

// Add creates a new item with zero points and empty history.
func (s *ItemStore) Add(p NewItemParams, now time.Time) *models.WishItem {
	item := &models.WishItem{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(p.Name),
		PriceCents: p.PriceCents,
		URL:        strings.TrimSpace(p.URL),
		ImageURL:   strings.TrimSpace(p.ImageURL),
		DateAdded:  now,
	}
	if item.PriceCents < 0 {
		item.PriceCents = 0
	}
	s.items[item.ID] = item
	s.order = append(s.order, item.ID)
	return item.Clone()
}

// Get returns a copy of the item, or ErrNotFound.
func (s *ItemStore) Get(id string) (*models.WishItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return item.Clone(), nil
}

// get returns the live item for in-package mutation.
func (s *ItemStore) get(id string) (*models.WishItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return item, nil
}

// Update edits the item's own name and price. Options and voting state are
// driven by their own operations.
func (s *ItemStore) Update(id string, name string, priceCents int64) (*models.WishItem, error) {
	item, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		item.Name = name
	}
	if priceCents >= 0 {
		item.PriceCents = priceCents
	}
	return item.Clone(), nil
}

// Delete removes the item immediately and irreversibly.
func (s *ItemStore) Delete(id string) error {
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns copies of all items in insertion order.
func (s *ItemStore) List() []*models.WishItem {
	out := make([]*models.WishItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Clone())
	}
	return out
}

// Len reports the number of items.
func (s *ItemStore) Len() int {
	return len(s.items)
}

// TogglePurchased flips the purchase flag. DatePurchased is stamped exactly
// on the false→true transition and cleared on true→false.
func (s *ItemStore) TogglePurchased(id string, now time.Time) (*models.WishItem, error) {
	item, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if item.Purchased {
		item.Purchased = false
		item.DatePurchased = nil
	} else {
		item.Purchased = true
		t := now
		item.DatePurchased = &t
	}
	return item.Clone(), nil
}

// AddOption attaches a purchase variant to the item.
func (s *ItemStore) AddOption(id string, opt models.Option) (*models.WishItem, error) {
	item, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if opt.ID == "" {
		opt.ID = uuid.NewString()
	}
	opt.Name = strings.TrimSpace(opt.Name)
	if opt.PriceCents < 0 {
		opt.PriceCents = 0
	}
	item.Options = append(item.Options, opt)
	return item.Clone(), nil
}

// RemoveOption detaches a variant. A dangling selection is cleared so the
// display projection falls back to the item's own fields.
func (s *ItemStore) RemoveOption(id, optionID string) (*models.WishItem, error) {
	item, err := s.get(id)
	if err != nil {
		return nil, err
	}
	found := false
	for i, opt := range item.Options {
		if opt.ID == optionID {
			item.Options = append(item.Options[:i], item.Options[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNotFound
	}
	if len(item.Options) == 0 {
		item.Options = nil
	}
	if item.SelectedOptionID == optionID {
		item.SelectedOptionID = ""
	}
	return item.Clone(), nil
}

// SelectOption marks one variant as the current purchase target. The
// referenced option must exist.
func (s *ItemStore) SelectOption(id, optionID string) (*models.WishItem, error) {
	item, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if len(item.Options) == 0 {
		return nil, ErrNoOptions
	}
	for _, opt := range item.Options {
		if opt.ID == optionID {
			item.SelectedOptionID = optionID
			return item.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// ClearSelectedOption reverts display to the item's own fields.
func (s *ItemStore) ClearSelectedOption(id string) (*models.WishItem, error) {
	item, err := s.get(id)
	if err != nil {
		return nil, err
	}
	item.SelectedOptionID = ""
	return item.Clone(), nil
}

// displayFields resolves the name/price/url/image shown for an item: the
// selected option when it resolves, the item's own fields otherwise.
func displayFields(item *models.WishItem) (name string, priceCents int64, url, imageURL string) {
	if opt := item.SelectedOption(); opt != nil {
		return opt.Name, opt.PriceCents, opt.URL, opt.ImageURL
	}
	return item.Name, item.PriceCents, item.URL, item.ImageURL
}

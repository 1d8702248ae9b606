package domain

import "time"

type ItemStatus string

const (
	StatusDraft       ItemStatus = "draft"
	StatusResearching ItemStatus = "researching"
	StatusReady       ItemStatus = "ready"
	StatusListed      ItemStatus = "listed"
	StatusSold        ItemStatus = "sold"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusResearching, StatusReady, StatusListed, StatusSold:
		return true
	}
	return false
}

// Item is something we own and want to price for resale. PriceMin,
// PriceMax and SuggestedPrice are fully derived from the item's source
// records; the recompute step overwrites all three on every source
// mutation and nils them when no priced source remains.
type Item struct {
	ID              int64      `json:"id"`
	TrackerIssueKey string     `json:"tracker_issue_key,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Category        string     `json:"category,omitempty"`
	Condition       string     `json:"condition,omitempty"`
	Measurements    string     `json:"measurements,omitempty"`
	ImagePaths      []string   `json:"image_paths"`
	PriceMin        *float64   `json:"price_min"`
	PriceMax        *float64   `json:"price_max"`
	SuggestedPrice  *float64   `json:"suggested_price"`
	Status          ItemStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ListedAt        *time.Time `json:"listed_at,omitempty"`
	SoldAt          *time.Time `json:"sold_at,omitempty"`
}

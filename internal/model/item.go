package model

import (
	"fmt"
	"slices"
	"time"
)

// Item is a lost or found report.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	ImageURL    string    `json:"imageUrl"`
	Status      string    `json:"status"`
	Type        string    `json:"type"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Populated on list and get only.
	Owner *Owner `json:"owner,omitempty"`
}

// Owner is the public view of the user who reported an item.
type Owner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Item types, fixed at creation.
const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"
)

// Item statuses.
const (
	ItemStatusLost     = "Lost"
	ItemStatusFound    = "Found"
	ItemStatusReturned = "Returned"
)

// Item categories.
const (
	CategoryDocuments   = "Documents"
	CategoryElectronics = "Electronics"
	CategoryAccessories = "Accessories"
	CategoryClothing    = "Clothing"
	CategoryOther       = "Other"
)

var (
	itemTypes    = []string{ItemTypeLost, ItemTypeFound}
	itemStatuses = []string{ItemStatusLost, ItemStatusFound, ItemStatusReturned}
	categories   = []string{CategoryDocuments, CategoryElectronics, CategoryAccessories, CategoryClothing, CategoryOther}
)

// ValidItemType reports whether t is exactly "lost" or "found".
func ValidItemType(t string) bool { return slices.Contains(itemTypes, t) }

// ValidItemStatus reports whether s is one of Lost, Found or Returned.
func ValidItemStatus(s string) bool { return slices.Contains(itemStatuses, s) }

// ValidCategory reports whether c is a known category.
func ValidCategory(c string) bool { return slices.Contains(categories, c) }

// dateLayouts are the accepted formats for an item's event date.
var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

// ParseDate parses an item event date.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD or RFC 3339)", s)
}

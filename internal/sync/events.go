package sync

import "time"

const CatalogRefreshEvent = "catalog.refresh"

// CatalogEvent announces a plugin catalogue refresh that changed its contents.
type CatalogEvent struct {
	Type    string    `json:"type"`
	Added   []string  `json:"added,omitempty"`   // plugin ids
	Removed []string  `json:"removed,omitempty"` // plugin ids
	Total   int       `json:"total"`
	At      time.Time `json:"at"`
}

package domain

import (
	"sort"
)

// SortOrder specifies the sort direction.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// IsValid checks if the sort order is valid.
func (s SortOrder) IsValid() bool {
	switch s {
	case SortOrderAsc, SortOrderDesc:
		return true
	default:
		return false
	}
}

// SortByCreatedAt sorts notifications chronologically.
// Returns a new sorted slice without modifying the original. An invalid order
// defaults to descending. Notifications without a parseable createdAt sort
// last in either direction; ties keep their input order.
func SortByCreatedAt(notifs []Notification, order SortOrder) []Notification {
	if !order.IsValid() {
		order = SortOrderDesc
	}

	sorted := make([]Notification, len(notifs))
	copy(sorted, notifs)

	sort.SliceStable(sorted, func(i, j int) bool {
		ti, okI := sorted[i].Time()
		tj, okJ := sorted[j].Time()
		if !okI || !okJ {
			return okI && !okJ
		}
		if order == SortOrderAsc {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	return sorted
}

// Timeline merges the personal and announcement lists into one view sorted by
// createdAt descending. When an id appears in both lists the personal entry
// wins.
func Timeline(notifications, announcements []Notification) []Notification {
	merged := make([]Notification, 0, len(notifications)+len(announcements))
	seen := make(map[ID]bool, len(notifications)+len(announcements))
	for _, list := range [][]Notification{notifications, announcements} {
		for _, n := range list {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			merged = append(merged, n)
		}
	}
	return SortByCreatedAt(merged, SortOrderDesc)
}

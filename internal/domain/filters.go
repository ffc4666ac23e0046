// Package domain provides the domain layer for notifications.
// It contains business logic, value objects, and domain services.
package domain

import (
	"fmt"
	"strings"
)

// Read filter constants.
const (
	ReadFilterRead   = "read"
	ReadFilterUnread = "unread"
)

// Filter holds filter criteria for notifications.
type Filter struct {
	Category   Category
	ReadFilter string // "read", "unread", or "" (no filter)
}

// FilterOptions holds filter parameters similar to CLI options.
type FilterOptions struct {
	Category   string
	Unread     bool
	ReadFilter string
}

// ToFilter converts FilterOptions to a Filter struct.
func (fo FilterOptions) ToFilter() (Filter, error) {
	readFilter := strings.ToLower(strings.TrimSpace(fo.ReadFilter))
	if fo.Unread {
		if readFilter == ReadFilterRead {
			return Filter{}, fmt.Errorf("conflicting read filters: unread and %s", fo.ReadFilter)
		}
		readFilter = ReadFilterUnread
	}
	if readFilter != "" && readFilter != ReadFilterRead && readFilter != ReadFilterUnread {
		return Filter{}, fmt.Errorf("invalid read filter: %s", fo.ReadFilter)
	}
	return Filter{
		Category:   Category(strings.ToLower(strings.TrimSpace(fo.Category))),
		ReadFilter: readFilter,
	}, nil
}

// IsEmpty reports whether the filter matches everything.
func (f Filter) IsEmpty() bool {
	return f.Category == "" && f.ReadFilter == ""
}

// Matches checks if the notification matches the given filter criteria.
func (f Filter) Matches(n Notification) bool {
	if f.Category != "" && n.EffectiveCategory() != f.Category {
		return false
	}
	switch f.ReadFilter {
	case ReadFilterRead:
		return n.IsRead
	case ReadFilterUnread:
		return !n.IsRead
	}
	return true
}

// ApplyFilter returns the notifications matching the filter, preserving order.
func ApplyFilter(notifs []Notification, f Filter) []Notification {
	if f.IsEmpty() {
		out := make([]Notification, len(notifs))
		copy(out, notifs)
		return out
	}
	out := make([]Notification, 0, len(notifs))
	for _, n := range notifs {
		if f.Matches(n) {
			out = append(out, n)
		}
	}
	return out
}

// CountUnread counts unread notifications in a slice.
func CountUnread(notifs []Notification) int {
	count := 0
	for _, n := range notifs {
		if !n.IsRead {
			count++
		}
	}
	return count
}

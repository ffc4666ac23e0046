package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ids(notifs []Notification) []ID {
	out := make([]ID, 0, len(notifs))
	for _, n := range notifs {
		out = append(out, n.ID)
	}
	return out
}

func TestSortByCreatedAt(t *testing.T) {
	notifs := []Notification{
		{ID: "old", CreatedAt: "2025-01-01T08:00:00Z"},
		{ID: "undated"},
		{ID: "new", CreatedAt: "2025-01-03T08:00:00Z"},
		{ID: "mid", CreatedAt: "2025-01-02T08:00:00.5Z"},
	}

	assert.Equal(t, []ID{"new", "mid", "old", "undated"}, ids(SortByCreatedAt(notifs, SortOrderDesc)))
	assert.Equal(t, []ID{"old", "mid", "new", "undated"}, ids(SortByCreatedAt(notifs, SortOrderAsc)))
	assert.Equal(t, []ID{"new", "mid", "old", "undated"}, ids(SortByCreatedAt(notifs, SortOrder("sideways"))))

	// input untouched
	assert.Equal(t, ID("old"), notifs[0].ID)
}

func TestTimelineMergesAndDeduplicates(t *testing.T) {
	personal := []Notification{
		{ID: "n1", CreatedAt: "2025-01-01T08:00:00Z", IsRead: true},
		{ID: "shared", CreatedAt: "2025-01-02T08:00:00Z", Title: "personal copy"},
	}
	announcements := []Notification{
		{ID: "a1", CreatedAt: "2025-01-03T08:00:00Z"},
		{ID: "shared", CreatedAt: "2025-01-02T08:00:00Z", Title: "broadcast copy"},
	}

	got := Timeline(personal, announcements)
	assert.Equal(t, []ID{"a1", "shared", "n1"}, ids(got))
	assert.Equal(t, "personal copy", got[1].Title)
}

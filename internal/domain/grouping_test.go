package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByDay(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	notifs := []Notification{
		{ID: "1", CreatedAt: "2025-03-10T09:00:00Z"},
		{ID: "2", CreatedAt: "2025-03-10T01:00:00Z", IsRead: true},
		{ID: "3", CreatedAt: "2025-03-09T22:00:00Z"},
		{ID: "4", CreatedAt: "2025-03-01T12:00:00Z"},
		{ID: "5"},
	}

	groups := GroupByDay(notifs, time.UTC, now)
	require.Len(t, groups, 4)

	assert.Equal(t, "Today", groups[0].DisplayName)
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, 1, groups[0].UnreadCount)
	assert.Equal(t, "Yesterday", groups[1].DisplayName)
	assert.Equal(t, "Sat, 01 Mar 2025", groups[2].DisplayName)
	assert.Equal(t, "Undated", groups[3].DisplayName)
	assert.Equal(t, []ID{"5"}, ids(groups[3].Notifications))
}

func TestGroupByDayUsesLocation(t *testing.T) {
	// 10:00 UTC is 19:00 on the 10th in Tokyo.
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*60*60)
	// 22:00 UTC on the 9th is already the 10th in Tokyo.
	groups := GroupByDay([]Notification{{ID: "1", CreatedAt: "2025-03-09T22:00:00Z"}}, tokyo, now)
	require.Len(t, groups, 1)
	assert.Equal(t, "Today", groups[0].DisplayName)
	assert.Equal(t, "2025-03-10", groups[0].Key)

	// At 15:00 UTC Tokyo has moved on to the 11th.
	groups = GroupByDay([]Notification{{ID: "1", CreatedAt: "2025-03-09T22:00:00Z"}}, tokyo, now.Add(5*time.Hour))
	require.Len(t, groups, 1)
	assert.Equal(t, "Yesterday", groups[0].DisplayName)
	assert.Equal(t, "2025-03-10", groups[0].Key)
}

func TestGroupByDayEmpty(t *testing.T) {
	assert.Empty(t, GroupByDay(nil, time.UTC, time.Now()))
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterOptionsToFilter(t *testing.T) {
	f, err := FilterOptions{Category: " Payment ", Unread: true}.ToFilter()
	require.NoError(t, err)
	assert.Equal(t, Filter{Category: CategoryPayment, ReadFilter: ReadFilterUnread}, f)

	_, err = FilterOptions{ReadFilter: "sometimes"}.ToFilter()
	require.Error(t, err)

	_, err = FilterOptions{Unread: true, ReadFilter: "read"}.ToFilter()
	require.Error(t, err)
}

func TestApplyFilter(t *testing.T) {
	notifs := []Notification{
		{ID: "1", Category: CategoryPayment},
		{ID: "2", Category: CategoryPayment, IsRead: true},
		{ID: "3", Type: "maintenance"},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []ID
	}{
		{"empty filter keeps all", Filter{}, []ID{"1", "2", "3"}},
		{"category", Filter{Category: CategoryPayment}, []ID{"1", "2"}},
		{"category from type", Filter{Category: CategoryMaintenance}, []ID{"3"}},
		{"unread", Filter{ReadFilter: ReadFilterUnread}, []ID{"1", "3"}},
		{"read and category", Filter{Category: CategoryPayment, ReadFilter: ReadFilterRead}, []ID{"2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilter(notifs, tt.filter)
			ids := make([]ID, 0, len(got))
			for _, n := range got {
				ids = append(ids, n.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestCountUnread(t *testing.T) {
	assert.Equal(t, 0, CountUnread(nil))
	assert.Equal(t, 2, CountUnread([]Notification{{}, {IsRead: true}, {}}))
}

package render

import (
	"strings"
	"testing"
	"time"

	"github.com/leasedesk/notify-stream/internal/domain"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestAge(t *testing.T) {
	tests := []struct {
		ts   string
		want string
	}{
		{"", ""},
		{"garbage", ""},
		{"2024-05-01T11:59:30Z", "30s"},
		{"2024-05-01T11:15:00Z", "45m"},
		{"2024-05-01T07:00:00Z", "5h"},
		{"2024-04-28T12:00:00Z", "3d"},
		{"2024-05-02T12:00:00Z", "0s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Age(tt.ts, now), tt.ts)
	}
}

func TestRowShowsMarkerCategoryAndErrors(t *testing.T) {
	n := domain.Notification{
		ID:        "1",
		Title:     "Import finished",
		Type:      "system",
		CreatedAt: "2024-05-01T11:00:00Z",
		Metadata: &domain.Metadata{
			Errors: []domain.JobError{{Row: 3, Message: "missing unit"}},
		},
	}
	row := Row(RowState{Notification: n, Width: 120, Now: now})
	assert.Contains(t, row, unreadSymbol)
	assert.Contains(t, row, "system")
	assert.Contains(t, row, "Import finished [1 error (row 3: missing unit)]")
	assert.Contains(t, row, "1h")

	n.IsRead = true
	assert.Contains(t, Row(RowState{Notification: n, Now: now}), readSymbol)

	n.Metadata.IsTransient = true
	assert.Contains(t, Row(RowState{Notification: n, Now: now}), transientSymbol)
}

func TestRowTruncatesLongTitle(t *testing.T) {
	n := domain.Notification{ID: "1", Title: strings.Repeat("x", 200)}
	row := Row(RowState{Notification: n, Width: 60})
	assert.Contains(t, row, "...")
	assert.NotContains(t, row, strings.Repeat("x", 100))
}

func TestGroupHeader(t *testing.T) {
	g := domain.Group{DisplayName: "Today", Count: 3, UnreadCount: 1}
	assert.Contains(t, GroupHeader(g, 0), "Today (3, 1 unread)")
	g.UnreadCount = 0
	assert.Contains(t, GroupHeader(g, 0), "Today (3)")
}

func TestStatusLine(t *testing.T) {
	line := StatusLine(StatusState{TenantID: "t1", Status: "error", Error: "unable to connect after 5 attempts", Unread: 2, Total: 5, UnreadOnly: true})
	assert.Contains(t, line, "error")
	assert.Contains(t, line, "tenant t1")
	assert.Contains(t, line, "2 unread / 5")
	assert.Contains(t, line, "category: all, unread only")
	assert.Contains(t, line, "error: unable to connect after 5 attempts")

	line = StatusLine(StatusState{Status: "connected", Category: "payment"})
	assert.Contains(t, line, "category: payment")
	assert.NotContains(t, line, "error:")
}

func TestFooterAndEmpty(t *testing.T) {
	assert.Contains(t, Footer(), "r: reconnect")
	assert.Contains(t, Empty("connecting"), "Waiting")
	assert.Contains(t, Empty("connected"), "No notifications")
}

func TestAnsiColorNumber(t *testing.T) {
	assert.Equal(t, "34", ansiColorNumber("\033[0;34m"))
	assert.Equal(t, "", ansiColorNumber("x"))
}

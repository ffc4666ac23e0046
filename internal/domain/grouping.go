package domain

import (
	"time"
)

const (
	labelToday     = "Today"
	labelYesterday = "Yesterday"
	labelUndated   = "Undated"
	dayKeyLayout   = "2006-01-02"
	dayLabelLayout = "Mon, 02 Jan 2006"
)

// Group represents the notifications of one calendar day.
type Group struct {
	Key           string
	DisplayName   string
	Count         int
	UnreadCount   int
	Notifications []Notification
}

// GroupByDay groups notifications by the calendar day of createdAt in loc,
// keeping input order inside each group and ordering groups by first
// appearance. Callers sort first (see SortByCreatedAt) to get newest days on
// top. now decides which day is "Today".
func GroupByDay(notifs []Notification, loc *time.Location, now time.Time) []Group {
	if loc == nil {
		loc = time.Local
	}
	today := now.In(loc).Format(dayKeyLayout)
	yesterday := now.In(loc).AddDate(0, 0, -1).Format(dayKeyLayout)

	index := make(map[string]int)
	groups := make([]Group, 0)
	for _, n := range notifs {
		key, name := dayKey(n, loc, today, yesterday)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key, DisplayName: name})
		}
		g := &groups[i]
		g.Notifications = append(g.Notifications, n)
		g.Count++
		if !n.IsRead {
			g.UnreadCount++
		}
	}
	return groups
}

func dayKey(n Notification, loc *time.Location, today, yesterday string) (string, string) {
	t, ok := n.Time()
	if !ok {
		return "", labelUndated
	}
	local := t.In(loc)
	key := local.Format(dayKeyLayout)
	switch key {
	case today:
		return key, labelToday
	case yesterday:
		return key, labelYesterday
	default:
		return key, local.Format(dayLabelLayout)
	}
}

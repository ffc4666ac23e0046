package format

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/leasedesk/notify-stream/internal/domain"
	"github.com/leasedesk/notify-stream/internal/tui/render"
)

const emptyMessage = "No notifications."

// SimpleFormatter renders the rows the interactive view shows.
type SimpleFormatter struct {
	now time.Time
}

// NewSimpleFormatter creates a new SimpleFormatter.
func NewSimpleFormatter(now time.Time) *SimpleFormatter {
	return &SimpleFormatter{now: now}
}

// FormatNotifications formats notifications one row each.
func (f *SimpleFormatter) FormatNotifications(notifications []domain.Notification, writer io.Writer) error {
	if len(notifications) == 0 {
		_, err := fmt.Fprintln(writer, emptyMessage)
		return err
	}
	for _, n := range notifications {
		if _, err := fmt.Fprintln(writer, render.Row(render.RowState{Notification: n, Now: f.now})); err != nil {
			return err
		}
	}
	return nil
}

// FormatGroups formats notifications under their day header.
func (f *SimpleFormatter) FormatGroups(groups []domain.Group, writer io.Writer) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(writer, emptyMessage)
		return err
	}
	for _, g := range groups {
		if _, err := fmt.Fprintln(writer, render.GroupHeader(g, 0)); err != nil {
			return err
		}
		for _, n := range g.Notifications {
			row := render.Row(render.RowState{Notification: n, Now: f.now})
			if _, err := fmt.Fprintln(writer, "  "+row); err != nil {
				return err
			}
		}
	}
	return nil
}

// CompactFormatter formats notifications with only their title.
type CompactFormatter struct{}

// NewCompactFormatter creates a new CompactFormatter.
func NewCompactFormatter() *CompactFormatter {
	return &CompactFormatter{}
}

// FormatNotifications formats notifications in compact format.
func (f *CompactFormatter) FormatNotifications(notifications []domain.Notification, writer io.Writer) error {
	for _, n := range notifications {
		text := n.Title
		if text == "" {
			text = n.Message
		}
		if _, err := fmt.Fprintln(writer, text); err != nil {
			return err
		}
	}
	return nil
}

// FormatGroups ignores grouping; compact output is one line per notification.
func (f *CompactFormatter) FormatGroups(groups []domain.Group, writer io.Writer) error {
	return f.FormatNotifications(flatten(groups), writer)
}

// JSONFormatter formats notifications as JSON, in the backend's shape.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// FormatNotifications formats notifications as an indented JSON array.
func (f *JSONFormatter) FormatNotifications(notifications []domain.Notification, writer io.Writer) error {
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(notifications)
}

// FormatGroups formats groups as a JSON array of {day, label, unread, notifications}.
func (f *JSONFormatter) FormatGroups(groups []domain.Group, writer io.Writer) error {
	type jsonGroup struct {
		Day           string                `json:"day"`
		Label         string                `json:"label"`
		Unread        int                   `json:"unread"`
		Notifications []domain.Notification `json:"notifications"`
	}
	out := make([]jsonGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, jsonGroup{Day: g.Key, Label: g.DisplayName, Unread: g.UnreadCount, Notifications: g.Notifications})
	}
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

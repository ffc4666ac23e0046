// Package format provides output formatting for the list command.
package format

import (
	"fmt"
	"io"
	"time"

	"github.com/leasedesk/notify-stream/internal/domain"
)

// Formatter defines the interface for output formatters.
type Formatter interface {
	// FormatNotifications writes a flat, already sorted list.
	FormatNotifications(notifications []domain.Notification, writer io.Writer) error

	// FormatGroups writes day groups in order.
	FormatGroups(groups []domain.Group, writer io.Writer) error
}

// FormatterType represents the type of formatter to use.
type FormatterType string

const (
	// FormatterTypeSimple renders day headers and styled rows.
	FormatterTypeSimple FormatterType = "simple"

	// FormatterTypeTable renders a table with headers.
	FormatterTypeTable FormatterType = "table"

	// FormatterTypeCompact renders one title per line.
	FormatterTypeCompact FormatterType = "compact"

	// FormatterTypeJSON renders the notifications as a JSON array.
	FormatterTypeJSON FormatterType = "json"
)

// Types lists the accepted formatter names.
var Types = []FormatterType{FormatterTypeSimple, FormatterTypeTable, FormatterTypeCompact, FormatterTypeJSON}

// ParseType validates a formatter name. An empty name is simple.
func ParseType(name string) (FormatterType, error) {
	if name == "" {
		return FormatterTypeSimple, nil
	}
	for _, t := range Types {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (use simple, table, compact or json)", name)
}

// NewFormatter creates a formatter of the given type. now is used for ages.
func NewFormatter(formatterType FormatterType, now time.Time) Formatter {
	switch formatterType {
	case FormatterTypeTable:
		return NewTableFormatter()
	case FormatterTypeCompact:
		return NewCompactFormatter()
	case FormatterTypeJSON:
		return NewJSONFormatter()
	default:
		return NewSimpleFormatter(now)
	}
}

// flatten concatenates the groups back into one list.
func flatten(groups []domain.Group) []domain.Notification {
	var out []domain.Notification
	for _, g := range groups {
		out = append(out, g.Notifications...)
	}
	return out
}

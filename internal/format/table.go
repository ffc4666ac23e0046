package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/leasedesk/notify-stream/internal/colors"
	"github.com/leasedesk/notify-stream/internal/domain"
)

// TableColumn represents a column in a table.
type TableColumn struct {
	// Name is the column name displayed in the header.
	Name string

	// Width is the column width in characters.
	Width int

	// Extractor extracts the value from a notification.
	Extractor func(domain.Notification) string
}

// TableFormatter formats notifications in a table with headers.
type TableFormatter struct {
	headerColor string
	columns     []TableColumn
}

// NewTableFormatter creates a TableFormatter with the default columns.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		headerColor: colors.Blue,
		columns: []TableColumn{
			{Name: "ID", Width: 12, Extractor: func(n domain.Notification) string { return n.ID.String() }},
			{Name: "DATE", Width: 20, Extractor: func(n domain.Notification) string { return n.CreatedAt }},
			{Name: "CATEGORY", Width: 12, Extractor: func(n domain.Notification) string { return string(n.EffectiveCategory()) }},
			{Name: "READ", Width: 4, Extractor: readColumn},
			{Name: "TITLE", Width: 40, Extractor: titleColumn},
		},
	}
}

func readColumn(n domain.Notification) string {
	switch {
	case n.IsTransient():
		return "-"
	case n.IsRead:
		return "yes"
	default:
		return "no"
	}
}

func titleColumn(n domain.Notification) string {
	title := n.Title
	if title == "" {
		title = n.Message
	}
	if summary := n.ErrorSummary(); summary != "" {
		title += " [" + summary + "]"
	}
	return title
}

// FormatNotifications formats notifications in table format.
func (f *TableFormatter) FormatNotifications(notifications []domain.Notification, writer io.Writer) error {
	if len(notifications) == 0 {
		return nil
	}
	headers := make([]string, len(f.columns))
	rules := make([]string, len(f.columns))
	for i, c := range f.columns {
		headers[i] = pad(c.Name, c.Width)
		rules[i] = strings.Repeat("-", c.Width)
	}
	if _, err := fmt.Fprintln(writer, colors.Colorize(f.headerColor, strings.TrimRight(strings.Join(headers, "  "), " "))); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(writer, colors.Colorize(f.headerColor, strings.Join(rules, "  "))); err != nil {
		return err
	}
	for _, n := range notifications {
		cells := make([]string, len(f.columns))
		for i, c := range f.columns {
			cells[i] = pad(c.Extractor(n), c.Width)
		}
		if _, err := fmt.Fprintln(writer, strings.TrimRight(strings.Join(cells, "  "), " ")); err != nil {
			return err
		}
	}
	return nil
}

// FormatGroups formats one table for all groups.
func (f *TableFormatter) FormatGroups(groups []domain.Group, writer io.Writer) error {
	return f.FormatNotifications(flatten(groups), writer)
}

// pad truncates or right-pads s to width runes.
func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		if width <= 3 {
			return string(runes[:width])
		}
		return string(runes[:width-3]) + "..."
	}
	return s + strings.Repeat(" ", width-len(runes))
}

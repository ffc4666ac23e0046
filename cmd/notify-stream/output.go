package main

import (
	"fmt"
	"io"

	"github.com/leasedesk/notify-stream/internal/colors"
	"github.com/leasedesk/notify-stream/internal/domain"
	"github.com/leasedesk/notify-stream/internal/stream"
)

const timestampLayout = "2006-01-02 15:04:05"

// formatTimestamp renders createdAt in local time, or as received when it
// does not parse.
func formatTimestamp(n domain.Notification) string {
	if t, ok := n.Time(); ok {
		return t.Local().Format(timestampLayout)
	}
	return n.CreatedAt
}

// colorForCategory returns the console color of a category.
func colorForCategory(c domain.Category) string {
	switch c {
	case domain.CategoryAlert:
		return colors.Red
	case domain.CategoryMaintenance:
		return colors.Yellow
	case domain.CategoryPayment:
		return colors.Green
	case domain.CategoryAnnouncement:
		return colors.Cyan
	default:
		return ""
	}
}

func colorForStatus(s stream.Status) string {
	switch s {
	case stream.StatusConnected:
		return colors.Green
	case stream.StatusConnecting:
		return colors.Yellow
	case stream.StatusError:
		return colors.Red
	default:
		return colors.Gray
	}
}

// printNotification prints a single notification line, with the job error
// summary on a second line.
func printNotification(w io.Writer, n domain.Notification, announcement bool) {
	category := n.EffectiveCategory()
	label := string(category)
	if label == "" {
		label = "-"
	}
	text := n.Title
	if n.Message != "" && n.Message != n.Title {
		if text != "" {
			text += ": "
		}
		text += n.Message
	}
	line := fmt.Sprintf("[%s] [%s] %s", formatTimestamp(n), label, text)
	if announcement {
		line += " (announcement)"
	}
	if color := colorForCategory(category); color != "" {
		line = colors.Colorize(color, line)
	}
	_, _ = fmt.Fprintln(w, line)
	if summary := n.ErrorSummary(); summary != "" {
		_, _ = fmt.Fprintf(w, "  └─ %s\n", summary)
	}
}

func printStatus(w io.Writer, s stream.State) {
	line := "-- " + string(s.Status)
	if s.Error != "" {
		line += ": " + s.Error
	}
	_, _ = fmt.Fprintln(w, colors.Colorize(colorForStatus(s.Status), line))
}

// Package render turns notification state into terminal text.
package render

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/leasedesk/notify-stream/internal/colors"
	"github.com/leasedesk/notify-stream/internal/domain"
)

const (
	categoryWidth       = 12
	ageWidth            = 4
	markerWidth         = 1
	spacesBetweenFields = 6
	defaultTitleWidth   = 50
	groupIndentSize     = 2
	unreadSymbol        = "●"
	readSymbol          = "○"
	transientSymbol     = "◌"
)

// RowState defines the inputs needed to render a notification row.
type RowState struct {
	Notification domain.Notification
	Width        int
	Selected     bool
	Now          time.Time
}

// StatusState defines the inputs of the status line.
type StatusState struct {
	TenantID   string
	Status     string
	Error      string
	Unread     int
	Total      int
	Category   string
	UnreadOnly bool
	Notice     string
}

// Row renders a single notification row.
func Row(state RowState) string {
	rowStyle := lipgloss.NewStyle()
	if state.Selected {
		rowStyle = rowStyle.Background(lipgloss.Color(ansiColorNumber(colors.Blue))).Foreground(lipgloss.Color("0"))
	} else if state.Notification.IsRead {
		rowStyle = rowStyle.Foreground(lipgloss.Color(ansiColorNumber(colors.Gray)))
	}

	n := state.Notification
	category := truncate(string(n.EffectiveCategory()), categoryWidth)
	titleWidth := calculateTitleWidth(state.Width)

	title := n.Title
	if title == "" {
		title = n.Message
	}
	if summary := n.ErrorSummary(); summary != "" {
		title += " [" + summary + "]"
	}
	title = truncate(title, titleWidth)

	row := fmt.Sprintf("%s  %-*s  %-*s  %*s",
		marker(n),
		categoryWidth, category,
		titleWidth, title,
		ageWidth, Age(n.CreatedAt, state.Now),
	)
	return rowStyle.Render(row)
}

// GroupHeader renders a day header such as "▾ Today (3, 1 unread)".
func GroupHeader(g domain.Group, width int) string {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ansiColorNumber(colors.Cyan)))
	label := fmt.Sprintf("▾ %s (%d", g.DisplayName, g.Count)
	if g.UnreadCount > 0 {
		label += fmt.Sprintf(", %d unread", g.UnreadCount)
	}
	label += ")"
	if width > 0 {
		label = truncate(label, width)
	}
	return style.Render(label)
}

// StatusLine renders the connection status, unread count and active filters.
func StatusLine(state StatusState) string {
	statusStyle := lipgloss.NewStyle().Bold(true)
	switch state.Status {
	case "connected":
		statusStyle = statusStyle.Foreground(lipgloss.Color(ansiColorNumber(colors.Green)))
	case "connecting":
		statusStyle = statusStyle.Foreground(lipgloss.Color(ansiColorNumber(colors.Yellow)))
	case "error":
		statusStyle = statusStyle.Foreground(lipgloss.Color(ansiColorNumber(colors.Red)))
	default:
		statusStyle = statusStyle.Foreground(lipgloss.Color(ansiColorNumber(colors.Gray)))
	}

	parts := []string{statusStyle.Render(state.Status)}
	if state.TenantID != "" {
		parts = append(parts, "tenant "+state.TenantID)
	}
	parts = append(parts, fmt.Sprintf("%d unread / %d", state.Unread, state.Total))
	category := state.Category
	if category == "" {
		category = "all"
	}
	filter := "category: " + category
	if state.UnreadOnly {
		filter += ", unread only"
	}
	parts = append(parts, filter)
	line := strings.Join(parts, "  |  ")
	if state.Error != "" {
		line += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Red))).Render("error: "+state.Error)
	}
	if state.Notice != "" {
		line += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Yellow))).Render(state.Notice)
	}
	return line
}

// Footer renders the footer with help text.
func Footer() string {
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	help := []string{
		"j/k: move",
		"Enter: mark read",
		"r: reconnect",
		"c: category",
		"u: unread only",
		"q: quit",
	}
	return helpStyle.Render(strings.Join(help, "  |  "))
}

// Empty renders the placeholder shown when nothing matches.
func Empty(status string) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Gray)))
	if status == "connecting" {
		return style.Render("Waiting for notifications...")
	}
	return style.Render("No notifications.")
}

// Age renders how long ago timestamp was, e.g. "5m" or "2d".
func Age(timestamp string, now time.Time) string {
	if timestamp == "" {
		return ""
	}

	t, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return ""
	}

	if now.IsZero() {
		now = time.Now()
	}

	duration := now.Sub(t)
	if duration < 0 {
		duration = 0
	}

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh", int(duration.Hours()))
	}
	return fmt.Sprintf("%dd", int(duration.Hours()/24))
}

func marker(n domain.Notification) string {
	switch {
	case n.IsTransient():
		return transientSymbol
	case n.IsRead:
		return readSymbol
	default:
		return unreadSymbol
	}
}

func calculateTitleWidth(width int) int {
	if width == 0 {
		return defaultTitleWidth
	}
	w := width - categoryWidth - ageWidth - markerWidth - spacesBetweenFields
	if w < 10 {
		return defaultTitleWidth
	}
	return w
}

func truncate(value string, width int) string {
	if width <= 0 || utf8.RuneCountInString(value) <= width {
		return value
	}
	if width <= 3 {
		return string([]rune(value)[:width])
	}
	return string([]rune(value)[:width-3]) + "..."
}

// ansiColorNumber extracts the color number from an ANSI escape sequence.
// Example: "\033[0;34m" -> "34"
func ansiColorNumber(ansi string) string {
	if len(ansi) < 2 {
		return ""
	}
	lastSemicolon := strings.LastIndex(ansi, ";")
	if lastSemicolon == -1 {
		return ""
	}
	return ansi[lastSemicolon+1 : len(ansi)-1]
}

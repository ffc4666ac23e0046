package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/leasedesk/notify-stream/internal/domain"
)

// VariableContext contains all data needed for template variable resolution.
type VariableContext struct {
	Tenant string

	UnreadCount       int
	ReadCount         int
	TotalCount        int
	AnnouncementCount int
	FailedJobCount    int

	LatestTitle    string
	LatestCategory string

	// Comma-separated categories that have unread notifications.
	UnreadCategories string

	Connection string
}

// NewVariableContext summarizes the personal and announcement lists.
func NewVariableContext(tenant string, notifications, announcements []domain.Notification) VariableContext {
	ctx := VariableContext{Tenant: tenant}

	personal := make(map[domain.ID]bool, len(notifications))
	for _, n := range notifications {
		personal[n.ID] = true
	}

	categories := make(map[string]bool)
	timeline := domain.Timeline(notifications, announcements)
	for _, n := range timeline {
		ctx.TotalCount++
		if !personal[n.ID] {
			ctx.AnnouncementCount++
		}
		if n.ErrorCount() > 0 {
			ctx.FailedJobCount++
		}
		if n.IsRead {
			ctx.ReadCount++
			continue
		}
		ctx.UnreadCount++
		if c := n.EffectiveCategory(); c != "" {
			categories[c.String()] = true
		}
	}
	if len(timeline) > 0 {
		ctx.LatestTitle = timeline[0].Title
		ctx.LatestCategory = timeline[0].EffectiveCategory().String()
	}

	names := make([]string, 0, len(categories))
	for c := range categories {
		names = append(names, c)
	}
	sort.Strings(names)
	ctx.UnreadCategories = strings.Join(names, ",")
	return ctx
}

// VariableResolver resolves template variables to their values.
type VariableResolver interface {
	Resolve(varName string, ctx VariableContext) (string, error)
}

type variableResolver struct{}

// NewVariableResolver creates a new variable resolver instance.
func NewVariableResolver() VariableResolver {
	return &variableResolver{}
}

// Variables lists every name Resolve understands.
var Variables = []string{
	"tenant",
	"unread-count",
	"read-count",
	"total-count",
	"announcement-count",
	"failed-count",
	"has-unread",
	"latest-title",
	"latest-category",
	"unread-categories",
	"connection",
}

// Resolve returns the string value for a variable from the context.
func (vr *variableResolver) Resolve(varName string, ctx VariableContext) (string, error) {
	switch varName {
	case "tenant":
		return ctx.Tenant, nil
	case "unread-count":
		return strconv.Itoa(ctx.UnreadCount), nil
	case "read-count":
		return strconv.Itoa(ctx.ReadCount), nil
	case "total-count":
		return strconv.Itoa(ctx.TotalCount), nil
	case "announcement-count":
		return strconv.Itoa(ctx.AnnouncementCount), nil
	case "failed-count":
		return strconv.Itoa(ctx.FailedJobCount), nil
	case "has-unread":
		return strconv.FormatBool(ctx.UnreadCount > 0), nil
	case "latest-title":
		return ctx.LatestTitle, nil
	case "latest-category":
		return ctx.LatestCategory, nil
	case "unread-categories":
		return ctx.UnreadCategories, nil
	case "connection":
		return ctx.Connection, nil
	default:
		return "", fmt.Errorf("unknown variable: %s (available: %s)", varName, strings.Join(Variables, ", "))
	}
}

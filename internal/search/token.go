package search

import (
	"strings"

	"github.com/leasedesk/notify-stream/internal/domain"
)

// TokenProvider splits the query on whitespace; every token must match some
// field (AND). The tokens "read" and "unread" filter on read state instead.
type TokenProvider struct {
	opts Options
}

// NewTokenProvider creates a new token search provider.
func NewTokenProvider(opts ...Option) Provider {
	return &TokenProvider{opts: applyOptions(opts)}
}

// Match returns true if all text tokens match and the read filter, if any,
// holds.
func (p *TokenProvider) Match(n domain.Notification, query string) bool {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return true
	}

	var readFilter, unreadFilter bool
	textTokens := make([]string, 0, len(tokens))
	for _, token := range tokens {
		switch strings.ToLower(token) {
		case "read":
			readFilter = true
		case "unread":
			unreadFilter = true
		default:
			if p.opts.CaseInsensitive {
				token = strings.ToLower(token)
			}
			textTokens = append(textTokens, token)
		}
	}

	// both at once is a contradiction; ignore them
	if readFilter != unreadFilter {
		if readFilter && !n.IsRead {
			return false
		}
		if unreadFilter && n.IsRead {
			return false
		}
	}

	values := fieldValues(n, p.opts.Fields)
	if p.opts.CaseInsensitive {
		for i, v := range values {
			values[i] = strings.ToLower(v)
		}
	}
	for _, token := range textTokens {
		if !containsAny(values, token) {
			return false
		}
	}
	return true
}

func containsAny(values []string, token string) bool {
	for _, v := range values {
		if strings.Contains(v, token) {
			return true
		}
	}
	return false
}

// Name returns the provider name.
func (p *TokenProvider) Name() string {
	return KindToken
}

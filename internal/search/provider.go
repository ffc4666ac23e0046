// Package search matches notifications against a free-text query. The same
// providers back the CLI --search flag and follow.
package search

import (
	"fmt"
	"strings"

	"github.com/leasedesk/notify-stream/internal/domain"
)

// Provider defines the interface for search providers.
type Provider interface {
	// Match returns true if the notification matches the search query.
	Match(n domain.Notification, query string) bool

	// Name returns the provider name for identification and debugging.
	Name() string
}

// Searchable fields.
const (
	FieldTitle    = "title"
	FieldMessage  = "message"
	FieldCategory = "category"
	FieldID       = "id"
	FieldErrors   = "errors"
)

// Options holds configuration options for creating search providers.
type Options struct {
	CaseInsensitive bool     // If true, searches ignore case sensitivity
	Fields          []string // Fields to search in
}

// DefaultOptions returns the default search options.
func DefaultOptions() Options {
	return Options{
		CaseInsensitive: true,
		Fields:          []string{FieldTitle, FieldMessage, FieldCategory},
	}
}

// Option is a function that modifies search options.
type Option func(*Options)

// WithCaseInsensitive sets case-insensitive search.
func WithCaseInsensitive(enabled bool) Option {
	return func(o *Options) {
		o.CaseInsensitive = enabled
	}
}

// WithFields sets the fields to search in.
func WithFields(fields []string) Option {
	return func(o *Options) {
		o.Fields = fields
	}
}

func applyOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// fieldValues returns the non-empty values of the configured fields.
func fieldValues(n domain.Notification, fields []string) []string {
	values := make([]string, 0, len(fields))
	for _, field := range fields {
		switch field {
		case FieldTitle:
			values = append(values, n.Title)
		case FieldMessage:
			values = append(values, n.Message)
		case FieldCategory:
			values = append(values, string(n.EffectiveCategory()))
		case FieldID:
			values = append(values, n.ID.String())
		case FieldErrors:
			if n.Metadata != nil {
				for _, e := range n.Metadata.Errors {
					values = append(values, e.Message)
				}
			}
		}
	}
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Provider kinds accepted by New.
const (
	KindSubstring = "substring"
	KindRegex     = "regex"
	KindToken     = "token"
)

// New returns the provider named kind. An empty kind is token search.
func New(kind string, opts ...Option) (Provider, error) {
	switch strings.ToLower(kind) {
	case "", KindToken:
		return NewTokenProvider(opts...), nil
	case KindSubstring:
		return NewSubstringProvider(opts...), nil
	case KindRegex:
		return NewRegexProvider(opts...), nil
	}
	return nil, fmt.Errorf("unknown search mode %q (use token, substring or regex)", kind)
}

// Filter returns the notifications matching query, preserving order.
func Filter(p Provider, list []domain.Notification, query string) []domain.Notification {
	if query == "" {
		return list
	}
	out := make([]domain.Notification, 0, len(list))
	for _, n := range list {
		if p.Match(n, query) {
			out = append(out, n)
		}
	}
	return out
}

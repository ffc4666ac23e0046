// Package domain provides the domain layer for notifications.
// It contains business logic, value objects, and domain services.
package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrNotificationNotFound is returned when a notification is not found.
var ErrNotificationNotFound = errors.New("notification not found")

// Category classifies a notification for filtering.
type Category string

const (
	CategoryMaintenance  Category = "maintenance"
	CategoryPayment      Category = "payment"
	CategoryAlert        Category = "alert"
	CategoryMessage      Category = "message"
	CategoryAnnouncement Category = "announcement"
	CategorySystem       Category = "system"
)

// KnownCategories lists the categories the backend is known to emit, in display order.
var KnownCategories = []Category{
	CategoryMaintenance,
	CategoryPayment,
	CategoryAlert,
	CategoryMessage,
	CategoryAnnouncement,
	CategorySystem,
}

// IsKnown reports whether the category is one of KnownCategories.
func (c Category) IsKnown() bool {
	for _, k := range KnownCategories {
		if c == k {
			return true
		}
	}
	return false
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// ID is an opaque notification identifier. The backend sends either a JSON
// string or a JSON number; both decode to the same textual form.
type ID string

// UnmarshalJSON accepts string and number ids.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the id text.
func (id ID) String() string {
	return string(id)
}

// JobError is one structured failure attached to a job-style notification
// (for example a row rejected during a bulk import).
type JobError struct {
	Row     int    `json:"row,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Metadata is the optional bag attached to a notification.
type Metadata struct {
	IsTransient bool       `json:"isTransient,omitempty"`
	Errors      []JobError `json:"errors,omitempty"`
	ErrorCount  int        `json:"errorCount,omitempty"`
	Category    Category   `json:"category,omitempty"`

	// Extra keeps keys this client does not interpret.
	Extra map[string]json.RawMessage `json:"-"`
}

type metadataAlias Metadata

var metadataKnownKeys = map[string]bool{
	"isTransient": true,
	"errors":      true,
	"errorCount":  true,
	"category":    true,
}

// UnmarshalJSON decodes the known keys and keeps the rest in Extra.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var known metadataAlias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Metadata(known)
	for k, v := range raw {
		if metadataKnownKeys[k] {
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]json.RawMessage)
		}
		m.Extra[k] = v
	}
	return nil
}

// MarshalJSON writes the known keys plus Extra.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+4)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.IsTransient {
		out["isTransient"] = true
	}
	if len(m.Errors) > 0 {
		out["errors"] = m.Errors
	}
	if m.ErrorCount > 0 {
		out["errorCount"] = m.ErrorCount
	}
	if m.Category != "" {
		out["category"] = m.Category
	}
	return json.Marshal(out)
}

// Notification is a single notification as delivered by the backend.
type Notification struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type,omitempty"`
	Category  Category  `json:"category,omitempty"`
	CreatedAt string    `json:"createdAt"`
	IsRead    bool      `json:"isRead"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

// IsTransient reports whether the notification only exists for this session
// and has no server-side read state.
func (n Notification) IsTransient() bool {
	return n.Metadata != nil && n.Metadata.IsTransient
}

// EffectiveCategory resolves the classification tag: the explicit category,
// then metadata.category, then type.
func (n Notification) EffectiveCategory() Category {
	if n.Category != "" {
		return n.Category
	}
	if n.Metadata != nil && n.Metadata.Category != "" {
		return n.Metadata.Category
	}
	return Category(n.Type)
}

// Time parses CreatedAt. The zero time and false are returned when it is
// missing or not RFC3339.
func (n Notification) Time() (time.Time, bool) {
	if n.CreatedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, n.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ErrorCount returns metadata.errorCount, falling back to the number of
// attached errors.
func (n Notification) ErrorCount() int {
	if n.Metadata == nil {
		return 0
	}
	if n.Metadata.ErrorCount > 0 {
		return n.Metadata.ErrorCount
	}
	return len(n.Metadata.Errors)
}

// ErrorSummary renders a one-line description of attached job errors, or ""
// when there are none.
func (n Notification) ErrorSummary() string {
	count := n.ErrorCount()
	if count == 0 {
		return ""
	}
	noun := "errors"
	if count == 1 {
		noun = "error"
	}
	summary := strconv.Itoa(count) + " " + noun
	if len(n.Metadata.Errors) > 0 {
		first := n.Metadata.Errors[0]
		if first.Row > 0 {
			summary += fmt.Sprintf(" (row %d: %s)", first.Row, first.Message)
		} else {
			summary += " (" + first.Message + ")"
		}
	}
	return summary
}

// Validate checks the fields the client relies on.
func (n Notification) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("notification id cannot be empty")
	}
	if n.CreatedAt != "" {
		if _, ok := n.Time(); !ok {
			return fmt.Errorf("invalid createdAt format: %q", n.CreatedAt)
		}
	}
	return nil
}

// ParseNotification decodes a single notification payload.
func ParseNotification(data []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return Notification{}, fmt.Errorf("parse notification: %w", err)
	}
	if err := n.Validate(); err != nil {
		return Notification{}, fmt.Errorf("parse notification: %w", err)
	}
	return n, nil
}

// ParseNotificationList decodes a snapshot payload (a JSON array).
func ParseNotificationList(data []byte) ([]Notification, error) {
	var list []Notification
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse notification list: %w", err)
	}
	for i, n := range list {
		if err := n.Validate(); err != nil {
			return nil, fmt.Errorf("notification at index %d: %w", i, err)
		}
	}
	if list == nil {
		list = []Notification{}
	}
	return list, nil
}

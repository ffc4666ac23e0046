// Package transport defines the push-subscription primitive and the
// notification service the stream client consumes.
package transport

import (
	"context"
	"errors"
	"net/url"
	"strconv"
)

// Channel names used by the notification backend.
const (
	// ChannelMyNotifications carries the personal snapshot (a JSON array).
	ChannelMyNotifications = "my-notifications"
	// ChannelNotification carries a single new personal notification.
	ChannelNotification = "notification"
	// ChannelAnnouncements carries the announcements snapshot (a JSON array).
	ChannelAnnouncements = "announcements"
	// ChannelAnnouncement carries a single new announcement.
	ChannelAnnouncement = "announcement"
)

var (
	// ErrClosed is returned when operating on a closed subscription.
	ErrClosed = errors.New("subscription closed")
	// ErrUnexpectedStatus is wrapped when the backend answers with a non-success status.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// ReadyState mirrors the readiness of a subscription.
type ReadyState int32

const (
	Connecting ReadyState = iota
	Open
	Closed
)

func (s ReadyState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Subscription is a long-lived server-push channel.
//
// Listeners must be registered before Start. Callbacks run on the
// subscription's own goroutine; Close never waits for them.
type Subscription interface {
	OnEvent(channel string, fn func(data []byte))
	OnError(fn func(err error))
	OnOpen(fn func())
	// Start begins delivery. Calling it more than once has no effect.
	Start()
	ReadyState() ReadyState
	Close() error
}

// Filters narrow the personal stream.
type Filters struct {
	Category string
	// IsRead restricts to read (true) or unread (false) entries; nil means both.
	IsRead *bool
}

// Query encodes the filters as URL query parameters.
func (f Filters) Query() url.Values {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.IsRead != nil {
		q.Set("isRead", strconv.FormatBool(*f.IsRead))
	}
	return q
}

// Service is the notification backend.
type Service interface {
	PersonalStream(tenantID string, filters Filters) (Subscription, error)
	AnnouncementsStream(tenantID string, filters Filters) (Subscription, error)
	MarkAsRead(ctx context.Context, tenantID, id string) error
}

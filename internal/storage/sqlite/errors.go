package sqlite

import "errors"

var (
	// ErrInvalidTenant indicates an empty tenant id.
	ErrInvalidTenant = errors.New("invalid tenant ID")
	// ErrInvalidStream indicates an unknown stream name.
	ErrInvalidStream = errors.New("invalid stream")
)

// Stream names accepted by the cache.
const (
	StreamPersonal      = "personal"
	StreamAnnouncements = "announcements"
)

var validStreams = map[string]bool{
	StreamPersonal:      true,
	StreamAnnouncements: true,
}

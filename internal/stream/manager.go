package stream

import (
	"sync"

	"github.com/google/uuid"
	"github.com/leasedesk/notify-stream/internal/domain"
	"github.com/leasedesk/notify-stream/internal/logging"
	"github.com/leasedesk/notify-stream/internal/transport"
)

// Hooks receive the events of one stream. They run with the manager's lock
// held and only for the current handle.
type Hooks struct {
	Snapshot    func(list []domain.Notification)
	Incremental func(n domain.Notification)
	Open        func()
	// Error receives transport failures; terminal is true when the
	// subscription reports itself closed.
	Error func(err error, terminal bool)
}

type opener func(tenantID string, filters transport.Filters) (transport.Subscription, error)

// Manager owns at most one subscription for a stream.
//
// Open and Close must be called with the lock passed to NewManager held;
// transport callbacks acquire it themselves.
type Manager struct {
	kind        Kind
	open        opener
	snapshot    string
	incremental string
	hooks       Hooks
	mu          sync.Locker
	logger      logging.Logger

	handle transport.Subscription
	connID string
}

// NewManager returns a manager for kind backed by service.
func NewManager(kind Kind, service transport.Service, mu sync.Locker, hooks Hooks, logger logging.Logger) *Manager {
	m := &Manager{
		kind:   kind,
		hooks:  hooks,
		mu:     mu,
		logger: logger.With("stream", string(kind)),
	}
	switch kind {
	case Announcements:
		m.open = service.AnnouncementsStream
		m.snapshot = transport.ChannelAnnouncements
		m.incremental = transport.ChannelAnnouncement
	default:
		m.open = service.PersonalStream
		m.snapshot = transport.ChannelMyNotifications
		m.incremental = transport.ChannelNotification
	}
	return m
}

// IsOpen reports whether a handle is held.
func (m *Manager) IsOpen() bool {
	return m.handle != nil
}

// Open subscribes unless a handle is already held. Failures, including a
// failing factory, are reported through the Error hook.
func (m *Manager) Open(tenantID string, filters transport.Filters) {
	if m.handle != nil {
		return
	}
	h, err := m.open(tenantID, filters)
	if err != nil {
		m.logger.Error("failed to create subscription", "tenant", tenantID, "error", err)
		if m.hooks.Error != nil {
			m.hooks.Error(err, true)
		}
		return
	}
	m.handle = h
	m.connID = uuid.NewString()
	logger := m.logger.With("conn", m.connID)
	logger.Debug("subscribing", "tenant", tenantID)

	h.OnEvent(m.snapshot, m.guard(h, func(data []byte) {
		list, err := domain.ParseNotificationList(data)
		if err != nil {
			logger.Warn("dropping malformed snapshot", "error", err)
			return
		}
		if m.hooks.Snapshot != nil {
			m.hooks.Snapshot(list)
		}
	}))
	h.OnEvent(m.incremental, m.guard(h, func(data []byte) {
		n, err := domain.ParseNotification(data)
		if err != nil {
			logger.Warn("dropping malformed event", "error", err)
			return
		}
		if m.hooks.Incremental != nil {
			m.hooks.Incremental(n)
		}
	}))
	h.OnOpen(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.handle != h {
			return
		}
		logger.Info("stream open")
		if m.hooks.Open != nil {
			m.hooks.Open()
		}
	})
	h.OnError(func(err error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.handle != h {
			return
		}
		terminal := h.ReadyState() == transport.Closed
		logger.Warn("stream error", "error", err, "terminal", terminal)
		if m.hooks.Error != nil {
			m.hooks.Error(err, terminal)
		}
	})
	h.Start()
}

// Close releases the handle. Callbacks of the released handle are ignored.
func (m *Manager) Close() {
	if m.handle == nil {
		return
	}
	h := m.handle
	m.handle = nil
	m.logger.Debug("closing subscription", "conn", m.connID)
	m.connID = ""
	if err := h.Close(); err != nil {
		m.logger.Warn("failed to close subscription", "error", err)
	}
}

func (m *Manager) guard(h transport.Subscription, fn func([]byte)) func([]byte) {
	return func(data []byte) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.handle != h {
			return
		}
		fn(data)
	}
}

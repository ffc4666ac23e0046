// Package stream keeps a tenant's notifications and announcements in sync
// with the backend over two push subscriptions.
package stream

import (
	"context"
	"fmt"
	"sync"

	"github.com/leasedesk/notify-stream/internal/domain"
	"github.com/leasedesk/notify-stream/internal/logging"
	"github.com/leasedesk/notify-stream/internal/transport"
)

// Client is the facade consumers use. Every transport callback, timer and
// action runs under a single lock, so state changes are applied one at a
// time in delivery order.
type Client struct {
	mu sync.Mutex

	service transport.Service
	store   *Store
	filters transport.Filters
	backoff Backoff
	clock   Clock
	logger  logging.Logger

	personal      *Manager
	announcements *Manager

	tenantID string
	status   Status
	lastErr  string
	attempts int
	synced   bool
	timer    Timer
	// retryGen invalidates timers that fire after being cancelled.
	retryGen uint64

	subs *broadcaster
}

// Option configures a Client.
type Option func(*Client)

// WithFilters sets the filters used when opening streams.
func WithFilters(filters transport.Filters) Option {
	return func(c *Client) {
		c.filters = filters
	}
}

// WithBackoff sets the reconnection policy. Zero fields keep their defaults.
func WithBackoff(b Backoff) Option {
	return func(c *Client) {
		c.backoff = b.withDefaults()
	}
}

// WithClock replaces the clock used for reconnection delays.
func WithClock(clock Clock) Option {
	return func(c *Client) {
		c.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithStore sets the store backing the client.
func WithStore(store *Store) Option {
	return func(c *Client) {
		c.store = store
	}
}

// NewClient returns a disconnected client. Call Start with a tenant id to
// connect.
func NewClient(service transport.Service, opts ...Option) *Client {
	c := &Client{
		service: service,
		backoff: DefaultBackoff(),
		clock:   realClock{},
		status:  StatusDisconnected,
		subs:    newBroadcaster(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.GetGlobal()
	}
	if c.store == nil {
		c.store = NewStore()
	}
	c.personal = NewManager(Personal, service, &c.mu, Hooks{
		Snapshot:    c.onPersonalSnapshot,
		Incremental: c.onIncremental(Personal),
		Open:        c.onPersonalOpen,
		Error:       c.onPersonalError,
	}, c.logger)
	c.announcements = NewManager(Announcements, service, &c.mu, Hooks{
		Snapshot: func(list []domain.Notification) {
			c.store.ApplySnapshot(Announcements, list)
			c.publish()
		},
		Incremental: c.onIncremental(Announcements),
		Open:        func() {},
		// errors are logged by the manager; announcements never reconnect automatically
		Error: func(error, bool) {},
	}, c.logger)
	return c
}

// Start connects for tenantID. An empty id stops the client; the running
// tenant is a no-op; another tenant replaces the current streams.
func (c *Client) Start(tenantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tenantID == "" {
		c.stopLocked()
		return
	}
	if tenantID == c.tenantID {
		return
	}
	if c.tenantID != "" {
		c.logger.Info("switching tenant", "from", c.tenantID, "to", tenantID)
		c.stopLocked()
	}
	c.tenantID = tenantID
	c.logger.Info("starting notification streams", "tenant", tenantID)
	c.openLocked()
}

// Stop closes both streams, cancels any pending reconnection and empties the
// lists.
func (c *Client) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Reconnect resets the retry counter and reopens both streams. It does
// nothing without a tenant.
func (c *Client) Reconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tenantID == "" {
		return
	}
	c.logger.Info("manual reconnect", "tenant", c.tenantID)
	c.cancelRetryLocked()
	c.personal.Close()
	c.announcements.Close()
	c.openLocked()
}

// WatchTenant follows the authenticated tenant: every received id is passed
// to Start; a closed channel or a done context stops the client.
func (c *Client) WatchTenant(ctx context.Context, tenants <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			c.Stop()
			return ctx.Err()
		case tenantID, ok := <-tenants:
			if !ok {
				c.Stop()
				return nil
			}
			c.Start(tenantID)
		}
	}
}

// MarkAsRead marks id as read on the backend and locally. Transient
// notifications are skipped. Failures are logged and leave state unchanged.
func (c *Client) MarkAsRead(ctx context.Context, id string) {
	c.mu.Lock()
	tenantID := c.tenantID
	epoch := c.store.Epoch()
	n, found := c.store.Find(id)
	c.mu.Unlock()

	if tenantID == "" {
		c.logger.Warn("mark as read without tenant", "id", id)
		return
	}
	if found && n.IsTransient() {
		c.logger.Debug("skipping mark as read for transient notification", "id", id)
		return
	}
	if err := c.store.MarkAsReadAt(ctx, epoch, c.service, tenantID, id); err != nil {
		c.logger.Error("mark as read failed", "id", id, "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.publish()
}

// State returns a copy of the current state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Subscribe returns a channel receiving the current state followed by every
// change. Slow subscribers only see the latest states. The returned func
// unsubscribes and closes the channel.
func (c *Client) Subscribe(buffer int) (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subs.subscribe(buffer, c.stateLocked())
}

func (c *Client) openLocked() {
	c.attempts = 0
	c.lastErr = ""
	c.synced = false
	c.status = StatusConnecting
	c.personal.Open(c.tenantID, c.filters)
	c.announcements.Open(c.tenantID, c.filters)
	c.publish()
}

func (c *Client) stopLocked() {
	c.cancelRetryLocked()
	c.personal.Close()
	c.announcements.Close()
	c.store.Reset()
	if c.tenantID != "" {
		c.logger.Info("stopped notification streams", "tenant", c.tenantID)
	}
	c.tenantID = ""
	c.attempts = 0
	c.lastErr = ""
	c.synced = false
	c.status = StatusDisconnected
	c.publish()
}

func (c *Client) cancelRetryLocked() {
	c.retryGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Client) onPersonalOpen() {
	c.attempts = 0
	c.status = StatusConnected
	c.lastErr = ""
	c.publish()
}

func (c *Client) onPersonalSnapshot(list []domain.Notification) {
	c.store.ApplySnapshot(Personal, list)
	c.synced = true
	c.status = StatusConnected
	c.lastErr = ""
	c.publish()
}

func (c *Client) onIncremental(kind Kind) func(domain.Notification) {
	return func(n domain.Notification) {
		c.store.ApplyIncremental(kind, n)
		c.publish()
	}
}

func (c *Client) onPersonalError(err error, terminal bool) {
	c.status = StatusError
	c.lastErr = err.Error()
	if terminal {
		c.scheduleRetryLocked()
	}
	c.publish()
}

func (c *Client) scheduleRetryLocked() {
	if c.backoff.Exhausted(c.attempts) {
		c.status = StatusError
		c.lastErr = fmt.Sprintf("unable to connect after %d attempts", c.backoff.MaxAttempts)
		c.logger.Error("giving up reconnecting", "attempts", c.attempts)
		return
	}
	delay := c.backoff.Delay(c.attempts)
	c.attempts++
	c.status = StatusConnecting
	c.logger.Info("reconnecting", "attempt", c.attempts, "delay", delay.String())

	c.cancelRetryLocked()
	gen := c.retryGen
	c.timer = c.clock.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.retryGen || c.tenantID == "" {
			return
		}
		c.timer = nil
		c.personal.Close()
		c.personal.Open(c.tenantID, c.filters)
		c.publish()
	})
}

func (c *Client) stateLocked() State {
	return State{
		TenantID:      c.tenantID,
		Notifications: c.store.Notifications(),
		Announcements: c.store.Announcements(),
		Status:        c.status,
		Error:         c.lastErr,
		Synced:        c.synced,
	}
}

func (c *Client) publish() {
	c.subs.publish(c.stateLocked())
}

// Package api is the HTTP notification service: stream URLs, transport
// selection and the mark-as-read call.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/leasedesk/notify-stream/internal/domain"
	"github.com/leasedesk/notify-stream/internal/logging"
	"github.com/leasedesk/notify-stream/internal/transport"
	"github.com/leasedesk/notify-stream/internal/transport/sse"
	"github.com/leasedesk/notify-stream/internal/transport/ws"
)

// Transport kinds.
const (
	TransportSSE       = "sse"
	TransportWebSocket = "ws"
)

const defaultRequestTimeout = 10 * time.Second

// Client implements transport.Service against the notification backend.
type Client struct {
	baseURL   *url.URL
	token     string
	transport string
	logger    logging.Logger

	// streamClient has no timeout; streams stay open indefinitely.
	streamClient  *http.Client
	requestClient *http.Client
	dialer        *websocket.Dialer
}

var _ transport.Service = (*Client)(nil)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithToken sets the bearer token.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithTransport selects "sse" (default) or "ws".
func WithTransport(kind string) ClientOption {
	return func(c *Client) {
		c.transport = kind
	}
}

// WithHTTPClient sets the client used for streams and requests.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.streamClient = client
		rc := *client
		if rc.Timeout == 0 {
			rc.Timeout = defaultRequestTimeout
		}
		c.requestClient = &rc
	}
}

// WithRequestTimeout sets the timeout of non-streaming requests.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		rc := *c.requestClient
		rc.Timeout = timeout
		c.requestClient = &rc
	}
}

// WithDialer sets the WebSocket dialer.
func WithDialer(dialer *websocket.Dialer) ClientOption {
	return func(c *Client) {
		c.dialer = dialer
	}
}

// WithLogger sets the logger handed to subscriptions.
func WithLogger(logger logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for baseURL, e.g. "https://host/api/v1".
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL:       u,
		transport:     TransportSSE,
		streamClient:  &http.Client{},
		requestClient: &http.Client{Timeout: defaultRequestTimeout},
		dialer:        websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport != TransportSSE && c.transport != TransportWebSocket {
		return nil, fmt.Errorf("unknown transport %q", c.transport)
	}
	if c.logger == nil {
		c.logger = logging.GetGlobal()
	}
	return c, nil
}

// PersonalStream opens the tenant's notification stream.
func (c *Client) PersonalStream(tenantID string, filters transport.Filters) (transport.Subscription, error) {
	return c.subscribe(c.PersonalStreamURL(tenantID, filters), "personal")
}

// AnnouncementsStream opens the tenant's announcements stream. Only the
// category filter applies.
func (c *Client) AnnouncementsStream(tenantID string, filters transport.Filters) (transport.Subscription, error) {
	return c.subscribe(c.AnnouncementsStreamURL(tenantID, filters), "announcements")
}

// PersonalStreamURL returns the personal stream URL for the configured transport.
func (c *Client) PersonalStreamURL(tenantID string, filters transport.Filters) string {
	return c.endpoint(c.streamScheme(), filters.Query(), "tenants", tenantID, "notifications", "stream")
}

// AnnouncementsStreamURL returns the announcements stream URL for the configured transport.
func (c *Client) AnnouncementsStreamURL(tenantID string, filters transport.Filters) string {
	return c.endpoint(c.streamScheme(), transport.Filters{Category: filters.Category}.Query(), "tenants", tenantID, "announcements", "stream")
}

// MarkAsRead marks a notification as read. A 404 wraps domain.ErrNotificationNotFound.
func (c *Client) MarkAsRead(ctx context.Context, tenantID, id string) error {
	if tenantID == "" || id == "" {
		return fmt.Errorf("mark as read: tenant and id are required")
	}
	endpoint := c.endpoint(c.baseURL.Scheme, nil, "tenants", tenantID, "notifications", id, "read")
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req.Header)

	resp, err := c.requestClient.Do(req)
	if err != nil {
		return fmt.Errorf("mark as read %s: %w", id, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("mark as read %s: %w", id, domain.ErrNotificationNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("mark as read %s: %w: %s", id, transport.ErrUnexpectedStatus, resp.Status)
	}
	return nil
}

func (c *Client) subscribe(endpoint, stream string) (transport.Subscription, error) {
	logger := c.logger.With("stream", stream)
	header := http.Header{}
	c.authorize(header)

	if c.transport == TransportWebSocket {
		return ws.New(c.dialer, endpoint, header, logger), nil
	}
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = header
	return sse.New(c.streamClient, req, logger), nil
}

func (c *Client) authorize(h http.Header) {
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) streamScheme() string {
	if c.transport != TransportWebSocket {
		return c.baseURL.Scheme
	}
	if c.baseURL.Scheme == "https" {
		return "wss"
	}
	return "ws"
}

func (c *Client) endpoint(scheme string, query url.Values, segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u := c.baseURL.JoinPath(escaped...)
	u.Scheme = scheme
	u.RawQuery = query.Encode()
	return u.String()
}

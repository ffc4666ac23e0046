package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leasedesk/notify-stream/internal/domain"
	"github.com/leasedesk/notify-stream/internal/logging"
	"github.com/leasedesk/notify-stream/internal/transport"
	"github.com/leasedesk/notify-stream/internal/transport/sse"
	"github.com/leasedesk/notify-stream/internal/transport/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("ftp://example.com")
	assert.Error(t, err)
	_, err = NewClient("http://example.com", WithTransport("grpc"))
	assert.Error(t, err)
	_, err = NewClient("https://example.com/api/v1/", WithTransport(TransportWebSocket))
	assert.NoError(t, err)
}

func TestStreamURLs(t *testing.T) {
	unread := false
	filters := transport.Filters{Category: "payment", IsRead: &unread}

	c, err := NewClient("https://example.com/api/v1/")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/api/v1/tenants/t-1/notifications/stream?category=payment&isRead=false",
		c.PersonalStreamURL("t-1", filters))
	assert.Equal(t, "https://example.com/api/v1/tenants/t-1/announcements/stream?category=payment",
		c.AnnouncementsStreamURL("t-1", filters))
	assert.Equal(t, "https://example.com/api/v1/tenants/a%2Fb/notifications/stream",
		c.PersonalStreamURL("a/b", transport.Filters{}))

	wsClient, err := NewClient("https://example.com/api/v1", WithTransport(TransportWebSocket))
	require.NoError(t, err)
	assert.Equal(t, "wss://example.com/api/v1/tenants/t-1/announcements/stream",
		wsClient.AnnouncementsStreamURL("t-1", transport.Filters{}))

	plain, err := NewClient("http://localhost:8080", WithTransport(TransportWebSocket))
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/tenants/t-1/notifications/stream", plain.PersonalStreamURL("t-1", transport.Filters{}))
}

func TestSubscriptionKind(t *testing.T) {
	c, err := NewClient("http://localhost", WithLogger(logging.Nop()))
	require.NoError(t, err)
	sub, err := c.PersonalStream("t-1", transport.Filters{})
	require.NoError(t, err)
	assert.IsType(t, &sse.Subscription{}, sub)
	assert.Equal(t, transport.Connecting, sub.ReadyState())
	require.NoError(t, sub.Close())

	c, err = NewClient("http://localhost", WithTransport(TransportWebSocket), WithLogger(logging.Nop()))
	require.NoError(t, err)
	sub, err = c.AnnouncementsStream("t-1", transport.Filters{})
	require.NoError(t, err)
	assert.IsType(t, &ws.Subscription{}, sub)
	require.NoError(t, sub.Close())
}

func TestMarkAsRead(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotAuth = r.Method, r.URL.Path, r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/api/v1/tenants/t-1/notifications/missing/read":
			http.NotFound(w, r)
		case "/api/v1/tenants/t-1/notifications/boom/read":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL+"/api/v1", WithHTTPClient(srv.Client()), WithToken("secret"), WithRequestTimeout(2*time.Second))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.MarkAsRead(ctx, "t-1", "42"))
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/api/v1/tenants/t-1/notifications/42/read", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)

	err = c.MarkAsRead(ctx, "t-1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotificationNotFound)

	err = c.MarkAsRead(ctx, "t-1", "boom")
	assert.ErrorIs(t, err, transport.ErrUnexpectedStatus)

	assert.Error(t, c.MarkAsRead(ctx, "", "42"))
}

func TestPersonalStreamEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tenants/t-9/notifications/stream", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: my-notifications\ndata: [{\"id\":\"1\"}]\n\n"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithToken("tok"), WithLogger(logging.Nop()))
	require.NoError(t, err)
	sub, err := c.PersonalStream("t-9", transport.Filters{})
	require.NoError(t, err)
	defer sub.Close()

	got := make(chan string, 1)
	sub.OnEvent(transport.ChannelMyNotifications, func(data []byte) { got <- string(data) })
	sub.Start()

	select {
	case data := <-got:
		assert.Equal(t, `[{"id":"1"}]`, data)
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot received")
	}
}

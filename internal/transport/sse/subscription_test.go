package sse

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/leasedesk/notify-stream/internal/logging"
	"github.com/leasedesk/notify-stream/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	opened int
	events []string
	errs   []error
	states []transport.ReadyState
}

func (r *recorder) attach(s *Subscription) {
	s.OnOpen(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.opened++
	})
	for _, ch := range []string{transport.ChannelMyNotifications, transport.ChannelNotification} {
		ch := ch
		s.OnEvent(ch, func(data []byte) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, ch+"="+string(data))
		})
	}
	s.OnError(func(err error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.errs = append(r.errs, err)
		r.states = append(r.states, s.ReadyState())
	})
}

func newRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	return req
}

func waitDone(t *testing.T, s *Subscription) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("subscription did not finish")
	}
}

func TestSubscriptionDeliversEventsThenEnds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: my-notifications\ndata: []\n\n")
		fmt.Fprint(w, "event: notification\ndata: {\"id\":\"1\"}\n\n")
		fmt.Fprint(w, "event: unrelated\ndata: x\n\n")
	}))
	defer srv.Close()

	s := New(srv.Client(), newRequest(t, srv.URL), logging.Nop())
	rec := &recorder{}
	rec.attach(s)
	s.Start()
	s.Start()
	waitDone(t, s)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, 1, rec.opened)
	assert.Equal(t, []string{"my-notifications=[]", `notification={"id":"1"}`}, rec.events)
	require.Len(t, rec.errs, 1)
	assert.ErrorIs(t, rec.errs[0], ErrStreamEnded)
	assert.Equal(t, []transport.ReadyState{transport.Closed}, rec.states)
}

func TestSubscriptionUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := New(srv.Client(), newRequest(t, srv.URL), logging.Nop())
	rec := &recorder{}
	rec.attach(s)
	s.Start()
	waitDone(t, s)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Zero(t, rec.opened)
	require.Len(t, rec.errs, 1)
	assert.True(t, errors.Is(rec.errs[0], transport.ErrUnexpectedStatus))
}

func TestSubscriptionCloseIsSilent(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: my-notifications\ndata: []\n\n")
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	s := New(srv.Client(), newRequest(t, srv.URL), logging.Nop())
	rec := &recorder{}
	rec.attach(s)
	opened := make(chan struct{})
	s.OnOpen(func() { close(opened) })
	s.Start()

	select {
	case <-opened:
	case <-time.After(5 * time.Second):
		t.Fatal("stream never opened")
	}
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	waitDone(t, s)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Empty(t, rec.errs)
	assert.Equal(t, transport.Closed, s.ReadyState())
}

package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/leasedesk/notify-stream/internal/logging"
	"github.com/leasedesk/notify-stream/internal/storage/sqlite"
	"github.com/leasedesk/notify-stream/internal/transport"
	"github.com/leasedesk/notify-stream/internal/transport/api"
	"github.com/stretchr/testify/require"
)

const (
	personalSnapshot = `[{"id":"n1","title":"Rent due","createdAt":"2024-05-01T09:00:00Z","category":"payment","isRead":false},` +
		`{"id":"n2","title":"Lease renewed","createdAt":"2024-04-30T09:00:00Z","category":"message","isRead":true}]`
	announcementsSnapshot = `[{"id":"a1","title":"Pool closed","createdAt":"2024-05-01T08:00:00Z","category":"announcement"}]`
	leakEvent             = `{"id":"n3","title":"Leak reported","createdAt":"2024-05-01T11:00:00Z","category":"maintenance"}`
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func sseFrame(channel, data string) string {
	return fmt.Sprintf("event: %s\ndata: %s\n\n", channel, data)
}

// fakeBackend serves both streams and the mark-as-read endpoint.
type fakeBackend struct {
	server *httptest.Server

	mu             sync.Mutex
	personal       []string
	announcements  []string
	personalStatus int
	markStatus     int
	marked         []string
	queries        []string

	push chan string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{
		personal:       []string{sseFrame(transport.ChannelMyNotifications, personalSnapshot)},
		announcements:  []string{sseFrame(transport.ChannelAnnouncements, announcementsSnapshot)},
		personalStatus: http.StatusOK,
		markStatus:     http.StatusNoContent,
		push:           make(chan string, 4),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tenants/{tenant}/notifications/stream", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		frames, status := b.personal, b.personalStatus
		b.queries = append(b.queries, r.URL.RawQuery)
		b.mu.Unlock()
		b.serveStream(w, r, status, frames, b.push)
	})
	mux.HandleFunc("GET /tenants/{tenant}/announcements/stream", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		frames := b.announcements
		b.mu.Unlock()
		b.serveStream(w, r, http.StatusOK, frames, nil)
	})
	mux.HandleFunc("PATCH /tenants/{tenant}/notifications/{id}/read", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.marked = append(b.marked, r.PathValue("tenant")+"/"+r.PathValue("id"))
		status := b.markStatus
		b.mu.Unlock()
		w.WriteHeader(status)
	})
	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) serveStream(w http.ResponseWriter, r *http.Request, status int, frames []string, push <-chan string) {
	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	flusher := w.(http.Flusher)
	for _, f := range frames {
		_, _ = fmt.Fprint(w, f)
	}
	flusher.Flush()
	for {
		select {
		case <-r.Context().Done():
			return
		case f := <-push:
			_, _ = fmt.Fprint(w, f)
			flusher.Flush()
		}
	}
}

func (b *fakeBackend) markedIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.marked...)
}

func (b *fakeBackend) streamQueries() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.queries...)
}

func testDeps(t *testing.T, b *fakeBackend) (Deps, string) {
	t.Helper()
	cachePath := filepath.Join(t.TempDir(), sqlite.DefaultFileName)
	return Deps{
		NewService: func(kind string) (transport.Service, error) {
			if kind == "" {
				kind = api.TransportSSE
			}
			client, err := api.NewClient(b.server.URL, api.WithTransport(kind), api.WithLogger(logging.Nop()))
			if err != nil {
				return nil, err
			}
			return client, nil
		},
		OpenCache: func() (Cache, error) {
			storage, err := sqlite.NewSQLiteStorage(cachePath)
			if err != nil {
				return nil, err
			}
			return storage, nil
		},
		Now: func() time.Time { return fixedNow },
	}, cachePath
}

func openTestCache(t *testing.T, path string) *sqlite.SQLiteStorage {
	t.Helper()
	storage, err := sqlite.NewSQLiteStorage(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

package sse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/leasedesk/notify-stream/internal/logging"
	"github.com/leasedesk/notify-stream/internal/transport"
)

// ErrStreamEnded is reported when the server closes the event stream.
var ErrStreamEnded = errors.New("event stream ended")

// Subscription is a single SSE connection. It does not reconnect by itself;
// a dropped connection is reported as a terminal error.
type Subscription struct {
	*transport.Emitter

	client *http.Client
	req    *http.Request
	logger logging.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	done      chan struct{}
}

var _ transport.Subscription = (*Subscription)(nil)

// New prepares a subscription for req. Nothing is sent until Start.
func New(client *http.Client, req *http.Request, logger logging.Logger) *Subscription {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = logging.GetGlobal()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Subscription{
		Emitter: transport.NewEmitter(),
		client:  client,
		req:     req,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Start connects in the background.
func (s *Subscription) Start() {
	s.startOnce.Do(func() {
		go s.run()
	})
}

// Close stops delivery and aborts the connection. It does not wait for the
// reader goroutine.
func (s *Subscription) Close() error {
	if s.Shutdown() {
		s.cancel()
	}
	return nil
}

// Done is closed when the reader goroutine has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) run() {
	defer close(s.done)

	req := s.req.Clone(s.ctx)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		s.fail(fmt.Errorf("connect %s: %w", req.URL.Path, err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.fail(fmt.Errorf("%w: %s", transport.ErrUnexpectedStatus, resp.Status))
		return
	}

	s.logger.Debug("sse stream open", "path", req.URL.Path)
	s.EmitOpen()

	r := NewReader(resp.Body)
	for {
		ev, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = ErrStreamEnded
			}
			s.fail(err)
			return
		}
		s.EmitEvent(ev.Event, ev.Data)
	}
}

func (s *Subscription) fail(err error) {
	if s.ctx.Err() != nil {
		return
	}
	s.logger.Debug("sse stream failed", "error", err)
	s.EmitError(err, true)
}

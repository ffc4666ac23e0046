// Package ws implements transport.Subscription over a WebSocket connection.
package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/leasedesk/notify-stream/internal/logging"
	"github.com/leasedesk/notify-stream/internal/transport"
)

const closeGracePeriod = time.Second

// Frame is one message on the socket. Data is either the JSON payload itself
// or a JSON string containing it.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Payload returns the frame data, unquoting string-encoded payloads.
func (f Frame) Payload() ([]byte, error) {
	trimmed := bytes.TrimSpace(f.Data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return []byte(s), nil
	}
	return trimmed, nil
}

// Subscription is a single WebSocket connection. It does not reconnect by
// itself; a dropped connection is reported as a terminal error.
type Subscription struct {
	*transport.Emitter

	dialer *websocket.Dialer
	url    string
	header http.Header
	logger logging.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	done      chan struct{}

	mu   sync.Mutex
	conn *websocket.Conn
}

var _ transport.Subscription = (*Subscription)(nil)

// New prepares a subscription to url. Nothing is dialed until Start.
func New(dialer *websocket.Dialer, url string, header http.Header, logger logging.Logger) *Subscription {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	if logger == nil {
		logger = logging.GetGlobal()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Subscription{
		Emitter: transport.NewEmitter(),
		dialer:  dialer,
		url:     url,
		header:  header,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Start dials in the background.
func (s *Subscription) Start() {
	s.startOnce.Do(func() {
		go s.run()
	})
}

// Done is closed when the reader goroutine has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close sends a close frame and drops the connection without waiting for the
// reader goroutine.
func (s *Subscription) Close() error {
	if !s.Shutdown() {
		return nil
	}
	s.cancel()
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
	return conn.Close()
}

func (s *Subscription) run() {
	defer close(s.done)

	conn, resp, err := s.dialer.DialContext(s.ctx, s.url, s.header)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("%w: %s", transport.ErrUnexpectedStatus, resp.Status)
		}
		s.fail(fmt.Errorf("dial: %w", err))
		return
	}

	s.mu.Lock()
	if s.IsShutdown() {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conn = conn
	s.mu.Unlock()

	s.logger.Debug("websocket open", "url", s.url)
	s.EmitOpen()

	for {
		msgType, message, err := conn.ReadMessage()
		if err != nil {
			s.fail(err)
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		var frame Frame
		if err := json.Unmarshal(message, &frame); err != nil || frame.Event == "" {
			s.logger.Warn("dropping malformed websocket frame", "error", err, "size", len(message))
			continue
		}
		payload, err := frame.Payload()
		if err != nil {
			s.logger.Warn("dropping websocket frame with bad data", "event", frame.Event, "error", err)
			continue
		}
		s.EmitEvent(frame.Event, payload)
	}
}

func (s *Subscription) fail(err error) {
	if s.ctx.Err() != nil {
		return
	}
	s.logger.Debug("websocket failed", "error", err)
	s.EmitError(err, true)
}

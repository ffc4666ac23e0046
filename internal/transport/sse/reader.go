// Package sse implements transport.Subscription over Server-Sent Events.
package sse

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// DefaultEvent is the event type of a message without an "event:" field.
const DefaultEvent = "message"

// MaxLineSize bounds a single line of the stream, terminator included, and
// the accumulated data of one event.
const MaxLineSize = 4 << 20

// ErrLineTooLong is returned when a line exceeds the reader's limit.
var ErrLineTooLong = errors.New("sse: line too long")

// Event is one dispatched server-sent event.
type Event struct {
	ID    string
	Event string
	Data  []byte
	// Retry is the reconnection time requested by the server, zero if absent.
	Retry time.Duration
}

// Reader decodes an event stream.
type Reader struct {
	scanner *bufio.Scanner
	maxLine int
	lastID  string
}

// NewReader returns a Reader decoding r with lines capped at MaxLineSize.
func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, MaxLineSize)
}

// NewReaderSize returns a Reader decoding r with lines capped at maxLine bytes.
func NewReaderSize(r io.Reader, maxLine int) *Reader {
	if maxLine <= 0 {
		maxLine = MaxLineSize
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(4096, maxLine)), maxLine)
	scanner.Split(scanLines)
	return &Reader{scanner: scanner, maxLine: maxLine}
}

// scanLines splits on CRLF, LF or CR. Tokens keep their terminator so an
// unterminated final line can be told apart.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i+1], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i+2], nil
			}
			return i + 1, data[:i+1], nil
		}
		if atEOF {
			return i + 1, data[:i+1], nil
		}
		// lone CR at the end of the buffer: wait for a possible LF
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// LastEventID returns the last id seen on the stream.
func (r *Reader) LastEventID() string {
	return r.lastID
}

// Next returns the next event. A partial event at end of input is discarded
// and io.EOF returned.
func (r *Reader) Next() (Event, error) {
	var (
		data    bytes.Buffer
		hasData bool
		ev      Event
	)
	for {
		if !r.scanner.Scan() {
			err := r.scanner.Err()
			if errors.Is(err, bufio.ErrTooLong) {
				return Event{}, fmt.Errorf("%w: limit %d bytes", ErrLineTooLong, r.maxLine)
			}
			if err != nil {
				return Event{}, err
			}
			return Event{}, io.EOF
		}
		raw := r.scanner.Text()
		line := strings.TrimRight(raw, "\r\n")
		if len(line) == len(raw) {
			// unterminated line
			return Event{}, io.EOF
		}

		if line == "" {
			if !hasData {
				ev.Event = ""
				continue
			}
			ev.ID = r.lastID
			ev.Data = bytes.TrimSuffix(data.Bytes(), []byte("\n"))
			if ev.Event == "" {
				ev.Event = DefaultEvent
			}
			return ev, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			ev.Event = value
		case "data":
			if data.Len()+len(value) > r.maxLine {
				return Event{}, fmt.Errorf("%w: event data exceeds %d bytes", ErrLineTooLong, r.maxLine)
			}
			data.WriteString(value)
			data.WriteByte('\n')
			hasData = true
		case "id":
			if !strings.ContainsRune(value, 0) {
				r.lastID = value
			}
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
				ev.Retry = time.Duration(ms) * time.Millisecond
			}
		}
	}
}

// Package errors reports command failures on the console, with a hint for
// the causes a user can fix.
package errors

import (
	"context"
	stderrors "errors"
	"net"
	"net/url"
	"sync"

	"github.com/leasedesk/notify-stream/internal/domain"
	"github.com/leasedesk/notify-stream/internal/transport"
)

// ErrorHandler is the interface for reporting command errors.
type ErrorHandler interface {
	Report(err error)
}

// ColorOutput is the console the handler writes to.
type ColorOutput interface {
	Error(msgs ...string)
	LogInfo(msgs ...string)
}

// CLIHandler prints errors and hints through ColorOutput.
type CLIHandler struct {
	colors ColorOutput
	mu     sync.Mutex
}

var _ ErrorHandler = (*CLIHandler)(nil)

// NewCLIHandler returns a handler writing to colors.
func NewCLIHandler(colors ColorOutput) *CLIHandler {
	return &CLIHandler{colors: colors}
}

// Report prints err followed by its hint, if any. A nil error is ignored.
func (h *CLIHandler) Report(err error) {
	if err == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.colors.Error(err.Error())
	if hint := Hint(err); hint != "" {
		h.colors.LogInfo("Hint: " + hint)
	}
}

// Hint returns advice for known failure causes, or "".
func Hint(err error) string {
	var netErr net.Error
	var urlErr *url.Error
	switch {
	case stderrors.Is(err, domain.ErrNotificationNotFound):
		return "the notification does not exist for this tenant; check the id with 'notify-stream list'"
	case stderrors.Is(err, transport.ErrUnexpectedStatus):
		return "the backend refused the request; check api_base_url and auth_token"
	case stderrors.Is(err, context.DeadlineExceeded):
		return "the backend did not answer in time; raise request_timeout_ms"
	case stderrors.As(err, &netErr) && netErr.Timeout():
		return "the backend did not answer in time; raise request_timeout_ms"
	case stderrors.As(err, &urlErr):
		return "the backend is unreachable; check api_base_url"
	}
	return ""
}

package app

import (
	"context"
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/leasedesk/notify-stream/internal/colors"
	"github.com/leasedesk/notify-stream/internal/stream"
	"github.com/leasedesk/notify-stream/internal/tui/state"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	got tea.Model
	err error
}

func (s *stubRunner) Run(model tea.Model) error {
	s.got = model
	return s.err
}

type stubController struct{}

func (stubController) Subscribe(int) (<-chan stream.State, func()) {
	ch := make(chan stream.State, 1)
	ch <- stream.State{Status: stream.StatusDisconnected}
	return ch, func() {}
}
func (stubController) MarkAsRead(context.Context, string) {}
func (stubController) Reconnect()                         {}

func TestClientRunUsesRunner(t *testing.T) {
	runner := &stubRunner{}
	c := NewClient(runner)
	require.NoError(t, c.Run(stubController{}, state.WithUnreadOnly(true)))
	require.IsType(t, &state.Model{}, runner.got)
}

func TestClientRunReportsError(t *testing.T) {
	restore := colors.SetOutput(io.Discard, io.Discard)
	defer restore()

	boom := errors.New("no tty")
	c := NewClient(&stubRunner{err: boom})
	require.ErrorIs(t, c.Run(stubController{}), boom)
}

func TestNewClientDefaultsRunner(t *testing.T) {
	c := NewClient(nil)
	require.IsType(t, &DefaultProgramRunner{}, c.runner)
}

package transport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiltersQuery(t *testing.T) {
	unread := false
	assert.Empty(t, Filters{}.Query().Encode())
	assert.Equal(t, "category=payment&isRead=false", Filters{Category: "payment", IsRead: &unread}.Query().Encode())
}

func TestReadyStateString(t *testing.T) {
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "unknown", ReadyState(9).String())
}

func TestEmitterDelivery(t *testing.T) {
	e := NewEmitter()
	require.Equal(t, Connecting, e.ReadyState())

	var opened int
	var got []string
	var errStates []ReadyState
	e.OnOpen(func() { opened++ })
	e.OnEvent("a", func(data []byte) { got = append(got, "a:"+string(data)) })
	e.OnEvent("b", func(data []byte) { got = append(got, "b:"+string(data)) })
	e.OnError(func(err error) { errStates = append(errStates, e.ReadyState()) })

	e.EmitOpen()
	assert.Equal(t, Open, e.ReadyState())
	e.EmitEvent("a", []byte("1"))
	e.EmitEvent("c", []byte("dropped"))
	e.EmitEvent("b", []byte("2"))
	e.EmitError(errors.New("blip"), false)
	e.EmitError(errors.New("gone"), true)

	assert.Equal(t, 1, opened)
	assert.Equal(t, []string{"a:1", "b:2"}, got)
	assert.Equal(t, []ReadyState{Open, Closed}, errStates)
}

func TestEmitterSilentAfterShutdown(t *testing.T) {
	e := NewEmitter()
	calls := 0
	e.OnOpen(func() { calls++ })
	e.OnEvent("a", func([]byte) { calls++ })
	e.OnError(func(error) { calls++ })

	assert.True(t, e.Shutdown())
	assert.False(t, e.Shutdown())
	assert.True(t, e.IsShutdown())

	e.EmitOpen()
	e.EmitEvent("a", nil)
	e.EmitError(errors.New("x"), true)
	assert.Zero(t, calls)
	assert.Equal(t, Closed, e.ReadyState())
}

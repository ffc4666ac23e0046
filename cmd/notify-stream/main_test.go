package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/leasedesk/notify-stream/internal/domain"
	"github.com/leasedesk/notify-stream/internal/stream"
	"github.com/leasedesk/notify-stream/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExitCodes(t *testing.T) {
	assert.Equal(t, 0, run(func() error { return nil }))
	assert.Equal(t, 1, run(func() error { return errors.New("boom") }))
}

func TestVersionCmd(t *testing.T) {
	c := NewVersionCmd()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetArgs([]string{})

	require.NoError(t, c.Execute())
	assert.Equal(t, "notify-stream version "+version.String()+"\n", out.String())
}

func TestResolveFilters(t *testing.T) {
	f := resolveFilters("payment", true)
	assert.Equal(t, "payment", f.Category)
	require.NotNil(t, f.IsRead)
	assert.False(t, *f.IsRead)

	f = resolveFilters("alert", false)
	assert.Nil(t, f.IsRead)
}

func TestResolveTenantPrefersFlag(t *testing.T) {
	tenant, err := resolveTenant("t9")
	require.NoError(t, err)
	assert.Equal(t, "t9", tenant)
}

func TestCacheEnabledFlagWins(t *testing.T) {
	assert.False(t, cacheEnabled(true, false))
	assert.True(t, cacheEnabled(true, true))
}

func TestBackoffFromConfigDefaults(t *testing.T) {
	assert.Equal(t, stream.DefaultBackoff(), backoffFromConfig())
}

type fakeSource struct {
	states chan stream.State
}

func (f *fakeSource) Subscribe(int) (<-chan stream.State, func()) {
	return f.states, func() { close(f.states) }
}

type fakeCache struct {
	saves []string
}

func (c *fakeCache) SaveView(_ context.Context, tenantID string, notifications, _ []domain.Notification) error {
	c.saves = append(c.saves, tenantID+":"+strings.Repeat("x", len(notifications)))
	return nil
}

func (c *fakeCache) LoadStream(context.Context, string, string) ([]domain.Notification, error) {
	return nil, nil
}

func (c *fakeCache) SavedAt(context.Context, string, string) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

func (c *fakeCache) MarkRead(context.Context, string, string) error { return nil }

func (c *fakeCache) Close() error { return nil }

func TestPersistStatesSavesSyncedStatesOnly(t *testing.T) {
	source := &fakeSource{states: make(chan stream.State, 4)}
	cache := &fakeCache{}
	stop := persistStates(context.Background(), source, cache)

	n := domain.Notification{ID: "n1"}
	source.states <- stream.State{TenantID: "t1", Status: stream.StatusConnecting}
	source.states <- stream.State{TenantID: "t1", Status: stream.StatusConnected}
	source.states <- stream.State{TenantID: "t1", Status: stream.StatusConnected, Synced: true, Notifications: []domain.Notification{n}}
	source.states <- stream.State{TenantID: "t1", Status: stream.StatusError, Synced: true}
	stop()

	assert.Equal(t, []string{"t1:x"}, cache.saves)
}

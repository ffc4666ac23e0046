package stream

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/leasedesk/notify-stream/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type markerFunc func(ctx context.Context, tenantID, id string) error

func (f markerFunc) MarkAsRead(ctx context.Context, tenantID, id string) error {
	return f(ctx, tenantID, id)
}

var okMarker = markerFunc(func(context.Context, string, string) error { return nil })

func note(id string) domain.Notification {
	return domain.Notification{ID: domain.ID(id), Title: "title " + id, CreatedAt: "2024-05-01T10:00:00Z"}
}

func ids(list []domain.Notification) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = string(n.ID)
	}
	return out
}

func TestApplyIncrementalPrepends(t *testing.T) {
	s := NewStore()
	s.ApplySnapshot(Personal, []domain.Notification{note("a"), note("b")})
	for i := 0; i < 10; i++ {
		n := note(fmt.Sprintf("n%d", i))
		s.ApplyIncremental(Personal, n)
		list := s.Notifications()
		require.Len(t, list, 2+i+1)
		assert.Equal(t, n.ID, list[0].ID)
	}
	assert.Empty(t, s.Announcements())
}

func TestApplyIncrementalDeduplicates(t *testing.T) {
	s := NewStore()
	s.ApplySnapshot(Personal, []domain.Notification{note("a"), note("b")})
	require.NoError(t, s.MarkAsRead(context.Background(), okMarker, "t", "b"))

	updated := note("b")
	updated.Title = "updated"
	s.ApplyIncremental(Personal, updated)

	list := s.Notifications()
	assert.Equal(t, []string{"b", "a"}, ids(list))
	assert.Equal(t, "updated", list[0].Title)
	assert.True(t, list[0].IsRead)
}

func TestApplySnapshotReplacesAndKeepsRead(t *testing.T) {
	s := NewStore()
	s.ApplySnapshot(Announcements, []domain.Notification{note("x"), note("y")})
	require.NoError(t, s.MarkAsRead(context.Background(), okMarker, "t", "x"))

	input := []domain.Notification{note("z"), note("x")}
	s.ApplySnapshot(Announcements, input)
	input[0].Title = "mutated by caller"

	list := s.Announcements()
	assert.Equal(t, []string{"z", "x"}, ids(list))
	assert.Equal(t, "title z", list[0].Title)
	assert.True(t, list[1].IsRead)
	assert.False(t, list[0].IsRead)
}

func TestMarkAsReadTouchesOnlyMatchingList(t *testing.T) {
	s := NewStore()
	s.ApplySnapshot(Personal, []domain.Notification{note("n1"), note("n2")})
	s.ApplySnapshot(Announcements, []domain.Notification{note("a1")})

	require.NoError(t, s.MarkAsRead(context.Background(), okMarker, "t", "n1"))
	assert.True(t, s.Notifications()[0].IsRead)
	assert.False(t, s.Notifications()[1].IsRead)
	assert.False(t, s.Announcements()[0].IsRead)

	require.NoError(t, s.MarkAsRead(context.Background(), okMarker, "t", "a1"))
	assert.True(t, s.Announcements()[0].IsRead)
	assert.False(t, s.Notifications()[1].IsRead)
}

func TestMarkAsReadUnknownIDIsNoop(t *testing.T) {
	s := NewStore()
	s.ApplySnapshot(Personal, []domain.Notification{note("n1")})
	before := s.Notifications()

	assert.NotPanics(t, func() {
		require.NoError(t, s.MarkAsRead(context.Background(), okMarker, "t", "missing"))
	})
	assert.Equal(t, before, s.Notifications())
}

func TestMarkAsReadFailureLeavesState(t *testing.T) {
	s := NewStore()
	s.ApplySnapshot(Personal, []domain.Notification{note("n1")})
	boom := errors.New("boom")

	err := s.MarkAsRead(context.Background(), markerFunc(func(context.Context, string, string) error {
		return boom
	}), "t", "n1")
	assert.ErrorIs(t, err, boom)
	assert.False(t, s.Notifications()[0].IsRead)
}

func TestMarkAsReadAfterResetIsDiscarded(t *testing.T) {
	s := NewStore()
	s.ApplySnapshot(Personal, []domain.Notification{note("n1")})

	err := s.MarkAsRead(context.Background(), markerFunc(func(context.Context, string, string) error {
		s.Reset()
		s.ApplySnapshot(Personal, []domain.Notification{note("n1")})
		return nil
	}), "t", "n1")
	require.NoError(t, err)
	assert.False(t, s.Notifications()[0].IsRead)
}

func TestStoreReadersGetCopies(t *testing.T) {
	s := NewStore()
	s.ApplySnapshot(Personal, []domain.Notification{note("n1")})
	list := s.Notifications()
	list[0].IsRead = true

	assert.False(t, s.Notifications()[0].IsRead)

	found, ok := s.Find("n1")
	require.True(t, ok)
	assert.Equal(t, "title n1", found.Title)
	_, ok = s.Find("nope")
	assert.False(t, ok)

	s.Reset()
	assert.NotNil(t, s.Notifications())
	assert.Empty(t, s.Notifications())
}

func TestApplySnapshotDropsRepeatedIDs(t *testing.T) {
	s := NewStore()
	first := note("n1")
	first.Title = "first"
	s.ApplySnapshot(Personal, []domain.Notification{first, note("n1"), note("n2")})

	list := s.Notifications()
	assert.Equal(t, []string{"n1", "n2"}, ids(list))
	assert.Equal(t, "first", list[0].Title)

	s.ApplyIncremental(Personal, note("n1"))
	assert.Equal(t, []string{"n1", "n2"}, ids(s.Notifications()))
}

func TestMarkAsReadAtStaleEpochSkipsLocalMark(t *testing.T) {
	s := NewStore()
	s.ApplySnapshot(Personal, []domain.Notification{note("n1")})
	epoch := s.Epoch()

	s.Reset()
	s.ApplySnapshot(Personal, []domain.Notification{note("n1")})
	assert.NotEqual(t, epoch, s.Epoch())

	var tenant string
	err := s.MarkAsReadAt(context.Background(), epoch, markerFunc(func(_ context.Context, tenantID, _ string) error {
		tenant = tenantID
		return nil
	}), "tenant-a", "n1")
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", tenant)
	assert.False(t, s.Notifications()[0].IsRead)

	require.NoError(t, s.MarkAsReadAt(context.Background(), s.Epoch(), okMarker, "tenant-b", "n1"))
	assert.True(t, s.Notifications()[0].IsRead)
}

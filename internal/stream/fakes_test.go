package stream

import (
	"context"
	"errors"
	"time"

	"github.com/leasedesk/notify-stream/internal/transport"
	"github.com/stretchr/testify/mock"
)

var errConnectionLost = errors.New("connection lost")

// fakeSub is a subscription driven by the test. Close does not silence the
// emitter so tests can deliver callbacks for released handles.
type fakeSub struct {
	*transport.Emitter
	tenantID string
	filters  transport.Filters
	started  bool
	closed   int
}

func (f *fakeSub) Start() { f.started = true }

func (f *fakeSub) Close() error {
	f.closed++
	return nil
}

func (f *fakeSub) fail() { f.EmitError(errConnectionLost, true) }

func (f *fakeSub) send(channel, payload string) { f.EmitEvent(channel, []byte(payload)) }

// fakeService records every subscription it creates. MarkAsRead goes
// through testify/mock.
type fakeService struct {
	mock.Mock
	personal      []*fakeSub
	announcements []*fakeSub
	personalErr   error
}

func (s *fakeService) PersonalStream(tenantID string, filters transport.Filters) (transport.Subscription, error) {
	if s.personalErr != nil {
		return nil, s.personalErr
	}
	sub := &fakeSub{Emitter: transport.NewEmitter(), tenantID: tenantID, filters: filters}
	s.personal = append(s.personal, sub)
	return sub, nil
}

func (s *fakeService) AnnouncementsStream(tenantID string, filters transport.Filters) (transport.Subscription, error) {
	sub := &fakeSub{Emitter: transport.NewEmitter(), tenantID: tenantID, filters: filters}
	s.announcements = append(s.announcements, sub)
	return sub, nil
}

func (s *fakeService) MarkAsRead(ctx context.Context, tenantID, id string) error {
	args := s.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (s *fakeService) lastPersonal() *fakeSub { return s.personal[len(s.personal)-1] }

func (s *fakeService) lastAnnouncements() *fakeSub {
	return s.announcements[len(s.announcements)-1]
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// fakeClock never fires on its own; tests call fire.
type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{delay: d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

// fire runs the last scheduled callback even if it was stopped, as a timer
// racing with Stop would.
func (c *fakeClock) fire() {
	c.timers[len(c.timers)-1].fn()
}

func (c *fakeClock) delays() []time.Duration {
	out := make([]time.Duration, len(c.timers))
	for i, t := range c.timers {
		out[i] = t.delay
	}
	return out
}

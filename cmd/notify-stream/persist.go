package main

import (
	"context"

	"github.com/leasedesk/notify-stream/internal/logging"
	"github.com/leasedesk/notify-stream/internal/stream"
)

const persistBuffer = 4

// stateSource is the part of stream.Client that publishes states.
type stateSource interface {
	Subscribe(buffer int) (<-chan stream.State, func())
}

// persistStates saves the view of every connected state into cache. The
// returned func unsubscribes and waits for the last save.
func persistStates(ctx context.Context, source stateSource, cache Cache) (stop func()) {
	states, unsubscribe := source.Subscribe(persistBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for s := range states {
			// states before the first snapshot carry empty lists
			if !s.Synced || !s.IsConnected() {
				continue
			}
			if err := cache.SaveView(ctx, s.TenantID, s.Notifications, s.Announcements); err != nil {
				logging.Warn("failed to save notifications cache", "tenant", s.TenantID, "error", err)
			}
		}
	}()
	return func() {
		unsubscribe()
		<-done
	}
}

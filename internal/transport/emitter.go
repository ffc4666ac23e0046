package transport

import (
	"sync"
	"sync/atomic"
)

// Emitter is the listener registry shared by subscription implementations.
// Nothing is emitted once Shutdown has been called.
type Emitter struct {
	mu     sync.RWMutex
	events map[string][]func([]byte)
	errs   []func(error)
	opens  []func()

	state  atomic.Int32
	closed atomic.Bool
}

// NewEmitter returns an emitter in the Connecting state.
func NewEmitter() *Emitter {
	e := &Emitter{events: make(map[string][]func([]byte))}
	e.state.Store(int32(Connecting))
	return e
}

// OnEvent registers fn for a named channel.
func (e *Emitter) OnEvent(channel string, fn func(data []byte)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events[channel] = append(e.events[channel], fn)
}

// OnError registers fn for transport errors.
func (e *Emitter) OnError(fn func(err error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs = append(e.errs, fn)
}

// OnOpen registers fn for the open notification.
func (e *Emitter) OnOpen(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opens = append(e.opens, fn)
}

// ReadyState reports the current state.
func (e *Emitter) ReadyState() ReadyState {
	return ReadyState(e.state.Load())
}

// Shutdown marks the emitter closed. It reports whether this call closed it.
func (e *Emitter) Shutdown() bool {
	e.state.Store(int32(Closed))
	return e.closed.CompareAndSwap(false, true)
}

// IsShutdown reports whether Shutdown was called.
func (e *Emitter) IsShutdown() bool {
	return e.closed.Load()
}

// EmitOpen moves to Open and notifies open listeners.
func (e *Emitter) EmitOpen() {
	if e.closed.Load() {
		return
	}
	e.state.Store(int32(Open))
	e.mu.RLock()
	fns := append([]func(){}, e.opens...)
	e.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// EmitEvent delivers data to the listeners of channel. Events on channels
// without listeners are dropped.
func (e *Emitter) EmitEvent(channel string, data []byte) {
	if e.closed.Load() {
		return
	}
	e.mu.RLock()
	fns := append([]func([]byte){}, e.events[channel]...)
	e.mu.RUnlock()
	for _, fn := range fns {
		fn(data)
	}
}

// EmitError notifies error listeners. A terminal error moves to Closed first
// so listeners observe ReadyState() == Closed.
func (e *Emitter) EmitError(err error, terminal bool) {
	if e.closed.Load() {
		return
	}
	if terminal {
		e.state.Store(int32(Closed))
	}
	e.mu.RLock()
	fns := append([]func(error){}, e.errs...)
	e.mu.RUnlock()
	for _, fn := range fns {
		fn(err)
	}
}

// Package mainloop provides the single goroutine that owns list state.
// Background work hands its results back through a Poster so that every
// mutation of coordinator and adapter state happens on one goroutine.
package mainloop

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/FranLegon/cloud-drives-search/internal/logger"
)

// Poster schedules fn to run on the owning goroutine.
type Poster interface {
	Post(fn func())
}

// PosterFunc adapts a function to the Poster interface.
type PosterFunc func(fn func())

func (f PosterFunc) Post(fn func()) { f(fn) }

// Loop is an unbounded FIFO of funcs executed serially by Run.
// Posting never blocks and never drops work.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// New creates an idle loop.
func New() *Loop {
	return &Loop{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// Post appends fn to the queue. Funcs posted after Stop are discarded.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.stopped:
		return
	default:
	}

	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Stop makes Run return after the func it is currently executing.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.stopped) })
}

// Run executes posted funcs on the calling goroutine until ctx is done or
// Stop is called. A panicking func is logged and does not end the loop.
func (l *Loop) Run(ctx context.Context) error {
	for {
		fn, ok := l.next()
		if ok {
			l.exec(fn)
			select {
			case <-l.stopped:
				return nil
			default:
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stopped:
			return nil
		case <-l.wake:
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Main loop task panicked: %v\n%s", r, debug.Stack())
		}
	}()
	fn()
}

// Pending returns the number of queued funcs.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

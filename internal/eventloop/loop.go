// Package eventloop runs callbacks on a single logical thread. The speech
// driver and the rehearsal sequencer keep all of their state on one loop,
// so engine completions and phase timers never race with user actions.
package eventloop

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/parlons/internal/logger"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the
	// call stopped the timer before it fired.
	Stop() bool
}

// Scheduler is what loop-bound components need: run a func on the loop
// soon, or after a delay.
type Scheduler interface {
	Post(fn func())
	AfterFunc(d time.Duration, fn func()) Timer
}

// Compile-time interface checks.
var (
	_ Scheduler = (*Loop)(nil)
	_ Scheduler = (*Manual)(nil)
)

// Loop is a goroutine-backed Scheduler. Posted funcs run one at a time in
// FIFO order on the loop goroutine.
type Loop struct {
	log *logger.Logger

	mu      sync.Mutex
	queue   []func()
	notify  chan struct{}
	running bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a loop. Call Start to begin processing.
func New(log *logger.Logger) *Loop {
	return &Loop{
		log:    log,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Start begins the loop goroutine. Non-blocking.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running || l.stopped {
		l.log.Warn("eventloop: already started")
		return
	}
	childCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.running = true

	go l.run(childCtx)
	l.log.Debug("eventloop: started")
}

// Stop ends the loop. Funcs still queued are dropped. Safe to call more
// than once.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	wasRunning := l.running
	cancel := l.cancel
	l.queue = nil
	l.mu.Unlock()

	if wasRunning {
		cancel()
		<-l.done
	} else {
		close(l.done)
	}
	l.log.Debug("eventloop: stopped")
}

// Post queues fn to run on the loop. Posting after Stop is a no-op.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.notify <- struct{}{}:
	default: // already signaled
	}
}

// AfterFunc runs fn on the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() { l.Post(fn) })
}

// Do runs fn on the loop and waits for it to finish. It must not be called
// from the loop goroutine itself. Returns false if the loop stopped first.
func (l *Loop) Do(fn func()) bool {
	ran := make(chan struct{})
	l.Post(func() {
		fn()
		close(ran)
	})
	select {
	case <-ran:
		return true
	case <-l.done:
		return false
	}
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.notify:
			l.drain(ctx)
		}
	}
}

// drain runs everything queued, including funcs posted while draining.
func (l *Loop) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		fn()
	}
}

package reactive

import (
	"context"
	"sync"
)

// Dispatcher delivers callbacks onto the goroutine that owns view state.
// Post must not block for long and must be safe to call from any goroutine.
// Callbacks run one at a time, in the order they were posted.
type Dispatcher interface {
	Post(fn func())
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(fn func())

// Post calls f(fn).
func (f DispatcherFunc) Post(fn func()) { f(fn) }

// Loop is a Dispatcher backed by a dedicated goroutine. Use Do to run code
// on the loop (for example to call setters on a view) and wait for it.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	done    chan struct{}
}

// NewLoop starts a loop that runs until ctx is cancelled.
func NewLoop(ctx context.Context) *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go l.run(ctx)
	return l
}

// Post queues fn. Callbacks posted after the loop stopped are dropped.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	select {
	case <-l.done:
		l.mu.Unlock()
		return
	default:
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do runs fn on the loop and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-l.done:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the loop goroutine has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) run(ctx context.Context) {
	defer func() {
		l.mu.Lock()
		close(l.done)
		l.pending = nil
		l.mu.Unlock()
	}()
	for {
		for {
			fn := l.next()
			if fn == nil {
				break
			}
			fn()
		}
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
	}
}

func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) == 0 {
		return nil
	}
	fn := l.pending[0]
	l.pending[0] = nil
	l.pending = l.pending[1:]
	return fn
}

// Queue is a Dispatcher that only runs callbacks when drained. Tests use it
// to decide exactly when asynchronous completions are observed.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	notify  chan struct{}
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Post appends fn to the queue.
func (q *Queue) Post(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Len reports the number of callbacks waiting to run.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain runs queued callbacks on the calling goroutine until the queue is
// empty, including callbacks posted while draining. It returns how many ran.
func (q *Queue) Drain() int {
	ran := 0
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return ran
		}
		fn := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()
		fn()
		ran++
	}
}

// Wait blocks until at least n callbacks are queued or ctx ends.
func (q *Queue) Wait(ctx context.Context, n int) error {
	for {
		if q.Len() >= n {
			return nil
		}
		select {
		case <-q.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

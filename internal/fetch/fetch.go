// Package fetch wraps one outstanding asynchronous request with an explicit
// liveness flag.
//
// A Handle is either Live or Cancelled. Cancel does not abort the request;
// it only guarantees that neither the result nor the error is delivered to
// the caller's callbacks afterwards, whatever order responses arrive in.
// Delivery happens through a reactive.Dispatcher and liveness is checked at
// delivery time on the dispatcher's goroutine, so a handle cancelled on that
// goroutine can never deliver later.
package fetch

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/five82/bookshelf/internal/reactive"
)

// State is the lifecycle state of a Handle.
type State int32

const (
	Live State = iota
	Cancelled
)

func (s State) String() string {
	if s == Cancelled {
		return "cancelled"
	}
	return "live"
}

// Handle represents one in-flight request.
type Handle struct {
	id        string
	state     atomic.Int32
	settled   chan struct{}
	delivered atomic.Bool
}

// NewHandle returns a live handle with a fresh id.
func NewHandle() *Handle {
	return &Handle{
		id:      uuid.NewString(),
		settled: make(chan struct{}),
	}
}

// ID identifies the handle; it is sent upstream as the request id.
func (h *Handle) ID() string { return h.id }

// State returns the current state.
func (h *Handle) State() State { return State(h.state.Load()) }

// Live reports whether the handle may still deliver.
func (h *Handle) Live() bool { return h.State() == Live }

// Cancel moves the handle to Cancelled. It is idempotent.
func (h *Handle) Cancel() { h.state.Store(int32(Cancelled)) }

type requestIDKey struct{}

// WithRequestID attaches a handle id to ctx for transports to forward.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the handle id carried by ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Request performs the actual I/O. It runs on its own goroutine.
type Request[T any] func(ctx context.Context) (T, error)

// Callbacks receive the outcome of a request on the dispatcher goroutine.
// OnError runs at most once and only while the handle is live. Either may
// be nil.
type Callbacks[T any] struct {
	OnSuccess func(T)
	OnError   func(error)
	// OnDrop runs instead of the callbacks above when the handle was
	// cancelled before delivery.
	OnDrop func(h *Handle)
}

// Start issues req on a new goroutine and returns its handle. The outcome is
// posted to d and handed to cb only if the handle is still live by then.
func Start[T any](ctx context.Context, d reactive.Dispatcher, req Request[T], cb Callbacks[T]) *Handle {
	h := NewHandle()
	reqCtx := WithRequestID(ctx, h.id)
	go func() {
		res, err := req(reqCtx)
		d.Post(func() {
			defer close(h.settled)
			if !h.Live() {
				if cb.OnDrop != nil {
					cb.OnDrop(h)
				}
				return
			}
			h.delivered.Store(true)
			if err != nil {
				if cb.OnError != nil {
					cb.OnError(err)
				}
				return
			}
			if cb.OnSuccess != nil {
				cb.OnSuccess(res)
			}
		})
	}()
	return h
}

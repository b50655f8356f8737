package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/five82/bookshelf/internal/catalog"
	"github.com/five82/bookshelf/internal/reactive"
	"github.com/five82/bookshelf/internal/record"
	"github.com/five82/bookshelf/internal/state"
)

// ErrTimeout is returned when the catalog does not settle in time.
var ErrTimeout = errors.New("timed out waiting for the catalog")

// Query selects what a headless command reads.
type Query struct {
	SortKey string
	Params  record.Params
	Where   string
	// Timeout bounds the wait; zero waits until ctx ends.
	Timeout time.Duration
}

// List mounts a screen, waits for the first primary sync to settle and
// returns the resulting snapshot. A failed sync is returned as an error
// together with the snapshot.
func (e *Env) List(ctx context.Context, q Query) (state.Snapshot, error) {
	snap, err := e.settle(ctx, q, func(s state.Snapshot) bool { return !s.Loading })
	if err != nil {
		return snap, err
	}
	if snap.LastError != nil {
		return snap, snap.LastError
	}
	if snap.FilterError != nil {
		return snap, fmt.Errorf("where: %w", snap.FilterError)
	}
	return snap, nil
}

// Lookups mounts a screen and waits until every lookup table has settled.
// Lookup failures are not errors: the table is simply empty.
func (e *Env) Lookups(ctx context.Context, timeout time.Duration) (state.Snapshot, error) {
	names := catalog.TableNames(e.Config.Lookups)
	return e.settle(ctx, Query{Timeout: timeout}, func(s state.Snapshot) bool {
		return s.LookupsSettled(names)
	})
}

// settle runs a screen on its own loop until ready holds, then unmounts it.
func (e *Env) settle(ctx context.Context, q Query, ready func(state.Snapshot) bool) (state.Snapshot, error) {
	if q.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.Timeout)
		defer cancel()
	}

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	loop := reactive.NewLoop(loopCtx)

	notifier := catalog.NotifierFunc(func(msg string) {
		e.Logger.Info("notification", "message", msg)
	})

	store := &state.Store{}
	opts := e.ScreenOptions(loop, store, notifier)
	if q.SortKey != "" {
		opts.SortKey = q.SortKey
	}
	opts.Params = q.Params

	var screen *catalog.Screen
	var mountErr error
	if err := loop.Do(ctx, func() {
		screen, mountErr = catalog.Mount(loopCtx, opts)
		if mountErr == nil && q.Where != "" {
			screen.SetWhere(q.Where)
		}
	}); err != nil {
		return state.Snapshot{}, timeoutErr(err)
	}
	if mountErr != nil {
		return state.Snapshot{}, mountErr
	}
	defer func() {
		unmountCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = loop.Do(unmountCtx, screen.Unmount)
	}()

	snap, err := store.Wait(ctx, ready)
	if err != nil {
		return snap, timeoutErr(err)
	}
	return snap, nil
}

func timeoutErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

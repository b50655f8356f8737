package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// dispatchMsg carries callbacks posted by fetch completions and the poller.
// Update runs them in order, so the catalog screen only ever mutates on the
// Bubble Tea event loop.
type dispatchMsg []func()

// programDispatcher queues posted callbacks until the next wait command
// hands them to Update.
type programDispatcher struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
}

func newProgramDispatcher() *programDispatcher {
	return &programDispatcher{wake: make(chan struct{}, 1)}
}

// Post implements reactive.Dispatcher. It never blocks.
func (d *programDispatcher) Post(fn func()) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	d.pending = append(d.pending, fn)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *programDispatcher) take() []func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	fns := d.pending
	d.pending = nil
	return fns
}

// wait returns a command that blocks until something is posted. Update
// re-issues it after every dispatchMsg.
func (d *programDispatcher) wait(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-d.wake:
				if fns := d.take(); len(fns) > 0 {
					return dispatchMsg(fns)
				}
			}
		}
	}
}

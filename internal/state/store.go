package state

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/five82/bookshelf/internal/record"
)

// Snapshot represents the latest catalog state available to views.
type Snapshot struct {
	Collection record.Collection
	// Visible is Collection narrowed by the local filter expression.
	Visible     record.Collection
	SortKey     string
	Params      record.Params
	Where       string
	FilterError error
	Loading     bool

	Lookups     map[string]record.Collection
	LookupReady map[string]bool

	EditTarget string
	HasTarget  bool

	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
	Version             uint64
}

// IsOffline returns true when the data source has failed repeatedly.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// LookupsSettled reports whether every named lookup has completed.
func (s Snapshot) LookupsSettled(names []string) bool {
	for _, name := range names {
		if !s.LookupReady[name] {
			return false
		}
	}
	return true
}

// Store coordinates updates to the snapshot. Each slot has one writer (the
// synchronizer that owns it); readers may be on any goroutine.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	changed  chan struct{}
}

// SetLoading sets the progress flag.
func (s *Store) SetLoading(loading bool) {
	s.mutate(func(snap *Snapshot) { snap.Loading = loading })
}

// Update replaces the collection and its visible projection. When err is
// non-nil the previous data is kept but the error is recorded for visibility.
func (s *Store) Update(collection, visible record.Collection, err error) {
	s.mutate(func(snap *Snapshot) {
		snap.LastUpdated = time.Now()
		if err != nil {
			snap.LastError = err
			snap.ConsecutiveFailures++
			return
		}
		snap.Collection = collection.Clone()
		snap.Visible = visible.Clone()
		snap.LastError = nil
		snap.ConsecutiveFailures = 0
	})
}

// SetVisible replaces the visible projection and the filter state.
func (s *Store) SetVisible(visible record.Collection, where string, filterErr error) {
	s.mutate(func(snap *Snapshot) {
		snap.Visible = visible.Clone()
		snap.Where = where
		snap.FilterError = filterErr
	})
}

// SetQuery records the sort key and filter parameters currently in effect.
func (s *Store) SetQuery(sortKey string, params record.Params) {
	s.mutate(func(snap *Snapshot) {
		snap.SortKey = sortKey
		snap.Params = params.Clone()
	})
}

// ResetLookups replaces the lookup set with empty, unsettled tables.
func (s *Store) ResetLookups(names []string) {
	s.mutate(func(snap *Snapshot) {
		snap.Lookups = make(map[string]record.Collection, len(names))
		snap.LookupReady = make(map[string]bool, len(names))
		for _, name := range names {
			snap.Lookups[name] = record.Collection{}
			snap.LookupReady[name] = false
		}
	})
}

// SetLookup stores one lookup table and marks it ready.
func (s *Store) SetLookup(name string, items record.Collection) {
	s.mutate(func(snap *Snapshot) {
		if snap.Lookups == nil {
			snap.Lookups = make(map[string]record.Collection)
		}
		if snap.LookupReady == nil {
			snap.LookupReady = make(map[string]bool)
		}
		snap.Lookups[name] = items.Clone()
		snap.LookupReady[name] = true
	})
}

// SetEditTarget sets or clears the record in edit focus.
func (s *Store) SetEditTarget(id string, ok bool) {
	s.mutate(func(snap *Snapshot) {
		snap.EditTarget = id
		snap.HasTarget = ok
	})
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Collection = s.snapshot.Collection.Clone()
	snap.Visible = s.snapshot.Visible.Clone()
	snap.Params = s.snapshot.Params.Clone()
	snap.Lookups = make(map[string]record.Collection, len(s.snapshot.Lookups))
	for name, items := range s.snapshot.Lookups {
		snap.Lookups[name] = items.Clone()
	}
	snap.LookupReady = maps.Clone(s.snapshot.LookupReady)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// Changed returns a channel that is closed on the next update.
func (s *Store) Changed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.changed == nil {
		s.changed = make(chan struct{})
	}
	return s.changed
}

func (s *Store) mutate(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.snapshot)
	s.snapshot.Version++
	if s.changed != nil {
		close(s.changed)
		s.changed = nil
	}
}

// Wait blocks until ready returns true for the current snapshot or ctx ends.
func (s *Store) Wait(ctx context.Context, ready func(Snapshot) bool) (Snapshot, error) {
	for {
		changed := s.Changed()
		snap := s.Snapshot()
		if ready(snap) {
			return snap, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

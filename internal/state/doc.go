// Package state provides thread-safe storage for the catalog view's slots.
//
// # Overview
//
// The catalog core mutates its slots (collection, loading flag, each lookup
// table, the edit target) on a single owning goroutine. Presentation code
// reads them from wherever it runs: the bubbletea program, a headless CLI
// command waiting for a sync to settle, or a test. Store is the meeting
// point.
//
// # Slots and writers
//
//	Slot                  Writer
//	─────────────────     ──────────────────────────────
//	Collection, Visible   collection synchronizer / re-sort engine
//	Loading               collection synchronizer
//	SortKey, Params       catalog.Screen setters
//	Where, FilterError    local filter effect
//	Lookups[name]         lookup synchronizer (one per table)
//	EditTarget            detail-target resolver
//
// No two components write the same slot.
//
// # Update Semantics
//
//	// Success case: replace the collection
//	store.Update(collection, visible, nil)
//	→ snapshot.Collection = collection
//	→ snapshot.LastError = nil
//	→ snapshot.ConsecutiveFailures = 0
//
//	// Error case: keep old data, record error
//	store.Update(nil, nil, err)
//	→ snapshot.Collection = <unchanged>
//	→ snapshot.LastError = err
//	→ snapshot.ConsecutiveFailures++
//
// Failures therefore degrade to "keep last good state".
//
// # Defensive Copying
//
// Update and Snapshot clone collections, records, parameter maps and lookup
// tables, so a caller can never mutate what another goroutine is reading.
//
// # Change Notification
//
// Changed returns a channel closed by the next mutation, and Wait builds a
// predicate wait on top of it:
//
//	snap, err := store.Wait(ctx, func(s state.Snapshot) bool { return !s.Loading })
//
// The zero Store is ready to use.
package state

// Package catalog implements the data-synchronization core of the catalog
// browsing screen.
//
// # Overview
//
// A Screen owns a small set of state slots and keeps them consistent with a
// remote Source:
//
//   - the primary collection, re-fetched whenever the filter parameters change
//   - one lookup table per LookupTable, fetched once at mount
//   - the display order, re-derived locally when only the sort key changes
//   - the visible projection, re-derived locally from a filter expression
//   - the edit target, derived from an external identifier
//
// Each slot is written by exactly one effect and published to a state.Store.
//
// # Data Flow
//
//	SetFilterParameters(p)
//	  └─> Scheduler sees params changed
//	        ├─> cleanup: previous fetch.Handle.Cancel()
//	        └─> run: Loading=true, fetch.Start(FetchRecords(p))
//	                   └─> Dispatcher.Post(deliver)
//	                         ├─ handle cancelled → dropped
//	                         ├─ ok, non-empty    → sort by key captured at start, Loading=false
//	                         ├─ ok, empty/absent → empty collection, Loading=false
//	                         └─ failure          → keep collection, Loading=false, Notifier
//
//	SetSortKey(k)      └─> Scheduler sees key changed → sort in memory, no fetch
//	SetWhere(expr)     └─> Scheduler sees expr changed → filter in memory, no fetch
//	SetIdentifier(id)  └─> Scheduler sees id changed  → EditTarget = id or none
//
// # Stale Responses
//
// Correctness under racing responses is structural: the previous handle is
// cancelled before the next request is issued, and a cancelled handle never
// delivers. Arrival order does not matter and no timestamps are compared.
//
// # Threading
//
// Mount, the setters, Refresh and Unmount run on the goroutine behind the
// Dispatcher passed in Options; fetch completions are posted to the same
// goroutine. The Store may be read from anywhere.
package catalog

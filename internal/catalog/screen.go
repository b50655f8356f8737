package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/five82/bookshelf/internal/fetch"
	"github.com/five82/bookshelf/internal/reactive"
	"github.com/five82/bookshelf/internal/record"
	"github.com/five82/bookshelf/internal/state"
)

// DefaultSortKey orders the collection until the view picks another field.
const DefaultSortKey = "Title"

const (
	effectLookupPrefix = "lookup:"
	effectCollection   = "collection"
	effectResort       = "resort"
	effectWhere        = "where"
	effectTarget       = "target"
)

// Options configure a Screen.
type Options struct {
	Source     Source
	Dispatcher reactive.Dispatcher
	// Notifier receives primary-collection failures. Optional.
	Notifier Notifier
	// Store receives every slot update. A new Store is used when nil.
	Store  *state.Store
	Tables []LookupTable
	// SortKey is the initial sort field; DefaultSortKey when empty.
	SortKey string
	Params  record.Params
	IDField string
	Sorter  record.Sorter
	Logger  *slog.Logger
}

// Screen is the catalog browsing core: one primary collection kept in sync
// with its filter parameters, a set of lookup tables fetched once, a local
// re-sort and re-filter of the fetched data, and an optional edit target.
//
// Mount, the setters, Refresh and Unmount must all be called on the
// goroutine behind the Dispatcher. Completions are delivered there too.
type Screen struct {
	ctx    context.Context
	cancel context.CancelFunc

	source  Source
	d       reactive.Dispatcher
	notify  Notifier
	store   *state.Store
	logger  *slog.Logger
	sched   *reactive.Scheduler
	sorter  record.Sorter
	tables  []LookupTable
	idField string

	collection record.Collection
	sortKey    string
	params     record.Params
	where      string
	filter     *record.Filter
	identifier string

	current *fetch.Handle
	lookups map[string]*fetch.Handle
	fetches int
}

// Mount builds a Screen and runs its effects for the first time: every
// lookup table and the primary collection are requested immediately.
func Mount(ctx context.Context, opts Options) (*Screen, error) {
	if opts.Source == nil {
		return nil, errors.New("catalog requires a data source")
	}
	if opts.Dispatcher == nil {
		return nil, errors.New("catalog requires a dispatcher")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sortKey := strings.TrimSpace(opts.SortKey)
	if sortKey == "" {
		sortKey = DefaultSortKey
	}
	idField := strings.TrimSpace(opts.IDField)
	if idField == "" {
		idField = record.DefaultIDField
	}

	mountCtx, cancel := context.WithCancel(ctx)
	s := &Screen{
		ctx:        mountCtx,
		cancel:     cancel,
		source:     opts.Source,
		d:          opts.Dispatcher,
		notify:     opts.Notifier,
		store:      store,
		logger:     logger,
		sched:      reactive.NewScheduler(),
		sorter:     opts.Sorter,
		tables:     append([]LookupTable(nil), opts.Tables...),
		idField:    idField,
		collection: record.Collection{},
		sortKey:    sortKey,
		params:     opts.Params.Clone(),
		lookups:    make(map[string]*fetch.Handle),
	}

	store.ResetLookups(TableNames(s.tables))
	store.SetQuery(s.sortKey, s.params)
	store.SetEditTarget("", false)
	store.Update(s.collection, s.collection, nil)
	s.render()
	return s, nil
}

// render registers every effect with its current dependency. Effects whose
// dependency did not change are skipped by the scheduler.
func (s *Screen) render() {
	for _, t := range s.tables {
		s.sched.Register(effectLookupPrefix+t.Name, nil, s.lookupEffect(t))
	}
	s.sched.Register(effectCollection, s.params.Clone(), s.syncOnFilterChange)
	s.sched.Register(effectResort, s.sortKey, s.resort)
	s.sched.Register(effectWhere, s.where, s.applyWhere)
	s.sched.Register(effectTarget, s.identifier, s.resolveTarget)
}

// Store returns the store the screen publishes to.
func (s *Screen) Store() *state.Store { return s.store }

// Snapshot returns the current published state.
func (s *Screen) Snapshot() state.Snapshot { return s.store.Snapshot() }

// IDField names the identity field of records.
func (s *Screen) IDField() string { return s.idField }

// Tables returns the lookup tables the screen fetches.
func (s *Screen) Tables() []LookupTable { return append([]LookupTable(nil), s.tables...) }

// SortKey returns the active sort field.
func (s *Screen) SortKey() string { return s.sortKey }

// Params returns a copy of the active filter parameters.
func (s *Screen) Params() record.Params { return s.params.Clone() }

// SetSortKey changes the sort field. Only the local re-sort runs.
func (s *Screen) SetSortKey(key string) {
	key = strings.TrimSpace(key)
	if key == "" || s.sched.Closed() {
		return
	}
	s.sortKey = key
	s.store.SetQuery(s.sortKey, s.params)
	s.render()
}

// SetFilterParameters replaces the query. A structurally different value
// cancels any in-flight primary fetch and issues a new one.
func (s *Screen) SetFilterParameters(params record.Params) {
	if s.sched.Closed() {
		return
	}
	s.params = params.Clone()
	s.store.SetQuery(s.sortKey, s.params)
	s.render()
}

// SetWhere replaces the local filter expression. It never fetches.
func (s *Screen) SetWhere(expression string) {
	if s.sched.Closed() {
		return
	}
	s.where = strings.TrimSpace(expression)
	s.render()
}

// SetIdentifier sets the raw identifier driving the edit target. An empty
// identifier clears the target.
func (s *Screen) SetIdentifier(id string) {
	if s.sched.Closed() {
		return
	}
	s.identifier = strings.TrimSpace(id)
	s.render()
}

// Refresh re-runs the primary sync with the current filter parameters, for
// example after a write elsewhere changed the data.
func (s *Screen) Refresh() {
	s.sched.Rerun(effectCollection, s.syncOnFilterChange)
}

// Unmount tears every effect down, cancelling all outstanding handles, and
// then releases the transport context.
func (s *Screen) Unmount() {
	if s.sched.Closed() {
		return
	}
	s.sched.Teardown()
	s.cancel()
}

// Target returns the record in edit focus when it is part of the collection.
func (s *Screen) Target() (record.Record, bool) {
	if s.identifier == "" {
		return nil, false
	}
	return s.collection.Find(s.idField, s.identifier)
}

func (s *Screen) publish() {
	s.store.Update(s.collection, s.visible(), nil)
}

func (s *Screen) visible() record.Collection {
	return s.filter.Apply(s.collection)
}

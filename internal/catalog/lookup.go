package catalog

import (
	"context"

	"github.com/five82/bookshelf/internal/fetch"
	"github.com/five82/bookshelf/internal/reactive"
	"github.com/five82/bookshelf/internal/record"
)

// lookupEffect fetches one lookup table. It is registered with a constant
// dependency, so it runs once per mount. Failures are not surfaced to the
// user: the table simply stays empty.
func (s *Screen) lookupEffect(t LookupTable) reactive.Effect {
	return func() reactive.Cleanup {
		h := fetch.Start(s.ctx, s.d, func(ctx context.Context) (record.Collection, error) {
			return s.source.FetchLookup(ctx, t.Name)
		}, fetch.Callbacks[record.Collection]{
			OnSuccess: func(items record.Collection) {
				s.storeLookup(t, items)
			},
			OnError: func(err error) {
				s.logger.Debug("lookup fetch failed", "table", t.Name, "error", err)
				s.storeLookup(t, nil)
			},
			OnDrop: func(h *fetch.Handle) {
				s.logger.Debug("dropped lookup response", "table", t.Name, "handle", h.ID())
			},
		})
		s.lookups[t.Name] = h
		return h.Cancel
	}
}

func (s *Screen) storeLookup(t LookupTable, items record.Collection) {
	switch {
	case len(items) == 0:
		items = record.Collection{}
	case t.Sort != "":
		items = s.sorter.Sort(items, t.Sort)
	}
	s.store.SetLookup(t.Name, items)
}

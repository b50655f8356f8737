package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/five82/bookshelf/internal/fetch"
	"github.com/five82/bookshelf/internal/reactive"
	"github.com/five82/bookshelf/internal/record"
)

// syncOnFilterChange fetches the primary collection for the current filter
// parameters. The scheduler runs the previous cleanup first, so the prior
// handle is always cancelled before this request is issued.
func (s *Screen) syncOnFilterChange() reactive.Cleanup {
	params := s.params.Clone()
	sortKey := s.sortKey

	s.store.SetLoading(true)
	s.fetches++
	h := fetch.Start(s.ctx, s.d, func(ctx context.Context) (record.Collection, error) {
		return s.source.FetchRecords(ctx, params)
	}, fetch.Callbacks[record.Collection]{
		OnSuccess: func(items record.Collection) {
			s.storeCollection(items, sortKey)
		},
		OnError: func(err error) {
			if errors.Is(err, ErrMalformedResponse) {
				s.logger.Debug("primary response malformed, treating as empty", "params", params.String(), "error", err)
				s.storeCollection(nil, sortKey)
				return
			}
			s.logger.Warn("primary fetch failed", "params", params.String(), "error", err)
			s.store.Update(nil, nil, err)
			s.store.SetLoading(false)
			if s.notify != nil {
				s.notify.Notify(fmt.Sprintf("Could not load records: %v", err))
			}
		},
		OnDrop: func(h *fetch.Handle) {
			s.logger.Debug("dropped response for cancelled fetch", "handle", h.ID(), "params", params.String())
		},
	})
	s.current = h
	s.logger.Debug("primary fetch started", "handle", h.ID(), "n", s.fetches, "params", params.String(), "sort", sortKey)

	return h.Cancel
}

// storeCollection replaces the collection with items ordered by the sort key
// that was active when the request started.
func (s *Screen) storeCollection(items record.Collection, sortKey string) {
	if len(items) > 0 {
		s.collection = s.sorter.Sort(items, sortKey)
	} else {
		s.collection = record.Collection{}
	}
	s.publish()
	s.store.SetLoading(false)
}

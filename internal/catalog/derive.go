package catalog

import (
	"github.com/five82/bookshelf/internal/reactive"
	"github.com/five82/bookshelf/internal/record"
)

// resort re-derives the collection order from the data already held when
// the sort key changes. It never touches the network and never changes which
// records are present.
func (s *Screen) resort() reactive.Cleanup {
	if len(s.collection) == 0 {
		return nil
	}
	s.collection = s.sorter.Sort(s.collection, s.sortKey)
	s.publish()
	return nil
}

// applyWhere compiles the local filter expression and republishes the
// visible projection. A bad expression shows every record and is reported
// through the snapshot only.
func (s *Screen) applyWhere() reactive.Cleanup {
	s.filter = nil
	var filterErr error
	if s.where != "" {
		f, err := record.CompileFilter(s.where)
		if err != nil {
			s.logger.Debug("local filter rejected", "where", s.where, "error", err)
			filterErr = err
		} else {
			s.filter = f
		}
	}
	s.store.SetVisible(s.visible(), s.where, filterErr)
	return nil
}

// resolveTarget derives the edit target from the raw identifier.
func (s *Screen) resolveTarget() reactive.Cleanup {
	s.store.SetEditTarget(s.identifier, s.identifier != "")
	return nil
}

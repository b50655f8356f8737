package reactive

import "reflect"

// Cleanup undoes the work started by an effect run. It may be nil.
type Cleanup func()

// Effect runs when its dependency changes and returns its cleanup.
type Effect func() Cleanup

type entry struct {
	dep     any
	cleanup Cleanup
}

// Scheduler re-runs effects when their dependency value changes.
//
// Register is meant to be called on every render with the current
// dependency. The first registration of an id runs the effect; later ones
// run it again only when the dependency differs structurally from the stored
// one, and always run the previous cleanup first. Teardown runs every stored
// cleanup exactly once.
//
// A Scheduler is owned by a single goroutine and is not safe for concurrent use.
type Scheduler struct {
	effects map[string]*entry
	order   []string
	equal   func(a, b any) bool
	closed  bool
}

// NewScheduler returns an empty Scheduler comparing dependencies with
// reflect.DeepEqual.
func NewScheduler() *Scheduler {
	return &Scheduler{
		effects: make(map[string]*entry),
		equal:   reflect.DeepEqual,
	}
}

// Register records dep for id and runs the effect if this is the first
// registration or dep changed. It reports whether the effect ran.
func (s *Scheduler) Register(id string, dep any, run Effect) bool {
	if s.closed || run == nil {
		return false
	}
	e, ok := s.effects[id]
	if ok && s.equal(e.dep, dep) {
		return false
	}
	if !ok {
		e = &entry{}
		s.effects[id] = e
		s.order = append(s.order, id)
	}
	s.cleanup(e)
	e.dep = dep
	e.cleanup = run()
	return true
}

// Rerun runs the cleanup and then the effect for id again with its stored
// dependency. It reports false when id was never registered.
func (s *Scheduler) Rerun(id string, run Effect) bool {
	if s.closed || run == nil {
		return false
	}
	e, ok := s.effects[id]
	if !ok {
		return false
	}
	s.cleanup(e)
	e.cleanup = run()
	return true
}

// Teardown runs the stored cleanup of every effect once. Later calls to
// Register, Rerun and Teardown do nothing.
func (s *Scheduler) Teardown() {
	if s.closed {
		return
	}
	s.closed = true
	for _, id := range s.order {
		s.cleanup(s.effects[id])
	}
}

// Closed reports whether Teardown has run.
func (s *Scheduler) Closed() bool {
	return s.closed
}


func (s *Scheduler) cleanup(e *entry) {
	if e.cleanup == nil {
		return
	}
	fn := e.cleanup
	e.cleanup = nil
	fn()
}

// Package reactive provides the effect scheduler and the single-goroutine
// dispatch model the catalog views are built on.
//
// # Model
//
// All view state is owned by one goroutine. Asynchronous work (network
// fetches) runs elsewhere and hands its result back through a Dispatcher,
// which queues a callback for the owning goroutine. Callbacks never run
// concurrently with each other or with the code that mutates view state.
//
// Three Dispatchers are in use:
//
//   - Loop: a dedicated goroutine, used by headless commands
//   - Queue: drained by hand, used by tests to pick delivery order
//   - the bubbletea program in internal/ui, which turns callbacks into messages
//
// # Effects
//
// A Scheduler associates an effect id with the dependency value it last ran
// with. Registering the same id again is a no-op unless the dependency
// changed by value; in that case the previous cleanup runs strictly before
// the effect runs again. Teardown runs every outstanding cleanup once.
//
//	s := reactive.NewScheduler()
//	s.Register("books", params, func() reactive.Cleanup {
//		h := start(params)
//		return h.Cancel
//	})
//	...
//	s.Teardown()
package reactive

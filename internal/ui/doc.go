// Package ui provides the terminal catalog browser.
//
// # Architecture Overview
//
// The browser is a Bubble Tea program. Model owns a catalog.Screen and is
// the only code that calls into it: the screen is mounted when Init's first
// message arrives, and every completion the screen or the poller posts is
// delivered back to Update as a dispatchMsg. The screen therefore runs on
// the Bubble Tea event loop without any locking.
//
// # Event Flow
//
//  1. Run() starts the program; Init emits mountMsg
//  2. Update mounts the screen with a programDispatcher and calls OnMount
//  3. Fetch goroutines Post callbacks; dispatcher.wait turns them into a dispatchMsg
//  4. Update runs the callbacks, copies the state.Store snapshot and rebuilds the table
//  5. Quitting unmounts the screen, cancels the context and saves preferences
//
// # Package Structure
//
//   - model.go: Model, key handling, Run
//   - dispatch.go: the reactive.Dispatcher that feeds Update
//   - view.go: header, table and footer rendering
//   - modal.go: input and lookup-table dialogs
//   - edit.go: "Field=value" editing and record saves
//   - theme.go, style_helpers.go: lipgloss themes and background-safe rendering
//
// # Key Bindings
//
//   - s: Cycle the sort column (local re-sort, no fetch)
//   - /: Server filter as Field=value pairs (re-fetches)
//   - x: Local filter expression (no fetch)
//   - enter: Make the selected record the edit target
//   - n: Target a new record
//   - e: Edit the target, or create when the target is new
//   - esc: Clear the target
//   - r: Refresh
//   - L: Lookup tables
//   - T: Cycle theme
//   - ?: Help
//   - q or Ctrl+C: Exit
package ui
